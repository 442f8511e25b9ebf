// config_utils.go - Utility-Funktionen und Export fuer Konfiguration
//
// Dieses Modul enthaelt:
// - BoolWithDefault/Bool: Boolean-Getter mit Default-Wert
// - String: String-Getter
// - Uint: Integer-Getter mit Default-Wert
// - EncodeBatch: Batch-Groesse fuer das Label-Encoding
// - EnvVar: Struktur fuer Environment-Variablen-Info
// - AsMap: Gibt alle Konfigurationen als Map zurueck
// - Values: Gibt alle Konfigurationswerte als String-Map zurueck
package envconfig

import (
	"fmt"
	"log/slog"
	"strconv"
)

// BoolWithDefault gibt eine Funktion zurueck, die einen Bool mit Default-Wert liest
func BoolWithDefault(k string) func(defaultValue bool) bool {
	return func(defaultValue bool) bool {
		if s := Var(k); s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return true
			}
			return b
		}
		return defaultValue
	}
}

// Bool gibt eine Funktion zurueck, die einen Bool liest (Default: false)
func Bool(k string) func() bool {
	withDefault := BoolWithDefault(k)
	return func() bool {
		return withDefault(false)
	}
}

// String gibt eine Funktion zurueck, die einen String liest
func String(s string) func() string {
	return func() string {
		return Var(s)
	}
}

// Uint gibt eine Funktion zurueck, die einen uint mit Default-Wert liest
func Uint(key string, defaultValue uint) func() uint {
	return func() uint {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseUint(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return uint(n)
			}
		}
		return defaultValue
	}
}

// EncodeBatch gibt die Batch-Groesse fuer das Label-Encoding zurueck
// Konfigurierbar via OVDET_ENCODE_BATCH
// Default: 64
var EncodeBatch = Uint("OVDET_ENCODE_BATCH", 64)

// NoProgress deaktiviert Fortschrittsanzeigen
// Konfigurierbar via OVDET_NOPROGRESS
var NoProgress = Bool("OVDET_NOPROGRESS")

// EnvVar repraesentiert eine Environment-Variable mit Metadaten
type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap gibt alle Konfigurationen als Map zurueck
// Enthaelt Namen, aktuelle Werte und Beschreibungen
func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"OVDET_DEBUG":         {"OVDET_DEBUG", LogLevel(), "Show additional debug information (e.g. OVDET_DEBUG=1)"},
		"OVDET_HOST":          {"OVDET_HOST", Host(), "IP Address for the ovdet server (default 127.0.0.1:11435)"},
		"OVDET_ENCODER_HOST":  {"OVDET_ENCODER_HOST", EncoderHost(), "Endpoint of the text encoder service (default 127.0.0.1:11434)"},
		"OVDET_ENGINE_HOST":   {"OVDET_ENGINE_HOST", EngineHost(), "Endpoint of the training engine (default 127.0.0.1:11436)"},
		"OVDET_ENCODER_MODEL": {"OVDET_ENCODER_MODEL", EncoderModel(), "Text encoder model for label embeddings (default \"mobileclip:blt\")"},
		"OVDET_ENCODE_BATCH":  {"OVDET_ENCODE_BATCH", EncodeBatch(), "Batch size for label encoding (default 64)"},
		"OVDET_CACHE":         {"OVDET_CACHE", CacheDir(), "The path to the embedding cache directory"},
		"OVDET_RUNS":          {"OVDET_RUNS", Runs(), "The path to the training run store"},
		"OVDET_ORIGINS":       {"OVDET_ORIGINS", AllowedOrigins(), "A comma separated list of allowed origins"},
		"OVDET_NOPROGRESS":    {"OVDET_NOPROGRESS", NoProgress(), "Disable progress bars"},
	}
}

// Values gibt alle Konfigurationswerte als String-Map zurueck
func Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}
