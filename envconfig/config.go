// config.go - Haupt-Konfigurationsfunktionen fuer ovdet
//
// Dieses Modul enthaelt:
// - Host: Gibt Scheme und Host des ovdet-Servers zurueck (OVDET_HOST)
// - EncoderHost: Gibt den Text-Encoder-Endpunkt zurueck (OVDET_ENCODER_HOST)
// - EngineHost: Gibt den Trainings-Engine-Endpunkt zurueck (OVDET_ENGINE_HOST)
// - EncoderModel: Gibt das Text-Encoder-Modell zurueck (OVDET_ENCODER_MODEL)
// - CacheDir: Gibt das Embedding-Cache-Verzeichnis zurueck (OVDET_CACHE)
// - Runs: Gibt das Run-Store-Verzeichnis zurueck (OVDET_RUNS)
// - AllowedOrigins: Gibt erlaubte Origins zurueck (OVDET_ORIGINS)
// - LogLevel: Gibt Log-Level zurueck (OVDET_DEBUG)
//
// Weitere Konfigurationen sind ausgelagert:
// - config_utils.go: Utility-Funktionen und AsMap/Values
package envconfig

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// hostVar parst eine Host-Variable in eine URL
func hostVar(key, defaultPort string) *url.URL {
	s := strings.TrimSpace(Var(key))
	scheme, hostport, ok := strings.Cut(s, "://")
	switch {
	case !ok:
		scheme, hostport = "http", s
	case scheme == "http":
		defaultPort = "80"
	case scheme == "https":
		defaultPort = "443"
	}

	hostport, path, _ := strings.Cut(hostport, "/")
	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		host, port = "127.0.0.1", defaultPort
		if ip := net.ParseIP(strings.Trim(hostport, "[]")); ip != nil {
			host = ip.String()
		} else if hostport != "" {
			host = hostport
		}
	}

	if n, err := strconv.ParseInt(port, 10, 32); err != nil || n > 65535 || n < 0 {
		slog.Warn("invalid port, using default", "port", port, "default", defaultPort)
		port = defaultPort
	}

	return &url.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(host, port),
		Path:   path,
	}
}

// Host gibt Scheme und Host des ovdet-Servers zurueck
// Konfigurierbar via OVDET_HOST
// Default: http://127.0.0.1:11435
func Host() *url.URL {
	return hostVar("OVDET_HOST", "11435")
}

// EncoderHost gibt den Endpunkt des Text-Encoder-Dienstes zurueck
// Konfigurierbar via OVDET_ENCODER_HOST
// Der Dienst muss die /api/embed Schnittstelle sprechen
// Default: http://127.0.0.1:11434
func EncoderHost() *url.URL {
	return hostVar("OVDET_ENCODER_HOST", "11434")
}

// EngineHost gibt den Endpunkt der Trainings-Engine zurueck
// Konfigurierbar via OVDET_ENGINE_HOST
// Die Engine fuehrt die eigentlichen Gradienten-Schritte aus
// Default: http://127.0.0.1:11436
func EngineHost() *url.URL {
	return hostVar("OVDET_ENGINE_HOST", "11436")
}

// EncoderModel gibt das Modell zurueck, mit dem Label-Texte kodiert werden
// Konfigurierbar via OVDET_ENCODER_MODEL
// Default: mobileclip:blt
func EncoderModel() string {
	if s := Var("OVDET_ENCODER_MODEL"); s != "" {
		return s
	}
	return "mobileclip:blt"
}

// CacheDir gibt das Verzeichnis fuer Embedding-Cache-Dateien zurueck
// Konfigurierbar via OVDET_CACHE
// Default: $HOME/.ovdet/cache
func CacheDir() string {
	if s := Var("OVDET_CACHE"); s != "" {
		return s
	}

	home, err := os.UserHomeDir()
	if err != nil {
		panic(err)
	}

	return filepath.Join(home, ".ovdet", "cache")
}

// Runs gibt das Verzeichnis fuer den Run-Store zurueck
// Konfigurierbar via OVDET_RUNS
// Default: $HOME/.ovdet/runs
func Runs() string {
	if s := Var("OVDET_RUNS"); s != "" {
		return s
	}

	home, err := os.UserHomeDir()
	if err != nil {
		panic(err)
	}

	return filepath.Join(home, ".ovdet", "runs")
}

// AllowedOrigins gibt erlaubte Origins fuer den Server zurueck
// Konfigurierbar via OVDET_ORIGINS (komma-separiert)
// Enthaelt Standard-Origins fuer localhost
func AllowedOrigins() (origins []string) {
	if s := Var("OVDET_ORIGINS"); s != "" {
		origins = strings.Split(s, ",")
	}

	for _, origin := range []string{"localhost", "127.0.0.1", "0.0.0.0"} {
		origins = append(origins,
			fmt.Sprintf("http://%s", origin),
			fmt.Sprintf("https://%s", origin),
			fmt.Sprintf("http://%s", net.JoinHostPort(origin, "*")),
			fmt.Sprintf("https://%s", net.JoinHostPort(origin, "*")),
		)
	}

	return origins
}

// LogLevel gibt das Log-Level zurueck
// Konfigurierbar via OVDET_DEBUG
// Werte: 0/false = INFO (Default), 1/true = DEBUG, 2 = TRACE
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("OVDET_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if i, _ := strconv.ParseInt(s, 10, 64); i != 0 {
			level = slog.Level(i * -4)
		}
	}

	return level
}

// Var gibt eine Environment-Variable zurueck
// Entfernt fuehrende/trailing Quotes und Leerzeichen
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}
