// kv.go - Key-Value Metadaten fuer GGUF-Dateien
//
// Dieses Modul enthaelt:
// - KV: Map-Typ mit typisierten Gettern
// - keyValue: Generische Getter-Funktion
package ggml

import (
	"iter"
	"maps"
	"slices"
	"strings"
)

// KV haelt die Metadaten einer GGUF-Datei
type KV map[string]any

// valueTypes sind die erlaubten Einzelwert-Typen
type valueTypes interface {
	uint8 | int8 | uint16 | int16 |
		uint32 | int32 | uint64 | int64 |
		string | float32 | float64 | bool
}

// arrayValueTypes sind die erlaubten Array-Typen
type arrayValueTypes interface {
	[]uint8 | []int8 | []uint16 | []int16 |
		[]uint32 | []int32 | []uint64 | []int64 |
		[]string | []float32 | []float64 | []bool
}

// keyValue liest einen typisierten Wert; Keys ohne Punkt-Prefix werden
// um die Architektur ergaenzt
func keyValue[T valueTypes | arrayValueTypes](kv KV, key string, defaultValue T) T {
	if !strings.HasPrefix(key, "general.") && !strings.Contains(key, ".") {
		key = kv.Architecture() + "." + key
	}

	if val, ok := kv[key].(T); ok {
		return val
	}
	return defaultValue
}

// Architecture gibt die Architektur zurueck
func (kv KV) Architecture() string {
	return kv.String("general.architecture", "unknown")
}

// String liest einen String-Wert
func (kv KV) String(key string, defaultValue ...string) string {
	return keyValue(kv, key, append(defaultValue, "")[0])
}

// Uint liest einen uint32-Wert
func (kv KV) Uint(key string, defaultValue ...uint32) uint32 {
	return keyValue(kv, key, append(defaultValue, 0)[0])
}

// Float liest einen float32-Wert
func (kv KV) Float(key string, defaultValue ...float32) float32 {
	return keyValue(kv, key, append(defaultValue, 0)[0])
}

// Bool liest einen bool-Wert
func (kv KV) Bool(key string, defaultValue ...bool) bool {
	return keyValue(kv, key, append(defaultValue, false)[0])
}

// Strings liest ein String-Array
func (kv KV) Strings(key string, defaultValue ...[]string) []string {
	return keyValue(kv, key, append(defaultValue, []string(nil))[0])
}

// Len gibt die Anzahl der Eintraege zurueck
func (kv KV) Len() int {
	return len(kv)
}

// Keys iteriert ueber alle Keys
func (kv KV) Keys() iter.Seq[string] {
	return maps.Keys(kv)
}

// SortedKeys gibt alle Keys sortiert zurueck
func (kv KV) SortedKeys() []string {
	return slices.Sorted(kv.Keys())
}
