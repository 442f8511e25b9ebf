// pretokenize.go - Label-Vorverarbeitung vor dem Encoding
//
// Dieses Modul enthaelt:
// - Clean: Normalisiert ein Label (Kleinschreibung, Whitespace)
// - Pieces: Zerlegt ein Label mit dem GPT-2 Split-Pattern
//
// Das Split-Pattern enthaelt einen Lookahead und braucht daher regexp2.
package encoder

import (
	"strings"

	"github.com/dlclark/regexp2"
)

// maxPieces begrenzt die Laenge eines Labels; laengere Labels werden
// abgeschnitten, bevor sie an den Encoder gehen (CLIP-Kontextfenster)
const maxPieces = 77

var pretokenPattern = regexp2.MustCompile(`'s|'t|'re|'ve|'m|'ll|'d| ?\p{L}+| ?\p{N}+| ?[^\s\p{L}\p{N}]+|\s+(?!\S)|\s+`, regexp2.None)

// Clean normalisiert ein Label: Kleinschreibung, Unterstriche zu
// Leerzeichen, Whitespace kollabiert
func Clean(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	s = strings.ReplaceAll(s, "_", " ")
	return strings.Join(strings.Fields(s), " ")
}

// Pieces zerlegt ein Label in Vor-Token-Stuecke
func Pieces(label string) []string {
	var pieces []string

	m, err := pretokenPattern.FindStringMatch(label)
	for err == nil && m != nil {
		pieces = append(pieces, m.String())
		m, err = pretokenPattern.FindNextMatch(m)
	}

	return pieces
}

// Truncate kuerzt ein Label auf maxPieces Stuecke
func Truncate(label string) string {
	pieces := Pieces(label)
	if len(pieces) <= maxPieces {
		return label
	}
	return strings.Join(pieces[:maxPieces], "")
}
