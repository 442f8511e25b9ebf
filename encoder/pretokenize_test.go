// pretokenize_test.go - Tests fuer die Label-Vorverarbeitung
package encoder

import (
	"strings"
	"testing"
)

func TestClean(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Person", "person"},
		{"traffic_light", "traffic light"},
		{"  Fire   Hydrant ", "fire hydrant"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, erwartet %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPiecesPartition(t *testing.T) {
	// Die Stuecke muessen den Eingabestring exakt partitionieren
	in := "a photo of a traffic light, isn't it?"
	if got := strings.Join(Pieces(in), ""); got != in {
		t.Errorf("Pieces ergibt %q, erwartet Partition von %q", got, in)
	}
}

func TestTruncate(t *testing.T) {
	short := "traffic light"
	if got := Truncate(short); got != short {
		t.Errorf("Truncate(%q) = %q, kurze Labels bleiben unveraendert", short, got)
	}

	long := strings.Repeat("very ", 100) + "long label"
	got := Truncate(long)
	if len(Pieces(got)) > maxPieces {
		t.Errorf("Truncate liefert %d Stuecke, erwartet <= %d", len(Pieces(got)), maxPieces)
	}
}

func TestNormalize(t *testing.T) {
	v := []float32{3, 4}
	Normalize(v)

	if got := Similarity(v, v); got < 0.999 || got > 1.001 {
		t.Errorf("Self-Similarity = %f, erwartet 1", got)
	}

	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm < 0.999 || norm > 1.001 {
		t.Errorf("L2-Norm^2 = %f, erwartet 1", norm)
	}
}
