// ggml_test.go - Tests fuer GGUF Lesen und Schreiben
package ggml

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// writeTestFile schreibt eine GGUF-Datei und gibt den Pfad zurueck
func writeTestFile(t *testing.T, kv KV, ts []*Tensor) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), "test.gguf")
	f, err := os.Create(p)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if err := WriteGGUF(f, kv, ts); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestWriteReadRoundTrip(t *testing.T) {
	kv := KV{
		"general.architecture": "ovdet",
		"ovdet.labels":         []string{"person", "bicycle", "traffic light"},
		"ovdet.embedding_dim":  uint32(4),
		"ovdet.normalized":     true,
	}
	ts := []*Tensor{
		NewTensorF32("emb.0", []uint64{4}, []float32{0.1, 0.2, 0.3, 0.4}),
		NewTensorF32("emb.1", []uint64{4}, []float32{-1, 0, 1, 2}),
		NewTensorF32("emb.2", []uint64{4}, []float32{0.5, 0.5, 0.5, 0.5}),
	}

	p := writeTestFile(t, kv, ts)

	f, err := ReadGGUF(p)
	if err != nil {
		t.Fatal(err)
	}

	if got := f.KV.Architecture(); got != "ovdet" {
		t.Errorf("Architecture = %q, erwartet %q", got, "ovdet")
	}
	if got := f.KV.Uint("embedding_dim"); got != 4 {
		t.Errorf("embedding_dim = %d, erwartet 4", got)
	}
	if !f.KV.Bool("normalized") {
		t.Error("normalized = false, erwartet true")
	}
	if diff := cmp.Diff([]string{"person", "bicycle", "traffic light"}, f.KV.Strings("labels")); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}

	if len(f.Tensors) != 3 {
		t.Fatalf("Tensor-Anzahl = %d, erwartet 3", len(f.Tensors))
	}
	if diff := cmp.Diff([]float32{-1, 0, 1, 2}, f.Tensors["emb.1"].Values); diff != "" {
		t.Errorf("emb.1 mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]uint64{4}, f.Tensors["emb.0"].Shape); diff != "" {
		t.Errorf("emb.0 shape mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteRequiresArchitecture(t *testing.T) {
	p := filepath.Join(t.TempDir(), "noarch.gguf")
	f, err := os.Create(p)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if err := WriteGGUF(f, KV{}, nil); err == nil {
		t.Error("WriteGGUF ohne Architektur sollte fehlschlagen")
	}
}

func TestReadRejectsBadMagic(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bad.gguf")
	if err := os.WriteFile(p, []byte("nope definitely not gguf"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadGGUF(p); err == nil {
		t.Error("ReadGGUF mit falschem Magic sollte fehlschlagen")
	}
}

func TestTensorSize(t *testing.T) {
	tests := []struct {
		name  string
		kind  TensorType
		shape []uint64
		want  uint64
	}{
		{"f32 vector", TensorTypeF32, []uint64{512}, 2048},
		{"f16 matrix", TensorTypeF16, []uint64{80, 512}, 81920},
		{"bf16 matrix", TensorTypeBF16, []uint64{80, 512}, 81920},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tensor := Tensor{Kind: tt.kind, Shape: tt.shape}
			if got := tensor.Size(); got != tt.want {
				t.Errorf("Size() = %d, erwartet %d", got, tt.want)
			}
		})
	}
}
