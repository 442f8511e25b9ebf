// cache_test.go - Tests fuer die Embedding-Tabelle und den Cache
package encoder

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// fakeEncoder zaehlt Aufrufe und liefert deterministische Vektoren
type fakeEncoder struct {
	calls int
	dim   int
}

func (f *fakeEncoder) EmbedText(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++

	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, f.dim)
		for j := range vec {
			vec[j] = float32(len(text)+j) / 10
		}
		out[i] = vec
	}
	return out, nil
}

// errEncoder schlaegt ab einem bestimmten Batch fehl
type errEncoder struct {
	calls   int
	failAt  int
	backing fakeEncoder
}

func (e *errEncoder) EmbedText(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.calls >= e.failAt {
		return nil, fmt.Errorf("encoder unavailable")
	}
	return e.backing.EmbedText(ctx, texts)
}

func TestGenerateCacheHit(t *testing.T) {
	t.Setenv("OVDET_NOPROGRESS", "1")

	labels := []string{"person", "bicycle", "car", "traffic light", "fire hydrant"}
	cachePath := filepath.Join(t.TempDir(), "pos_embeddings.gguf")

	enc := &fakeEncoder{dim: 8}
	first, err := Generate(context.Background(), enc, labels, 2, cachePath)
	if err != nil {
		t.Fatal(err)
	}
	if enc.calls != 3 {
		t.Errorf("Encoder-Aufrufe = %d, erwartet 3 Batches", enc.calls)
	}
	if first.Len() != len(labels) {
		t.Errorf("Tabelle hat %d Labels, erwartet %d", first.Len(), len(labels))
	}

	// Zweiter Aufruf: Cache-Hit, Encoder darf nicht erneut laufen
	second, err := Generate(context.Background(), enc, labels, 2, cachePath)
	if err != nil {
		t.Fatal(err)
	}
	if enc.calls != 3 {
		t.Errorf("Encoder-Aufrufe nach Cache-Hit = %d, erwartet 3", enc.calls)
	}

	if diff := cmp.Diff(first.Labels(), second.Labels()); diff != "" {
		t.Errorf("labels mismatch (-first +second):\n%s", diff)
	}
	for _, label := range labels {
		a, _ := first.Get(label)
		b, ok := second.Get(label)
		if !ok {
			t.Fatalf("Label %q fehlt nach Cache-Hit", label)
		}
		if diff := cmp.Diff(a, b); diff != "" {
			t.Errorf("embedding %q mismatch (-first +second):\n%s", label, diff)
		}
	}
}

func TestGenerateCacheIgnoresLabelSet(t *testing.T) {
	// Die Cache-Datei gewinnt auch bei anderer Label-Menge
	t.Setenv("OVDET_NOPROGRESS", "1")

	cachePath := filepath.Join(t.TempDir(), "neg_embeddings.gguf")
	enc := &fakeEncoder{dim: 4}

	if _, err := Generate(context.Background(), enc, []string{"cat", "dog"}, 8, cachePath); err != nil {
		t.Fatal(err)
	}

	table, err := Generate(context.Background(), enc, []string{"zebra"}, 8, cachePath)
	if err != nil {
		t.Fatal(err)
	}
	if got := table.Labels(); len(got) != 2 || got[0] != "cat" || got[1] != "dog" {
		t.Errorf("Labels = %v, erwartet die gecachte Menge [cat dog]", got)
	}
}

func TestGeneratePreservesOrder(t *testing.T) {
	t.Setenv("OVDET_NOPROGRESS", "1")

	labels := []string{"zebra", "apple", "mouse"}
	table, err := Generate(context.Background(), &fakeEncoder{dim: 4}, labels, 2, "")
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(labels, table.Labels()); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateNoPartialCache(t *testing.T) {
	t.Setenv("OVDET_NOPROGRESS", "1")

	cachePath := filepath.Join(t.TempDir(), "partial.gguf")
	enc := &errEncoder{failAt: 2, backing: fakeEncoder{dim: 4}}

	_, err := Generate(context.Background(), enc, []string{"a", "b", "c", "d"}, 2, cachePath)
	if err == nil {
		t.Fatal("Generate sollte bei Encoder-Fehler fehlschlagen")
	}

	// Kein Batch-Checkpointing: es darf keine Cache-Datei entstehen
	if _, err := LoadTable(cachePath); err == nil {
		t.Error("nach Teilfehler darf keine Cache-Datei existieren")
	}
}

func TestTableRoundTrip(t *testing.T) {
	table := NewTable()
	for i, label := range []string{"person", "dog"} {
		vec := []float32{float32(i), 1, 2, 3}
		if err := table.Set(label, vec); err != nil {
			t.Fatal(err)
		}
	}

	p := filepath.Join(t.TempDir(), "table.gguf")
	if err := table.Save(p); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadTable(p)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(table.Labels(), loaded.Labels()); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
	want, _ := table.Get("dog")
	got, _ := loaded.Get("dog")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("dog mismatch (-want +got):\n%s", diff)
	}
	if loaded.Dim() != 4 {
		t.Errorf("Dim = %d, erwartet 4", loaded.Dim())
	}
}

func TestTableRejectsMixedDims(t *testing.T) {
	table := NewTable()
	if err := table.Set("a", []float32{1, 2}); err != nil {
		t.Fatal(err)
	}
	if err := table.Set("b", []float32{1, 2, 3}); err == nil {
		t.Error("Set mit anderer Dimension sollte fehlschlagen")
	}
}
