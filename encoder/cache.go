// cache.go - Label-Embedding-Tabelle mit On-Disk-Cache
//
// Dieses Modul enthaelt:
// - Table: Geordnete Label->Vektor Tabelle
// - Generate: Memoisiertes Batch-Encoding mit Cache-Datei
// - LoadTable/Save: GGUF-Persistenz
//
// Eine vorhandene Cache-Datei gewinnt immer: sie wird unveraendert
// geladen, ohne Abgleich mit der angefragten Label-Menge. Bei Absturz
// waehrend des Encodings geht der gesamte Fortschritt verloren; es gibt
// kein Batch-Checkpointing. Konkurrierende Schreiber auf denselben
// Cache-Pfad sind nicht abgesichert.
package encoder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/ovdet/ovdet/envconfig"
	"github.com/ovdet/ovdet/fs/ggml"
	"github.com/ovdet/ovdet/progress"
)

// Table ist eine Label->Embedding Tabelle in Einfuegereihenfolge
type Table struct {
	m   *orderedmap.OrderedMap[string, []float32]
	dim int
}

// NewTable erstellt eine leere Tabelle
func NewTable() *Table {
	return &Table{m: orderedmap.New[string, []float32]()}
}

// Set fuegt ein Label mit Vektor hinzu
func (t *Table) Set(label string, vec []float32) error {
	if t.dim == 0 {
		t.dim = len(vec)
	} else if len(vec) != t.dim {
		return fmt.Errorf("embedding for %q has dimension %d, table has %d", label, len(vec), t.dim)
	}

	t.m.Set(label, vec)
	return nil
}

// Get gibt den Vektor eines Labels zurueck
func (t *Table) Get(label string) ([]float32, bool) {
	return t.m.Get(label)
}

// Len gibt die Anzahl der Labels zurueck
func (t *Table) Len() int {
	return t.m.Len()
}

// Dim gibt die Embedding-Dimension zurueck
func (t *Table) Dim() int {
	return t.dim
}

// Labels gibt alle Labels in Einfuegereihenfolge zurueck
func (t *Table) Labels() []string {
	labels := make([]string, 0, t.m.Len())
	for pair := t.m.Oldest(); pair != nil; pair = pair.Next() {
		labels = append(labels, pair.Key)
	}
	return labels
}

// Generate gibt eine Label->Embedding Tabelle zurueck. Existiert die
// Cache-Datei, wird sie unveraendert geladen und der Encoder nie
// aufgerufen. Andernfalls werden die Labels batchweise kodiert, die
// Tabelle einmalig persistiert und zurueckgegeben.
func Generate(ctx context.Context, enc TextEncoder, labels []string, batchSize int, cachePath string) (*Table, error) {
	if cachePath != "" {
		if _, err := os.Stat(cachePath); err == nil {
			t, err := LoadTable(cachePath)
			if err != nil {
				return nil, fmt.Errorf("load embedding cache %s: %w", cachePath, err)
			}
			if t.Len() != len(labels) {
				// Open question upstream: Cache wird trotzdem verwendet
				slog.Debug("embedding cache size differs from requested labels",
					"path", cachePath, "cached", t.Len(), "requested", len(labels))
			}
			slog.Debug("embedding cache hit", "path", cachePath, "labels", t.Len())
			return t, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	if batchSize <= 0 {
		batchSize = int(envconfig.EncodeBatch())
	}

	cleaned := make([]string, len(labels))
	for i, label := range labels {
		cleaned[i] = Truncate(Clean(label))
	}

	var bar *progress.Bar
	var p *progress.Progress
	if !envconfig.NoProgress() && len(labels) > 0 {
		p = progress.NewProgress(os.Stderr)
		bar = progress.NewBar("encoding labels", int64(len(labels)), 0)
		p.Add("encode", bar)
		defer p.StopAndClear()
	}

	table := NewTable()
	for start := 0; start < len(labels); start += batchSize {
		end := min(start+batchSize, len(labels))

		vecs, err := enc.EmbedText(ctx, cleaned[start:end])
		if err != nil {
			// kein Checkpointing: der gesamte Fortschritt ist verloren
			return nil, fmt.Errorf("encode labels [%d:%d]: %w", start, end, err)
		}

		for i, vec := range vecs {
			Normalize(vec)
			if err := table.Set(labels[start+i], vec); err != nil {
				return nil, err
			}
		}

		if bar != nil {
			bar.Set(int64(end))
		}
	}

	if cachePath != "" {
		if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err != nil {
			return nil, err
		}
		if err := table.Save(cachePath); err != nil {
			return nil, fmt.Errorf("save embedding cache %s: %w", cachePath, err)
		}
		slog.Info("wrote embedding cache", "path", cachePath, "labels", table.Len(), "dim", table.Dim())
	}

	return table, nil
}

// Save persistiert die Tabelle als GGUF-Datei
func (t *Table) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	labels := t.Labels()
	ts := make([]*ggml.Tensor, 0, len(labels))
	for i, label := range labels {
		vec, _ := t.Get(label)
		ts = append(ts, ggml.NewTensorF32(fmt.Sprintf("emb.%d", i), []uint64{uint64(len(vec))}, vec))
	}

	kv := ggml.KV{
		"general.architecture": "embcache",
		"embcache.labels":      labels,
		"embcache.dim":         uint32(t.dim),
		"embcache.normalized":  true,
	}

	return ggml.WriteGGUF(f, kv, ts)
}

// LoadTable laedt eine Tabelle aus einer GGUF-Datei
func LoadTable(path string) (*Table, error) {
	f, err := ggml.ReadGGUF(path)
	if err != nil {
		return nil, err
	}

	if arch := f.KV.Architecture(); arch != "embcache" {
		return nil, fmt.Errorf("%s is not an embedding cache (architecture %q)", path, arch)
	}

	labels := f.KV.Strings("labels")
	if len(labels) != len(f.Tensors) {
		return nil, fmt.Errorf("%s holds %d labels but %d tensors", path, len(labels), len(f.Tensors))
	}

	t := NewTable()
	for i, label := range labels {
		td, ok := f.Tensors[fmt.Sprintf("emb.%d", i)]
		if !ok {
			return nil, fmt.Errorf("%s is missing tensor emb.%d", path, i)
		}
		if err := t.Set(label, td.Values); err != nil {
			return nil, err
		}
	}

	return t, nil
}
