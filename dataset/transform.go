// transform.go - Transformationen und Embedding-Injektion
//
// Dieses Modul enthaelt:
// - Transform/EmbeddingSetter: Transformationskette und optionale
//   Faehigkeit, Embedding-Tabellen entgegenzunehmen
// - TextSample: Zieht pro Bild Positiv-Labels plus Negativ-Auffuellung
// - InjectEmbeddings: Reicht Tabellen an faehige Transformationen durch
package dataset

import (
	"fmt"
	"math/rand"

	"github.com/ovdet/ovdet/encoder"
)

// Transform ist ein Glied der Transformationskette einer Quelle
type Transform interface {
	Name() string
}

// EmbeddingSetter nimmt Positiv- und Negativ-Embedding-Tabellen
// entgegen. Transformationen ohne diese Faehigkeit bleiben unberuehrt.
type EmbeddingSetter interface {
	SetEmbeddings(pos, neg *encoder.Table)
}

// InjectEmbeddings reicht die Tabellen an die Quelle beziehungsweise an
// alle faehigen Glieder ihrer Transformationskette durch
func InjectEmbeddings(ds Dataset, pos, neg *encoder.Table) {
	if setter, ok := ds.(EmbeddingSetter); ok {
		setter.SetEmbeddings(pos, neg)
		return
	}

	for _, t := range ds.Transforms() {
		if setter, ok := t.(EmbeddingSetter); ok {
			setter.SetEmbeddings(pos, neg)
		}
	}
}

// TextSample stellt pro Bild eine Textmenge zusammen: die positiven
// Labels des Bildes, aufgefuellt mit zufaelligen Negativ-Labels bis
// MaxSamples erreicht ist.
type TextSample struct {
	MaxSamples int

	rng *rand.Rand
	pos *encoder.Table
	neg *encoder.Table
}

// NewTextSample erstellt eine TextSample-Transformation
func NewTextSample(maxSamples int, seed int64) *TextSample {
	return &TextSample{
		MaxSamples: maxSamples,
		rng:        rand.New(rand.NewSource(seed)),
	}
}

func (t *TextSample) Name() string {
	return "text_sample"
}

// SetEmbeddings setzt die Positiv- und Negativ-Tabellen
func (t *TextSample) SetEmbeddings(pos, neg *encoder.Table) {
	t.pos = pos
	t.neg = neg
}

// Ready meldet, ob die Tabellen gesetzt wurden
func (t *TextSample) Ready() bool {
	return t.pos != nil
}

// Sample gibt die Textmenge und ihre Embeddings fuer ein Bild zurueck.
// Negativ-Labels, die bereits positiv vorkommen, werden nicht gezogen.
func (t *TextSample) Sample(positives []string) ([]string, [][]float32, error) {
	if t.pos == nil {
		return nil, nil, fmt.Errorf("text sample transform has no embeddings")
	}

	labels := make([]string, 0, t.MaxSamples)
	labels = append(labels, positives...)

	seen := make(map[string]bool, len(positives))
	for _, label := range positives {
		seen[label] = true
	}

	if t.neg != nil {
		candidates := t.neg.Labels()
		t.rng.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
		for _, label := range candidates {
			if len(labels) >= t.MaxSamples {
				break
			}
			if !seen[label] {
				labels = append(labels, label)
			}
		}
	}

	vecs := make([][]float32, len(labels))
	for i, label := range labels {
		vec, ok := t.pos.Get(label)
		if !ok && t.neg != nil {
			vec, ok = t.neg.Get(label)
		}
		if !ok {
			return nil, nil, fmt.Errorf("no embedding for label %q", label)
		}
		vecs[i] = vec
	}

	return labels, vecs, nil
}
