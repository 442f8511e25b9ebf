// batch.go - Batch-Vorverarbeitung pro Trainings-Variante
//
// Dieses Modul enthaelt:
// - Batch: Ein Trainings-Batch, wie ihn das Backend konsumiert
// - PreprocessBatch: Varianten-spezifische Anreicherung
package train

import "fmt"

// Batch ist ein Trainings-Batch
type Batch struct {
	// Images sind die Bildpfade des Batches
	Images []string

	// Positives sind die Positiv-Labels pro Bild
	Positives [][]string

	// Texts und TextEmb sind die Textmenge des Batches samt
	// Embeddings, gefuellt durch PreprocessBatch
	Texts   []string
	TextEmb [][]float32

	// Visuals sind die visuellen Prompts pro Bild
	Visuals []string
}

// PreprocessBatch reichert einen Batch gemaess der Variante an:
// Text-Varianten erhalten die Textmenge samt Embeddings, die
// prompt-freie Variante verliert alle Texte, die Visual-Prompt-
// Variante verlangt visuelle Prompts.
func (t *Trainer) PreprocessBatch(b *Batch) error {
	switch {
	case t.opts.Mode == ModePromptFree:
		b.Texts = nil
		b.TextEmb = nil
		return nil

	case t.opts.Mode == ModeVisualPrompt:
		if len(b.Visuals) == 0 {
			return fmt.Errorf("visual prompt training requires visuals in every batch")
		}
	}

	if t.sampler == nil {
		return fmt.Errorf("no embeddings generated, call Setup first")
	}

	seen := make(map[string]bool)
	var positives []string
	for _, labels := range b.Positives {
		for _, label := range labels {
			if !seen[label] {
				seen[label] = true
				positives = append(positives, label)
			}
		}
	}

	texts, vecs, err := t.sampler.Sample(positives)
	if err != nil {
		return err
	}

	b.Texts = texts
	b.TextEmb = vecs
	return nil
}
