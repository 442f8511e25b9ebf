// surgery.go - Checkpoint-Chirurgie fuer die Trainings-Varianten
//
// Dieses Modul enthaelt:
// - RemoveVisualPrompt: Entfernt den savpe-Zweig
// - Fuse: Faltet die Klassen-Embeddings in den Klassifikationszweig
// - ReinitHeadConv: Friert alles ausser dem letzten Klassifikations-
//   Conv pro Skala ein (lineares Probing)
package model

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/pdevine/tensor"
)

// RemoveVisualPrompt entfernt alle Gewichte des Visual-Prompt-Zweigs.
// Nach dem Entfernen kann der Checkpoint nur noch mit Text-Prompts
// arbeiten.
func (d *Detector) RemoveVisualPrompt() {
	var removed int
	for _, name := range slices.Clone(d.order) {
		if strings.HasPrefix(name, "savpe.") {
			d.deleteWeight(name)
			removed++
		}
	}
	if removed > 0 {
		slog.Debug("removed visual prompt branch", "tensors", removed)
	}
}

// HasVisualPrompt meldet, ob der savpe-Zweig vorhanden ist
func (d *Detector) HasVisualPrompt() bool {
	for _, name := range d.order {
		if strings.HasPrefix(name, "savpe.") {
			return true
		}
	}
	return false
}

// Fuse faltet die per SetClasses gebundene Embedding-Matrix in den
// letzten Klassifikations-Conv jeder Skala. Aus der Abbildung in den
// Embedding-Raum wird eine direkte Abbildung auf die Klassen-Logits.
func (d *Detector) Fuse() error {
	if d.pe == nil {
		return fmt.Errorf("no class embeddings bound, call SetClasses first")
	}

	nc := d.pe.Shape()[0]
	dim := d.pe.Shape()[1]

	for i := range Scales {
		name := fmt.Sprintf("blk.%d.cv3.2.weight", i)
		w, ok := d.weights[name]
		if !ok {
			return fmt.Errorf("checkpoint is missing %s", name)
		}
		if len(w.Shape) != 2 || int(w.Shape[0]) != dim {
			return fmt.Errorf("%s has shape %v, expected [%d feat]", name, w.Shape, dim)
		}
		feat := int(w.Shape[1])

		wt := tensor.New(tensor.WithShape(dim, feat), tensor.WithBacking(slices.Clone(w.Values)))
		fused, err := tensor.MatMul(d.pe, wt)
		if err != nil {
			return fmt.Errorf("fuse %s: %w", name, err)
		}

		d.setWeight(name, &Weight{
			Shape:  []uint64{uint64(nc), uint64(feat)},
			Values: fused.Data().([]float32),
		})

		biasName := fmt.Sprintf("blk.%d.cv3.2.bias", i)
		if b, ok := d.weights[biasName]; ok {
			bt := tensor.New(tensor.WithShape(dim), tensor.WithBacking(slices.Clone(b.Values)))
			fusedBias, err := tensor.MatVecMul(d.pe, bt)
			if err != nil {
				return fmt.Errorf("fuse %s: %w", biasName, err)
			}
			d.setWeight(biasName, &Weight{
				Shape:  []uint64{uint64(nc)},
				Values: fusedBias.Data().([]float32),
			})
		}
	}

	d.kv["ovdet.fused"] = true
	slog.Info("fused class embeddings into classification head", "nc", nc, "dim", dim)
	return nil
}

// ReinitHeadConv ersetzt den letzten Klassifikations-Conv jeder Skala
// durch eine trainierbare Kopie und friert alle uebrigen Gewichte ein.
// Gibt die Namen der trainierbaren Gewichte zurueck.
func (d *Detector) ReinitHeadConv() ([]string, error) {
	for _, w := range d.weights {
		w.Trainable = false
	}

	var trainable []string
	for i := range Scales {
		for _, suffix := range []string{"weight", "bias"} {
			name := fmt.Sprintf("blk.%d.cv3.2.%s", i, suffix)
			w, ok := d.weights[name]
			if !ok {
				if suffix == "bias" {
					continue
				}
				return nil, fmt.Errorf("checkpoint is missing %s", name)
			}

			// Tiefe Kopie, damit die eingefrorene Vorlage erhalten bleibt
			d.setWeight(name, &Weight{
				Shape:     slices.Clone(w.Shape),
				Values:    slices.Clone(w.Values),
				Trainable: true,
			})
			trainable = append(trainable, name)
		}
	}

	slog.Info("reinitialized classification convs for linear probing", "trainable", len(trainable))
	return trainable, nil
}
