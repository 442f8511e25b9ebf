// model.go - Detektor-Checkpoint mit benannten Gewichten
//
// Dieses Modul enthaelt:
// - Detector: Offener-Wortschatz-Detektor als GGUF-Checkpoint
// - LoadDetector/Save: Persistenz ueber das GGUF-Format
// - SetClasses: Bindet Klassennamen an Text-Embeddings
//
// Der Detektor traegt drei Erkennungs-Skalen. Pro Skala bildet der
// letzte Conv des Klassifikationszweigs (blk.N.cv3.2) Merkmale in den
// Embedding-Raum ab; savpe.* ist der optionale Visual-Prompt-Zweig.
package model

import (
	"fmt"
	"os"
	"slices"

	"github.com/agnivade/levenshtein"
	"github.com/pdevine/tensor"

	"github.com/ovdet/ovdet/encoder"
	"github.com/ovdet/ovdet/fs/ggml"
)

// Scales ist die Anzahl der Erkennungs-Skalen
const Scales = 3

// Weight ist ein benanntes Gewicht mit Trainierbarkeits-Flag
type Weight struct {
	Shape     []uint64
	Values    []float32
	Trainable bool
}

// Elements gibt die Anzahl der Werte laut Shape zurueck
func (w *Weight) Elements() uint64 {
	var n uint64 = 1
	for _, d := range w.Shape {
		n *= d
	}
	return n
}

// Detector ist ein Detektor-Checkpoint
type Detector struct {
	kv      ggml.KV
	weights map[string]*Weight
	order   []string

	names []string
	pe    *tensor.Dense
}

// NewDetector erstellt einen leeren Detektor mit gegebener
// Embedding-Dimension. Gewichte werden ueber SetWeight angelegt.
func NewDetector(embedDim int) *Detector {
	return &Detector{
		kv: ggml.KV{
			"general.architecture": "ovdet",
			"ovdet.embed_dim":      uint32(embedDim),
		},
		weights: make(map[string]*Weight),
	}
}

// LoadDetector laedt einen Detektor aus einer GGUF-Datei
func LoadDetector(path string) (*Detector, error) {
	f, err := ggml.ReadGGUF(path)
	if err != nil {
		return nil, err
	}

	if arch := f.KV.Architecture(); arch != "ovdet" {
		return nil, fmt.Errorf("%s is not a detector checkpoint (architecture %q)", path, arch)
	}

	d := &Detector{
		kv:      f.KV,
		weights: make(map[string]*Weight, len(f.Tensors)),
		names:   f.KV.Strings("names"),
	}

	for name, td := range f.Tensors {
		if len(td.Values) == 0 {
			return nil, fmt.Errorf("%s: tensor %s has no data", path, name)
		}
		d.weights[name] = &Weight{Shape: td.Shape, Values: td.Values, Trainable: true}
		d.order = append(d.order, name)
	}
	slices.Sort(d.order)

	return d, nil
}

// Save persistiert den Detektor als GGUF-Datei
func (d *Detector) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	kv := ggml.KV{"general.architecture": "ovdet"}
	for k := range d.kv.Keys() {
		kv[k] = d.kv[k]
	}
	kv["ovdet.names"] = d.names
	kv["ovdet.nc"] = uint32(len(d.names))

	ts := make([]*ggml.Tensor, 0, len(d.order))
	for _, name := range d.order {
		w := d.weights[name]
		ts = append(ts, ggml.NewTensorF32(name, w.Shape, w.Values))
	}

	return ggml.WriteGGUF(f, kv, ts)
}

// EmbedDim gibt die Embedding-Dimension des Checkpoints zurueck
func (d *Detector) EmbedDim() int {
	return int(d.kv.Uint("embed_dim"))
}

// Names gibt die gebundenen Klassennamen zurueck
func (d *Detector) Names() []string {
	return d.names
}

// NC gibt die Anzahl der gebundenen Klassen zurueck
func (d *Detector) NC() int {
	return len(d.names)
}

// Weight gibt ein benanntes Gewicht zurueck
func (d *Detector) Weight(name string) (*Weight, bool) {
	w, ok := d.weights[name]
	return w, ok
}

// Weights gibt die Gewichtsnamen sortiert zurueck
func (d *Detector) Weights() []string {
	return slices.Clone(d.order)
}

// SetWeight legt ein Gewicht an oder ueberschreibt es
func (d *Detector) SetWeight(name string, w *Weight) {
	d.setWeight(name, w)
}

// setWeight legt ein Gewicht an oder ueberschreibt es
func (d *Detector) setWeight(name string, w *Weight) {
	if _, ok := d.weights[name]; !ok {
		d.order = append(d.order, name)
		slices.Sort(d.order)
	}
	d.weights[name] = w
}

// deleteWeight entfernt ein Gewicht
func (d *Detector) deleteWeight(name string) {
	delete(d.weights, name)
	if i := slices.Index(d.order, name); i >= 0 {
		d.order = slices.Delete(d.order, i, i+1)
	}
}

// SetClasses bindet Klassennamen an ihre Text-Embeddings. Fehlt ein
// Embedding, schlaegt der Aufruf mit einem Hinweis auf das aehnlichste
// vorhandene Label fehl.
func (d *Detector) SetClasses(names []string, table *encoder.Table) error {
	if len(names) == 0 {
		return fmt.Errorf("no class names given")
	}

	dim := table.Dim()
	backing := make([]float32, 0, len(names)*dim)
	for _, name := range names {
		vec, ok := table.Get(encoder.Clean(name))
		if !ok {
			vec, ok = table.Get(name)
		}
		if !ok {
			if closest := closestLabel(name, table.Labels()); closest != "" {
				return fmt.Errorf("no embedding for class %q (did you mean %q?)", name, closest)
			}
			return fmt.Errorf("no embedding for class %q", name)
		}
		backing = append(backing, vec...)
	}

	d.names = slices.Clone(names)
	d.pe = tensor.New(tensor.WithShape(len(names), dim), tensor.WithBacking(backing))
	return nil
}

// PE gibt die gebundene Embedding-Matrix zurueck
func (d *Detector) PE() *tensor.Dense {
	return d.pe
}

// TrainableParams gibt die Namen aller trainierbaren Gewichte zurueck
func (d *Detector) TrainableParams() []string {
	var out []string
	for _, name := range d.order {
		if d.weights[name].Trainable {
			out = append(out, name)
		}
	}
	return out
}

// closestLabel sucht das Label mit der kleinsten Editierdistanz
func closestLabel(name string, labels []string) string {
	best, bestDist := "", -1
	for _, label := range labels {
		dist := levenshtein.ComputeDistance(name, label)
		if bestDist < 0 || dist < bestDist {
			best, bestDist = label, dist
		}
	}
	return best
}
