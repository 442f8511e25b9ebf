// model_test.go - Tests fuer Checkpoint, Klassenbindung und Chirurgie
package model

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ovdet/ovdet/encoder"
)

// testDetector baut einen minimalen Detektor mit dim=2, feat=3
func testDetector(t *testing.T) *Detector {
	t.Helper()

	d := NewDetector(2)
	for i := range Scales {
		d.SetWeight(blkName(i, "weight"), &Weight{
			Shape:     []uint64{2, 3},
			Values:    []float32{1, 2, 3, 4, 5, 6},
			Trainable: true,
		})
		d.SetWeight(blkName(i, "bias"), &Weight{
			Shape:     []uint64{2},
			Values:    []float32{0.5, -0.5},
			Trainable: true,
		})
	}
	d.SetWeight("savpe.0.weight", &Weight{
		Shape:     []uint64{2, 2},
		Values:    []float32{1, 0, 0, 1},
		Trainable: true,
	})
	return d
}

func blkName(i int, suffix string) string {
	return fmt.Sprintf("blk.%d.cv3.2.%s", i, suffix)
}

func testTable(t *testing.T, labels ...string) *encoder.Table {
	t.Helper()

	table := encoder.NewTable()
	for i, label := range labels {
		vec := []float32{0, 0}
		vec[i%2] = 1
		if err := table.Set(label, vec); err != nil {
			t.Fatal(err)
		}
	}
	return table
}

func TestSetClassesDidYouMean(t *testing.T) {
	d := testDetector(t)
	table := testTable(t, "person", "bicycle")

	err := d.SetClasses([]string{"persn"}, table)
	if err == nil {
		t.Fatal("SetClasses sollte bei unbekanntem Label fehlschlagen")
	}
	if !strings.Contains(err.Error(), `did you mean "person"`) {
		t.Errorf("Fehler ohne Aehnlichkeits-Hinweis: %v", err)
	}
}

func TestSetClasses(t *testing.T) {
	d := testDetector(t)
	table := testTable(t, "person", "bicycle")

	if err := d.SetClasses([]string{"person", "bicycle"}, table); err != nil {
		t.Fatal(err)
	}
	if d.NC() != 2 {
		t.Errorf("NC = %d, erwartet 2", d.NC())
	}
	if got := d.PE().Shape(); got[0] != 2 || got[1] != 2 {
		t.Errorf("PE Shape = %v, erwartet [2 2]", got)
	}
}

func TestFuseIdentity(t *testing.T) {
	d := testDetector(t)

	// Identitaets-Embeddings: die gefalteten Gewichte bleiben gleich
	table := testTable(t, "a", "b")
	if err := d.SetClasses([]string{"a", "b"}, table); err != nil {
		t.Fatal(err)
	}
	if err := d.Fuse(); err != nil {
		t.Fatal(err)
	}

	w, _ := d.Weight("blk.0.cv3.2.weight")
	if diff := cmp.Diff([]float32{1, 2, 3, 4, 5, 6}, w.Values); diff != "" {
		t.Errorf("fused weight mismatch (-want +got):\n%s", diff)
	}
	if w.Shape[0] != 2 || w.Shape[1] != 3 {
		t.Errorf("Shape = %v, erwartet [nc feat]", w.Shape)
	}

	b, _ := d.Weight("blk.0.cv3.2.bias")
	if diff := cmp.Diff([]float32{0.5, -0.5}, b.Values); diff != "" {
		t.Errorf("fused bias mismatch (-want +got):\n%s", diff)
	}
}

func TestFuseWithoutClasses(t *testing.T) {
	d := testDetector(t)
	if err := d.Fuse(); err == nil {
		t.Error("Fuse ohne SetClasses sollte fehlschlagen")
	}
}

func TestReinitHeadConv(t *testing.T) {
	d := testDetector(t)

	trainable, err := d.ReinitHeadConv()
	if err != nil {
		t.Fatal(err)
	}

	// Pro Skala weight und bias
	if len(trainable) != Scales*2 {
		t.Errorf("trainable = %d Gewichte, erwartet %d", len(trainable), Scales*2)
	}

	if w, _ := d.Weight("savpe.0.weight"); w.Trainable {
		t.Error("savpe-Zweig muss eingefroren sein")
	}
	if w, _ := d.Weight("blk.1.cv3.2.weight"); !w.Trainable {
		t.Error("Klassifikations-Conv muss trainierbar bleiben")
	}

	sort.Strings(trainable)
	if diff := cmp.Diff(trainable, d.TrainableParams()); diff != "" {
		t.Errorf("TrainableParams mismatch (-want +got):\n%s", diff)
	}
}

func TestRemoveVisualPrompt(t *testing.T) {
	d := testDetector(t)
	if !d.HasVisualPrompt() {
		t.Fatal("Testdetektor sollte einen savpe-Zweig besitzen")
	}

	d.RemoveVisualPrompt()
	if d.HasVisualPrompt() {
		t.Error("savpe-Zweig muss entfernt sein")
	}
	if _, ok := d.Weight("blk.0.cv3.2.weight"); !ok {
		t.Error("Klassifikationszweig darf nicht entfernt werden")
	}
}

func TestDetectorRoundTrip(t *testing.T) {
	d := testDetector(t)
	table := testTable(t, "person", "bicycle")
	if err := d.SetClasses([]string{"person", "bicycle"}, table); err != nil {
		t.Fatal(err)
	}

	p := filepath.Join(t.TempDir(), "detector.gguf")
	if err := d.Save(p); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadDetector(p)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(d.Names(), loaded.Names()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(d.Weights(), loaded.Weights()); diff != "" {
		t.Errorf("weights mismatch (-want +got):\n%s", diff)
	}
	if loaded.EmbedDim() != 2 {
		t.Errorf("EmbedDim = %d, erwartet 2", loaded.EmbedDim())
	}

	want, _ := d.Weight("blk.2.cv3.2.weight")
	got, _ := loaded.Weight("blk.2.cv3.2.weight")
	if diff := cmp.Diff(want.Values, got.Values); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
}
