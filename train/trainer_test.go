// trainer_test.go - Tests fuer die Trainings-Orchestrierung
package train

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ovdet/ovdet/dataset"
	"github.com/ovdet/ovdet/model"
)

// fakeEncoder liefert deterministische 2D-Vektoren
type fakeEncoder struct {
	calls int
}

func (f *fakeEncoder) EmbedText(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = []float32{float32(len(text)), 1}
	}
	return out, nil
}

// fakeBackend zaehlt Epochen und merkt sich Validierungsgroessen
type fakeBackend struct {
	epochs  int
	valLens []int
}

func (b *fakeBackend) TrainEpoch(_ context.Context, _ *model.Detector, _ dataset.Dataset, epoch int) (Metrics, error) {
	b.epochs++
	return Metrics{BoxLoss: 1 / float64(epoch), ClsLoss: 0.5, DFLLoss: 0.2}, nil
}

func (b *fakeBackend) Validate(_ context.Context, _ *model.Detector, ds dataset.Dataset) (Metrics, error) {
	b.valLens = append(b.valLens, ds.Len())
	return Metrics{MAP50: 0.5, MAP5095: 0.3}, nil
}

// minimal gueltiges 1x1 PNG
var pngStub = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

// writeSplit legt ein Split-Verzeichnis mit n Bildern und Labels an
func writeSplit(t *testing.T, root, split string, n int) {
	t.Helper()

	imgDir := filepath.Join(root, "images", split)
	labelDir := filepath.Join(root, "labels", split)
	for _, d := range []string{imgDir, labelDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}

	for i := range n {
		name := fmt.Sprintf("%04d", i)
		if err := os.WriteFile(filepath.Join(imgDir, name+".png"), pngStub, 0o644); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(labelDir, name+".txt"), []byte("0 0.5 0.5 0.2 0.2\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

// writeDataTree legt Spezifikation, Descriptor und Splits an
func writeDataTree(t *testing.T, names []string, lvis bool) string {
	t.Helper()
	root := t.TempDir()

	writeSplit(t, root, "train", 3)
	writeSplit(t, root, "val", 2)

	descName := "coco.yaml"
	minival := ""
	if lvis {
		descName = "lvis.yaml"
		minival = "minival: images/minival\n"
		writeSplit(t, root, "minival", 1)
	}

	desc := fmt.Sprintf("path: %s\ntrain: images/train\nval: images/val\n%snames: [%s]\n",
		root, minival, strings.Join(names, ", "))
	descPath := filepath.Join(root, descName)
	if err := os.WriteFile(descPath, []byte(desc), 0o644); err != nil {
		t.Fatal(err)
	}

	spec := fmt.Sprintf("train:\n  detection_data:\n    - %s\nval:\n  detection_data:\n    - %s\n", descPath, descPath)
	specPath := filepath.Join(root, "data.yaml")
	if err := os.WriteFile(specPath, []byte(spec), 0o644); err != nil {
		t.Fatal(err)
	}

	return specPath
}

// writeDetector legt einen Checkpoint mit dim=2 an
func writeDetector(t *testing.T, savpe bool) string {
	t.Helper()

	d := model.NewDetector(2)
	for i := range model.Scales {
		d.SetWeight(fmt.Sprintf("blk.%d.cv3.2.weight", i), &model.Weight{
			Shape:     []uint64{2, 3},
			Values:    []float32{1, 2, 3, 4, 5, 6},
			Trainable: true,
		})
	}
	if savpe {
		d.SetWeight("savpe.0.weight", &model.Weight{
			Shape:     []uint64{2, 2},
			Values:    []float32{1, 0, 0, 1},
			Trainable: true,
		})
	}

	p := filepath.Join(t.TempDir(), "detector.gguf")
	if err := d.Save(p); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestParseMode(t *testing.T) {
	for _, want := range []Mode{ModeFineTune, ModeLinearProbe, ModeScratch, ModePromptFree, ModeVisualPrompt} {
		got, err := ParseMode(want.String())
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("ParseMode(%q) = %v", want.String(), got)
		}
	}

	if _, err := ParseMode("turbo"); err == nil {
		t.Error("ParseMode sollte unbekannte Varianten ablehnen")
	}
}

func TestTrainerFineTune(t *testing.T) {
	t.Setenv("OVDET_NOPROGRESS", "1")

	specPath := writeDataTree(t, []string{"person", "dog"}, false)
	backend := &fakeBackend{}

	var epochs []int
	tr := NewTrainer(Options{
		Mode:   ModeFineTune,
		Data:   specPath,
		Model:  writeDetector(t, true),
		Epochs: 3,
		OnEpoch: func(epoch int, _ Metrics) {
			epochs = append(epochs, epoch)
		},
	}, backend, &fakeEncoder{})

	if err := tr.Setup(context.Background()); err != nil {
		t.Fatal(err)
	}
	if tr.TrainDataset().Len() != 3 {
		t.Errorf("Trainingsquelle hat %d Bilder, erwartet 3", tr.TrainDataset().Len())
	}

	m, err := tr.Train(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if backend.epochs != 3 || len(epochs) != 3 {
		t.Errorf("Backend lief %d Epochen, erwartet 3", backend.epochs)
	}
	if m.MAP50 != 0.5 {
		t.Errorf("MAP50 = %f", m.MAP50)
	}

	// Validierung bindet die Klassennamen an den Detektor
	if got := tr.Detector().Names(); len(got) != 2 || got[0] != "person" {
		t.Errorf("gebundene Klassen = %v", got)
	}
}

func TestTrainerWritesEmbeddingCache(t *testing.T) {
	t.Setenv("OVDET_NOPROGRESS", "1")

	specPath := writeDataTree(t, []string{"person"}, false)
	cacheDir := t.TempDir()

	tr := NewTrainer(Options{
		Mode:     ModeFineTune,
		Data:     specPath,
		Model:    writeDetector(t, true),
		CacheDir: cacheDir,
		Epochs:   1,
	}, &fakeBackend{}, &fakeEncoder{})

	if err := tr.Setup(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(cacheDir, "pos_embeddings.gguf")); err != nil {
		t.Errorf("Positiv-Cache fehlt: %v", err)
	}

	// Zweites Setup: der Cache verhindert erneute Encoder-Aufrufe
	enc := &fakeEncoder{}
	tr2 := NewTrainer(Options{
		Mode:     ModeFineTune,
		Data:     specPath,
		Model:    writeDetector(t, true),
		CacheDir: cacheDir,
		Epochs:   1,
	}, &fakeBackend{}, enc)
	if err := tr2.Setup(context.Background()); err != nil {
		t.Fatal(err)
	}
	if enc.calls != 0 {
		t.Errorf("Encoder lief %d mal trotz Cache", enc.calls)
	}
}

func TestTrainerCapsPromptClasses(t *testing.T) {
	t.Setenv("OVDET_NOPROGRESS", "1")

	names := make([]string, 90)
	for i := range names {
		names[i] = fmt.Sprintf("c%d", i)
	}
	specPath := writeDataTree(t, names, false)

	tr := NewTrainer(Options{
		Mode:  ModeFineTune,
		Data:  specPath,
		Model: writeDetector(t, true),
	}, &fakeBackend{}, &fakeEncoder{})

	if err := tr.Setup(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := len(tr.Names()); got != MaxPromptClasses {
		t.Errorf("Klassen = %d, erwartet Deckel %d", got, MaxPromptClasses)
	}
}

func TestLinearProbeRequiresPE(t *testing.T) {
	specPath := writeDataTree(t, []string{"person"}, false)

	tr := NewTrainer(Options{
		Mode:  ModeLinearProbe,
		Data:  specPath,
		Model: writeDetector(t, true),
	}, &fakeBackend{}, &fakeEncoder{})

	if err := tr.Setup(context.Background()); err == nil {
		t.Error("lineares Probing ohne Embedding-Datei sollte fehlschlagen")
	}
}

func TestVisualPromptRequiresBranch(t *testing.T) {
	specPath := writeDataTree(t, []string{"person"}, false)

	tr := NewTrainer(Options{
		Mode:  ModeVisualPrompt,
		Data:  specPath,
		Model: writeDetector(t, false),
	}, &fakeBackend{}, &fakeEncoder{})

	if err := tr.Setup(context.Background()); err == nil {
		t.Error("Visual-Prompt-Training ohne savpe-Zweig sollte fehlschlagen")
	}
}

func TestFinalEvalKeepsMinival(t *testing.T) {
	t.Setenv("OVDET_NOPROGRESS", "1")

	specPath := writeDataTree(t, []string{"person"}, true)
	backend := &fakeBackend{}

	tr := NewTrainer(Options{
		Mode:   ModeScratch,
		Data:   specPath,
		Model:  writeDetector(t, true),
		Epochs: 1,
	}, backend, &fakeEncoder{})

	if err := tr.Setup(context.Background()); err != nil {
		t.Fatal(err)
	}

	if _, err := tr.Validate(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := tr.FinalEval(context.Background()); err != nil {
		t.Fatal(err)
	}

	// LVIS bleibt auch bei der Abschluss-Validierung auf minival (1 Bild)
	if len(backend.valLens) != 2 || backend.valLens[0] != 1 || backend.valLens[1] != 1 {
		t.Errorf("Validierungsgroessen = %v, erwartet [1 1]", backend.valLens)
	}
}

func TestFinalEvalFullSplitWithoutMinival(t *testing.T) {
	t.Setenv("OVDET_NOPROGRESS", "1")

	specPath := writeDataTree(t, []string{"person"}, false)
	backend := &fakeBackend{}

	tr := NewTrainer(Options{
		Mode:   ModeScratch,
		Data:   specPath,
		Model:  writeDetector(t, true),
		Epochs: 1,
	}, backend, &fakeEncoder{})

	if err := tr.Setup(context.Background()); err != nil {
		t.Fatal(err)
	}

	if _, err := tr.FinalEval(context.Background()); err != nil {
		t.Fatal(err)
	}

	// Ohne minival laeuft die Abschluss-Validierung auf dem vollen Split
	if len(backend.valLens) != 1 || backend.valLens[0] != 2 {
		t.Errorf("Validierungsgroessen = %v, erwartet [2]", backend.valLens)
	}
}

func TestPreprocessBatch(t *testing.T) {
	t.Setenv("OVDET_NOPROGRESS", "1")

	specPath := writeDataTree(t, []string{"person", "dog"}, false)
	tr := NewTrainer(Options{
		Mode:       ModeFineTune,
		Data:       specPath,
		Model:      writeDetector(t, true),
		MaxSamples: 2,
	}, &fakeBackend{}, &fakeEncoder{})
	if err := tr.Setup(context.Background()); err != nil {
		t.Fatal(err)
	}

	b := Batch{
		Images:    []string{"a.png"},
		Positives: [][]string{{"person"}},
	}
	if err := tr.PreprocessBatch(&b); err != nil {
		t.Fatal(err)
	}
	if len(b.Texts) == 0 || len(b.Texts) != len(b.TextEmb) {
		t.Errorf("Texts = %v, TextEmb = %d Vektoren", b.Texts, len(b.TextEmb))
	}
	if b.Texts[0] != "person" {
		t.Errorf("Texts[0] = %q, Positive zuerst", b.Texts[0])
	}
}

func TestPreprocessBatchPromptFree(t *testing.T) {
	tr := NewTrainer(Options{Mode: ModePromptFree}, &fakeBackend{}, &fakeEncoder{})

	b := Batch{Texts: []string{"person"}, TextEmb: [][]float32{{1, 0}}}
	if err := tr.PreprocessBatch(&b); err != nil {
		t.Fatal(err)
	}
	if b.Texts != nil || b.TextEmb != nil {
		t.Error("prompt-freie Batches duerfen keine Texte tragen")
	}
}

func TestPreprocessBatchVisualPrompt(t *testing.T) {
	tr := NewTrainer(Options{Mode: ModeVisualPrompt}, &fakeBackend{}, &fakeEncoder{})

	if err := tr.PreprocessBatch(&Batch{Images: []string{"a.png"}}); err == nil {
		t.Error("Visual-Prompt-Batch ohne Visuals sollte fehlschlagen")
	}
}
