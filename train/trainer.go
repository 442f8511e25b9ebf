// trainer.go - Trainings-Orchestrierung
//
// Dieses Modul enthaelt:
// - Options/Metrics/Backend: Schnittstelle zur Trainings-Engine
// - Trainer: Setup, Epochenschleife und Validierung pro Variante
//
// Der Trainer bereitet Daten und Checkpoint vor und delegiert die
// eigentlichen Gradienten-Schritte an das Backend. Die Varianten
// unterscheiden sich ausschliesslich in der Vorbereitung und der
// Validierungsauswahl, nicht in der Epochenschleife.
package train

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/ovdet/ovdet/dataset"
	"github.com/ovdet/ovdet/encoder"
	"github.com/ovdet/ovdet/envconfig"
	"github.com/ovdet/ovdet/model"
)

// MaxPromptClasses ist die Obergrenze gleichzeitig trainierter
// Text-Prompt-Klassen
const MaxPromptClasses = 80

// Metrics sind die Kennzahlen einer Epoche beziehungsweise Validierung
type Metrics struct {
	BoxLoss float64
	ClsLoss float64
	DFLLoss float64
	MAP50   float64
	MAP5095 float64
}

// Backend fuehrt Trainings- und Validierungs-Schritte aus
type Backend interface {
	TrainEpoch(ctx context.Context, d *model.Detector, ds dataset.Dataset, epoch int) (Metrics, error)
	Validate(ctx context.Context, d *model.Detector, ds dataset.Dataset) (Metrics, error)
}

// Options konfiguriert einen Trainings-Run
type Options struct {
	Mode Mode

	// Data ist der Pfad zur Daten-Spezifikation
	Data string

	// Model ist der Pfad zum Detektor-Checkpoint
	Model string

	// PE ist der Pfad zu vorberechneten Klassen-Embeddings
	// (nur lineares Probing)
	PE string

	Epochs     int
	MaxSamples int
	Seed       int64

	// CacheDir ueberschreibt das Verzeichnis der Embedding-Caches;
	// leer bedeutet neben den Trainingsbildern
	CacheDir string

	// OnEpoch wird nach jeder Epoche mit den Kennzahlen aufgerufen
	OnEpoch func(epoch int, m Metrics)
}

// Trainer orchestriert einen Trainings-Run
type Trainer struct {
	opts    Options
	backend Backend
	enc     encoder.TextEncoder

	resolved *dataset.Resolved
	detector *model.Detector
	names    []string

	trainSet dataset.Dataset
	valSet   dataset.Dataset
	pos      *encoder.Table
	neg      *encoder.Table
	sampler  *dataset.TextSample
}

// NewTrainer erstellt einen Trainer
func NewTrainer(opts Options, backend Backend, enc encoder.TextEncoder) *Trainer {
	if opts.Epochs <= 0 {
		opts.Epochs = 10
	}
	if opts.MaxSamples <= 0 {
		opts.MaxSamples = 80
	}
	return &Trainer{opts: opts, backend: backend, enc: enc}
}

// Detector gibt den vorbereiteten Checkpoint zurueck
func (t *Trainer) Detector() *model.Detector {
	return t.detector
}

// Names gibt die effektiven Klassennamen des Runs zurueck
func (t *Trainer) Names() []string {
	return t.names
}

// TrainDataset gibt die aufgebaute Trainingsquelle zurueck
func (t *Trainer) TrainDataset() dataset.Dataset {
	return t.trainSet
}

// Setup loest die Daten-Spezifikation auf, bereitet den Checkpoint vor
// und baut die Datensaetze. Muss vor Train aufgerufen werden.
func (t *Trainer) Setup(ctx context.Context) error {
	r, err := dataset.ResolveDataSpec(t.opts.Data)
	if err != nil {
		return err
	}
	t.resolved = r

	t.names = r.Names
	if (t.opts.Mode == ModeFineTune || t.opts.Mode == ModeScratch) && len(t.names) > MaxPromptClasses {
		// Text-Prompt-Training deckelt die gleichzeitig trainierten Klassen
		slog.Info("capping prompt classes", "nc", len(t.names), "cap", MaxPromptClasses)
		t.names = t.names[:MaxPromptClasses]
	}

	if err := t.setupModel(); err != nil {
		return err
	}
	return t.buildDatasets(ctx)
}

// setupModel laedt den Checkpoint und fuehrt die Varianten-Chirurgie aus
func (t *Trainer) setupModel() error {
	d, err := model.LoadDetector(t.opts.Model)
	if err != nil {
		return err
	}

	switch t.opts.Mode {
	case ModeLinearProbe:
		if t.opts.PE == "" {
			return fmt.Errorf("linear probing requires precomputed class embeddings")
		}
		pe, err := model.LoadPE(t.opts.PE)
		if err != nil {
			return err
		}

		d.RemoveVisualPrompt()
		if err := d.SetClasses(t.names, pe); err != nil {
			return err
		}
		if err := d.Fuse(); err != nil {
			return err
		}
		if _, err := d.ReinitHeadConv(); err != nil {
			return err
		}

	case ModePromptFree:
		d.RemoveVisualPrompt()

	case ModeVisualPrompt:
		if !d.HasVisualPrompt() {
			return fmt.Errorf("checkpoint %s has no visual prompt branch", t.opts.Model)
		}
	}

	t.detector = d
	return nil
}

// buildDatasets baut Trainings- und Validierungsquellen auf
func (t *Trainer) buildDatasets(ctx context.Context) error {
	sources := make([]dataset.Dataset, 0, len(t.resolved.Train))
	for _, entry := range t.resolved.Train {
		ds, err := entry.Build()
		if err != nil {
			return err
		}

		if t.opts.Mode.usesText() {
			if a, ok := ds.(interface{ AppendTransform(dataset.Transform) }); ok {
				a.AppendTransform(dataset.NewTextSample(t.opts.MaxSamples, t.opts.Seed))
			}
		}
		sources = append(sources, ds)
	}

	if t.opts.Mode.usesText() {
		if err := t.generateEmbeddings(ctx, sources); err != nil {
			return err
		}
	}

	t.trainSet = dataset.Concat(sources)

	val, err := t.resolved.Val.Build()
	if err != nil {
		return err
	}
	t.valSet = val

	slog.Info("datasets ready", "mode", t.opts.Mode, "train_images", t.trainSet.Len(), "val_images", val.Len())
	return nil
}

// generateEmbeddings erstellt Positiv- und Negativ-Tabellen und reicht
// sie an alle Quellen durch. Beide Tabellen werden neben den
// Trainingsbildern (oder im konfigurierten Cache-Verzeichnis)
// memoisiert.
func (t *Trainer) generateEmbeddings(ctx context.Context, sources []dataset.Dataset) error {
	names, freq := dataset.AggregateCategories(sources)
	if t.opts.Mode.fromScratch() && len(names) == 0 {
		return fmt.Errorf("no category statistics in any train source")
	}
	if !t.opts.Mode.fromScratch() {
		// Feintuning und Probing binden die Validierungs-Klassen
		names = t.names
	}

	cacheDir := t.opts.CacheDir
	if cacheDir == "" && len(sources) > 0 {
		cacheDir = filepath.Dir(sources[0].ImgPath())
	}

	batch := int(envconfig.EncodeBatch())
	pos, err := encoder.Generate(ctx, t.enc, names, batch, filepath.Join(cacheDir, "pos_embeddings.gguf"))
	if err != nil {
		return err
	}
	t.pos = pos

	if negatives := dataset.NegativeLabels(freq, dataset.NegativeThreshold); len(negatives) > 0 {
		neg, err := encoder.Generate(ctx, t.enc, negatives, batch, filepath.Join(cacheDir, "neg_embeddings.gguf"))
		if err != nil {
			return err
		}
		t.neg = neg
	}

	for _, ds := range sources {
		dataset.InjectEmbeddings(ds, t.pos, t.neg)
	}

	t.sampler = dataset.NewTextSample(t.opts.MaxSamples, t.opts.Seed)
	t.sampler.SetEmbeddings(t.pos, t.neg)
	return nil
}

// Train fuehrt die Epochenschleife aus und validiert am Ende
func (t *Trainer) Train(ctx context.Context) (Metrics, error) {
	if t.detector == nil {
		return Metrics{}, fmt.Errorf("trainer is not set up")
	}

	for epoch := 1; epoch <= t.opts.Epochs; epoch++ {
		m, err := t.backend.TrainEpoch(ctx, t.detector, t.trainSet, epoch)
		if err != nil {
			return Metrics{}, fmt.Errorf("epoch %d: %w", epoch, err)
		}
		slog.Info("epoch complete", "epoch", epoch, "box", m.BoxLoss, "cls", m.ClsLoss, "dfl", m.DFLLoss)

		if t.opts.OnEpoch != nil {
			t.opts.OnEpoch(epoch, m)
		}
	}

	return t.Validate(ctx)
}

// Validate validiert gegen den Validierungssplit. Text-Varianten
// binden vorher die Klassennamen an ihre Embeddings; die prompt-freie
// Variante validiert als einfacher Detektor.
func (t *Trainer) Validate(ctx context.Context) (Metrics, error) {
	if t.opts.Mode.usesText() && t.opts.Mode != ModeLinearProbe {
		if err := t.bindValClasses(ctx); err != nil {
			return Metrics{}, err
		}
	}
	return t.backend.Validate(ctx, t.detector, t.valSet)
}

// FinalEval validiert abschliessend. Der Split wird aus dem
// Validierungs-Descriptor neu bestimmt: LVIS-artige Daten behalten
// minival, alle anderen den vollen val-Split.
func (t *Trainer) FinalEval(ctx context.Context) (Metrics, error) {
	entry := dataset.Entry{ImgPath: t.resolved.Val.Desc.Val, Desc: t.resolved.Val.Desc}
	if t.resolved.ValSplit == "minival" {
		entry.ImgPath = t.resolved.Val.Desc.Minival
	}

	final, err := entry.Build()
	if err != nil {
		return Metrics{}, err
	}
	t.valSet = final
	slog.Info("final eval", "split", t.resolved.ValSplit, "images", final.Len())

	return t.Validate(ctx)
}

// bindValClasses bindet die Validierungs-Klassen an Text-Embeddings.
// Deckt die memoisierte Tabelle nicht alle Klassen ab, werden sie
// frisch kodiert.
func (t *Trainer) bindValClasses(ctx context.Context) error {
	table := t.pos
	if !covers(table, t.names) {
		var err error
		table, err = encoder.Generate(ctx, t.enc, t.names, int(envconfig.EncodeBatch()), "")
		if err != nil {
			return err
		}
	}
	return t.detector.SetClasses(t.names, table)
}

// covers prueft, ob die Tabelle alle Namen enthaelt
func covers(table *encoder.Table, names []string) bool {
	if table == nil {
		return false
	}
	for _, name := range names {
		if _, ok := table.Get(name); !ok {
			if _, ok := table.Get(encoder.Clean(name)); !ok {
				return false
			}
		}
	}
	return true
}
