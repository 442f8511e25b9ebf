// cmd_train.go - Training Command
// Hauptfunktionen: TrainHandler
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ovdet/ovdet/api"
	"github.com/ovdet/ovdet/encoder"
	"github.com/ovdet/ovdet/envconfig"
	"github.com/ovdet/ovdet/store"
	"github.com/ovdet/ovdet/train"
)

// TrainHandler - Fuehrt einen Trainings-Run aus
func TrainHandler(cmd *cobra.Command, args []string) error {
	modeName, _ := cmd.Flags().GetString("mode")
	mode, err := train.ParseMode(modeName)
	if err != nil {
		return err
	}

	data, _ := cmd.Flags().GetString("data")
	if data == "" {
		return fmt.Errorf("--data is required")
	}

	pe, _ := cmd.Flags().GetString("pe")
	epochs, _ := cmd.Flags().GetInt("epochs")
	maxSamples, _ := cmd.Flags().GetInt("max-samples")
	seed, _ := cmd.Flags().GetInt64("seed")
	cacheDir, _ := cmd.Flags().GetString("cache")
	out, _ := cmd.Flags().GetString("out")

	st, err := store.New(envconfig.Runs())
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := st.CreateRun(mode.String(), args[0], data)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "run %s (%s)\n", run.ID, mode)

	if out == "" {
		out = filepath.Join(envconfig.Runs(), run.ID, "detector.gguf")
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}

	enc, err := encoder.RemoteFromEnvironment()
	if err != nil {
		return err
	}

	trainer := train.NewTrainer(train.Options{
		Mode:       mode,
		Data:       data,
		Model:      args[0],
		PE:         pe,
		Epochs:     epochs,
		MaxSamples: maxSamples,
		Seed:       seed,
		CacheDir:   cacheDir,
		OnEpoch: func(epoch int, m train.Metrics) {
			_ = st.AppendMetric(run.ID, api.RunMetric{
				Epoch:   epoch,
				BoxLoss: m.BoxLoss,
				ClsLoss: m.ClsLoss,
				DFLLoss: m.DFLLoss,
				MAP50:   m.MAP50,
				MAP5095: m.MAP5095,
			})
		},
	}, train.RemoteBackendFromEnvironment(mode, out), enc)

	fail := func(err error) error {
		_ = st.SetStatus(run.ID, store.StatusFailed)
		return err
	}

	if err := trainer.Setup(cmd.Context()); err != nil {
		return fail(err)
	}
	if err := st.SetStatus(run.ID, store.StatusRunning); err != nil {
		return err
	}

	if _, err := trainer.Train(cmd.Context()); err != nil {
		return fail(err)
	}

	final, err := trainer.FinalEval(cmd.Context())
	if err != nil {
		return fail(err)
	}

	if err := st.SetFinal(run.ID, final.MAP50, final.MAP5095); err != nil {
		return err
	}
	if err := st.SetStatus(run.ID, store.StatusCompleted); err != nil {
		return err
	}

	if err := trainer.Detector().Save(out); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "mAP50 %.3f  mAP50-95 %.3f\n", final.MAP50, final.MAP5095)
	fmt.Println(out)
	return nil
}

// newTrainCmd - Erstellt den train Command
func newTrainCmd() *cobra.Command {
	trainCmd := &cobra.Command{
		Use:   "train MODEL",
		Short: "Train a detector checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE:  TrainHandler,
	}

	trainCmd.Flags().String("mode", "finetune", "Training mode (finetune, linear-probe, scratch, prompt-free, visual-prompt)")
	trainCmd.Flags().String("data", "", "Path to the data spec YAML")
	trainCmd.Flags().String("pe", "", "Path to precomputed class embeddings (linear-probe)")
	trainCmd.Flags().Int("epochs", 10, "Number of training epochs")
	trainCmd.Flags().Int("max-samples", 80, "Text samples per batch")
	trainCmd.Flags().Int64("seed", 0, "Random seed for text sampling")
	trainCmd.Flags().String("cache", "", "Embedding cache directory (default: next to the training images)")
	trainCmd.Flags().String("out", "", "Output checkpoint path")

	return trainCmd
}
