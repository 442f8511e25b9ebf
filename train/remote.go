// remote.go - Backend gegen eine externe Trainings-Engine
//
// Dieses Modul enthaelt:
// - RemoteBackend: Delegiert Epochen und Validierung per HTTP
//
// Die Engine arbeitet auf einem geteilten Checkpoint-Pfad: vor jedem
// Aufruf wird der aktuelle Detektor dorthin synchronisiert, nach einer
// Epoche wird er zurueckgelesen.
package train

import (
	"context"
	"net/http"

	"github.com/ovdet/ovdet/api"
	"github.com/ovdet/ovdet/dataset"
	"github.com/ovdet/ovdet/envconfig"
	"github.com/ovdet/ovdet/model"
)

// RemoteBackend fuehrt Trainings-Schritte ueber die Engine-API aus
type RemoteBackend struct {
	client *api.Client
	mode   Mode

	// checkpoint ist der mit der Engine geteilte Checkpoint-Pfad
	checkpoint string
}

// NewRemoteBackend erstellt ein Backend gegen eine Engine
func NewRemoteBackend(client *api.Client, mode Mode, checkpoint string) *RemoteBackend {
	return &RemoteBackend{client: client, mode: mode, checkpoint: checkpoint}
}

// RemoteBackendFromEnvironment verbindet sich mit der Engine aus
// OVDET_ENGINE_HOST
func RemoteBackendFromEnvironment(mode Mode, checkpoint string) *RemoteBackend {
	return NewRemoteBackend(api.NewClient(envconfig.EngineHost(), http.DefaultClient), mode, checkpoint)
}

// TrainEpoch synchronisiert den Checkpoint, laesst die Engine eine
// Epoche rechnen und laedt den aktualisierten Stand zurueck
func (b *RemoteBackend) TrainEpoch(ctx context.Context, d *model.Detector, ds dataset.Dataset, epoch int) (Metrics, error) {
	if err := d.Save(b.checkpoint); err != nil {
		return Metrics{}, err
	}

	resp, err := b.client.TrainEpoch(ctx, &api.TrainEpochRequest{
		Mode:      b.mode.String(),
		Epoch:     epoch,
		Model:     b.checkpoint,
		Images:    ds.Len(),
		ImgPath:   ds.ImgPath(),
		Trainable: d.TrainableParams(),
	})
	if err != nil {
		return Metrics{}, err
	}

	updated, err := model.LoadDetector(b.checkpoint)
	if err != nil {
		return Metrics{}, err
	}
	*d = *updated

	return metricsFrom(resp), nil
}

// Validate laesst die Engine gegen den gegebenen Split validieren
func (b *RemoteBackend) Validate(ctx context.Context, d *model.Detector, ds dataset.Dataset) (Metrics, error) {
	if err := d.Save(b.checkpoint); err != nil {
		return Metrics{}, err
	}

	req := api.ValidateRequest{
		Mode:    b.mode.String(),
		Model:   b.checkpoint,
		Images:  ds.Len(),
		ImgPath: ds.ImgPath(),
	}
	if b.mode.usesText() {
		req.Names = d.Names()
	}

	resp, err := b.client.Validate(ctx, &req)
	if err != nil {
		return Metrics{}, err
	}
	return metricsFrom(resp), nil
}

func metricsFrom(m *api.EngineMetrics) Metrics {
	return Metrics{
		BoxLoss: m.BoxLoss,
		ClsLoss: m.ClsLoss,
		DFLLoss: m.DFLLoss,
		MAP50:   m.MAP50,
		MAP5095: m.MAP5095,
	}
}
