// Package encoder - Text-Encoding fuer Label-Embeddings.
//
// Dieses Modul enthaelt:
// - TextEncoder: Interface fuer Batch-Encoding von Texten
// - Remote: Implementierung ueber einen /api/embed Dienst
// - Normalize/Similarity: Vektor-Hilfsfunktionen
package encoder

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ovdet/ovdet/api"
	"github.com/ovdet/ovdet/envconfig"
)

// TextEncoder kodiert einen Batch von Texten zu Embedding-Vektoren.
// Die Rueckgabe enthaelt genau einen Vektor pro Eingabetext, alle mit
// gleicher Dimension.
type TextEncoder interface {
	EmbedText(ctx context.Context, texts []string) ([][]float32, error)
}

// Remote spricht einen externen Embedding-Dienst an
type Remote struct {
	client *api.Client
	model  string
}

// NewRemote erstellt einen Remote-Encoder
func NewRemote(client *api.Client, model string) *Remote {
	return &Remote{client: client, model: model}
}

// RemoteFromEnvironment erstellt einen Remote-Encoder aus OVDET_ENCODER_HOST
// und OVDET_ENCODER_MODEL
func RemoteFromEnvironment() (*Remote, error) {
	client, err := api.EncoderClientFromEnvironment()
	if err != nil {
		return nil, err
	}

	return NewRemote(client, envconfig.EncoderModel()), nil
}

// EmbedText kodiert Texte ueber den Dienst
func (r *Remote) EmbedText(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := r.client.Embed(ctx, &api.EmbedRequest{
		Model: r.model,
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embed: got %d embeddings for %d texts", len(resp.Embeddings), len(texts))
	}

	return resp.Embeddings, nil
}

// Normalize normalisiert einen Vektor in-place auf L2-Norm 1
func Normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}

	norm := math.Sqrt(sum)
	if norm == 0 {
		return
	}

	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
}

// Similarity berechnet die Cosine Similarity zweier Vektoren
func Similarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	fa := make([]float64, len(a))
	fb := make([]float64, len(b))
	for i := range a {
		fa[i] = float64(a[i])
		fb[i] = float64(b[i])
	}

	na := floats.Norm(fa, 2)
	nb := floats.Norm(fb, 2)
	if na == 0 || nb == 0 {
		return 0
	}

	return floats.Dot(fa, fb) / (na * nb)
}
