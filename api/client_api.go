// client_api.go - API-Methoden des Clients
// Hauptfunktionen: Embed, Version, ListRuns, ShowRun, DeleteRun,
// TrainEpoch, Validate, Heartbeat
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Embed kodiert Eingabetexte zu Embedding-Vektoren
func (c *Client) Embed(ctx context.Context, req *EmbedRequest) (*EmbedResponse, error) {
	var resp EmbedResponse
	if err := c.do(ctx, http.MethodPost, "/api/embed", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Version gibt die Server-Version zurueck
func (c *Client) Version(ctx context.Context) (string, error) {
	var resp VersionResponse
	if err := c.do(ctx, http.MethodGet, "/api/version", nil, &resp); err != nil {
		return "", err
	}
	return resp.Version, nil
}

// ListRuns listet alle Trainings-Runs
func (c *Client) ListRuns(ctx context.Context) (*ListRunsResponse, error) {
	var resp ListRunsResponse
	if err := c.do(ctx, http.MethodGet, "/api/runs", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ShowRun gibt einen Run mit seinen Metriken zurueck
func (c *Client) ShowRun(ctx context.Context, id string) (*ShowRunResponse, error) {
	var resp ShowRunResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/runs/%s", id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteRun loescht einen Run
func (c *Client) DeleteRun(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/runs/%s", id), nil, nil)
}

// TrainEpoch laesst die Trainings-Engine eine Epoche ausfuehren
func (c *Client) TrainEpoch(ctx context.Context, req *TrainEpochRequest) (*EngineMetrics, error) {
	var resp EngineMetrics
	if err := c.do(ctx, http.MethodPost, "/api/train/epoch", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Validate laesst die Trainings-Engine validieren
func (c *Client) Validate(ctx context.Context, req *ValidateRequest) (*EngineMetrics, error) {
	var resp EngineMetrics
	if err := c.do(ctx, http.MethodPost, "/api/validate", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Heartbeat prueft, ob der Server erreichbar ist
func (c *Client) Heartbeat(ctx context.Context) error {
	if err := c.do(ctx, http.MethodHead, "/", nil, nil); err != nil {
		var serr StatusError
		if errors.As(err, &serr) {
			return nil
		}
		return fmt.Errorf("could not connect to ovdet server at %s: %w", c.base, err)
	}
	return nil
}
