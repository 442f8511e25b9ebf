// types.go - Gemeinsame API-Typen
// Enthaelt: StatusError, VersionResponse, Run-Typen
package api

import "time"

// StatusError repraesentiert einen HTTP-Fehler der API
type StatusError struct {
	StatusCode   int    `json:"-"`
	Status       string `json:"status,omitempty"`
	ErrorMessage string `json:"error"`
}

func (e StatusError) Error() string {
	switch {
	case e.Status != "" && e.ErrorMessage != "":
		return e.Status + ": " + e.ErrorMessage
	case e.Status != "":
		return e.Status
	case e.ErrorMessage != "":
		return e.ErrorMessage
	default:
		return "something went wrong, please see the ovdet server logs for details"
	}
}

// VersionResponse ist die Antwort von [Client.Version]
type VersionResponse struct {
	Version string `json:"version"`
}

// Run beschreibt einen Trainings-Run
type Run struct {
	ID        string    `json:"id"`
	Mode      string    `json:"mode"`
	Model     string    `json:"model"`
	Data      string    `json:"data"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Finale Validierungs-Kennzahlen, gesetzt nach Abschluss
	FinalMAP50   float64 `json:"final_map50,omitempty"`
	FinalMAP5095 float64 `json:"final_map50_95,omitempty"`
}

// RunMetric ist ein Metrik-Eintrag eines Runs (eine Epoche)
type RunMetric struct {
	Epoch   int     `json:"epoch"`
	BoxLoss float64 `json:"box_loss"`
	ClsLoss float64 `json:"cls_loss"`
	DFLLoss float64 `json:"dfl_loss"`
	MAP50   float64 `json:"map50"`
	MAP5095 float64 `json:"map50_95"`
}

// ListRunsResponse ist die Antwort von [Client.ListRuns]
type ListRunsResponse struct {
	Runs []Run `json:"runs"`
}

// ShowRunResponse ist die Antwort von [Client.ShowRun]
type ShowRunResponse struct {
	Run     Run         `json:"run"`
	Metrics []RunMetric `json:"metrics"`
}
