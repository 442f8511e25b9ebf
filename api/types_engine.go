// types_engine.go - Typen der Trainings-Engine-Schnittstelle
// Enthaelt: TrainEpochRequest, ValidateRequest, EngineMetrics
package api

// TrainEpochRequest beschreibt eine Trainings-Epoche fuer die Engine
type TrainEpochRequest struct {
	Mode  string `json:"mode"`
	Epoch int    `json:"epoch"`

	// Model ist der Pfad zum Detektor-Checkpoint
	Model string `json:"model"`

	// Images ist die Anzahl der Trainingsbilder
	Images int `json:"images"`

	// ImgPath ist das Bildverzeichnis der ersten Quelle
	ImgPath string `json:"img_path"`

	// Trainable listet die trainierbaren Gewichte
	Trainable []string `json:"trainable,omitempty"`
}

// ValidateRequest beschreibt einen Validierungs-Lauf fuer die Engine
type ValidateRequest struct {
	Mode    string `json:"mode"`
	Model   string `json:"model"`
	Images  int    `json:"images"`
	ImgPath string `json:"img_path"`

	// Names sind die gebundenen Klassennamen; leer bei prompt-freier
	// Validierung
	Names []string `json:"names,omitempty"`
}

// EngineMetrics sind die Kennzahlen einer Epoche oder Validierung
type EngineMetrics struct {
	BoxLoss float64 `json:"box_loss"`
	ClsLoss float64 `json:"cls_loss"`
	DFLLoss float64 `json:"dfl_loss"`
	MAP50   float64 `json:"map50"`
	MAP5095 float64 `json:"map50_95"`
}
