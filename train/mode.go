// mode.go - Trainings-Varianten
//
// Dieses Modul enthaelt:
// - Mode: Aufzaehlung der Trainings-Varianten
// - ParseMode: CLI-Parsing mit Fehlermeldung
//
// Die Varianten unterscheiden sich in Modell-Vorbereitung, Daten-
// Aufbau und Validierung:
//   - finetune:      Text-Prompt-Training ab vortrainiertem Checkpoint
//   - linear-probe:  Nur der letzte Klassifikations-Conv lernt
//   - scratch:       Multi-Source-Training ohne Vortraining
//   - prompt-free:   Ohne Text-Prompts, einfache Detektions-Validierung
//   - visual-prompt: Mit visuellen Prompts im Batch
package train

import "fmt"

// Mode ist eine Trainings-Variante
type Mode int

const (
	ModeFineTune Mode = iota
	ModeLinearProbe
	ModeScratch
	ModePromptFree
	ModeVisualPrompt
)

func (m Mode) String() string {
	switch m {
	case ModeFineTune:
		return "finetune"
	case ModeLinearProbe:
		return "linear-probe"
	case ModeScratch:
		return "scratch"
	case ModePromptFree:
		return "prompt-free"
	case ModeVisualPrompt:
		return "visual-prompt"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode parst einen Varianten-Namen
func ParseMode(s string) (Mode, error) {
	for _, m := range []Mode{ModeFineTune, ModeLinearProbe, ModeScratch, ModePromptFree, ModeVisualPrompt} {
		if s == m.String() {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown training mode %q", s)
}

// usesText meldet, ob die Variante Text-Embeddings im Batch traegt
func (m Mode) usesText() bool {
	return m != ModePromptFree
}

// fromScratch meldet, ob die Variante den Multi-Source-Datenaufbau
// mit Embedding-Injektion nutzt
func (m Mode) fromScratch() bool {
	switch m {
	case ModeScratch, ModePromptFree, ModeVisualPrompt:
		return true
	}
	return false
}
