// config.go - Daten-Spezifikation fuer Trainings-Runs
//
// Dieses Modul enthaelt:
// - Spec/SplitSpec/GroundingSpec: YAML-Struktur der Daten-Spezifikation
// - LoadSpec: Laedt und validiert eine Spezifikationsdatei
//
// Eine Spezifikation beschreibt pro Split eine Liste von Detection-
// Datensaetzen (jeweils eine eigene Descriptor-YAML) und optional
// Grounding-Datensaetze (Bildverzeichnis plus JSON-Annotation).
package dataset

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Spec ist die Wurzel einer Daten-Spezifikation
type Spec struct {
	Train *SplitSpec `yaml:"train"`
	Val   *SplitSpec `yaml:"val"`
}

// SplitSpec beschreibt die Quellen eines Splits
type SplitSpec struct {
	// Detection listet Pfade zu Descriptor-YAMLs
	Detection []string `yaml:"detection_data"`

	// Grounding listet Bild+Annotation Paare
	Grounding []GroundingSpec `yaml:"grounding_data"`
}

// GroundingSpec beschreibt eine Grounding-Quelle
type GroundingSpec struct {
	ImgPath  string `yaml:"img_path"`
	JSONFile string `yaml:"json_file"`
}

// LoadSpec laedt eine Daten-Spezifikation aus einer YAML-Datei
func LoadSpec(path string) (*Spec, error) {
	bts, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var s Spec
	if err := yaml.Unmarshal(bts, &s); err != nil {
		return nil, fmt.Errorf("parse data spec %s: %w", path, err)
	}

	return &s, nil
}
