// descriptor.go - Descriptor eines einzelnen Detection-Datensatzes
//
// Dieses Modul enthaelt:
// - Descriptor: Split-Pfade, Label-Anzahl und -Namen eines Datensatzes
// - LoadDescriptor: Laedt und prueft eine Descriptor-YAML
//
// Entspricht der ueblichen Datensatz-YAML mit path/train/val/minival,
// nc und names. Relative Split-Pfade werden gegen path aufgeloest.
package dataset

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Descriptor beschreibt einen Detection-Datensatz
type Descriptor struct {
	// Path ist das Wurzelverzeichnis des Datensatzes
	Path string `yaml:"path"`

	// Train/Val sind die Split-Verzeichnisse (relativ zu Path erlaubt)
	Train string `yaml:"train"`
	Val   string `yaml:"val"`

	// Minival ist der reduzierte Validierungssplit (LVIS-artig), optional
	Minival string `yaml:"minival"`

	// NC ist die Anzahl der Kategorien
	NC int `yaml:"nc"`

	// Names sind die Kategorienamen, Index == Klassen-ID
	Names []string `yaml:"names"`
}

// LoadDescriptor laedt eine Descriptor-YAML und loest Split-Pfade auf
func LoadDescriptor(path string) (*Descriptor, error) {
	bts, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var d Descriptor
	if err := yaml.Unmarshal(bts, &d); err != nil {
		return nil, fmt.Errorf("parse dataset descriptor %s: %w", path, err)
	}

	if d.NC == 0 && len(d.Names) > 0 {
		d.NC = len(d.Names)
	}
	if len(d.Names) > 0 && d.NC != len(d.Names) {
		return nil, fmt.Errorf("dataset %s declares nc=%d but %d names", path, d.NC, len(d.Names))
	}

	if d.Path == "" {
		d.Path = filepath.Dir(path)
	}

	d.Train = joinIfRelative(d.Path, d.Train)
	d.Val = joinIfRelative(d.Path, d.Val)
	if d.Minival != "" {
		d.Minival = joinIfRelative(d.Path, d.Minival)
	}

	return &d, nil
}

// joinIfRelative loest einen relativen Pfad gegen root auf
func joinIfRelative(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
