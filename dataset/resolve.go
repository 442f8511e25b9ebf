// resolve.go - Aufloesung einer Daten-Spezifikation
//
// Dieses Modul enthaelt:
// - Entry/Resolved: Aufgeloeste Quellen eines Trainings-Runs
// - ResolveDataSpec: Prueft die Spezifikation und loest alle
//   Descriptoren auf, bevor irgendeine Quelle gebaut wird
//
// Die Pruefungen sind fail-fast: fehlende Splits und mehr als ein
// Validierungs-Datensatz brechen sofort ab, ohne Datei-I/O auf den
// Quellen selbst.
package dataset

import (
	"fmt"
	"log/slog"
	"strings"
)

// Entry ist eine aufgeloeste Quelle. JSONFile != "" kennzeichnet eine
// Grounding-Quelle, sonst verweist Desc auf den Detection-Descriptor.
type Entry struct {
	ImgPath  string
	JSONFile string
	Desc     *Descriptor
}

// Resolved ist das Ergebnis der Spezifikations-Aufloesung
type Resolved struct {
	// Train sind die Trainingsquellen in Spezifikationsreihenfolge,
	// Detection vor Grounding
	Train []Entry

	// Val ist die einzige Validierungsquelle
	Val Entry

	// ValGrounding sind optionale Grounding-Quellen des val-Splits.
	// Validiert wird weiterhin nur gegen Val; die Eintraege stehen
	// fuer Kategorien-Aggregation zur Verfuegung.
	ValGrounding []Entry

	// ValSplit ist "val" oder "minival"
	ValSplit string

	// NC und Names stammen aus dem Validierungs-Descriptor
	NC    int
	Names []string
}

// ResolveDataSpec laedt eine Daten-Spezifikation und loest alle
// Descriptoren auf. Es muss genau ein Validierungs-Datensatz
// deklariert sein.
func ResolveDataSpec(path string) (*Resolved, error) {
	spec, err := LoadSpec(path)
	if err != nil {
		return nil, err
	}
	return ResolveSpec(spec)
}

// ResolveSpec prueft eine bereits geladene Spezifikation
func ResolveSpec(spec *Spec) (*Resolved, error) {
	if spec.Train == nil || spec.Val == nil {
		return nil, fmt.Errorf("data spec must define both train and val splits")
	}
	if n := len(spec.Val.Detection); n != 1 {
		return nil, fmt.Errorf("data spec must define exactly one val dataset, got %d", n)
	}

	valDesc, err := LoadDescriptor(spec.Val.Detection[0])
	if err != nil {
		return nil, err
	}

	r := &Resolved{
		ValSplit: "val",
		NC:       valDesc.NC,
		Names:    valDesc.Names,
	}

	// LVIS wird gegen den reduzierten minival-Split validiert
	if strings.Contains(strings.ToLower(spec.Val.Detection[0]), "lvis") && valDesc.Minival != "" {
		r.ValSplit = "minival"
		r.Val = Entry{ImgPath: valDesc.Minival, Desc: valDesc}
	} else {
		r.Val = Entry{ImgPath: valDesc.Val, Desc: valDesc}
	}

	for _, p := range spec.Train.Detection {
		desc, err := LoadDescriptor(p)
		if err != nil {
			return nil, err
		}
		r.Train = append(r.Train, Entry{ImgPath: desc.Train, Desc: desc})
	}

	for _, g := range spec.Train.Grounding {
		r.Train = append(r.Train, Entry{ImgPath: g.ImgPath, JSONFile: g.JSONFile})
	}

	for _, g := range spec.Val.Grounding {
		r.ValGrounding = append(r.ValGrounding, Entry{ImgPath: g.ImgPath, JSONFile: g.JSONFile})
	}

	if len(r.Train) == 0 {
		return nil, fmt.Errorf("data spec declares no train sources")
	}

	slog.Info("resolved data spec", "train_sources", len(r.Train), "val_split", r.ValSplit, "nc", r.NC)
	return r, nil
}

// Build erstellt die Quelle eines Eintrags
func (e Entry) Build() (Dataset, error) {
	if e.JSONFile != "" {
		return BuildGrounding(GroundingSpec{ImgPath: e.ImgPath, JSONFile: e.JSONFile})
	}
	return BuildDetection(e.ImgPath, e.Desc)
}
