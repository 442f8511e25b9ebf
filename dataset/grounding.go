// grounding.go - Grounding-Quellen mit Phrasen-Annotationen
//
// Dieses Modul enthaelt:
// - GroundingDataset: Bildverzeichnis plus COCO-artige JSON-Annotation
// - BuildGrounding: Laedt Annotationen und zaehlt Phrasenhaeufigkeiten
//
// Kategorien sind hier freie Phrasen aus den Captions, keine feste
// Klassenliste. Bilder ohne lesbaren Header werden verworfen.
package dataset

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ovdet/ovdet/encoder"
)

// groundingAnnotation ist das JSON-Schema der Annotationsdatei
type groundingAnnotation struct {
	Images []struct {
		ID       int    `json:"id"`
		FileName string `json:"file_name"`
	} `json:"images"`
	Annotations []struct {
		ImageID int       `json:"image_id"`
		BBox    []float64 `json:"bbox"`
		Caption string    `json:"caption"`
	} `json:"annotations"`
}

// GroundingDataset ist eine Quelle mit Phrasen-Annotationen
type GroundingDataset struct {
	imgPath    string
	images     []string
	freq       map[string]int
	transforms []Transform
}

// BuildGrounding laedt eine Grounding-Quelle. Bilder, deren Header sich
// nicht dekodieren laesst, werden mit Warnung uebersprungen.
func BuildGrounding(spec GroundingSpec) (*GroundingDataset, error) {
	bts, err := os.ReadFile(spec.JSONFile)
	if err != nil {
		return nil, fmt.Errorf("read grounding annotations %s: %w", spec.JSONFile, err)
	}

	var ann groundingAnnotation
	if err := json.Unmarshal(bts, &ann); err != nil {
		return nil, fmt.Errorf("parse grounding annotations %s: %w", spec.JSONFile, err)
	}

	g := &GroundingDataset{
		imgPath: spec.ImgPath,
		freq:    make(map[string]int),
	}

	kept := make(map[int]bool, len(ann.Images))
	for _, img := range ann.Images {
		p := filepath.Join(spec.ImgPath, img.FileName)
		if _, _, err := VerifyImage(p); err != nil {
			slog.Warn("skipping unreadable grounding image", "path", p, "error", err)
			continue
		}
		kept[img.ID] = true
		g.images = append(g.images, p)
	}

	for _, a := range ann.Annotations {
		if !kept[a.ImageID] || a.Caption == "" {
			continue
		}
		g.freq[encoder.Clean(a.Caption)]++
	}

	slog.Debug("built grounding dataset", "path", spec.ImgPath, "images", len(g.images), "phrases", len(g.freq))
	return g, nil
}

func (g *GroundingDataset) Len() int { return len(g.images) }

func (g *GroundingDataset) ImgPath() string { return g.imgPath }

func (g *GroundingDataset) Transforms() []Transform { return g.transforms }

func (g *GroundingDataset) CategoryNames() []string {
	names := make([]string, 0, len(g.freq))
	for name := range g.freq {
		names = append(names, name)
	}
	return names
}

func (g *GroundingDataset) CategoryFreq() map[string]int {
	return g.freq
}

// AppendTransform haengt eine Transformation an die Kette an
func (g *GroundingDataset) AppendTransform(t Transform) {
	g.transforms = append(g.transforms, t)
}
