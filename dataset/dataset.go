// dataset.go - Datensatz-Schnittstellen und Detection-Quellen
//
// Dieses Modul enthaelt:
// - Dataset: Minimale Schnittstelle einer Trainingsquelle
// - CategoryCounter: Optionale Faehigkeit fuer Kategorie-Statistiken
// - DetectionDataset: YOLO-artige Quelle (images/ + labels/*.txt)
//
// Quellen, die CategoryCounter nicht implementieren, werden bei der
// Frequenz-Aggregation stillschweigend uebersprungen.
package dataset

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Dataset ist eine einzelne Trainings- oder Validierungsquelle
type Dataset interface {
	// Len gibt die Anzahl der Bilder zurueck
	Len() int

	// ImgPath gibt das Bildverzeichnis der Quelle zurueck
	ImgPath() string

	// Transforms gibt die Transformationskette der Quelle zurueck
	Transforms() []Transform
}

// CategoryCounter ist eine optionale Faehigkeit von Quellen, die ihre
// Kategorienamen und -haeufigkeiten kennen
type CategoryCounter interface {
	CategoryNames() []string
	CategoryFreq() map[string]int
}

// DetectionDataset ist eine Detection-Quelle im YOLO-Layout: einem
// Bildverzeichnis steht ein paralleles labels/-Verzeichnis mit einer
// txt-Datei pro Bild gegenueber (Klassen-ID + Box pro Zeile).
type DetectionDataset struct {
	imgPath    string
	names      []string
	images     []string
	freq       map[string]int
	transforms []Transform
}

// BuildDetection liest eine Detection-Quelle ein und zaehlt die
// Kategoriehaeufigkeiten ueber alle Label-Dateien
func BuildDetection(imgPath string, desc *Descriptor) (*DetectionDataset, error) {
	entries, err := os.ReadDir(imgPath)
	if err != nil {
		return nil, fmt.Errorf("read image dir %s: %w", imgPath, err)
	}

	d := &DetectionDataset{
		imgPath: imgPath,
		names:   desc.Names,
		freq:    make(map[string]int),
	}

	labelDir := labelDirFor(imgPath)
	for _, entry := range entries {
		if entry.IsDir() || !IsImage(entry.Name()) {
			continue
		}
		d.images = append(d.images, filepath.Join(imgPath, entry.Name()))

		labelPath := filepath.Join(labelDir, strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))+".txt")
		if err := d.countLabels(labelPath); err != nil {
			return nil, err
		}
	}

	slog.Debug("built detection dataset", "path", imgPath, "images", len(d.images), "categories", len(d.freq))
	return d, nil
}

// countLabels zaehlt die Klassen-IDs einer YOLO Label-Datei
func (d *DetectionDataset) countLabels(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Hintergrundbild ohne Annotation
			return nil
		}
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		id, err := strconv.Atoi(fields[0])
		if err != nil || id < 0 || id >= len(d.names) {
			return fmt.Errorf("%s: invalid class id %q", path, fields[0])
		}
		d.freq[d.names[id]]++
	}
	return scanner.Err()
}

func (d *DetectionDataset) Len() int { return len(d.images) }

func (d *DetectionDataset) ImgPath() string { return d.imgPath }

func (d *DetectionDataset) Transforms() []Transform { return d.transforms }

// Images gibt die Bildpfade in Verzeichnisreihenfolge zurueck
func (d *DetectionDataset) Images() []string { return d.images }

func (d *DetectionDataset) CategoryNames() []string {
	return d.names
}

func (d *DetectionDataset) CategoryFreq() map[string]int {
	return d.freq
}

// AppendTransform haengt eine Transformation an die Kette an
func (d *DetectionDataset) AppendTransform(t Transform) {
	d.transforms = append(d.transforms, t)
}

// labelDirFor bildet images/... auf labels/... ab, Konvention des
// YOLO-Layouts. Ohne images-Segment wird ein labels-Geschwister genutzt.
func labelDirFor(imgPath string) string {
	if strings.Contains(imgPath, string(filepath.Separator)+"images"+string(filepath.Separator)) {
		return strings.Replace(imgPath, string(filepath.Separator)+"images"+string(filepath.Separator),
			string(filepath.Separator)+"labels"+string(filepath.Separator), 1)
	}
	if filepath.Base(imgPath) == "images" {
		return filepath.Join(filepath.Dir(imgPath), "labels")
	}
	return filepath.Join(filepath.Dir(imgPath), "labels", filepath.Base(imgPath))
}
