// images.go - Bildformat-Pruefung fuer Datensatz-Quellen
//
// Dieses Modul enthaelt:
// - IsImage: Dateiendungs-Filter fuer unterstuetzte Formate
// - VerifyImage: Header-Dekodierung ohne das ganze Bild zu laden
package dataset

import (
	"image"
	"os"
	"path/filepath"
	"strings"

	// Format-Registrierung fuer image.DecodeConfig
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var imageExts = map[string]bool{
	".bmp":  true,
	".gif":  true,
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// IsImage prueft die Dateiendung gegen die unterstuetzten Formate
func IsImage(name string) bool {
	return imageExts[strings.ToLower(filepath.Ext(name))]
}

// VerifyImage dekodiert nur den Bild-Header und gibt Breite und Hoehe
// zurueck. Nicht lesbare oder unbekannte Formate ergeben einen Fehler.
func VerifyImage(path string) (width, height int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}
