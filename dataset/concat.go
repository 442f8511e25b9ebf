// concat.go - Verkettung mehrerer Trainingsquellen
//
// Dieses Modul enthaelt:
// - ConcatDataset: Reihenfolge-erhaltende Verkettung
// - Concat: Verkettet nur bei mehr als einer Quelle
package dataset

import "github.com/ovdet/ovdet/encoder"

// ConcatDataset verkettet mehrere Quellen in gegebener Reihenfolge
type ConcatDataset struct {
	sources []Dataset
}

// Concat gibt bei genau einer Quelle diese unveraendert zurueck,
// ansonsten eine Verkettung in Eingabereihenfolge
func Concat(sources []Dataset) Dataset {
	if len(sources) == 1 {
		return sources[0]
	}
	return &ConcatDataset{sources: sources}
}

// Len ist die Summe der Quell-Laengen
func (c *ConcatDataset) Len() int {
	var n int
	for _, s := range c.sources {
		n += s.Len()
	}
	return n
}

// ImgPath gibt das Bildverzeichnis der ersten Quelle zurueck
func (c *ConcatDataset) ImgPath() string {
	if len(c.sources) == 0 {
		return ""
	}
	return c.sources[0].ImgPath()
}

// Transforms gibt die Kette der ersten Quelle zurueck
func (c *ConcatDataset) Transforms() []Transform {
	if len(c.sources) == 0 {
		return nil
	}
	return c.sources[0].Transforms()
}

// Sources gibt die Quellen in Verkettungsreihenfolge zurueck
func (c *ConcatDataset) Sources() []Dataset {
	return c.sources
}

// SetEmbeddings reicht die Tabellen an alle Quellen durch, deren
// Transformationen die Faehigkeit besitzen
func (c *ConcatDataset) SetEmbeddings(pos, neg *encoder.Table) {
	for _, s := range c.sources {
		InjectEmbeddings(s, pos, neg)
	}
}
