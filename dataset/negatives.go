// negatives.go - Kategorie-Aggregation und Negativ-Label-Auswahl
//
// Dieses Modul enthaelt:
// - AggregateCategories: Namen und Haeufigkeiten ueber alle Quellen
// - NegativeLabels: Auswahl haeufiger Labels als Negativ-Kandidaten
package dataset

import (
	"log/slog"
	"sort"

	"github.com/emirpasic/gods/v2/sets/treeset"
)

// NegativeThreshold ist die Mindesthaeufigkeit, ab der ein Label als
// Negativ-Kandidat gilt
const NegativeThreshold = 100

// AggregateCategories sammelt Kategorienamen und summiert die
// Haeufigkeiten ueber alle Quellen. Quellen ohne CategoryCounter werden
// uebersprungen. Die Namen sind dedupliziert und sortiert.
func AggregateCategories(sources []Dataset) ([]string, map[string]int) {
	names := treeset.New[string]()
	freq := make(map[string]int)

	for _, s := range sources {
		counter, ok := s.(CategoryCounter)
		if !ok {
			slog.Debug("source has no category statistics", "path", s.ImgPath())
			continue
		}

		names.Add(counter.CategoryNames()...)
		for name, n := range counter.CategoryFreq() {
			freq[name] += n
		}
	}

	return names.Values(), freq
}

// NegativeLabels gibt alle Labels zurueck, die mindestens threshold mal
// vorkommen, sortiert fuer stabile Cache-Dateien
func NegativeLabels(freq map[string]int, threshold int) []string {
	var out []string
	for name, n := range freq {
		if n >= threshold {
			out = append(out, name)
		}
	}

	sort.Strings(out)
	return out
}
