// pe.go - Laden vorberechneter Klassen-Embeddings aus Pickle-Dateien
//
// Dieses Modul enthaelt:
// - LoadPE: Liest ein PyTorch-Pickle mit "names" und "pe"
//
// Das erwartete Format ist ein Dict mit einer Namensliste und einer
// [nc, dim] Embedding-Matrix, wie es gaengige Exporte von
// Text-Encodern ablegen.
package model

import (
	"fmt"

	"github.com/nlpodyssey/gopickle/pytorch"
	"github.com/nlpodyssey/gopickle/types"

	"github.com/ovdet/ovdet/encoder"
)

// LoadPE laedt Klassen-Embeddings aus einer PyTorch-Pickle-Datei und
// gibt sie als Tabelle in Listenreihenfolge zurueck
func LoadPE(path string) (*encoder.Table, error) {
	m, err := pytorch.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load embeddings %s: %w", path, err)
	}

	namesVal, ok := dictGet(m, "names")
	if !ok {
		return nil, fmt.Errorf("%s has no \"names\" entry", path)
	}
	peVal, ok := dictGet(m, "pe")
	if !ok {
		return nil, fmt.Errorf("%s has no \"pe\" entry", path)
	}

	names, err := stringList(namesVal)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	pt, ok := peVal.(*pytorch.Tensor)
	if !ok {
		return nil, fmt.Errorf("%s: \"pe\" is %T, expected a tensor", path, peVal)
	}
	if len(pt.Size) != 2 || pt.Size[0] != len(names) {
		return nil, fmt.Errorf("%s: \"pe\" has size %v for %d names", path, pt.Size, len(names))
	}

	values, err := storageFloats(pt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	dim := pt.Size[1]
	table := encoder.NewTable()
	for i, name := range names {
		if err := table.Set(name, values[i*dim:(i+1)*dim]); err != nil {
			return nil, err
		}
	}

	return table, nil
}

// dictGet liest einen Schluessel aus einem (Ordered)Dict
func dictGet(m any, key string) (any, bool) {
	switch d := m.(type) {
	case *types.Dict:
		return d.Get(key)
	case *types.OrderedDict:
		if e, ok := d.Map[key]; ok {
			return e.Value, true
		}
	}
	return nil, false
}

// stringList wandelt eine Pickle-Liste in einen String-Slice um
func stringList(v any) ([]string, error) {
	list, ok := v.(*types.List)
	if !ok {
		return nil, fmt.Errorf("\"names\" is %T, expected a list", v)
	}

	out := make([]string, 0, list.Len())
	for i := range list.Len() {
		s, ok := list.Get(i).(string)
		if !ok {
			return nil, fmt.Errorf("names[%d] is %T, expected a string", i, list.Get(i))
		}
		out = append(out, s)
	}
	return out, nil
}

// storageFloats extrahiert die Werte eines Tensors als float32
func storageFloats(t *pytorch.Tensor) ([]float32, error) {
	switch s := t.Source.(type) {
	case *pytorch.FloatStorage:
		return s.Data, nil
	case *pytorch.HalfStorage:
		return s.Data, nil
	case *pytorch.DoubleStorage:
		out := make([]float32, len(s.Data))
		for i, v := range s.Data {
			out[i] = float32(v)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported tensor storage %T", t.Source)
	}
}
