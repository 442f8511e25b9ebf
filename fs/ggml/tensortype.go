// tensortype.go - Tensor-Datentypen fuer GGUF
//
// Dieses Modul enthaelt:
// - TensorType: Typ-Konstanten (F32, F16, BF16)
// - TypeSize/String/ParseTensorType: Typ-Hilfsfunktionen
package ggml

import "fmt"

// TensorType bezeichnet den Elementtyp eines Tensors
type TensorType uint32

// Typ-Konstanten entsprechen den ggml-Typnummern
const (
	TensorTypeF32  TensorType = 0
	TensorTypeF16  TensorType = 1
	TensorTypeBF16 TensorType = 30
)

// TypeSize gibt die Groesse eines Elements in Bytes zurueck
func (t TensorType) TypeSize() uint64 {
	switch t {
	case TensorTypeF32:
		return 4
	case TensorTypeF16, TensorTypeBF16:
		return 2
	default:
		return 0
	}
}

// String gibt den Typnamen zurueck
func (t TensorType) String() string {
	switch t {
	case TensorTypeF32:
		return "F32"
	case TensorTypeF16:
		return "F16"
	case TensorTypeBF16:
		return "BF16"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(t))
	}
}

// ParseTensorType parst einen Typnamen
func ParseTensorType(s string) (TensorType, error) {
	switch s {
	case "F32", "f32":
		return TensorTypeF32, nil
	case "F16", "f16":
		return TensorTypeF16, nil
	case "BF16", "bf16":
		return TensorTypeBF16, nil
	default:
		return 0, fmt.Errorf("unsupported tensor type %q", s)
	}
}
