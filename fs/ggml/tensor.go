// tensor.go - Tensor-Struktur fuer GGUF-Dateien
//
// Dieses Modul enthaelt:
// - Tensor: Metadaten plus Payload-Writer
// - NewTensorF32: Erstellt einen F32-Tensor aus einem float32-Slice
// - Elements/Size/block: Groessen-Hilfsfunktionen
package ggml

import (
	"encoding/binary"
	"io"
	"strconv"
	"strings"
)

// Tensor beschreibt einen Tensor mit Name, Typ, Shape und Payload
type Tensor struct {
	Name   string
	Kind   TensorType
	Offset uint64
	Shape  []uint64

	io.WriterTo `json:"-"`
}

// NewTensorF32 erstellt einen F32-Tensor ueber einem float32-Slice
func NewTensorF32(name string, shape []uint64, values []float32) *Tensor {
	return &Tensor{
		Name:     name,
		Kind:     TensorTypeF32,
		Shape:    shape,
		WriterTo: f32Payload(values),
	}
}

// f32Payload serialisiert float32-Werte little-endian
type f32Payload []float32

func (p f32Payload) WriteTo(w io.Writer) (int64, error) {
	if err := binary.Write(w, binary.LittleEndian, []float32(p)); err != nil {
		return 0, err
	}
	return int64(len(p) * 4), nil
}

// Elements gibt die Anzahl der Elemente zurueck
func (t Tensor) Elements() uint64 {
	var count uint64 = 1
	for _, n := range t.Shape {
		count *= n
	}
	return count
}

// Size gibt die Payload-Groesse in Bytes zurueck
func (t Tensor) Size() uint64 {
	return t.Elements() * t.Kind.TypeSize()
}

// block extrahiert die Block-Nummer aus dem Tensor-Namen, -1 wenn keine
func (t Tensor) block() (n int) {
	if _, after, found := strings.Cut(t.Name, "blk."); found {
		if blk, _, found := strings.Cut(after, "."); found {
			if n, err := strconv.Atoi(blk); err == nil {
				return n
			}
		}
	}
	return -1
}
