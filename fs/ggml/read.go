// read.go - GGUF Read Operations
//
// Dieses Modul enthaelt Funktionen zum Lesen von GGUF-Dateien:
// - ReadGGUF: Liest KV und alle Tensor-Daten (eager, als float32)
// - readKeyValue/readString/readArray: Low-Level Deserialisierung
//
// F16- und BF16-Payloads werden beim Lesen nach float32 konvertiert.
package ggml

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/d4l3k/go-bfloat16"
	"github.com/x448/float16"
)

// ErrUnsupported wird bei nicht unterstuetzten Formaten oder Typen zurueckgegeben
var ErrUnsupported = errors.New("unsupported")

// TensorData haelt einen gelesenen Tensor mit float32-Werten
type TensorData struct {
	Name   string
	Kind   TensorType
	Shape  []uint64
	Values []float32
}

// Elements gibt die Anzahl der Elemente zurueck
func (t TensorData) Elements() uint64 {
	var count uint64 = 1
	for _, n := range t.Shape {
		count *= n
	}
	return count
}

// File repraesentiert eine vollstaendig gelesene GGUF-Datei
type File struct {
	KV      KV
	Tensors map[string]*TensorData
}

// ReadGGUF liest eine GGUF-Datei vollstaendig in den Speicher
func ReadGGUF(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := bufio.NewReaderSize(f, 32<<10)

	var magic [4]byte
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return nil, err
	}
	if !bytes.Equal(magic[:], []byte("GGUF")) {
		return nil, fmt.Errorf("%w file type %v", ErrUnsupported, magic)
	}

	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, err
	}
	if version < 2 {
		return nil, fmt.Errorf("%w version %v", ErrUnsupported, version)
	}

	var numTensors, numKV uint64
	if err := binary.Read(r, binary.LittleEndian, &numTensors); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &numKV); err != nil {
		return nil, err
	}

	kv := make(KV, numKV)
	for range numKV {
		k, v, err := readKeyValue(r)
		if err != nil {
			return nil, err
		}
		kv[k] = v
	}

	infos := make([]*TensorData, numTensors)
	offsets := make([]uint64, numTensors)
	for i := range numTensors {
		t, offset, err := readTensorInfo(r)
		if err != nil {
			return nil, err
		}
		infos[i], offsets[i] = t, offset
	}

	// Datenbereich beginnt am naechsten Alignment nach dem Header
	alignment := int64(32)
	if n := kv.Uint("general.alignment"); n > 0 {
		alignment = int64(n)
	}

	pos, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	pos -= int64(r.Buffered())
	base := pos + ggufPadding(pos, alignment)

	tensors := make(map[string]*TensorData, numTensors)
	for i, t := range infos {
		if _, err := f.Seek(base+int64(offsets[i]), io.SeekStart); err != nil {
			return nil, err
		}
		if err := readTensorData(f, t); err != nil {
			return nil, fmt.Errorf("tensor %q: %w", t.Name, err)
		}
		tensors[t.Name] = t
	}

	return &File{KV: kv, Tensors: tensors}, nil
}

// readTensorInfo liest die Metadaten eines einzelnen Tensors
func readTensorInfo(r io.Reader) (*TensorData, uint64, error) {
	name, err := readString(r)
	if err != nil {
		return nil, 0, err
	}

	var dims uint32
	if err := binary.Read(r, binary.LittleEndian, &dims); err != nil {
		return nil, 0, err
	}

	shape := make([]uint64, dims)
	for i := range dims {
		if err := binary.Read(r, binary.LittleEndian, &shape[i]); err != nil {
			return nil, 0, err
		}
	}

	var kind uint32
	if err := binary.Read(r, binary.LittleEndian, &kind); err != nil {
		return nil, 0, err
	}

	var offset uint64
	if err := binary.Read(r, binary.LittleEndian, &offset); err != nil {
		return nil, 0, err
	}

	return &TensorData{Name: name, Kind: TensorType(kind), Shape: shape}, offset, nil
}

// readTensorData liest die Payload eines Tensors und konvertiert nach float32
func readTensorData(r io.Reader, t *TensorData) error {
	n := t.Elements()

	switch t.Kind {
	case TensorTypeF32:
		t.Values = make([]float32, n)
		return binary.Read(r, binary.LittleEndian, t.Values)
	case TensorTypeF16:
		u16s := make([]uint16, n)
		if err := binary.Read(r, binary.LittleEndian, u16s); err != nil {
			return err
		}
		t.Values = make([]float32, n)
		for i, u := range u16s {
			t.Values[i] = float16.Frombits(u).Float32()
		}
		return nil
	case TensorTypeBF16:
		bts := make([]byte, n*2)
		if _, err := io.ReadFull(r, bts); err != nil {
			return err
		}
		t.Values = bfloat16.DecodeFloat32(bts)
		return nil
	default:
		return fmt.Errorf("%w tensor type %s", ErrUnsupported, t.Kind)
	}
}

// readKeyValue liest ein einzelnes Key-Value Paar
func readKeyValue(r io.Reader) (string, any, error) {
	key, err := readString(r)
	if err != nil {
		return "", nil, err
	}

	var t uint32
	if err := binary.Read(r, binary.LittleEndian, &t); err != nil {
		return "", nil, err
	}

	value, err := readValue(r, t)
	if err != nil {
		return "", nil, err
	}
	return key, value, nil
}

// readValue liest einen typisierten Wert
func readValue(r io.Reader, t uint32) (any, error) {
	switch t {
	case ggufTypeUint8:
		return read[uint8](r)
	case ggufTypeInt8:
		return read[int8](r)
	case ggufTypeUint16:
		return read[uint16](r)
	case ggufTypeInt16:
		return read[int16](r)
	case ggufTypeUint32:
		return read[uint32](r)
	case ggufTypeInt32:
		return read[int32](r)
	case ggufTypeUint64:
		return read[uint64](r)
	case ggufTypeInt64:
		return read[int64](r)
	case ggufTypeFloat32:
		return read[float32](r)
	case ggufTypeFloat64:
		return read[float64](r)
	case ggufTypeBool:
		return read[bool](r)
	case ggufTypeString:
		return readString(r)
	case ggufTypeArray:
		return readArray(r)
	default:
		return nil, fmt.Errorf("%w type %d", ErrUnsupported, t)
	}
}

// read liest einen typisierten Wert aus dem Reader
func read[T any](r io.Reader) (t T, err error) {
	err = binary.Read(r, binary.LittleEndian, &t)
	return t, err
}

// readString liest einen String aus dem Reader
func readString(r io.Reader) (string, error) {
	var n uint64
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}

	bts := make([]byte, n)
	if _, err := io.ReadFull(r, bts); err != nil {
		return "", err
	}

	return string(bts), nil
}

// readArray liest ein typisiertes Array aus dem Reader
func readArray(r io.Reader) (any, error) {
	var t uint32
	if err := binary.Read(r, binary.LittleEndian, &t); err != nil {
		return nil, err
	}

	var n uint64
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}

	switch t {
	case ggufTypeUint32:
		return readArrayData[uint32](r, n)
	case ggufTypeInt32:
		return readArrayData[int32](r, n)
	case ggufTypeUint64:
		return readArrayData[uint64](r, n)
	case ggufTypeInt64:
		return readArrayData[int64](r, n)
	case ggufTypeFloat32:
		return readArrayData[float32](r, n)
	case ggufTypeFloat64:
		return readArrayData[float64](r, n)
	case ggufTypeBool:
		return readArrayData[bool](r, n)
	case ggufTypeString:
		return readArrayString(r, n)
	default:
		return nil, fmt.Errorf("%w type %d", ErrUnsupported, t)
	}
}

// readArrayData liest typisierte Array-Daten
func readArrayData[T any](r io.Reader, n uint64) (s []T, err error) {
	s = make([]T, n)
	for i := range n {
		e, err := read[T](r)
		if err != nil {
			return nil, err
		}
		s[i] = e
	}
	return s, nil
}

// readArrayString liest ein String-Array
func readArrayString(r io.Reader, n uint64) (s []string, err error) {
	s = make([]string, n)
	for i := range n {
		e, err := readString(r)
		if err != nil {
			return nil, err
		}
		s[i] = e
	}
	return s, nil
}
