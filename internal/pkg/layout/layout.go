// Package layout decodes fixed, packed little-endian account layouts described by a field list.
package layout

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

var (
	// ErrShortBuffer is returned when the input is smaller than the schema.
	ErrShortBuffer = errors.New("layout: buffer shorter than schema")
	// ErrField is reported by Record.Err when a field was missing or read with the wrong type.
	ErrField = errors.New("layout: field missing or mistyped")
)

const publicKeyLength = 32

// Kind is the wire type of a field.
type Kind int

const (
	KindBytes Kind = iota
	KindU8
	KindU16
	KindI32
	KindU32
	KindU64
	KindU128
	KindPublicKey
	KindArray
	KindStruct
)

// Field describes one element of a layout.
type Field struct {
	Name   string
	Kind   Kind
	Len    int     // byte count for KindBytes, element count for KindArray
	Elem   *Field  // element type for KindArray
	Fields []Field // members for KindStruct
}

func FixedBytes(name string, n int) Field { return Field{Name: name, Kind: KindBytes, Len: n} }
func Uint8(name string) Field             { return Field{Name: name, Kind: KindU8} }
func Uint16(name string) Field            { return Field{Name: name, Kind: KindU16} }
func Int32(name string) Field             { return Field{Name: name, Kind: KindI32} }
func Uint32(name string) Field            { return Field{Name: name, Kind: KindU32} }
func Uint64(name string) Field            { return Field{Name: name, Kind: KindU64} }
func Uint128(name string) Field           { return Field{Name: name, Kind: KindU128} }
func PublicKey(name string) Field         { return Field{Name: name, Kind: KindPublicKey} }

// Array repeats elem n times. Elements are named "<name>[i]".
func Array(name string, n int, elem Field) Field {
	return Field{Name: name, Kind: KindArray, Len: n, Elem: &elem}
}

// Struct groups fields. Members are named "<name>.<member>".
func Struct(name string, fields ...Field) Field {
	return Field{Name: name, Kind: KindStruct, Fields: fields}
}

// Size returns the packed width of the field in bytes.
func (f Field) Size() int {
	switch f.Kind {
	case KindBytes:
		return f.Len
	case KindU8:
		return 1
	case KindU16:
		return 2
	case KindI32, KindU32:
		return 4
	case KindU64:
		return 8
	case KindU128:
		return 16
	case KindPublicKey:
		return publicKeyLength
	case KindArray:
		return f.Len * f.Elem.Size()
	case KindStruct:
		size := 0
		for _, m := range f.Fields {
			size += m.Size()
		}
		return size
	default:
		return 0
	}
}

// Schema is a named, ordered list of fields decoded back to back with no padding.
type Schema struct {
	name   string
	fields []Field
	size   int
}

// NewSchema declares a layout.
func NewSchema(name string, fields ...Field) *Schema {
	s := &Schema{name: name, fields: fields}
	for _, f := range fields {
		s.size += f.Size()
	}
	return s
}

func (s *Schema) Name() string { return s.name }

// Size is the number of bytes the schema consumes.
func (s *Schema) Size() int { return s.size }

// Offset returns the byte offset of a top-level field, or -1 if the schema has no such field.
func (s *Schema) Offset(name string) int {
	offset := 0
	for _, f := range s.fields {
		if f.Name == name {
			return offset
		}
		offset += f.Size()
	}
	return -1
}

// Decode reads data according to the schema. Bytes past Size are ignored.
func (s *Schema) Decode(data []byte) (*Record, error) {
	if len(data) < s.size {
		return nil, fmt.Errorf("%s: need %d bytes, got %d: %w", s.name, s.size, len(data), ErrShortBuffer)
	}

	dec := bin.NewBinDecoder(data)
	rec := &Record{schema: s.name, values: make(map[string]any)}
	for _, f := range s.fields {
		if err := decodeField(dec, f, f.Name, rec.values); err != nil {
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return rec, nil
}

func decodeField(dec *bin.Decoder, f Field, name string, out map[string]any) error {
	var (
		v   any
		err error
	)

	switch f.Kind {
	case KindBytes:
		var b []byte
		b, err = dec.ReadNBytes(f.Len)
		v = append([]byte(nil), b...)
	case KindU8:
		v, err = dec.ReadUint8()
	case KindU16:
		v, err = dec.ReadUint16(binary.LittleEndian)
	case KindI32:
		v, err = dec.ReadInt32(binary.LittleEndian)
	case KindU32:
		v, err = dec.ReadUint32(binary.LittleEndian)
	case KindU64:
		v, err = dec.ReadUint64(binary.LittleEndian)
	case KindU128:
		var u bin.Uint128
		u, err = dec.ReadUint128(binary.LittleEndian)
		v = uint128ToBig(u.Hi, u.Lo)
	case KindPublicKey:
		var b []byte
		b, err = dec.ReadNBytes(publicKeyLength)
		var key solana.PublicKey
		copy(key[:], b)
		v = key
	case KindArray:
		for i := 0; i < f.Len; i++ {
			if err := decodeField(dec, *f.Elem, fmt.Sprintf("%s[%d]", name, i), out); err != nil {
				return err
			}
		}
		return nil
	case KindStruct:
		for _, m := range f.Fields {
			if err := decodeField(dec, m, name+"."+m.Name, out); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("field %q: unknown kind %d", name, f.Kind)
	}

	if err != nil {
		return fmt.Errorf("field %q: %w", name, err)
	}
	out[name] = v
	return nil
}

func uint128ToBig(hi, lo uint64) *big.Int {
	v := new(big.Int).SetUint64(hi)
	v.Lsh(v, 64)
	return v.Or(v, new(big.Int).SetUint64(lo))
}
