package layout

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/gagliardetto/solana-go"
)

// Record holds decoded field values. Getters return the zero value for a missing or mistyped
// field and remember the name; check Err once after reading.
type Record struct {
	schema  string
	values  map[string]any
	invalid []string
}

func (r *Record) Bytes(name string) []byte     { return get[[]byte](r, name) }
func (r *Record) Uint8(name string) uint8      { return get[uint8](r, name) }
func (r *Record) Uint16(name string) uint16    { return get[uint16](r, name) }
func (r *Record) Int32(name string) int32      { return get[int32](r, name) }
func (r *Record) Uint32(name string) uint32    { return get[uint32](r, name) }
func (r *Record) Uint64(name string) uint64    { return get[uint64](r, name) }
func (r *Record) Uint128(name string) *big.Int { return get[*big.Int](r, name) }

func (r *Record) PublicKey(name string) solana.PublicKey {
	return get[solana.PublicKey](r, name)
}

// Has reports whether the record holds a value for name.
func (r *Record) Has(name string) bool {
	_, ok := r.values[name]
	return ok
}

// Err reports every field that could not be read.
func (r *Record) Err() error {
	if len(r.invalid) == 0 {
		return nil
	}
	sort.Strings(r.invalid)
	return fmt.Errorf("%s: %v: %w", r.schema, r.invalid, ErrField)
}

func get[T any](r *Record, name string) T {
	v, ok := r.values[name].(T)
	if !ok {
		r.invalid = append(r.invalid, name)
	}
	return v
}
