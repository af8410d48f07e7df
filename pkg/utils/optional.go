package utils

import (
	"bytes"
	"encoding/json"
)

// Opt is a JSON field that remembers whether it was present in the payload.
//
//	absent        -> Set=false
//	null          -> Set=true, Null=true
//	wrong type    -> Set=true, Invalid=true
//	value         -> Set=true, Val=value
//
// Decoding never fails on a type mismatch so callers can report it per field.
type Opt[T any] struct {
	Set     bool
	Null    bool
	Invalid bool
	Val     T
}

// Some returns a present, non-null Opt.
func Some[T any](v T) Opt[T] { return Opt[T]{Set: true, Val: v} }

// Null returns a present, explicitly null Opt.
func Null[T any]() Opt[T] { return Opt[T]{Set: true, Null: true} }

func (o *Opt[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Null = true
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		o.Invalid = true
		return nil
	}
	o.Val = v
	return nil
}

func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Null || o.Invalid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Val)
}

// Present reports a usable value: set, not null and well typed.
func (o Opt[T]) Present() bool { return o.Set && !o.Null && !o.Invalid }
