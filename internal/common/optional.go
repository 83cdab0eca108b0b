package common

import (
	"bytes"
	"encoding/json"
)

// Optional is a field of a partial update. It tells apart a field that was
// absent from the request, one that was sent as null, and one that carries a
// value. Decoding only runs for keys present in the JSON document, so the zero
// value means "absent".
type Optional[T any] struct {
	Present bool
	Null    bool
	Value   T
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Present: true, Value: v}
}

// Null returns an Optional that was explicitly set to null.
func Null[T any]() Optional[T] {
	return Optional[T]{Present: true, Null: true}
}

// IsSet reports whether the field was sent with a non-null value.
func (o Optional[T]) IsSet() bool {
	return o.Present && !o.Null
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Present = true

	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}

	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.IsSet() {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}
