package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// jsonNull is the JSON literal for an absent value.
var jsonNull = []byte("null")

// Opt is a field of a partial record produced by the language model.
// A missing key, a JSON null and a value of the wrong type all decode as
// unset. A wrong-typed value additionally sets Malformed so validation can
// report it without failing the decode of the surrounding record.
type Opt[T any] struct {
	Value     T
	Set       bool
	Malformed bool
}

// Some returns a set Opt holding v.
func Some[T any](v T) Opt[T] {
	return Opt[T]{Value: v, Set: true}
}

// Get returns the value and whether it is set.
func (o Opt[T]) Get() (T, bool) {
	return o.Value, o.Set
}

// OrZero returns the value, or the zero value of T when unset.
func (o Opt[T]) OrZero() T {
	if !o.Set {
		var zero T
		return zero
	}
	return o.Value
}

// Provided reports whether the producer emitted anything for the field,
// including a value of the wrong type.
func (o Opt[T]) Provided() bool {
	return o.Set || o.Malformed
}

// UnmarshalJSON decodes the value, never returning an error for type mismatches.
func (o *Opt[T]) UnmarshalJSON(data []byte) error {
	*o = Opt[T]{}
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		o.Malformed = true
		return nil
	}
	o.Value = v
	o.Set = true
	return nil
}

// MarshalJSON encodes unset values as null.
func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return jsonNull, nil
	}
	return json.Marshal(o.Value)
}

// StringList is a list of strings that also accepts a bare JSON string,
// which the producer sometimes emits for single-valued lists.
type StringList []string

// UnmarshalJSON accepts either ["a", "b"] or "a". Array entries that are
// not strings are dropped.
func (l *StringList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*l = StringList{s}
		return nil
	}
	items, err := decodeElements[string](trimmed)
	if err != nil {
		return err
	}
	*l = StringList(items)
	return nil
}

// List is a JSON array decoded element by element: entries that do not
// decode as T, and null entries, are dropped instead of failing the list.
type List[T any] []T

// UnmarshalJSON keeps the array entries that decode as T.
func (l *List[T]) UnmarshalJSON(data []byte) error {
	items, err := decodeElements[T](data)
	if err != nil {
		return err
	}
	*l = items
	return nil
}

// decodeElements decodes a JSON array, skipping null and wrong-typed entries.
// It fails only when data is not an array.
func decodeElements[T any](data []byte) ([]T, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raw))
	for _, item := range raw {
		if bytes.Equal(bytes.TrimSpace(item), jsonNull) {
			continue
		}
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// Text returns the trimmed string value of o, or "" when unset.
func Text(o Opt[string]) string {
	return strings.TrimSpace(o.OrZero())
}

// Items returns the non-blank, trimmed entries of o.
func Items(o Opt[StringList]) []string {
	return NonBlank(o.OrZero())
}

// NonBlank returns the trimmed non-empty entries of list, preserving order.
func NonBlank(list []string) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
