package omit

import (
	"encoding/json"
)

// Omit is an optional value for partial-update payloads. Unset fields report
// IsZero and are skipped by encoding/json when tagged with omitzero, so a
// PATCH body only carries the fields the caller actually set. A set field
// marshals its value as-is, including explicit nulls via pointer types.
func New[T any](value T) Omit[T] {
	return Omit[T]{
		Value: value,
		OK:    true,
	}
}

type Omit[T any] struct {
	Value T    `json:"value"`
	OK    bool `json:"ok"`
}

func (o Omit[T]) IsZero() bool {
	return !o.OK
}

// Or returns the value when set, otherwise def.
func (o Omit[T]) Or(def T) T {
	if !o.OK {
		return def
	}
	return o.Value
}

func (o Omit[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Value)
}

func (o *Omit[T]) UnmarshalJSON(data []byte) error {
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}

	o.Value = value
	o.OK = true

	return nil
}
