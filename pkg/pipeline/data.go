package pipeline

import (
	"sort"

	"github.com/pkg/errors"
)

// Data is an immutable mapping from key to value threaded through the steps.
//
// With and Merge return a new Data and leave the receiver untouched, so a step
// can never alter the record another step or another run observes.
type Data struct {
	values map[string]any
}

// NewData copies values into a new Data.
func NewData(values map[string]any) Data {
	return Data{}.Merge(values)
}

// With returns a copy of d where key is set to value.
func (d Data) With(key string, value any) Data {
	return d.Merge(map[string]any{key: value})
}

// Merge returns a copy of d with every entry of values added or overwritten.
func (d Data) Merge(values map[string]any) Data {
	out := make(map[string]any, len(d.values)+len(values))
	for k, v := range d.values {
		out[k] = v
	}

	for k, v := range values {
		out[k] = v
	}

	return Data{values: out}
}

// Value returns the raw value stored under key.
func (d Data) Value(key string) (any, bool) {
	v, ok := d.values[key]

	return v, ok
}

func (d Data) Has(key string) bool {
	_, ok := d.values[key]

	return ok
}

// Keys returns the sorted keys.
func (d Data) Keys() []string {
	keys := make([]string, 0, len(d.values))
	for k := range d.values {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

func (d Data) Len() int {
	return len(d.values)
}

// Get returns the value stored under key as a T.
func Get[T any](d Data, key string) (T, error) {
	var zero T

	raw, ok := d.values[key]
	if !ok {
		return zero, errors.Wrapf(ErrMissingKey, "%q", key)
	}

	v, ok := raw.(T)
	if !ok {
		return zero, errors.Wrapf(ErrKeyType, "%q holds %T, want %T", key, raw, zero)
	}

	return v, nil
}

// GetOr is like Get but returns def when key is absent.
func GetOr[T any](d Data, key string, def T) (T, error) {
	if !d.Has(key) {
		return def, nil
	}

	return Get[T](d, key)
}
