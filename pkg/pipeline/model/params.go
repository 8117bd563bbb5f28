package model

import "github.com/pkg/errors"

var ErrParamType = errors.New("invalid parameter type")

// Param gives read and write access to one configuration field of a step.
// Set may validate the value and rebuild derived state.
type Param struct {
	Get func() any
	Set func(value any) error
}

// Params maps a parameter name to its accessors.
type Params map[string]Param

// TypedParam builds a Param whose setter only accepts values of type T.
func TypedParam[T any](get func() T, set func(T) error) Param {
	return Param{
		Get: func() any { return get() },
		Set: func(value any) error {
			typed, ok := value.(T)
			if !ok {
				var zero T

				return errors.Wrapf(ErrParamType, "got %T, want %T", value, zero)
			}

			return set(typed)
		},
	}
}
