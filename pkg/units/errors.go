package units

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrUnitMismatch      = errors.New("unit mismatch")
	ErrIncompatibleUnits = errors.New("incompatible units")
	ErrUnknownUnit       = errors.New("unknown unit")
	ErrShapeMismatch     = errors.New("shape mismatch")
)

// MismatchError reports the first required unit entry that a signature does not satisfy.
type MismatchError struct {
	Actual  Signature
	Unit    string
	Want    float64
	Got     float64
	Present bool
}

func (e *MismatchError) Error() string {
	if !e.Present {
		return fmt.Sprintf("%s: unit %s not found in unit (%s)", ErrUnitMismatch, e.Unit, e.Actual)
	}

	return fmt.Sprintf("%s: unit %s has power %g, want %g in unit (%s)", ErrUnitMismatch, e.Unit, e.Got, e.Want, e.Actual)
}

// Is makes MismatchError match ErrUnitMismatch.
func (e *MismatchError) Is(target error) bool {
	return target == ErrUnitMismatch
}
