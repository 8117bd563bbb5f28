package units

import (
	"fmt"

	"github.com/pkg/errors"
)

// Quantity is an Array tagged with a Unit.
type Quantity struct {
	values Array
	unit   Unit
}

// NewQuantity tags values with unit.
func NewQuantity(values Array, unit Unit) Quantity {
	return Quantity{values: values, unit: unit}
}

func (q Quantity) Values() Array { return q.values }

func (q Quantity) Unit() Unit { return q.unit }

// Signature returns a copy of the unit signature.
func (q Quantity) Signature() Signature { return q.unit.Signature() }

// Check verifies the quantity unit against required entries.
func (q Quantity) Check(required Signature) error {
	return q.unit.Check(required)
}

// Clone deep copies the values.
func (q Quantity) Clone() Quantity {
	return Quantity{values: q.values.Clone(), unit: q.unit}
}

// To converts the quantity to unit u.
func (q Quantity) To(u Unit) (Quantity, error) {
	factor, err := ConversionFactor(q.unit, u)
	if err != nil {
		return Quantity{}, err
	}

	if factor == 1 {
		return Quantity{values: q.values.Clone(), unit: u}, nil
	}

	return Quantity{values: q.values.Map(func(v float64) float64 { return v * factor }), unit: u}, nil
}

// Mul multiplies both quantities, the resulting unit is the product of the units.
func (q Quantity) Mul(o Quantity) (Quantity, error) {
	values, err := Mul(q.values, o.values)
	if err != nil {
		return Quantity{}, errors.Wrapf(err, "unable to multiply (%s) by (%s)", q.unit, o.unit)
	}

	return Quantity{values: values, unit: q.unit.Mul(o.unit)}, nil
}

// Div divides q by o, the resulting unit is the quotient of the units.
func (q Quantity) Div(o Quantity) (Quantity, error) {
	values, err := Div(q.values, o.values)
	if err != nil {
		return Quantity{}, errors.Wrapf(err, "unable to divide (%s) by (%s)", q.unit, o.unit)
	}

	return Quantity{values: values, unit: q.unit.Div(o.unit)}, nil
}

// Add converts o to the unit of q and sums both.
func (q Quantity) Add(o Quantity) (Quantity, error) {
	converted, err := o.To(q.unit)
	if err != nil {
		return Quantity{}, err
	}

	values, err := Add(q.values, converted.values)
	if err != nil {
		return Quantity{}, errors.Wrapf(err, "unable to add (%s) to (%s)", o.unit, q.unit)
	}

	return Quantity{values: values, unit: q.unit}, nil
}

// Sub converts o to the unit of q and subtracts it.
func (q Quantity) Sub(o Quantity) (Quantity, error) {
	converted, err := o.To(q.unit)
	if err != nil {
		return Quantity{}, err
	}

	values, err := Sub(q.values, converted.values)
	if err != nil {
		return Quantity{}, errors.Wrapf(err, "unable to subtract (%s) from (%s)", o.unit, q.unit)
	}

	return Quantity{values: values, unit: q.unit}, nil
}

// Scale multiplies every value by a dimensionless factor.
func (q Quantity) Scale(f float64) Quantity {
	return Quantity{values: q.values.Map(func(v float64) float64 { return v * f }), unit: q.unit}
}

// Apply multiplies the values by a dimensionless factor array and keeps the unit.
// The receiver is not modified.
func (q Quantity) Apply(factor Array) (Quantity, error) {
	values, err := Mul(q.values, factor)
	if err != nil {
		return Quantity{}, errors.Wrap(err, "unable to apply factor")
	}

	return Quantity{values: values, unit: q.unit}, nil
}

// Retag returns the same values with another unit.
func (q Quantity) Retag(u Unit) Quantity {
	return Quantity{values: q.values, unit: u}
}

// SelectRows keeps the rows where mask is true.
func (q Quantity) SelectRows(mask Mask) (Quantity, error) {
	values, err := q.values.SelectRows(mask)
	if err != nil {
		return Quantity{}, err
	}

	return Quantity{values: values, unit: q.unit}, nil
}

func (q Quantity) String() string {
	return fmt.Sprintf("Quantity(%dx%d, %s)", q.values.rows, q.values.cols, q.unit)
}
