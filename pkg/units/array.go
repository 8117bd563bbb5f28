package units

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Array is a dense row-major two dimensional array of float64.
//
// Per-star values are stored as a column (n x 1), a wavelength grid as a row
// (1 x w) and spectra as a matrix (n x w) so that binary operations broadcast
// the way the pipeline combines them. An Array may have zero rows when every
// star has been masked out.
type Array struct {
	data       []float64
	rows, cols int
}

// NewArray wraps data, which must hold rows*cols values. A nil data allocates zeros.
func NewArray(rows, cols int, data []float64) (Array, error) {
	if rows < 0 || cols < 0 {
		return Array{}, errors.Wrapf(ErrShapeMismatch, "negative shape (%d, %d)", rows, cols)
	}

	if data == nil {
		data = make([]float64, rows*cols)
	}

	if len(data) != rows*cols {
		return Array{}, errors.Wrapf(ErrShapeMismatch, "%d values for shape (%d, %d)", len(data), rows, cols)
	}

	return Array{data: data, rows: rows, cols: cols}, nil
}

// Zeros allocates a rows x cols array of zeros.
func Zeros(rows, cols int) Array {
	return Array{data: make([]float64, rows*cols), rows: rows, cols: cols}
}

// Scalar returns a 1 x 1 array.
func Scalar(v float64) Array {
	return Array{data: []float64{v}, rows: 1, cols: 1}
}

// Row copies values into a 1 x n array.
func Row(values []float64) Array {
	return Array{data: append([]float64(nil), values...), rows: 1, cols: len(values)}
}

// Column copies values into an n x 1 array.
func Column(values []float64) Array {
	return Array{data: append([]float64(nil), values...), rows: len(values), cols: 1}
}

func (a Array) Rows() int { return a.rows }

func (a Array) Cols() int { return a.cols }

// Len is the total number of values.
func (a Array) Len() int { return len(a.data) }

func (a Array) At(i, j int) float64 {
	return a.data[i*a.cols+j]
}

// RowView returns row i without copying.
func (a Array) RowView(i int) []float64 {
	return a.data[i*a.cols : (i+1)*a.cols]
}

// Data returns the backing slice without copying.
func (a Array) Data() []float64 {
	return a.data
}

// Clone deep copies the array.
func (a Array) Clone() Array {
	return Array{data: append([]float64(nil), a.data...), rows: a.rows, cols: a.cols}
}

// Map applies fn to every value and returns a new array.
func (a Array) Map(fn func(float64) float64) Array {
	out := make([]float64, len(a.data))
	for i, v := range a.data {
		out[i] = fn(v)
	}

	return Array{data: out, rows: a.rows, cols: a.cols}
}

// SelectRows keeps the rows where mask is true.
func (a Array) SelectRows(mask Mask) (Array, error) {
	if len(mask) != a.rows {
		return Array{}, errors.Wrapf(ErrShapeMismatch, "mask of length %d for %d rows", len(mask), a.rows)
	}

	out := make([]float64, 0, mask.Count()*a.cols)
	for i, keep := range mask {
		if keep {
			out = append(out, a.RowView(i)...)
		}
	}

	return Array{data: out, rows: mask.Count(), cols: a.cols}, nil
}

func broadcastDim(x, y int) (int, bool) {
	switch {
	case x == y:
		return x, true
	case x == 1:
		return y, true
	case y == 1:
		return x, true
	}

	return 0, false
}

// Broadcast combines a and b value by value. Dimensions of size one are
// stretched to match the other operand.
func Broadcast(a, b Array, op func(x, y float64) float64) (Array, error) {
	rows, okRows := broadcastDim(a.rows, b.rows)
	cols, okCols := broadcastDim(a.cols, b.cols)
	if !okRows || !okCols {
		return Array{}, errors.Wrapf(ErrShapeMismatch, "cannot broadcast (%d, %d) with (%d, %d)", a.rows, a.cols, b.rows, b.cols)
	}

	out := make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		ia, ib := i, i
		if a.rows == 1 {
			ia = 0
		}

		if b.rows == 1 {
			ib = 0
		}

		for j := 0; j < cols; j++ {
			ja, jb := j, j
			if a.cols == 1 {
				ja = 0
			}

			if b.cols == 1 {
				jb = 0
			}

			out[i*cols+j] = op(a.data[ia*a.cols+ja], b.data[ib*b.cols+jb])
		}
	}

	return Array{data: out, rows: rows, cols: cols}, nil
}

func sameShape(a, b Array) bool {
	return a.rows == b.rows && a.cols == b.cols
}

// Mul multiplies a and b element-wise with broadcasting.
func Mul(a, b Array) (Array, error) {
	if sameShape(a, b) {
		out := make([]float64, len(a.data))
		floats.MulTo(out, a.data, b.data)

		return Array{data: out, rows: a.rows, cols: a.cols}, nil
	}

	return Broadcast(a, b, func(x, y float64) float64 { return x * y })
}

// Div divides a by b element-wise with broadcasting.
func Div(a, b Array) (Array, error) {
	if sameShape(a, b) {
		out := make([]float64, len(a.data))
		floats.DivTo(out, a.data, b.data)

		return Array{data: out, rows: a.rows, cols: a.cols}, nil
	}

	return Broadcast(a, b, func(x, y float64) float64 { return x / y })
}

// Add sums a and b element-wise with broadcasting.
func Add(a, b Array) (Array, error) {
	if sameShape(a, b) {
		out := make([]float64, len(a.data))
		floats.AddTo(out, a.data, b.data)

		return Array{data: out, rows: a.rows, cols: a.cols}, nil
	}

	return Broadcast(a, b, func(x, y float64) float64 { return x + y })
}

// Sub subtracts b from a element-wise with broadcasting.
func Sub(a, b Array) (Array, error) {
	if sameShape(a, b) {
		out := make([]float64, len(a.data))
		floats.SubTo(out, a.data, b.data)

		return Array{data: out, rows: a.rows, cols: a.cols}, nil
	}

	return Broadcast(a, b, func(x, y float64) float64 { return x - y })
}

// Mask selects the stars whose parameters lie inside a supported domain.
type Mask []bool

// Count returns the number of true entries.
func (m Mask) Count() int {
	n := 0
	for _, keep := range m {
		if keep {
			n++
		}
	}

	return n
}

// Select keeps the values where the mask is true.
func (m Mask) Select(values []float64) ([]float64, error) {
	if len(values) != len(m) {
		return nil, errors.Wrapf(ErrShapeMismatch, "mask of length %d for %d values", len(m), len(values))
	}

	out := make([]float64, 0, m.Count())
	for i, keep := range m {
		if keep {
			out = append(out, values[i])
		}
	}

	return out, nil
}

// AllTrue returns a mask of n true values.
func AllTrue(n int) Mask {
	m := make(Mask, n)
	for i := range m {
		m[i] = true
	}

	return m
}
