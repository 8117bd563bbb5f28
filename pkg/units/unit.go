package units

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

const (
	lengthDim = iota
	massDim
	timeDim
	angleDim
	numDims
)

// Dimension holds the powers of the base dimensions length, mass, time and angle.
type Dimension [numDims]float64

func (d Dimension) add(o Dimension, power float64) Dimension {
	for i := range d {
		d[i] += o[i] * power
	}

	return d
}

// IsZero reports whether every base dimension has power zero.
func (d Dimension) IsZero() bool {
	return d == Dimension{}
}

type definition struct {
	dim Dimension
	// si is the value of one unit expressed in SI base units.
	si float64
}

const (
	parsecMeters      = 3.0856775814913673e16
	solarMassKg       = 1.98847e30
	solarLuminosityW  = 3.828e26
	julianYearSeconds = 365.25 * 86400
)

var registry = map[string]definition{
	"angstrom":         {Dimension{1, 0, 0, 0}, 1e-10},
	"nanometer":        {Dimension{1, 0, 0, 0}, 1e-9},
	"micron":           {Dimension{1, 0, 0, 0}, 1e-6},
	"centimeter":       {Dimension{1, 0, 0, 0}, 1e-2},
	"meter":            {Dimension{1, 0, 0, 0}, 1},
	"kilometer":        {Dimension{1, 0, 0, 0}, 1e3},
	"parsec":           {Dimension{1, 0, 0, 0}, parsecMeters},
	"second":           {Dimension{0, 0, 1, 0}, 1},
	"year":             {Dimension{0, 0, 1, 0}, julianYearSeconds},
	"gram":             {Dimension{0, 1, 0, 0}, 1e-3},
	"kilogram":         {Dimension{0, 1, 0, 0}, 1},
	"solar_mass":       {Dimension{0, 1, 0, 0}, solarMassKg},
	"erg":              {Dimension{2, 1, -2, 0}, 1e-7},
	"joule":            {Dimension{2, 1, -2, 0}, 1},
	"solar_luminosity": {Dimension{2, 1, -3, 0}, solarLuminosityW},
	"radian":           {Dimension{0, 0, 0, 1}, 1},
	"degree":           {Dimension{0, 0, 0, 1}, math.Pi / 180},
	"milliarcsecond":   {Dimension{0, 0, 0, 1}, math.Pi / (180 * 3600 * 1000)},
}

// Signature maps a named unit to its power, e.g. {"erg": 1, "second": -1, "angstrom": -1}.
type Signature map[string]float64

func (s Signature) clone() Signature {
	out := make(Signature, len(s))
	for name, power := range s {
		out[name] = power
	}

	return out
}

func (s Signature) names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func (s Signature) String() string {
	if len(s) == 0 {
		return "dimensionless"
	}

	parts := make([]string, 0, len(s))
	for _, name := range s.names() {
		power := s[name]
		if power == 1 {
			parts = append(parts, name)

			continue
		}

		parts = append(parts, fmt.Sprintf("%s^%g", name, power))
	}

	return strings.Join(parts, " ")
}

// Unit is an immutable product of named units raised to powers.
type Unit struct {
	sig Signature
}

// New builds a unit from a signature. Every name must be a registered unit.
func New(sig Signature) (Unit, error) {
	out := make(Signature, len(sig))
	for name, power := range sig {
		if _, ok := registry[name]; !ok {
			return Unit{}, errors.Wrapf(ErrUnknownUnit, "%q", name)
		}

		if power != 0 {
			out[name] = power
		}
	}

	return Unit{sig: out}, nil
}

// MustNew is like New but panics on an unknown unit name.
func MustNew(sig Signature) Unit {
	u, err := New(sig)
	if err != nil {
		panic(err)
	}

	return u
}

func named(name string) Unit {
	return MustNew(Signature{name: 1})
}

var (
	Dimensionless   = Unit{}
	Angstrom        = named("angstrom")
	Nanometer       = named("nanometer")
	Micron          = named("micron")
	Centimeter      = named("centimeter")
	Meter           = named("meter")
	Kilometer       = named("kilometer")
	Parsec          = named("parsec")
	Second          = named("second")
	Year            = named("year")
	Gram            = named("gram")
	SolarMass       = named("solar_mass")
	Erg             = named("erg")
	SolarLuminosity = named("solar_luminosity")
	Degree          = named("degree")
	Milliarcsecond  = named("milliarcsecond")

	// LuminosityDensity is erg s^-1 angstrom^-1, the output of a spectral library.
	LuminosityDensity = Erg.Div(Second).Div(Angstrom)
	// FluxDensity is erg s^-1 cm^-2 angstrom^-1, flux received at the observer.
	FluxDensity = LuminosityDensity.Div(Centimeter.Pow(2))
	// KilometerPerSecond is used for velocities.
	KilometerPerSecond = Kilometer.Div(Second)
	// MilliarcsecondPerYear is used for proper motions.
	MilliarcsecondPerYear = Milliarcsecond.Div(Year)
)

// Signature returns a copy of the unit signature.
func (u Unit) Signature() Signature {
	return u.sig.clone()
}

// Mul returns u*o.
func (u Unit) Mul(o Unit) Unit {
	return u.combine(o, 1)
}

// Div returns u/o.
func (u Unit) Div(o Unit) Unit {
	return u.combine(o, -1)
}

func (u Unit) combine(o Unit, sign float64) Unit {
	out := u.sig.clone()
	for name, power := range o.sig {
		out[name] += sign * power
		if out[name] == 0 {
			delete(out, name)
		}
	}

	return Unit{sig: out}
}

// Pow raises every entry of the unit to p.
func (u Unit) Pow(p float64) Unit {
	out := make(Signature, len(u.sig))
	if p == 0 {
		return Unit{sig: out}
	}

	for name, power := range u.sig {
		out[name] = power * p
	}

	return Unit{sig: out}
}

// Dimension returns the powers of the base dimensions.
func (u Unit) Dimension() Dimension {
	var dim Dimension
	for name, power := range u.sig {
		dim = dim.add(registry[name].dim, power)
	}

	return dim
}

// SI returns the value of one u expressed in SI base units.
func (u Unit) SI() float64 {
	si := 1.0
	for name, power := range u.sig {
		si *= math.Pow(registry[name].si, power)
	}

	return si
}

// Equal reports whether both units have the same signature.
func (u Unit) Equal(o Unit) bool {
	if len(u.sig) != len(o.sig) {
		return false
	}

	for name, power := range u.sig {
		if o.sig[name] != power {
			return false
		}
	}

	return true
}

// Check verifies the unit signature against required entries, see Check.
func (u Unit) Check(required Signature) error {
	return Check(u.sig, required)
}

func (u Unit) String() string {
	return u.sig.String()
}

// ConversionFactor returns the factor f such that x[from] == f*x[to].
func ConversionFactor(from, to Unit) (float64, error) {
	if from.Dimension() != to.Dimension() {
		return 0, errors.Wrapf(ErrIncompatibleUnits, "cannot convert (%s) to (%s)", from, to)
	}

	if from.Equal(to) {
		return 1, nil
	}

	return from.SI() / to.SI(), nil
}

// Check verifies that every entry of required is present in sig with exactly
// the required power. Entries of sig that are not required are ignored.
func Check(sig Signature, required Signature) error {
	for _, name := range required.names() {
		want := required[name]

		got, ok := sig[name]
		if !ok || got != want {
			return &MismatchError{
				Actual:  sig.clone(),
				Unit:    name,
				Want:    want,
				Got:     got,
				Present: ok,
			}
		}
	}

	return nil
}
