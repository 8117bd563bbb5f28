package photometry

import "strings"

// System is a magnitude calibration system.
type System int

const (
	Vega System = iota
	AB
)

func (s System) String() string {
	if s == AB {
		return "AB"
	}

	return "Vega"
}

// abFamilies are the filter families calibrated in AB, keyed by the name prefix before "_".
var abFamilies = map[string]struct{}{
	"GALEX": {},
	"SDSS":  {},
	"PS1":   {},
}

// SystemFor returns the calibration system of a filter from its name.
func SystemFor(name string) System {
	family, _, _ := strings.Cut(name, "_")
	if _, ok := abFamilies[family]; ok {
		return AB
	}

	return Vega
}
