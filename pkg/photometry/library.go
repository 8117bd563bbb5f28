package photometry

import (
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/askiada/go-clusterphot/pkg/units"
)

// profile is an approximate flat-topped transmission curve.
type profile struct {
	center, fwhm float64
}

var localProfiles = map[string]profile{
	"GROUND_JOHNSON_U": {3600, 700},
	"GROUND_JOHNSON_B": {4380, 980},
	"GROUND_JOHNSON_V": {5450, 850},
	"GROUND_COUSINS_R": {6410, 1570},
	"GROUND_COUSINS_I": {7980, 1540},
	"SDSS_u":           {3551, 560},
	"SDSS_g":           {4686, 1380},
	"SDSS_r":           {6166, 1370},
	"SDSS_i":           {7480, 1530},
	"SDSS_z":           {8932, 950},
	"PS1_g":            {4810, 1150},
	"PS1_r":            {6170, 1400},
	"PS1_i":            {7520, 1300},
	"PS1_z":            {8660, 1040},
	"PS1_y":            {9620, 830},
	"GALEX_FUV":        {1528, 270},
	"GALEX_NUV":        {2271, 730},
	"2MASS_J":          {12350, 1620},
	"2MASS_H":          {16620, 2510},
	"2MASS_Ks":         {21590, 2620},
}

const profileSamples = 201

func (p profile) band(name string) (*Band, error) {
	wave := make([]float64, profileSamples)
	trans := make([]float64, profileSamples)
	step := 2 * p.fwhm / float64(profileSamples-1)

	for i := range wave {
		wave[i] = p.center - p.fwhm + float64(i)*step
		x := 2 * (wave[i] - p.center) / p.fwhm
		trans[i] = math.Exp(-math.Ln2 * x * x * x * x)
	}

	return NewBand(name, units.NewQuantity(units.Row(wave), units.Angstrom), trans)
}

// Library is a set of filter bands looked up by name.
type Library struct {
	mu    sync.RWMutex
	bands map[string]*Band
}

// NewLibrary creates a library holding bands.
func NewLibrary(bands ...*Band) *Library {
	l := &Library{bands: make(map[string]*Band, len(bands))}
	for _, b := range bands {
		l.bands[b.Name()] = b
	}

	return l
}

// DefaultLibrary returns the built-in broad-band filters: Johnson-Cousins,
// SDSS, Pan-STARRS1, GALEX and 2MASS.
func DefaultLibrary() (*Library, error) {
	bands := make([]*Band, 0, len(localProfiles))
	for name, p := range localProfiles {
		b, err := p.band(name)
		if err != nil {
			return nil, err
		}

		bands = append(bands, b)
	}

	return NewLibrary(bands...), nil
}

// Add stores b, replacing a band with the same name.
func (l *Library) Add(b *Band) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.bands[b.Name()] = b
}

// Get returns the band with exactly the given name.
func (l *Library) Get(name string) (*Band, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	b, ok := l.bands[name]

	return b, ok
}

// Names returns the sorted band names.
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	names := make([]string, 0, len(l.bands))
	for name := range l.bands {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Find returns the bands matching name. An exact match wins, otherwise every
// band whose name contains name, ignoring case, is returned sorted by name.
func (l *Library) Find(name string) []*Band {
	if b, ok := l.Get(name); ok {
		return []*Band{b}
	}

	if name == "" {
		return nil
	}

	lower := strings.ToLower(name)

	var found []*Band

	for _, n := range l.Names() {
		if !strings.Contains(strings.ToLower(n), lower) {
			continue
		}

		if b, ok := l.Get(n); ok {
			found = append(found, b)
		}
	}

	return found
}
