package cluster

import (
	"math"
	"math/rand/v2"

	"github.com/pkg/errors"
)

// IMF draws stellar masses, in solar masses, until the total cluster mass is reached.
type IMF interface {
	Sample(totalMass float64) ([]float64, error)
}

const (
	defaultMinMass = 0.03
	defaultMaxMass = 120
	// maxStars bounds the number of draws for a single cluster.
	maxStars = 10_000_000
)

type powerLawSegment struct {
	lo, hi float64
	alpha  float64
	// norm keeps the mass function continuous across segments.
	norm   float64
	weight float64
}

func (s powerLawSegment) integral() float64 {
	p := 1 - s.alpha

	return s.norm * (math.Pow(s.hi, p) - math.Pow(s.lo, p)) / p
}

func (s powerLawSegment) invert(u float64) float64 {
	p := 1 - s.alpha
	lo, hi := math.Pow(s.lo, p), math.Pow(s.hi, p)

	return math.Pow(lo+u*(hi-lo), 1/p)
}

// Kroupa is the Kroupa (2001) broken power-law mass function with slopes
// 0.3, 1.3 and 2.3 and breaks at 0.08 and 0.5 solar masses.
type Kroupa struct {
	rng      *rand.Rand
	segments []powerLawSegment
	total    float64
}

// NewKroupa creates a Kroupa sampler between minMass and maxMass solar masses.
func NewKroupa(rng *rand.Rand, minMass, maxMass float64) (*Kroupa, error) {
	if minMass <= 0 || maxMass <= minMass {
		return nil, errors.Wrapf(ErrInvalidMassRange, "[%g, %g]", minMass, maxMass)
	}

	breaks := []float64{0, 0.08, 0.5, math.Inf(1)}
	alphas := []float64{0.3, 1.3, 2.3}
	norms := []float64{1, 0.08, 0.08 * 0.5}

	k := &Kroupa{rng: rng}

	for i, alpha := range alphas {
		lo, hi := math.Max(breaks[i], minMass), math.Min(breaks[i+1], maxMass)
		if lo >= hi {
			continue
		}

		seg := powerLawSegment{lo: lo, hi: hi, alpha: alpha, norm: norms[i]}
		seg.weight = seg.integral()
		k.total += seg.weight
		k.segments = append(k.segments, seg)
	}

	return k, nil
}

func (k *Kroupa) draw() float64 {
	u := k.rng.Float64() * k.total
	for _, seg := range k.segments {
		if u < seg.weight {
			return seg.invert(k.rng.Float64())
		}

		u -= seg.weight
	}

	last := k.segments[len(k.segments)-1]

	return last.invert(k.rng.Float64())
}

// Sample draws stars until their summed mass reaches totalMass. The last star
// is kept only if it brings the sum closer to totalMass.
func (k *Kroupa) Sample(totalMass float64) ([]float64, error) {
	if totalMass <= 0 || math.IsNaN(totalMass) {
		return nil, errors.Wrapf(ErrInvalidMass, "%g", totalMass)
	}

	masses := []float64{}
	sum := 0.0

	for sum < totalMass {
		if len(masses) == maxStars {
			return nil, errors.Wrapf(ErrInvalidMass, "more than %d stars for %g solar masses", maxStars, totalMass)
		}

		m := k.draw()
		masses = append(masses, m)
		sum += m
	}

	last := masses[len(masses)-1]
	if math.Abs(sum-last-totalMass) < math.Abs(sum-totalMass) {
		masses = masses[:len(masses)-1]
	}

	return masses, nil
}

// FixedIMF always returns the same masses, whatever the requested total.
type FixedIMF []float64

func (f FixedIMF) Sample(float64) ([]float64, error) {
	return append([]float64(nil), f...), nil
}

var (
	_ IMF = (*Kroupa)(nil)
	_ IMF = FixedIMF(nil)
)
