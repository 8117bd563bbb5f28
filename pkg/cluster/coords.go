package cluster

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// PhaseSpace is a heliocentric galactic cartesian position (X, Y, Z in parsec)
// and velocity (U, V, W in km/s).
type PhaseSpace [6]float64

// SkyCoord is a position and motion as seen by the observer.
type SkyCoord struct {
	// RA and Dec in degrees.
	RA, Dec float64
	// Distance in parsec.
	Distance float64
	// PMRA (including the cos(Dec) factor) and PMDec in mas/yr.
	PMRA, PMDec float64
	// RadialVelocity in km/s.
	RadialVelocity float64
}

// CoordinateTransform converts galactic phase-space samples to observer frame coordinates.
type CoordinateTransform interface {
	ToObserverFrame(samples []PhaseSpace) ([]SkyCoord, error)
}

// kmsPerMasYrKpc converts a tangential velocity in km/s to a proper motion in
// mas/yr at a distance of 1 kpc.
const kmsPerMasYrKpc = 4.740470463533348

// icrsToGalactic is the rotation from ICRS to galactic cartesian axes (Hipparcos definition).
var icrsToGalactic = mat.NewDense(3, 3, []float64{
	-0.0548755604162154, -0.8734370902348850, -0.4838350155487132,
	0.4941094278755837, -0.4448296299600112, 0.7469822444972189,
	-0.8676661490190047, -0.1980763734312015, 0.4559837761750669,
})

// GalacticToICRS rotates heliocentric galactic samples into the ICRS frame.
type GalacticToICRS struct{}

func (GalacticToICRS) ToObserverFrame(samples []PhaseSpace) ([]SkyCoord, error) {
	out := make([]SkyCoord, len(samples))

	var pos, vel mat.VecDense

	for i, s := range samples {
		pos.MulVec(icrsToGalactic.T(), mat.NewVecDense(3, []float64{s[0], s[1], s[2]}))
		vel.MulVec(icrsToGalactic.T(), mat.NewVecDense(3, []float64{s[3], s[4], s[5]}))
		out[i] = toSpherical(pos.RawVector().Data, vel.RawVector().Data)
	}

	return out, nil
}

func toSpherical(pos, vel []float64) SkyCoord {
	x, y, z := pos[0], pos[1], pos[2]
	d := math.Sqrt(x*x + y*y + z*z)

	ra := math.Atan2(y, x)
	if ra < 0 {
		ra += 2 * math.Pi
	}

	dec := 0.0
	if d > 0 {
		dec = math.Asin(z / d)
	}

	sinRA, cosRA := math.Sincos(ra)
	sinDec, cosDec := math.Sincos(dec)

	vRA := -sinRA*vel[0] + cosRA*vel[1]
	vDec := -sinDec*cosRA*vel[0] - sinDec*sinRA*vel[1] + cosDec*vel[2]
	vRad := cosDec*cosRA*vel[0] + cosDec*sinRA*vel[1] + sinDec*vel[2]

	sky := SkyCoord{
		RA:             ra * 180 / math.Pi,
		Dec:            dec * 180 / math.Pi,
		Distance:       d,
		RadialVelocity: vRad,
	}

	if d > 0 {
		dKpc := d / 1000
		sky.PMRA = vRA / (kmsPerMasYrKpc * dKpc)
		sky.PMDec = vDec / (kmsPerMasYrKpc * dKpc)
	}

	return sky
}

var _ CoordinateTransform = GalacticToICRS{}
