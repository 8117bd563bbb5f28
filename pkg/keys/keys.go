// Package keys lists the data keys exchanged by the simulation steps.
package keys

const (
	// Written by the cluster sampler, one entry per sampled star.
	Distance       = "distance"
	SkyCoords      = "skycoords"
	LogAge         = "logAge"
	Z              = "Z"
	Mass           = "mass"
	LifetimeLogAge = "lifetime_logAge"

	// Written by the main-sequence step, one entry per sampled star.
	LogT = "logT"
	LogG = "logg"
	LogL = "logL"

	// Written by the spectrum generator. Spectra only hold the stars inside the mask.
	Wavelength = "wavelength"
	Specs      = "specs"
	Mask       = "isin_param_range"

	// Optional dust inputs, scalars or one value per star.
	Av = "Av"
	Rv = "Rv"

	// Written by the dust attenuator.
	SpecsDust   = "specs_dust"
	DustApplied = "dust_applied"

	// Written by the distance attenuator.
	Flam     = "flam"
	FlamDust = "flam_dust"

	// Written by the photometry evaluator, keyed by filter name.
	MagBand  = "mag_band"
	FlamBand = "flam_band"
	ClBand   = "cl_band"
)
