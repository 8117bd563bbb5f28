// Package spectrum generates one spectrum per star from its temperature,
// gravity, luminosity and metallicity through a spectral library.
//
// Only stars inside the library domain get a spectrum. The generator writes the
// validity mask next to the spectra so that later steps can align per-star
// arrays with the spectrum rows.
package spectrum
