package spectrum

import "github.com/pkg/errors"

var (
	ErrUnknownLibrary = errors.New("unknown spectral library")
	ErrInvalidGrid    = errors.New("invalid wavelength grid")
	ErrOutOfDomain    = errors.New("stars outside the library domain")
	ErrLibraryOutput  = errors.New("inconsistent spectral library output")
)
