package extinction

import "github.com/pkg/errors"

var (
	ErrUnknownLaw       = errors.New("unknown extinction law")
	ErrInvalidReddening = errors.New("invalid reddening")
)
