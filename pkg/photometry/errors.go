package photometry

import "github.com/pkg/errors"

var (
	// ErrFilterUnavailable is reported for a filter found neither locally nor
	// remotely. The filter is skipped and the run continues.
	ErrFilterUnavailable = errors.New("filter unavailable")
	ErrInvalidBand       = errors.New("invalid filter band")
	ErrFetch             = errors.New("unable to fetch filter")
)
