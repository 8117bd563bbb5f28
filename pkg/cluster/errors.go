package cluster

import "github.com/pkg/errors"

var (
	ErrInvalidMass       = errors.New("cluster mass must be greater than 0")
	ErrInvalidGeometry   = errors.New("invalid cluster geometry")
	ErrInvalidCovariance = errors.New("covariance is not positive definite")
	ErrInvalidMassRange  = errors.New("invalid mass range")
)
