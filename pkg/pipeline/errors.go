package pipeline

import (
	"github.com/pkg/errors"
)

var (
	ErrPipelineMustBeSet = errors.New("pipeline must be set")
	ErrStepMustBeSet     = errors.New("step must be set")
	ErrInvalidStepName   = errors.New("invalid step name")
	ErrUnknownStep       = errors.New("unknown step")
	ErrUnknownParameter  = errors.New("unknown parameter")
	ErrInvalidParamKey   = errors.New("invalid parameter key")
	ErrMissingKey        = errors.New("missing key")
	ErrKeyType           = errors.New("unexpected key type")
	ErrMissingOutput     = errors.New("step did not write a declared key")
	ErrSharedPipeline    = errors.New("pipeline used by more than one run")
)
