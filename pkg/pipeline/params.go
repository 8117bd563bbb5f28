package pipeline

import (
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/go-clusterphot/pkg/pipeline/model"
)

// ParamSeparator separates the step name from the parameter name in SetParamString keys.
const ParamSeparator = "__"

// Assignment sets Param of Step to Value.
type Assignment struct {
	Value any
	Step  string
	Param string
}

func stepParams(ns NamedStep) (model.Params, error) {
	configurable, ok := ns.Step.(Configurable)
	if !ok {
		return model.Params{}, nil
	}

	params := configurable.Params()
	for name := range params {
		if name == "" || strings.Contains(name, ParamSeparator) {
			return nil, errors.Wrapf(ErrInvalidParamKey, "step %s exposes parameter %q", ns.Name, name)
		}
	}

	return params, nil
}

// ParseParamKey splits "step__param". Parameter names are atomic, so a key
// holding the separator more than once is rejected.
func ParseParamKey(key string) (string, string, error) {
	stepName, paramName, found := strings.Cut(key, ParamSeparator)
	if !found || stepName == "" || paramName == "" || strings.Contains(paramName, ParamSeparator) {
		return "", "", errors.Wrapf(ErrInvalidParamKey, "%q, want <step>%s<param>", key, ParamSeparator)
	}

	return stepName, paramName, nil
}

func (p *Pipeline) resolveParam(stepName, paramName string) (model.Param, error) {
	if _, ok := p.named[stepName]; !ok {
		return model.Param{}, errors.Wrapf(ErrUnknownStep, "%q", stepName)
	}

	param, ok := p.params[stepName][paramName]
	if !ok {
		return model.Param{}, errors.Wrapf(ErrUnknownParameter, "%s has no parameter %q", stepName, paramName)
	}

	return param, nil
}

// SetParams assigns step parameters. Every assignment is resolved before any
// setter runs, so an unknown step or parameter leaves the pipeline untouched.
func (p *Pipeline) SetParams(assignments ...Assignment) (*Pipeline, error) {
	if p == nil {
		return nil, ErrPipelineMustBeSet
	}

	resolved := make([]model.Param, len(assignments))

	for i, a := range assignments {
		param, err := p.resolveParam(a.Step, a.Param)
		if err != nil {
			return p, err
		}

		resolved[i] = param
	}

	for i, a := range assignments {
		err := resolved[i].Set(a.Value)
		if err != nil {
			return p, errors.Wrapf(err, "unable to set %s%s%s", a.Step, ParamSeparator, a.Param)
		}
	}

	return p, nil
}

// SetParamString is like SetParams with "step__param" keys, applied in key order.
func (p *Pipeline) SetParamString(values map[string]any) (*Pipeline, error) {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	assignments := make([]Assignment, len(keys))

	for i, key := range keys {
		stepName, paramName, err := ParseParamKey(key)
		if err != nil {
			return p, err
		}

		assignments[i] = Assignment{Step: stepName, Param: paramName, Value: values[key]}
	}

	return p.SetParams(assignments...)
}

// Param returns the current value of a step parameter.
func (p *Pipeline) Param(stepName, paramName string) (any, error) {
	param, err := p.resolveParam(stepName, paramName)
	if err != nil {
		return nil, err
	}

	return param.Get(), nil
}
