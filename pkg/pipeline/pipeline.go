package pipeline

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/askiada/go-clusterphot/pkg/pipeline/model"
)

// RunIDKey holds the uuid generated for every run.
const RunIDKey = "run_id"

// Pipeline is an ordered chain of named steps.
type Pipeline struct {
	keyGraph graph.Graph[string, string]
	named    map[string]Step
	params   map[string]model.Params
	steps    []NamedStep
	infos    []*model.StepInfo
	opts     []model.PipelineOption
}

// New creates a new pipeline running steps in the given order.
//
// When two steps share a name, both run but lookups by name resolve to the last one.
func New(steps []NamedStep, opts ...model.PipelineOption) (*Pipeline, error) {
	pipe := &Pipeline{
		named:  make(map[string]Step, len(steps)),
		params: make(map[string]model.Params, len(steps)),
		steps:  steps,
		infos:  make([]*model.StepInfo, len(steps)),
		opts:   opts,
	}

	for i, ns := range steps {
		if ns.Step == nil {
			return nil, errors.Wrapf(ErrStepMustBeSet, "step %d", i)
		}

		if ns.Name == "" || strings.Contains(ns.Name, ParamSeparator) {
			return nil, errors.Wrapf(ErrInvalidStepName, "%q", ns.Name)
		}

		pipe.infos[i] = &model.StepInfo{
			Type:  model.TransformStepType,
			Name:  ns.Name,
			Keys:  ns.Step.Keys(),
			Index: i,
		}
		pipe.named[ns.Name] = ns.Step

		params, err := stepParams(ns)
		if err != nil {
			return nil, err
		}

		pipe.params[ns.Name] = params
	}

	links := buildLinks(pipe.infos)

	keyGraph, err := newKeyGraph(pipe.infos, links)
	if err != nil {
		return nil, errors.Wrap(err, "unable to build key graph")
	}

	pipe.keyGraph = keyGraph

	for _, opt := range opts {
		err := opt.New()
		if err != nil {
			return nil, errors.Wrap(err, "unable to apply pipeline option")
		}

		for i, info := range pipe.infos {
			err := opt.PrepareStep(info, links[i])
			if err != nil {
				return nil, errors.Wrapf(err, "unable to prepare step %s", info.Name)
			}
		}
	}

	return pipe, nil
}

// Run copies input and passes it through every step in order.
// The first failing step aborts the run and no data is returned.
func (p *Pipeline) Run(ctx context.Context, input Data) (Data, error) {
	if p == nil {
		return Data{}, ErrPipelineMustBeSet
	}

	data := NewData(input.values).With(RunIDKey, uuid.NewString())

	err := checkInput(p.infos, data)
	if err != nil {
		return Data{}, err
	}

	start := time.Now()

	for i, ns := range p.steps {
		if ctx.Err() != nil {
			return Data{}, errors.Wrap(ctx.Err(), ns.Name)
		}

		data, err = p.runStep(ctx, p.infos[i], ns.Step, data)
		if err != nil {
			return Data{}, errors.Wrap(err, ns.Name)
		}
	}

	return data, p.finishRun(time.Since(start))
}

func (p *Pipeline) runStep(ctx context.Context, info *model.StepInfo, step Step, in Data) (Data, error) {
	stepCtx := ctx

	for i, opt := range p.opts {
		beforeCtx, err := opt.BeforeStep(stepCtx, info)
		if err != nil {
			err = errors.Wrap(err, "unable to run before step function")

			return Data{}, afterStep(stepCtx, p.opts[:i], info, 0, err)
		}

		stepCtx = beforeCtx
	}

	start := time.Now()
	out, err := step.Transform(stepCtx, in)

	if err == nil {
		err = checkOutput(info, in, out)
	}

	err = afterStep(stepCtx, p.opts, info, time.Since(start), err)
	if err != nil {
		return Data{}, err
	}

	return out, nil
}

// afterStep runs AfterStep on opts and returns stepErr, or the first hook error when stepErr is nil.
func afterStep(
	ctx context.Context, opts []model.PipelineOption, info *model.StepInfo, elapsed time.Duration, stepErr error,
) error {
	err := stepErr

	for _, opt := range opts {
		hookErr := opt.AfterStep(ctx, info, elapsed, stepErr)
		if hookErr != nil && err == nil {
			err = errors.Wrap(hookErr, "unable to run after step function")
		}
	}

	return err
}

func (p *Pipeline) finishRun(total time.Duration) error {
	for _, opt := range p.opts {
		err := opt.Finish(total)
		if err != nil {
			return errors.Wrap(err, "unable to finish pipeline option")
		}
	}

	return nil
}

// GetStep returns the step registered under name.
func (p *Pipeline) GetStep(name string) (Step, error) {
	step, ok := p.named[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownStep, "%q", name)
	}

	return step, nil
}

// Steps returns the step descriptions in execution order.
func (p *Pipeline) Steps() []model.StepInfo {
	out := make([]model.StepInfo, len(p.infos))
	for i, info := range p.infos {
		out[i] = *info
	}

	return out
}

// Upstream returns the names of the steps, or "start", providing keys read by the named step.
func (p *Pipeline) Upstream(name string) ([]string, error) {
	if _, ok := p.named[name]; !ok {
		return nil, errors.Wrapf(ErrUnknownStep, "%q", name)
	}

	predecessors, err := p.keyGraph.PredecessorMap()
	if err != nil {
		return nil, errors.Wrap(err, "unable to get predecessor map")
	}

	out := make([]string, 0, len(predecessors[name]))
	for from := range predecessors[name] {
		out = append(out, from)
	}

	sort.Strings(out)

	return out, nil
}
