package measure

import (
	"sort"
	"sync"
	"time"

	"github.com/askiada/go-clusterphot/pkg/pipeline/model"
)

type DefaultMeasure struct {
	mu    sync.Mutex
	Steps map[string]Metric
}

func NewDefaultMeasure() *DefaultMeasure {
	return &DefaultMeasure{
		Steps: make(map[string]Metric),
	}
}

// AddMetric registers a metric for name. An existing metric is kept.
func (m *DefaultMeasure) AddMetric(name string) Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	if mt, ok := m.Steps[name]; ok {
		return mt
	}

	mt := &DefaultMetric{mu: &sync.Mutex{}}
	m.Steps[name] = mt

	return mt
}

func (m *DefaultMeasure) GetMetric(name string) Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.Steps[name]
}

func (m *DefaultMeasure) AllMetrics() map[string]Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]Metric, len(m.Steps))
	for name, mt := range m.Steps {
		out[name] = mt
	}

	return out
}

// StepDuration is the average duration of one step.
type StepDuration struct {
	Name    string
	Average time.Duration
}

// Slowest returns the steps, without the run total, sorted from the slowest to the fastest average duration.
func Slowest(msr Measure) []StepDuration {
	out := []StepDuration{}

	for name, mt := range msr.AllMetrics() {
		if name == model.EndStep.Name || mt.Runs() == 0 {
			continue
		}

		out = append(out, StepDuration{Name: name, Average: mt.AVGDuration()})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Average == out[j].Average {
			return out[i].Name < out[j].Name
		}

		return out[i].Average > out[j].Average
	})

	return out
}

var _ Measure = (*DefaultMeasure)(nil)
