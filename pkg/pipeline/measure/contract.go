package measure

import "time"

type Measure interface {
	AddMetric(name string) Metric
	GetMetric(name string) Metric
	AllMetrics() map[string]Metric
}

type Metric interface {
	AddDuration(elapsed time.Duration, failed bool)
	AVGDuration() time.Duration
	TotalDuration() time.Duration
	Runs() int64
	Failures() int64
}
