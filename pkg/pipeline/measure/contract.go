package measure

import "time"

// Metric collects the fit and transform timings of a single stage.
type Metric interface {
	AddFit(elapsed time.Duration)
	AddTransform(elapsed time.Duration)
	AVGFit() time.Duration
	AVGTransform() time.Duration
	Totals() (fits, transforms int64)
}

// Measure collects the metrics of every stage of a pipeline run, keyed by
// stage label.
type Measure interface {
	// Metric returns the metric stored under the label, creating it on
	// first use.
	Metric(stage string) Metric
	AllMetrics() map[string]Metric
}
