package measure

import "sync"

// DefaultMeasure stores one DefaultMetric per stage label.
type DefaultMeasure struct {
	mu     sync.Mutex
	stages map[string]Metric
}

func NewMeasure() *DefaultMeasure {
	return &DefaultMeasure{
		stages: make(map[string]Metric),
	}
}

func (m *DefaultMeasure) Metric(stage string) Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	mt, ok := m.stages[stage]
	if !ok {
		mt = &DefaultMetric{}
		m.stages[stage] = mt
	}

	return mt
}

func (m *DefaultMeasure) AllMetrics() map[string]Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := make(map[string]Metric, len(m.stages))
	for name, mt := range m.stages {
		all[name] = mt
	}

	return all
}

var _ Measure = (*DefaultMeasure)(nil)
