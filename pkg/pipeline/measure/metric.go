package measure

import (
	"sync"
	"time"
)

// DefaultMetric is a mutex-guarded Metric.
type DefaultMetric struct {
	mu               sync.Mutex
	fitElapsed       time.Duration
	transformElapsed time.Duration
	fits             int64
	transforms       int64
}

func (mt *DefaultMetric) AddFit(elapsed time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.fits++
	mt.fitElapsed += elapsed
}

func (mt *DefaultMetric) AddTransform(elapsed time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.transforms++
	mt.transformElapsed += elapsed
}

func (mt *DefaultMetric) AVGFit() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	if mt.fits == 0 {
		return 0
	}

	return round(time.Duration(float64(mt.fitElapsed) / float64(mt.fits)))
}

func (mt *DefaultMetric) AVGTransform() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	if mt.transforms == 0 {
		return 0
	}

	return round(time.Duration(float64(mt.transformElapsed) / float64(mt.transforms)))
}

func (mt *DefaultMetric) Totals() (int64, int64) {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.fits, mt.transforms
}

func round(d time.Duration) time.Duration {
	switch {
	case d > time.Second:
		d = d.Round(time.Second)
	case d > time.Millisecond:
		d = d.Round(time.Millisecond)
	case d > time.Microsecond:
		d = d.Round(time.Microsecond)
	}

	return d
}

var _ Metric = (*DefaultMetric)(nil)
