package measure_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youngwookim/mlpipe/pkg/pipeline/measure"
)

func TestMetricAverages(t *testing.T) {
	t.Parallel()

	metric := &measure.DefaultMetric{}
	assert.Zero(t, metric.AVGFit())
	assert.Zero(t, metric.AVGTransform())

	metric.AddFit(100 * time.Millisecond)
	metric.AddFit(300 * time.Millisecond)
	metric.AddTransform(40 * time.Millisecond)

	assert.Equal(t, 200*time.Millisecond, metric.AVGFit())
	assert.Equal(t, 40*time.Millisecond, metric.AVGTransform())

	fits, transforms := metric.Totals()
	assert.Equal(t, int64(2), fits)
	assert.Equal(t, int64(1), transforms)
}

func TestMeasureCreatesMetricsOnFirstUse(t *testing.T) {
	t.Parallel()

	msr := measure.NewMeasure()

	metric := msr.Metric("0:stage")
	require.NotNil(t, metric)

	// Same label, same metric.
	assert.Same(t, metric, msr.Metric("0:stage"))

	msr.Metric("1:stage")
	assert.Len(t, msr.AllMetrics(), 2)
}

func TestPipelineObserverRecords(t *testing.T) {
	t.Parallel()

	msr := measure.NewMeasure()
	obs := measure.PipelineObserver(msr)

	obs.OnStageFit("0:stage", 2*time.Second)
	obs.OnStageTransform("0:stage", time.Second)
	obs.OnStageTransform("0:stage", 3*time.Second)

	metric := msr.Metric("0:stage")
	assert.Equal(t, 2*time.Second, metric.AVGFit())
	assert.Equal(t, 2*time.Second, metric.AVGTransform())
}
