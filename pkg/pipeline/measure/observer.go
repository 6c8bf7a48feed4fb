package measure

import (
	"time"

	"github.com/youngwookim/mlpipe/pkg/pipeline"
)

type pipelineMeasure struct {
	m Measure
}

func (pm pipelineMeasure) OnStageFit(stage string, elapsed time.Duration) {
	pm.m.Metric(stage).AddFit(elapsed)
}

func (pm pipelineMeasure) OnStageTransform(stage string, elapsed time.Duration) {
	pm.m.Metric(stage).AddTransform(elapsed)
}

// PipelineObserver adapts a Measure into a pipeline observer. Attach it with
// Pipeline.Observe to record per-stage fit and transform timings.
func PipelineObserver(m Measure) pipeline.Observer {
	return pipelineMeasure{m: m}
}

var _ pipeline.Observer = pipelineMeasure{}
