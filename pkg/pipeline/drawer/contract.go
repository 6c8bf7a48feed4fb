package drawer

import (
	"io"

	"github.com/youngwookim/mlpipe/pkg/pipeline/measure"
)

// Kind classifies a drawn stage and picks its colour.
type Kind string

const (
	KindTransformer Kind = "transformer"
	KindEstimator   Kind = "estimator"
	KindModel       Kind = "model"
	KindPipeline    Kind = "pipeline"
	KindBoundary    Kind = "boundary"
)

// Drawer renders a pipeline's stage graph.
type Drawer interface {
	// AddStage adds a stage vertex to the graph.
	AddStage(label string, kind Kind) error
	// AddLink adds a directed edge between two stages.
	AddLink(parentLabel, childLabel string) error
	// AddMeasure annotates drawn stages with recorded timings.
	AddMeasure(msr measure.Measure) error
	// Render writes the graph to the writer.
	Render(w io.Writer) error
	// Draw writes the graph to the drawer's output file.
	Draw() error
}
