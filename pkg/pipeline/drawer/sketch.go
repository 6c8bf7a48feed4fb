package drawer

import (
	"github.com/youngwookim/mlpipe/pkg/pipeline"
)

const (
	startLabel = "start"
	endLabel   = "end"
)

// Sketch adds a pipeline to the drawer as a chain from a start to an end
// vertex. Nested pipelines appear as a pipeline vertex followed by their own
// stages, labelled with the nesting path as prefix.
func Sketch(drw Drawer, pipe *pipeline.Pipeline) error {
	err := drw.AddStage(startLabel, KindBoundary)
	if err != nil {
		return err
	}

	err = drw.AddStage(endLabel, KindBoundary)
	if err != nil {
		return err
	}

	last, err := sketchStages(drw, pipe, "", startLabel)
	if err != nil {
		return err
	}

	return drw.AddLink(last, endLabel)
}

func sketchStages(drw Drawer, pipe *pipeline.Pipeline, prefix, prev string) (string, error) {
	for i, stage := range pipe.Stages() {
		label := prefix + pipeline.StageLabel(i, stage)

		err := drw.AddStage(label, kindOf(stage))
		if err != nil {
			return "", err
		}

		err = drw.AddLink(prev, label)
		if err != nil {
			return "", err
		}

		prev = label

		if nested, ok := stage.(*pipeline.Pipeline); ok {
			prev, err = sketchStages(drw, nested, label+"/", label)
			if err != nil {
				return "", err
			}
		}
	}

	return prev, nil
}

// kindOf classifies a stage for colouring. Models are checked before
// estimators and transformers because a model satisfies both.
func kindOf(stage pipeline.Stage) Kind {
	if _, ok := stage.(*pipeline.Pipeline); ok {
		return KindPipeline
	}

	switch stage.(type) {
	case pipeline.Model:
		return KindModel
	case pipeline.Estimator:
		return KindEstimator
	default:
		return KindTransformer
	}
}
