package pipeline

import (
	"time"

	"github.com/pkg/errors"
)

// noTrainableStage is the sentinel value of lastTrainableIdx when no stage
// in the pipeline needs fitting.
const noTrainableStage = -1

// Pipeline is an ordered sequence of stages. It is itself a stage: it
// transforms once fitted, and its fitting state is derived from its contents,
// so it can be nested inside another pipeline.
type Pipeline struct {
	BaseStage
	ModelMarker

	stages           []Stage
	lastTrainableIdx int
	observers        []Observer
}

// New creates a pipeline and appends the given stages in order.
func New(stages ...Stage) (*Pipeline, error) {
	pipe := &Pipeline{lastTrainableIdx: noTrainableStage}

	for _, stage := range stages {
		_, err := pipe.AppendStage(stage)
		if err != nil {
			return nil, err
		}
	}

	return pipe, nil
}

// MustNew is like New but panics on an invalid stage. Intended for
// package-level pipelines and tests.
func MustNew(stages ...Stage) *Pipeline {
	pipe, err := New(stages...)
	if err != nil {
		panic(err)
	}

	return pipe
}

// stageNeedsFit reports whether a stage still requires fitting. A nested
// pipeline is classified by its own current fitting state; anything else
// needs fitting iff it is an estimator.
func stageNeedsFit(stage Stage) bool {
	if nested, ok := stage.(*Pipeline); ok {
		return nested.NeedFit()
	}

	_, isEstimator := stage.(Estimator)

	return isEstimator
}

// AppendStage adds a stage to the end of the pipeline and returns the
// pipeline for chaining. A stage that needs fitting moves the last trainable
// index; a stage that needs no fitting must be a transformer, otherwise
// ErrInvalidStage is returned and the pipeline is left untouched.
func (p *Pipeline) AppendStage(stage Stage) (*Pipeline, error) {
	if stage == nil {
		return nil, errors.Wrap(ErrInvalidStage, "stage is nil")
	}

	if stageNeedsFit(stage) {
		p.lastTrainableIdx = len(p.stages)
	} else if _, ok := stage.(Transformer); !ok {
		return nil, errors.Wrapf(ErrInvalidStage, "stage %s", TypeLabel(stage))
	}

	p.stages = append(p.stages, stage)

	return p, nil
}

// NeedFit reports whether any stage of the pipeline still requires fitting.
func (p *Pipeline) NeedFit() bool {
	return p.lastTrainableIdx > noTrainableStage
}

// LastTrainableIndex returns the index of the last stage that still needs
// fitting, or -1 when there is none.
func (p *Pipeline) LastTrainableIndex() int {
	return p.lastTrainableIdx
}

// Stages returns a copy of the stage sequence. The stages themselves are
// shared, not cloned.
func (p *Pipeline) Stages() []Stage {
	stages := make([]Stage, len(p.stages))
	copy(stages, p.stages)

	return stages
}

// Observe attaches observers notified of per-stage fit and transform timings.
// Pipelines produced by Fit inherit them.
func (p *Pipeline) Observe(observers ...Observer) *Pipeline {
	p.observers = append(p.observers, observers...)

	return p
}

// Fit trains the pipeline on the given table and returns a new pipeline with
// every trainable stage replaced by its fitted model. Stages up to the last
// trainable one are applied in order, so each of them trains on the output of
// the stages before it; stages after the last trainable one are carried over
// untouched. The receiver is never mutated.
//
// A stage failure aborts the whole call and no pipeline is returned.
func (p *Pipeline) Fit(env Env, input Table) (*Pipeline, error) {
	fitted := &Pipeline{lastTrainableIdx: noTrainableStage, observers: p.observers}
	fitted.Params().Merge(p.Params())

	for i, stage := range p.stages {
		if i > p.lastTrainableIdx {
			_, err := fitted.AppendStage(stage)
			if err != nil {
				return nil, err
			}

			continue
		}

		next, err := p.fitStage(env, input, i, stage)
		if err != nil {
			return nil, err
		}

		_, err = fitted.AppendStage(next)
		if err != nil {
			return nil, err
		}

		input, err = p.transformStage(env, input, i, next)
		if err != nil {
			return nil, err
		}
	}

	return fitted, nil
}

// fitStage produces the transformer standing at position idx in the fitted
// pipeline: the stage's fitted model when it needs fitting, the stage itself
// otherwise.
func (p *Pipeline) fitStage(env Env, input Table, idx int, stage Stage) (Transformer, error) {
	if !stageNeedsFit(stage) {
		trf, ok := stage.(Transformer)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidStage, "stage %s", StageLabel(idx, stage))
		}

		return trf, nil
	}

	start := time.Now()

	var (
		fitted Transformer
		err    error
	)

	switch st := stage.(type) {
	case *Pipeline:
		fitted, err = st.Fit(env, input)
	case Estimator:
		fitted, err = st.Fit(env, input)
	default:
		return nil, errors.Wrapf(ErrInvalidStage, "stage %s", StageLabel(idx, stage))
	}

	if err != nil {
		return nil, errors.Wrapf(err, "unable to fit stage %s", StageLabel(idx, stage))
	}

	for _, obs := range p.observers {
		obs.OnStageFit(StageLabel(idx, stage), time.Since(start))
	}

	return fitted, nil
}

func (p *Pipeline) transformStage(env Env, input Table, idx int, trf Transformer) (Table, error) {
	start := time.Now()

	output, err := trf.Transform(env, input)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to transform stage %s", StageLabel(idx, trf))
	}

	for _, obs := range p.observers {
		obs.OnStageTransform(StageLabel(idx, trf), time.Since(start))
	}

	return output, nil
}

// Transform applies every stage in order, piping each output into the next
// stage, and returns the final table. It fails with ErrNotFitted while the
// pipeline still needs fitting.
func (p *Pipeline) Transform(env Env, input Table) (Table, error) {
	if p.NeedFit() {
		return nil, errors.WithStack(ErrNotFitted)
	}

	var err error

	for i, stage := range p.stages {
		trf, ok := stage.(Transformer)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidStage, "stage %s", StageLabel(i, stage))
		}

		input, err = p.transformStage(env, input, i, trf)
		if err != nil {
			return nil, err
		}
	}

	return input, nil
}
