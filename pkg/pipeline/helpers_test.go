package pipeline_test

import (
	"github.com/youngwookim/mlpipe/pkg/pipeline"
)

func init() {
	pipeline.Register("test.transformer", func() pipeline.Stage { return &fakeTransformer{} })
	pipeline.Register("test.estimator", func() pipeline.Stage { return &fakeEstimator{} })
	pipeline.Register("test.model", func() pipeline.Stage { return &fakeModel{} })
	pipeline.Register("test.bad", func() pipeline.Stage { return &badStage{} })
}

// The fake stages trace their calls into the table, which is a plain
// []string history of every transform applied so far.

type fakeTransformer struct {
	pipeline.BaseStage

	calls int
}

func newFakeTransformer(name string) *fakeTransformer {
	t := &fakeTransformer{}
	t.Params().Set("name", name)

	return t
}

func (t *fakeTransformer) name() string {
	v, _ := t.Params().Get("name")
	name, _ := v.(string)

	return name
}

func (t *fakeTransformer) Transform(_ pipeline.Env, input pipeline.Table) (pipeline.Table, error) {
	t.calls++

	trace, _ := input.([]string)

	return append(append([]string{}, trace...), "transform:"+t.name()), nil
}

type fakeModel struct {
	fakeTransformer
	pipeline.ModelMarker

	trainedOn []string
}

type fakeEstimator struct {
	pipeline.BaseStage

	fitErr error
	fits   int
}

func newFakeEstimator(name string) *fakeEstimator {
	e := &fakeEstimator{}
	e.Params().Set("name", name)

	return e
}

func (e *fakeEstimator) name() string {
	v, _ := e.Params().Get("name")
	name, _ := v.(string)

	return name
}

func (e *fakeEstimator) Fit(_ pipeline.Env, input pipeline.Table) (pipeline.Model, error) {
	e.fits++

	if e.fitErr != nil {
		return nil, e.fitErr
	}

	trace, _ := input.([]string)

	model := &fakeModel{trainedOn: append([]string{}, trace...)}
	model.Params().Set("name", "model("+e.name()+")")

	return model, nil
}

// badStage carries params but is neither an estimator nor a transformer.
type badStage struct {
	pipeline.BaseStage
}

var (
	_ pipeline.Transformer = (*fakeTransformer)(nil)
	_ pipeline.Model       = (*fakeModel)(nil)
	_ pipeline.Estimator   = (*fakeEstimator)(nil)
)
