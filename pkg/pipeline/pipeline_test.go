package pipeline_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youngwookim/mlpipe/pkg/pipeline"
)

func TestAppendStageTracksLastTrainableIndex(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New()
	require.NoError(t, err)
	assert.Equal(t, -1, pipe.LastTrainableIndex())
	assert.False(t, pipe.NeedFit())

	_, err = pipe.AppendStage(newFakeTransformer("a"))
	require.NoError(t, err)
	assert.Equal(t, -1, pipe.LastTrainableIndex())

	_, err = pipe.AppendStage(newFakeEstimator("b"))
	require.NoError(t, err)
	assert.Equal(t, 1, pipe.LastTrainableIndex())
	assert.True(t, pipe.NeedFit())

	_, err = pipe.AppendStage(newFakeTransformer("c"))
	require.NoError(t, err)
	assert.Equal(t, 1, pipe.LastTrainableIndex())

	_, err = pipe.AppendStage(newFakeEstimator("d"))
	require.NoError(t, err)
	assert.Equal(t, 3, pipe.LastTrainableIndex())
}

func TestAppendStageInvalid(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New(newFakeTransformer("a"))
	require.NoError(t, err)

	_, err = pipe.AppendStage(&badStage{})
	require.ErrorIs(t, err, pipeline.ErrInvalidStage)

	// The failed append must leave the pipeline untouched.
	assert.Len(t, pipe.Stages(), 1)
	assert.Equal(t, -1, pipe.LastTrainableIndex())

	_, err = pipe.AppendStage(nil)
	require.ErrorIs(t, err, pipeline.ErrInvalidStage)
	assert.Len(t, pipe.Stages(), 1)
}

func TestAppendStageChains(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New()
	require.NoError(t, err)

	same, err := pipe.AppendStage(newFakeTransformer("a"))
	require.NoError(t, err)
	assert.Same(t, pipe, same)
}

func TestTransformerOnlyPipeline(t *testing.T) {
	t.Parallel()

	first := newFakeTransformer("a")
	second := newFakeTransformer("b")

	pipe, err := pipeline.New(first, second)
	require.NoError(t, err)
	assert.False(t, pipe.NeedFit())

	// Transform works without fitting.
	output, err := pipe.Transform(nil, []string{})
	require.NoError(t, err)
	assert.Equal(t, []string{"transform:a", "transform:b"}, output)

	// Fit is a no-op copy carrying the stages over by reference.
	fitted, err := pipe.Fit(nil, []string{})
	require.NoError(t, err)
	require.Len(t, fitted.Stages(), 2)
	assert.Same(t, first, fitted.Stages()[0])
	assert.Same(t, second, fitted.Stages()[1])
	assert.False(t, fitted.NeedFit())
}

func TestTransformBeforeFit(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New(newFakeEstimator("a"))
	require.NoError(t, err)

	_, err = pipe.Transform(nil, []string{})
	require.ErrorIs(t, err, pipeline.ErrNotFitted)
}

func TestFitChainsTransforms(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New(
		newFakeTransformer("a"),
		newFakeEstimator("b"),
		newFakeTransformer("c"),
	)
	require.NoError(t, err)

	fitted, err := pipe.Fit(nil, []string{})
	require.NoError(t, err)

	// The estimator trained on the output of the stage before it, not on
	// the raw input.
	stages := fitted.Stages()
	require.Len(t, stages, 3)

	model, ok := stages[1].(*fakeModel)
	require.True(t, ok)
	assert.Equal(t, []string{"transform:a"}, model.trainedOn)

	// Stages around the estimator are carried over by reference.
	assert.Same(t, pipe.Stages()[0], stages[0])
	assert.Same(t, pipe.Stages()[2], stages[2])

	assert.False(t, fitted.NeedFit())

	output, err := fitted.Transform(nil, []string{})
	require.NoError(t, err)
	assert.Equal(t, []string{"transform:a", "transform:model(b)", "transform:c"}, output)
}

func TestFitDoesNotMutateOriginal(t *testing.T) {
	t.Parallel()

	estimator := newFakeEstimator("b")

	pipe, err := pipeline.New(newFakeTransformer("a"), estimator)
	require.NoError(t, err)

	_, err = pipe.Fit(nil, []string{})
	require.NoError(t, err)

	assert.True(t, pipe.NeedFit())
	assert.Same(t, estimator, pipe.Stages()[1])

	_, err = pipe.Transform(nil, []string{})
	require.ErrorIs(t, err, pipeline.ErrNotFitted)
}

func TestFitSkipsStagesAfterLastTrainable(t *testing.T) {
	t.Parallel()

	tail := newFakeTransformer("tail")

	pipe, err := pipeline.New(newFakeEstimator("a"), tail)
	require.NoError(t, err)

	fitted, err := pipe.Fit(nil, []string{})
	require.NoError(t, err)

	// The trailing transformer was carried over without being invoked.
	assert.Zero(t, tail.calls)
	assert.Same(t, tail, fitted.Stages()[1])
}

func TestFitIsPure(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New(newFakeTransformer("a"), newFakeEstimator("b"))
	require.NoError(t, err)

	first, err := pipe.Fit(nil, []string{"seed"})
	require.NoError(t, err)

	second, err := pipe.Fit(nil, []string{"seed"})
	require.NoError(t, err)

	firstOut, err := first.Transform(nil, []string{"seed"})
	require.NoError(t, err)

	secondOut, err := second.Transform(nil, []string{"seed"})
	require.NoError(t, err)

	assert.Equal(t, firstOut, secondOut)
}

func TestFitEquivalence(t *testing.T) {
	t.Parallel()

	estimator := newFakeEstimator("a")
	transformer := newFakeTransformer("b")

	pipe, err := pipeline.New(estimator, transformer)
	require.NoError(t, err)
	require.True(t, pipe.NeedFit())

	fitted, err := pipe.Fit(nil, []string{"x"})
	require.NoError(t, err)

	got, err := fitted.Transform(nil, []string{"x"})
	require.NoError(t, err)

	// Same result as fitting and chaining by hand.
	model, err := estimator.Fit(nil, []string{"x"})
	require.NoError(t, err)

	intermediate, err := model.Transform(nil, []string{"x"})
	require.NoError(t, err)

	want, err := transformer.Transform(nil, intermediate)
	require.NoError(t, err)

	assert.Equal(t, want, got)
}

func TestFitErrorAborts(t *testing.T) {
	t.Parallel()

	failing := newFakeEstimator("a")
	failing.fitErr = assert.AnError

	pipe, err := pipeline.New(newFakeTransformer("pre"), failing, newFakeTransformer("post"))
	require.NoError(t, err)

	fitted, err := pipe.Fit(nil, []string{})
	require.ErrorIs(t, err, assert.AnError)
	assert.Nil(t, fitted)
}

func TestNestedPipeline(t *testing.T) {
	t.Parallel()

	inner, err := pipeline.New(newFakeEstimator("inner"))
	require.NoError(t, err)

	outer, err := pipeline.New(inner, newFakeTransformer("z"))
	require.NoError(t, err)

	assert.True(t, outer.NeedFit())
	assert.Equal(t, 0, outer.LastTrainableIndex())

	fitted, err := outer.Fit(nil, []string{})
	require.NoError(t, err)
	assert.False(t, fitted.NeedFit())

	fittedInner, ok := fitted.Stages()[0].(*pipeline.Pipeline)
	require.True(t, ok)
	assert.False(t, fittedInner.NeedFit())

	output, err := fitted.Transform(nil, []string{})
	require.NoError(t, err)
	assert.Equal(t, []string{"transform:model(inner)", "transform:z"}, output)
}

func TestNestedFittedPipelineIsTransformer(t *testing.T) {
	t.Parallel()

	inner, err := pipeline.New(newFakeTransformer("inner"))
	require.NoError(t, err)

	// A pipeline without trainable stages nests as a plain transformer
	// and does not move the trainable index.
	outer, err := pipeline.New(inner, newFakeEstimator("e"))
	require.NoError(t, err)
	assert.Equal(t, 1, outer.LastTrainableIndex())

	outer2, err := pipeline.New(newFakeEstimator("e"), inner)
	require.NoError(t, err)
	assert.Equal(t, 0, outer2.LastTrainableIndex())
}

func TestEmptyPipeline(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New()
	require.NoError(t, err)
	assert.False(t, pipe.NeedFit())

	output, err := pipe.Transform(nil, []string{"x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, output)

	fitted, err := pipe.Fit(nil, []string{"x"})
	require.NoError(t, err)
	assert.Empty(t, fitted.Stages())
}

func TestStagesIsACopy(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New(newFakeTransformer("a"))
	require.NoError(t, err)

	stages := pipe.Stages()
	stages[0] = nil

	assert.NotNil(t, pipe.Stages()[0])
}

type recordingObserver struct {
	mu         sync.Mutex
	fits       []string
	transforms []string
}

func (o *recordingObserver) OnStageFit(stage string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fits = append(o.fits, stage)
}

func (o *recordingObserver) OnStageTransform(stage string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.transforms = append(o.transforms, stage)
}

func TestObserverSeesFitAndTransform(t *testing.T) {
	t.Parallel()

	obs := &recordingObserver{}

	pipe, err := pipeline.New(newFakeTransformer("a"), newFakeEstimator("b"))
	require.NoError(t, err)
	pipe.Observe(obs)

	fitted, err := pipe.Fit(nil, []string{})
	require.NoError(t, err)

	assert.Equal(t, []string{"1:test.estimator"}, obs.fits)
	assert.Equal(t, []string{"0:test.transformer", "1:test.model"}, obs.transforms)

	// The fitted pipeline inherits the observers.
	_, err = fitted.Transform(nil, []string{})
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"0:test.transformer", "1:test.model", "0:test.transformer", "1:test.model"},
		obs.transforms)
}
