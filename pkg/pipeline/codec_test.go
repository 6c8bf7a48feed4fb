package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youngwookim/mlpipe/pkg/pipeline"
)

func TestPipelineJSONRoundTrip(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New(newFakeTransformer("a"), newFakeEstimator("b"))
	require.NoError(t, err)
	pipe.Params().Set("owner", "tests")

	data, err := pipe.ToJSON()
	require.NoError(t, err)

	decoded, err := pipeline.FromJSON(data)
	require.NoError(t, err)

	// Invariants are recomputed by re-appending, not copied in.
	assert.True(t, decoded.NeedFit())
	assert.Equal(t, 1, decoded.LastTrainableIndex())

	stages := decoded.Stages()
	require.Len(t, stages, 2)

	transformer, ok := stages[0].(*fakeTransformer)
	require.True(t, ok)

	v, _ := transformer.Params().Get("name")
	assert.Equal(t, "a", v)

	_, ok = stages[1].(*fakeEstimator)
	require.True(t, ok)

	v, _ = decoded.Params().Get("owner")
	assert.Equal(t, "tests", v)
}

func TestPipelineJSONBehavesLikeOriginal(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New(newFakeTransformer("a"), newFakeEstimator("b"))
	require.NoError(t, err)

	data, err := pipe.ToJSON()
	require.NoError(t, err)

	decoded, err := pipeline.FromJSON(data)
	require.NoError(t, err)

	fittedOriginal, err := pipe.Fit(nil, []string{})
	require.NoError(t, err)

	fittedDecoded, err := decoded.Fit(nil, []string{})
	require.NoError(t, err)

	wantOut, err := fittedOriginal.Transform(nil, []string{})
	require.NoError(t, err)

	gotOut, err := fittedDecoded.Transform(nil, []string{})
	require.NoError(t, err)

	assert.Equal(t, wantOut, gotOut)
}

func TestPipelineJSONPreservesAliases(t *testing.T) {
	t.Parallel()

	shared := newFakeTransformer("shared")

	pipe, err := pipeline.New(shared, newFakeTransformer("middle"), shared)
	require.NoError(t, err)

	data, err := pipe.ToJSON()
	require.NoError(t, err)

	decoded, err := pipeline.FromJSON(data)
	require.NoError(t, err)

	stages := decoded.Stages()
	require.Len(t, stages, 3)

	// The aliased stage decodes to one shared instance, not two copies.
	assert.Same(t, stages[0], stages[2])
	assert.NotSame(t, stages[0], stages[1])
}

func TestPipelineJSONNested(t *testing.T) {
	t.Parallel()

	inner, err := pipeline.New(newFakeEstimator("inner"))
	require.NoError(t, err)

	outer, err := pipeline.New(inner, newFakeTransformer("z"))
	require.NoError(t, err)

	data, err := outer.ToJSON()
	require.NoError(t, err)

	decoded, err := pipeline.FromJSON(data)
	require.NoError(t, err)
	assert.True(t, decoded.NeedFit())

	decodedInner, ok := decoded.Stages()[0].(*pipeline.Pipeline)
	require.True(t, ok)
	assert.True(t, decodedInner.NeedFit())
	require.Len(t, decodedInner.Stages(), 1)
}

func TestPipelineJSONSharedAcrossNesting(t *testing.T) {
	t.Parallel()

	shared := newFakeTransformer("shared")

	inner, err := pipeline.New(shared)
	require.NoError(t, err)

	outer, err := pipeline.New(inner, shared)
	require.NoError(t, err)

	data, err := outer.ToJSON()
	require.NoError(t, err)

	decoded, err := pipeline.FromJSON(data)
	require.NoError(t, err)

	decodedInner, ok := decoded.Stages()[0].(*pipeline.Pipeline)
	require.True(t, ok)

	// Identity is preserved across nesting levels.
	assert.Same(t, decodedInner.Stages()[0], decoded.Stages()[1])
}

// looseStage is a valid transformer that was never registered.
type looseStage struct {
	pipeline.BaseStage
}

func (s *looseStage) Transform(_ pipeline.Env, input pipeline.Table) (pipeline.Table, error) {
	return input, nil
}

func TestPipelineJSONUnregisteredStage(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New(&looseStage{})
	require.NoError(t, err)

	_, err = pipe.ToJSON()
	require.ErrorIs(t, err, pipeline.ErrUnknownStageType)
}

func TestFromJSONUnknownType(t *testing.T) {
	t.Parallel()

	doc := []byte(`{"stages":[0],"arena":[{"type":"test.unknown","params":{}}]}`)

	_, err := pipeline.FromJSON(doc)
	require.ErrorIs(t, err, pipeline.ErrUnknownStageType)
}

func TestFromJSONRevalidatesStages(t *testing.T) {
	t.Parallel()

	// test.bad decodes fine but fails the append validation.
	doc := []byte(`{"stages":[0],"arena":[{"type":"test.bad","params":{}}]}`)

	_, err := pipeline.FromJSON(doc)
	require.ErrorIs(t, err, pipeline.ErrInvalidStage)
}

func TestFromJSONIndexOutOfRange(t *testing.T) {
	t.Parallel()

	doc := []byte(`{"stages":[3],"arena":[{"type":"test.transformer","params":{}}]}`)

	_, err := pipeline.FromJSON(doc)
	require.Error(t, err)
}

func TestFromJSONMalformed(t *testing.T) {
	t.Parallel()

	_, err := pipeline.FromJSON([]byte("not a document"))
	require.Error(t, err)
}

func TestLoadJSONAppends(t *testing.T) {
	t.Parallel()

	source, err := pipeline.New(newFakeEstimator("b"))
	require.NoError(t, err)

	data, err := source.ToJSON()
	require.NoError(t, err)

	pipe, err := pipeline.New(newFakeTransformer("a"))
	require.NoError(t, err)

	// Loading appends the document's stages after the existing ones.
	require.NoError(t, pipe.LoadJSON(data))
	assert.Len(t, pipe.Stages(), 2)
	assert.Equal(t, 1, pipe.LastTrainableIndex())
}
