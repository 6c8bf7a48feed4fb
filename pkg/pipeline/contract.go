package pipeline

// Env is the opaque execution environment of the engine backing a stage.
// The pipeline layer never inspects it and passes it through unchanged to
// every stage call.
type Env interface{}

// Table is an opaque handle to a dataset owned by the backing engine. Tables
// flow by reference from one stage to the next; the pipeline layer never
// looks at their schema or contents.
type Table interface{}

// Stage is the base contract shared by everything that can be appended to a
// pipeline. Every stage owns a parameter bag. Concrete stage types must be
// constructible with no arguments so they can be rebuilt from a serialized
// document.
type Stage interface {
	// Params returns the stage's parameter bag. It is the bag itself, not
	// a copy, so mutations by the caller are visible to the stage.
	Params() *Params
}

// Transformer is a stage that applies a computation to an input table and
// returns the result table. Transform must be a pure function of the
// environment, the input and the current parameter values: fitting relies on
// re-deriving downstream inputs through repeated Transform calls.
type Transformer interface {
	Stage
	Transform(env Env, input Table) (Table, error)
}

// Estimator is a stage that trains on an input table and produces a Model
// fitting those records. Fit must not mutate the input table.
type Estimator interface {
	Stage
	Fit(env Env, input Table) (Model, error)
}

// Model is a Transformer produced by an Estimator's Fit. It carries no extra
// behaviour; the marker only records provenance. Satisfy it by embedding
// ModelMarker in a fitted stage type.
type Model interface {
	Transformer
	fittedModel()
}

// ModelMarker marks a Transformer as the product of a fit. Embed it in
// concrete model types.
type ModelMarker struct{}

func (ModelMarker) fittedModel() {}
