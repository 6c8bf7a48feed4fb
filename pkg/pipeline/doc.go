// Package pipeline provides a linear workflow for chaining data transformers
// and model estimators.
//
// A pipeline is an ordered sequence of stages. Each stage is either a
// Transformer, which maps an input table to an output table, or an Estimator,
// which trains on an input table and produces a Model. A Model is an ordinary
// Transformer that happens to be the product of a fit.
//
// A pipeline itself acts as an estimator or a transformer depending on its
// contents. If any stage still needs fitting, the pipeline must be fitted
// first: Fit walks the stages left to right, replaces each trainable stage
// with its fitted model, and feeds every later stage the output of the
// previous one, so downstream stages always train on already-transformed
// data. Fit returns a brand-new pipeline and never mutates the original.
// Once no stage needs fitting, Transform applies every stage in order.
//
// Pipelines nest: a pipeline can be appended as a stage of another pipeline
// and is classified by its own fitting state.
//
// The actual computation behind every stage belongs to an external engine.
// The pipeline layer treats the execution environment and the data tables as
// opaque handles and simply passes them through.
package pipeline
