// Package local is an in-memory engine used by tests, examples and the CLI.
//
// Tables are small column-oriented frames of float64 values. Every operation
// produces a new table; nothing is mutated in place. The engine parallelises
// its own row-wise kernels; the pipeline layer above stays strictly
// sequential and never sees it.
package local

import (
	"runtime"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/youngwookim/mlpipe/pkg/pipeline"
)

var (
	// ErrForeignEnv is returned when a stage receives an environment that
	// does not belong to this engine.
	ErrForeignEnv = errors.New("environment is not a local engine environment")

	// ErrForeignTable is returned when a stage receives a table that does
	// not belong to this engine.
	ErrForeignTable = errors.New("table is not a local engine table")
)

// Env is the execution environment of the local engine.
type Env struct {
	id          uuid.UUID
	parallelism int
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithParallelism caps the number of goroutines used by row-wise kernels.
func WithParallelism(n int) EnvOption {
	return func(e *Env) {
		e.parallelism = n
	}
}

// NewEnv creates an environment. By default kernels use one goroutine per
// CPU.
func NewEnv(opts ...EnvOption) *Env {
	env := &Env{
		id:          uuid.New(),
		parallelism: runtime.NumCPU(),
	}

	for _, opt := range opts {
		opt(env)
	}

	if env.parallelism < 1 {
		env.parallelism = 1
	}

	return env
}

// ID returns the environment's unique id.
func (e *Env) ID() uuid.UUID {
	return e.id
}

func envOf(env pipeline.Env) (*Env, error) {
	local, ok := env.(*Env)
	if !ok {
		return nil, errors.Wrapf(ErrForeignEnv, "got %T", env)
	}

	return local, nil
}

func tableOf(tbl pipeline.Table) (*Table, error) {
	local, ok := tbl.(*Table)
	if !ok {
		return nil, errors.Wrapf(ErrForeignTable, "got %T", tbl)
	}

	return local, nil
}
