package pipeline

import (
	"github.com/pkg/errors"
)

var (
	// ErrInvalidStage is returned by AppendStage when a stage satisfies
	// neither the Estimator nor the Transformer contract.
	ErrInvalidStage = errors.New("stage must be an estimator or a transformer")

	// ErrNotFitted is returned by Transform while the pipeline still
	// contains a stage that needs fitting.
	ErrNotFitted = errors.New("pipeline contains an estimator, fit it first")

	// ErrUnknownStageType is returned when a serialized document names a
	// stage type that was never registered.
	ErrUnknownStageType = errors.New("stage type is not registered")
)
