package pipeline

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Observer receives per-stage timings while a pipeline fits or transforms.
// Implementations must be safe for reuse across the pipelines produced by
// successive fits.
type Observer interface {
	// OnStageFit runs after a trainable stage was fitted.
	OnStageFit(stage string, elapsed time.Duration)
	// OnStageTransform runs after a stage transformed its input.
	OnStageTransform(stage string, elapsed time.Duration)
}

// TypeLabel returns a human-readable name for a stage: its registered type
// name when there is one, otherwise its Go type.
func TypeLabel(stage Stage) string {
	if name, err := typeNameOf(stage); err == nil {
		return name
	}

	if _, ok := stage.(*Pipeline); ok {
		return "pipeline"
	}

	return strings.TrimPrefix(fmt.Sprintf("%T", stage), "*")
}

// StageLabel names the stage standing at position idx of a pipeline, e.g.
// "2:local.scale". Observers and the drawer use it as the stage key.
func StageLabel(idx int, stage Stage) string {
	return strconv.Itoa(idx) + ":" + TypeLabel(stage)
}
