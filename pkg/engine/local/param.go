package local

import (
	"github.com/pkg/errors"

	"github.com/youngwookim/mlpipe/pkg/pipeline"
)

// Parameter values set in code keep their Go types; values loaded from a
// serialized pipeline come back as JSON types (float64, bool, []interface{}).
// The helpers below accept both.

func floatParam(params *pipeline.Params, name string, def float64) float64 {
	v, ok := params.Get(name)
	if !ok {
		return def
	}

	switch vv := v.(type) {
	case float64:
		return vv
	case int:
		return float64(vv)
	default:
		return def
	}
}

func boolParam(params *pipeline.Params, name string, def bool) bool {
	v, ok := params.Get(name)
	if !ok {
		return def
	}

	b, ok := v.(bool)
	if !ok {
		return def
	}

	return b
}

func floatsParam(params *pipeline.Params, name string) ([]float64, error) {
	v, ok := params.Get(name)
	if !ok {
		return nil, errors.Errorf("missing param %s", name)
	}

	switch vv := v.(type) {
	case []float64:
		return vv, nil
	case []interface{}:
		out := make([]float64, len(vv))

		for i, item := range vv {
			f, ok := item.(float64)
			if !ok {
				return nil, errors.Errorf("param %s has a non-numeric element", name)
			}

			out[i] = f
		}

		return out, nil
	default:
		return nil, errors.Errorf("param %s is not a float slice", name)
	}
}
