package local

import (
	"math"

	"github.com/pkg/errors"

	"github.com/youngwookim/mlpipe/pkg/pipeline"
)

func init() {
	pipeline.Register("local.scale", func() pipeline.Stage { return &Scale{} })
	pipeline.Register("local.shift", func() pipeline.Stage { return &Shift{} })
	pipeline.Register("local.standardScaler", func() pipeline.Stage { return &StandardScaler{} })
	pipeline.Register("local.scalerModel", func() pipeline.Stage { return &ScalerModel{} })
	pipeline.Register("local.minMaxScaler", func() pipeline.Stage { return &MinMaxScaler{} })
	pipeline.Register("local.minMaxModel", func() pipeline.Stage { return &MinMaxModel{} })
}

// Scale multiplies every value by the "factor" parameter (default 1).
type Scale struct {
	pipeline.BaseStage
}

// NewScale creates a Scale with the given factor.
func NewScale(factor float64) *Scale {
	s := &Scale{}
	s.Params().Set("factor", factor)

	return s
}

func (s *Scale) Transform(env pipeline.Env, input pipeline.Table) (pipeline.Table, error) {
	lenv, ltbl, err := unwrap(env, input)
	if err != nil {
		return nil, err
	}

	factor := floatParam(s.Params(), "factor", 1)

	return mapRows(lenv, ltbl, func(_, _ int, v float64) (float64, error) {
		return v * factor, nil
	})
}

// Shift adds the "offset" parameter (default 0) to every value.
type Shift struct {
	pipeline.BaseStage
}

// NewShift creates a Shift with the given offset.
func NewShift(offset float64) *Shift {
	s := &Shift{}
	s.Params().Set("offset", offset)

	return s
}

func (s *Shift) Transform(env pipeline.Env, input pipeline.Table) (pipeline.Table, error) {
	lenv, ltbl, err := unwrap(env, input)
	if err != nil {
		return nil, err
	}

	offset := floatParam(s.Params(), "offset", 0)

	return mapRows(lenv, ltbl, func(_, _ int, v float64) (float64, error) {
		return v + offset, nil
	})
}

// StandardScaler learns the per-column mean and standard deviation of its
// training table. The fitted ScalerModel standardises every column; the
// "withMean" and "withStd" parameters (default true) toggle centering and
// scaling.
type StandardScaler struct {
	pipeline.BaseStage
}

// NewStandardScaler creates a StandardScaler standardising with mean and
// standard deviation.
func NewStandardScaler() *StandardScaler {
	s := &StandardScaler{}
	s.Params().Set("withMean", true).Set("withStd", true)

	return s
}

func (s *StandardScaler) Fit(env pipeline.Env, input pipeline.Table) (pipeline.Model, error) {
	_, ltbl, err := unwrap(env, input)
	if err != nil {
		return nil, err
	}

	if ltbl.rows == 0 {
		return nil, errors.New("unable to fit scaler on an empty table")
	}

	means := make([]float64, len(ltbl.data))
	stds := make([]float64, len(ltbl.data))

	for col, values := range ltbl.data {
		sum := 0.0
		for _, v := range values {
			sum += v
		}

		mean := sum / float64(len(values))

		variance := 0.0
		for _, v := range values {
			variance += (v - mean) * (v - mean)
		}

		means[col] = mean
		stds[col] = math.Sqrt(variance / float64(len(values)))
	}

	model := &ScalerModel{}
	model.Params().
		Set("withMean", boolParam(s.Params(), "withMean", true)).
		Set("withStd", boolParam(s.Params(), "withStd", true)).
		Set("means", means).
		Set("stds", stds)

	return model, nil
}

// ScalerModel standardises columns with the means and deviations learned by
// StandardScaler. The learned state lives in the parameter bag, so a fitted
// model survives pipeline serialization.
type ScalerModel struct {
	pipeline.BaseStage
	pipeline.ModelMarker
}

func (m *ScalerModel) Transform(env pipeline.Env, input pipeline.Table) (pipeline.Table, error) {
	lenv, ltbl, err := unwrap(env, input)
	if err != nil {
		return nil, err
	}

	means, err := floatsParam(m.Params(), "means")
	if err != nil {
		return nil, err
	}

	stds, err := floatsParam(m.Params(), "stds")
	if err != nil {
		return nil, err
	}

	if len(means) != len(ltbl.data) || len(stds) != len(ltbl.data) {
		return nil, errors.Errorf("scaler fitted on %d columns, table has %d", len(means), len(ltbl.data))
	}

	withMean := boolParam(m.Params(), "withMean", true)
	withStd := boolParam(m.Params(), "withStd", true)

	return mapRows(lenv, ltbl, func(col, _ int, v float64) (float64, error) {
		if withMean {
			v -= means[col]
		}

		if withStd && stds[col] != 0 {
			v /= stds[col]
		}

		return v, nil
	})
}

// MinMaxScaler learns the per-column minimum and maximum of its training
// table. The fitted MinMaxModel rescales every column to [0, 1].
type MinMaxScaler struct {
	pipeline.BaseStage
}

// NewMinMaxScaler creates a MinMaxScaler.
func NewMinMaxScaler() *MinMaxScaler {
	return &MinMaxScaler{}
}

func (s *MinMaxScaler) Fit(env pipeline.Env, input pipeline.Table) (pipeline.Model, error) {
	_, ltbl, err := unwrap(env, input)
	if err != nil {
		return nil, err
	}

	if ltbl.rows == 0 {
		return nil, errors.New("unable to fit scaler on an empty table")
	}

	mins := make([]float64, len(ltbl.data))
	maxs := make([]float64, len(ltbl.data))

	for col, values := range ltbl.data {
		mins[col] = values[0]
		maxs[col] = values[0]

		for _, v := range values {
			mins[col] = math.Min(mins[col], v)
			maxs[col] = math.Max(maxs[col], v)
		}
	}

	model := &MinMaxModel{}
	model.Params().
		Set("mins", mins).
		Set("maxs", maxs)

	return model, nil
}

// MinMaxModel rescales columns to [0, 1] with the bounds learned by
// MinMaxScaler. A constant column maps to 0. The learned state lives in the
// parameter bag, so a fitted model survives pipeline serialization.
type MinMaxModel struct {
	pipeline.BaseStage
	pipeline.ModelMarker
}

func (m *MinMaxModel) Transform(env pipeline.Env, input pipeline.Table) (pipeline.Table, error) {
	lenv, ltbl, err := unwrap(env, input)
	if err != nil {
		return nil, err
	}

	mins, err := floatsParam(m.Params(), "mins")
	if err != nil {
		return nil, err
	}

	maxs, err := floatsParam(m.Params(), "maxs")
	if err != nil {
		return nil, err
	}

	if len(mins) != len(ltbl.data) || len(maxs) != len(ltbl.data) {
		return nil, errors.Errorf("scaler fitted on %d columns, table has %d", len(mins), len(ltbl.data))
	}

	return mapRows(lenv, ltbl, func(col, _ int, v float64) (float64, error) {
		span := maxs[col] - mins[col]
		if span == 0 {
			return 0, nil
		}

		return (v - mins[col]) / span, nil
	})
}

func unwrap(env pipeline.Env, tbl pipeline.Table) (*Env, *Table, error) {
	lenv, err := envOf(env)
	if err != nil {
		return nil, nil, err
	}

	ltbl, err := tableOf(tbl)
	if err != nil {
		return nil, nil, err
	}

	return lenv, ltbl, nil
}

var (
	_ pipeline.Transformer = (*Scale)(nil)
	_ pipeline.Transformer = (*Shift)(nil)
	_ pipeline.Estimator   = (*StandardScaler)(nil)
	_ pipeline.Model       = (*ScalerModel)(nil)
	_ pipeline.Estimator   = (*MinMaxScaler)(nil)
	_ pipeline.Model       = (*MinMaxModel)(nil)
)
