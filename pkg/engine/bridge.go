package engine

import (
	"github.com/pkg/errors"

	"github.com/youngwookim/mlpipe/pkg/pipeline"
)

// ErrNoNativeHandle is returned when a bridged stage is used before a native
// handle was attached.
var ErrNoNativeHandle = errors.New("bridged stage has no native handle")

// NativeTransformer is a transformer handle owned by the backing engine.
type NativeTransformer interface {
	// SetField assigns one of the handle's named fields.
	SetField(name string, value interface{}) error
	Transform(env pipeline.Env, input pipeline.Table) (pipeline.Table, error)
}

// NativeEstimator is an estimator handle owned by the backing engine. Fit
// returns the native handle of the trained model.
type NativeEstimator interface {
	SetField(name string, value interface{}) error
	Fit(env pipeline.Env, input pipeline.Table) (NativeTransformer, error)
}

// fieldSetter is the common half of the native handles.
type fieldSetter interface {
	SetField(name string, value interface{}) error
}

// pushParams assigns every parameter of the bag to the matching native field,
// translating names with FieldName.
func pushParams(params *pipeline.Params, native fieldSetter) error {
	var err error

	params.Range(func(name string, value interface{}) bool {
		err = native.SetField(FieldName(name), value)
		if err != nil {
			err = errors.Wrapf(err, "unable to assign param %s", name)
			return false
		}

		return true
	})

	return err
}

// BridgedTransformer is a pipeline transformer delegating to a native engine
// handle. The parameter bag is pushed to the engine before every call.
type BridgedTransformer struct {
	pipeline.BaseStage

	Native NativeTransformer
}

func (t *BridgedTransformer) Transform(env pipeline.Env, input pipeline.Table) (pipeline.Table, error) {
	if t.Native == nil {
		return nil, errors.WithStack(ErrNoNativeHandle)
	}

	err := pushParams(t.Params(), t.Native)
	if err != nil {
		return nil, err
	}

	output, err := t.Native.Transform(env, input)
	if err != nil {
		return nil, errors.Wrap(err, "native transform")
	}

	return output, nil
}

// BridgedModel is a BridgedTransformer produced by fitting a bridged
// estimator.
type BridgedModel struct {
	BridgedTransformer
	pipeline.ModelMarker
}

// BridgedEstimator is a pipeline estimator delegating to a native engine
// handle. Fit wraps the trained native handle in a BridgedModel.
type BridgedEstimator struct {
	pipeline.BaseStage

	Native NativeEstimator
}

func (e *BridgedEstimator) Fit(env pipeline.Env, input pipeline.Table) (pipeline.Model, error) {
	if e.Native == nil {
		return nil, errors.WithStack(ErrNoNativeHandle)
	}

	err := pushParams(e.Params(), e.Native)
	if err != nil {
		return nil, err
	}

	fitted, err := e.Native.Fit(env, input)
	if err != nil {
		return nil, errors.Wrap(err, "native fit")
	}

	model := &BridgedModel{}
	model.Native = fitted

	return model, nil
}

var (
	_ pipeline.Transformer = (*BridgedTransformer)(nil)
	_ pipeline.Model       = (*BridgedModel)(nil)
	_ pipeline.Estimator   = (*BridgedEstimator)(nil)
)
