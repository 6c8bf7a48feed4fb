package pipeline

import (
	"reflect"
	"sync"

	"github.com/pkg/errors"
)

// The stage type registry maps a stable name to a zero-argument constructor,
// so serialized pipelines can be rebuilt without any reflection over stage
// internals. Registration follows the encoding/gob convention: typically from
// an init function of the package defining the stage, panicking on misuse.

var (
	registryMu     sync.RWMutex
	registryByName = make(map[string]func() Stage)
	registryByType = make(map[reflect.Type]string)
)

// Register records a stage type under the given name. The constructor must
// return a fresh, zero-configured instance on every call. Register panics if
// the name is empty or taken, or if the constructor is nil.
func Register(name string, constructor func() Stage) {
	if name == "" {
		panic("pipeline: stage registered with empty name")
	}

	if constructor == nil {
		panic("pipeline: stage registered with nil constructor")
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, ok := registryByName[name]; ok {
		panic("pipeline: stage name already registered: " + name)
	}

	registryByName[name] = constructor
	registryByType[reflect.TypeOf(constructor())] = name
}

// newStage builds a fresh instance of a registered stage type.
func newStage(name string) (Stage, error) {
	registryMu.RLock()
	constructor, ok := registryByName[name]
	registryMu.RUnlock()

	if !ok {
		return nil, errors.Wrapf(ErrUnknownStageType, "type %q", name)
	}

	return constructor(), nil
}

// typeNameOf returns the registered name of a stage instance.
func typeNameOf(stage Stage) (string, error) {
	registryMu.RLock()
	name, ok := registryByType[reflect.TypeOf(stage)]
	registryMu.RUnlock()

	if !ok {
		return "", errors.Wrapf(ErrUnknownStageType, "type %T", stage)
	}

	return name, nil
}
