package pipeline

import (
	"encoding/json"
	"sort"

	"github.com/pkg/errors"
)

// Params is a bag of named stage parameters. Names are unique; values are
// opaque to the pipeline layer and only need to survive a JSON round trip.
// Note that numbers decoded from JSON come back as float64.
//
// A Params is not safe for concurrent use. Callers sharing a stage across
// concurrently running pipelines share its bag as well.
type Params struct {
	m map[string]interface{}
}

// NewParams creates an empty parameter bag.
func NewParams() *Params {
	return &Params{m: make(map[string]interface{})}
}

// Set stores a parameter value, replacing any previous value under the same
// name. It returns the bag for chaining.
func (p *Params) Set(name string, value interface{}) *Params {
	if p.m == nil {
		p.m = make(map[string]interface{})
	}
	p.m[name] = value

	return p
}

// Get returns the value stored under name.
func (p *Params) Get(name string) (interface{}, bool) {
	v, ok := p.m[name]

	return v, ok
}

// Has reports whether a value is stored under name.
func (p *Params) Has(name string) bool {
	_, ok := p.m[name]

	return ok
}

// Len returns the number of parameters in the bag.
func (p *Params) Len() int {
	return len(p.m)
}

// Names returns all parameter names in sorted order.
func (p *Params) Names() []string {
	names := make([]string, 0, len(p.m))
	for name := range p.m {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Range calls fn for every parameter in sorted name order. It stops early
// when fn returns false.
func (p *Params) Range(fn func(name string, value interface{}) bool) {
	for _, name := range p.Names() {
		if !fn(name, p.m[name]) {
			return
		}
	}
}

// Merge copies every parameter of other into the bag, overwriting existing
// names.
func (p *Params) Merge(other *Params) *Params {
	if other == nil {
		return p
	}

	for name, value := range other.m {
		p.Set(name, value)
	}

	return p
}

// ToJSON encodes the bag as a JSON object.
func (p *Params) ToJSON() ([]byte, error) {
	m := p.m
	if m == nil {
		m = map[string]interface{}{}
	}

	data, err := json.Marshal(m)
	if err != nil {
		return nil, errors.Wrap(err, "unable to encode params")
	}

	return data, nil
}

// LoadJSON decodes a JSON object into the bag. Decoded names overwrite
// existing ones; names absent from the document are kept.
func (p *Params) LoadJSON(data []byte) error {
	decoded := make(map[string]interface{})

	err := json.Unmarshal(data, &decoded)
	if err != nil {
		return errors.Wrap(err, "unable to decode params")
	}

	for name, value := range decoded {
		p.Set(name, value)
	}

	return nil
}
