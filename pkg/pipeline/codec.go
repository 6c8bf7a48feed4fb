package pipeline

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Pipelines serialize to a JSON document made of an arena of stage entries
// plus index lists referencing it. A stage appearing several times across the
// graph (aliased between positions or between nested pipelines) is stored in
// the arena once and referenced by index everywhere, so decoding restores the
// shared instance rather than value copies.

type document struct {
	Stages []int           `json:"stages"`
	Params json.RawMessage `json:"params,omitempty"`
	Arena  []arenaEntry    `json:"arena"`
}

// arenaEntry holds one stage of the graph. Leaf stages carry their registered
// type name and parameter bag; nested pipelines carry their stage indices
// instead and are recognised by an empty type name.
type arenaEntry struct {
	Type     string          `json:"type,omitempty"`
	Params   json.RawMessage `json:"params,omitempty"`
	Pipeline []int           `json:"pipeline,omitempty"`
}

type encoder struct {
	arena []arenaEntry
	index map[Stage]int
}

func (e *encoder) encode(stage Stage) (int, error) {
	if idx, ok := e.index[stage]; ok {
		return idx, nil
	}

	// Reserve the slot before recursing so aliases, including a pipeline
	// referenced from inside itself, resolve to this entry.
	idx := len(e.arena)
	e.arena = append(e.arena, arenaEntry{})
	e.index[stage] = idx

	params, err := stage.Params().ToJSON()
	if err != nil {
		return 0, err
	}

	nested, ok := stage.(*Pipeline)
	if !ok {
		name, err := typeNameOf(stage)
		if err != nil {
			return 0, err
		}

		e.arena[idx] = arenaEntry{Type: name, Params: params}

		return idx, nil
	}

	entry := arenaEntry{Params: params, Pipeline: make([]int, 0, len(nested.stages))}

	for _, sub := range nested.stages {
		subIdx, err := e.encode(sub)
		if err != nil {
			return 0, err
		}

		entry.Pipeline = append(entry.Pipeline, subIdx)
	}

	e.arena[idx] = entry

	return idx, nil
}

// ToJSON serializes the whole stage graph: type identity, parameter bags and
// nesting, with aliased stages encoded once. The result is enough to rebuild
// an equivalent pipeline with FromJSON, provided every leaf stage type was
// registered.
func (p *Pipeline) ToJSON() ([]byte, error) {
	enc := &encoder{index: make(map[Stage]int)}
	doc := document{Stages: make([]int, 0, len(p.stages))}

	for _, stage := range p.stages {
		idx, err := enc.encode(stage)
		if err != nil {
			return nil, err
		}

		doc.Stages = append(doc.Stages, idx)
	}

	params, err := p.Params().ToJSON()
	if err != nil {
		return nil, err
	}

	doc.Params = params
	doc.Arena = enc.arena

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "unable to encode pipeline document")
	}

	return data, nil
}

type decoder struct {
	arena []arenaEntry
	built map[int]Stage
}

func (d *decoder) build(idx int) (Stage, error) {
	if idx < 0 || idx >= len(d.arena) {
		return nil, errors.Errorf("stage index %d outside arena of %d entries", idx, len(d.arena))
	}

	if stage, ok := d.built[idx]; ok {
		return stage, nil
	}

	entry := d.arena[idx]

	if entry.Type != "" {
		stage, err := newStage(entry.Type)
		if err != nil {
			return nil, err
		}

		if entry.Params != nil {
			err = stage.Params().LoadJSON(entry.Params)
			if err != nil {
				return nil, errors.Wrapf(err, "stage type %q", entry.Type)
			}
		}

		d.built[idx] = stage

		return stage, nil
	}

	nested := &Pipeline{lastTrainableIdx: noTrainableStage}
	d.built[idx] = nested

	if entry.Params != nil {
		err := nested.Params().LoadJSON(entry.Params)
		if err != nil {
			return nil, errors.Wrap(err, "nested pipeline params")
		}
	}

	for _, subIdx := range entry.Pipeline {
		sub, err := d.build(subIdx)
		if err != nil {
			return nil, err
		}

		_, err = nested.AppendStage(sub)
		if err != nil {
			return nil, err
		}
	}

	return nested, nil
}

// LoadJSON rebuilds the stages of a serialized document and appends them to
// the pipeline through AppendStage, so the fitting invariants are
// re-validated rather than copied in.
func (p *Pipeline) LoadJSON(data []byte) error {
	var doc document

	err := json.Unmarshal(data, &doc)
	if err != nil {
		return errors.Wrap(err, "unable to decode pipeline document")
	}

	if doc.Params != nil {
		err = p.Params().LoadJSON(doc.Params)
		if err != nil {
			return err
		}
	}

	dec := &decoder{arena: doc.Arena, built: make(map[int]Stage)}

	for _, idx := range doc.Stages {
		stage, err := dec.build(idx)
		if err != nil {
			return err
		}

		_, err = p.AppendStage(stage)
		if err != nil {
			return err
		}
	}

	return nil
}

// FromJSON rebuilds a pipeline from a document produced by ToJSON.
func FromJSON(data []byte) (*Pipeline, error) {
	pipe, err := New()
	if err != nil {
		return nil, err
	}

	err = pipe.LoadJSON(data)
	if err != nil {
		return nil, err
	}

	return pipe, nil
}
