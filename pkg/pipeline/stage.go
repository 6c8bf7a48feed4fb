package pipeline

// BaseStage owns the parameter bag every stage carries. Embed it in concrete
// stage types; the zero value is ready to use, which keeps stage types
// constructible with no arguments.
type BaseStage struct {
	params *Params
}

// Params returns the stage's parameter bag, creating it on first use. It is
// the bag itself, not a copy.
func (s *BaseStage) Params() *Params {
	if s.params == nil {
		s.params = NewParams()
	}

	return s.params
}

// ToJSON encodes the stage's parameter bag. It does not encode the stage
// type or any nested structure; see Pipeline.ToJSON for whole-graph
// serialization.
func (s *BaseStage) ToJSON() ([]byte, error) {
	return s.Params().ToJSON()
}

// LoadJSON decodes a parameter bag previously produced by ToJSON into the
// stage.
func (s *BaseStage) LoadJSON(data []byte) error {
	return s.Params().LoadJSON(data)
}
