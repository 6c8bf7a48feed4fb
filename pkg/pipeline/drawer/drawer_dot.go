package drawer

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/template"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1" //nolint

	"github.com/youngwookim/mlpipe/internal/store"
	"github.com/youngwookim/mlpipe/pkg/pipeline/measure"
)

// DOTDrawer renders the stage graph as a Graphviz DOT document, ready for
// `dot -Tsvg`. Stages are coloured by kind and the output is deterministic:
// the backing store lists vertices in insertion order.
type DOTDrawer struct {
	graph       graph.Graph[string, string]
	store       *store.OrderedStore[string, string]
	dotFileName string
}

// NewDOTDrawer creates a drawer writing to the given file.
func NewDOTDrawer(dotFileName string) *DOTDrawer {
	st := store.NewOrderedStore[string, string]()

	return &DOTDrawer{
		dotFileName: dotFileName,
		store:       st,
		graph:       graph.NewWithStore(graph.StringHash, st, graph.Directed()),
	}
}

// AddStage adds a stage vertex coloured by its kind.
func (d *DOTDrawer) AddStage(label string, kind Kind) error {
	fill, err := kindColour(kind)
	if err != nil {
		return err
	}

	err = d.graph.AddVertex(label,
		graph.VertexAttribute("style", "filled"),
		graph.VertexAttribute("fillcolor", fill),
		graph.VertexAttribute("fontcolor", "white"),
	)
	if err != nil {
		return errors.Wrapf(err, "unable to add vertex %s", label)
	}

	return nil
}

// AddLink adds a directed edge between two stages.
func (d *DOTDrawer) AddLink(parentLabel, childLabel string) error {
	err := d.graph.AddEdge(parentLabel, childLabel)
	if err != nil {
		return errors.Wrapf(err, "unable to add edge from %s to %s", parentLabel, childLabel)
	}

	return nil
}

// AddMeasure attaches recorded fit and transform averages as external labels
// of the matching vertices. Metrics without a drawn vertex are skipped.
func (d *DOTDrawer) AddMeasure(msr measure.Measure) error {
	for label, metric := range msr.AllMetrics() {
		_, properties, err := d.graph.VertexWithProperties(label)
		if err != nil {
			if errors.Is(err, graph.ErrVertexNotFound) {
				continue
			}

			return errors.Wrapf(err, "unable to get vertex properties of %s", label)
		}

		xlabel := ""
		if avg := metric.AVGFit(); avg != 0 {
			xlabel = "fit: " + avg.String()
		}

		if avg := metric.AVGTransform(); avg != 0 {
			if xlabel != "" {
				xlabel += ", "
			}
			xlabel += "transform: " + avg.String()
		}

		if xlabel != "" {
			properties.Attributes["xlabel"] = xlabel
		}
	}

	return nil
}

// Render writes the DOT document to the writer.
func (d *DOTDrawer) Render(w io.Writer) error {
	order, err := d.store.ListVertices()
	if err != nil {
		return errors.Wrap(err, "unable to list vertices")
	}

	return dot(d.graph, order, w)
}

// Draw writes the DOT document to the drawer's output file.
func (d *DOTDrawer) Draw() error {
	file, err := os.Create(d.dotFileName)
	if err != nil {
		return errors.Wrapf(err, "unable to create file %s", d.dotFileName)
	}
	defer file.Close()

	err = d.Render(file)
	if err != nil {
		return errors.Wrapf(err, "unable to render dot file %s", d.dotFileName)
	}

	return nil
}

// kindColour maps a stage kind to its fill colour.
func kindColour(kind Kind) (string, error) {
	var r, g, b uint8

	switch kind {
	case KindEstimator:
		r, g, b = 217, 83, 79
	case KindTransformer:
		r, g, b = 66, 139, 202
	case KindModel:
		r, g, b = 92, 184, 92
	case KindPipeline:
		r, g, b = 240, 173, 78
	case KindBoundary:
		r, g, b = 119, 119, 119
	default:
		return "", errors.Errorf("unknown stage kind %q", kind)
	}

	colour, err := colors.RGB(r, g, b) //nolint
	if err != nil {
		return "", errors.Wrap(err, "unable to get colour")
	}

	return colour.ToHEX().String(), nil
}

//nolint:lll //this is a template
const dotTemplate = `strict {{.GraphType}} {
	{{range $k, $v := .Attributes}}
		{{$k}}="{{$v}}";
	{{end}}
	{{range $s := .Statements}}
		"{{.Source}}" {{if .Target}}{{$.EdgeOperator}} "{{.Target}}" [ {{range $k, $v := .EdgeAttributes}}{{$k}}="{{$v}}", {{end}} weight={{.EdgeWeight}} ]{{else}}[ {{range $k, $v := .HTMLAttributes}}{{$k}}={{$v}}, {{end}} {{range $k, $v := .SourceAttributes}}{{$k}}="{{$v}}", {{end}} weight={{.SourceWeight}} ]{{end}};
	{{end}}
	}
	`

type description struct {
	GraphType    string
	Attributes   map[string]string
	EdgeOperator string
	Statements   []statement
}

type statement struct {
	Source           interface{}
	Target           interface{}
	SourceAttributes map[string]string
	HTMLAttributes   map[string]string
	EdgeAttributes   map[string]string
	SourceWeight     int
	EdgeWeight       int
}

func dot(g graph.Graph[string, string], order []string, wrt io.Writer) error {
	desc, err := generateDOT(g, order)
	if err != nil {
		return fmt.Errorf("failed to generate DOT description: %w", err)
	}

	return renderDOT(wrt, desc)
}

// generateDOT walks the vertices in the given order so the emitted document
// is stable between runs.
func generateDOT(gra graph.Graph[string, string], order []string) (description, error) {
	desc := description{
		GraphType:    "digraph",
		Attributes:   map[string]string{"rankdir": "LR"},
		EdgeOperator: "->",
		Statements:   make([]statement, 0),
	}

	adjacencyMap, err := gra.AdjacencyMap()
	if err != nil {
		return desc, errors.Wrap(err, "unable to get adjacency map")
	}

	for _, vertex := range order {
		_, sourceProperties, err := gra.VertexWithProperties(vertex)
		if err != nil {
			return desc, errors.Wrap(err, "unable to get vertex properties")
		}

		htmlAttributes := make(map[string]string)

		if xlabel, ok := sourceProperties.Attributes["xlabel"]; ok {
			htmlAttributes["label"] = fmt.Sprintf(`<%+v <BR /> <FONT POINT-SIZE="12">%s</FONT>>`, vertex, xlabel)

			delete(sourceProperties.Attributes, "xlabel")
		}

		stmt := statement{
			Source:           vertex,
			SourceWeight:     sourceProperties.Weight,
			SourceAttributes: sourceProperties.Attributes,
			HTMLAttributes:   htmlAttributes,
		}
		desc.Statements = append(desc.Statements, stmt)

		targets := make([]string, 0, len(adjacencyMap[vertex]))
		for adjacency := range adjacencyMap[vertex] {
			targets = append(targets, adjacency)
		}

		sort.Strings(targets)

		for _, adjacency := range targets {
			edge := adjacencyMap[vertex][adjacency]
			stmt := statement{
				Source:         vertex,
				Target:         adjacency,
				EdgeWeight:     edge.Properties.Weight,
				EdgeAttributes: edge.Properties.Attributes,
			}
			desc.Statements = append(desc.Statements, stmt)
		}
	}

	return desc, nil
}

func renderDOT(wrt io.Writer, desc description) error {
	tpl, err := template.New("dotTemplate").Parse(dotTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	err = tpl.Execute(wrt, desc)
	if err != nil {
		return errors.Wrap(err, "unable to execute template")
	}

	return nil
}

var _ Drawer = (*DOTDrawer)(nil)
