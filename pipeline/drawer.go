package pipeline

import (
	"fmt"
	"io"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"

	"github.com/YuminosukeSato/pipekit/pkg/errors"
)

// Graph returns the pipeline's structure as a directed graph: one vertex
// per stage at each position, labeled with the stage's type name, and an
// edge from every member of a position to every member of the next.
func (p *Pipeline) Graph() (graph.Graph[string, string], error) {
	g := graph.New(graph.StringHash, graph.Directed())

	ids := make([][]string, len(p.entries))
	for c, e := range p.entries {
		members := e.stages()
		ids[c] = make([]string, len(members))
		for i, m := range members {
			id := fmt.Sprintf("s%d_%d", c, i)
			ids[c][i] = id
			if err := g.AddVertex(id, graph.VertexAttribute("label", m.Name())); err != nil {
				return nil, errors.Wrapf(err, "add vertex %s", id)
			}
		}
	}

	for c := 1; c < len(ids); c++ {
		for _, from := range ids[c-1] {
			for _, to := range ids[c] {
				if err := g.AddEdge(from, to); err != nil {
					return nil, errors.Wrapf(err, "add edge %s -> %s", from, to)
				}
			}
		}
	}
	return g, nil
}

// WriteDOT renders the structure graph in Graphviz DOT format.
func (p *Pipeline) WriteDOT(w io.Writer) error {
	g, err := p.Graph()
	if err != nil {
		return err
	}
	if err := draw.DOT(g, w); err != nil {
		return errors.Wrap(err, "render dot")
	}
	return nil
}
