package pipeline

import (
	"bytes"
	"strings"
	"testing"
)

func TestGraph(t *testing.T) {
	p := mustNew(t, []Entry{One(newShift(1)), Group(newCut(0), newCut(1))})

	g, err := p.Graph()
	if err != nil {
		t.Fatalf("Graph() error = %v", err)
	}
	adj, err := g.AdjacencyMap()
	if err != nil {
		t.Fatalf("AdjacencyMap() error = %v", err)
	}

	if len(adj) != 3 {
		t.Fatalf("graph has %d vertices, want 3", len(adj))
	}
	for _, id := range []string{"s0_0", "s1_0", "s1_1"} {
		if _, ok := adj[id]; !ok {
			t.Errorf("vertex %s missing", id)
		}
	}

	// The single first stage feeds both ensemble members.
	if _, ok := adj["s0_0"]["s1_0"]; !ok {
		t.Error("edge s0_0 -> s1_0 missing")
	}
	if _, ok := adj["s0_0"]["s1_1"]; !ok {
		t.Error("edge s0_0 -> s1_1 missing")
	}
	if len(adj["s1_0"]) != 0 || len(adj["s1_1"]) != 0 {
		t.Error("terminal stages should have no outgoing edges")
	}
}

func TestWriteDOT(t *testing.T) {
	p := mustNew(t, []Entry{One(newShift(1)), One(newCut(0))})

	var buf bytes.Buffer
	if err := p.WriteDOT(&buf); err != nil {
		t.Fatalf("WriteDOT() error = %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "digraph") {
		t.Error("DOT output missing digraph header")
	}
	for _, want := range []string{"s0_0", "s1_0", "Shift", "CutPredictor", "->"} {
		if !strings.Contains(out, want) {
			t.Errorf("DOT output missing %q:\n%s", want, out)
		}
	}
}
