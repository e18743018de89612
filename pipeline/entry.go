package pipeline

import "github.com/YuminosukeSato/pipekit/core/stage"

// Entry is one position of a pipeline: either a single stage or an
// ensemble of stages trained side by side. Construct entries with One
// and Group; the orchestrator dispatches on the concrete variant.
type Entry interface {
	// stages returns the members occupying the position, in order.
	stages() []stage.Stage

	sealedEntry()
}

type single struct {
	s stage.Stage
}

func (e single) stages() []stage.Stage { return []stage.Stage{e.s} }
func (single) sealedEntry()            {}

type ensemble struct {
	members []stage.Stage
}

func (e ensemble) stages() []stage.Stage { return e.members }
func (ensemble) sealedEntry()            {}

// One wraps a single stage as a pipeline entry.
func One(s stage.Stage) Entry { return single{s: s} }

// Group wraps several stages as an ensemble entry. All members receive
// identical input during training and their outputs are carried forward
// as a parallel collection.
func Group(members ...stage.Stage) Entry {
	ms := make([]stage.Stage, len(members))
	copy(ms, members)
	return ensemble{members: ms}
}
