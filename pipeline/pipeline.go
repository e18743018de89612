// Package pipeline implements the orchestration core: an ordered list of
// stage entries through which training and inference are threaded.
//
// Each position holds either a single stage or an ensemble of stages
// (see One and Group), and the data flowing between positions is either
// a single dataset or an ordered collection of datasets. Training
// dispatches over those two axes:
//
//   - single stage × single dataset: fit once, transform forward.
//   - ensemble × single dataset: every member fits on identical input;
//     outputs carry forward as a parallel collection.
//   - single stage × collection: a stage implementing stage.Joint fits
//     once on the whole collection; any other stage fans out into one
//     independently fitted copy per dataset.
//   - ensemble × collection: members pair with datasets one-to-one. A
//     one-member ensemble broadcasts across the collection; any other
//     length mismatch fails with a StructuralError naming the position.
//
// Labels are never transformed: every position fits against the original
// labels, broadcast per branch when the data fans out.
//
// Training mutates the pipeline by storing the fitted counterpart of
// each entry. A failed Fit leaves the pipeline partially updated and
// unfitted; it must be fitted again before use. Transform and Predict
// are read-only and safe to call repeatedly.
package pipeline

import (
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pipekit/core/stage"
	"github.com/YuminosukeSato/pipekit/pkg/errors"
	"github.com/YuminosukeSato/pipekit/pkg/log"
)

// Pipeline threads data through an ordered list of stage entries.
type Pipeline struct {
	name     string
	verbose  int
	parallel bool

	entries []Entry
	fitted  [][]stage.Stage
	trained bool
}

// New validates the entry list and constructs an unfitted pipeline.
// Construction fails with a StructuralError when the list is empty, an
// entry is nil or has no members, a joint stage sits inside an ensemble,
// or any terminal member does not implement stage.Predictor.
func New(entries []Entry, opts ...Option) (*Pipeline, error) {
	if len(entries) == 0 {
		return nil, errors.NewStructuralError("Pipeline.New", -1, "pipeline has no stages")
	}
	for c, e := range entries {
		if e == nil {
			return nil, errors.NewStructuralError("Pipeline.New", c, "entry is nil")
		}
		members := e.stages()
		if len(members) == 0 {
			return nil, errors.NewStructuralError("Pipeline.New", c, "ensemble has no members")
		}
		for _, m := range members {
			if m == nil {
				return nil, errors.NewStructuralError("Pipeline.New", c, "stage is nil")
			}
		}
		if _, ok := e.(ensemble); ok {
			for _, m := range members {
				if _, joint := m.(stage.Joint); joint {
					return nil, errors.NewStructuralError("Pipeline.New", c,
						fmt.Sprintf("joint stage %s cannot be an ensemble member", m.Name()))
				}
			}
		}
	}

	last := len(entries) - 1
	for _, m := range entries[last].stages() {
		if _, ok := m.(stage.Predictor); !ok {
			return nil, errors.NewStructuralError("Pipeline.New", last,
				fmt.Sprintf("terminal stage %s does not implement Predictor", m.Name()))
		}
	}

	p := &Pipeline{
		entries: entries,
		fitted:  make([][]stage.Stage, len(entries)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Chain builds a pipeline of single-stage entries, one per argument.
func Chain(stages ...stage.Stage) (*Pipeline, error) {
	entries := make([]Entry, len(stages))
	for i, s := range stages {
		entries[i] = One(s)
	}
	return New(entries)
}

// labelSet carries training labels alongside the data. perSet is the
// pairwise label collection when training started from a collection;
// otherwise single broadcasts to every branch.
type labelSet struct {
	single mat.Matrix
	perSet []mat.Matrix
}

func (l labelSet) forDataset(k int) mat.Matrix {
	if l.perSet != nil {
		return l.perSet[k]
	}
	return l.single
}

func (l labelSet) slice(n int) []mat.Matrix {
	if l.perSet != nil {
		return l.perSet
	}
	ys := make([]mat.Matrix, n)
	for i := range ys {
		ys[i] = l.single
	}
	return ys
}

// Fit trains every position in order on a single dataset. y may be nil
// when every stage is unsupervised.
func (p *Pipeline) Fit(X, y mat.Matrix) error {
	if X == nil {
		return errors.NewModelError("Pipeline.Fit", "empty data", errors.ErrEmptyData)
	}
	return p.fit("Pipeline.Fit", singleResult(X), labelSet{single: y})
}

// FitCollection trains every position on an ordered dataset collection.
// ys must be nil or pairwise with Xs; nil entries mark unsupervised
// datasets.
func (p *Pipeline) FitCollection(Xs, ys []mat.Matrix) error {
	if len(Xs) == 0 {
		return errors.NewModelError("Pipeline.FitCollection", "empty collection", errors.ErrEmptyData)
	}
	if ys != nil && len(ys) != len(Xs) {
		return errors.NewStructuralError("Pipeline.FitCollection", -1,
			fmt.Sprintf("%d label sets cannot pair with %d datasets", len(ys), len(Xs)))
	}
	return p.fit("Pipeline.FitCollection", collectionResult(Xs), labelSet{perSet: ys})
}

func (p *Pipeline) fit(op string, data Result, labels labelSet) error {
	p.trained = false
	for i := range p.fitted {
		p.fitted[i] = nil
	}

	if p.verbose > 0 {
		logger := log.GetLoggerWithName("pipeline")
		logger.Info("Training started",
			log.OperationKey, log.OperationFit,
			log.PipelineNameKey, p.Name(),
			log.SignatureKey, p.Signature(),
			log.DatasetsKey, data.Len(),
		)
	}

	for c, entry := range p.entries {
		if err := p.fitEntry(op, c, entry, data, labels); err != nil {
			return err
		}
		if p.verbose > 0 {
			logger := log.GetLoggerWithName("pipeline")
			logger.Info("Position fitted",
				log.OperationKey, log.OperationFit,
				log.PositionKey, c,
				log.BranchesKey, len(p.fitted[c]),
			)
		}
		if c == len(p.entries)-1 {
			break
		}
		out, err := p.applyPosition(op, c, data, transformStage, true)
		if err != nil {
			return err
		}
		data = out
	}

	p.trained = true
	return nil
}

// fitEntry dispatches one position's training over the entry variant and
// the current data shape, storing the fitted members at that position.
func (p *Pipeline) fitEntry(op string, c int, entry Entry, data Result, labels labelSet) error {
	switch e := entry.(type) {
	case single:
		if !data.IsCollection() {
			f, err := e.s.Fit(data.Matrix(), labels.forDataset(0))
			if err != nil {
				return wrapStage(err, c, e.s)
			}
			p.fitted[c] = []stage.Stage{f}
			return nil
		}
		if j, ok := e.s.(stage.Joint); ok {
			f, err := j.FitCollection(data.Matrices(), labels.slice(data.Len()))
			if err != nil {
				return wrapStage(err, c, e.s)
			}
			p.fitted[c] = []stage.Stage{f}
			return nil
		}
		// Fan-out: one independently fitted copy per dataset.
		return p.fitBranches(c, data.Len(), func(i int) (stage.Stage, mat.Matrix, mat.Matrix) {
			return e.s, data.At(i), labels.forDataset(i)
		})

	case ensemble:
		k := len(e.members)
		if !data.IsCollection() {
			return p.fitBranches(c, k, func(i int) (stage.Stage, mat.Matrix, mat.Matrix) {
				return e.members[i], data.Matrix(), labels.forDataset(0)
			})
		}
		m := data.Len()
		switch {
		case k == m:
			return p.fitBranches(c, k, func(i int) (stage.Stage, mat.Matrix, mat.Matrix) {
				return e.members[i], data.At(i), labels.forDataset(i)
			})
		case k == 1:
			return p.fitBranches(c, m, func(i int) (stage.Stage, mat.Matrix, mat.Matrix) {
				return e.members[0], data.At(i), labels.forDataset(i)
			})
		default:
			return errors.NewStructuralError(op, c,
				fmt.Sprintf("%d ensemble members cannot pair with %d datasets", k, m))
		}

	default:
		return errors.NewStructuralError(op, c, "unknown entry variant")
	}
}

// fitBranches fits n branches, branch i training the stage pick returns
// on its dataset and labels. Branches own disjoint data and produce
// independent fitted values, so they may run concurrently.
func (p *Pipeline) fitBranches(c, n int, pick func(i int) (stage.Stage, mat.Matrix, mat.Matrix)) error {
	fitted := make([]stage.Stage, n)
	err := p.forEachBranch(n, func(i int) error {
		s, x, y := pick(i)
		f, err := s.Fit(x, y)
		if err != nil {
			return wrapStage(err, c, s)
		}
		fitted[i] = f
		return nil
	})
	if err != nil {
		return err
	}
	p.fitted[c] = fitted
	return nil
}

// Transform runs the fitted pipeline in inference mode on a single
// dataset, returning the terminal position's native output. An empty
// input short-circuits to an empty result without touching any stage.
func (p *Pipeline) Transform(X mat.Matrix) (Result, error) {
	if !p.trained {
		return Result{}, errors.NewNotFittedError("Pipeline", "Transform")
	}
	if X == nil {
		return Result{}, nil
	}
	if r, _ := X.Dims(); r == 0 {
		return singleResult(X), nil
	}
	return p.run("Pipeline.Transform", singleResult(X), false)
}

// TransformCollection runs inference on an ordered dataset collection.
func (p *Pipeline) TransformCollection(Xs []mat.Matrix) (Result, error) {
	if !p.trained {
		return Result{}, errors.NewNotFittedError("Pipeline", "TransformCollection")
	}
	if len(Xs) == 0 {
		return Result{}, errors.NewModelError("Pipeline.TransformCollection", "empty collection", errors.ErrEmptyData)
	}
	return p.run("Pipeline.TransformCollection", collectionResult(Xs), false)
}

// Predict transforms through every position but the last, then calls
// Predict on the terminal stage(s). This is the only path that turns the
// terminal position's native output into hard class labels.
func (p *Pipeline) Predict(X mat.Matrix) (Result, error) {
	if !p.trained {
		return Result{}, errors.NewNotFittedError("Pipeline", "Predict")
	}
	if X == nil {
		return Result{}, nil
	}
	if r, _ := X.Dims(); r == 0 {
		return singleResult(X), nil
	}
	return p.run("Pipeline.Predict", singleResult(X), true)
}

// PredictCollection predicts over an ordered dataset collection.
func (p *Pipeline) PredictCollection(Xs []mat.Matrix) (Result, error) {
	if !p.trained {
		return Result{}, errors.NewNotFittedError("Pipeline", "PredictCollection")
	}
	if len(Xs) == 0 {
		return Result{}, errors.NewModelError("Pipeline.PredictCollection", "empty collection", errors.ErrEmptyData)
	}
	return p.run("Pipeline.PredictCollection", collectionResult(Xs), true)
}

func (p *Pipeline) run(op string, data Result, predict bool) (Result, error) {
	last := len(p.entries) - 1
	for c := 0; c <= last; c++ {
		var (
			out Result
			err error
		)
		if predict && c == last {
			out, err = p.applyPosition(op, c, data, p.predictStage(op, c), false)
		} else {
			out, err = p.applyPosition(op, c, data, transformStage, true)
		}
		if err != nil {
			return Result{}, err
		}
		data = out
	}
	return data, nil
}

func transformStage(s stage.Stage, X mat.Matrix) (mat.Matrix, error) {
	return s.Transform(X)
}

func (p *Pipeline) predictStage(op string, c int) func(stage.Stage, mat.Matrix) (mat.Matrix, error) {
	return func(s stage.Stage, X mat.Matrix) (mat.Matrix, error) {
		pr, ok := s.(stage.Predictor)
		if !ok {
			return nil, errors.NewStructuralError(op, c,
				fmt.Sprintf("terminal stage %s does not implement Predictor", s.Name()))
		}
		return pr.Predict(X)
	}
}

// applyPosition runs one fitted position over the data, dispatching on
// fitted-member count × input shape. joint enables the TransformCollection
// path for a single fitted joint stage; a single non-joint stage facing a
// collection broadcasts instead.
func (p *Pipeline) applyPosition(op string, c int, data Result, apply func(stage.Stage, mat.Matrix) (mat.Matrix, error), joint bool) (Result, error) {
	members := p.fitted[c]
	l := len(members)

	if l == 1 {
		s := members[0]
		if !data.IsCollection() {
			out, err := apply(s, data.Matrix())
			if err != nil {
				return Result{}, wrapStage(err, c, s)
			}
			return singleResult(out), nil
		}
		if joint {
			if j, ok := s.(stage.Joint); ok {
				outs, err := j.TransformCollection(data.Matrices())
				if err != nil {
					return Result{}, wrapStage(err, c, s)
				}
				return collectionResult(outs), nil
			}
		}
		return p.mapBranches(c, data.Len(), func(i int) (stage.Stage, mat.Matrix) {
			return s, data.At(i)
		}, apply)
	}

	if !data.IsCollection() {
		return p.mapBranches(c, l, func(i int) (stage.Stage, mat.Matrix) {
			return members[i], data.Matrix()
		}, apply)
	}
	if l != data.Len() {
		return Result{}, errors.NewStructuralError(op, c,
			fmt.Sprintf("%d fitted stages cannot pair with %d datasets", l, data.Len()))
	}
	return p.mapBranches(c, l, func(i int) (stage.Stage, mat.Matrix) {
		return members[i], data.At(i)
	}, apply)
}

func (p *Pipeline) mapBranches(c, n int, pick func(i int) (stage.Stage, mat.Matrix), apply func(stage.Stage, mat.Matrix) (mat.Matrix, error)) (Result, error) {
	outs := make([]mat.Matrix, n)
	err := p.forEachBranch(n, func(i int) error {
		s, x := pick(i)
		out, err := apply(s, x)
		if err != nil {
			return wrapStage(err, c, s)
		}
		outs[i] = out
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return collectionResult(outs), nil
}

// forEachBranch runs fn for indexes 0..n-1, concurrently under errgroup
// when parallel fan-out is enabled. Each index writes only its own slot,
// so no further synchronization is needed.
func (p *Pipeline) forEachBranch(n int, fn func(i int) error) error {
	if p.parallel && n > 1 {
		var g errgroup.Group
		for i := 0; i < n; i++ {
			i := i
			g.Go(func() error { return fn(i) })
		}
		return g.Wait()
	}
	for i := 0; i < n; i++ {
		if err := fn(i); err != nil {
			return err
		}
	}
	return nil
}

func wrapStage(err error, c int, s stage.Stage) error {
	return errors.Wrapf(err, "position %d (%s)", c, s.Name())
}

// Fitted returns the fitted stages at a position, in branch order. The
// slice is a copy; the fitted values themselves are shared and must be
// treated as read-only.
func (p *Pipeline) Fitted(position int) ([]stage.Stage, error) {
	if !p.trained {
		return nil, errors.NewNotFittedError("Pipeline", "Fitted")
	}
	if position < 0 || position >= len(p.fitted) {
		return nil, errors.NewStructuralError("Pipeline.Fitted", position,
			fmt.Sprintf("position out of range [0, %d)", len(p.fitted)))
	}
	members := make([]stage.Stage, len(p.fitted[position]))
	copy(members, p.fitted[position])
	return members, nil
}

// Model returns the fitted terminal predictor. It fails when the
// pipeline is unfitted or when the terminal position holds more than one
// fitted stage (an ensemble or a fan-out has no single model).
func (p *Pipeline) Model() (stage.Stage, error) {
	if !p.trained {
		return nil, errors.NewNotFittedError("Pipeline", "Model")
	}
	last := len(p.fitted) - 1
	members := p.fitted[last]
	if len(members) != 1 {
		return nil, errors.NewStructuralError("Pipeline.Model", last,
			fmt.Sprintf("terminal position holds %d fitted stages, not a single model", len(members)))
	}
	return members[0], nil
}

// Signature renders the stage type names in pipeline order, with
// ensembles bracketed: "PCA -> [KernelClassifier | KernelClassifier]".
func (p *Pipeline) Signature() string {
	parts := make([]string, len(p.entries))
	for i, e := range p.entries {
		switch e := e.(type) {
		case single:
			parts[i] = e.s.Name()
		case ensemble:
			names := make([]string, len(e.members))
			for j, m := range e.members {
				names[j] = m.Name()
			}
			parts[i] = "[" + strings.Join(names, " | ") + "]"
		}
	}
	return strings.Join(parts, " -> ")
}

// Name returns the configured pipeline name, or "Pipeline" when unset.
func (p *Pipeline) Name() string {
	if p.name != "" {
		return p.name
	}
	return "Pipeline"
}

// IsFitted reports whether the last training call completed.
func (p *Pipeline) IsFitted() bool { return p.trained }

// Len returns the number of positions.
func (p *Pipeline) Len() int { return len(p.entries) }

// String returns the pipeline's name and signature.
func (p *Pipeline) String() string {
	return fmt.Sprintf("%s(%s)", p.Name(), p.Signature())
}
