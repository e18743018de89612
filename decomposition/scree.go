package decomposition

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/pipekit/pkg/errors"
)

// SaveScreePlot renders the explained-variance profile of a fitted PCA and
// writes it to path. The image format is inferred from the file extension
// (png, svg, pdf). Both the per-component ratio and the cumulative curve are
// drawn, so the retention threshold can be read off directly.
func (p *PCA) SaveScreePlot(path string) error {
	if err := p.state.RequireFitted("PCA", "SaveScreePlot"); err != nil {
		return err
	}

	pl := plot.New()
	pl.Title.Text = "Scree Plot"
	pl.X.Label.Text = "Component"
	pl.Y.Label.Text = "Explained Variance Ratio"
	pl.Y.Min = 0
	pl.Add(plotter.NewGrid())

	ratios := make(plotter.XYs, len(p.varianceRatio))
	cumulative := make(plotter.XYs, len(p.varianceRatio))
	running := 0.0
	for i, ratio := range p.varianceRatio {
		running += ratio
		ratios[i] = plotter.XY{X: float64(i + 1), Y: ratio}
		cumulative[i] = plotter.XY{X: float64(i + 1), Y: running}
	}

	line, points, err := plotter.NewLinePoints(ratios)
	if err != nil {
		return errors.Wrap(err, "scree plot: per-component series")
	}
	line.Color = color.RGBA{B: 255, A: 255}
	points.Color = color.RGBA{B: 255, A: 255}

	cumLine, err := plotter.NewLine(cumulative)
	if err != nil {
		return errors.Wrap(err, "scree plot: cumulative series")
	}
	cumLine.Color = color.RGBA{R: 255, A: 255}
	cumLine.LineStyle.Width = vg.Points(1)
	cumLine.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	pl.Add(line, points, cumLine)
	pl.Legend.Add("per component", line, points)
	pl.Legend.Add("cumulative", cumLine)
	pl.Legend.Top = true
	pl.Legend.Left = true

	if err := pl.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrap(err, "scree plot: save")
	}
	return nil
}
