package benchmark

import (
	"github.com/nvr-ai/go-filters/processor"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// SaveChart renders a grouped bar chart of the average milliseconds of each
// strategy per filter. The image format follows the file extension.
//
// Arguments:
// - filename: The destination, e.g. results/benchmark_results.png.
// - strategies: One bar group member per strategy, in order.
//
// Returns:
// - error: An error if there is nothing to plot or the file cannot be written.
func (m *Metrics) SaveChart(filename string, strategies []processor.StrategyID) error {
	if m.Len() == 0 {
		return errors.New("no metrics to chart")
	}
	if len(strategies) == 0 {
		strategies = processor.AllStrategies()
	}

	comparisons := m.AllComparisons()
	names := make([]string, 0, len(comparisons))
	for _, cmp := range comparisons {
		names = append(names, cmp.Filter.String())
	}

	p := plot.New()
	p.Title.Text = "Average filter time per strategy"
	p.Y.Label.Text = "ms"

	width := vg.Points(8)
	for i, s := range strategies {
		values := make(plotter.Values, len(comparisons))
		for j, cmp := range comparisons {
			values[j] = cmp.Times[s]
		}

		bars, err := plotter.NewBarChart(values, width)
		if err != nil {
			return errors.Wrapf(err, "failed to build bars for %s", s)
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = plotutil.Color(i)
		bars.Offset = vg.Length(float64(i)-float64(len(strategies)-1)/2) * width

		p.Add(bars)
		p.Legend.Add(s.String(), bars)
	}
	p.Legend.Top = true
	p.NominalX(names...)

	if err := ensureDir(filename); err != nil {
		return err
	}
	if err := p.Save(vg.Length(len(names))*vg.Inch, 5*vg.Inch, filename); err != nil {
		return errors.Wrap(err, "failed to save chart")
	}
	return nil
}
