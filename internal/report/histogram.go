package report

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ErrNoScores is returned when a summary has no positive finite scores to
// plot.
var ErrNoScores = errors.New("no positive finite importance scores")

// HistogramBins is the bin count used for the PNG histogram.
const HistogramBins = 40

var (
	keptColor    = color.RGBA{R: 38, G: 130, B: 142, A: 255}
	droppedColor = color.RGBA{R: 253, G: 231, B: 37, A: 255}
)

// WriteHistogramPNG renders the log10 importance histogram of s, with
// kept and dropped points as separate series, and writes it as PNG.
func WriteHistogramPNG(w io.Writer, s Summary) error {
	logs, kept := s.logScores()
	if len(logs) == 0 {
		return ErrNoScores
	}

	var keptVals, droppedVals plotter.Values
	for i, v := range logs {
		if kept[i] {
			keptVals = append(keptVals, v)
		} else {
			droppedVals = append(droppedVals, v)
		}
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s: %d of %d points kept", s.Input, s.Kept, s.Points)
	p.X.Label.Text = "log10 importance"
	p.Y.Label.Text = "points"

	for _, series := range []struct {
		name   string
		values plotter.Values
		color  color.Color
	}{
		{"kept", keptVals, keptColor},
		{"dropped", droppedVals, droppedColor},
	} {
		if len(series.values) == 0 {
			continue
		}
		h, err := plotter.NewHist(series.values, HistogramBins)
		if err != nil {
			return fmt.Errorf("failed to build %s histogram: %w", series.name, err)
		}
		h.FillColor = series.color
		h.LineStyle.Width = vg.Points(0.5)
		p.Add(h)
		p.Legend.Add(series.name, h)
	}

	wt, err := p.WriterTo(10*vg.Inch, 5*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("failed to render histogram: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write histogram: %w", err)
	}
	return nil
}
