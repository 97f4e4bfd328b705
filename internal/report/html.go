package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ChartBins is the number of log10-importance bins per chart.
const ChartBins = 10

// WriteHTML renders one stacked bar chart per summary, showing kept and
// dropped points per importance bin, and writes the page to w.
func WriteHTML(w io.Writer, title string, sums []Summary) error {
	page := components.NewPage()
	page.PageTitle = title

	for _, s := range sums {
		bins := s.Bins(ChartBins)

		x := make([]string, len(bins))
		keptData := make([]opts.BarData, len(bins))
		droppedData := make([]opts.BarData, len(bins))
		for i, b := range bins {
			x[i] = fmt.Sprintf("%.2f", b.Lo)
			keptData[i] = opts.BarData{Value: b.Kept}
			droppedData[i] = opts.BarData{Value: b.Dropped}
		}

		bar := charts.NewBar()
		bar.SetGlobalOptions(
			charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "480px"}),
			charts.WithTitleOpts(opts.Title{
				Title:    s.Input,
				Subtitle: fmt.Sprintf("kept %d/%d points, %.1f%% of importance mass", s.Kept, s.Points, 100*s.KeptMass),
			}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
			charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
			charts.WithXAxisOpts(opts.XAxis{Name: "log10 importance", NameLocation: "middle", NameGap: 25}),
			charts.WithYAxisOpts(opts.YAxis{Name: "points"}),
		)
		bar.SetXAxis(x).
			AddSeries("kept", keptData, charts.WithBarChartOpts(opts.BarChart{Stack: "points"})).
			AddSeries("dropped", droppedData, charts.WithBarChartOpts(opts.BarChart{Stack: "points"}))
		page.AddCharts(bar)
	}

	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render report page: %w", err)
	}
	return nil
}
