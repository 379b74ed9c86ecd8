// Package report renders match statistics as an HTML page and pitch trajectories as PNG.
package report

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/LdDl/kicksense/cohesion"
	"github.com/LdDl/kicksense/export"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/pkg/errors"
)

// Options of HTML report
type Options struct {
	Title string
	// AssetsHost overrides location of echarts javascript, empty means the library default
	AssetsHost string
	// MaxBars limits speed chart to the fastest identities, zero means no limit
	MaxBars int
}

func (o Options) init(pageTitle, height string) opts.Initialization {
	init := opts.Initialization{PageTitle: pageTitle, Width: "100%", Height: height}
	if o.AssetsHost != "" {
		init.AssetsHost = o.AssetsHost
	}
	return init
}

// SpeedChart builds bar chart of max and average speed per identity. Rows are expected to be
// sorted by max speed as returned by kinematics.Summarize.
func SpeedChart(rows []export.StatsRow, o Options) *charts.Bar {
	if o.MaxBars > 0 && len(rows) > o.MaxBars {
		rows = rows[:o.MaxBars]
	}
	x := make([]string, 0, len(rows))
	maxSpeed := make([]opts.BarData, 0, len(rows))
	avgSpeed := make([]opts.BarData, 0, len(rows))
	for _, row := range rows {
		x = append(x, fmt.Sprintf("#%d %s", row.ID, row.Class))
		maxSpeed = append(maxSpeed, opts.BarData{Value: round2(row.MaxSpeedKmh)})
		avgSpeed = append(avgSpeed, opts.BarData{Value: round2(row.AvgSpeedKmh)})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(o.init(o.Title, "560px")),
		charts.WithTitleOpts(opts.Title{Title: "Speed per identity", Subtitle: fmt.Sprintf("identities=%d", len(rows))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "km/h", NameLocation: "middle", NameGap: 30}),
	)
	bar.SetXAxis(x).
		AddSeries("max speed", maxSpeed, charts.WithItemStyleOpts(opts.ItemStyle{Color: "#ff5252"})).
		AddSeries("avg speed", avgSpeed, charts.WithItemStyleOpts(opts.ItemStyle{Color: "#26828e"}))
	return bar
}

// CohesionChart builds line chart of compactness index per team over frames
func CohesionChart(timeline map[int][]cohesion.Sample, o Options) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(o.init(o.Title, "420px")),
		charts.WithTitleOpts(opts.Title{Title: "Team cohesion", Subtitle: fmt.Sprintf("teams=%d", len(timeline))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "Frame", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: cohesion.MaxIndex, Name: "Index", NameLocation: "middle", NameGap: 30}),
	)
	teams := make([]int, 0, len(timeline))
	for team := range timeline {
		teams = append(teams, team)
	}
	sort.Ints(teams)
	for _, team := range teams {
		samples := timeline[team]
		data := make([]opts.LineData, 0, len(samples))
		for _, s := range samples {
			data = append(data, opts.LineData{Value: []interface{}{s.Frame, round2(s.Score.Index)}})
		}
		line.AddSeries(fmt.Sprintf("team %d", team), data)
	}
	return line
}

// WriteHTML renders page with speed and cohesion charts
func WriteHTML(w io.Writer, rows []export.StatsRow, timeline map[int][]cohesion.Sample, o Options) error {
	if o.Title == "" {
		o.Title = "Match report"
	}
	page := components.NewPage()
	page.PageTitle = o.Title
	if o.AssetsHost != "" {
		page.SetAssetsHost(o.AssetsHost)
	}
	page.AddCharts(SpeedChart(rows, o))
	if len(timeline) > 0 {
		page.AddCharts(CohesionChart(timeline, o))
	}
	return errors.Wrap(page.Render(w), "can't render report page")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
