// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package visual

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/pdiddy/content-engine/pkg/types"
)

const (
	chartWidth  = 640
	chartHeight = 400
	maxBars     = 8
)

// errFlatSeries marks data go-chart cannot scale: fewer than two points or
// a zero value range.
var errFlatSeries = errors.New("series needs two distinct values")

// Charts renders a bar chart for the most common unit among undated points
// and a line chart for the most common unit among dated points.
func Charts(points []DataPoint) ([]types.Visual, error) {
	var dated, undated []DataPoint
	for _, p := range points {
		if p.Year != 0 {
			dated = append(dated, p)
		} else {
			undated = append(undated, p)
		}
	}

	var (
		out  []types.Visual
		errs []error
	)
	if unit, group := dominantUnit(undated); len(group) >= 2 {
		if len(group) > maxBars {
			group = group[:maxBars]
		}
		v, err := barChart(chartTitle("Key figures", unit), group)
		if err != nil {
			errs = append(errs, fmt.Errorf("bar chart: %w", err))
		} else {
			out = append(out, v)
		}
	}
	if unit, group := dominantUnit(dated); len(group) >= 2 {
		v, err := lineChart(chartTitle("Trend over time", unit), unit, group)
		if err != nil {
			errs = append(errs, fmt.Errorf("line chart: %w", err))
		} else {
			out = append(out, v)
		}
	}
	return out, errors.Join(errs...)
}

func barChart(title string, points []DataPoint) (types.Visual, error) {
	bars := make([]chart.Value, 0, len(points))
	values := make([]float64, 0, len(points))
	for _, p := range points {
		bars = append(bars, chart.Value{Label: p.Label, Value: p.Value})
		values = append(values, p.Value)
	}
	if !distinct(values) {
		return types.Visual{}, errFlatSeries
	}

	graph := chart.BarChart{
		Title:    title,
		Width:    chartWidth,
		Height:   chartHeight,
		BarWidth: 50,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		Bars: bars,
	}
	svg, err := render(graph.Render)
	if err != nil {
		return types.Visual{}, err
	}
	return types.Visual{Kind: types.VisualChart, Type: "bar", Title: title, SVG: svg}, nil
}

func lineChart(title, unit string, points []DataPoint) (types.Visual, error) {
	byYear := map[int]float64{}
	for _, p := range points {
		if _, ok := byYear[p.Year]; !ok {
			byYear[p.Year] = p.Value
		}
	}
	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	xs := make([]float64, 0, len(years))
	ys := make([]float64, 0, len(years))
	for _, y := range years {
		xs = append(xs, float64(y))
		ys = append(ys, byYear[y])
	}
	if len(xs) < 2 || !distinct(ys) {
		return types.Visual{}, errFlatSeries
	}

	graph := chart.Chart{
		Title:  title,
		Width:  chartWidth,
		Height: chartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		XAxis: chart.XAxis{
			Name: "Year",
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return strconv.Itoa(int(f))
				}
				return ""
			},
		},
		YAxis: chart.YAxis{Name: unit},
		Series: []chart.Series{
			chart.ContinuousSeries{Name: title, XValues: xs, YValues: ys},
		},
	}
	svg, err := render(graph.Render)
	if err != nil {
		return types.Visual{}, err
	}
	return types.Visual{Kind: types.VisualChart, Type: "line", Title: title, SVG: svg}, nil
}

func render(fn func(chart.RendererProvider, io.Writer) error) (string, error) {
	var buf bytes.Buffer
	if err := fn(chart.SVG, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// dominantUnit returns the unit shared by the most points (ties go to the
// unit seen first) and those points in text order.
func dominantUnit(points []DataPoint) (string, []DataPoint) {
	groups := map[string][]DataPoint{}
	var order []string
	for _, p := range points {
		if _, ok := groups[p.Unit]; !ok {
			order = append(order, p.Unit)
		}
		groups[p.Unit] = append(groups[p.Unit], p)
	}
	best := ""
	for _, u := range order {
		if len(groups[u]) > len(groups[best]) {
			best = u
		}
	}
	return best, groups[best]
}

func chartTitle(base, unit string) string {
	if unit == "" {
		return base
	}
	return base + " (" + unit + ")"
}

func distinct(values []float64) bool {
	if len(values) < 2 {
		return false
	}
	for _, v := range values[1:] {
		if v != values[0] {
			return true
		}
	}
	return false
}
