// Package report renders diagnostic charts of a dehazing run
package report

import (
	"errors"
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/menta2k/image-dehazer/pkg/atmosphere"
)

const (
	chartWidth  = 1920
	chartHeight = 1080
)

// constantLine creates a line with a fixed y value across xvalues
func constantLine(xvalues []float64, y float64, c drawing.Color) chart.ContinuousSeries {
	yvalues := make([]float64, len(xvalues))
	for i := range yvalues {
		yvalues[i] = y
	}
	return chart.ContinuousSeries{
		XValues: xvalues,
		YValues: yvalues,
		Style: chart.Style{
			StrokeColor:     c,
			StrokeDashArray: []float64{5.0, 5.0},
		},
	}
}

// Histogram draws the cumulative distribution of the refined dark
// channel with the atmospheric light cutoff marked, as a PNG.
func Histogram(est atmosphere.Result, title string, w io.Writer) error {
	h := est.Histogram
	if len(h.CDF) < 2 {
		return errors.New("not enough histogram bins to plot")
	}

	xvalues := h.Edges[:len(h.CDF)]
	cdfSeries := chart.ContinuousSeries{
		Name: "cdf",
		Style: chart.Style{
			StrokeColor: chart.ColorBlue,
			FillColor:   chart.ColorAlternateBlue,
		},
		XValues: xvalues,
		YValues: h.CDF,
	}

	cutoffSeries := chart.ContinuousSeries{
		Name: "cutoff",
		Style: chart.Style{
			StrokeColor: chart.ColorRed,
			StrokeWidth: 2,
		},
		XValues: []float64{est.Threshold, est.Threshold},
		YValues: []float64{0, 1},
	}
	fractionSeries := constantLine(xvalues, atmosphere.CutoffFraction, chart.ColorAlternateGray)

	annotations := chart.AnnotationSeries{
		Annotations: []chart.Value2{
			{
				Label:  fmt.Sprintf("bin %d, v1 >= %.4f, A = %.4f", est.Cutoff, est.Threshold, est.Light),
				XValue: est.Threshold,
				YValue: atmosphere.CutoffFraction,
			},
		},
	}

	graph := chart.Chart{
		Title:  title,
		Width:  chartWidth,
		Height: chartHeight,
		XAxis: chart.XAxis{
			Name: "Dark channel",
			Range: &chart.ContinuousRange{
				Min: h.Edges[0],
				Max: h.Edges[len(h.Edges)-1],
			},
		},
		YAxis: chart.YAxis{
			Name: "Cumulative fraction",
			Range: &chart.ContinuousRange{
				Min: 0.0,
				Max: 1.0,
			},
		},
		Series: []chart.Series{
			cdfSeries,
			fractionSeries,
			cutoffSeries,
			annotations,
		},
	}
	return graph.Render(chart.PNG, w)
}
