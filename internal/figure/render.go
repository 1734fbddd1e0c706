package figure

import (
	"fmt"
	"io"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	pngBarWidth   = 40
	pngBarSpacing = 20
	pngPieSize    = 512
)

// RenderPNG draws a bar or pie figure as a PNG image. Other kinds return
// ErrUnsupportedKind.
func RenderPNG(f *Figure, w io.Writer) error {
	switch f.Kind {
	case KindBar:
		return renderBar(f, w)
	case KindPie:
		return renderPie(f, w)
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedKind, f.Kind)
}

func renderBar(f *Figure, w io.Writer) error {
	var bars []chart.Value
	for _, s := range f.Series {
		for _, p := range s.Points {
			v := p.Y
			if f.Horizontal {
				v = p.X
			}
			bars = append(bars, chart.Value{
				Value: v,
				Label: p.Label,
				Style: chart.Style{FillColor: hexColor(s.Color), StrokeColor: hexColor(s.Color)},
			})
		}
	}
	if len(bars) == 0 {
		return fmt.Errorf("figure %s has no bars", f.ID)
	}

	height := f.Height
	if height == 0 {
		height = 500
	}
	graph := chart.BarChart{
		Title: f.Title,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		Height:     height,
		Width:      len(bars)*(pngBarWidth+pngBarSpacing) + 200,
		BarWidth:   pngBarWidth,
		BarSpacing: pngBarSpacing,
		Bars:       bars,
	}
	return graph.Render(chart.PNG, w)
}

func renderPie(f *Figure, w io.Writer) error {
	var values []chart.Value
	for _, s := range f.Series {
		for i, p := range s.Points {
			v := chart.Value{Value: p.Y, Label: p.Label}
			if i < len(f.Colors) {
				v.Style = chart.Style{FillColor: hexColor(f.Colors[i])}
			}
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return fmt.Errorf("figure %s has no slices", f.ID)
	}
	pie := chart.PieChart{
		Title:  f.Title,
		Width:  pngPieSize,
		Height: pngPieSize,
		Values: values,
	}
	return pie.Render(chart.PNG, w)
}

func hexColor(s string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(s, "#"))
}
