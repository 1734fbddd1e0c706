// Package figure builds the dashboard's charts as plain data. A Figure is
// serialised to JSON and drawn in the browser; bar and pie figures can also
// be rendered to PNG on the server.
package figure

import (
	"errors"

	"diamond-dashboard/internal/calculator"
)

type Kind string

const (
	KindGeo     Kind = "geo"
	KindBar     Kind = "bar"
	KindPie     Kind = "pie"
	KindTable   Kind = "table"
	KindBox     Kind = "box"
	KindScatter Kind = "scatter"
)

var ErrUnsupportedKind = errors.New("unsupported figure kind")

// Qualitative palettes.
var (
	DefaultColors = []string{
		"#636EFA", "#EF553B", "#00CC96", "#AB63FA", "#FFA15A",
		"#19D3F3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
	}
	Set1Colors = []string{
		"#E41A1C", "#377EB8", "#4DAF4A", "#984EA3", "#FF7F00",
		"#FFFF33", "#A65628", "#F781BF", "#999999",
	}
)

// Figure is a render-ready chart description.
type Figure struct {
	ID          string   `json:"id"`
	Kind        Kind     `json:"kind"`
	Title       string   `json:"title"`
	TitleX      float64  `json:"titleX,omitempty"` // horizontal title anchor, 0..1
	Height      int      `json:"height,omitempty"`
	ShowLegend  bool     `json:"showLegend"`
	LegendTitle string   `json:"legendTitle,omitempty"`
	Projection  string   `json:"projection,omitempty"`
	Horizontal  bool     `json:"horizontal,omitempty"`
	MarkerSize  int      `json:"markerSize,omitempty"`
	XAxis       Axis     `json:"xAxis"`
	YAxis       Axis     `json:"yAxis"`
	Facets      []string `json:"facets,omitempty"`
	FacetWrap   int      `json:"facetWrap,omitempty"`
	Colors      []string `json:"colors,omitempty"`
	Series      []Series `json:"series"`
	Table       *Table   `json:"table,omitempty"`
}

type Axis struct {
	Title      string   `json:"title,omitempty"`
	Categories []string `json:"categories,omitempty"`
}

// Series is one coloured group of points. Facet names the subplot the series
// belongs to when the figure is faceted.
type Series struct {
	Name   string               `json:"name"`
	Color  string               `json:"color,omitempty"`
	Facet  string               `json:"facet,omitempty"`
	Points []Point              `json:"points"`
	Box    *calculator.BoxStats `json:"box,omitempty"`
}

// Point is a single mark. Geo points carry longitude in X and latitude in Y;
// categorical axes use Category instead of a numeric coordinate.
type Point struct {
	X        float64      `json:"x"`
	Y        float64      `json:"y"`
	Category string       `json:"category,omitempty"`
	Label    string       `json:"label,omitempty"`
	Hover    []HoverField `json:"hover,omitempty"`
}

type HoverField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Table is a figure made of cells. Only one view is shown at a time; the
// page offers a toggle between views.
type Table struct {
	ColumnWidths []int       `json:"columnWidths"`
	Align        []string    `json:"align"`
	HeaderColor  string      `json:"headerColor"`
	HeaderFont   string      `json:"headerFont"`
	LineColor    string      `json:"lineColor"`
	RowColors    []string    `json:"rowColors"`
	CellFont     string      `json:"cellFont"`
	Views        []TableView `json:"views"`
}

type TableView struct {
	Label  string     `json:"label"`
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// PointCount returns the number of points across all series.
func (f *Figure) PointCount() int {
	n := 0
	for _, s := range f.Series {
		n += len(s.Points)
	}
	return n
}

func colorAt(palette []string, i int) string {
	return palette[i%len(palette)]
}
