package figure

import (
	"strconv"

	"diamond-dashboard/internal/calculator"
	"diamond-dashboard/internal/models"
	"diamond-dashboard/internal/prepare"
)

// GeoScatter plots mines on a world map, one series per country. Series
// follow the order of countries and take their colour from the country's
// position in it, so a country keeps its colour whatever subset of mines is
// plotted. Countries with no mines get no series; mines whose country is
// missing from countries are appended after them.
func GeoScatter(id string, mines []models.MineLocation, countries []string) *Figure {
	f := &Figure{
		ID:          id,
		Kind:        KindGeo,
		ShowLegend:  true,
		LegendTitle: "COUNTRY",
		Projection:  "natural earth",
		Series:      []Series{},
	}

	order := append([]string{}, countries...)
	pos := make(map[string]int, len(order))
	for i, c := range order {
		pos[c] = i
	}
	points := make(map[string][]Point)
	for _, m := range mines {
		if _, ok := pos[m.Country]; !ok {
			pos[m.Country] = len(order)
			order = append(order, m.Country)
		}
		points[m.Country] = append(points[m.Country], Point{
			X:     m.Loc.Lon,
			Y:     m.Loc.Lat,
			Label: m.Country,
		})
	}

	for i, c := range order {
		if len(points[c]) == 0 {
			continue
		}
		f.Series = append(f.Series, Series{Name: c, Color: colorAt(DefaultColors, i), Points: points[c]})
	}
	return f
}

// RankingBar is a horizontal bar per country, in ranking order.
func RankingBar(id string, rankings []models.Ranking) *Figure {
	f := &Figure{
		ID:         id,
		Kind:       KindBar,
		Title:      "Ranking based on Production (2020)",
		Height:     500,
		Horizontal: true,
		XAxis:      Axis{Title: "Production (caret)"},
		YAxis:      Axis{Title: "Country"},
	}
	s := Series{Name: "Production 2020", Color: DefaultColors[0], Points: make([]Point, 0, len(rankings))}
	for _, r := range rankings {
		f.YAxis.Categories = append(f.YAxis.Categories, r.Country)
		s.Points = append(s.Points, Point{
			X:        r.Production,
			Category: r.Country,
			Label:    r.Country,
			Hover: []HoverField{
				{Name: "Rank 2020", Value: strconv.Itoa(r.Rank)},
				{Name: "Share in %", Value: formatFloat(r.Share)},
			},
		})
	}
	f.Series = []Series{s}
	return f
}

// SharePie shows each country's share of production.
func SharePie(id string, rankings []models.Ranking) *Figure {
	f := &Figure{
		ID:         id,
		Kind:       KindPie,
		Title:      "Market Share",
		TitleX:     0.4,
		Height:     477,
		ShowLegend: true,
	}
	s := Series{Name: "Share in %", Points: make([]Point, 0, len(rankings))}
	for i, r := range rankings {
		s.Points = append(s.Points, Point{Y: r.Share, Label: r.Country})
		f.Colors = append(f.Colors, colorAt(DefaultColors, i))
	}
	f.Series = []Series{s}
	return f
}

// ProductionTable shows yearly production with a toggle between the natural
// (shown first) and lab-grown tables.
func ProductionTable(id string, natural, lab models.ProductionTable) *Figure {
	widths := []int{70}
	align := []string{"left"}
	for range natural.Years {
		widths = append(widths, 50)
		align = append(align, "center")
	}
	return &Figure{
		ID:     id,
		Kind:   KindTable,
		Title:  "Natural vs Lab-Grown Diamonds Production (2016-20)",
		TitleX: 0.5,
		Series: []Series{},
		Table: &Table{
			ColumnWidths: widths,
			Align:        align,
			HeaderColor:  "grey",
			HeaderFont:   "white",
			LineColor:    "darkslategray",
			RowColors:    []string{"white", "lightgrey"},
			CellFont:     "darkslategray",
			Views: []TableView{
				tableView("Natural Diamonds", natural),
				tableView("Lab-Grown Diamonds", lab),
			},
		},
	}
}

func tableView(label string, pt models.ProductionTable) TableView {
	v := TableView{Label: label, Header: append([]string{"Country"}, pt.Years...), Rows: [][]string{}}
	for _, r := range pt.Rows {
		row := []string{r.Country}
		for _, x := range r.Values {
			row = append(row, formatFloat(x))
		}
		v.Rows = append(v.Rows, row)
	}
	return v
}

// TypeBox summarises price per carat for each diamond type.
func TypeBox(id string, diamonds []models.Diamond) *Figure {
	f := &Figure{
		ID:    id,
		Kind:  KindBox,
		Title: "Price-per-Carat by Diamond Type",
		XAxis: Axis{Title: "Type"},
		YAxis: Axis{Title: "Price-per-Carat"},
	}
	keys, groups := calculator.GroupValues(diamonds,
		func(d models.Diamond) string { return d.Type },
		func(d models.Diamond) float64 { return d.PPC })

	f.XAxis.Categories = keys
	f.Series = make([]Series, 0, len(keys))
	for i, k := range keys {
		box := calculator.Box(groups[k])
		f.Series = append(f.Series, Series{Name: k, Color: colorAt(Set1Colors, i), Points: []Point{}, Box: &box})
	}
	return f
}

// ScatterSpec describes a price-per-carat scatter faceted by diamond type.
type ScatterSpec struct {
	ID    string
	Title string
	// Field picks the categorical attribute plotted against price per carat.
	Field func(models.Diamond) string
	// Order is the canonical category sequence for Field.
	Order []string
	// Horizontal puts price per carat on X and the category on Y.
	Horizontal bool
	FacetWrap  int
}

const ppcLabel = "Price-per-Carat ($)"

// FacetScatter plots price per carat against one category, one subplot and
// one colour per diamond type.
func FacetScatter(spec ScatterSpec, diamonds []models.Diamond) *Figure {
	values := make([]string, len(diamonds))
	types := make([]string, len(diamonds))
	for i, d := range diamonds {
		values[i] = spec.Field(d)
		types[i] = d.Type
	}
	facets := prepare.Distinct(types)

	f := &Figure{
		ID:         spec.ID,
		Kind:       KindScatter,
		Title:      spec.Title,
		Horizontal: spec.Horizontal,
		MarkerSize: 5,
		Facets:     facets,
		FacetWrap:  spec.FacetWrap,
		Series:     make([]Series, 0, len(facets)),
	}
	cats := Axis{Categories: prepare.Categories(values, spec.Order)}
	num := Axis{Title: ppcLabel}
	if spec.Horizontal {
		f.XAxis, f.YAxis = num, cats
	} else {
		f.XAxis, f.YAxis = cats, num
	}

	index := make(map[string]int, len(facets))
	for i, t := range facets {
		index[t] = i
		f.Series = append(f.Series, Series{Name: t, Facet: t, Color: colorAt(DefaultColors, i), Points: []Point{}})
	}
	for i, d := range diamonds {
		p := Point{Category: values[i], Label: d.Type}
		if spec.Horizontal {
			p.X = d.PPC
		} else {
			p.Y = d.PPC
		}
		s := &f.Series[index[d.Type]]
		s.Points = append(s.Points, p)
	}
	return f
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
