// Package dashboard owns the application context: the prepared dataset, the
// figures built from it at startup and the mine map country filter.
package dashboard

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"diamond-dashboard/internal/figure"
	"diamond-dashboard/internal/models"
	"diamond-dashboard/internal/prepare"
	"diamond-dashboard/internal/store"
)

// Figure slot ids on the page.
const (
	MapID          = "geo-graph"
	LabBarID       = "bar-chart1"
	LabPieID       = "Pie-chart1"
	NaturalBarID   = "bar-chart2"
	NaturalPieID   = "Pie-chart2"
	ProductionID   = "diamond-graph"
	BoxID          = "boxplot"
	ClarityScatter = "scatter-plot"
	ColorScatter   = "scatter-plot2"
	CutScatter     = "scatter-plot3"
)

// Layout lists the figure ids in page order.
var Layout = []string{
	MapID,
	LabBarID, LabPieID,
	NaturalBarID, NaturalPieID,
	ProductionID,
	BoxID,
	ClarityScatter, ColorScatter, CutScatter,
}

// Loader reads the source tables. *store.Store implements it.
type Loader interface {
	LoadAll(ctx context.Context) (*store.Tables, error)
}

// App is built once at startup and never modified afterwards, so it is safe
// to share between requests.
type App struct {
	data      *models.Dataset
	countries []string
	figures   map[string]*figure.Figure
}

// Load reads the tables, prepares them and builds the App.
func Load(ctx context.Context, loader Loader, topN int, log *zap.Logger) (*App, error) {
	tables, err := loader.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tables: %w", err)
	}
	ds, err := prepare.Dataset(tables, topN)
	if err != nil {
		return nil, fmt.Errorf("prepare tables: %w", err)
	}
	app := New(ds)
	log.Info("Dashboard ready",
		zap.Int("mines", len(ds.Mines)),
		zap.Int("countries", len(app.countries)),
		zap.Int("diamonds", len(ds.Diamonds)))
	return app, nil
}

// New builds every figure from a prepared dataset. The country options are
// fixed here and never recomputed.
func New(ds *models.Dataset) *App {
	countries := make([]string, len(ds.Mines))
	for i, m := range ds.Mines {
		countries[i] = m.Country
	}
	app := &App{
		data:      ds,
		countries: prepare.Distinct(countries),
		figures:   make(map[string]*figure.Figure, len(Layout)),
	}

	geo := figure.GeoScatter(MapID, ds.Mines, app.countries)
	app.figures[MapID] = geo
	app.figures[LabBarID] = figure.RankingBar(LabBarID, ds.LabRanking)
	app.figures[LabPieID] = figure.SharePie(LabPieID, ds.LabRanking)
	app.figures[NaturalBarID] = figure.RankingBar(NaturalBarID, ds.NaturalRanking)
	app.figures[NaturalPieID] = figure.SharePie(NaturalPieID, ds.NaturalRanking)
	app.figures[ProductionID] = figure.ProductionTable(ProductionID, ds.NaturalYearly, ds.LabYearly)
	app.figures[BoxID] = figure.TypeBox(BoxID, ds.Diamonds)
	app.figures[ClarityScatter] = figure.FacetScatter(figure.ScatterSpec{
		ID:        ClarityScatter,
		Title:     "Price-per-Carat vs Clarity",
		Field:     func(d models.Diamond) string { return d.Clarity },
		Order:     prepare.ClarityOrder,
		FacetWrap: 1,
	}, ds.Diamonds)
	app.figures[ColorScatter] = figure.FacetScatter(figure.ScatterSpec{
		ID:        ColorScatter,
		Title:     "Price-per-Carat vs Color",
		Field:     func(d models.Diamond) string { return d.Color },
		Order:     prepare.ColorOrder,
		FacetWrap: 2,
	}, ds.Diamonds)
	app.figures[CutScatter] = figure.FacetScatter(figure.ScatterSpec{
		ID:         CutScatter,
		Title:      "Price-per-Carat vs Cut",
		Field:      func(d models.Diamond) string { return d.Cut },
		Order:      prepare.CutOrder,
		Horizontal: true,
		FacetWrap:  1,
	}, ds.Diamonds)
	return app
}

// Countries returns the dropdown options: distinct mine countries in load
// order.
func (a *App) Countries() []string {
	return append([]string(nil), a.countries...)
}

// Figure returns the figure built at startup for id.
func (a *App) Figure(id string) (*figure.Figure, bool) {
	f, ok := a.figures[id]
	return f, ok
}

// Figures returns the startup figures in page order.
func (a *App) Figures() []*figure.Figure {
	out := make([]*figure.Figure, 0, len(Layout))
	for _, id := range Layout {
		out = append(out, a.figures[id])
	}
	return out
}

func (a *App) Dataset() *models.Dataset {
	return a.data
}

// FilterMines builds the mine map for a selection of countries. Only a nil or
// zero-length selection shows every mine. Countries that have no mines add nothing, so
// a selection of only unknown countries gives an empty map. The order and
// repetition of the selection do not affect the result.
func (a *App) FilterMines(selected []string) *figure.Figure {
	set := NormalizeSelection(selected)
	if len(set) == 0 {
		return figure.GeoScatter(MapID, a.data.Mines, a.countries)
	}

	want := make(map[string]bool, len(set))
	for _, c := range set {
		want[c] = true
	}
	mines := make([]models.MineLocation, 0, len(a.data.Mines))
	for _, m := range a.data.Mines {
		if want[m.Country] {
			mines = append(mines, m)
		}
	}
	return figure.GeoScatter(MapID, mines, a.countries)
}

// NormalizeSelection drops repeated entries and sorts the rest. The empty
// string is kept: it is the country of mines loaded with a NULL COUNTRY.
func NormalizeSelection(selected []string) []string {
	seen := make(map[string]bool, len(selected))
	out := make([]string, 0, len(selected))
	for _, s := range selected {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
