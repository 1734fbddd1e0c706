// Package page renders the dashboard document. The same template serves the
// live page and the static snapshots.
package page

import (
	_ "embed"
	"html/template"
	"io"

	"diamond-dashboard/internal/figure"
)

// Name is the template name registered with the HTML renderer.
const Name = "index.html"

var (
	//go:embed assets/index.html
	indexHTML string
	//go:embed assets/dashboard.js
	dashboardJS string
)

// Data is everything the page template needs.
type Data struct {
	Title     string
	Countries []string
	Selected  map[string]bool
	Figures   []*figure.Figure
	// Static pages have no server behind them and filter the map in the
	// browser instead of calling the mines endpoint.
	Static bool
	// MinesURL is the reactive endpoint used by live pages.
	MinesURL string
}

// NewData fills Data, marking the selected countries.
func NewData(title string, countries, selected []string, figures []*figure.Figure) Data {
	sel := make(map[string]bool, len(selected))
	for _, s := range selected {
		sel[s] = true
	}
	return Data{
		Title:     title,
		Countries: countries,
		Selected:  sel,
		Figures:   figures,
		MinesURL:  "/api/mines",
	}
}

// Template parses the page template.
func Template() *template.Template {
	return template.Must(template.New(Name).Funcs(template.FuncMap{
		"script": func() template.JS { return template.JS(dashboardJS) },
	}).Parse(indexHTML))
}

// Render writes the full page.
func Render(w io.Writer, d Data) error {
	return Template().ExecuteTemplate(w, Name, d)
}
