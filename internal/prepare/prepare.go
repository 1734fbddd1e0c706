// Package prepare reshapes raw database tables into the typed records the
// chart builders consume.
package prepare

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"diamond-dashboard/internal/models"
	"diamond-dashboard/internal/store"
)

var ErrMissingColumn = errors.New("missing column")

// Canonical category sequences, best first.
var (
	ClarityOrder = []string{"IF", "VVS1", "VVS2", "VS1", "VS2", "SI1", "SI2", "I1"}
	ColorOrder   = []string{"D", "E", "F", "G", "H", "I", "J", "K"}
	CutOrder     = []string{"Ideal", "Excellent", "Very Good", "Good", "Fair"}
)

// DefaultTopN is how many ranking rows the charts show.
const DefaultTopN = 10

// Dataset runs every preparation step over the loaded tables. topN <= 0
// means DefaultTopN.
func Dataset(tables *store.Tables, topN int) (*models.Dataset, error) {
	if topN <= 0 {
		topN = DefaultTopN
	}
	var (
		ds  models.Dataset
		err error
	)

	if ds.Mines, err = Mines(DropColumns(tables.Mines, "FIPSCODE", "COWCODE")); err != nil {
		return nil, err
	}
	if ds.NaturalYearly, err = Production(DropColumns(tables.NaturalYearly, "unit", "data source")); err != nil {
		return nil, err
	}
	if ds.LabYearly, err = Production(DropColumns(tables.LabYearly, "unit")); err != nil {
		return nil, err
	}
	natural, err := Rankings(tables.NaturalRanking)
	if err != nil {
		return nil, err
	}
	lab, err := Rankings(tables.LabRanking)
	if err != nil {
		return nil, err
	}
	ds.NaturalRanking = Head(natural, topN)
	ds.LabRanking = Head(lab, topN)
	if ds.Diamonds, err = Diamonds(tables.Diamonds); err != nil {
		return nil, err
	}
	return &ds, nil
}

// DropColumns returns a copy of t without the named columns. Names that are
// not present are ignored.
func DropColumns(t *store.Table, names ...string) *store.Table {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}

	keep := make([]int, 0, len(t.Columns))
	out := &store.Table{Name: t.Name}
	for i, c := range t.Columns {
		if !drop[c] {
			keep = append(keep, i)
			out.Columns = append(out.Columns, c)
		}
	}
	out.Rows = make([][]any, len(t.Rows))
	for r, row := range t.Rows {
		cells := make([]any, len(keep))
		for j, i := range keep {
			cells[j] = row[i]
		}
		out.Rows[r] = cells
	}
	return out
}

// Head returns at most the first n rankings.
func Head(rs []models.Ranking, n int) []models.Ranking {
	if n < 0 || len(rs) <= n {
		return rs
	}
	return rs[:n]
}

func Mines(t *store.Table) ([]models.MineLocation, error) {
	idx, err := columns(t, "COUNTRY", "LAT", "LONG")
	if err != nil {
		return nil, err
	}
	out := make([]models.MineLocation, 0, len(t.Rows))
	for r, row := range t.Rows {
		if isBlank(row[idx[1]]) || isBlank(row[idx[2]]) {
			continue // no position to plot
		}
		lat, err := toFloat(row[idx[1]])
		if err != nil {
			return nil, cellError(t, r, "LAT", err)
		}
		lon, err := toFloat(row[idx[2]])
		if err != nil {
			return nil, cellError(t, r, "LONG", err)
		}
		out = append(out, models.MineLocation{
			Country: toString(row[idx[0]]),
			Loc:     models.Coordinate{Lat: lat, Lon: lon},
		})
	}
	return out, nil
}

// Production reads a yearly table: a Country column and one numeric column
// per year, in table order.
func Production(t *store.Table) (models.ProductionTable, error) {
	var pt models.ProductionTable
	idx, err := columns(t, "Country")
	if err != nil {
		return pt, err
	}
	country := idx[0]

	var yearCols []int
	for i, c := range t.Columns {
		if i != country {
			yearCols = append(yearCols, i)
			pt.Years = append(pt.Years, c)
		}
	}
	for r, row := range t.Rows {
		pr := models.ProductionRow{Country: toString(row[country]), Values: make([]float64, len(yearCols))}
		for j, i := range yearCols {
			v, err := toFloat(row[i])
			if err != nil {
				return pt, cellError(t, r, t.Columns[i], err)
			}
			pr.Values[j] = v
		}
		pt.Rows = append(pt.Rows, pr)
	}
	return pt, nil
}

func Rankings(t *store.Table) ([]models.Ranking, error) {
	names := []string{"Rank 2020", "Country", "Production 2020", "Share in %"}
	idx, err := columns(t, names...)
	if err != nil {
		return nil, err
	}
	out := make([]models.Ranking, 0, len(t.Rows))
	for r, row := range t.Rows {
		rank, err := toFloat(row[idx[0]])
		if err != nil {
			return nil, cellError(t, r, names[0], err)
		}
		prod, err := toFloat(row[idx[2]])
		if err != nil {
			return nil, cellError(t, r, names[2], err)
		}
		share, err := toFloat(row[idx[3]])
		if err != nil {
			return nil, cellError(t, r, names[3], err)
		}
		out = append(out, models.Ranking{
			Rank:       int(rank),
			Country:    toString(row[idx[1]]),
			Production: prod,
			Share:      share,
		})
	}
	return out, nil
}

func Diamonds(t *store.Table) ([]models.Diamond, error) {
	idx, err := columns(t, "type", "clarity", "color", "cut", "ppc")
	if err != nil {
		return nil, err
	}
	out := make([]models.Diamond, 0, len(t.Rows))
	for r, row := range t.Rows {
		ppc, err := toFloat(row[idx[4]])
		if err != nil {
			return nil, cellError(t, r, "ppc", err)
		}
		out = append(out, models.Diamond{
			Type:    toString(row[idx[0]]),
			Clarity: toString(row[idx[1]]),
			Color:   toString(row[idx[2]]),
			Cut:     toString(row[idx[3]]),
			PPC:     ppc,
		})
	}
	return out, nil
}

// Categories returns the distinct values in canonical order. Values the order
// does not know follow it in first-appearance order.
func Categories(values []string, order []string) []string {
	present := make(map[string]bool, len(values))
	for _, v := range values {
		present[v] = true
	}

	out := make([]string, 0, len(present))
	known := make(map[string]bool, len(order))
	for _, o := range order {
		known[o] = true
		if present[o] {
			out = append(out, o)
		}
	}
	seen := make(map[string]bool)
	for _, v := range values {
		if !known[v] && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// Distinct returns the distinct values in first-appearance order.
func Distinct(values []string) []string {
	return Categories(values, nil)
}

func columns(t *store.Table, names ...string) ([]int, error) {
	idx := make([]int, len(names))
	for i, n := range names {
		idx[i] = t.Index(n)
		if idx[i] < 0 {
			return nil, fmt.Errorf("%s: %w %q", t.Name, ErrMissingColumn, n)
		}
	}
	return idx, nil
}

func cellError(t *store.Table, row int, col string, err error) error {
	return fmt.Errorf("%s row %d column %q: %w", t.Name, row, col, err)
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case string:
		return parseNumber(x)
	case []byte:
		return parseNumber(string(x))
	case nil:
		return 0, nil
	}
	return parseNumber(fmt.Sprint(v))
}

// parseNumber accepts decimal commas and thousands separators as written in
// spreadsheets ("1,5" and "1 234.5").
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, " ", ""))
	if s == "" {
		return 0, nil
	}
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	return strconv.ParseFloat(s, 64)
}

func isBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case []byte:
		return strings.TrimSpace(string(x)) == ""
	}
	return false
}

func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	}
	return fmt.Sprint(v)
}
