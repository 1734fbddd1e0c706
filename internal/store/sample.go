package store

import (
	"math"

	"diamond-dashboard/internal/models"
)

var countryCodes = map[string]struct {
	fips string
	cow  int64
}{
	"Russia":                           {"RS", 365},
	"Botswana":                         {"BC", 571},
	"Canada":                           {"CA", 20},
	"Australia":                        {"AS", 900},
	"South Africa":                     {"SF", 560},
	"Angola":                           {"AO", 540},
	"Namibia":                          {"WA", 565},
	"Democratic Republic of the Congo": {"CG", 490},
	"Sierra Leone":                     {"SL", 451},
	"Lesotho":                          {"LT", 570},
	"Zimbabwe":                         {"ZI", 552},
	"Tanzania":                         {"TZ", 510},
}

var sampleMines = []models.MineLocation{
	mine("Russia", 66.42, 112.40),
	mine("Russia", 62.53, 113.99),
	mine("Russia", 66.01, 112.30),
	mine("Russia", 62.55, 113.95),
	mine("Russia", 65.90, 43.15),
	mine("Russia", 65.71, 40.40),
	mine("Botswana", -24.53, 24.70),
	mine("Botswana", -21.31, 25.37),
	mine("Botswana", -21.42, 25.59),
	mine("Botswana", -21.33, 25.33),
	mine("Botswana", -21.48, 25.46),
	mine("Canada", 64.49, -110.27),
	mine("Canada", 64.72, -110.62),
	mine("Canada", 63.43, -109.19),
	mine("Canada", 52.82, -72.19),
	mine("Australia", -16.71, 128.39),
	mine("Australia", -17.98, 124.82),
	mine("Australia", -16.85, 136.20),
	mine("South Africa", -22.44, 29.33),
	mine("South Africa", -25.67, 28.52),
	mine("South Africa", -28.38, 23.45),
	mine("South Africa", -28.74, 24.77),
	mine("Angola", -9.41, 20.30),
	mine("Angola", -8.43, 17.83),
	mine("Angola", -8.10, 18.50),
	mine("Namibia", -28.55, 16.43),
	mine("Namibia", -26.88, 15.22),
	mine("Namibia", -28.35, 16.75),
	mine("Democratic Republic of the Congo", -6.13, 23.60),
	mine("Democratic Republic of the Congo", -6.41, 20.79),
	mine("Democratic Republic of the Congo", -5.90, 22.40),
	mine("Sierra Leone", 8.64, -10.97),
	mine("Sierra Leone", 8.20, -11.07),
	mine("Lesotho", -29.00, 28.86),
	mine("Lesotho", -28.98, 28.66),
	mine("Zimbabwe", -20.16, 30.22),
	mine("Zimbabwe", -19.98, 32.35),
	mine("Zimbabwe", -22.23, 29.90),
	mine("Tanzania", -3.55, 33.58),
	mine("Tanzania", -3.60, 33.50),
}

func mine(country string, lat, lon float64) models.MineLocation {
	return models.MineLocation{Country: country, Loc: models.Coordinate{Lat: lat, Lon: lon}}
}

// MinesTable builds a mines_map table, filling the code columns the
// dashboard later drops. Countries without known codes get empty codes.
func MinesTable(mines []models.MineLocation) *Table {
	t := &Table{Name: TableMines, Columns: []string{"COUNTRY", "LAT", "LONG", "FIPSCODE", "COWCODE"}}
	for _, m := range mines {
		codes := countryCodes[m.Country]
		t.Rows = append(t.Rows, []any{m.Country, m.Loc.Lat, m.Loc.Lon, codes.fips, codes.cow})
	}
	return t
}

// SampleMines returns the bundled mine locations: 40 mines in 12 countries.
func SampleMines() []models.MineLocation {
	out := make([]models.MineLocation, len(sampleMines))
	copy(out, sampleMines)
	return out
}

// SampleTables returns the bundled dataset used by the seed command.
func SampleTables() []*Table {
	return []*Table{
		sampleDiamonds(),
		yearlyTable(TableNaturalYearly, true, [][]any{
			{"Russia", 40.3, 42.6, 43.2, 45.3, 32.6},
			{"Botswana", 20.5, 23.0, 24.4, 23.7, 16.9},
			{"Canada", 13.0, 23.2, 23.2, 18.6, 13.1},
			{"Australia", 13.9, 17.1, 14.1, 13.0, 11.1},
			{"Democratic Republic of the Congo", 23.2, 18.9, 16.4, 14.0, 12.6},
		}),
		yearlyTable(TableLabYearly, false, [][]any{
			{"China", 3.0, 3.5, 4.5, 5.5, 6.5},
			{"India", 0.5, 0.8, 1.2, 1.5, 2.0},
			{"United States", 0.4, 0.6, 0.8, 1.2, 1.4},
			{"Singapore", 0.3, 0.4, 0.5, 0.6, 0.7},
			{"Russia", 0.2, 0.3, 0.4, 0.5, 0.6},
		}),
		rankingTable(TableNaturalRanking, [][]any{
			{"Russia", 32.6}, {"Botswana", 16.9}, {"Canada", 13.1}, {"Democratic Republic of the Congo", 12.6},
			{"Australia", 11.1}, {"Angola", 7.9}, {"South Africa", 7.2}, {"Zimbabwe", 2.7},
			{"Namibia", 1.5}, {"Sierra Leone", 0.7}, {"Lesotho", 0.6}, {"Tanzania", 0.1},
		}),
		rankingTable(TableLabRanking, [][]any{
			{"China", 6.5}, {"India", 2.0}, {"United States", 1.4}, {"Singapore", 0.7},
			{"Russia", 0.6}, {"Belgium", 0.3}, {"Israel", 0.25}, {"Japan", 0.2},
			{"Germany", 0.15}, {"Ukraine", 0.1}, {"Vietnam", 0.05},
		}),
		MinesTable(sampleMines),
	}
}

func yearlyTable(name string, withSource bool, rows [][]any) *Table {
	t := &Table{Name: name, Columns: []string{"Country", "2016", "2017", "2018", "2019", "2020", "unit"}}
	if withSource {
		t.Columns = append(t.Columns, "data source")
	}
	for _, r := range rows {
		row := append(append([]any{}, r...), "mln carats")
		if withSource {
			row = append(row, "Kimberley Process")
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// rankingTable ranks (country, production) pairs, which must already be
// sorted by production, and derives each country's share of the total.
func rankingTable(name string, rows [][]any) *Table {
	t := &Table{Name: name, Columns: []string{"Rank 2020", "Country", "Production 2020", "Share in %"}}
	var total float64
	for _, r := range rows {
		total += r[1].(float64)
	}
	for i, r := range rows {
		share := math.Round(r[1].(float64)/total*1000) / 10
		t.Rows = append(t.Rows, []any{int64(i + 1), r[0], r[1], share})
	}
	return t
}

func sampleDiamonds() *Table {
	clarities := []string{"IF", "VVS1", "VVS2", "VS1", "VS2", "SI1", "SI2", "I1"}
	colors := []string{"D", "E", "F", "G", "H", "I", "J", "K"}
	cuts := []string{"Ideal", "Excellent", "Very Good", "Good", "Fair"}

	t := &Table{Name: TableDiamonds, Columns: []string{"type", "carat", "cut", "color", "clarity", "price", "ppc"}}
	for i := 0; i < 80; i++ {
		kind, base := "natural", 5200.0
		if i%2 == 1 {
			kind, base = "lab", 1400.0
		}
		cl := (i / 2) % len(clarities)
		co := (i / 3) % len(colors)
		cu := (i / 7) % len(cuts)
		carat := 0.5 + 0.05*float64(i%10)
		ppc := base * (1 + 0.08*float64(len(clarities)-1-cl)) * (1 + 0.05*float64(len(colors)-1-co)) * (1 + 0.03*float64(len(cuts)-1-cu))
		ppc = math.Round(ppc)
		t.Rows = append(t.Rows, []any{kind, carat, cuts[cu], colors[co], clarities[cl], math.Round(ppc * carat), ppc})
	}
	return t
}
