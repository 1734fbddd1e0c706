package models

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// MineLocation is one row of the mines map: a single mine in a country.
type MineLocation struct {
	Country string     `json:"country"`
	Loc     Coordinate `json:"loc"`
}

// Diamond is one priced stone from the all_diamonds table.
type Diamond struct {
	Type    string  `json:"type"`
	Clarity string  `json:"clarity"`
	Color   string  `json:"color"`
	Cut     string  `json:"cut"`
	PPC     float64 `json:"ppc"` // price per carat
}

type ProductionRow struct {
	Country string    `json:"country"`
	Values  []float64 `json:"values"`
}

// ProductionTable holds yearly production per country. Values[i] of every
// row belongs to Years[i].
type ProductionTable struct {
	Years []string        `json:"years"`
	Rows  []ProductionRow `json:"rows"`
}

type Ranking struct {
	Rank       int     `json:"rank"`
	Country    string  `json:"country"`
	Production float64 `json:"production"`
	Share      float64 `json:"share"` // percent
}

// Dataset is everything the dashboard reads from the database, after
// preparation.
type Dataset struct {
	Mines          []MineLocation
	Diamonds       []Diamond
	NaturalYearly  ProductionTable
	LabYearly      ProductionTable
	NaturalRanking []Ranking
	LabRanking     []Ranking
}
