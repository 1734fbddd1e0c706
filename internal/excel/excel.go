package excel

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"diamond-dashboard/internal/models"
)

const (
	NaturalSheet = "Natural"
	LabSheet     = "Lab-Grown"
)

func parseCoord(val string) (float64, error) {
	// Accept decimal commas as well as dots
	val = strings.TrimSpace(strings.ReplaceAll(val, ",", "."))
	if val == "" {
		return 0, fmt.Errorf("empty")
	}
	return strconv.ParseFloat(val, 64)
}

func OpenFile(filename string) (*excelize.File, error) {
	return excelize.OpenFile(filename)
}

// ReadMines reads mine locations from a sheet whose header row names the
// COUNTRY, LAT and LONG columns (case-insensitive, any order). Rows without a
// country or with unparsable coordinates are skipped.
func ReadMines(f *excelize.File, sheetName string) ([]models.MineLocation, error) {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", sheetName)
	}

	country, lat, lon := -1, -1, -1
	for i, h := range rows[0] {
		switch strings.ToUpper(strings.TrimSpace(h)) {
		case "COUNTRY":
			country = i
		case "LAT", "LATITUDE":
			lat = i
		case "LONG", "LON", "LONGITUDE":
			lon = i
		}
	}
	if country < 0 || lat < 0 || lon < 0 {
		return nil, fmt.Errorf("sheet %s: header must name COUNTRY, LAT and LONG columns", sheetName)
	}
	need := max(country, lat, lon) + 1

	var mines []models.MineLocation
	for _, row := range rows[1:] {
		if len(row) < need {
			continue // Not enough columns
		}
		name := strings.TrimSpace(row[country])
		latV, err1 := parseCoord(row[lat])
		lonV, err2 := parseCoord(row[lon])
		if name == "" || err1 != nil || err2 != nil {
			continue // Skip invalid rows
		}
		mines = append(mines, models.MineLocation{
			Country: name,
			Loc:     models.Coordinate{Lat: latV, Lon: lonV},
		})
	}
	return mines, nil
}

// WriteProduction writes the natural and lab-grown production tables as two
// sheets of one workbook.
func WriteProduction(w io.Writer, natural, lab models.ProductionTable) error {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(NaturalSheet); err != nil {
		return err
	}
	if err := writeSheet(f, NaturalSheet, natural); err != nil {
		return err
	}
	if _, err := f.NewSheet(LabSheet); err != nil {
		return err
	}
	if err := writeSheet(f, LabSheet, lab); err != nil {
		return err
	}

	// Delete default sheet
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	index, err := f.GetSheetIndex(NaturalSheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	_, err = f.WriteTo(w)
	return err
}

// SaveProduction writes the production workbook to path.
func SaveProduction(path string, natural, lab models.ProductionTable) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteProduction(out, natural, lab); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func writeSheet(f *excelize.File, sheetName string, pt models.ProductionTable) error {
	// Use Stream Writer for performance
	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return err
	}

	headers := []interface{}{"Country"}
	for _, y := range pt.Years {
		headers = append(headers, y)
	}
	if err := sw.SetRow("A1", headers); err != nil {
		return err
	}

	for i, r := range pt.Rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{r.Country}
		for _, v := range r.Values {
			row = append(row, v)
		}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}

	return sw.Flush()
}
