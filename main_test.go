package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"diamond-dashboard/internal/excel"
)

// run executes the CLI with a temp database and no config file.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DIAMOND_DB_DRIVER", "sqlite")
	t.Setenv("DIAMOND_DB_DSN", filepath.Join(dir, "diamonds.db"))

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", filepath.Join(dir, "missing.yaml")}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSeedAndExport(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 6 tables")

	target := filepath.Join(dir, "production.xlsx")
	out, err = run(t, dir, "export", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+target)

	f, err := excelize.OpenFile(target)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{excel.NaturalSheet, excel.LabSheet}, f.GetSheetList())
}

func TestExportWithoutSeedFails(t *testing.T) {
	_, err := run(t, t.TempDir(), "export", "out.xlsx")
	assert.Error(t, err)
}

func TestSeedFromWorkbook(t *testing.T) {
	dir := t.TempDir()
	book := filepath.Join(dir, "mines.xlsx")

	f := excelize.NewFile()
	rows := [][]any{
		{"COUNTRY", "LAT", "LONG"},
		{"Russia", 66.4, 112.4},
		{"Russia", 64.9, 117.5},
		{"Botswana", "-24,53", "24,73"},
		{"", 1, 2},
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	require.NoError(t, f.SaveAs(book))
	require.NoError(t, f.Close())

	_, err := run(t, dir, "seed", "--mines-xlsx", book)
	require.NoError(t, err)

	c := &cli{configPath: filepath.Join(dir, "missing.yaml")}
	require.NoError(t, c.setup())

	app, err := c.loadApp(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Russia", "Botswana"}, app.Countries())
	assert.Equal(t, 3, app.FilterMines(nil).PointCount())
}

func TestPublishRequiresEndpoint(t *testing.T) {
	t.Setenv("MINIO_ENDPOINT", "")
	t.Setenv("MINIO_ACCESS_KEY", "")
	t.Setenv("MINIO_SECRET_KEY", "")
	_, err := run(t, t.TempDir(), "publish")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MINIO_ENDPOINT")
}

func TestUnknownDriver(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DIAMOND_DB_DRIVER", "oracle")
	root := newRootCmd()
	root.SetArgs([]string{"--config", filepath.Join(dir, "missing.yaml"), "seed"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	assert.Error(t, root.ExecuteContext(context.Background()))
}
