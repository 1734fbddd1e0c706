package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "project_diamond.db")
	s, err := Open(context.Background(), "sqlite", dsn, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestDriverName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "sqlite", false},
		{"SQLite3", "sqlite", false},
		{"postgres", "pgx", false},
		{"pgx", "pgx", false},
		{"oracle", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := DriverName(tt.in)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrUnknownDriver))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSeedAndLoadAll(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	require.NoError(t, s.Seed(ctx, SampleTables()...))

	tables, err := s.LoadAll(ctx)
	require.NoError(t, err)

	assert.Len(t, tables.Mines.Rows, 40)
	assert.Equal(t, []string{"COUNTRY", "LAT", "LONG", "FIPSCODE", "COWCODE"}, tables.Mines.Columns)
	assert.Equal(t, "Russia", tables.Mines.Rows[0][0])
	assert.InDelta(t, 66.42, tables.Mines.Rows[0][1], 1e-9)

	assert.Contains(t, tables.NaturalYearly.Columns, "data source")
	assert.NotContains(t, tables.LabYearly.Columns, "data source")
	assert.Len(t, tables.NaturalRanking.Rows, 12)
	assert.Len(t, tables.LabRanking.Rows, 11)
	assert.Len(t, tables.Diamonds.Rows, 80)
	assert.Equal(t, 3, tables.NaturalRanking.Index("Share in %"))
	assert.Equal(t, -1, tables.NaturalRanking.Index("Share"))
}

func TestSeedReplacesExistingTable(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	require.NoError(t, s.Seed(ctx, MinesTable(SampleMines())))

	mines := SampleMines()[:6]
	require.NoError(t, s.Seed(ctx, MinesTable(mines)))

	got, err := s.ReadTable(ctx, TableMines)
	require.NoError(t, err)
	assert.Len(t, got.Rows, 6)
}

func TestSeedRejectsRaggedRows(t *testing.T) {
	s := openTemp(t)
	bad := &Table{Name: "bad", Columns: []string{"a", "b"}, Rows: [][]any{{"x"}}}
	err := s.Seed(context.Background(), bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "got 1 cells, want 2")
}

func TestSeedRaggedRowsKeepExistingTable(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	require.NoError(t, s.Seed(ctx, MinesTable(SampleMines())))

	bad := &Table{
		Name:    TableMines,
		Columns: []string{"COUNTRY", "LAT", "LONG"},
		Rows:    [][]any{{"Russia", 66.4, 112.4}, {"Botswana"}},
	}
	err := s.Seed(ctx, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mines_map row 1: got 1 cells, want 3")

	got, err := s.ReadTable(ctx, TableMines)
	require.NoError(t, err)
	assert.Len(t, got.Rows, 40)
}

func TestLoadAllMissingTable(t *testing.T) {
	s := openTemp(t)
	_, err := s.LoadAll(context.Background())
	require.Error(t, err)
}

func TestSampleRankingShares(t *testing.T) {
	for _, tbl := range SampleTables() {
		if tbl.Name != TableNaturalRanking {
			continue
		}
		var total float64
		for _, row := range tbl.Rows {
			total += row[3].(float64)
		}
		assert.InDelta(t, 100, total, 0.5)
	}
}
