// Package store reads the dashboard's source tables from a relational
// database. Tables are read whole with SELECT * and returned untyped; turning
// them into records is the job of package prepare.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"
)

// Source table names.
const (
	TableDiamonds       = "all_diamonds"
	TableNaturalYearly  = "natural_diamond_yearly"
	TableLabYearly      = "lab_diamond_yearly"
	TableNaturalRanking = "natural_diamond_ranking"
	TableLabRanking     = "lab_diamond_ranking"
	TableMines          = "mines_map"
)

var ErrUnknownDriver = errors.New("unknown database driver")

// Table is a result set read column-for-column from the database. Cell values
// are int64, float64, string, bool, time.Time or nil.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]any
}

// Index returns the position of the named column or -1.
func (t *Table) Index(column string) int {
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// Tables bundles the six result sets the dashboard is built from.
type Tables struct {
	Diamonds       *Table
	NaturalYearly  *Table
	LabYearly      *Table
	NaturalRanking *Table
	LabRanking     *Table
	Mines          *Table
}

type Store struct {
	db     *sql.DB
	driver string
	log    *zap.Logger
}

// DriverName maps a configured driver to the database/sql driver name.
func DriverName(driver string) (string, error) {
	switch strings.ToLower(driver) {
	case "", "sqlite", "sqlite3":
		return "sqlite", nil
	case "postgres", "postgresql", "pgx":
		return "pgx", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
}

// Open connects to the database and verifies the connection.
func Open(ctx context.Context, driver, dsn string, log *zap.Logger) (*Store, error) {
	name, err := DriverName(driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	log.Info("Connected to database", zap.String("driver", name))
	return &Store{db: db, driver: name, log: log}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// ReadTable returns every row of the named table.
func (s *Store) ReadTable(ctx context.Context, name string) (*Table, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(name))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", name, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", name, err)
	}

	t := &Table{Name: name, Columns: cols}
	for rows.Next() {
		cells := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", name, err)
		}
		for i, c := range cells {
			if b, ok := c.([]byte); ok {
				cells[i] = string(b)
			}
		}
		t.Rows = append(t.Rows, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return t, nil
}

// LoadAll reads the six source tables concurrently. The first failure cancels
// the remaining reads.
func (s *Store) LoadAll(ctx context.Context) (*Tables, error) {
	var out Tables
	targets := []struct {
		name string
		dst  **Table
	}{
		{TableDiamonds, &out.Diamonds},
		{TableNaturalYearly, &out.NaturalYearly},
		{TableLabYearly, &out.LabYearly},
		{TableNaturalRanking, &out.NaturalRanking},
		{TableLabRanking, &out.LabRanking},
		{TableMines, &out.Mines},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, tg := range targets {
		tg := tg
		g.Go(func() error {
			t, err := s.ReadTable(gctx, tg.name)
			if err != nil {
				return err
			}
			*tg.dst = t
			s.log.Debug("Loaded table", zap.String("table", tg.name), zap.Int("rows", len(t.Rows)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

// quoteIdent double-quotes an identifier; both sqlite and postgres accept it.
func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
