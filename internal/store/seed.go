package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Seed replaces each given table with the given contents. Column types are
// inferred from the first non-nil value of each column. All tables are
// written in one transaction.
func (s *Store) Seed(ctx context.Context, tables ...*Table) error {
	for _, t := range tables {
		if err := checkRows(t); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	for _, t := range tables {
		if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(t.Name)); err != nil {
			return fmt.Errorf("drop %s: %w", t.Name, err)
		}
		if _, err := tx.ExecContext(ctx, createStatement(t)); err != nil {
			return fmt.Errorf("create %s: %w", t.Name, err)
		}

		insert := s.insertStatement(t)
		stmt, err := tx.PrepareContext(ctx, insert)
		if err != nil {
			return fmt.Errorf("prepare insert %s: %w", t.Name, err)
		}
		for i, row := range t.Rows {
			if _, err := stmt.ExecContext(ctx, row...); err != nil {
				stmt.Close()
				return fmt.Errorf("insert %s row %d: %w", t.Name, i, err)
			}
		}
		stmt.Close()
		s.log.Info("Seeded table", zap.String("table", t.Name), zap.Int("rows", len(t.Rows)))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	return nil
}

// checkRows rejects rows whose width differs from the column list.
func checkRows(t *Table) error {
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("%s row %d: got %d cells, want %d", t.Name, i, len(row), len(t.Columns))
		}
	}
	return nil
}

func createStatement(t *Table) string {
	defs := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		defs[i] = quoteIdent(c) + " " + columnType(t, i)
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(t.Name), strings.Join(defs, ", "))
}

func (s *Store) insertStatement(t *Table) string {
	cols := make([]string, len(t.Columns))
	marks := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = quoteIdent(c)
		if s.driver == "pgx" {
			marks[i] = "$" + strconv.Itoa(i+1)
		} else {
			marks[i] = "?"
		}
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(t.Name), strings.Join(cols, ", "), strings.Join(marks, ", "))
}

func columnType(t *Table, col int) string {
	for _, row := range t.Rows {
		switch row[col].(type) {
		case nil:
			continue
		case int, int32, int64:
			return "INTEGER"
		case float32, float64:
			return "DOUBLE PRECISION"
		default:
			return "TEXT"
		}
	}
	return "TEXT"
}
