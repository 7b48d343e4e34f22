// Package query implements generic CRUD over any table of the blog schema.
// Table names are the only caller-controlled fragment interpolated into SQL
// text, so every operation validates the identifier before touching the
// store; all values and ids travel as bound parameters.
package query

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/vdellis/inkpost/internal/apperr"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdentifier reports whether s is safe to interpolate as a table name.
func ValidIdentifier(s string) bool {
	return identPattern.MatchString(s)
}

// Store executes generic statements against an injected sqlx executor.
// Column names inside a Record are trusted schema-derived input and are not
// re-validated here; callers must never pass free-form client keys.
type Store struct {
	db sqlx.ExtContext
}

func NewStore(db sqlx.ExtContext) *Store {
	return &Store{db: db}
}

// SelectAll fetches every row of a table, newest first.
func (s *Store) SelectAll(ctx context.Context, table string) ([]map[string]any, error) {
	if !ValidIdentifier(table) {
		return nil, fmt.Errorf("%w: %q", apperr.ErrInvalidTable, table)
	}

	q := s.db.Rebind(`SELECT * FROM ` + table + ` ORDER BY created_at DESC`)
	rows, err := s.db.QueryxContext(ctx, q)
	if err != nil {
		return nil, storeErr("select all", table, err)
	}
	defer rows.Close()

	out := []map[string]any{}
	for rows.Next() {
		row := map[string]any{}
		if err := rows.MapScan(row); err != nil {
			return nil, storeErr("scan", table, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("select all", table, err)
	}
	return out, nil
}

// Select fetches one row by id. Ids are assumed unique; if several rows
// match, the first one wins.
func (s *Store) Select(ctx context.Context, table string, id int64) (map[string]any, error) {
	if !ValidIdentifier(table) {
		return nil, fmt.Errorf("%w: %q", apperr.ErrInvalidTable, table)
	}

	q := s.db.Rebind(`SELECT * FROM ` + table + ` WHERE id = ?`)
	rows, err := s.db.QueryxContext(ctx, q, id)
	if err != nil {
		return nil, storeErr("select", table, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, storeErr("select", table, err)
		}
		return nil, fmt.Errorf("%w: %s id %d", apperr.ErrNotFound, table, id)
	}
	row := map[string]any{}
	if err := rows.MapScan(row); err != nil {
		return nil, storeErr("scan", table, err)
	}
	return row, nil
}

// Insert creates a row from the record's columns and returns the generated
// id along with the record with the id merged in. Column order and argument
// order both come from the record, keeping the two in lockstep.
func (s *Store) Insert(ctx context.Context, table string, rec Record) (int64, Record, error) {
	if !ValidIdentifier(table) {
		return 0, nil, fmt.Errorf("%w: %q", apperr.ErrInvalidTable, table)
	}

	cols := rec.Columns()
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	q := s.db.Rebind(`INSERT INTO ` + table + ` (` + strings.Join(cols, ", ") +
		`) VALUES (` + placeholders + `) RETURNING id`)

	var id int64
	if err := s.db.QueryRowxContext(ctx, q, rec.Values()...).Scan(&id); err != nil {
		return 0, nil, storeErr("insert", table, err)
	}
	rec.Set("id", id)
	return id, rec, nil
}

// Update applies the record as a SET clause to the row with the given id and
// returns the affected-row count. A count of zero maps to not-found; note a
// store may also report zero for a matched row whose values did not change,
// which then surfaces as not-found as well.
func (s *Store) Update(ctx context.Context, table string, id int64, rec Record) (int64, error) {
	if !ValidIdentifier(table) {
		return 0, fmt.Errorf("%w: %q", apperr.ErrInvalidTable, table)
	}

	sets := make([]string, len(rec))
	for i, f := range rec {
		sets[i] = f.Column + " = ?"
	}
	q := s.db.Rebind(`UPDATE ` + table + ` SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`)

	args := append(rec.Values(), id)
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, storeErr("update", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storeErr("update", table, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: %s id %d", apperr.ErrNotFound, table, id)
	}
	return n, nil
}

// Delete removes the row with the given id.
func (s *Store) Delete(ctx context.Context, table string, id int64) (int64, error) {
	if !ValidIdentifier(table) {
		return 0, fmt.Errorf("%w: %q", apperr.ErrInvalidTable, table)
	}

	q := s.db.Rebind(`DELETE FROM ` + table + ` WHERE id = ?`)
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return 0, storeErr("delete", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storeErr("delete", table, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: %s id %d", apperr.ErrNotFound, table, id)
	}
	return n, nil
}

// CreateTable provisions a table if it does not exist yet. It runs once per
// known table at process start, behind the same identifier gate as the
// request-time operations.
func (s *Store) CreateTable(ctx context.Context, table, schema string) error {
	if !ValidIdentifier(table) {
		return fmt.Errorf("%w: %q", apperr.ErrInvalidTable, table)
	}

	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+table+` (`+schema+`)`); err != nil {
		return storeErr("create table", table, err)
	}
	return nil
}

// storeErr classifies a store failure. Unique-constraint violations become
// conflicts; everything else is a query failure.
func storeErr(op, table string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: duplicate key on %s", apperr.ErrConflict, table)
	}
	return fmt.Errorf("%w: %s %s: %v", apperr.ErrQueryFailed, op, table, err)
}
