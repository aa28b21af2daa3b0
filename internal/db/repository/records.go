package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"racing-api/internal/domain"
	"racing-api/internal/recordschema"
)

// RecordRepo runs generic row operations for any table described by a
// RecordSchema. Mutations go through the write pool, reads through the
// read pool.
type RecordRepo struct {
	write *sql.DB
	read  *sql.DB
	locks sync.Map // table name -> *sync.Mutex
}

// NewRecordRepo creates a new RecordRepo.
func NewRecordRepo(write, read *sql.DB) *RecordRepo {
	return &RecordRepo{write: write, read: read}
}

func selectList(s *recordschema.RecordSchema) string {
	cols := s.Columns()
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
	}
	return strings.Join(quoted, ", ")
}

// List returns the rows of the table and the table's total row count.
// Without a range every row is returned in the store's natural order.
func (r *RecordRepo) List(ctx context.Context, s *recordschema.RecordSchema, opts domain.ListOptions) ([]domain.Record, int64, error) {
	table := quoteIdent(s.Name())
	query := fmt.Sprintf("SELECT %s FROM %s", selectList(s), table)
	var args []any

	if opts.Sort != nil {
		if !s.HasField(opts.Sort.Field) {
			return nil, 0, domain.ErrValidation("%s: cannot sort by unknown field %q", s.Name(), opts.Sort.Field)
		}
		dir := "ASC"
		if opts.Sort.Desc {
			dir = "DESC"
		}
		query += fmt.Sprintf(" ORDER BY %s %s", quoteIdent(opts.Sort.Field), dir)
		if opts.Sort.Field != s.Identity().Name {
			query += fmt.Sprintf(", %s ASC", quoteIdent(s.Identity().Name))
		}
	}
	if opts.Range.Set {
		query += " LIMIT ? OFFSET ?"
		args = append(args, opts.Range.Limit(), opts.Range.Start)
	}

	rows, err := r.read.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, mapDBError("list "+s.Name(), err)
	}
	defer rows.Close() //nolint:errcheck

	n := len(s.Columns())
	recs := []domain.Record{}
	for rows.Next() {
		vals, err := scanRow(rows, n)
		if err != nil {
			return nil, 0, mapDBError("list "+s.Name(), err)
		}
		rec, err := s.FromRow(vals)
		if err != nil {
			return nil, 0, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapDBError("list "+s.Name(), err)
	}

	if !opts.Range.Set {
		return recs, int64(len(recs)), nil
	}
	var total int64
	if err := r.read.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&total); err != nil {
		return nil, 0, mapDBError("count "+s.Name(), err)
	}
	return recs, total, nil
}

// Get returns the row whose identity equals id.
func (r *RecordRepo) Get(ctx context.Context, s *recordschema.RecordSchema, id any) (domain.Record, error) {
	return r.get(ctx, r.read, s, id)
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (r *RecordRepo) get(ctx context.Context, q queryer, s *recordschema.RecordSchema, id any) (domain.Record, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?",
		selectList(s), quoteIdent(s.Name()), quoteIdent(s.Identity().Name))

	rows, err := q.QueryContext(ctx, query, id)
	if err != nil {
		return nil, mapDBError("get "+s.Name(), err)
	}
	defer rows.Close() //nolint:errcheck

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, mapDBError("get "+s.Name(), err)
		}
		return nil, domain.ErrNotFound("%s %v not found", s.Name(), id)
	}
	vals, err := scanRow(rows, len(s.Columns()))
	if err != nil {
		return nil, mapDBError("get "+s.Name(), err)
	}
	return s.FromRow(vals)
}

func (r *RecordRepo) tableLock(table string) *sync.Mutex {
	mu, _ := r.locks.LoadOrStore(table, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Insert stores rec and returns the row as stored. Integer identities are
// allocated as MAX(identity)+1 (1 for an empty table) inside the insert
// transaction, under a per-table lock, so concurrent inserts never share
// an identity.
func (r *RecordRepo) Insert(ctx context.Context, s *recordschema.RecordSchema, rec domain.Record) (domain.Record, error) {
	idField := s.Identity()

	mu := r.tableLock(s.Name())
	mu.Lock()
	defer mu.Unlock()

	tx, err := r.write.BeginTx(ctx, nil)
	if err != nil {
		return nil, mapDBError("begin insert "+s.Name(), err)
	}
	defer tx.Rollback() //nolint:errcheck

	row := make(domain.Record, len(rec)+1)
	for k, v := range rec {
		row[k] = v
	}
	if idField.Type == domain.FieldInteger {
		var next int64
		err := tx.QueryRowContext(ctx, fmt.Sprintf("SELECT COALESCE(MAX(%s), 0) + 1 FROM %s",
			quoteIdent(idField.Name), quoteIdent(s.Name()))).Scan(&next)
		if err != nil {
			return nil, mapDBError("allocate "+s.Name()+" identity", err)
		}
		row[idField.Name] = next
	}
	if _, ok := row[idField.Name]; !ok {
		return nil, domain.ErrValidation("%s: field %q is required", s.Name(), idField.Name)
	}

	var (
		cols         []string
		placeholders []string
		args         []any
	)
	for _, c := range s.Columns() {
		v, ok := row[c]
		if !ok {
			continue
		}
		cols = append(cols, quoteIdent(c))
		placeholders = append(placeholders, "?")
		args = append(args, v)
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(s.Name()), strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
		return nil, mapDBError("insert "+s.Name(), err)
	}

	stored, err := r.get(ctx, tx, s, row[idField.Name])
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, mapDBError("commit insert "+s.Name(), err)
	}
	return stored, nil
}

// Update overwrites every non-identity column present in rec for the row
// identified by id. Zero affected rows is reported as NotFound.
func (r *RecordRepo) Update(ctx context.Context, s *recordschema.RecordSchema, id any, rec domain.Record) error {
	idName := s.Identity().Name
	var (
		sets []string
		args []any
	)
	for _, c := range s.Columns() {
		if c == idName {
			continue
		}
		v, ok := rec[c]
		if !ok {
			continue
		}
		sets = append(sets, quoteIdent(c)+" = ?")
		args = append(args, v)
	}
	if len(sets) == 0 {
		return domain.ErrValidation("%s: nothing to update", s.Name())
	}
	args = append(args, id)

	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
		quoteIdent(s.Name()), strings.Join(sets, ", "), quoteIdent(idName))
	res, err := r.write.ExecContext(ctx, stmt, args...)
	if err != nil {
		return mapDBError("update "+s.Name(), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return mapDBError("update "+s.Name(), err)
	}
	if n == 0 {
		return domain.ErrNotFound("%s %v not found", s.Name(), id)
	}
	return nil
}

// Delete removes the row identified by id. Deleting a missing row is not
// an error.
func (r *RecordRepo) Delete(ctx context.Context, s *recordschema.RecordSchema, id any) error {
	stmt := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", quoteIdent(s.Name()), quoteIdent(s.Identity().Name))
	_, err := r.write.ExecContext(ctx, stmt, id)
	return mapDBError("delete "+s.Name(), err)
}
