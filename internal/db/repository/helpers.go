// Package repository implements the racing store queries on database/sql.
package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/duckdb/duckdb-go/v2"
	"github.com/mattn/go-sqlite3"

	"racing-api/internal/domain"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// validIdent reports whether name is a plain SQL identifier. Table and
// column names are interpolated into statements, so nothing else is allowed.
func validIdent(name string) bool {
	return identRe.MatchString(name)
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// mapDBError classifies driver errors into domain errors. op names the
// failed operation for StoreUnavailable errors.
func mapDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.NotFoundError{Message: "resource not found"}
	}
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, driver.ErrBadConn) {
		return domain.ErrStoreUnavailable(op, err)
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return domain.ErrConflict("%s: resource already exists", op)
		case sqlite3.ErrConstraintForeignKey:
			return domain.ErrConflict("%s: row is referenced by or references missing rows", op)
		case sqlite3.ErrConstraintNotNull:
			return domain.ErrValidation("%s: %s", op, sqliteErr.Error())
		}
		switch sqliteErr.Code {
		case sqlite3.ErrBusy, sqlite3.ErrLocked, sqlite3.ErrCantOpen, sqlite3.ErrIoErr:
			return domain.ErrStoreUnavailable(op, err)
		}
	}

	var duckErr *duckdb.Error
	if errors.As(err, &duckErr) {
		switch duckErr.Type {
		case duckdb.ErrorTypeConstraint:
			return domain.ErrConflict("%s: %s", op, duckErr.Msg)
		case duckdb.ErrorTypeConnection, duckdb.ErrorTypeInterrupt, duckdb.ErrorTypeIO:
			return domain.ErrStoreUnavailable(op, err)
		}
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"),
		strings.Contains(msg, "Duplicate key"):
		return domain.ErrConflict("%s: resource already exists", op)
	case strings.Contains(msg, "Constraint Error"):
		return domain.ErrConflict("%s: %s", op, msg)
	case strings.Contains(msg, "database is closed"):
		return domain.ErrStoreUnavailable(op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// scanRow scans the current row into one value per column.
func scanRow(rows *sql.Rows, n int) ([]any, error) {
	vals := make([]any, n)
	ptrs := make([]any, n)
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	for i, v := range vals {
		vals[i] = normalizeValue(v)
	}
	return vals, nil
}

// normalizeValue unwraps driver-specific numeric types. DuckDB returns
// DECIMAL as duckdb.Decimal and HUGEINT/UHUGEINT as *big.Int.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case duckdb.Decimal:
		if x.Value == nil {
			return nil
		}
		return x.Float64()
	case *big.Int:
		if x == nil {
			return nil
		}
		if x.IsInt64() {
			return x.Int64()
		}
		return x.String()
	default:
		return v
	}
}
