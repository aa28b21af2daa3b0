package repository

import (
	"context"
	"database/sql"
	"strings"

	"racing-api/internal/domain"
)

// SchemaRepo reads table shapes from the store catalog.
type SchemaRepo struct {
	db     *sql.DB
	driver string
}

// NewSchemaRepo creates a new SchemaRepo. driver selects the catalog
// dialect ("sqlite3" or "duckdb").
func NewSchemaRepo(db *sql.DB, driver string) *SchemaRepo {
	return &SchemaRepo{db: db, driver: driver}
}

// Describe returns the columns of table in store order. The declared
// primary key is the identity; without a single-column primary key the
// first column named "id" is used.
func (r *SchemaRepo) Describe(ctx context.Context, table string) (*domain.TableSchema, error) {
	if !validIdent(table) {
		return nil, domain.ErrSchemaNotFound(table)
	}

	var (
		fields []domain.FieldDescriptor
		pks    []string
		err    error
	)
	if r.driver == "duckdb" {
		fields, pks, err = r.describeDuckDB(ctx, table)
	} else {
		fields, pks, err = r.describeSQLite(ctx, table)
	}
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, domain.ErrSchemaNotFound(table)
	}

	markIdentity(fields, pks)
	return &domain.TableSchema{Name: table, Fields: fields}, nil
}

func markIdentity(fields []domain.FieldDescriptor, pks []string) {
	identity := ""
	if len(pks) == 1 {
		identity = pks[0]
	} else {
		for _, f := range fields {
			if f.Name == "id" {
				identity = f.Name
				break
			}
		}
	}
	for i := range fields {
		if fields[i].Name == identity {
			fields[i].Identity = true
			fields[i].Nullable = false
			fields[i].HasDefault = false
		}
	}
}

func (r *SchemaRepo) describeSQLite(ctx context.Context, table string) ([]domain.FieldDescriptor, []string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, type, "notnull", dflt_value, pk FROM pragma_table_info(?) ORDER BY cid`, table)
	if err != nil {
		return nil, nil, mapDBError("describe "+table, err)
	}
	defer rows.Close() //nolint:errcheck

	var (
		fields []domain.FieldDescriptor
		pks    []string
	)
	for rows.Next() {
		var (
			name, declType string
			notNull, pk    int
			dflt           sql.NullString
		)
		if err := rows.Scan(&name, &declType, &notNull, &dflt, &pk); err != nil {
			return nil, nil, mapDBError("describe "+table, err)
		}
		fields = append(fields, domain.FieldDescriptor{
			Name:       name,
			Type:       sqliteFieldType(declType),
			Nullable:   notNull == 0,
			HasDefault: dflt.Valid,
			StoreType:  declType,
		})
		if pk > 0 {
			pks = append(pks, name)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, mapDBError("describe "+table, err)
	}
	return fields, pks, nil
}

// sqliteFieldType applies SQLite's column affinity rules to a declared type.
func sqliteFieldType(declType string) domain.FieldType {
	t := strings.ToUpper(declType)
	switch {
	case strings.Contains(t, "INT"), strings.Contains(t, "BOOL"):
		return domain.FieldInteger
	case strings.Contains(t, "CHAR"), strings.Contains(t, "CLOB"), strings.Contains(t, "TEXT"):
		return domain.FieldString
	case strings.Contains(t, "REAL"), strings.Contains(t, "FLOA"), strings.Contains(t, "DOUB"),
		strings.Contains(t, "NUM"), strings.Contains(t, "DEC"):
		return domain.FieldFloat
	default:
		return domain.FieldString
	}
}

func (r *SchemaRepo) describeDuckDB(ctx context.Context, table string) ([]domain.FieldDescriptor, []string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT column_name, data_type, is_nullable, column_default
		FROM information_schema.columns
		WHERE table_name = ? AND table_schema = current_schema()
		ORDER BY ordinal_position`, table)
	if err != nil {
		return nil, nil, mapDBError("describe "+table, err)
	}
	defer rows.Close() //nolint:errcheck

	var fields []domain.FieldDescriptor
	for rows.Next() {
		var (
			name, dataType, nullable string
			dflt                     sql.NullString
		)
		if err := rows.Scan(&name, &dataType, &nullable, &dflt); err != nil {
			return nil, nil, mapDBError("describe "+table, err)
		}
		fields = append(fields, domain.FieldDescriptor{
			Name:       name,
			Type:       duckdbFieldType(dataType),
			Nullable:   strings.EqualFold(nullable, "YES"),
			HasDefault: dflt.Valid,
			StoreType:  dataType,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, nil, mapDBError("describe "+table, err)
	}
	if len(fields) == 0 {
		return nil, nil, nil
	}

	pkRows, err := r.db.QueryContext(ctx, `
		SELECT unnest(constraint_column_names)
		FROM duckdb_constraints()
		WHERE table_name = ? AND constraint_type = 'PRIMARY KEY'`, table)
	if err != nil {
		return nil, nil, mapDBError("describe "+table, err)
	}
	defer pkRows.Close() //nolint:errcheck

	var pks []string
	for pkRows.Next() {
		var col string
		if err := pkRows.Scan(&col); err != nil {
			return nil, nil, mapDBError("describe "+table, err)
		}
		pks = append(pks, col)
	}
	return fields, pks, mapDBError("describe "+table, pkRows.Err())
}

func duckdbFieldType(dataType string) domain.FieldType {
	t := strings.ToUpper(dataType)
	switch {
	case t == "INTERVAL":
		return domain.FieldString
	case strings.HasSuffix(t, "INT"), strings.HasPrefix(t, "INT"), t == "BIGINT", t == "BOOLEAN":
		return domain.FieldInteger
	case t == "DOUBLE", t == "FLOAT", t == "REAL", strings.HasPrefix(t, "DECIMAL"), strings.HasPrefix(t, "NUMERIC"):
		return domain.FieldFloat
	default:
		return domain.FieldString
	}
}

// ListTables returns the user tables of the store, alphabetically.
func (r *SchemaRepo) ListTables(ctx context.Context) ([]string, error) {
	query := `SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%' AND name <> 'goose_db_version'
		ORDER BY name`
	if r.driver == "duckdb" {
		query = `SELECT table_name FROM information_schema.tables
			WHERE table_schema = current_schema() ORDER BY table_name`
	}

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapDBError("list tables", err)
	}
	defer rows.Close() //nolint:errcheck

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, mapDBError("list tables", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, mapDBError("list tables", err)
	}
	return tables, nil
}
