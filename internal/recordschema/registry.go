package recordschema

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"racing-api/internal/domain"
)

// Registry maps table names to their record schemas. It is populated once
// at startup and read-only afterwards.
type Registry struct {
	schemas map[string]*RecordSchema
	order   []string
}

// NewRegistry builds a registry from already compiled schemas. Table order
// follows the argument order.
func NewRegistry(schemas ...*RecordSchema) (*Registry, error) {
	r := &Registry{schemas: make(map[string]*RecordSchema, len(schemas))}
	for _, s := range schemas {
		if _, dup := r.schemas[s.Name()]; dup {
			return nil, fmt.Errorf("duplicate table %q", s.Name())
		}
		r.schemas[s.Name()] = s
		r.order = append(r.order, s.Name())
	}
	return r, nil
}

// LoadRegistry introspects every table concurrently and compiles a schema
// for each. Any missing table fails the whole load.
func LoadRegistry(ctx context.Context, introspector domain.SchemaIntrospector, tables []string) (*Registry, error) {
	schemas := make([]*RecordSchema, len(tables))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range tables {
		g.Go(func() error {
			ts, err := introspector.Describe(gctx, name)
			if err != nil {
				return fmt.Errorf("describe %s: %w", name, err)
			}
			s, err := Build(*ts)
			if err != nil {
				return err
			}
			schemas[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return NewRegistry(schemas...)
}

// Lookup returns the schema for table.
func (r *Registry) Lookup(table string) (*RecordSchema, error) {
	s, ok := r.schemas[table]
	if !ok {
		return nil, domain.ErrSchemaNotFound(table)
	}
	return s, nil
}

// Tables returns the registered table names in registration order.
func (r *Registry) Tables() []string {
	return append([]string(nil), r.order...)
}
