package domain

import "fmt"

// FieldType is the semantic type of a column as seen by the API.
type FieldType string

// Supported field types.
const (
	FieldInteger FieldType = "integer"
	FieldFloat   FieldType = "float"
	FieldString  FieldType = "string"
)

// FieldDescriptor describes one column of a table.
type FieldDescriptor struct {
	Name       string    `json:"name"`
	Type       FieldType `json:"type"`
	Nullable   bool      `json:"nullable"`
	HasDefault bool      `json:"has_default"` // the store fills the column when an insert omits it
	Identity   bool      `json:"identity"`
	StoreType  string    `json:"store_type"` // declared column type, as reported by the store
}

// TableSchema is the introspected shape of a table. Fields keep the
// store's column order.
type TableSchema struct {
	Name   string            `json:"name"`
	Fields []FieldDescriptor `json:"fields"`
}

// IdentityField returns the field flagged as identity.
func (s TableSchema) IdentityField() (FieldDescriptor, bool) {
	for _, f := range s.Fields {
		if f.Identity {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}

// Field looks up a field by name.
func (s TableSchema) Field(name string) (FieldDescriptor, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}

// Validate checks the invariants every introspected schema must hold:
// a name, at least one field, unique field names, and exactly one
// non-nullable identity field.
func (s TableSchema) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("table schema has no name")
	}
	if len(s.Fields) == 0 {
		return fmt.Errorf("table %q has no columns", s.Name)
	}
	seen := make(map[string]struct{}, len(s.Fields))
	identities := 0
	for _, f := range s.Fields {
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("table %q: duplicate column %q", s.Name, f.Name)
		}
		seen[f.Name] = struct{}{}
		switch f.Type {
		case FieldInteger, FieldFloat, FieldString:
		default:
			return fmt.Errorf("table %q: column %q has unsupported type %q", s.Name, f.Name, f.Type)
		}
		if f.Identity {
			identities++
			if f.Nullable {
				return fmt.Errorf("table %q: identity column %q must not be nullable", s.Name, f.Name)
			}
		}
	}
	if identities != 1 {
		return fmt.Errorf("table %q: expected exactly one identity column, found %d", s.Name, identities)
	}
	return nil
}

// Record is one row of a table: field name to typed value. Values are
// int64, float64, string, or nil.
type Record map[string]any
