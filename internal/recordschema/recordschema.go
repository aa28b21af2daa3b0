// Package recordschema turns an introspected table shape into a validator
// and serializer for that table's rows.
package recordschema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"racing-api/internal/domain"
)

// RecordSchema validates incoming payloads and serializes rows for one table.
// It is immutable after Build and safe for concurrent use.
type RecordSchema struct {
	table    domain.TableSchema
	identity domain.FieldDescriptor
	index    map[string]int
	keys     [][]byte
}

// Build compiles a TableSchema into a RecordSchema.
func Build(t domain.TableSchema) (*RecordSchema, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("build record schema: %w", err)
	}
	fields := make([]domain.FieldDescriptor, len(t.Fields))
	copy(fields, t.Fields)
	t.Fields = fields

	identity, _ := t.IdentityField()
	s := &RecordSchema{
		table:    t,
		identity: identity,
		index:    make(map[string]int, len(fields)),
		keys:     make([][]byte, len(fields)),
	}
	for i, f := range fields {
		s.index[f.Name] = i
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, fmt.Errorf("build record schema: %w", err)
		}
		s.keys[i] = key
	}
	return s, nil
}

// MustBuild is like Build but panics on error. Intended for tests and
// statically known schemas.
func MustBuild(t domain.TableSchema) *RecordSchema {
	s, err := Build(t)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the table name.
func (s *RecordSchema) Name() string { return s.table.Name }

// Table returns a copy of the underlying table schema.
func (s *RecordSchema) Table() domain.TableSchema {
	t := s.table
	t.Fields = append([]domain.FieldDescriptor(nil), s.table.Fields...)
	return t
}

// Identity returns the identity field.
func (s *RecordSchema) Identity() domain.FieldDescriptor { return s.identity }

// Columns returns the column names in store order.
func (s *RecordSchema) Columns() []string {
	cols := make([]string, len(s.table.Fields))
	for i, f := range s.table.Fields {
		cols[i] = f.Name
	}
	return cols
}

// HasField reports whether name is a column of the table.
func (s *RecordSchema) HasField(name string) bool {
	_, ok := s.table.Field(name)
	return ok
}

// ValidateCreate validates a create payload. The identity is always
// assigned by the store for integer identities, so a supplied one is
// dropped; other identity types must be supplied.
func (s *RecordSchema) ValidateCreate(payload map[string]any) (domain.Record, error) {
	if s.identity.Type == domain.FieldInteger {
		if _, ok := payload[s.identity.Name]; ok {
			trimmed := make(map[string]any, len(payload))
			for k, v := range payload {
				if k != s.identity.Name {
					trimmed[k] = v
				}
			}
			payload = trimmed
		}
		return s.validate(payload, true)
	}
	rec, err := s.validate(payload, true)
	if err != nil {
		return nil, err
	}
	if _, ok := rec[s.identity.Name]; !ok {
		return nil, domain.ErrValidation("%s: field %q is required", s.table.Name, s.identity.Name)
	}
	return rec, nil
}

// ValidateUpdate validates a full-replace payload for the row identified
// by id. Every non-identity field must be present or nullable; the
// returned record carries id as its identity.
func (s *RecordSchema) ValidateUpdate(id any, payload map[string]any) (domain.Record, error) {
	rec, err := s.validate(payload, false)
	if err != nil {
		return nil, err
	}
	rec[s.identity.Name] = id
	return rec, nil
}

// validate coerces payload into a Record. Unknown fields are rejected. A
// missing identity is left unset. A missing non-identity field becomes nil
// when nullable, is omitted when allowDefaults is set and the store has a
// default for it, and is an error otherwise.
func (s *RecordSchema) validate(payload map[string]any, allowDefaults bool) (domain.Record, error) {
	var unknown []string
	for k := range payload {
		if _, ok := s.index[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, domain.ErrValidation("%s: unknown field(s): %s", s.table.Name, strings.Join(unknown, ", "))
	}

	rec := make(domain.Record, len(s.table.Fields))
	for _, f := range s.table.Fields {
		raw, present := payload[f.Name]
		if !present {
			switch {
			case f.Identity:
			case allowDefaults && f.HasDefault:
			case f.Nullable:
				rec[f.Name] = nil
			default:
				return nil, domain.ErrValidation("%s: field %q is required", s.table.Name, f.Name)
			}
			continue
		}
		if raw == nil {
			if f.Identity {
				continue
			}
			if !f.Nullable {
				return nil, domain.ErrValidation("%s: field %q must not be null", s.table.Name, f.Name)
			}
			rec[f.Name] = nil
			continue
		}
		v, err := coerce(f, raw)
		if err != nil {
			return nil, domain.ErrValidation("%s: field %q: %v", s.table.Name, f.Name, err)
		}
		rec[f.Name] = v
	}
	return rec, nil
}

// ParseID coerces a raw path identifier to the identity field's type.
func (s *RecordSchema) ParseID(raw string) (any, error) {
	v, err := coerce(s.identity, raw)
	if err != nil {
		return nil, domain.ErrValidation("%s: invalid %s %q: %v", s.table.Name, s.identity.Name, raw, err)
	}
	return v, nil
}

// Serialize converts a record into its weakly-typed output form.
func (s *RecordSchema) Serialize(rec domain.Record) map[string]any {
	out := make(map[string]any, len(rec))
	for _, f := range s.table.Fields {
		if v, ok := rec[f.Name]; ok {
			out[f.Name] = v
		}
	}
	return out
}

// MarshalRecord writes rec as a JSON object with keys in column order.
func (s *RecordSchema) MarshalRecord(rec domain.Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.appendRecord(&buf, rec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalRecords writes recs as a JSON array. A nil slice encodes as [].
func (s *RecordSchema) MarshalRecords(recs []domain.Record) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, rec := range recs {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := s.appendRecord(&buf, rec); err != nil {
			return nil, err
		}
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func (s *RecordSchema) appendRecord(buf *bytes.Buffer, rec domain.Record) error {
	buf.WriteByte('{')
	first := true
	for i, f := range s.table.Fields {
		v, ok := rec[f.Name]
		if !ok {
			continue
		}
		val, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal %s.%s: %w", s.table.Name, f.Name, err)
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.Write(s.keys[i])
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return nil
}

// FromRow converts driver-scanned values, in column order, into a Record.
// Reads are lenient: a stored value that does not fit its declared type
// is kept as its string form rather than failing the whole read.
func (s *RecordSchema) FromRow(values []any) (domain.Record, error) {
	if len(values) != len(s.table.Fields) {
		return nil, fmt.Errorf("%s: expected %d columns, got %d", s.table.Name, len(s.table.Fields), len(values))
	}
	rec := make(domain.Record, len(values))
	for i, f := range s.table.Fields {
		raw := values[i]
		switch x := raw.(type) {
		case nil:
			rec[f.Name] = nil
			continue
		case bool:
			if x {
				raw = int64(1)
			} else {
				raw = int64(0)
			}
		case time.Time:
			raw = x.Format(time.RFC3339)
		}
		v, err := coerce(f, raw)
		if err != nil {
			if v, err = toString(raw); err != nil {
				v = fmt.Sprint(raw)
			}
		}
		rec[f.Name] = v
	}
	return rec, nil
}
