// Package records provides the generic CRUD operations behind every
// table route.
package records

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"racing-api/internal/domain"
	"racing-api/internal/recordschema"
)

// Store is the persistence the service needs. It is satisfied by
// repository.RecordRepo.
type Store interface {
	List(ctx context.Context, s *recordschema.RecordSchema, opts domain.ListOptions) ([]domain.Record, int64, error)
	Get(ctx context.Context, s *recordschema.RecordSchema, id any) (domain.Record, error)
	Insert(ctx context.Context, s *recordschema.RecordSchema, rec domain.Record) (domain.Record, error)
	Update(ctx context.Context, s *recordschema.RecordSchema, id any, rec domain.Record) error
	Delete(ctx context.Context, s *recordschema.RecordSchema, id any) error
}

// Service validates payloads against a RecordSchema and runs them against
// the store, each call bounded by the store timeout.
type Service struct {
	store   Store
	timeout time.Duration
	logger  *slog.Logger
}

// NewService creates a new records Service. A zero timeout disables the
// per-call deadline.
func NewService(store Store, timeout time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, timeout: timeout, logger: logger.With("component", "records")}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// storeErr turns a deadline hit inside the store call into StoreUnavailable.
func storeErr(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	var unavailable *domain.StoreUnavailableError
	if errors.As(err, &unavailable) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.ErrStoreUnavailable(op, err)
	}
	return err
}

// List returns the rows of the table together with the page metadata that
// describes them.
func (s *Service) List(ctx context.Context, schema *recordschema.RecordSchema, opts domain.ListOptions) ([]domain.Record, domain.PageMetadata, error) {
	if opts.Range.Set && (opts.Range.Start < 0 || opts.Range.End < opts.Range.Start) {
		return nil, domain.PageMetadata{}, domain.ErrValidation("invalid range [%d,%d]", opts.Range.Start, opts.Range.End)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	recs, total, err := s.store.List(ctx, schema, opts)
	if err != nil {
		return nil, domain.PageMetadata{}, storeErr(ctx, "list "+schema.Name(), err)
	}
	if !opts.Range.Set {
		return recs, domain.PageForCount(schema.Name(), len(recs)), nil
	}
	return recs, domain.PageForSlice(schema.Name(), opts.Range.Start, len(recs), total), nil
}

// Get returns the row identified by rawID.
func (s *Service) Get(ctx context.Context, schema *recordschema.RecordSchema, rawID string) (domain.Record, error) {
	id, err := schema.ParseID(rawID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rec, err := s.store.Get(ctx, schema, id)
	if err != nil {
		return nil, storeErr(ctx, "get "+schema.Name(), err)
	}
	return rec, nil
}

// Create validates payload and inserts it. The store assigns integer
// identities; an identity in the payload is ignored.
func (s *Service) Create(ctx context.Context, schema *recordschema.RecordSchema, payload map[string]any) (domain.Record, error) {
	rec, err := schema.ValidateCreate(payload)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	stored, err := s.store.Insert(ctx, schema, rec)
	if err != nil {
		return nil, storeErr(ctx, "create "+schema.Name(), err)
	}
	s.logger.DebugContext(ctx, "record created", "table", schema.Name(), "id", stored[schema.Identity().Name])
	return stored, nil
}

// Update replaces every non-identity field of the row identified by rawID
// and returns the validated record.
func (s *Service) Update(ctx context.Context, schema *recordschema.RecordSchema, rawID string, payload map[string]any) (domain.Record, error) {
	id, err := schema.ParseID(rawID)
	if err != nil {
		return nil, err
	}
	rec, err := schema.ValidateUpdate(id, payload)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.store.Update(ctx, schema, id, rec); err != nil {
		return nil, storeErr(ctx, "update "+schema.Name(), err)
	}
	s.logger.DebugContext(ctx, "record updated", "table", schema.Name(), "id", id)
	return rec, nil
}

// Delete removes the row identified by rawID. A missing row is not an error.
func (s *Service) Delete(ctx context.Context, schema *recordschema.RecordSchema, rawID string) error {
	id, err := schema.ParseID(rawID)
	if err != nil {
		return err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.store.Delete(ctx, schema, id); err != nil {
		return storeErr(ctx, "delete "+schema.Name(), err)
	}
	s.logger.DebugContext(ctx, "record deleted", "table", schema.Name(), "id", id)
	return nil
}
