package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"racing-api/internal/domain"
	"racing-api/internal/recordschema"
)

// RecordService is the generic CRUD surface the table routes call.
type RecordService interface {
	List(ctx context.Context, schema *recordschema.RecordSchema, opts domain.ListOptions) ([]domain.Record, domain.PageMetadata, error)
	Get(ctx context.Context, schema *recordschema.RecordSchema, rawID string) (domain.Record, error)
	Create(ctx context.Context, schema *recordschema.RecordSchema, payload map[string]any) (domain.Record, error)
	Update(ctx context.Context, schema *recordschema.RecordSchema, rawID string, payload map[string]any) (domain.Record, error)
	Delete(ctx context.Context, schema *recordschema.RecordSchema, rawID string) error
}

// recordHandler serves one table. One is built per registered schema.
type recordHandler struct {
	schema *recordschema.RecordSchema
	svc    RecordService
	logger *slog.Logger
}

func newRecordHandler(schema *recordschema.RecordSchema, svc RecordService, logger *slog.Logger) *recordHandler {
	return &recordHandler{schema: schema, svc: svc, logger: logger.With("table", schema.Name())}
}

// register mounts the table's routes on r.
func (h *recordHandler) register(r chi.Router) {
	base := "/" + h.schema.Name()
	r.Get(base, h.list)
	r.Post(base, h.create)
	r.Get(base+"/{id}", h.get)
	r.Put(base+"/{id}", h.update)
	r.Delete(base+"/{id}", h.delete)
}

func (h *recordHandler) list(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptionsFromQuery(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	recs, page, err := h.svc.List(r.Context(), h.schema, opts)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	body, err := h.schema.MarshalRecords(recs)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	setContentRange(w, page)
	writeRawJSON(w, http.StatusOK, body)
}

func (h *recordHandler) get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Get(r.Context(), h.schema, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.writeRecord(w, r, http.StatusOK, rec)
}

func (h *recordHandler) create(w http.ResponseWriter, r *http.Request) {
	payload, err := decodePayload(w, r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	rec, err := h.svc.Create(r.Context(), h.schema, payload)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.writeRecord(w, r, http.StatusCreated, rec)
}

func (h *recordHandler) update(w http.ResponseWriter, r *http.Request) {
	payload, err := decodePayload(w, r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	rec, err := h.svc.Update(r.Context(), h.schema, chi.URLParam(r, "id"), payload)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.writeRecord(w, r, http.StatusOK, rec)
}

func (h *recordHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), h.schema, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *recordHandler) writeRecord(w http.ResponseWriter, r *http.Request, status int, rec domain.Record) {
	body, err := h.schema.MarshalRecord(rec)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeRawJSON(w, status, body)
}
