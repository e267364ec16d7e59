package mastersvc

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ZigmaSoftware/erp-final-backend/internal/httpx"
	"github.com/ZigmaSoftware/erp-final-backend/pkg/auth"
	erperr "github.com/ZigmaSoftware/erp-final-backend/pkg/errors"
)

// Catalog is the store surface consumed by the handlers.
type Catalog interface {
	List(ctx context.Context, res Resource, limit, offset int) ([]*Record, error)
	Get(ctx context.Context, res Resource, id int64) (*Record, error)
	Create(ctx context.Context, res Resource, in Input, actor string) (*Record, error)
	Update(ctx context.Context, res Resource, id int64, in Input, actor string) (*Record, error)
	SoftDelete(ctx context.Context, res Resource, id int64, actor string) error
}

// Handler serves the generic CRUD endpoints for every catalog resource.
type Handler struct {
	store  Catalog
	logger *slog.Logger
}

// NewHandler creates a Handler over the given store.
func NewHandler(store Catalog, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{store: store, logger: logger}
}

// Mount registers the CRUD routes for every resource in the catalog.
func (h *Handler) Mount(r chi.Router) {
	for _, res := range Resources {
		res := res
		r.Route("/"+res.Name, func(r chi.Router) {
			r.Get("/", h.list(res))
			r.Post("/", h.create(res))
			r.Get("/{id}/", h.get(res))
			r.Put("/{id}/", h.update(res))
			r.Delete("/{id}/", h.remove(res))
		})
	}
}

func (h *Handler) list(res Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := pagination(r)

		records, err := h.store.List(r.Context(), res, limit, offset)
		if err != nil {
			h.logger.ErrorContext(r.Context(), "list failed", "resource", res.Name, "error", err)
			httpx.WriteError(w, err)
			return
		}

		results := make([]map[string]any, 0, len(records))
		for _, rec := range records {
			results = append(results, recordPayload(res, rec))
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{
			"count":   len(results),
			"results": results,
		})
	}
}

func (h *Handler) get(res Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := recordID(w, r, res)
		if !ok {
			return
		}
		rec, err := h.store.Get(r.Context(), res, id)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, recordPayload(res, rec))
	}
}

func (h *Handler) create(res Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := decodeInput(r, res)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		rec, err := h.store.Create(r.Context(), res, in, actor(r))
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, recordPayload(res, rec))
	}
}

func (h *Handler) update(res Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := recordID(w, r, res)
		if !ok {
			return
		}
		in, err := decodeInput(r, res)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		rec, err := h.store.Update(r.Context(), res, id, in, actor(r))
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, recordPayload(res, rec))
	}
}

func (h *Handler) remove(res Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := recordID(w, r, res)
		if !ok {
			return
		}
		if err := h.store.SoftDelete(r.Context(), res, id, actor(r)); err != nil {
			httpx.WriteError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// recordID parses the id path parameter. A non-numeric id cannot match any
// record, so it reports not found rather than a validation error.
func recordID(w http.ResponseWriter, r *http.Request, res Resource) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.WriteDetail(w, http.StatusNotFound, res.Singular+" not found")
		return 0, false
	}
	return id, true
}

// actor returns the acting username for audit columns, empty when the
// request carries no identity assertion.
func actor(r *http.Request) string {
	if p, ok := auth.PrincipalFromContext(r.Context()); ok {
		return p.Username()
	}
	return ""
}

// decodeInput reads the client-settable fields. The parent foreign key is
// keyed by its column name (e.g. "country_id" on a state), so the field
// set varies per resource and the body is decoded generically.
func decodeInput(r *http.Request, res Resource) (Input, error) {
	var body map[string]json.RawMessage
	if err := httpx.DecodeJSON(r, &body); err != nil {
		return Input{}, err
	}

	in := Input{IsActive: true}

	if raw, ok := body["name"]; ok {
		if err := json.Unmarshal(raw, &in.Name); err != nil {
			return Input{}, erperr.New(erperr.CodeValidationFormat, "name must be a string")
		}
	}
	if in.Name == "" {
		return Input{}, erperr.New(erperr.CodeValidationRequired, "name is required")
	}

	if raw, ok := body["code"]; ok {
		if err := json.Unmarshal(raw, &in.Code); err != nil {
			return Input{}, erperr.New(erperr.CodeValidationFormat, "code must be a string")
		}
	}

	if raw, ok := body["is_active"]; ok {
		if err := json.Unmarshal(raw, &in.IsActive); err != nil {
			return Input{}, erperr.New(erperr.CodeValidationFormat, "is_active must be a boolean")
		}
	}

	if res.HasParent() {
		raw, ok := body[res.ParentCol]
		if !ok {
			return Input{}, erperr.Newf(erperr.CodeValidationRequired, "%s is required", res.ParentCol)
		}
		var parent int64
		if err := json.Unmarshal(raw, &parent); err != nil {
			return Input{}, erperr.Newf(erperr.CodeValidationFormat, "%s must be an integer", res.ParentCol)
		}
		in.ParentID = &parent
	}

	return in, nil
}

// recordPayload renders a record with the resource's parent key name.
func recordPayload(res Resource, rec *Record) map[string]any {
	out := map[string]any{
		"id":         rec.ID,
		"unique_id":  rec.UniqueID.String(),
		"name":       rec.Name,
		"code":       rec.Code,
		"is_active":  rec.IsActive,
		"is_deleted": rec.IsDeleted,
		"created_at": rec.CreatedAt,
		"updated_at": rec.UpdatedAt,
		"created_by": rec.CreatedBy,
		"updated_by": rec.UpdatedBy,
	}
	if res.HasParent() {
		out[res.ParentCol] = rec.ParentID
	}
	return out
}

func pagination(r *http.Request) (limit, offset int) {
	limit = 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = min(n, 500)
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			offset = n
		}
	}
	return limit, offset
}
