package mastersvc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZigmaSoftware/erp-final-backend/pkg/auth"
	erperr "github.com/ZigmaSoftware/erp-final-backend/pkg/errors"
)

// fakeCatalog keeps records in memory and records the actor of the last
// write.
type fakeCatalog struct {
	records   map[string][]*Record
	lastActor string
	createErr error
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{records: make(map[string][]*Record)}
}

func (f *fakeCatalog) add(res Resource, rec *Record) {
	f.records[res.Name] = append(f.records[res.Name], rec)
}

func (f *fakeCatalog) List(_ context.Context, res Resource, limit, offset int) ([]*Record, error) {
	recs := f.records[res.Name]
	if offset >= len(recs) {
		return nil, nil
	}
	end := min(offset+limit, len(recs))
	return recs[offset:end], nil
}

func (f *fakeCatalog) Get(_ context.Context, res Resource, id int64) (*Record, error) {
	for _, rec := range f.records[res.Name] {
		if rec.ID == id && !rec.IsDeleted {
			return rec, nil
		}
	}
	return nil, erperr.Newf(erperr.CodeNotFound, "%s not found", res.Singular)
}

func (f *fakeCatalog) Create(_ context.Context, res Resource, in Input, actor string) (*Record, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.lastActor = actor
	rec := &Record{
		ID:       int64(len(f.records[res.Name]) + 1),
		UniqueID: uuid.New(),
		Name:     in.Name,
		Code:     in.Code,
		ParentID: in.ParentID,
		IsActive: in.IsActive,
		CreatedBy: actor,
		UpdatedBy: actor,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.add(res, rec)
	return rec, nil
}

func (f *fakeCatalog) Update(ctx context.Context, res Resource, id int64, in Input, actor string) (*Record, error) {
	rec, err := f.Get(ctx, res, id)
	if err != nil {
		return nil, err
	}
	f.lastActor = actor
	rec.Name, rec.Code, rec.ParentID, rec.IsActive = in.Name, in.Code, in.ParentID, in.IsActive
	rec.UpdatedBy = actor
	return rec, nil
}

func (f *fakeCatalog) SoftDelete(ctx context.Context, res Resource, id int64, actor string) error {
	rec, err := f.Get(ctx, res, id)
	if err != nil {
		return err
	}
	f.lastActor = actor
	rec.IsDeleted = true
	return nil
}

func newTestRouter(catalog Catalog) chi.Router {
	r := chi.NewRouter()
	NewHandler(catalog, nil).Mount(r)
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path, body string, principal auth.Principal) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if principal != nil {
		req = req.WithContext(auth.ContextWithPrincipal(req.Context(), principal))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateAndGet(t *testing.T) {
	catalog := newFakeCatalog()
	router := newTestRouter(catalog)
	principal := auth.NewUser("42", "alice", []string{"admin"})

	rec := doJSON(t, router, http.MethodPost, "/continents/",
		`{"name": "Asia", "code": "AS"}`, principal)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Asia", created["name"])
	assert.Equal(t, "AS", created["code"])
	assert.Equal(t, true, created["is_active"], "is_active defaults to true")
	assert.Equal(t, "alice", created["created_by"])
	assert.NotEmpty(t, created["unique_id"])
	assert.NotContains(t, created, "continent_id", "top-level resources have no parent key")

	assert.Equal(t, "alice", catalog.lastActor)

	rec = doJSON(t, router, http.MethodGet, "/continents/1/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCreate_ParentRequired(t *testing.T) {
	router := newTestRouter(newFakeCatalog())

	rec := doJSON(t, router, http.MethodPost, "/states/", `{"name": "Bavaria"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "country_id is required")
}

func TestCreate_NameRequired(t *testing.T) {
	router := newTestRouter(newFakeCatalog())

	rec := doJSON(t, router, http.MethodPost, "/contractors/", `{"code": "C1"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "name is required")
}

func TestCreate_DuplicateConflict(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.createErr = erperr.New(erperr.CodeConflictDuplicate, `state "Bavaria" already exists`)
	router := newTestRouter(catalog)

	rec := doJSON(t, router, http.MethodPost, "/states/",
		`{"name": "Bavaria", "country_id": 7}`, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreate_ParentKeyInPayload(t *testing.T) {
	catalog := newFakeCatalog()
	router := newTestRouter(catalog)

	rec := doJSON(t, router, http.MethodPost, "/states/",
		`{"name": "Bavaria", "code": "BY", "country_id": 7}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, float64(7), created["country_id"])
}

func TestList(t *testing.T) {
	catalog := newFakeCatalog()
	now := time.Now()
	for i, name := range []string{"Asia", "Europe", "Africa"} {
		catalog.add(Resources[0], &Record{
			ID: int64(i + 1), UniqueID: uuid.New(), Name: name,
			IsActive: true, CreatedAt: now, UpdatedAt: now,
		})
	}
	router := newTestRouter(catalog)

	rec := doJSON(t, router, http.MethodGet, "/continents/?limit=2&offset=1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Count   int              `json:"count"`
		Results []map[string]any `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "Europe", resp.Results[0]["name"])
}

func TestList_Empty(t *testing.T) {
	router := newTestRouter(newFakeCatalog())

	rec := doJSON(t, router, http.MethodGet, "/vehicle-suppliers/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count": 0, "results": []}`, rec.Body.String())
}

func TestGet_NotFound(t *testing.T) {
	router := newTestRouter(newFakeCatalog())

	for _, path := range []string{"/continents/99/", "/continents/abc/"} {
		rec := doJSON(t, router, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.JSONEq(t, `{"detail": "continent not found"}`, rec.Body.String(), path)
	}
}

func TestUpdate(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.add(Resources[0], &Record{ID: 1, UniqueID: uuid.New(), Name: "Asia", IsActive: true})
	router := newTestRouter(catalog)
	principal := auth.NewUser("7", "bob", nil)

	rec := doJSON(t, router, http.MethodPut, "/continents/1/",
		`{"name": "Asia Pacific", "is_active": false}`, principal)
	require.Equal(t, http.StatusOK, rec.Code)

	var updated map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Asia Pacific", updated["name"])
	assert.Equal(t, false, updated["is_active"])
	assert.Equal(t, "bob", updated["updated_by"])
}

func TestDelete(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.add(Resources[0], &Record{ID: 1, UniqueID: uuid.New(), Name: "Asia"})
	router := newTestRouter(catalog)

	rec := doJSON(t, router, http.MethodDelete, "/continents/1/", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// Soft-deleted records vanish from reads.
	rec = doJSON(t, router, http.MethodGet, "/continents/1/", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEveryResourceIsRouted(t *testing.T) {
	router := newTestRouter(newFakeCatalog())

	for _, res := range Resources {
		rec := doJSON(t, router, http.MethodGet, "/"+res.Name+"/", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code, res.Name)
	}
}
