package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"catalog_service/internal/domain"
	"catalog_service/internal/repository/memstore"
	"catalog_service/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct{ err error }

func (p stubPinger) PingContext(context.Context) error { return p.err }

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) (*gin.Engine, *memstore.Store) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	store := memstore.New()
	handler := NewCategoryHandler(usecase.NewCategoryUseCase(store, logger), logger)
	return NewRouter(logger, stubPinger{}, handler), store
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestCreateCategoryEchoesRecord(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/category/", `{"name": "Shoes", "slug": "shoes", "is_active": true, "level": 3}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	got := decode[map[string]any](t, rec)
	assert.Equal(t, map[string]any{
		"id":        float64(1),
		"name":      "Shoes",
		"slug":      "shoes",
		"is_active": true,
		"level":     float64(3),
		"parent_id": nil,
	}, got)
}

func TestCreateCategoryWithoutTrailingSlash(t *testing.T) {
	router, store := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/category", `{"name": "A", "slug": "a"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, store.Len())
}

func TestCreateCategoryNameLevelExists(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/category/", `{"name": "Shoes", "slug": "shoes", "level": 100}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/category/", `{"name": "Shoes", "slug": "shoes-2", "level": 100}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"detail": "Category name and level exists"}`, rec.Body.String())
}

func TestCreateCategorySlugExists(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/category/", `{"name": "A", "slug": "x"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/category/", `{"name": "B", "slug": "x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"detail": "Category slug exists"}`, rec.Body.String())
}

func TestCreateCategoryValidationError(t *testing.T) {
	router, store := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/category/", `{"naem": "test_name", "slug": "test_slug"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"detail": [{"field": "name", "message": "field required"}]}`, rec.Body.String())

	rec = do(t, router, http.MethodPost, "/api/category/", `not json`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, 0, store.Len())
}

func TestCreateCategoryUnknownParent(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/category/", `{"name": "A", "slug": "a", "parent_id": 77}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"detail": [{"field": "parent_id", "message": "parent category does not exist"}]}`, rec.Body.String())
}

func TestCreateCategoryUnexpectedError(t *testing.T) {
	router, store := newTestRouter(t)
	store.FailOn("FindConflictingCategory", errors.New("pq: connection refused"))

	rec := do(t, router, http.MethodPost, "/api/category/", `{"name": "A", "slug": "a"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"detail": "Internal server error"}`, rec.Body.String())
	assert.Equal(t, 0, store.Len())
}

func TestListCategories(t *testing.T) {
	router, store := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/category/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	names := []string{"A", "B", "C", "D", "E"}
	for _, name := range names {
		store.Seed(domain.Category{Name: name, Slug: strings.ToLower(name), Level: 100})
	}

	rec = do(t, router, http.MethodGet, "/api/category", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[[]domain.Category](t, rec)
	require.Len(t, got, len(names))
	for i, name := range names {
		assert.Equal(t, name, got[i].Name)
	}
}

func TestListCategoriesFailure(t *testing.T) {
	router, store := newTestRouter(t)
	store.FailOn("ListCategories", errors.New("boom"))

	rec := do(t, router, http.MethodGet, "/api/category/", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"detail": "Internal server error"}`, rec.Body.String())
}

func TestGetCategoryBySlug(t *testing.T) {
	router, store := newTestRouter(t)
	store.Seed(domain.Category{Name: "Toys", Slug: "toys", Level: 100})

	for i := 0; i < 2; i++ {
		rec := do(t, router, http.MethodGet, "/api/category/slug/toys", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"id": 1, "name": "Toys", "slug": "toys", "is_active": false, "level": 100, "parent_id": null}`, rec.Body.String())
	}

	rec := do(t, router, http.MethodGet, "/api/category/slug/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail": "Category does not exist"}`, rec.Body.String())
}

func TestUpdateCategory(t *testing.T) {
	router, store := newTestRouter(t)
	seeded := store.Seed(domain.Category{Name: "Old", Slug: "old", Level: 100, IsActive: true})

	rec := do(t, router, http.MethodPut, "/api/category/1", `{"name": "Updated Name", "slug": "updated_slug", "is_active": false, "level": 10}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	got := decode[domain.Category](t, rec)
	assert.Equal(t, domain.Category{ID: seeded[0].ID, Name: "Updated Name", Slug: "updated_slug", Level: 10}, got)

	rec = do(t, router, http.MethodGet, "/api/category/slug/updated_slug", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateCategoryNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodPut, "/api/category/999", `{"name": "A", "slug": "a"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail": "Category not found"}`, rec.Body.String())
}

func TestUpdateCategoryBadInput(t *testing.T) {
	router, store := newTestRouter(t)
	store.Seed(domain.Category{Name: "A", Slug: "a", Level: 100})

	rec := do(t, router, http.MethodPut, "/api/category/abc", `{"name": "A", "slug": "a"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"detail": [{"field": "id", "message": "must be an integer"}]}`, rec.Body.String())

	rec = do(t, router, http.MethodPut, "/api/category/1", `{"name": "A"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestIDOutsideColumnRangeIsNotFound(t *testing.T) {
	router, store := newTestRouter(t)
	store.Seed(domain.Category{Name: "A", Slug: "a", Level: 100})
	// Postgres rejects ids beyond int4 instead of matching no row.
	store.FailOn("GetCategoryByID", errors.New(`pq: value "99999999999" is out of range for type integer`))

	for _, path := range []string{"/api/category/99999999999", "/api/category/-99999999999"} {
		rec := do(t, router, http.MethodPut, path, `{"name": "B", "slug": "b"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.JSONEq(t, `{"detail": "Category not found"}`, rec.Body.String())

		rec = do(t, router, http.MethodDelete, path, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.JSONEq(t, `{"detail": "Category not found"}`, rec.Body.String())
	}
	assert.Equal(t, 1, store.Len())
}

func TestUnmatchedRouteUsesDetailBody(t *testing.T) {
	router, _ := newTestRouter(t)

	tests := []struct {
		method, path string
	}{
		{http.MethodGet, "/api/category/slug/"},
		{http.MethodPut, "/api/category/5/"},
		{http.MethodGet, "/nope"},
	}
	for _, tt := range tests {
		rec := do(t, router, tt.method, tt.path, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, tt.path)
		assert.JSONEq(t, `{"detail": "Not Found"}`, rec.Body.String(), tt.path)
	}
}

func TestUpdateCategoryDuplicate(t *testing.T) {
	router, store := newTestRouter(t)
	store.Seed(
		domain.Category{Name: "A", Slug: "a", Level: 100},
		domain.Category{Name: "B", Slug: "b", Level: 100},
	)

	rec := do(t, router, http.MethodPut, "/api/category/2", `{"name": "A", "slug": "b"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"detail": "Category name and level exists"}`, rec.Body.String())
}

func TestDeleteCategory(t *testing.T) {
	router, store := newTestRouter(t)
	store.Seed(
		domain.Category{Name: "A", Slug: "a", Level: 100},
		domain.Category{Name: "B", Slug: "b", Level: 100},
		domain.Category{Name: "C", Slug: "c", Level: 100},
		domain.Category{Name: "D", Slug: "d", Level: 100},
		domain.Category{Name: "Toys", Slug: "toys", Level: 100},
	)

	rec := do(t, router, http.MethodDelete, "/api/category/5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id": 5, "name": "Toys"}`, rec.Body.String())

	rec = do(t, router, http.MethodGet, "/api/category/slug/toys", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodDelete, "/api/category/5", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail": "Category not found"}`, rec.Body.String())
}

func TestDeleteCategoryStillReferenced(t *testing.T) {
	router, store := newTestRouter(t)
	parent := 1
	store.Seed(
		domain.Category{Name: "Root", Slug: "root", Level: 1},
		domain.Category{Name: "Leaf", Slug: "leaf", Level: 2, ParentID: &parent},
	)

	rec := do(t, router, http.MethodDelete, "/api/category/1", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"detail": "Internal server error"}`, rec.Body.String())
	assert.Equal(t, 2, store.Len())
}

func TestHealthz(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	handler := NewCategoryHandler(usecase.NewCategoryUseCase(memstore.New(), logger), logger)

	rec := do(t, NewRouter(logger, stubPinger{}, handler), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, NewRouter(logger, stubPinger{err: errors.New("down")}, handler), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestPanicBecomesInternalServerError(t *testing.T) {
	router, _ := newTestRouter(t)
	router.GET("/explode", func(*gin.Context) { panic("kaboom") })

	rec := do(t, router, http.MethodGet, "/explode", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"detail": "Internal server error"}`, rec.Body.String())
}
