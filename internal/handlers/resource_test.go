package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/vdellis/inkpost/internal/query"
)

// newResourceRouter mounts a resource on a chi router so {id} URL params
// resolve the same way they do in production.
func newResourceRouter(t *testing.T, table string, validate func(query.Record) error) (*chi.Mux, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	store := query.NewStore(sqlx.NewDb(mockDB, "sqlmock"))
	res := NewResource(store, table)
	if validate != nil {
		res.WithValidation(validate)
	}

	r := chi.NewRouter()
	r.Get("/", res.List)
	r.Get("/{id}", res.Get)
	r.Post("/", res.Create)
	r.Put("/{id}", res.Update)
	r.Delete("/{id}", res.Delete)
	return r, mock
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader = strings.NewReader(body)
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestResourceList(t *testing.T) {
	r, mock := newResourceRouter(t, "tags", nil)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM tags ORDER BY created_at DESC`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(2), "go").
			AddRow(int64(1), "sql"))

	rec := serve(r, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 2)
	require.Equal(t, "go", rows[0]["name"])
}

func TestResourceGetNotFound(t *testing.T) {
	r, mock := newResourceRouter(t, "tags", nil)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM tags WHERE id = ?`)).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rec := serve(r, http.MethodGet, "/9", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "tags not found")
}

func TestResourceCreate(t *testing.T) {
	r, mock := newResourceRouter(t, "tags", nil)

	mock.ExpectQuery(regexp.QuoteMeta(
		`INSERT INTO tags (name, slug) VALUES (?, ?) RETURNING id`)).
		WithArgs("Go", "go").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	rec := serve(r, http.MethodPost, "/", `{"name": "Go", "slug": "go"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		ID      int64          `json:"id"`
		Message string         `json:"message"`
		Data    map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, int64(1), body.ID)
	require.Equal(t, "tags created successfully", body.Message)
	require.EqualValues(t, 1, body.Data["id"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceCreateFiltersUnknownColumns(t *testing.T) {
	r, mock := newResourceRouter(t, "tags", nil)

	// "drop table" never reaches the generated column list.
	mock.ExpectQuery(regexp.QuoteMeta(
		`INSERT INTO tags (name) VALUES (?) RETURNING id`)).
		WithArgs("Go").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	rec := serve(r, http.MethodPost, "/", `{"name": "Go", "drop table": "x"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceUpdate(t *testing.T) {
	r, mock := newResourceRouter(t, "tags", nil)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE tags SET name = ? WHERE id = ?`)).
		WithArgs("new", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := serve(r, http.MethodPut, "/3", `{"name": "new"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		AffectedRows int64 `json:"affectedRows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, int64(1), body.AffectedRows)
}

func TestResourceUpdateMissingRow(t *testing.T) {
	r, mock := newResourceRouter(t, "tags", nil)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE tags SET name = ? WHERE id = ?`)).
		WithArgs("new", int64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	rec := serve(r, http.MethodPut, "/404", `{"name": "new"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResourceDelete(t *testing.T) {
	r, mock := newResourceRouter(t, "tags", nil)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM tags WHERE id = ?`)).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := serve(r, http.MethodDelete, "/3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "tags deleted successfully")
}

func TestResourceDeleteMissingRow(t *testing.T) {
	r, mock := newResourceRouter(t, "tags", nil)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM tags WHERE id = ?`)).
		WithArgs(int64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	rec := serve(r, http.MethodDelete, "/404", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResourceCreateRunsValidation(t *testing.T) {
	r, mock := newResourceRouter(t, "posts", PostValidator)

	rec := serve(r, http.MethodPost, "/", `{"title": "no", "content": "too short", "author": "jo"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceCustomerValidator(t *testing.T) {
	r, mock := newResourceRouter(t, "customers", CustomerValidator)

	rec := serve(r, http.MethodPost, "/", `{"name": "Jo"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "name and email are required")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceInvalidJSONBody(t *testing.T) {
	r, mock := newResourceRouter(t, "tags", nil)

	rec := serve(r, http.MethodPost, "/", `[1, 2, 3]`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
