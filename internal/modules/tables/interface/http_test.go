package transport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"mesaOps/internal/modules/tables/application/usecase"
	"mesaOps/internal/modules/tables/domain"
	"mesaOps/internal/platform/docstore"
)

func TestTableRoutes(t *testing.T) {
	e := echo.New()
	NewHandler(usecase.NewCoordinator(docstore.NewMemory(), nil)).Register(e.Group("/api/v1/restaurants/:restaurant"))

	var id string
	steps := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{name: "register", method: http.MethodPost, path: "/tables", body: `{"numero":3,"capacidade":4}`, status: http.StatusCreated},
		{name: "duplicate number", method: http.MethodPost, path: "/tables", body: `{"number":3,"capacity":2}`, status: http.StatusUnprocessableEntity},
		{name: "missing number", method: http.MethodPost, path: "/tables", body: `{"capacity":2}`, status: http.StatusBadRequest},
		{name: "by number", method: http.MethodGet, path: "/tables/number/3", status: http.StatusOK},
		{name: "unknown number", method: http.MethodGet, path: "/tables/number/9", status: http.StatusNotFound},
		{name: "seat", method: http.MethodPost, path: "/tables/{id}/seat", status: http.StatusNoContent},
		{name: "reserve occupied", method: http.MethodPut, path: "/tables/{id}/status", body: `{"status":"reservada"}`, status: http.StatusUnprocessableEntity},
		{name: "unknown status", method: http.MethodPut, path: "/tables/{id}/status", body: `{"status":"broken"}`, status: http.StatusBadRequest},
		{name: "release", method: http.MethodPost, path: "/tables/{id}/release", status: http.StatusNoContent},
		{name: "clean", method: http.MethodPost, path: "/tables/{id}/clean", status: http.StatusNoContent},
	}
	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			req := httptest.NewRequest(step.method, "/api/v1/restaurants/r1"+strings.ReplaceAll(step.path, "{id}", id), strings.NewReader(step.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != step.status {
				t.Fatalf("expected %d, got %d: %s", step.status, rec.Code, rec.Body.String())
			}
			if step.name == "register" {
				var created map[string]string
				json.Unmarshal(rec.Body.Bytes(), &created)
				id = created["id"]
			}
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/restaurants/r2/tables/"+id+"/seat", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected another restaurant's table to be hidden, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/restaurants/r1/tables?available=true", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	var tables []domain.Table
	if err := json.Unmarshal(rec.Body.Bytes(), &tables); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(tables) != 1 || tables[0].Status != domain.StatusFree || tables[0].Capacity != 4 {
		t.Fatalf("unexpected tables %#v", tables)
	}
}
