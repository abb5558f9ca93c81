package transport

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"mesaOps/internal/modules/realtime/application/usecase"
	"mesaOps/internal/modules/realtime/infrastructure"
	"mesaOps/internal/shared/auth"
)

func TestBroadcastHTTPHandler(t *testing.T) {
	e := echo.New()
	e.POST("/broadcast", NewBroadcastHTTPHandler(usecase.NewBroadcastUseCase(infrastructure.NewHub())), auth.Middleware(auth.NewJWTValidator(secret, "")))

	cases := []struct {
		name   string
		body   string
		status int
	}{
		{name: "known entity alias", body: `{"entity":"pedido","action":"updated","restaurantId":"r1"}`, status: http.StatusOK},
		{name: "notifications", body: `{"entity":"notifications","action":"created","restaurantId":"r1"}`, status: http.StatusOK},
		{name: "unknown entity", body: `{"entity":"sections","action":"updated","restaurantId":"r1"}`, status: http.StatusBadRequest},
		{name: "missing action", body: `{"entity":"orders","restaurantId":"r1"}`, status: http.StatusBadRequest},
		{name: "other restaurant", body: `{"entity":"orders","action":"updated","restaurantId":"r2"}`, status: http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/broadcast", strings.NewReader(tc.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			req.Header.Set(echo.HeaderAuthorization, "Bearer "+token(t, "r1"))
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
		})
	}
}
