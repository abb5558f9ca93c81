package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"mesaOps/internal/modules/restaurants/application/usecase"
	"mesaOps/internal/modules/restaurants/domain"
	"mesaOps/internal/platform/docstore"
	"mesaOps/internal/shared/auth"
)

// staticValidator maps raw tokens to claims.
type staticValidator map[string]*auth.Claims

func (v staticValidator) Validate(token string) (*auth.Claims, error) {
	if claims, ok := v[token]; ok {
		return claims, nil
	}
	return nil, auth.ErrInvalidToken
}

func TestRestaurantRoutes(t *testing.T) {
	directory := usecase.NewDirectory(docstore.NewMemory())
	ctx := context.Background()
	r1, _ := directory.Register(ctx, domain.Restaurant{Name: "Bistro", Capacity: 40})
	directory.Register(ctx, domain.Restaurant{Name: "Armazem", Capacity: 20})

	validator := staticValidator{
		"admin":   {Roles: []string{auth.RoleAdmin}},
		"manager": {Roles: []string{auth.RoleManager}, RestaurantID: r1},
		"waiter":  {Roles: []string{auth.RoleWaiter}, RestaurantID: r1},
	}
	e := echo.New()
	root := e.Group("/api/v1", auth.Middleware(validator))
	NewHandler(directory).Register(root, root.Group("/restaurants/:restaurant", auth.RequireRestaurant("restaurant")))

	call := func(method, path, token, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	listed := func(token string) []domain.Restaurant {
		var restaurants []domain.Restaurant
		json.Unmarshal(call(http.MethodGet, "/api/v1/restaurants", token, "").Body.Bytes(), &restaurants)
		return restaurants
	}
	if all := listed("admin"); len(all) != 2 || all[0].Name != "Armazem" {
		t.Fatalf("expected every restaurant for admin, got %#v", all)
	}
	if own := listed("waiter"); len(own) != 1 || own[0].ID != r1 {
		t.Fatalf("expected only the token's restaurant, got %#v", own)
	}

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		body   string
		status int
	}{
		{name: "no token", method: http.MethodGet, path: "/api/v1/restaurants", status: http.StatusUnauthorized},
		{name: "register needs admin", method: http.MethodPost, path: "/api/v1/restaurants", token: "manager", body: `{"name":"X"}`, status: http.StatusForbidden},
		{name: "register", method: http.MethodPost, path: "/api/v1/restaurants", token: "admin", body: `{"name":"Cantina","daysOpen":["segunda","sab"]}`, status: http.StatusCreated},
		{name: "other restaurant", method: http.MethodGet, path: "/api/v1/restaurants/elsewhere", token: "waiter", status: http.StatusForbidden},
		{name: "get", method: http.MethodGet, path: "/api/v1/restaurants/" + r1, token: "waiter", status: http.StatusOK},
		{name: "schedule needs manager", method: http.MethodPut, path: "/api/v1/restaurants/" + r1 + "/schedule", token: "waiter", body: `{}`, status: http.StatusForbidden},
		{name: "schedule", method: http.MethodPut, path: "/api/v1/restaurants/" + r1 + "/schedule", token: "manager", body: `{"openingHours":"11-23","daysOpen":["Terça-feira","dom"]}`, status: http.StatusNoContent},
		{name: "negative capacity", method: http.MethodPut, path: "/api/v1/restaurants/" + r1 + "/capacity", token: "manager", body: `{"capacity":-1}`, status: http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if rec := call(tc.method, tc.path, tc.token, tc.body); rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
		})
	}

	restaurant, _ := directory.Get(ctx, r1)
	if len(restaurant.DaysOpen) != 2 || restaurant.DaysOpen[0] != domain.Tuesday || restaurant.OpeningHours != "11-23" {
		t.Fatalf("unexpected schedule %#v", restaurant)
	}
}
