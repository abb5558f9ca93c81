package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const testSecret = "test-secret"

func sign(t *testing.T, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func TestValidate(t *testing.T) {
	v := NewJWTValidator(testSecret, "")
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))
	past := jwt.NewNumericDate(time.Now().Add(-time.Hour))

	cases := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "missing", token: "", wantErr: ErrMissingToken},
		{name: "garbage", token: "abc", wantErr: ErrInvalidToken},
		{name: "expired", token: sign(t, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", ExpiresAt: past}}), wantErr: ErrInvalidToken},
		{name: "no subject", token: sign(t, Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: future}}), wantErr: ErrInvalidToken},
		{name: "valid", token: sign(t, Claims{Roles: []string{" Gerente "}, RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", ID: "s1", ExpiresAt: future}})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			claims, err := v.Validate(tc.token)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("validate: %v", err)
			}
			if claims.SessionID != "s1" || !claims.HasRole(RoleManager) {
				t.Fatalf("unexpected claims %#v", claims)
			}
		})
	}
}

func TestRestaurantAccess(t *testing.T) {
	cases := []struct {
		name   string
		claims *Claims
		want   bool
	}{
		{name: "nil", claims: nil, want: false},
		{name: "scoped match", claims: &Claims{RestaurantID: "r1"}, want: true},
		{name: "scoped mismatch", claims: &Claims{RestaurantID: "r2"}, want: false},
		{name: "admin", claims: &Claims{RestaurantID: "r2", Roles: []string{RoleAdmin}}, want: true},
		{name: "unscoped", claims: &Claims{}, want: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.claims.CanAccessRestaurant("r1"); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestExtractBearerTokenFromHeader(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":   "abc",
		"bearer  xyz ": "xyz",
		"Basic abc":    "",
		"":             "",
	}
	for header, expected := range cases {
		if got := ExtractBearerTokenFromHeader(header); got != expected {
			t.Fatalf("ExtractBearerTokenFromHeader(%q) expected %q got %q", header, expected, got)
		}
	}
}

func TestMiddleware(t *testing.T) {
	e := echo.New()
	v := NewJWTValidator(testSecret, "")
	handler := Middleware(v)(RequireRoles(RoleManager)(func(c echo.Context) error {
		return c.String(http.StatusOK, ClaimsFrom(c).Subject)
	}))
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))

	cases := []struct {
		name   string
		token  string
		status int
	}{
		{name: "no token", status: http.StatusUnauthorized},
		{name: "wrong role", token: sign(t, Claims{Roles: []string{RoleCook}, RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", ExpiresAt: future}}), status: http.StatusForbidden},
		{name: "manager", token: sign(t, Claims{Roles: []string{RoleManager}, RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", ExpiresAt: future}}), status: http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			rec := httptest.NewRecorder()
			err := handler(e.NewContext(req, rec))
			status := rec.Code
			var httpErr *echo.HTTPError
			if errors.As(err, &httpErr) {
				status = httpErr.Code
			}
			if status != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, status)
			}
		})
	}
}
