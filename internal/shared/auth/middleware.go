package auth

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

const claimsKey = "auth.claims"

// Middleware rejects requests without a valid bearer token and stores the claims on the context.
func Middleware(validator TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := validator.Validate(ExtractToken(c.Request(), "token"))
			if err != nil {
				slog.Debug("request rejected", slog.String("path", c.Path()), slog.String("ip", c.RealIP()), slog.Any("error", err))
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
			}
			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

// RequireRoles lets through requests whose claims carry any of roles.
func RequireRoles(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !ClaimsFrom(c).HasRole(roles...) {
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			return next(c)
		}
	}
}

// ClaimsFrom returns the claims stored by Middleware, or nil.
func ClaimsFrom(c echo.Context) *Claims {
	claims, _ := c.Get(claimsKey).(*Claims)
	return claims
}

// RequireRestaurant rejects requests whose claims cannot access the restaurant named by the
// path parameter param.
func RequireRestaurant(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !ClaimsFrom(c).CanAccessRestaurant(c.Param(param)) {
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			return next(c)
		}
	}
}
