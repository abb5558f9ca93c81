package httputil

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"mesaOps/internal/shared/apperr"
	"mesaOps/internal/shared/auth"
)

// HTTPErrorInfo contains the HTTP status code and message for an error.
type HTTPErrorInfo struct {
	Status  int
	Message string
}

// ErrorMapping represents a single error to HTTP status/message mapping.
type ErrorMapping struct {
	Error   error
	Status  int
	Message string
}

// ErrorMapper maps domain errors to HTTP status codes and messages.
type ErrorMapper struct {
	mappings       []ErrorMapping
	defaultStatus  int
	defaultMessage string
}

func NewErrorMapper() *ErrorMapper {
	return &ErrorMapper{
		mappings:       make([]ErrorMapping, 0),
		defaultStatus:  http.StatusInternalServerError,
		defaultMessage: "internal server error",
	}
}

// DomainErrors maps the domain taxonomy and the auth sentinels.
func DomainErrors() *ErrorMapper {
	return NewErrorMapper().
		WithMapping(apperr.ErrNotFound, http.StatusNotFound, "").
		WithMapping(apperr.ErrResourceUnavailable, http.StatusConflict, "").
		WithMapping(apperr.ErrInvariantViolation, http.StatusUnprocessableEntity, "").
		WithMapping(auth.ErrMissingToken, http.StatusUnauthorized, "missing token").
		WithMapping(auth.ErrInvalidToken, http.StatusUnauthorized, "invalid token").
		WithMapping(auth.ErrForbidden, http.StatusForbidden, "forbidden")
}

// WithMapping adds an error mapping. An empty message exposes the error text.
func (m *ErrorMapper) WithMapping(err error, status int, message string) *ErrorMapper {
	m.mappings = append(m.mappings, ErrorMapping{
		Error:   err,
		Status:  status,
		Message: message,
	})
	return m
}

// Map converts an error to HTTP status and message.
func (m *ErrorMapper) Map(err error) HTTPErrorInfo {
	if err == nil {
		return HTTPErrorInfo{Status: http.StatusOK, Message: ""}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return HTTPErrorInfo{Status: http.StatusGatewayTimeout, Message: "request timeout"}
	}
	if errors.Is(err, context.Canceled) {
		return HTTPErrorInfo{Status: http.StatusServiceUnavailable, Message: "request cancelled"}
	}

	for _, mapping := range m.mappings {
		if errors.Is(err, mapping.Error) {
			message := mapping.Message
			if message == "" {
				message = err.Error()
			}
			return HTTPErrorInfo{Status: mapping.Status, Message: message}
		}
	}

	var storeErr *apperr.StoreError
	if errors.As(err, &storeErr) {
		return HTTPErrorInfo{Status: http.StatusBadGateway, Message: "document store unavailable"}
	}

	return HTTPErrorInfo{Status: m.defaultStatus, Message: m.defaultMessage}
}

// Respond turns err into an echo HTTP error, logging server-side failures.
func (m *ErrorMapper) Respond(c echo.Context, err error) error {
	info := m.Map(err)
	if info.Status >= http.StatusInternalServerError {
		slog.Error("request failed",
			slog.String("method", c.Request().Method),
			slog.String("path", c.Path()),
			slog.Int("status", info.Status),
			slog.Any("error", err),
		)
	}
	return echo.NewHTTPError(info.Status, info.Message)
}
