package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/tollgate/internal/auth/service"
	"github.com/aussiebroadwan/tollgate/pkg/httpx"
	"github.com/aussiebroadwan/tollgate/pkg/slogx"
)

// statusFor maps an error kind to its HTTP status.
func statusFor(k service.Kind) int {
	switch k {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindAuthentication:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConflict:
		return http.StatusConflict
	case service.KindRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError renders any error as {error, code}. Errors that are not
// a *service.Error, and every dependency failure, become SERVER_ERROR with
// the cause kept out of the body.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var se *service.Error
	if !errors.As(err, &se) {
		slogx.FromContext(r.Context()).Error("unclassified handler error", slog.Any("error", err))
		se = service.ErrServer
	}

	msg := se.Message
	if se.Kind == service.KindDependency {
		msg = service.ErrServer.Message
	}
	httpx.WriteError(w, statusFor(se.Kind), se.Code, msg)
}
