package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/tollgate/internal/auth/limiter"
	"github.com/aussiebroadwan/tollgate/internal/auth/service"
	"github.com/aussiebroadwan/tollgate/pkg/httpx"
	"github.com/aussiebroadwan/tollgate/pkg/slogx"
)

// AttemptLimitMiddleware counts every request against the class before the
// body is read. A failing backend lets the request through.
func AttemptLimitMiddleware(lim limiter.Limiter, class limiter.Class, key httpx.KeyExtractor) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			clientKey := key(r)
			decision, err := lim.Check(ctx, clientKey, class)
			if err != nil {
				log.Warn("attempt limiter unavailable, allowing request",
					slog.String("class", string(class)),
					slog.Any("error", err),
				)
				next.ServeHTTP(w, r)
				return
			}

			if !decision.Allowed {
				retryAfter := limiter.RetryAfterSeconds(decision.RetryAfter)
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

				log.Warn("attempt limit exceeded",
					slog.String("class", string(class)),
					slog.String("client", clientKey),
					slog.Int("count", decision.Count),
					slog.Int("retry_after", retryAfter),
				)
				service.LogAuthEvent(ctx, service.EventRateLimited, "", service.ReasonTooManyAttempts)

				writeServiceError(w, r, service.ErrRateLimited)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
