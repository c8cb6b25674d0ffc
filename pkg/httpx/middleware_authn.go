package httpx

import (
	"context"
	"net/http"
	"strings"
)

// Authenticator resolves a raw bearer token. It receives "" when the
// header is absent or not a Bearer credential.
type Authenticator[T Principal] func(ctx context.Context, raw string) (T, error)

// ErrorWriter renders an authentication failure.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// AuthnMiddleware authenticates the bearer token and injects the principal
// into the request context for downstream handlers.
func AuthnMiddleware[T Principal](authn Authenticator[T], onError ErrorWriter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := BearerToken(r)

			p, err := authn(r.Context(), raw)
			if err != nil {
				onError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithPrincipal(r.Context(), p, raw)))
		})
	}
}

// BearerToken extracts the token from "Authorization: Bearer <token>". The
// scheme is matched case-insensitively and a missing or empty token gives "".
func BearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
