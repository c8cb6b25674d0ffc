package httpx

import "context"

type ctxKey string

const (
	CtxKeyUserID    ctxKey = "user_id"
	CtxKeyPrincipal ctxKey = "principal"
	CtxKeyToken     ctxKey = "token"
)

// Principal is whatever a bearer token resolves to.
type Principal interface {
	Subject() string
}

func contextWithPrincipal(ctx context.Context, p Principal, raw string) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, p.Subject())
	ctx = context.WithValue(ctx, CtxKeyPrincipal, p)
	ctx = context.WithValue(ctx, CtxKeyToken, raw)
	return ctx
}

// PrincipalFromContext returns the principal stored by AuthnMiddleware.
func PrincipalFromContext[T Principal](ctx context.Context) (T, bool) {
	p, ok := ctx.Value(CtxKeyPrincipal).(T)
	return p, ok
}

// TokenFromContext returns the raw bearer token of an authenticated request.
func TokenFromContext(ctx context.Context) string {
	raw, _ := ctx.Value(CtxKeyToken).(string)
	return raw
}
