package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/tollgate/internal/auth/domain"
	"github.com/aussiebroadwan/tollgate/internal/auth/limiter"
	"github.com/aussiebroadwan/tollgate/internal/auth/service"
	"github.com/aussiebroadwan/tollgate/internal/auth/store"
	"github.com/aussiebroadwan/tollgate/pkg/httpx"
	"github.com/aussiebroadwan/tollgate/pkg/slogx"

	_ "github.com/aussiebroadwan/tollgate/api/tollgate" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store       store.Store
	AuthService *service.AuthService
	Limiter     limiter.Limiter

	// ClientKey identifies the client for the attempt limiter and the
	// general throttle. Defaults to the connection address.
	ClientKey httpx.KeyExtractor

	// Redis is checked by /readyz when set.
	Redis Pinger
}

func NewRouter(
	svc *service.AuthService,
	lim limiter.Limiter,
	st store.Store,
	buildVersion string,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
		AuthService:  svc,
		Limiter:      lim,
		ClientKey:    httpx.RemoteIPKeyExtractor,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerCategories()
	r.registerSystem()

	r.Mux.Handle("GET /swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			tollgate
//	@version		0.1.0
//	@description	Registration, login with password and TOTP, bearer tokens and a small set of protected resources.
//	@description
//	@description				Every error body is {"error": "...", "code": "..."}.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/tollgate
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:3000
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Token from /login. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// authenticated verifies the bearer token then throttles per user.
func (r *Router) authenticated(h http.Handler) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware[domain.Session](r.AuthService.Authenticate, writeServiceError),
		httpx.RateLimitMiddleware(httpx.ModerateLimit, httpx.CompositeKeyExtractor(":",
			httpx.UserIDKeyExtractor,
			r.ClientKey,
		)),
	)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService}

	// Attempt limiting runs before the body is decoded
	r.Mux.Handle("POST /register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			AttemptLimitMiddleware(r.Limiter, limiter.ClassRegister, r.ClientKey),
		),
	)
	r.Mux.Handle("POST /login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			AttemptLimitMiddleware(r.Limiter, limiter.ClassLogin, r.ClientKey),
		),
	)

	r.Mux.Handle("POST /logout", r.authenticated(http.HandlerFunc(h.HandleLogout)))
	r.Mux.Handle("GET /profile", r.authenticated(http.HandlerFunc(h.HandleProfile)))
}

func (r *Router) registerCategories() {
	h := &CategoriesHandler{AuthService: r.AuthService}

	r.Mux.Handle("GET /categories", r.authenticated(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("POST /categories", r.authenticated(http.HandlerFunc(h.HandleCreate)))
}

func (r *Router) registerSystem() {
	public := httpx.RateLimitMiddleware(httpx.PublicLimit, r.ClientKey)

	livez := httpx.Chain(LivezHandler(r.startTime, r.buildVersion), public)
	r.Mux.Handle("GET /health", livez)
	r.Mux.Handle("GET /livez", livez)

	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.AuthService.Issuer.Mode(), r.store, r.Redis),
			public,
		),
	)

	r.Mux.Handle("GET /{$}", httpx.Chain(DemoHandler(), public))
}
