package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Noctuaa/coach-appointment-manager/internal/auth/service"
	"github.com/Noctuaa/coach-appointment-manager/internal/auth/store"
	"github.com/Noctuaa/coach-appointment-manager/pkg/httpx"
	"github.com/Noctuaa/coach-appointment-manager/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion  string
	secureCookies bool
	startTime     time.Time
	logger        *slog.Logger

	store          store.Store
	TokenService   *service.TokenService
	SessionService *service.SessionService
	SignupService  *service.SignupService
}

func NewRouter(
	buildVersion string,
	secureCookies bool,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:           http.NewServeMux(),
		buildVersion:  buildVersion,
		secureCookies: secureCookies,
		startTime:     time.Now(),
		store:         st,
		logger:        logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	r.Mux.Handle("POST /api/auth/signup", &SignupHandler{
		SignupService: r.SignupService,
	})

	r.Mux.Handle("POST /api/auth/login", &LoginHandler{
		SessionService: r.SessionService,
		SecureCookies:  r.secureCookies,
	})

	r.Mux.Handle("POST /api/auth/refresh", &RefreshHandler{
		SessionService: r.SessionService,
		SecureCookies:  r.secureCookies,
	})

	// Logout and me sit behind the full session check so a caller without a
	// live session gets the protocol's 401 answers, not a silent success.
	session := RequireSession(r.TokenService, r.store)
	roles := RequireRole("user", "admin")

	r.Mux.Handle("POST /api/auth/logout",
		httpx.Chain(&LogoutHandler{SecureCookies: r.secureCookies}, session, roles),
	)

	r.Mux.Handle("GET /api/auth/me",
		httpx.Chain(&MeHandler{}, session, roles),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
