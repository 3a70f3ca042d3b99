// Package httpapi exposes the authentication pipeline and the role
// administration API over HTTP.
package httpapi

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"

	"wishop.org/authd/internal/auth"
	"wishop.org/authd/internal/obs"
	"wishop.org/authd/internal/role"
)

// ReadyProbe checks readiness; with a database configured it pings it.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Config bundles the collaborators the API needs. All of them are plain
// constructor-supplied interfaces or services; there is no container.
type Config struct {
	Pipeline   *auth.Pipeline
	Roles      *role.Service
	Users      auth.UserStore
	ReadyProbe ReadyProbe
	Version    string
	LoginPath  string

	RateBurst     int
	RatePerSecond int
	MaxBodyBytes  int64
}

// API is the HTTP layer.
type API struct {
	router     chi.Router
	pipeline   *auth.Pipeline
	roles      *role.Service
	users      auth.UserStore
	readyProbe ReadyProbe
	version    string
	loginPath  string
}

// New assembles routes and middleware. The authentication middleware
// runs ahead of routing, so every endpoint below is already behind the
// pipeline; public paths pass through it anonymously.
func New(cfg Config) *API {
	a := &API{
		router:     chi.NewRouter(),
		pipeline:   cfg.Pipeline,
		roles:      cfg.Roles,
		users:      cfg.Users,
		readyProbe: cfg.ReadyProbe,
		version:    cfg.Version,
		loginPath:  cfg.LoginPath,
	}
	if a.loginPath == "" {
		a.loginPath = "/login"
	}

	rateBurst := cfg.RateBurst
	if rateBurst <= 0 {
		rateBurst = 50
	}
	ratePerSec := cfg.RatePerSecond
	if ratePerSec <= 0 {
		ratePerSec = 25
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}

	a.router.Use(
		RequestID,
		LoggingJSON,
		SecurityHeaders,
		MaxBodyBytes(maxBody),
		RateLimit(rateBurst, ratePerSec),
		a.withAuth,
	)

	// health/ready/metrics
	a.router.Get("/ping", a.Ping)
	a.router.Get("/ping/*", a.Ping)
	a.router.Get("/healthz", a.Healthz)
	a.router.Get("/readyz", a.Ready)
	a.router.Handle("/metrics", obs.Handler())

	// role administration (the /v1 compatibility contract)
	a.router.Get("/v1", a.handleListRoles)
	a.router.Get("/v1/page/{page}/limit/{limit}", a.handleListRolesPage)
	a.router.Get("/v1/roles/{username}", a.handleUserRoles)
	a.router.Get("/v1/permissions/{username}", a.handleUserPermissions)
	a.router.Get("/v1/{id}", a.handleGetRole)
	a.router.Delete("/v1/{id}", a.handleDeleteRole)
	a.router.Post("/v1", a.handleSaveRole)
	a.router.Post("/v1/assign", a.handleAssignPermissions)

	return a
}

// Handler returns the server handler wrapped with metrics.
func (a *API) Handler() http.Handler {
	return obs.Instrument(a.router)
}

// PublicMatcher returns the matcher for paths exempt from
// authentication: health surface plus any configured extra prefixes.
// The login POST is handled by its own pipeline strategy, not listed
// here.
func PublicMatcher(extraPrefixes []string) *auth.PathMatcher {
	exact := []string{"/healthz", "/readyz", "/metrics"}
	prefixes := append([]string{"/ping"}, extraPrefixes...)
	return auth.NewPathMatcher(exact, prefixes)
}
