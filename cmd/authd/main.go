package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wishop.org/authd/internal/auth"
	"wishop.org/authd/internal/config"
	"wishop.org/authd/internal/httpapi"
	"wishop.org/authd/internal/obs"
	"wishop.org/authd/internal/role"
	"wishop.org/authd/internal/store/memory"
	"wishop.org/authd/internal/store/pg"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var (
		users   auth.UserStore
		roles   role.Store
		probe   httpapi.ReadyProbe
		pgStore *pg.Store
	)
	if cfg.DatabaseURL != "" {
		pgStore, err = pg.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		users = pgStore
		roles = pgStore
		probe = httpapi.ReadyProbe{DB: pgStore.DB()}
	} else {
		// Development mode: in-memory store seeded with an admin.
		mem := memory.NewStore()
		seedDevStore(mem)
		users = mem
		roles = mem
		log.Printf("WISHOP_PG_DSN is not set, running with the in-memory store")
	}

	tokens, err := auth.NewTokenService(
		[]byte(cfg.AuthSecret),
		auth.WithIssuer(cfg.TokenIssuer),
		auth.WithTTL(cfg.TokenTTL),
	)
	if err != nil {
		log.Fatalf("token service: %v", err)
	}
	verifier, err := auth.NewCredentialVerifier(users)
	if err != nil {
		log.Fatalf("credential verifier: %v", err)
	}
	roleSvc, err := role.NewService(roles)
	if err != nil {
		log.Fatalf("role service: %v", err)
	}

	pipeline := auth.NewPipeline(
		auth.PublicBypass(httpapi.PublicMatcher(cfg.PublicPrefixes)),
		auth.CredentialLogin(cfg.LoginPath, verifier, tokens),
		auth.BearerToken(tokens),
	)

	api := httpapi.New(httpapi.Config{
		Pipeline:      pipeline,
		Roles:         roleSvc,
		Users:         users,
		ReadyProbe:    probe,
		Version:       version,
		LoginPath:     cfg.LoginPath,
		RateBurst:     cfg.RateBurst,
		RatePerSecond: cfg.RatePerSecond,
		MaxBodyBytes:  cfg.MaxBodyBytes,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting wishop-authd %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if pgStore != nil {
		_ = pgStore.Close()
	}
	log.Println("Stopped")
}

// seedDevStore provisions a usable development account. The password
// can be overridden so the default never leaks into shared setups.
func seedDevStore(mem *memory.Store) {
	ctx := context.Background()
	_, err := mem.UpsertRole(ctx, role.Role{
		Name:        "admin",
		Description: "full role administration access",
		Permissions: []string{
			auth.PermReadRole,
			auth.PermWriteRole,
			auth.PermDeleteRole,
			auth.PermReadUser,
		},
	})
	if err != nil {
		log.Fatalf("seed admin role: %v", err)
	}

	password := os.Getenv("WISHOP_DEV_ADMIN_PASSWORD")
	if password == "" {
		password = "admin"
	}
	if err := mem.CreateUser("admin", password, []string{"admin"}); err != nil {
		log.Fatalf("seed admin user: %v", err)
	}
}
