package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	adapthttp "gymsync/internal/adapter/http"
	"gymsync/internal/adapter/memory"
	"gymsync/internal/adapter/postgres"
	"gymsync/internal/app"
	"gymsync/internal/config"
	"gymsync/internal/domain"
	"gymsync/internal/observability"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// localUser is the identity every request gets when auth is disabled.
const localUser = "local"

// backend is everything the services need from a storage adapter.
type backend interface {
	domain.SyncGateway
	domain.ProfileLister
	domain.UserRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		store    backend
		sessions domain.SessionRepository
	)
	if cfg.Database.URL != "" {
		db, err := postgres.Open(cfg.Database.URL)
		if err != nil {
			log.Fatalf("db open: %v", err)
		}
		defer func() { _ = db.Close() }()
		store, sessions = db, postgres.NewSessionRepo(db)
	} else {
		db := memory.New()
		store, sessions = db, db.NewSessionRepo()
	}

	reporter := observability.NewLogReporter(nil)
	profileStore := app.NewProfileStore()
	bootstrapper := app.NewSessionBootstrapper(profileStore, store, reporter)
	profileSvc := app.NewProfileService(profileStore, store, reporter)
	auditSvc := app.NewAuditService(store)
	authSvc := app.NewAuthService(store, sessions, cfg.Auth.SessionTTL)

	if cfg.Auth.InitialUser != "" {
		err := authSvc.CreateInitialUser(ctx, cfg.Auth.InitialUser, cfg.Auth.InitialPassword)
		switch {
		case errors.Is(err, app.ErrUsersExist):
		case err != nil:
			log.Fatalf("initial user: %v", err)
		default:
			log.Printf("created initial user %q", cfg.Auth.InitialUser)
		}
	}

	srv := adapthttp.New(authSvc, bootstrapper, profileSvc, auditSvc, cfg.Server.WebDir).
		WithCORS(cfg.CORS.AllowedOrigins).
		WithAdmins(cfg.Auth.Admins()...)
	if cfg.Auth.DisableAuth {
		log.Printf("auth disabled, serving as %q", localUser)
		srv = srv.WithoutAuth(localUser).WithAdmins(localUser)
	}
	if cfg.OIDC.Enabled() {
		provider, err := oidc.NewProvider(ctx, cfg.OIDC.Issuer)
		if err != nil {
			log.Fatalf("oidc provider: %v", err)
		}
		srv = srv.WithOIDC(adapthttp.OIDCConfig{
			Enabled:  true,
			Provider: provider,
			OAuth2Config: oauth2.Config{
				ClientID:     cfg.OIDC.ClientID,
				ClientSecret: cfg.OIDC.ClientSecret,
				RedirectURL:  cfg.OIDC.RedirectURL,
				Endpoint:     provider.Endpoint(),
				Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
			},
		})
	}

	go sweepSessions(ctx, sessions, time.Hour)

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}
	go func() {
		log.Printf("listening on %s", cfg.Server.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// sweepSessions deletes expired sessions every interval until ctx ends.
func sweepSessions(ctx context.Context, sessions domain.SessionRepository, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := sessions.DeleteExpired(ctx); err != nil {
				log.Printf("session sweep: %v", err)
			}
		}
	}
}
