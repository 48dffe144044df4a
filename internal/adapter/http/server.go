package adapthttp

import (
	"net/http"

	"gymsync/internal/app"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"golang.org/x/oauth2"
)

// OIDCConfig carries the SSO provider. The zero value disables SSO.
type OIDCConfig struct {
	Enabled      bool
	Provider     *oidc.Provider
	OAuth2Config oauth2.Config
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	authSvc      *app.AuthService
	bootstrapper *app.SessionBootstrapper
	profiles     *app.ProfileService
	audit        *app.AuditService
	webDir       string

	oidcConfig  OIDCConfig
	corsOrigins []string

	// fixedUser replaces authentication when set.
	fixedUser string
	// admins may read the cross-profile audit.
	admins map[string]bool
}

// New creates a Server wired to the given application services.
func New(authSvc *app.AuthService, bootstrapper *app.SessionBootstrapper, profiles *app.ProfileService, audit *app.AuditService, webDir string) *Server {
	return &Server{
		authSvc:      authSvc,
		bootstrapper: bootstrapper,
		profiles:     profiles,
		audit:        audit,
		webDir:       webDir,
	}
}

// WithOIDC enables SSO login through cfg.
func (s *Server) WithOIDC(cfg OIDCConfig) *Server {
	s.oidcConfig = cfg
	return s
}

// WithCORS allows cross-origin requests from origins.
func (s *Server) WithCORS(origins []string) *Server {
	s.corsOrigins = origins
	return s
}

// WithAdmins grants the audit endpoint to usernames.
func (s *Server) WithAdmins(usernames ...string) *Server {
	if s.admins == nil {
		s.admins = make(map[string]bool, len(usernames))
	}
	for _, u := range usernames {
		if u != "" {
			s.admins[u] = true
		}
	}
	return s
}

// WithoutAuth skips authentication and treats every request as userID.
func (s *Server) WithoutAuth(userID string) *Server {
	s.fixedUser = userID
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	api.HandleFunc("/login", s.handleLogin)
	api.HandleFunc("/logout", s.handleLogout)
	api.HandleFunc("/setup", s.handleSetupUser)
	api.HandleFunc("/config", s.handleConfig)
	api.HandleFunc("/sso/login", s.handleSSOLogin)
	api.HandleFunc("/sso/callback", s.handleSSOCallback)

	protected := http.NewServeMux()
	protected.HandleFunc("/profile", s.handleProfile)
	protected.HandleFunc("/schedule", s.handleSchedule)
	protected.HandleFunc("/routine", s.handleRoutine)
	protected.HandleFunc("/routine/exercise", s.handleRoutineExercise)
	protected.HandleFunc("/routine/summary", s.handleRoutineSummary)
	protected.HandleFunc("/sessions/complete", s.handleCompleteSession)
	protected.HandleFunc("/partner/request", s.handlePartnerRequest)
	protected.HandleFunc("/partner/accept", s.handlePartnerAccept)
	protected.HandleFunc("/partner/unlink", s.handlePartnerUnlink)
	protected.HandleFunc("/admin/audit", s.handleAudit)
	api.Handle("/", s.authMiddleware(protected))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	root.Handle("/metrics", promhttp.Handler())
	root.Handle("/", spaFromDisk(s.webDir))

	var h http.Handler = withNoCache(root)
	if len(s.corsOrigins) > 0 {
		h = cors.New(cors.Options{
			AllowedOrigins:   s.corsOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
			AllowCredentials: true,
		}).Handler(h)
	}
	return s.loggingMiddleware(h)
}
