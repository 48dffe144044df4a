package adapthttp

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"gymsync/internal/app"
	"gymsync/internal/domain"

	"github.com/google/uuid"
)

type contextKey string

const userContextKey contextKey = "user"

// authMiddleware resolves the caller from forward auth headers or the
// session cookie, then bootstraps that user's profile before serving.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.authenticate(w, r)
		if !ok {
			return
		}

		// Failures are reported by the bootstrapper; reads and edits then
		// fail with ErrNoActiveUser until a later request retries.
		if err := s.bootstrapper.Bootstrap(r.Context(), user.Username); err != nil {
			log.Printf("bootstrap %q: %v", user.Username, err)
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	// Skip auth if disabled (for tests and single-user installs)
	if s.fixedUser != "" {
		return &domain.User{Username: s.fixedUser}, true
	}

	// Check for Authelia forward auth header first
	if remoteUser := r.Header.Get("Remote-User"); remoteUser != "" {
		user, err := s.authSvc.ValidateForwardAuth(r.Context(), remoteUser)
		if err == nil && user != nil {
			return user, true
		}
	}

	// Fall back to cookie-based session
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		writeError(w, http.StatusUnauthorized, errors.New("unauthorized"))
		return nil, false
	}

	user, err := s.authSvc.ValidateSession(r.Context(), cookie.Value, r.UserAgent())
	if errors.Is(err, app.ErrSessionNotFound) || errors.Is(err, app.ErrSessionExpired) || errors.Is(err, app.ErrUserNotFound) {
		writeError(w, http.StatusUnauthorized, errors.New("unauthorized"))
		return nil, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
		return nil, false
	}
	return user, true
}

func userFromContext(ctx context.Context) *domain.User {
	u, _ := ctx.Value(userContextKey).(*domain.User)
	return u
}

// callerID is the authenticated username, or "" outside authMiddleware.
func callerID(r *http.Request) string {
	if u := userFromContext(r.Context()); u != nil {
		return u.Username
	}
	return ""
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// loggingMiddleware logs one line per request and tags it with a request id.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %s %d %s", reqID, r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}
