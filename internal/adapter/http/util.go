package adapthttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"strconv"

	"gymsync/internal/app"
	"gymsync/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

// writeServiceError maps application errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var syncErr *domain.SyncError
	switch {
	case errors.Is(err, app.ErrInvalidPersonalData),
		errors.Is(err, app.ErrInvalidSchedule),
		errors.Is(err, app.ErrInvalidExercise),
		errors.Is(err, app.ErrInvalidPartner):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, app.ErrExerciseNotFound),
		errors.Is(err, app.ErrPartnerNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, app.ErrNoPendingRequest),
		errors.Is(err, app.ErrNoPartner):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, app.ErrNoActiveUser):
		writeError(w, http.StatusServiceUnavailable, err)
	case errors.As(err, &syncErr):
		writeError(w, http.StatusBadGateway, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func parseJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

// intQuery returns a non-negative integer query parameter, or fallback.
func intQuery(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func withNoCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

func spaFromDisk(dir string) http.Handler {
	fileServer := http.FileServer(http.Dir(dir))
	indexPath := path.Join(dir, "index.html")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqPath := path.Clean(r.URL.Path)
		if reqPath == "/" {
			http.ServeFile(w, r, indexPath)
			return
		}

		staticPath := path.Join(dir, reqPath)
		if _, err := os.Stat(staticPath); err == nil {
			fileServer.ServeHTTP(w, r)
			return
		}

		http.ServeFile(w, r, indexPath)
	})
}
