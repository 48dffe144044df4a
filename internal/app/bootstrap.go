// Package app holds the application services and business logic.
package app

import (
	"context"
	"errors"

	"gymsync/internal/domain"
	"gymsync/internal/observability"
)

var (
	// ErrNoActiveUser indicates an edit was attempted before a user finished bootstrapping.
	ErrNoActiveUser = errors.New("no bootstrapped user")
	// ErrEmptyIdentifier indicates Bootstrap was called without an identifier.
	ErrEmptyIdentifier = errors.New("empty user identifier")
)

// ErrorReporter accepts diagnostics. Implementations must not fail or block
// the caller.
type ErrorReporter interface {
	Report(userID string, err error, op string)
}

// SessionBootstrapper reconciles the local store with the remote document
// whenever the authenticated identifier changes.
type SessionBootstrapper struct {
	store    *ProfileStore
	gateway  domain.SyncGateway
	reporter ErrorReporter
}

// NewSessionBootstrapper creates a bootstrapper for store backed by gateway.
func NewSessionBootstrapper(store *ProfileStore, gateway domain.SyncGateway, reporter ErrorReporter) *SessionBootstrapper {
	return &SessionBootstrapper{store: store, gateway: gateway, reporter: reporter}
}

// Bootstrap loads userID's profile. A remote document replaces the local
// profile entirely; a missing document only seeds the display name with
// userID. On gateway failure the store is left untouched, the failure is
// reported, and the *domain.SyncError is returned.
//
// Calling Bootstrap again for the identifier that is already loaded is a
// no-op; calling it while that load is in flight waits for it and returns
// its error. Switching to a different identifier drops the previous user's
// profile first. Results for an identifier that is no longer active when the
// download returns are discarded.
func (b *SessionBootstrapper) Bootstrap(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrEmptyIdentifier
	}

	gen, start, load := b.store.begin(userID)
	if !start {
		return waitLoaded(ctx, load)
	}

	remote, err := b.gateway.DownloadData(ctx, userID)
	if err != nil {
		err = domain.NewSyncError("download", userID, err)
		if !b.store.fail(gen, err) {
			observability.RecordBootstrap(observability.OutcomeStale)
			return nil
		}
		b.reporter.Report(userID, err, "bootstrap")
		observability.RecordBootstrap(observability.OutcomeFailed)
		return err
	}

	if remote == nil {
		if !b.store.seedName(gen, userID) {
			observability.RecordBootstrap(observability.OutcomeStale)
			return nil
		}
		observability.RecordBootstrap(observability.OutcomeSeeded)
		return nil
	}

	if !b.store.adopt(gen, *remote) {
		observability.RecordBootstrap(observability.OutcomeStale)
		return nil
	}
	observability.RecordBootstrap(observability.OutcomeAdopted)
	return nil
}

// Logout tears the local profile down if userID is the active identifier,
// making its in-flight bootstrap stale. It reports whether anything was
// cleared.
func (b *SessionBootstrapper) Logout(userID string) bool {
	return b.store.Reset(userID)
}
