package domain

import (
	"context"
	"errors"
	"fmt"
)

// SyncGateway is the port to the remote document store. DownloadData returns
// (nil, nil) when no document exists for userID.
type SyncGateway interface {
	DownloadData(ctx context.Context, userID string) (*Profile, error)
	UploadData(ctx context.Context, userID string, p Profile) error
}

// ProfileLister enumerates every stored profile. Used by audits only.
type ProfileLister interface {
	ListProfiles(ctx context.Context) ([]Profile, error)
}

// SyncError wraps a gateway failure (transport, auth rejection, malformed payload).
type SyncError struct {
	Op     string
	UserID string
	Err    error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync %s %q: %v", e.Op, e.UserID, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// NewSyncError wraps err unless it is nil or already a *SyncError.
func NewSyncError(op, userID string, err error) error {
	if err == nil {
		return nil
	}
	var se *SyncError
	if errors.As(err, &se) {
		return err
	}
	return &SyncError{Op: op, UserID: userID, Err: err}
}
