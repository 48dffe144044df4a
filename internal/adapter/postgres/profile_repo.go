package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gymsync/internal/domain"
)

var _ domain.SyncGateway = (*DB)(nil)
var _ domain.ProfileLister = (*DB)(nil)

// DownloadData returns the stored document for userID, or nil if none exists.
func (d *DB) DownloadData(ctx context.Context, userID string) (*domain.Profile, error) {
	var raw []byte
	err := d.sql.QueryRowContext(ctx,
		"SELECT document FROM profiles WHERE user_id = $1", userID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	p, err := decodeProfile(userID, raw)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UploadData replaces the stored document for userID.
func (d *DB) UploadData(ctx context.Context, userID string, p domain.Profile) error {
	if userID == "" {
		return errors.New("empty user id")
	}
	p.UserID = userID
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile %q: %w", userID, err)
	}
	_, err = d.sql.ExecContext(ctx,
		`INSERT INTO profiles (user_id, document, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at`,
		userID, raw, p.UpdatedAt,
	)
	return err
}

// ListProfiles returns every stored document ordered by user id.
func (d *DB) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	rows, err := d.sql.QueryContext(ctx, "SELECT user_id, document FROM profiles ORDER BY user_id;")
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.Profile
	for rows.Next() {
		var (
			userID string
			raw    []byte
		)
		if err := rows.Scan(&userID, &raw); err != nil {
			return nil, err
		}
		p, err := decodeProfile(userID, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// decodeProfile parses a stored document. The row key wins over any user id
// inside the document.
func decodeProfile(userID string, raw []byte) (domain.Profile, error) {
	var p domain.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.Profile{}, fmt.Errorf("decode profile %q: %w", userID, err)
	}
	p.UserID = userID
	return p, nil
}
