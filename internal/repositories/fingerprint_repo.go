package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/BradenHooton/vigil/internal/database"
	"github.com/BradenHooton/vigil/internal/models"
	"github.com/google/uuid"
)

// FingerprintRepository stores device fingerprints. (fingerprint_hash,
// user_id) is unique; re-observations only bump last_seen_at.
type FingerprintRepository struct {
	db *database.DB
}

func NewFingerprintRepository(db *database.DB) *FingerprintRepository {
	return &FingerprintRepository{db: db}
}

func scanFingerprintRow(row rowScanner) (*models.DeviceFingerprint, error) {
	var fp models.DeviceFingerprint

	err := row.Scan(
		&fp.ID, &fp.FingerprintHash, &fp.UserID, &fp.UserAgent,
		&fp.ScreenResolution, &fp.Timezone, &fp.Language, &fp.Platform,
		&fp.FirstSeenAt, &fp.LastSeenAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &fp, nil
}

// Upsert inserts a new fingerprint or bumps last_seen_at when the same user
// re-presents the identical hash. Returns the stored row either way.
func (r *FingerprintRepository) Upsert(ctx context.Context, fp *models.DeviceFingerprint) (*models.DeviceFingerprint, error) {
	now := time.Now()

	query := `
		INSERT INTO device_fingerprints (id, fingerprint_hash, user_id, user_agent, screen_resolution, timezone, language, platform, first_seen_at, last_seen_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		ON CONFLICT (fingerprint_hash, user_id)
		DO UPDATE SET last_seen_at = $9
		RETURNING id, fingerprint_hash, user_id, user_agent, screen_resolution, timezone, language, platform, first_seen_at, last_seen_at
	`

	result, err := scanFingerprintRow(r.db.Pool.QueryRow(ctx, query,
		uuid.New().String(),
		fp.FingerprintHash,
		fp.UserID,
		fp.UserAgent,
		fp.ScreenResolution,
		fp.Timezone,
		fp.Language,
		fp.Platform,
		now,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert fingerprint: %w", err)
	}

	return result, nil
}

// OwnersByHash returns the distinct other users owning the identical
// fingerprint hash.
func (r *FingerprintRepository) OwnersByHash(ctx context.Context, hash, excludeUserID string) ([]string, error) {
	query := `
		SELECT DISTINCT user_id FROM device_fingerprints
		WHERE fingerprint_hash = $1 AND user_id <> $2
	`

	rows, err := r.db.Pool.Query(ctx, query, hash, excludeUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to query fingerprint owners: %w", err)
	}
	defer rows.Close()

	userIDs := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		userIDs = append(userIDs, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return userIDs, nil
}

// GetByID loads a fingerprint row.
func (r *FingerprintRepository) GetByID(ctx context.Context, id string) (*models.DeviceFingerprint, error) {
	query := `
		SELECT id, fingerprint_hash, user_id, user_agent, screen_resolution, timezone, language, platform, first_seen_at, last_seen_at
		FROM device_fingerprints WHERE id = $1
	`

	return scanFingerprintRow(r.db.Pool.QueryRow(ctx, query, id))
}
