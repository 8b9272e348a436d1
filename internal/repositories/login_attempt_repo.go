package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/BradenHooton/vigil/internal/database"
	"github.com/BradenHooton/vigil/internal/models"
	"github.com/google/uuid"
)

// LoginAttemptRepository owns the append-only login audit trail. Rows are
// inserted once and never updated.
type LoginAttemptRepository struct {
	db *database.DB
}

func NewLoginAttemptRepository(db *database.DB) *LoginAttemptRepository {
	return &LoginAttemptRepository{db: db}
}

// Record appends a login attempt.
func (r *LoginAttemptRepository) Record(ctx context.Context, attempt *models.LoginAttempt) error {
	attempt.ID = uuid.New().String()
	attempt.CreatedAt = time.Now()

	query := `
		INSERT INTO login_attempts (id, user_id, ip_hash, user_agent, fingerprint_id, method, success, failure_reason, country, city, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		attempt.ID,
		attempt.UserID,
		attempt.IPHash,
		attempt.UserAgent,
		attempt.FingerprintID,
		attempt.Method,
		attempt.Success,
		attempt.FailureReason,
		attempt.Country,
		attempt.City,
		attempt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record login attempt: %w", err)
	}

	return nil
}

// DistinctUsersByIPHash returns the distinct other users with a successful
// login from the same anonymized IP.
func (r *LoginAttemptRepository) DistinctUsersByIPHash(ctx context.Context, ipHash, excludeUserID string) ([]string, error) {
	query := `
		SELECT DISTINCT user_id FROM login_attempts
		WHERE ip_hash = $1 AND user_id <> $2 AND success = true
	`

	rows, err := r.db.Pool.Query(ctx, query, ipHash, excludeUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to query users by ip hash: %w", err)
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

// CountSuccessfulByUserAndIP counts a user's prior successful logins from
// the given anonymized IP. Feeds the ip_match confidence formula.
func (r *LoginAttemptRepository) CountSuccessfulByUserAndIP(ctx context.Context, userID, ipHash string) (int, error) {
	query := `
		SELECT COUNT(*) FROM login_attempts
		WHERE user_id = $1 AND ip_hash = $2 AND success = true
	`

	var count int
	if err := r.db.Pool.QueryRow(ctx, query, userID, ipHash).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count logins: %w", err)
	}
	return count, nil
}

// DeleteOlderThan purges attempts past the retention window.
func (r *LoginAttemptRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM login_attempts WHERE created_at < $1`

	result, err := r.db.Pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired login attempts: %w", err)
	}
	return result.RowsAffected(), nil
}
