package integration

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SeedUser inserts a test user and returns its ID
func SeedUser(ctx context.Context, pool *pgxpool.Pool, suffix string) (string, error) {
	id := uuid.NewString()
	email := fmt.Sprintf("test-%s-%s@example.com", suffix, id[:8])
	username := fmt.Sprintf("test-%s-%s", suffix, id[:8])

	query := `
		INSERT INTO users (id, email, username, name, role)
		VALUES ($1, $2, $3, $4, 'user')
		RETURNING id
	`

	var userID string
	if err := pool.QueryRow(ctx, query, id, email, username, "Test "+suffix).Scan(&userID); err != nil {
		return "", fmt.Errorf("failed to insert user: %w", err)
	}
	return userID, nil
}

// SeedLoginAttempt inserts a login attempt row directly, bypassing the API
func SeedLoginAttempt(ctx context.Context, pool *pgxpool.Pool, userID, ipHash string, success bool, age time.Duration) error {
	query := `
		INSERT INTO login_attempts (id, user_id, ip_hash, method, success, created_at)
		VALUES (gen_random_uuid(), $1, $2, 'password', $3, now() - $4::interval)
	`

	interval := fmt.Sprintf("%d seconds", int(age.Seconds()))
	if _, err := pool.Exec(ctx, query, userID, ipHash, success, interval); err != nil {
		return fmt.Errorf("failed to insert login attempt: %w", err)
	}
	return nil
}

// CountActiveBans returns the number of active ban rows for a user
func CountActiveBans(ctx context.Context, pool *pgxpool.Pool, userID string) (int, error) {
	var count int
	err := pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM ban_records WHERE user_id = $1 AND is_active`, userID).Scan(&count)
	return count, err
}

// CountLinks returns the number of link rows between two users of a type
func CountLinks(ctx context.Context, pool *pgxpool.Pool, primaryID, linkedID, linkType string) (int, error) {
	var count int
	err := pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM multi_account_links
		 WHERE primary_user_id = $1 AND linked_user_id = $2 AND link_type = $3`,
		primaryID, linkedID, linkType).Scan(&count)
	return count, err
}

// CountLoginAttempts returns the total login attempt rows for a user
func CountLoginAttempts(ctx context.Context, pool *pgxpool.Pool, userID string) (int, error) {
	var count int
	err := pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM login_attempts WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

// CountEvents returns the number of security events of a kind for a user
func CountEvents(ctx context.Context, pool *pgxpool.Pool, userID, kind string) (int, error) {
	var count int
	err := pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM security_events WHERE user_id = $1 AND kind = $2`, userID, kind).Scan(&count)
	return count, err
}
