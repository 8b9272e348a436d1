package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BradenHooton/vigil/internal/database"
	"github.com/BradenHooton/vigil/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// BanRepository owns ban records. The at-most-one-active-ban-per-user
// invariant is enforced here: creation deactivates the prior active ban in
// the same transaction, and every lifecycle mutation is a single UPDATE
// guarded by the state predicate it transitions from.
type BanRepository struct {
	db *database.DB
}

func NewBanRepository(db *database.DB) *BanRepository {
	return &BanRepository{db: db}
}

const banColumns = `id, user_id, banned_by, ban_type, reason, internal_notes, expires_at, is_active, appeal_status, appeal_message, appealed_at, appeal_reviewed_by, appeal_reviewed_at, appeal_response, created_at, updated_at`

func scanBanRow(row rowScanner) (*models.BanRecord, error) {
	var ban models.BanRecord

	err := row.Scan(
		&ban.ID, &ban.UserID, &ban.BannedBy, &ban.BanType, &ban.Reason,
		&ban.InternalNotes, &ban.ExpiresAt, &ban.IsActive,
		&ban.AppealStatus, &ban.AppealMessage, &ban.AppealedAt,
		&ban.AppealReviewedBy, &ban.AppealReviewedAt, &ban.AppealResponse,
		&ban.CreatedAt, &ban.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &ban, nil
}

func scanBanRows(rows pgx.Rows) ([]*models.BanRecord, error) {
	defer rows.Close()

	bans := make([]*models.BanRecord, 0)

	for rows.Next() {
		ban, err := scanBanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ban: %w", err)
		}
		bans = append(bans, ban)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ban rows: %w", err)
	}

	return bans, nil
}

// Create inserts a new active ban, deactivating any prior active ban for the
// user in the same transaction so the invariant holds under concurrent bans.
func (r *BanRepository) Create(ctx context.Context, ban *models.BanRecord) (*models.BanRecord, error) {
	ban.ID = uuid.New().String()
	now := time.Now()
	ban.CreatedAt = now
	ban.UpdatedAt = now
	ban.IsActive = true
	ban.AppealStatus = models.AppealStatusNone

	var result *models.BanRecord

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		deactivate := `
			UPDATE ban_records
			SET is_active = false, updated_at = $2
			WHERE user_id = $1 AND is_active = true
		`
		if _, err := tx.Exec(ctx, deactivate, ban.UserID, now); err != nil {
			return fmt.Errorf("failed to deactivate prior ban: %w", err)
		}

		insert := `
			INSERT INTO ban_records (id, user_id, banned_by, ban_type, reason, internal_notes, expires_at, is_active, appeal_status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING ` + banColumns

		row, err := scanBanRow(tx.QueryRow(ctx, insert,
			ban.ID, ban.UserID, ban.BannedBy, ban.BanType, ban.Reason,
			ban.InternalNotes, ban.ExpiresAt, ban.IsActive, ban.AppealStatus,
			ban.CreatedAt, ban.UpdatedAt,
		))
		if err != nil {
			return fmt.Errorf("failed to insert ban: %w", err)
		}

		result = row
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// GetActiveByUser returns the user's active ban regardless of expiry, or
// ErrNotFound. Expiry interpretation is the service's job.
func (r *BanRepository) GetActiveByUser(ctx context.Context, userID string) (*models.BanRecord, error) {
	query := `SELECT ` + banColumns + ` FROM ban_records WHERE user_id = $1 AND is_active = true`
	return scanBanRow(r.db.Pool.QueryRow(ctx, query, userID))
}

// DeactivateForUser lifts the user's active ban, marking the appeal approved
// administratively. Fails with ErrNoActiveBan when none exists; the guard
// predicate makes concurrent unbans race-safe.
func (r *BanRepository) DeactivateForUser(ctx context.Context, userID string) (*models.BanRecord, error) {
	query := `
		UPDATE ban_records
		SET is_active = false, appeal_status = $2, updated_at = $3
		WHERE user_id = $1 AND is_active = true
		RETURNING ` + banColumns

	ban, err := scanBanRow(r.db.Pool.QueryRow(ctx, query, userID, models.AppealStatusApproved, time.Now()))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNoActiveBan
		}
		return nil, err
	}

	return ban, nil
}

// Expire flips a specific active ban inactive. Used by lazy expiry and the
// background sweeper; a ban already deactivated concurrently is not an error.
func (r *BanRepository) Expire(ctx context.Context, banID string) error {
	query := `
		UPDATE ban_records
		SET is_active = false, updated_at = $2
		WHERE id = $1 AND is_active = true
	`

	if _, err := r.db.Pool.Exec(ctx, query, banID, time.Now()); err != nil {
		return fmt.Errorf("failed to expire ban: %w", err)
	}
	return nil
}

// ExpireDue deactivates every active ban whose expiry has passed and returns
// the affected user IDs so cached ban statuses can be invalidated.
func (r *BanRepository) ExpireDue(ctx context.Context, now time.Time) ([]string, error) {
	query := `
		UPDATE ban_records
		SET is_active = false, updated_at = $1
		WHERE is_active = true AND expires_at IS NOT NULL AND expires_at <= $1
		RETURNING user_id
	`

	rows, err := r.db.Pool.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to expire due bans: %w", err)
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

// SubmitAppeal transitions an active ban's appeal from none to pending.
// Fails with ErrNoAppealableBan when there is no active ban or the appeal
// was already submitted or decided.
func (r *BanRepository) SubmitAppeal(ctx context.Context, userID, message string) (*models.BanRecord, error) {
	query := `
		UPDATE ban_records
		SET appeal_status = $2, appeal_message = $3, appealed_at = $4, updated_at = $4
		WHERE user_id = $1 AND is_active = true AND appeal_status = $5
		RETURNING ` + banColumns

	ban, err := scanBanRow(r.db.Pool.QueryRow(ctx, query,
		userID, models.AppealStatusPending, message, time.Now(), models.AppealStatusNone))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNoAppealableBan
		}
		return nil, err
	}

	return ban, nil
}

// ReviewAppeal decides a pending appeal. Approval also deactivates the ban
// in the same statement. Fails with ErrAppealNotFound unless the appeal is
// currently pending.
func (r *BanRepository) ReviewAppeal(ctx context.Context, banID, reviewedBy, decision, response string) (*models.BanRecord, error) {
	query := `
		UPDATE ban_records
		SET appeal_status = $2,
		    appeal_reviewed_by = $3,
		    appeal_reviewed_at = $4,
		    appeal_response = $5,
		    is_active = CASE WHEN $2 = $6 THEN false ELSE is_active END,
		    updated_at = $4
		WHERE id = $1 AND appeal_status = $7
		RETURNING ` + banColumns

	ban, err := scanBanRow(r.db.Pool.QueryRow(ctx, query,
		banID, decision, reviewedBy, time.Now(), response,
		models.AppealStatusApproved, models.AppealStatusPending))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrAppealNotFound
		}
		return nil, err
	}

	return ban, nil
}

// ListByUser returns the user's full ban history, newest first.
func (r *BanRepository) ListByUser(ctx context.Context, userID string) ([]*models.BanRecord, error) {
	query := `SELECT ` + banColumns + ` FROM ban_records WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ban history: %w", err)
	}

	return scanBanRows(rows)
}

// ListPendingAppeals returns bans awaiting appeal review, oldest first so
// the queue is worked in submission order.
func (r *BanRepository) ListPendingAppeals(ctx context.Context) ([]*models.BanRecord, error) {
	query := `
		SELECT ` + banColumns + ` FROM ban_records
		WHERE appeal_status = $1
		ORDER BY appealed_at ASC
	`

	rows, err := r.db.Pool.Query(ctx, query, models.AppealStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending appeals: %w", err)
	}

	return scanBanRows(rows)
}
