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

// LinkRepository stores multi-account links. (primary_user_id,
// linked_user_id, link_type) is unique; repeat detections are no-ops.
type LinkRepository struct {
	db *database.DB
}

func NewLinkRepository(db *database.DB) *LinkRepository {
	return &LinkRepository{db: db}
}

const linkColumns = `id, primary_user_id, linked_user_id, link_type, confidence, evidence, status, reviewed_by, reviewed_at, review_notes, created_at`

func scanLinkRow(row rowScanner) (*models.MultiAccountLink, error) {
	var link models.MultiAccountLink

	err := row.Scan(
		&link.ID, &link.PrimaryUserID, &link.LinkedUserID, &link.LinkType,
		&link.Confidence, &link.Evidence, &link.Status,
		&link.ReviewedBy, &link.ReviewedAt, &link.ReviewNotes, &link.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &link, nil
}

func scanLinkRows(rows pgx.Rows) ([]*models.MultiAccountLink, error) {
	defer rows.Close()

	links := make([]*models.MultiAccountLink, 0)

	for rows.Next() {
		link, err := scanLinkRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating link rows: %w", err)
	}

	return links, nil
}

// InsertIfAbsent inserts a detected link unless the same (primary, linked,
// type) pair already exists. Returns created=false on the duplicate path;
// the existing row is left untouched, confidence included.
func (r *LinkRepository) InsertIfAbsent(ctx context.Context, link *models.MultiAccountLink) (created bool, result *models.MultiAccountLink, err error) {
	query := `
		INSERT INTO multi_account_links (id, primary_user_id, linked_user_id, link_type, confidence, evidence, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (primary_user_id, linked_user_id, link_type) DO NOTHING
		RETURNING ` + linkColumns

	result, err = scanLinkRow(r.db.Pool.QueryRow(ctx, query,
		uuid.New().String(),
		link.PrimaryUserID,
		link.LinkedUserID,
		link.LinkType,
		link.Confidence,
		link.Evidence,
		models.LinkStatusDetected,
		time.Now(),
	))
	if err != nil {
		// DO NOTHING yields no row when the pair already exists.
		if errors.Is(err, models.ErrNotFound) {
			return false, nil, nil
		}
		return false, nil, fmt.Errorf("failed to insert link: %w", err)
	}

	return true, result, nil
}

// GetByID loads a single link.
func (r *LinkRepository) GetByID(ctx context.Context, id string) (*models.MultiAccountLink, error) {
	query := `SELECT ` + linkColumns + ` FROM multi_account_links WHERE id = $1`
	return scanLinkRow(r.db.Pool.QueryRow(ctx, query, id))
}

// GetByUser returns links where the user appears on either side.
func (r *LinkRepository) GetByUser(ctx context.Context, userID string) ([]*models.MultiAccountLink, error) {
	query := `
		SELECT ` + linkColumns + ` FROM multi_account_links
		WHERE primary_user_id = $1 OR linked_user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}

	return scanLinkRows(rows)
}

// List returns links, optionally filtered by status, newest first.
func (r *LinkRepository) List(ctx context.Context, status string, limit, offset int) ([]*models.MultiAccountLink, error) {
	var (
		rows pgx.Rows
		err  error
	)

	if status != "" {
		query := `
			SELECT ` + linkColumns + ` FROM multi_account_links
			WHERE status = $1
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3
		`
		rows, err = r.db.Pool.Query(ctx, query, status, limit, offset)
	} else {
		query := `
			SELECT ` + linkColumns + ` FROM multi_account_links
			ORDER BY created_at DESC
			LIMIT $1 OFFSET $2
		`
		rows, err = r.db.Pool.Query(ctx, query, limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}

	return scanLinkRows(rows)
}

// UpdateStatus records an admin review decision on a link.
func (r *LinkRepository) UpdateStatus(ctx context.Context, linkID, reviewedBy, status string, notes *string) (*models.MultiAccountLink, error) {
	query := `
		UPDATE multi_account_links
		SET status = $2, reviewed_by = $3, reviewed_at = $4, review_notes = $5
		WHERE id = $1
		RETURNING ` + linkColumns

	link, err := scanLinkRow(r.db.Pool.QueryRow(ctx, query, linkID, status, reviewedBy, time.Now(), notes))
	if err != nil {
		return nil, err
	}

	return link, nil
}
