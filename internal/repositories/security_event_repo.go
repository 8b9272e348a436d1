package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/BradenHooton/vigil/internal/database"
	"github.com/BradenHooton/vigil/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SecurityEventRepository owns the append-only security event log.
type SecurityEventRepository struct {
	db *database.DB
}

func NewSecurityEventRepository(db *database.DB) *SecurityEventRepository {
	return &SecurityEventRepository{db: db}
}

const eventColumns = `id, kind, user_id, actor_id, ip_detail, metadata, created_at`

func scanEventRow(row rowScanner) (*models.SecurityEvent, error) {
	var event models.SecurityEvent

	err := row.Scan(
		&event.ID, &event.Kind, &event.UserID, &event.ActorID,
		&event.IPDetail, &event.Metadata, &event.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &event, nil
}

func scanEventRows(rows pgx.Rows) ([]*models.SecurityEvent, error) {
	defer rows.Close()

	events := make([]*models.SecurityEvent, 0)

	for rows.Next() {
		event, err := scanEventRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan security event: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}

	return events, nil
}

// Create appends a security event.
func (r *SecurityEventRepository) Create(ctx context.Context, event *models.SecurityEvent) (*models.SecurityEvent, error) {
	event.ID = uuid.New().String()
	event.CreatedAt = time.Now()

	query := `
		INSERT INTO security_events (id, kind, user_id, actor_id, ip_detail, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + eventColumns

	result, err := scanEventRow(r.db.Pool.QueryRow(ctx, query,
		event.ID, event.Kind, event.UserID, event.ActorID,
		event.IPDetail, event.Metadata, event.CreatedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create security event: %w", err)
	}

	return result, nil
}

// List returns events newest first, optionally filtered by kind.
func (r *SecurityEventRepository) List(ctx context.Context, kind string, limit, offset int) ([]*models.SecurityEvent, error) {
	var (
		rows pgx.Rows
		err  error
	)

	if kind != "" {
		query := `
			SELECT ` + eventColumns + ` FROM security_events
			WHERE kind = $1
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3
		`
		rows, err = r.db.Pool.Query(ctx, query, kind, limit, offset)
	} else {
		query := `
			SELECT ` + eventColumns + ` FROM security_events
			ORDER BY created_at DESC
			LIMIT $1 OFFSET $2
		`
		rows, err = r.db.Pool.Query(ctx, query, limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query security events: %w", err)
	}

	return scanEventRows(rows)
}

// ListByUser returns events concerning a user, newest first.
func (r *SecurityEventRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.SecurityEvent, error) {
	query := `
		SELECT ` + eventColumns + ` FROM security_events
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query security events: %w", err)
	}

	return scanEventRows(rows)
}
