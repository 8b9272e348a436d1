package services

import (
	"context"
	"log/slog"

	"github.com/BradenHooton/vigil/internal/models"
	"github.com/BradenHooton/vigil/pkg/logger"
)

// SecurityEventStore is the persistence surface for the append-only event log.
type SecurityEventStore interface {
	Create(ctx context.Context, event *models.SecurityEvent) (*models.SecurityEvent, error)
	List(ctx context.Context, kind string, limit, offset int) ([]*models.SecurityEvent, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.SecurityEvent, error)
}

// SecurityEventService dual-writes events to structured logs and the
// database. Persistence failures are logged and swallowed so a flaky event
// store never fails the operation that produced the event.
type SecurityEventService struct {
	events SecurityEventStore
	logger *slog.Logger
	audit  *logger.AuditLogger
}

func NewSecurityEventService(events SecurityEventStore, log *slog.Logger) *SecurityEventService {
	return &SecurityEventService{
		events: events,
		logger: log,
		audit:  logger.NewAuditLogger(log),
	}
}

// Emit records a security event. Never returns an error.
func (s *SecurityEventService) Emit(ctx context.Context, kind string, userID, actorID *string, metadata models.EventMetadata) {
	s.audit.LogSecurityEvent(ctx, kind, userID, actorID, metadata)

	event := &models.SecurityEvent{
		Kind:     kind,
		UserID:   userID,
		ActorID:  actorID,
		Metadata: metadata,
	}

	if _, err := s.events.Create(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist security event",
			slog.String("kind", kind),
			slog.String("error", err.Error()),
		)
	}
}

// ListEvents returns events newest first, optionally filtered by kind.
func (s *SecurityEventService) ListEvents(ctx context.Context, kind string, limit, offset int) ([]*models.SecurityEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.events.List(ctx, kind, limit, offset)
}

// ListEventsForUser returns events concerning one user, newest first.
func (s *SecurityEventService) ListEventsForUser(ctx context.Context, userID string, limit, offset int) ([]*models.SecurityEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.events.ListByUser(ctx, userID, limit, offset)
}
