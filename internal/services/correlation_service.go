package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/BradenHooton/vigil/internal/models"
)

// Confidence scoring for multi-account detection. IP correlation starts low
// and grows with corroborating logins; a shared device fingerprint is strong
// evidence on its own.
const (
	ipMatchBaseConfidence     = 30
	ipMatchPerLoginConfidence = 10
	ipMatchMaxConfidence      = 80
	fingerprintConfidence     = 85

	// Links at or above this confidence emit a detection event.
	detectionEventThreshold = 70
)

// CorrelationAttemptStore covers the attempt queries correlation needs.
type CorrelationAttemptStore interface {
	DistinctUsersByIPHash(ctx context.Context, ipHash, excludeUserID string) ([]string, error)
	CountSuccessfulByUserAndIP(ctx context.Context, userID, ipHash string) (int, error)
}

// CorrelationFingerprintStore covers the fingerprint queries correlation needs.
type CorrelationFingerprintStore interface {
	OwnersByHash(ctx context.Context, hash, excludeUserID string) ([]string, error)
	GetByID(ctx context.Context, id string) (*models.DeviceFingerprint, error)
}

// LinkStore persists and reviews multi-account links.
type LinkStore interface {
	InsertIfAbsent(ctx context.Context, link *models.MultiAccountLink) (bool, *models.MultiAccountLink, error)
	GetByID(ctx context.Context, id string) (*models.MultiAccountLink, error)
	GetByUser(ctx context.Context, userID string) ([]*models.MultiAccountLink, error)
	List(ctx context.Context, status string, limit, offset int) ([]*models.MultiAccountLink, error)
	UpdateStatus(ctx context.Context, linkID, reviewedBy, status string, notes *string) (*models.MultiAccountLink, error)
}

// EventEmitter records security events without failing the caller.
type EventEmitter interface {
	Emit(ctx context.Context, kind string, userID, actorID *string, metadata models.EventMetadata)
}

// LinkAlerter is notified about high-confidence detections.
type LinkAlerter interface {
	MultiAccountDetected(ctx context.Context, link *models.MultiAccountLink)
}

// CorrelationService finds accounts that look like the same person. It runs
// off the hot path, after a successful login has already been recorded, so
// every failure here is logged and swallowed.
type CorrelationService struct {
	attempts     CorrelationAttemptStore
	fingerprints CorrelationFingerprintStore
	links        LinkStore
	events       EventEmitter
	alerter      LinkAlerter
	logger       *slog.Logger
}

func NewCorrelationService(
	attempts CorrelationAttemptStore,
	fingerprints CorrelationFingerprintStore,
	links LinkStore,
	events EventEmitter,
	alerter LinkAlerter,
	log *slog.Logger,
) *CorrelationService {
	return &CorrelationService{
		attempts:     attempts,
		fingerprints: fingerprints,
		links:        links,
		events:       events,
		alerter:      alerter,
		logger:       log,
	}
}

// Correlate runs both detection passes for one recorded login.
func (s *CorrelationService) Correlate(ctx context.Context, job CorrelationJob) {
	s.correlateByIP(ctx, job.UserID, job.IPHash)

	if job.FingerprintID != nil {
		s.correlateByFingerprint(ctx, job.UserID, *job.FingerprintID)
	}
}

// correlateByIP links the user to every other account with successful logins
// from the same anonymized IP. Confidence starts at the base and grows with
// each corroborating login the other account made from that IP, capped well
// below the fingerprint tier because shared IPs are common (NAT, campus
// networks, mobile carriers).
func (s *CorrelationService) correlateByIP(ctx context.Context, userID, ipHash string) {
	others, err := s.attempts.DistinctUsersByIPHash(ctx, ipHash, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "ip correlation query failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return
	}

	for _, otherID := range others {
		priorLogins, err := s.attempts.CountSuccessfulByUserAndIP(ctx, otherID, ipHash)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to count corroborating logins",
				slog.String("user_id", otherID),
				slog.String("error", err.Error()),
			)
			continue
		}

		confidence := ipMatchBaseConfidence + ipMatchPerLoginConfidence*priorLogins
		if confidence > ipMatchMaxConfidence {
			confidence = ipMatchMaxConfidence
		}

		s.recordLink(ctx, &models.MultiAccountLink{
			PrimaryUserID: userID,
			LinkedUserID:  otherID,
			LinkType:      models.LinkTypeIPMatch,
			Confidence:    confidence,
			Evidence: models.LinkEvidence{
				"ip_hash":      ipHash,
				"prior_logins": priorLogins,
			},
		})
	}
}

// correlateByFingerprint links the user to every other account that has
// presented the identical device hash. Fixed confidence: an identical
// fingerprint tuple is near-certain shared hardware.
func (s *CorrelationService) correlateByFingerprint(ctx context.Context, userID, fingerprintID string) {
	fp, err := s.fingerprints.GetByID(ctx, fingerprintID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load fingerprint",
			slog.String("fingerprint_id", fingerprintID),
			slog.String("error", err.Error()),
		)
		return
	}

	owners, err := s.fingerprints.OwnersByHash(ctx, fp.FingerprintHash, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "fingerprint correlation query failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return
	}

	for _, otherID := range owners {
		s.recordLink(ctx, &models.MultiAccountLink{
			PrimaryUserID: userID,
			LinkedUserID:  otherID,
			LinkType:      models.LinkTypeFingerprintMatch,
			Confidence:    fingerprintConfidence,
			Evidence: models.LinkEvidence{
				"fingerprint_hash": fp.FingerprintHash[:16],
			},
		})
	}
}

// recordLink persists a detected link. Re-detections of an existing
// (primary, linked, type) pair are silent no-ops; only newly created links
// emit events and alerts.
func (s *CorrelationService) recordLink(ctx context.Context, link *models.MultiAccountLink) {
	created, stored, err := s.links.InsertIfAbsent(ctx, link)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to persist multi-account link",
			slog.String("primary_user_id", link.PrimaryUserID),
			slog.String("linked_user_id", link.LinkedUserID),
			slog.String("error", err.Error()),
		)
		return
	}
	if !created {
		return
	}

	s.logger.InfoContext(ctx, "multi-account link detected",
		slog.String("primary_user_id", stored.PrimaryUserID),
		slog.String("linked_user_id", stored.LinkedUserID),
		slog.String("link_type", stored.LinkType),
		slog.Int("confidence", stored.Confidence),
	)

	if stored.Confidence >= detectionEventThreshold {
		s.events.Emit(ctx, models.EventKindMultiAccountDetected, &stored.PrimaryUserID, nil, models.EventMetadata{
			"linked_user_id": stored.LinkedUserID,
			"link_type":      stored.LinkType,
			"confidence":     stored.Confidence,
		})

		if s.alerter != nil {
			s.alerter.MultiAccountDetected(ctx, stored)
		}
	}
}

// GetLinksForUser returns links involving the user on either side.
func (s *CorrelationService) GetLinksForUser(ctx context.Context, userID string) ([]*models.MultiAccountLink, error) {
	return s.links.GetByUser(ctx, userID)
}

// ListLinks returns links for review, optionally filtered by status.
func (s *CorrelationService) ListLinks(ctx context.Context, status string, limit, offset int) ([]*models.MultiAccountLink, error) {
	if status != "" && !models.ValidLinkStatus(status) {
		return nil, models.ErrBadRequest
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.links.List(ctx, status, limit, offset)
}

// ReviewLink records an admin decision on a detected link.
func (s *CorrelationService) ReviewLink(ctx context.Context, linkID, reviewedBy, status string, notes *string) (*models.MultiAccountLink, error) {
	if !models.ValidLinkStatus(status) || status == models.LinkStatusDetected {
		return nil, models.ErrBadRequest
	}

	link, err := s.links.UpdateStatus(ctx, linkID, reviewedBy, status, notes)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}

	return link, nil
}
