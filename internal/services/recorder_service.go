package services

import (
	"context"
	"log/slog"

	"github.com/BradenHooton/vigil/internal/models"
	"github.com/BradenHooton/vigil/pkg/logger"
)

// LoginAttemptStore is the recorder's persistence surface for attempts.
type LoginAttemptStore interface {
	Record(ctx context.Context, attempt *models.LoginAttempt) error
}

// FingerprintStore is the recorder's persistence surface for fingerprints.
type FingerprintStore interface {
	Upsert(ctx context.Context, fp *models.DeviceFingerprint) (*models.DeviceFingerprint, error)
}

// CorrelationJob is the unit of work handed to the background correlator
// after a successful login is recorded.
type CorrelationJob struct {
	UserID        string
	IPHash        string
	FingerprintID *string
}

// CorrelationQueue accepts jobs without blocking. Enqueue reports whether
// the job was accepted; a full queue drops the job.
type CorrelationQueue interface {
	Enqueue(job CorrelationJob) bool
}

// RecordLoginInput is the recorder's request shape. IPAddress is the raw
// client IP; it is anonymized before anything is stored.
type RecordLoginInput struct {
	UserID        string
	IPAddress     string
	UserAgent     *string
	Fingerprint   *models.FingerprintData
	Method        string
	Success       bool
	FailureReason *string
	Country       *string
	City          *string
}

// RecorderService ingests login telemetry. It is deliberately fail-silent:
// a broken fingerprint store or attempt store must never surface an error
// into the authentication path, so failures are logged and swallowed.
type RecorderService struct {
	attempts     LoginAttemptStore
	fingerprints FingerprintStore
	queue        CorrelationQueue
	anonymizer   *Anonymizer
	logger       *slog.Logger
}

func NewRecorderService(
	attempts LoginAttemptStore,
	fingerprints FingerprintStore,
	queue CorrelationQueue,
	anonymizer *Anonymizer,
	log *slog.Logger,
) *RecorderService {
	return &RecorderService{
		attempts:     attempts,
		fingerprints: fingerprints,
		queue:        queue,
		anonymizer:   anonymizer,
		logger:       log,
	}
}

// RecordLogin anonymizes the IP, upserts the device fingerprint when one was
// reported, appends the attempt, and enqueues correlation for successful
// logins. Only input validation errors are returned to the caller.
func (s *RecorderService) RecordLogin(ctx context.Context, input RecordLoginInput) error {
	if input.UserID == "" || input.IPAddress == "" {
		return models.ErrBadRequest
	}
	if !models.ValidLoginMethod(input.Method) {
		return models.ErrBadRequest
	}

	ipHash := s.anonymizer.AnonymizeIP(input.IPAddress)

	var fingerprintID *string
	if input.Fingerprint != nil {
		fp := &models.DeviceFingerprint{
			FingerprintHash:  FingerprintHash(*input.Fingerprint),
			UserID:           input.UserID,
			UserAgent:        input.Fingerprint.UserAgent,
			ScreenResolution: optional(input.Fingerprint.ScreenResolution),
			Timezone:         optional(input.Fingerprint.Timezone),
			Language:         optional(input.Fingerprint.Language),
			Platform:         optional(input.Fingerprint.Platform),
		}

		stored, err := s.fingerprints.Upsert(ctx, fp)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to upsert device fingerprint",
				slog.String("user_id", input.UserID),
				slog.String("error", err.Error()),
			)
		} else {
			fingerprintID = &stored.ID
		}
	}

	attempt := &models.LoginAttempt{
		UserID:        input.UserID,
		IPHash:        ipHash,
		UserAgent:     input.UserAgent,
		FingerprintID: fingerprintID,
		Method:        input.Method,
		Success:       input.Success,
		FailureReason: input.FailureReason,
		Country:       input.Country,
		City:          input.City,
	}

	if err := s.attempts.Record(ctx, attempt); err != nil {
		s.logger.ErrorContext(ctx, "failed to record login attempt",
			slog.String("user_id", input.UserID),
			slog.String("ip", logger.MaskIP(input.IPAddress)),
			slog.String("error", err.Error()),
		)
		return nil
	}

	if input.Success && s.queue != nil {
		accepted := s.queue.Enqueue(CorrelationJob{
			UserID:        input.UserID,
			IPHash:        ipHash,
			FingerprintID: fingerprintID,
		})
		if !accepted {
			s.logger.WarnContext(ctx, "correlation queue full, dropping job",
				slog.String("user_id", input.UserID),
			)
		}
	}

	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
