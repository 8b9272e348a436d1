package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/BradenHooton/vigil/internal/models"
)

// BanStore is the persistence surface for ban records.
type BanStore interface {
	Create(ctx context.Context, ban *models.BanRecord) (*models.BanRecord, error)
	GetActiveByUser(ctx context.Context, userID string) (*models.BanRecord, error)
	DeactivateForUser(ctx context.Context, userID string) (*models.BanRecord, error)
	Expire(ctx context.Context, banID string) error
	SubmitAppeal(ctx context.Context, userID, message string) (*models.BanRecord, error)
	ReviewAppeal(ctx context.Context, banID, reviewedBy, decision, response string) (*models.BanRecord, error)
	ListByUser(ctx context.Context, userID string) ([]*models.BanRecord, error)
	ListPendingAppeals(ctx context.Context) ([]*models.BanRecord, error)
}

// UserStore verifies ban targets exist.
type UserStore interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// BanStatusCache is a short-TTL read-through cache for ban status lookups.
// Implementations must treat backend failures as misses.
type BanStatusCache interface {
	Get(ctx context.Context, userID string) (*models.BanInfo, bool)
	Set(ctx context.Context, userID string, info *models.BanInfo)
	Invalidate(ctx context.Context, userID string)
}

// BanAlerter is notified about permanent bans.
type BanAlerter interface {
	PermanentBan(ctx context.Context, ban *models.BanRecord)
}

// BanUserInput is the admin request shape for issuing a ban.
type BanUserInput struct {
	UserID        string
	BannedBy      string
	BanType       string
	Reason        string
	InternalNotes *string
	Duration      models.BanDuration
}

// BanService owns the ban lifecycle and the ban-status read path the auth
// gate hits on every login.
type BanService struct {
	bans    BanStore
	users   UserStore
	events  EventEmitter
	cache   BanStatusCache
	alerter BanAlerter
	logger  *slog.Logger
}

func NewBanService(
	bans BanStore,
	users UserStore,
	events EventEmitter,
	cache BanStatusCache,
	alerter BanAlerter,
	log *slog.Logger,
) *BanService {
	return &BanService{
		bans:    bans,
		users:   users,
		events:  events,
		cache:   cache,
		alerter: alerter,
		logger:  log,
	}
}

// BanUser issues a new ban. Any existing active ban is superseded
// atomically, so the user never ends up with two active bans.
func (s *BanService) BanUser(ctx context.Context, input BanUserInput) (*models.BanRecord, error) {
	if !models.ValidBanType(input.BanType) {
		return nil, models.ErrBadRequest
	}
	if input.Reason == "" || input.Duration == nil {
		return nil, models.ErrBadRequest
	}

	exists, err := s.users.Exists(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.ErrUserNotFound
	}

	expiresAt := input.Duration.ExpiresFrom(time.Now())
	if input.BanType == models.BanTypePermanent {
		expiresAt = nil
	}

	ban := &models.BanRecord{
		UserID:        input.UserID,
		BannedBy:      input.BannedBy,
		BanType:       input.BanType,
		Reason:        input.Reason,
		InternalNotes: input.InternalNotes,
		ExpiresAt:     expiresAt,
	}

	created, err := s.bans.Create(ctx, ban)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, input.UserID)

	s.events.Emit(ctx, models.EventKindBanned, &created.UserID, &created.BannedBy, models.EventMetadata{
		"ban_id":   created.ID,
		"ban_type": created.BanType,
		"reason":   created.Reason,
	})

	if created.BanType == models.BanTypePermanent && s.alerter != nil {
		s.alerter.PermanentBan(ctx, created)
	}

	return created, nil
}

// UnbanUser lifts the user's active ban. ErrNoActiveBan when there is none.
func (s *BanService) UnbanUser(ctx context.Context, userID, unbannedBy, reason string) (*models.BanRecord, error) {
	ban, err := s.bans.DeactivateForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, userID)

	s.events.Emit(ctx, models.EventKindUnbanned, &userID, &unbannedBy, models.EventMetadata{
		"ban_id": ban.ID,
		"reason": reason,
	})

	return ban, nil
}

// CheckBanStatus answers the auth gate's question: may this user log in
// right now. A ban whose expiry has passed is flipped inactive here, lazily,
// so correctness does not depend on the background sweeper. The read path
// fails open: if the store is unreachable the user is treated as not banned,
// because blocking all logins on a risk-engine outage is the worse failure.
func (s *BanService) CheckBanStatus(ctx context.Context, userID string) *models.BanInfo {
	if s.cache != nil {
		if info, ok := s.cache.Get(ctx, userID); ok {
			return info
		}
	}

	info := s.lookupBanStatus(ctx, userID)

	if s.cache != nil {
		s.cache.Set(ctx, userID, info)
	}

	return info
}

func (s *BanService) lookupBanStatus(ctx context.Context, userID string) *models.BanInfo {
	ban, err := s.bans.GetActiveByUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.logger.ErrorContext(ctx, "ban status lookup failed",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
		return &models.BanInfo{IsBanned: false}
	}

	if ban.ExpiresAt != nil && !ban.ExpiresAt.After(time.Now()) {
		if err := s.bans.Expire(ctx, ban.ID); err != nil {
			s.logger.ErrorContext(ctx, "failed to expire ban",
				slog.String("ban_id", ban.ID),
				slog.String("error", err.Error()),
			)
		}
		return &models.BanInfo{IsBanned: false}
	}

	return &models.BanInfo{
		IsBanned:  true,
		BanType:   ban.BanType,
		Reason:    ban.Reason,
		ExpiresAt: ban.ExpiresAt,
		CanAppeal: ban.AppealStatus == models.AppealStatusNone,
	}
}

// SubmitAppeal files an appeal against the user's active ban. Exactly one
// appeal per ban: ErrNoAppealableBan if there is no active ban or its appeal
// was already submitted or decided.
func (s *BanService) SubmitAppeal(ctx context.Context, userID, message string) (*models.BanRecord, error) {
	if message == "" {
		return nil, models.ErrBadRequest
	}

	ban, err := s.bans.SubmitAppeal(ctx, userID, message)
	if err != nil {
		return nil, err
	}

	// CanAppeal changed, so the cached status is stale.
	s.invalidate(ctx, userID)

	s.events.Emit(ctx, models.EventKindAppealSubmitted, &userID, nil, models.EventMetadata{
		"ban_id": ban.ID,
	})

	return ban, nil
}

// ReviewAppeal decides a pending appeal. Approval lifts the ban in the same
// store operation. ErrAppealNotFound unless the appeal is currently pending.
func (s *BanService) ReviewAppeal(ctx context.Context, banID, reviewedBy, decision, response string) (*models.BanRecord, error) {
	if decision != models.AppealStatusApproved && decision != models.AppealStatusRejected {
		return nil, models.ErrBadRequest
	}

	ban, err := s.bans.ReviewAppeal(ctx, banID, reviewedBy, decision, response)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, ban.UserID)

	s.events.Emit(ctx, models.EventKindAppealReviewed, &ban.UserID, &reviewedBy, models.EventMetadata{
		"ban_id":   ban.ID,
		"decision": decision,
	})

	return ban, nil
}

// GetBanHistory returns the user's full ban history, newest first.
func (s *BanService) GetBanHistory(ctx context.Context, userID string) ([]*models.BanRecord, error) {
	return s.bans.ListByUser(ctx, userID)
}

// GetPendingAppeals returns the appeal review queue, oldest first.
func (s *BanService) GetPendingAppeals(ctx context.Context) ([]*models.BanRecord, error) {
	return s.bans.ListPendingAppeals(ctx)
}

func (s *BanService) invalidate(ctx context.Context, userID string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}
}
