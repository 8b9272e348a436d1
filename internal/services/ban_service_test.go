package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/BradenHooton/vigil/internal/models"
)

func newBanService(bans BanStore, users UserStore, events *MockEventEmitter, cache BanStatusCache) *BanService {
	return NewBanService(bans, users, events, cache, nil, slog.Default())
}

func TestBanService_BanUser_TemporarySetsExpiry(t *testing.T) {
	var created *models.BanRecord
	bans := &MockBanStore{
		CreateFunc: func(ctx context.Context, ban *models.BanRecord) (*models.BanRecord, error) {
			ban.ID = "ban-1"
			ban.IsActive = true
			ban.AppealStatus = models.AppealStatusNone
			created = ban
			return ban, nil
		},
	}
	events := &MockEventEmitter{}
	svc := newBanService(bans, &MockUserStore{}, events, nil)

	before := time.Now()
	ban, err := svc.BanUser(context.Background(), BanUserInput{
		UserID:   "user-1",
		BannedBy: "admin-console",
		BanType:  models.BanTypeTemporary,
		Reason:   "spamming",
		Duration: models.BanDays(7),
	})
	after := time.Now()

	assert.NoError(t, err)
	assert.NotNil(t, ban)
	assert.NotNil(t, created.ExpiresAt)

	// Expiry lands exactly seven days out, give or take the call itself
	assert.WithinDuration(t, before.AddDate(0, 0, 7), *created.ExpiresAt, after.Sub(before)+time.Second)

	assert.Len(t, events.Events, 1)
	assert.Equal(t, models.EventKindBanned, events.Events[0].Kind)
}

func TestBanService_BanUser_PermanentHasNoExpiry(t *testing.T) {
	bans := &MockBanStore{
		CreateFunc: func(ctx context.Context, ban *models.BanRecord) (*models.BanRecord, error) {
			ban.ID = "ban-1"
			return ban, nil
		},
	}
	svc := newBanService(bans, &MockUserStore{}, &MockEventEmitter{}, nil)

	ban, err := svc.BanUser(context.Background(), BanUserInput{
		UserID:   "user-1",
		BannedBy: "admin-console",
		BanType:  models.BanTypePermanent,
		Reason:   "fraud",
		Duration: models.BanPermanent{},
	})

	assert.NoError(t, err)
	assert.Nil(t, ban.ExpiresAt)
}

func TestBanService_BanUser_UserNotFound(t *testing.T) {
	users := &MockUserStore{
		ExistsFunc: func(ctx context.Context, id string) (bool, error) {
			return false, nil
		},
	}
	svc := newBanService(&MockBanStore{}, users, &MockEventEmitter{}, nil)

	ban, err := svc.BanUser(context.Background(), BanUserInput{
		UserID:   "ghost",
		BannedBy: "admin-console",
		BanType:  models.BanTypeTemporary,
		Reason:   "spamming",
		Duration: models.BanDays(1),
	})

	assert.ErrorIs(t, err, models.ErrUserNotFound)
	assert.Nil(t, ban)
}

func TestBanService_BanUser_InvalidInput(t *testing.T) {
	svc := newBanService(&MockBanStore{}, &MockUserStore{}, &MockEventEmitter{}, nil)

	_, err := svc.BanUser(context.Background(), BanUserInput{
		UserID:   "user-1",
		BannedBy: "admin-console",
		BanType:  "timeout",
		Reason:   "spamming",
		Duration: models.BanDays(1),
	})
	assert.ErrorIs(t, err, models.ErrBadRequest)

	_, err = svc.BanUser(context.Background(), BanUserInput{
		UserID:   "user-1",
		BannedBy: "admin-console",
		BanType:  models.BanTypeTemporary,
		Duration: models.BanDays(1),
	})
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestBanService_BanUser_InvalidatesCache(t *testing.T) {
	bans := &MockBanStore{
		CreateFunc: func(ctx context.Context, ban *models.BanRecord) (*models.BanRecord, error) {
			ban.ID = "ban-1"
			return ban, nil
		},
	}
	cache := NewMockBanStatusCache()
	cache.Set(context.Background(), "user-1", &models.BanInfo{IsBanned: false})

	svc := newBanService(bans, &MockUserStore{}, &MockEventEmitter{}, cache)

	_, err := svc.BanUser(context.Background(), BanUserInput{
		UserID:   "user-1",
		BannedBy: "admin-console",
		BanType:  models.BanTypeTemporary,
		Reason:   "spamming",
		Duration: models.BanHours(1),
	})

	assert.NoError(t, err)
	assert.Contains(t, cache.Invalidated, "user-1")
}

func TestBanService_CheckBanStatus_NotBanned(t *testing.T) {
	svc := newBanService(&MockBanStore{}, &MockUserStore{}, &MockEventEmitter{}, nil)

	info := svc.CheckBanStatus(context.Background(), "user-1")

	assert.False(t, info.IsBanned)
	assert.False(t, info.CanAppeal)
}

func TestBanService_CheckBanStatus_ActiveBan(t *testing.T) {
	expires := time.Now().Add(24 * time.Hour)
	bans := &MockBanStore{
		GetActiveByUserFunc: func(ctx context.Context, userID string) (*models.BanRecord, error) {
			return &models.BanRecord{
				ID:           "ban-1",
				UserID:       userID,
				BanType:      models.BanTypeTemporary,
				Reason:       "spamming",
				ExpiresAt:    &expires,
				IsActive:     true,
				AppealStatus: models.AppealStatusNone,
			}, nil
		},
	}
	svc := newBanService(bans, &MockUserStore{}, &MockEventEmitter{}, nil)

	info := svc.CheckBanStatus(context.Background(), "user-1")

	assert.True(t, info.IsBanned)
	assert.Equal(t, models.BanTypeTemporary, info.BanType)
	assert.True(t, info.CanAppeal)
	assert.Equal(t, expires, *info.ExpiresAt)
}

func TestBanService_CheckBanStatus_LazyExpiry(t *testing.T) {
	expired := time.Now().Add(-time.Minute)
	var expiredBanID string
	bans := &MockBanStore{
		GetActiveByUserFunc: func(ctx context.Context, userID string) (*models.BanRecord, error) {
			return &models.BanRecord{
				ID:        "ban-1",
				UserID:    userID,
				BanType:   models.BanTypeTemporary,
				ExpiresAt: &expired,
				IsActive:  true,
			}, nil
		},
		ExpireFunc: func(ctx context.Context, banID string) error {
			expiredBanID = banID
			return nil
		},
	}
	svc := newBanService(bans, &MockUserStore{}, &MockEventEmitter{}, nil)

	info := svc.CheckBanStatus(context.Background(), "user-1")

	assert.False(t, info.IsBanned, "expired ban must read as not banned")
	assert.Equal(t, "ban-1", expiredBanID, "expired ban must be flipped inactive")
}

func TestBanService_CheckBanStatus_AppealPendingBlocksFurtherAppeals(t *testing.T) {
	bans := &MockBanStore{
		GetActiveByUserFunc: func(ctx context.Context, userID string) (*models.BanRecord, error) {
			return &models.BanRecord{
				ID:           "ban-1",
				UserID:       userID,
				BanType:      models.BanTypePermanent,
				IsActive:     true,
				AppealStatus: models.AppealStatusPending,
			}, nil
		},
	}
	svc := newBanService(bans, &MockUserStore{}, &MockEventEmitter{}, nil)

	info := svc.CheckBanStatus(context.Background(), "user-1")

	assert.True(t, info.IsBanned)
	assert.False(t, info.CanAppeal)
}

func TestBanService_CheckBanStatus_FailsOpenOnStoreError(t *testing.T) {
	bans := &MockBanStore{
		GetActiveByUserFunc: func(ctx context.Context, userID string) (*models.BanRecord, error) {
			return nil, models.ErrInternalServer
		},
	}
	svc := newBanService(bans, &MockUserStore{}, &MockEventEmitter{}, nil)

	info := svc.CheckBanStatus(context.Background(), "user-1")

	assert.False(t, info.IsBanned, "a store outage must not lock every user out")
}

func TestBanService_CheckBanStatus_CacheHitSkipsStore(t *testing.T) {
	storeCalls := 0
	bans := &MockBanStore{
		GetActiveByUserFunc: func(ctx context.Context, userID string) (*models.BanRecord, error) {
			storeCalls++
			return nil, models.ErrNotFound
		},
	}
	cache := NewMockBanStatusCache()
	svc := newBanService(bans, &MockUserStore{}, &MockEventEmitter{}, cache)

	first := svc.CheckBanStatus(context.Background(), "user-1")
	second := svc.CheckBanStatus(context.Background(), "user-1")

	assert.False(t, first.IsBanned)
	assert.False(t, second.IsBanned)
	assert.Equal(t, 1, storeCalls, "second lookup should be served from cache")
	assert.Equal(t, 1, cache.GetHitCount)
}

func TestBanService_UnbanUser_NoActiveBan(t *testing.T) {
	svc := newBanService(&MockBanStore{}, &MockUserStore{}, &MockEventEmitter{}, nil)

	ban, err := svc.UnbanUser(context.Background(), "user-1", "admin-console", "mistake")

	assert.ErrorIs(t, err, models.ErrNoActiveBan)
	assert.Nil(t, ban)
}

func TestBanService_UnbanUser_EmitsEventAndInvalidates(t *testing.T) {
	bans := &MockBanStore{
		DeactivateForUserFunc: func(ctx context.Context, userID string) (*models.BanRecord, error) {
			return &models.BanRecord{ID: "ban-1", UserID: userID, IsActive: false}, nil
		},
	}
	events := &MockEventEmitter{}
	cache := NewMockBanStatusCache()
	svc := newBanService(bans, &MockUserStore{}, events, cache)

	ban, err := svc.UnbanUser(context.Background(), "user-1", "admin-console", "appeal out of band")

	assert.NoError(t, err)
	assert.Equal(t, "ban-1", ban.ID)
	assert.Contains(t, cache.Invalidated, "user-1")
	assert.Len(t, events.Events, 1)
	assert.Equal(t, models.EventKindUnbanned, events.Events[0].Kind)
}

func TestBanService_SubmitAppeal_SecondAppealRejected(t *testing.T) {
	calls := 0
	now := time.Now()
	bans := &MockBanStore{
		SubmitAppealFunc: func(ctx context.Context, userID, message string) (*models.BanRecord, error) {
			calls++
			if calls == 1 {
				return &models.BanRecord{
					ID:            "ban-1",
					UserID:        userID,
					AppealStatus:  models.AppealStatusPending,
					AppealMessage: &message,
					AppealedAt:    &now,
				}, nil
			}
			return nil, models.ErrNoAppealableBan
		},
	}
	svc := newBanService(bans, &MockUserStore{}, &MockEventEmitter{}, nil)

	first, err := svc.SubmitAppeal(context.Background(), "user-1", "I was framed")
	assert.NoError(t, err)
	assert.Equal(t, models.AppealStatusPending, first.AppealStatus)

	_, err = svc.SubmitAppeal(context.Background(), "user-1", "let me try again")
	assert.ErrorIs(t, err, models.ErrNoAppealableBan)
}

func TestBanService_SubmitAppeal_EmptyMessage(t *testing.T) {
	svc := newBanService(&MockBanStore{}, &MockUserStore{}, &MockEventEmitter{}, nil)

	_, err := svc.SubmitAppeal(context.Background(), "user-1", "")

	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestBanService_ReviewAppeal_InvalidDecision(t *testing.T) {
	svc := newBanService(&MockBanStore{}, &MockUserStore{}, &MockEventEmitter{}, nil)

	_, err := svc.ReviewAppeal(context.Background(), "ban-1", "admin-console", "maybe", "undecided")

	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestBanService_ReviewAppeal_ApprovedEmitsAndInvalidates(t *testing.T) {
	bans := &MockBanStore{
		ReviewAppealFunc: func(ctx context.Context, banID, reviewedBy, decision, response string) (*models.BanRecord, error) {
			return &models.BanRecord{
				ID:           banID,
				UserID:       "user-1",
				IsActive:     false,
				AppealStatus: decision,
			}, nil
		},
	}
	events := &MockEventEmitter{}
	cache := NewMockBanStatusCache()
	svc := newBanService(bans, &MockUserStore{}, events, cache)

	ban, err := svc.ReviewAppeal(context.Background(), "ban-1", "admin-console", models.AppealStatusApproved, "verified")

	assert.NoError(t, err)
	assert.False(t, ban.IsActive)
	assert.Contains(t, cache.Invalidated, "user-1")
	assert.Len(t, events.Events, 1)
	assert.Equal(t, models.EventKindAppealReviewed, events.Events[0].Kind)
	assert.Equal(t, models.AppealStatusApproved, events.Events[0].Metadata["decision"])
}

func TestBanService_ReviewAppeal_NotPending(t *testing.T) {
	svc := newBanService(&MockBanStore{}, &MockUserStore{}, &MockEventEmitter{}, nil)

	_, err := svc.ReviewAppeal(context.Background(), "ban-1", "admin-console", models.AppealStatusRejected, "no")

	assert.ErrorIs(t, err, models.ErrAppealNotFound)
}
