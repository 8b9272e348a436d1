package background

import (
	"context"
	"log/slog"
	"time"
)

// SweeperBanStore deactivates bans whose expiry has passed.
type SweeperBanStore interface {
	ExpireDue(ctx context.Context, now time.Time) ([]string, error)
}

// SweeperAttemptStore purges login attempts past the retention window.
type SweeperAttemptStore interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// StatusInvalidator drops cached ban statuses for swept users.
type StatusInvalidator interface {
	Invalidate(ctx context.Context, userID string)
}

// Sweeper periodically expires due bans and purges login attempts past
// retention. Lazy expiry on the read path keeps ban status correct between
// sweeps; the sweeper exists so expired bans do not linger active in the
// database and retention actually holds.
type Sweeper struct {
	bans           SweeperBanStore
	attempts       SweeperAttemptStore
	cache          StatusInvalidator
	logger         *slog.Logger
	interval       time.Duration
	loginRetention time.Duration
	stopCh         chan struct{}
}

func NewSweeper(
	bans SweeperBanStore,
	attempts SweeperAttemptStore,
	cache StatusInvalidator,
	logger *slog.Logger,
	interval time.Duration,
	loginRetention time.Duration,
) *Sweeper {
	return &Sweeper{
		bans:           bans,
		attempts:       attempts,
		cache:          cache,
		logger:         logger,
		interval:       interval,
		loginRetention: loginRetention,
		stopCh:         make(chan struct{}),
	}
}

// Start begins the periodic sweep task
func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run immediately on startup
	s.runSweep(ctx)

	for {
		select {
		case <-ticker.C:
			s.runSweep(ctx)
		case <-s.stopCh:
			s.logger.Info("sweeper stopped")
			return
		case <-ctx.Done():
			s.logger.Info("sweeper context cancelled")
			return
		}
	}
}

func (s *Sweeper) runSweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	s.expireDueBans(sweepCtx)
	s.purgeExpiredAttempts(sweepCtx)
}

func (s *Sweeper) expireDueBans(ctx context.Context) {
	userIDs, err := s.bans.ExpireDue(ctx, time.Now())
	if err != nil {
		s.logger.Error("failed to expire due bans", slog.Any("error", err))
		return
	}

	for _, userID := range userIDs {
		if s.cache != nil {
			s.cache.Invalidate(ctx, userID)
		}
	}

	if len(userIDs) > 0 {
		s.logger.Info("expired due bans", slog.Int("count", len(userIDs)))
	}
}

func (s *Sweeper) purgeExpiredAttempts(ctx context.Context) {
	cutoff := time.Now().Add(-s.loginRetention)

	rowsDeleted, err := s.attempts.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Error("failed to purge expired login attempts", slog.Any("error", err))
		return
	}

	if rowsDeleted > 0 {
		s.logger.Info("login attempt retention sweep completed", slog.Int64("rows_deleted", rowsDeleted))
	}
}

// Stop signals the sweeper to stop
func (s *Sweeper) Stop() {
	close(s.stopCh)
}
