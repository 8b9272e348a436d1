package background

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stubBanStore struct {
	dueUsers []string
	err      error
	calls    int
}

func (s *stubBanStore) ExpireDue(ctx context.Context, now time.Time) ([]string, error) {
	s.calls++
	return s.dueUsers, s.err
}

type stubAttemptStore struct {
	deleted int64
	cutoffs []time.Time
}

func (s *stubAttemptStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	s.cutoffs = append(s.cutoffs, cutoff)
	return s.deleted, nil
}

type stubInvalidator struct {
	invalidated []string
}

func (s *stubInvalidator) Invalidate(ctx context.Context, userID string) {
	s.invalidated = append(s.invalidated, userID)
}

func TestSweeper_ExpiresDueBansAndInvalidatesCache(t *testing.T) {
	bans := &stubBanStore{dueUsers: []string{"user-1", "user-2"}}
	attempts := &stubAttemptStore{deleted: 3}
	cache := &stubInvalidator{}

	s := NewSweeper(bans, attempts, cache, slog.Default(), time.Hour, 90*24*time.Hour)
	s.runSweep(context.Background())

	assert.Equal(t, 1, bans.calls)
	assert.Equal(t, []string{"user-1", "user-2"}, cache.invalidated)
}

func TestSweeper_RetentionCutoff(t *testing.T) {
	attempts := &stubAttemptStore{}
	retention := 90 * 24 * time.Hour

	s := NewSweeper(&stubBanStore{}, attempts, nil, slog.Default(), time.Hour, retention)

	before := time.Now().Add(-retention)
	s.runSweep(context.Background())
	after := time.Now().Add(-retention)

	assert.Len(t, attempts.cutoffs, 1)
	cutoff := attempts.cutoffs[0]
	assert.False(t, cutoff.Before(before))
	assert.False(t, cutoff.After(after))
}

func TestSweeper_BanStoreErrorDoesNotSkipRetention(t *testing.T) {
	bans := &stubBanStore{err: context.DeadlineExceeded}
	attempts := &stubAttemptStore{}

	s := NewSweeper(bans, attempts, nil, slog.Default(), time.Hour, time.Hour)
	s.runSweep(context.Background())

	assert.Len(t, attempts.cutoffs, 1, "retention purge runs even when ban expiry fails")
}

func TestSweeper_StopTerminatesLoop(t *testing.T) {
	s := NewSweeper(&stubBanStore{}, &stubAttemptStore{}, nil, slog.Default(), time.Hour, time.Hour)

	done := make(chan struct{})
	go func() {
		s.Start(context.Background())
		close(done)
	}()

	s.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}
