package services

import (
	"context"
	"time"

	"github.com/BradenHooton/vigil/internal/models"
)

// MockBanStore implements BanStore for testing
type MockBanStore struct {
	CreateFunc             func(ctx context.Context, ban *models.BanRecord) (*models.BanRecord, error)
	GetActiveByUserFunc    func(ctx context.Context, userID string) (*models.BanRecord, error)
	DeactivateForUserFunc  func(ctx context.Context, userID string) (*models.BanRecord, error)
	ExpireFunc             func(ctx context.Context, banID string) error
	SubmitAppealFunc       func(ctx context.Context, userID, message string) (*models.BanRecord, error)
	ReviewAppealFunc       func(ctx context.Context, banID, reviewedBy, decision, response string) (*models.BanRecord, error)
	ListByUserFunc         func(ctx context.Context, userID string) ([]*models.BanRecord, error)
	ListPendingAppealsFunc func(ctx context.Context) ([]*models.BanRecord, error)
}

func (m *MockBanStore) Create(ctx context.Context, ban *models.BanRecord) (*models.BanRecord, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, ban)
	}
	return nil, models.ErrInternalServer
}

func (m *MockBanStore) GetActiveByUser(ctx context.Context, userID string) (*models.BanRecord, error) {
	if m.GetActiveByUserFunc != nil {
		return m.GetActiveByUserFunc(ctx, userID)
	}
	return nil, models.ErrNotFound
}

func (m *MockBanStore) DeactivateForUser(ctx context.Context, userID string) (*models.BanRecord, error) {
	if m.DeactivateForUserFunc != nil {
		return m.DeactivateForUserFunc(ctx, userID)
	}
	return nil, models.ErrNoActiveBan
}

func (m *MockBanStore) Expire(ctx context.Context, banID string) error {
	if m.ExpireFunc != nil {
		return m.ExpireFunc(ctx, banID)
	}
	return nil
}

func (m *MockBanStore) SubmitAppeal(ctx context.Context, userID, message string) (*models.BanRecord, error) {
	if m.SubmitAppealFunc != nil {
		return m.SubmitAppealFunc(ctx, userID, message)
	}
	return nil, models.ErrNoAppealableBan
}

func (m *MockBanStore) ReviewAppeal(ctx context.Context, banID, reviewedBy, decision, response string) (*models.BanRecord, error) {
	if m.ReviewAppealFunc != nil {
		return m.ReviewAppealFunc(ctx, banID, reviewedBy, decision, response)
	}
	return nil, models.ErrAppealNotFound
}

func (m *MockBanStore) ListByUser(ctx context.Context, userID string) ([]*models.BanRecord, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	return []*models.BanRecord{}, nil
}

func (m *MockBanStore) ListPendingAppeals(ctx context.Context) ([]*models.BanRecord, error) {
	if m.ListPendingAppealsFunc != nil {
		return m.ListPendingAppealsFunc(ctx)
	}
	return []*models.BanRecord{}, nil
}

// MockUserStore implements UserStore for testing
type MockUserStore struct {
	ExistsFunc func(ctx context.Context, id string) (bool, error)
}

func (m *MockUserStore) Exists(ctx context.Context, id string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, id)
	}
	return true, nil
}

// MockEventEmitter records emitted events for assertions
type MockEventEmitter struct {
	Events []EmittedEvent
}

type EmittedEvent struct {
	Kind     string
	UserID   *string
	ActorID  *string
	Metadata models.EventMetadata
}

func (m *MockEventEmitter) Emit(ctx context.Context, kind string, userID, actorID *string, metadata models.EventMetadata) {
	m.Events = append(m.Events, EmittedEvent{Kind: kind, UserID: userID, ActorID: actorID, Metadata: metadata})
}

// MockBanStatusCache implements BanStatusCache for testing
type MockBanStatusCache struct {
	entries      map[string]*models.BanInfo
	Invalidated  []string
	SetCount     int
	GetHitCount  int
	GetMissCount int
}

func NewMockBanStatusCache() *MockBanStatusCache {
	return &MockBanStatusCache{entries: make(map[string]*models.BanInfo)}
}

func (m *MockBanStatusCache) Get(ctx context.Context, userID string) (*models.BanInfo, bool) {
	info, ok := m.entries[userID]
	if ok {
		m.GetHitCount++
	} else {
		m.GetMissCount++
	}
	return info, ok
}

func (m *MockBanStatusCache) Set(ctx context.Context, userID string, info *models.BanInfo) {
	m.SetCount++
	m.entries[userID] = info
}

func (m *MockBanStatusCache) Invalidate(ctx context.Context, userID string) {
	m.Invalidated = append(m.Invalidated, userID)
	delete(m.entries, userID)
}

// MockLoginAttemptStore implements LoginAttemptStore and
// CorrelationAttemptStore for testing
type MockLoginAttemptStore struct {
	Recorded []*models.LoginAttempt

	RecordFunc                     func(ctx context.Context, attempt *models.LoginAttempt) error
	DistinctUsersByIPHashFunc      func(ctx context.Context, ipHash, excludeUserID string) ([]string, error)
	CountSuccessfulByUserAndIPFunc func(ctx context.Context, userID, ipHash string) (int, error)
}

func (m *MockLoginAttemptStore) Record(ctx context.Context, attempt *models.LoginAttempt) error {
	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, attempt)
	}
	m.Recorded = append(m.Recorded, attempt)
	return nil
}

func (m *MockLoginAttemptStore) DistinctUsersByIPHash(ctx context.Context, ipHash, excludeUserID string) ([]string, error) {
	if m.DistinctUsersByIPHashFunc != nil {
		return m.DistinctUsersByIPHashFunc(ctx, ipHash, excludeUserID)
	}
	return []string{}, nil
}

func (m *MockLoginAttemptStore) CountSuccessfulByUserAndIP(ctx context.Context, userID, ipHash string) (int, error) {
	if m.CountSuccessfulByUserAndIPFunc != nil {
		return m.CountSuccessfulByUserAndIPFunc(ctx, userID, ipHash)
	}
	return 0, nil
}

// MockFingerprintStore implements FingerprintStore and
// CorrelationFingerprintStore for testing
type MockFingerprintStore struct {
	UpsertFunc       func(ctx context.Context, fp *models.DeviceFingerprint) (*models.DeviceFingerprint, error)
	OwnersByHashFunc func(ctx context.Context, hash, excludeUserID string) ([]string, error)
	GetByIDFunc      func(ctx context.Context, id string) (*models.DeviceFingerprint, error)
}

func (m *MockFingerprintStore) Upsert(ctx context.Context, fp *models.DeviceFingerprint) (*models.DeviceFingerprint, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, fp)
	}
	stored := *fp
	stored.ID = "fp-1"
	stored.FirstSeenAt = time.Now()
	stored.LastSeenAt = stored.FirstSeenAt
	return &stored, nil
}

func (m *MockFingerprintStore) OwnersByHash(ctx context.Context, hash, excludeUserID string) ([]string, error) {
	if m.OwnersByHashFunc != nil {
		return m.OwnersByHashFunc(ctx, hash, excludeUserID)
	}
	return []string{}, nil
}

func (m *MockFingerprintStore) GetByID(ctx context.Context, id string) (*models.DeviceFingerprint, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

// MockLinkStore implements LinkStore for testing
type MockLinkStore struct {
	Inserted []*models.MultiAccountLink

	InsertIfAbsentFunc func(ctx context.Context, link *models.MultiAccountLink) (bool, *models.MultiAccountLink, error)
	GetByIDFunc        func(ctx context.Context, id string) (*models.MultiAccountLink, error)
	GetByUserFunc      func(ctx context.Context, userID string) ([]*models.MultiAccountLink, error)
	ListFunc           func(ctx context.Context, status string, limit, offset int) ([]*models.MultiAccountLink, error)
	UpdateStatusFunc   func(ctx context.Context, linkID, reviewedBy, status string, notes *string) (*models.MultiAccountLink, error)
}

func (m *MockLinkStore) InsertIfAbsent(ctx context.Context, link *models.MultiAccountLink) (bool, *models.MultiAccountLink, error) {
	if m.InsertIfAbsentFunc != nil {
		return m.InsertIfAbsentFunc(ctx, link)
	}
	stored := *link
	stored.ID = "link-1"
	stored.Status = models.LinkStatusDetected
	stored.CreatedAt = time.Now()
	m.Inserted = append(m.Inserted, &stored)
	return true, &stored, nil
}

func (m *MockLinkStore) GetByID(ctx context.Context, id string) (*models.MultiAccountLink, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockLinkStore) GetByUser(ctx context.Context, userID string) ([]*models.MultiAccountLink, error) {
	if m.GetByUserFunc != nil {
		return m.GetByUserFunc(ctx, userID)
	}
	return []*models.MultiAccountLink{}, nil
}

func (m *MockLinkStore) List(ctx context.Context, status string, limit, offset int) ([]*models.MultiAccountLink, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, status, limit, offset)
	}
	return []*models.MultiAccountLink{}, nil
}

func (m *MockLinkStore) UpdateStatus(ctx context.Context, linkID, reviewedBy, status string, notes *string) (*models.MultiAccountLink, error) {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, linkID, reviewedBy, status, notes)
	}
	return nil, models.ErrNotFound
}

// MockQueue implements CorrelationQueue for testing
type MockQueue struct {
	Jobs   []CorrelationJob
	Reject bool
}

func (m *MockQueue) Enqueue(job CorrelationJob) bool {
	if m.Reject {
		return false
	}
	m.Jobs = append(m.Jobs, job)
	return true
}
