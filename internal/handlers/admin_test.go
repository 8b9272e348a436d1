package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradenHooton/vigil/internal/models"
	"github.com/BradenHooton/vigil/internal/services"
)

type stubAdminBanService struct {
	banInput  services.BanUserInput
	banErr    error
	unbanErr  error
	reviewErr error
	history   []*models.BanRecord
	appeals   []*models.BanRecord
}

func (s *stubAdminBanService) BanUser(ctx context.Context, input services.BanUserInput) (*models.BanRecord, error) {
	s.banInput = input
	if s.banErr != nil {
		return nil, s.banErr
	}
	return &models.BanRecord{ID: "ban-1", UserID: input.UserID, BanType: input.BanType, IsActive: true}, nil
}

func (s *stubAdminBanService) UnbanUser(ctx context.Context, userID, unbannedBy, reason string) (*models.BanRecord, error) {
	if s.unbanErr != nil {
		return nil, s.unbanErr
	}
	return &models.BanRecord{ID: "ban-1", UserID: userID}, nil
}

func (s *stubAdminBanService) GetBanHistory(ctx context.Context, userID string) ([]*models.BanRecord, error) {
	return s.history, nil
}

func (s *stubAdminBanService) GetPendingAppeals(ctx context.Context) ([]*models.BanRecord, error) {
	return s.appeals, nil
}

func (s *stubAdminBanService) ReviewAppeal(ctx context.Context, banID, reviewedBy, decision, response string) (*models.BanRecord, error) {
	if s.reviewErr != nil {
		return nil, s.reviewErr
	}
	return &models.BanRecord{ID: banID, AppealStatus: decision}, nil
}

type stubAdminLinkService struct {
	links     []*models.MultiAccountLink
	listErr   error
	reviewErr error
	seenLimit int
}

func (s *stubAdminLinkService) GetLinksForUser(ctx context.Context, userID string) ([]*models.MultiAccountLink, error) {
	return s.links, nil
}

func (s *stubAdminLinkService) ListLinks(ctx context.Context, status string, limit, offset int) ([]*models.MultiAccountLink, error) {
	s.seenLimit = limit
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.links, nil
}

func (s *stubAdminLinkService) ReviewLink(ctx context.Context, linkID, reviewedBy, status string, notes *string) (*models.MultiAccountLink, error) {
	if s.reviewErr != nil {
		return nil, s.reviewErr
	}
	return &models.MultiAccountLink{ID: linkID, Status: status}, nil
}

type stubAdminEventService struct {
	events []*models.SecurityEvent
}

func (s *stubAdminEventService) ListEvents(ctx context.Context, kind string, limit, offset int) ([]*models.SecurityEvent, error) {
	return s.events, nil
}

func (s *stubAdminEventService) ListEventsForUser(ctx context.Context, userID string, limit, offset int) ([]*models.SecurityEvent, error) {
	return s.events, nil
}

func newAdminRouter(bans *stubAdminBanService, links *stubAdminLinkService, events *stubAdminEventService) chi.Router {
	router := chi.NewRouter()
	NewAdminHandler(bans, links, events).RegisterRoutes(router)
	return router
}

func TestBanUser_TemporaryBanCreated(t *testing.T) {
	bans := &stubAdminBanService{}
	router := newAdminRouter(bans, &stubAdminLinkService{}, &stubAdminEventService{})

	rec := postJSON(t, router, "/admin/users/user-1/ban", BanUserRequest{
		BanType:  models.BanTypeTemporary,
		Reason:   "coordinated spam",
		Duration: BanDurationRequest{Type: "days", Value: 7},
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "user-1", bans.banInput.UserID)
	assert.Equal(t, models.BanTypeTemporary, bans.banInput.BanType)
	require.NotNil(t, bans.banInput.Duration)
	assert.NotNil(t, bans.banInput.Duration.ExpiresFrom(time.Now()))
}

func TestBanUser_PermanentDurationParses(t *testing.T) {
	bans := &stubAdminBanService{}
	router := newAdminRouter(bans, &stubAdminLinkService{}, &stubAdminEventService{})

	rec := postJSON(t, router, "/admin/users/user-1/ban", BanUserRequest{
		BanType:  models.BanTypePermanent,
		Reason:   "ban evasion",
		Duration: BanDurationRequest{Type: "permanent"},
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Nil(t, bans.banInput.Duration.ExpiresFrom(time.Now()))
}

func TestBanUser_InvalidDurationType(t *testing.T) {
	router := newAdminRouter(&stubAdminBanService{}, &stubAdminLinkService{}, &stubAdminEventService{})

	rec := postJSON(t, router, "/admin/users/user-1/ban", map[string]any{
		"ban_type": "temporary",
		"reason":   "coordinated spam",
		"duration": map[string]any{"type": "fortnights", "value": 2},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBanUser_ZeroValueForTimedDuration(t *testing.T) {
	router := newAdminRouter(&stubAdminBanService{}, &stubAdminLinkService{}, &stubAdminEventService{})

	rec := postJSON(t, router, "/admin/users/user-1/ban", map[string]any{
		"ban_type": "temporary",
		"reason":   "coordinated spam",
		"duration": map[string]any{"type": "days"},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBanUser_UnknownUserIs404(t *testing.T) {
	bans := &stubAdminBanService{banErr: models.ErrUserNotFound}
	router := newAdminRouter(bans, &stubAdminLinkService{}, &stubAdminEventService{})

	rec := postJSON(t, router, "/admin/users/ghost/ban", BanUserRequest{
		BanType:  models.BanTypeTemporary,
		Reason:   "coordinated spam",
		Duration: BanDurationRequest{Type: "hours", Value: 12},
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnbanUser_NoActiveBanIs404(t *testing.T) {
	bans := &stubAdminBanService{unbanErr: models.ErrNoActiveBan}
	router := newAdminRouter(bans, &stubAdminLinkService{}, &stubAdminEventService{})

	req := httptest.NewRequest(http.MethodDelete, "/admin/users/user-1/ban", strings.NewReader(`{"reason":"appeal approved"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetBanHistory_ReturnsTotal(t *testing.T) {
	bans := &stubAdminBanService{history: []*models.BanRecord{{ID: "ban-1"}, {ID: "ban-2"}}}
	router := newAdminRouter(bans, &stubAdminLinkService{}, &stubAdminEventService{})

	req := httptest.NewRequest(http.MethodGet, "/admin/users/user-1/bans", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Total)
}

func TestReviewAppeal_InvalidDecisionRejected(t *testing.T) {
	router := newAdminRouter(&stubAdminBanService{}, &stubAdminLinkService{}, &stubAdminEventService{})

	rec := postJSON(t, router, "/admin/appeals/ban-1/review", map[string]any{
		"decision": "maybe",
		"response": "we will think about it",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReviewAppeal_NoPendingAppealIs404(t *testing.T) {
	bans := &stubAdminBanService{reviewErr: models.ErrAppealNotFound}
	router := newAdminRouter(bans, &stubAdminLinkService{}, &stubAdminEventService{})

	rec := postJSON(t, router, "/admin/appeals/ban-1/review", ReviewAppealRequest{
		Decision: "approved",
		Response: "verified with support, lifting the ban",
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListLinks_UnknownStatusIs400(t *testing.T) {
	links := &stubAdminLinkService{listErr: models.ErrBadRequest}
	router := newAdminRouter(&stubAdminBanService{}, links, &stubAdminEventService{})

	req := httptest.NewRequest(http.MethodGet, "/admin/links?status=bogus", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListLinks_PaginationForwarded(t *testing.T) {
	links := &stubAdminLinkService{}
	router := newAdminRouter(&stubAdminBanService{}, links, &stubAdminEventService{})

	req := httptest.NewRequest(http.MethodGet, "/admin/links?limit=25", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 25, links.seenLimit)
}

func TestReviewLink_DetectedStatusRejected(t *testing.T) {
	router := newAdminRouter(&stubAdminBanService{}, &stubAdminLinkService{}, &stubAdminEventService{})

	rec := postJSON(t, router, "/admin/links/link-1/review", map[string]any{
		"status": "detected",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReviewLink_NotFound(t *testing.T) {
	links := &stubAdminLinkService{reviewErr: models.ErrNotFound}
	router := newAdminRouter(&stubAdminBanService{}, links, &stubAdminEventService{})

	rec := postJSON(t, router, "/admin/links/link-1/review", ReviewLinkRequest{
		Status: models.LinkStatusFalsePositive,
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListEvents_ReturnsEvents(t *testing.T) {
	events := &stubAdminEventService{events: []*models.SecurityEvent{
		{ID: "ev-1", Kind: models.EventKindBanned},
	}}
	router := newAdminRouter(&stubAdminBanService{}, &stubAdminLinkService{}, events)

	req := httptest.NewRequest(http.MethodGet, "/admin/events?kind=account.banned", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Total)
}
