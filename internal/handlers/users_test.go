package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradenHooton/vigil/internal/models"
)

type stubBanStatusService struct {
	info      *models.BanInfo
	appealed  *models.BanRecord
	appealErr error
	seenUser  string
	seenMsg   string
}

func (s *stubBanStatusService) CheckBanStatus(ctx context.Context, userID string) *models.BanInfo {
	s.seenUser = userID
	return s.info
}

func (s *stubBanStatusService) SubmitAppeal(ctx context.Context, userID, message string) (*models.BanRecord, error) {
	s.seenUser = userID
	s.seenMsg = message
	return s.appealed, s.appealErr
}

func newUsersRouter(svc BanStatusService) chi.Router {
	router := chi.NewRouter()
	NewUsersHandler(svc).RegisterRoutes(router)
	return router
}

func TestGetBanStatus_NotBanned(t *testing.T) {
	svc := &stubBanStatusService{info: &models.BanInfo{IsBanned: false}}
	router := newUsersRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/users/user-1/ban-status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", svc.seenUser)

	var info models.BanInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.False(t, info.IsBanned)
}

func TestGetBanStatus_ActiveBan(t *testing.T) {
	expires := time.Now().Add(24 * time.Hour).UTC()
	svc := &stubBanStatusService{info: &models.BanInfo{
		IsBanned:  true,
		BanType:   models.BanTypeTemporary,
		Reason:    "spamming",
		ExpiresAt: &expires,
		CanAppeal: true,
	}}
	router := newUsersRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/users/user-1/ban-status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var info models.BanInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.True(t, info.IsBanned)
	assert.Equal(t, models.BanTypeTemporary, info.BanType)
	assert.True(t, info.CanAppeal)
	require.NotNil(t, info.ExpiresAt)
}

func TestSubmitAppeal_Created(t *testing.T) {
	appealedAt := time.Now().UTC()
	svc := &stubBanStatusService{appealed: &models.BanRecord{
		ID:           "ban-1",
		UserID:       "user-1",
		AppealStatus: models.AppealStatusPending,
		AppealedAt:   &appealedAt,
	}}
	router := newUsersRouter(svc)

	rec := postJSON(t, router, "/users/user-1/appeal", SubmitAppealRequest{
		Message: "This ban was a mistake, I shared the account with nobody.",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "user-1", svc.seenUser)

	var resp AppealResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ban-1", resp.BanID)
	assert.Equal(t, models.AppealStatusPending, resp.AppealStatus)
	assert.NotEmpty(t, resp.AppealedAt)
}

func TestSubmitAppeal_NoAppealableBanIs409(t *testing.T) {
	svc := &stubBanStatusService{appealErr: models.ErrNoAppealableBan}
	router := newUsersRouter(svc)

	rec := postJSON(t, router, "/users/user-1/appeal", SubmitAppealRequest{
		Message: "This ban was a mistake, please reconsider.",
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSubmitAppeal_ShortMessageRejected(t *testing.T) {
	svc := &stubBanStatusService{}
	router := newUsersRouter(svc)

	rec := postJSON(t, router, "/users/user-1/appeal", SubmitAppealRequest{Message: "unfair"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.seenMsg, "validation must fail before the service is called")
}
