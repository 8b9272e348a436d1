package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/BradenHooton/vigil/internal/models"
	pkghttp "github.com/BradenHooton/vigil/pkg/http"
)

// BanStatusService defines the user-facing slice of the ban lifecycle
type BanStatusService interface {
	CheckBanStatus(ctx context.Context, userID string) *models.BanInfo
	SubmitAppeal(ctx context.Context, userID, message string) (*models.BanRecord, error)
}

// UsersHandler handles the user-scoped endpoints the auth gate calls
type UsersHandler struct {
	bans BanStatusService
}

// NewUsersHandler creates a new UsersHandler
func NewUsersHandler(bans BanStatusService) *UsersHandler {
	return &UsersHandler{
		bans: bans,
	}
}

// Request/Response DTOs

// SubmitAppealRequest represents the request body for filing a ban appeal
type SubmitAppealRequest struct {
	Message string `json:"message" validate:"required,min=10,max=2000"`
}

// AppealResponse represents the appeal state after submission
type AppealResponse struct {
	BanID        string `json:"ban_id"`
	AppealStatus string `json:"appeal_status"`
	AppealedAt   string `json:"appealed_at"`
}

// RegisterRoutes registers user-scoped routes with the chi router
func (h *UsersHandler) RegisterRoutes(router chi.Router) {
	router.Route("/users/{id}", func(r chi.Router) {
		r.Get("/ban-status", h.GetBanStatus)
		r.Post("/appeal", h.SubmitAppeal)
	})
}

// GetBanStatus answers the auth gate's per-login check.
func (h *UsersHandler) GetBanStatus(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		pkghttp.WriteBadRequest(w, "User ID is required")
		return
	}

	info := h.bans.CheckBanStatus(r.Context(), userID)
	pkghttp.WriteJSON(w, http.StatusOK, info)
}

// SubmitAppeal files an appeal against the user's active ban.
func (h *UsersHandler) SubmitAppeal(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		pkghttp.WriteBadRequest(w, "User ID is required")
		return
	}

	var req SubmitAppealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	ban, err := h.bans.SubmitAppeal(r.Context(), userID, req.Message)
	if err != nil {
		if errors.Is(err, models.ErrNoAppealableBan) {
			pkghttp.WriteConflict(w, "No active ban accepting an appeal")
			return
		}
		pkghttp.WriteInternalError(w, "Failed to submit appeal")
		return
	}

	resp := AppealResponse{
		BanID:        ban.ID,
		AppealStatus: ban.AppealStatus,
		AppealedAt:   ban.AppealedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	pkghttp.WriteJSON(w, http.StatusCreated, resp)
}
