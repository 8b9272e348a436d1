package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/BradenHooton/vigil/internal/auth"
	"github.com/BradenHooton/vigil/internal/models"
	"github.com/BradenHooton/vigil/internal/services"
	pkghttp "github.com/BradenHooton/vigil/pkg/http"
)

// AdminBanService defines the admin slice of the ban lifecycle
type AdminBanService interface {
	BanUser(ctx context.Context, input services.BanUserInput) (*models.BanRecord, error)
	UnbanUser(ctx context.Context, userID, unbannedBy, reason string) (*models.BanRecord, error)
	GetBanHistory(ctx context.Context, userID string) ([]*models.BanRecord, error)
	GetPendingAppeals(ctx context.Context) ([]*models.BanRecord, error)
	ReviewAppeal(ctx context.Context, banID, reviewedBy, decision, response string) (*models.BanRecord, error)
}

// AdminLinkService defines the admin surface over detected links
type AdminLinkService interface {
	GetLinksForUser(ctx context.Context, userID string) ([]*models.MultiAccountLink, error)
	ListLinks(ctx context.Context, status string, limit, offset int) ([]*models.MultiAccountLink, error)
	ReviewLink(ctx context.Context, linkID, reviewedBy, status string, notes *string) (*models.MultiAccountLink, error)
}

// AdminEventService defines the read surface over the security event log
type AdminEventService interface {
	ListEvents(ctx context.Context, kind string, limit, offset int) ([]*models.SecurityEvent, error)
	ListEventsForUser(ctx context.Context, userID string, limit, offset int) ([]*models.SecurityEvent, error)
}

// AdminHandler handles the trust & safety console endpoints
type AdminHandler struct {
	bans   AdminBanService
	links  AdminLinkService
	events AdminEventService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(bans AdminBanService, links AdminLinkService, events AdminEventService) *AdminHandler {
	return &AdminHandler{
		bans:   bans,
		links:  links,
		events: events,
	}
}

// Request/Response DTOs

// BanDurationRequest is the wire form of a ban length
type BanDurationRequest struct {
	Type  string `json:"type" validate:"required,oneof=hours days weeks months years permanent"`
	Value int    `json:"value" validate:"omitempty,gte=1"`
}

// BanUserRequest represents the request body for issuing a ban
type BanUserRequest struct {
	BanType       string             `json:"ban_type" validate:"required,oneof=temporary permanent shadow"`
	Reason        string             `json:"reason" validate:"required,min=3,max=512"`
	InternalNotes *string            `json:"internal_notes" validate:"omitempty,max=2000"`
	Duration      BanDurationRequest `json:"duration" validate:"required"`
}

// UnbanUserRequest represents the request body for lifting a ban
type UnbanUserRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=512"`
}

// ReviewAppealRequest represents the request body for deciding an appeal
type ReviewAppealRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approved rejected"`
	Response string `json:"response" validate:"required,min=3,max=2000"`
}

// ReviewLinkRequest represents the request body for reviewing a link
type ReviewLinkRequest struct {
	Status string  `json:"status" validate:"required,oneof=confirmed allowed false_positive"`
	Notes  *string `json:"notes" validate:"omitempty,max=2000"`
}

// RegisterRoutes registers admin routes with the chi router
func (h *AdminHandler) RegisterRoutes(router chi.Router) {
	router.Route("/admin", func(r chi.Router) {
		r.Route("/users/{id}", func(r chi.Router) {
			r.Post("/ban", h.BanUser)
			r.Delete("/ban", h.UnbanUser)
			r.Get("/bans", h.GetBanHistory)
			r.Get("/links", h.GetUserLinks)
			r.Get("/events", h.GetUserEvents)
		})
		r.Get("/appeals", h.ListPendingAppeals)
		r.Post("/appeals/{banID}/review", h.ReviewAppeal)
		r.Get("/links", h.ListLinks)
		r.Post("/links/{linkID}/review", h.ReviewLink)
		r.Get("/events", h.ListEvents)
	})
}

// BanUser issues a ban. A new ban supersedes any existing active one.
func (h *AdminHandler) BanUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		pkghttp.WriteBadRequest(w, "User ID is required")
		return
	}

	var req BanUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	duration, err := models.ParseBanDuration(req.Duration.Type, req.Duration.Value)
	if err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	ban, err := h.bans.BanUser(r.Context(), services.BanUserInput{
		UserID:        userID,
		BannedBy:      actorFromContext(r),
		BanType:       req.BanType,
		Reason:        req.Reason,
		InternalNotes: req.InternalNotes,
		Duration:      duration,
	})
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			pkghttp.WriteNotFound(w, "User not found")
			return
		}
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, "Invalid ban request")
			return
		}
		pkghttp.WriteInternalError(w, "Failed to ban user")
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, ban)
}

// UnbanUser lifts the user's active ban.
func (h *AdminHandler) UnbanUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		pkghttp.WriteBadRequest(w, "User ID is required")
		return
	}

	var req UnbanUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	ban, err := h.bans.UnbanUser(r.Context(), userID, actorFromContext(r), req.Reason)
	if err != nil {
		if errors.Is(err, models.ErrNoActiveBan) {
			pkghttp.WriteNotFound(w, "User has no active ban")
			return
		}
		pkghttp.WriteInternalError(w, "Failed to unban user")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, ban)
}

// GetBanHistory returns the user's full ban history.
func (h *AdminHandler) GetBanHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		pkghttp.WriteBadRequest(w, "User ID is required")
		return
	}

	bans, err := h.bans.GetBanHistory(r.Context(), userID)
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to load ban history")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"bans":  bans,
		"total": len(bans),
	})
}

// ListPendingAppeals returns the appeal review queue, oldest first.
func (h *AdminHandler) ListPendingAppeals(w http.ResponseWriter, r *http.Request) {
	appeals, err := h.bans.GetPendingAppeals(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to load pending appeals")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"appeals": appeals,
		"total":   len(appeals),
	})
}

// ReviewAppeal decides a pending appeal.
func (h *AdminHandler) ReviewAppeal(w http.ResponseWriter, r *http.Request) {
	banID := chi.URLParam(r, "banID")
	if banID == "" {
		pkghttp.WriteBadRequest(w, "Ban ID is required")
		return
	}

	var req ReviewAppealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	ban, err := h.bans.ReviewAppeal(r.Context(), banID, actorFromContext(r), req.Decision, req.Response)
	if err != nil {
		if errors.Is(err, models.ErrAppealNotFound) {
			pkghttp.WriteNotFound(w, "No pending appeal for this ban")
			return
		}
		pkghttp.WriteInternalError(w, "Failed to review appeal")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, ban)
}

// GetUserLinks returns links involving the user on either side.
func (h *AdminHandler) GetUserLinks(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		pkghttp.WriteBadRequest(w, "User ID is required")
		return
	}

	links, err := h.links.GetLinksForUser(r.Context(), userID)
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to load links")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"links": links,
		"total": len(links),
	})
}

// ListLinks returns detected links, optionally filtered by status.
func (h *AdminHandler) ListLinks(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	limit, offset := parsePagination(r)

	links, err := h.links.ListLinks(r.Context(), status, limit, offset)
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, "Unknown link status")
			return
		}
		pkghttp.WriteInternalError(w, "Failed to load links")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"links": links,
		"total": len(links),
	})
}

// ReviewLink records a decision on a detected link.
func (h *AdminHandler) ReviewLink(w http.ResponseWriter, r *http.Request) {
	linkID := chi.URLParam(r, "linkID")
	if linkID == "" {
		pkghttp.WriteBadRequest(w, "Link ID is required")
		return
	}

	var req ReviewLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	link, err := h.links.ReviewLink(r.Context(), linkID, actorFromContext(r), req.Status, req.Notes)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Link not found")
			return
		}
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, "Invalid review status")
			return
		}
		pkghttp.WriteInternalError(w, "Failed to review link")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, link)
}

// ListEvents returns security events, optionally filtered by kind.
func (h *AdminHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	limit, offset := parsePagination(r)

	events, err := h.events.ListEvents(r.Context(), kind, limit, offset)
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to load events")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"total":  len(events),
	})
}

// GetUserEvents returns security events concerning one user.
func (h *AdminHandler) GetUserEvents(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		pkghttp.WriteBadRequest(w, "User ID is required")
		return
	}

	limit, offset := parsePagination(r)

	events, err := h.events.ListEventsForUser(r.Context(), userID, limit, offset)
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to load events")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"total":  len(events),
	})
}

// actorFromContext identifies the calling service for the audit trail.
func actorFromContext(r *http.Request) string {
	if claims := auth.GetServiceFromContext(r); claims != nil {
		return claims.Subject
	}
	return "unknown"
}

func parsePagination(r *http.Request) (limit, offset int) {
	limit = 50
	offset = 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			offset = n
		}
	}
	return limit, offset
}
