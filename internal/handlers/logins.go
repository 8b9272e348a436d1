package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/BradenHooton/vigil/internal/models"
	"github.com/BradenHooton/vigil/internal/services"
	pkghttp "github.com/BradenHooton/vigil/pkg/http"
)

// LoginRecorder defines the interface for login telemetry ingestion
type LoginRecorder interface {
	RecordLogin(ctx context.Context, input services.RecordLoginInput) error
}

// LoginsHandler handles login recording HTTP requests
type LoginsHandler struct {
	recorder LoginRecorder
}

// NewLoginsHandler creates a new LoginsHandler
func NewLoginsHandler(recorder LoginRecorder) *LoginsHandler {
	return &LoginsHandler{
		recorder: recorder,
	}
}

// Request/Response DTOs

// FingerprintRequest carries client-reported device attributes
type FingerprintRequest struct {
	UserAgent        string `json:"user_agent" validate:"omitempty,max=1024"`
	ScreenResolution string `json:"screen_resolution" validate:"omitempty,max=32"`
	Timezone         string `json:"timezone" validate:"omitempty,max=64"`
	Language         string `json:"language" validate:"omitempty,max=32"`
	Platform         string `json:"platform" validate:"omitempty,max=64"`
}

// RecordLoginRequest represents the request body for recording a login.
// Success is a pointer so "required" can distinguish a missing field from an
// explicit false.
type RecordLoginRequest struct {
	UserID        string              `json:"user_id" validate:"required,uuid"`
	IPAddress     string              `json:"ip_address" validate:"required,ip"`
	UserAgent     *string             `json:"user_agent" validate:"omitempty,max=1024"`
	Method        string              `json:"login_method" validate:"required,oneof=password otp passkey oauth"`
	Success       *bool               `json:"success" validate:"required"`
	FailureReason *string             `json:"failure_reason" validate:"omitempty,max=256"`
	Country       *string             `json:"country" validate:"omitempty,max=64"`
	City          *string             `json:"city" validate:"omitempty,max=128"`
	Fingerprint   *FingerprintRequest `json:"fingerprint"`
}

// RegisterRoutes registers login recording routes with the chi router
func (h *LoginsHandler) RegisterRoutes(router chi.Router) {
	router.Post("/logins", h.RecordLogin)
}

// RecordLogin ingests one login attempt. Always responds 202 once the input
// parses: recording is best-effort and must not fail the caller's login flow.
func (h *LoginsHandler) RecordLogin(w http.ResponseWriter, r *http.Request) {
	var req RecordLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	input := services.RecordLoginInput{
		UserID:        req.UserID,
		IPAddress:     req.IPAddress,
		UserAgent:     req.UserAgent,
		Method:        req.Method,
		Success:       *req.Success,
		FailureReason: req.FailureReason,
		Country:       req.Country,
		City:          req.City,
	}
	if req.Fingerprint != nil {
		input.Fingerprint = &models.FingerprintData{
			UserAgent:        req.Fingerprint.UserAgent,
			ScreenResolution: req.Fingerprint.ScreenResolution,
			Timezone:         req.Fingerprint.Timezone,
			Language:         req.Fingerprint.Language,
			Platform:         req.Fingerprint.Platform,
		}
	}

	if err := h.recorder.RecordLogin(r.Context(), input); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid login attempt")
		return
	}

	pkghttp.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}
