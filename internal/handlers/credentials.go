package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	pkghttp "github.com/BradenHooton/vigil/pkg/http"
	"github.com/BradenHooton/vigil/pkg/breach"
	"github.com/BradenHooton/vigil/pkg/email"
	"github.com/BradenHooton/vigil/pkg/password"
)

// BreachChecker defines the interface for k-anonymity breach lookups
type BreachChecker interface {
	Check(ctx context.Context, pw string) breach.Result
}

// CredentialsHandler handles credential validation HTTP requests
type CredentialsHandler struct {
	breach    BreachChecker
	emailOpts email.Options
}

// NewCredentialsHandler creates a new CredentialsHandler
func NewCredentialsHandler(breachChecker BreachChecker, emailOpts email.Options) *CredentialsHandler {
	return &CredentialsHandler{
		breach:    breachChecker,
		emailOpts: emailOpts,
	}
}

// Request/Response DTOs

// PasswordPolicyOverrides optionally tightens or loosens the default policy
// per call. Pointer fields distinguish "absent" from explicit false/zero.
type PasswordPolicyOverrides struct {
	MinLength           *int  `json:"min_length" validate:"omitempty,gte=1,lte=256"`
	MaxLength           *int  `json:"max_length" validate:"omitempty,gte=1,lte=1024"`
	RequireUppercase    *bool `json:"require_uppercase"`
	RequireLowercase    *bool `json:"require_lowercase"`
	RequireNumbers      *bool `json:"require_numbers"`
	RequireSpecialChars *bool `json:"require_special_chars"`
	MinEntropy          *int  `json:"min_entropy" validate:"omitempty,gte=0,lte=200"`
}

// UserInfoRequest carries account attributes the password must not contain
type UserInfoRequest struct {
	Email    string `json:"email" validate:"omitempty,email"`
	Username string `json:"username" validate:"omitempty,max=64"`
	Name     string `json:"name" validate:"omitempty,max=128"`
}

// ValidatePasswordRequest represents the request body for password validation
type ValidatePasswordRequest struct {
	Password string                   `json:"password" validate:"required,max=1024"`
	Options  *PasswordPolicyOverrides `json:"options"`
	UserInfo *UserInfoRequest         `json:"user_info"`
}

// CheckBreachRequest represents the request body for a breach check
type CheckBreachRequest struct {
	Password string `json:"password" validate:"required,max=1024"`
}

// ValidateEmailRequest represents the request body for email validation
type ValidateEmailRequest struct {
	Email string `json:"email" validate:"required,max=320"`
}

// RegisterRoutes registers credential validation routes with the chi router
func (h *CredentialsHandler) RegisterRoutes(router chi.Router) {
	router.Route("/credentials", func(r chi.Router) {
		r.Post("/password/validate", h.ValidatePassword)
		r.Post("/password/breach", h.CheckBreach)
		r.Post("/email/validate", h.ValidateEmail)
	})
}

// ValidatePassword scores a candidate password against the strength policy.
// The password appears nowhere in logs or storage.
func (h *CredentialsHandler) ValidatePassword(w http.ResponseWriter, r *http.Request) {
	var req ValidatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	opts := password.DefaultOptions()
	if req.Options != nil {
		applyOverrides(&opts, req.Options)
	}
	if req.UserInfo != nil {
		opts.UserInfo = &password.UserInfo{
			Email:    req.UserInfo.Email,
			Username: req.UserInfo.Username,
			Name:     req.UserInfo.Name,
		}
	}

	result := password.Validate(req.Password, opts)
	pkghttp.WriteJSON(w, http.StatusOK, result)
}

// CheckBreach reports whether the password appears in known breach corpora.
func (h *CredentialsHandler) CheckBreach(w http.ResponseWriter, r *http.Request) {
	var req CheckBreachRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	result := h.breach.Check(r.Context(), req.Password)
	pkghttp.WriteJSON(w, http.StatusOK, result)
}

// ValidateEmail runs the email validation pipeline.
func (h *CredentialsHandler) ValidateEmail(w http.ResponseWriter, r *http.Request) {
	var req ValidateEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	result := email.Validate(r.Context(), req.Email, h.emailOpts)
	pkghttp.WriteJSON(w, http.StatusOK, result)
}

func applyOverrides(opts *password.Options, o *PasswordPolicyOverrides) {
	if o.MinLength != nil {
		opts.MinLength = *o.MinLength
	}
	if o.MaxLength != nil {
		opts.MaxLength = *o.MaxLength
	}
	if o.RequireUppercase != nil {
		opts.RequireUppercase = *o.RequireUppercase
	}
	if o.RequireLowercase != nil {
		opts.RequireLowercase = *o.RequireLowercase
	}
	if o.RequireNumbers != nil {
		opts.RequireNumbers = *o.RequireNumbers
	}
	if o.RequireSpecialChars != nil {
		opts.RequireSpecialChars = *o.RequireSpecialChars
	}
	if o.MinEntropy != nil {
		opts.MinEntropy = *o.MinEntropy
	}
}
