package models

import (
	"fmt"
	"time"
)

// Ban types
const (
	BanTypeTemporary = "temporary"
	BanTypePermanent = "permanent"
	BanTypeShadow    = "shadow"
)

// ValidBanType reports whether t is a known ban type.
func ValidBanType(t string) bool {
	switch t {
	case BanTypeTemporary, BanTypePermanent, BanTypeShadow:
		return true
	}
	return false
}

// Appeal states on an active ban
const (
	AppealStatusNone     = "none"
	AppealStatusPending  = "pending"
	AppealStatusApproved = "approved"
	AppealStatusRejected = "rejected"
)

// BanRecord tracks one suspension and its appeal sub-state.
// Invariant: at most one record with IsActive=true per user; ExpiresAt=nil
// encodes a permanent ban.
type BanRecord struct {
	ID               string     `db:"id"`
	UserID           string     `db:"user_id"`
	BannedBy         string     `db:"banned_by"`
	BanType          string     `db:"ban_type"`
	Reason           string     `db:"reason"`
	InternalNotes    *string    `db:"internal_notes"`
	ExpiresAt        *time.Time `db:"expires_at"`
	IsActive         bool       `db:"is_active"`
	AppealStatus     string     `db:"appeal_status"`
	AppealMessage    *string    `db:"appeal_message"`
	AppealedAt       *time.Time `db:"appealed_at"`
	AppealReviewedBy *string    `db:"appeal_reviewed_by"`
	AppealReviewedAt *time.Time `db:"appeal_reviewed_at"`
	AppealResponse   *string    `db:"appeal_response"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
}

// BanInfo is the ban-status view returned to the auth gate on every login.
type BanInfo struct {
	IsBanned  bool       `json:"is_banned"`
	BanType   string     `json:"ban_type,omitempty"`
	Reason    string     `json:"reason,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CanAppeal bool       `json:"can_appeal"`
}

// BanDuration is the closed set of ban lengths. The expiry calculator
// switches exhaustively over the concrete types.
type BanDuration interface {
	// ExpiresFrom returns the expiry computed from now, or nil for permanent.
	ExpiresFrom(now time.Time) *time.Time
}

type (
	// BanHours is a ban lasting a number of hours.
	BanHours uint32
	// BanDays is a ban lasting a number of days.
	BanDays uint32
	// BanWeeks is a ban lasting a number of weeks.
	BanWeeks uint32
	// BanMonths is a ban lasting a number of calendar months.
	BanMonths uint32
	// BanYears is a ban lasting a number of calendar years.
	BanYears uint32
	// BanPermanent never expires.
	BanPermanent struct{}
)

func (d BanHours) ExpiresFrom(now time.Time) *time.Time {
	t := now.Add(time.Duration(d) * time.Hour)
	return &t
}

func (d BanDays) ExpiresFrom(now time.Time) *time.Time {
	t := now.AddDate(0, 0, int(d))
	return &t
}

func (d BanWeeks) ExpiresFrom(now time.Time) *time.Time {
	t := now.AddDate(0, 0, 7*int(d))
	return &t
}

// Months and years use calendar arithmetic, not fixed-length durations.
func (d BanMonths) ExpiresFrom(now time.Time) *time.Time {
	t := now.AddDate(0, int(d), 0)
	return &t
}

func (d BanYears) ExpiresFrom(now time.Time) *time.Time {
	t := now.AddDate(int(d), 0, 0)
	return &t
}

func (BanPermanent) ExpiresFrom(time.Time) *time.Time { return nil }

// ParseBanDuration converts the wire form {type,value} into a BanDuration.
// Unknown tags and non-positive values fail with ErrInvalidBanDuration.
func ParseBanDuration(durationType string, value int) (BanDuration, error) {
	if durationType == "permanent" {
		return BanPermanent{}, nil
	}
	if value <= 0 {
		return nil, fmt.Errorf("%w: value must be positive, got %d", ErrInvalidBanDuration, value)
	}

	switch durationType {
	case "hours":
		return BanHours(value), nil
	case "days":
		return BanDays(value), nil
	case "weeks":
		return BanWeeks(value), nil
	case "months":
		return BanMonths(value), nil
	case "years":
		return BanYears(value), nil
	default:
		return nil, fmt.Errorf("%w: unknown duration type %q", ErrInvalidBanDuration, durationType)
	}
}
