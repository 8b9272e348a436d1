package models

import "time"

// Login methods accepted by the recorder
const (
	LoginMethodPassword = "password"
	LoginMethodOTP      = "otp"
	LoginMethodPasskey  = "passkey"
	LoginMethodOAuth    = "oauth"
)

// ValidLoginMethod reports whether m is a known login method.
func ValidLoginMethod(m string) bool {
	switch m {
	case LoginMethodPassword, LoginMethodOTP, LoginMethodPasskey, LoginMethodOAuth:
		return true
	}
	return false
}

// LoginAttempt is one row in the append-only login audit trail.
// The raw IP is transient: only the keyed hash is persisted long-term.
type LoginAttempt struct {
	ID            string    `db:"id"`
	UserID        string    `db:"user_id"`
	IPHash        string    `db:"ip_hash"`
	UserAgent     *string   `db:"user_agent"`
	FingerprintID *string   `db:"fingerprint_id"`
	Method        string    `db:"method"`
	Success       bool      `db:"success"`
	FailureReason *string   `db:"failure_reason"`
	Country       *string   `db:"country"`
	City          *string   `db:"city"`
	CreatedAt     time.Time `db:"created_at"`
}
