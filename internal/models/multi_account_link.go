package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Link types produced by the correlator
const (
	LinkTypeIPMatch          = "ip_match"
	LinkTypeFingerprintMatch = "fingerprint_match"
	LinkTypeEmailPattern     = "email_pattern"
)

// Link review states
const (
	LinkStatusDetected      = "detected"
	LinkStatusConfirmed     = "confirmed"
	LinkStatusAllowed       = "allowed"
	LinkStatusFalsePositive = "false_positive"
)

// ValidLinkStatus reports whether s is a reviewable link status.
func ValidLinkStatus(s string) bool {
	switch s {
	case LinkStatusDetected, LinkStatusConfirmed, LinkStatusAllowed, LinkStatusFalsePositive:
		return true
	}
	return false
}

// LinkEvidence holds privacy-redacted detection context. IP evidence stores
// only the anonymized hash; fingerprint evidence stores a truncated hash.
type LinkEvidence map[string]interface{}

// Scan implements sql.Scanner for JSONB
func (e *LinkEvidence) Scan(value interface{}) error {
	if value == nil {
		*e = make(LinkEvidence)
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return ErrBadRequest
	}

	var m map[string]interface{}
	if err := json.Unmarshal(bytes, &m); err != nil {
		return err
	}
	*e = LinkEvidence(m)
	return nil
}

// Value implements driver.Valuer for JSONB
func (e LinkEvidence) Value() (driver.Value, error) {
	if e == nil {
		return nil, nil
	}
	return json.Marshal(e)
}

// MultiAccountLink records a detected pairing between two accounts.
// Unique per (primary_user_id, linked_user_id, link_type): a second
// detection of the same pair/type is a no-op, not a duplicate row.
type MultiAccountLink struct {
	ID            string       `db:"id"`
	PrimaryUserID string       `db:"primary_user_id"`
	LinkedUserID  string       `db:"linked_user_id"`
	LinkType      string       `db:"link_type"`
	Confidence    int          `db:"confidence"`
	Evidence      LinkEvidence `db:"evidence"`
	Status        string       `db:"status"`
	ReviewedBy    *string      `db:"reviewed_by"`
	ReviewedAt    *time.Time   `db:"reviewed_at"`
	ReviewNotes   *string      `db:"review_notes"`
	CreatedAt     time.Time    `db:"created_at"`
}

// MultiAccountMatch is an in-memory detection result prior to persistence.
type MultiAccountMatch struct {
	LinkedUserID string
	LinkType     string
	Confidence   int
	Evidence     LinkEvidence
}
