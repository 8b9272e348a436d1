package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Security event kinds
const (
	EventKindMultiAccountDetected = "account.multi_account_detected"
	EventKindBanned               = "account.banned"
	EventKindUnbanned             = "account.unbanned"
	EventKindAppealSubmitted      = "account.appeal_submitted"
	EventKindAppealReviewed       = "account.appeal_reviewed"
)

// EventMetadata holds additional context for a security event
type EventMetadata map[string]interface{}

// Scan implements sql.Scanner for JSONB
func (em *EventMetadata) Scan(value interface{}) error {
	if value == nil {
		*em = make(EventMetadata)
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
	*em = EventMetadata(m)
	return nil
}

// Value implements driver.Valuer for JSONB
func (em EventMetadata) Value() (driver.Value, error) {
	if em == nil {
		return nil, nil
	}
	return json.Marshal(em)
}

// SecurityEvent is one row in the append-only security event log. The
// detail IP string is kept short-term for admin triage only; durable IP
// identity lives in the anonymized hashes on login attempts.
type SecurityEvent struct {
	ID        string        `db:"id"`
	Kind      string        `db:"kind"`
	UserID    *string       `db:"user_id"`
	ActorID   *string       `db:"actor_id"`
	IPDetail  *string       `db:"ip_detail"`
	Metadata  EventMetadata `db:"metadata"`
	CreatedAt time.Time     `db:"created_at"`
}
