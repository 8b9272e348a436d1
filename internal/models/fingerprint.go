package models

import "time"

// FingerprintData carries the client-reported environment attributes a
// device fingerprint is derived from. All fields are optional; missing
// values hash as empty strings.
type FingerprintData struct {
	UserAgent        string `json:"user_agent"`
	ScreenResolution string `json:"screen_resolution"`
	Timezone         string `json:"timezone"`
	Language         string `json:"language"`
	Platform         string `json:"platform"`
}

// DeviceFingerprint is a stable device identity owned by the user who first
// produced it. LastSeenAt is the only mutable field, bumped when the same
// user re-presents the identical hash.
type DeviceFingerprint struct {
	ID               string    `db:"id"`
	FingerprintHash  string    `db:"fingerprint_hash"`
	UserID           string    `db:"user_id"`
	UserAgent        string    `db:"user_agent"`
	ScreenResolution *string   `db:"screen_resolution"`
	Timezone         *string   `db:"timezone"`
	Language         *string   `db:"language"`
	Platform         *string   `db:"platform"`
	FirstSeenAt      time.Time `db:"first_seen_at"`
	LastSeenAt       time.Time `db:"last_seen_at"`
}
