package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/BradenHooton/vigil/internal/models"
)

// Anonymizer produces one-way keyed hashes of client IPs. HMAC keyed by a
// server secret, so raw IPs are never recoverable from storage and hashes
// cannot be precomputed without the key.
type Anonymizer struct {
	secret []byte
}

func NewAnonymizer(secret string) *Anonymizer {
	return &Anonymizer{secret: []byte(secret)}
}

// AnonymizeIP returns the hex HMAC-SHA256 of the raw IP.
func (a *Anonymizer) AnonymizeIP(rawIP string) string {
	mac := hmac.New(sha256.New, a.secret)
	mac.Write([]byte(rawIP))
	return hex.EncodeToString(mac.Sum(nil))
}

// FingerprintHash derives the stable device hash from client-reported
// attributes: SHA-256 over the pipe-joined tuple, missing fields as empty
// strings. Deterministic and order-sensitive.
func FingerprintHash(data models.FingerprintData) string {
	joined := strings.Join([]string{
		data.UserAgent,
		data.ScreenResolution,
		data.Timezone,
		data.Language,
		data.Platform,
	}, "|")

	sum := sha256.Sum256([]byte(joined))
	return hex.EncodeToString(sum[:])
}
