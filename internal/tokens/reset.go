package tokens

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

const (
	resetTokenBytes = 20
	ResetTokenTTL   = time.Hour
)

// NewResetToken returns 40 hex characters from crypto/rand and the expiry in
// milliseconds since epoch.
func NewResetToken(now time.Time) (string, int64, error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(b), now.Add(ResetTokenTTL).UnixMilli(), nil
}
