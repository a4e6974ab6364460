package signing

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// NewToken generates the opaque access token stored on a quote at send-time.
// 32 random bytes, URL-safe without padding so it can live in a path segment.
func NewToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate signing token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
