package auth

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"time"
)

var tokenFormat = regexp.MustCompile(`^[a-f0-9]{64}$`)

// GenerateToken returns a 64-character hex token for password resets and
// account activation links.
func GenerateToken() (string, error) {
	buf := make([]byte, 32)

	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	return hex.EncodeToString(buf), nil
}

// GenerateTokenWithExpiry returns a token together with its expiry time.
func GenerateTokenWithExpiry(ttl time.Duration) (string, time.Time, error) {
	token, err := GenerateToken()

	if err != nil {
		return "", time.Time{}, err
	}

	return token, time.Now().Add(ttl), nil
}

// ValidTokenFormat is a cheap shape check before hitting the database.
func ValidTokenFormat(token string) bool {
	return tokenFormat.MatchString(token)
}
