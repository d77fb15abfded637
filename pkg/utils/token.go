package utils

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateURLToken returns a URL-safe random token of roughly 4/3*n characters.
// n is the number of random bytes; 16 or more is recommended.
func GenerateURLToken(n int) (string, error) {
	if n <= 0 {
		n = 16
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
