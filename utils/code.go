package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateCode returns a hex token of n random bytes, used for account
// activation and password reset links.
func GenerateCode(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
