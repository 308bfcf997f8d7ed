package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
)

// GenerateSecureRandomString returns lengthInBytes random bytes, hex encoded.
func GenerateSecureRandomString(lengthInBytes int) (string, error) {
	if lengthInBytes <= 0 {
		return "", fmt.Errorf("lengthInBytes must be positive")
	}
	b := make([]byte, lengthInBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// HashRefreshToken generates a SHA256 hash of a refresh token.
func HashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// CompareRefreshTokenHash compares a raw refresh token with its stored SHA256 hash.
func CompareRefreshTokenHash(token string, storedHash string) bool {
	return subtle.ConstantTimeCompare([]byte(HashRefreshToken(token)), []byte(storedHash)) == 1
}

// NewAPITokenSecret builds a raw API token "bo_<id>.<secret>" and the bcrypt hash of its secret.
func NewAPITokenSecret(tokenID string) (raw string, hash string, err error) {
	secret, err := GenerateSecureRandomString(24)
	if err != nil {
		return "", "", err
	}
	hash, err = hashSecret(secret)
	if err != nil {
		return "", "", err
	}
	return domain.APITokenPrefix + tokenID + "." + secret, hash, nil
}

// SplitAPIToken extracts the token id and secret from a raw API token.
func SplitAPIToken(raw string) (tokenID string, secret string, ok bool) {
	rest, found := strings.CutPrefix(raw, domain.APITokenPrefix)
	if !found {
		return "", "", false
	}
	tokenID, secret, found = strings.Cut(rest, ".")
	if !found || tokenID == "" || secret == "" {
		return "", "", false
	}
	return tokenID, secret, true
}

// CheckAPITokenSecret compares a raw API token secret with its stored hash.
func CheckAPITokenSecret(secret, hash string) bool {
	return CheckPasswordHash(secret, hash)
}
