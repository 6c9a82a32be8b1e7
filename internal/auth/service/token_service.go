package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"

	apperrors "github.com/actiongate/actiongate/internal/errors"
)

// tokenPrefix marks gateway-issued bearer tokens in logs and secret scans.
// It carries no entropy.
const tokenPrefix = "agt_"

// tokenEntropyBytes is the random payload size of a bearer token.
const tokenEntropyBytes = 32

// tokenService implements TokenService with prefixed random bearer tokens
// stored as SHA-256 digests.
type tokenService struct{}

// NewTokenService creates a TokenService.
func NewTokenService() TokenService {
	return &tokenService{}
}

// GenerateToken creates a bearer token with 256 bits of entropy, encoded
// URL-safe without padding behind the gateway prefix. Returns the plain
// token together with the hex SHA-256 digest that gets persisted; the plain
// token itself is never stored.
func (t *tokenService) GenerateToken() (string, string, error) {
	payload := make([]byte, tokenEntropyBytes)
	if _, err := rand.Read(payload); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate random token")
	}

	plainToken := tokenPrefix + base64.RawURLEncoding.EncodeToString(payload)
	return plainToken, t.HashToken(plainToken), nil
}

// HashToken returns the hex SHA-256 digest of a plain token. Authentication
// compares digests, so a database leak never yields usable tokens.
func (t *tokenService) HashToken(plainToken string) string {
	digest := sha256.Sum256([]byte(plainToken))
	return hex.EncodeToString(digest[:])
}
