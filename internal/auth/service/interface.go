// Package service provides technical services for authentication operations.
//
// This package implements reusable services for bearer token generation and
// hashing using industry-standard cryptographic practices.
package service

// TokenService defines operations for authentication token generation and hashing.
// Implementations must use cryptographically secure random generation and
// fast hashing algorithms suitable for bearer tokens (e.g., SHA-256).
type TokenService interface {
	// GenerateToken creates a new cryptographically secure random token,
	// prefixed so gateway tokens are recognizable in logs and secret scans.
	// Returns both the plain text token (to be shared with the caller) and
	// the hashed version (to be stored in the database).
	//
	// The plain token should be treated as sensitive data and only displayed
	// once during issuance.
	GenerateToken() (plainToken string, tokenHash string, error error)

	// HashToken hashes a plain text token using SHA-256.
	// Used for token validation by comparing hashes.
	HashToken(plainToken string) string
}
