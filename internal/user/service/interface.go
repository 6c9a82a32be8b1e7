// Package service provides password hashing for user accounts.
package service

// PasswordService defines operations for hashing and verifying account passwords.
type PasswordService interface {
	// HashPassword hashes a plain text password using Argon2id.
	HashPassword(plainPassword string) (hashedPassword string, error error)

	// ComparePassword performs a constant-time comparison between a plain
	// password and its stored hash.
	ComparePassword(plainPassword string, hashedPassword string) bool
}
