// Package http provides HTTP middleware and utilities for authentication.
package http

import (
	"context"

	authDomain "github.com/actiongate/actiongate/internal/auth/domain"
)

// credentialKey is a context key type for storing authenticated credentials.
type credentialKey struct{}

// WithCredential stores an authenticated credential in the context.
// This is typically called by the authentication middleware after successful
// bearer token validation.
func WithCredential(ctx context.Context, credential *authDomain.Credential) context.Context {
	return context.WithValue(ctx, credentialKey{}, credential)
}

// GetCredential retrieves an authenticated credential from the context.
// Returns (credential, true) if one is present, or (nil, false) if none was
// set. Called by the dispatch layer and subsequent middleware that need the
// authenticated identity.
func GetCredential(ctx context.Context) (*authDomain.Credential, bool) {
	credential, ok := ctx.Value(credentialKey{}).(*authDomain.Credential)
	return credential, ok
}
