// Package http provides HTTP middleware and utilities for authentication.
package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	authService "github.com/actiongate/actiongate/internal/auth/service"
	authUseCase "github.com/actiongate/actiongate/internal/auth/usecase"
	apperrors "github.com/actiongate/actiongate/internal/errors"
	"github.com/actiongate/actiongate/internal/httputil"
)

// AuthenticationMiddleware provides authentication via Bearer token in the Authorization header.
//
// The middleware:
// 1. Extracts the Bearer token from the Authorization header (case-insensitive)
// 2. Hashes the token using tokenService.HashToken()
// 3. Validates the hash using authenticateUseCase.Authenticate()
// 4. Stores the authenticated credential in the request context
// 5. Allows downstream handlers to access the credential via GetCredential()
//
// Authorization header format: "Bearer <token>" (case-insensitive "bearer")
//
// Error handling:
//   - Missing Authorization header → 401 UNAUTHORIZED envelope
//   - Malformed Authorization header → 401 UNAUTHORIZED envelope
//   - Unknown/expired/revoked credential → 401 UNAUTHORIZED envelope, one
//     opaque message for all three conditions
//   - Other errors → 500 INTERNAL_SERVER_ERROR envelope
func AuthenticationMiddleware(
	authenticateUseCase authUseCase.AuthenticateUseCase,
	tokenService authService.TokenService,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Extract Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug("authentication failed: missing authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		// Parse Bearer token (case-insensitive)
		const bearerPrefix = "bearer "
		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("authentication failed: malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		plainToken := authHeader[len(bearerPrefix):]
		if plainToken == "" {
			logger.Debug("authentication failed: empty bearer token")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		// Hash the token for lookup
		tokenHash := tokenService.HashToken(plainToken)

		// Authenticate using the token hash
		credential, err := authenticateUseCase.Authenticate(c.Request.Context(), tokenHash)
		if err != nil {
			logger.Debug("authentication failed",
				slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		// Store authenticated credential in context
		ctx := WithCredential(c.Request.Context(), credential)
		c.Request = c.Request.WithContext(ctx)

		logger.Debug("authentication successful",
			slog.String("credential_id", credential.ID.String()),
			slog.String("credential_name", credential.Name))

		// Continue to next handler
		c.Next()
	}
}
