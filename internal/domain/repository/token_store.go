package repository

import (
	"context"
	"time"
)

// TokenStore holds one-time password-reset tokens with an expiry.
type TokenStore interface {
	SaveResetToken(ctx context.Context, token, userID string, ttl time.Duration) error
	// ConsumeResetToken resolves the token to a user id and invalidates it.
	// Unknown or expired tokens return ErrNotFound.
	ConsumeResetToken(ctx context.Context, token string) (string, error)
}
