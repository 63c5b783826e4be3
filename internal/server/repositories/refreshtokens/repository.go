// Package refreshtokens stores the opaque refresh tokens issued at login.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/permavault/internal/server/models"
)

// Repository issues, looks up and revokes refresh tokens.
type Repository interface {
	Create(ctx context.Context, userID string, token string, expiresAt time.Time) error

	// Find returns common.ErrorNotFound for an unknown token.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete revokes token. It returns common.ErrorNotFound when the token
	// was already gone, which makes each token single-use.
	Delete(ctx context.Context, token string) error
}
