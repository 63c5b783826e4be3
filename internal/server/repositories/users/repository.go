// Package users stores accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/permavault/internal/server/models"
)

// Repository persists accounts keyed by their unique username.
type Repository interface {
	// Create inserts user and fills in its id and creation time. A taken
	// username yields common.ErrValidation.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// GetByUsername yields common.ErrorNotFound for an unknown username.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}
