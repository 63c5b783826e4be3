// Package uploads stores the append-only log of completed uploads.
package uploads

import (
	"context"

	"github.com/dmitrijs2005/permavault/internal/server/models"
)

type Repository interface {
	// Save inserts u unless its transaction id is already known. It reports
	// whether a row was written.
	Save(ctx context.Context, u *models.Upload) (bool, error)

	// ListByUser returns one page of the user's uploads, newest first, and
	// the total count.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Upload, int, error)

	GetByTransactionID(ctx context.Context, transactionID string) (*models.Upload, error)
}
