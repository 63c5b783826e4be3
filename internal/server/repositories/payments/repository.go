// Package payments stores payment requests and their status history.
package payments

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/permavault/internal/server/models"
)

// ErrTxHashClaimed is returned by UpdateStatus when the transfer hash is
// already recorded on another payment.
var ErrTxHashClaimed = errors.New("transfer already claimed by another payment")

type Repository interface {
	Create(ctx context.Context, p *models.Payment) error

	// Get returns the payment only if it belongs to userID, common.ErrorNotFound otherwise.
	Get(ctx context.Context, id, userID string) (*models.Payment, error)

	// UpdateStatus moves the payment from one status to another if it is
	// still in from. It reports false when another writer got there first.
	UpdateStatus(ctx context.Context, id string, from, to models.PaymentStatus, txHash string) (bool, error)

	// ClaimedTxHashes lists the transfer hashes recorded on payments from
	// walletAddress other than exceptID.
	ClaimedTxHashes(ctx context.Context, walletAddress, exceptID string) ([]string, error)
}
