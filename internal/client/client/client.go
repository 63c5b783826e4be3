package client

import (
	"context"

	"github.com/dmitrijs2005/permavault/internal/client/models"
)

// Client is the backend contract used by the CLI. It covers the account,
// payment, record and access services.
type Client interface {
	Close() error

	Register(ctx context.Context, username string, salt []byte, verifier []byte) error
	GetSalt(ctx context.Context, username string) ([]byte, error)
	Login(ctx context.Context, username string, verifier []byte) error

	CreatePayment(ctx context.Context, file models.FileMeta, walletAddress string) (*models.PaymentRequest, error)
	PaymentStatus(ctx context.Context, paymentID string) (models.PaymentStatus, error)

	SaveUpload(ctx context.Context, rec *models.UploadRecord) error
	ListUploads(ctx context.Context, page, perPage int) ([]*models.UploadRecord, int, error)

	AccessSalt(ctx context.Context, transactionID string) ([]byte, error)
	VerifyAccess(ctx context.Context, transactionID, passwordHash string) (*models.AccessGrant, error)
}
