package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/permavault/internal/common"
	"github.com/dmitrijs2005/permavault/internal/logging"
	"github.com/dmitrijs2005/permavault/internal/server/metrics"
	"github.com/dmitrijs2005/permavault/internal/server/models"
	"github.com/dmitrijs2005/permavault/internal/server/repositories/repomanager"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// UploadService keeps the append-only log of completed uploads.
type UploadService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewUploadService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *UploadService {
	return &UploadService{db: db, repomanager: m, logger: l.With("module", "upload_service")}
}

// Save records u for userID. Saving the same transaction id again is a
// no-op that reports created=false.
func (s *UploadService) Save(ctx context.Context, userID string, u *models.Upload) (bool, error) {
	if err := validateUpload(u); err != nil {
		return false, err
	}
	u.UserID = userID

	created, err := s.repomanager.Uploads(s.db).Save(ctx, u)
	if err != nil {
		s.logger.Error(ctx, "saving upload", "transaction_id", u.TransactionID, "err", err)
		return false, common.ErrorInternal
	}
	if created {
		metrics.UploadSaved(u.Encrypted)
		s.logger.Info(ctx, "upload saved", "transaction_id", u.TransactionID, "encrypted", u.Encrypted)
	}
	return created, nil
}

// List returns one page (1-based) of the user's uploads and the total.
// Encrypted uploads come back without their URL and envelope.
func (s *UploadService) List(ctx context.Context, userID string, page, perPage int) ([]*models.Upload, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	items, total, err := s.repomanager.Uploads(s.db).ListByUser(ctx, userID, perPage, (page-1)*perPage)
	if err != nil {
		s.logger.Error(ctx, "listing uploads", "err", err)
		return nil, 0, common.ErrorInternal
	}
	for _, u := range items {
		if u.Encrypted {
			redact(u)
		}
	}
	return items, total, nil
}

func redact(u *models.Upload) {
	u.URL = ""
	u.Salt = nil
	u.IV = nil
	u.Iterations = 0
	u.VerifierHash = ""
	u.VerifierSalt = nil
}

func validateUpload(u *models.Upload) error {
	switch {
	case u.TransactionID == "":
		return fmt.Errorf("%w: transaction id is required", common.ErrValidation)
	case u.URL == "":
		return fmt.Errorf("%w: url is required", common.ErrValidation)
	case u.Size <= 0:
		return fmt.Errorf("%w: size must be positive", common.ErrValidation)
	}
	if !u.Encrypted {
		return nil
	}
	switch {
	case u.Algorithm == "" || len(u.Salt) == 0 || len(u.IV) == 0 || u.Iterations <= 0:
		return fmt.Errorf("%w: encrypted upload without envelope", common.ErrValidation)
	case u.VerifierHash == "" || len(u.VerifierSalt) == 0:
		return fmt.Errorf("%w: encrypted upload without access verifier", common.ErrValidation)
	}
	return nil
}
