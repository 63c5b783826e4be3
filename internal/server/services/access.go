package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/permavault/internal/common"
	"github.com/dmitrijs2005/permavault/internal/cryptox"
	"github.com/dmitrijs2005/permavault/internal/logging"
	"github.com/dmitrijs2005/permavault/internal/server/config"
	"github.com/dmitrijs2005/permavault/internal/server/metrics"
	"github.com/dmitrijs2005/permavault/internal/server/models"
	"github.com/dmitrijs2005/permavault/internal/server/repositories/repomanager"
)

// AccessService gates the decryption parameters of encrypted uploads
// behind the upload password.
type AccessService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	secret      []byte
}

func NewAccessService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, l logging.Logger) *AccessService {
	return &AccessService{
		db:          db,
		repomanager: m,
		logger:      l.With("module", "access_service"),
		secret:      []byte(cfg.SecretKey),
	}
}

// AccessSalt returns the verifier salt of an encrypted upload. Unknown and
// public uploads get a decoy that looks the same.
func (s *AccessService) AccessSalt(ctx context.Context, transactionID string) ([]byte, error) {
	u, err := s.find(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return decoySalt(s.secret, "access", transactionID, cryptox.SaltSize), nil
	}
	return u.VerifierSalt, nil
}

// VerifyAccess compares passwordHash to the stored verifier. Only a match
// returns the upload; every mismatch is common.ErrAuthentication.
func (s *AccessService) VerifyAccess(ctx context.Context, transactionID, passwordHash string) (*models.Upload, error) {
	u, err := s.find(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if u == nil || !cryptox.HashEqual(u.VerifierHash, passwordHash) {
		metrics.AccessVerified(false)
		s.logger.Info(ctx, "access denied", "transaction_id", transactionID)
		return nil, common.ErrAuthentication
	}
	metrics.AccessVerified(true)
	return u, nil
}

// find returns nil for unknown and unencrypted uploads.
func (s *AccessService) find(ctx context.Context, transactionID string) (*models.Upload, error) {
	u, err := s.repomanager.Uploads(s.db).GetByTransactionID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		s.logger.Error(ctx, "loading upload", "transaction_id", transactionID, "err", err)
		return nil, common.ErrorInternal
	}
	if !u.Encrypted || u.VerifierHash == "" {
		return nil, nil
	}
	return u, nil
}
