package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/dmitrijs2005/permavault/internal/common"
	"github.com/dmitrijs2005/permavault/internal/logging"
	"github.com/dmitrijs2005/permavault/internal/pricing"
	"github.com/dmitrijs2005/permavault/internal/server/chain"
	"github.com/dmitrijs2005/permavault/internal/server/config"
	"github.com/dmitrijs2005/permavault/internal/server/metrics"
	"github.com/dmitrijs2005/permavault/internal/server/models"
	"github.com/dmitrijs2005/permavault/internal/server/repositories/payments"
	"github.com/dmitrijs2005/permavault/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var walletAddressRe = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// FileMeta describes the file a payment is requested for.
type FileMeta struct {
	Name     string
	Size     int64
	MimeType string
}

// PaymentService issues payment requests and reports their status. The
// amount is always computed here, never taken from the client.
type PaymentService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	oracle        chain.Oracle
	logger        logging.Logger
	pricing       pricing.Model
	receiver      string
	token         string
	network       string
	chainID       int64
	window        time.Duration
	confirmations int64
	tolerance     decimal.Decimal
	now           func() time.Time
}

func NewPaymentService(db *sql.DB, m repomanager.RepositoryManager, o chain.Oracle, cfg *config.Config, l logging.Logger) *PaymentService {
	return &PaymentService{
		db:            db,
		repomanager:   m,
		oracle:        o,
		logger:        l.With("module", "payment_service"),
		pricing:       cfg.Pricing(),
		receiver:      cfg.ReceiverAddress,
		token:         cfg.Token,
		network:       cfg.Network,
		chainID:       cfg.ChainID,
		window:        cfg.PaymentWindow,
		confirmations: cfg.Confirmations,
		tolerance:     cfg.AmountTolerance,
		now:           time.Now,
	}
}

// CreatePayment stores a pending payment request for userID.
func (s *PaymentService) CreatePayment(ctx context.Context, userID string, file FileMeta, walletAddress string) (*models.Payment, error) {
	if !walletAddressRe.MatchString(walletAddress) {
		return nil, fmt.Errorf("%w: invalid wallet address %q", common.ErrValidation, walletAddress)
	}
	amount, err := s.pricing.Required(file.Size)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	p := &models.Payment{
		ID:            uuid.NewString(),
		UserID:        userID,
		WalletAddress: walletAddress,
		ToAddress:     s.receiver,
		Amount:        amount,
		Token:         s.token,
		Network:       s.network,
		ChainID:       s.chainID,
		Status:        models.PaymentPending,
		FileName:      file.Name,
		FileSize:      file.Size,
		MimeType:      file.MimeType,
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.window),
	}
	if err := s.repomanager.Payments(s.db).Create(ctx, p); err != nil {
		s.logger.Error(ctx, "storing payment", "err", err)
		return nil, common.ErrorInternal
	}

	metrics.PaymentCreated()
	s.logger.Info(ctx, "payment created", "payment_id", p.ID, "amount", p.Amount.String(), "expires_at", p.ExpiresAt)
	return p, nil
}

// PaymentStatus returns the current status of the user's payment, advancing
// it first when the window closed or a matching transfer appeared.
func (s *PaymentService) PaymentStatus(ctx context.Context, userID, paymentID string) (*models.Payment, error) {
	repo := s.repomanager.Payments(s.db)

	p, err := repo.Get(ctx, paymentID, userID)
	if err != nil {
		return nil, err
	}
	if p.Status.Final() {
		return p, nil
	}
	if p.ExpiredAt(s.now()) {
		return s.advance(ctx, p, models.PaymentExpired, "")
	}

	claimed, err := repo.ClaimedTxHashes(ctx, p.WalletAddress, p.ID)
	if err != nil {
		s.logger.Error(ctx, "listing claimed transfers", "payment_id", p.ID, "err", err)
		return nil, common.ErrorInternal
	}

	t, err := s.oracle.FindTransfer(ctx, chain.Query{
		From:      p.WalletAddress,
		To:        p.ToAddress,
		Amount:    p.Amount,
		Tolerance: s.tolerance,
		NotBefore: p.CreatedAt,
		Exclude:   claimed,
	})
	if err != nil {
		// The stored status still holds; the client polls again.
		s.logger.Warn(ctx, "oracle lookup failed", "payment_id", p.ID, "err", err)
		return p, nil
	}
	if t == nil {
		return p, nil
	}

	next := models.PaymentCompleted
	if t.Confirmations < s.confirmations {
		next = models.PaymentConfirmed
	}
	if next == p.Status {
		return p, nil
	}
	return s.advance(ctx, p, next, t.Hash)
}

func (s *PaymentService) advance(ctx context.Context, p *models.Payment, next models.PaymentStatus, txHash string) (*models.Payment, error) {
	if !p.Status.CanTransition(next) {
		return nil, fmt.Errorf("%w: %s -> %s", common.ErrInvalidTransition, p.Status, next)
	}

	repo := s.repomanager.Payments(s.db)
	ok, err := repo.UpdateStatus(ctx, p.ID, p.Status, next, txHash)
	if errors.Is(err, payments.ErrTxHashClaimed) {
		// Another request took the transfer first; this one keeps waiting.
		s.logger.Warn(ctx, "transfer already claimed", "payment_id", p.ID, "tx_hash", txHash)
		return p, nil
	}
	if err != nil {
		s.logger.Error(ctx, "updating payment status", "payment_id", p.ID, "err", err)
		return nil, common.ErrorInternal
	}
	if !ok {
		// Someone else moved it; report what is stored now.
		return repo.Get(ctx, p.ID, p.UserID)
	}

	metrics.PaymentTransitioned(string(next))
	s.logger.Info(ctx, "payment status changed", "payment_id", p.ID, "from", p.Status, "to", next)

	p.Status = next
	if txHash != "" {
		p.TxHash = txHash
	}
	return p, nil
}
