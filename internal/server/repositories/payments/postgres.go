package payments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/permavault/internal/common"
	"github.com/dmitrijs2005/permavault/internal/dbx"
	"github.com/dmitrijs2005/permavault/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Payment) error {
	query := `
		INSERT INTO payments (id, user_id, wallet_address, to_address, amount, token, network, chain_id,
			status, file_name, file_size, mime_type, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.UserID, p.WalletAddress, p.ToAddress, p.Amount, p.Token, p.Network, p.ChainID,
		string(p.Status), p.FileName, p.FileSize, p.MimeType, p.CreatedAt, p.ExpiresAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id, userID string) (*models.Payment, error) {
	query := `
		SELECT id, user_id, wallet_address, to_address, amount, token, network, chain_id,
			status, tx_hash, file_name, file_size, mime_type, created_at, expires_at
		FROM payments
		WHERE id = $1 AND user_id = $2
	`
	p := &models.Payment{}
	var status string
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&p.ID, &p.UserID, &p.WalletAddress, &p.ToAddress, &p.Amount, &p.Token, &p.Network, &p.ChainID,
		&status, &p.TxHash, &p.FileName, &p.FileSize, &p.MimeType, &p.CreatedAt, &p.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	p.Status = models.PaymentStatus(status)
	return p, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, from, to models.PaymentStatus, txHash string) (bool, error) {
	if !from.CanTransition(to) {
		return false, fmt.Errorf("%w: payment %s -> %s", common.ErrInvalidTransition, from, to)
	}

	query := `
		UPDATE payments
		SET status = $3, tx_hash = COALESCE(NULLIF($4, ''), tx_hash), updated_at = now()
		WHERE id = $1 AND status = $2
	`
	res, err := r.db.ExecContext(ctx, query, id, string(from), string(to), txHash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return false, fmt.Errorf("%w: %s", ErrTxHashClaimed, txHash)
		}
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}

func (r *PostgresRepository) ClaimedTxHashes(ctx context.Context, walletAddress, exceptID string) ([]string, error) {
	query := `
		SELECT tx_hash
		FROM payments
		WHERE lower(wallet_address) = lower($1) AND tx_hash <> '' AND id <> $2
	`
	rows, err := r.db.QueryContext(ctx, query, walletAddress, exceptID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var hashes []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		hashes = append(hashes, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return hashes, nil
}
