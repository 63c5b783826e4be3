package uploads

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/permavault/internal/common"
	"github.com/dmitrijs2005/permavault/internal/dbx"
	"github.com/dmitrijs2005/permavault/internal/server/models"
)

const uploadColumns = `transaction_id, user_id, url, file_name, size, mime_type, cost, encrypted,
			algorithm, salt, iv, iterations, verifier_hash, verifier_salt, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Save(ctx context.Context, u *models.Upload) (bool, error) {
	query := `
		INSERT INTO uploads (` + uploadColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (transaction_id) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query,
		u.TransactionID, u.UserID, u.URL, u.FileName, u.Size, u.MimeType, u.Cost, u.Encrypted,
		u.Algorithm, u.Salt, u.IV, u.Iterations, u.VerifierHash, u.VerifierSalt, u.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUpload(s scanner) (*models.Upload, error) {
	u := &models.Upload{}
	err := s.Scan(&u.TransactionID, &u.UserID, &u.URL, &u.FileName, &u.Size, &u.MimeType, &u.Cost, &u.Encrypted,
		&u.Algorithm, &u.Salt, &u.IV, &u.Iterations, &u.VerifierHash, &u.VerifierSalt, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Upload, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM uploads WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	query := `
		SELECT ` + uploadColumns + `
		FROM uploads
		WHERE user_id = $1
		ORDER BY created_at DESC, transaction_id
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.Upload
	for rows.Next() {
		u, err := scanUpload(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("db error: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	return out, total, nil
}

func (r *PostgresRepository) GetByTransactionID(ctx context.Context, transactionID string) (*models.Upload, error) {
	query := `
		SELECT ` + uploadColumns + `
		FROM uploads
		WHERE transaction_id = $1
	`
	u, err := scanUpload(r.db.QueryRowContext(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}
