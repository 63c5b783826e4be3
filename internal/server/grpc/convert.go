package grpc

import (
	"github.com/dmitrijs2005/permavault/internal/rpc"
	"github.com/dmitrijs2005/permavault/internal/server/models"
)

func paymentToRPC(p *models.Payment) rpc.Payment {
	return rpc.Payment{
		PaymentID: p.ID,
		ToAddress: p.ToAddress,
		Amount:    p.Amount,
		Token:     p.Token,
		Network:   p.Network,
		ChainID:   p.ChainID,
		Status:    string(p.Status),
		TxHash:    p.TxHash,
		CreatedAt: p.CreatedAt,
		ExpiresAt: p.ExpiresAt,
	}
}

func uploadFromRPC(r *rpc.UploadRecord) *models.Upload {
	u := &models.Upload{
		TransactionID: r.TransactionID,
		URL:           r.URL,
		FileName:      r.FileName,
		Size:          r.Size,
		MimeType:      r.MimeType,
		Cost:          r.Cost,
		Encrypted:     r.Encrypted,
		VerifierHash:  r.VerifierHash,
		VerifierSalt:  r.VerifierSalt,
		CreatedAt:     r.CreatedAt,
	}
	if r.Envelope != nil {
		u.Algorithm = r.Envelope.Algorithm
		u.Salt = r.Envelope.Salt
		u.IV = r.Envelope.IV
		u.Iterations = r.Envelope.Iterations
	}
	return u
}

// uploadToRPC never sends the access verifier back out.
func uploadToRPC(u *models.Upload) rpc.UploadRecord {
	r := rpc.UploadRecord{
		TransactionID: u.TransactionID,
		URL:           u.URL,
		FileName:      u.FileName,
		Size:          u.Size,
		MimeType:      u.MimeType,
		Cost:          u.Cost,
		Encrypted:     u.Encrypted,
		CreatedAt:     u.CreatedAt,
	}
	if u.Encrypted && len(u.Salt) > 0 {
		r.Envelope = &rpc.Envelope{Algorithm: u.Algorithm, Salt: u.Salt, IV: u.IV, Iterations: u.Iterations}
	}
	return r
}
