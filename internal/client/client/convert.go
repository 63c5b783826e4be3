package client

import (
	"github.com/dmitrijs2005/permavault/internal/client/models"
	"github.com/dmitrijs2005/permavault/internal/cryptox"
	"github.com/dmitrijs2005/permavault/internal/rpc"
)

func paymentFromRPC(p *rpc.Payment) *models.PaymentRequest {
	return &models.PaymentRequest{
		ID:        p.PaymentID,
		ToAddress: p.ToAddress,
		Amount:    p.Amount,
		Token:     p.Token,
		Network:   p.Network,
		ChainID:   p.ChainID,
		Status:    models.PaymentStatus(p.Status),
		CreatedAt: p.CreatedAt,
		ExpiresAt: p.ExpiresAt,
	}
}

func envelopeToRPC(e *cryptox.Envelope) *rpc.Envelope {
	if e == nil {
		return nil
	}
	return &rpc.Envelope{Algorithm: e.Algorithm, Salt: e.Salt, IV: e.IV, Iterations: e.Iterations}
}

func envelopeFromRPC(e rpc.Envelope) cryptox.Envelope {
	return cryptox.Envelope{Algorithm: e.Algorithm, Salt: e.Salt, IV: e.IV, Iterations: e.Iterations}
}

func recordToRPC(r *models.UploadRecord) rpc.UploadRecord {
	return rpc.UploadRecord{
		TransactionID: r.TransactionID,
		URL:           r.URL,
		FileName:      r.FileName,
		Size:          r.Size,
		MimeType:      r.MimeType,
		Cost:          r.Cost,
		Encrypted:     r.Encrypted(),
		Envelope:      envelopeToRPC(r.Envelope),
		VerifierHash:  r.VerifierHash,
		VerifierSalt:  r.VerifierSalt,
		CreatedAt:     r.CreatedAt,
	}
}

func recordFromRPC(r rpc.UploadRecord) *models.UploadRecord {
	rec := &models.UploadRecord{
		TransactionID: r.TransactionID,
		URL:           r.URL,
		FileName:      r.FileName,
		Size:          r.Size,
		MimeType:      r.MimeType,
		Cost:          r.Cost,
		CreatedAt:     r.CreatedAt,
	}
	if r.Envelope != nil {
		env := envelopeFromRPC(*r.Envelope)
		rec.Envelope = &env
	} else if r.Encrypted {
		// Listed without parameters; the access flow fetches them.
		rec.Envelope = &cryptox.Envelope{Algorithm: cryptox.Algorithm}
	}
	return rec
}
