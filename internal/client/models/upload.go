package models

import (
	"time"

	"github.com/dmitrijs2005/permavault/internal/cryptox"
	"github.com/shopspring/decimal"
)

// UploadRecord describes a completed permanent-store upload. Envelope is nil
// for public uploads; when set it never carries ciphertext.
type UploadRecord struct {
	TransactionID string
	URL           string
	FileName      string
	Size          int64
	MimeType      string
	Cost          decimal.Decimal
	Envelope      *cryptox.Envelope
	VerifierHash  string
	VerifierSalt  []byte
	CreatedAt     time.Time
}

// Encrypted reports whether the stored bytes are ciphertext.
func (r *UploadRecord) Encrypted() bool {
	return r.Envelope != nil
}

// AccessGrant is what the backend releases after a successful password check.
type AccessGrant struct {
	URL      string
	FileName string
	MimeType string
	Envelope cryptox.Envelope
}
