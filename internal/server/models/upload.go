package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Upload is a completed permanent-store upload. For encrypted uploads the
// envelope parameters and the access verifier are kept; the password and
// key never are.
type Upload struct {
	TransactionID string
	UserID        string
	URL           string
	FileName      string
	Size          int64
	MimeType      string
	Cost          decimal.Decimal
	Encrypted     bool
	Algorithm     string
	Salt          []byte
	IV            []byte
	Iterations    int
	VerifierHash  string
	VerifierSalt  []byte
	CreatedAt     time.Time
}
