// Package models holds the client-side domain types shared by the upload,
// payment and access flows and the backend client.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentConfirmed PaymentStatus = "confirmed"
	PaymentCompleted PaymentStatus = "completed"
	PaymentExpired   PaymentStatus = "expired"
	PaymentFailed    PaymentStatus = "failed"
)

// Settled reports whether the funds are seen on chain.
func (s PaymentStatus) Settled() bool {
	return s == PaymentConfirmed || s == PaymentCompleted
}

// Final reports whether polling can stop.
func (s PaymentStatus) Final() bool {
	return s.Settled() || s == PaymentExpired || s == PaymentFailed
}

// FileMeta describes the file an upload attempt is for.
type FileMeta struct {
	Name      string
	Size      int64
	MimeType  string
	Encrypted bool
}

// PaymentRequest is a server-issued invoice for one upload attempt.
type PaymentRequest struct {
	ID        string
	ToAddress string
	Amount    decimal.Decimal
	Token     string
	Network   string
	ChainID   int64
	Status    PaymentStatus
	CreatedAt time.Time
	ExpiresAt time.Time
}
