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

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:   {PaymentConfirmed, PaymentCompleted, PaymentExpired, PaymentFailed},
	PaymentConfirmed: {PaymentCompleted, PaymentFailed},
}

// CanTransition reports whether a payment may move from s to next.
// Statuses only ever move forward; completed, expired and failed are final.
func (s PaymentStatus) CanTransition(next PaymentStatus) bool {
	for _, n := range paymentTransitions[s] {
		if n == next {
			return true
		}
	}
	return false
}

// Final reports whether no further transition is possible.
func (s PaymentStatus) Final() bool {
	return len(paymentTransitions[s]) == 0
}

// Payment is a server-issued payment request for one upload attempt.
type Payment struct {
	ID            string
	UserID        string
	WalletAddress string
	ToAddress     string
	Amount        decimal.Decimal
	Token         string
	Network       string
	ChainID       int64
	Status        PaymentStatus
	TxHash        string
	FileName      string
	FileSize      int64
	MimeType      string
	CreatedAt     time.Time
	ExpiresAt     time.Time
}

// ExpiredAt reports whether a pending payment's window has closed at now.
func (p *Payment) ExpiredAt(now time.Time) bool {
	return p.Status == PaymentPending && !now.Before(p.ExpiresAt)
}
