// Package chain answers whether a payment has landed on chain. The
// production oracle queries a block explorer's token-transfer listing.
package chain

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Transfer is one token transfer seen on chain.
type Transfer struct {
	Hash          string
	From          string
	To            string
	Amount        decimal.Decimal
	Timestamp     time.Time
	Confirmations int64
}

// Query describes the transfer a payment request expects.
type Query struct {
	From      string
	To        string
	Amount    decimal.Decimal
	// Tolerance is how far below Amount a transfer may fall. Overpayment
	// always matches.
	Tolerance decimal.Decimal
	// NotBefore excludes transfers made before the request existed.
	NotBefore time.Time
	// Exclude lists transfer hashes already claimed by other requests.
	Exclude []string
}

// Matches reports whether t satisfies q. Addresses and hashes compare
// case-insensitively.
func (q Query) Matches(t Transfer) bool {
	if !strings.EqualFold(t.From, q.From) || !strings.EqualFold(t.To, q.To) {
		return false
	}
	if t.Timestamp.Before(q.NotBefore) {
		return false
	}
	for _, h := range q.Exclude {
		if strings.EqualFold(h, t.Hash) {
			return false
		}
	}
	return t.Amount.GreaterThanOrEqual(q.Amount.Sub(q.Tolerance))
}

// Oracle finds the transfer paying a request. It returns nil and no error
// when nothing matches yet.
type Oracle interface {
	FindTransfer(ctx context.Context, q Query) (*Transfer, error)
}
