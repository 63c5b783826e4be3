// Package wallet is the client side of the funding ledger: connecting a
// wallet, reading its balance and funding it. A Session scopes all of that
// to a single upload attempt; nothing here is shared between attempts.
package wallet

import (
	"context"
	"fmt"
	"regexp"
	"sync"

	"github.com/dmitrijs2005/permavault/internal/common"
	"github.com/shopspring/decimal"
)

var addressRe = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// ValidateAddress checks the 0x-prefixed 20-byte hex address format.
func ValidateAddress(address string) error {
	if !addressRe.MatchString(address) {
		return fmt.Errorf("%w: %q", common.ErrInvalidAddress, address)
	}
	return nil
}

// Receipt is the ledger's acknowledgement of a funding transaction.
type Receipt struct {
	TxID   string
	Amount decimal.Decimal
}

// Ledger is the wallet provider contract.
type Ledger interface {
	Connect(ctx context.Context) (string, error)
	Balance(ctx context.Context, address string) (decimal.Decimal, error)
	Fund(ctx context.Context, address string, amount decimal.Decimal) (Receipt, error)
}

// Session owns the connected address and the most recent balance read for
// one attempt. The snapshot is dropped whenever funds move, so a monetary
// decision can only ever be based on a read made after the last Fund call.
type Session struct {
	ledger Ledger

	mu       sync.Mutex
	address  string
	balance  decimal.Decimal
	hasFresh bool
}

func NewSession(l Ledger) *Session {
	return &Session{ledger: l}
}

// Connect asks the provider for an address and validates it.
func (s *Session) Connect(ctx context.Context) (string, error) {
	addr, err := s.ledger.Connect(ctx)
	if err != nil {
		return "", err
	}
	if err := ValidateAddress(addr); err != nil {
		return "", err
	}

	s.mu.Lock()
	s.address = addr
	s.hasFresh = false
	s.mu.Unlock()
	return addr, nil
}

// Address returns the connected address, or "" before Connect.
func (s *Session) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.address
}

// RefreshBalance always queries the ledger.
func (s *Session) RefreshBalance(ctx context.Context) (decimal.Decimal, error) {
	addr := s.Address()
	if addr == "" {
		return decimal.Zero, common.ErrNoProvider
	}

	bal, err := s.ledger.Balance(ctx, addr)
	if err != nil {
		return decimal.Zero, err
	}

	s.mu.Lock()
	s.balance = bal
	s.hasFresh = true
	s.mu.Unlock()
	return bal, nil
}

// Snapshot returns the last balance read and whether it is still valid.
func (s *Session) Snapshot() (decimal.Decimal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance, s.hasFresh
}

// Fund submits a funding transaction. The returned receipt says nothing
// about the new balance; call RefreshBalance for that.
func (s *Session) Fund(ctx context.Context, amount decimal.Decimal) (Receipt, error) {
	addr := s.Address()
	if addr == "" {
		return Receipt{}, common.ErrNoProvider
	}
	if !amount.IsPositive() {
		return Receipt{}, fmt.Errorf("%w: funding amount must be positive", common.ErrValidation)
	}

	s.mu.Lock()
	s.hasFresh = false
	s.mu.Unlock()

	return s.ledger.Fund(ctx, addr, amount)
}
