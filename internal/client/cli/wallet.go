package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/permavault/internal/client/wallet"
	"github.com/dmitrijs2005/permavault/internal/common"
	"github.com/shopspring/decimal"
)

// Wallet connects a fresh session and prints the address and balance.
func (a *App) Wallet(ctx context.Context) error {
	s := wallet.NewSession(a.ledger)
	addr, err := s.Connect(ctx)
	if err != nil {
		return err
	}
	bal, err := s.RefreshBalance(ctx)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Wallet %s balance %s", addr, bal))
	return nil
}

func (a *App) readAmount(prompt string) (decimal.Decimal, error) {
	s, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return decimal.Zero, err
	}
	amt, err := decimal.NewFromString(s)
	if err != nil || !amt.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: amount must be a positive number", common.ErrValidation)
	}
	return amt, nil
}

// Fund submits a direct funding transaction and prints the re-read balance.
func (a *App) Fund(ctx context.Context) error {
	amt, err := a.readAmount("Amount to add")
	if err != nil {
		return err
	}

	s := wallet.NewSession(a.ledger)
	if _, err := s.Connect(ctx); err != nil {
		return err
	}
	rc, err := s.Fund(ctx, amt)
	if err != nil {
		return err
	}
	bal, err := s.RefreshBalance(ctx)
	if err != nil {
		return err
	}
	printlnFn(successText(fmt.Sprintf("Funded %s (tx %s), balance %s", rc.Amount, rc.TxID, bal)))
	return nil
}
