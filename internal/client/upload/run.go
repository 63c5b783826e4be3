package upload

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/permavault/internal/client/models"
	"github.com/dmitrijs2005/permavault/internal/common"
	"github.com/shopspring/decimal"
)

// FundingMethod is the user's answer when the balance is short.
type FundingMethod int

const (
	FundCancel FundingMethod = iota
	FundDirect
	FundInvoice
)

// FundingChoice carries the method and, for FundDirect, the amount.
type FundingChoice struct {
	Method FundingMethod
	Amount decimal.Decimal
}

// Prompter is the presentation side of an attempt. Run calls it at the
// points where the user has to decide or be told something.
type Prompter interface {
	ChooseFunding(ctx context.Context, covered, required decimal.Decimal) (FundingChoice, error)
	PaymentIssued(ctx context.Context, req *models.PaymentRequest)
	Retryable(ctx context.Context, err error) bool
}

// Run drives the attempt to a terminal state or until the user cancels.
// Recoverable wallet and payment errors are handed to the prompter, which
// decides whether to try the step again.
func (o *Orchestrator) Run(ctx context.Context, p Prompter) (*models.UploadRecord, error) {
	defer o.Close()

	for o.state == StateFileSelected {
		if _, err := o.ConnectWallet(ctx); err != nil {
			if !p.Retryable(ctx, err) {
				return nil, err
			}
		}
	}

	for o.state == StateWalletConnected {
		if _, err := o.CheckBalance(ctx); err != nil {
			if !p.Retryable(ctx, err) {
				return nil, err
			}
		}
	}

	for !o.Sufficient() {
		if err := o.fundOnce(ctx, p); err != nil {
			if errors.Is(err, ErrCancelled) || !p.Retryable(ctx, err) {
				return nil, err
			}
		}
	}

	return o.Upload(ctx)
}

// ErrCancelled is returned by Run when the user declines to fund.
var ErrCancelled = fmt.Errorf("%w: upload cancelled", common.ErrInvalidTransition)

func (o *Orchestrator) fundOnce(ctx context.Context, p Prompter) error {
	if o.state == StateFunding {
		// A previous funding step failed before the balance was re-read.
		if _, err := o.CheckBalance(ctx); err != nil {
			return err
		}
		if o.Sufficient() {
			return nil
		}
	}

	choice, err := p.ChooseFunding(ctx, o.Coverage(), o.required)
	if err != nil {
		return err
	}

	switch choice.Method {
	case FundDirect:
		_, err = o.Fund(ctx, choice.Amount)
		return err
	case FundInvoice:
		req, err := o.StartPayment(ctx)
		if err != nil {
			return err
		}
		p.PaymentIssued(ctx, req)
		_, err = o.AwaitPayment(ctx)
		return err
	default:
		return ErrCancelled
	}
}
