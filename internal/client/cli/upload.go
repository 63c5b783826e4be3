package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/permavault/internal/client/models"
	"github.com/dmitrijs2005/permavault/internal/client/payments"
	"github.com/dmitrijs2005/permavault/internal/client/upload"
	"github.com/dmitrijs2005/permavault/internal/client/wallet"
	"github.com/dmitrijs2005/permavault/internal/common"
	"github.com/dmitrijs2005/permavault/internal/cryptox"
	"github.com/shopspring/decimal"
)

// readFile is a test seam for os.ReadFile.
var readFile = os.ReadFile

const generatedPasswordLength = 16

// Upload asks for a file and its visibility, then drives an upload attempt
// to completion. Ctrl-C while waiting for a payment cancels the attempt.
func (a *App) Upload(ctx context.Context) error {
	path, err := getSimpleText(a.reader, "File path", a.out)
	if err != nil {
		return err
	}
	data, err := readFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	name := filepath.Base(path)
	mimeType := upload.DetectMimeType(name, data)
	if err := upload.CheckMimeType(mimeType); err != nil {
		return err
	}

	private, err := GetYesNo(a.reader, "Encrypt with a password?", a.out)
	if err != nil {
		return err
	}

	opts := upload.Options{
		MinPasswordLength: a.config.MinPasswordLength,
		AppName:           a.config.AppName,
		AppVersion:        a.config.AppVersion,
	}
	if private {
		pw, err := a.choosePassword()
		if err != nil {
			return err
		}
		defer common.WipeByteArray(pw)
		opts.Encrypt = true
		opts.Password = pw
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	o, err := upload.New(ctx, upload.Deps{
		Wallet:   wallet.NewSession(a.ledger),
		Store:    a.store,
		Payments: payments.NewMonitor(a.backend, a.config.PollInterval, a.logger),
		Recorder: a.backend,
		Journal:  a.journal,
		Pricing:  a.pricing,
		Logger:   a.logger,
	}, upload.File{Name: name, MimeType: mimeType, Data: data}, opts)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Uploading %s (%d bytes, %s), cost %s", name, len(data), mimeType, o.Required()))

	p := &consolePrompter{app: a, waiter: newWaiter(a.out, "waiting for payment")}
	rec, err := o.Run(ctx, p)
	p.stopWaiting()
	if err != nil {
		if errors.Is(err, upload.ErrCancelled) || errors.Is(err, context.Canceled) {
			printlnFn(warnText("Upload cancelled"))
			return nil
		}
		return err
	}

	printlnFn(successText(fmt.Sprintf("Stored as %s", rec.TransactionID)))
	if rec.Encrypted() {
		printlnFn("Private upload: use 'access' with the transaction id and password to retrieve it")
	} else {
		printlnFn("URL: " + rec.URL)
	}
	for _, warn := range o.Warnings() {
		printlnFn(warnText("Warning: " + warn.Error()))
	}
	return nil
}

func (a *App) choosePassword() ([]byte, error) {
	gen, err := GetYesNo(a.reader, "Generate a password?", a.out)
	if err != nil {
		return nil, err
	}
	if gen {
		pw, err := cryptox.GenerateSecurePassword(generatedPasswordLength)
		if err != nil {
			return nil, err
		}
		printlnFn(warnText("Save this password, it cannot be recovered: ") + pw)
		return []byte(pw), nil
	}

	pw, err := getPassword(a.out)
	if err != nil {
		return nil, err
	}
	if len(pw) < a.config.MinPasswordLength {
		common.WipeByteArray(pw)
		return nil, fmt.Errorf("%w: password must be at least %d characters", common.ErrValidation, a.config.MinPasswordLength)
	}
	return pw, nil
}

// consolePrompter answers the orchestrator's questions on the terminal.
type consolePrompter struct {
	app     *App
	waiter  waiter
	waiting bool
}

func (p *consolePrompter) stopWaiting() {
	if p.waiting {
		p.waiter.Stop()
		p.waiting = false
	}
}

func (p *consolePrompter) ChooseFunding(ctx context.Context, balance, required decimal.Decimal) (upload.FundingChoice, error) {
	p.stopWaiting()
	printlnFn(warnText(fmt.Sprintf("Balance %s is below the required %s", balance, required)))
	choice, err := getSimpleText(p.app.reader, "Fund (d)irectly, request a (p)ayment, or (c)ancel?", p.app.out)
	if err != nil {
		return upload.FundingChoice{}, err
	}

	switch choice {
	case "d", "direct":
		amt, err := p.app.readAmount(fmt.Sprintf("Amount to add (at least %s)", required.Sub(balance)))
		if err != nil {
			return upload.FundingChoice{}, err
		}
		return upload.FundingChoice{Method: upload.FundDirect, Amount: amt}, nil
	case "p", "payment":
		return upload.FundingChoice{Method: upload.FundInvoice}, nil
	default:
		return upload.FundingChoice{Method: upload.FundCancel}, nil
	}
}

func (p *consolePrompter) PaymentIssued(ctx context.Context, req *models.PaymentRequest) {
	printlnFn(fmt.Sprintf("Send %s %s on %s (chain %d) to %s before %s",
		req.Amount, req.Token, req.Network, req.ChainID, req.ToAddress, req.ExpiresAt.Local().Format(time.Kitchen)))
	printlnFn("Waiting for confirmation, Ctrl-C to cancel")
	p.waiter.Start()
	p.waiting = true
}

func (p *consolePrompter) Retryable(ctx context.Context, err error) bool {
	p.stopWaiting()
	if ctx.Err() != nil {
		return false
	}
	printlnFn(errorText(err))
	again, rerr := GetYesNo(p.app.reader, "Try again?", p.app.out)
	return rerr == nil && again
}
