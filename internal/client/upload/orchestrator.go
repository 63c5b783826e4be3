// Package upload drives a single upload attempt from file selection to
// confirmed permanent storage:
//
//	FileSelected -> WalletConnected -> BalanceChecked -> [Funding -> BalanceChecked]* -> Uploading -> Succeeded | Failed
//
// Every transition is an explicit method call. An Orchestrator serves exactly
// one attempt; a retry after Failed needs a new Orchestrator.
package upload

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"github.com/dmitrijs2005/permavault/internal/client/models"
	"github.com/dmitrijs2005/permavault/internal/client/payments"
	"github.com/dmitrijs2005/permavault/internal/client/storage"
	"github.com/dmitrijs2005/permavault/internal/client/wallet"
	"github.com/dmitrijs2005/permavault/internal/common"
	"github.com/dmitrijs2005/permavault/internal/cryptox"
	"github.com/dmitrijs2005/permavault/internal/logging"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet is the per-attempt wallet session. *wallet.Session implements it.
type Wallet interface {
	Connect(ctx context.Context) (string, error)
	RefreshBalance(ctx context.Context) (decimal.Decimal, error)
	Fund(ctx context.Context, amount decimal.Decimal) (wallet.Receipt, error)
}

// PaymentMonitor issues and watches payment requests. *payments.Monitor
// implements it.
type PaymentMonitor interface {
	Create(ctx context.Context, file models.FileMeta, walletAddress string) (*models.PaymentRequest, error)
	Watch(ctx context.Context, req *models.PaymentRequest) *payments.Watch
}

// Recorder persists upload records on the backend.
type Recorder interface {
	SaveUpload(ctx context.Context, rec *models.UploadRecord) error
}

// Journal is the local append-only log of attempts.
type Journal interface {
	AppendEvent(ctx context.Context, attemptID, state, detail string) error
	SaveRecord(ctx context.Context, rec *models.UploadRecord) error
}

// Pricer computes the balance an upload requires.
type Pricer interface {
	Required(size int64) (decimal.Decimal, error)
}

type Deps struct {
	Wallet   Wallet
	Store    storage.Store
	Payments PaymentMonitor
	Recorder Recorder
	Journal  Journal
	Pricing  Pricer
	Logger   logging.Logger
}

// File is the plaintext selected for upload.
type File struct {
	Name     string
	MimeType string
	Data     []byte
}

type Options struct {
	Encrypt           bool
	Password          []byte
	MinPasswordLength int
	AppName           string
	AppVersion        string

	// SaveAttempts bounds retries of the idempotent record save.
	SaveAttempts uint
	SaveDelay    time.Duration
}

const DefaultMinPasswordLength = 8

// newVerifierSalt is a seam for tests.
var newVerifierSalt = func() ([]byte, error) {
	return common.GenerateRandByteArray(cryptox.SaltSize)
}

type Orchestrator struct {
	id   string
	deps Deps
	opts Options
	file File
	log  logging.Logger

	state    State
	history  []State
	address  string
	required decimal.Decimal
	balance  decimal.Decimal
	settled  decimal.Decimal
	payment  *models.PaymentRequest
	record   *models.UploadRecord
	err      error
	warnings []error

	watchMu sync.Mutex
	watch   *payments.Watch
}

// New validates the selection and enters FileSelected with the cost
// estimate computed.
func New(ctx context.Context, deps Deps, file File, opts Options) (*Orchestrator, error) {
	if len(file.Data) == 0 {
		return nil, fmt.Errorf("%w: empty file", common.ErrValidation)
	}
	if file.MimeType == "" {
		file.MimeType = common.EncryptedContentType
	}
	if opts.MinPasswordLength <= 0 {
		opts.MinPasswordLength = DefaultMinPasswordLength
	}
	if opts.SaveAttempts == 0 {
		opts.SaveAttempts = 3
	}
	if opts.SaveDelay <= 0 {
		opts.SaveDelay = 500 * time.Millisecond
	}
	if opts.Encrypt {
		if len(opts.Password) < opts.MinPasswordLength {
			return nil, fmt.Errorf("%w: password must be at least %d characters", common.ErrValidation, opts.MinPasswordLength)
		}
		opts.Password = append([]byte(nil), opts.Password...)
	}

	required, err := deps.Pricing.Required(int64(len(file.Data)))
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	o := &Orchestrator{
		id:       id,
		deps:     deps,
		opts:     opts,
		file:     file,
		log:      deps.Logger.With("module", "upload", "attempt_id", id),
		required: required,
	}
	o.enter(ctx, StateFileSelected, fmt.Sprintf("%s (%d bytes), required %s", file.Name, len(file.Data), required))
	return o, nil
}

func (o *Orchestrator) ID() string                { return o.id }
func (o *Orchestrator) State() State              { return o.state }
func (o *Orchestrator) Required() decimal.Decimal { return o.required }
func (o *Orchestrator) Balance() decimal.Decimal  { return o.balance }
func (o *Orchestrator) Settled() decimal.Decimal  { return o.settled }
func (o *Orchestrator) Address() string           { return o.address }
func (o *Orchestrator) Record() *models.UploadRecord {
	return o.record
}

// Err is the failure that moved the attempt to Failed.
func (o *Orchestrator) Err() error { return o.err }

// Warnings are non-fatal problems after a successful upload, such as a
// record save that did not go through.
func (o *Orchestrator) Warnings() []error { return o.warnings }

// History is every state entered, in order.
func (o *Orchestrator) History() []State {
	return append([]State(nil), o.history...)
}

// Coverage is the last ledger reading plus the amount of every payment
// request the backend reported as settled during this attempt. Paying a
// request moves funds to the service, not onto the ledger, so the ledger
// alone never reflects it.
func (o *Orchestrator) Coverage() decimal.Decimal {
	return o.balance.Add(o.settled)
}

// Sufficient reports whether the last balance check covers the upload.
func (o *Orchestrator) Sufficient() bool {
	return o.state == StateBalanceChecked && o.Coverage().GreaterThanOrEqual(o.required)
}

// Shortfall is how much is missing after the last balance check.
func (o *Orchestrator) Shortfall() decimal.Decimal {
	if c := o.Coverage(); c.LessThan(o.required) {
		return o.required.Sub(c)
	}
	return decimal.Zero
}

func (o *Orchestrator) enter(ctx context.Context, to State, detail string) {
	o.log.Info(ctx, "upload state", "from", o.state, "to", to)
	o.state = to
	o.history = append(o.history, to)
	if o.deps.Journal == nil {
		return
	}
	if err := o.deps.Journal.AppendEvent(ctx, o.id, string(to), detail); err != nil {
		o.log.Warn(ctx, "journal append failed", "error", err)
	}
}

func (o *Orchestrator) require(to State, from ...State) error {
	for _, s := range from {
		if o.state == s && canTransition(s, to) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", common.ErrInvalidTransition, o.state, to)
}

// ConnectWallet obtains the wallet address. On error the attempt stays in
// FileSelected so the user can retry.
func (o *Orchestrator) ConnectWallet(ctx context.Context) (string, error) {
	if err := o.require(StateWalletConnected, StateFileSelected); err != nil {
		return "", err
	}
	addr, err := o.deps.Wallet.Connect(ctx)
	if err != nil {
		return "", err
	}
	o.address = addr
	o.enter(ctx, StateWalletConnected, addr)
	return addr, nil
}

// CheckBalance re-reads the ledger balance. It is the only way into
// BalanceChecked and therefore the only way towards Uploading.
func (o *Orchestrator) CheckBalance(ctx context.Context) (decimal.Decimal, error) {
	if err := o.require(StateBalanceChecked, StateWalletConnected, StateFunding); err != nil {
		return decimal.Zero, err
	}
	bal, err := o.deps.Wallet.RefreshBalance(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	o.balance = bal
	o.enter(ctx, StateBalanceChecked, fmt.Sprintf("balance %s, settled %s, required %s", bal, o.settled, o.required))
	return bal, nil
}

func (o *Orchestrator) startFunding(ctx context.Context, detail string) error {
	switch {
	case o.state == StateFunding:
		return nil
	case o.state == StateBalanceChecked && !o.Sufficient():
		o.enter(ctx, StateFunding, detail)
		return nil
	case o.state == StateBalanceChecked:
		return fmt.Errorf("%w: balance already covers the upload", common.ErrInvalidTransition)
	default:
		return fmt.Errorf("%w: %s -> %s", common.ErrInvalidTransition, o.state, StateFunding)
	}
}

// Fund submits a direct ledger funding of amount, then re-reads the balance.
// The amount is never taken as the new balance.
func (o *Orchestrator) Fund(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := o.startFunding(ctx, "direct "+amount.String()); err != nil {
		return decimal.Zero, err
	}
	rc, err := o.deps.Wallet.Fund(ctx, amount)
	if err != nil {
		return decimal.Zero, err
	}
	o.log.Info(ctx, "funding submitted", "tx_id", rc.TxID, "amount", amount.String())
	return o.CheckBalance(ctx)
}

// StartPayment enters Funding and issues a payment request for the file.
// The request is watched in the background until AwaitPayment or Close.
func (o *Orchestrator) StartPayment(ctx context.Context) (*models.PaymentRequest, error) {
	if o.deps.Payments == nil {
		return nil, fmt.Errorf("%w: payments are not configured", common.ErrInvalidTransition)
	}
	if err := o.startFunding(ctx, "payment request"); err != nil {
		return nil, err
	}

	o.stopWatch()

	req, err := o.deps.Payments.Create(ctx, o.fileMeta(), o.address)
	if err != nil {
		return nil, err
	}
	o.payment = req

	o.watchMu.Lock()
	o.watch = o.deps.Payments.Watch(ctx, req)
	o.watchMu.Unlock()
	return req, nil
}

// AwaitPayment blocks until the current payment request settles, expires,
// fails or ctx ends. A settled payment adds its amount to the attempt's
// settled credit and is followed by a fresh balance check. An expired or
// failed one is discarded and the attempt stays in Funding.
func (o *Orchestrator) AwaitPayment(ctx context.Context) (decimal.Decimal, error) {
	o.watchMu.Lock()
	w := o.watch
	o.watchMu.Unlock()
	if w == nil || o.state != StateFunding {
		return decimal.Zero, fmt.Errorf("%w: no payment in progress", common.ErrInvalidTransition)
	}

	var res payments.Result
	select {
	case <-w.Done():
		res = w.Result()
	case <-ctx.Done():
		o.stopWatch()
		return decimal.Zero, ctx.Err()
	}
	o.stopWatch()

	if res.Err != nil {
		o.log.Warn(ctx, "payment not settled", "payment_id", res.PaymentID, "status", res.Status, "error", res.Err)
		o.payment = nil
		return decimal.Zero, res.Err
	}
	if o.payment != nil {
		o.settled = o.settled.Add(o.payment.Amount)
	}
	o.log.Info(ctx, "payment settled", "payment_id", res.PaymentID, "status", res.Status, "settled", o.settled.String())
	return o.CheckBalance(ctx)
}

// Payment returns the payment request being watched, if any.
func (o *Orchestrator) Payment() *models.PaymentRequest { return o.payment }

// Upload encrypts (when requested) and stores the file. It requires a
// balance check that covers the upload. A storage failure is final for the
// attempt and is not retried: funds may already have been spent.
func (o *Orchestrator) Upload(ctx context.Context) (*models.UploadRecord, error) {
	if err := o.require(StateUploading, StateBalanceChecked); err != nil {
		return nil, err
	}
	if !o.Sufficient() {
		return nil, fmt.Errorf("%w: coverage %s below required %s", common.ErrInsufficientFunds, o.Coverage(), o.required)
	}
	o.enter(ctx, StateUploading, "")
	defer common.WipeByteArray(o.opts.Password)

	payload := o.file.Data
	name := o.file.Name
	var (
		env          *cryptox.Envelope
		verifierSalt []byte
		verifierHash string
	)
	if o.opts.Encrypt {
		sealed, err := cryptox.Encrypt(o.file.Data, o.opts.Password)
		if err != nil {
			return nil, o.fail(ctx, err)
		}
		payload = sealed.Ciphertext
		name = o.file.Name + common.EncryptedSuffix
		env = &cryptox.Envelope{
			Salt:       sealed.Salt,
			IV:         sealed.IV,
			Algorithm:  sealed.Algorithm,
			Iterations: sealed.Iterations,
		}

		// Everything that can fail locally happens before any bytes are stored.
		salt, err := newVerifierSalt()
		if err != nil {
			return nil, o.fail(ctx, fmt.Errorf("%w: %v", common.ErrCrypto, err))
		}
		verifierSalt = salt
		verifierHash = cryptox.HashPassword(o.opts.Password, salt)
	}

	tags := storage.UploadTags(o.opts.AppName, o.opts.AppVersion, name, o.file.MimeType, o.opts.Encrypt)
	receipt, err := o.deps.Store.Put(ctx, payload, tags)
	if err != nil {
		return nil, o.fail(ctx, err)
	}

	rec := &models.UploadRecord{
		TransactionID: receipt.ID,
		URL:           receipt.URL,
		FileName:      o.file.Name,
		Size:          int64(len(o.file.Data)),
		MimeType:      o.file.MimeType,
		Cost:          o.required,
		Envelope:      env,
		VerifierSalt:  verifierSalt,
		VerifierHash:  verifierHash,
		CreatedAt:     time.Now().UTC(),
	}

	o.record = rec
	o.enter(ctx, StateSucceeded, receipt.ID)
	o.persist(ctx, rec)
	return rec, nil
}

func (o *Orchestrator) fail(ctx context.Context, err error) error {
	o.err = err
	o.log.Error(ctx, "upload failed", "error", err)
	o.enter(ctx, StateFailed, err.Error())
	return err
}

// persist saves the record locally and on the backend. Neither failure
// affects the attempt's outcome; both become warnings.
func (o *Orchestrator) persist(ctx context.Context, rec *models.UploadRecord) {
	if o.deps.Journal != nil {
		if err := o.deps.Journal.SaveRecord(ctx, rec); err != nil {
			o.warn(ctx, fmt.Errorf("local record: %w", err))
		}
	}
	if o.deps.Recorder == nil {
		return
	}

	err := retry.Do(
		func() error { return o.deps.Recorder.SaveUpload(ctx, rec) },
		retry.Attempts(o.opts.SaveAttempts),
		retry.Delay(o.opts.SaveDelay),
		retry.RetryIf(func(error) bool { return ctx.Err() == nil }),
	)
	if err != nil {
		o.warn(ctx, fmt.Errorf("save upload record: %w", err))
	}
}

func (o *Orchestrator) warn(ctx context.Context, err error) {
	o.warnings = append(o.warnings, err)
	o.log.Warn(ctx, "upload stored but follow-up failed", "error", err)
}

func (o *Orchestrator) fileMeta() models.FileMeta {
	return models.FileMeta{
		Name:      o.file.Name,
		Size:      int64(len(o.file.Data)),
		MimeType:  o.file.MimeType,
		Encrypted: o.opts.Encrypt,
	}
}

func (o *Orchestrator) stopWatch() {
	o.watchMu.Lock()
	w := o.watch
	o.watch = nil
	o.watchMu.Unlock()
	if w != nil {
		w.Stop()
	}
}

// Close stops any running payment watch. It may be called from another
// goroutine, for instance when the presenting UI is dismissed.
func (o *Orchestrator) Close() {
	o.stopWatch()
}
