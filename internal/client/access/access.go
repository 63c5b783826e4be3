// Package access retrieves and decrypts a private upload:
//
//	Requested -> PasswordPrompted -> Verifying -> Verified -> Downloading -> Decrypting -> Delivered
//	                                    |                                        |
//	                                    +----------------> Denied <--------------+
//
// The password is checked against the backend verifier before the envelope
// is released; the AES key is derived locally from the envelope salt, which
// is independent of the verifier salt. Plaintext is only ever returned in
// memory.
package access

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/permavault/internal/client/models"
	"github.com/dmitrijs2005/permavault/internal/client/storage"
	"github.com/dmitrijs2005/permavault/internal/common"
	"github.com/dmitrijs2005/permavault/internal/cryptox"
	"github.com/dmitrijs2005/permavault/internal/logging"
	"github.com/dmitrijs2005/permavault/internal/netx"
)

type State string

const (
	StateRequested        State = "requested"
	StatePasswordPrompted State = "password_prompted"
	StateVerifying        State = "verifying"
	StateVerified         State = "verified"
	StateDownloading      State = "downloading"
	StateDecrypting       State = "decrypting"
	StateDelivered        State = "delivered"
	StateDenied           State = "denied"
)

// Backend is the access service boundary.
type Backend interface {
	AccessSalt(ctx context.Context, transactionID string) ([]byte, error)
	VerifyAccess(ctx context.Context, transactionID, passwordHash string) (*models.AccessGrant, error)
}

type Deps struct {
	Backend Backend
	// Store, when set, is used to fetch the ciphertext by transaction id.
	// Otherwise the granted URL is downloaded with HTTP.
	Store   storage.Store
	HTTP    *http.Client
	MaxSize int64
	Logger  logging.Logger
}

// Result is the decrypted file. Data is the caller's to save and wipe.
type Result struct {
	FileName string
	MimeType string
	Data     []byte
}

type Flow struct {
	deps    Deps
	txID    string
	state   State
	history []State
	log     logging.Logger
}

func New(deps Deps, transactionID string) (*Flow, error) {
	if transactionID == "" {
		return nil, fmt.Errorf("%w: empty transaction id", common.ErrValidation)
	}
	if deps.HTTP == nil {
		deps.HTTP = http.DefaultClient
	}
	f := &Flow{
		deps: deps,
		txID: transactionID,
		log:  deps.Logger.With("module", "access", "transaction_id", transactionID),
	}
	f.enter(context.Background(), StateRequested)
	return f, nil
}

func (f *Flow) State() State { return f.state }

func (f *Flow) History() []State {
	return append([]State(nil), f.history...)
}

func (f *Flow) enter(ctx context.Context, s State) {
	f.log.Debug(ctx, "access state", "from", f.state, "to", s)
	f.state = s
	f.history = append(f.history, s)
}

// Prompt marks that the password has been asked for.
func (f *Flow) Prompt(ctx context.Context) error {
	if f.state != StateRequested {
		return fmt.Errorf("%w: %s -> %s", common.ErrInvalidTransition, f.state, StatePasswordPrompted)
	}
	f.enter(ctx, StatePasswordPrompted)
	return nil
}

// Open verifies password, downloads the ciphertext and decrypts it. Any
// authentication failure on the way ends in Denied with
// common.ErrAuthentication, whichever check failed; network
// errors are returned as they are and leave the flow where it stopped.
func (f *Flow) Open(ctx context.Context, password []byte) (*Result, error) {
	if f.state == StateRequested {
		if err := f.Prompt(ctx); err != nil {
			return nil, err
		}
	}
	if f.state != StatePasswordPrompted {
		return nil, fmt.Errorf("%w: %s -> %s", common.ErrInvalidTransition, f.state, StateVerifying)
	}

	f.enter(ctx, StateVerifying)
	grant, err := f.verify(ctx, password)
	if err != nil {
		return nil, f.deny(ctx, err)
	}
	f.enter(ctx, StateVerified)

	f.enter(ctx, StateDownloading)
	ct, err := f.download(ctx, grant)
	if err != nil {
		return nil, err
	}

	f.enter(ctx, StateDecrypting)
	plain, err := grant.Envelope.OpenCiphertext(ct, password)
	if err != nil {
		return nil, f.deny(ctx, err)
	}

	f.enter(ctx, StateDelivered)
	f.log.Info(ctx, "file delivered", "size", len(plain))
	return &Result{FileName: grant.FileName, MimeType: grant.MimeType, Data: plain}, nil
}

func (f *Flow) verify(ctx context.Context, password []byte) (*models.AccessGrant, error) {
	salt, err := f.deps.Backend.AccessSalt(ctx, f.txID)
	if err != nil {
		return nil, err
	}
	grant, err := f.deps.Backend.VerifyAccess(ctx, f.txID, cryptox.HashPassword(password, salt))
	if err != nil {
		return nil, err
	}
	if err := grant.Envelope.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrAuthentication, err)
	}
	return grant, nil
}

func (f *Flow) download(ctx context.Context, grant *models.AccessGrant) ([]byte, error) {
	limit := f.deps.MaxSize
	if limit <= 0 {
		limit = 100 << 20
	}
	// The stored ciphertext is the plaintext plus its GCM tag.
	limit += cryptox.TagSize

	if f.deps.Store != nil {
		return f.deps.Store.Get(ctx, f.txID, limit)
	}
	if grant.URL == "" {
		return nil, fmt.Errorf("%w: no download url for %s", common.ErrorNotFound, f.txID)
	}
	return netx.Download(ctx, f.deps.HTTP, grant.URL, limit)
}

// deny moves to Denied for authentication failures and hides which check
// failed. Other errors pass through unchanged.
func (f *Flow) deny(ctx context.Context, err error) error {
	if !errors.Is(err, common.ErrAuthentication) && !errors.Is(err, common.ErrorUnauthorized) {
		if f.state == StateVerifying {
			// The password was never judged; it may be tried again.
			f.enter(ctx, StatePasswordPrompted)
		}
		return err
	}
	f.log.Warn(ctx, "access denied", "state", f.state)
	f.enter(ctx, StateDenied)
	return common.ErrAuthentication
}
