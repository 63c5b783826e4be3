// Package payments watches a server-issued payment request until it settles,
// fails or runs out of time. Each watch runs in its own goroutine with its
// own cancellation; stopping a watch waits for the goroutine to exit.
package payments

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/permavault/internal/client/models"
	"github.com/dmitrijs2005/permavault/internal/common"
	"github.com/dmitrijs2005/permavault/internal/logging"
)

const DefaultPollInterval = 5 * time.Second

// Backend is the payment service boundary.
type Backend interface {
	CreatePayment(ctx context.Context, file models.FileMeta, walletAddress string) (*models.PaymentRequest, error)
	PaymentStatus(ctx context.Context, paymentID string) (models.PaymentStatus, error)
}

// Result is the outcome of a watch. Err is nil only for a settled payment.
type Result struct {
	PaymentID string
	Status    models.PaymentStatus
	Err       error
}

type Monitor struct {
	backend  Backend
	interval time.Duration
	logger   logging.Logger
	now      func() time.Time
}

func NewMonitor(b Backend, interval time.Duration, l logging.Logger) *Monitor {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Monitor{
		backend:  b,
		interval: interval,
		logger:   l.With("module", "payment_monitor"),
		now:      time.Now,
	}
}

// Create asks the backend for a new payment request. A request that is
// already past its expiry is rejected immediately.
func (m *Monitor) Create(ctx context.Context, file models.FileMeta, walletAddress string) (*models.PaymentRequest, error) {
	req, err := m.backend.CreatePayment(ctx, file, walletAddress)
	if err != nil {
		return nil, err
	}
	if !m.now().Before(req.ExpiresAt) {
		return nil, fmt.Errorf("%w: payment %s issued already expired", common.ErrExpired, req.ID)
	}
	m.logger.Info(ctx, "payment request created", "payment_id", req.ID, "amount", req.Amount.String(), "expires_at", req.ExpiresAt)
	return req, nil
}

// Watch is a running poll loop for one payment request.
type Watch struct {
	cancel context.CancelFunc
	done   chan struct{}

	once   sync.Once
	result Result
}

// Done is closed once the loop has exited.
func (w *Watch) Done() <-chan struct{} {
	return w.done
}

// Result blocks until the loop exits and returns its outcome.
func (w *Watch) Result() Result {
	<-w.done
	return w.result
}

// Stop cancels the loop and waits for it to exit. Safe to call more than once
// and after the loop finished on its own.
func (w *Watch) Stop() {
	w.once.Do(w.cancel)
	<-w.done
}

// Watch starts polling req every interval until a final status is seen, the
// request expires, or ctx (or Stop) cancels it.
func (m *Monitor) Watch(ctx context.Context, req *models.PaymentRequest) *Watch {
	ctx, cancel := context.WithCancel(ctx)
	w := &Watch{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(w.done)
		defer cancel()
		w.result = m.run(ctx, req)
	}()
	return w
}

// Wait is Watch followed by Result.
func (m *Monitor) Wait(ctx context.Context, req *models.PaymentRequest) Result {
	w := m.Watch(ctx, req)
	defer w.Stop()
	return w.Result()
}

func (m *Monitor) run(ctx context.Context, req *models.PaymentRequest) Result {
	log := m.logger.With("payment_id", req.ID)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		if res, final := m.poll(ctx, log, req); final {
			return res
		}

		select {
		case <-ctx.Done():
			log.Info(ctx, "payment watch cancelled")
			return Result{PaymentID: req.ID, Status: models.PaymentPending, Err: ctx.Err()}
		case <-ticker.C:
		}
	}
}

func (m *Monitor) poll(ctx context.Context, log logging.Logger, req *models.PaymentRequest) (Result, bool) {
	if !m.now().Before(req.ExpiresAt) {
		log.Warn(ctx, "payment window elapsed")
		return Result{PaymentID: req.ID, Status: models.PaymentExpired, Err: common.ErrExpired}, true
	}

	st, err := m.backend.PaymentStatus(ctx, req.ID)
	if err != nil {
		if ctx.Err() != nil {
			return Result{PaymentID: req.ID, Status: models.PaymentPending, Err: ctx.Err()}, true
		}
		if errors.Is(err, common.ErrorNotFound) {
			return Result{PaymentID: req.ID, Status: models.PaymentFailed, Err: err}, true
		}
		log.Warn(ctx, "payment status check failed", "error", err)
		return Result{}, false
	}

	log.Debug(ctx, "payment status", "status", st)

	switch {
	case st.Settled():
		log.Info(ctx, "payment settled", "status", st)
		return Result{PaymentID: req.ID, Status: st}, true
	case st == models.PaymentExpired:
		return Result{PaymentID: req.ID, Status: st, Err: common.ErrExpired}, true
	case st == models.PaymentFailed:
		return Result{PaymentID: req.ID, Status: st, Err: common.ErrPaymentFailed}, true
	default:
		return Result{}, false
	}
}
