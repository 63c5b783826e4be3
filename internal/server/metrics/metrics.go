// Package metrics exposes the server's Prometheus counters.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/permavault/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var paymentsCreated = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "permavault_payments_created_total",
		Help: "Payment requests issued.",
	},
)

var paymentStatus = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "permavault_payment_status_total",
		Help: "Payment status transitions by target status.",
	},
	[]string{"status"},
)

var uploadsSaved = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "permavault_uploads_saved_total",
		Help: "Upload records stored.",
	},
	[]string{"encrypted"},
)

var accessVerifications = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "permavault_access_verifications_total",
		Help: "Access password checks by outcome.",
	},
	[]string{"result"},
)

func PaymentCreated() {
	paymentsCreated.Inc()
}

func PaymentTransitioned(status string) {
	paymentStatus.With(prometheus.Labels{"status": status}).Inc()
}

func UploadSaved(encrypted bool) {
	uploadsSaved.With(prometheus.Labels{"encrypted": strconv.FormatBool(encrypted)}).Inc()
}

func AccessVerified(granted bool) {
	result := "denied"
	if granted {
		result = "granted"
	}
	accessVerifications.With(prometheus.Labels{"result": result}).Inc()
}

// Server serves /metrics until its context is cancelled.
type Server struct {
	srv    *http.Server
	logger logging.Logger
}

func NewServer(addr string, logger logging.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &Server{
		srv:    &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		logger: logger,
	}
}

func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "metrics shutdown", "err", err)
		}
	}()

	s.logger.Info(ctx, "metrics server listening", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
