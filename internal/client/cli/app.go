package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/dmitrijs2005/permavault/internal/client/access"
	"github.com/dmitrijs2005/permavault/internal/client/client"
	"github.com/dmitrijs2005/permavault/internal/client/config"
	"github.com/dmitrijs2005/permavault/internal/client/journal"
	"github.com/dmitrijs2005/permavault/internal/client/models"
	"github.com/dmitrijs2005/permavault/internal/client/payments"
	"github.com/dmitrijs2005/permavault/internal/client/services"
	"github.com/dmitrijs2005/permavault/internal/client/storage"
	"github.com/dmitrijs2005/permavault/internal/client/upload"
	"github.com/dmitrijs2005/permavault/internal/client/wallet"
	"github.com/dmitrijs2005/permavault/internal/filex"
	"github.com/dmitrijs2005/permavault/internal/logging"
	"github.com/dmitrijs2005/permavault/internal/pricing"
)

// Backend is what the commands need from the backend client.
type Backend interface {
	payments.Backend
	upload.Recorder
	access.Backend
	ListUploads(ctx context.Context, page, perPage int) ([]*models.UploadRecord, int, error)
}

// Journal is the local attempt log.
type Journal interface {
	upload.Journal
	ListEvents(ctx context.Context, attemptID string) ([]journal.Event, error)
	ListRecords(ctx context.Context) ([]*models.UploadRecord, error)
}

type App struct {
	config      *config.Config
	authService services.AuthService
	backend     Backend
	ledger      wallet.Ledger
	store       storage.Store
	journal     Journal
	pricing     pricing.Model
	http        *http.Client
	logger      logging.Logger

	userName string
	reader   *bufio.Reader
	out      io.Writer
}

func newStore(ctx context.Context, c *config.Config) (storage.Store, error) {
	switch c.StoreKind {
	case config.StoreS3:
		return storage.NewS3Store(ctx, storage.S3Config{
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3Endpoint,
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
		})
	default:
		return storage.NewIPFSStore(c.IPFSAPIURL, c.IPFSGateway), nil
	}
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := logging.NewTextLogger(os.Stderr, level)

	if err := filex.EnsureParentDir(c.JournalDSN); err != nil {
		return nil, err
	}
	db, err := journal.InitDatabase(ctx, c.JournalDSN)
	if err != nil {
		logger.Error(ctx, "error initializing journal", "error", err)
		return nil, err
	}

	apiClient, err := client.NewVaultClientService(c.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}

	store, err := newStore(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("permanent store: %w", err)
	}

	model := pricing.Default()
	model.MaxSize = c.MaxUploadSize

	return &App{
		config:      c,
		authService: services.NewAuthService(apiClient),
		backend:     apiClient,
		ledger:      wallet.NewHTTPLedger(c.LedgerURL, c.WalletAddress, c.LedgerTimeout),
		store:       store,
		journal:     journal.New(db),
		pricing:     model,
		http:        &http.Client{Timeout: c.LedgerTimeout},
		logger:      logger,
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}, nil
}

func (a *App) isLoggedIn() bool {
	return a.userName != ""
}

func (a *App) getStatus() string {
	if a.userName == "" {
		return "(guest)"
	}
	return "(" + a.userName + ")"
}

// Run starts the REPL and blocks until the user exits or stdin closes.
func (a *App) Run(ctx context.Context) {
	defer a.authService.Close(ctx)

	printlnFn(headerText("Welcome to permavault (type 'help' for commands)"))
	runREPL(ctx, a, a.getStatus, a.reader)
}
