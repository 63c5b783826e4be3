package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/permavault/internal/common"
	"github.com/dmitrijs2005/permavault/internal/dbx"
	"github.com/dmitrijs2005/permavault/internal/logging"
	"github.com/dmitrijs2005/permavault/internal/server/chain"
	"github.com/dmitrijs2005/permavault/internal/server/config"
	"github.com/dmitrijs2005/permavault/internal/server/models"
	"github.com/dmitrijs2005/permavault/internal/server/repositories/payments"
	"github.com/dmitrijs2005/permavault/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/permavault/internal/server/repositories/uploads"
	"github.com/dmitrijs2005/permavault/internal/server/repositories/users"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "k"
	cfg.AccessTokenValidityDuration = time.Hour
	cfg.RefreshTokenValidityDuration = 2 * time.Hour
	return cfg
}

var nopLogger logging.Logger = logging.NewNopLogger()

type memUsers struct {
	byName    map[string]*models.User
	createErr error
	getErr    error
}

func (m *memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	if _, ok := m.byName[u.UserName]; ok {
		return nil, common.ErrValidation
	}
	u.ID = "u-" + u.UserName
	m.byName[u.UserName] = u
	return u, nil
}

func (m *memUsers) GetByUsername(_ context.Context, login string) (*models.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	u, ok := m.byName[login]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

type memTokens struct {
	tokens    map[string]*models.RefreshToken
	createErr error
	findErr   error
}

func (m *memTokens) Create(_ context.Context, userID, token string, expiresAt time.Time) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.tokens[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: expiresAt}
	return nil
}

func (m *memTokens) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	t, ok := m.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return t, nil
}

func (m *memTokens) Delete(_ context.Context, token string) error {
	if _, ok := m.tokens[token]; !ok {
		return common.ErrorNotFound
	}
	delete(m.tokens, token)
	return nil
}

type memPayments struct {
	mu        sync.Mutex
	byID      map[string]*models.Payment
	updateErr error
	// steal makes the next UpdateStatus lose the race to this status.
	steal models.PaymentStatus
}

func (m *memPayments) Create(_ context.Context, p *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.byID[p.ID] = &cp
	return nil
}

func (m *memPayments) Get(_ context.Context, id, userID string) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok || p.UserID != userID {
		return nil, common.ErrorNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPayments) UpdateStatus(_ context.Context, id string, from, to models.PaymentStatus, txHash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return false, m.updateErr
	}
	if txHash != "" {
		for other, q := range m.byID {
			if other != id && strings.EqualFold(q.TxHash, txHash) {
				return false, fmt.Errorf("%w: %s", payments.ErrTxHashClaimed, txHash)
			}
		}
	}
	p := m.byID[id]
	if m.steal != "" {
		p.Status, m.steal = m.steal, ""
	}
	if p.Status != from {
		return false, nil
	}
	p.Status = to
	if txHash != "" {
		p.TxHash = txHash
	}
	return true, nil
}

func (m *memPayments) ClaimedTxHashes(_ context.Context, wallet, exceptID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for id, p := range m.byID {
		if id != exceptID && p.TxHash != "" && strings.EqualFold(p.WalletAddress, wallet) {
			out = append(out, p.TxHash)
		}
	}
	return out, nil
}

type memUploads struct {
	byID    map[string]*models.Upload
	saveErr error
	getErr  error
}

func (m *memUploads) Save(_ context.Context, u *models.Upload) (bool, error) {
	if m.saveErr != nil {
		return false, m.saveErr
	}
	if _, ok := m.byID[u.TransactionID]; ok {
		return false, nil
	}
	cp := *u
	m.byID[u.TransactionID] = &cp
	return true, nil
}

func (m *memUploads) ListByUser(_ context.Context, userID string, limit, offset int) ([]*models.Upload, int, error) {
	var all []*models.Upload
	for _, u := range m.byID {
		if u.UserID == userID {
			cp := *u
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *memUploads) GetByTransactionID(_ context.Context, id string) (*models.Upload, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	u, ok := m.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

type fakeRepoManager struct {
	users    *memUsers
	tokens   *memTokens
	payments *memPayments
	uploads  *memUploads
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:    &memUsers{byName: map[string]*models.User{}},
		tokens:   &memTokens{tokens: map[string]*models.RefreshToken{}},
		payments: &memPayments{byID: map[string]*models.Payment{}},
		uploads:  &memUploads{byID: map[string]*models.Upload{}},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return m.users }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.tokens }
func (m *fakeRepoManager) Payments(dbx.DBTX) payments.Repository           { return m.payments }
func (m *fakeRepoManager) Uploads(dbx.DBTX) uploads.Repository             { return m.uploads }

type fakeOracle struct {
	transfer *chain.Transfer
	err      error
	queries  []chain.Query
}

func (f *fakeOracle) FindTransfer(_ context.Context, q chain.Query) (*chain.Transfer, error) {
	f.queries = append(f.queries, q)
	return f.transfer, f.err
}
