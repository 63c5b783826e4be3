package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/permavault/internal/common"
	"github.com/dmitrijs2005/permavault/internal/server/chain"
	"github.com/dmitrijs2005/permavault/internal/server/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWallet = "0x1111111111111111111111111111111111111111"

var t0 = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func newPaymentService(t *testing.T, o *fakeOracle) (*PaymentService, *fakeRepoManager, *time.Time) {
	t.Helper()
	db, _ := newSQLMockDB(t)
	rm := newFakeRepoManager()
	s := NewPaymentService(db, rm, o, testConfig(), nopLogger)
	now := t0
	s.now = func() time.Time { return now }
	return s, rm, &now
}

func TestCreatePayment(t *testing.T) {
	s, rm, _ := newPaymentService(t, &fakeOracle{})

	p, err := s.CreatePayment(context.Background(), "u1", FileMeta{Name: "a.txt", Size: 3 << 20, MimeType: "text/plain"}, testWallet)
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, models.PaymentPending, p.Status)
	assert.True(t, p.Amount.Equal(decimal.RequireFromString("0.015")), p.Amount.String())
	assert.Equal(t, "USDC", p.Token)
	assert.Equal(t, "polygon", p.Network)
	assert.Equal(t, int64(137), p.ChainID)
	assert.Equal(t, "0x742d35Cc6634C0532925a3b8D4C2C4e07C3c4526", p.ToAddress)
	assert.Equal(t, t0.Add(15*time.Minute), p.ExpiresAt)

	stored, err := rm.payments.Get(context.Background(), p.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, "a.txt", stored.FileName)
}

func TestCreatePayment_MinimumAmount(t *testing.T) {
	s, _, _ := newPaymentService(t, &fakeOracle{})

	p, err := s.CreatePayment(context.Background(), "u1", FileMeta{Name: "a", Size: 10}, testWallet)
	require.NoError(t, err)
	assert.True(t, p.Amount.Equal(decimal.RequireFromString("0.005")))
}

func TestCreatePayment_Validation(t *testing.T) {
	s, _, _ := newPaymentService(t, &fakeOracle{})

	_, err := s.CreatePayment(context.Background(), "u1", FileMeta{Size: 10}, "0x123")
	require.ErrorIs(t, err, common.ErrValidation)

	_, err = s.CreatePayment(context.Background(), "u1", FileMeta{Size: 0}, testWallet)
	require.ErrorIs(t, err, common.ErrValidation)

	_, err = s.CreatePayment(context.Background(), "u1", FileMeta{Size: 200 << 20}, testWallet)
	require.ErrorIs(t, err, common.ErrValidation)
}

func createTestPayment(t *testing.T, s *PaymentService) *models.Payment {
	t.Helper()
	p, err := s.CreatePayment(context.Background(), "u1", FileMeta{Name: "a", Size: 10}, testWallet)
	require.NoError(t, err)
	return p
}

func TestPaymentStatus_PendingWithoutTransfer(t *testing.T) {
	o := &fakeOracle{}
	s, _, _ := newPaymentService(t, o)
	p := createTestPayment(t, s)

	got, err := s.PaymentStatus(context.Background(), "u1", p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, got.Status)

	require.Len(t, o.queries, 1)
	q := o.queries[0]
	assert.Equal(t, testWallet, q.From)
	assert.Equal(t, p.ToAddress, q.To)
	assert.True(t, q.Amount.Equal(p.Amount))
	assert.True(t, q.Tolerance.Equal(decimal.RequireFromString("0.0001")))
	assert.Empty(t, q.Exclude)
	assert.Equal(t, p.CreatedAt, q.NotBefore)
}

func TestPaymentStatus_ConfirmedThenCompleted(t *testing.T) {
	o := &fakeOracle{transfer: &chain.Transfer{Hash: "0xabc", Confirmations: 3}}
	s, rm, _ := newPaymentService(t, o)
	p := createTestPayment(t, s)

	got, err := s.PaymentStatus(context.Background(), "u1", p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentConfirmed, got.Status)
	assert.Equal(t, "0xabc", got.TxHash)

	o.transfer.Confirmations = 12
	got, err = s.PaymentStatus(context.Background(), "u1", p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, got.Status)

	// Final: the oracle is no longer consulted.
	calls := len(o.queries)
	got, err = s.PaymentStatus(context.Background(), "u1", p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, got.Status)
	assert.Len(t, o.queries, calls)
	assert.Equal(t, models.PaymentCompleted, rm.payments.byID[p.ID].Status)
}

func TestPaymentStatus_TransferSettlesOneRequest(t *testing.T) {
	o := &fakeOracle{transfer: &chain.Transfer{Hash: "0xabc", Confirmations: 12}}
	s, rm, _ := newPaymentService(t, o)
	first := createTestPayment(t, s)
	second := createTestPayment(t, s)

	got, err := s.PaymentStatus(context.Background(), "u1", first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, got.Status)

	got, err = s.PaymentStatus(context.Background(), "u1", second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, got.Status)
	assert.Empty(t, got.TxHash)
	assert.Equal(t, models.PaymentPending, rm.payments.byID[second.ID].Status)

	require.Len(t, o.queries, 2)
	assert.Empty(t, o.queries[0].Exclude)
	assert.Equal(t, []string{"0xabc"}, o.queries[1].Exclude)
}

func TestPaymentStatus_ExpiresWithoutOracle(t *testing.T) {
	o := &fakeOracle{transfer: &chain.Transfer{Hash: "0xlate", Confirmations: 100}}
	s, _, now := newPaymentService(t, o)
	p := createTestPayment(t, s)

	*now = p.ExpiresAt
	got, err := s.PaymentStatus(context.Background(), "u1", p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentExpired, got.Status)
	assert.Empty(t, o.queries)
}

func TestPaymentStatus_ConfirmedDoesNotExpire(t *testing.T) {
	o := &fakeOracle{transfer: &chain.Transfer{Hash: "0xabc", Confirmations: 1}}
	s, _, now := newPaymentService(t, o)
	p := createTestPayment(t, s)

	_, err := s.PaymentStatus(context.Background(), "u1", p.ID)
	require.NoError(t, err)

	*now = p.ExpiresAt.Add(time.Hour)
	o.transfer.Confirmations = 20
	got, err := s.PaymentStatus(context.Background(), "u1", p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, got.Status)
}

func TestPaymentStatus_OracleErrorKeepsStatus(t *testing.T) {
	s, _, _ := newPaymentService(t, &fakeOracle{err: common.ErrNetwork})
	p := createTestPayment(t, s)

	got, err := s.PaymentStatus(context.Background(), "u1", p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, got.Status)
}

func TestPaymentStatus_LostRaceReportsStored(t *testing.T) {
	s, rm, _ := newPaymentService(t, &fakeOracle{transfer: &chain.Transfer{Hash: "0xabc", Confirmations: 1}})
	p := createTestPayment(t, s)
	rm.payments.steal = models.PaymentFailed

	got, err := s.PaymentStatus(context.Background(), "u1", p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentFailed, got.Status)
}

func TestPaymentStatus_ScopedToUser(t *testing.T) {
	s, _, _ := newPaymentService(t, &fakeOracle{})
	p := createTestPayment(t, s)

	_, err := s.PaymentStatus(context.Background(), "someone-else", p.ID)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPaymentStatus_UpdateError(t *testing.T) {
	s, rm, _ := newPaymentService(t, &fakeOracle{transfer: &chain.Transfer{Hash: "0xabc", Confirmations: 50}})
	p := createTestPayment(t, s)
	rm.payments.updateErr = errBoom{}

	_, err := s.PaymentStatus(context.Background(), "u1", p.ID)
	require.ErrorIs(t, err, common.ErrorInternal)
}
