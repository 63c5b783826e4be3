package grpc

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/permavault/internal/common"
	"github.com/dmitrijs2005/permavault/internal/logging"
	"github.com/dmitrijs2005/permavault/internal/rpc"
	"github.com/dmitrijs2005/permavault/internal/server/auth"
	"github.com/dmitrijs2005/permavault/internal/server/models"
	"github.com/dmitrijs2005/permavault/internal/server/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ---- fakes ----

type fakeUser struct {
	refreshResp *services.TokenPair
	refreshErr  error

	regResp *models.User
	regErr  error

	saltResp []byte
	saltErr  error

	loginResp *services.TokenPair
	loginErr  error
}

func (f *fakeUser) RefreshToken(ctx context.Context, refresh string) (*services.TokenPair, error) {
	return f.refreshResp, f.refreshErr
}
func (f *fakeUser) Register(ctx context.Context, username string, salt []byte, verifier []byte) (*models.User, error) {
	return f.regResp, f.regErr
}
func (f *fakeUser) GetSalt(ctx context.Context, username string) ([]byte, error) {
	return f.saltResp, f.saltErr
}
func (f *fakeUser) Login(ctx context.Context, username string, verifierCandidate []byte) (*services.TokenPair, error) {
	return f.loginResp, f.loginErr
}

type fakePayments struct {
	gotUser string
	gotFile services.FileMeta
	out     *models.Payment
	err     error
}

func (f *fakePayments) CreatePayment(ctx context.Context, userID string, file services.FileMeta, wallet string) (*models.Payment, error) {
	f.gotUser, f.gotFile = userID, file
	return f.out, f.err
}
func (f *fakePayments) PaymentStatus(ctx context.Context, userID, id string) (*models.Payment, error) {
	f.gotUser = userID
	return f.out, f.err
}

type fakeUploads struct {
	saved   *models.Upload
	created bool
	list    []*models.Upload
	err     error
}

func (f *fakeUploads) Save(ctx context.Context, userID string, u *models.Upload) (bool, error) {
	f.saved = u
	return f.created, f.err
}
func (f *fakeUploads) List(ctx context.Context, userID string, page, perPage int) ([]*models.Upload, int, error) {
	return f.list, len(f.list), f.err
}

type fakeAccess struct {
	salt []byte
	out  *models.Upload
	err  error
}

func (f *fakeAccess) AccessSalt(ctx context.Context, id string) ([]byte, error) { return f.salt, f.err }
func (f *fakeAccess) VerifyAccess(ctx context.Context, id, hash string) (*models.Upload, error) {
	return f.out, f.err
}

// ---- helpers ----

type fakes struct {
	users    *fakeUser
	payments *fakePayments
	uploads  *fakeUploads
	access   *fakeAccess
}

func newFakes() *fakes {
	return &fakes{users: &fakeUser{}, payments: &fakePayments{}, uploads: &fakeUploads{}, access: &fakeAccess{}}
}

func newServer(f *fakes) *GRPCServer {
	return NewGRPCServer("127.0.0.1:0", nopLogger(), Services{
		Users:    f.users,
		Payments: f.payments,
		Uploads:  f.uploads,
		Access:   f.access,
	}, "k")
}

func nopLogger() logging.Logger { return logging.NewNopLogger() }

func mustToken(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.GenerateToken(userID, []byte("k"), time.Minute)
	require.NoError(t, err)
	return token
}

func authed(userID string) context.Context {
	return context.WithValue(context.Background(), userIDKey, userID)
}

// ---- tests ----

func TestToStatus(t *testing.T) {
	cases := []struct {
		err  error
		code codes.Code
	}{
		{common.ErrorUnauthorized, codes.Unauthenticated},
		{common.ErrRefreshTokenExpired, codes.Unauthenticated},
		{fmt.Errorf("x: %w", common.ErrInvalidToken), codes.Unauthenticated},
		{common.ErrAuthentication, codes.PermissionDenied},
		{common.ErrorNotFound, codes.NotFound},
		{fmt.Errorf("%w: bad", common.ErrValidation), codes.InvalidArgument},
		{common.ErrInvalidTransition, codes.FailedPrecondition},
		{common.ErrExpired, codes.FailedPrecondition},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
		{errors.New("db exploded"), codes.Internal},
	}
	for _, c := range cases {
		st := status.Convert(toStatus(c.err))
		assert.Equal(t, c.code, st.Code(), c.err.Error())
	}
	assert.Equal(t, "internal error", status.Convert(toStatus(errors.New("secret detail"))).Message())
}

func TestRefreshToken_OK(t *testing.T) {
	f := newFakes()
	f.users.refreshResp = &services.TokenPair{AccessToken: "a", RefreshToken: "r"}

	resp, err := newServer(f).RefreshToken(context.Background(), &rpc.RefreshTokenRequest{RefreshToken: "r0"})
	require.NoError(t, err)
	assert.Equal(t, "a", resp.AccessToken)
	assert.Equal(t, "r", resp.RefreshToken)
}

func TestRegister(t *testing.T) {
	f := newFakes()
	f.users.regResp = &models.User{ID: "u1"}

	resp, err := newServer(f).Register(context.Background(), &rpc.RegisterRequest{Username: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "u1", resp.UserID)

	f.users.regErr = fmt.Errorf("%w: taken", common.ErrValidation)
	_, err = newServer(f).Register(context.Background(), &rpc.RegisterRequest{Username: "alice"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestLogin_Unauthorized(t *testing.T) {
	f := newFakes()
	f.users.loginErr = common.ErrorUnauthorized

	_, err := newServer(f).Login(context.Background(), &rpc.LoginRequest{Username: "a"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestCreatePayment_UsesContextUser(t *testing.T) {
	f := newFakes()
	f.payments.out = &models.Payment{ID: "p1", Amount: decimal.RequireFromString("0.005"), Status: models.PaymentPending}

	resp, err := newServer(f).CreatePayment(authed("u1"), &rpc.CreatePaymentRequest{
		File:          rpc.FileMeta{Name: "a.txt", Size: 10, MimeType: "text/plain"},
		WalletAddress: "0x1",
	})
	require.NoError(t, err)
	assert.Equal(t, "p1", resp.Payment.PaymentID)
	assert.Equal(t, "pending", resp.Payment.Status)
	assert.Equal(t, "u1", f.payments.gotUser)
	assert.Equal(t, services.FileMeta{Name: "a.txt", Size: 10, MimeType: "text/plain"}, f.payments.gotFile)
}

func TestCreatePayment_NoUser(t *testing.T) {
	_, err := newServer(newFakes()).CreatePayment(context.Background(), &rpc.CreatePaymentRequest{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestPaymentStatus(t *testing.T) {
	f := newFakes()
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	f.payments.out = &models.Payment{ID: "p1", Status: models.PaymentConfirmed, TxHash: "0xabc", ExpiresAt: exp}

	resp, err := newServer(f).PaymentStatus(authed("u1"), &rpc.PaymentStatusRequest{PaymentID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, "confirmed", resp.Status)
	assert.Equal(t, "0xabc", resp.TxHash)
	assert.Equal(t, exp, resp.ExpiresAt)

	f.payments.err = common.ErrorNotFound
	_, err = newServer(f).PaymentStatus(authed("u1"), &rpc.PaymentStatusRequest{PaymentID: "p2"})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestSaveUpload_MapsEnvelope(t *testing.T) {
	f := newFakes()
	f.uploads.created = true

	resp, err := newServer(f).SaveUpload(authed("u1"), &rpc.SaveUploadRequest{Record: rpc.UploadRecord{
		TransactionID: "tx",
		URL:           "https://gw/tx",
		Encrypted:     true,
		Envelope:      &rpc.Envelope{Algorithm: "AES-256-GCM", Salt: []byte("s"), IV: []byte("i"), Iterations: 7},
		VerifierHash:  "h",
		VerifierSalt:  []byte("vs"),
	}})
	require.NoError(t, err)
	assert.True(t, resp.Created)

	u := f.uploads.saved
	require.NotNil(t, u)
	assert.Equal(t, "AES-256-GCM", u.Algorithm)
	assert.Equal(t, 7, u.Iterations)
	assert.Equal(t, []byte("vs"), u.VerifierSalt)
}

func TestListUploads(t *testing.T) {
	f := newFakes()
	f.uploads.list = []*models.Upload{
		{TransactionID: "tx-enc", Encrypted: true, VerifierHash: "h"},
		{TransactionID: "tx-pub", URL: "https://gw/tx-pub"},
	}

	resp, err := newServer(f).ListUploads(authed("u1"), &rpc.ListUploadsRequest{Page: 1, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, resp.Uploads, 2)
	assert.Equal(t, 2, resp.Total)
	assert.True(t, resp.Uploads[0].Encrypted)
	assert.Nil(t, resp.Uploads[0].Envelope)
	assert.Empty(t, resp.Uploads[0].VerifierHash)
	assert.Equal(t, "https://gw/tx-pub", resp.Uploads[1].URL)
}

func TestVerifyAccess(t *testing.T) {
	f := newFakes()
	f.access.out = &models.Upload{URL: "https://gw/tx", FileName: "a.txt.encrypted", Algorithm: "AES-256-GCM", Salt: []byte("s"), IV: []byte("i"), Iterations: 3}

	resp, err := newServer(f).VerifyAccess(context.Background(), &rpc.VerifyAccessRequest{TransactionID: "tx"})
	require.NoError(t, err)
	assert.Equal(t, "https://gw/tx", resp.Grant.URL)
	assert.Equal(t, 3, resp.Grant.Envelope.Iterations)

	f.access.err = common.ErrAuthentication
	_, err = newServer(f).VerifyAccess(context.Background(), &rpc.VerifyAccessRequest{TransactionID: "tx"})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
}
