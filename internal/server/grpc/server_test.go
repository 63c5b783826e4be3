package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/permavault/internal/common"
	"github.com/dmitrijs2005/permavault/internal/rpc"
	"github.com/dmitrijs2005/permavault/internal/server/models"
	"github.com/dmitrijs2005/permavault/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func dialBufconn(t *testing.T, s *GRPCServer) rpc.VaultClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.serve(ctx, lis) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return rpc.NewVaultClient(conn)
}

func TestServer_LoginThenAuthorizedCall(t *testing.T) {
	f := newFakes()
	s := newServer(f)
	c := dialBufconn(t, s)
	ctx := context.Background()

	f.users.loginResp = &services.TokenPair{RefreshToken: "r"}
	// A real token so the interceptor lets the next call through.
	f.users.loginResp.AccessToken = mustToken(t, "u1")

	login, err := c.Login(ctx, &rpc.LoginRequest{Username: "alice", VerifierCandidate: []byte("v")})
	require.NoError(t, err)

	f.uploads.list = []*models.Upload{{TransactionID: "tx-1", URL: "https://gw/tx-1"}}
	authCtx := metadata.AppendToOutgoingContext(ctx, common.AccessTokenHeaderName, login.AccessToken)
	resp, err := c.ListUploads(authCtx, &rpc.ListUploadsRequest{Page: 1})
	require.NoError(t, err)
	require.Len(t, resp.Uploads, 1)
	assert.Equal(t, "tx-1", resp.Uploads[0].TransactionID)
}

func TestServer_RejectsUnauthenticated(t *testing.T) {
	c := dialBufconn(t, newServer(newFakes()))

	_, err := c.SaveUpload(context.Background(), &rpc.SaveUploadRequest{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestServer_PublicAccessCalls(t *testing.T) {
	f := newFakes()
	f.access.salt = []byte("0123456789abcdef")
	c := dialBufconn(t, newServer(f))

	resp, err := c.GetAccessSalt(context.Background(), &rpc.AccessSaltRequest{TransactionID: "tx"})
	require.NoError(t, err)
	assert.Equal(t, []byte("0123456789abcdef"), resp.Salt)

	f.access.err = common.ErrAuthentication
	_, err = c.VerifyAccess(context.Background(), &rpc.VerifyAccessRequest{TransactionID: "tx", PasswordHash: "h"})
	st := status.Convert(err)
	assert.Equal(t, codes.PermissionDenied, st.Code())
	assert.Equal(t, common.ErrAuthentication.Error(), st.Message())
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:0", nopLogger(), Services{}, "secret")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:99999", nopLogger(), Services{}, "secret")
	require.Error(t, srv.Run(context.Background()))
}
