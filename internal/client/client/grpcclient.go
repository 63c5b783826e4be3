package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/permavault/internal/client/models"
	"github.com/dmitrijs2005/permavault/internal/common"
	"github.com/dmitrijs2005/permavault/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const saltTimeout = 12 * time.Second

var _ Client = (*GRPCClient)(nil)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      rpc.VaultClient

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) tokens() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

func (s *GRPCClient) setTokens(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken, s.refreshToken = access, refresh
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if rpc.PublicMethods[method] {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	access, refresh := s.tokens()
	err := invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Unauthenticated || st.Message() != common.ErrTokenExpired.Error() {
		return err
	}
	if refresh == "" {
		return err
	}

	resp, rerr := s.client.RefreshToken(ctx, &rpc.RefreshTokenRequest{RefreshToken: refresh})
	if rerr != nil {
		return rerr
	}
	s.setTokens(resp.AccessToken, resp.RefreshToken)

	return invoker(withAccessToken(ctx, resp.AccessToken), method, req, reply, cc, opts...)
}

func NewVaultClientService(endpointURL string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {
	conn, err := grpc.NewClient(s.endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = rpc.NewVaultClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) Register(ctx context.Context, userName string, salt []byte, verifier []byte) error {
	_, err := s.client.Register(ctx, &rpc.RegisterRequest{Username: userName, Salt: salt, Verifier: verifier})
	return s.mapError(err)
}

func (s *GRPCClient) GetSalt(ctx context.Context, userName string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, saltTimeout)
	defer cancel()

	resp, err := s.client.GetSalt(ctx, &rpc.GetSaltRequest{Username: userName})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Salt, nil
}

func (s *GRPCClient) Login(ctx context.Context, userName string, verifier []byte) error {
	resp, err := s.client.Login(ctx, &rpc.LoginRequest{Username: userName, VerifierCandidate: verifier})
	if err != nil {
		return s.mapError(err)
	}
	s.setTokens(resp.AccessToken, resp.RefreshToken)
	return nil
}

func (s *GRPCClient) CreatePayment(ctx context.Context, file models.FileMeta, walletAddress string) (*models.PaymentRequest, error) {
	resp, err := s.client.CreatePayment(ctx, &rpc.CreatePaymentRequest{
		File: rpc.FileMeta{
			Name:      file.Name,
			Size:      file.Size,
			MimeType:  file.MimeType,
			Encrypted: file.Encrypted,
		},
		WalletAddress: walletAddress,
	})
	if err != nil {
		return nil, s.mapError(err)
	}
	return paymentFromRPC(&resp.Payment), nil
}

func (s *GRPCClient) PaymentStatus(ctx context.Context, paymentID string) (models.PaymentStatus, error) {
	resp, err := s.client.PaymentStatus(ctx, &rpc.PaymentStatusRequest{PaymentID: paymentID})
	if err != nil {
		return "", s.mapError(err)
	}
	return models.PaymentStatus(resp.Status), nil
}

func (s *GRPCClient) SaveUpload(ctx context.Context, rec *models.UploadRecord) error {
	_, err := s.client.SaveUpload(ctx, &rpc.SaveUploadRequest{Record: recordToRPC(rec)})
	return s.mapError(err)
}

func (s *GRPCClient) ListUploads(ctx context.Context, page, perPage int) ([]*models.UploadRecord, int, error) {
	resp, err := s.client.ListUploads(ctx, &rpc.ListUploadsRequest{Page: page, PerPage: perPage})
	if err != nil {
		return nil, 0, s.mapError(err)
	}
	out := make([]*models.UploadRecord, 0, len(resp.Uploads))
	for _, u := range resp.Uploads {
		out = append(out, recordFromRPC(u))
	}
	return out, resp.Total, nil
}

func (s *GRPCClient) AccessSalt(ctx context.Context, transactionID string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, saltTimeout)
	defer cancel()

	resp, err := s.client.GetAccessSalt(ctx, &rpc.AccessSaltRequest{TransactionID: transactionID})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Salt, nil
}

func (s *GRPCClient) VerifyAccess(ctx context.Context, transactionID, passwordHash string) (*models.AccessGrant, error) {
	resp, err := s.client.VerifyAccess(ctx, &rpc.VerifyAccessRequest{TransactionID: transactionID, PasswordHash: passwordHash})
	if err != nil {
		return nil, s.mapError(err)
	}
	g := resp.Grant
	return &models.AccessGrant{
		URL:      g.URL,
		FileName: g.FileName,
		MimeType: g.MimeType,
		Envelope: envelopeFromRPC(g.Envelope),
	}, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("rpc error: %w", err)
	}
	switch st.Code() {
	case codes.Unauthenticated:
		return common.ErrorUnauthorized
	case codes.PermissionDenied:
		return common.ErrAuthentication
	case codes.NotFound:
		return common.ErrorNotFound
	case codes.InvalidArgument, codes.AlreadyExists:
		return fmt.Errorf("%w: %s", common.ErrValidation, st.Message())
	case codes.FailedPrecondition:
		return fmt.Errorf("%w: %s", common.ErrInvalidTransition, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", common.ErrNetwork, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
