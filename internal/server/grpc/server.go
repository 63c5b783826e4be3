package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/permavault/internal/logging"
	"github.com/dmitrijs2005/permavault/internal/rpc"
	"github.com/dmitrijs2005/permavault/internal/server/models"
	"github.com/dmitrijs2005/permavault/internal/server/services"
	"google.golang.org/grpc"
)

type userSvc interface {
	Register(ctx context.Context, username string, salt, verifier []byte) (*models.User, error)
	GetSalt(ctx context.Context, username string) ([]byte, error)
	Login(ctx context.Context, username string, verifierCandidate []byte) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
}

type paymentSvc interface {
	CreatePayment(ctx context.Context, userID string, file services.FileMeta, walletAddress string) (*models.Payment, error)
	PaymentStatus(ctx context.Context, userID, paymentID string) (*models.Payment, error)
}

type uploadSvc interface {
	Save(ctx context.Context, userID string, u *models.Upload) (bool, error)
	List(ctx context.Context, userID string, page, perPage int) ([]*models.Upload, int, error)
}

type accessSvc interface {
	AccessSalt(ctx context.Context, transactionID string) ([]byte, error)
	VerifyAccess(ctx context.Context, transactionID, passwordHash string) (*models.Upload, error)
}

// Services groups the backend services the transport exposes.
type Services struct {
	Users    userSvc
	Payments paymentSvc
	Uploads  uploadSvc
	Access   accessSvc
}

var _ rpc.VaultServer = (*GRPCServer)(nil)

type GRPCServer struct {
	address   string
	users     userSvc
	payments  paymentSvc
	uploads   uploadSvc
	access    accessSvc
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, svc Services, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		users:     svc.Users,
		payments:  svc.Payments,
		uploads:   svc.Uploads,
		access:    svc.Access,
		jwtSecret: []byte(secretKey),
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	rpc.RegisterVaultServer(srv, s)
	return srv
}

// Run serves on the configured address until ctx is cancelled.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil {
		return err
	}
	return nil
}
