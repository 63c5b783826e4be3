package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/permavault/internal/common"
	"github.com/dmitrijs2005/permavault/internal/rpc"
	"github.com/dmitrijs2005/permavault/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps service errors to gRPC status codes. Unknown errors are
// reported as Internal without their text.
func toStatus(err error) error {
	switch {
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrRefreshTokenExpired):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, common.ErrAuthentication):
		return status.Error(codes.PermissionDenied, common.ErrAuthentication.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrInvalidTransition), errors.Is(err, common.ErrExpired):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

func (s *GRPCServer) Register(ctx context.Context, req *rpc.RegisterRequest) (*rpc.RegisterResponse, error) {
	user, err := s.users.Register(ctx, req.Username, req.Salt, req.Verifier)
	if err != nil {
		s.logger.Warn(ctx, "registration failed", "err", err)
		return nil, toStatus(err)
	}
	return &rpc.RegisterResponse{UserID: user.ID}, nil
}

func (s *GRPCServer) GetSalt(ctx context.Context, req *rpc.GetSaltRequest) (*rpc.GetSaltResponse, error) {
	salt, err := s.users.GetSalt(ctx, req.Username)
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.GetSaltResponse{Salt: salt}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *rpc.LoginRequest) (*rpc.LoginResponse, error) {
	tokens, err := s.users.Login(ctx, req.Username, req.VerifierCandidate)
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.LoginResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *rpc.RefreshTokenRequest) (*rpc.RefreshTokenResponse, error) {
	tokens, err := s.users.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.RefreshTokenResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) CreatePayment(ctx context.Context, req *rpc.CreatePaymentRequest) (*rpc.CreatePaymentResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	file := services.FileMeta{Name: req.File.Name, Size: req.File.Size, MimeType: req.File.MimeType}
	p, err := s.payments.CreatePayment(ctx, userID, file, req.WalletAddress)
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.CreatePaymentResponse{Payment: paymentToRPC(p)}, nil
}

func (s *GRPCServer) PaymentStatus(ctx context.Context, req *rpc.PaymentStatusRequest) (*rpc.PaymentStatusResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.payments.PaymentStatus(ctx, userID, req.PaymentID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.PaymentStatusResponse{
		PaymentID: p.ID,
		Status:    string(p.Status),
		TxHash:    p.TxHash,
		ExpiresAt: p.ExpiresAt,
	}, nil
}

func (s *GRPCServer) SaveUpload(ctx context.Context, req *rpc.SaveUploadRequest) (*rpc.SaveUploadResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	created, err := s.uploads.Save(ctx, userID, uploadFromRPC(&req.Record))
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.SaveUploadResponse{Created: created}, nil
}

func (s *GRPCServer) ListUploads(ctx context.Context, req *rpc.ListUploadsRequest) (*rpc.ListUploadsResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	items, total, err := s.uploads.List(ctx, userID, req.Page, req.PerPage)
	if err != nil {
		return nil, toStatus(err)
	}
	resp := &rpc.ListUploadsResponse{Uploads: make([]rpc.UploadRecord, 0, len(items)), Total: total}
	for _, u := range items {
		resp.Uploads = append(resp.Uploads, uploadToRPC(u))
	}
	return resp, nil
}

func (s *GRPCServer) GetAccessSalt(ctx context.Context, req *rpc.AccessSaltRequest) (*rpc.AccessSaltResponse, error) {
	salt, err := s.access.AccessSalt(ctx, req.TransactionID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.AccessSaltResponse{Salt: salt}, nil
}

func (s *GRPCServer) VerifyAccess(ctx context.Context, req *rpc.VerifyAccessRequest) (*rpc.VerifyAccessResponse, error) {
	u, err := s.access.VerifyAccess(ctx, req.TransactionID, req.PasswordHash)
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.VerifyAccessResponse{Grant: rpc.AccessGrant{
		URL:      u.URL,
		FileName: u.FileName,
		MimeType: u.MimeType,
		Envelope: rpc.Envelope{Algorithm: u.Algorithm, Salt: u.Salt, IV: u.IV, Iterations: u.Iterations},
	}}, nil
}
