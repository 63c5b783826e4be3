package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "permavault.v1.Vault"

const (
	MethodRegister      = "/" + ServiceName + "/Register"
	MethodGetSalt       = "/" + ServiceName + "/GetSalt"
	MethodLogin         = "/" + ServiceName + "/Login"
	MethodRefreshToken  = "/" + ServiceName + "/RefreshToken"
	MethodCreatePayment = "/" + ServiceName + "/CreatePayment"
	MethodPaymentStatus = "/" + ServiceName + "/PaymentStatus"
	MethodSaveUpload    = "/" + ServiceName + "/SaveUpload"
	MethodListUploads   = "/" + ServiceName + "/ListUploads"
	MethodGetAccessSalt = "/" + ServiceName + "/GetAccessSalt"
	MethodVerifyAccess  = "/" + ServiceName + "/VerifyAccess"
)

// PublicMethods can be called without an access token.
var PublicMethods = map[string]bool{
	MethodRegister:      true,
	MethodGetSalt:       true,
	MethodLogin:         true,
	MethodRefreshToken:  true,
	MethodGetAccessSalt: true,
	MethodVerifyAccess:  true,
}

// VaultServer is implemented by the backend.
type VaultServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	GetSalt(context.Context, *GetSaltRequest) (*GetSaltResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*RefreshTokenResponse, error)
	CreatePayment(context.Context, *CreatePaymentRequest) (*CreatePaymentResponse, error)
	PaymentStatus(context.Context, *PaymentStatusRequest) (*PaymentStatusResponse, error)
	SaveUpload(context.Context, *SaveUploadRequest) (*SaveUploadResponse, error)
	ListUploads(context.Context, *ListUploadsRequest) (*ListUploadsResponse, error)
	GetAccessSalt(context.Context, *AccessSaltRequest) (*AccessSaltResponse, error)
	VerifyAccess(context.Context, *VerifyAccessRequest) (*VerifyAccessResponse, error)
}

// UnimplementedVaultServer answers every method with codes.Unimplemented.
// Embed it to implement a subset.
type UnimplementedVaultServer struct{}

func (UnimplementedVaultServer) Register(context.Context, *RegisterRequest) (*RegisterResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Register not implemented")
}
func (UnimplementedVaultServer) GetSalt(context.Context, *GetSaltRequest) (*GetSaltResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetSalt not implemented")
}
func (UnimplementedVaultServer) Login(context.Context, *LoginRequest) (*LoginResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Login not implemented")
}
func (UnimplementedVaultServer) RefreshToken(context.Context, *RefreshTokenRequest) (*RefreshTokenResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RefreshToken not implemented")
}
func (UnimplementedVaultServer) CreatePayment(context.Context, *CreatePaymentRequest) (*CreatePaymentResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreatePayment not implemented")
}
func (UnimplementedVaultServer) PaymentStatus(context.Context, *PaymentStatusRequest) (*PaymentStatusResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method PaymentStatus not implemented")
}
func (UnimplementedVaultServer) SaveUpload(context.Context, *SaveUploadRequest) (*SaveUploadResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SaveUpload not implemented")
}
func (UnimplementedVaultServer) ListUploads(context.Context, *ListUploadsRequest) (*ListUploadsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListUploads not implemented")
}
func (UnimplementedVaultServer) GetAccessSalt(context.Context, *AccessSaltRequest) (*AccessSaltResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetAccessSalt not implemented")
}
func (UnimplementedVaultServer) VerifyAccess(context.Context, *VerifyAccessRequest) (*VerifyAccessResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method VerifyAccess not implemented")
}

// unary adapts a typed server method to a grpc.MethodHandler.
func unary[Req, Resp any](fullMethod string, call func(VaultServer, context.Context, *Req) (*Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(VaultServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(VaultServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc describes the Vault service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*VaultServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: unary(MethodRegister, VaultServer.Register)},
		{MethodName: "GetSalt", Handler: unary(MethodGetSalt, VaultServer.GetSalt)},
		{MethodName: "Login", Handler: unary(MethodLogin, VaultServer.Login)},
		{MethodName: "RefreshToken", Handler: unary(MethodRefreshToken, VaultServer.RefreshToken)},
		{MethodName: "CreatePayment", Handler: unary(MethodCreatePayment, VaultServer.CreatePayment)},
		{MethodName: "PaymentStatus", Handler: unary(MethodPaymentStatus, VaultServer.PaymentStatus)},
		{MethodName: "SaveUpload", Handler: unary(MethodSaveUpload, VaultServer.SaveUpload)},
		{MethodName: "ListUploads", Handler: unary(MethodListUploads, VaultServer.ListUploads)},
		{MethodName: "GetAccessSalt", Handler: unary(MethodGetAccessSalt, VaultServer.GetAccessSalt)},
		{MethodName: "VerifyAccess", Handler: unary(MethodVerifyAccess, VaultServer.VerifyAccess)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "permavault/v1/vault",
}

// RegisterVaultServer registers srv on s.
func RegisterVaultServer(s grpc.ServiceRegistrar, srv VaultServer) {
	s.RegisterService(&ServiceDesc, srv)
}
