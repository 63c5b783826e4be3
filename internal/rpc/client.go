package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// VaultClient is the client side of VaultServer.
type VaultClient interface {
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error)
	GetSalt(ctx context.Context, in *GetSaltRequest, opts ...grpc.CallOption) (*GetSaltResponse, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error)
	RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*RefreshTokenResponse, error)
	CreatePayment(ctx context.Context, in *CreatePaymentRequest, opts ...grpc.CallOption) (*CreatePaymentResponse, error)
	PaymentStatus(ctx context.Context, in *PaymentStatusRequest, opts ...grpc.CallOption) (*PaymentStatusResponse, error)
	SaveUpload(ctx context.Context, in *SaveUploadRequest, opts ...grpc.CallOption) (*SaveUploadResponse, error)
	ListUploads(ctx context.Context, in *ListUploadsRequest, opts ...grpc.CallOption) (*ListUploadsResponse, error)
	GetAccessSalt(ctx context.Context, in *AccessSaltRequest, opts ...grpc.CallOption) (*AccessSaltResponse, error)
	VerifyAccess(ctx context.Context, in *VerifyAccessRequest, opts ...grpc.CallOption) (*VerifyAccessResponse, error)
}

type vaultClient struct {
	cc grpc.ClientConnInterface
}

func NewVaultClient(cc grpc.ClientConnInterface) VaultClient {
	return &vaultClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *vaultClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterResponse](ctx, c.cc, MethodRegister, in, opts)
}

func (c *vaultClient) GetSalt(ctx context.Context, in *GetSaltRequest, opts ...grpc.CallOption) (*GetSaltResponse, error) {
	return invoke[GetSaltResponse](ctx, c.cc, MethodGetSalt, in, opts)
}

func (c *vaultClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, MethodLogin, in, opts)
}

func (c *vaultClient) RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*RefreshTokenResponse, error) {
	return invoke[RefreshTokenResponse](ctx, c.cc, MethodRefreshToken, in, opts)
}

func (c *vaultClient) CreatePayment(ctx context.Context, in *CreatePaymentRequest, opts ...grpc.CallOption) (*CreatePaymentResponse, error) {
	return invoke[CreatePaymentResponse](ctx, c.cc, MethodCreatePayment, in, opts)
}

func (c *vaultClient) PaymentStatus(ctx context.Context, in *PaymentStatusRequest, opts ...grpc.CallOption) (*PaymentStatusResponse, error) {
	return invoke[PaymentStatusResponse](ctx, c.cc, MethodPaymentStatus, in, opts)
}

func (c *vaultClient) SaveUpload(ctx context.Context, in *SaveUploadRequest, opts ...grpc.CallOption) (*SaveUploadResponse, error) {
	return invoke[SaveUploadResponse](ctx, c.cc, MethodSaveUpload, in, opts)
}

func (c *vaultClient) ListUploads(ctx context.Context, in *ListUploadsRequest, opts ...grpc.CallOption) (*ListUploadsResponse, error) {
	return invoke[ListUploadsResponse](ctx, c.cc, MethodListUploads, in, opts)
}

func (c *vaultClient) GetAccessSalt(ctx context.Context, in *AccessSaltRequest, opts ...grpc.CallOption) (*AccessSaltResponse, error) {
	return invoke[AccessSaltResponse](ctx, c.cc, MethodGetAccessSalt, in, opts)
}

func (c *vaultClient) VerifyAccess(ctx context.Context, in *VerifyAccessRequest, opts ...grpc.CallOption) (*VerifyAccessResponse, error) {
	return invoke[VerifyAccessResponse](ctx, c.cc, MethodVerifyAccess, in, opts)
}
