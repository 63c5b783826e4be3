package rpc

import (
	"time"

	"github.com/shopspring/decimal"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Salt     []byte `json:"salt"`
	Verifier []byte `json:"verifier"`
}

type RegisterResponse struct {
	UserID string `json:"user_id"`
}

type GetSaltRequest struct {
	Username string `json:"username"`
}

type GetSaltResponse struct {
	Salt []byte `json:"salt"`
}

type LoginRequest struct {
	Username          string `json:"username"`
	VerifierCandidate []byte `json:"verifier_candidate"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// FileMeta describes the file a payment is requested for.
type FileMeta struct {
	Name      string `json:"name"`
	Size      int64  `json:"size"`
	MimeType  string `json:"mime_type"`
	Encrypted bool   `json:"encrypted"`
}

type CreatePaymentRequest struct {
	File          FileMeta `json:"file"`
	WalletAddress string   `json:"wallet_address"`
}

// Payment is the wire form of a payment request.
type Payment struct {
	PaymentID string          `json:"payment_id"`
	ToAddress string          `json:"to_address"`
	Amount    decimal.Decimal `json:"amount"`
	Token     string          `json:"token"`
	Network   string          `json:"network"`
	ChainID   int64           `json:"chain_id"`
	Status    string          `json:"status"`
	TxHash    string          `json:"tx_hash,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

type CreatePaymentResponse struct {
	Payment Payment `json:"payment"`
}

type PaymentStatusRequest struct {
	PaymentID string `json:"payment_id"`
}

type PaymentStatusResponse struct {
	PaymentID string    `json:"payment_id"`
	Status    string    `json:"status"`
	TxHash    string    `json:"tx_hash,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Envelope carries the decryption parameters of an encrypted upload. The
// ciphertext itself lives in the permanent store.
type Envelope struct {
	Algorithm  string `json:"algorithm"`
	Salt       []byte `json:"salt"`
	IV         []byte `json:"iv"`
	Iterations int    `json:"iterations"`
}

// UploadRecord is a successful permanent-store upload.
type UploadRecord struct {
	TransactionID string          `json:"transaction_id"`
	URL           string          `json:"url,omitempty"`
	FileName      string          `json:"file_name"`
	Size          int64           `json:"size"`
	MimeType      string          `json:"mime_type"`
	Cost          decimal.Decimal `json:"cost"`
	Encrypted     bool            `json:"encrypted"`
	Envelope      *Envelope       `json:"envelope,omitempty"`
	VerifierHash  string          `json:"verifier_hash,omitempty"`
	VerifierSalt  []byte          `json:"verifier_salt,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

type SaveUploadRequest struct {
	Record UploadRecord `json:"record"`
}

type SaveUploadResponse struct {
	Created bool `json:"created"`
}

type ListUploadsRequest struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

type ListUploadsResponse struct {
	Uploads []UploadRecord `json:"uploads"`
	Total   int            `json:"total"`
}

type AccessSaltRequest struct {
	TransactionID string `json:"transaction_id"`
}

type AccessSaltResponse struct {
	Salt []byte `json:"salt"`
}

type VerifyAccessRequest struct {
	TransactionID string `json:"transaction_id"`
	PasswordHash  string `json:"password_hash"`
}

// AccessGrant is only ever sent after a successful verification.
type AccessGrant struct {
	URL      string   `json:"url"`
	FileName string   `json:"file_name"`
	MimeType string   `json:"mime_type"`
	Envelope Envelope `json:"envelope"`
}

type VerifyAccessResponse struct {
	Grant AccessGrant `json:"grant"`
}
