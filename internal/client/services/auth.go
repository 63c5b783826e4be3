// Package services contains application services for the permavault client.
// This file defines the account service: register and login against the
// backend with an argon2id-derived verifier.
package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/permavault/internal/common"
	"github.com/dmitrijs2005/permavault/internal/cryptox"
)

// SaltSize is the length of the account KDF salt generated at registration.
const SaltSize = 32

// AccountClient is the part of the backend client the account service needs.
type AccountClient interface {
	Register(ctx context.Context, username string, salt []byte, verifier []byte) error
	GetSalt(ctx context.Context, username string) ([]byte, error)
	Login(ctx context.Context, username string, verifier []byte) error
	Close() error
}

// AuthService defines authentication operations for the CLI.
//
// The account password never leaves the client: only the salt and a verifier
// derived from the argon2id master key are sent. The master key is unrelated
// to the per-file encryption keys.
type AuthService interface {
	Login(ctx context.Context, username string, password []byte) error
	Register(ctx context.Context, username string, password []byte) error
	Close(ctx context.Context) error
}

type authService struct {
	client AccountClient
}

func NewAuthService(client AccountClient) AuthService {
	return &authService{client: client}
}

// Login fetches the user's salt, derives the verifier and exchanges it for
// tokens, which the client keeps.
func (a *authService) Login(ctx context.Context, userName string, password []byte) error {
	salt, err := a.client.GetSalt(ctx, userName)
	if err != nil {
		return fmt.Errorf("get salt error: %w", err)
	}

	key := cryptox.DeriveMasterKey(password, salt)
	defer common.WipeByteArray(key)

	if err := a.client.Login(ctx, userName, cryptox.MakeVerifier(key)); err != nil {
		return fmt.Errorf("login error: %w", err)
	}
	return nil
}

// Register creates a new account. It generates a random salt, derives a
// master key from the password and sends the salt and verifier.
func (a *authService) Register(ctx context.Context, username string, password []byte) error {
	if username == "" {
		return fmt.Errorf("%w: empty username", common.ErrValidation)
	}
	salt, err := common.GenerateRandByteArray(SaltSize)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}
	key := cryptox.DeriveMasterKey(password, salt)
	defer common.WipeByteArray(key)

	return a.client.Register(ctx, username, salt, cryptox.MakeVerifier(key))
}

func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
