package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrValidation     = errors.New("validation error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// ErrCrypto reports an RNG or cipher platform failure. Fatal for the attempt.
	ErrCrypto = errors.New("crypto failure")

	// ErrAuthentication covers both a wrong password and tampered ciphertext;
	// callers must not try to tell them apart.
	ErrAuthentication = errors.New("invalid password or corrupted file")

	// Wallet errors. The specific ones wrap ErrWallet so a caller can match
	// either level.
	ErrWallet            = errors.New("wallet error")
	ErrNoProvider        = fmt.Errorf("%w: no wallet provider", ErrWallet)
	ErrUserRejected      = fmt.Errorf("%w: request rejected by user", ErrWallet)
	ErrInsufficientFunds = fmt.Errorf("%w: insufficient funds", ErrWallet)
	ErrInvalidAddress    = fmt.Errorf("%w: invalid wallet address", ErrWallet)

	// ErrNetwork is a transient transport failure. It is surfaced, never
	// retried on the caller's behalf when money may have moved.
	ErrNetwork = errors.New("network error")

	// Payment lifecycle errors.
	ErrExpired           = errors.New("payment window expired")
	ErrPaymentFailed     = errors.New("payment failed")
	ErrInvalidTransition = errors.New("invalid state transition")
)
