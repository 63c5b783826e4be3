// Package cryptox implements the client-held encryption used for private
// uploads: password-based key derivation, AES-256-GCM sealing into an
// Envelope, password hashing for server-side access checks and secure
// password generation. It also carries the account KDF used at login.
//
// All functions are stateless and safe for concurrent use.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/dmitrijs2005/permavault/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

const (
	Algorithm  = "AES-256-GCM"
	Iterations = 100_000
	SaltSize   = 16
	IVSize     = 12
	KeySize    = 32
	// TagSize is the GCM authentication tag appended to every ciphertext.
	TagSize = 16
)

// randRead is the entropy source; tests replace it to simulate RNG failure.
var randRead = rand.Read

// DeriveKey derives a 256-bit AES key from password and salt with
// PBKDF2-HMAC-SHA256 and the fixed iteration count.
func DeriveKey(password, salt []byte) []byte {
	return deriveKey(password, salt, Iterations)
}

func deriveKey(password, salt []byte, iterations int) []byte {
	return pbkdf2.Key(password, salt, iterations, KeySize, sha256.New)
}

// Encrypt seals plaintext under a key derived from password. Every call
// draws a fresh salt and IV, so two envelopes never share either even for
// identical inputs.
func Encrypt(plaintext, password []byte) (*Envelope, error) {
	salt := make([]byte, SaltSize)
	if _, err := randRead(salt); err != nil {
		return nil, fmt.Errorf("%w: salt: %v", common.ErrCrypto, err)
	}
	iv := make([]byte, IVSize)
	if _, err := randRead(iv); err != nil {
		return nil, fmt.Errorf("%w: iv: %v", common.ErrCrypto, err)
	}

	key := DeriveKey(password, salt)
	defer common.WipeByteArray(key)

	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	return &Envelope{
		Salt:       salt,
		IV:         iv,
		Algorithm:  Algorithm,
		Iterations: Iterations,
		Ciphertext: aead.Seal(nil, iv, plaintext, nil),
	}, nil
}

// Decrypt opens ciphertext produced by Encrypt. A wrong password and a
// tampered ciphertext or tag both yield common.ErrAuthentication.
func Decrypt(ciphertext, password, salt, iv []byte) ([]byte, error) {
	return decrypt(ciphertext, password, salt, iv, Iterations)
}

func decrypt(ciphertext, password, salt, iv []byte, iterations int) ([]byte, error) {
	if len(iv) != IVSize || len(salt) == 0 {
		return nil, common.ErrAuthentication
	}

	key := deriveKey(password, salt, iterations)
	defer common.WipeByteArray(key)

	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(nil, iv, ciphertext, nil)
	if err != nil {
		return nil, common.ErrAuthentication
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}
	return aead, nil
}

// HashPassword returns hex(SHA-256(password || salt)). It is only used for
// access verification and never feeds key derivation.
func HashPassword(password, salt []byte) string {
	h := sha256.New()
	h.Write(password)
	h.Write(salt)
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyPassword reports whether password and salt hash to expected.
func VerifyPassword(password, salt []byte, expected string) bool {
	return HashEqual(HashPassword(password, salt), expected)
}

// HashEqual compares two hex hashes in constant time.
func HashEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// MakeVerifier turns an account master key into the verifier the server stores.
func MakeVerifier(masterKey []byte) []byte {
	hash := sha256.Sum256(masterKey)
	return hash[:]
}

// DeriveMasterKey is the account KDF (argon2id). It is separate from the
// per-file PBKDF2 derivation.
func DeriveMasterKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}
