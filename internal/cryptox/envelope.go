package cryptox

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/permavault/internal/common"
)

// Envelope is everything needed to decrypt an uploaded object except the
// password. It is immutable once produced by Encrypt.
type Envelope struct {
	Salt       []byte `json:"salt"`
	IV         []byte `json:"iv"`
	Algorithm  string `json:"algorithm"`
	Iterations int    `json:"iterations"`
	Ciphertext []byte `json:"ciphertext,omitempty"`
}

// Marshal serializes the envelope as JSON with base64 byte fields.
func (e *Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// ParseEnvelope decodes and validates an envelope produced by Marshal.
func ParseEnvelope(data []byte) (*Envelope, error) {
	e := &Envelope{}
	if err := json.Unmarshal(data, e); err != nil {
		return nil, fmt.Errorf("%w: envelope: %v", common.ErrValidation, err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate checks the envelope parameters without touching the ciphertext.
func (e *Envelope) Validate() error {
	switch {
	case e.Algorithm != Algorithm:
		return fmt.Errorf("%w: unsupported algorithm %q", common.ErrValidation, e.Algorithm)
	case len(e.Salt) != SaltSize:
		return fmt.Errorf("%w: salt must be %d bytes", common.ErrValidation, SaltSize)
	case len(e.IV) != IVSize:
		return fmt.Errorf("%w: iv must be %d bytes", common.ErrValidation, IVSize)
	case e.Iterations <= 0:
		return fmt.Errorf("%w: iterations must be positive", common.ErrValidation)
	}
	return nil
}

// Open decrypts the envelope's own ciphertext with the recorded parameters.
func (e *Envelope) Open(password []byte) ([]byte, error) {
	return e.OpenCiphertext(e.Ciphertext, password)
}

// OpenCiphertext decrypts ciphertext fetched separately from the envelope,
// which is the case for objects downloaded from the permanent store.
func (e *Envelope) OpenCiphertext(ciphertext, password []byte) ([]byte, error) {
	if e.Algorithm != Algorithm {
		return nil, common.ErrAuthentication
	}
	iterations := e.Iterations
	if iterations <= 0 {
		iterations = Iterations
	}
	return decrypt(ciphertext, password, e.Salt, e.IV, iterations)
}
