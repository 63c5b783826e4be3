package cryptox

import (
	"fmt"

	"github.com/dmitrijs2005/permavault/internal/common"
)

// PasswordAlphabet is the character set used by GenerateSecurePassword.
const PasswordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!@#$%^&*"

// GenerateSecurePassword returns a random password of the given length drawn
// uniformly from PasswordAlphabet. Bytes that would bias the distribution
// (>= the largest multiple of the alphabet size) are rejected and redrawn.
func GenerateSecurePassword(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("%w: password length must be positive", common.ErrValidation)
	}

	n := len(PasswordAlphabet)
	limit := 256 - 256%n

	out := make([]byte, 0, length)
	buf := make([]byte, length)
	for len(out) < length {
		if _, err := randRead(buf); err != nil {
			return "", fmt.Errorf("%w: %v", common.ErrCrypto, err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, PasswordAlphabet[int(b)%n])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}
