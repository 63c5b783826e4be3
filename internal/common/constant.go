// Package common contains shared constants, sentinel errors and small helpers
// used across the permavault client and server. Callers should use errors.Is
// to match the error values.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// EncryptedSuffix is appended to the file name of every encrypted upload.
const EncryptedSuffix = ".encrypted"

// EncryptedContentType is the content type stored for ciphertext objects.
const EncryptedContentType = "application/octet-stream"
