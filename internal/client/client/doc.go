// Package client talks to the permavault backend over gRPC.
//
// GRPCClient manages the connection, attaches the access token to every
// call through a unary interceptor, refreshes an expired token once and
// retries, and maps gRPC status codes back to the sentinel errors in
// internal/common so callers can match them with errors.Is.
//
// It is safe for concurrent use; the payment monitor polls from its own
// goroutine while the CLI keeps issuing calls.
package client
