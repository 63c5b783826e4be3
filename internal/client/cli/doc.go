// Package cli provides the interactive permavault command-line client.
//
// It wires configuration, the local journal, the backend client, the wallet
// ledger and the permanent store, and runs a REPL on top of them.
//
// Key features:
//   - Register / Login
//   - Wallet connect, balance and direct funding
//   - Upload, public or password-protected, with funding when the balance is short
//   - Access: verify a password, download and decrypt a private upload
//   - Uploads (backend) and journal (local) listings
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
