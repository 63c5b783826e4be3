// Package config loads runtime configuration for the permavault CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c / -config or PERMAVAULT_CONFIG.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the backend gRPC endpoint
//	-d string   path of the local SQLite journal
//	-l string   base URL of the funding ledger
//	-w string   wallet address
//	-s string   permanent store backend: ipfs or s3
//	-i int      payment status poll interval (seconds)
//	-v          debug logging
//
// # JSON schema
//
// Durations use timex.Duration, so they may be strings like "5s" or integer
// nanoseconds. Fields left out keep their default:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "journal_dsn": "permavault.db",
//	  "ledger_url": "http://127.0.0.1:8545",
//	  "wallet_address": "0x...",
//	  "store": "s3",
//	  "s3": {"bucket": "uploads", "region": "us-east-1", "endpoint": "http://127.0.0.1:9000"},
//	  "poll_interval": "5s"
//	}
package config
