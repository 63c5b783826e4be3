package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/permavault/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags. Only
// the flags known here are kept from os.Args (flagx.FilterArgs), so -c and
// foreign flags do not break parsing.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-l", "-w", "-s", "-i", "-v"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.JournalDSN, "d", cfg.JournalDSN, "local journal database path")
	fs.StringVar(&cfg.LedgerURL, "l", cfg.LedgerURL, "funding ledger base URL")
	fs.StringVar(&cfg.WalletAddress, "w", cfg.WalletAddress, "wallet address")
	fs.StringVar(&cfg.StoreKind, "s", cfg.StoreKind, "permanent store backend (ipfs or s3)")
	pollInterval := fs.Int("i", int(cfg.PollInterval.Seconds()), "payment status poll interval (in seconds)")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "debug logging")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	switch cfg.StoreKind {
	case StoreIPFS, StoreS3:
	default:
		panic(fmt.Sprintf("unknown store %q", cfg.StoreKind))
	}

	cfg.PollInterval = time.Duration(*pollInterval) * time.Second
}
