package config

import "time"

const (
	StoreIPFS = "ipfs"
	StoreS3   = "s3"
)

// Config holds runtime settings for the permavault CLI.
type Config struct {
	ServerEndpointAddr string
	JournalDSN         string

	LedgerURL     string
	WalletAddress string
	LedgerTimeout time.Duration

	StoreKind   string
	IPFSAPIURL  string
	IPFSGateway string
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string

	PollInterval      time.Duration
	MaxUploadSize     int64
	MinPasswordLength int
	AppName           string
	AppVersion        string

	Verbose bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.JournalDSN = "permavault.db"
	c.LedgerURL = "http://127.0.0.1:8545"
	c.LedgerTimeout = 30 * time.Second
	c.StoreKind = StoreIPFS
	c.IPFSAPIURL = "127.0.0.1:5001"
	c.IPFSGateway = "https://ipfs.io"
	c.S3Region = "us-east-1"
	c.PollInterval = 5 * time.Second
	c.MaxUploadSize = 100 << 20
	c.MinPasswordLength = 8
	c.AppName = "permavault"
	c.AppVersion = "1.0.0"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
