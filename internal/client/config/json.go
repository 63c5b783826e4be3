package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/permavault/internal/flagx"
	"github.com/dmitrijs2005/permavault/internal/timex"
)

type jsonS3 struct {
	Bucket    string `json:"bucket"`
	Region    string `json:"region"`
	Endpoint  string `json:"endpoint"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
}

type jsonIPFS struct {
	APIURL  string `json:"api_url"`
	Gateway string `json:"gateway"`
}

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	JournalDSN         string         `json:"journal_dsn"`
	LedgerURL          string         `json:"ledger_url"`
	WalletAddress      string         `json:"wallet_address"`
	LedgerTimeout      timex.Duration `json:"ledger_timeout"`
	Store              string         `json:"store"`
	IPFS               jsonIPFS       `json:"ipfs"`
	S3                 jsonS3         `json:"s3"`
	PollInterval       timex.Duration `json:"poll_interval"`
	MaxUploadSize      int64          `json:"max_upload_size"`
	MinPasswordLength  int            `json:"min_password_length"`
	AppName            string         `json:"app_name"`
	AppVersion         string         `json:"app_version"`
	Verbose            bool           `json:"verbose"`
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration > 0 {
		*dst = v.Duration
	}
}

// parseJson overlays Config with values loaded from a JSON file. It panics
// on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.ServerEndpointAddr, jc.ServerEndpointAddr)
	setString(&cfg.JournalDSN, jc.JournalDSN)
	setString(&cfg.LedgerURL, jc.LedgerURL)
	setString(&cfg.WalletAddress, jc.WalletAddress)
	setDuration(&cfg.LedgerTimeout, jc.LedgerTimeout)
	setString(&cfg.StoreKind, jc.Store)
	setString(&cfg.IPFSAPIURL, jc.IPFS.APIURL)
	setString(&cfg.IPFSGateway, jc.IPFS.Gateway)
	setString(&cfg.S3Bucket, jc.S3.Bucket)
	setString(&cfg.S3Region, jc.S3.Region)
	setString(&cfg.S3Endpoint, jc.S3.Endpoint)
	setString(&cfg.S3AccessKey, jc.S3.AccessKey)
	setString(&cfg.S3SecretKey, jc.S3.SecretKey)
	setDuration(&cfg.PollInterval, jc.PollInterval)
	if jc.MaxUploadSize > 0 {
		cfg.MaxUploadSize = jc.MaxUploadSize
	}
	if jc.MinPasswordLength > 0 {
		cfg.MinPasswordLength = jc.MinPasswordLength
	}
	setString(&cfg.AppName, jc.AppName)
	setString(&cfg.AppVersion, jc.AppVersion)
	cfg.Verbose = cfg.Verbose || jc.Verbose
}
