package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/permavault/internal/flagx"
	"github.com/dmitrijs2005/permavault/internal/timex"
	"github.com/shopspring/decimal"
)

type jsonPayments struct {
	ReceiverAddress string          `json:"receiver_address"`
	Token           string          `json:"token"`
	Network         string          `json:"network"`
	ChainID         int64           `json:"chain_id"`
	Window          timex.Duration  `json:"window"`
	ExplorerURL     string          `json:"explorer_url"`
	ExplorerAPIKey  string          `json:"explorer_api_key"`
	TokenContract   string          `json:"token_contract"`
	TokenDecimals   int32           `json:"token_decimals"`
	Confirmations   int64           `json:"confirmations"`
	AmountTolerance decimal.Decimal `json:"amount_tolerance"`
}

type jsonPricing struct {
	PricePerMB       decimal.Decimal `json:"price_per_mb"`
	MinUploadBalance decimal.Decimal `json:"min_upload_balance"`
	MaxUploadSize    int64           `json:"max_upload_size"`
}

// JsonConfig is the on-disk form of Config. Durations may be Go duration
// strings ("15m") or integer nanoseconds; zero values mean "keep the default".
type JsonConfig struct {
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc"`
	MetricsAddr                  string         `json:"metrics_addr"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	Payments                     jsonPayments   `json:"payments"`
	Pricing                      jsonPricing    `json:"pricing"`
	LogLevel                     string         `json:"log_level"`
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

func setDecimal(dst *decimal.Decimal, v decimal.Decimal) {
	if !v.IsZero() {
		*dst = v
	}
}

func setInt64(dst *int64, v int64) {
	if v > 0 {
		*dst = v
	}
}

// parseJson overlays Config with the JSON file named by -c/-config (or
// PERMAVAULT_CONFIG). It panics if the file cannot be read or parsed.
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

	setString(&cfg.EndpointAddrGRPC, jc.EndpointAddrGRPC)
	setString(&cfg.MetricsAddr, jc.MetricsAddr)
	setString(&cfg.DatabaseDSN, jc.DatabaseDSN)
	setString(&cfg.SecretKey, jc.SecretKey)
	setDuration(&cfg.AccessTokenValidityDuration, jc.AccessTokenValidityDuration)
	setDuration(&cfg.RefreshTokenValidityDuration, jc.RefreshTokenValidityDuration)

	p := jc.Payments
	setString(&cfg.ReceiverAddress, p.ReceiverAddress)
	setString(&cfg.Token, p.Token)
	setString(&cfg.Network, p.Network)
	setInt64(&cfg.ChainID, p.ChainID)
	setDuration(&cfg.PaymentWindow, p.Window)
	setString(&cfg.ExplorerURL, p.ExplorerURL)
	setString(&cfg.ExplorerAPIKey, p.ExplorerAPIKey)
	setString(&cfg.TokenContract, p.TokenContract)
	if p.TokenDecimals > 0 {
		cfg.TokenDecimals = p.TokenDecimals
	}
	setInt64(&cfg.Confirmations, p.Confirmations)
	setDecimal(&cfg.AmountTolerance, p.AmountTolerance)

	setDecimal(&cfg.PricePerMB, jc.Pricing.PricePerMB)
	setDecimal(&cfg.MinUploadBalance, jc.Pricing.MinUploadBalance)
	setInt64(&cfg.MaxUploadSize, jc.Pricing.MaxUploadSize)

	setString(&cfg.LogLevel, jc.LogLevel)
}
