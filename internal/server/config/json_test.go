package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"endpoint_addr_grpc":              "www.example:9000",
		"database_dsn":                    "vault.db",
		"secret_key":                      "my_secret_key",
		"access_token_validity_duration":  "1m",
		"refresh_token_validity_duration": "3m",
		"payments": map[string]any{
			"receiver_address": "0x2222222222222222222222222222222222222222",
			"window":           "10m",
			"chain_id":         80002,
			"amount_tolerance": "0.02",
		},
		"pricing": map[string]any{
			"price_per_mb": "0.01",
		},
		"log_level": "warn",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "www.example:9000", cfg.EndpointAddrGRPC)
		assert.Equal(t, "vault.db", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, 1*time.Minute, cfg.AccessTokenValidityDuration)
		assert.Equal(t, 3*time.Minute, cfg.RefreshTokenValidityDuration)
		assert.Equal(t, "0x2222222222222222222222222222222222222222", cfg.ReceiverAddress)
		assert.Equal(t, 10*time.Minute, cfg.PaymentWindow)
		assert.Equal(t, int64(80002), cfg.ChainID)
		assert.Equal(t, "0.02", cfg.AmountTolerance.String())
		assert.Equal(t, "0.01", cfg.PricePerMB.String())
		assert.Equal(t, "warn", cfg.LogLevel)
		// absent fields keep their defaults
		assert.Equal(t, "USDC", cfg.Token)
		assert.Equal(t, ":9090", cfg.MetricsAddr)
		assert.Equal(t, "0.005", cfg.MinUploadBalance.String())
	})

	t.Run("no config file leaves values alone", func(t *testing.T) {
		os.Args = []string{"testbin"}
		t.Setenv("PERMAVAULT_CONFIG", "")

		cfg := &Config{EndpointAddrGRPC: "defaults:1234", SecretKey: "key"}
		parseJson(cfg)

		assert.Equal(t, "defaults:1234", cfg.EndpointAddrGRPC)
		assert.Equal(t, "key", cfg.SecretKey)
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}
