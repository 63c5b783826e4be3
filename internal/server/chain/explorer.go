package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/avast/retry-go"
	"github.com/dmitrijs2005/permavault/internal/common"
	"github.com/dmitrijs2005/permavault/internal/netx"
	"github.com/shopspring/decimal"
)

// ExplorerConfig points the oracle at an etherscan-compatible API.
type ExplorerConfig struct {
	BaseURL       string
	APIKey        string
	TokenContract string
	TokenDecimals int32
	Timeout       time.Duration
	Attempts      uint
	Delay         time.Duration
}

// Explorer implements Oracle over the module=account&action=tokentx listing.
type Explorer struct {
	cfg  ExplorerConfig
	http *http.Client
}

var _ Oracle = (*Explorer)(nil)

func NewExplorer(cfg ExplorerConfig) *Explorer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = 3
	}
	if cfg.Delay <= 0 {
		cfg.Delay = 500 * time.Millisecond
	}
	return &Explorer{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

type explorerTx struct {
	Hash          string `json:"hash"`
	From          string `json:"from"`
	To            string `json:"to"`
	Value         string `json:"value"`
	TokenDecimal  string `json:"tokenDecimal"`
	TimeStamp     string `json:"timeStamp"`
	Confirmations string `json:"confirmations"`
}

type explorerResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

const noTransactions = "No transactions found"

// FindTransfer lists recent transfers to q.To and returns the newest match.
// Transport failures are retried; a rejected query is not.
func (e *Explorer) FindTransfer(ctx context.Context, q Query) (*Transfer, error) {
	var txs []explorerTx
	err := retry.Do(
		func() error {
			var err error
			txs, err = e.list(ctx, q.To)
			return err
		},
		retry.Attempts(e.cfg.Attempts),
		retry.Delay(e.cfg.Delay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool { return errors.Is(err, common.ErrNetwork) }),
	)
	if err != nil {
		return nil, err
	}

	for _, raw := range txs {
		t, err := e.parse(raw)
		if err != nil {
			continue
		}
		if q.Matches(t) {
			return &t, nil
		}
	}
	return nil, nil
}

func (e *Explorer) list(ctx context.Context, address string) ([]explorerTx, error) {
	params := url.Values{}
	params.Set("module", "account")
	params.Set("action", "tokentx")
	params.Set("address", address)
	params.Set("startblock", "0")
	params.Set("endblock", "latest")
	params.Set("sort", "desc")
	if e.cfg.TokenContract != "" {
		params.Set("contractaddress", e.cfg.TokenContract)
	}
	if e.cfg.APIKey != "" {
		params.Set("apikey", e.cfg.APIKey)
	}

	var body explorerResponse
	err := netx.DoJSON(ctx, e.http, http.MethodGet, e.cfg.BaseURL+"?"+params.Encode(), nil, &body)
	if err != nil {
		var he *netx.HTTPError
		if errors.As(err, &he) && (he.StatusCode >= 500 || he.StatusCode == http.StatusTooManyRequests) {
			return nil, fmt.Errorf("%w: explorer status %d", common.ErrNetwork, he.StatusCode)
		}
		return nil, fmt.Errorf("explorer: %w", err)
	}
	if body.Status != "1" {
		if body.Message == noTransactions {
			return nil, nil
		}
		var reason string
		_ = json.Unmarshal(body.Result, &reason)
		return nil, fmt.Errorf("explorer: %s %s", body.Message, reason)
	}

	var txs []explorerTx
	if err := json.Unmarshal(body.Result, &txs); err != nil {
		return nil, fmt.Errorf("explorer result: %w", err)
	}
	return txs, nil
}

func (e *Explorer) parse(raw explorerTx) (Transfer, error) {
	value, err := decimal.NewFromString(raw.Value)
	if err != nil {
		return Transfer{}, err
	}
	decimals := e.cfg.TokenDecimals
	if raw.TokenDecimal != "" {
		d, err := strconv.ParseInt(raw.TokenDecimal, 10, 32)
		if err != nil {
			return Transfer{}, err
		}
		decimals = int32(d)
	}
	ts, err := strconv.ParseInt(raw.TimeStamp, 10, 64)
	if err != nil {
		return Transfer{}, err
	}
	confirmations, _ := strconv.ParseInt(raw.Confirmations, 10, 64)

	return Transfer{
		Hash:          raw.Hash,
		From:          raw.From,
		To:            raw.To,
		Amount:        value.Shift(-decimals),
		Timestamp:     time.Unix(ts, 0).UTC(),
		Confirmations: confirmations,
	}, nil
}
