package wallet

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/permavault/internal/common"
	"github.com/dmitrijs2005/permavault/internal/netx"
	"github.com/shopspring/decimal"
)

// HTTPLedger talks to a funding-ledger node over its JSON API. The wallet
// provider is represented by the configured address; key custody and
// signing stay with the node.
type HTTPLedger struct {
	baseURL string
	address string
	client  *http.Client
}

func NewHTTPLedger(baseURL, address string, timeout time.Duration) *HTTPLedger {
	return &HTTPLedger{
		baseURL: strings.TrimRight(baseURL, "/"),
		address: address,
		client:  &http.Client{Timeout: timeout},
	}
}

type balanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

type fundRequest struct {
	Address string          `json:"address"`
	Amount  decimal.Decimal `json:"amount"`
}

type fundResponse struct {
	TxID string `json:"tx_id"`
}

func (l *HTTPLedger) Connect(ctx context.Context) (string, error) {
	if l.address == "" || l.baseURL == "" {
		return "", common.ErrNoProvider
	}
	if err := netx.DoJSON(ctx, l.client, http.MethodGet, l.baseURL+"/info", nil, nil); err != nil {
		return "", mapLedgerError(err)
	}
	return l.address, nil
}

func (l *HTTPLedger) Balance(ctx context.Context, address string) (decimal.Decimal, error) {
	var out balanceResponse
	u := l.baseURL + "/account/balance?address=" + url.QueryEscape(address)
	if err := netx.DoJSON(ctx, l.client, http.MethodGet, u, nil, &out); err != nil {
		return decimal.Zero, mapLedgerError(err)
	}
	return out.Balance, nil
}

func (l *HTTPLedger) Fund(ctx context.Context, address string, amount decimal.Decimal) (Receipt, error) {
	var out fundResponse
	in := fundRequest{Address: address, Amount: amount}
	if err := netx.DoJSON(ctx, l.client, http.MethodPost, l.baseURL+"/account/fund", in, &out); err != nil {
		return Receipt{}, mapLedgerError(err)
	}
	if out.TxID == "" {
		return Receipt{}, fmt.Errorf("%w: ledger returned no transaction id", common.ErrWallet)
	}
	return Receipt{TxID: out.TxID, Amount: amount}, nil
}

func mapLedgerError(err error) error {
	var he *netx.HTTPError
	if !errors.As(err, &he) {
		return err
	}
	switch {
	case he.StatusCode == http.StatusPaymentRequired:
		return common.ErrInsufficientFunds
	case he.StatusCode == http.StatusForbidden:
		return common.ErrUserRejected
	case he.StatusCode >= 500:
		return fmt.Errorf("%w: ledger %s", common.ErrNetwork, he.Status)
	default:
		return fmt.Errorf("%w: %v", common.ErrWallet, he)
	}
}
