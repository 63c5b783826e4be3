// Package pricing is the upload cost model. Amounts are decimals in the
// funding ledger's currency.
package pricing

import (
	"fmt"

	"github.com/dmitrijs2005/permavault/internal/common"
	"github.com/shopspring/decimal"
)

const bytesPerMB = 1 << 20

var (
	DefaultPricePerMB       = decimal.RequireFromString("0.005")
	DefaultMinUploadBalance = decimal.RequireFromString("0.005")
)

// Model prices uploads per started megabyte with a floor.
type Model struct {
	PricePerMB       decimal.Decimal
	MinUploadBalance decimal.Decimal
	MaxSize          int64
}

// Default returns the model used when nothing is configured.
func Default() Model {
	return Model{
		PricePerMB:       DefaultPricePerMB,
		MinUploadBalance: DefaultMinUploadBalance,
		MaxSize:          100 * bytesPerMB,
	}
}

// Estimate is PricePerMB times the number of started megabytes (at least one).
func (m Model) Estimate(size int64) (decimal.Decimal, error) {
	if err := m.checkSize(size); err != nil {
		return decimal.Zero, err
	}
	mb := (size + bytesPerMB - 1) / bytesPerMB
	if mb < 1 {
		mb = 1
	}
	return m.PricePerMB.Mul(decimal.NewFromInt(mb)), nil
}

// Required is the balance an upload of size bytes needs before it may start.
// It never drops below MinUploadBalance.
func (m Model) Required(size int64) (decimal.Decimal, error) {
	est, err := m.Estimate(size)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.Max(est, m.MinUploadBalance), nil
}

func (m Model) checkSize(size int64) error {
	if size <= 0 {
		return fmt.Errorf("%w: empty file", common.ErrValidation)
	}
	if m.MaxSize > 0 && size > m.MaxSize {
		return fmt.Errorf("%w: file is %d bytes, limit is %d", common.ErrValidation, size, m.MaxSize)
	}
	return nil
}
