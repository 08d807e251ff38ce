// Package billing turns a resolved call duration into a cost.
package billing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Calculator prices calls by the minute. The zero-duration case is charged
// the platform's minimum fee.
type Calculator struct {
	MinimumFee    decimal.Decimal
	PerMinuteRate decimal.Decimal
}

// NewCalculator builds a Calculator from float config values.
func NewCalculator(minimumFee, perMinuteRate float64) Calculator {
	return Calculator{
		MinimumFee:    decimal.NewFromFloat(minimumFee),
		PerMinuteRate: decimal.NewFromFloat(perMinuteRate),
	}
}

// Default is 4.20 minimum, 4.565 per minute.
var Default = NewCalculator(4.20, 4.565)

// Cost returns round(seconds/60 * rate, 2), or the minimum fee when seconds
// is zero. Negative durations are priced as zero.
func (c Calculator) Cost(seconds int64) decimal.Decimal {
	if seconds <= 0 {
		return c.MinimumFee
	}
	minutes := decimal.NewFromInt(seconds).Div(decimal.NewFromInt(60))
	return minutes.Mul(c.PerMinuteRate).Round(2)
}

// FormatDuration renders seconds as "<m>m <s>s".
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
}
