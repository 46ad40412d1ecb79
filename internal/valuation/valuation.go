// Package valuation implements the pure valuation math for holdings,
// positions and portfolio roll-ups. All arithmetic uses fixed-point
// decimals; callers convert to the wire representation with Fixed.
package valuation

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrDivisionUndefined is returned when a percentage would divide by zero.
// Average prices are validated as positive upstream, so hitting this from
// request flow indicates a caller bug.
var ErrDivisionUndefined = errors.New("valuation: division undefined for zero denominator")

var hundred = decimal.NewFromInt(100)

// HoldingMetrics holds the derived values for a single holding.
type HoldingMetrics struct {
	Net          decimal.Decimal // (price - avg) * qty
	DayChangePct decimal.Decimal // (price - avg) / avg * 100
	Invested     decimal.Decimal // avg * qty
	CurrentValue decimal.Decimal // price * qty
}

// ComputeHoldingMetrics derives net P&L and day-change percentage for a
// holding. Returns ErrDivisionUndefined when avg is zero.
func ComputeHoldingMetrics(qty int64, avg, price float64) (HoldingMetrics, error) {
	avgDec := decimal.NewFromFloat(avg)
	if avgDec.IsZero() {
		return HoldingMetrics{}, ErrDivisionUndefined
	}

	qtyDec := decimal.NewFromInt(qty)
	priceDec := decimal.NewFromFloat(price)
	diff := priceDec.Sub(avgDec)

	return HoldingMetrics{
		Net:          diff.Mul(qtyDec),
		DayChangePct: diff.Div(avgDec).Mul(hundred),
		Invested:     avgDec.Mul(qtyDec),
		CurrentValue: priceDec.Mul(qtyDec),
	}, nil
}

// PortfolioEntry is one holding's contribution to a portfolio aggregate.
type PortfolioEntry struct {
	Quantity     int64
	AveragePrice float64
	CurrentPrice float64
	Net          decimal.Decimal
}

// PortfolioSummary is the portfolio-level roll-up over a set of entries.
// When TotalInvestment is zero the percentage is undefined; PctUndefined
// is set instead of emitting NaN or infinity.
type PortfolioSummary struct {
	TotalInvestment decimal.Decimal
	CurrentValue    decimal.Decimal
	TodaysPnL       decimal.Decimal
	TotalPnL        decimal.Decimal
	TotalPnLPct     decimal.Decimal
	PctUndefined    bool
}

// AggregatePortfolio rolls a list of entries up into portfolio totals.
// The result is independent of entry order.
func AggregatePortfolio(entries []PortfolioEntry) PortfolioSummary {
	var summary PortfolioSummary

	for _, e := range entries {
		qty := decimal.NewFromInt(e.Quantity)
		avg := decimal.NewFromFloat(e.AveragePrice)
		price := decimal.NewFromFloat(e.CurrentPrice)

		summary.TotalInvestment = summary.TotalInvestment.Add(avg.Mul(qty))
		summary.CurrentValue = summary.CurrentValue.Add(price.Mul(qty))
		summary.TodaysPnL = summary.TodaysPnL.Add(e.Net)
	}

	summary.TotalPnL = summary.CurrentValue.Sub(summary.TotalInvestment)
	if summary.TotalInvestment.IsZero() {
		summary.PctUndefined = true
	} else {
		summary.TotalPnLPct = summary.TotalPnL.Div(summary.TotalInvestment).Mul(hundred)
	}

	return summary
}

// PositionPnL holds the derived P&L for a single position.
type PositionPnL struct {
	Unrealized decimal.Decimal // netQty * (ltp - avg) * multiplier
	Total      decimal.Decimal // realized + unrealized
}

// ComputePositionPnL derives unrealized and total P&L for a position.
// The formula is sign-symmetric: a negative netQty (short) needs no
// special-casing.
func ComputePositionPnL(netQty int64, avg, ltp float64, multiplier int64, realized float64) PositionPnL {
	unrealized := decimal.NewFromFloat(ltp).
		Sub(decimal.NewFromFloat(avg)).
		Mul(decimal.NewFromInt(netQty)).
		Mul(decimal.NewFromInt(multiplier))

	return PositionPnL{
		Unrealized: unrealized,
		Total:      decimal.NewFromFloat(realized).Add(unrealized),
	}
}

// Fixed renders a decimal as a 2-decimal-place string for the
// presentation boundary. Internal computation keeps full precision.
func Fixed(d decimal.Decimal) string {
	return d.StringFixed(2)
}
