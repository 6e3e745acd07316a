package quote

import (
	"github.com/shopspring/decimal"

	"github.com/solana-zh/dlmm-quote-engine/pkg/quotetypes"
)

var basisPointsDivisor = decimal.NewFromInt(10000)

// feeRate computes f = (protocol + provider + variable) / 10000 from the
// X-side fee fields when swapForY, else the Y-side fields (spec §4.D,
// "Fee application"). The variable fee is summed identically to the
// other two (Open Question 5).
func feeRate(pool *quotetypes.Pool, swapForY bool) decimal.Decimal {
	var protocol, provider, variable int64
	if swapForY {
		protocol, provider, variable = pool.XProtocolFee, pool.XProviderFee, pool.XVariableFee
	} else {
		protocol, provider, variable = pool.YProtocolFee, pool.YProviderFee, pool.YVariableFee
	}
	total := decimal.NewFromInt(protocol + provider + variable)
	return total.Div(basisPointsDivisor)
}

// applyFee returns (feeAmount, effectiveAmountIn) for amountIn at rate f,
// with feeAmount floored to a whole atomic unit (invariant 1, §8).
func applyFee(amountIn, f decimal.Decimal) (feeAmount, effectiveIn decimal.Decimal) {
	feeAmount = amountIn.Mul(f).Floor()
	effectiveIn = amountIn.Sub(feeAmount)
	return feeAmount, effectiveIn
}
