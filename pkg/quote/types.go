// Package quote implements the bin-walk simulator (compute_quote) and the
// route selector (find_best_route): the pricing core that turns a
// prefetched pool/bin snapshot into an exact fill and, across an
// enumerated set of candidate paths, the best end-to-end route.
package quote

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/solana-zh/dlmm-quote-engine/pkg/quotetypes"
)

// ErrNoLiquidity means a hop produced no output: the pool's tokens
// didn't match the requested direction, the pool's active bin or its
// price was missing from the prefetched snapshot, or every visited bin
// had an empty opposite-side reserve.
var ErrNoLiquidity = errors.New("quote: no liquidity for hop")

// ErrPoolUnavailable means a pool id referenced by an edge was missing
// from the prefetched shared snapshot (spec §7, "PoolUnavailable"). Not
// fatal on its own: the hop using that pool is simply not competitive.
var ErrPoolUnavailable = errors.New("quote: pool unavailable")

// HopResult is the outcome of one compute_quote call.
type HopResult struct {
	Success           bool
	AmountOut         decimal.Decimal
	ExecutionPath     []quotetypes.ExecutionStep
	FeeAmount         decimal.Decimal
	EffectiveAmountIn decimal.Decimal
	InputDecimals     uint8
	OutputDecimals    uint8
	Err               error
}

// RouteResult is the outcome of one find_best_route call. InputDecimals
// and OutputDecimals are the first hop's input token and the last hop's
// output token, carried through from each HopResult along the winning
// path.
type RouteResult struct {
	Success        bool
	AmountOut      decimal.Decimal
	RoutePath      []string
	ExecutionPath  []quotetypes.ExecutionStep
	TotalFee       decimal.Decimal
	AvgFeeRate     decimal.Decimal
	PriceImpactBps int64
	InputDecimals  uint8
	OutputDecimals uint8
	Err            error
}
