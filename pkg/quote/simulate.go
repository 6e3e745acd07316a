package quote

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"lukechampine.com/uint128"

	"github.com/solana-zh/dlmm-quote-engine/pkg/prefetch"
	"github.com/solana-zh/dlmm-quote-engine/pkg/quotetypes"
	"github.com/solana-zh/dlmm-quote-engine/pkg/store"
	"github.com/solana-zh/dlmm-quote-engine/pkg/traits"
)

// decimal.DivisionPrecision defaults to 16 significant digits, well
// under the ≥28-digit guard spec §3 requires for price ratios compounded
// across hundreds of bins in a single hop. Raised once at package init
// since it's a shopspring/decimal package-global, not a per-call knob.
func init() {
	decimal.DivisionPrecision = 28
}

var one = decimal.NewFromInt(1)

type visitedBin struct {
	binID    int64
	price    decimal.Decimal
	reserveX decimal.Decimal
	reserveY decimal.Decimal
}

// ComputeQuote simulates one single-pool hop: it determines the swap
// direction from the pool's canonical (token0, token1), applies the fee
// model off the top of the input, then walks bins outward from the
// active bin applying the constant-sum-within-bin rule until the
// effective input is exhausted or the bin stream runs out.
//
// shared supplies the pool metadata and active-bin state prefetched once
// per request; bins beyond the active one are re-read fresh from s,
// batched in a single round trip, since liquidity elsewhere in the pool
// is never cached.
func ComputeQuote(ctx context.Context, s store.Store, shared *prefetch.PoolShared, inToken, outToken string, amountIn decimal.Decimal, maxBinTraversal int) (*HopResult, error) {
	pool := shared.Pool

	var swapForY bool
	switch {
	case inToken == pool.Token0:
		swapForY = true
	case inToken == pool.Token1:
		swapForY = false
	default:
		return &HopResult{Success: false, Err: ErrNoLiquidity}, nil
	}

	inDecimals, outDecimals, err := lookupDecimals(ctx, s, inToken, outToken)
	if err != nil {
		return nil, err
	}

	if amountIn.Sign() == 0 {
		return &HopResult{
			Success:           true,
			AmountOut:         decimal.Zero,
			ExecutionPath:     nil,
			FeeAmount:         decimal.Zero,
			EffectiveAmountIn: decimal.Zero,
			InputDecimals:     inDecimals,
			OutputDecimals:    outDecimals,
		}, nil
	}

	if shared.ActiveBin == nil || !shared.HasActivePrice {
		return &HopResult{Success: false, Err: ErrNoLiquidity}, nil
	}

	f := feeRate(pool, swapForY)
	feeAmount, effectiveIn := applyFee(amountIn, f)

	bins, err := gatherBins(ctx, s, shared, swapForY, maxBinTraversal)
	if err != nil {
		return nil, err
	}

	x, y := pool.Token0, pool.Token1
	steps := make([]quotetypes.ExecutionStep, 0, len(bins))
	remaining := effectiveIn
	amountOut := decimal.Zero
	oneMinusF := one.Sub(f)

	for _, bin := range bins {
		if remaining.Sign() <= 0 {
			break
		}
		if bin.price.Sign() <= 0 {
			continue
		}

		var used, produced decimal.Decimal
		if swapForY {
			maxX := bin.reserveY.Div(bin.price)
			used = decimal.Min(remaining, maxX)
			if used.Sign() <= 0 {
				continue
			}
			produced = used.Mul(bin.price)
		} else {
			maxY := bin.reserveX.Mul(bin.price)
			used = decimal.Min(remaining, maxY)
			if used.Sign() <= 0 {
				continue
			}
			produced = used.Div(bin.price)
		}

		var partial decimal.Decimal
		if oneMinusF.Sign() == 0 {
			// f == 1: the entire input is fee, so no pre-fee partial is
			// attributable to this bin, matching original_source/quote-engine's
			// quote.py equivalent branch (Decimal('0')).
			partial = decimal.Zero
		} else {
			partial = used.Div(oneMinusF).RoundBank(0)
		}

		step := quotetypes.ExecutionStep{
			PoolTrait:    traits.PoolTrait(pool.PoolID),
			XTokenTrait:  traits.TokenTrait(x),
			YTokenTrait:  traits.TokenTrait(y),
			BinID:        bin.binID,
			FunctionName: traits.FunctionName(swapForY),
		}
		if swapForY {
			step.XAmount = &partial
		} else {
			step.YAmount = &partial
		}
		steps = append(steps, step)

		amountOut = amountOut.Add(produced)
		remaining = remaining.Sub(used)
	}

	if len(steps) == 0 {
		return &HopResult{Success: false, Err: ErrNoLiquidity}, nil
	}

	reconcile(steps, amountIn)

	// amount_out is quantized to a whole atomic unit here, once, matching
	// original_source/quote-engine/src/core/quote.py's
	// `amount_out.quantize(Decimal('1'))`: every chained hop's amount_in
	// (spec §3, "exact integers in the token's smallest unit") must be an
	// integer, not the simulator's raw per-bin fractional sum.
	return &HopResult{
		Success:           true,
		AmountOut:         amountOut.RoundBank(0),
		ExecutionPath:     steps,
		FeeAmount:         feeAmount,
		EffectiveAmountIn: effectiveIn,
		InputDecimals:     inDecimals,
		OutputDecimals:    outDecimals,
	}, nil
}

// lookupDecimals resolves the decimals of both hop tokens through the
// store (spec §4.D's documented return shape, sourced from get_token's
// "supplies decimals; defaults to 18 on miss").
func lookupDecimals(ctx context.Context, s store.Store, inToken, outToken string) (uint8, uint8, error) {
	in, err := s.GetToken(ctx, inToken)
	if err != nil {
		return 0, 0, fmt.Errorf("lookup input token decimals: %w", err)
	}
	out, err := s.GetToken(ctx, outToken)
	if err != nil {
		return 0, 0, fmt.Errorf("lookup output token decimals: %w", err)
	}
	return in.Decimals, out.Decimals, nil
}

// reconcile adds any residue between the sum of emitted partials and the
// original pre-fee amountIn to the last step's partial, so that
// Σ partials == amountIn bit-exact (spec §4.D, "Rounding reconciliation").
func reconcile(steps []quotetypes.ExecutionStep, amountIn decimal.Decimal) {
	sum := decimal.Zero
	for _, step := range steps {
		if step.XAmount != nil {
			sum = sum.Add(*step.XAmount)
		} else if step.YAmount != nil {
			sum = sum.Add(*step.YAmount)
		}
	}
	residue := amountIn.Sub(sum)
	if residue.Sign() == 0 {
		return
	}
	last := &steps[len(steps)-1]
	if last.XAmount != nil {
		adjusted := last.XAmount.Add(residue)
		last.XAmount = &adjusted
	} else if last.YAmount != nil {
		adjusted := last.YAmount.Add(residue)
		last.YAmount = &adjusted
	}
}

// gatherBins resolves the ordered bin stream a hop will visit: the
// active bin first (already in hand from shared), then strictly-beyond
// bins fetched via one price-range query and one batched reserve fetch,
// capped at maxBinTraversal total bins (spec §4.D "no hard cap... upper
// bound" and §5 "one batched bin-reserve fetch per hop").
func gatherBins(ctx context.Context, s store.Store, shared *prefetch.PoolShared, swapForY bool, maxBinTraversal int) ([]visitedBin, error) {
	activePrice := shared.ActiveBinPrice
	active := visitedBin{
		binID:    shared.Pool.ActiveBin,
		price:    activePrice,
		reserveX: u128ToDecimal(shared.ActiveBin.ReserveX),
		reserveY: u128ToDecimal(shared.ActiveBin.ReserveY),
	}

	if maxBinTraversal == 1 {
		return []visitedBin{active}, nil
	}

	var extraIDs []quotetypes.BinPrice
	var err error
	if swapForY {
		extraIDs, err = s.GetBinPricesDescending(ctx, shared.Pool.PoolID, activePrice, decimal.Zero)
	} else {
		extraIDs, err = s.GetBinPricesAscending(ctx, shared.Pool.PoolID, activePrice, decimal.Zero)
	}
	if err != nil {
		return nil, fmt.Errorf("gather bin prices: %w", err)
	}

	if maxBinTraversal > 0 && len(extraIDs) > maxBinTraversal-1 {
		extraIDs = extraIDs[:maxBinTraversal-1]
	}

	keys := make([]quotetypes.BinKey, len(extraIDs))
	for i, bp := range extraIDs {
		keys[i] = quotetypes.BinKey{PoolID: shared.Pool.PoolID, BinID: bp.BinID}
	}
	reserves, err := s.BatchGetBins(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("gather bin reserves: %w", err)
	}

	out := make([]visitedBin, 0, 1+len(extraIDs))
	out = append(out, active)
	for i, bp := range extraIDs {
		bin, ok := reserves[keys[i]]
		if !ok {
			continue
		}
		out = append(out, visitedBin{
			binID:    bp.BinID,
			price:    bp.Price,
			reserveX: u128ToDecimal(bin.ReserveX),
			reserveY: u128ToDecimal(bin.ReserveY),
		})
	}
	return out, nil
}

func u128ToDecimal(v uint128.Uint128) decimal.Decimal {
	return decimal.NewFromBigInt(v.Big(), 0)
}
