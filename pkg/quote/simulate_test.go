package quote_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"

	"github.com/solana-zh/dlmm-quote-engine/pkg/prefetch"
	"github.com/solana-zh/dlmm-quote-engine/pkg/quote"
	"github.com/solana-zh/dlmm-quote-engine/pkg/quotetypes"
	"github.com/solana-zh/dlmm-quote-engine/pkg/store"
)

// seedBellCurvePool builds a BTC-USDC pool centered on bin 500 with
// active-bin price 100 and bin_step 0.0025, with generous reserves on
// the Y (USDC) side below the active price so X->Y hops can traverse
// several bins (the scenarios in spec §8 "Concrete end-to-end
// scenarios").
func seedBellCurvePool(s *store.MemoryStore, poolID string, fees [6]int64) {
	binStep := decimal.NewFromFloat(0.0025)
	s.PutPool(&quotetypes.Pool{
		PoolID:       poolID,
		Token0:       "BTC",
		Token1:       "USDC",
		BinStep:      binStep,
		ActiveBin:    500,
		Active:       true,
		XProtocolFee: fees[0], XProviderFee: fees[1], XVariableFee: fees[2],
		YProtocolFee: fees[3], YProviderFee: fees[4], YVariableFee: fees[5],
	})
	s.PutBin(&quotetypes.Bin{PoolID: poolID, BinID: 500, ReserveX: uint128.From64(0), ReserveY: uint128.From64(1000)})
	s.PutBinPrice(poolID, 500, decimal.NewFromInt(100))
	s.PutBin(&quotetypes.Bin{PoolID: poolID, BinID: 499, ReserveX: uint128.From64(0), ReserveY: uint128.From64(1000000)})
	s.PutBinPrice(poolID, 499, decimal.NewFromFloat(99.75))
	s.PutBin(&quotetypes.Bin{PoolID: poolID, BinID: 501, ReserveX: uint128.From64(1000000), ReserveY: uint128.From64(0)})
	s.PutBinPrice(poolID, 501, decimal.NewFromFloat(100.25))
}

func loadShared(t *testing.T, s store.Store, poolID string) *prefetch.PoolShared {
	t.Helper()
	shared, err := prefetch.Load(context.Background(), s, []string{poolID})
	require.NoError(t, err)
	return shared[poolID]
}

// S1: single bin fill, no fees.
func TestComputeQuote_S1_SingleBinNoFee(t *testing.T) {
	s := store.NewMemoryStore()
	seedBellCurvePool(s, "BTC-USDC-25", [6]int64{})
	shared := loadShared(t, s, "BTC-USDC-25")

	result, err := quote.ComputeQuote(context.Background(), s, shared, "BTC", "USDC", decimal.NewFromInt(1), 1000)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Len(t, result.ExecutionPath, 1)
	step := result.ExecutionPath[0]
	require.Equal(t, int64(500), step.BinID)
	require.Equal(t, "swap-x-for-y", step.FunctionName)
	require.NotNil(t, step.XAmount)
	require.Nil(t, step.YAmount)
	require.Equal(t, "1", step.XAmount.String())
	require.True(t, result.AmountOut.Equal(decimal.NewFromInt(100)))
}

// S2: multi-bin fill, strictly decreasing bin ids, partials sum to input.
func TestComputeQuote_S2_MultiBinDescending(t *testing.T) {
	s := store.NewMemoryStore()
	seedBellCurvePool(s, "BTC-USDC-25", [6]int64{})
	shared := loadShared(t, s, "BTC-USDC-25")

	result, err := quote.ComputeQuote(context.Background(), s, shared, "BTC", "USDC", decimal.NewFromInt(2005), 1000)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.GreaterOrEqual(t, len(result.ExecutionPath), 2)

	sum := decimal.Zero
	lastBinID := int64(1 << 62)
	for _, step := range result.ExecutionPath {
		require.Less(t, step.BinID, lastBinID)
		lastBinID = step.BinID
		sum = sum.Add(*step.XAmount)
	}
	require.True(t, sum.Equal(decimal.NewFromInt(2005)), "Σ x_amount == 2005, got %s", sum)
}

// S3: fee application lowers output vs the fee-free case and partials
// still reconcile to the original amount_in.
func TestComputeQuote_S3_FeeAppliedAndReconciled(t *testing.T) {
	sFree := store.NewMemoryStore()
	seedBellCurvePool(sFree, "BTC-USDC-25", [6]int64{})
	sharedFree := loadShared(t, sFree, "BTC-USDC-25")
	freeResult, err := quote.ComputeQuote(context.Background(), sFree, sharedFree, "BTC", "USDC", decimal.NewFromInt(1000), 1000)
	require.NoError(t, err)

	sFee := store.NewMemoryStore()
	seedBellCurvePool(sFee, "BTC-USDC-25", [6]int64{4, 6, 0, 0, 0, 0})
	sharedFee := loadShared(t, sFee, "BTC-USDC-25")
	feeResult, err := quote.ComputeQuote(context.Background(), sFee, sharedFee, "BTC", "USDC", decimal.NewFromInt(1000), 1000)
	require.NoError(t, err)

	require.True(t, feeResult.Success)
	require.True(t, feeResult.FeeAmount.Equal(decimal.NewFromInt(1)), "floor(1000*0.001) == 1")
	require.True(t, feeResult.EffectiveAmountIn.Equal(decimal.NewFromInt(999)))
	require.True(t, feeResult.AmountOut.LessThan(freeResult.AmountOut))

	sum := decimal.Zero
	for _, step := range feeResult.ExecutionPath {
		sum = sum.Add(*step.XAmount)
	}
	require.True(t, sum.Equal(decimal.NewFromInt(1000)))
}

// Y->X direction walks strictly-ascending bin ids.
func TestComputeQuote_YToX_AscendingBinIDs(t *testing.T) {
	s := store.NewMemoryStore()
	seedBellCurvePool(s, "BTC-USDC-25", [6]int64{})
	shared := loadShared(t, s, "BTC-USDC-25")

	result, err := quote.ComputeQuote(context.Background(), s, shared, "USDC", "BTC", decimal.NewFromInt(50), 1000)
	require.NoError(t, err)
	require.True(t, result.Success)
	lastBinID := int64(-1)
	for _, step := range result.ExecutionPath {
		require.Greater(t, step.BinID, lastBinID)
		lastBinID = step.BinID
		require.NotNil(t, step.YAmount)
		require.Nil(t, step.XAmount)
		require.Equal(t, "swap-y-for-x", step.FunctionName)
	}
}

// amount_in == 0 boundary behavior (spec §8).
func TestComputeQuote_ZeroAmountIn(t *testing.T) {
	s := store.NewMemoryStore()
	seedBellCurvePool(s, "BTC-USDC-25", [6]int64{})
	shared := loadShared(t, s, "BTC-USDC-25")

	result, err := quote.ComputeQuote(context.Background(), s, shared, "BTC", "USDC", decimal.Zero, 1000)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.True(t, result.AmountOut.IsZero())
	require.Empty(t, result.ExecutionPath)
}

// compute_quote's documented return shape carries input_decimals/
// output_decimals sourced from get_token (spec §4.D), not a hardcoded 0.
func TestComputeQuote_PropagatesTokenDecimals(t *testing.T) {
	s := store.NewMemoryStore()
	seedBellCurvePool(s, "BTC-USDC-25", [6]int64{})
	s.PutToken(&quotetypes.Token{Symbol: "BTC", Decimals: 8})
	s.PutToken(&quotetypes.Token{Symbol: "USDC", Decimals: 6})
	shared := loadShared(t, s, "BTC-USDC-25")

	result, err := quote.ComputeQuote(context.Background(), s, shared, "BTC", "USDC", decimal.NewFromInt(1), 1000)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.EqualValues(t, 8, result.InputDecimals)
	require.EqualValues(t, 6, result.OutputDecimals)
}

// A token with no stored metadata defaults to 18 decimals (get_token's
// documented miss behavior), not zero.
func TestComputeQuote_UnknownTokenDefaultsTo18Decimals(t *testing.T) {
	s := store.NewMemoryStore()
	seedBellCurvePool(s, "BTC-USDC-25", [6]int64{})
	shared := loadShared(t, s, "BTC-USDC-25")

	result, err := quote.ComputeQuote(context.Background(), s, shared, "BTC", "USDC", decimal.NewFromInt(1), 1000)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.EqualValues(t, 18, result.InputDecimals)
	require.EqualValues(t, 18, result.OutputDecimals)
}

func TestComputeQuote_UnrelatedTokenIsNoLiquidity(t *testing.T) {
	s := store.NewMemoryStore()
	seedBellCurvePool(s, "BTC-USDC-25", [6]int64{})
	shared := loadShared(t, s, "BTC-USDC-25")

	result, err := quote.ComputeQuote(context.Background(), s, shared, "ETH", "USDC", decimal.NewFromInt(1), 1000)
	require.NoError(t, err)
	require.False(t, result.Success)
}

func TestComputeQuote_EmptyOppositeReserveYieldsNoLiquidity(t *testing.T) {
	s := store.NewMemoryStore()
	s.PutPool(&quotetypes.Pool{PoolID: "p1", Token0: "BTC", Token1: "USDC", BinStep: decimal.NewFromFloat(0.0025), ActiveBin: 500})
	s.PutBin(&quotetypes.Bin{PoolID: "p1", BinID: 500, ReserveX: uint128.From64(0), ReserveY: uint128.From64(0)})
	s.PutBinPrice("p1", 500, decimal.NewFromInt(100))
	shared := loadShared(t, s, "p1")

	result, err := quote.ComputeQuote(context.Background(), s, shared, "BTC", "USDC", decimal.NewFromInt(1), 1000)
	require.NoError(t, err)
	require.False(t, result.Success)
}

// Regression: a Y->X hop divides (produced = used / price), which does
// not terminate for most price/amount pairs. AmountOut must come back
// quantized to a whole atomic unit so a caller chaining it into the
// next hop's amount_in never receives a repeating decimal (DESIGN.md,
// "AmountOut is quantized to a whole atomic unit").
func TestComputeQuote_AmountOutQuantizedToWholeUnit(t *testing.T) {
	s := store.NewMemoryStore()
	s.PutPool(&quotetypes.Pool{PoolID: "p-div", Token0: "C", Token1: "B", ActiveBin: 500})
	s.PutBin(&quotetypes.Bin{PoolID: "p-div", BinID: 500, ReserveX: uint128.From64(1_000_000), ReserveY: uint128.From64(0)})
	s.PutBinPrice("p-div", 500, decimal.NewFromInt(3))
	shared := loadShared(t, s, "p-div")

	// B -> C: B is token1, so this is Y->X: produced = used / price =
	// 20 / 3, a non-terminating decimal before rounding.
	result, err := quote.ComputeQuote(context.Background(), s, shared, "B", "C", decimal.NewFromInt(20), 1000)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, "7", result.AmountOut.String(), "amount_out must be a whole atomic unit, not a repeating decimal")
}

// Spec §3 requires at least 28 significant digits of division precision
// to keep per-bin price ratios, compounded across up to maxBinTraversal
// bins, from drifting before the final rounding. shopspring/decimal's
// package-global default of 16 is raised once in this package's init().
func TestDivisionPrecisionMeetsSpecGuard(t *testing.T) {
	require.GreaterOrEqual(t, decimal.DivisionPrecision, 28)
}
