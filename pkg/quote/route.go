package quote

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/solana-zh/dlmm-quote-engine/pkg/graph"
	"github.com/solana-zh/dlmm-quote-engine/pkg/prefetch"
	"github.com/solana-zh/dlmm-quote-engine/pkg/quotetypes"
	"github.com/solana-zh/dlmm-quote-engine/pkg/store"
)

// ErrNoRouteFound means path enumeration yielded nothing for the
// requested token pair.
var ErrNoRouteFound = fmt.Errorf("quote: no route found")

// ErrNoViableQuote means candidate paths existed, but none produced any
// output (every hop returned no-liquidity, or every referenced pool was
// missing from persistence).
var ErrNoViableQuote = fmt.Errorf("quote: no viable quote")

type hopQuote struct {
	poolID string
	result *HopResult
}

// quotePool calls ComputeQuote against a single pool on a single hop,
// used as the per-pool unit of concurrent work in FindBestRoute.
func quotePool(ctx context.Context, s store.Store, shared prefetch.Shared, poolID, inToken, outToken string, amountIn decimal.Decimal, maxBinTraversal int) hopQuote {
	poolShared, ok := shared[poolID]
	if !ok {
		return hopQuote{poolID: poolID, result: &HopResult{Success: false, Err: ErrPoolUnavailable}}
	}
	result, err := ComputeQuote(ctx, s, poolShared, inToken, outToken, amountIn, maxBinTraversal)
	if err != nil {
		return hopQuote{poolID: poolID, result: &HopResult{Success: false, Err: err}}
	}
	return hopQuote{poolID: poolID, result: result}
}

// bestPoolForHop quotes every pool on an edge concurrently and picks the
// pool with the largest successful amount_out, ties broken by
// enumeration order of pools in the edge. Results are
// written into a position-indexed slice rather than collected off a
// channel so that tie-breaking depends only on edge order, never on
// goroutine completion order.
func bestPoolForHop(ctx context.Context, s store.Store, shared prefetch.Shared, poolIDs []string, inToken, outToken string, amountIn decimal.Decimal, maxBinTraversal int) (string, *HopResult, bool) {
	results := make([]hopQuote, len(poolIDs))
	var wg sync.WaitGroup
	for i, poolID := range poolIDs {
		wg.Add(1)
		go func(i int, poolID string) {
			defer wg.Done()
			results[i] = quotePool(ctx, s, shared, poolID, inToken, outToken, amountIn, maxBinTraversal)
		}(i, poolID)
	}
	wg.Wait()

	var bestIdx = -1
	for i, r := range results {
		if !r.result.Success {
			continue
		}
		if bestIdx == -1 || r.result.AmountOut.GreaterThan(results[bestIdx].result.AmountOut) {
			bestIdx = i
		}
	}
	if bestIdx == -1 {
		return "", nil, false
	}
	return results[bestIdx].poolID, results[bestIdx].result, true
}

// candidate is one fully-simulated path: every hop succeeded and chained
// into the next hop's input.
type candidate struct {
	path           []string
	amountOut      decimal.Decimal
	executionPath  []quotetypes.ExecutionStep
	totalFee       decimal.Decimal
	inputDecimals  uint8
	outputDecimals uint8
}

// simulatePath chains single-hop simulations across a path's edges,
// picking the best single pool per hop, and returns nil if any hop has
// no surviving pool. inputDecimals/outputDecimals come from the first
// hop's input token and the last hop's output token respectively.
func simulatePath(ctx context.Context, s store.Store, g *graph.TokenGraph, shared prefetch.Shared, path []string, amountIn decimal.Decimal, maxBinTraversal int) *candidate {
	current := amountIn
	var executionPath []quotetypes.ExecutionStep
	totalFee := decimal.Zero
	var inputDecimals, outputDecimals uint8

	for i := 0; i+1 < len(path); i++ {
		poolIDs := g.EdgePools(path[i], path[i+1])
		if len(poolIDs) == 0 {
			return nil
		}
		_, best, ok := bestPoolForHop(ctx, s, shared, poolIDs, path[i], path[i+1], current, maxBinTraversal)
		if !ok {
			return nil
		}
		if i == 0 {
			inputDecimals = best.InputDecimals
		}
		outputDecimals = best.OutputDecimals
		executionPath = append(executionPath, best.ExecutionPath...)
		totalFee = totalFee.Add(best.FeeAmount)
		current = best.AmountOut
	}

	return &candidate{
		path:           path,
		amountOut:      current,
		executionPath:  executionPath,
		totalFee:       totalFee,
		inputDecimals:  inputDecimals,
		outputDecimals: outputDecimals,
	}
}

// FindBestRoute simulates every candidate path and returns the one with
// the highest final output, ties broken by enumeration order of paths.
// Callers are expected to have already prefetched shared data for the
// union of pools across paths (pkg/prefetch).
func FindBestRoute(ctx context.Context, s store.Store, g *graph.TokenGraph, shared prefetch.Shared, paths [][]string, amountIn decimal.Decimal, maxBinTraversal int) *RouteResult {
	if len(paths) == 0 {
		return &RouteResult{Success: false, Err: ErrNoRouteFound}
	}

	if amountIn.Sign() == 0 {
		return &RouteResult{
			Success:   true,
			AmountOut: decimal.Zero,
			RoutePath: paths[0],
			TotalFee:  decimal.Zero,
		}
	}

	var best *candidate
	for _, path := range paths {
		cand := simulatePath(ctx, s, g, shared, path, amountIn, maxBinTraversal)
		if cand == nil {
			continue
		}
		if best == nil || cand.amountOut.GreaterThan(best.amountOut) {
			best = cand
		}
	}

	if best == nil {
		return &RouteResult{Success: false, Err: ErrNoViableQuote}
	}

	avgFeeRate := decimal.Zero
	if amountIn.Sign() != 0 {
		avgFeeRate = best.totalFee.Div(amountIn)
	}

	return &RouteResult{
		Success:        true,
		AmountOut:      best.amountOut,
		RoutePath:      best.path,
		ExecutionPath:  best.executionPath,
		TotalFee:       best.totalFee,
		InputDecimals:  best.inputDecimals,
		OutputDecimals: best.outputDecimals,
		AvgFeeRate:     avgFeeRate,
		PriceImpactBps: 0,
	}
}
