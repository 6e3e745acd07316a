// Package prefetch implements the Shared-Data Prefetch component: before
// any hop simulation begins, it batch-loads pool metadata and active-bin
// state for the union of pools touched by every candidate path, using a
// single round trip per data kind to the State Store, the way
// original_source/quote-engine/src/core/data.py's pre_fetch_shared_data
// builds its unique_pools set and pipelines the reads.
package prefetch

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/solana-zh/dlmm-quote-engine/pkg/graph"
	"github.com/solana-zh/dlmm-quote-engine/pkg/quotetypes"
	"github.com/solana-zh/dlmm-quote-engine/pkg/store"
)

// PoolShared is the per-request-consistent slice of a pool's state: its
// metadata plus its active bin's reserves and price. Everything else
// about the pool (non-active bins) is read fresh by the simulator.
type PoolShared struct {
	Pool           *quotetypes.Pool
	ActiveBin      *quotetypes.Bin
	ActiveBinPrice decimal.Decimal
	HasActivePrice bool
}

// Shared is the per-request map populated by Load, keyed by pool id. A
// pool id with no entry means it was missing from persistence and any
// hop that references it must be treated as no-liquidity.
type Shared map[string]*PoolShared

// UnionPools walks every adjacent pair of every candidate path and
// returns the deduplicated set of pool ids that could appear on any hop
// of any path (spec §4.C step 1).
func UnionPools(g *graph.TokenGraph, paths [][]string) []string {
	seen := make(map[string]struct{})
	var ordered []string
	for _, path := range paths {
		for i := 0; i+1 < len(path); i++ {
			for _, poolID := range g.EdgePools(path[i], path[i+1]) {
				if _, ok := seen[poolID]; ok {
					continue
				}
				seen[poolID] = struct{}{}
				ordered = append(ordered, poolID)
			}
		}
	}
	return ordered
}

// Load batch-fetches pool metadata and active-bin reserves/price for
// every id in poolIDs, in three round trips total (one for pools, one for
// bins keyed off each pool's active_bin, plus one for their prices). A
// pool missing from the store is simply absent from the result. A pool
// whose active bin or active-bin price is missing keeps its entry, with
// a nil ActiveBin or HasActivePrice false. The caller treats both cases
// as no-liquidity for any hop that needs the pool (spec §4.C step 3,
// "Failure semantics").
func Load(ctx context.Context, s store.Store, poolIDs []string) (Shared, error) {
	result := make(Shared, len(poolIDs))
	if len(poolIDs) == 0 {
		return result, nil
	}

	pools, err := s.BatchGetPools(ctx, poolIDs)
	if err != nil {
		return nil, fmt.Errorf("prefetch pools: %w", err)
	}

	ids := sortedKeys(pools)
	binKeys := make([]quotetypes.BinKey, 0, len(ids))
	for _, id := range ids {
		binKeys = append(binKeys, quotetypes.BinKey{PoolID: id, BinID: pools[id].ActiveBin})
	}

	bins, err := s.BatchGetBins(ctx, binKeys)
	if err != nil {
		return nil, fmt.Errorf("prefetch active bins: %w", err)
	}
	prices, err := s.BatchGetBinPrices(ctx, binKeys)
	if err != nil {
		return nil, fmt.Errorf("prefetch active bin prices: %w", err)
	}

	for _, id := range ids {
		pool := pools[id]
		key := quotetypes.BinKey{PoolID: id, BinID: pool.ActiveBin}
		price, hasPrice := prices[key]
		result[id] = &PoolShared{
			Pool:           pool,
			ActiveBin:      bins[key],
			ActiveBinPrice: price,
			HasActivePrice: hasPrice,
		}
	}
	return result, nil
}

func sortedKeys(pools map[string]*quotetypes.Pool) []string {
	ids := make([]string, 0, len(pools))
	for id := range pools {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
