// Package store defines the read-only State Store API the quote engine
// core reads persisted pool, bin, token, and token-graph data through,
// and ships two implementations: a Redis-backed one for production and
// an in-memory one for tests and fixtures.
package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/solana-zh/dlmm-quote-engine/pkg/quotetypes"
)

// ErrStoreFailure signals a transport-level failure talking to the
// persistence layer. It always aborts the request.
var ErrStoreFailure = errors.New("state store: transport failure")

// TokenGraphData is the raw persisted form of the token graph: an
// ordered-pair key ("A->B") to a list of pool ids trading that pair.
type TokenGraphData struct {
	Version    string
	TokenPairs map[string][]string
}

// Store is the read-only accessor over persisted pool/bin/graph data.
// Implementations return (nil, nil) for a missing key and a non-nil
// error only for an operational (transport) failure.
type Store interface {
	GetPool(ctx context.Context, poolID string) (*quotetypes.Pool, error)
	GetBin(ctx context.Context, poolID string, binID int64) (*quotetypes.Bin, error)
	GetBinPrice(ctx context.Context, poolID string, binID int64) (decimal.Decimal, bool, error)

	// GetBinPricesAscending returns bins with price strictly greater than
	// fromPriceExclusive, up to and including upperBound, in ascending
	// price order. A non-positive upperBound means unbounded (+inf) —
	// prices are always positive, so zero/negative is never a real bound.
	GetBinPricesAscending(ctx context.Context, poolID string, fromPriceExclusive, upperBound decimal.Decimal) ([]quotetypes.BinPrice, error)

	// GetBinPricesDescending returns bins with price strictly less than
	// fromPriceExclusive, down to and including lowerBound, in descending
	// price order. A non-positive lowerBound means unbounded (-inf).
	GetBinPricesDescending(ctx context.Context, poolID string, fromPriceExclusive, lowerBound decimal.Decimal) ([]quotetypes.BinPrice, error)

	GetTokenGraph(ctx context.Context, version string) (*TokenGraphData, error)

	// GetToken looks up a token's metadata. A miss yields a synthetic
	// Token with 18 decimals rather than an error.
	GetToken(ctx context.Context, symbol string) (*quotetypes.Token, error)

	// BatchGetPools and BatchGetBins each resolve in a single round trip
	// to the persistence layer. Missing ids are simply absent from the
	// returned map.
	BatchGetPools(ctx context.Context, ids []string) (map[string]*quotetypes.Pool, error)
	BatchGetBins(ctx context.Context, keys []quotetypes.BinKey) (map[quotetypes.BinKey]*quotetypes.Bin, error)

	// BatchGetBinPrices resolves the price of each key in one round trip.
	// A key with no stored price is simply absent from the result.
	BatchGetBinPrices(ctx context.Context, keys []quotetypes.BinKey) (map[quotetypes.BinKey]decimal.Decimal, error)

	// Ping reports whether the store's backing connection is healthy.
	Ping(ctx context.Context) error

	// ListPoolIDs enumerates every pool id known to the persistence
	// layer, for the GET /pools listing endpoint. It is an operational
	// convenience, not used by the routing/pricing core itself.
	ListPoolIDs(ctx context.Context) ([]string, error)
}
