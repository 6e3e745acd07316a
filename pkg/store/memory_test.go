package store_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"

	"github.com/solana-zh/dlmm-quote-engine/pkg/quotetypes"
	"github.com/solana-zh/dlmm-quote-engine/pkg/store"
)

func TestMemoryStore_GetPool_MissReturnsNilNil(t *testing.T) {
	s := store.NewMemoryStore()
	pool, err := s.GetPool(context.Background(), "missing-pool")
	require.NoError(t, err)
	require.Nil(t, pool)
}

func TestMemoryStore_GetToken_MissDefaultsTo18Decimals(t *testing.T) {
	s := store.NewMemoryStore()
	token, err := s.GetToken(context.Background(), "UNKNOWN")
	require.NoError(t, err)
	require.Equal(t, "UNKNOWN", token.Symbol)
	require.EqualValues(t, 18, token.Decimals)
}

func TestMemoryStore_RoundTripsPoolAndBin(t *testing.T) {
	s := store.NewMemoryStore()
	pool := &quotetypes.Pool{PoolID: "p1", Token0: "SOL", Token1: "USDC", BinStep: decimal.NewFromFloat(0.01), ActiveBin: 100, Active: true}
	s.PutPool(pool)
	bin := &quotetypes.Bin{PoolID: "p1", BinID: 100, ReserveX: uint128.From64(1000), ReserveY: uint128.From64(2000)}
	s.PutBin(bin)

	got, err := s.GetPool(context.Background(), "p1")
	require.NoError(t, err)
	require.Equal(t, "SOL", got.Token0)

	gotBin, err := s.GetBin(context.Background(), "p1", 100)
	require.NoError(t, err)
	require.True(t, gotBin.ReserveX.Equals(uint128.From64(1000)))
}

func TestMemoryStore_GetBinPricesAscending_ExcludesFromPriceInclusiveBoundApplies(t *testing.T) {
	s := store.NewMemoryStore()
	for i, p := range []float64{1.0, 1.1, 1.2, 1.3} {
		s.PutBinPrice("p1", int64(100+i), decimal.NewFromFloat(p))
	}

	res, err := s.GetBinPricesAscending(context.Background(), "p1", decimal.NewFromFloat(1.1), decimal.Zero)
	require.NoError(t, err)
	require.Len(t, res, 2)
	require.Equal(t, int64(102), res[0].BinID)
	require.Equal(t, int64(103), res[1].BinID)

	bounded, err := s.GetBinPricesAscending(context.Background(), "p1", decimal.NewFromFloat(1.0), decimal.NewFromFloat(1.2))
	require.NoError(t, err)
	require.Len(t, bounded, 2)
	require.Equal(t, int64(101), bounded[0].BinID)
	require.Equal(t, int64(102), bounded[1].BinID)
}

func TestMemoryStore_GetBinPricesDescending_UnboundedWalksToLowestBin(t *testing.T) {
	s := store.NewMemoryStore()
	for i, p := range []float64{1.0, 1.1, 1.2, 1.3} {
		s.PutBinPrice("p1", int64(100+i), decimal.NewFromFloat(p))
	}

	res, err := s.GetBinPricesDescending(context.Background(), "p1", decimal.NewFromFloat(1.2), decimal.Zero)
	require.NoError(t, err)
	require.Len(t, res, 2)
	require.Equal(t, int64(101), res[0].BinID)
	require.Equal(t, int64(100), res[1].BinID)
}

func TestMemoryStore_SetFailing_AbortsAllCalls(t *testing.T) {
	s := store.NewMemoryStore()
	s.SetFailing(true)
	_, err := s.GetPool(context.Background(), "p1")
	require.ErrorIs(t, err, store.ErrStoreFailure)
	_, err = s.GetBin(context.Background(), "p1", 100)
	require.ErrorIs(t, err, store.ErrStoreFailure)
	_, err = s.GetToken(context.Background(), "BTC")
	require.ErrorIs(t, err, store.ErrStoreFailure)
	_, err = s.BatchGetPools(context.Background(), []string{"p1"})
	require.ErrorIs(t, err, store.ErrStoreFailure)
	require.ErrorIs(t, s.Ping(context.Background()), store.ErrStoreFailure)
}

func TestMemoryStore_BatchGetPools_SkipsMissingIDs(t *testing.T) {
	s := store.NewMemoryStore()
	s.PutPool(&quotetypes.Pool{PoolID: "p1", Token0: "SOL", Token1: "USDC"})

	got, err := s.BatchGetPools(context.Background(), []string{"p1", "missing"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Contains(t, got, "p1")
}
