// Package quotetypes defines the value types shared by the token graph,
// the state store, and the bin-walk simulator: tokens, pools, bins, and
// the execution-step shape the on-chain router replays.
package quotetypes

import (
	"github.com/shopspring/decimal"
	"lukechampine.com/uint128"
)

// Token is an ERC20-like asset identified by its symbol.
type Token struct {
	Symbol   string
	Decimals uint8
}

// Pool is one DLMM liquidity pool. Token0/Token1 order is canonical and
// fixes which direction of a swap is "X→Y".
type Pool struct {
	PoolID    string
	Token0    string
	Token1    string
	BinStep   decimal.Decimal
	ActiveBin int64
	Active    bool

	XProtocolFee int64 // basis points
	XProviderFee int64
	XVariableFee int64
	YProtocolFee int64
	YProviderFee int64
	YVariableFee int64
}

// Bin is one indexed liquidity bucket of a pool. Reserves are atomic
// units of the pool's tokens; Liquidity is an informational rebased-in-Y
// aggregate.
type Bin struct {
	PoolID    string
	BinID     int64
	ReserveX  uint128.Uint128
	ReserveY  uint128.Uint128
	Liquidity uint128.Uint128
}

// BinKey identifies a single bin for batched lookups.
type BinKey struct {
	PoolID string
	BinID  int64
}

// BinPrice pairs a bin id with its authoritative, stored price.
type BinPrice struct {
	BinID int64
	Price decimal.Decimal
}

// ExecutionStep is one per-bin swap instruction an on-chain router can
// replay verbatim. Exactly one of XAmount/YAmount is set.
type ExecutionStep struct {
	PoolTrait    string
	XTokenTrait  string
	YTokenTrait  string
	BinID        int64
	FunctionName string // "swap-x-for-y" or "swap-y-for-x"
	XAmount      *decimal.Decimal
	YAmount      *decimal.Decimal
}
