// Package traits is the fixed, compile-time trait-mapping table that
// decorates execution steps for the on-chain router: opaque identifier
// strings for pool ids and token symbols, with a generic fallback for
// anything unmapped. Grounded verbatim on
// original_source/quote-engine/src/utils/traits.py's TraitMappings.
package traits

import (
	"sort"
	"strings"
)

const (
	defaultPoolTrait = "dlmm-pool-trait-v-1-1"

	// FunctionSwapXForY and FunctionSwapYForX name the two swap
	// directions an execution step can carry.
	FunctionSwapXForY = "swap-x-for-y"
	FunctionSwapYForX = "swap-y-for-x"
)

// poolTraits maps known pool ids to their router-facing trait string.
var poolTraits = map[string]string{
	"BTC-USDC-25": "dlmm-pool-btc-usdc-v-1-1",
	"BTC-USDC-50": "dlmm-pool-btc-usdc-v-1-1",
	"ETH-USDC-25": "dlmm-pool-eth-usdc-v-1-1",
	"BTC-ETH-25":  "dlmm-pool-btc-eth-v-1-1",
	"SOL-USDC-25": "dlmm-pool-sol-usdc-v-1-1",
	"SOL-USDC-50": "dlmm-pool-sol-usdc-v-1-1",
	"ETH-USDC-50": "dlmm-pool-eth-usdc-v-1-1",
	"BTC-ETH-50":  "dlmm-pool-btc-eth-v-1-1",
}

// tokenTraits maps known token symbols to their router-facing trait
// string.
var tokenTraits = map[string]string{
	"BTC":  "sbtc-trait",
	"ETH":  "seth-trait",
	"USDC": "usdc-trait",
	"SOL":  "sol-trait",
	"STX":  "stx-trait",
	"DIKO": "diko-trait",
}

// PoolTrait resolves a pool id to its trait string, falling back to a
// generic default for unmapped pools.
func PoolTrait(poolID string) string {
	if trait, ok := poolTraits[poolID]; ok {
		return trait
	}
	return defaultPoolTrait
}

// TokenTrait resolves a token symbol to its trait string, falling back
// to "{lowercase(symbol)}-trait" for unmapped tokens.
func TokenTrait(symbol string) string {
	if trait, ok := tokenTraits[symbol]; ok {
		return trait
	}
	return strings.ToLower(symbol) + "-trait"
}

// FunctionName returns the execution-step function name for a hop
// direction.
func FunctionName(swapForY bool) string {
	if swapForY {
		return FunctionSwapXForY
	}
	return FunctionSwapYForX
}

// IsSupportedToken reports whether symbol has an explicit trait mapping.
// The HTTP boundary uses this (not a store lookup) to validate request
// tokens, matching the routes.py validate_token check it's grounded on.
func IsSupportedToken(symbol string) bool {
	_, ok := tokenTraits[symbol]
	return ok
}

// SupportedTokens returns every token symbol with an explicit trait
// mapping, in a deterministic (sorted) order.
func SupportedTokens() []string {
	out := make([]string, 0, len(tokenTraits))
	for symbol := range tokenTraits {
		out = append(out, symbol)
	}
	sort.Strings(out)
	return out
}
