package store

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"lukechampine.com/uint128"

	"github.com/solana-zh/dlmm-quote-engine/pkg/quotetypes"
)

// parsePool decodes a pool:{pool_id} Redis hash into a Pool, following
// the field set of original_source/quote-engine/src/redis/schemas.py's
// PoolData.from_redis_hash.
func parsePool(poolID string, data map[string]string) (*quotetypes.Pool, error) {
	binStep, err := decimal.NewFromString(data["bin_step"])
	if err != nil {
		return nil, fmt.Errorf("bin_step: %w", err)
	}
	activeBin, err := strconv.ParseInt(data["active_bin"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("active_bin: %w", err)
	}
	fees := make([]int64, 6)
	fieldNames := []string{"x_protocol_fee", "x_provider_fee", "x_variable_fee", "y_protocol_fee", "y_provider_fee", "y_variable_fee"}
	for i, name := range fieldNames {
		v, err := strconv.ParseInt(data[name], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		fees[i] = v
	}
	token0, token1 := data["token0"], data["token1"]
	if token0 == "" || token1 == "" || token0 == token1 {
		return nil, fmt.Errorf("invalid token0/token1: %q/%q", token0, token1)
	}
	return &quotetypes.Pool{
		PoolID:       poolID,
		Token0:       token0,
		Token1:       token1,
		BinStep:      binStep,
		ActiveBin:    activeBin,
		Active:       data["active"] == "true",
		XProtocolFee: fees[0],
		XProviderFee: fees[1],
		XVariableFee: fees[2],
		YProtocolFee: fees[3],
		YProviderFee: fees[4],
		YVariableFee: fees[5],
	}, nil
}

// parseBin decodes a bin:{pool_id}:{bin_id} Redis hash into a Bin.
func parseBin(poolID string, binID int64, data map[string]string) (*quotetypes.Bin, error) {
	reserveX, err := parseU128(data["reserve_x"])
	if err != nil {
		return nil, fmt.Errorf("reserve_x: %w", err)
	}
	reserveY, err := parseU128(data["reserve_y"])
	if err != nil {
		return nil, fmt.Errorf("reserve_y: %w", err)
	}
	liquidity, err := parseU128(data["liquidity"])
	if err != nil {
		return nil, fmt.Errorf("liquidity: %w", err)
	}
	return &quotetypes.Bin{
		PoolID:    poolID,
		BinID:     binID,
		ReserveX:  reserveX,
		ReserveY:  reserveY,
		Liquidity: liquidity,
	}, nil
}

func parseU128(raw string) (uint128.Uint128, error) {
	if raw == "" {
		return uint128.Zero, nil
	}
	v, err := uint128.FromString(raw)
	if err != nil {
		return uint128.Zero, err
	}
	return v, nil
}

// decodePoolIDList decodes the JSON-encoded pool id list stored under a
// token-graph pair key, matching TokenGraphData.to_redis_hash's
// json.dumps(pools) encoding in the distilled Python source.
func decodePoolIDList(raw string) ([]string, error) {
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}
