package store

import "fmt"

// Key patterns carried forward from RedisSchema in
// original_source/quote-engine/src/redis/schemas.py.
const (
	poolKeyPattern          = "pool:%s"
	binKeyPattern           = "bin:%s:%d"
	binPriceZSetKeyPattern  = "pool:%s:bins"
	tokenGraphKeyPattern    = "token_graph:%s"
	tokenKeyPattern         = "token:%s"
)

func poolKey(poolID string) string {
	return fmt.Sprintf(poolKeyPattern, poolID)
}

func binKey(poolID string, binID int64) string {
	return fmt.Sprintf(binKeyPattern, poolID, binID)
}

func binPriceZSetKey(poolID string) string {
	return fmt.Sprintf(binPriceZSetKeyPattern, poolID)
}

func tokenGraphKey(version string) string {
	return fmt.Sprintf(tokenGraphKeyPattern, version)
}

func tokenKey(symbol string) string {
	return fmt.Sprintf(tokenKeyPattern, symbol)
}

const defaultTokenDecimals = 18
