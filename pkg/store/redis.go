package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/solana-zh/dlmm-quote-engine/pkg/quotetypes"
)

// RedisStore is the production State Store implementation. It wraps a
// go-redis client with a rate limiter, the same shape as a rate-limited
// RPC client wrapper, just fronting Redis instead of an RPC endpoint.
type RedisStore struct {
	client      *redis.Client
	rateLimiter *rate.Limiter
	log         *zap.SugaredLogger
}

// NewRedisStore builds a RedisStore around an already-configured
// go-redis client, rate limited to reqLimitPerSecond requests/sec.
func NewRedisStore(client *redis.Client, reqLimitPerSecond int, log *zap.SugaredLogger) *RedisStore {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &RedisStore{
		client:      client,
		rateLimiter: rate.NewLimiter(rate.Limit(reqLimitPerSecond), reqLimitPerSecond),
		log:         log,
	}
}

func (s *RedisStore) wait(ctx context.Context) error {
	if err := s.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limiter: %v", ErrStoreFailure, err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: ping: %v", ErrStoreFailure, err)
	}
	return nil
}

func (s *RedisStore) GetPool(ctx context.Context, poolID string) (*quotetypes.Pool, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	data, err := s.client.HGetAll(ctx, poolKey(poolID)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: get pool %s: %v", ErrStoreFailure, poolID, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	pool, err := parsePool(poolID, data)
	if err != nil {
		s.log.Warnw("dropping malformed pool", "pool_id", poolID, "error", err)
		return nil, nil
	}
	return pool, nil
}

func (s *RedisStore) GetBin(ctx context.Context, poolID string, binID int64) (*quotetypes.Bin, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	data, err := s.client.HGetAll(ctx, binKey(poolID, binID)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: get bin %s:%d: %v", ErrStoreFailure, poolID, binID, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	bin, err := parseBin(poolID, binID, data)
	if err != nil {
		s.log.Warnw("dropping malformed bin", "pool_id", poolID, "bin_id", binID, "error", err)
		return nil, nil
	}
	return bin, nil
}

func (s *RedisStore) GetBinPrice(ctx context.Context, poolID string, binID int64) (decimal.Decimal, bool, error) {
	if err := s.wait(ctx); err != nil {
		return decimal.Zero, false, err
	}
	score, err := s.client.ZScore(ctx, binPriceZSetKey(poolID), strconv.FormatInt(binID, 10)).Result()
	if err == redis.Nil {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("%w: get bin price %s:%d: %v", ErrStoreFailure, poolID, binID, err)
	}
	return decimal.NewFromFloat(score), true, nil
}

func (s *RedisStore) GetBinPricesAscending(ctx context.Context, poolID string, fromPriceExclusive, upperBound decimal.Decimal) ([]quotetypes.BinPrice, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	max := "+inf"
	if upperBound.IsPositive() {
		max = upperBound.String()
	}
	res, err := s.client.ZRangeByScoreWithScores(ctx, binPriceZSetKey(poolID), &redis.ZRangeBy{
		Min: "(" + fromPriceExclusive.String(),
		Max: max,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: bin prices ascending %s: %v", ErrStoreFailure, poolID, err)
	}
	return toBinPrices(res), nil
}

func (s *RedisStore) GetBinPricesDescending(ctx context.Context, poolID string, fromPriceExclusive, lowerBound decimal.Decimal) ([]quotetypes.BinPrice, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	min := "-inf"
	if lowerBound.IsPositive() {
		min = lowerBound.String()
	}
	res, err := s.client.ZRevRangeByScoreWithScores(ctx, binPriceZSetKey(poolID), &redis.ZRangeBy{
		Max: "(" + fromPriceExclusive.String(),
		Min: min,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: bin prices descending %s: %v", ErrStoreFailure, poolID, err)
	}
	return toBinPrices(res), nil
}

func toBinPrices(zs []redis.Z) []quotetypes.BinPrice {
	out := make([]quotetypes.BinPrice, 0, len(zs))
	for _, z := range zs {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		binID, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, quotetypes.BinPrice{BinID: binID, Price: decimal.NewFromFloat(z.Score)})
	}
	return out
}

func (s *RedisStore) GetTokenGraph(ctx context.Context, version string) (*TokenGraphData, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	data, err := s.client.HGetAll(ctx, tokenGraphKey(version)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: get token graph %s: %v", ErrStoreFailure, version, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	pairs, err := parseTokenGraph(data)
	if err != nil {
		return nil, fmt.Errorf("%w: parse token graph %s: %v", ErrStoreFailure, version, err)
	}
	return &TokenGraphData{Version: version, TokenPairs: pairs}, nil
}

func (s *RedisStore) GetToken(ctx context.Context, symbol string) (*quotetypes.Token, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	data, err := s.client.HGetAll(ctx, tokenKey(symbol)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: get token %s: %v", ErrStoreFailure, symbol, err)
	}
	decimals := defaultTokenDecimals
	if raw, ok := data["decimals"]; ok {
		if v, err := strconv.Atoi(raw); err == nil {
			decimals = v
		}
	}
	return &quotetypes.Token{Symbol: symbol, Decimals: uint8(decimals)}, nil
}

func (s *RedisStore) ListPoolIDs(ctx context.Context) ([]string, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	var ids []string
	iter := s.client.Scan(ctx, 0, "pool:*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if strings.Count(key, ":") != 1 {
			continue // skip "pool:{id}:bins" zset keys
		}
		ids = append(ids, strings.TrimPrefix(key, "pool:"))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%w: list pool ids: %v", ErrStoreFailure, err)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *RedisStore) BatchGetPools(ctx context.Context, ids []string) (map[string]*quotetypes.Pool, error) {
	result := make(map[string]*quotetypes.Pool, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	ordered := uniqueSorted(ids)
	pipe := s.client.Pipeline()
	cmds := make(map[string]*redis.MapStringStringCmd, len(ordered))
	for _, id := range ordered {
		cmds[id] = pipe.HGetAll(ctx, poolKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("%w: batch get pools: %v", ErrStoreFailure, err)
	}
	for _, id := range ordered {
		data, err := cmds[id].Result()
		if err != nil || len(data) == 0 {
			continue
		}
		pool, err := parsePool(id, data)
		if err != nil {
			s.log.Warnw("dropping malformed pool in batch", "pool_id", id, "error", err)
			continue
		}
		result[id] = pool
	}
	return result, nil
}

func (s *RedisStore) BatchGetBins(ctx context.Context, keys []quotetypes.BinKey) (map[quotetypes.BinKey]*quotetypes.Bin, error) {
	result := make(map[quotetypes.BinKey]*quotetypes.Bin, len(keys))
	if len(keys) == 0 {
		return result, nil
	}
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	pipe := s.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(keys))
	for i, k := range keys {
		cmds[i] = pipe.HGetAll(ctx, binKey(k.PoolID, k.BinID))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("%w: batch get bins: %v", ErrStoreFailure, err)
	}
	for i, k := range keys {
		data, err := cmds[i].Result()
		if err != nil || len(data) == 0 {
			continue
		}
		bin, err := parseBin(k.PoolID, k.BinID, data)
		if err != nil {
			s.log.Warnw("dropping malformed bin in batch", "pool_id", k.PoolID, "bin_id", k.BinID, "error", err)
			continue
		}
		result[k] = bin
	}
	return result, nil
}

func (s *RedisStore) BatchGetBinPrices(ctx context.Context, keys []quotetypes.BinKey) (map[quotetypes.BinKey]decimal.Decimal, error) {
	result := make(map[quotetypes.BinKey]decimal.Decimal, len(keys))
	if len(keys) == 0 {
		return result, nil
	}
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	pipe := s.client.Pipeline()
	cmds := make([]*redis.FloatCmd, len(keys))
	for i, k := range keys {
		cmds[i] = pipe.ZScore(ctx, binPriceZSetKey(k.PoolID), strconv.FormatInt(k.BinID, 10))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("%w: batch get bin prices: %v", ErrStoreFailure, err)
	}
	for i, k := range keys {
		score, err := cmds[i].Result()
		if err != nil {
			continue
		}
		result[k] = decimal.NewFromFloat(score)
	}
	return result, nil
}

func uniqueSorted(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func parseTokenGraph(data map[string]string) (map[string][]string, error) {
	pairs := make(map[string][]string, len(data))
	for pair, raw := range data {
		if !strings.Contains(pair, "->") {
			continue
		}
		ids, err := decodePoolIDList(raw)
		if err != nil {
			return nil, fmt.Errorf("pair %s: %w", pair, err)
		}
		pairs[pair] = ids
	}
	return pairs, nil
}
