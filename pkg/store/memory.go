package store

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/solana-zh/dlmm-quote-engine/pkg/quotetypes"
)

// MemoryStore is an in-memory Store fixture for tests, seeded through its
// Put* methods instead of a live Redis instance. It never
// returns ErrStoreFailure except through SetFailing, which lets tests
// exercise the transport-failure abort path.
type MemoryStore struct {
	mu       sync.RWMutex
	pools    map[string]*quotetypes.Pool
	bins     map[quotetypes.BinKey]*quotetypes.Bin
	prices   map[quotetypes.BinKey]decimal.Decimal
	graphs   map[string]*TokenGraphData
	tokens   map[string]*quotetypes.Token
	failing  bool
}

// NewMemoryStore returns an empty MemoryStore ready for Put* calls.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		pools:  make(map[string]*quotetypes.Pool),
		bins:   make(map[quotetypes.BinKey]*quotetypes.Bin),
		prices: make(map[quotetypes.BinKey]decimal.Decimal),
		graphs: make(map[string]*TokenGraphData),
		tokens: make(map[string]*quotetypes.Token),
	}
}

// SetFailing makes every subsequent call return ErrStoreFailure, for
// testing the abort-on-transport-failure behavior of callers.
func (s *MemoryStore) SetFailing(failing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = failing
}

func (s *MemoryStore) checkFailing() error {
	if s.failing {
		return ErrStoreFailure
	}
	return nil
}

// PutPool seeds a pool's metadata. It does not index any bin price; use
// PutBinPrice for that.
func (s *MemoryStore) PutPool(pool *quotetypes.Pool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *pool
	s.pools[pool.PoolID] = &cp
}

// PutBin seeds a bin's reserves.
func (s *MemoryStore) PutBin(bin *quotetypes.Bin) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *bin
	s.bins[quotetypes.BinKey{PoolID: bin.PoolID, BinID: bin.BinID}] = &cp
}

// PutBinPrice seeds a bin's price in the ZSET-equivalent price index.
func (s *MemoryStore) PutBinPrice(poolID string, binID int64, price decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices[quotetypes.BinKey{PoolID: poolID, BinID: binID}] = price
}

// PutTokenGraph seeds the token graph for a version.
func (s *MemoryStore) PutTokenGraph(data *TokenGraphData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graphs[data.Version] = data
}

// PutToken seeds token metadata.
func (s *MemoryStore) PutToken(token *quotetypes.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *token
	s.tokens[token.Symbol] = &cp
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checkFailing()
}

func (s *MemoryStore) GetPool(ctx context.Context, poolID string) (*quotetypes.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkFailing(); err != nil {
		return nil, err
	}
	pool, ok := s.pools[poolID]
	if !ok {
		return nil, nil
	}
	cp := *pool
	return &cp, nil
}

func (s *MemoryStore) GetBin(ctx context.Context, poolID string, binID int64) (*quotetypes.Bin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkFailing(); err != nil {
		return nil, err
	}
	bin, ok := s.bins[quotetypes.BinKey{PoolID: poolID, BinID: binID}]
	if !ok {
		return nil, nil
	}
	cp := *bin
	return &cp, nil
}

func (s *MemoryStore) GetBinPrice(ctx context.Context, poolID string, binID int64) (decimal.Decimal, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkFailing(); err != nil {
		return decimal.Zero, false, err
	}
	price, ok := s.prices[quotetypes.BinKey{PoolID: poolID, BinID: binID}]
	return price, ok, nil
}

func (s *MemoryStore) sortedPoolBinIDs(poolID string) []int64 {
	ids := make([]int64, 0)
	for k := range s.prices {
		if k.PoolID == poolID {
			ids = append(ids, k.BinID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *MemoryStore) GetBinPricesAscending(ctx context.Context, poolID string, fromPriceExclusive, upperBound decimal.Decimal) ([]quotetypes.BinPrice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkFailing(); err != nil {
		return nil, err
	}
	bounded := upperBound.IsPositive()
	var out []quotetypes.BinPrice
	for _, binID := range s.sortedPoolBinIDs(poolID) {
		price := s.prices[quotetypes.BinKey{PoolID: poolID, BinID: binID}]
		if !price.GreaterThan(fromPriceExclusive) {
			continue
		}
		if bounded && price.GreaterThan(upperBound) {
			continue
		}
		out = append(out, quotetypes.BinPrice{BinID: binID, Price: price})
	}
	return out, nil
}

func (s *MemoryStore) GetBinPricesDescending(ctx context.Context, poolID string, fromPriceExclusive, lowerBound decimal.Decimal) ([]quotetypes.BinPrice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkFailing(); err != nil {
		return nil, err
	}
	bounded := lowerBound.IsPositive()
	ids := s.sortedPoolBinIDs(poolID)
	var out []quotetypes.BinPrice
	for i := len(ids) - 1; i >= 0; i-- {
		binID := ids[i]
		price := s.prices[quotetypes.BinKey{PoolID: poolID, BinID: binID}]
		if !price.LessThan(fromPriceExclusive) {
			continue
		}
		if bounded && price.LessThan(lowerBound) {
			continue
		}
		out = append(out, quotetypes.BinPrice{BinID: binID, Price: price})
	}
	return out, nil
}

func (s *MemoryStore) GetTokenGraph(ctx context.Context, version string) (*TokenGraphData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkFailing(); err != nil {
		return nil, err
	}
	data, ok := s.graphs[version]
	if !ok {
		return nil, nil
	}
	return data, nil
}

func (s *MemoryStore) GetToken(ctx context.Context, symbol string) (*quotetypes.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkFailing(); err != nil {
		return nil, err
	}
	if token, ok := s.tokens[symbol]; ok {
		cp := *token
		return &cp, nil
	}
	return &quotetypes.Token{Symbol: symbol, Decimals: defaultTokenDecimals}, nil
}

func (s *MemoryStore) ListPoolIDs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkFailing(); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(s.pools))
	for id := range s.pools {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) BatchGetPools(ctx context.Context, ids []string) (map[string]*quotetypes.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkFailing(); err != nil {
		return nil, err
	}
	result := make(map[string]*quotetypes.Pool, len(ids))
	for _, id := range ids {
		if pool, ok := s.pools[id]; ok {
			cp := *pool
			result[id] = &cp
		}
	}
	return result, nil
}

func (s *MemoryStore) BatchGetBins(ctx context.Context, keys []quotetypes.BinKey) (map[quotetypes.BinKey]*quotetypes.Bin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkFailing(); err != nil {
		return nil, err
	}
	result := make(map[quotetypes.BinKey]*quotetypes.Bin, len(keys))
	for _, k := range keys {
		if bin, ok := s.bins[k]; ok {
			cp := *bin
			result[k] = &cp
		}
	}
	return result, nil
}

func (s *MemoryStore) BatchGetBinPrices(ctx context.Context, keys []quotetypes.BinKey) (map[quotetypes.BinKey]decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkFailing(); err != nil {
		return nil, err
	}
	result := make(map[quotetypes.BinKey]decimal.Decimal, len(keys))
	for _, k := range keys {
		if price, ok := s.prices[k]; ok {
			result[k] = price
		}
	}
	return result, nil
}

var _ Store = (*MemoryStore)(nil)
