package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/solana-zh/dlmm-quote-engine/pkg/graph"
	"github.com/solana-zh/dlmm-quote-engine/pkg/prefetch"
	"github.com/solana-zh/dlmm-quote-engine/pkg/quote"
	"github.com/solana-zh/dlmm-quote-engine/pkg/quotetypes"
	"github.com/solana-zh/dlmm-quote-engine/pkg/traits"
)

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	amountIn, err := validateQuoteRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	graphData, err := s.store.GetTokenGraph(ctx, s.cfg.TokenGraphVersion)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store failure loading token graph")
		return
	}
	tokenGraph := graph.Build(graphData)

	paths := tokenGraph.EnumeratePaths(req.InputToken, req.OutputToken, s.cfg.MaxHops)
	if len(paths) == 0 {
		writeJSON(w, http.StatusOK, noRouteResponse("No routes found between tokens"))
		return
	}

	poolIDs := prefetch.UnionPools(tokenGraph, paths)
	shared, err := prefetch.Load(ctx, s.store, poolIDs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store failure prefetching pool data")
		return
	}

	result := quote.FindBestRoute(ctx, s.store, tokenGraph, shared, paths, amountIn, s.cfg.MaxBinTraversal)
	if !result.Success {
		msg := "no viable route found"
		if result.Err != nil {
			msg = result.Err.Error()
		}
		writeJSON(w, http.StatusOK, noRouteResponse(msg))
		return
	}

	writeJSON(w, http.StatusOK, QuoteResponse{
		Success:        true,
		AmountOut:      result.AmountOut.StringFixed(0),
		RoutePath:      result.RoutePath,
		ExecutionPath:  toWireSteps(result.ExecutionPath),
		Fee:            result.TotalFee.StringFixed(0),
		PriceImpactBps: result.PriceImpactBps,
	})
}

func noRouteResponse(errMsg string) QuoteResponse {
	return QuoteResponse{
		Success:        false,
		AmountOut:      "0",
		RoutePath:      []string{},
		ExecutionPath:  []ExecutionStep{},
		Fee:            "0",
		PriceImpactBps: 0,
		Error:          errMsg,
	}
}

func toWireSteps(steps []quotetypes.ExecutionStep) []ExecutionStep {
	out := make([]ExecutionStep, 0, len(steps))
	for _, step := range steps {
		wire := ExecutionStep{
			PoolTrait:    step.PoolTrait,
			XTokenTrait:  step.XTokenTrait,
			YTokenTrait:  step.YTokenTrait,
			BinID:        step.BinID,
			FunctionName: step.FunctionName,
		}
		if step.XAmount != nil {
			v := step.XAmount.StringFixed(0)
			wire.XAmount = &v
		}
		if step.YAmount != nil {
			v := step.YAmount.StringFixed(0)
			wire.YAmount = &v
		}
		out = append(out, wire)
	}
	return out
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	err := s.store.Ping(r.Context())
	status := "healthy"
	if err != nil {
		status = "unhealthy"
	}
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:         status,
		StoreConnected: err == nil,
		Version:        "1.0.0",
	})
}

func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	symbols := traits.SupportedTokens()
	tokens := make([]TokenInfo, 0, len(symbols))
	for _, symbol := range symbols {
		tokens = append(tokens, TokenInfo{
			Symbol:    symbol,
			Trait:     traits.TokenTrait(symbol),
			Supported: true,
		})
	}
	writeJSON(w, http.StatusOK, TokensResponse{Tokens: tokens})
}

func (s *Server) handlePools(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ids, err := s.store.ListPoolIDs(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store failure listing pools")
		return
	}
	poolMap, err := s.store.BatchGetPools(ctx, ids)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store failure loading pools")
		return
	}
	pools := make([]PoolInfo, 0, len(ids))
	for _, id := range ids {
		pool, ok := poolMap[id]
		if !ok {
			continue
		}
		pools = append(pools, PoolInfo{
			PoolID:       pool.PoolID,
			Token0:       pool.Token0,
			Token1:       pool.Token1,
			BinStep:      pool.BinStep.String(),
			ActiveBin:    pool.ActiveBin,
			Active:       pool.Active,
			XProtocolFee: pool.XProtocolFee,
			XProviderFee: pool.XProviderFee,
			XVariableFee: pool.XVariableFee,
			YProtocolFee: pool.YProtocolFee,
			YProviderFee: pool.YProviderFee,
			YVariableFee: pool.YVariableFee,
		})
	}
	writeJSON(w, http.StatusOK, PoolsResponse{Pools: pools})
}
