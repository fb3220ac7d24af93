package fetch

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/tokenpulse/tokenpulse/internal/model"
)

// Sources fetches raw token data from the configured upstream providers.
type Sources struct {
	client *Client

	dexScreenerURL string // e.g. https://api.dexscreener.com/latest/dex/tokens
	jupiterURL     string // e.g. https://price.jup.ag/v4/price
}

// NewSources creates a Sources facade over the retrying client.
func NewSources(client *Client, dexScreenerURL, jupiterURL string) *Sources {
	return &Sources{
		client:         client,
		dexScreenerURL: strings.TrimRight(dexScreenerURL, "/"),
		jupiterURL:     strings.TrimRight(jupiterURL, "/"),
	}
}

// dexScreenerResponse is the wire format of the pairs endpoint.
// Prices arrive as strings; volumes and changes as objects keyed by window.
type dexScreenerResponse struct {
	Pairs []struct {
		PairAddress string `json:"pairAddress"`
		DexID       string `json:"dexId"`
		PriceUSD    string `json:"priceUsd"`
		Volume      struct {
			H24 float64 `json:"h24"`
		} `json:"volume"`
		Liquidity struct {
			USD float64 `json:"usd"`
		} `json:"liquidity"`
		PriceChange struct {
			H1  float64 `json:"h1"`
			H24 float64 `json:"h24"`
		} `json:"priceChange"`
	} `json:"pairs"`
}

// jupiterResponse is the wire format of the price endpoint.
type jupiterResponse struct {
	Data map[string]struct {
		ID         string  `json:"id"`
		MintSymbol string  `json:"mintSymbol"`
		Price      float64 `json:"price"`
	} `json:"data"`
}

// DexScreenerPairs fetches all trading pools for a token mint.
func (s *Sources) DexScreenerPairs(ctx context.Context, mint string) ([]model.Pair, error) {
	var resp dexScreenerResponse
	if err := s.client.getJSON(ctx, s.dexScreenerURL+"/"+mint, nil, &resp); err != nil {
		return nil, fmt.Errorf("dexscreener pairs for %s: %w", mint, err)
	}

	pairs := make([]model.Pair, 0, len(resp.Pairs))
	for _, p := range resp.Pairs {
		price, err := strconv.ParseFloat(p.PriceUSD, 64)
		if err != nil {
			// Pools without a USD quote carry no usable price.
			continue
		}
		pairs = append(pairs, model.Pair{
			PoolAddress:    p.PairAddress,
			DexID:          p.DexID,
			PriceUSD:       price,
			Volume24h:      p.Volume.H24,
			Liquidity:      p.Liquidity.USD,
			PriceChange1h:  p.PriceChange.H1,
			PriceChange24h: p.PriceChange.H24,
		})
	}

	return pairs, nil
}

// JupiterPrices fetches oracle price entries for a token mint.
func (s *Sources) JupiterPrices(ctx context.Context, mint string) ([]model.PriceEntry, error) {
	query := url.Values{"ids": {mint}}

	var resp jupiterResponse
	if err := s.client.getJSON(ctx, s.jupiterURL, query, &resp); err != nil {
		return nil, fmt.Errorf("jupiter price for %s: %w", mint, err)
	}

	entries := make([]model.PriceEntry, 0, len(resp.Data))
	for _, d := range resp.Data {
		id := d.MintSymbol
		if id == "" {
			id = d.ID
		}
		entries = append(entries, model.PriceEntry{ID: id, Price: d.Price})
	}

	return entries, nil
}

// FetchSymbol fetches all sources for one symbol concurrently. A single
// failed source is logged and recorded as absent; the call errors only
// when every source failed.
func (s *Sources) FetchSymbol(ctx context.Context, sym model.Symbol) (model.RawSourceResult, error) {
	raw := model.RawSourceResult{Symbol: sym.Name}

	var dexErr, jupErr error

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		raw.DexScreener, dexErr = s.DexScreenerPairs(gctx, sym.Mint)
		return nil
	})
	g.Go(func() error {
		raw.JupiterPrice, jupErr = s.JupiterPrices(gctx, sym.Mint)
		return nil
	})
	_ = g.Wait()

	if dexErr != nil {
		s.client.logger.Warn("dexscreener source failed", "symbol", sym.Name, "error", dexErr)
		raw.DexScreener = nil
	}
	if jupErr != nil {
		s.client.logger.Warn("jupiter source failed", "symbol", sym.Name, "error", jupErr)
		raw.JupiterPrice = nil
	}

	if dexErr != nil && jupErr != nil {
		return raw, fmt.Errorf("all sources failed for %s: %w", sym.Name, dexErr)
	}

	return raw, nil
}
