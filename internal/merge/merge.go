package merge

import (
	"fmt"
	"sort"

	"github.com/tokenpulse/tokenpulse/internal/model"
)

// MergeError reports raw input the engine cannot map to a record.
type MergeError struct {
	Symbol string
	Reason string
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("merge %s: %s", e.Symbol, e.Reason)
}

// Merge consolidates raw per-symbol results into the canonical catalog.
// Callers drop symbols where every source failed before calling; a
// sourceless symbol here is a contract violation and errors the batch.
func Merge(raws []model.RawSourceResult) ([]model.TokenRecord, error) {
	records := make([]model.TokenRecord, 0, len(raws))

	for _, raw := range raws {
		if !raw.HasData() {
			return nil, &MergeError{Symbol: raw.Symbol, Reason: "no source data"}
		}

		rec := model.TokenRecord{ID: raw.Symbol}

		if pool, ok := RepresentativePool(raw.DexScreener); ok {
			rec.Price = pool.PriceUSD
			rec.Volume24h = pool.Volume24h
			rec.PriceChange1h = pool.PriceChange1h
			rec.PriceChange24h = pool.PriceChange24h
		} else {
			// No pool data: the oracle price stands alone, volume and
			// change figures are unknown and stay zero.
			rec.Price = raw.JupiterPrice[0].Price
		}

		records = append(records, rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Volume24h != records[j].Volume24h {
			return records[i].Volume24h > records[j].Volume24h
		}
		return records[i].ID < records[j].ID
	})

	return records, nil
}

// RepresentativePool picks one pool to speak for a token: deduplicate by
// pool address (first occurrence wins), then take the highest 24h
// volume, ties broken by the lowest pool address. Returns false when no
// pools are present.
func RepresentativePool(pairs []model.Pair) (model.Pair, bool) {
	if len(pairs) == 0 {
		return model.Pair{}, false
	}

	seen := make(map[string]struct{}, len(pairs))
	var best model.Pair
	var found bool

	for _, p := range pairs {
		if _, dup := seen[p.PoolAddress]; dup {
			continue
		}
		seen[p.PoolAddress] = struct{}{}

		if !found {
			best = p
			found = true
			continue
		}
		if p.Volume24h > best.Volume24h ||
			(p.Volume24h == best.Volume24h && p.PoolAddress < best.PoolAddress) {
			best = p
		}
	}

	return best, found
}
