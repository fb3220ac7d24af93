package model

import (
	"bytes"
	"encoding/json"
	"testing"
)

// TestModelTypes validates that model types round-trip through JSON with
// the field names the API and pub/sub channel rely on.
func TestModelTypes(t *testing.T) {
	t.Run("TokenRecord", func(t *testing.T) {
		rec := TokenRecord{
			ID:             "SOL",
			Price:          147.23,
			Volume24h:      1_250_000,
			PriceChange1h:  0.4,
			PriceChange24h: -2.1,
		}

		data, err := json.Marshal(rec)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}

		for _, field := range []string{`"id"`, `"price"`, `"volume24h"`, `"priceChange1h"`, `"priceChange24h"`} {
			if !jsonContains(data, field) {
				t.Errorf("marshaled TokenRecord missing field %s: %s", field, data)
			}
		}
	})

	t.Run("PriceUpdateEvent", func(t *testing.T) {
		ev := PriceUpdateEvent{
			Symbol:    "SOL",
			Price:     100.10,
			Volume24h: 5000,
			Timestamp: 1705321845000,
		}

		data, err := json.Marshal(ev)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}

		var decoded PriceUpdateEvent
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}
		if decoded != ev {
			t.Errorf("round-trip = %+v, want %+v", decoded, ev)
		}
	})

	t.Run("Pagination omits empty cursor", func(t *testing.T) {
		data, err := json.Marshal(Pagination{Limit: 10})
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		if jsonContains(data, `"nextCursor"`) {
			t.Errorf("empty nextCursor should be omitted: %s", data)
		}
	})
}

func TestRawSourceResultHasData(t *testing.T) {
	tests := []struct {
		name string
		raw  RawSourceResult
		want bool
	}{
		{"both sources", RawSourceResult{Symbol: "SOL", DexScreener: []Pair{{}}, JupiterPrice: []PriceEntry{{}}}, true},
		{"dex only", RawSourceResult{Symbol: "SOL", DexScreener: []Pair{{}}}, true},
		{"jupiter only", RawSourceResult{Symbol: "SOL", JupiterPrice: []PriceEntry{{}}}, true},
		{"neither", RawSourceResult{Symbol: "SOL"}, false},
		{"empty slices", RawSourceResult{Symbol: "SOL", DexScreener: []Pair{}, JupiterPrice: []PriceEntry{}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.raw.HasData(); got != tt.want {
				t.Errorf("HasData() = %v, want %v", got, tt.want)
			}
		})
	}
}

func jsonContains(data []byte, substr string) bool {
	return bytes.Contains(data, []byte(substr))
}
