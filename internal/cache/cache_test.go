package cache

import (
	"context"
	"testing"
	"time"
)

func TestViewKey(t *testing.T) {
	tests := []struct {
		limit    int
		sortBy   string
		filterBy string
		cursor   string
		want     string
	}{
		{10, "volume24h", "", "0", "view:10:volume24h::0"},
		{10, "volume24h", "", "10", "view:10:volume24h::10"},
		{25, "price", "sol", "0", "view:25:price:sol:0"},
	}

	for _, tt := range tests {
		if got := ViewKey(tt.limit, tt.sortBy, tt.filterBy, tt.cursor); got != tt.want {
			t.Errorf("ViewKey(%d, %q, %q, %q) = %q, want %q",
				tt.limit, tt.sortBy, tt.filterBy, tt.cursor, got, tt.want)
		}
	}

	// Distinct cursors must never share a cache slot.
	if ViewKey(10, "price", "", "0") == ViewKey(10, "price", "", "10") {
		t.Error("view keys for different cursors collided")
	}
}

func TestTickerKey(t *testing.T) {
	if got := TickerKey("SOL"); got != "ticker:SOL" {
		t.Errorf("TickerKey(SOL) = %q, want ticker:SOL", got)
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	type payload struct {
		Value int `json:"value"`
	}

	if err := store.SetJSON(ctx, "k", payload{Value: 7}, DefaultTTL); err != nil {
		t.Fatalf("SetJSON failed: %v", err)
	}

	var got payload
	ok, err := store.GetJSON(ctx, "k", &got)
	if err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if !ok || got.Value != 7 {
		t.Errorf("GetJSON = (%v, %+v), want (true, {7})", ok, got)
	}

	var missing payload
	ok, err = store.GetJSON(ctx, "absent", &missing)
	if err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if ok {
		t.Error("absent key reported present")
	}
}

func TestMemoryStoreTTLExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	base := time.Now()
	store.now = func() time.Time { return base }

	if err := store.SetJSON(ctx, "k", 1, time.Minute); err != nil {
		t.Fatalf("SetJSON failed: %v", err)
	}

	store.now = func() time.Time { return base.Add(2 * time.Minute) }

	var v int
	ok, err := store.GetJSON(ctx, "k", &v)
	if err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if ok {
		t.Error("expired key reported present")
	}
}

func TestMemoryStorePubSub(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	sub := store.Subscribe(ctx, BroadcastChannel)
	defer sub.Close()

	if err := store.Publish(ctx, BroadcastChannel, map[string]string{"symbol": "SOL"}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case msg := <-sub.Messages():
		if string(msg) != `{"symbol":"SOL"}` {
			t.Errorf("payload = %s", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for pub/sub delivery")
	}

	// Publishing writes nothing to the key namespace.
	var v any
	ok, _ := store.GetJSON(ctx, BroadcastChannel, &v)
	if ok {
		t.Error("publish leaked into key namespace")
	}
}
