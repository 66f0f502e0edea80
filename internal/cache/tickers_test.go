package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/alphanest/arbscan/internal/domain"
)

func tick(symbol, exchange string, fetchedAt time.Time) domain.Ticker {
	return domain.Ticker{
		Symbol:    symbol,
		Exchange:  exchange,
		Bid:       100,
		Ask:       101,
		FetchedAt: fetchedAt,
	}
}

func TestTickerCachePutGet(t *testing.T) {
	c := NewTickerCache(10 * time.Second)
	now := time.Now()

	if _, ok := c.Get("BTC/USDT", "Binance"); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Put(tick("BTC/USDT", "Binance", now))
	got, ok := c.Get("BTC/USDT", "Binance")
	if !ok {
		t.Fatal("expected hit after Put")
	}
	if got.Exchange != "Binance" || got.Symbol != "BTC/USDT" {
		t.Errorf("wrong entry returned: %+v", got)
	}

	// Cells are independent per (symbol, exchange).
	if _, ok := c.Get("BTC/USDT", "Kraken"); ok {
		t.Error("different exchange must be a separate cell")
	}
}

func TestTickerCacheLastWriterWins(t *testing.T) {
	c := NewTickerCache(10 * time.Second)
	now := time.Now()

	first := tick("ETH/USDT", "Bybit", now)
	first.Bid = 1
	second := tick("ETH/USDT", "Bybit", now.Add(time.Second))
	second.Bid = 2

	c.Put(first)
	c.Put(second)

	got, _ := c.Get("ETH/USDT", "Bybit")
	if got.Bid != 2 {
		t.Errorf("Bid = %v, want last write (2)", got.Bid)
	}
}

func TestTickerCacheStaleness(t *testing.T) {
	c := NewTickerCache(10 * time.Second)
	now := time.Now()

	fresh := tick("BTC/USDT", "Binance", now.Add(-5*time.Second))
	stale := tick("BTC/USDT", "Kraken", now.Add(-11*time.Second))

	if c.IsStale(fresh, now) {
		t.Error("5s old ticker should be fresh with a 10s TTL")
	}
	if !c.IsStale(stale, now) {
		t.Error("11s old ticker should be stale with a 10s TTL")
	}
}

func TestTickerCachePurge(t *testing.T) {
	c := NewTickerCache(10 * time.Second)
	now := time.Now()

	c.Put(tick("BTC/USDT", "Binance", now))
	c.Put(tick("ETH/USDT", "Kraken", now.Add(-time.Minute)))

	if removed := c.Purge(now); removed != 1 {
		t.Errorf("Purge removed %d entries, want 1", removed)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d after purge, want 1", c.Len())
	}
	if _, ok := c.Get("BTC/USDT", "Binance"); !ok {
		t.Error("fresh entry must survive purge")
	}
}

func TestTickerCacheConcurrentAccess(t *testing.T) {
	c := NewTickerCache(time.Minute)
	now := time.Now()
	symbols := []string{"BTC/USDT", "ETH/USDT", "SOL/USDT"}
	exchanges := []string{"Binance", "Coinbase", "KuCoin", "Kraken", "Bybit"}

	var wg sync.WaitGroup
	for _, s := range symbols {
		for _, e := range exchanges {
			wg.Add(2)
			go func(s, e string) {
				defer wg.Done()
				c.Put(tick(s, e, now))
			}(s, e)
			go func(s, e string) {
				defer wg.Done()
				c.Get(s, e)
			}(s, e)
		}
	}
	wg.Wait()

	if c.Len() != len(symbols)*len(exchanges) {
		t.Errorf("Len = %d, want %d", c.Len(), len(symbols)*len(exchanges))
	}
}
