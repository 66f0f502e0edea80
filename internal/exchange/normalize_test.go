package exchange

import "testing"

func TestBinanceNormalizeSymbol(t *testing.T) {
	b := NewBinance(Config{})
	cases := []struct{ in, want string }{
		{"BTCUSDT", "BTC/USDT"},
		{"ETHUSDC", "ETH/USDC"},
		{"BNBBUSD", "BNB/BUSD"},
		{"ETHBTC", "ETH/BTC"},
		{"SOMETHINGELSE", "SOMETHINGELSE"}, // normalization miss: returned unchanged
	}
	for _, tc := range cases {
		if got := b.NormalizeSymbol(tc.in); got != tc.want {
			t.Errorf("NormalizeSymbol(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestBinanceNormalizeSymbolBareQuote(t *testing.T) {
	b := NewBinance(Config{})
	// A bare quote currency must not split into an empty base.
	if got := b.NormalizeSymbol("USDT"); got != "USDT" {
		t.Errorf("NormalizeSymbol(USDT) = %q, want unchanged", got)
	}
}

func TestCoinbaseNormalizeSymbol(t *testing.T) {
	c := NewCoinbase(Config{})
	cases := []struct{ in, want string }{
		{"BTC-USD", "BTC/USD"},
		{"ETH-USDC", "ETH/USDC"},
		{"BTCUSD", "BTCUSD"},
	}
	for _, tc := range cases {
		if got := c.NormalizeSymbol(tc.in); got != tc.want {
			t.Errorf("NormalizeSymbol(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestKucoinNormalizeSymbol(t *testing.T) {
	k := NewKucoin(Config{})
	cases := []struct{ in, want string }{
		{"BTC-USDT", "BTC/USDT"},
		{"ETHUSDT", "ETH/USDT"},
		{"XYZ", "XYZ"},
	}
	for _, tc := range cases {
		if got := k.NormalizeSymbol(tc.in); got != tc.want {
			t.Errorf("NormalizeSymbol(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestKrakenNormalizeSymbol(t *testing.T) {
	k := NewKraken(Config{})
	cases := []struct{ in, want string }{
		{"XXBTZUSD", "BTC/USD"},
		{"XETHZUSD", "ETH/USD"},
		{"XXBTZUSDT", "BTC/USDT"},
		{"SOLEUR", "SOL/EUR"},
		{"WEIRDPAIR", "WEIRDPAIR"},
	}
	for _, tc := range cases {
		if got := k.NormalizeSymbol(tc.in); got != tc.want {
			t.Errorf("NormalizeSymbol(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestBybitNormalizeSymbol(t *testing.T) {
	b := NewBybit(Config{})
	cases := []struct{ in, want string }{
		{"BTCUSDT", "BTC/USDT"},
		{"SOLUSDC", "SOL/USDC"},
		{"ETHUSD", "ETH/USD"},
	}
	for _, tc := range cases {
		if got := b.NormalizeSymbol(tc.in); got != tc.want {
			t.Errorf("NormalizeSymbol(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFeeSchedules(t *testing.T) {
	cases := []struct {
		conn         Connector
		maker, taker float64
	}{
		{NewBinance(Config{}), 0.001, 0.001},
		{NewCoinbase(Config{}), 0.004, 0.006},
		{NewKucoin(Config{}), 0.001, 0.001},
		{NewKraken(Config{}), 0.0016, 0.0026},
		{NewBybit(Config{}), 0.001, 0.001},
	}
	for _, tc := range cases {
		fees := tc.conn.Fees()
		if fees.Maker != tc.maker || fees.Taker != tc.taker {
			t.Errorf("%s fees = {%v %v}, want {%v %v}",
				tc.conn.Name(), fees.Maker, fees.Taker, tc.maker, tc.taker)
		}
	}
}

func TestAllOrderIsStable(t *testing.T) {
	conns := All(nil)
	want := []string{"Binance", "Coinbase", "KuCoin", "Kraken", "Bybit"}
	if len(conns) != len(want) {
		t.Fatalf("All() returned %d connectors, want %d", len(conns), len(want))
	}
	for i, name := range want {
		if conns[i].Name() != name {
			t.Errorf("All()[%d] = %s, want %s", i, conns[i].Name(), name)
		}
	}
}
