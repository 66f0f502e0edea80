package tools

import (
	"context"
	"encoding/json"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/alphanest/arbscan/internal/domain"
)

type stubDetector struct {
	opps  []domain.Opportunity
	stats domain.Statistics
}

func (s *stubDetector) FindOpportunities(context.Context) []domain.Opportunity { return s.opps }
func (s *stubDetector) Statistics() domain.Statistics                          { return s.stats }

func call(name, args string) openai.ToolCall {
	return openai.ToolCall{
		Type:     openai.ToolTypeFunction,
		Function: openai.FunctionCall{Name: name, Arguments: args},
	}
}

func dispatch(t *testing.T, d *Dispatcher, name, args string) findResult {
	t.Helper()
	out, err := d.Dispatch(context.Background(), call(name, args))
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	var res findResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	return res
}

func TestFindOpportunitiesNoFilters(t *testing.T) {
	d := NewDispatcher(&stubDetector{opps: []domain.Opportunity{
		{Symbol: "BTC/USDT", NetProfitPct: 0.8},
		{Symbol: "ETH/USDT", NetProfitPct: 0.6},
	}})

	res := dispatch(t, d, FindOpportunitiesTool, "")
	if res.Count != 2 {
		t.Fatalf("count = %d, want 2", res.Count)
	}
}

func TestFindOpportunitiesSymbolFilter(t *testing.T) {
	d := NewDispatcher(&stubDetector{opps: []domain.Opportunity{
		{Symbol: "BTC/USDT", NetProfitPct: 0.8},
		{Symbol: "ETH/USDT", NetProfitPct: 0.6},
	}})

	res := dispatch(t, d, FindOpportunitiesTool, `{"symbol": "eth/usdt"}`)
	if res.Count != 1 || res.Opportunities[0].Symbol != "ETH/USDT" {
		t.Fatalf("result = %+v", res)
	}
}

func TestFindOpportunitiesProfitFilter(t *testing.T) {
	d := NewDispatcher(&stubDetector{opps: []domain.Opportunity{
		{Symbol: "BTC/USDT", NetProfitPct: 0.8},
		{Symbol: "ETH/USDT", NetProfitPct: 0.6},
	}})

	res := dispatch(t, d, FindOpportunitiesTool, `{"min_profit_pct": 0.7}`)
	if res.Count != 1 || res.Opportunities[0].Symbol != "BTC/USDT" {
		t.Fatalf("result = %+v", res)
	}
}

func TestFindOpportunitiesBadArguments(t *testing.T) {
	d := NewDispatcher(&stubDetector{})
	if _, err := d.Dispatch(context.Background(), call(FindOpportunitiesTool, `{not json`)); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestGetStatistics(t *testing.T) {
	d := NewDispatcher(&stubDetector{stats: domain.Statistics{
		ExchangesMonitored: 5,
		SymbolsWatched:     5,
		MinSpreadThreshold: 0.5,
	}})

	out, err := d.Dispatch(context.Background(), call(GetStatisticsTool, ""))
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	var stats domain.Statistics
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.ExchangesMonitored != 5 || stats.MinSpreadThreshold != 0.5 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestUnknownTool(t *testing.T) {
	d := NewDispatcher(&stubDetector{})
	if _, err := d.Dispatch(context.Background(), call("no_such_tool", "")); err == nil {
		t.Fatal("expected error for unknown tool")
	}
}

func TestDefinitionsCoverDispatcher(t *testing.T) {
	names := map[string]bool{}
	for _, tool := range Definitions() {
		names[tool.Function.Name] = true
	}
	if !names[FindOpportunitiesTool] || !names[GetStatisticsTool] {
		t.Fatalf("definitions missing tools: %v", names)
	}
}
