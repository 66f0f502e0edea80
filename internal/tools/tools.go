// Package tools exposes the detection engine to OpenAI-compatible chat
// models as function tools. Definitions() is handed to the chat completion
// request; Dispatch executes the tool calls the model returns.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/alphanest/arbscan/internal/domain"
)

// Tool names as advertised to the model.
const (
	FindOpportunitiesTool = "arbitrage_find_opportunities"
	GetStatisticsTool     = "arbitrage_get_statistics"
)

// Detector is the slice of the engine the tool layer requires.
type Detector interface {
	FindOpportunities(ctx context.Context) []domain.Opportunity
	Statistics() domain.Statistics
}

// Dispatcher executes tool calls against the engine.
type Dispatcher struct {
	detector Detector
}

// NewDispatcher creates a Dispatcher over the given detector.
func NewDispatcher(detector Detector) *Dispatcher {
	return &Dispatcher{detector: detector}
}

// Definitions returns the tool schemas to include in a chat completion
// request.
func Definitions() []openai.Tool {
	return []openai.Tool{
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        FindOpportunitiesTool,
				Description: "Scan all monitored exchanges for cross-exchange arbitrage opportunities, ranked by net profit after fees.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"symbol": {
							"type": "string",
							"description": "Restrict results to one trading pair, e.g. BTC/USDT."
						},
						"min_profit_pct": {
							"type": "number",
							"description": "Only return opportunities with at least this net profit percentage."
						}
					}
				}`),
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        GetStatisticsTool,
				Description: "Get the scanner's monitoring statistics: exchanges monitored, symbols watched, profit threshold, and whether demo mode is active.",
				Parameters:  json.RawMessage(`{"type": "object", "properties": {}}`),
			},
		},
	}
}

// findArgs are the arguments accepted by the find-opportunities tool. Both
// filters are applied after detection; the scan itself always covers the full
// watch list.
type findArgs struct {
	Symbol       string  `json:"symbol"`
	MinProfitPct float64 `json:"min_profit_pct"`
}

// findResult is the JSON payload returned to the model.
type findResult struct {
	Opportunities []domain.Opportunity `json:"opportunities"`
	Count         int                  `json:"count"`
}

// Dispatch executes one tool call and returns its result serialized as JSON
// for the tool-response message. Unknown tool names are an error; the caller
// decides whether to surface that to the model.
func (d *Dispatcher) Dispatch(ctx context.Context, call openai.ToolCall) (string, error) {
	switch call.Function.Name {
	case FindOpportunitiesTool:
		return d.findOpportunities(ctx, call.Function.Arguments)
	case GetStatisticsTool:
		return d.getStatistics()
	default:
		return "", fmt.Errorf("tools: unknown tool %q", call.Function.Name)
	}
}

func (d *Dispatcher) findOpportunities(ctx context.Context, rawArgs string) (string, error) {
	var args findArgs
	if strings.TrimSpace(rawArgs) != "" {
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return "", fmt.Errorf("tools: parse %s arguments: %w", FindOpportunitiesTool, err)
		}
	}

	opps := d.detector.FindOpportunities(ctx)
	filtered := make([]domain.Opportunity, 0, len(opps))
	for _, opp := range opps {
		if args.Symbol != "" && !strings.EqualFold(opp.Symbol, args.Symbol) {
			continue
		}
		if opp.NetProfitPct < args.MinProfitPct {
			continue
		}
		filtered = append(filtered, opp)
	}

	out, err := json.Marshal(findResult{Opportunities: filtered, Count: len(filtered)})
	if err != nil {
		return "", fmt.Errorf("tools: marshal %s result: %w", FindOpportunitiesTool, err)
	}
	return string(out), nil
}

func (d *Dispatcher) getStatistics() (string, error) {
	out, err := json.Marshal(d.detector.Statistics())
	if err != nil {
		return "", fmt.Errorf("tools: marshal %s result: %w", GetStatisticsTool, err)
	}
	return string(out), nil
}
