package handler

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/alphanest/arbscan/internal/domain"
	"github.com/alphanest/arbscan/internal/engine"
)

// Detector is the slice of the engine the arbitrage handler requires.
type Detector interface {
	FindOpportunities(ctx context.Context) []domain.Opportunity
	Statistics() domain.Statistics
}

// HistoryStore serves the persisted-opportunity endpoint. Optional; when nil
// the history endpoint returns 501.
type HistoryStore interface {
	ListRecent(ctx context.Context, limit int) ([]domain.Opportunity, error)
}

// ArbitrageHandler serves the arbitrage HTTP endpoints.
type ArbitrageHandler struct {
	detector Detector
	history  HistoryStore
	logger   *slog.Logger
}

// NewArbitrageHandler creates an ArbitrageHandler with the given detector.
func NewArbitrageHandler(detector Detector, logger *slog.Logger) *ArbitrageHandler {
	return &ArbitrageHandler{detector: detector, logger: logger}
}

// WithHistoryStore sets the store backing the history endpoint.
func (h *ArbitrageHandler) WithHistoryStore(store HistoryStore) *ArbitrageHandler {
	h.history = store
	return h
}

// opportunityView is the wire shape of one opportunity, with percentage and
// dollar fields rounded to two decimals at the boundary. Prices keep full
// precision; sub-cent assets would lose meaning otherwise.
type opportunityView struct {
	Symbol             string    `json:"symbol"`
	BuyExchange        string    `json:"buy_exchange"`
	SellExchange       string    `json:"sell_exchange"`
	BuyPrice           float64   `json:"buy_price"`
	SellPrice          float64   `json:"sell_price"`
	SpreadPct          float64   `json:"spread_pct"`
	NetProfitPct       float64   `json:"net_profit_pct"`
	EstimatedProfitUSD float64   `json:"estimated_profit_usd"`
	Volume24h          float64   `json:"volume_24h"`
	Timestamp          time.Time `json:"timestamp"`
}

// listResponse wraps an opportunity list with its count.
type listResponse struct {
	Opportunities []opportunityView `json:"opportunities"`
	Count         int               `json:"count"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func present(opps []domain.Opportunity) []opportunityView {
	views := make([]opportunityView, 0, len(opps))
	for _, opp := range opps {
		views = append(views, opportunityView{
			Symbol:             opp.Symbol,
			BuyExchange:        opp.BuyExchange,
			SellExchange:       opp.SellExchange,
			BuyPrice:           opp.BuyPrice,
			SellPrice:          opp.SellPrice,
			SpreadPct:          round2(opp.SpreadPct),
			NetProfitPct:       round2(opp.NetProfitPct),
			EstimatedProfitUSD: round2(opp.EstimatedProfitUSD),
			Volume24h:          opp.Volume24h,
			Timestamp:          opp.Timestamp,
		})
	}
	return views
}

// ListOpportunities runs a detection pass and returns the ranked results.
// GET /api/arbitrage/opportunities
func (h *ArbitrageHandler) ListOpportunities(w http.ResponseWriter, r *http.Request) {
	opps := h.detector.FindOpportunities(r.Context())
	views := present(opps)
	writeJSON(w, http.StatusOK, listResponse{Opportunities: views, Count: len(views)})
}

// Demo returns the fixed example dataset regardless of the engine's mode, so
// clients can integrate without exchange connectivity.
// GET /api/arbitrage/demo
func (h *ArbitrageHandler) Demo(w http.ResponseWriter, r *http.Request) {
	views := present(engine.DemoOpportunities(time.Now().UTC()))
	writeJSON(w, http.StatusOK, listResponse{Opportunities: views, Count: len(views)})
}

// Statistics returns the engine's monitoring footprint.
// GET /api/arbitrage/statistics
func (h *ArbitrageHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.detector.Statistics())
}

// History returns persisted opportunities, newest first.
// GET /api/arbitrage/history?limit=50
func (h *ArbitrageHandler) History(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeError(w, http.StatusNotImplemented, "opportunity persistence not configured")
		return
	}

	limit := queryLimit(r, 50, 200)
	opps, err := h.history.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list history failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list opportunity history")
		return
	}

	views := present(opps)
	writeJSON(w, http.StatusOK, listResponse{Opportunities: views, Count: len(views)})
}
