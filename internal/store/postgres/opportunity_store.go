package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alphanest/arbscan/internal/domain"
)

// OpportunityStore implements domain.OpportunityStore using PostgreSQL.
type OpportunityStore struct {
	pool *pgxpool.Pool
}

// NewOpportunityStore creates a store backed by the given connection pool.
func NewOpportunityStore(pool *pgxpool.Pool) *OpportunityStore {
	return &OpportunityStore{pool: pool}
}

// InsertCycle stores every opportunity of one cycle in a single batch. A
// cycle with no opportunities is a no-op.
func (s *OpportunityStore) InsertCycle(ctx context.Context, res domain.CycleResult) error {
	if len(res.Opportunities) == 0 {
		return nil
	}

	const query = `
		INSERT INTO opportunities (
			cycle_id, symbol, buy_exchange, sell_exchange,
			buy_price, sell_price, spread_pct, net_profit_pct,
			estimated_profit_usd, volume_24h, detected_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	batch := &pgx.Batch{}
	for _, opp := range res.Opportunities {
		batch.Queue(query,
			res.ID, opp.Symbol, opp.BuyExchange, opp.SellExchange,
			opp.BuyPrice, opp.SellPrice, opp.SpreadPct, opp.NetProfitPct,
			opp.EstimatedProfitUSD, opp.Volume24h, opp.Timestamp,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range res.Opportunities {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("postgres: insert cycle %s: %w", res.ID, err)
		}
	}
	return nil
}

// ListRecent returns the most recently detected opportunities, newest first.
func (s *OpportunityStore) ListRecent(ctx context.Context, limit int) ([]domain.Opportunity, error) {
	query := `
		SELECT symbol, buy_exchange, sell_exchange,
		       buy_price, sell_price, spread_pct, net_profit_pct,
		       estimated_profit_usd, volume_24h, detected_at
		FROM opportunities
		ORDER BY detected_at DESC, net_profit_pct DESC`
	args := []any{}

	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent opportunities: %w", err)
	}
	defer rows.Close()

	var opps []domain.Opportunity
	for rows.Next() {
		var opp domain.Opportunity
		if err := rows.Scan(
			&opp.Symbol, &opp.BuyExchange, &opp.SellExchange,
			&opp.BuyPrice, &opp.SellPrice, &opp.SpreadPct, &opp.NetProfitPct,
			&opp.EstimatedProfitUSD, &opp.Volume24h, &opp.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan opportunity: %w", err)
		}
		opps = append(opps, opp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list recent opportunities rows: %w", err)
	}
	return opps, nil
}

// Compile-time interface check.
var _ domain.OpportunityStore = (*OpportunityStore)(nil)
