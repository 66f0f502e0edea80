package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alphanest/arbscan/internal/domain"
)

// opportunityEvent is the event type used when alerting on detected
// opportunities. Operators can filter it out via the notifier's event list.
const opportunityEvent = "opportunity"

// AlertSink sends a notification when a detection cycle finds opportunities.
// It throttles itself to at most one alert per cooldown so a persistent
// spread does not page on every cycle.
type AlertSink struct {
	notifier *Notifier
	cooldown time.Duration
	lastSent time.Time
}

// NewAlertSink creates an AlertSink. cooldown <= 0 disables throttling.
func NewAlertSink(notifier *Notifier, cooldown time.Duration) *AlertSink {
	return &AlertSink{notifier: notifier, cooldown: cooldown}
}

// Name identifies the sink in poller logs.
func (s *AlertSink) Name() string { return "alert" }

// HandleCycle alerts on the cycle's opportunities, best first.
func (s *AlertSink) HandleCycle(ctx context.Context, res domain.CycleResult) error {
	if len(res.Opportunities) == 0 {
		return nil
	}
	if s.cooldown > 0 && time.Since(s.lastSent) < s.cooldown {
		return nil
	}

	var b strings.Builder
	for i, opp := range res.Opportunities {
		if i >= 3 {
			fmt.Fprintf(&b, "... and %d more\n", len(res.Opportunities)-i)
			break
		}
		fmt.Fprintf(&b, "%s: Buy %s @ $%.4f, Sell %s @ $%.4f, Net: %.2f%% (~$%.2f)\n",
			opp.Symbol, opp.BuyExchange, opp.BuyPrice,
			opp.SellExchange, opp.SellPrice, opp.NetProfitPct, opp.EstimatedProfitUSD)
	}

	title := fmt.Sprintf("%d arbitrage opportunities detected", len(res.Opportunities))
	if err := s.notifier.Notify(ctx, opportunityEvent, title, b.String()); err != nil {
		return err
	}
	s.lastSent = time.Now()
	return nil
}
