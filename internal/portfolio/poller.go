package portfolio

import (
	"context"
	"sync"

	"SignalBoard/internal/model"

	"github.com/sirupsen/logrus"
)

// Fetcher supplies the combined positions+account payload.
type Fetcher interface {
	FetchPortfolio(ctx context.Context) (model.PortfolioSnapshot, error)
}

// Poller holds the latest portfolio snapshot and refreshes it on demand.
// The recurring schedule lives in internal/scheduler; the Poller itself only
// knows how to take one snapshot.
type Poller struct {
	mu      sync.Mutex
	fetcher Fetcher
	log     *logrus.Logger
	snap    model.PortfolioSnapshot
	loading bool
}

// NewPoller creates a Poller with a zero snapshot (no positions, all account
// totals 0).
func NewPoller(fetcher Fetcher, log *logrus.Logger) *Poller {
	return &Poller{
		fetcher: fetcher,
		log:     log,
		snap:    model.PortfolioSnapshot{Positions: []model.Position{}},
	}
}

// Refresh fetches the portfolio and replaces positions and account totals
// together from the one response. On error the prior snapshot is retained
// and the failure is logged, never surfaced as a user notification. The
// loading flag is true strictly for the duration of the call; it gates UI
// feedback only and does not block further calls.
func (p *Poller) Refresh(ctx context.Context) error {
	p.setLoading(true)
	defer p.setLoading(false)

	snap, err := p.fetcher.FetchPortfolio(ctx)
	if err != nil {
		p.log.WithError(err).Error("portfolio refresh failed")
		return err
	}

	p.mu.Lock()
	p.snap = snap
	p.mu.Unlock()

	p.log.WithFields(logrus.Fields{
		"positions": len(snap.Positions),
		"equity":    snap.Account.Equity,
	}).Debug("portfolio snapshot replaced")
	return nil
}

// Snapshot returns a copy of the latest snapshot.
func (p *Poller) Snapshot() model.PortfolioSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.snap
	out.Positions = make([]model.Position, len(p.snap.Positions))
	copy(out.Positions, p.snap.Positions)
	return out
}

// Loading reports whether a refresh is currently in flight.
func (p *Poller) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

func (p *Poller) setLoading(v bool) {
	p.mu.Lock()
	p.loading = v
	p.mu.Unlock()
}
