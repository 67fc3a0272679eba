package feed

import (
	"context"
	"sync"

	"SignalBoard/internal/model"

	"github.com/sirupsen/logrus"
)

// Fetcher supplies newly generated signals from the remote service.
type Fetcher interface {
	FetchSignals(ctx context.Context) ([]model.MarketSignal, error)
}

// Client maintains the session's signal history: an ordered, newest-first,
// deduplicated sequence of every signal fetched so far. History lives only
// in memory and is never reconciled across sessions.
type Client struct {
	mu      sync.Mutex
	fetcher Fetcher
	log     *logrus.Logger
	history []model.MarketSignal
}

// NewClient creates a Client with an empty history.
func NewClient(fetcher Fetcher, log *logrus.Logger) *Client {
	return &Client{fetcher: fetcher, log: log}
}

// Refresh fetches newly available signals and merges them into history.
// Fetched signals whose identity key is already present are dropped; the
// survivors keep their fetched order and are prepended as one unit ahead of
// existing entries. On fetch or decode error history is left unchanged and
// the error is returned for the caller to display. Returns the number of
// signals actually merged.
//
// Overlapping Refresh calls are serialized at the merge step; each batch is
// still merged whole, so merge-order semantics are unchanged.
func (c *Client) Refresh(ctx context.Context) (int, error) {
	batch, err := c.fetcher.FetchSignals(ctx)
	if err != nil {
		c.log.WithError(err).Warn("signal refresh failed")
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]struct{}, len(c.history))
	for _, s := range c.history {
		seen[s.Key()] = struct{}{}
	}

	fresh := make([]model.MarketSignal, 0, len(batch))
	for _, s := range batch {
		key := s.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		// A batch can repeat a key within itself; first occurrence wins.
		seen[key] = struct{}{}
		fresh = append(fresh, s)
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	merged := make([]model.MarketSignal, 0, len(fresh)+len(c.history))
	merged = append(merged, fresh...)
	merged = append(merged, c.history...)
	c.history = merged

	c.log.WithFields(logrus.Fields{
		"fetched": len(batch),
		"merged":  len(fresh),
		"total":   len(c.history),
	}).Info("signal history updated")
	return len(fresh), nil
}

// History returns a copy of the current history, newest first.
func (c *Client) History() []model.MarketSignal {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.MarketSignal, len(c.history))
	copy(out, c.history)
	return out
}
