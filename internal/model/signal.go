package model

import "fmt"

// TickerRecommendation is one per-ticker action attached to a signal.
type TickerRecommendation struct {
	Ticker string `json:"ticker"`
	Action string `json:"recommended_action"`
}

// MarketSignal is one generated market insight. Signals are immutable once
// merged into history; the service may re-send a signal it already produced,
// so (ID, Timestamp) together identify a signal within a session.
type MarketSignal struct {
	ID              int64                  `json:"id"`
	Timestamp       string                 `json:"timestamp"`
	Summary         string                 `json:"summary"`
	Sentiment       string                 `json:"sentiment"`
	Recommendations []TickerRecommendation `json:"ticker_recommendations"`
}

// Key returns the identity key used for history deduplication. The timestamp
// is treated as an opaque string, never parsed.
func (s MarketSignal) Key() string {
	return fmt.Sprintf("%d-%s", s.ID, s.Timestamp)
}
