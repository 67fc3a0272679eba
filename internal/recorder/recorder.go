package recorder

// OrderOutcome classifies how a submission resolved.
type OrderOutcome string

const (
	OutcomeFilled   OrderOutcome = "FILLED"
	OutcomeRejected OrderOutcome = "REJECTED"
)

// OrderEvent is one resolved trade submission. Signal history is
// deliberately not journaled; it lives only for the session.
type OrderEvent struct {
	Side    string
	Ticker  string
	Amount  float64
	Outcome OrderOutcome
	Detail  string
}

// Recorder persists the trade journal.
type Recorder interface {
	RecordOrder(evt *OrderEvent) error
	Close() error
}

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordOrder(_ *OrderEvent) error { return nil }
func (n *NoopRecorder) Close() error                    { return nil }
