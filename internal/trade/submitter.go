package trade

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"SignalBoard/internal/api"
	"SignalBoard/internal/model"
	"SignalBoard/internal/recorder"

	"github.com/sirupsen/logrus"
)

// State is the submitter's lifecycle phase. Validating is transient: it is
// only observable while Submit evaluates its entry guard.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
)

const (
	validationMessage  = "Please enter a valid amount"
	validationDuration = 3 * time.Second
	tradeDuration      = 4 * time.Second
)

// OrderPlacer submits one order to the side-specific endpoint.
type OrderPlacer interface {
	SubmitOrder(ctx context.Context, side model.OrderSide, req model.TradeRequest) error
}

// Refresher re-fetches dependent portfolio state after a fill.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Notifier surfaces transient messages to the user.
type Notifier interface {
	Show(msg string, d time.Duration)
}

// Submitter validates a pending trade request, submits it, and drives the
// post-fill refresh and notifications. At most one order is in flight at a
// time; Submit while already Submitting is a no-op.
type Submitter struct {
	mu        sync.Mutex
	placer    OrderPlacer
	refresher Refresher
	notifier  Notifier
	journal   recorder.Recorder
	log       *logrus.Logger

	ticker string
	amount string
	state  State
}

// NewSubmitter creates an idle Submitter with empty pending fields.
func NewSubmitter(placer OrderPlacer, refresher Refresher, notifier Notifier, journal recorder.Recorder, log *logrus.Logger) *Submitter {
	return &Submitter{
		placer:    placer,
		refresher: refresher,
		notifier:  notifier,
		journal:   journal,
		log:       log,
		state:     StateIdle,
	}
}

// SetTicker updates the pending ticker. Ignored while an order is in flight.
func (s *Submitter) SetTicker(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateSubmitting {
		return
	}
	s.ticker = v
}

// SetAmount updates the pending amount. Ignored while an order is in flight.
func (s *Submitter) SetAmount(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateSubmitting {
		return
	}
	s.amount = v
}

// Ticker returns the pending ticker as entered.
func (s *Submitter) Ticker() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticker
}

// Amount returns the pending amount as entered.
func (s *Submitter) Amount() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.amount
}

// State returns the current lifecycle phase.
func (s *Submitter) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// FormValid reports whether the pending fields would pass the entry guard.
// It exists for the presentation layer to enable submission affordances;
// Submit re-checks regardless, so a stale value cannot bypass the guard.
func (s *Submitter) FormValid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(s.ticker) == "" {
		return false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s.amount), 64)
	return err == nil && v > 0 && !math.IsInf(v, 0)
}

// Submit validates the pending request and places it on the side-specific
// endpoint. Blank ticker, blank amount, or an order already in flight is a
// silent no-op; a non-empty amount that does not parse to a positive number
// surfaces a validation notification without any network call. On success
// the pending fields are cleared and the portfolio refresh is awaited before
// the success notification; on failure the fields are preserved for
// correction and the failure is surfaced with the server detail when
// present. Transport errors are returned for logging but are never fatal.
func (s *Submitter) Submit(ctx context.Context, side model.OrderSide) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return nil
	}
	s.state = StateValidating

	ticker := strings.TrimSpace(s.ticker)
	amount := strings.TrimSpace(s.amount)
	if ticker == "" || amount == "" {
		s.state = StateIdle
		s.mu.Unlock()
		return nil
	}
	parsed, err := strconv.ParseFloat(amount, 64)
	if err != nil || parsed <= 0 || math.IsInf(parsed, 0) {
		s.state = StateIdle
		s.mu.Unlock()
		s.notifier.Show(validationMessage, validationDuration)
		return nil
	}

	req := model.TradeRequest{Ticker: strings.ToUpper(ticker), Amount: parsed}
	s.state = StateSubmitting
	s.mu.Unlock()

	if err := s.placer.SubmitOrder(ctx, side, req); err != nil {
		s.resolveFailure(side, req, err)
		return err
	}
	s.resolveSuccess(ctx, side, req)
	return nil
}

// resolveSuccess clears the pending request, awaits the dependent portfolio
// refresh, then shows the success notification, in that order, so updated
// positions are visible before the message.
func (s *Submitter) resolveSuccess(ctx context.Context, side model.OrderSide, req model.TradeRequest) {
	s.mu.Lock()
	s.ticker = ""
	s.amount = ""
	s.mu.Unlock()

	s.record(side, req, recorder.OutcomeFilled, "")

	if err := s.refresher.Refresh(ctx); err != nil {
		s.log.WithError(err).Warn("post-trade portfolio refresh failed")
	}

	amt := strconv.FormatFloat(req.Amount, 'f', -1, 64)
	s.notifier.Show("Successfully "+side.Past()+" $"+amt+" of "+req.Ticker, tradeDuration)

	s.setState(StateIdle)
}

// resolveFailure preserves the user's input and surfaces the failure.
func (s *Submitter) resolveFailure(side model.OrderSide, req model.TradeRequest, err error) {
	detail := failureDetail(side, err)
	s.log.WithError(err).WithFields(logrus.Fields{
		"side":   side,
		"ticker": req.Ticker,
	}).Error("order submission failed")

	s.record(side, req, recorder.OutcomeRejected, detail)
	s.notifier.Show("Trade failed: "+detail, tradeDuration)
	s.setState(StateIdle)
}

// failureDetail prefers the server-provided detail message; anything else
// collapses to a generic per-side failure.
func failureDetail(side model.OrderSide, err error) string {
	var se *api.StatusError
	if errors.As(err, &se) && se.Detail != "" {
		return se.Detail
	}
	return string(side) + " order failed"
}

func (s *Submitter) record(side model.OrderSide, req model.TradeRequest, outcome recorder.OrderOutcome, detail string) {
	evt := &recorder.OrderEvent{
		Side:    string(side),
		Ticker:  req.Ticker,
		Amount:  req.Amount,
		Outcome: outcome,
		Detail:  detail,
	}
	if err := s.journal.RecordOrder(evt); err != nil {
		s.log.WithError(err).Error("record order")
	}
}

func (s *Submitter) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}
