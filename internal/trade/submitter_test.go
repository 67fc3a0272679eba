package trade

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"SignalBoard/internal/api"
	"SignalBoard/internal/model"
	"SignalBoard/internal/recorder"

	"github.com/sirupsen/logrus"
)

// events records the order in which the submitter touches its collaborators.
type events struct {
	mu  sync.Mutex
	seq []string
}

func (e *events) add(s string) {
	e.mu.Lock()
	e.seq = append(e.seq, s)
	e.mu.Unlock()
}

func (e *events) list() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.seq))
	copy(out, e.seq)
	return out
}

type stubPlacer struct {
	ev      *events
	err     error
	calls   int
	lastReq model.TradeRequest
	side    model.OrderSide
	entered chan struct{}
	release chan struct{}
}

func (p *stubPlacer) SubmitOrder(_ context.Context, side model.OrderSide, req model.TradeRequest) error {
	p.calls++
	p.side = side
	p.lastReq = req
	if p.ev != nil {
		p.ev.add("order")
	}
	if p.entered != nil {
		close(p.entered)
	}
	if p.release != nil {
		<-p.release
	}
	return p.err
}

type stubRefresher struct {
	ev    *events
	calls int
}

func (r *stubRefresher) Refresh(_ context.Context) error {
	r.calls++
	if r.ev != nil {
		r.ev.add("refresh")
	}
	return nil
}

type stubNotifier struct {
	ev       *events
	messages []string
}

func (n *stubNotifier) Show(msg string, _ time.Duration) {
	n.messages = append(n.messages, msg)
	if n.ev != nil {
		n.ev.add("notify:" + msg)
	}
}

type stubJournal struct {
	events []recorder.OrderEvent
}

func (j *stubJournal) RecordOrder(evt *recorder.OrderEvent) error {
	j.events = append(j.events, *evt)
	return nil
}

func (j *stubJournal) Close() error { return nil }

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newHarness() (*Submitter, *stubPlacer, *stubRefresher, *stubNotifier, *stubJournal) {
	ev := &events{}
	placer := &stubPlacer{ev: ev}
	refresher := &stubRefresher{ev: ev}
	notifier := &stubNotifier{ev: ev}
	journal := &stubJournal{}
	s := NewSubmitter(placer, refresher, notifier, journal, quietLogger())
	return s, placer, refresher, notifier, journal
}

func TestSubmit_GuardRejectsInvalidAmount(t *testing.T) {
	tests := []struct {
		name       string
		ticker     string
		amount     string
		wantNotify bool
	}{
		{"negative amount", "AAPL", "-5", true},
		{"zero amount", "AAPL", "0", true},
		{"non-numeric amount", "AAPL", "abc", true},
		{"infinite amount", "AAPL", "Inf", true},
		{"blank amount", "AAPL", "", false},
		{"blank ticker", "", "50", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, placer, refresher, notifier, _ := newHarness()
			s.SetTicker(tt.ticker)
			s.SetAmount(tt.amount)

			if err := s.Submit(context.Background(), model.SideBuy); err != nil {
				t.Fatalf("guard failure should not return an error, got %v", err)
			}
			if placer.calls != 0 {
				t.Errorf("expected zero network calls, got %d", placer.calls)
			}
			if refresher.calls != 0 {
				t.Errorf("expected zero refreshes, got %d", refresher.calls)
			}
			if s.State() != StateIdle {
				t.Errorf("state: got %s, want idle", s.State())
			}
			if tt.wantNotify {
				if len(notifier.messages) != 1 || notifier.messages[0] != validationMessage {
					t.Errorf("expected validation notification, got %v", notifier.messages)
				}
			} else if len(notifier.messages) != 0 {
				t.Errorf("expected silent no-op, got %v", notifier.messages)
			}
		})
	}
}

func TestSubmit_SuccessClearsAndRefreshesBeforeNotifying(t *testing.T) {
	s, placer, refresher, _, journal := newHarness()
	s.SetTicker("aapl")
	s.SetAmount("50")

	if err := s.Submit(context.Background(), model.SideBuy); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if placer.side != model.SideBuy {
		t.Errorf("side: got %s", placer.side)
	}
	if placer.lastReq.Ticker != "AAPL" || placer.lastReq.Amount != 50 {
		t.Errorf("request: got %+v", placer.lastReq)
	}
	if refresher.calls != 1 {
		t.Errorf("refresh calls: got %d, want 1", refresher.calls)
	}
	if s.Ticker() != "" || s.Amount() != "" {
		t.Errorf("pending fields not cleared: %q / %q", s.Ticker(), s.Amount())
	}
	if s.State() != StateIdle {
		t.Errorf("state: got %s, want idle", s.State())
	}

	want := []string{"order", "refresh", "notify:Successfully bought $50 of AAPL"}
	got := placer.ev.list()
	if len(got) != len(want) {
		t.Fatalf("event sequence: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event sequence: got %v, want %v", got, want)
		}
	}

	if len(journal.events) != 1 || journal.events[0].Outcome != recorder.OutcomeFilled {
		t.Errorf("journal: got %+v", journal.events)
	}
}

func TestSubmit_FailurePreservesInput(t *testing.T) {
	s, placer, refresher, notifier, journal := newHarness()
	placer.err = &api.StatusError{Code: 400, Detail: "insufficient funds"}
	s.SetTicker("TSLA")
	s.SetAmount("250")

	if err := s.Submit(context.Background(), model.SideBuy); err == nil {
		t.Fatal("expected submit to return the transport error")
	}

	if s.Ticker() != "TSLA" || s.Amount() != "250" {
		t.Errorf("input not preserved: %q / %q", s.Ticker(), s.Amount())
	}
	if s.State() != StateIdle {
		t.Errorf("state: got %s, want idle", s.State())
	}
	if refresher.calls != 0 {
		t.Errorf("refresh should not run on failure, got %d calls", refresher.calls)
	}
	if len(notifier.messages) != 1 || notifier.messages[0] != "Trade failed: insufficient funds" {
		t.Errorf("failure notification: got %v", notifier.messages)
	}
	if len(journal.events) != 1 || journal.events[0].Outcome != recorder.OutcomeRejected {
		t.Errorf("journal: got %+v", journal.events)
	}
}

func TestSubmit_GenericMessageWithoutServerDetail(t *testing.T) {
	s, placer, _, notifier, _ := newHarness()
	placer.err = errors.New("dial tcp: connection refused")
	s.SetTicker("MSFT")
	s.SetAmount("10")

	s.Submit(context.Background(), model.SideSell)

	if len(notifier.messages) != 1 || notifier.messages[0] != "Trade failed: sell order failed" {
		t.Errorf("notification: got %v", notifier.messages)
	}
}

func TestSubmit_MutualExclusion(t *testing.T) {
	s, placer, _, _, _ := newHarness()
	placer.entered = make(chan struct{})
	placer.release = make(chan struct{})
	s.SetTicker("AAPL")
	s.SetAmount("50")

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Submit(context.Background(), model.SideBuy)
	}()
	<-placer.entered

	if s.State() != StateSubmitting {
		t.Errorf("state while in flight: got %s, want submitting", s.State())
	}
	// Second submit while in flight is a no-op.
	if err := s.Submit(context.Background(), model.SideBuy); err != nil {
		t.Fatalf("concurrent submit: %v", err)
	}
	// Field mutation while in flight is ignored.
	s.SetTicker("NVDA")
	s.SetAmount("999")

	close(placer.release)
	<-done

	if placer.calls != 1 {
		t.Errorf("transport calls: got %d, want 1", placer.calls)
	}
	if s.Ticker() != "" || s.Amount() != "" {
		t.Errorf("in-flight mutation leaked: %q / %q", s.Ticker(), s.Amount())
	}
}

func TestFormValid(t *testing.T) {
	tests := []struct {
		ticker string
		amount string
		want   bool
	}{
		{"AAPL", "50", true},
		{"AAPL", "0.01", true},
		{"  ", "50", false},
		{"AAPL", "", false},
		{"AAPL", "-1", false},
		{"AAPL", "0", false},
		{"AAPL", "ten", false},
	}
	for _, tt := range tests {
		s, _, _, _, _ := newHarness()
		s.SetTicker(tt.ticker)
		s.SetAmount(tt.amount)
		if got := s.FormValid(); got != tt.want {
			t.Errorf("FormValid(%q, %q): got %v, want %v", tt.ticker, tt.amount, got, tt.want)
		}
	}
}
