package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"SignalBoard/internal/model"

	"github.com/go-resty/resty/v2"
)

// StatusError is a non-2xx response from the signal service. Detail carries
// the server-provided message when the body contained one.
type StatusError struct {
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("service returned status %d", e.Code)
}

// Client talks to the remote signal/brokerage service over its four
// endpoints. It performs exactly one attempt per call; retry is a user
// action, not a transport concern.
type Client struct {
	rc *resty.Client
}

// NewClient creates a Client for the given base URL with optional bearer
// auth and proxy support.
func NewClient(baseURL, apiKey, proxyURL string, timeout time.Duration) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		rc.SetAuthToken(apiKey)
	}
	if proxyURL != "" {
		rc.SetProxy(proxyURL)
	}
	return &Client{rc: rc}
}

// wireSignal tolerates both response shapes served by /signal: the array
// form carries ticker_recommendations, the legacy single-object form a flat
// action field instead.
type wireSignal struct {
	ID              int64                        `json:"id"`
	Timestamp       string                       `json:"timestamp"`
	Summary         string                       `json:"summary"`
	Sentiment       string                       `json:"sentiment"`
	Action          string                       `json:"action"`
	Recommendations []model.TickerRecommendation `json:"ticker_recommendations"`
}

func (w wireSignal) normalize() model.MarketSignal {
	recs := w.Recommendations
	if len(recs) == 0 && w.Action != "" {
		recs = []model.TickerRecommendation{{Action: w.Action}}
	}
	return model.MarketSignal{
		ID:              w.ID,
		Timestamp:       w.Timestamp,
		Summary:         w.Summary,
		Sentiment:       w.Sentiment,
		Recommendations: recs,
	}
}

// FetchSignals requests newly generated signals. The endpoint may return a
// single signal object or an array; both decode to the normalized form.
func (c *Client) FetchSignals(ctx context.Context) ([]model.MarketSignal, error) {
	resp, err := c.rc.R().SetContext(ctx).Get("/signal")
	if err != nil {
		return nil, fmt.Errorf("fetch signals: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, statusError(resp)
	}
	return decodeSignals(resp.Body())
}

func decodeSignals(body []byte) ([]model.MarketSignal, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var batch []wireSignal
		if err := json.Unmarshal(trimmed, &batch); err != nil {
			return nil, fmt.Errorf("decode signal batch: %w", err)
		}
		out := make([]model.MarketSignal, len(batch))
		for i, w := range batch {
			out[i] = w.normalize()
		}
		return out, nil
	}
	var single wireSignal
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return nil, fmt.Errorf("decode signal: %w", err)
	}
	return []model.MarketSignal{single.normalize()}, nil
}

// wirePortfolio matches /positions. Absent top-level fields decode to their
// zero values, which is exactly the defaulting the snapshot contract wants.
type wirePortfolio struct {
	Positions         []model.Position `json:"positions"`
	Equity            float64          `json:"equity"`
	Cash              float64          `json:"cash"`
	BuyingPower       float64          `json:"buying_power"`
	TotalUnrealizedPL float64          `json:"total_unrealized_pl"`
}

// FetchPortfolio requests the combined positions+account payload.
func (c *Client) FetchPortfolio(ctx context.Context) (model.PortfolioSnapshot, error) {
	var wire wirePortfolio
	resp, err := c.rc.R().SetContext(ctx).SetResult(&wire).Get("/positions")
	if err != nil {
		return model.PortfolioSnapshot{}, fmt.Errorf("fetch portfolio: %w", err)
	}
	if !resp.IsSuccess() {
		return model.PortfolioSnapshot{}, statusError(resp)
	}
	snap := model.PortfolioSnapshot{
		Positions: wire.Positions,
		Account: model.AccountSnapshot{
			Equity:            wire.Equity,
			Cash:              wire.Cash,
			BuyingPower:       wire.BuyingPower,
			TotalUnrealizedPL: wire.TotalUnrealizedPL,
		},
	}
	if snap.Positions == nil {
		snap.Positions = []model.Position{}
	}
	return snap, nil
}

// SubmitOrder posts a trade to the side-specific endpoint. The confirmation
// body is not consumed beyond success/failure.
func (c *Client) SubmitOrder(ctx context.Context, side model.OrderSide, req model.TradeRequest) error {
	endpoint := "/place-order"
	if side == model.SideSell {
		endpoint = "/sell-order"
	}
	resp, err := c.rc.R().SetContext(ctx).SetBody(req).Post(endpoint)
	if err != nil {
		return fmt.Errorf("submit %s order: %w", side, err)
	}
	if !resp.IsSuccess() {
		return statusError(resp)
	}
	return nil
}

func statusError(resp *resty.Response) error {
	var body struct {
		Detail string `json:"detail"`
	}
	_ = json.Unmarshal(resp.Body(), &body)
	return &StatusError{Code: resp.StatusCode(), Detail: body.Detail}
}
