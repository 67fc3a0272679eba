package model

// OrderSide selects the order endpoint.
type OrderSide string

const (
	SideBuy  OrderSide = "buy"
	SideSell OrderSide = "sell"
)

// Past returns the past-tense verb for notifications.
func (s OrderSide) Past() string {
	if s == SideSell {
		return "sold"
	}
	return "bought"
}

// TradeRequest is the user's pending order intent. Ticker is normalized to
// uppercase before submission; Amount is a notional USD amount.
type TradeRequest struct {
	Ticker string  `json:"ticker"`
	Amount float64 `json:"amount"`
}
