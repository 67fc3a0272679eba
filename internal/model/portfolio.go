package model

// Position is one held instrument with its current valuation. Symbol is
// unique within one snapshot.
type Position struct {
	Symbol          string  `json:"symbol"`
	Qty             float64 `json:"qty"`
	MarketValue     float64 `json:"market_value"`
	UnrealizedPL    float64 `json:"unrealized_pl"`
	UnrealizedPLPct float64 `json:"unrealized_plpc"`
	ChangeToday     float64 `json:"change_today"`
	ChangeTodayPct  float64 `json:"change_today_pc"`
	PricePerShare   float64 `json:"price_per_share"`
}

// AccountSnapshot holds portfolio-level totals. All fields are zero before
// the first successful poll.
type AccountSnapshot struct {
	Equity            float64 `json:"equity"`
	Cash              float64 `json:"cash"`
	BuyingPower       float64 `json:"buying_power"`
	TotalUnrealizedPL float64 `json:"total_unrealized_pl"`
}

// PortfolioSnapshot is one poll result: positions and account totals taken
// together from the same response, replaced atomically.
type PortfolioSnapshot struct {
	Positions []Position
	Account   AccountSnapshot
}
