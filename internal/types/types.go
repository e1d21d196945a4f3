package types

// Alert tracks one token for one chat. BasePrice and PairAddress are fixed at
// creation; only LastMultiple changes afterwards.
type Alert struct {
	AlertID      string  `json:"alert_id"`
	ChatID       int64   `json:"chat_id"`
	TokenAddress string  `json:"token_address"`
	TokenName    string  `json:"token_name"`
	PairAddress  string  `json:"pair_address"`
	BasePrice    float64 `json:"base_price"`
	MarketCap    float64 `json:"market_cap"`
	LastMultiple int     `json:"last_multiple"` // highest multiple already notified, starts at 1
}
