package models

import "time"

// ParsedDeal is the unified representation of one closed (or partially
// closed) trade extracted from a broker report. Each extractor populates as
// many of these fields as the source document carries; optional fields stay
// nil. Type is always normalized to "buy" or "sell" before a deal leaves an
// extractor.
type ParsedDeal struct {
	Source     string     `json:"source"`
	Symbol     string     `json:"symbol"`
	Type       string     `json:"type"`
	Quantity   float64    `json:"quantity"`
	EntryPrice float64    `json:"entry_price"`
	ExitPrice  *float64   `json:"exit_price,omitempty"`
	PnL        float64    `json:"pnl"`
	EntryTime  *time.Time `json:"entry_time,omitempty"`
	ExitTime   *time.Time `json:"exit_time,omitempty"`
	StopLoss   *float64   `json:"stop_loss,omitempty"`
	TakeProfit *float64   `json:"take_profit,omitempty"`
	Comment    *string    `json:"comment,omitempty"`
	// DealID is the opaque source-row identifier (ticket/position number),
	// kept only for display and debugging.
	DealID string `json:"deal_id,omitempty"`
}

// Directions a deal Type can hold after normalization.
const (
	DirectionBuy  = "buy"
	DirectionSell = "sell"
)
