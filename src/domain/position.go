package domain

import "time"

// Position is a simulated holding. Created on entry, PnL-refreshed each
// tick, destroyed on exit.
type Position struct {
	AssetID       string    `json:"asset_id"`
	Symbol        string    `json:"symbol"`
	EntryPrice    float64   `json:"entry_price"`
	SizeUSD       float64   `json:"size_usd"`
	EntryTime     time.Time `json:"entry_time"`
	UnrealizedPnL float64   `json:"unrealized_pnl"`
}

// Portfolio is the set of open positions. Treated as a value: cycle
// code copies it and returns a new one rather than mutating in place.
type Portfolio []Position

// Holds reports whether a position for the given asset is open.
func (p Portfolio) Holds(assetID string) bool {
	for _, pos := range p {
		if pos.AssetID == assetID {
			return true
		}
	}
	return false
}

// Exposure returns the total committed size in USD.
func (p Portfolio) Exposure() float64 {
	total := 0.0
	for _, pos := range p {
		total += pos.SizeUSD
	}
	return total
}

// Clone returns an independent copy.
func (p Portfolio) Clone() Portfolio {
	out := make(Portfolio, len(p))
	copy(out, p)
	return out
}
