// Package domain holds the core market data types shared across the
// scoring, classification, risk, and execution layers. Everything here
// is a plain value; no I/O, no logging.
package domain

import "math"

// PriceChange carries percentage moves over the standard timeframes.
type PriceChange struct {
	M5  float64 `json:"m5"`
	H1  float64 `json:"h1"`
	H24 float64 `json:"h24"`
}

// AssetSnapshot is one immutable observation of an asset, produced by
// the ingestion layer once per tick.
type AssetSnapshot struct {
	ID                string      `json:"id"`
	Symbol            string      `json:"symbol"`
	Name              string      `json:"name"`
	Price             float64     `json:"price"`
	MarketCap         float64     `json:"market_cap"`
	Volume24h         float64     `json:"volume_24h"`
	Liquidity         float64     `json:"liquidity"`
	PriceChange       PriceChange `json:"price_change"`
	VolatilityIndex   float64     `json:"volatility_index"`    // 0-100
	VolumeSpikeFactor float64     `json:"volume_spike_factor"` // current vs average volume
	Tags              []string    `json:"tags,omitempty"`
}

// Sanitize returns a copy with malformed numeric fields defaulted to
// neutral values so every downstream rule lands on a defined branch.
func (s AssetSnapshot) Sanitize() AssetSnapshot {
	s.Price = finiteOr(s.Price, 0)
	s.MarketCap = finiteOr(s.MarketCap, 0)
	s.Volume24h = finiteOr(s.Volume24h, 0)
	s.Liquidity = finiteOr(s.Liquidity, 0)
	s.PriceChange.M5 = finiteOr(s.PriceChange.M5, 0)
	s.PriceChange.H1 = finiteOr(s.PriceChange.H1, 0)
	s.PriceChange.H24 = finiteOr(s.PriceChange.H24, 0)
	s.VolatilityIndex = clamp(finiteOr(s.VolatilityIndex, 0), 0, 100)
	s.VolumeSpikeFactor = math.Max(finiteOr(s.VolumeSpikeFactor, 0), 0)
	return s
}

func finiteOr(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
