package ingest

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/MohammedBenaboud/Alphaseeker/src/domain"
)

// syntheticAsset is one tracked token in the generator roster.
type syntheticAsset struct {
	id      string
	symbol  string
	name    string
	price   float64
	mcap    float64
	profile string
}

// SyntheticSource fabricates plausible market batches without any
// network dependency. Prices drift between calls so consecutive scans
// see evolving momentum. Used for demos and offline runs.
type SyntheticSource struct {
	rng    *rand.Rand
	assets []syntheticAsset
}

// NewSyntheticSource seeds a generator with a fixed roster covering
// every market profile the classifier distinguishes.
func NewSyntheticSource(rng *rand.Rand) *SyntheticSource {
	return &SyntheticSource{
		rng: rng,
		assets: []syntheticAsset{
			{id: "syn-nova", symbol: "NOVA", name: "Nova Protocol", price: 2.45, mcap: 18_000_000, profile: "momentum"},
			{id: "syn-qnt", symbol: "QNTM", name: "Quantum Yield", price: 0.084, mcap: 4_200_000, profile: "accumulation"},
			{id: "syn-drft", symbol: "DRFT", name: "Driftwood", price: 0.0031, mcap: 900_000, profile: "dormant"},
			{id: "syn-vlt", symbol: "VOLT", name: "Volt Surge", price: 1.12, mcap: 7_500_000, profile: "unstable"},
			{id: "syn-apex", symbol: "APEX", name: "Apex Index", price: 14.8, mcap: 65_000_000, profile: "overextended"},
			{id: "syn-mist", symbol: "MIST", name: "Mistral Labs", price: 0.42, mcap: 2_800_000, profile: "thin"},
			{id: "syn-hlx", symbol: "HELIX", name: "Helix Finance", price: 3.7, mcap: 22_000_000, profile: "momentum"},
			{id: "syn-pbl", symbol: "PEBL", name: "Pebble Cash", price: 0.019, mcap: 1_400_000, profile: "dormant"},
		},
	}
}

// Fetch implements Source. The query is ignored; the roster is fixed.
func (s *SyntheticSource) Fetch(_ context.Context, _ string) ([]domain.AssetSnapshot, error) {
	snaps := make([]domain.AssetSnapshot, 0, len(s.assets))
	for i := range s.assets {
		snaps = append(snaps, s.generate(&s.assets[i]))
	}
	return snaps, nil
}

func (s *SyntheticSource) generate(a *syntheticAsset) domain.AssetSnapshot {
	jitter := func(center, spread float64) float64 {
		return center + (s.rng.Float64()*2-1)*spread
	}

	var m5, h1, h24, volRatio, liqRatio, volatility, spike float64
	switch a.profile {
	case "momentum":
		m5, h1, h24 = jitter(3, 2), jitter(8, 4), jitter(15, 10)
		volRatio, liqRatio = jitter(0.6, 0.2), jitter(0.08, 0.02)
		volatility, spike = jitter(60, 10), jitter(2.8, 0.8)
	case "accumulation":
		m5, h1, h24 = jitter(0.5, 0.5), jitter(1, 1), jitter(2, 2)
		volRatio, liqRatio = jitter(0.5, 0.15), jitter(0.1, 0.03)
		volatility, spike = jitter(35, 8), jitter(2.4, 0.4)
	case "unstable":
		m5, h1, h24 = jitter(0, 12), jitter(0, 20), jitter(0, 35)
		volRatio, liqRatio = jitter(0.9, 0.3), jitter(0.05, 0.02)
		volatility, spike = jitter(92, 6), jitter(3.5, 1.5)
	case "overextended":
		m5, h1, h24 = jitter(2, 2), jitter(-4, 3), jitter(55, 15)
		volRatio, liqRatio = jitter(0.3, 0.1), jitter(0.06, 0.02)
		volatility, spike = jitter(72, 8), jitter(0.7, 0.3)
	case "thin":
		m5, h1, h24 = jitter(1, 3), jitter(2, 4), jitter(5, 8)
		volRatio, liqRatio = jitter(0.4, 0.2), jitter(0.004, 0.002)
		volatility, spike = jitter(55, 15), jitter(1.5, 0.5)
	default: // dormant
		m5, h1, h24 = jitter(0, 0.3), jitter(0, 0.6), jitter(0, 1.5)
		volRatio, liqRatio = jitter(0.05, 0.03), jitter(0.07, 0.02)
		volatility, spike = jitter(12, 6), jitter(0.9, 0.3)
	}

	// Drift the anchor price so repeated fetches look like a live tape.
	a.price *= 1 + h1/100*0.1

	snap := domain.AssetSnapshot{
		ID:                a.id,
		Symbol:            a.symbol,
		Name:              a.name,
		Price:             a.price,
		MarketCap:         a.mcap,
		Volume24h:         a.mcap * clampNonNeg(volRatio),
		Liquidity:         a.mcap * clampNonNeg(liqRatio),
		VolatilityIndex:   volatility,
		VolumeSpikeFactor: spike,
		PriceChange:       domain.PriceChange{M5: m5, H1: h1, H24: h24},
		Tags:              []string{"synthetic", a.profile},
	}
	return snap.Sanitize()
}

func clampNonNeg(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

var _ Source = (*SyntheticSource)(nil)
var _ Source = (*Client)(nil)

// String identifies the source in logs.
func (s *SyntheticSource) String() string {
	return fmt.Sprintf("synthetic(%d assets)", len(s.assets))
}
