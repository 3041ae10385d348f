// Package classify maps a scored asset snapshot onto a market state
// with a confidence grade and a deterministic, human-readable
// rationale. Classification is total: every snapshot lands on exactly
// one state, and the same inputs always produce the same output.
package classify

import (
	"math"
	"time"

	"github.com/MohammedBenaboud/Alphaseeker/src/domain"
)

// MarketState describes the current trading regime for an asset.
type MarketState string

const (
	StateDormant      MarketState = "DORMANT"      // low activity, sleeping
	StateAccumulation MarketState = "ACCUMULATION" // high volume, flat price
	StateMomentum     MarketState = "MOMENTUM"     // volume-confirmed breakout
	StateOverextended MarketState = "OVEREXTENDED" // price ran without volume support
	StateUnstable     MarketState = "UNSTABLE"     // erratic volatility or liquidity risk
)

// Confidence grades how much trust a classification carries. Entries
// are only permitted on HIGH.
type Confidence string

const (
	ConfidenceLow    Confidence = "LOW"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceHigh   Confidence = "HIGH"
)

// Classification is the latest state decision for one asset. Only the
// newest value is retained per asset; history is not kept.
type Classification struct {
	State          MarketState `json:"state"`
	Confidence     Confidence  `json:"confidence"`
	Trigger        string      `json:"trigger"`
	TransitionedAt time.Time   `json:"transitioned_at"`
}

// Rule thresholds for the state cascade.
const (
	volatilityMax       = 85.0
	volatilityMin       = 20.0
	liquidityDanger     = 80000.0
	spikeAccumulation   = 1.5
	spikeMomentum       = 2.5
	priceChangeFlat     = 0.5
	breakoutM5          = 2.0
	overextendedH1      = 15.0
	fadingSpike         = 0.8
	dormantSpike        = 0.5
	fallbackScoreFloor  = 40
	highConfidenceScore = 80
	mediumConfScore     = 50
)

// Evaluate runs the ordered rule cascade; the first matching rule wins
// and nothing is re-evaluated. Safety rules precede opportunity rules.
func Evaluate(snap domain.AssetSnapshot, score int, now time.Time) Classification {
	snap = snap.Sanitize()
	state, trigger := cascade(snap, score)

	return Classification{
		State:          state,
		Confidence:     confidenceFor(state, score),
		Trigger:        trigger,
		TransitionedAt: now,
	}
}

func cascade(snap domain.AssetSnapshot, score int) (MarketState, string) {
	absM5 := math.Abs(snap.PriceChange.M5)

	switch {
	case snap.VolatilityIndex > volatilityMax:
		return StateUnstable, "Extreme Volatility"
	case snap.Liquidity < liquidityDanger:
		return StateUnstable, "Liquidity Crunch"
	case snap.PriceChange.H1 > overextendedH1 && snap.VolumeSpikeFactor < fadingSpike:
		return StateOverextended, "Price/Volume Divergence"
	case snap.VolumeSpikeFactor > spikeMomentum && snap.PriceChange.M5 > breakoutM5:
		return StateMomentum, "Volume-backed Breakout"
	case snap.VolumeSpikeFactor > spikeAccumulation && absM5 < priceChangeFlat:
		return StateAccumulation, "High Vol / Low Price Delta"
	case snap.VolumeSpikeFactor < dormantSpike && snap.VolatilityIndex < volatilityMin:
		return StateDormant, "Inactive"
	case score > fallbackScoreFloor:
		// Early-momentum fallback: a decent score with no strict
		// category match is treated as momentum forming before the
		// volume rules can confirm it. Intentionally uncorroborated.
		return StateMomentum, "Score-based activity"
	default:
		return StateDormant, "Low activity detected"
	}
}

// confidenceFor grades the signal. UNSTABLE is always LOW no matter
// how strong the score looks; a strong score on a broken market is
// not tradeable.
func confidenceFor(state MarketState, score int) Confidence {
	if state == StateUnstable {
		return ConfidenceLow
	}
	switch {
	case score > highConfidenceScore:
		return ConfidenceHigh
	case score > mediumConfScore:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Tradeable reports whether the state qualifies for a fresh entry.
func (s MarketState) Tradeable() bool {
	switch s {
	case StateMomentum, StateAccumulation:
		return true
	case StateDormant, StateOverextended, StateUnstable:
		return false
	}
	return false
}

// Degraded reports whether the state mandates closing an open
// position.
func (s MarketState) Degraded() bool {
	switch s {
	case StateOverextended, StateUnstable:
		return true
	case StateDormant, StateAccumulation, StateMomentum:
		return false
	}
	return false
}
