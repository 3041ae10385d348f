// Package scoring computes the composite alpha score for an asset
// snapshot: a liquidity-gated, weighted blend of turnover, momentum,
// liquidity depth, and volatility sub-scores scaled 0..100.
package scoring

import (
	"math"

	"github.com/MohammedBenaboud/Alphaseeker/src/domain"
)

// Config defines the sub-score weights and the hard liquidity filter.
// Weights are assumed to sum to 1.0 and are not renormalized.
type Config struct {
	VolumeWeight     float64 `yaml:"volume_weight" json:"volume_weight"`
	MomentumWeight   float64 `yaml:"momentum_weight" json:"momentum_weight"`
	LiquidityWeight  float64 `yaml:"liquidity_weight" json:"liquidity_weight"`
	VolatilityWeight float64 `yaml:"volatility_weight" json:"volatility_weight"`
	MinLiquidity     float64 `yaml:"min_liquidity" json:"min_liquidity"`
}

// DefaultConfig returns the baseline scoring weights.
func DefaultConfig() Config {
	return Config{
		VolumeWeight:     0.35,
		MomentumWeight:   0.30,
		LiquidityWeight:  0.20,
		VolatilityWeight: 0.15,
		MinLiquidity:     50000, // $50k rug-risk floor
	}
}

// Breakdown exposes the normalized sub-scores behind a final score.
type Breakdown struct {
	VolumeScore     float64 `json:"volume_score"`
	MomentumScore   float64 `json:"momentum_score"`
	LiquidityScore  float64 `json:"liquidity_score"`
	VolatilityScore float64 `json:"volatility_score"`
	WeightedSum     float64 `json:"weighted_sum"`
	Filtered        bool    `json:"filtered"`
}

// AlphaScore rates near-term opportunity on a 0..100 integer scale.
// Liquidity below the configured floor short-circuits to zero
// regardless of every other field.
func AlphaScore(snap domain.AssetSnapshot, cfg Config) int {
	score, _ := AlphaScoreBreakdown(snap, cfg)
	return score
}

// AlphaScoreBreakdown is AlphaScore plus the per-component detail used
// by explain surfaces and audit artifacts.
func AlphaScoreBreakdown(snap domain.AssetSnapshot, cfg Config) (int, Breakdown) {
	snap = snap.Sanitize()

	if snap.Liquidity < cfg.MinLiquidity {
		return 0, Breakdown{Filtered: true}
	}

	// Turnover relative to market cap, capped at 100. Volume above cap
	// is already extreme; more does not mean better.
	volumeScore := 0.0
	if snap.MarketCap > 0 {
		volumeScore = math.Min(snap.Volume24h/snap.MarketCap, 1.0) * 100
	}

	// Recent timeframes weigh heaviest; the +50 offset centers flat
	// price action at a neutral 50 before clamping.
	momentumRaw := snap.PriceChange.M5*4 + snap.PriceChange.H1*2 + snap.PriceChange.H24
	momentumScore := math.Min(math.Max(momentumRaw+50, 0), 100)

	// Liquidity at 20% of cap or better earns the full 100.
	liquidityScore := 0.0
	if snap.MarketCap > 0 {
		liquidityScore = math.Min((snap.Liquidity/snap.MarketCap)*500, 100)
	}

	// Peak reward at volatility 70: moderate chaos is opportunity,
	// both dead-calm and full-chaos score poorly.
	volatilityScore := math.Max(100-math.Abs(snap.VolatilityIndex-70)*2, 0)

	weighted := volumeScore*cfg.VolumeWeight +
		momentumScore*cfg.MomentumWeight +
		liquidityScore*cfg.LiquidityWeight +
		volatilityScore*cfg.VolatilityWeight

	b := Breakdown{
		VolumeScore:     volumeScore,
		MomentumScore:   momentumScore,
		LiquidityScore:  liquidityScore,
		VolatilityScore: volatilityScore,
		WeightedSum:     weighted,
	}

	final := int(math.Floor(weighted))
	if final < 0 {
		final = 0
	}
	if final > 100 {
		final = 100
	}
	return final, b
}
