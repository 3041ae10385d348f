package classify

import (
	"fmt"
	"strings"

	"github.com/MohammedBenaboud/Alphaseeker/src/domain"
)

// Explanation is the deterministic rationale attached to a
// classification. The text is used for audit, so identical inputs must
// produce byte-identical output.
type Explanation struct {
	Summary             string   `json:"summary"`
	SupportingSignals   []string `json:"supporting_signals"`
	RiskFactors         []string `json:"risk_factors"`
	ConfidenceRationale string   `json:"confidence_rationale"`
}

const (
	maxSupportingSignals = 3
	maxRiskFactors       = 2
)

// Explain builds the rationale for a decision from fixed templates.
// Candidate lists are assembled in fixed priority order and truncated,
// never sorted by magnitude. Empty lists are valid output.
func Explain(snap domain.AssetSnapshot, score int, c Classification) Explanation {
	in := explainInput{
		VolumeSpikeFactor: snap.VolumeSpikeFactor,
		Liquidity:         snap.Liquidity,
		VolatilityIndex:   snap.VolatilityIndex,
		Score:             score,
		State:             c.State,
		Confidence:        c.Confidence,
	}

	signals := supportingSignals(in)
	risks := riskFactors(in)

	return Explanation{
		Summary:             summaryFor(in),
		SupportingSignals:   truncate(signals, maxSupportingSignals),
		RiskFactors:         truncate(risks, maxRiskFactors),
		ConfidenceRationale: confidenceRationale(in.Confidence, risks),
	}
}

// explainInput is the subset of snapshot and classification fields the
// explanation depends on.
type explainInput struct {
	VolumeSpikeFactor float64
	Liquidity         float64
	VolatilityIndex   float64
	Score             int
	State             MarketState
	Confidence        Confidence
}

func supportingSignals(in explainInput) []string {
	var signals []string
	if in.VolumeSpikeFactor > 2.0 {
		signals = append(signals, fmt.Sprintf(
			"Abnormal Volume: %.1fx above average indicates institutional or viral interest.",
			in.VolumeSpikeFactor))
	}
	if in.Liquidity > 100000 {
		signals = append(signals, fmt.Sprintf(
			"Deep Liquidity: $%.0fk depth supports larger entries.", in.Liquidity/1000))
	}
	if in.Score > 80 {
		signals = append(signals, fmt.Sprintf(
			"Strong Momentum: Scoring %d/100 based on multi-timeframe price action.", in.Score))
	}
	if in.State == StateAccumulation {
		signals = append(signals,
			"Price Suppression: Volume is rising while price remains stable (Accumulation pattern).")
	}
	return signals
}

func riskFactors(in explainInput) []string {
	var risks []string
	if in.VolatilityIndex > 80 {
		risks = append(risks, "Extreme Volatility: Asset is prone to >5% candle swings.")
	}
	if in.Liquidity < 50000 {
		risks = append(risks, "Thin Orderbook: High slippage risk on exit.")
	}
	if in.State == StateOverextended {
		risks = append(risks, "Trend Exhaustion: Price extended beyond volume support.")
	}
	if in.State == StateUnstable {
		risks = append(risks, "Metric Divergence: Signals are conflicting or erratic.")
	}
	return risks
}

func summaryFor(in explainInput) string {
	switch in.State {
	case StateMomentum:
		return fmt.Sprintf(
			"Asset classified as MOMENTUM due to confluence of volume spike (%.1fx) and positive price action. System detects breakout behavior.",
			in.VolumeSpikeFactor)
	case StateAccumulation:
		return "Asset classified as ACCUMULATION. High turnover without price markup suggests smart money entry before expansion."
	case StateDormant:
		return "Asset is DORMANT. Metrics are below activation thresholds. No significant catalyst detected."
	case StateOverextended:
		return "Asset is OVEREXTENDED. Rally appears exhausted relative to volume flow. Reversal risk is elevated."
	case StateUnstable:
		return "Asset is UNSTABLE. Volatility or liquidity metrics violated safety baselines."
	}
	return fmt.Sprintf("Asset state is %s.", in.State)
}

func confidenceRationale(conf Confidence, risks []string) string {
	switch conf {
	case ConfidenceHigh:
		return "Confidence HIGH: All primary indicators (Vol, Liq, Score) align positively with no critical risk flags."
	case ConfidenceMedium:
		offset := "lower scoring factor"
		if len(risks) > 0 {
			offset = strings.SplitN(risks[0], ":", 2)[0]
		}
		return fmt.Sprintf("Confidence MEDIUM: Primary signal is valid, but offset by %s.", offset)
	default:
		return "Confidence LOW: Signal is weak or significant risk factors are present. Filtering advised."
	}
}

func truncate(items []string, max int) []string {
	if len(items) > max {
		return items[:max]
	}
	return items
}
