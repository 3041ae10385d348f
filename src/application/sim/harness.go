// Package sim is the offline validation harness: it fabricates trade
// outcomes biased by state and confidence, aggregates per-category
// statistics, and emits fixed-rule insights. Calibration and testing
// only; nothing here feeds live decisions.
package sim

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/MohammedBenaboud/Alphaseeker/src/domain/classify"
)

// Outcome buckets a simulated trade result. NEUTRAL means the move
// stayed under ~1%, which is noise rather than signal.
type Outcome string

const (
	OutcomeWin     Outcome = "WIN"
	OutcomeLoss    Outcome = "LOSS"
	OutcomeNeutral Outcome = "NEUTRAL"
)

// Trade is one synthetic round trip.
type Trade struct {
	ID            string               `json:"id"`
	Symbol        string               `json:"symbol"`
	EntryTime     time.Time            `json:"entry_time"`
	ExitTime      time.Time            `json:"exit_time"`
	EntryPrice    float64              `json:"entry_price"`
	ExitPrice     float64              `json:"exit_price"`
	MarketState   classify.MarketState `json:"market_state"`
	Confidence    classify.Confidence  `json:"confidence"`
	Outcome       Outcome              `json:"outcome"`
	PercentChange float64              `json:"percent_change"`
}

// ValidationMetric aggregates outcomes for one category (a state or a
// confidence level).
type ValidationMetric struct {
	Category     string  `json:"category"`
	TotalSignals int     `json:"total_signals"`
	Accuracy     float64 `json:"accuracy"`    // % wins
	AvgReturn    float64 `json:"avg_return"`  // %
	NoiseRatio   float64 `json:"noise_ratio"` // % neutral outcomes
}

// InsightType grades a qualitative finding.
type InsightType string

const (
	InsightWarning        InsightType = "WARNING"
	InsightRecommendation InsightType = "RECOMMENDATION"
	InsightSuccess        InsightType = "SUCCESS"
)

// Insight is one fixed-rule qualitative finding over the metrics.
type Insight struct {
	Type           InsightType `json:"type"`
	Message        string      `json:"message"`
	ActionableItem string      `json:"actionable_item,omitempty"`
}

var allStates = []classify.MarketState{
	classify.StateDormant, classify.StateAccumulation, classify.StateMomentum,
	classify.StateOverextended, classify.StateUnstable,
}

var allConfidences = []classify.Confidence{
	classify.ConfidenceLow, classify.ConfidenceMedium, classify.ConfidenceHigh,
}

// winProbability biases outcomes the way the live pipeline should
// behave: confirmed momentum and high confidence win more, unstable
// markets lose more.
func winProbability(state classify.MarketState, conf classify.Confidence) float64 {
	p := 0.4
	switch state {
	case classify.StateMomentum:
		p += 0.2
	case classify.StateAccumulation:
		p += 0.1
	case classify.StateUnstable:
		p -= 0.3
	case classify.StateDormant, classify.StateOverextended:
	}
	if conf == classify.ConfidenceHigh {
		p += 0.2
	}
	return p
}

// GenerateHistory fabricates count synthetic trades at hourly
// intervals working backwards from now. The caller supplies the RNG so
// runs are reproducible.
func GenerateHistory(rng *rand.Rand, count int, now time.Time) []Trade {
	trades := make([]Trade, 0, count)

	for i := 0; i < count; i++ {
		state := allStates[rng.Intn(len(allStates))]
		conf := allConfidences[rng.Intn(len(allConfidences))]

		outcome, pctChange := rollOutcome(rng, winProbability(state, conf))

		entry := now.Add(-time.Duration(i) * time.Hour)
		trades = append(trades, Trade{
			ID:            uuid.NewString(),
			Symbol:        fmt.Sprintf("SIM-%03d", rng.Intn(1000)),
			EntryTime:     entry,
			ExitTime:      entry.Add(30 * time.Minute),
			EntryPrice:    100,
			ExitPrice:     100 * (1 + pctChange/100),
			MarketState:   state,
			Confidence:    conf,
			Outcome:       outcome,
			PercentChange: pctChange,
		})
	}
	return trades
}

// rollOutcome draws an outcome and a percent change from disjoint
// magnitude ranges per outcome class.
func rollOutcome(rng *rand.Rand, winProb float64) (Outcome, float64) {
	roll := rng.Float64()
	switch {
	case roll < winProb:
		return OutcomeWin, rng.Float64()*15 + 2 // +2% .. +17%
	case roll > 0.9:
		return OutcomeNeutral, rng.Float64()*1.5 - 0.75 // -0.75% .. +0.75%
	default:
		return OutcomeLoss, rng.Float64()*-10 - 2 // -2% .. -12%
	}
}

// AnalyzeMetrics groups trades by state and then by confidence,
// producing one metric per non-empty category.
func AnalyzeMetrics(trades []Trade) []ValidationMetric {
	var metrics []ValidationMetric

	for _, state := range allStates {
		subset := filter(trades, func(t Trade) bool { return t.MarketState == state })
		if m, ok := summarize("State: "+string(state), subset); ok {
			metrics = append(metrics, m)
		}
	}
	for _, conf := range allConfidences {
		subset := filter(trades, func(t Trade) bool { return t.Confidence == conf })
		if m, ok := summarize("Conf: "+string(conf), subset); ok {
			metrics = append(metrics, m)
		}
	}
	return metrics
}

func summarize(category string, subset []Trade) (ValidationMetric, bool) {
	if len(subset) == 0 {
		return ValidationMetric{}, false
	}

	wins, neutrals := 0, 0
	totalReturn := 0.0
	for _, t := range subset {
		switch t.Outcome {
		case OutcomeWin:
			wins++
		case OutcomeNeutral:
			neutrals++
		case OutcomeLoss:
		}
		totalReturn += t.PercentChange
	}

	n := float64(len(subset))
	return ValidationMetric{
		Category:     category,
		TotalSignals: len(subset),
		Accuracy:     float64(wins) / n * 100,
		AvgReturn:    totalReturn / n,
		NoiseRatio:   float64(neutrals) / n * 100,
	}, true
}

// GenerateInsights applies the fixed qualitative rules over the
// aggregated metrics.
func GenerateInsights(metrics []ValidationMetric) []Insight {
	var insights []Insight

	if m, ok := findCategory(metrics, "State: "+string(classify.StateUnstable)); ok && m.Accuracy < 30 {
		insights = append(insights, Insight{
			Type:           InsightWarning,
			Message:        "UNSTABLE state accuracy is critically low (<30%).",
			ActionableItem: "Suggestion: Increase Volatility Penalty in Scoring Engine.",
		})
	}

	if m, ok := findCategory(metrics, "Conf: "+string(classify.ConfidenceHigh)); ok {
		if m.Accuracy > 70 {
			insights = append(insights, Insight{
				Type:           InsightSuccess,
				Message:        "High Confidence signals are validating correctly (>70% accuracy).",
				ActionableItem: "System is robust. Consider increasing position size.",
			})
		} else {
			insights = append(insights, Insight{
				Type:           InsightRecommendation,
				Message:        fmt.Sprintf("High Confidence accuracy is only %.1f%%.", m.Accuracy),
				ActionableItem: "Suggestion: Tighten volume spike thresholds in Decision Engine.",
			})
		}
	}

	for _, m := range metrics {
		if m.NoiseRatio > 40 {
			insights = append(insights, Insight{
				Type:           InsightRecommendation,
				Message:        fmt.Sprintf("%s has high noise ratio (>40%% neutral).", m.Category),
				ActionableItem: "Suggestion: Increase minimum liquidity filter to reduce chop.",
			})
			break // one noise recommendation is enough
		}
	}

	return insights
}

func findCategory(metrics []ValidationMetric, category string) (ValidationMetric, bool) {
	for _, m := range metrics {
		if m.Category == category {
			return m, true
		}
	}
	return ValidationMetric{}, false
}

func filter(trades []Trade, keep func(Trade) bool) []Trade {
	var out []Trade
	for _, t := range trades {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}
