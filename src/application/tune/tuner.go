package tune

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/MohammedBenaboud/Alphaseeker/src/domain/risk"
	"github.com/MohammedBenaboud/Alphaseeker/src/domain/scoring"
)

// TradingConfig bundles everything the tuner may touch. The tuner is
// its only writer, and each adjustment changes exactly one field.
type TradingConfig struct {
	Scoring scoring.Config `yaml:"scoring" json:"scoring"`
	Risk    risk.Config    `yaml:"risk" json:"risk"`
}

// DefaultTradingConfig returns the compiled-in baseline.
func DefaultTradingConfig() TradingConfig {
	return TradingConfig{
		Scoring: scoring.DefaultConfig(),
		Risk:    risk.DefaultConfig(),
	}
}

// TargetModule names the config area an optimization touched.
type TargetModule string

const (
	TargetScoring TargetModule = "SCORING"
	TargetRisk    TargetModule = "RISK"
)

// OptimizationEvent records one applied adjustment for audit.
type OptimizationEvent struct {
	ID           string       `json:"id"`
	Timestamp    time.Time    `json:"timestamp"`
	TargetModule TargetModule `json:"target_module"`
	Parameter    string       `json:"parameter"`
	OldValue     float64      `json:"old_value"`
	NewValue     float64      `json:"new_value"`
	Reason       string       `json:"reason"`
}

// Tuning limits and step sizes.
const (
	MaxAdjustmentsPerDay = 2
	MinSignalsPerWindow  = 50
	windowDuration       = 24 * time.Hour

	minAccuracyTarget  = 65.0 // below this: tighten
	maxAccuracyCeiling = 85.0 // above this: loosen

	liquidityStep = 5000.0
	liquidityCap  = 200000.0

	volatilityStep  = 2.0
	volatilityFloor = 50.0

	cooldownStep  = 15
	cooldownFloor = 30
)

// Run executes one tuner invocation. Fail-closed: any unmet
// precondition yields the inputs unchanged, and at most one bounded
// step is ever applied.
func Run(cfg TradingConfig, metric SystemMetric, s State, now time.Time) (TradingConfig, *OptimizationEvent, State) {
	next := s

	// Time-boxed daily budget: reset counters once the window lapses.
	if now.Sub(next.WindowStartTime) > windowDuration {
		next.AdjustmentsToday = 0
		next.WindowStartTime = now
		next.SignalsProcessedInWindow = 0
	}

	if next.AdjustmentsToday >= MaxAdjustmentsPerDay {
		return cfg, nil, next
	}
	if next.SignalsProcessedInWindow < MinSignalsPerWindow {
		return cfg, nil, next
	}

	accuracy := metric.SignalAccuracy
	var event *OptimizationEvent

	switch {
	case accuracy < minAccuracyTarget:
		cfg, event = tighten(cfg, accuracy, now)
	case accuracy > maxAccuracyCeiling && next.SignalsProcessedInWindow > MinSignalsPerWindow:
		// Loosening demands strictly more than the minimum sample:
		// extra confidence is required before trading away safety.
		cfg, event = loosen(cfg, accuracy, now)
	}

	if event != nil {
		next.AdjustmentsToday++
		next.SignalsProcessedInWindow = 0 // observe the new config before tuning again
		next.LastAdjustmentTime = now

		log.Info().Str("parameter", event.Parameter).
			Float64("old", event.OldValue).Float64("new", event.NewValue).
			Str("reason", event.Reason).
			Msg("Configuration adjusted")
	}

	return cfg, event, next
}

// tighten raises standards when accuracy is poor. Preference: raise
// the liquidity filter first (removes the worst candidates); once that
// is capped, lower the volatility tolerance instead.
func tighten(cfg TradingConfig, accuracy float64, now time.Time) (TradingConfig, *OptimizationEvent) {
	if cfg.Scoring.MinLiquidity < liquidityCap {
		old := cfg.Scoring.MinLiquidity
		cfg.Scoring.MinLiquidity = old + liquidityStep
		return cfg, &OptimizationEvent{
			ID:           uuid.NewString(),
			Timestamp:    now,
			TargetModule: TargetScoring,
			Parameter:    "min_liquidity",
			OldValue:     old,
			NewValue:     cfg.Scoring.MinLiquidity,
			Reason:       fmt.Sprintf("Accuracy (%.1f%%) below target. Tightening liquidity filter.", accuracy),
		}
	}

	old := cfg.Risk.VolatilityKillSwitch
	next := old - volatilityStep
	if next < volatilityFloor {
		next = volatilityFloor
	}
	cfg.Risk.VolatilityKillSwitch = next
	return cfg, &OptimizationEvent{
		ID:           uuid.NewString(),
		Timestamp:    now,
		TargetModule: TargetRisk,
		Parameter:    "volatility_kill_switch",
		OldValue:     old,
		NewValue:     next,
		Reason:       "Accuracy low. Reducing volatility tolerance.",
	}
}

// loosen trades a little safety for flow when accuracy is excellent.
func loosen(cfg TradingConfig, accuracy float64, now time.Time) (TradingConfig, *OptimizationEvent) {
	if cfg.Risk.CooldownSeconds <= cooldownFloor {
		return cfg, nil
	}

	old := cfg.Risk.CooldownSeconds
	cfg.Risk.CooldownSeconds = old - cooldownStep
	return cfg, &OptimizationEvent{
		ID:           uuid.NewString(),
		Timestamp:    now,
		TargetModule: TargetRisk,
		Parameter:    "cooldown_seconds",
		OldValue:     float64(old),
		NewValue:     float64(cfg.Risk.CooldownSeconds),
		Reason:       fmt.Sprintf("Accuracy high (%.1f%%). Reducing cooldown to capture more flow.", accuracy),
	}
}
