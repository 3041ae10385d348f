// Package risk is the gate-keeping policy in front of every simulated
// entry and exit. Survival is the highest priority: gates are checked
// in a fixed order and the first failing gate wins, with a specific
// reason per gate.
package risk

import (
	"fmt"
	"math"
	"time"

	"github.com/MohammedBenaboud/Alphaseeker/src/domain"
	"github.com/MohammedBenaboud/Alphaseeker/src/domain/classify"
)

// Config holds the portfolio-level risk limits. Mutated only by the
// auto-tuner, one field per tuning event.
type Config struct {
	MaxOpenPositions     int     `yaml:"max_open_positions" json:"max_open_positions"`
	BasePositionSize     float64 `yaml:"base_position_size" json:"base_position_size"`
	MaxPortfolioRisk     float64 `yaml:"max_portfolio_risk" json:"max_portfolio_risk"`
	CooldownSeconds      int     `yaml:"cooldown_seconds" json:"cooldown_seconds"`
	VolatilityKillSwitch float64 `yaml:"volatility_kill_switch" json:"volatility_kill_switch"`
}

// DefaultConfig returns the baseline risk limits.
func DefaultConfig() Config {
	return Config{
		MaxOpenPositions:     3,
		BasePositionSize:     1000,
		MaxPortfolioRisk:     5000,
		CooldownSeconds:      60,
		VolatilityKillSwitch: 90,
	}
}

// Assessment is the structured outcome of a gate evaluation. A denied
// entry is a policy decision, not an error.
type Assessment struct {
	Allowed bool    `json:"allowed"`
	SizeUSD float64 `json:"size_usd"`
	Reason  string  `json:"reason"`
}

// Emergency exit threshold, independent of the configurable kill switch.
const emergencyVolatilityStop = 95.0

// Sizing floor: volatility below 25 is treated as 25 so near-zero
// readings (usually data artifacts) cannot inflate position size.
const sizingVolatilityFloor = 25.0

// EvaluateEntry runs the ordered entry gates for a classified asset
// against the current portfolio. The cooldown is global, not per
// asset. Pure; the caller supplies the clock.
func EvaluateEntry(
	snap domain.AssetSnapshot,
	decision classify.Classification,
	positions domain.Portfolio,
	lastActionTime time.Time,
	now time.Time,
	cfg Config,
) Assessment {
	// 1. Global kill switch on excessive volatility.
	if snap.VolatilityIndex > cfg.VolatilityKillSwitch {
		return deny(fmt.Sprintf("volatility %.0f exceeds kill switch (%.0f)",
			snap.VolatilityIndex, cfg.VolatilityKillSwitch))
	}

	// 2. Portfolio saturation.
	if len(positions) >= cfg.MaxOpenPositions {
		return deny(fmt.Sprintf("max open positions reached (%d)", cfg.MaxOpenPositions))
	}

	// 3. Global execution cooldown.
	if now.Sub(lastActionTime) < time.Duration(cfg.CooldownSeconds)*time.Second {
		return deny("global execution cooldown active")
	}

	// 4. No pyramiding into an existing position.
	if positions.Holds(snap.ID) {
		return deny("position already exists")
	}

	// 5. Only HIGH confidence signals may enter.
	if decision.Confidence != classify.ConfidenceHigh {
		return deny(fmt.Sprintf("signal confidence %s insufficient", decision.Confidence))
	}

	// 6. Only fresh momentum or accumulation qualifies.
	if !decision.State.Tradeable() {
		return deny(fmt.Sprintf("state %s not suitable for entry", decision.State))
	}

	size := SafeSize(snap.VolatilityIndex, cfg.BasePositionSize)
	return Assessment{
		Allowed: true,
		SizeUSD: size,
		Reason: fmt.Sprintf("approved: high confidence + %s state, vol adj %.2fx",
			decision.State, size/cfg.BasePositionSize),
	}
}

// EvaluateExit approves a full-size exit when the market state has
// degraded or volatility breaches the emergency stop.
func EvaluateExit(snap domain.AssetSnapshot, decision classify.Classification, pos domain.Position) Assessment {
	if decision.State.Degraded() {
		return Assessment{
			Allowed: true,
			SizeUSD: pos.SizeUSD,
			Reason:  fmt.Sprintf("exit: market state degraded to %s", decision.State),
		}
	}
	if snap.VolatilityIndex > emergencyVolatilityStop {
		return Assessment{
			Allowed: true,
			SizeUSD: pos.SizeUSD,
			Reason:  "exit: emergency volatility stop",
		}
	}
	return Assessment{Reason: "hold"}
}

// SafeSize applies inverse-volatility sizing: baseline volatility ~50
// yields the base size, volatility 100 halves it.
func SafeSize(volatilityIndex, baseSize float64) float64 {
	scalar := 50.0 / math.Max(volatilityIndex, sizingVolatilityFloor)
	return math.Floor(baseSize * scalar)
}

func deny(reason string) Assessment {
	return Assessment{Reason: "risk governor: " + reason}
}
