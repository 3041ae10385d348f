package risk

import (
	"strings"
	"testing"
	"time"

	"github.com/MohammedBenaboud/Alphaseeker/src/domain"
	"github.com/MohammedBenaboud/Alphaseeker/src/domain/classify"
)

var (
	now        = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	longAgo    = now.Add(-time.Hour)
	highConf   = classify.Classification{State: classify.StateMomentum, Confidence: classify.ConfidenceHigh}
	mediumConf = classify.Classification{State: classify.StateMomentum, Confidence: classify.ConfidenceMedium}
)

func entrySnapshot() domain.AssetSnapshot {
	return domain.AssetSnapshot{
		ID:              "asset-1",
		Symbol:          "TURBO",
		Price:           0.002,
		Liquidity:       300000,
		VolatilityIndex: 50,
	}
}

func TestEvaluateEntry_GateOrder(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("kill_switch_first", func(t *testing.T) {
		snap := entrySnapshot()
		snap.VolatilityIndex = 92
		// Saturated portfolio too, but the kill switch must win.
		positions := domain.Portfolio{{AssetID: "a"}, {AssetID: "b"}, {AssetID: "c"}}

		got := EvaluateEntry(snap, highConf, positions, longAgo, now, cfg)
		if got.Allowed {
			t.Fatal("expected denial")
		}
		if !strings.Contains(got.Reason, "kill switch") {
			t.Errorf("reason %q should cite the kill switch", got.Reason)
		}
	})

	t.Run("saturation_before_cooldown", func(t *testing.T) {
		positions := domain.Portfolio{{AssetID: "a"}, {AssetID: "b"}, {AssetID: "c"}}
		got := EvaluateEntry(entrySnapshot(), highConf, positions, now, now, cfg)
		if got.Allowed || !strings.Contains(got.Reason, "max open positions") {
			t.Errorf("expected saturation denial, got %+v", got)
		}
	})

	t.Run("cooldown_before_duplicate", func(t *testing.T) {
		positions := domain.Portfolio{{AssetID: "asset-1"}}
		got := EvaluateEntry(entrySnapshot(), highConf, positions, now.Add(-10*time.Second), now, cfg)
		if got.Allowed || !strings.Contains(got.Reason, "cooldown") {
			t.Errorf("expected cooldown denial, got %+v", got)
		}
	})

	t.Run("duplicate_before_confidence", func(t *testing.T) {
		positions := domain.Portfolio{{AssetID: "asset-1"}}
		got := EvaluateEntry(entrySnapshot(), mediumConf, positions, longAgo, now, cfg)
		if got.Allowed || !strings.Contains(got.Reason, "already exists") {
			t.Errorf("expected duplicate denial, got %+v", got)
		}
	})
}

func TestEvaluateEntry_ConfidenceGate(t *testing.T) {
	cfg := DefaultConfig()

	for _, conf := range []classify.Confidence{classify.ConfidenceLow, classify.ConfidenceMedium} {
		decision := classify.Classification{State: classify.StateMomentum, Confidence: conf}
		got := EvaluateEntry(entrySnapshot(), decision, nil, longAgo, now, cfg)
		if got.Allowed {
			t.Errorf("confidence %s must never be allowed to enter", conf)
		}
		if !strings.Contains(got.Reason, "confidence") {
			t.Errorf("reason %q should cite confidence", got.Reason)
		}
	}
}

func TestEvaluateEntry_StateGate(t *testing.T) {
	cfg := DefaultConfig()

	for _, state := range []classify.MarketState{
		classify.StateDormant, classify.StateOverextended,
	} {
		decision := classify.Classification{State: state, Confidence: classify.ConfidenceHigh}
		got := EvaluateEntry(entrySnapshot(), decision, nil, longAgo, now, cfg)
		if got.Allowed {
			t.Errorf("state %s should be denied entry", state)
		}
	}

	for _, state := range []classify.MarketState{
		classify.StateMomentum, classify.StateAccumulation,
	} {
		decision := classify.Classification{State: state, Confidence: classify.ConfidenceHigh}
		got := EvaluateEntry(entrySnapshot(), decision, nil, longAgo, now, cfg)
		if !got.Allowed {
			t.Errorf("state %s with HIGH confidence should be approved: %s", state, got.Reason)
		}
	}
}

func TestEvaluateEntry_SaturationScenario(t *testing.T) {
	// Portfolio at maxOpenPositions=3: any entry call is denied with a
	// saturation reason.
	cfg := DefaultConfig()
	cfg.MaxOpenPositions = 3
	positions := domain.Portfolio{
		{AssetID: "x"}, {AssetID: "y"}, {AssetID: "z"},
	}

	got := EvaluateEntry(entrySnapshot(), highConf, positions, longAgo, now, cfg)
	if got.Allowed {
		t.Fatal("saturated portfolio must deny entries")
	}
	if !strings.Contains(got.Reason, "max open positions reached (3)") {
		t.Errorf("reason %q should reference saturation", got.Reason)
	}
}

func TestEvaluateEntry_CooldownScenario(t *testing.T) {
	// Second attempt within the cooldown window is denied even though
	// every other gate passes.
	cfg := DefaultConfig()
	cfg.CooldownSeconds = 60

	first := EvaluateEntry(entrySnapshot(), highConf, nil, longAgo, now, cfg)
	if !first.Allowed {
		t.Fatalf("first entry should pass: %s", first.Reason)
	}

	second := EvaluateEntry(entrySnapshot(), highConf, nil, now, now.Add(30*time.Second), cfg)
	if second.Allowed {
		t.Fatal("entry inside cooldown window must be denied")
	}
	if !strings.Contains(second.Reason, "cooldown") {
		t.Errorf("reason %q should cite cooldown", second.Reason)
	}
}

func TestSafeSize_InverseVolatility(t *testing.T) {
	cases := []struct {
		vol  float64
		want float64
	}{
		{100, 500},  // double baseline volatility halves size
		{50, 1000},  // baseline
		{25, 2000},  // floor
		{5, 2000},   // below floor clamps, no oversizing
		{0, 2000},   // zero-volatility artifact clamps too
		{80, 625},   // floor(1000 * 50/80)
	}
	for _, tc := range cases {
		if got := SafeSize(tc.vol, 1000); got != tc.want {
			t.Errorf("SafeSize(vol=%.0f) = %.0f, want %.0f", tc.vol, got, tc.want)
		}
	}
}

func TestEvaluateExit(t *testing.T) {
	pos := domain.Position{AssetID: "asset-1", Symbol: "TURBO", SizeUSD: 750}

	t.Run("degraded_state_exits_full_size", func(t *testing.T) {
		for _, state := range []classify.MarketState{classify.StateOverextended, classify.StateUnstable} {
			decision := classify.Classification{State: state, Confidence: classify.ConfidenceLow}
			got := EvaluateExit(entrySnapshot(), decision, pos)
			if !got.Allowed || got.SizeUSD != pos.SizeUSD {
				t.Errorf("state %s: expected full-size exit, got %+v", state, got)
			}
		}
	})

	t.Run("emergency_volatility_stop", func(t *testing.T) {
		snap := entrySnapshot()
		snap.VolatilityIndex = 96
		decision := classify.Classification{State: classify.StateMomentum, Confidence: classify.ConfidenceHigh}
		got := EvaluateExit(snap, decision, pos)
		if !got.Allowed {
			t.Fatalf("expected emergency exit, got %+v", got)
		}
	})

	t.Run("healthy_position_holds", func(t *testing.T) {
		decision := classify.Classification{State: classify.StateMomentum, Confidence: classify.ConfidenceHigh}
		got := EvaluateExit(entrySnapshot(), decision, pos)
		if got.Allowed || got.Reason != "hold" {
			t.Errorf("expected hold, got %+v", got)
		}
	})
}
