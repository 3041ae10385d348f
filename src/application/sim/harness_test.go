package sim

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MohammedBenaboud/Alphaseeker/src/domain/classify"
)

var simNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func TestGenerateHistory_Shape(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	trades := GenerateHistory(rng, 200, simNow)
	require.Len(t, trades, 200)

	seen := map[string]bool{}
	for i, tr := range trades {
		assert.False(t, seen[tr.ID], "trade ids are unique")
		seen[tr.ID] = true

		assert.Equal(t, simNow.Add(-time.Duration(i)*time.Hour), tr.EntryTime)
		assert.Equal(t, tr.EntryTime.Add(30*time.Minute), tr.ExitTime)
		assert.Equal(t, 100.0, tr.EntryPrice)
		assert.InDelta(t, 100*(1+tr.PercentChange/100), tr.ExitPrice, 1e-9)

		switch tr.Outcome {
		case OutcomeWin:
			assert.GreaterOrEqual(t, tr.PercentChange, 2.0)
			assert.LessOrEqual(t, tr.PercentChange, 17.0)
		case OutcomeLoss:
			assert.LessOrEqual(t, tr.PercentChange, -2.0)
			assert.GreaterOrEqual(t, tr.PercentChange, -12.0)
		case OutcomeNeutral:
			assert.LessOrEqual(t, tr.PercentChange, 0.75)
			assert.GreaterOrEqual(t, tr.PercentChange, -0.75)
		default:
			t.Fatalf("unknown outcome %q", tr.Outcome)
		}
	}
}

func TestGenerateHistory_Deterministic(t *testing.T) {
	a := GenerateHistory(rand.New(rand.NewSource(42)), 50, simNow)
	b := GenerateHistory(rand.New(rand.NewSource(42)), 50, simNow)
	for i := range a {
		assert.Equal(t, a[i].Symbol, b[i].Symbol)
		assert.Equal(t, a[i].Outcome, b[i].Outcome)
		assert.Equal(t, a[i].PercentChange, b[i].PercentChange)
	}
}

func TestGenerateHistory_BiasHoldsOverLargeSample(t *testing.T) {
	// Momentum plus high confidence carries an 80% win probability
	// versus 30% for unstable markets. With 5000 trades the gap has to
	// show even without asserting exact rates.
	trades := GenerateHistory(rand.New(rand.NewSource(1)), 5000, simNow)
	metrics := AnalyzeMetrics(trades)

	momentum, ok := findCategory(metrics, "State: "+string(classify.StateMomentum))
	require.True(t, ok)
	unstable, ok := findCategory(metrics, "State: "+string(classify.StateUnstable))
	require.True(t, ok)

	assert.Greater(t, momentum.Accuracy, unstable.Accuracy+10,
		"momentum should win visibly more often than unstable")
}

func TestAnalyzeMetrics(t *testing.T) {
	trades := []Trade{
		{MarketState: classify.StateMomentum, Confidence: classify.ConfidenceHigh, Outcome: OutcomeWin, PercentChange: 10},
		{MarketState: classify.StateMomentum, Confidence: classify.ConfidenceHigh, Outcome: OutcomeLoss, PercentChange: -4},
		{MarketState: classify.StateMomentum, Confidence: classify.ConfidenceLow, Outcome: OutcomeNeutral, PercentChange: 0.3},
		{MarketState: classify.StateDormant, Confidence: classify.ConfidenceLow, Outcome: OutcomeWin, PercentChange: 3},
	}

	metrics := AnalyzeMetrics(trades)

	momentum, ok := findCategory(metrics, "State: MOMENTUM")
	require.True(t, ok)
	assert.Equal(t, 3, momentum.TotalSignals)
	assert.InDelta(t, 100.0/3, momentum.Accuracy, 1e-9)
	assert.InDelta(t, 6.3/3, momentum.AvgReturn, 1e-9)
	assert.InDelta(t, 100.0/3, momentum.NoiseRatio, 1e-9)

	high, ok := findCategory(metrics, "Conf: HIGH")
	require.True(t, ok)
	assert.Equal(t, 2, high.TotalSignals)
	assert.InDelta(t, 50.0, high.Accuracy, 1e-9)

	_, ok = findCategory(metrics, "State: UNSTABLE")
	assert.False(t, ok, "empty categories are omitted")
}

func TestGenerateInsights(t *testing.T) {
	t.Run("unstable_warning", func(t *testing.T) {
		insights := GenerateInsights([]ValidationMetric{
			{Category: "State: UNSTABLE", Accuracy: 25},
		})
		require.Len(t, insights, 1)
		assert.Equal(t, InsightWarning, insights[0].Type)
	})

	t.Run("high_confidence_success", func(t *testing.T) {
		insights := GenerateInsights([]ValidationMetric{
			{Category: "Conf: HIGH", Accuracy: 75},
		})
		require.Len(t, insights, 1)
		assert.Equal(t, InsightSuccess, insights[0].Type)
	})

	t.Run("high_confidence_underperforming", func(t *testing.T) {
		insights := GenerateInsights([]ValidationMetric{
			{Category: "Conf: HIGH", Accuracy: 55},
		})
		require.Len(t, insights, 1)
		assert.Equal(t, InsightRecommendation, insights[0].Type)
		assert.Contains(t, insights[0].Message, "55.0%")
	})

	t.Run("single_noise_recommendation", func(t *testing.T) {
		insights := GenerateInsights([]ValidationMetric{
			{Category: "State: DORMANT", Accuracy: 50, NoiseRatio: 60},
			{Category: "State: ACCUMULATION", Accuracy: 50, NoiseRatio: 55},
		})
		require.Len(t, insights, 1, "only the first noisy category is reported")
		assert.Contains(t, insights[0].Message, "DORMANT")
	})

	t.Run("clean_metrics_no_insights", func(t *testing.T) {
		insights := GenerateInsights([]ValidationMetric{
			{Category: "State: UNSTABLE", Accuracy: 45, NoiseRatio: 10},
		})
		assert.Empty(t, insights)
	})
}
