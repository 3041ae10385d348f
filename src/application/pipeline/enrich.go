// Package pipeline drives one evaluation cycle: scoring and
// classifying the latest snapshot batch, applying exit rules to held
// positions, then entry rules to candidates, and refreshing PnL.
package pipeline

import (
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/MohammedBenaboud/Alphaseeker/src/domain"
	"github.com/MohammedBenaboud/Alphaseeker/src/domain/classify"
	"github.com/MohammedBenaboud/Alphaseeker/src/domain/scoring"
)

// EnrichedAsset is a snapshot plus everything derived from it this
// cycle: score, state decision, and rationale. Explicit composition;
// consumers only ever need the combined view.
type EnrichedAsset struct {
	Snapshot    domain.AssetSnapshot    `json:"snapshot"`
	Score       int                     `json:"score"`
	Decision    classify.Classification `json:"decision"`
	Explanation classify.Explanation    `json:"explanation"`
}

// EnrichBatch scores, classifies, and explains every snapshot in the
// batch, returning the results sorted by score descending. The sort is
// stable so equal scores keep their ingestion order.
func EnrichBatch(snaps []domain.AssetSnapshot, cfg scoring.Config, now time.Time) []EnrichedAsset {
	enriched := make([]EnrichedAsset, 0, len(snaps))

	for _, raw := range snaps {
		snap := raw.Sanitize()
		score := scoring.AlphaScore(snap, cfg)
		decision := classify.Evaluate(snap, score, now)

		enriched = append(enriched, EnrichedAsset{
			Snapshot:    snap,
			Score:       score,
			Decision:    decision,
			Explanation: classify.Explain(snap, score, decision),
		})
	}

	sort.SliceStable(enriched, func(i, j int) bool {
		return enriched[i].Score > enriched[j].Score
	})

	if len(enriched) > 0 {
		log.Debug().Int("assets", len(enriched)).
			Str("top_symbol", enriched[0].Snapshot.Symbol).
			Int("top_score", enriched[0].Score).
			Msg("Batch enriched")
	}

	return enriched
}
