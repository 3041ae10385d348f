package pipeline

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/MohammedBenaboud/Alphaseeker/src/domain"
	"github.com/MohammedBenaboud/Alphaseeker/src/domain/risk"
)

// ExecutionType tags a log entry as an entry, exit, or rejection.
type ExecutionType string

const (
	ExecEntry    ExecutionType = "ENTRY"
	ExecExit     ExecutionType = "EXIT"
	ExecRejected ExecutionType = "REJECTED"
)

// ExecutionLogEntry is one append-only execution record. The caller
// keeps these in a bounded ring.
type ExecutionLogEntry struct {
	ID            string        `json:"id"`
	Timestamp     time.Time     `json:"timestamp"`
	Symbol        string        `json:"symbol"`
	Kind          ExecutionType `json:"kind"`
	SizeUSD       float64       `json:"size_usd"`
	Reason        string        `json:"reason"`
	RiskCheckNote string        `json:"risk_check_note"`
}

// LogRingCapacity bounds the execution log kept by the host loop.
const LogRingCapacity = 100

// Rejections below this score are dropped to keep the log readable;
// clearly-unqualified candidates are not worth a record.
const rejectionLogScoreFloor = 80

// CycleResult is everything one execution cycle produced. The input
// portfolio is never mutated.
type CycleResult struct {
	Portfolio      domain.Portfolio
	NewLogs        []ExecutionLogEntry
	EntryCommitted bool
	LastActionTime time.Time
}

// RunCycle applies the exit rule to every held position present in the
// batch, then the entry rule to the remaining candidates. Exits are
// fully resolved before any entry is considered, and at most one entry
// commits per cycle.
func RunCycle(
	assets []EnrichedAsset,
	portfolio domain.Portfolio,
	lastActionTime time.Time,
	cfg risk.Config,
	now time.Time,
) CycleResult {
	byID := make(map[string]EnrichedAsset, len(assets))
	for _, a := range assets {
		byID[a.Snapshot.ID] = a
	}

	result := CycleResult{LastActionTime: lastActionTime}
	updated := portfolio.Clone()

	// Exit pass. Positions whose asset is absent this tick are simply
	// not reconsidered; they will be seen again when the asset returns.
	for _, pos := range portfolio {
		live, present := byID[pos.AssetID]
		if !present {
			continue
		}
		exit := risk.EvaluateExit(live.Snapshot, live.Decision, pos)
		if !exit.Allowed {
			continue
		}

		updated = remove(updated, pos.AssetID)
		result.NewLogs = append(result.NewLogs, ExecutionLogEntry{
			ID:            uuid.NewString(),
			Timestamp:     now,
			Symbol:        pos.Symbol,
			Kind:          ExecExit,
			SizeUSD:       pos.SizeUSD,
			Reason:        exit.Reason,
			RiskCheckNote: "PASS: exit condition met",
		})
		log.Info().Str("symbol", pos.Symbol).Str("reason", exit.Reason).
			Float64("size_usd", pos.SizeUSD).Msg("Position closed")
	}

	// Entry pass against the post-exit portfolio. Candidates arrive
	// sorted by score descending from EnrichBatch; the first approval
	// wins and ends the scan.
	for _, candidate := range assets {
		if updated.Holds(candidate.Snapshot.ID) {
			continue
		}

		assessment := risk.EvaluateEntry(
			candidate.Snapshot, candidate.Decision, updated, lastActionTime, now, cfg)

		if assessment.Allowed {
			updated = append(updated, domain.Position{
				AssetID:    candidate.Snapshot.ID,
				Symbol:     candidate.Snapshot.Symbol,
				EntryPrice: candidate.Snapshot.Price,
				SizeUSD:    assessment.SizeUSD,
				EntryTime:  now,
			})
			result.NewLogs = append(result.NewLogs, ExecutionLogEntry{
				ID:            uuid.NewString(),
				Timestamp:     now,
				Symbol:        candidate.Snapshot.Symbol,
				Kind:          ExecEntry,
				SizeUSD:       assessment.SizeUSD,
				Reason:        candidate.Decision.Trigger,
				RiskCheckNote: assessment.Reason,
			})
			result.EntryCommitted = true
			result.LastActionTime = now
			log.Info().Str("symbol", candidate.Snapshot.Symbol).
				Int("score", candidate.Score).
				Float64("size_usd", assessment.SizeUSD).
				Msg("Position opened")
			break
		}

		if candidate.Score > rejectionLogScoreFloor {
			result.NewLogs = append(result.NewLogs, ExecutionLogEntry{
				ID:            uuid.NewString(),
				Timestamp:     now,
				Symbol:        candidate.Snapshot.Symbol,
				Kind:          ExecRejected,
				Reason:        candidate.Decision.Trigger,
				RiskCheckNote: assessment.Reason,
			})
		}
	}

	result.Portfolio = updated
	return result
}

// RefreshPnL recomputes unrealized PnL for every held position against
// the latest batch. Positions for assets absent from the batch are
// returned unchanged: stale, not errored.
func RefreshPnL(portfolio domain.Portfolio, assets []EnrichedAsset) domain.Portfolio {
	byID := make(map[string]EnrichedAsset, len(assets))
	for _, a := range assets {
		byID[a.Snapshot.ID] = a
	}

	updated := portfolio.Clone()
	for i, pos := range updated {
		live, present := byID[pos.AssetID]
		if !present || pos.EntryPrice == 0 {
			continue
		}
		pnlPct := (live.Snapshot.Price - pos.EntryPrice) / pos.EntryPrice
		updated[i].UnrealizedPnL = pos.SizeUSD * pnlPct
	}
	return updated
}

func remove(p domain.Portfolio, assetID string) domain.Portfolio {
	out := p[:0:0]
	for _, pos := range p {
		if pos.AssetID != assetID {
			out = append(out, pos)
		}
	}
	return out
}
