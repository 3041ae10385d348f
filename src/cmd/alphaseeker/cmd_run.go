package main

import (
	"context"
	"fmt"
	"math/rand"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/MohammedBenaboud/Alphaseeker/src/application/pipeline"
	"github.com/MohammedBenaboud/Alphaseeker/src/application/tune"
	"github.com/MohammedBenaboud/Alphaseeker/src/domain"
	"github.com/MohammedBenaboud/Alphaseeker/src/infrastructure/config"
	"github.com/MohammedBenaboud/Alphaseeker/src/infrastructure/data"
	"github.com/MohammedBenaboud/Alphaseeker/src/infrastructure/httpapi"
	"github.com/MohammedBenaboud/Alphaseeker/src/infrastructure/ingest"
	"github.com/MohammedBenaboud/Alphaseeker/src/infrastructure/narrative"
	"github.com/MohammedBenaboud/Alphaseeker/src/infrastructure/persistence"
	"github.com/MohammedBenaboud/Alphaseeker/src/internal/ring"
)

var runSynthetic bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the continuous scan and simulation loop",
	Long: `Polls market data on an interval, enriches and ranks each batch,
applies the risk-governed execution cycle, and lets the tuner adjust
parameters from observed accuracy. Serves status over HTTP while
running.`,
	RunE: runLoop,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runSynthetic, "synthetic", false, "Use the synthetic data generator instead of live data")
}

// host owns every piece of mutable loop state.
type host struct {
	settings config.Settings
	source   ingest.Source
	cache    data.SnapshotCache
	ledger   *persistence.Ledger
	annotate *narrative.Client
	metrics  *httpapi.MetricsRegistry
	server   *httpapi.Server

	cfg            tune.TradingConfig
	portfolio      domain.Portfolio
	tunerState     tune.State
	logRing        *ring.Buffer[pipeline.ExecutionLogEntry]
	lastActionTime time.Time
	cycleCount     int64
}

func runLoop(cmd *cobra.Command, args []string) error {
	settings, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if runSynthetic {
		settings.Ingest.Synthetic = true
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	h, err := newHost(ctx, settings)
	if err != nil {
		return err
	}
	defer h.close()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- h.server.ListenAndServe(ctx)
	}()

	log.Info().Dur("interval", settings.Ingest.PollInterval).
		Bool("synthetic", settings.Ingest.Synthetic).
		Msg("Scan loop starting")

	ticker := time.NewTicker(settings.Ingest.PollInterval)
	defer ticker.Stop()

	h.cycle(ctx, time.Now())
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Scan loop stopping")
			return <-serverErr
		case err := <-serverErr:
			return fmt.Errorf("http server: %w", err)
		case now := <-ticker.C:
			h.cycle(ctx, now)
		}
	}
}

func newHost(ctx context.Context, settings config.Settings) (*host, error) {
	var source ingest.Source
	if settings.Ingest.Synthetic {
		source = ingest.NewSyntheticSource(rand.New(rand.NewSource(time.Now().UnixNano())))
	} else {
		source = ingest.NewClient(ingest.Options{
			BaseURL:         settings.Ingest.BaseURL,
			RequestTimeout:  settings.Ingest.RequestTimeout,
			RequestsPerSec:  settings.Ingest.RequestsPerSec,
			BurstAllowance:  settings.Ingest.BurstAllowance,
			MinLiquidityUSD: settings.Ingest.MinLiquidityUSD,
		})
	}

	var cache data.SnapshotCache
	if settings.Cache.RedisAddr != "" {
		redisCache := data.NewRedisSnapshotCache(
			settings.Cache.RedisAddr, settings.Cache.RedisPassword, settings.Cache.RedisDB)
		if redisCache.Health(ctx) {
			cache = redisCache
		} else {
			log.Warn().Str("addr", settings.Cache.RedisAddr).
				Msg("Redis unreachable, using in-memory snapshot cache")
			redisCache.Close()
		}
	}
	if cache == nil {
		cache = data.NewInMemorySnapshotCache()
	}

	ledger, err := persistence.Open(ctx, settings.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	metrics := httpapi.NewMetricsRegistry()
	now := time.Now()

	return &host{
		settings: settings,
		source:   source,
		cache:    cache,
		ledger:   ledger,
		annotate: narrative.NewClient(
			settings.Narrative.Endpoint, settings.Narrative.APIKey,
			settings.Narrative.Timeout, settings.Narrative.Enabled),
		metrics: metrics,
		server: httpapi.NewServer(httpapi.Config{
			Addr:         settings.Server.Addr,
			ReadTimeout:  settings.Server.ReadTimeout,
			WriteTimeout: settings.Server.WriteTimeout,
		}, metrics),
		cfg:        settings.Trading,
		tunerState: tune.NewState(now),
		logRing:    ring.New[pipeline.ExecutionLogEntry](pipeline.LogRingCapacity),
	}, nil
}

func (h *host) close() {
	if err := h.cache.Close(); err != nil {
		log.Warn().Err(err).Msg("Cache close failed")
	}
	if err := h.ledger.Close(); err != nil {
		log.Warn().Err(err).Msg("Ledger close failed")
	}
}

// cycle runs one full tick: fetch, enrich, execute, observe, tune.
func (h *host) cycle(ctx context.Context, now time.Time) {
	start := time.Now()

	snaps, err := h.source.Fetch(ctx, h.settings.Ingest.Query)
	if err != nil {
		h.metrics.FetchErrors.Inc()
		var fetchedAt time.Time
		var ok bool
		snaps, fetchedAt, ok = h.cache.GetBatch(ctx, "latest")
		if !ok {
			log.Error().Err(err).Msg("No market data available, skipping cycle")
			return
		}
		log.Warn().Err(err).Time("fetched_at", fetchedAt).
			Msg("Fetch failed, scanning cached batch")
	} else {
		if cerr := h.cache.SetBatch(ctx, "latest", snaps, "ingest", h.settings.Cache.SnapshotTTL); cerr != nil {
			log.Warn().Err(cerr).Msg("Snapshot cache write failed")
		}
	}

	enriched := pipeline.EnrichBatch(snaps, h.cfg.Scoring, now)

	// Mark positions to market before the exit pass so closed trades
	// carry their final PnL.
	h.portfolio = pipeline.RefreshPnL(h.portfolio, enriched)
	preCycle := h.portfolio

	result := pipeline.RunCycle(enriched, h.portfolio, h.lastActionTime, h.cfg.Risk, now)
	h.portfolio = result.Portfolio
	h.lastActionTime = result.LastActionTime
	h.cycleCount++

	for _, entry := range result.NewLogs {
		h.logRing.Push(entry)
	}

	// Closed positions feed the rolling accuracy window.
	for _, win := range closedTradeOutcomes(preCycle, result.NewLogs) {
		h.tunerState = tune.IngestOutcome(h.tunerState, win)
	}

	latencyMS := int(time.Since(start).Milliseconds())
	metric, alerts := tune.Observe(h.logRing.Items(), latencyMS, h.tunerState, now)
	for _, alert := range alerts {
		log.Info().Str("module", alert.Module).Str("severity", string(alert.Severity)).
			Msg(alert.Message)
	}

	var event *tune.OptimizationEvent
	h.cfg, event, h.tunerState = tune.Run(h.cfg, metric, h.tunerState, now)

	h.persist(ctx, result, event, now)
	h.annotateTop(ctx, enriched)

	h.metrics.ObserveCycle(len(enriched), h.portfolio, result.NewLogs, metric, time.Since(start))
	h.server.Publish(httpapi.StatusView{
		Timestamp:  now,
		CycleCount: h.cycleCount,
		Assets:     enriched,
		Portfolio:  h.portfolio,
		Logs:       h.logRing.Items(),
		Metric:     metric,
		Alerts:     alerts,
		Config:     h.cfg,
	})

	log.Info().Int("assets", len(enriched)).Int("positions", len(h.portfolio)).
		Int("new_logs", len(result.NewLogs)).Bool("entry", result.EntryCommitted).
		Dur("elapsed", time.Since(start)).Msg("Cycle complete")
}

func (h *host) persist(ctx context.Context, result pipeline.CycleResult, event *tune.OptimizationEvent, now time.Time) {
	if err := h.ledger.RecordExecutions(ctx, result.NewLogs); err != nil {
		log.Warn().Err(err).Msg("Ledger write failed")
	}
	if event == nil {
		return
	}
	if err := h.ledger.RecordOptimization(ctx, *event); err != nil {
		log.Warn().Err(err).Msg("Optimization event write failed")
	}
	if err := h.ledger.RecordConfigSnapshot(ctx, h.cfg, now); err != nil {
		log.Warn().Err(err).Msg("Config snapshot write failed")
	}
}

// closedTradeOutcomes maps each EXIT in the cycle's log back to the
// marked-to-market position it closed, yielding one win flag per
// realized trade. Driven by the log rather than portfolio membership
// so a position that exits and re-enters within the same cycle still
// reports its close.
func closedTradeOutcomes(preCycle domain.Portfolio, logs []pipeline.ExecutionLogEntry) []bool {
	bySymbol := make(map[string]domain.Position, len(preCycle))
	for _, pos := range preCycle {
		bySymbol[pos.Symbol] = pos
	}

	var outcomes []bool
	for _, entry := range logs {
		if entry.Kind != pipeline.ExecExit {
			continue
		}
		pos, held := bySymbol[entry.Symbol]
		if !held {
			continue
		}
		outcomes = append(outcomes, pos.UnrealizedPnL > 0)
	}
	return outcomes
}

// annotateTop requests a narrative for the best candidate without
// blocking the loop.
func (h *host) annotateTop(ctx context.Context, enriched []pipeline.EnrichedAsset) {
	if len(enriched) == 0 {
		return
	}
	top := enriched[0]
	go func() {
		note := h.annotate.Annotate(ctx, top)
		if note != narrative.Placeholder {
			log.Info().Str("symbol", top.Snapshot.Symbol).Msg(note)
		}
	}()
}
