// Package ingest pulls market pair data from a DexScreener-compatible
// API and normalizes it into asset snapshots for the scan pipeline.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/MohammedBenaboud/Alphaseeker/src/domain"
)

// Source delivers one batch of snapshots per call.
type Source interface {
	Fetch(ctx context.Context, query string) ([]domain.AssetSnapshot, error)
}

// pairResponse mirrors the upstream search payload.
type pairResponse struct {
	Pairs []pairData `json:"pairs"`
}

type pairData struct {
	ChainID     string `json:"chainId"`
	DexID       string `json:"dexId"`
	PairAddress string `json:"pairAddress"`
	BaseToken   struct {
		Address string `json:"address"`
		Name    string `json:"name"`
		Symbol  string `json:"symbol"`
	} `json:"baseToken"`
	PriceUSD    string `json:"priceUsd"`
	PriceChange struct {
		M5  float64 `json:"m5"`
		H1  float64 `json:"h1"`
		H24 float64 `json:"h24"`
	} `json:"priceChange"`
	Liquidity struct {
		USD float64 `json:"usd"`
	} `json:"liquidity"`
	Volume struct {
		H24 float64 `json:"h24"`
		H1  float64 `json:"h1"`
	} `json:"volume"`
	MarketCap float64 `json:"marketCap"`
	FDV       float64 `json:"fdv"`
}

// Client fetches live pair data with rate limiting and a circuit
// breaker. It remembers the last good batch so a transient upstream
// failure degrades to stale data instead of an empty scan.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	limiter      *rate.Limiter
	breaker      *gobreaker.CircuitBreaker
	minLiquidity float64

	lastGood   []domain.AssetSnapshot
	lastGoodAt time.Time
}

// Options configures a Client.
type Options struct {
	BaseURL         string
	RequestTimeout  time.Duration
	RequestsPerSec  float64
	BurstAllowance  int
	MinLiquidityUSD float64
}

// NewClient builds a live data client.
func NewClient(opts Options) *Client {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	if opts.RequestsPerSec <= 0 {
		opts.RequestsPerSec = 2
	}
	if opts.BurstAllowance <= 0 {
		opts.BurstAllowance = 1
	}
	if opts.MinLiquidityUSD <= 0 {
		opts.MinLiquidityUSD = 10000
	}

	settings := gobreaker.Settings{Name: "market-data"}
	settings.Interval = 60 * time.Second
	settings.Timeout = 60 * time.Second
	settings.ReadyToTrip = func(counts gobreaker.Counts) bool {
		if counts.ConsecutiveFailures >= 3 {
			return true
		}
		total := counts.Requests
		if total < 20 {
			return false
		}
		return float64(counts.TotalFailures)/float64(total) > 0.05
	}

	return &Client{
		httpClient:   &http.Client{Timeout: opts.RequestTimeout},
		baseURL:      opts.BaseURL,
		limiter:      rate.NewLimiter(rate.Limit(opts.RequestsPerSec), opts.BurstAllowance),
		breaker:      gobreaker.NewCircuitBreaker(settings),
		minLiquidity: opts.MinLiquidityUSD,
	}
}

// Fetch returns the current snapshot batch for query. On upstream
// failure it serves the last good batch when one exists.
func (c *Client) Fetch(ctx context.Context, query string) ([]domain.AssetSnapshot, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetchOnce(ctx, query)
	})
	if err != nil {
		if c.lastGood != nil {
			log.Warn().Err(err).
				Time("last_good_at", c.lastGoodAt).
				Msg("Upstream fetch failed, serving last good batch")
			return append([]domain.AssetSnapshot(nil), c.lastGood...), nil
		}
		return nil, fmt.Errorf("fetch market data: %w", err)
	}

	snaps := result.([]domain.AssetSnapshot)
	c.lastGood = append([]domain.AssetSnapshot(nil), snaps...)
	c.lastGoodAt = time.Now()
	return snaps, nil
}

func (c *Client) fetchOnce(ctx context.Context, query string) ([]domain.AssetSnapshot, error) {
	endpoint := fmt.Sprintf("%s/latest/dex/search?q=%s", c.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var payload pairResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	snaps := Normalize(payload.Pairs, c.minLiquidity)
	log.Debug().Int("pairs", len(payload.Pairs)).Int("kept", len(snaps)).
		Str("query", query).Msg("Fetched market data")
	return snaps, nil
}

// Normalize converts raw pairs into snapshots. Pairs below the
// liquidity floor or with no daily volume are dropped, and tokens
// listed on several pools collapse to their deepest pool.
func Normalize(pairs []pairData, minLiquidityUSD float64) []domain.AssetSnapshot {
	best := make(map[string]pairData)
	order := make([]string, 0, len(pairs))

	for _, p := range pairs {
		if p.Liquidity.USD < minLiquidityUSD {
			continue
		}
		if p.Volume.H24 <= 0 {
			continue
		}
		addr := p.BaseToken.Address
		if addr == "" {
			addr = p.PairAddress
		}
		if prev, seen := best[addr]; seen {
			if p.Liquidity.USD > prev.Liquidity.USD {
				best[addr] = p
			}
			continue
		}
		best[addr] = p
		order = append(order, addr)
	}

	snaps := make([]domain.AssetSnapshot, 0, len(order))
	for _, addr := range order {
		p := best[addr]

		price, err := strconv.ParseFloat(p.PriceUSD, 64)
		if err != nil || price <= 0 {
			continue
		}

		mcap := p.MarketCap
		if mcap <= 0 {
			mcap = p.FDV
		}

		snap := domain.AssetSnapshot{
			ID:                addr,
			Symbol:            p.BaseToken.Symbol,
			Name:              p.BaseToken.Name,
			Price:             price,
			MarketCap:         mcap,
			Volume24h:         p.Volume.H24,
			Liquidity:         p.Liquidity.USD,
			VolatilityIndex:   volatilityIndex(p.PriceChange.M5, p.PriceChange.H1),
			VolumeSpikeFactor: volumeSpike(p.Volume.H1, p.Volume.H24),
			PriceChange: domain.PriceChange{
				M5:  p.PriceChange.M5,
				H1:  p.PriceChange.H1,
				H24: p.PriceChange.H24,
			},
			Tags: []string{p.ChainID, p.DexID},
		}
		snaps = append(snaps, snap.Sanitize())
	}
	return snaps
}

// volatilityIndex derives a 0..100 index from short-horizon price
// swings, weighting the 5-minute move heaviest.
func volatilityIndex(m5, h1 float64) float64 {
	raw := (4*abs(m5) + abs(h1)) * 2
	if raw > 100 {
		return 100
	}
	if raw < 0 {
		return 0
	}
	return raw
}

// volumeSpike compares the hourly run rate against the trailing day.
// 1.0 means volume is arriving exactly on trend.
func volumeSpike(h1, h24 float64) float64 {
	if h24 <= 0 {
		return 0
	}
	return h1 * 24 / h24
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
