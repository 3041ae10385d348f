package ingest

import (
	"context"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchPayload = `{
  "pairs": [
    {
      "chainId": "solana", "dexId": "raydium", "pairAddress": "pool-1",
      "baseToken": {"address": "tok-alpha", "name": "Alpha", "symbol": "ALPHA"},
      "priceUsd": "1.25",
      "priceChange": {"m5": 2.0, "h1": 5.0, "h24": 12.0},
      "liquidity": {"usd": 150000},
      "volume": {"h24": 240000, "h1": 30000},
      "marketCap": 5000000
    },
    {
      "chainId": "solana", "dexId": "orca", "pairAddress": "pool-2",
      "baseToken": {"address": "tok-alpha", "name": "Alpha", "symbol": "ALPHA"},
      "priceUsd": "1.26",
      "priceChange": {"m5": 2.0, "h1": 5.0, "h24": 12.0},
      "liquidity": {"usd": 400000},
      "volume": {"h24": 100000, "h1": 4000},
      "marketCap": 5000000
    },
    {
      "chainId": "solana", "dexId": "raydium", "pairAddress": "pool-3",
      "baseToken": {"address": "tok-dust", "name": "Dust", "symbol": "DUST"},
      "priceUsd": "0.002",
      "priceChange": {"m5": 0, "h1": 0, "h24": 0},
      "liquidity": {"usd": 500},
      "volume": {"h24": 100, "h1": 10},
      "marketCap": 20000
    },
    {
      "chainId": "solana", "dexId": "raydium", "pairAddress": "pool-4",
      "baseToken": {"address": "tok-dead", "name": "Dead", "symbol": "DEAD"},
      "priceUsd": "0.5",
      "priceChange": {"m5": 0, "h1": 0, "h24": 0},
      "liquidity": {"usd": 90000},
      "volume": {"h24": 0, "h1": 0},
      "marketCap": 1000000
    },
    {
      "chainId": "solana", "dexId": "raydium", "pairAddress": "pool-5",
      "baseToken": {"address": "tok-fdv", "name": "FdvOnly", "symbol": "FDVO"},
      "priceUsd": "0.8",
      "priceChange": {"m5": -1.0, "h1": 3.0, "h24": 6.0},
      "liquidity": {"usd": 60000},
      "volume": {"h24": 48000, "h1": 2000},
      "marketCap": 0, "fdv": 2500000
    }
  ]
}`

func testClient(baseURL string) *Client {
	return NewClient(Options{
		BaseURL:         baseURL,
		RequestsPerSec:  1000,
		BurstAllowance:  1000,
		MinLiquidityUSD: 10000,
	})
}

func TestClientFetch_NormalizesPairs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest/dex/search", r.URL.Path)
		assert.Equal(t, "SOL", r.URL.Query().Get("q"))
		w.Write([]byte(searchPayload))
	}))
	defer srv.Close()

	snaps, err := testClient(srv.URL).Fetch(context.Background(), "SOL")
	require.NoError(t, err)
	require.Len(t, snaps, 2, "dust and dead tokens dropped, duplicate collapsed")

	alpha := snaps[0]
	assert.Equal(t, "tok-alpha", alpha.ID)
	assert.Equal(t, 400000.0, alpha.Liquidity, "deepest pool wins for duplicated tokens")
	assert.Equal(t, 1.26, alpha.Price)
	// h1 run rate 4000*24 against 100000 daily.
	assert.InDelta(t, 0.96, alpha.VolumeSpikeFactor, 1e-9)
	// (4*|2| + |5|) * 2 = 26.
	assert.InDelta(t, 26.0, alpha.VolatilityIndex, 1e-9)
	assert.Equal(t, []string{"solana", "orca"}, alpha.Tags)

	fdvo := snaps[1]
	assert.Equal(t, 2500000.0, fdvo.MarketCap, "fdv backfills missing market cap")
}

func TestClientFetch_ServesLastGoodOnFailure(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(searchPayload))
	}))
	defer srv.Close()

	client := testClient(srv.URL)
	ctx := context.Background()

	first, err := client.Fetch(ctx, "SOL")
	require.NoError(t, err)
	require.NotEmpty(t, first)

	fail.Store(true)
	second, err := client.Fetch(ctx, "SOL")
	require.NoError(t, err, "stale batch beats an empty scan")
	assert.Equal(t, first, second)
}

func TestClientFetch_FailsWithoutHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Fetch(context.Background(), "SOL")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
}

func TestVolatilityIndex(t *testing.T) {
	assert.Equal(t, 0.0, volatilityIndex(0, 0))
	assert.InDelta(t, 26.0, volatilityIndex(2, 5), 1e-9)
	assert.InDelta(t, 26.0, volatilityIndex(-2, -5), 1e-9, "direction does not matter")
	assert.Equal(t, 100.0, volatilityIndex(50, 10), "clamped at 100")
}

func TestSyntheticSource(t *testing.T) {
	src := NewSyntheticSource(rand.New(rand.NewSource(3)))
	ctx := context.Background()

	first, err := src.Fetch(ctx, "")
	require.NoError(t, err)
	require.Len(t, first, 8)

	for _, snap := range first {
		assert.NotEmpty(t, snap.ID)
		assert.Greater(t, snap.Price, 0.0)
		assert.GreaterOrEqual(t, snap.VolatilityIndex, 0.0)
		assert.LessOrEqual(t, snap.VolatilityIndex, 100.0)
		assert.GreaterOrEqual(t, snap.VolumeSpikeFactor, 0.0)
	}

	// Prices drift between calls.
	second, err := src.Fetch(ctx, "")
	require.NoError(t, err)
	drifted := false
	for i := range first {
		if first[i].Price != second[i].Price {
			drifted = true
		}
	}
	assert.True(t, drifted, "consecutive batches should not be identical")
}
