// Package narrative annotates top-ranked assets with a short prose
// summary from an external language model service. Strictly best
// effort: any failure yields a placeholder and never blocks a scan.
package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/MohammedBenaboud/Alphaseeker/src/application/pipeline"
)

// Placeholder is returned whenever the service is disabled or fails.
const Placeholder = "Narrative unavailable."

// Client calls the annotation endpoint.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	enabled    bool
}

// NewClient builds an annotator. A disabled or endpoint-less client is
// valid and always returns the placeholder.
func NewClient(endpoint, apiKey string, timeout time.Duration, enabled bool) *Client {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		apiKey:     apiKey,
		enabled:    enabled && endpoint != "",
	}
}

type annotateRequest struct {
	Prompt string `json:"prompt"`
}

type annotateResponse struct {
	Text string `json:"text"`
}

// Annotate produces a one-paragraph market note for the asset. The
// quantitative pipeline never consumes the result; it is operator
// color only.
func (c *Client) Annotate(ctx context.Context, asset pipeline.EnrichedAsset) string {
	if !c.enabled {
		return Placeholder
	}

	prompt := buildPrompt(asset)
	body, err := json.Marshal(annotateRequest{Prompt: prompt})
	if err != nil {
		return Placeholder
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Placeholder
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("symbol", asset.Snapshot.Symbol).Msg("Narrative request failed")
		return Placeholder
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Debug().Int("status", resp.StatusCode).
			Str("symbol", asset.Snapshot.Symbol).Msg("Narrative request rejected")
		return Placeholder
	}

	var out annotateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Placeholder
	}
	text := strings.TrimSpace(out.Text)
	if text == "" {
		return Placeholder
	}
	return text
}

func buildPrompt(asset pipeline.EnrichedAsset) string {
	return fmt.Sprintf(
		"Summarize in two sentences for a trader: %s (%s) scored %d, classified %s with %s confidence. Signals: %s. Risks: %s.",
		asset.Snapshot.Name,
		asset.Snapshot.Symbol,
		asset.Score,
		asset.Decision.State,
		asset.Decision.Confidence,
		strings.Join(asset.Explanation.SupportingSignals, "; "),
		strings.Join(asset.Explanation.RiskFactors, "; "),
	)
}
