// Package ai implements an allocator that delegates station selection to a
// generative language model. It is best-effort: on quota exhaustion or an
// unparsable reply it degrades to proposing no moves, so the fleet keeps its
// current positions.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kilianp07/sirene/core/logger"
	"github.com/kilianp07/sirene/core/model"
	"github.com/kilianp07/sirene/core/rebalance"
)

// Config holds the connection settings for the language-model API.
type Config struct {
	APIKey     string        `json:"api_key"`
	Model      string        `json:"model"`
	Endpoint   string        `json:"endpoint"`
	MaxRetries int           `json:"max_retries"`
	BaseDelay  time.Duration `json:"base_delay"`
	Timeout    time.Duration `json:"timeout"`
}

// SetDefaults fills unset fields with working defaults.
func (c *Config) SetDefaults() {
	if c.Model == "" {
		c.Model = "gemini-2.0-flash-exp"
	}
	if c.Endpoint == "" {
		c.Endpoint = "https://generativelanguage.googleapis.com/v1beta"
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 5
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = 10 * time.Second
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
}

// Allocator asks the model for new unit positions. Proposals referencing
// unknown units or invalid coordinates are dropped individually.
type Allocator struct {
	cfg    Config
	client *http.Client
	log    logger.Logger
}

// New returns an AI-assisted allocator.
func New(cfg Config, log logger.Logger) (*Allocator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ai: api key is required")
	}
	cfg.SetDefaults()
	if log == nil {
		log = nopLogger{}
	}
	return &Allocator{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log,
	}, nil
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// proposal mirrors the JSON objects the prompt asks the model to return.
type proposal struct {
	ID        string  `json:"id"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	StationID string  `json:"station_id"`
}

func buildPrompt(idle map[model.UnitType][]model.Unit, stations []model.Station, sc model.Scenario) string {
	var units []model.Unit
	for _, t := range model.UnitTypes() {
		units = append(units, idle[t]...)
	}
	unitsJSON, _ := json.MarshalIndent(units, "", "  ")
	stationsJSON, _ := json.MarshalIndent(stations, "", "  ")
	scenarioJSON, _ := json.Marshal(sc)

	var b strings.Builder
	b.WriteString("You are an AI dispatcher for emergency services.\n\n")
	fmt.Fprintf(&b, "Context:\n- We have %d emergency vehicles (ambulance, police, fire).\n", len(units))
	fmt.Fprintf(&b, "- We have %d stations.\n", len(stations))
	fmt.Fprintf(&b, "- Current environmental factors: %s\n\n", scenarioJSON)
	b.WriteString("Task:\n")
	b.WriteString("- Assign each vehicle to a station (station_id) or a specific lat/lon to optimize coverage.\n")
	b.WriteString("- High call volume expected? Move units to high-density areas.\n\n")
	fmt.Fprintf(&b, "Stations:\n%s\n\nVehicles (Current State):\n%s\n\n", stationsJSON, unitsJSON)
	b.WriteString("Output Format:\n")
	b.WriteString("Return ONLY a JSON array of objects. Each object must have:\n")
	b.WriteString("- \"id\": vehicle id\n- \"lat\": new latitude\n- \"lon\": new longitude\n")
	b.WriteString("- \"station_id\": (optional) if at a station\n")
	b.WriteString("Do not include markdown formatting or explanations. Just the JSON array.\n")
	return b.String()
}

// Allocate asks the model for placements. Rate-limit responses are retried
// with exponential backoff; any terminal failure returns no placements and no
// error so the caller treats the run as a no-op.
func (a *Allocator) Allocate(ctx context.Context, idle map[model.UnitType][]model.Unit, stations []model.Station, sc model.Scenario) ([]rebalance.Placement, error) {
	prompt := buildPrompt(idle, stations, sc)

	text, err := a.generate(ctx, prompt)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		a.log.Warnf("model call failed, keeping current positions: %v", err)
		return nil, nil
	}

	proposals, err := parseProposals(text)
	if err != nil {
		a.log.Warnf("unparsable model reply, keeping current positions: %v", err)
		return nil, nil
	}

	// index the idle pool so proposals for unknown or busy units are dropped
	types := make(map[string]model.UnitType)
	for t, units := range idle {
		for _, u := range units {
			types[u.ID] = t
		}
	}

	placements := make([]rebalance.Placement, 0, len(proposals))
	for _, p := range proposals {
		t, ok := types[p.ID]
		if !ok {
			a.log.Warnf("dropping proposal for unknown unit %q", p.ID)
			continue
		}
		pos := model.Coordinate{Lat: p.Lat, Lon: p.Lon}
		if err := pos.Validate(); err != nil {
			a.log.Warnf("dropping proposal for unit %s: %v", p.ID, err)
			continue
		}
		placements = append(placements, rebalance.Placement{
			UnitID:    p.ID,
			UnitType:  t,
			StationID: p.StationID,
			Position:  pos,
		})
	}
	return placements, nil
}

func (a *Allocator) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(a.cfg.Endpoint, "/"), a.cfg.Model, a.cfg.APIKey)

	var lastErr error
	for attempt := 0; attempt < a.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := a.cfg.BaseDelay * (1 << (attempt - 1))
			a.log.Warnf("rate limit hit, retrying in %s (attempt %d/%d)", wait, attempt+1, a.cfg.MaxRetries)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(wait):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return "", err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := a.client.Do(req)
		if err != nil {
			return "", err
		}
		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return "", err
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited: %s", strings.TrimSpace(string(data)))
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("model API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
		}

		var out generateResponse
		if err := json.Unmarshal(data, &out); err != nil {
			return "", fmt.Errorf("decode response: %w", err)
		}
		if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
			return "", fmt.Errorf("empty response from model")
		}
		return out.Candidates[0].Content.Parts[0].Text, nil
	}
	return "", fmt.Errorf("max retries exceeded: %w", lastErr)
}

// parseProposals strips optional markdown fences and decodes the JSON array.
func parseProposals(text string) ([]proposal, error) {
	t := strings.TrimSpace(text)
	t = strings.TrimPrefix(t, "```json")
	t = strings.TrimPrefix(t, "```")
	t = strings.TrimSuffix(t, "```")
	t = strings.TrimSpace(t)

	var proposals []proposal
	if err := json.Unmarshal([]byte(t), &proposals); err != nil {
		return nil, err
	}
	return proposals, nil
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
