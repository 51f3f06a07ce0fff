// Package claude turns a computed schedule report into a short written
// briefing using the Anthropic API.
package claude

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/joshharrison/gantry/internal/engine"
	"github.com/joshharrison/gantry/internal/health"
)

const defaultModel = "claude-sonnet-4-5"

// maxDigestRows caps how many late activities are listed in the prompt.
const maxDigestRows = 15

// Briefing is the structured narrative returned by the model.
type Briefing struct {
	Headline string   `json:"headline"`
	Risks    []string `json:"risks"`
	Summary  string   `json:"summary"`
}

// Client wraps the Anthropic SDK.
type Client struct {
	inner anthropic.Client
	model anthropic.Model
}

// NewClient creates a client. apiKey defaults to ANTHROPIC_API_KEY.
func NewClient(apiKey, model string) (*Client, error) {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
	}

	m := anthropic.Model(defaultModel)
	if model != "" {
		m = anthropic.Model(model)
	}
	return &Client{inner: anthropic.NewClient(option.WithAPIKey(apiKey)), model: m}, nil
}

const briefingPrompt = `You are a construction project controls lead writing a weekly schedule briefing.

You will receive a digest of schedule analytics for one project: headline KPIs, delay root-cause buckets,
cost burn status, responsibility load and the most delayed activities.

Rules:
- Use only the numbers in the digest. Do not invent dates, people or amounts.
- Name the dominant delay cause and the activities driving it.
- Mention a cost overrun only if the digest reports one.
- Keep the summary under 120 words.

Return your answer as JSON with this exact structure:
{
  "headline": "<one sentence>",
  "risks": ["<short risk statement>", "..."],
  "summary": "<one paragraph>"
}

Return ONLY the JSON object. No markdown fences, no commentary outside the JSON.
`

// Digest is the compact view of a report sent to the model.
type Digest struct {
	Project      string             `json:"project"`
	Version      string             `json:"version"`
	AsOf         string             `json:"as_of"`
	Window       string             `json:"window"`
	KPIs         any                `json:"kpis"`
	Health       map[string]int     `json:"health"`
	DelayBuckets map[string]float64 `json:"delay_buckets"`
	Overloaded   []string           `json:"overloaded_people"`
	CriticalPath []string           `json:"critical_path,omitempty"`
	LateActivity []LateActivity     `json:"late_activities"`
	Warnings     []string           `json:"warnings,omitempty"`
}

// LateActivity is one delayed row in the digest.
type LateActivity struct {
	Code      string `json:"code"`
	Activity  string `json:"activity"`
	Module    string `json:"module"`
	Owner     string `json:"owner"`
	Status    string `json:"status"`
	DelayDays int    `json:"delay_days"`
	SlipDays  int    `json:"start_slip_days"`
}

// NewDigest extracts the prompt payload from a report.
func NewDigest(project, version string, r *engine.Report) Digest {
	d := Digest{
		Project:      project,
		Version:      version,
		AsOf:         r.Now,
		Window:       fmt.Sprintf("%s to %s (%d days)", r.BaselineStart, r.ProjectEnd, r.TotalDays),
		KPIs:         r.KPIs,
		Health:       make(map[string]int, len(r.Health.Counts)),
		DelayBuckets: make(map[string]float64, len(r.Delay.Buckets)),
		Overloaded:   r.Responsibility.Overloaded,
		CriticalPath: r.CriticalPath.Codes,
		Warnings:     r.Warnings,
	}
	for st, n := range r.Health.Counts {
		d.Health[st.String()] = n
	}
	for _, b := range r.Delay.Buckets {
		d.DelayBuckets[b.Name.String()] = b.DelayDays
	}

	for _, row := range r.Rows {
		if row.Status != health.Delayed && row.DelayDays <= 0 {
			continue
		}
		d.LateActivity = append(d.LateActivity, LateActivity{
			Code:      row.Code(),
			Activity:  row.Activity,
			Module:    row.Module,
			Owner:     row.Owner,
			Status:    row.Status.String(),
			DelayDays: row.DelayDays,
			SlipDays:  row.StartSlipDays,
		})
	}
	sort.SliceStable(d.LateActivity, func(i, j int) bool {
		a, b := d.LateActivity[i], d.LateActivity[j]
		return max(a.DelayDays, a.SlipDays) > max(b.DelayDays, b.SlipDays)
	})
	if len(d.LateActivity) > maxDigestRows {
		d.LateActivity = d.LateActivity[:maxDigestRows]
	}
	return d
}

// buildPrompt renders the user message for a digest.
func buildPrompt(d Digest) (string, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal digest: %w", err)
	}
	return "## Schedule digest\n\n" + string(data), nil
}

// Brief asks the model for a briefing on the digest.
func (c *Client) Brief(ctx context.Context, d Digest) (*Briefing, error) {
	prompt, err := buildPrompt(d)
	if err != nil {
		return nil, err
	}

	resp, err := c.inner.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: int64(2048),
		System: []anthropic.TextBlockParam{
			{Text: briefingPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("claude API call: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return parseBriefing(text.String())
}

func parseBriefing(text string) (*Briefing, error) {
	text = stripJSONFences(text)
	var b Briefing
	if err := json.Unmarshal([]byte(text), &b); err != nil {
		return nil, fmt.Errorf("parse claude response: %w\nraw: %s", err, text)
	}
	return &b, nil
}

// stripJSONFences removes markdown code fences the model sometimes adds.
func stripJSONFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	return s
}
