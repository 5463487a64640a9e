// Package extract drives the section-by-section LLM extraction of term
// sheet fields from loaded source documents.
package extract

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/crestline-vc/termsheet-cli/internal/model"
	"github.com/crestline-vc/termsheet-cli/pkg/anthropic"
)

// extractionTemperature keeps the model near-deterministic so repeated runs
// over the same sources agree.
const extractionTemperature = 0.1

// Options tunes the extractor. Zero values fall back to defaults.
type Options struct {
	Model       string
	MaxTokens   int64
	Pacing      time.Duration // minimum spacing between section calls
	CallTimeout time.Duration // per-call deadline
}

// Extractor runs one LLM call per schema section and assembles the results
// into a TermSheet.
type Extractor struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	limiter     *rate.Limiter
	callTimeout time.Duration
}

// New builds an Extractor around an Anthropic client.
func New(client anthropic.Client, opts Options) *Extractor {
	if opts.Model == "" {
		opts.Model = "claude-sonnet-4-5-20250929"
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = 4096
	}
	if opts.Pacing == 0 {
		opts.Pacing = 5 * time.Second
	}
	if opts.CallTimeout == 0 {
		opts.CallTimeout = 2 * time.Minute
	}

	return &Extractor{
		client:      client,
		model:       opts.Model,
		maxTokens:   opts.MaxTokens,
		limiter:     rate.NewLimiter(rate.Every(opts.Pacing), 1),
		callTimeout: opts.CallTimeout,
	}
}

// ExtractAll extracts every section in schema order and returns the
// assembled term sheet plus one call record per completed section. Any
// failed call or unparseable response aborts the run: no partial term
// sheet is ever returned, only the usage records accumulated so far.
func (e *Extractor) ExtractAll(ctx context.Context, sources map[string]string) (*model.TermSheet, []model.CallRecord, error) {
	ts := model.NewTermSheet()
	calls := make([]model.CallRecord, 0, len(model.SectionNames))

	for i, name := range model.SectionNames {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, calls, eris.Wrap(err, "extract: pacing wait")
		}

		zap.L().Info("extracting section",
			zap.String("section", name),
			zap.Int("index", i+1),
			zap.Int("total", len(model.SectionNames)),
		)

		section, usage, err := e.extractSection(ctx, name, sources)
		if err != nil {
			return nil, calls, err
		}

		calls = append(calls, model.CallRecord{
			Section:      name,
			InputTokens:  int(usage.InputTokens),
			OutputTokens: int(usage.OutputTokens),
		})
		if err := ts.SetSection(section); err != nil {
			return nil, calls, err
		}
	}

	return ts, calls, nil
}

// extractSection issues one model call for a section and parses the reply.
func (e *Extractor) extractSection(ctx context.Context, name string, sources map[string]string) (*model.Section, anthropic.TokenUsage, error) {
	prompt, ok := sectionPrompts[name]
	if !ok {
		return nil, anthropic.TokenUsage{}, eris.Errorf("extract: no prompt for section %q", name)
	}

	callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()

	temp := extractionTemperature
	resp, err := e.client.CreateMessage(callCtx, anthropic.MessageRequest{
		Model:     e.model,
		MaxTokens: e.maxTokens,
		System:    systemPrompt,
		Messages: []anthropic.Message{
			{Role: "user", Content: buildUserPrompt(prompt, sources)},
		},
		Temperature: &temp,
	})
	if err != nil {
		return nil, anthropic.TokenUsage{}, eris.Wrapf(err, "extract: section %s call failed", name)
	}

	section, err := parseSection(name, anthropic.Text(resp))
	if err != nil {
		return nil, resp.Usage, err
	}

	return section, resp.Usage, nil
}
