// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summarize generates interest-guided paper summaries with the
// Anthropic API.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/pdiddy/litscout/pkg/types"
)

const (
	defaultModel    = "claude-haiku-4-5-20251001"
	defaultMaxWords = 150
	defaultMinWords = 30
)

// ErrEmptyInput means there was no source text to summarize. Callers must
// treat this as a precondition failure, not an API error.
var ErrEmptyInput = errors.New("no source text to summarize")

// Params steers one summarization call.
type Params struct {
	// Interests lists topics the user cares about; the summary emphasizes
	// findings related to them.
	Interests []string

	// Avoid lists topics the user has marked irrelevant.
	Avoid []string

	// StyleHint carries an optional instruction derived from accumulated
	// feedback (e.g. prefer shorter summaries).
	StyleHint string
}

// Summarizer produces a summary of a paper from its source text.
type Summarizer interface {
	Summarize(ctx context.Context, paper types.Paper, sourceText string, params Params) (*types.Summary, error)
}

// ClaudeSummarizer calls the Anthropic Messages API.
type ClaudeSummarizer struct {
	client anthropic.Client
	cfg    types.SummaryConfig
}

// NewClaudeSummarizer builds a summarizer from cfg. The API key is required.
func NewClaudeSummarizer(cfg types.SummaryConfig) (*ClaudeSummarizer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.MaxWords <= 0 {
		cfg.MaxWords = defaultMaxWords
	}
	if cfg.MinWords <= 0 {
		cfg.MinWords = defaultMinWords
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	return &ClaudeSummarizer{
		client: anthropic.NewClient(
			option.WithAPIKey(cfg.APIKey),
			option.WithMaxRetries(maxRetries),
		),
		cfg: cfg,
	}, nil
}

// Summarize sends the paper text to the model and returns the generated
// summary. Empty or whitespace-only source text returns ErrEmptyInput
// without calling the API.
func (s *ClaudeSummarizer) Summarize(ctx context.Context, paper types.Paper, sourceText string, params Params) (*types.Summary, error) {
	if strings.TrimSpace(sourceText) == "" {
		return nil, ErrEmptyInput
	}

	prompt := buildPrompt(paper, sourceText, s.cfg, params)

	msg, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(s.cfg.Model),
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic API request: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return nil, errors.New("model returned an empty summary")
	}

	return &types.Summary{
		PaperID:     paper.ID,
		Text:        text,
		Model:       s.cfg.Model,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// buildPrompt assembles the summarization prompt: paper context, length
// bounds, then the interest steering sections when present.
func buildPrompt(paper types.Paper, sourceText string, cfg types.SummaryConfig, params Params) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Summarize the following research paper in %d to %d words.\n",
		cfg.MinWords, cfg.MaxWords)
	sb.WriteString("Focus on the problem, the approach, and the key findings.\n")

	if len(params.Interests) > 0 {
		fmt.Fprintf(&sb, "The reader is especially interested in: %s. Emphasize findings related to these topics.\n",
			strings.Join(params.Interests, ", "))
	}
	if len(params.Avoid) > 0 {
		fmt.Fprintf(&sb, "The reader considers these topics irrelevant: %s. Do not dwell on them.\n",
			strings.Join(params.Avoid, ", "))
	}
	if params.StyleHint != "" {
		fmt.Fprintf(&sb, "Style note: %s.\n", params.StyleHint)
	}

	fmt.Fprintf(&sb, "\nTitle: %s\n", paper.Title)
	if len(paper.Authors) > 0 {
		fmt.Fprintf(&sb, "Authors: %s\n", strings.Join(paper.Authors, ", "))
	}
	fmt.Fprintf(&sb, "\nPaper text:\n%s\n", sourceText)

	return sb.String()
}
