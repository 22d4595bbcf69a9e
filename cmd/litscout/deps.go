// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"net/http"
	"os"

	"github.com/pdiddy/litscout/internal/extract"
	"github.com/pdiddy/litscout/internal/index"
	"github.com/pdiddy/litscout/internal/interest"
	"github.com/pdiddy/litscout/internal/memory"
	"github.com/pdiddy/litscout/internal/pipeline"
	"github.com/pdiddy/litscout/internal/search"
	"github.com/pdiddy/litscout/internal/summarize"
	"github.com/pdiddy/litscout/pkg/types"
)

// openIndex opens the semantic index, attaching an embedder when an
// embedding API key is configured. Without a key the index still serves
// metadata operations.
func openIndex(cfg types.IndexConfig) (*index.Store, error) {
	var embedder index.Embedder
	if cfg.EmbeddingAPIKey != "" {
		e, err := index.NewOpenAIEmbedder(cfg)
		if err != nil {
			return nil, err
		}
		embedder = e
	}
	return index.NewStore(cfg, embedder)
}

// buildOrchestrator wires a complete pipeline from cfg. fullText selects
// PDF extraction over abstract-only summarization. The caller owns closing
// the returned index store.
func buildOrchestrator(cfg types.PipelineConfig, fullText bool) (*pipeline.Orchestrator, *index.Store, error) {
	mem, err := memory.Open(cfg.Memory, os.Stderr)
	if err != nil {
		return nil, nil, err
	}

	idx, err := openIndex(cfg.Index)
	if err != nil {
		return nil, nil, err
	}

	summarizer, err := summarize.NewClaudeSummarizer(cfg.Summary)
	if err != nil {
		idx.Close()
		return nil, nil, err
	}

	deps := pipeline.Deps{
		Searcher: &search.ArxivSearcher{
			Client: &http.Client{Timeout: cfg.Search.Timeout},
		},
		Summarizer: summarizer,
		Assessor:   interest.KeywordAssessor{},
		Insights:   interest.AbstractInsights{},
		Memory:     mem,
		Index:      idx,
		Log:        os.Stdout,
	}
	if fullText {
		deps.Extractor = extract.NewPDFExtractor(
			&http.Client{Timeout: cfg.Extraction.Timeout}, cfg.Extraction)
	}

	o, err := pipeline.New(deps, cfg)
	if err != nil {
		idx.Close()
		return nil, nil, err
	}
	return o, idx, nil
}

// buildFeedbackOrchestrator wires the subset needed by feedback, prefs,
// and reflect commands: memory and index only, no API clients.
func buildFeedbackOrchestrator(cfg types.PipelineConfig) (*pipeline.Orchestrator, *index.Store, error) {
	mem, err := memory.Open(cfg.Memory, os.Stderr)
	if err != nil {
		return nil, nil, err
	}

	idx, err := openIndex(cfg.Index)
	if err != nil {
		return nil, nil, err
	}

	o, err := pipeline.New(pipeline.Deps{
		Searcher:   &search.ArxivSearcher{},
		Summarizer: noSummarizer{},
		Memory:     mem,
		Index:      idx,
		Log:        os.Stdout,
	}, cfg)
	if err != nil {
		idx.Close()
		return nil, nil, err
	}
	return o, idx, nil
}

// noSummarizer satisfies the summarizer dependency for commands that
// never run a query.
type noSummarizer struct{}

func (noSummarizer) Summarize(_ context.Context, _ types.Paper, _ string, _ summarize.Params) (*types.Summary, error) {
	return nil, summarize.ErrEmptyInput
}
