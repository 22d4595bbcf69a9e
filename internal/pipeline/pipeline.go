// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline orchestrates one discovery run: search, interest
// assessment, text retrieval, summarization, and persistence. Every
// collaborator is injected; the orchestrator holds no globals.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pdiddy/litscout/internal/interest"
	"github.com/pdiddy/litscout/internal/reflection"
	"github.com/pdiddy/litscout/internal/search"
	"github.com/pdiddy/litscout/internal/summarize"
	"github.com/pdiddy/litscout/pkg/types"
)

// Extractor turns a paper into source text. It mirrors the extract
// package's interface so tests can substitute fakes without HTTP.
type Extractor interface {
	Extract(ctx context.Context, paper types.Paper) (string, error)
}

// MemoryStore is the slice of the memory store the pipeline needs.
type MemoryStore interface {
	Preferences() types.Preferences
	AddPreferredKeyword(keyword string) error
	AddIrrelevantKeyword(keyword string) error
	RecordSummaryFeedback(title, rating, comment, summaryText string) error
	RecordInterestFeedback(fb types.InterestFeedback) error
	AllFeedback() map[string][]types.SummaryFeedback
	AllInterestFeedback() []types.InterestFeedback
}

// SummaryIndex is the slice of the semantic index the pipeline needs.
type SummaryIndex interface {
	Upsert(ctx context.Context, paper types.Paper, summary *types.Summary, extra map[string]any) error
	UpdateMetadata(ctx context.Context, id string, patch map[string]any) error
}

// Deps collects every collaborator of one orchestrator instance.
// Searcher, Summarizer, Memory, and Index are required. A nil Extractor
// selects abstract-only mode; a nil Assessor skips interest assessment;
// a nil Insights skips insight extraction.
type Deps struct {
	Searcher   search.Searcher
	Extractor  Extractor
	Summarizer summarize.Summarizer
	Assessor   interest.Assessor
	Insights   interest.InsightExtractor
	Memory     MemoryStore
	Index      SummaryIndex
	Log        io.Writer
}

// Orchestrator runs discovery queries and routes feedback to the stores.
type Orchestrator struct {
	deps Deps
	cfg  types.PipelineConfig
	log  io.Writer

	// sleep is stubbed in tests so item delays do not slow the suite.
	sleep func(time.Duration)
}

// New builds an orchestrator from deps and cfg.
func New(deps Deps, cfg types.PipelineConfig) (*Orchestrator, error) {
	if deps.Searcher == nil {
		return nil, errors.New("searcher is required")
	}
	if deps.Summarizer == nil {
		return nil, errors.New("summarizer is required")
	}
	if deps.Memory == nil {
		return nil, errors.New("memory store is required")
	}
	if deps.Index == nil {
		return nil, errors.New("index is required")
	}

	log := deps.Log
	if log == nil {
		log = io.Discard
	}

	return &Orchestrator{
		deps:  deps,
		cfg:   cfg,
		log:   log,
		sleep: time.Sleep,
	}, nil
}

// RunOptions tunes one query run.
type RunOptions struct {
	// MaxItems overrides the configured per-run candidate cap.
	MaxItems int
}

// RunQuery executes one discovery run. The effective keyword set is the
// caller's keywords followed by stored preferred keywords not already
// present. A run returning zero candidates yields OutcomeNoResults; one
// candidate's failure never stops the others.
func (o *Orchestrator) RunQuery(ctx context.Context, keywords []string, opts RunOptions) (types.RunResult, error) {
	cleaned := cleanKeywords(keywords)
	if len(cleaned) == 0 {
		return types.RunResult{}, &ValidationError{Reason: "at least one non-blank keyword is required"}
	}

	prefs := o.deps.Memory.Preferences()
	effective := mergeKeywords(cleaned, prefs.Preferred)

	fmt.Fprintf(o.log, "searching %s for: %s\n", o.deps.Searcher.Name(), strings.Join(effective, ", "))

	var papers []types.Paper
	err := o.withStageTimeout(ctx, func(ctx context.Context) error {
		var searchErr error
		papers, searchErr = o.deps.Searcher.Search(ctx, effective, o.cfg.Search)
		return searchErr
	})
	if err != nil {
		return types.RunResult{}, &SearchError{Err: err}
	}

	if len(papers) == 0 {
		fmt.Fprintln(o.log, "no papers found")
		return types.RunResult{Outcome: types.OutcomeNoResults, Keywords: effective}, nil
	}

	maxItems := opts.MaxItems
	if maxItems <= 0 {
		maxItems = o.cfg.MaxItems
	}
	if maxItems <= 0 {
		maxItems = 5
	}
	if len(papers) > maxItems {
		papers = papers[:maxItems]
	}

	// The reflection report and summarization params depend only on state
	// that cannot change mid-run, so they are computed once here.
	params := summarize.Params{
		Interests: prefs.Preferred,
		Avoid:     prefs.Irrelevant,
	}
	if report := o.ReflectAndSuggest(); report.Suggestion == reflection.SuggestionShorter {
		params.StyleHint = report.Suggestion
	}
	sourceQuery := strings.Join(effective, ", ")

	result := types.RunResult{Outcome: types.OutcomeProcessed, Keywords: effective}
	for i, paper := range papers {
		if i > 0 && o.cfg.ItemDelay > 0 {
			o.sleep(o.cfg.ItemDelay)
		}
		item := o.processItem(ctx, paper, prefs, params, sourceQuery)
		result.Items = append(result.Items, item)

		if item.Status == types.StatusProcessed {
			fmt.Fprintf(o.log, "processed %s: %s\n", paper.ID, paper.Title)
		} else {
			fmt.Fprintf(o.log, "%s %s: %s\n", item.Status, paper.ID, item.Err)
		}
	}

	fmt.Fprintf(o.log, "\nprocessed: %d, failed: %d\n", result.Processed(), result.Failed())
	return result, nil
}

// processItem walks one candidate through source selection,
// summarization, interest assessment, and storage. It always returns a
// result; failures are recorded, never propagated.
func (o *Orchestrator) processItem(ctx context.Context, paper types.Paper, prefs types.Preferences, params summarize.Params, sourceQuery string) types.ItemResult {
	item := types.ItemResult{Paper: paper}

	// Source text selection: full text when an extractor is wired,
	// otherwise the abstract.
	var sourceText string
	if o.deps.Extractor != nil {
		if paper.PDFURL == "" {
			item.Status = types.StatusSkippedNoSource
			item.Err = "no document URL"
			return item
		}
		err := o.withStageTimeout(ctx, func(ctx context.Context) error {
			var exErr error
			sourceText, exErr = o.deps.Extractor.Extract(ctx, paper)
			return exErr
		})
		if err != nil {
			item.Status = types.StatusFailedExtraction
			item.Err = err.Error()
			return item
		}
	} else {
		if strings.TrimSpace(paper.Abstract) == "" {
			item.Status = types.StatusSkippedNoSource
			item.Err = "no abstract"
			return item
		}
		sourceText = paper.Abstract
	}

	var summary *types.Summary
	err := o.withStageTimeout(ctx, func(ctx context.Context) error {
		var sumErr error
		summary, sumErr = o.deps.Summarizer.Summarize(ctx, paper, sourceText, params)
		return sumErr
	})
	if err != nil {
		item.Status = types.StatusFailedSummarization
		item.Err = err.Error()
		return item
	}
	item.Summary = summary

	// Assessment runs on the finished summary. A failing assessor keeps
	// the paper interesting rather than dropping it.
	item.Interesting = true
	if o.deps.Assessor != nil {
		assessment, err := o.deps.Assessor.Assess(ctx, paper, summary.Text, prefs)
		if err != nil {
			fmt.Fprintf(o.log, "warning: interest assessment failed for %s: %v\n", paper.ID, err)
		} else {
			item.Interesting = assessment.Interesting
		}
	}

	if item.Interesting && o.deps.Insights != nil {
		if insights, err := o.deps.Insights.Insights(ctx, paper, summary.Text); err == nil {
			item.Insights = insights
		}
	}

	extra := map[string]any{"source_query": sourceQuery}
	if err := o.deps.Index.Upsert(ctx, paper, summary, extra); err != nil {
		item.Status = types.StatusFailedStorage
		item.Err = err.Error()
		return item
	}

	item.Status = types.StatusProcessed
	return item
}

// withStageTimeout runs fn under the configured per-stage deadline, or
// directly when no deadline is configured.
func (o *Orchestrator) withStageTimeout(ctx context.Context, fn func(context.Context) error) error {
	if o.cfg.StageTimeout <= 0 {
		return fn(ctx)
	}
	stageCtx, cancel := context.WithTimeout(ctx, o.cfg.StageTimeout)
	defer cancel()
	return fn(stageCtx)
}

// RecordInterestFeedback stores structured feedback in memory and patches
// the paper's index metadata. A paper missing from the index is reported
// on the log but does not fail the operation; the memory record is the
// source of truth.
func (o *Orchestrator) RecordInterestFeedback(ctx context.Context, fb types.InterestFeedback) error {
	if fb.PaperID == "" {
		return &ValidationError{Reason: "paper id is required"}
	}
	if fb.Rating < 0 || fb.Rating > 5 {
		return &ValidationError{Reason: "rating must be between 1 and 5"}
	}
	if fb.RecordedAt.IsZero() {
		fb.RecordedAt = time.Now().UTC()
	}

	if err := o.deps.Memory.RecordInterestFeedback(fb); err != nil {
		return &StorageError{Err: err}
	}

	patch := map[string]any{
		"feedback_at": fb.RecordedAt.Format(time.RFC3339),
	}
	if fb.Rating > 0 {
		patch["user_rating"] = fb.Rating
	}
	if len(fb.Reasons) > 0 {
		patch["user_notes"] = strings.Join(fb.Reasons, "; ")
	}

	if err := o.deps.Index.UpdateMetadata(ctx, fb.PaperID, patch); err != nil {
		fmt.Fprintf(o.log, "warning: index metadata not updated for %s: %v\n", fb.PaperID, err)
	}
	return nil
}

// RecordSummaryFeedback stores a legacy title-keyed feedback record.
func (o *Orchestrator) RecordSummaryFeedback(title, rating, comment, summaryText string) error {
	if err := o.deps.Memory.RecordSummaryFeedback(title, rating, comment, summaryText); err != nil {
		return &StorageError{Err: err}
	}
	return nil
}

// AddPreferredKeyword adds keyword to the preferred set.
func (o *Orchestrator) AddPreferredKeyword(keyword string) error {
	if strings.TrimSpace(keyword) == "" {
		return &ValidationError{Reason: "keyword must not be blank"}
	}
	if err := o.deps.Memory.AddPreferredKeyword(keyword); err != nil {
		return &StorageError{Err: err}
	}
	return nil
}

// AddIrrelevantKeyword adds keyword to the irrelevant set.
func (o *Orchestrator) AddIrrelevantKeyword(keyword string) error {
	if strings.TrimSpace(keyword) == "" {
		return &ValidationError{Reason: "keyword must not be blank"}
	}
	if err := o.deps.Memory.AddIrrelevantKeyword(keyword); err != nil {
		return &StorageError{Err: err}
	}
	return nil
}

// Preferences returns the stored preference sets.
func (o *Orchestrator) Preferences() types.Preferences {
	return o.deps.Memory.Preferences()
}

// ReflectAndSuggest analyzes accumulated feedback and returns the report.
func (o *Orchestrator) ReflectAndSuggest() reflection.Report {
	return reflection.New(o.deps.Memory).Analyze()
}

// cleanKeywords trims keywords and drops blank ones, preserving order.
func cleanKeywords(keywords []string) []string {
	var out []string
	for _, kw := range keywords {
		if trimmed := strings.TrimSpace(kw); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// mergeKeywords appends stored keywords not already present, preserving
// the caller's order first.
func mergeKeywords(caller, stored []string) []string {
	seen := make(map[string]bool, len(caller))
	out := make([]string, 0, len(caller)+len(stored))
	for _, kw := range caller {
		if !seen[strings.ToLower(kw)] {
			seen[strings.ToLower(kw)] = true
			out = append(out, kw)
		}
	}
	for _, kw := range stored {
		if kw != "" && !seen[strings.ToLower(kw)] {
			seen[strings.ToLower(kw)] = true
			out = append(out, kw)
		}
	}
	return out
}
