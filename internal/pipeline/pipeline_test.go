// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/litscout/internal/interest"
	"github.com/pdiddy/litscout/internal/summarize"
	"github.com/pdiddy/litscout/pkg/types"
)

type fakeSearcher struct {
	papers   []types.Paper
	err      error
	gotQuery []string
}

func (f *fakeSearcher) Name() string { return "fake" }

func (f *fakeSearcher) Search(_ context.Context, keywords []string, _ types.SearchConfig) ([]types.Paper, error) {
	f.gotQuery = keywords
	return f.papers, f.err
}

type fakeExtractor struct {
	texts map[string]string
	errs  map[string]error
}

func (f *fakeExtractor) Extract(_ context.Context, paper types.Paper) (string, error) {
	if err := f.errs[paper.ID]; err != nil {
		return "", err
	}
	return f.texts[paper.ID], nil
}

type fakeSummarizer struct {
	err       error
	gotParams summarize.Params
	calls     int
}

func (f *fakeSummarizer) Summarize(_ context.Context, paper types.Paper, sourceText string, params summarize.Params) (*types.Summary, error) {
	f.calls++
	f.gotParams = params
	if f.err != nil {
		return nil, f.err
	}
	if strings.TrimSpace(sourceText) == "" {
		return nil, summarize.ErrEmptyInput
	}
	return &types.Summary{
		PaperID:     paper.ID,
		Text:        "summary of " + sourceText,
		Model:       "test-model",
		GeneratedAt: time.Now(),
	}, nil
}

type fakeMemory struct {
	prefs         types.Preferences
	legacy        map[string][]types.SummaryFeedback
	structured    []types.InterestFeedback
	err           error
	feedbackScans int
}

func (f *fakeMemory) Preferences() types.Preferences { return f.prefs }

func (f *fakeMemory) AddPreferredKeyword(kw string) error {
	if f.err != nil {
		return f.err
	}
	f.prefs.Preferred = append(f.prefs.Preferred, kw)
	return nil
}

func (f *fakeMemory) AddIrrelevantKeyword(kw string) error {
	if f.err != nil {
		return f.err
	}
	f.prefs.Irrelevant = append(f.prefs.Irrelevant, kw)
	return nil
}

func (f *fakeMemory) RecordSummaryFeedback(title, rating, comment, summaryText string) error {
	if f.err != nil {
		return f.err
	}
	if f.legacy == nil {
		f.legacy = map[string][]types.SummaryFeedback{}
	}
	f.legacy[title] = append(f.legacy[title], types.SummaryFeedback{Rating: rating, Comment: comment})
	return nil
}

func (f *fakeMemory) RecordInterestFeedback(fb types.InterestFeedback) error {
	if f.err != nil {
		return f.err
	}
	f.structured = append(f.structured, fb)
	return nil
}

func (f *fakeMemory) AllFeedback() map[string][]types.SummaryFeedback {
	f.feedbackScans++
	return f.legacy
}

func (f *fakeMemory) AllInterestFeedback() []types.InterestFeedback { return f.structured }

type fakeAssessor struct {
	gotSummaries []string
	verdict      bool
	err          error
}

func (f *fakeAssessor) Assess(_ context.Context, _ types.Paper, summaryText string, _ types.Preferences) (interest.Assessment, error) {
	f.gotSummaries = append(f.gotSummaries, summaryText)
	if f.err != nil {
		return interest.Assessment{}, f.err
	}
	return interest.Assessment{Interesting: f.verdict}, nil
}

type fakeIndex struct {
	upserted  map[string]string
	extras    map[string]map[string]any
	patches   map[string]map[string]any
	upsertErr error
	patchErr  error
}

func (f *fakeIndex) Upsert(_ context.Context, paper types.Paper, summary *types.Summary, extra map[string]any) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if f.upserted == nil {
		f.upserted = map[string]string{}
		f.extras = map[string]map[string]any{}
	}
	f.upserted[paper.ID] = summary.Text
	f.extras[paper.ID] = extra
	return nil
}

func (f *fakeIndex) UpdateMetadata(_ context.Context, id string, patch map[string]any) error {
	if f.patchErr != nil {
		return f.patchErr
	}
	if f.patches == nil {
		f.patches = map[string]map[string]any{}
	}
	f.patches[id] = patch
	return nil
}

func somePapers(n int) []types.Paper {
	papers := make([]types.Paper, n)
	for i := range papers {
		papers[i] = types.Paper{
			ID:       fmt.Sprintf("p%d", i+1),
			Title:    fmt.Sprintf("Paper %d", i+1),
			Abstract: fmt.Sprintf("Abstract %d.", i+1),
			PDFURL:   fmt.Sprintf("https://example.org/p%d.pdf", i+1),
			Source:   "fake",
		}
	}
	return papers
}

func newTestOrchestrator(t *testing.T, deps Deps, cfg types.PipelineConfig) *Orchestrator {
	t.Helper()
	if deps.Memory == nil {
		deps.Memory = &fakeMemory{}
	}
	if deps.Index == nil {
		deps.Index = &fakeIndex{}
	}
	if deps.Summarizer == nil {
		deps.Summarizer = &fakeSummarizer{}
	}
	if deps.Log == nil {
		deps.Log = io.Discard
	}
	o, err := New(deps, cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	o.sleep = func(time.Duration) {}
	return o
}

func TestRunQueryValidatesKeywords(t *testing.T) {
	o := newTestOrchestrator(t, Deps{Searcher: &fakeSearcher{}}, types.PipelineConfig{})

	for _, keywords := range [][]string{nil, {}, {""}, {"  ", "\t"}} {
		_, err := o.RunQuery(context.Background(), keywords, RunOptions{})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Errorf("RunQuery(%v) error = %v, want ValidationError", keywords, err)
		}
	}
}

func TestRunQueryMergesStoredKeywords(t *testing.T) {
	searcher := &fakeSearcher{papers: somePapers(1)}
	memory := &fakeMemory{prefs: types.Preferences{Preferred: []string{"robotics", "attention"}}}
	index := &fakeIndex{}
	o := newTestOrchestrator(t, Deps{Searcher: searcher, Memory: memory, Index: index}, types.PipelineConfig{})

	result, err := o.RunQuery(context.Background(), []string{"attention", "translation"}, RunOptions{})
	if err != nil {
		t.Fatalf("RunQuery() error = %v", err)
	}

	want := []string{"attention", "translation", "robotics"}
	if len(searcher.gotQuery) != len(want) {
		t.Fatalf("searched keywords = %v, want %v", searcher.gotQuery, want)
	}
	for i := range want {
		if searcher.gotQuery[i] != want[i] {
			t.Errorf("keyword[%d] = %q, want %q", i, searcher.gotQuery[i], want[i])
		}
	}
	if len(result.Keywords) != len(want) {
		t.Errorf("result keywords = %v, want %v", result.Keywords, want)
	}
	if got := index.extras["p1"]["source_query"]; got != "attention, translation, robotics" {
		t.Errorf("stored source_query = %v, want the effective keyword list", got)
	}
}

func TestRunQueryNoResults(t *testing.T) {
	o := newTestOrchestrator(t, Deps{Searcher: &fakeSearcher{}}, types.PipelineConfig{})

	result, err := o.RunQuery(context.Background(), []string{"nothing"}, RunOptions{})
	if err != nil {
		t.Fatalf("RunQuery() error = %v", err)
	}
	if result.Outcome != types.OutcomeNoResults {
		t.Errorf("Outcome = %q, want %q", result.Outcome, types.OutcomeNoResults)
	}
	if len(result.Items) != 0 {
		t.Errorf("Items = %v, want none", result.Items)
	}
}

func TestRunQuerySearchFailure(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("backend down")}
	o := newTestOrchestrator(t, Deps{Searcher: searcher}, types.PipelineConfig{})

	_, err := o.RunQuery(context.Background(), []string{"anything"}, RunOptions{})
	var sErr *SearchError
	if !errors.As(err, &sErr) {
		t.Fatalf("error = %v, want SearchError", err)
	}
	if !strings.Contains(err.Error(), "backend down") {
		t.Errorf("error = %v, want cause preserved", err)
	}
}

func TestRunQueryAbstractMode(t *testing.T) {
	papers := somePapers(2)
	papers[1].Abstract = "" // no source in abstract mode
	index := &fakeIndex{}
	o := newTestOrchestrator(t, Deps{Searcher: &fakeSearcher{papers: papers}, Index: index}, types.PipelineConfig{})

	result, err := o.RunQuery(context.Background(), []string{"anything"}, RunOptions{})
	if err != nil {
		t.Fatalf("RunQuery() error = %v", err)
	}

	if result.Items[0].Status != types.StatusProcessed {
		t.Errorf("item 0 status = %q, want processed", result.Items[0].Status)
	}
	if result.Items[0].Summary == nil || !strings.Contains(result.Items[0].Summary.Text, "Abstract 1.") {
		t.Errorf("item 0 summary = %+v, want abstract summarized", result.Items[0].Summary)
	}
	if result.Items[1].Status != types.StatusSkippedNoSource {
		t.Errorf("item 1 status = %q, want skipped_no_source", result.Items[1].Status)
	}
	if _, ok := index.upserted["p1"]; !ok {
		t.Error("processed paper not stored in index")
	}
	if _, ok := index.upserted["p2"]; ok {
		t.Error("skipped paper must not be stored")
	}
}

func TestRunQueryFullTextMode(t *testing.T) {
	papers := somePapers(3)
	papers[2].PDFURL = "" // no source in full-text mode
	extractor := &fakeExtractor{
		texts: map[string]string{"p1": "full text one"},
		errs:  map[string]error{"p2": errors.New("bad pdf")},
	}
	o := newTestOrchestrator(t, Deps{Searcher: &fakeSearcher{papers: papers}, Extractor: extractor}, types.PipelineConfig{})

	result, err := o.RunQuery(context.Background(), []string{"anything"}, RunOptions{})
	if err != nil {
		t.Fatalf("RunQuery() error = %v", err)
	}

	wantStatus := []types.ItemStatus{
		types.StatusProcessed,
		types.StatusFailedExtraction,
		types.StatusSkippedNoSource,
	}
	for i, want := range wantStatus {
		if result.Items[i].Status != want {
			t.Errorf("item %d status = %q, want %q", i, result.Items[i].Status, want)
		}
	}
	if !strings.Contains(result.Items[0].Summary.Text, "full text one") {
		t.Errorf("full text not summarized: %+v", result.Items[0].Summary)
	}
	if result.Processed() != 1 || result.Failed() != 2 {
		t.Errorf("processed/failed = %d/%d, want 1/2", result.Processed(), result.Failed())
	}
}

func TestRunQueryStorageFailureIsolated(t *testing.T) {
	index := &fakeIndex{upsertErr: errors.New("disk full")}
	o := newTestOrchestrator(t, Deps{Searcher: &fakeSearcher{papers: somePapers(1)}, Index: index}, types.PipelineConfig{})

	result, err := o.RunQuery(context.Background(), []string{"anything"}, RunOptions{})
	if err != nil {
		t.Fatalf("RunQuery() error = %v", err)
	}
	item := result.Items[0]
	if item.Status != types.StatusFailedStorage {
		t.Errorf("status = %q, want failed_storage", item.Status)
	}
	if item.Summary == nil {
		t.Error("summary should still be returned when only storage failed")
	}
}

func TestRunQuerySummarizationFailure(t *testing.T) {
	summarizer := &fakeSummarizer{err: errors.New("model refused")}
	o := newTestOrchestrator(t, Deps{Searcher: &fakeSearcher{papers: somePapers(1)}, Summarizer: summarizer}, types.PipelineConfig{})

	result, err := o.RunQuery(context.Background(), []string{"anything"}, RunOptions{})
	if err != nil {
		t.Fatalf("RunQuery() error = %v", err)
	}
	if result.Items[0].Status != types.StatusFailedSummarization {
		t.Errorf("status = %q, want failed_summarization", result.Items[0].Status)
	}
}

func TestRunQueryMaxItemsCap(t *testing.T) {
	o := newTestOrchestrator(t, Deps{Searcher: &fakeSearcher{papers: somePapers(10)}}, types.PipelineConfig{MaxItems: 5})

	result, err := o.RunQuery(context.Background(), []string{"anything"}, RunOptions{MaxItems: 2})
	if err != nil {
		t.Fatalf("RunQuery() error = %v", err)
	}
	if len(result.Items) != 2 {
		t.Errorf("got %d items with override, want 2", len(result.Items))
	}

	result, err = o.RunQuery(context.Background(), []string{"anything"}, RunOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Items) != 5 {
		t.Errorf("got %d items with configured cap, want 5", len(result.Items))
	}
}

func TestRunQueryInterestGating(t *testing.T) {
	papers := somePapers(2)
	papers[0].Title = "Blockchain Everything"
	memory := &fakeMemory{prefs: types.Preferences{Irrelevant: []string{"blockchain"}}}
	o := newTestOrchestrator(t, Deps{
		Searcher: &fakeSearcher{papers: papers},
		Memory:   memory,
		Assessor: interest.KeywordAssessor{},
		Insights: interest.AbstractInsights{},
	}, types.PipelineConfig{})

	result, err := o.RunQuery(context.Background(), []string{"anything"}, RunOptions{})
	if err != nil {
		t.Fatalf("RunQuery() error = %v", err)
	}

	if result.Items[0].Interesting {
		t.Error("paper matching irrelevant keyword should not be interesting")
	}
	if len(result.Items[0].Insights) != 0 {
		t.Errorf("uninteresting paper got insights: %v", result.Items[0].Insights)
	}
	if !result.Items[1].Interesting {
		t.Error("unmatched paper should be interesting")
	}
	if len(result.Items[1].Insights) == 0 {
		t.Error("interesting paper should get insights")
	}
	// Both papers are still summarized and stored.
	for i, item := range result.Items {
		if item.Status != types.StatusProcessed {
			t.Errorf("item %d status = %q, want processed", i, item.Status)
		}
	}
}

func TestRunQueryAssessesGeneratedSummary(t *testing.T) {
	assessor := &fakeAssessor{verdict: true}
	o := newTestOrchestrator(t, Deps{
		Searcher: &fakeSearcher{papers: somePapers(1)},
		Assessor: assessor,
	}, types.PipelineConfig{})

	result, err := o.RunQuery(context.Background(), []string{"anything"}, RunOptions{})
	if err != nil {
		t.Fatalf("RunQuery() error = %v", err)
	}

	if len(assessor.gotSummaries) != 1 {
		t.Fatalf("assessor called %d times, want 1", len(assessor.gotSummaries))
	}
	if got, want := assessor.gotSummaries[0], result.Items[0].Summary.Text; got != want {
		t.Errorf("assessor saw %q, want the generated summary %q", got, want)
	}
}

func TestRunQueryAssessorFailureKeepsPaper(t *testing.T) {
	var log strings.Builder
	o := newTestOrchestrator(t, Deps{
		Searcher: &fakeSearcher{papers: somePapers(1)},
		Assessor: &fakeAssessor{err: errors.New("model offline")},
		Log:      &log,
	}, types.PipelineConfig{})

	result, err := o.RunQuery(context.Background(), []string{"anything"}, RunOptions{})
	if err != nil {
		t.Fatalf("RunQuery() error = %v", err)
	}

	if result.Items[0].Status != types.StatusProcessed {
		t.Errorf("status = %q, want processed despite assessor failure", result.Items[0].Status)
	}
	if !result.Items[0].Interesting {
		t.Error("assessor failure must keep the paper interesting")
	}
	if !strings.Contains(log.String(), "interest assessment failed") {
		t.Errorf("log = %q, want an assessment warning", log.String())
	}
}

func TestRunQueryPassesPreferencesToSummarizer(t *testing.T) {
	summarizer := &fakeSummarizer{}
	memory := &fakeMemory{prefs: types.Preferences{
		Preferred:  []string{"robots"},
		Irrelevant: []string{"finance"},
	}}
	o := newTestOrchestrator(t, Deps{
		Searcher:   &fakeSearcher{papers: somePapers(1)},
		Summarizer: summarizer,
		Memory:     memory,
	}, types.PipelineConfig{})

	if _, err := o.RunQuery(context.Background(), []string{"robots"}, RunOptions{}); err != nil {
		t.Fatal(err)
	}
	if len(summarizer.gotParams.Interests) != 1 || summarizer.gotParams.Interests[0] != "robots" {
		t.Errorf("Interests = %v", summarizer.gotParams.Interests)
	}
	if len(summarizer.gotParams.Avoid) != 1 || summarizer.gotParams.Avoid[0] != "finance" {
		t.Errorf("Avoid = %v", summarizer.gotParams.Avoid)
	}
}

func TestRunQueryStyleHintFromLowRatings(t *testing.T) {
	summarizer := &fakeSummarizer{}
	memory := &fakeMemory{legacy: map[string][]types.SummaryFeedback{
		"t": {{Rating: "poor"}, {Rating: "bad"}},
	}}
	o := newTestOrchestrator(t, Deps{
		Searcher:   &fakeSearcher{papers: somePapers(3)},
		Summarizer: summarizer,
		Memory:     memory,
	}, types.PipelineConfig{})

	if _, err := o.RunQuery(context.Background(), []string{"anything"}, RunOptions{}); err != nil {
		t.Fatal(err)
	}
	if summarizer.gotParams.StyleHint == "" {
		t.Error("low-rated history should set a style hint")
	}
	if memory.feedbackScans != 1 {
		t.Errorf("feedback scanned %d times for one run, want 1", memory.feedbackScans)
	}
}

func TestRecordInterestFeedback(t *testing.T) {
	memory := &fakeMemory{}
	index := &fakeIndex{}
	o := newTestOrchestrator(t, Deps{Searcher: &fakeSearcher{}, Memory: memory, Index: index}, types.PipelineConfig{})

	fb := types.InterestFeedback{
		PaperID:       "p1",
		IsInteresting: true,
		Rating:        4,
		Reasons:       []string{"novel method", "good benchmarks"},
	}
	if err := o.RecordInterestFeedback(context.Background(), fb); err != nil {
		t.Fatalf("RecordInterestFeedback() error = %v", err)
	}

	if len(memory.structured) != 1 {
		t.Fatalf("memory records = %d, want 1", len(memory.structured))
	}
	patch := index.patches["p1"]
	if patch == nil {
		t.Fatal("index metadata not patched")
	}
	if patch["user_rating"] != 4 {
		t.Errorf("user_rating = %v, want 4", patch["user_rating"])
	}
	if patch["user_notes"] != "novel method; good benchmarks" {
		t.Errorf("user_notes = %v", patch["user_notes"])
	}
	if patch["feedback_at"] == "" {
		t.Error("feedback_at not set")
	}
}

func TestRecordInterestFeedbackValidation(t *testing.T) {
	o := newTestOrchestrator(t, Deps{Searcher: &fakeSearcher{}}, types.PipelineConfig{})

	tests := []types.InterestFeedback{
		{},                            // no paper id
		{PaperID: "p1", Rating: 6},    // rating too high
		{PaperID: "p1", Rating: -1},   // rating negative
	}
	for _, fb := range tests {
		err := o.RecordInterestFeedback(context.Background(), fb)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Errorf("RecordInterestFeedback(%+v) error = %v, want ValidationError", fb, err)
		}
	}
}

func TestRecordInterestFeedbackToleratesMissingIndexEntry(t *testing.T) {
	memory := &fakeMemory{}
	index := &fakeIndex{patchErr: errors.New("paper not found in index")}
	var log strings.Builder
	o := newTestOrchestrator(t, Deps{Searcher: &fakeSearcher{}, Memory: memory, Index: index, Log: &log}, types.PipelineConfig{})

	fb := types.InterestFeedback{PaperID: "ghost", Rating: 3}
	if err := o.RecordInterestFeedback(context.Background(), fb); err != nil {
		t.Fatalf("missing index entry should not fail the operation, got %v", err)
	}
	if len(memory.structured) != 1 {
		t.Error("memory record must be kept even when the index patch fails")
	}
	if !strings.Contains(log.String(), "warning") {
		t.Errorf("expected a warning in the log, got %q", log.String())
	}
}

func TestRecordInterestFeedbackStorageError(t *testing.T) {
	memory := &fakeMemory{err: errors.New("disk full")}
	o := newTestOrchestrator(t, Deps{Searcher: &fakeSearcher{}, Memory: memory}, types.PipelineConfig{})

	err := o.RecordInterestFeedback(context.Background(), types.InterestFeedback{PaperID: "p1"})
	var sErr *StorageError
	if !errors.As(err, &sErr) {
		t.Errorf("error = %v, want StorageError", err)
	}
}

func TestKeywordPassThroughValidation(t *testing.T) {
	memory := &fakeMemory{}
	o := newTestOrchestrator(t, Deps{Searcher: &fakeSearcher{}, Memory: memory}, types.PipelineConfig{})

	if err := o.AddPreferredKeyword("  "); err == nil {
		t.Error("blank preferred keyword should be rejected")
	}
	if err := o.AddIrrelevantKeyword(""); err == nil {
		t.Error("blank irrelevant keyword should be rejected")
	}
	if err := o.AddPreferredKeyword("robotics"); err != nil {
		t.Errorf("AddPreferredKeyword() error = %v", err)
	}
	if got := o.Preferences().Preferred; len(got) != 1 || got[0] != "robotics" {
		t.Errorf("Preferences().Preferred = %v", got)
	}
}
