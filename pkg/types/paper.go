// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the litscout pipeline:
// paper metadata, summaries, feedback records, per-item pipeline results,
// and stage configuration.
package types

import "time"

// Paper holds the metadata for one paper discovered by the search stage.
// A Paper is constructed once per discovered candidate and never mutated
// afterward; the pipeline owns it for the duration of one query.
type Paper struct {
	// ID is the stable external identifier (e.g. arXiv ID "2301.07041").
	ID string `json:"id" yaml:"id"`

	// Title is the paper title as returned by the source.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Published is the publication or preprint date as an ISO date string
	// (e.g. "2023-01-17").
	Published string `json:"published" yaml:"published"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract" yaml:"abstract"`

	// PDFURL is the canonical full-text document URL. Empty when the
	// source provides no document link.
	PDFURL string `json:"pdf_url" yaml:"pdf_url"`

	// Categories lists the source's subject classifications (e.g. "cs.AI").
	Categories []string `json:"categories,omitempty" yaml:"categories,omitempty"`

	// Source identifies which backend found this paper (default "arxiv").
	Source string `json:"source" yaml:"source"`
}

// Summary is a generated summary of one paper. Re-runs create new Summary
// values rather than overwriting earlier ones.
type Summary struct {
	// PaperID links back to the Paper this summary was generated for.
	PaperID string `json:"paper_id" yaml:"paper_id"`

	// Text is the generated summary. Non-empty on success.
	Text string `json:"text" yaml:"text"`

	// Model labels the generating model (e.g. "claude-haiku-4-5-20251001").
	Model string `json:"model,omitempty" yaml:"model,omitempty"`

	// GeneratedAt records when the summary was produced.
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
}

// SummaryFeedback is the legacy, title-keyed feedback record: a free-form
// rating label with optional comment and the summary text that was reviewed.
// Multiple records accumulate per title.
type SummaryFeedback struct {
	Rating      string    `json:"rating"`
	Comment     string    `json:"comment,omitempty"`
	SummaryText string    `json:"summary_reviewed,omitempty"`
	RecordedAt  time.Time `json:"timestamp"`
}

// InterestFeedback is the structured, identifier-keyed feedback record.
// Every submission is an independent append; records are never merged or
// deduplicated.
type InterestFeedback struct {
	// PaperID links back to the Paper the feedback is about.
	PaperID string `json:"paper_id"`

	// IsInteresting records the user's interest verdict.
	IsInteresting bool `json:"is_interesting"`

	// Reasons optionally lists the user's reasons for the verdict.
	Reasons []string `json:"reasons,omitempty"`

	// Insights optionally lists user-supplied insight strings.
	Insights []string `json:"insights,omitempty"`

	// Rating is an optional 1-5 star rating; zero means not provided.
	Rating int `json:"rating,omitempty"`

	// RecordedAt records when the feedback was submitted.
	RecordedAt time.Time `json:"feedback_at"`
}

// Preferences holds the two disjoint ordered keyword sets that steer
// future searches. Insertion order is preserved within each set.
type Preferences struct {
	Preferred  []string `json:"preferred"`
	Irrelevant []string `json:"irrelevant"`
}
