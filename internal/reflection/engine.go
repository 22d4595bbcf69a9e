// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reflection turns accumulated feedback into suggestions for
// steering future summaries.
package reflection

import (
	"strings"

	"github.com/pdiddy/litscout/pkg/types"
)

// Rating labels accepted on legacy feedback records, mapped to a 1-5 scale.
// Unknown labels are ignored when averaging.
var ratingScale = map[string]float64{
	"excellent": 5,
	"good":      4,
	"neutral":   3,
	"bad":       2,
	"poor":      1,
}

// Suggestion texts returned by Analyze. Exported so callers can branch on
// the outcome without string matching.
const (
	SuggestionWellReceived = "summaries are well received, keep the current style"
	SuggestionShorter      = "recent summaries rated low, try shorter summaries focused on key findings"
	SuggestionMoreData     = "not enough feedback signal yet, keep collecting ratings"
)

// Thresholds for the average rating. Below low suggests a style change,
// above high confirms the current style.
const (
	lowThreshold  = 2.8
	highThreshold = 4.0
)

// FeedbackSource provides the feedback records the engine analyzes. The
// memory store satisfies it.
type FeedbackSource interface {
	AllFeedback() map[string][]types.SummaryFeedback
	AllInterestFeedback() []types.InterestFeedback
}

// Report is the outcome of one reflection pass.
type Report struct {
	// Average is the mean rating on the 1-5 scale across all rated
	// feedback, or nil when no rated feedback exists. A non-nil Average
	// with the more-data suggestion means the signal sits between the
	// thresholds, not that there is no signal.
	Average *float64

	// SampleSize counts the rated records contributing to Average.
	SampleSize int

	// Suggestion is one of the Suggestion* constants.
	Suggestion string
}

// Engine computes reflection reports from a feedback source.
type Engine struct {
	source FeedbackSource
}

// New returns an engine reading from source.
func New(source FeedbackSource) *Engine {
	return &Engine{source: source}
}

// Analyze averages every rated feedback record and maps the average onto a
// suggestion. Legacy label ratings and structured star ratings contribute
// equally; unrated or unrecognized records are skipped.
func (e *Engine) Analyze() Report {
	var sum float64
	var n int

	for _, records := range e.source.AllFeedback() {
		for _, fb := range records {
			if v, ok := ratingScale[strings.ToLower(fb.Rating)]; ok {
				sum += v
				n++
			}
		}
	}
	for _, fb := range e.source.AllInterestFeedback() {
		if fb.Rating >= 1 && fb.Rating <= 5 {
			sum += float64(fb.Rating)
			n++
		}
	}

	if n == 0 {
		return Report{Suggestion: SuggestionMoreData}
	}

	avg := sum / float64(n)
	report := Report{Average: &avg, SampleSize: n}
	switch {
	case avg < lowThreshold:
		report.Suggestion = SuggestionShorter
	case avg > highThreshold:
		report.Suggestion = SuggestionWellReceived
	default:
		report.Suggestion = SuggestionMoreData
	}
	return report
}
