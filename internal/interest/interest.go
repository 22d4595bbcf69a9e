// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package interest decides whether a discovered paper is worth the user's
// attention and extracts quick insights from interesting ones.
package interest

import (
	"context"
	"strings"

	"github.com/pdiddy/litscout/pkg/types"
)

// Assessment is the verdict on one paper.
type Assessment struct {
	Interesting bool
	Reasons     []string
}

// Assessor judges a summarized paper against the user's stored
// preferences. It runs after summarization so implementations can weigh
// the generated summary, not just the paper's own fields.
type Assessor interface {
	Assess(ctx context.Context, paper types.Paper, summaryText string, prefs types.Preferences) (Assessment, error)
}

// InsightExtractor pulls short takeaways from a paper judged interesting.
type InsightExtractor interface {
	Insights(ctx context.Context, paper types.Paper, summaryText string) ([]string, error)
}

// KeywordAssessor matches the user's keyword preferences against the
// paper's title, abstract, and summary. A paper touching an irrelevant
// keyword is rejected; everything else passes, with preferred keyword
// hits recorded as reasons.
type KeywordAssessor struct{}

// Assess applies the keyword rules. Matching is case-insensitive substring
// matching over title, abstract, and summary text.
func (KeywordAssessor) Assess(_ context.Context, paper types.Paper, summaryText string, prefs types.Preferences) (Assessment, error) {
	haystack := strings.ToLower(paper.Title + " " + paper.Abstract + " " + summaryText)

	for _, kw := range prefs.Irrelevant {
		if kw != "" && strings.Contains(haystack, strings.ToLower(kw)) {
			return Assessment{
				Interesting: false,
				Reasons:     []string{"matches irrelevant keyword: " + kw},
			}, nil
		}
	}

	assessment := Assessment{Interesting: true}
	for _, kw := range prefs.Preferred {
		if kw != "" && strings.Contains(haystack, strings.ToLower(kw)) {
			assessment.Reasons = append(assessment.Reasons, "matches preferred keyword: "+kw)
		}
	}
	if len(assessment.Reasons) == 0 {
		assessment.Reasons = []string{"no preference signal, kept by default"}
	}
	return assessment, nil
}

// AbstractInsights extracts the leading sentences of the abstract as
// insights. It is a cheap baseline that needs no API call.
type AbstractInsights struct {
	// MaxInsights caps the number of extracted sentences. Zero means 3.
	MaxInsights int
}

// Insights splits the abstract into sentences and returns the first few.
// Papers without an abstract yield no insights and no error.
func (a AbstractInsights) Insights(_ context.Context, paper types.Paper, _ string) ([]string, error) {
	max := a.MaxInsights
	if max <= 0 {
		max = 3
	}

	var insights []string
	for _, sentence := range splitSentences(paper.Abstract) {
		if len(insights) == max {
			break
		}
		insights = append(insights, sentence)
	}
	return insights, nil
}

// splitSentences breaks text on sentence-ending punctuation. It is
// deliberately simple; abbreviation handling is not worth it for abstract
// skimming.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(current.String()); len(s) > 1 {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); len(s) > 1 {
		sentences = append(sentences, s)
	}
	return sentences
}
