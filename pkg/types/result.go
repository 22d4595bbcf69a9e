// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ItemStatus is the terminal state of one candidate paper in a pipeline run.
type ItemStatus string

const (
	// StatusProcessed means the paper was summarized and persisted.
	StatusProcessed ItemStatus = "processed"

	// StatusSkippedNoSource means the candidate had no usable source text:
	// no document URL in full-text mode, no abstract in abstract-only mode.
	StatusSkippedNoSource ItemStatus = "skipped_no_source"

	// StatusFailedExtraction means the full-text fetch or text extraction failed.
	StatusFailedExtraction ItemStatus = "failed_extraction"

	// StatusFailedSummarization means summarization failed or produced empty output.
	StatusFailedSummarization ItemStatus = "failed_summarization"

	// StatusFailedStorage means the summary could not be persisted to the index.
	StatusFailedStorage ItemStatus = "failed_storage"
)

// ItemResult is the per-candidate outcome of one pipeline run. It is
// returned to the caller and never persisted.
type ItemResult struct {
	// Paper is the discovered candidate this result describes.
	Paper Paper `json:"paper"`

	// Summary is the generated summary; nil when no summary was produced.
	Summary *Summary `json:"summary,omitempty"`

	// Status is the terminal state the candidate reached.
	Status ItemStatus `json:"status"`

	// Err carries the error detail for failure states. Empty for
	// StatusProcessed.
	Err string `json:"error,omitempty"`

	// Interesting reports the interest-assessment verdict, when an
	// assessor was configured and the item reached summarization.
	Interesting bool `json:"interesting,omitempty"`

	// Insights lists extracted insights for interesting papers.
	Insights []string `json:"insights,omitempty"`
}

// RunOutcome is the run-level result classification of one query.
type RunOutcome string

const (
	// OutcomeProcessed means the run completed and Items holds the results.
	OutcomeProcessed RunOutcome = "processed"

	// OutcomeNoResults means the search returned zero candidates. This is
	// a distinct outcome, not an error and not an empty success list.
	OutcomeNoResults RunOutcome = "no_results"
)

// RunResult is the aggregate outcome of one query: the run outcome, the
// effective keywords actually searched, and per-item results in discovery
// order.
type RunResult struct {
	Outcome  RunOutcome   `json:"outcome"`
	Keywords []string     `json:"keywords"`
	Items    []ItemResult `json:"items,omitempty"`
}

// Processed returns the number of items that reached StatusProcessed.
func (r RunResult) Processed() int {
	n := 0
	for _, item := range r.Items {
		if item.Status == StatusProcessed {
			n++
		}
	}
	return n
}

// Failed returns the number of items that reached a failure state
// (anything other than processed).
func (r RunResult) Failed() int {
	return len(r.Items) - r.Processed()
}
