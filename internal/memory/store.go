// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package memory persists user preferences and feedback in a single JSON
// document. Every mutation rewrites the whole document so a crash never
// loses the most recent feedback.
package memory

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pdiddy/litscout/pkg/types"
)

// Document is the persisted memory layout. One document per deployment.
type Document struct {
	Preferences      types.Preferences                  `json:"preferences"`
	FeedbackByTitle  map[string][]types.SummaryFeedback `json:"feedback_by_title"`
	InterestFeedback []types.InterestFeedback           `json:"interest_feedback"`
}

// defaultDocument returns a fresh, empty memory document.
func defaultDocument() Document {
	return Document{
		Preferences: types.Preferences{
			Preferred:  []string{},
			Irrelevant: []string{},
		},
		FeedbackByTitle:  map[string][]types.SummaryFeedback{},
		InterestFeedback: []types.InterestFeedback{},
	}
}

// Store is the durable memory store. It is the sole writer of the document
// and guards all access with a mutex so concurrent queries stay safe.
type Store struct {
	mu   sync.Mutex
	path string
	doc  Document
	warn io.Writer

	// now is stubbed in tests for deterministic timestamps.
	now func() time.Time
}

// Open loads the memory document at cfg.Path, creating a default-structured
// document on first access. An unreadable or corrupted document is reported
// on w, replaced with the default structure, and written back so subsequent
// loads are clean; corruption is never fatal.
func Open(cfg types.MemoryConfig, w io.Writer) (*Store, error) {
	if w == nil {
		w = io.Discard
	}
	s := &Store{
		path: cfg.Path,
		warn: w,
		now:  time.Now,
	}

	data, err := os.ReadFile(cfg.Path)
	switch {
	case os.IsNotExist(err):
		s.doc = defaultDocument()
		if err := s.persist(); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("reading memory document %s: %w", cfg.Path, err)
	default:
		if jsonErr := json.Unmarshal(data, &s.doc); jsonErr != nil {
			fmt.Fprintf(w, "warning: memory document %s is corrupted (%v), resetting to defaults\n", cfg.Path, jsonErr)
			s.doc = defaultDocument()
			if err := s.persist(); err != nil {
				return nil, err
			}
		}
		s.normalize()
	}

	return s, nil
}

// normalize fills nil collections left by older or partial documents.
func (s *Store) normalize() {
	if s.doc.Preferences.Preferred == nil {
		s.doc.Preferences.Preferred = []string{}
	}
	if s.doc.Preferences.Irrelevant == nil {
		s.doc.Preferences.Irrelevant = []string{}
	}
	if s.doc.FeedbackByTitle == nil {
		s.doc.FeedbackByTitle = map[string][]types.SummaryFeedback{}
	}
	if s.doc.InterestFeedback == nil {
		s.doc.InterestFeedback = []types.InterestFeedback{}
	}
}

// persist writes the whole document atomically: marshal, write to a temp
// file in the same directory, rename over the target.
func (s *Store) persist() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling memory document: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating memory directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".memory-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.Write(data)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing memory document: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// AddPreferredKeyword appends keyword to the preferred set and persists.
// Empty or already-present keywords are a no-op; insertion is idempotent
// and order-preserving.
func (s *Store) AddPreferredKeyword(keyword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if keyword == "" || contains(s.doc.Preferences.Preferred, keyword) {
		return nil
	}
	s.doc.Preferences.Preferred = append(s.doc.Preferences.Preferred, keyword)
	return s.persist()
}

// AddIrrelevantKeyword appends keyword to the irrelevant set and persists.
// Empty or already-present keywords are a no-op.
func (s *Store) AddIrrelevantKeyword(keyword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if keyword == "" || contains(s.doc.Preferences.Irrelevant, keyword) {
		return nil
	}
	s.doc.Preferences.Irrelevant = append(s.doc.Preferences.Irrelevant, keyword)
	return s.persist()
}

// RecordSummaryFeedback appends a timestamped legacy feedback record under
// title and persists. An empty title is reported on the warning writer and
// changes no state.
func (s *Store) RecordSummaryFeedback(title, rating, comment, summaryText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if title == "" {
		fmt.Fprintln(s.warn, "warning: paper title is required to record feedback")
		return nil
	}

	s.doc.FeedbackByTitle[title] = append(s.doc.FeedbackByTitle[title], types.SummaryFeedback{
		Rating:      rating,
		Comment:     comment,
		SummaryText: summaryText,
		RecordedAt:  s.now().UTC(),
	})
	return s.persist()
}

// RecordInterestFeedback appends fb unconditionally and persists. Duplicate
// submissions are legal and expected; records are never merged. A zero
// RecordedAt is stamped with the current time.
func (s *Store) RecordInterestFeedback(fb types.InterestFeedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if fb.RecordedAt.IsZero() {
		fb.RecordedAt = s.now().UTC()
	}
	s.doc.InterestFeedback = append(s.doc.InterestFeedback, fb)
	return s.persist()
}

// Preferences returns a copy of the stored preference sets.
func (s *Store) Preferences() types.Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()

	return types.Preferences{
		Preferred:  append([]string{}, s.doc.Preferences.Preferred...),
		Irrelevant: append([]string{}, s.doc.Preferences.Irrelevant...),
	}
}

// Feedback returns all legacy feedback recorded under title, in insertion
// order. An unknown title yields an empty slice.
func (s *Store) Feedback(title string) []types.SummaryFeedback {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]types.SummaryFeedback{}, s.doc.FeedbackByTitle[title]...)
}

// AllFeedback returns a copy of all legacy feedback keyed by title.
func (s *Store) AllFeedback() map[string][]types.SummaryFeedback {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string][]types.SummaryFeedback, len(s.doc.FeedbackByTitle))
	for title, records := range s.doc.FeedbackByTitle {
		out[title] = append([]types.SummaryFeedback{}, records...)
	}
	return out
}

// AllInterestFeedback returns a copy of every structured feedback record
// in submission order.
func (s *Store) AllInterestFeedback() []types.InterestFeedback {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]types.InterestFeedback{}, s.doc.InterestFeedback...)
}

// InterestFeedbackFor returns the structured feedback records whose paper
// identifier exactly matches id. An unknown identifier yields an empty
// slice, never an error.
func (s *Store) InterestFeedbackFor(id string) []types.InterestFeedback {
	s.mu.Lock()
	defer s.mu.Unlock()

	matches := []types.InterestFeedback{}
	for _, fb := range s.doc.InterestFeedback {
		if fb.PaperID == id {
			matches = append(matches, fb)
		}
	}
	return matches
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
