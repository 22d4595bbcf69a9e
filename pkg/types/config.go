// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "litscout/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the search stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the maximum number of candidates requested from the
	// search backend (default 10).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ExtractionConfig holds settings for full-text retrieval and extraction.
type ExtractionConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxBytes caps the downloaded document size (default 32 MiB).
	MaxBytes int64 `json:"max_bytes" yaml:"max_bytes"`

	// MaxChars caps the extracted text length passed to summarization;
	// zero means no cap.
	MaxChars int `json:"max_chars" yaml:"max_chars"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "claude-haiku-4-5-20251001").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// SummaryConfig holds settings for the summarization stage.
type SummaryConfig struct {
	AIConfig `yaml:",inline"`

	// MaxWords bounds the summary length from above (default 150).
	MaxWords int `json:"max_words" yaml:"max_words"`

	// MinWords bounds the summary length from below (default 30).
	MinWords int `json:"min_words" yaml:"min_words"`
}

// MemoryConfig holds settings for the persistent memory store.
type MemoryConfig struct {
	// Path is the location of the memory document (default "memory/litscout.json").
	Path string `json:"path" yaml:"path"`
}

// IndexConfig holds settings for the semantic index.
type IndexConfig struct {
	// IndexDir is the base directory for the index database (contains index/).
	IndexDir string `json:"index_dir" yaml:"index_dir"`

	// MaxResults is the default maximum number of query matches (default 5).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// EmbeddingModel selects the embedding model
	// (default "text-embedding-3-small").
	EmbeddingModel string `json:"embedding_model" yaml:"embedding_model"`

	// EmbeddingAPIKey is the authentication key for the embedding API.
	EmbeddingAPIKey string `json:"embedding_api_key,omitempty" yaml:"embedding_api_key,omitempty"`
}

// PipelineConfig groups all stage configurations for one pipeline instance.
type PipelineConfig struct {
	Search     SearchConfig     `json:"search" yaml:"search"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	Summary    SummaryConfig    `json:"summary" yaml:"summary"`
	Memory     MemoryConfig     `json:"memory" yaml:"memory"`
	Index      IndexConfig      `json:"index" yaml:"index"`

	// MaxItems is the default per-run candidate cap (default 5).
	MaxItems int `json:"max_items" yaml:"max_items"`

	// ItemDelay is the pause between consecutive candidates, a rate-limit
	// courtesy to the external APIs (default 1s).
	ItemDelay time.Duration `json:"item_delay" yaml:"item_delay"`

	// StageTimeout bounds each collaborator call (search, extract,
	// summarize); zero disables the per-stage deadline.
	StageTimeout time.Duration `json:"stage_timeout" yaml:"stage_timeout"`
}
