// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search discovers candidate papers from external scholarly APIs.
package search

import (
	"context"

	"github.com/pdiddy/litscout/pkg/types"
)

// Searcher finds papers matching a set of keywords. Implementations return
// candidates in source ranking order; an empty result with a nil error
// means the query matched nothing.
type Searcher interface {
	// Name returns the backend identifier recorded on discovered papers.
	Name() string

	// Search runs one keyword query against the backend.
	Search(ctx context.Context, keywords []string, cfg types.SearchConfig) ([]types.Paper, error)
}
