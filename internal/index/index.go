// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index stores paper summaries with embeddings in SQLite and
// answers similarity queries over them.
package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/litscout/pkg/types"
)

const (
	indexSubdir = "index"
	dbFile      = "papers.db"
)

// Sentinel errors surfaced by the store.
var (
	// ErrNotFound means the paper identifier does not exist in the index.
	ErrNotFound = errors.New("paper not found in index")

	// ErrUnavailable means the store has no embedder and cannot serve
	// similarity operations.
	ErrUnavailable = errors.New("semantic index unavailable")
)

// Store is the semantic index over persisted summaries. All reads and
// writes go through the embedded SQLite database.
type Store struct {
	db         *sql.DB
	embedder   Embedder
	maxResults int
}

// NewStore opens or creates the index database at cfg.IndexDir/index/papers.db
// and creates the schema when missing. The embedder may be nil; the store
// then still serves metadata operations but similarity operations return
// ErrUnavailable.
func NewStore(cfg types.IndexConfig, embedder Embedder) (*Store, error) {
	dbDir := filepath.Join(cfg.IndexDir, indexSubdir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}

	s := &Store{
		db:         db,
		embedder:   embedder,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS papers (
		id TEXT PRIMARY KEY,
		summary TEXT NOT NULL,
		embedding BLOB,
		metadata TEXT NOT NULL,
		stored_at TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

// Record is one indexed paper as returned by queries and exports.
type Record struct {
	ID       string         `json:"id" yaml:"id"`
	Summary  string         `json:"summary" yaml:"summary"`
	Metadata map[string]any `json:"metadata" yaml:"metadata"`
	StoredAt time.Time      `json:"stored_at" yaml:"stored_at"`
}

// Match is a query result: a record with its similarity to the query text.
type Match struct {
	Record
	Score float64 `json:"score" yaml:"score"`
}

// baseMetadata builds the metadata document stored alongside a summary.
func baseMetadata(paper types.Paper, summary *types.Summary) map[string]any {
	meta := map[string]any{
		"title":     paper.Title,
		"published": paper.Published,
		"source":    paper.Source,
	}
	if len(paper.Authors) > 0 {
		meta["authors"] = paper.Authors
	}
	if paper.PDFURL != "" {
		meta["pdf_url"] = paper.PDFURL
	}
	if len(paper.Categories) > 0 {
		meta["categories"] = paper.Categories
	}
	if summary != nil && summary.Model != "" {
		meta["model"] = summary.Model
	}
	return meta
}

// Upsert stores the summary for paper, embedding the text first. When the
// paper already exists with the same summary text the stored embedding is
// kept and the embedder is not called again. Extra metadata keys are
// merged over the paper-derived ones; existing keys owned by neither
// survive the update, feedback patches in particular.
func (s *Store) Upsert(ctx context.Context, paper types.Paper, summary *types.Summary, extra map[string]any) error {
	if s.embedder == nil {
		return ErrUnavailable
	}
	if paper.ID == "" {
		return errors.New("paper id is required")
	}
	if summary == nil || summary.Text == "" {
		return errors.New("summary text is required")
	}

	var (
		oldSummary  string
		oldBlob     []byte
		oldMetaJSON string
		exists      = true
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT summary, embedding, metadata FROM papers WHERE id = ?`, paper.ID,
	).Scan(&oldSummary, &oldBlob, &oldMetaJSON)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		exists = false
	case err != nil:
		return fmt.Errorf("looking up paper %s: %w", paper.ID, err)
	}

	var blob []byte
	if exists && oldSummary == summary.Text && len(oldBlob) > 0 {
		blob = oldBlob
	} else {
		vec, err := s.embedder.Embed(ctx, summary.Text)
		if err != nil {
			return fmt.Errorf("embedding summary for %s: %w", paper.ID, err)
		}
		blob, err = encodeVector(vec)
		if err != nil {
			return err
		}
	}

	meta := baseMetadata(paper, summary)
	for k, v := range extra {
		meta[k] = v
	}
	if exists {
		var oldMeta map[string]any
		if err := json.Unmarshal([]byte(oldMetaJSON), &oldMeta); err == nil {
			for k, v := range oldMeta {
				if _, owned := meta[k]; !owned {
					meta[k] = v
				}
			}
		}
	}

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO papers (id, summary, embedding, metadata, stored_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			summary=excluded.summary, embedding=excluded.embedding,
			metadata=excluded.metadata, stored_at=excluded.stored_at`,
		paper.ID, summary.Text, blob, string(metaJSON),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting paper %s: %w", paper.ID, err)
	}
	return nil
}

// UpdateMetadata merges patch into the stored metadata of id. The current
// document is read, patch keys overwrite existing keys, untouched keys
// survive, and the merged document is written back in one statement.
// Returns ErrNotFound for an unknown identifier.
func (s *Store) UpdateMetadata(ctx context.Context, id string, patch map[string]any) error {
	var metaJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT metadata FROM papers WHERE id = ?`, id,
	).Scan(&metaJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("updating metadata for %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("reading metadata for %s: %w", id, err)
	}

	meta := map[string]any{}
	if err := json.Unmarshal([]byte(metaJSON), &meta); err != nil {
		return fmt.Errorf("parsing stored metadata for %s: %w", id, err)
	}
	for k, v := range patch {
		meta[k] = v
	}

	merged, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE papers SET metadata = ? WHERE id = ?`, string(merged), id,
	); err != nil {
		return fmt.Errorf("writing metadata for %s: %w", id, err)
	}
	return nil
}

// Get returns the stored record for id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, summary, metadata, stored_at FROM papers WHERE id = ?`, id)
	rec, err := scanRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

// QueryOptions holds the parameters of one similarity query.
type QueryOptions struct {
	// MaxResults limits match count. Zero uses the store default.
	MaxResults int

	// Where filters on metadata fields with equality semantics. Multiple
	// entries combine with AND, and the filter constrains the candidate
	// set before ranking rather than trimming ranked results.
	Where map[string]string

	// MinRating keeps only papers whose user_rating metadata is at least
	// this value. Zero disables the filter.
	MinRating int
}

// Query embeds text and returns the stored records most similar to it,
// best first. Filters narrow the candidate set inside SQL; similarity is
// computed over the survivors only.
func (s *Store) Query(ctx context.Context, text string, opts QueryOptions) ([]Match, error) {
	if s.embedder == nil {
		return nil, ErrUnavailable
	}
	if text == "" {
		return nil, errors.New("query text is required")
	}

	queryVec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	sqlQuery := `SELECT id, summary, embedding, metadata, stored_at FROM papers WHERE embedding IS NOT NULL`
	var args []any
	for _, key := range sortedKeyList(opts.Where) {
		sqlQuery += ` AND json_extract(metadata, '$.' || ?) = ?`
		args = append(args, key, opts.Where[key])
	}
	if opts.MinRating > 0 {
		sqlQuery += ` AND CAST(json_extract(metadata, '$.user_rating') AS INTEGER) >= ?`
		args = append(args, opts.MinRating)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var (
			rec      Record
			blob     []byte
			metaJSON string
			storedAt string
		)
		if err := rows.Scan(&rec.ID, &rec.Summary, &blob, &metaJSON, &storedAt); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if err := json.Unmarshal([]byte(metaJSON), &rec.Metadata); err != nil {
			return nil, fmt.Errorf("parsing metadata for %s: %w", rec.ID, err)
		}
		if t, err := time.Parse(time.RFC3339, storedAt); err == nil {
			rec.StoredAt = t
		}

		vec, err := decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("decoding embedding for %s: %w", rec.ID, err)
		}
		matches = append(matches, Match{Record: rec, Score: cosineSimilarity(queryVec, vec)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}
	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	return matches, nil
}

// All returns every stored record ordered by identifier.
func (s *Store) All(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, summary, metadata, stored_at FROM papers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing index: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanRecord(scan func(...any) error) (Record, error) {
	var (
		rec      Record
		metaJSON string
		storedAt string
	)
	if err := scan(&rec.ID, &rec.Summary, &metaJSON, &storedAt); err != nil {
		return Record{}, err
	}
	if err := json.Unmarshal([]byte(metaJSON), &rec.Metadata); err != nil {
		return Record{}, fmt.Errorf("parsing metadata for %s: %w", rec.ID, err)
	}
	if t, err := time.Parse(time.RFC3339, storedAt); err == nil {
		rec.StoredAt = t
	}
	return rec, nil
}

// sortedKeyList returns the map keys in deterministic order so query
// plans and tests are stable.
func sortedKeyList(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
