// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"
)

// Export writes every indexed record to w as a YAML document, ordered by
// paper identifier. Embeddings are omitted; the export is for human review
// and external tooling, not for restoring the index.
func (s *Store) Export(ctx context.Context, w io.Writer) error {
	records, err := s.All(ctx)
	if err != nil {
		return err
	}

	doc := struct {
		Papers []Record `yaml:"papers"`
	}{Papers: records}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}
	return enc.Close()
}
