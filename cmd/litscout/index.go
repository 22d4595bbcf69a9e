// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litscout/internal/index"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Search and export the stored summaries",
}

var indexQueryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Find stored summaries similar to a text query",
	Long: `Query embeds the text and returns the most similar stored summaries.
Metadata filters narrow the candidates before ranking: --where matches
metadata fields exactly, --min-rating keeps only papers you rated at
least that high.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndexQuery,
}

func runIndexQuery(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	minRating, _ := cmd.Flags().GetInt("min-rating")
	whereFlags, _ := cmd.Flags().GetStringArray("where")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	where := map[string]string{}
	for _, clause := range whereFlags {
		key, value, ok := strings.Cut(clause, "=")
		if !ok {
			return fmt.Errorf("invalid --where clause %q: want key=value", clause)
		}
		where[key] = value
	}

	cfg := pipelineConfig()
	idx, err := openIndex(cfg.Index)
	if err != nil {
		return err
	}
	defer idx.Close()

	matches, err := idx.Query(context.Background(), strings.Join(args, " "), index.QueryOptions{
		MaxResults: limit,
		Where:      where,
		MinRating:  minRating,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(matches)
	}

	if len(matches) == 0 {
		fmt.Println("No matches found.")
		return nil
	}
	for i, m := range matches {
		title, _ := m.Metadata["title"].(string)
		fmt.Printf("%d. %s  %s  (score %.3f)\n", i+1, m.ID, title, m.Score)
		fmt.Printf("   %s\n", m.Summary)
	}
	return nil
}

var indexExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every stored summary as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := pipelineConfig()
		idx, err := openIndex(cfg.Index)
		if err != nil {
			return err
		}
		defer idx.Close()

		return idx.Export(context.Background(), os.Stdout)
	},
}

func init() {
	indexQueryCmd.Flags().Int("limit", 0, "maximum matches (0 = configured default)")
	indexQueryCmd.Flags().Int("min-rating", 0, "keep only papers rated at least this (1-5)")
	indexQueryCmd.Flags().StringArray("where", nil, "metadata equality filter, key=value (repeatable)")
	indexQueryCmd.Flags().Bool("json", false, "output matches as JSON")

	indexCmd.AddCommand(indexQueryCmd)
	indexCmd.AddCommand(indexExportCmd)
	rootCmd.AddCommand(indexCmd)
}
