// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litscout/internal/pipeline"
	"github.com/pdiddy/litscout/pkg/types"
)

var queryCmd = &cobra.Command{
	Use:   "query [keywords...]",
	Short: "Discover, summarize, and store papers for a keyword query",
	Long: `Query searches arXiv for papers matching the keywords plus your stored
preferred keywords, summarizes each candidate with Claude, and stores the
summaries in the semantic index. By default only abstracts are
summarized; --full-text downloads and extracts the PDFs first.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func runQuery(cmd *cobra.Command, args []string) error {
	fullText, _ := cmd.Flags().GetBool("full-text")
	maxItems, _ := cmd.Flags().GetInt("max-items")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg := pipelineConfig()
	o, idx, err := buildOrchestrator(cfg, fullText)
	if err != nil {
		return err
	}
	defer idx.Close()

	result, err := o.RunQuery(context.Background(), args, pipeline.RunOptions{MaxItems: maxItems})
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if result.Outcome == types.OutcomeNoResults {
		fmt.Printf("No papers found for: %s\n", strings.Join(result.Keywords, ", "))
		return nil
	}

	for _, item := range result.Items {
		fmt.Printf("\n%s  %s\n", item.Paper.ID, item.Paper.Title)
		if item.Status != types.StatusProcessed {
			fmt.Printf("  [%s] %s\n", item.Status, item.Err)
			continue
		}
		fmt.Printf("  %s\n", item.Summary.Text)
		for _, insight := range item.Insights {
			fmt.Printf("  - %s\n", insight)
		}
	}
	return nil
}

func init() {
	queryCmd.Flags().Bool("full-text", false, "download PDFs and summarize full text instead of abstracts")
	queryCmd.Flags().Int("max-items", 0, "maximum papers to process (0 = configured default)")
	queryCmd.Flags().Bool("json", false, "output the run result as JSON")

	rootCmd.AddCommand(queryCmd)
}
