// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litscout/pkg/types"
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Record what you thought of discovered papers and summaries",
}

var feedbackInterestCmd = &cobra.Command{
	Use:   "interest [paper-id]",
	Short: "Record structured feedback on a paper",
	Long: `Interest records whether a paper was worth your time, with an optional
1-5 rating and free-form reasons. The record is appended to memory and the
paper's index metadata is patched so future index queries can filter on
your rating.`,
	Args: cobra.ExactArgs(1),
	RunE: runFeedbackInterest,
}

func runFeedbackInterest(cmd *cobra.Command, args []string) error {
	interesting, _ := cmd.Flags().GetBool("interesting")
	rating, _ := cmd.Flags().GetInt("rating")
	reasons, _ := cmd.Flags().GetStringArray("reason")

	cfg := pipelineConfig()
	o, idx, err := buildFeedbackOrchestrator(cfg)
	if err != nil {
		return err
	}
	defer idx.Close()

	fb := types.InterestFeedback{
		PaperID:       args[0],
		IsInteresting: interesting,
		Rating:        rating,
		Reasons:       reasons,
		RecordedAt:    timeNow(),
	}
	if err := o.RecordInterestFeedback(context.Background(), fb); err != nil {
		return err
	}

	fmt.Printf("Recorded feedback for %s\n", args[0])
	return nil
}

var feedbackSummaryCmd = &cobra.Command{
	Use:   "summary [title]",
	Short: "Record a rating for a paper's summary",
	Long: `Summary records a rating label (excellent, good, neutral, bad, poor)
for the summary of the titled paper, with an optional comment. Ratings
feed the reflect command's suggestions.`,
	Args: cobra.ExactArgs(1),
	RunE: runFeedbackSummary,
}

func runFeedbackSummary(cmd *cobra.Command, args []string) error {
	rating, _ := cmd.Flags().GetString("rating")
	comment, _ := cmd.Flags().GetString("comment")
	summaryText, _ := cmd.Flags().GetString("summary-text")

	cfg := pipelineConfig()
	o, idx, err := buildFeedbackOrchestrator(cfg)
	if err != nil {
		return err
	}
	defer idx.Close()

	if err := o.RecordSummaryFeedback(args[0], rating, comment, summaryText); err != nil {
		return err
	}

	fmt.Printf("Recorded %s rating for %q\n", rating, args[0])
	return nil
}

func init() {
	feedbackInterestCmd.Flags().Bool("interesting", true, "whether the paper was worth reading")
	feedbackInterestCmd.Flags().Int("rating", 0, "1-5 star rating (0 = no rating)")
	feedbackInterestCmd.Flags().StringArray("reason", nil, "reason for the verdict (repeatable)")

	feedbackSummaryCmd.Flags().String("rating", "neutral", "rating label: excellent, good, neutral, bad, poor")
	feedbackSummaryCmd.Flags().String("comment", "", "free-form comment")
	feedbackSummaryCmd.Flags().String("summary-text", "", "the summary text being rated")

	feedbackCmd.AddCommand(feedbackInterestCmd)
	feedbackCmd.AddCommand(feedbackSummaryCmd)
	rootCmd.AddCommand(feedbackCmd)
}
