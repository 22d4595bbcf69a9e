package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reflectCmd = &cobra.Command{
	Use:   "reflect",
	Short: "Analyze accumulated feedback and suggest adjustments",
	Long: `Reflect averages every rating you have recorded, both summary rating
labels and interest star ratings, and suggests whether the summarization
style should change.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		o, idx, err := buildFeedbackOrchestrator(pipelineConfig())
		if err != nil {
			return err
		}
		defer idx.Close()

		report := o.ReflectAndSuggest()
		if report.Average == nil {
			fmt.Println("No rated feedback yet.")
		} else {
			fmt.Printf("Average rating: %.2f over %d records\n", *report.Average, report.SampleSize)
		}
		fmt.Printf("Suggestion: %s\n", report.Suggestion)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reflectCmd)
}
