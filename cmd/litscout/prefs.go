package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Manage keyword preferences that steer future queries",
}

var prefsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the stored keyword preferences",
	RunE: func(cmd *cobra.Command, args []string) error {
		o, idx, err := buildFeedbackOrchestrator(pipelineConfig())
		if err != nil {
			return err
		}
		defer idx.Close()

		prefs := o.Preferences()
		fmt.Println("Preferred keywords:")
		for _, kw := range prefs.Preferred {
			fmt.Printf("  %s\n", kw)
		}
		fmt.Println("Irrelevant keywords:")
		for _, kw := range prefs.Irrelevant {
			fmt.Printf("  %s\n", kw)
		}
		return nil
	},
}

var prefsPreferCmd = &cobra.Command{
	Use:   "prefer [keyword]",
	Short: "Add a keyword to the preferred set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		o, idx, err := buildFeedbackOrchestrator(pipelineConfig())
		if err != nil {
			return err
		}
		defer idx.Close()

		if err := o.AddPreferredKeyword(args[0]); err != nil {
			return err
		}
		fmt.Printf("Added preferred keyword: %s\n", args[0])
		return nil
	},
}

var prefsIgnoreCmd = &cobra.Command{
	Use:   "ignore [keyword]",
	Short: "Add a keyword to the irrelevant set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		o, idx, err := buildFeedbackOrchestrator(pipelineConfig())
		if err != nil {
			return err
		}
		defer idx.Close()

		if err := o.AddIrrelevantKeyword(args[0]); err != nil {
			return err
		}
		fmt.Printf("Added irrelevant keyword: %s\n", args[0])
		return nil
	},
}

func init() {
	prefsCmd.AddCommand(prefsListCmd)
	prefsCmd.AddCommand(prefsPreferCmd)
	prefsCmd.AddCommand(prefsIgnoreCmd)
	rootCmd.AddCommand(prefsCmd)
}
