// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the litscout CLI, a personal
// research paper discovery pipeline: search, summarize, remember.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/litscout/internal/secrets"
	"github.com/pdiddy/litscout/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback if set, otherwise the secret value for key.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the litscout CLI.
var rootCmd = &cobra.Command{
	Use:   "litscout",
	Short: "Personal research paper discovery pipeline",
	Long: `litscout discovers research papers matching your interests, summarizes
them with Claude, and remembers what you thought of the results. Feedback
and keyword preferences steer every following run.

Each operation is a subcommand: query runs a discovery pass, feedback
records what you thought, prefs manages steering keywords, reflect
analyzes accumulated ratings, and index searches stored summaries.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./litscout.yaml or ~/.config/litscout/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("litscout")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "litscout"))
		}
	}

	viper.SetEnvPrefix("LITSCOUT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// pipelineConfig assembles the stage configuration from viper, with API
// keys falling back to the .secrets/ directory.
func pipelineConfig() types.PipelineConfig {
	viper.SetDefault("search.max_results", 10)
	viper.SetDefault("search.timeout", "30s")
	viper.SetDefault("search.user_agent", "litscout/"+version)
	viper.SetDefault("extraction.max_bytes", int64(32<<20))
	viper.SetDefault("extraction.timeout", "60s")
	viper.SetDefault("summary.model", "claude-haiku-4-5-20251001")
	viper.SetDefault("summary.max_words", 150)
	viper.SetDefault("summary.min_words", 30)
	viper.SetDefault("summary.max_retries", 3)
	viper.SetDefault("memory.path", filepath.Join("memory", "litscout.json"))
	viper.SetDefault("index.index_dir", ".")
	viper.SetDefault("index.max_results", 5)
	viper.SetDefault("index.embedding_model", "text-embedding-3-small")
	viper.SetDefault("max_items", 5)
	viper.SetDefault("item_delay", "1s")

	return types.PipelineConfig{
		Search: types.SearchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("search.timeout"),
				UserAgent: viper.GetString("search.user_agent"),
			},
			MaxResults: viper.GetInt("search.max_results"),
		},
		Extraction: types.ExtractionConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("extraction.timeout"),
				UserAgent: viper.GetString("search.user_agent"),
			},
			MaxBytes: viper.GetInt64("extraction.max_bytes"),
			MaxChars: viper.GetInt("extraction.max_chars"),
		},
		Summary: types.SummaryConfig{
			AIConfig: types.AIConfig{
				Model:      viper.GetString("summary.model"),
				APIKey:     secretDefault("anthropic-api-key", viper.GetString("summary.api_key")),
				MaxRetries: viper.GetInt("summary.max_retries"),
			},
			MaxWords: viper.GetInt("summary.max_words"),
			MinWords: viper.GetInt("summary.min_words"),
		},
		Memory: types.MemoryConfig{
			Path: viper.GetString("memory.path"),
		},
		Index: types.IndexConfig{
			IndexDir:        viper.GetString("index.index_dir"),
			MaxResults:      viper.GetInt("index.max_results"),
			EmbeddingModel:  viper.GetString("index.embedding_model"),
			EmbeddingAPIKey: secretDefault("openai-api-key", viper.GetString("index.embedding_api_key")),
		},
		MaxItems:     viper.GetInt("max_items"),
		ItemDelay:    viper.GetDuration("item_delay"),
		StageTimeout: viper.GetDuration("stage_timeout"),
	}
}

// timeNow is a helper for commands stamping feedback.
func timeNow() time.Time { return time.Now().UTC() }

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
