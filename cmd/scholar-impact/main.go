// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the scholar-impact CLI. It scores
// authors with the PiP-AUC index: each paper's citation percentile among
// papers of the same age, plotted against the paper's productivity
// percentile among authors of the same career age.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/scholar-impact/internal/logging"
	"github.com/pdiddy/scholar-impact/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets secrets.Secrets

// rootCmd is the base command for the scholar-impact CLI.
var rootCmd = &cobra.Command{
	Use:   "scholar-impact",
	Short: "Score researcher impact with the PiP-AUC index",
	Long: `scholar-impact computes the Productivity-Impact Percentile AUC of an
author: every publication is scored against the citation distribution of
papers of the same age, ranked, placed on the paper-count distribution of
authors with the same career age, and the resulting curve is integrated.

Publication lists come from a directory of JSON/YAML dumps, OpenAlex or
Semantic Scholar. Results are cached in a local SQLite database.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := secrets.LoadEnvFile(".env"); err != nil {
			return err
		}
		if _, err := logging.SetDefault(os.Stderr, viper.GetString("log.level"), viper.GetString("log.format")); err != nil {
			return err
		}

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
			slog.Debug("loaded secrets", "keys", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./scholar-impact.yaml or ~/.config/scholar-impact/scholar-impact.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text or json")
	pf.String("citation-table", "", "citation percentile table (path or URL)")
	pf.String("productivity-table", "", "paper-count percentile table (path or URL)")
	pf.String("source", "", "publication source: file, openalex, semantic_scholar")
	pf.String("source-dir", "", "directory of author dumps for the file source")
	pf.String("cache-path", "", "SQLite cache file")
	pf.Bool("no-cache", false, "disable the result cache")

	bindFlags(pf)
	setDefaults()
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("scholar-impact")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "scholar-impact"))
		}
	}

	viper.SetEnvPrefix("SCHOLAR_IMPACT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
