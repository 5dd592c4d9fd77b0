package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/everstacklabs/modelfeed/internal/catalog"
	"github.com/everstacklabs/modelfeed/internal/config"
	"github.com/everstacklabs/modelfeed/internal/pipeline"
)

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "modelfeed",
		Short: "AI model catalog acquisition",
		Long:  "Fetches the model catalog from the upstream API, normalizes and classifies it, and serves it from a TTL cache.",
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")

	rootCmd.AddCommand(
		modelsCmd(),
		freeCmd(),
		refreshCmd(),
		statsCmd(),
		clearCacheCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func modelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Fetch and print the full model catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPipeline()
			if err != nil {
				return err
			}

			force, _ := cmd.Flags().GetBool("force-refresh")
			models := p.FetchModels(cmd.Context(), pipeline.Options{ForceRefresh: force})
			printModels(models)
			return nil
		},
	}

	cmd.Flags().Bool("force-refresh", false, "Skip the cache and fetch fresh data")

	return cmd
}

func freeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "free",
		Short: "Fetch and print only free models",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPipeline()
			if err != nil {
				return err
			}

			models := p.FreeModels(cmd.Context(), "")
			printModels(models)
			return nil
		},
	}
}

func refreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Force-refresh the catalog, bypassing the cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPipeline()
			if err != nil {
				return err
			}

			models := p.RefreshModels(cmd.Context(), "")
			slog.Info("catalog refreshed", "models", len(models))
			printModels(models)
			return nil
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPipeline()
			if err != nil {
				return err
			}

			st := p.Statistics()
			fmt.Printf("entries: %d\nmodels: %d\nfree models: %d\nlast updated: %s\n",
				st.EntryCount, st.TotalModels, st.TotalFreeModels, st.LastUpdated)
			return nil
		},
	}
}

func clearCacheCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-cache",
		Short: "Invalidate every cached catalog partition",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPipeline()
			if err != nil {
				return err
			}

			fmt.Printf("removed %d cache entries\n", p.ClearCache())
			return nil
		},
	}
}

func newPipeline() (*pipeline.Pipeline, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	setupLogging(cfg.LogLevel)
	return pipeline.New(cfg), nil
}

func setupLogging(level string) {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
}

func printModels(models []catalog.Model) {
	for _, m := range models {
		caps := make([]string, 0, len(m.Capabilities))
		for _, c := range m.Capabilities {
			caps = append(caps, string(c))
		}
		fmt.Printf("%-48s %-12s %3d  %s\n", m.ID, m.Provider, m.CompatibilityScore, strings.Join(caps, ","))
	}
	fmt.Printf("\nTotal: %d models\n", len(models))
}
