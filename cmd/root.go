package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"slidesmith/internal/app"
	"slidesmith/pkg/config"
)

var (
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "slidesmith",
	Short: "Generate editable five-slide presentations",
	Long: `SlideSmith turns a short brief into a five-slide deck with speaker notes
and illustrative photos, keeps every saved version, and exports to PowerPoint.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config.yaml (default ./config.yaml if present)")
	rootCmd.PersistentFlags().StringVar(&userFlag, "user", "", "Override the local user id")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		setupLogger()
	}
}

func Execute() error {
	return rootCmd.Execute()
}

func setupLogger() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
}

func loadConfig(ctx context.Context) (*config.Config, error) {
	if configPath != "" {
		return config.LoadFrom(ctx, configPath)
	}
	return config.Load(ctx)
}

func buildService(ctx context.Context) (*app.Service, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	return app.BuildService(ctx, cfg)
}
