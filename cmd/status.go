package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"slidesmith/pkg/config"
)

var errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check which services are configured",
	Long:  `Verify which generation, image, storage and export backends are configured.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Context())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	fmt.Println(infoStyle.Render("\nService Status:\n"))

	switch cfg.LLM.Provider {
	case config.ProviderOpenAI:
		keyStatus("OpenAI ("+cfg.LLM.Model+")", cfg.OpenAIAPIKey != "", "OPENAI_API_KEY")
	case config.ProviderGroq:
		keyStatus("Groq ("+cfg.LLM.Model+")", cfg.GroqAPIKey != "", "GROQ_API_KEY")
	case config.ProviderGemini:
		keyStatus("Gemini ("+cfg.LLM.Model+")", cfg.GCPProject != "", "GOOGLE_CLOUD_PROJECT")
	case config.ProviderMock:
		fmt.Println(warnStyle.Render("○ Generation: mock engine (no model calls)"))
	}

	switch {
	case cfg.Images.Disabled:
		fmt.Println(infoStyle.Render("○ Unsplash: disabled in config"))
	case cfg.UnsplashAccessKey != "":
		fmt.Println(successStyle.Render("✓ Unsplash: access key configured"))
	default:
		fmt.Println(warnStyle.Render("○ Unsplash: missing UNSPLASH_ACCESS_KEY, slides will have no images"))
	}

	if cfg.RedisAddr != "" {
		fmt.Println(successStyle.Render("✓ Image cache: Redis at " + cfg.RedisAddr))
	} else {
		fmt.Println(infoStyle.Render("○ Image cache: not configured (optional)"))
	}

	switch cfg.Store.Driver {
	case config.DriverSQLite:
		fmt.Println(successStyle.Render("✓ Store: SQLite at " + cfg.Store.SQLitePath))
	case config.DriverPostgres:
		keyStatus("Store: Postgres", cfg.DatabaseURL != "", "DATABASE_URL")
	}

	switch cfg.Export.Sink {
	case config.SinkLocal:
		fmt.Println(successStyle.Render("✓ Export: local directory " + cfg.Export.OutputDir))
	case config.SinkGCS:
		keyStatus("Export: Cloud Storage", cfg.GCSBucket != "", "GCS_BUCKET")
	}

	if cfg.Secrets.Enabled {
		keyStatus("Secret Manager", cfg.GCPProject != "", "GOOGLE_CLOUD_PROJECT")
	}

	fmt.Println()
	return nil
}

func keyStatus(name string, ok bool, env string) {
	if ok {
		fmt.Println(successStyle.Render("✓ " + name + ": configured"))
		return
	}
	fmt.Println(errorStyle.Render("✗ " + name + ": missing " + env))
}
