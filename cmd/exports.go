package cmd

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"slidesmith/internal/storage"
)

var exportsCmd = &cobra.Command{
	Use:   "exports",
	Short: "List exported PowerPoint files",
	Long:  `List the .pptx files in the configured export sink, newest first.`,
	RunE:  runExports,
}

func init() {
	rootCmd.AddCommand(exportsCmd)
}

func runExports(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	service, err := buildService(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = service.Close() }()

	entries, err := service.Sink().List(ctx)
	if err != nil {
		return fmt.Errorf("list exports: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println(infoStyle.Render("No exports yet"))
		return nil
	}

	fmt.Println(renderExports(entries))
	return nil
}

func renderExports(entries []storage.Entry) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers("NAME", "SIZE", "UPDATED", "LOCATION")

	for _, e := range entries {
		t.Row(e.Name, strconv.FormatInt(e.Size/1024, 10)+" KB", e.Updated.Local().Format("2006-01-02 15:04"), e.Location)
	}
	return t.String()
}
