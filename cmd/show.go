package cmd

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"slidesmith/internal/app"
	"slidesmith/internal/deck"
	"slidesmith/internal/store"
)

var showVersion int

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a saved presentation",
	Long:  `Print the outline of a saved presentation and its version history.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().IntVar(&showVersion, "version", 0, "Version number to show (default current)")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	scope, err := userScope()
	if err != nil {
		return err
	}

	service, err := buildService(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = service.Close() }()

	loaded, err := service.Store().LoadPresentation(ctx, scope, args[0])
	if err != nil {
		return err
	}

	d, err := app.SelectVersion(loaded, showVersion)
	if err != nil {
		return err
	}

	if err := printOutline(d); err != nil {
		return err
	}
	printHistory(loaded.History, d.ID)
	return nil
}

func printOutline(d *deck.Deck) error {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(90),
	)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}

	out, err := renderer.Render(deck.Outline(d))
	if err != nil {
		return fmt.Errorf("render outline: %w", err)
	}
	fmt.Print(out)
	return nil
}

func printHistory(history []store.VersionInfo, shownDeckID string) {
	fmt.Println(titleStyle.Render("Versions"))
	for _, v := range history {
		line := fmt.Sprintf("  v%d  %s", v.Number, v.CreatedAt.Local().Format("2006-01-02 15:04"))
		if v.IsCurrent {
			line += "  (current)"
		}
		if v.DeckID == shownDeckID {
			fmt.Println(infoStyle.Render(line + "  ◀"))
			continue
		}
		fmt.Println(line)
	}
}
