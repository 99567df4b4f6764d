package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"slidesmith/internal/store"
)

var (
	listFavorites bool
	listQuery     string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved presentations",
	Long:  `List your saved presentations, most recently updated first.`,
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVarP(&listFavorites, "favorites", "f", false, "Only show favorites")
	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "Filter by topic or audience")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
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

	list, err := service.Store().ListPresentations(ctx, scope)
	if err != nil {
		return err
	}
	list = store.FilterPresentations(list, store.Filter{FavoritesOnly: listFavorites, Query: listQuery})

	if len(list) == 0 {
		fmt.Println(infoStyle.Render("No presentations found"))
		return nil
	}

	fmt.Println(renderPresentations(list))
	return nil
}

func renderPresentations(list []store.Presentation) string {
	header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers("", "ID", "TOPIC", "AUDIENCE", "UPDATED").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	for _, p := range list {
		star := ""
		if p.IsFavorite {
			star = "★"
		}
		t.Row(star, p.ID, p.Topic, p.Audience, p.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	return t.String()
}
