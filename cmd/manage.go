package cmd

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"slidesmith/internal/app"
)

var (
	exportVersion int
	favoriteOff   bool
	deleteYes     bool
)

var exportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a saved presentation to PowerPoint",
	Long:  `Export the current (or given) version of a presentation to the configured sink.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

var favoriteCmd = &cobra.Command{
	Use:   "favorite <id>",
	Short: "Mark a presentation as favorite",
	Args:  cobra.ExactArgs(1),
	RunE:  runFavorite,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a presentation and all its versions",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	exportCmd.Flags().IntVar(&exportVersion, "version", 0, "Version number to export (default current)")
	favoriteCmd.Flags().BoolVar(&favoriteOff, "off", false, "Remove the favorite mark")
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Skip the confirmation prompt")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(favoriteCmd)
	rootCmd.AddCommand(deleteCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
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

	var res *app.ExportResult
	err = withSpinner("Exporting presentation", func() error {
		var exportErr error
		res, exportErr = app.NewPipeline(service).ExportPresentation(ctx, scope, args[0], exportVersion)
		return exportErr
	})
	if err != nil {
		return err
	}

	fmt.Println(successStyle.Render("✓ Exported to " + res.Location))
	return nil
}

func runFavorite(cmd *cobra.Command, args []string) error {
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

	if err := service.Store().SetFavorite(ctx, scope, args[0], !favoriteOff); err != nil {
		return err
	}

	if favoriteOff {
		fmt.Println(infoStyle.Render("Removed from favorites"))
	} else {
		fmt.Println(successStyle.Render("★ Added to favorites"))
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if !deleteYes {
		var confirm bool
		if err := huh.NewConfirm().
			Title("Delete presentation " + args[0] + "?").
			Description("All versions are removed. This cannot be undone.").
			Affirmative("Delete").
			Negative("Cancel").
			Value(&confirm).
			Run(); err != nil {
			return err
		}
		if !confirm {
			fmt.Println(infoStyle.Render("Kept presentation"))
			return nil
		}
	}

	scope, err := userScope()
	if err != nil {
		return err
	}

	service, err := buildService(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = service.Close() }()

	if err := service.Store().DeletePresentation(ctx, scope, args[0]); err != nil {
		return err
	}
	fmt.Println(successStyle.Render("✓ Deleted presentation " + args[0]))
	return nil
}
