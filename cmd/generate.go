package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"slidesmith/internal/app"
	"slidesmith/internal/deck"
)

var (
	genBrief   deck.Brief
	genExample string
	genExport  bool
	genNoSave  bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a deck from a brief",
	Long: `Generate a five-slide deck from a brief and save it as a new presentation.
Fields not given as flags are asked for interactively.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&genBrief.Topic, "topic", "t", "", "Presentation topic")
	generateCmd.Flags().StringVarP(&genBrief.Audience, "audience", "a", "", "Who the deck is for")
	generateCmd.Flags().StringVarP(&genBrief.Objective, "objective", "o", "", "What the deck should achieve")
	generateCmd.Flags().StringVarP(&genBrief.Situation, "situation", "s", "", "Current situation or context")
	generateCmd.Flags().StringVarP(&genBrief.Insights, "insights", "i", "", "Key data points (optional)")
	generateCmd.Flags().StringVar(&genExample, "example", "", "Start from a built-in example brief by name")
	generateCmd.Flags().BoolVarP(&genExport, "export", "e", false, "Export the deck after saving")
	generateCmd.Flags().BoolVar(&genNoSave, "no-save", false, "Do not save the deck as a presentation")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	brief := genBrief
	if genExample != "" {
		example, err := findExample(genExample)
		if err != nil {
			return err
		}
		brief = mergeBrief(example.Brief, genBrief)
	}

	if brief.Trimmed().Validate() != nil {
		if err := askBrief(&brief); err != nil {
			return err
		}
	}

	service, err := buildService(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = service.Close() }()

	pipeline := app.NewPipeline(service)

	var d *deck.Deck
	err = withSpinner("Generating deck", func() error {
		var genErr error
		d, genErr = pipeline.Generate(ctx, brief)
		return genErr
	})
	if err != nil {
		return err
	}

	if err := printOutline(d); err != nil {
		return err
	}

	if !genNoSave {
		scope, err := userScope()
		if err != nil {
			return err
		}
		id, err := pipeline.Save(ctx, scope, brief, d)
		if err != nil {
			return err
		}
		fmt.Println(successStyle.Render("✓ Saved presentation " + id))
	}

	if genExport {
		res, err := pipeline.Export(ctx, d)
		if err != nil {
			return err
		}
		fmt.Println(successStyle.Render("✓ Exported to " + res.Location))
	}

	return nil
}

func findExample(name string) (deck.Example, error) {
	var names []string
	for _, ex := range deck.Examples() {
		if strings.EqualFold(ex.Name, name) {
			return ex, nil
		}
		names = append(names, ex.Name)
	}
	return deck.Example{}, fmt.Errorf("unknown example %q (have: %s)", name, strings.Join(names, ", "))
}

// mergeBrief overlays the non-empty fields of override onto base.
func mergeBrief(base, override deck.Brief) deck.Brief {
	pick := func(b, o string) string {
		if strings.TrimSpace(o) != "" {
			return o
		}
		return b
	}
	return deck.Brief{
		Topic:     pick(base.Topic, override.Topic),
		Audience:  pick(base.Audience, override.Audience),
		Objective: pick(base.Objective, override.Objective),
		Situation: pick(base.Situation, override.Situation),
		Insights:  pick(base.Insights, override.Insights),
	}
}

func askBrief(brief *deck.Brief) error {
	if fi, err := os.Stdin.Stat(); err != nil || fi.Mode()&os.ModeCharDevice == 0 {
		return brief.Trimmed().Validate()
	}

	fmt.Println(titleStyle.Render("New presentation"))

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Topic").
				Placeholder("Q3 Business Review").
				Value(&brief.Topic).
				Validate(required("Topic")),
			huh.NewInput().
				Title("Audience").
				Placeholder("Executive Leadership Team").
				Value(&brief.Audience).
				Validate(required("Audience")),
		),
		huh.NewGroup(
			huh.NewText().
				Title("Objective").
				Description("What should the audience think or do afterwards?").
				Value(&brief.Objective).
				Validate(required("Objective")),
			huh.NewText().
				Title("Situation").
				Description("Where things stand today").
				Value(&brief.Situation).
				Validate(required("Situation")),
			huh.NewText().
				Title("Key insights").
				Description("Numbers and findings to include (optional)").
				Value(&brief.Insights),
		),
	)
	return form.Run()
}
