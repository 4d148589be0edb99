package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/marshallshelly/bistro/cmd/bistro/tui"
	"github.com/marshallshelly/bistro/pkg/schema"
)

// browseCmd opens the interactive dish browser
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse dishes interactively",
	Long: `Open an interactive list of dishes with reference names and average
ratings. Administrators can delete the selected dish with 'd'.

Examples:
  bistro browse
  bistro browse --season 2 --country 1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBrowse(cmd)
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)

	browseCmd.Flags().IntVar(&filterSeason, "season", 0, "Filter by season ID")
	browseCmd.Flags().IntVar(&filterCountry, "country", 0, "Filter by country ID")
	browseCmd.Flags().IntVar(&filterType, "type", 0, "Filter by dish type ID")
}

// dishSource serves the browser from the console and the dishes endpoint.
type dishSource struct {
	a *app
}

func (s dishSource) Dishes(ctx context.Context, filter schema.DishFilter) ([]schema.DishRow, error) {
	return s.a.console.Dishes(ctx, filter)
}

func (s dishSource) DeleteDish(ctx context.Context, id int) error {
	return s.a.api.Dishes.Delete(ctx, id)
}

func runBrowse(cmd *cobra.Command) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	return tui.RunBrowseUI(commandContext(cmd), dishSource{a}, dishFilter(), a.session.IsAdmin())
}
