package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marshallshelly/bistro/pkg/console"
	"github.com/marshallshelly/bistro/pkg/registry"
	"github.com/marshallshelly/bistro/pkg/schema"
)

var (
	// List flags
	filterSeason  int
	filterCountry int
	filterType    int
	filterName    string
	sortBy        string
)

// listCmd lists a resource with reference names resolved
var listCmd = &cobra.Command{
	Use:   "list <resource>",
	Short: "List records of a resource",
	Long: `List the records of a resource. Foreign keys are shown as names.

Resources: ` + strings.Join(registry.Names(), ", ") + `

Examples:
  bistro list dishes                     # All dishes
  bistro list dishes --season 2 --sort name
  bistro list dishes --name soup         # Name contains "soup"
  bistro list recipes --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().IntVar(&filterSeason, "season", 0, "Filter dishes by season ID")
	listCmd.Flags().IntVar(&filterCountry, "country", 0, "Filter dishes by country ID")
	listCmd.Flags().IntVar(&filterType, "type", 0, "Filter dishes by dish type ID")
	listCmd.Flags().StringVar(&filterName, "name", "", "Filter dishes by name (case-insensitive)")
	listCmd.Flags().StringVar(&sortBy, "sort", "", "Sort dishes by id or name, prefix with - to reverse")
}

func runList(cmd *cobra.Command, name string) error {
	res, err := registry.Get(name)
	if err != nil {
		return err
	}
	if err := console.SortDishes(nil, sortBy); err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}

	rows, err := loadRows(commandContext(cmd), a, res)
	if err != nil {
		return failure(err, "load "+res.Name)
	}
	return render(res, rows)
}

func dishFilter() schema.DishFilter {
	return schema.DishFilter{
		SeasonID:  filterSeason,
		CountryID: filterCountry,
		TypeID:    filterType,
		Name:      filterName,
	}
}

// loadRows fetches the display rows of a resource.
func loadRows(ctx context.Context, a *app, res *registry.Resource) (any, error) {
	switch res.Path {
	case a.api.Dishes.Path():
		rows, err := a.console.Dishes(ctx, dishFilter())
		if err != nil {
			return nil, err
		}
		if err := console.SortDishes(rows, sortBy); err != nil {
			return nil, err
		}
		return rows, nil
	case a.api.Chiefs.Path():
		return a.console.Chiefs(ctx)
	case a.api.Users.Path():
		return a.console.Users(ctx)
	case a.api.Recipes.Path():
		return a.console.Recipes(ctx)
	case a.api.Ratings.Path():
		return a.console.Ratings(ctx)
	case a.api.Orders.Path():
		return a.console.Orders(ctx)
	case a.api.Countries.Path():
		return a.api.Countries.GetAll(ctx, nil)
	case a.api.Seasons.Path():
		return a.api.Seasons.GetAll(ctx, nil)
	case a.api.DishTypes.Path():
		return a.api.DishTypes.GetAll(ctx, nil)
	case a.api.Products.Path():
		return a.api.Products.GetAll(ctx, nil)
	default:
		return nil, fmt.Errorf("listing %s is not supported", res.Name)
	}
}
