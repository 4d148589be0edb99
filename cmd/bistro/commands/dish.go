package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/marshallshelly/bistro/cmd/bistro/output"
	"github.com/marshallshelly/bistro/pkg/registry"
	"github.com/marshallshelly/bistro/pkg/schema"
)

var (
	// Search flags
	searchCountry int
	searchSeason  int
	searchGroup   int
)

// reportColumns are the columns of the seasonal and search views.
var reportColumns = []registry.Column{
	{Header: "ID", Key: "id_dish"},
	{Header: "NAME", Key: "name_dish"},
	{Header: "SEASON", Key: "season_name"},
	{Header: "COUNTRY", Key: "country_name"},
	{Header: "TYPE", Key: "dish_type"},
	{Header: "CHIEF", Key: "chief_name"},
}

// dishCmd groups the dish procedures
var dishCmd = &cobra.Command{
	Use:   "dish",
	Short: "Dish procedures",
	Long: `Run the dish procedures of the API.

Subcommands:
  seasonal     - Dishes of a season
  cost         - Ingredient cost of a dish
  change-chef  - Assign a dish to another chief
  search       - Search dishes by country, season and type`,
}

// seasonalCmd lists the dishes of a season
var seasonalCmd = &cobra.Command{
	Use:   "seasonal <season>",
	Short: "List the dishes of a season",
	Long: `List the dishes of a season. The season is sent as given, so both
IDs and names are accepted when the server supports them.

Examples:
  bistro dish seasonal 2
  bistro dish seasonal Summer`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeasonal(cmd, args[0])
	},
}

// costCmd shows the cost of a dish
var costCmd = &cobra.Command{
	Use:   "cost <dishId>",
	Short: "Show the ingredient cost of a dish",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCost(cmd, args[0])
	},
}

// changeChefCmd reassigns a dish
var changeChefCmd = &cobra.Command{
	Use:   "change-chef <dishId> <chiefId>",
	Short: "Assign a dish to another chief",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChangeChef(cmd, args[0], args[1])
	},
}

// searchCmd searches dishes
var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search dishes",
	Long: `Search dishes. Only the filters that are set are sent.

Examples:
  bistro dish search --country 1
  bistro dish search --season 2 --group 3`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSearch(cmd)
	},
}

func init() {
	rootCmd.AddCommand(dishCmd)
	dishCmd.AddCommand(seasonalCmd, costCmd, changeChefCmd, searchCmd)

	searchCmd.Flags().IntVar(&searchCountry, "country", 0, "Country ID")
	searchCmd.Flags().IntVar(&searchSeason, "season", 0, "Season ID")
	searchCmd.Flags().IntVar(&searchGroup, "group", 0, "Dish type ID")
}

func positiveID(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return n, nil
}

func renderReport(rows []schema.ReportDishRow) error {
	if jsonOutput {
		return output.JSON(rows)
	}
	header, records, err := tableRows(reportColumns, rows)
	if err != nil {
		return err
	}
	output.Table(header, records)
	return nil
}

func runSeasonal(cmd *cobra.Command, season string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	rows, err := a.console.SeasonalDishes(commandContext(cmd), season)
	if err != nil {
		return failure(err, "load seasonal dishes")
	}
	return renderReport(rows)
}

func runCost(cmd *cobra.Command, arg string) error {
	id, err := positiveID(arg)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	cost, err := a.api.Dishes.Cost(commandContext(cmd), id)
	if err != nil {
		return failure(err, "calculate dish cost")
	}

	if jsonOutput {
		return output.JSON(cost)
	}
	output.KeyValue([][2]string{
		{"Dish", strconv.Itoa(id)},
		{"Cost", strconv.FormatFloat(cost.Cost, 'f', 2, 64)},
	})
	return nil
}

func runChangeChef(cmd *cobra.Command, dishArg, chiefArg string) error {
	dishID, err := positiveID(dishArg)
	if err != nil {
		return err
	}
	chiefID, err := positiveID(chiefArg)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	result, err := a.api.Dishes.ChangeChef(commandContext(cmd), dishID, chiefID)
	if err != nil {
		return failure(err, "change chief")
	}

	if jsonOutput {
		return output.JSON(result)
	}
	if !result.Success {
		return &userError{msg: result.Message}
	}
	msg := result.Message
	if msg == "" {
		msg = fmt.Sprintf("Dish %d assigned to chief %d", dishID, chiefID)
	}
	output.Success("%s", msg)
	return nil
}

func runSearch(cmd *cobra.Command) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	search := schema.DishSearch{CountryID: searchCountry, SeasonID: searchSeason, GroupID: searchGroup}
	rows, err := a.console.SearchDishes(commandContext(cmd), search)
	if err != nil {
		return failure(err, "search dishes")
	}
	return renderReport(rows)
}
