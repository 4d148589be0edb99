package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/marshallshelly/bistro/cmd/bistro/output"
	"github.com/marshallshelly/bistro/pkg/client"
	"github.com/marshallshelly/bistro/pkg/console"
	"github.com/marshallshelly/bistro/pkg/export"
	"github.com/marshallshelly/bistro/pkg/schema"
)

var (
	// Report flags
	minRating    int
	exportTarget string
)

// reportCmd groups the reports
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Reports",
}

// ratingsCmd shows the dish ratings report
var ratingsCmd = &cobra.Command{
	Use:   "ratings",
	Short: "Dish ratings report",
	Long: `Show dishes whose average rating is at least --min, best first, with
their comments. The report can be exported as CSV or JSON to a file or to
S3; the format follows the target's extension.

Examples:
  bistro report ratings                     # Average of 3 or more
  bistro report ratings --min 4
  bistro report ratings --export ratings.csv
  bistro report ratings --export s3://reports/ratings.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRatingsReport(cmd)
	},
}

// dashboardCmd shows the summary page
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show totals, top-rated dishes and recent orders",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard(cmd)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd, dashboardCmd)
	reportCmd.AddCommand(ratingsCmd)

	ratingsCmd.Flags().IntVar(&minRating, "min", client.DefaultMinRating, "Minimum average rating (1-5)")
	ratingsCmd.Flags().StringVar(&exportTarget, "export", "", "Write the report to a file or s3://bucket/key")
}

func runRatingsReport(cmd *cobra.Command) error {
	if minRating < 1 || minRating > 5 {
		return fmt.Errorf("--min must be between 1 and 5, got %d", minRating)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)

	rows, err := a.api.Reports.DishRatings(ctx, minRating)
	if err != nil {
		return failure(err, "load ratings report")
	}

	if exportTarget != "" {
		sink, err := export.Open(ctx, exportTarget)
		if err != nil {
			return err
		}
		if err := export.Ratings(ctx, sink, rows); err != nil {
			return fmt.Errorf("failed to export report: %w", err)
		}
		output.Success("Exported %d rows to %s", len(rows), sink.Location())
		return nil
	}

	if jsonOutput {
		return output.JSON(rows)
	}
	table := export.RatingsTable(rows)
	output.Table(table.Header, table.Rows)
	return nil
}

func runDashboard(cmd *cobra.Command) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	d, err := a.console.Dashboard(commandContext(cmd))
	if err != nil {
		return failure(err, "load dashboard")
	}

	if jsonOutput {
		return output.JSON(d)
	}

	output.Section("Totals")
	output.KeyValue([][2]string{
		{"Dishes", strconv.Itoa(d.TotalDishes)},
		{"Users", strconv.Itoa(d.TotalUsers)},
		{"Ratings", strconv.Itoa(d.TotalRatings)},
		{"Orders", strconv.Itoa(d.TotalOrders)},
	})

	output.Section(fmt.Sprintf("Top rated (average %d+)", console.DashboardMinRating))
	if d.TopRatedErr != nil {
		output.Warning("%s", d.TopRatedError)
	} else {
		top := export.RatingsTable(d.TopRated)
		output.Table(top.Header, top.Rows)
	}

	output.Section("Recent orders")
	recent := make([][]string, 0, len(d.RecentOrders))
	for _, o := range d.RecentOrders {
		recent = append(recent, orderLine(o))
	}
	output.Table([]string{"ID", "DATE", "DISH", "USER"}, recent)
	return nil
}

func orderLine(o schema.OrderRow) []string {
	return []string{strconv.Itoa(o.ID), o.Date, o.DishName, o.UserName}
}
