package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marshallshelly/bistro/cmd/bistro/output"
	"github.com/marshallshelly/bistro/pkg/client/clienttest"
	"github.com/marshallshelly/bistro/pkg/registry"
	"github.com/marshallshelly/bistro/pkg/runtime"
	"github.com/marshallshelly/bistro/pkg/schema"
)

// cli runs commands against a fake API with a private session file.
type cli struct {
	t   *testing.T
	srv *clienttest.Server
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	t.Setenv(runtime.EnvSession, filepath.Join(t.TempDir(), "session.yaml"))
	t.Setenv(runtime.EnvBaseURL, "")
	return &cli{t: t, srv: clienttest.NewServer(t)}
}

// run executes args with stdin and returns what was printed.
func (c *cli) run(stdin string, args ...string) (string, error) {
	c.t.Helper()
	resetFlags(rootCmd)

	var buf bytes.Buffer
	prev := output.SetWriter(&buf)
	defer output.SetWriter(prev)

	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs(append([]string{"--api", c.srv.BaseURL()}, args...))
	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	for _, fs := range []*pflag.FlagSet{cmd.Flags(), cmd.PersistentFlags()} {
		fs.VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func seedMenu(srv *clienttest.Server) {
	srv.Seed("countries", schema.Country{Name: "Italy"}, schema.Country{Name: "Ukraine"})
	srv.Seed("seasons", schema.Season{Name: "Summer"})
	srv.Seed("dishtypes", schema.DishType{Type: "Soup"})
	srv.Seed("chiefs", schema.Chief{Name: "Mario", CountryID: 1, ExpYears: 10})
	srv.Seed("dishes",
		schema.Dish{Name: "Minestrone", SeasonID: 1, CountryID: 1, GroupID: 1, ChiefID: 1},
		schema.Dish{Name: "Borscht", SeasonID: 1, CountryID: 2, GroupID: 1, ChiefID: 1},
	)
}

func TestLoginAndWhoami(t *testing.T) {
	c := newCLI(t)
	c.srv.Account("admin@example.com", "secret", true)

	out, err := c.run("", "login", "--email", "admin@example.com", "--password", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as admin@example.com (admin)")

	_, err = os.Stat(os.Getenv(runtime.EnvSession))
	require.NoError(t, err)

	out, err = c.run("", "whoami", "--json")
	require.NoError(t, err)
	var who map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &who))
	assert.Equal(t, true, who["authenticated"])
	assert.Equal(t, true, who["is_admin"])

	// The stored token is sent by later commands.
	_, err = c.run("", "list", "countries")
	require.NoError(t, err)
	reqs := c.srv.Requests()
	assert.True(t, strings.HasPrefix(reqs[len(reqs)-1].Authorization, "Bearer "))

	out, err = c.run("", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out")

	out, err = c.run("", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in")
}

func TestLogin_Rejected(t *testing.T) {
	c := newCLI(t)
	c.srv.Account("admin@example.com", "secret", true)

	_, err := c.run("", "login", "--email", "admin@example.com", "--password", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Bad email or password", err.Error())
	assert.ErrorIs(t, err, runtime.ErrUnauthorized)
}

func TestLogin_InvalidEmail(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("", "login", "--email", "not-an-email", "--password", "x")
	require.Error(t, err)

	var verr *runtime.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Empty(t, c.srv.Requests())
}

func TestListDishes(t *testing.T) {
	c := newCLI(t)
	seedMenu(c.srv)

	out, err := c.run("", "list", "dishes", "--sort", "name", "--json")
	require.NoError(t, err)

	var rows []schema.DishRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Borscht", rows[0].Name)
	assert.Equal(t, "Ukraine", rows[0].CountryName)
	assert.Equal(t, "Summer", rows[0].SeasonName)
	assert.Equal(t, "Soup", rows[0].TypeName)
	assert.Equal(t, "Mario", rows[0].ChiefName)
}

func TestListDishes_Table(t *testing.T) {
	c := newCLI(t)
	seedMenu(c.srv)

	out, err := c.run("", "list", "dish", "--name", "BORS")
	require.NoError(t, err)
	assert.Contains(t, out, "Borscht")
	assert.Contains(t, out, "Ukraine")
	assert.NotContains(t, out, "Minestrone")
}

func TestListDishes_SignedInWithoutAdmin(t *testing.T) {
	c := newCLI(t)
	seedMenu(c.srv)
	c.srv.Seed("ratings", schema.DishRating{UserID: 1, DishID: 1, Rate: 5})
	c.srv.Account("ann@example.com", "pw", false)

	_, err := c.run("", "login", "--email", "ann@example.com", "--password", "pw")
	require.NoError(t, err)

	out, err := c.run("", "list", "dishes", "--json")
	require.NoError(t, err)

	var rows []schema.DishRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Italy", rows[0].CountryName)
	assert.Nil(t, rows[0].AvgRating)

	_, err = c.run("", "list", "ratings")
	require.Error(t, err)
	assert.ErrorIs(t, err, runtime.ErrForbidden)
}

func TestList_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "unknown resource", args: []string{"list", "wines"}, want: "wines"},
		{name: "unknown sort key", args: []string{"list", "dishes", "--sort", "price"}, want: "price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCLI(t)
			_, err := c.run("", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Empty(t, c.srv.Requests())
		})
	}
}

func TestList_ServerMessage(t *testing.T) {
	c := newCLI(t)
	c.srv.Fail(http.MethodGet, "/countries", http.StatusInternalServerError, "database is down")

	_, err := c.run("", "list", "countries")
	require.Error(t, err)
	assert.Equal(t, "database is down", err.Error())
	assert.ErrorIs(t, err, runtime.ErrServer)
}

func TestCreateGetUpdateDelete(t *testing.T) {
	c := newCLI(t)

	out, err := c.run("", "create", "countries", "--data", `{"name_country":"Italy"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "Created country")

	out, err = c.run("", "get", "countries", "1", "--json")
	require.NoError(t, err)
	var country schema.Country
	require.NoError(t, json.Unmarshal([]byte(out), &country))
	assert.Equal(t, schema.Country{ID: 1, Name: "Italy"}, country)

	_, err = c.run("", "update", "countries", "1", "--data", `{"name_country":"Italia"}`)
	require.NoError(t, err)
	assert.Equal(t, "Italia", c.srv.Records("countries")[0]["name_country"])

	out, err = c.run("", "delete", "countries", "1", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted country 1")
	assert.Empty(t, c.srv.Records("countries"))
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "missing required field", args: []string{"create", "countries", "--data", `{}`}},
		{name: "rate out of range", args: []string{"create", "ratings", "--data", `{"id_user":1,"id_dish":1,"rate":9}`}},
		{name: "unknown field", args: []string{"create", "countries", "--data", `{"country":"Italy"}`}},
		{name: "no data", args: []string{"create", "countries"}},
		{name: "partial update checks given fields", args: []string{"update", "products", "1", "--data", `{"cost_product":-1}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCLI(t)
			_, err := c.run("", tt.args...)
			require.Error(t, err)
			assert.Empty(t, c.srv.Requests())
		})
	}
}

func TestUpdate_SendsOnlyGivenFields(t *testing.T) {
	c := newCLI(t)
	seedMenu(c.srv)

	_, err := c.run("", "update", "dishes", "2", "--data", `{"name_dish":"Red borscht"}`)
	require.NoError(t, err)

	dish := c.srv.Records("dishes")[1]
	assert.Equal(t, "Red borscht", dish["name_dish"])
	assert.EqualValues(t, 2, dish["id_country"])
}

func TestRecipes_CompositeKey(t *testing.T) {
	c := newCLI(t)
	c.srv.Seed("recipes", schema.Recipe{DishID: 3, ProductID: 14, Grams: 200})

	_, err := c.run("", "update", "recipes", "3", "14", "--data", `{"gramms":250}`)
	require.NoError(t, err)
	assert.EqualValues(t, 250, c.srv.Records("recipes")[0]["gramms"])

	_, err = c.run("", "get", "recipes", "3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "<dishId> <productId>")

	_, err = c.run("", "delete", "recipes", "3", "14", "--yes")
	require.NoError(t, err)
	assert.Empty(t, c.srv.Records("recipes"))
}

func TestDelete_Confirmation(t *testing.T) {
	tests := []struct {
		name    string
		stdin   string
		deleted bool
	}{
		{name: "yes", stdin: "y\n", deleted: true},
		{name: "full yes", stdin: "YES\n", deleted: true},
		{name: "no", stdin: "n\n", deleted: false},
		{name: "empty answer", stdin: "\n", deleted: false},
		{name: "no input", stdin: "", deleted: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCLI(t)
			c.srv.Seed("orders", schema.Order{DishID: 1, UserID: 1, Date: "2024-01-02"})

			out, err := c.run(tt.stdin, "delete", "orders", "1")
			require.NoError(t, err)
			assert.Contains(t, out, "Delete order 1?")

			if tt.deleted {
				assert.Empty(t, c.srv.Records("orders"))
			} else {
				assert.Contains(t, out, "Cancelled")
				assert.Len(t, c.srv.Records("orders"), 1)
			}
		})
	}
}

func TestDelete_NotDeletable(t *testing.T) {
	c := newCLI(t)
	c.srv.Seed("chiefs", schema.Chief{Name: "Mario", CountryID: 1})

	_, err := c.run("", "delete", "chiefs", "1", "--yes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be deleted")
	assert.Len(t, c.srv.Records("chiefs"), 1)
}

func TestListOnlyResources(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "get rating", args: []string{"get", "ratings", "1"}, want: "ratings cannot be fetched by id"},
		{name: "get order", args: []string{"get", "order", "1"}, want: "orders cannot be fetched by id"},
		{name: "update rating", args: []string{"update", "ratings", "1", "--data", `{"rate":4}`}, want: "ratings cannot be updated"},
		{name: "update order", args: []string{"update", "orders", "1", "--data", `{"date":"2024-02-01"}`}, want: "orders cannot be updated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCLI(t)
			c.srv.Seed("ratings", schema.DishRating{UserID: 1, DishID: 1, Rate: 5})
			c.srv.Seed("orders", schema.Order{DishID: 1, UserID: 1, Date: "2024-01-02"})

			_, err := c.run("", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Empty(t, c.srv.Requests())
		})
	}
}

func TestDishProcedures(t *testing.T) {
	c := newCLI(t)
	seedMenu(c.srv)
	c.srv.Seed("chiefs", schema.Chief{Name: "Olena", CountryID: 2})
	c.srv.Seed("products", schema.Product{Name: "Beet", Cost: 4})
	c.srv.Seed("recipes", schema.Recipe{DishID: 2, ProductID: 1, Grams: 500})

	out, err := c.run("", "dish", "cost", "2", "--json")
	require.NoError(t, err)
	var cost schema.DishCost
	require.NoError(t, json.Unmarshal([]byte(out), &cost))
	assert.InDelta(t, 2.0, cost.Cost, 1e-9)

	_, err = c.run("", "dish", "change-chef", "2", "2")
	require.NoError(t, err)
	assert.EqualValues(t, 2, c.srv.Records("dishes")[1]["id_chief"])

	_, err = c.run("", "dish", "change-chef", "2", "99")
	require.Error(t, err)
	assert.Equal(t, "Chef not found", err.Error())

	out, err = c.run("", "dish", "seasonal", "1", "--json")
	require.NoError(t, err)
	var seasonal []schema.ReportDishRow
	require.NoError(t, json.Unmarshal([]byte(out), &seasonal))
	assert.Len(t, seasonal, 2)

	out, err = c.run("", "dish", "search", "--country", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Borscht")
	assert.NotContains(t, out, "Minestrone")
	reqs := c.srv.Requests()
	var search clienttest.Request
	for _, r := range reqs {
		if r.Path == "/dishes/search" {
			search = r
		}
	}
	assert.Equal(t, "2", search.Query.Get("country_id"))
	assert.False(t, search.Query.Has("season_id"))
}

func TestRatingsReport(t *testing.T) {
	c := newCLI(t)
	seedMenu(c.srv)
	c.srv.Seed("ratings",
		schema.DishRating{UserID: 1, DishID: 1, Rate: 5, Comment: "great"},
		schema.DishRating{UserID: 2, DishID: 1, Rate: 4},
		schema.DishRating{UserID: 1, DishID: 2, Rate: 2, Comment: "meh"},
	)

	out, err := c.run("", "report", "ratings", "--json")
	require.NoError(t, err)
	var rows []schema.DishRatingSummary
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Minestrone", rows[0].DishName)
	assert.InDelta(t, 4.5, rows[0].AvgRating, 1e-9)

	target := filepath.Join(t.TempDir(), "ratings.csv")
	out, err = c.run("", "report", "ratings", "--min", "1", "--export", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 2 rows")

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "dish_id,dish_name,avg_rating,comments\n1,Minestrone,4.50,great\n2,Borscht,2.00,meh\n", string(data))

	_, err = c.run("", "report", "ratings", "--min", "6")
	require.Error(t, err)
}

func TestDashboard(t *testing.T) {
	c := newCLI(t)
	seedMenu(c.srv)
	c.srv.Seed("users", schema.Human{Name: "Ann"})
	c.srv.Seed("orders",
		schema.Order{DishID: 1, UserID: 1, Date: "2024-01-01"},
		schema.Order{DishID: 2, UserID: 1, Date: "2024-03-01"},
	)

	out, err := c.run("", "dashboard", "--json")
	require.NoError(t, err)

	var d struct {
		TotalDishes  int               `json:"totalDishes"`
		TotalUsers   int               `json:"totalUsers"`
		TotalOrders  int               `json:"totalOrders"`
		RecentOrders []schema.OrderRow `json:"recentOrders"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.Equal(t, 2, d.TotalDishes)
	assert.Equal(t, 1, d.TotalUsers)
	assert.Equal(t, 2, d.TotalOrders)
	require.Len(t, d.RecentOrders, 2)
	assert.Equal(t, "Borscht", d.RecentOrders[0].DishName)
	assert.Equal(t, "Ann", d.RecentOrders[0].UserName)
}

func TestDashboard_ReportFailure(t *testing.T) {
	c := newCLI(t)
	seedMenu(c.srv)
	c.srv.Fail(http.MethodGet, "/reports/dish_ratings", http.StatusInternalServerError, "report failed")

	out, err := c.run("", "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "Totals")
	assert.Contains(t, out, "report failed")
	assert.Contains(t, out, "Recent orders")

	out, err = c.run("", "dashboard", "--json")
	require.NoError(t, err)
	var d struct {
		TotalDishes   int    `json:"totalDishes"`
		TopRatedError string `json:"topRatedError"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.Equal(t, 2, d.TotalDishes)
	assert.Equal(t, "report failed", d.TopRatedError)
}

func TestNonAdminWriteWarns(t *testing.T) {
	c := newCLI(t)
	c.srv.Account("ann@example.com", "pw", false)

	_, err := c.run("", "login", "--email", "ann@example.com", "--password", "pw")
	require.NoError(t, err)

	out, err := c.run("", "create", "countries", "--data", `{"name_country":"Italy"}`)
	require.Error(t, err)
	assert.Contains(t, out, "requires administrator rights")
	assert.Equal(t, "Admin rights required", err.Error())
	assert.True(t, errors.Is(err, runtime.ErrForbidden))
}

func TestParseKey(t *testing.T) {
	dishes, err := registry.Get("dishes")
	require.NoError(t, err)
	recipes, err := registry.Get("recipes")
	require.NoError(t, err)

	tests := []struct {
		name    string
		res     *registry.Resource
		args    []string
		wantID  int
		wantKey [2]int
		wantErr bool
	}{
		{name: "single id", res: dishes, args: []string{"7"}, wantID: 7, wantKey: [2]int{7, 0}},
		{name: "composite", res: recipes, args: []string{"3", "14"}, wantID: 3, wantKey: [2]int{3, 14}},
		{name: "composite missing product", res: recipes, args: []string{"3"}, wantErr: true},
		{name: "extra id", res: dishes, args: []string{"1", "2"}, wantErr: true},
		{name: "not a number", res: dishes, args: []string{"abc"}, wantErr: true},
		{name: "zero", res: dishes, args: []string{"0"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, key, err := parseKey(tt.res, tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantKey, key)
		})
	}
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{in: nil, want: ""},
		{in: "Italy", want: "Italy"},
		{in: true, want: "yes"},
		{in: false, want: "no"},
		{in: float64(3), want: "3"},
		{in: 4.256, want: "4.26"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatCell(tt.in))
	}
}

func TestSingular(t *testing.T) {
	tests := map[string]string{
		"countries": "country",
		"dishes":    "dish",
		"recipes":   "recipe",
		"dishtypes": "dishtype",
		"orders":    "order",
	}
	for in, want := range tests {
		assert.Equal(t, want, singular(in))
	}
}
