package commands

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marshallshelly/bistro/cmd/bistro/output"
	"github.com/marshallshelly/bistro/pkg/client"
	"github.com/marshallshelly/bistro/pkg/registry"
	"github.com/marshallshelly/bistro/pkg/schema"
)

var (
	// CRUD flags
	data      string
	assumeYes bool
)

// getCmd shows one record
var getCmd = &cobra.Command{
	Use:   "get <resource> <id>",
	Short: "Show one record",
	Long: `Show one record by ID. Recipes take a dish ID and a product ID.

Examples:
  bistro get dishes 3
  bistro get recipes 3 14`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGet(cmd, args)
	},
}

// createCmd creates a record
var createCmd = &cobra.Command{
	Use:   "create <resource>",
	Short: "Create a record",
	Long: `Create a record from a JSON object. Fields use the API names.

Examples:
  bistro create countries --data '{"name_country":"Italy"}'
  bistro create recipes --data '{"id_dish":3,"id_product":14,"gramms":200}'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCreate(cmd, args[0])
	},
}

// updateCmd updates a record
var updateCmd = &cobra.Command{
	Use:   "update <resource> <id>",
	Short: "Update a record",
	Long: `Update a record with the fields of a JSON object. Fields not given
keep their value. Recipes take a dish ID and a product ID.

Examples:
  bistro update dishes 3 --data '{"name_dish":"Lasagne"}'
  bistro update recipes 3 14 --data '{"gramms":250}'`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUpdate(cmd, args)
	},
}

// deleteCmd deletes a record
var deleteCmd = &cobra.Command{
	Use:   "delete <resource> <id>",
	Short: "Delete a record",
	Long: `Delete a record after confirmation. Recipes take a dish ID and a
product ID.

Examples:
  bistro delete dishes 3
  bistro delete orders 12 --yes`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDelete(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(getCmd, createCmd, updateCmd, deleteCmd)

	createCmd.Flags().StringVar(&data, "data", "", "Record as a JSON object (required)")
	updateCmd.Flags().StringVar(&data, "data", "", "Fields to change as a JSON object (required)")
	deleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
}

// crud is the id-addressed surface shared by every typed resource.
type crud interface {
	get(ctx context.Context, id int) (any, error)
	create(ctx context.Context, body any) (any, error)
	update(ctx context.Context, id int, body any) (any, error)
	remove(ctx context.Context, id int) error
}

type typedCRUD[T any] struct {
	r *client.Resource[T]
}

func (c typedCRUD[T]) get(ctx context.Context, id int) (any, error) {
	return c.r.GetByID(ctx, id)
}

func (c typedCRUD[T]) create(ctx context.Context, body any) (any, error) {
	return c.r.Create(ctx, body)
}

func (c typedCRUD[T]) update(ctx context.Context, id int, body any) (any, error) {
	return c.r.Update(ctx, id, body)
}

func (c typedCRUD[T]) remove(ctx context.Context, id int) error {
	return c.r.Delete(ctx, id)
}

// recipeLines adapts the composite-key recipe endpoints.
type recipeLines struct {
	r *client.Recipes
}

func (c recipeLines) get(ctx context.Context, key [2]int) (any, error) {
	return c.r.Get(ctx, key[0], key[1])
}

func (c recipeLines) update(ctx context.Context, key [2]int, body any) (any, error) {
	return c.r.Update(ctx, key[0], key[1], body)
}

func (c recipeLines) remove(ctx context.Context, key [2]int) error {
	return c.r.Delete(ctx, key[0], key[1])
}

func crudFor(api *client.Client, res *registry.Resource) (crud, error) {
	switch res.Path {
	case api.Countries.Path():
		return typedCRUD[schema.Country]{api.Countries}, nil
	case api.Users.Path():
		return typedCRUD[schema.Human]{api.Users}, nil
	case api.Seasons.Path():
		return typedCRUD[schema.Season]{api.Seasons}, nil
	case api.Chiefs.Path():
		return typedCRUD[schema.Chief]{api.Chiefs}, nil
	case api.DishTypes.Path():
		return typedCRUD[schema.DishType]{api.DishTypes}, nil
	case api.Dishes.Path():
		return typedCRUD[schema.Dish]{api.Dishes.Resource}, nil
	case api.Ratings.Path():
		return typedCRUD[schema.DishRating]{api.Ratings}, nil
	case api.Products.Path():
		return typedCRUD[schema.Product]{api.Products}, nil
	case api.Recipes.Path():
		return typedCRUD[schema.Recipe]{api.Recipes.Resource}, nil
	case api.Orders.Path():
		return typedCRUD[schema.Order]{api.Orders}, nil
	default:
		return nil, fmt.Errorf("resource %s has no CRUD endpoints", res.Name)
	}
}

// parseKey reads an ID, or a (dish, product) pair for composite resources.
func parseKey(res *registry.Resource, args []string) (int, [2]int, error) {
	want := 1
	if res.CompositeKey {
		want = 2
	}
	if len(args) != want {
		if res.CompositeKey {
			return 0, [2]int{}, fmt.Errorf("%s are addressed by <dishId> <productId>", res.Name)
		}
		return 0, [2]int{}, fmt.Errorf("%s are addressed by a single <id>", res.Name)
	}

	var ids [2]int
	for i, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil || n <= 0 {
			return 0, [2]int{}, fmt.Errorf("invalid id %q", arg)
		}
		ids[i] = n
	}
	return ids[0], ids, nil
}

func runGet(cmd *cobra.Command, args []string) error {
	res, err := registry.Get(args[0])
	if err != nil {
		return err
	}
	if !res.Gettable {
		return fmt.Errorf("%s cannot be fetched by id, use: bistro list %s", res.Name, res.Name)
	}
	id, key, err := parseKey(res, args[1:])
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)

	var record any
	if res.CompositeKey {
		record, err = recipeLines{a.api.Recipes}.get(ctx, key)
	} else {
		var c crud
		if c, err = crudFor(a.api, res); err != nil {
			return err
		}
		record, err = c.get(ctx, id)
	}
	if err != nil {
		return failure(err, "load "+res.Name)
	}
	return renderRecord(record)
}

func runCreate(cmd *cobra.Command, name string) error {
	res, err := registry.Get(name)
	if err != nil {
		return err
	}
	if data == "" {
		return fmt.Errorf("--data is required")
	}

	record, _, err := res.Decode([]byte(data))
	if err != nil {
		return err
	}
	if err := schema.Validate(record); err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	warnIfNotAdmin(a, res)

	c, err := crudFor(a.api, res)
	if err != nil {
		return err
	}
	created, err := c.create(commandContext(cmd), record)
	if err != nil {
		return failure(err, "create "+res.Name)
	}

	if jsonOutput {
		return output.JSON(created)
	}
	output.Success("Created %s", singular(res.Name))
	return renderRecord(created)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	res, err := registry.Get(args[0])
	if err != nil {
		return err
	}
	if !res.Updatable {
		return fmt.Errorf("%s cannot be updated", res.Name)
	}
	id, key, err := parseKey(res, args[1:])
	if err != nil {
		return err
	}
	if data == "" {
		return fmt.Errorf("--data is required")
	}

	record, keys, err := res.Decode([]byte(data))
	if err != nil {
		return err
	}
	if err := schema.ValidatePartial(record, keys); err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	warnIfNotAdmin(a, res)

	// Only the given fields are sent.
	patch := json.RawMessage(data)
	ctx := commandContext(cmd)

	var updated any
	if res.CompositeKey {
		updated, err = recipeLines{a.api.Recipes}.update(ctx, key, patch)
	} else {
		var c crud
		if c, err = crudFor(a.api, res); err != nil {
			return err
		}
		updated, err = c.update(ctx, id, patch)
	}
	if err != nil {
		return failure(err, "update "+res.Name)
	}

	if jsonOutput {
		return output.JSON(updated)
	}
	output.Success("Updated %s %s", singular(res.Name), strings.Join(args[1:], "/"))
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	res, err := registry.Get(args[0])
	if err != nil {
		return err
	}
	if !res.Deletable {
		return fmt.Errorf("%s cannot be deleted", res.Name)
	}
	id, key, err := parseKey(res, args[1:])
	if err != nil {
		return err
	}

	label := fmt.Sprintf("%s %s", singular(res.Name), strings.Join(args[1:], "/"))
	if !assumeYes && !confirm(cmd.InOrStdin(), fmt.Sprintf("Delete %s?", label)) {
		output.Info("Cancelled")
		return nil
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)

	if res.CompositeKey {
		err = recipeLines{a.api.Recipes}.remove(ctx, key)
	} else {
		var c crud
		if c, err = crudFor(a.api, res); err != nil {
			return err
		}
		err = c.remove(ctx, id)
	}
	if err != nil {
		return failure(err, "delete "+res.Name)
	}

	output.Success("Deleted %s", label)
	return nil
}

func renderRecord(record any) error {
	if jsonOutput {
		return output.JSON(record)
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return err
	}

	// Keep the struct's field order.
	var ordered []string
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err == nil {
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				break
			}
			if k, ok := tok.(string); ok {
				ordered = append(ordered, k)
			}
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				break
			}
		}
	}

	pairs := make([][2]string, 0, len(ordered))
	for _, k := range ordered {
		pairs = append(pairs, [2]string{k, formatCell(fields[k])})
	}
	output.KeyValue(pairs)
	return nil
}

// singular names one record of a collection.
func singular(name string) string {
	switch {
	case strings.HasSuffix(name, "ies"):
		return strings.TrimSuffix(name, "ies") + "y"
	case strings.HasSuffix(name, "shes"):
		return strings.TrimSuffix(name, "es")
	default:
		return strings.TrimSuffix(name, "s")
	}
}

func warnIfNotAdmin(a *app, res *registry.Resource) {
	if res.AdminOnly && !a.session.IsAdmin() {
		output.Warning("Changing %s requires administrator rights", res.Name)
	}
}

// confirm asks a yes/no question on r; anything but y/yes is no.
func confirm(r io.Reader, question string) bool {
	output.Primary("%s [y/N]", question)
	answer, _ := bufio.NewReader(r).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
