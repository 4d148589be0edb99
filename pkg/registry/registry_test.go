package registry

import (
	"reflect"
	"slices"
	"testing"

	"github.com/marshallshelly/bistro/pkg/schema"
)

type Widget struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func widgets() Resource {
	return Resource{
		Name:    "widgets",
		Aliases: []string{"widget", "w"},
		Path:    "/widgets",
		Record:  reflect.TypeOf(Widget{}),
		Columns: []Column{{"ID", "id"}, {"Name", "name"}},
	}
}

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()

	t.Run("register new resource", func(t *testing.T) {
		if err := registry.Register(widgets()); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if _, err := registry.Get("widgets"); err != nil {
			t.Errorf("expected resource to be registered: %v", err)
		}
	})

	t.Run("register duplicate name", func(t *testing.T) {
		if err := registry.Register(widgets()); err == nil {
			t.Error("expected error for duplicate name")
		}
	})

	t.Run("register invalid resources", func(t *testing.T) {
		invalid := []Resource{
			{Path: "/x", Record: reflect.TypeOf(Widget{})},
			{Name: "x", Path: "x", Record: reflect.TypeOf(Widget{})},
			{Name: "x", Path: "/x"},
			{Name: "x", Path: "/x", Record: reflect.TypeOf("")},
		}
		for i, res := range invalid {
			if err := registry.Register(res); err == nil {
				t.Errorf("case %d: expected error", i)
			}
		}
	})
}

func TestRegistry_Get(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(widgets()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	tests := []struct {
		name    string
		lookup  string
		wantErr bool
	}{
		{"by name", "widgets", false},
		{"by alias", "w", false},
		{"case insensitive", "WIDGET", false},
		{"surrounding spaces", " widgets ", false},
		{"unknown", "gadgets", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := registry.Get(tt.lookup)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Get(%q) error = %v, wantErr %v", tt.lookup, err, tt.wantErr)
			}
			if !tt.wantErr && res.Name != "widgets" {
				t.Errorf("Get(%q) = %s, want widgets", tt.lookup, res.Name)
			}
		})
	}
}

func TestRegistry_GetByType(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(widgets()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	res, err := registry.GetByType(reflect.TypeOf(&Widget{}))
	if err != nil {
		t.Fatalf("GetByType failed: %v", err)
	}
	if res.Path != "/widgets" {
		t.Errorf("expected /widgets, got %s", res.Path)
	}

	if _, err := registry.GetByType(reflect.TypeOf(schema.Dish{})); err == nil {
		t.Error("expected error for unregistered type")
	}
}

func TestResource_Decode(t *testing.T) {
	res := widgets()

	record, keys, err := res.Decode([]byte(`{"name":"bolt"}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	w, ok := record.(*Widget)
	if !ok {
		t.Fatalf("expected *Widget, got %T", record)
	}
	if w.Name != "bolt" {
		t.Errorf("expected name bolt, got %s", w.Name)
	}
	if !slices.Equal(keys, []string{"name"}) {
		t.Errorf("expected keys [name], got %v", keys)
	}

	if _, _, err := res.Decode([]byte(`{"colour":"red"}`)); err == nil {
		t.Error("expected error for unknown field")
	}
	if _, _, err := res.Decode([]byte(`[1,2]`)); err == nil {
		t.Error("expected error for non-object data")
	}
}

func TestGlobalRegistry(t *testing.T) {
	want := []string{
		"countries", "users", "seasons", "chiefs", "dishtypes",
		"dishes", "ratings", "products", "recipes", "orders",
	}
	if got := Names(); !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}

	if len(All()) != len(want) {
		t.Errorf("expected %d resources, got %d", len(want), len(All()))
	}

	recipes, err := Get("recipe")
	if err != nil {
		t.Fatalf("Get(recipe) failed: %v", err)
	}
	if !recipes.CompositeKey {
		t.Error("expected recipes to use a composite key")
	}

	dishes, err := GetByType(reflect.TypeOf(schema.Dish{}))
	if err != nil {
		t.Fatalf("GetByType(Dish) failed: %v", err)
	}
	if dishes.Name != "dishes" || dishes.Path != "/dishes" {
		t.Errorf("unexpected dish resource %+v", dishes)
	}

	chiefs, _ := Get("chef")
	if chiefs == nil || chiefs.Deletable {
		t.Error("expected chiefs to be resolvable and not deletable")
	}

	for _, name := range []string{"ratings", "orders"} {
		res, _ := Get(name)
		if res == nil || res.Gettable || res.Updatable || !res.Deletable {
			t.Errorf("expected %s to support only create, list and delete", name)
		}
	}

	for _, res := range All() {
		if len(res.Columns) == 0 {
			t.Errorf("%s has no columns", res.Name)
		}
	}
}
