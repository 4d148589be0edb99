package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/marshallshelly/bistro/pkg/schema"
)

// Recipes addresses recipe lines by their (dish, product) key. The
// id-based Update and Delete of the embedded resource are shadowed.
type Recipes struct {
	*Resource[schema.Recipe]
}

// Get fetches one recipe line.
func (r *Recipes) Get(ctx context.Context, dishID, productID int) (schema.Recipe, error) {
	var recipe schema.Recipe
	err := r.transport.Do(ctx, http.MethodGet, r.linePath(dishID, productID), nil, nil, &recipe)
	return recipe, err
}

// Update sends a partial recipe line.
func (r *Recipes) Update(ctx context.Context, dishID, productID int, partial any) (schema.Recipe, error) {
	var recipe schema.Recipe
	err := r.transport.Do(ctx, http.MethodPut, r.linePath(dishID, productID), nil, partial, &recipe)
	return recipe, err
}

// Delete removes one recipe line.
func (r *Recipes) Delete(ctx context.Context, dishID, productID int) error {
	return r.transport.Do(ctx, http.MethodDelete, r.linePath(dishID, productID), nil, nil, nil)
}

func (r *Recipes) linePath(dishID, productID int) string {
	return fmt.Sprintf("%s/%d/%d", r.path, dishID, productID)
}
