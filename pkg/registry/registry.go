// Package registry describes the API resources the console can address by
// name: their paths, record types and list columns.
package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// Column is one column of a list table. Key is the JSON name of the field
// in the displayed row.
type Column struct {
	Header string
	Key    string
}

// Resource describes one API collection.
type Resource struct {
	Name    string
	Aliases []string
	Path    string
	Record  reflect.Type
	Columns []Column

	// AdminOnly marks collections whose writes need an admin session.
	AdminOnly bool
	// Gettable is false for collections the server only lists.
	Gettable bool
	// Updatable is false for collections the server cannot update in place.
	Updatable bool
	// Deletable is false for collections the server cannot delete from.
	Deletable bool
	// CompositeKey marks records addressed by (dish, product) instead of an ID.
	CompositeKey bool
}

// New returns a pointer to a zero record of the resource's type.
func (r *Resource) New() any {
	return reflect.New(r.Record).Interface()
}

// Decode parses a JSON object into a new record and reports which keys
// were present, so partial updates can be validated field by field.
func (r *Resource) Decode(data []byte) (any, []string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("%s: data must be a JSON object: %w", r.Name, err)
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	record := r.New()
	if err := decoder.Decode(record); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", r.Name, err)
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	return record, keys, nil
}

// Registry is a thread-safe set of resources.
type Registry struct {
	mu    sync.RWMutex
	order []*Resource
	names map[string]*Resource
	types map[reflect.Type]*Resource
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		names: make(map[string]*Resource),
		types: make(map[reflect.Type]*Resource),
	}
}

// Register adds a resource. Names and aliases are matched case-insensitively
// and must be unique.
func (r *Registry) Register(res Resource) error {
	if res.Name == "" {
		return fmt.Errorf("resource name is required")
	}
	if !strings.HasPrefix(res.Path, "/") {
		return fmt.Errorf("resource %s: path must start with /, got %q", res.Name, res.Path)
	}
	if res.Record == nil || res.Record.Kind() != reflect.Struct {
		return fmt.Errorf("resource %s: record must be a struct type", res.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	keys := append([]string{res.Name}, res.Aliases...)
	for _, k := range keys {
		if _, exists := r.names[strings.ToLower(k)]; exists {
			return fmt.Errorf("resource name %q already registered", k)
		}
	}

	stored := res
	for _, k := range keys {
		r.names[strings.ToLower(k)] = &stored
	}
	if _, exists := r.types[res.Record]; !exists {
		r.types[res.Record] = &stored
	}
	r.order = append(r.order, &stored)
	return nil
}

// Get resolves a resource by name or alias.
func (r *Registry) Get(name string) (*Resource, error) {
	r.mu.RLock()
	res, ok := r.names[strings.ToLower(strings.TrimSpace(name))]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown resource %q", name)
	}
	return res, nil
}

// GetByType resolves a resource by record type.
func (r *Registry) GetByType(t reflect.Type) (*Resource, error) {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	r.mu.RLock()
	res, ok := r.types[t]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("no resource for type %v", t)
	}
	return res, nil
}

// All returns the resources in registration order.
func (r *Registry) All() []*Resource {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Resource(nil), r.order...)
}

// Names returns the primary names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.order))
	for _, res := range r.order {
		names = append(names, res.Name)
	}
	return names
}

// globalRegistry holds the restaurant resources.
var globalRegistry = newDefaultRegistry()

// Get resolves a resource from the global registry.
func Get(name string) (*Resource, error) {
	return globalRegistry.Get(name)
}

// GetByType resolves a resource by record type from the global registry.
func GetByType(t reflect.Type) (*Resource, error) {
	return globalRegistry.GetByType(t)
}

// All returns every resource of the global registry.
func All() []*Resource {
	return globalRegistry.All()
}

// Names returns the resource names of the global registry.
func Names() []string {
	return globalRegistry.Names()
}
