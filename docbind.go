// Package docbind is an object-document mapping layer for schemaless
// stores. A document type is described once by a Schema (fields,
// associations, lifecycle hooks, validators) and registered into a
// process-wide registry; instances are Documents whose state lives entirely
// in an attribute map. Saves cascade through the root of an embedded
// document tree, and the query helpers rehydrate raw driver records back
// into Documents.
package docbind

import "sync"

// Type is the handle for a registered document type. All type-level
// operations (New, Create, Find...) hang off it.
type Type struct {
	schema *Schema
}

var registry = struct {
	sync.RWMutex
	types map[string]*Type
}{types: make(map[string]*Type)}

// Register processes a schema into a type handle and publishes it under the
// schema's name. Re-registering a name replaces the previous type, which
// also lets tests redefine types in isolation.
func Register(s *Schema) *Type {
	t := &Type{schema: s}
	registry.Lock()
	registry.types[s.name] = t
	registry.Unlock()
	return t
}

// Lookup returns the registered type for name, demodularized.
func Lookup(name string) (*Type, bool) {
	registry.RLock()
	t, ok := registry.types[demodularize(name)]
	registry.RUnlock()
	return t, ok
}

// ResetRegistry drops all registered types. Test isolation only.
func ResetRegistry() {
	registry.Lock()
	registry.types = make(map[string]*Type)
	registry.Unlock()
}

// Name returns the canonical type name.
func (t *Type) Name() string { return t.schema.name }

// Schema exposes the descriptor the type was registered with.
func (t *Type) Schema() *Schema { return t.schema }
