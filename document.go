package docbind

import (
	"fmt"
	"reflect"
)

// Document is one mapped record, possibly nested inside a parent. All
// persisted state lives in the attribute map; declared fields and
// associations are views over it, never separate storage.
type Document struct {
	t      *Type
	attrs  map[string]any
	parent *Document
}

// New builds a document from the given attributes. Keys are normalized and
// the map is copied; nil is fine and yields an empty attribute map.
func (t *Type) New(attrs map[string]any) *Document {
	return &Document{t: t, attrs: normalizeAttrs(attrs)}
}

func normalizeAttrs(attrs map[string]any) map[string]any {
	out := make(map[string]any, len(attrs))
	for k, v := range attrs {
		out[normalizeKey(k)] = v
	}
	return out
}

// Type returns the document's registered type handle.
func (d *Document) Type() *Type { return d.t }

// Attributes exposes the live attribute map. Mutating it is equivalent to
// calling Set with already-normalized keys.
func (d *Document) Attributes() map[string]any { return d.attrs }

// Get reads an attribute. Any key may be present, declared as a field or
// not; absence is reported through ok.
func (d *Document) Get(name string) (any, bool) {
	v, ok := d.attrs[normalizeKey(name)]
	return v, ok
}

// Set writes an attribute under its normalized key. No type checking: the
// store is weakly typed to match the schemaless backend.
func (d *Document) Set(name string, v any) {
	d.attrs[normalizeKey(name)] = v
}

// ID returns the storage identifier, or nil for a never-persisted document.
// Identifiers are assigned by the storage layer only.
func (d *Document) ID() any {
	return d.attrs["_id"]
}

// NewRecord reports whether the document has never been persisted.
func (d *Document) NewRecord() bool {
	return d.ID() == nil
}

// Parent returns the owning document, or nil for a root.
func (d *Document) Parent() *Document { return d.parent }

// SetParent links the document under p. Saves then route through p's root.
func (d *Document) SetParent(p *Document) { d.parent = p }

// Field reads a declared field. Undeclared names error; use Get for raw
// attribute access.
func (d *Document) Field(name string) (any, error) {
	key := normalizeKey(name)
	if !d.t.schema.declared(key) {
		return nil, fmt.Errorf("%w: %s.%s", ErrUndeclaredField, d.t.Name(), key)
	}
	return d.attrs[key], nil
}

// SetField writes a declared field.
func (d *Document) SetField(name string, v any) error {
	key := normalizeKey(name)
	if !d.t.schema.declared(key) {
		return fmt.Errorf("%w: %s.%s", ErrUndeclaredField, d.t.Name(), key)
	}
	d.attrs[key] = v
	return nil
}

// ToStorageValue serializes the document for embedding under another
// document's attributes. Document therefore satisfies Serializable, so a
// document can be assigned directly to an association.
func (d *Document) ToStorageValue() any {
	out := make(map[string]any, len(d.attrs))
	for k, v := range d.attrs {
		out[k] = v
	}
	return out
}

// attrsOf coerces a stored value into an attribute map. Drivers hand back
// their own map types (driver.Record, bson.M), all string-keyed maps
// underneath.
func attrsOf(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	for _, k := range rv.MapKeys() {
		out[k.String()] = rv.MapIndex(k).Interface()
	}
	return out, true
}

// listOf coerces a stored value into a slice of elements, accepting any
// concrete slice type ([]any, []driver.Record, bson arrays).
func listOf(v any) ([]any, bool) {
	if l, ok := v.([]any); ok {
		return l, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
