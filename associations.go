package docbind

import "fmt"

// Serializable is the capability association setters require: the value
// must know how to represent itself for storage. Document implements it.
type Serializable interface {
	ToStorageValue() any
}

// Documents adapts a slice of documents for assignment to a has_many
// association.
type Documents []*Document

func (ds Documents) ToStorageValue() any {
	out := make([]any, len(ds))
	for i, d := range ds {
		out[i] = d.ToStorageValue()
	}
	return out
}

// Factory materializes associated documents for an owner. It is invoked
// with the declared kind and accessor name on every getter call; results
// are never cached by the core.
type Factory interface {
	Resolve(kind AssocKind, name string, owner *Document) ([]*Document, error)
}

// embeddedFactory is the default resolution strategy: the serialized
// value(s) under the association key are rehydrated through the registry.
type embeddedFactory struct{}

func (embeddedFactory) Resolve(kind AssocKind, name string, owner *Document) ([]*Document, error) {
	target, ok := Lookup(classify(name))
	if !ok {
		return nil, fmt.Errorf("%w: %s (%s %q on %s)", ErrUnresolvedAssociation, classify(name), kind, name, owner.t.Name())
	}
	raw, present := owner.Get(name)
	if !present || raw == nil {
		return nil, nil
	}
	switch kind {
	case BelongsTo, HasOne:
		attrs, ok := attrsOf(raw)
		if !ok {
			return nil, fmt.Errorf("docbind: %s %q on %s holds %T, want a record", kind, name, owner.t.Name(), raw)
		}
		child := target.New(attrs)
		if kind == HasOne {
			child.parent = owner
		}
		return []*Document{child}, nil
	case HasMany:
		items, ok := listOf(raw)
		if !ok {
			return nil, fmt.Errorf("docbind: %s %q on %s holds %T, want a list", kind, name, owner.t.Name(), raw)
		}
		out := make([]*Document, 0, len(items))
		for i, item := range items {
			attrs, ok := attrsOf(item)
			if !ok {
				return nil, fmt.Errorf("docbind: %s %q on %s element %d holds %T, want a record", kind, name, owner.t.Name(), i, item)
			}
			child := target.New(attrs)
			child.parent = owner
			out = append(out, child)
		}
		return out, nil
	}
	return nil, fmt.Errorf("docbind: unsupported association kind %d", kind)
}

func (d *Document) factory() Factory {
	if d.t.schema.factory != nil {
		return d.t.schema.factory
	}
	return embeddedFactory{}
}

func (d *Document) association(name string) (Association, error) {
	a, ok := d.t.schema.assocs[normalizeKey(name)]
	if !ok {
		return Association{}, fmt.Errorf("%w: %s.%s", ErrUnknownAssociation, d.t.Name(), name)
	}
	return a, nil
}

// Association resolves a singular (belongs_to or has_one) association.
// Returns nil when the attribute is absent. Each call re-resolves; there is
// no caching between calls.
func (d *Document) Association(name string) (*Document, error) {
	a, err := d.association(name)
	if err != nil {
		return nil, err
	}
	if a.Kind == HasMany {
		return nil, fmt.Errorf("%w: %s.%s is has_many, use Associations", ErrAssociationKind, d.t.Name(), a.Name)
	}
	docs, err := d.factory().Resolve(a.Kind, a.Name, d)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return docs[0], nil
}

// Associations resolves a has_many association into an ordered slice.
func (d *Document) Associations(name string) ([]*Document, error) {
	a, err := d.association(name)
	if err != nil {
		return nil, err
	}
	if a.Kind != HasMany {
		return nil, fmt.Errorf("%w: %s.%s is %s, use Association", ErrAssociationKind, d.t.Name(), a.Name, a.Kind)
	}
	return d.factory().Resolve(a.Kind, a.Name, d)
}

// SetAssociation serializes v and stores it under the association's key.
// Passing nil clears the association.
func (d *Document) SetAssociation(name string, v Serializable) error {
	a, err := d.association(name)
	if err != nil {
		return err
	}
	if v == nil {
		d.Set(a.Name, nil)
		return nil
	}
	d.Set(a.Name, v.ToStorageValue())
	return nil
}
