package docbind

import (
	"context"
	"fmt"

	"github.com/docbind/docbind/driver"
	"github.com/docbind/docbind/pkg/logger"
)

// maxSaveDepth bounds the cascade walk. Parent chains are expected to be
// shallow; hitting the guard means a parent cycle.
const maxSaveDepth = 64

// Save persists the document and returns the document that was actually
// written. A nested document is never written itself: its validation and
// save hooks run, then the walk continues at the parent until it reaches
// the root, whose attributes are written through the bound collection. The
// returned document is therefore the root, not necessarily the receiver.
func (d *Document) Save(ctx context.Context) (*Document, error) {
	cur := d
	for depth := 0; cur.parent != nil; depth++ {
		if depth >= maxSaveDepth {
			return nil, fmt.Errorf("%w: parent chain longer than %d", ErrSaveDepthExceeded, maxSaveDepth)
		}
		if err := cur.runValidation(); err != nil {
			return nil, err
		}
		s := cur.t.schema
		if err := s.runHooks(BeforeSave, cur); err != nil {
			return nil, err
		}
		if err := s.runHooks(AfterSave, cur); err != nil {
			return nil, err
		}
		logger.Debugf("docbind: save of nested %s routed to parent %s", cur.t.Name(), cur.parent.t.Name())
		cur = cur.parent
	}
	if err := cur.runValidation(); err != nil {
		return nil, err
	}
	s := cur.t.schema
	if err := s.runHooks(BeforeSave, cur); err != nil {
		return nil, err
	}
	col, err := cur.t.Collection()
	if err != nil {
		return nil, err
	}
	snapshot := make(driver.Record, len(cur.attrs))
	for k, v := range cur.attrs {
		snapshot[k] = v
	}
	rec, err := col.Save(ctx, snapshot)
	if err != nil {
		return nil, err
	}
	// The driver assigns the identifier on insert; it becomes visible on
	// the in-memory document immediately.
	if id, ok := rec["_id"]; ok {
		cur.attrs["_id"] = id
	}
	if err := s.runHooks(AfterSave, cur); err != nil {
		return nil, err
	}
	return cur, nil
}

// Destroy removes the record matching the document's identifier. It does
// not cascade structurally: removing a root drops whatever the stored
// record contained, nothing more.
func (d *Document) Destroy(ctx context.Context) (int64, error) {
	if d.NewRecord() {
		return 0, fmt.Errorf("%w: cannot destroy %s", ErrNoIdentity, d.t.Name())
	}
	col, err := d.t.Collection()
	if err != nil {
		return 0, err
	}
	return col.Remove(ctx, driver.Selector{"_id": d.ID()})
}

// UpdateAttributes replaces the entire attribute map with attrs (keys
// normalized) and saves. This is a full replacement, not a merge: any
// attribute missing from attrs is dropped, including the identifier.
func (d *Document) UpdateAttributes(ctx context.Context, attrs map[string]any) (*Document, error) {
	d.attrs = normalizeAttrs(attrs)
	return d.Save(ctx)
}

// Create is New followed by Save, with the create hooks around the write.
func (t *Type) Create(ctx context.Context, attrs map[string]any) (*Document, error) {
	d := t.New(attrs)
	if err := t.schema.runHooks(BeforeCreate, d); err != nil {
		return nil, err
	}
	if _, err := d.Save(ctx); err != nil {
		return nil, err
	}
	if err := t.schema.runHooks(AfterCreate, d); err != nil {
		return nil, err
	}
	return d, nil
}
