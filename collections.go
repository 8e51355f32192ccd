package docbind

import (
	"context"
	"sync"

	"github.com/docbind/docbind/driver"
	"github.com/docbind/docbind/pkg/logger"
	"github.com/docbind/docbind/pkg/metrics"
)

var binder = struct {
	mu      sync.Mutex
	db      driver.Database
	handles map[string]driver.Collection
}{handles: make(map[string]driver.Collection)}

// Bind sets the process-wide database all types resolve their collections
// from, dropping any previously memoized handles.
func Bind(db driver.Database) {
	binder.mu.Lock()
	binder.db = db
	binder.handles = make(map[string]driver.Collection)
	binder.mu.Unlock()
}

// ResetCollections drops the memoized handles without unbinding the
// database. Test isolation only.
func ResetCollections() {
	binder.mu.Lock()
	binder.handles = make(map[string]driver.Collection)
	binder.mu.Unlock()
}

// Collection resolves the storage collection for the type, derived from the
// type name (see CollectionName) and memoized for the process lifetime.
// First resolution pays the lookup; later calls reuse the handle. Safe
// under concurrent first access.
func (t *Type) Collection() (driver.Collection, error) {
	binder.mu.Lock()
	defer binder.mu.Unlock()
	if binder.db == nil {
		return nil, ErrNotBound
	}
	if c, ok := binder.handles[t.schema.name]; ok {
		return c, nil
	}
	name := CollectionName(t.schema.name)
	c := &instrumented{next: binder.db.Collection(name)}
	binder.handles[t.schema.name] = c
	logger.Debugf("docbind: bound type %s to collection %q", t.schema.name, name)
	return c, nil
}

// instrumented counts driver calls per collection. Pure pass-through
// otherwise.
type instrumented struct {
	next driver.Collection
}

func (c *instrumented) Name() string { return c.next.Name() }

func (c *instrumented) FindOne(ctx context.Context, sel driver.Selector) (driver.Record, error) {
	metrics.QueriesTotal.WithLabelValues(c.next.Name()).Inc()
	return c.next.FindOne(ctx, sel)
}

func (c *instrumented) Find(ctx context.Context, sel driver.Selector, opts *driver.FindOptions) ([]driver.Record, error) {
	metrics.QueriesTotal.WithLabelValues(c.next.Name()).Inc()
	return c.next.Find(ctx, sel, opts)
}

func (c *instrumented) Group(ctx context.Context, keys []string, sel driver.Selector, initial map[string]any, reduce driver.Reduce) ([]driver.Record, error) {
	metrics.QueriesTotal.WithLabelValues(c.next.Name()).Inc()
	return c.next.Group(ctx, keys, sel, initial, reduce)
}

func (c *instrumented) Save(ctx context.Context, rec driver.Record) (driver.Record, error) {
	metrics.SavesTotal.WithLabelValues(c.next.Name()).Inc()
	return c.next.Save(ctx, rec)
}

func (c *instrumented) Remove(ctx context.Context, sel driver.Selector) (int64, error) {
	metrics.RemovesTotal.WithLabelValues(c.next.Name()).Inc()
	return c.next.Remove(ctx, sel)
}

func (c *instrumented) CoerceID(v any) any { return c.next.CoerceID(v) }
