// Package memory implements the driver contract on an in-process map. It is
// the unit-test backbone and a fallback when no real store is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/docbind/docbind/driver"
	"github.com/google/uuid"
)

// DB is an in-memory database. The zero value is not usable; call New.
type DB struct {
	mu   sync.Mutex
	cols map[string]*Collection
}

func New() *DB {
	return &DB{cols: make(map[string]*Collection)}
}

func (db *DB) Collection(name string) driver.Collection {
	db.mu.Lock()
	defer db.mu.Unlock()
	if c, ok := db.cols[name]; ok {
		return c
	}
	c := &Collection{name: name}
	db.cols[name] = c
	return c
}

// Collection keeps records in insertion order so Find and Paginate are
// deterministic without an explicit sort.
type Collection struct {
	name string
	mu   sync.RWMutex
	recs []driver.Record
}

func (c *Collection) Name() string { return c.name }

func (c *Collection) FindOne(_ context.Context, sel driver.Selector) (driver.Record, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, rec := range c.recs {
		if driver.Matches(rec, sel) {
			return driver.Clone(rec), nil
		}
	}
	return nil, nil
}

func (c *Collection) Find(_ context.Context, sel driver.Selector, opts *driver.FindOptions) ([]driver.Record, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []driver.Record
	for _, rec := range c.recs {
		if driver.Matches(rec, sel) {
			out = append(out, driver.Clone(rec))
		}
	}
	if opts != nil {
		if opts.Offset > 0 {
			if opts.Offset >= int64(len(out)) {
				return nil, nil
			}
			out = out[opts.Offset:]
		}
		if opts.Limit > 0 && opts.Limit < int64(len(out)) {
			out = out[:opts.Limit]
		}
	}
	return out, nil
}

func (c *Collection) Group(_ context.Context, keys []string, sel driver.Selector, initial map[string]any, reduce driver.Reduce) ([]driver.Record, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var matched []driver.Record
	for _, rec := range c.recs {
		if driver.Matches(rec, sel) {
			matched = append(matched, driver.Clone(rec))
		}
	}
	return driver.ApplyGroup(matched, keys, initial, reduce), nil
}

func (c *Collection) Save(_ context.Context, rec driver.Record) (driver.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stored := driver.Clone(rec)
	id, ok := stored["_id"]
	if !ok || id == nil {
		stored["_id"] = uuid.NewString()
	} else {
		for i, existing := range c.recs {
			if existing["_id"] == stored["_id"] {
				c.recs[i] = stored
				return driver.Clone(stored), nil
			}
		}
	}
	c.recs = append(c.recs, stored)
	return driver.Clone(stored), nil
}

func (c *Collection) Remove(_ context.Context, sel driver.Selector) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var kept []driver.Record
	var removed int64
	for _, rec := range c.recs {
		if driver.Matches(rec, sel) {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	c.recs = kept
	return removed, nil
}

// CoerceID stringifies the value; memory identifiers are uuid strings.
func (c *Collection) CoerceID(v any) any {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
