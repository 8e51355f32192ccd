// Package driver defines the storage collaborator surface consumed by
// docbind. A backend implements Database/Collection; docbind never talks to
// a store through anything else. Implementations live in the subpackages
// memory, redisdriver and mongodriver.
package driver

import (
	"context"
	"fmt"
	"reflect"
)

// Selector is an equality-match filter: every key must equal the record's
// value for that key.
type Selector map[string]any

// Record is one raw stored document.
type Record map[string]any

// FindOptions carries paging options for Find.
type FindOptions struct {
	Offset int64
	Limit  int64
}

// Reduce folds one record into a per-group accumulator. It is supplied by
// the caller of Group; the driver guarantees it runs once per record in
// registration order within a group.
type Reduce func(rec Record, acc map[string]any)

// Collection is one named bucket of records.
//
// FindOne returns (nil, nil) when nothing matches; absence is not an error.
// Save assigns an identifier under "_id" when the record has none and
// returns the persisted record. Remove reports how many records it deleted.
type Collection interface {
	Name() string
	FindOne(ctx context.Context, sel Selector) (Record, error)
	Find(ctx context.Context, sel Selector, opts *FindOptions) ([]Record, error)
	Group(ctx context.Context, keys []string, sel Selector, initial map[string]any, reduce Reduce) ([]Record, error)
	Save(ctx context.Context, rec Record) (Record, error)
	Remove(ctx context.Context, sel Selector) (int64, error)
	// CoerceID converts an arbitrary value into the backend's identifier
	// type for primary-key lookups.
	CoerceID(v any) any
}

// Database hands out collection handles by name.
type Database interface {
	Collection(name string) Collection
}

// Matches reports whether rec satisfies every equality clause in sel.
func Matches(rec Record, sel Selector) bool {
	for k, want := range sel {
		got, ok := rec[k]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

// Clone returns a shallow copy of rec so callers cannot alias stored state.
func Clone(rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}

// CloneAccumulator copies initial into a fresh accumulator. Slice and map
// values are copied one level deep so concurrent groups never append into
// or write through a shared reference; copied slices have no spare
// capacity, so a later append always reallocates.
func CloneAccumulator(initial map[string]any) map[string]any {
	acc := make(map[string]any, len(initial))
	for k, v := range initial {
		acc[k] = cloneValue(v)
	}
	return acc
}

func cloneValue(v any) any {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return v
		}
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		reflect.Copy(out, rv)
		return out.Interface()
	case reflect.Map:
		if rv.IsNil() {
			return v
		}
		out := reflect.MakeMap(rv.Type())
		for _, k := range rv.MapKeys() {
			out.SetMapIndex(k, rv.MapIndex(k))
		}
		return out.Interface()
	}
	return v
}

// ApplyGroup partitions recs by the values of keys and folds each partition
// through reduce, starting from a fresh copy of initial per group. The
// result rows carry the key fields plus the accumulator entries, in first-
// seen group order. Backends without a server-side grouping primitive build
// Group on top of this.
func ApplyGroup(recs []Record, keys []string, initial map[string]any, reduce Reduce) []Record {
	type bucket struct {
		row Record
		acc map[string]any
	}
	var order []string
	buckets := make(map[string]*bucket)
	for _, rec := range recs {
		gk := ""
		for _, k := range keys {
			gk += fmt.Sprintf("%v\x00", rec[k])
		}
		b, ok := buckets[gk]
		if !ok {
			row := make(Record, len(keys))
			for _, k := range keys {
				row[k] = rec[k]
			}
			b = &bucket{row: row, acc: CloneAccumulator(initial)}
			buckets[gk] = b
			order = append(order, gk)
		}
		reduce(rec, b.acc)
	}
	out := make([]Record, 0, len(order))
	for _, gk := range order {
		b := buckets[gk]
		for k, v := range b.acc {
			b.row[k] = v
		}
		out = append(out, b.row)
	}
	return out
}
