// Package redisdriver implements the driver contract over Redis hashes: one
// hash per collection, one JSON-encoded record per hash field keyed by _id.
// Selector matching and grouping run client-side; Redis only stores.
package redisdriver

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/docbind/docbind/driver"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "docbind:"

// DB wraps a redis client as a driver.Database.
type DB struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *DB {
	return &DB{rdb: rdb}
}

// Open dials addr and returns a database handle. The connection is lazy;
// failures surface on first use.
func Open(addr, password string, db int) *DB {
	return New(redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}))
}

func (d *DB) Collection(name string) driver.Collection {
	return &Collection{rdb: d.rdb, name: name, key: keyPrefix + name}
}

type Collection struct {
	rdb  *redis.Client
	name string
	key  string
}

func (c *Collection) Name() string { return c.name }

// jsonNormalize rewrites selector values through the same codec stored
// records pass through, so both sides of an equality compare as decoded
// JSON (numbers as float64, nested values as map[string]any/[]any). Without
// this a record saved with a Go int could never be matched by an int
// selector value.
func jsonNormalize(sel driver.Selector) (driver.Selector, error) {
	if len(sel) == 0 {
		return sel, nil
	}
	data, err := json.Marshal(sel)
	if err != nil {
		return nil, fmt.Errorf("redis encode selector: %w", err)
	}
	var out driver.Selector
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("redis decode selector: %w", err)
	}
	return out, nil
}

// load reads the whole hash and decodes every record, sorted by _id so that
// result order is stable across calls (HGETALL order is not).
func (c *Collection) load(ctx context.Context) ([]driver.Record, error) {
	fields, err := c.rdb.HGetAll(ctx, c.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall %s: %w", c.key, err)
	}
	ids := make([]string, 0, len(fields))
	for id := range fields {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]driver.Record, 0, len(ids))
	for _, id := range ids {
		var rec driver.Record
		if err := json.Unmarshal([]byte(fields[id]), &rec); err != nil {
			return nil, fmt.Errorf("redis decode %s/%s: %w", c.key, id, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (c *Collection) FindOne(ctx context.Context, sel driver.Selector) (driver.Record, error) {
	sel, err := jsonNormalize(sel)
	if err != nil {
		return nil, err
	}
	recs, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, rec := range recs {
		if driver.Matches(rec, sel) {
			return rec, nil
		}
	}
	return nil, nil
}

func (c *Collection) Find(ctx context.Context, sel driver.Selector, opts *driver.FindOptions) ([]driver.Record, error) {
	sel, err := jsonNormalize(sel)
	if err != nil {
		return nil, err
	}
	recs, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	var out []driver.Record
	for _, rec := range recs {
		if driver.Matches(rec, sel) {
			out = append(out, rec)
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

func (c *Collection) Group(ctx context.Context, keys []string, sel driver.Selector, initial map[string]any, reduce driver.Reduce) ([]driver.Record, error) {
	recs, err := c.Find(ctx, sel, nil)
	if err != nil {
		return nil, err
	}
	return driver.ApplyGroup(recs, keys, initial, reduce), nil
}

func (c *Collection) Save(ctx context.Context, rec driver.Record) (driver.Record, error) {
	stored := driver.Clone(rec)
	id, ok := stored["_id"].(string)
	if !ok || id == "" {
		id = uuid.NewString()
		stored["_id"] = id
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("redis encode %s: %w", c.key, err)
	}
	if err := c.rdb.HSet(ctx, c.key, id, data).Err(); err != nil {
		return nil, fmt.Errorf("redis hset %s: %w", c.key, err)
	}
	return stored, nil
}

func (c *Collection) Remove(ctx context.Context, sel driver.Selector) (int64, error) {
	sel, err := jsonNormalize(sel)
	if err != nil {
		return 0, err
	}
	recs, err := c.load(ctx)
	if err != nil {
		return 0, err
	}
	var ids []string
	for _, rec := range recs {
		if driver.Matches(rec, sel) {
			if id, ok := rec["_id"].(string); ok {
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := c.rdb.HDel(ctx, c.key, ids...).Result()
	if err != nil {
		return 0, fmt.Errorf("redis hdel %s: %w", c.key, err)
	}
	return n, nil
}

// CoerceID stringifies the value; redis identifiers are uuid strings.
func (c *Collection) CoerceID(v any) any {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
