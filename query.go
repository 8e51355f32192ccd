package docbind

import (
	"context"
	"fmt"

	"github.com/docbind/docbind/driver"
)

// FindMode selects first-or-all semantics for Find.
type FindMode int

const (
	First FindMode = iota + 1
	All
)

// DefaultPageSize is the Paginate limit when the caller supplies none.
const DefaultPageSize = 20

// Find is the three-way dispatch entry point: a FindMode (First or All)
// with an optional selector, or any other value treated as a primary key,
// coerced to the backing identifier type by the driver. Returns *Document
// for First and key lookups, []*Document for All.
func (t *Type) Find(ctx context.Context, arg any, sel ...driver.Selector) (any, error) {
	s := driver.Selector{}
	if len(sel) > 0 && sel[0] != nil {
		s = sel[0]
	}
	switch mode := arg.(type) {
	case FindMode:
		switch mode {
		case First:
			return t.FindFirst(ctx, s)
		case All:
			return t.FindAll(ctx, s)
		}
		return nil, fmt.Errorf("docbind: unknown find mode %d", mode)
	default:
		col, err := t.Collection()
		if err != nil {
			return nil, err
		}
		return t.FindFirst(ctx, driver.Selector{"_id": col.CoerceID(arg)})
	}
}

// FindFirst returns the first match, or an identity-less document (empty
// attributes, nil error) when nothing matches. Absence is not an error
// here; callers check NewRecord.
func (t *Type) FindFirst(ctx context.Context, sel driver.Selector) (*Document, error) {
	col, err := t.Collection()
	if err != nil {
		return nil, err
	}
	rec, err := col.FindOne(ctx, sel)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return t.New(nil), nil
	}
	return t.New(rec), nil
}

// FindAll returns every match in driver order.
func (t *Type) FindAll(ctx context.Context, sel driver.Selector) ([]*Document, error) {
	col, err := t.Collection()
	if err != nil {
		return nil, err
	}
	recs, err := col.Find(ctx, sel, nil)
	if err != nil {
		return nil, err
	}
	return t.hydrate(recs), nil
}

// Group is one row of an Aggregate result: the distinct field values and
// how many matching records carried them.
type Group struct {
	Keys  map[string]any
	Count int64
}

// Aggregate counts matching records per distinct combination of fields,
// delegating the accumulation to the driver's group primitive with a
// counting reduce.
func (t *Type) Aggregate(ctx context.Context, fields []string, sel driver.Selector) ([]Group, error) {
	col, err := t.Collection()
	if err != nil {
		return nil, err
	}
	initial := map[string]any{"count": int64(0)}
	reduce := func(_ driver.Record, acc map[string]any) {
		acc["count"] = acc["count"].(int64) + 1
	}
	rows, err := col.Group(ctx, fields, sel, initial, reduce)
	if err != nil {
		return nil, err
	}
	out := make([]Group, 0, len(rows))
	for _, row := range rows {
		g := Group{Keys: make(map[string]any, len(fields))}
		for _, f := range fields {
			g.Keys[f] = row[f]
		}
		g.Count, _ = row["count"].(int64)
		out = append(out, g)
	}
	return out, nil
}

// DocumentGroup is one row of a GroupBy result: the distinct field values
// and the matching records rehydrated into documents.
type DocumentGroup struct {
	Keys  map[string]any
	Group []*Document
}

// GroupBy collects matching raw records per distinct combination of fields,
// then rehydrates every record of every group into a document. This is the
// one place raw grouped driver output is walked element-wise.
func (t *Type) GroupBy(ctx context.Context, fields []string, sel driver.Selector) ([]DocumentGroup, error) {
	col, err := t.Collection()
	if err != nil {
		return nil, err
	}
	initial := map[string]any{"group": []driver.Record(nil)}
	reduce := func(rec driver.Record, acc map[string]any) {
		acc["group"] = append(acc["group"].([]driver.Record), rec)
	}
	rows, err := col.Group(ctx, fields, sel, initial, reduce)
	if err != nil {
		return nil, err
	}
	out := make([]DocumentGroup, 0, len(rows))
	for _, row := range rows {
		g := DocumentGroup{Keys: make(map[string]any, len(fields))}
		for _, f := range fields {
			g.Keys[f] = row[f]
		}
		if recs, ok := row["group"].([]driver.Record); ok {
			g.Group = t.hydrate(recs)
		}
		out = append(out, g)
	}
	return out, nil
}

// PageParams carries pagination input. Zero values mean offset 0 and
// DefaultPageSize.
type PageParams struct {
	Offset int64
	Limit  int64
}

// Paginate returns one page of matching documents.
func (t *Type) Paginate(ctx context.Context, sel driver.Selector, p PageParams) ([]*Document, error) {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	col, err := t.Collection()
	if err != nil {
		return nil, err
	}
	recs, err := col.Find(ctx, sel, &driver.FindOptions{Offset: p.Offset, Limit: p.Limit})
	if err != nil {
		return nil, err
	}
	return t.hydrate(recs), nil
}

func (t *Type) hydrate(recs []driver.Record) []*Document {
	out := make([]*Document, len(recs))
	for i, rec := range recs {
		out[i] = t.New(rec)
	}
	return out
}
