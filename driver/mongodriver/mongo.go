// Package mongodriver adapts a MongoDB database to the driver contract.
package mongodriver

import (
	"context"
	"fmt"
	"time"

	"github.com/docbind/docbind/driver"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Connect opens a client and verifies the connection with a ping. Caller
// should call client.Disconnect(ctx) when done.
func Connect(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// DB wraps a *mongo.Database as a driver.Database.
type DB struct {
	db *mongo.Database
}

func New(db *mongo.Database) *DB {
	return &DB{db: db}
}

func (d *DB) Collection(name string) driver.Collection {
	return &Collection{col: d.db.Collection(name)}
}

// Collection delegates every primitive to a *mongo.Collection.
type Collection struct {
	col *mongo.Collection
}

func (c *Collection) Name() string { return c.col.Name() }

func (c *Collection) FindOne(ctx context.Context, sel driver.Selector) (driver.Record, error) {
	var rec bson.M
	err := c.col.FindOne(ctx, bson.M(sel)).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return driver.Record(rec), nil
}

func (c *Collection) Find(ctx context.Context, sel driver.Selector, opts *driver.FindOptions) ([]driver.Record, error) {
	findOpts := options.Find()
	if opts != nil {
		if opts.Offset > 0 {
			findOpts.SetSkip(opts.Offset)
		}
		if opts.Limit > 0 {
			findOpts.SetLimit(opts.Limit)
		}
	}
	cur, err := c.col.Find(ctx, bson.M(sel), findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []driver.Record
	for cur.Next(ctx) {
		var rec bson.M
		if err := cur.Decode(&rec); err != nil {
			return nil, err
		}
		out = append(out, driver.Record(rec))
	}
	return out, cur.Err()
}

// Group partitions server-side with $group/$push, then folds each group's
// records through reduce on the client. The reduce callback is a Go closure
// so it cannot run inside mongod; the partitioning still does.
func (c *Collection) Group(ctx context.Context, keys []string, sel driver.Selector, initial map[string]any, reduce driver.Reduce) ([]driver.Record, error) {
	groupID := bson.M{}
	for _, k := range keys {
		groupID[k] = "$" + k
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M(sel)}},
		{{Key: "$group", Value: bson.M{"_id": groupID, "items": bson.M{"$push": "$$ROOT"}}}},
	}
	cur, err := c.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []driver.Record
	for cur.Next(ctx) {
		var row struct {
			ID    bson.M   `bson:"_id"`
			Items []bson.M `bson:"items"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		rec := make(driver.Record, len(keys)+len(initial))
		for _, k := range keys {
			rec[k] = row.ID[k]
		}
		acc := driver.CloneAccumulator(initial)
		for _, item := range row.Items {
			reduce(driver.Record(item), acc)
		}
		for k, v := range acc {
			rec[k] = v
		}
		out = append(out, rec)
	}
	return out, cur.Err()
}

func (c *Collection) Save(ctx context.Context, rec driver.Record) (driver.Record, error) {
	id, ok := rec["_id"]
	if !ok || id == nil {
		doc := driver.Clone(rec)
		delete(doc, "_id")
		res, err := c.col.InsertOne(ctx, bson.M(doc))
		if err != nil {
			return nil, err
		}
		doc["_id"] = res.InsertedID
		return doc, nil
	}
	_, err := c.col.ReplaceOne(ctx, bson.M{"_id": id}, bson.M(rec), options.Replace().SetUpsert(true))
	if err != nil {
		return nil, err
	}
	return driver.Clone(rec), nil
}

func (c *Collection) Remove(ctx context.Context, sel driver.Selector) (int64, error) {
	res, err := c.col.DeleteMany(ctx, bson.M(sel))
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CoerceID parses hex strings into ObjectIDs; anything else passes through
// (Mongo accepts arbitrary _id values).
func (c *Collection) CoerceID(v any) any {
	if s, ok := v.(string); ok {
		if oid, err := primitive.ObjectIDFromHex(s); err == nil {
			return oid
		}
	}
	return v
}
