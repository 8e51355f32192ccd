package mongodriver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Behavior against a live mongod is covered by the shared driver contract;
// these cover the pure conversion paths.

func TestCoerceIDParsesHex(t *testing.T) {
	c := &Collection{}
	oid := primitive.NewObjectID()

	got := c.CoerceID(oid.Hex())
	assert.Equal(t, oid, got)
}

func TestCoerceIDPassesThroughNonHex(t *testing.T) {
	c := &Collection{}
	assert.Equal(t, "doc-123", c.CoerceID("doc-123"))
	assert.Equal(t, 42, c.CoerceID(42))

	oid := primitive.NewObjectID()
	assert.Equal(t, oid, c.CoerceID(oid))
}
