package docbind

import (
	"testing"

	"github.com/docbind/docbind/driver/memory"
	"github.com/stretchr/testify/require"
)

// freshWorld resets the type registry and binds a new memory database so
// every test starts from a clean process state.
func freshWorld(t *testing.T) {
	t.Helper()
	ResetRegistry()
	Bind(memory.New())
	t.Cleanup(func() {
		ResetRegistry()
		Bind(memory.New())
	})
}

func TestFieldRoundTrip(t *testing.T) {
	freshWorld(t)
	post := Register(NewSchema("Post").Fields("title", "body"))

	d := post.New(nil)
	require.NoError(t, d.SetField("title", "hello"))
	require.NoError(t, d.SetField("body", "world"))

	v, err := d.Field("title")
	require.NoError(t, err)
	require.Equal(t, "hello", v)

	// unrelated field unaffected
	v, err = d.Field("body")
	require.NoError(t, err)
	require.Equal(t, "world", v)
}

func TestUndeclaredFieldErrorsButRawAccessWorks(t *testing.T) {
	freshWorld(t)
	post := Register(NewSchema("Post").Fields("title"))

	d := post.New(nil)
	_, err := d.Field("views")
	require.ErrorIs(t, err, ErrUndeclaredField)
	require.ErrorIs(t, d.SetField("views", 3), ErrUndeclaredField)

	// the attribute store itself is open: any key may be written and read
	d.Set("views", 3)
	v, ok := d.Get("views")
	require.True(t, ok)
	require.Equal(t, 3, v)
}

func TestFieldsRedeclarationReplaces(t *testing.T) {
	freshWorld(t)
	s := NewSchema("Post").Fields("title", "body")
	s.Fields("title")
	post := Register(s)

	d := post.New(nil)
	require.NoError(t, d.SetField("title", "x"))
	_, err := d.Field("body")
	require.ErrorIs(t, err, ErrUndeclaredField)
}

func TestKeyNormalization(t *testing.T) {
	freshWorld(t)
	post := Register(NewSchema("Post").Fields("title"))

	// symbol-style and plain keys from external sources are the same key
	d := post.New(map[string]any{":title": "from-driver"})
	v, err := d.Field("title")
	require.NoError(t, err)
	require.Equal(t, "from-driver", v)

	d.Set(" title ", "trimmed")
	v, _ = d.Get("title")
	require.Equal(t, "trimmed", v)
}

func TestNewRecord(t *testing.T) {
	freshWorld(t)
	post := Register(NewSchema("Post"))

	d := post.New(nil)
	require.True(t, d.NewRecord())
	require.Nil(t, d.ID())

	withID := post.New(map[string]any{"_id": "abc"})
	require.False(t, withID.NewRecord())
	require.Equal(t, "abc", withID.ID())
}

func TestAttributesNeverNil(t *testing.T) {
	freshWorld(t)
	post := Register(NewSchema("Post"))
	d := post.New(nil)
	require.NotNil(t, d.Attributes())
	require.Empty(t, d.Attributes())
}
