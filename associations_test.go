package docbind

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHasOneResolution(t *testing.T) {
	freshWorld(t)
	Register(NewSchema("Author").Fields("name"))
	post := Register(NewSchema("Post").Fields("title").HasOne("author"))

	d := post.New(map[string]any{
		"title":  "t",
		"author": map[string]any{"name": "ada"},
	})
	got, err := d.Association("author")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "Author", got.Type().Name())
	name, _ := got.Get("name")
	require.Equal(t, "ada", name)
	require.Same(t, d, got.Parent())
}

func TestBelongsToResolution(t *testing.T) {
	freshWorld(t)
	Register(NewSchema("Author"))
	comment := Register(NewSchema("Comment").BelongsTo("author"))

	d := comment.New(map[string]any{"author": map[string]any{"name": "bo"}})
	got, err := d.Association("author")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Nil(t, got.Parent())
}

func TestHasManyResolution(t *testing.T) {
	freshWorld(t)
	Register(NewSchema("Comment").Fields("text"))
	post := Register(NewSchema("Post").HasMany("comments"))

	d := post.New(map[string]any{
		"comments": []any{
			map[string]any{"text": "one"},
			map[string]any{"text": "two"},
		},
	})
	got, err := d.Associations("comments")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "Comment", got[0].Type().Name())
	text, _ := got[1].Get("text")
	require.Equal(t, "two", text)
	require.Same(t, d, got[0].Parent())
}

func TestAbsentAssociationResolvesToNothing(t *testing.T) {
	freshWorld(t)
	Register(NewSchema("Author"))
	post := Register(NewSchema("Post").HasOne("author").HasMany("comments"))
	Register(NewSchema("Comment"))

	d := post.New(nil)
	got, err := d.Association("author")
	require.NoError(t, err)
	require.Nil(t, got)

	many, err := d.Associations("comments")
	require.NoError(t, err)
	require.Empty(t, many)
}

func TestUnregisteredTargetFailsLazily(t *testing.T) {
	freshWorld(t)
	// declaration precedes the target type's definition and must not fail
	post := Register(NewSchema("Post").HasMany("reviews"))

	d := post.New(map[string]any{"reviews": []any{map[string]any{"x": 1}}})
	_, err := d.Associations("reviews")
	require.ErrorIs(t, err, ErrUnresolvedAssociation)

	// once the target exists the same getter succeeds
	Register(NewSchema("Review"))
	got, err := d.Associations("reviews")
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestAssociationKindMismatch(t *testing.T) {
	freshWorld(t)
	Register(NewSchema("Comment"))
	Register(NewSchema("Author"))
	post := Register(NewSchema("Post").HasMany("comments").HasOne("author"))

	d := post.New(nil)
	_, err := d.Association("comments")
	require.ErrorIs(t, err, ErrAssociationKind)
	_, err = d.Associations("author")
	require.ErrorIs(t, err, ErrAssociationKind)
	_, err = d.Association("nope")
	require.ErrorIs(t, err, ErrUnknownAssociation)
}

func TestSetAssociationSerializes(t *testing.T) {
	freshWorld(t)
	author := Register(NewSchema("Author").Fields("name"))
	comment := Register(NewSchema("Comment").Fields("text"))
	post := Register(NewSchema("Post").HasOne("author").HasMany("comments"))

	d := post.New(nil)
	a := author.New(map[string]any{"name": "ada"})
	require.NoError(t, d.SetAssociation("author", a))

	raw, ok := d.Get("author")
	require.True(t, ok)
	require.Equal(t, map[string]any{"name": "ada"}, raw)

	cs := Documents{
		comment.New(map[string]any{"text": "one"}),
		comment.New(map[string]any{"text": "two"}),
	}
	require.NoError(t, d.SetAssociation("comments", cs))
	got, err := d.Associations("comments")
	require.NoError(t, err)
	require.Len(t, got, 2)

	// clearing
	require.NoError(t, d.SetAssociation("author", nil))
	one, err := d.Association("author")
	require.NoError(t, err)
	require.Nil(t, one)
}

func TestNoCachingBetweenGetterCalls(t *testing.T) {
	freshWorld(t)
	Register(NewSchema("Author").Fields("name"))
	post := Register(NewSchema("Post").HasOne("author"))

	d := post.New(map[string]any{"author": map[string]any{"name": "ada"}})
	first, err := d.Association("author")
	require.NoError(t, err)

	// mutating the stored value is visible on the next access
	d.Set("author", map[string]any{"name": "bo"})
	second, err := d.Association("author")
	require.NoError(t, err)
	require.NotSame(t, first, second)
	name, _ := second.Get("name")
	require.Equal(t, "bo", name)
}
