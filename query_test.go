package docbind

import (
	"context"
	"fmt"
	"testing"

	"github.com/docbind/docbind/driver"
	"github.com/stretchr/testify/require"
)

func seedStatuses(t *testing.T, ty *Type) {
	t.Helper()
	ctx := context.Background()
	for _, status := range []string{"open", "open", "closed"} {
		_, err := ty.Create(ctx, map[string]any{"status": status})
		require.NoError(t, err)
	}
}

func TestFindDispatch(t *testing.T) {
	freshWorld(t)
	ticket := Register(NewSchema("Ticket").Fields("status"))
	seedStatuses(t, ticket)
	ctx := context.Background()

	res, err := ticket.Find(ctx, First, driver.Selector{"status": "closed"})
	require.NoError(t, err)
	first, ok := res.(*Document)
	require.True(t, ok)
	status, _ := first.Get("status")
	require.Equal(t, "closed", status)

	res, err = ticket.Find(ctx, All, driver.Selector{"status": "open"})
	require.NoError(t, err)
	all, ok := res.([]*Document)
	require.True(t, ok)
	require.Len(t, all, 2)

	// any other argument is a primary-key lookup
	res, err = ticket.Find(ctx, first.ID())
	require.NoError(t, err)
	byID, ok := res.(*Document)
	require.True(t, ok)
	require.Equal(t, first.ID(), byID.ID())
}

func TestFindFirstNotFoundYieldsIdentitylessDocument(t *testing.T) {
	freshWorld(t)
	ticket := Register(NewSchema("Ticket").Fields("status"))

	d, err := ticket.FindFirst(context.Background(), driver.Selector{"status": "nope"})
	require.NoError(t, err, "absence is not an error")
	require.NotNil(t, d)
	require.True(t, d.NewRecord())
	require.Empty(t, d.Attributes())
}

func TestFindAll(t *testing.T) {
	freshWorld(t)
	ticket := Register(NewSchema("Ticket").Fields("status"))
	seedStatuses(t, ticket)

	all, err := ticket.FindAll(context.Background(), driver.Selector{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	for _, d := range all {
		require.False(t, d.NewRecord())
	}
}

func TestAggregateCountsPerGroup(t *testing.T) {
	freshWorld(t)
	ticket := Register(NewSchema("Ticket").Fields("status"))
	seedStatuses(t, ticket)

	groups, err := ticket.Aggregate(context.Background(), []string{"status"}, driver.Selector{})
	require.NoError(t, err)
	require.Len(t, groups, 2)

	counts := map[string]int64{}
	for _, g := range groups {
		counts[fmt.Sprint(g.Keys["status"])] = g.Count
	}
	require.Equal(t, map[string]int64{"open": 2, "closed": 1}, counts)
}

func TestGroupByRehydratesEveryRecord(t *testing.T) {
	freshWorld(t)
	ticket := Register(NewSchema("Ticket").Fields("status"))
	seedStatuses(t, ticket)

	groups, err := ticket.GroupBy(context.Background(), []string{"status"}, driver.Selector{})
	require.NoError(t, err)
	require.Len(t, groups, 2)

	for _, g := range groups {
		require.NotEmpty(t, g.Group)
		for _, d := range g.Group {
			require.IsType(t, &Document{}, d)
			require.Equal(t, "Ticket", d.Type().Name())
			require.False(t, d.NewRecord(), "group members are documents, not raw records")
			status, _ := d.Get("status")
			require.Equal(t, g.Keys["status"], status)
		}
	}
}

func TestPaginateDefaults(t *testing.T) {
	freshWorld(t)
	ticket := Register(NewSchema("Ticket").Fields("n"))
	ctx := context.Background()
	for i := 0; i < 25; i++ {
		_, err := ticket.Create(ctx, map[string]any{"n": i})
		require.NoError(t, err)
	}

	page, err := ticket.Paginate(ctx, driver.Selector{}, PageParams{})
	require.NoError(t, err)
	require.Len(t, page, DefaultPageSize)
	n, _ := page[0].Get("n")
	require.Equal(t, 0, n, "default offset is 0")

	rest, err := ticket.Paginate(ctx, driver.Selector{}, PageParams{Offset: 20})
	require.NoError(t, err)
	require.Len(t, rest, 5)
	n, _ = rest[0].Get("n")
	require.Equal(t, 20, n)
}

func TestQueriesFailWithoutBoundDatabase(t *testing.T) {
	freshWorld(t)
	ticket := Register(NewSchema("Ticket"))
	binderUnbind(t)

	_, err := ticket.FindAll(context.Background(), driver.Selector{})
	require.ErrorIs(t, err, ErrNotBound)
	_, err = ticket.New(nil).Save(context.Background())
	require.ErrorIs(t, err, ErrNotBound)
}

// binderUnbind clears the bound database for the duration of a test.
func binderUnbind(t *testing.T) {
	t.Helper()
	binder.mu.Lock()
	binder.db = nil
	binder.handles = make(map[string]driver.Collection)
	binder.mu.Unlock()
}
