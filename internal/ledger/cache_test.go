package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestReportCacheRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewReportCache(client, time.Minute)
	ctx := context.Background()

	var missed []DueEntry
	found, err := cache.Get(ctx, ReissueKey(0), &missed)
	require.NoError(t, err)
	require.False(t, found)

	report := []DueEntry{{
		RecipientID: "emp-1",
		ItemID:      "helmet",
		IssuedOn:    date(2024, 6, 10),
		DueOn:       date(2024, 12, 10),
		DaysOverdue: 55,
	}}
	require.NoError(t, cache.Set(ctx, ReissueKey(0), report))

	var got []DueEntry
	found, err = cache.Get(ctx, ReissueKey(0), &got)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, report, got)
}

func TestReportCacheExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewReportCache(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, ReissueKey(7), []DueEntry{}))
	mr.FastForward(2 * time.Minute)

	var got []DueEntry
	found, err := cache.Get(ctx, ReissueKey(7), &got)
	require.NoError(t, err)
	require.False(t, found)
}

func TestReportCacheDisabled(t *testing.T) {
	cache := NewReportCache(nil, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, ReissueKey(0), []DueEntry{}))
	var got []DueEntry
	found, err := cache.Get(ctx, ReissueKey(0), &got)
	require.NoError(t, err)
	require.False(t, found)
}
