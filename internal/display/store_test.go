package display

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thanhkt275/RMS-BE-sub001/internal/events"
)

func TestMemoryStore_LastWriteWins(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "T")
	require.NoError(t, err)
	assert.False(t, ok)

	first := events.DisplaySettings{TournamentID: "T", DisplayMode: "match", MatchID: "m1", Message: "hello"}
	require.NoError(t, store.Put(ctx, first))

	// The second write replaces the first in full; no field-level merge.
	second := events.DisplaySettings{TournamentID: "T", DisplayMode: "blank"}
	require.NoError(t, store.Put(ctx, second))

	got, ok, err := store.Get(ctx, "T")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, second, got)
	assert.Empty(t, got.MatchID)
	assert.Empty(t, got.Message)
}

func TestMemoryStore_PerTournamentIsolation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, events.DisplaySettings{TournamentID: "A", DisplayMode: "match"}))

	_, ok, err := store.Get(ctx, "B")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_PutAndGet(t *testing.T) {
	rdc, mock := redismock.NewClientMock()
	store := NewRedisStore(rdc)
	ctx := context.Background()

	settings := events.DisplaySettings{TournamentID: "T", DisplayMode: "rankings", UpdatedAt: 99}
	data, err := json.Marshal(settings)
	require.NoError(t, err)

	mock.ExpectSet("display:T", data, redisDisplayTTL).SetVal("OK")
	require.NoError(t, store.Put(ctx, settings))

	mock.ExpectGet("display:T").SetVal(string(data))
	got, ok, err := store.Get(ctx, "T")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, settings, got)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_MissIsNotAnError(t *testing.T) {
	rdc, mock := redismock.NewClientMock()
	store := NewRedisStore(rdc)

	mock.ExpectGet("display:missing").RedisNil()
	_, ok, err := store.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
