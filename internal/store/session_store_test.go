package store

import (
	"context"
	"testing"
	"time"

	"github.com/catsiege/arena-server/internal/guess"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession(playerID uuid.UUID, now time.Time) guess.Session {
	return guess.Session{
		ID:           uuid.New(),
		PlayerID:     playerID,
		Secret:       137,
		MinRange:     1,
		MaxRange:     256,
		Multiplier:   10.0,
		Difficulty:   256,
		Active:       true,
		TurnDeadline: now.Add(15 * time.Second),
		ExpiresAt:    now.Add(30 * time.Minute),
		CreatedAt:    now,
	}
}

func TestSessionStore_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewSessionStore(db)
	ctx := context.Background()
	now := time.Now().UTC()

	session := testSession(uuid.New(), now)
	require.NoError(t, store.Create(ctx, session))

	got, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
	assert.Equal(t, session.PlayerID, got.PlayerID)
	assert.Equal(t, 137, got.Secret)
	assert.Equal(t, 256, got.MaxRange)
	assert.True(t, got.Active)
	assert.False(t, got.Settled)
	assert.WithinDuration(t, session.TurnDeadline, got.TurnDeadline, time.Second)
}

func TestSessionStore_GetMissing(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewSessionStore(db)

	_, err := store.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStore_Update(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewSessionStore(db)
	ctx := context.Background()

	session := testSession(uuid.New(), time.Now().UTC())
	require.NoError(t, store.Create(ctx, session))

	session.MinRange = 129
	session.Turns = 2
	session.PlayerTurns = 1
	session.Multiplier = 8.0
	session.Active = false
	session.Settled = true
	require.NoError(t, store.Update(ctx, session))

	got, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 129, got.MinRange)
	assert.Equal(t, 2, got.Turns)
	assert.Equal(t, 8.0, got.Multiplier)
	assert.False(t, got.Active)
	assert.True(t, got.Settled)
}

func TestSessionStore_ActiveForPlayer(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewSessionStore(db)
	ctx := context.Background()
	now := time.Now().UTC()
	playerID := uuid.New()

	got, err := store.ActiveForPlayer(ctx, playerID)
	require.NoError(t, err)
	assert.Nil(t, got, "no session yet")

	inactive := testSession(playerID, now)
	inactive.Active = false
	require.NoError(t, store.Create(ctx, inactive))

	got, err = store.ActiveForPlayer(ctx, playerID)
	require.NoError(t, err)
	assert.Nil(t, got, "inactive sessions are ignored")

	active := testSession(playerID, now)
	require.NoError(t, store.Create(ctx, active))

	got, err = store.ActiveForPlayer(ctx, playerID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, active.ID, got.ID)

	// Another player's session is invisible.
	got, err = store.ActiveForPlayer(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionStore_ExpireStale(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewSessionStore(db)
	ctx := context.Background()
	now := time.Now().UTC()

	stale := testSession(uuid.New(), now.Add(-2*time.Hour))
	stale.ExpiresAt = now.Add(-time.Hour)
	require.NoError(t, store.Create(ctx, stale))

	fresh := testSession(uuid.New(), now)
	require.NoError(t, store.Create(ctx, fresh))

	n, err := store.ExpireStale(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := store.Get(ctx, stale.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	got, err = store.Get(ctx, fresh.ID)
	require.NoError(t, err)
	assert.True(t, got.Active)
}
