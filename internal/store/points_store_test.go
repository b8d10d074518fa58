package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointsStore_UpdatePoints(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewPointsStore(db)
	ctx := context.Background()
	playerID := uuid.New()

	balance, err := store.UpdatePoints(ctx, playerID, 250)
	require.NoError(t, err)
	assert.Equal(t, 250.0, balance)

	balance, err = store.UpdatePoints(ctx, playerID, -100)
	require.NoError(t, err)
	assert.Equal(t, 150.0, balance)

	got, err := store.GetBalance(ctx, playerID)
	require.NoError(t, err)
	assert.Equal(t, 150.0, got)
}

func TestPointsStore_GetBalanceUnknownPlayer(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewPointsStore(db)

	balance, err := store.GetBalance(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 0.0, balance)
}

func TestPointsStore_RecordGameStats(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewPointsStore(db)
	ctx := context.Background()
	playerID := uuid.New()

	err := store.RecordGameStats(ctx, GameStats{
		PlayerID:         playerID,
		TurnsToWin:       4,
		EndingMultiplier: 3.0,
		Difficulty:       256,
		EntryPrice:       100,
		Won:              true,
	})
	require.NoError(t, err)

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM game_stats WHERE player_id = ?", playerID.String()))
	assert.Equal(t, 1, count)
}
