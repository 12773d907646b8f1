package queueRepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"winqroo/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(id, shopID string, position int, status models.QueueStatus) models.QueueEntry {
	return models.QueueEntry{
		ID:              id,
		ShopID:          shopID,
		CustomerID:      "customer-" + id,
		Position:        position,
		Status:          status,
		ServiceDuration: 30,
		JoinedAt:        time.Now(),
	}
}

func TestMemoryRepo_InsertAndGet(t *testing.T) {
	repo := NewMemoryQueueRepo()
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, entry("a", "shop-1", 1, models.QueueStatusWaiting), nil))

	got, err := repo.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", got.ID)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepo_InsertAppliesShifts(t *testing.T) {
	repo := NewMemoryQueueRepo()
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, entry("a", "shop-1", 1, models.QueueStatusWaiting), nil))

	// New entry takes position 1, the existing one shifts to 2.
	shifted := []PositionUpdate{{EntryID: "a", Position: 2, EstimatedWait: 30}}
	require.NoError(t, repo.Insert(ctx, entry("b", "shop-1", 1, models.QueueStatusWaiting), shifted))

	active, err := repo.ListActive(ctx, "shop-1")
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "b", active[0].ID)
	assert.Equal(t, "a", active[1].ID)
	assert.Equal(t, 30, active[1].EstimatedWait)
}

func TestMemoryRepo_CompoundWriteIsAllOrNothing(t *testing.T) {
	repo := NewMemoryQueueRepo()
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, entry("a", "shop-1", 1, models.QueueStatusWaiting), nil))

	// One of the rewrites references an entry that does not exist; nothing
	// may be applied.
	bad := []PositionUpdate{
		{EntryID: "a", Position: 2},
		{EntryID: "ghost", Position: 1},
	}
	err := repo.Insert(ctx, entry("b", "shop-1", 1, models.QueueStatusWaiting), bad)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = repo.GetByID(ctx, "b")
	assert.ErrorIs(t, err, ErrNotFound, "rejected insert must not persist the new entry")

	got, err := repo.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Position, "rejected insert must not move existing entries")
}

func TestMemoryRepo_UpdateStatusPreservesPosition(t *testing.T) {
	repo := NewMemoryQueueRepo()
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, entry("a", "shop-1", 2, models.QueueStatusWaiting), nil))

	e := entry("a", "shop-1", 99, models.QueueStatusCancelled)
	require.NoError(t, repo.UpdateStatus(ctx, e, nil))

	got, err := repo.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, models.QueueStatusCancelled, got.Status)
	assert.Equal(t, 2, got.Position, "status writes never touch the stored position")
}

func TestMemoryRepo_FindActiveByCustomer(t *testing.T) {
	repo := NewMemoryQueueRepo()
	ctx := context.Background()

	found, err := repo.FindActiveByCustomer(ctx, "customer-a")
	require.NoError(t, err)
	assert.Nil(t, found)

	require.NoError(t, repo.Insert(ctx, entry("a", "shop-1", 1, models.QueueStatusWaiting), nil))

	found, err = repo.FindActiveByCustomer(ctx, "customer-a")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "a", found.ID)

	require.NoError(t, repo.UpdateStatus(ctx, entry("a", "shop-1", 1, models.QueueStatusNoShow), nil))

	found, err = repo.FindActiveByCustomer(ctx, "customer-a")
	require.NoError(t, err)
	assert.Nil(t, found, "terminal entries do not block a new admission")
}

func TestMemoryRepo_ListActiveExcludesTerminal(t *testing.T) {
	repo := NewMemoryQueueRepo()
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, entry("a", "shop-1", 1, models.QueueStatusWaiting), nil))
	require.NoError(t, repo.Insert(ctx, entry("b", "shop-1", 2, models.QueueStatusInProgress), nil))
	require.NoError(t, repo.Insert(ctx, entry("c", "shop-1", 3, models.QueueStatusCompleted), nil))
	require.NoError(t, repo.Insert(ctx, entry("d", "shop-2", 1, models.QueueStatusWaiting), nil))

	active, err := repo.ListActive(ctx, "shop-1")
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "a", active[0].ID)
	assert.Equal(t, "b", active[1].ID)
}
