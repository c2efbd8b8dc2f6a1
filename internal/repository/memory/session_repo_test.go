package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetReturnsEmptySessionForUnknownUser(t *testing.T) {
	repo := NewSessionRepo(0)

	sess, err := repo.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, sess.SelectedProductID)
	assert.Nil(t, sess.LastOrderAt)
	assert.False(t, sess.AwaitingContact())
}

func TestSetAndClearSelectedProduct(t *testing.T) {
	repo := NewSessionRepo(0)
	ctx := context.Background()

	require.NoError(t, repo.SetSelectedProduct(ctx, 42, 3))

	sess, err := repo.Get(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, sess.SelectedProductID)
	assert.Equal(t, int64(3), *sess.SelectedProductID)
	assert.True(t, sess.AwaitingContact())

	cleared, err := repo.ClearSelectedProduct(ctx, 42)
	require.NoError(t, err)
	assert.True(t, cleared)

	// повторная отмена — no-op
	cleared, err = repo.ClearSelectedProduct(ctx, 42)
	require.NoError(t, err)
	assert.False(t, cleared)
}

func TestSessionExpiresAfterTTL(t *testing.T) {
	repo := NewSessionRepo(30 * time.Minute)
	ctx := context.Background()

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return current }

	require.NoError(t, repo.SetSelectedProduct(ctx, 42, 3))

	current = current.Add(29 * time.Minute)
	sess, err := repo.Get(ctx, 42)
	require.NoError(t, err)
	assert.True(t, sess.AwaitingContact())

	current = current.Add(2 * time.Minute)
	sess, err = repo.Get(ctx, 42)
	require.NoError(t, err)
	assert.False(t, sess.AwaitingContact())
}

func TestCooldownMarkSurvivesSessionExpiry(t *testing.T) {
	repo := NewSessionRepo(time.Minute)
	ctx := context.Background()

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return current }

	orderedAt := current
	require.NoError(t, repo.SetSelectedProduct(ctx, 42, 3))
	require.NoError(t, repo.SetLastOrderAt(ctx, 42, orderedAt))

	current = current.Add(2 * time.Minute)
	sess, err := repo.Get(ctx, 42)
	require.NoError(t, err)
	assert.False(t, sess.AwaitingContact())
	require.NotNil(t, sess.LastOrderAt)
	assert.True(t, sess.LastOrderAt.Equal(orderedAt))
}

func TestSessionsAreIndependentPerUser(t *testing.T) {
	repo := NewSessionRepo(0)
	ctx := context.Background()

	require.NoError(t, repo.SetSelectedProduct(ctx, 1, 3))

	sess, err := repo.Get(ctx, 2)
	require.NoError(t, err)
	assert.False(t, sess.AwaitingContact())
}
