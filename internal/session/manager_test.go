package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unfollowframe/internal/frame"
)

func TestManager_CreateGet(t *testing.T) {
	m := NewManager(NewMemoryStore())
	ctx := context.Background()

	hc := &frame.Context{User: frame.User{FID: 42}, Client: frame.Client{Added: true}}
	s, err := m.Create(ctx, hc, time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.EqualValues(t, 42, s.FID)

	got, err := m.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.True(t, got.Context.Client.Added)

	ok, err := m.Validate(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestManager_Update(t *testing.T) {
	m := NewManager(NewMemoryStore())
	ctx := context.Background()

	s, err := m.Create(ctx, &frame.Context{User: frame.User{FID: 1}}, time.Hour)
	require.NoError(t, err)

	s.Status = &frame.Status{State: frame.StateReady, Added: true}
	require.NoError(t, m.Update(ctx, s))

	got, err := m.Get(ctx, s.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Status)
	assert.Equal(t, frame.StateReady, got.Status.State)
}

func TestManager_Delete(t *testing.T) {
	m := NewManager(NewMemoryStore())
	ctx := context.Background()

	s, err := m.Create(ctx, nil, time.Hour)
	require.NoError(t, err)
	require.NoError(t, m.Delete(ctx, s.ID))

	_, err = m.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	ok, err := m.Validate(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManager_ValidateAfterTTL(t *testing.T) {
	store := &memoryStore{items: make(map[string]memoryItem), now: time.Now}
	m := NewManager(store)
	ctx := context.Background()

	s, err := m.Create(ctx, nil, time.Minute)
	require.NoError(t, err)

	store.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	ok, err := m.Validate(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManager_Expired(t *testing.T) {
	store := NewMemoryStore()
	m := &manager{store: store, now: time.Now}
	ctx := context.Background()

	s, err := m.Create(ctx, nil, time.Hour)
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = m.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.ErrorIs(t, m.Update(ctx, s), ErrSessionExpired)
}

func TestManager_InvalidMaxAge(t *testing.T) {
	_, err := NewManager(NewMemoryStore()).Create(context.Background(), nil, 0)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestMemoryStore_TTL(t *testing.T) {
	s := &memoryStore{items: make(map[string]memoryItem), now: time.Now}
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", "v", time.Minute))
	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	s.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	ok, err := s.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGuard_AcquireOnce(t *testing.T) {
	g := NewGuard(NewMemoryStore(), "frame:add-prompt:", time.Hour)
	ctx := context.Background()

	first, err := g.Acquire(ctx, "s1")
	require.NoError(t, err)
	second, err := g.Acquire(ctx, "s1")
	require.NoError(t, err)
	other, err := g.Acquire(ctx, "s2")
	require.NoError(t, err)

	assert.True(t, first)
	assert.False(t, second)
	assert.True(t, other)
}
