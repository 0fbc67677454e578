package store

import (
	"context"
	"testing"
	"time"

	"github.com/DoyleJ11/live-draft-backend/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 9, 1, 18, 0, 0, 0, time.UTC)

func newDraft(t *testing.T, created time.Time) engine.Draft {
	t.Helper()
	d, err := engine.NewDraft(engine.Params{
		Name: "League", CreatedBy: "alice", ParticipantCount: 2, TotalRounds: 1, PIN: "1234",
	}, created)
	require.NoError(t, err)
	return d
}

func TestMemory_CreateFindSave(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	d := newDraft(t, t0)

	require.NoError(t, m.Create(ctx, d))
	require.Error(t, m.Create(ctx, d), "ids are unique")

	got, err := m.FindByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.Name, got.Name)
	assert.Empty(t, got.Participants)

	_, err = got.Join("alice", "A", t0)
	require.NoError(t, err)
	again, _ := m.FindByID(ctx, d.ID)
	assert.Empty(t, again.Participants, "found drafts are copies")

	require.NoError(t, m.Save(ctx, got))
	again, _ = m.FindByID(ctx, d.ID)
	assert.Len(t, again.Participants, 1)

	_, err = m.FindByID(ctx, "missing")
	require.ErrorIs(t, err, ErrDraftNotFound)
	require.ErrorIs(t, m.Save(ctx, newDraft(t, t0)), ErrDraftNotFound)
}

func TestMemory_Delete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	d := newDraft(t, t0)
	require.NoError(t, m.Create(ctx, d))

	require.NoError(t, m.Delete(ctx, d.ID))
	require.ErrorIs(t, m.Delete(ctx, d.ID), ErrDraftNotFound)
	_, err := m.FindByID(ctx, d.ID)
	require.ErrorIs(t, err, ErrDraftNotFound)
}

func TestMemory_Listing(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	old := newDraft(t, t0)
	fresh := newDraft(t, t0.Add(2*time.Hour))
	started := newDraft(t, t0)
	_, err := started.Join("alice", "A", t0)
	require.NoError(t, err)
	require.NoError(t, started.Start(t0))

	for _, d := range []engine.Draft{old, fresh, started} {
		require.NoError(t, m.Create(ctx, d))
	}

	lobbies, err := m.ListByStatus(ctx, engine.StatusLobby)
	require.NoError(t, err)
	require.Len(t, lobbies, 2)
	assert.Equal(t, fresh.ID, lobbies[0].ID, "newest first")

	stale, err := m.ListStaleLobbies(ctx, t0.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, old.ID, stale[0].ID)
}
