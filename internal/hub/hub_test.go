package hub

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DoyleJ11/live-draft-backend/internal/catalog"
	"github.com/DoyleJ11/live-draft-backend/internal/engine"
	"github.com/DoyleJ11/live-draft-backend/internal/room"
	"github.com/DoyleJ11/live-draft-backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore counts FindByID calls and makes them slow enough to overlap.
type countingStore struct {
	*store.Memory
	finds atomic.Int32
}

func (c *countingStore) FindByID(ctx context.Context, id string) (engine.Draft, error) {
	c.finds.Add(1)
	time.Sleep(20 * time.Millisecond)
	return c.Memory.FindByID(ctx, id)
}

func newTestHub(t *testing.T) (*Hub, *countingStore) {
	t.Helper()
	st := &countingStore{Memory: store.NewMemory()}
	h := NewHub(context.Background(), room.Deps{
		Catalog: catalog.NewMemory(),
		Store:   st,
	})
	t.Cleanup(h.Shutdown)
	return h, st
}

func newDraft(t *testing.T) engine.Draft {
	t.Helper()
	d, err := engine.NewDraft(engine.Params{
		Name: "League", CreatedBy: "alice", ParticipantCount: 2, TotalRounds: 1, PIN: "1234",
	}, time.Now())
	require.NoError(t, err)
	return d
}

func TestHub_Create_Get_SamePointer(t *testing.T) {
	h, _ := newTestHub(t)
	reply := make(chan *room.Room, 1)

	d := newDraft(t)
	h.Inbox() <- CreateRoom{Draft: d, Reply: reply}
	rm1 := <-reply

	h.Inbox() <- GetRoom{ID: d.ID, Reply: reply}
	rm2 := <-reply

	if rm1 == nil || rm2 == nil || rm1 != rm2 {
		t.Fatalf("expected same room pointer")
	}
}

func TestHub_Room_LoadsOnceFromStore(t *testing.T) {
	h, st := newTestHub(t)
	ctx := context.Background()
	d := newDraft(t)
	require.NoError(t, st.Create(ctx, d))

	var wg sync.WaitGroup
	rooms := make([]*room.Room, 8)
	for i := range rooms {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rm, err := h.Room(ctx, d.ID)
			assert.NoError(t, err)
			rooms[i] = rm
		}(i)
	}
	wg.Wait()

	for _, rm := range rooms[1:] {
		assert.Same(t, rooms[0], rm)
	}
	assert.Equal(t, int32(1), st.finds.Load())

	rm, err := h.Room(ctx, d.ID)
	require.NoError(t, err)
	assert.Same(t, rooms[0], rm)
	assert.Equal(t, int32(1), st.finds.Load(), "running rooms are not reloaded")
}

func TestHub_Room_UnknownDraft(t *testing.T) {
	h, _ := newTestHub(t)
	_, err := h.Room(context.Background(), "nope")
	require.ErrorIs(t, err, store.ErrDraftNotFound)
}

func TestHub_CreateAndDelete(t *testing.T) {
	h, st := newTestHub(t)
	ctx := context.Background()
	d := newDraft(t)

	rm, err := h.Create(ctx, d)
	require.NoError(t, err)
	n, err := h.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, h.Delete(ctx, d.ID))
	select {
	case <-rm.Done():
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("room not stopped after delete")
	}
	_, err = st.Memory.FindByID(ctx, d.ID)
	require.ErrorIs(t, err, store.ErrDraftNotFound)
	require.ErrorIs(t, h.Delete(ctx, d.ID), store.ErrDraftNotFound)

	n, err = h.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

// lookupOnDeleteStore opens the draft's room from inside Delete, the way a
// websocket connect or GET can arrive while a delete is in flight.
type lookupOnDeleteStore struct {
	*store.Memory
	hub *Hub
}

func (s *lookupOnDeleteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.hub.Room(ctx, id); err != nil {
		return err
	}
	return s.Memory.Delete(ctx, id)
}

func TestHub_Delete_LookupDuringDeleteDoesNotReviveDraft(t *testing.T) {
	st := &lookupOnDeleteStore{Memory: store.NewMemory()}
	h := NewHub(context.Background(), room.Deps{Catalog: catalog.NewMemory(), Store: st})
	t.Cleanup(h.Shutdown)
	st.hub = h

	ctx := context.Background()
	d := newDraft(t)
	_, err := h.Create(ctx, d)
	require.NoError(t, err)

	require.NoError(t, h.Delete(ctx, d.ID))

	_, err = h.Room(ctx, d.ID)
	require.ErrorIs(t, err, store.ErrDraftNotFound)
	n, err := h.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestHub_Delete_ConcurrentLookups(t *testing.T) {
	h, st := newTestHub(t)
	ctx := context.Background()
	d := newDraft(t)
	require.NoError(t, st.Memory.Create(ctx, d))

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				_, _ = h.Room(ctx, d.ID)
			}
		}()
	}

	err := h.Delete(ctx, d.ID)
	close(stop)
	wg.Wait()
	require.NoError(t, err)

	_, err = h.Room(ctx, d.ID)
	require.ErrorIs(t, err, store.ErrDraftNotFound)
	n, err := h.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestHub_CreateRoom_RefusesDeletedDraft(t *testing.T) {
	h, _ := newTestHub(t)
	ctx := context.Background()
	d := newDraft(t)
	_, err := h.Create(ctx, d)
	require.NoError(t, err)
	require.NoError(t, h.Delete(ctx, d.ID))

	// A load that read the draft before the delete must not register it.
	reply := make(chan *room.Room, 1)
	h.Inbox() <- CreateRoom{Draft: d, Reply: reply}
	if rm := <-reply; rm != nil {
		t.Fatalf("deleted draft got a room")
	}
}

func TestHub_DeleteIfStale(t *testing.T) {
	h, st := newTestHub(t)
	ctx := context.Background()
	d := newDraft(t)
	require.NoError(t, st.Memory.Create(ctx, d))

	deleted, err := h.DeleteIfStale(ctx, d.ID, d.CreatedAt)
	require.NoError(t, err)
	assert.False(t, deleted, "created at the cutoff is not stale")

	deleted, err = h.DeleteIfStale(ctx, d.ID, d.CreatedAt.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = h.DeleteIfStale(ctx, d.ID, d.CreatedAt.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestHub_Shutdown(t *testing.T) {
	h, _ := newTestHub(t)
	rm, err := h.Create(context.Background(), newDraft(t))
	require.NoError(t, err)

	h.Shutdown()
	<-h.Done()
	select {
	case <-rm.Done():
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("room not stopped with hub")
	}
	_, err = h.Room(context.Background(), rm.ID())
	require.ErrorIs(t, err, ErrClosed)
}
