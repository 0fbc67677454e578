// Package hub owns the registry of live rooms, one per draft.
package hub

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DoyleJ11/live-draft-backend/internal/engine"
	"github.com/DoyleJ11/live-draft-backend/internal/room"
	"github.com/DoyleJ11/live-draft-backend/internal/store"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var ErrClosed = errors.New("hub closed")

// deleteAttempts bounds how often Delete retries when it races with a room
// that is stopping.
const deleteAttempts = 3

type HubMsg interface{ isHubMsg() }

// CreateRoom starts a room for Draft unless one is already running. Reply
// receives nil when the draft has been deleted.
type CreateRoom struct {
	Draft engine.Draft
	Reply chan *room.Room
}

type GetRoom struct {
	ID    string
	Reply chan *room.Room // receives nil when no room is running
}

type CountRooms struct {
	Reply chan int
}

type ShutdownHub struct{}

func (CreateRoom) isHubMsg()  {}
func (GetRoom) isHubMsg()     {}
func (CountRooms) isHubMsg()  {}
func (ShutdownHub) isHubMsg() {}

type Hub struct {
	inbox   chan HubMsg
	rooms   map[string]*room.Room
	deleted map[string]struct{}
	deps    room.Deps
	loads   singleflight.Group
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewHub starts the registry. deps.Store is also where rooms are loaded from.
func NewHub(parent context.Context, deps room.Deps) *Hub {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:   make(chan HubMsg, 64),
		rooms:   make(map[string]*room.Room),
		deleted: make(map[string]struct{}),
		deps:    deps,
		log:     deps.Logger,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) Done() <-chan struct{} { return h.done }

func (h *Hub) loop() {
	defer close(h.done)
	for {
		select {
		case <-h.ctx.Done():
			h.closeAll()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateRoom:
				id := msg.Draft.ID
				if rm := h.live(id); rm != nil {
					msg.Reply <- rm
					break
				}
				if _, ok := h.deleted[id]; ok {
					msg.Reply <- nil
					break
				}
				rm := room.New(h.ctx, msg.Draft, h.deps)
				h.rooms[id] = rm
				h.log.Info("room opened", zap.String("draft_id", id))
				msg.Reply <- rm

			case GetRoom:
				msg.Reply <- h.live(msg.ID) // May be nil

			case CountRooms:
				n := 0
				for id := range h.rooms {
					if h.live(id) != nil {
						n++
					}
				}
				msg.Reply <- n

			case ShutdownHub:
				h.closeAll()
				h.cancel()
				return
			}
		}
	}
}

// live returns the running room for id. Stopped rooms are dropped from the
// registry, and ids of deleted drafts are remembered so they are never
// loaded again.
func (h *Hub) live(id string) *room.Room {
	rm, ok := h.rooms[id]
	if !ok {
		return nil
	}
	if rm.Deleted() {
		delete(h.rooms, id)
		h.deleted[id] = struct{}{}
		h.log.Info("room closed", zap.String("draft_id", id))
		return nil
	}
	if isDone(rm) {
		delete(h.rooms, id)
		return nil
	}
	return rm
}

func (h *Hub) closeAll() {
	for id, rm := range h.rooms {
		rm.Close()
		delete(h.rooms, id)
	}
}

func isDone(rm *room.Room) bool {
	select {
	case <-rm.Done():
		return true
	default:
		return false
	}
}

func (h *Hub) send(ctx context.Context, m HubMsg) error {
	select {
	case h.inbox <- m:
		return nil
	case <-h.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func recv[T any](ctx context.Context, h *Hub, reply <-chan T) (T, error) {
	var zero T
	select {
	case v := <-reply:
		return v, nil
	case <-h.done:
		return zero, ErrClosed
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Create persists a new draft and opens its room.
func (h *Hub) Create(ctx context.Context, d engine.Draft) (*room.Room, error) {
	if err := h.deps.Store.Create(ctx, d); err != nil {
		return nil, err
	}
	return h.open(ctx, d)
}

func (h *Hub) open(ctx context.Context, d engine.Draft) (*room.Room, error) {
	reply := make(chan *room.Room, 1)
	if err := h.send(ctx, CreateRoom{Draft: d, Reply: reply}); err != nil {
		return nil, err
	}
	rm, err := recv(ctx, h, reply)
	if err != nil {
		return nil, err
	}
	if rm == nil {
		return nil, fmt.Errorf("open draft %s: %w", d.ID, store.ErrDraftNotFound)
	}
	return rm, nil
}

func (h *Hub) lookup(ctx context.Context, id string) (*room.Room, error) {
	reply := make(chan *room.Room, 1)
	if err := h.send(ctx, GetRoom{ID: id, Reply: reply}); err != nil {
		return nil, err
	}
	return recv(ctx, h, reply)
}

// Room returns the running room for id, loading the draft from the store
// on first access. Concurrent first accesses share one load.
func (h *Hub) Room(ctx context.Context, id string) (*room.Room, error) {
	if rm, err := h.lookup(ctx, id); err != nil || rm != nil {
		return rm, err
	}

	v, err, _ := h.loads.Do(id, func() (any, error) {
		if rm, err := h.lookup(ctx, id); err != nil || rm != nil {
			return rm, err
		}
		d, err := h.deps.Store.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load draft %s: %w", id, err)
		}
		return h.open(ctx, d)
	})
	if err != nil {
		return nil, err
	}
	return v.(*room.Room), nil
}

// Delete removes the draft with its participants and picks and stops its
// room.
func (h *Hub) Delete(ctx context.Context, id string) error {
	return h.delete(ctx, id, time.Time{})
}

// DeleteIfStale deletes the draft only if it is still a LOBBY created
// before cutoff when its room gets to the request. It reports whether the
// draft was deleted.
func (h *Hub) DeleteIfStale(ctx context.Context, id string, cutoff time.Time) (bool, error) {
	err := h.delete(ctx, id, cutoff)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, room.ErrNotStale), errors.Is(err, store.ErrDraftNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (h *Hub) delete(ctx context.Context, id string, staleBefore time.Time) error {
	var err error
	for range deleteAttempts {
		var rm *room.Room
		rm, err = h.Room(ctx, id)
		if err != nil {
			return err
		}
		err = rm.Delete(ctx, staleBefore)
		if !errors.Is(err, room.ErrClosed) {
			return err
		}
	}
	return err
}

func (h *Hub) Len(ctx context.Context) (int, error) {
	reply := make(chan int, 1)
	if err := h.send(ctx, CountRooms{Reply: reply}); err != nil {
		return 0, err
	}
	return recv(ctx, h, reply)
}

func (h *Hub) Shutdown() {
	select {
	case h.inbox <- ShutdownHub{}:
	case <-h.done:
	}
}
