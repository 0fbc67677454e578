// Package room runs one goroutine per draft. Every command for a draft is
// applied, persisted and broadcast from that goroutine in arrival order.
package room

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/DoyleJ11/live-draft-backend/internal/catalog"
	"github.com/DoyleJ11/live-draft-backend/internal/engine"
	"github.com/DoyleJ11/live-draft-backend/internal/gateway"
	"github.com/DoyleJ11/live-draft-backend/internal/store"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

const DefaultCallTimeout = 3 * time.Second

var (
	ErrClosed   = errors.New("room closed")
	ErrNotStale = errors.New("draft is no longer a stale lobby")
)

type Msg interface{ isRoomMsg() }

// Subscribe registers Outbox for every broadcast and for replies addressed
// to ClientID. The room owns Outbox from here on and closes it on
// Unsubscribe, on shutdown, or when the client falls behind.
type Subscribe struct {
	ClientID string
	Outbox   chan gateway.Envelope
}

type Unsubscribe struct{ ClientID string }

// Submit applies Cmd on behalf of ClientID. Reply, if set, must be buffered.
type Submit struct {
	ClientID string
	Cmd      engine.Command
	Reply    chan<- error
}

// Query sends the requested state to ClientID only.
type Query struct {
	ClientID string
	Op       gateway.Operation
	Reply    chan<- error
}

type GetState struct {
	Reply chan View
}

// DeleteDraft removes the draft from the store and stops the room. When
// StaleBefore is set the draft is only removed if it is still in LOBBY and
// was created before StaleBefore; otherwise Reply gets ErrNotStale.
type DeleteDraft struct {
	StaleBefore time.Time
	Reply       chan<- error
}

type Shutdown struct{}

func (Subscribe) isRoomMsg()   {}
func (Unsubscribe) isRoomMsg() {}
func (Submit) isRoomMsg()      {}
func (Query) isRoomMsg()       {}
func (GetState) isRoomMsg()    {}
func (DeleteDraft) isRoomMsg() {}
func (Shutdown) isRoomMsg()    {}

type View struct {
	Version    int
	NumClients int
	Draft      engine.Draft
}

type Deps struct {
	Catalog     catalog.Catalog
	Store       store.Store
	Clock       clockwork.Clock
	Logger      *zap.Logger
	CallTimeout time.Duration
}

type Room struct {
	id      string
	inbox   chan Msg
	draft   engine.Draft
	version int
	clients map[string]chan gateway.Envelope
	deps    Deps
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	deleted atomic.Bool
}

func New(parent context.Context, initial engine.Draft, deps Deps) *Room {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.CallTimeout <= 0 {
		deps.CallTimeout = DefaultCallTimeout
	}
	ctx, cancel := context.WithCancel(parent)

	r := &Room{
		id:      initial.ID,
		inbox:   make(chan Msg, 64),
		draft:   initial.Clone(),
		clients: make(map[string]chan gateway.Envelope),
		deps:    deps,
		log:     deps.Logger.With(zap.String("draft_id", initial.ID)),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go r.loop()
	return r
}

func (r *Room) ID() string { return r.id }

func (r *Room) Inbox() chan<- Msg { return r.inbox }

// Done is closed once the room goroutine has exited.
func (r *Room) Done() <-chan struct{} { return r.done }

// Close stops the room without going through the inbox.
func (r *Room) Close() { r.cancel() }

// Deleted reports whether the draft was removed from the store. It turns
// true before the DeleteDraft reply is sent.
func (r *Room) Deleted() bool { return r.deleted.Load() }

func (r *Room) Send(ctx context.Context, m Msg) error {
	select {
	case <-r.done:
		return ErrClosed
	default:
	}
	select {
	case r.inbox <- m:
		return nil
	case <-r.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do submits cmd and waits for its outcome.
func (r *Room) Do(ctx context.Context, clientID string, cmd engine.Command) error {
	reply := make(chan error, 1)
	if err := r.Send(ctx, Submit{ClientID: clientID, Cmd: cmd, Reply: reply}); err != nil {
		return err
	}
	return r.await(ctx, reply)
}

// Ask runs a state query for clientID and waits until the reply is queued.
func (r *Room) Ask(ctx context.Context, clientID string, op gateway.Operation) error {
	reply := make(chan error, 1)
	if err := r.Send(ctx, Query{ClientID: clientID, Op: op, Reply: reply}); err != nil {
		return err
	}
	return r.await(ctx, reply)
}

func (r *Room) State(ctx context.Context) (View, error) {
	reply := make(chan View, 1)
	if err := r.Send(ctx, GetState{Reply: reply}); err != nil {
		return View{}, err
	}
	select {
	case v := <-reply:
		return v, nil
	case <-r.done:
		return View{}, ErrClosed
	case <-ctx.Done():
		return View{}, ctx.Err()
	}
}

// Delete removes the draft through the room so it cannot interleave with a
// command for the same draft. A zero staleBefore deletes unconditionally.
func (r *Room) Delete(ctx context.Context, staleBefore time.Time) error {
	reply := make(chan error, 1)
	if err := r.Send(ctx, DeleteDraft{StaleBefore: staleBefore, Reply: reply}); err != nil {
		return err
	}
	return r.await(ctx, reply)
}

func (r *Room) await(ctx context.Context, reply <-chan error) error {
	select {
	case err := <-reply:
		return err
	case <-r.done:
		select {
		case err := <-reply:
			return err
		default:
			return ErrClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Room) loop() {
	defer close(r.done)
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Subscribe:
				if old, ok := r.clients[msg.ClientID]; ok && old != msg.Outbox {
					close(old)
				}
				r.clients[msg.ClientID] = msg.Outbox

			case Unsubscribe:
				if ch, ok := r.clients[msg.ClientID]; ok {
					close(ch)
					delete(r.clients, msg.ClientID)
				}

			case Submit:
				err := r.submit(msg.ClientID, msg.Cmd)
				if err != nil {
					r.fail(msg.ClientID, gateway.Operation(msg.Cmd.Type), err)
				}
				reply(msg.Reply, err)

			case Query:
				err := r.query(msg.ClientID, msg.Op)
				if err != nil {
					r.fail(msg.ClientID, msg.Op, err)
				}
				reply(msg.Reply, err)

			case GetState:
				msg.Reply <- View{
					Version:    r.version,
					NumClients: len(r.clients),
					Draft:      r.draft.Clone(),
				}

			case DeleteDraft:
				err := r.delete(msg.StaleBefore)
				reply(msg.Reply, err)
				if err == nil {
					r.shutdown()
					return
				}

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func reply(ch chan<- error, err error) {
	if ch != nil {
		ch <- err
	}
}

func (r *Room) submit(clientID string, cmd engine.Command) error {
	now := r.deps.Clock.Now()

	events, next, err := engine.Apply(r.draft, cmd, now)
	if err != nil {
		return err
	}

	if cmd.Type == engine.CmdPick || cmd.Type == engine.CmdForcePick {
		if err := r.checkPlayer(cmd.PlayerID); err != nil {
			return err
		}
	}

	var players []catalog.Player
	if gateway.NeedsDraftState(events) {
		if players, err = r.players(next); err != nil {
			return err
		}
	}

	if err := r.save(next); err != nil {
		return err
	}

	r.draft = next
	r.version++

	for _, env := range gateway.Broadcasts(next, events, players, now) {
		r.broadcast(env)
	}
	for _, ev := range events {
		if ev.Type == engine.EvtParticipantJoined {
			r.sendTo(clientID, gateway.Joined(ev.Participant, now))
		}
	}

	r.log.Debug("command applied",
		zap.String("client_id", clientID),
		zap.String("command", string(cmd.Type)),
		zap.Int("version", r.version))
	return nil
}

func (r *Room) query(clientID string, op gateway.Operation) error {
	now := r.deps.Clock.Now()
	switch op {
	case gateway.OpLobbyState:
		r.sendTo(clientID, gateway.LobbyStateReply(r.draft, now))
		return nil
	case gateway.OpDraftState:
		players, err := r.players(r.draft)
		if err != nil {
			return err
		}
		r.sendTo(clientID, gateway.DraftStateReply(r.draft, players, now))
		return nil
	default:
		return engine.NewError(engine.ErrValidation, "Unsupported query %q", op)
	}
}

func (r *Room) fail(clientID string, op gateway.Operation, err error) {
	code, msg := gateway.Classify(op, err)
	if code == gateway.CodeInternal {
		r.log.Error("command failed",
			zap.String("client_id", clientID),
			zap.String("command", string(op)),
			zap.String("code", code),
			zap.Error(err))
	} else {
		r.log.Debug("command rejected",
			zap.String("client_id", clientID),
			zap.String("command", string(op)),
			zap.String("code", code),
			zap.String("reason", msg))
	}
	r.sendTo(clientID, gateway.NewErrorEnvelope(code, msg, r.deps.Clock.Now()))
}

func (r *Room) callCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.ctx, r.deps.CallTimeout)
}

func (r *Room) checkPlayer(id int64) error {
	ctx, cancel := r.callCtx()
	defer cancel()

	_, err := r.deps.Catalog.GetByID(ctx, id)
	if errors.Is(err, catalog.ErrPlayerNotFound) {
		return engine.NewError(engine.ErrNotFound, "Player not found with ID: %d", id)
	}
	if err != nil {
		return fmt.Errorf("look up player %d: %w", id, err)
	}
	return nil
}

// players returns the verified pool plus any picked player outside it.
func (r *Room) players(d engine.Draft) ([]catalog.Player, error) {
	ctx, cancel := r.callCtx()
	defer cancel()

	players, err := r.deps.Catalog.ListVerified(ctx)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	have := make(map[int64]bool, len(players))
	for _, p := range players {
		have[p.ID] = true
	}
	for _, pk := range d.Picks {
		if have[pk.PlayerID] {
			continue
		}
		p, err := r.deps.Catalog.GetByID(ctx, pk.PlayerID)
		if errors.Is(err, catalog.ErrPlayerNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("look up picked player %d: %w", pk.PlayerID, err)
		}
		have[p.ID] = true
		players = append(players, p)
	}
	return players, nil
}

func (r *Room) save(d engine.Draft) error {
	ctx, cancel := r.callCtx()
	defer cancel()

	if err := r.deps.Store.Save(ctx, d); err != nil {
		return fmt.Errorf("persist draft: %w", err)
	}
	return nil
}

func (r *Room) delete(staleBefore time.Time) error {
	if !staleBefore.IsZero() {
		if r.draft.Status != engine.StatusLobby || !r.draft.CreatedAt.Before(staleBefore) {
			return ErrNotStale
		}
	}

	ctx, cancel := r.callCtx()
	defer cancel()
	err := r.deps.Store.Delete(ctx, r.id)
	if err != nil && !errors.Is(err, store.ErrDraftNotFound) {
		r.log.Error("delete draft failed", zap.Error(err))
		return fmt.Errorf("delete draft: %w", err)
	}
	r.deleted.Store(true)
	r.log.Info("draft deleted", zap.Int("clients", len(r.clients)))
	return nil
}

func (r *Room) shutdown() {
	for id, ch := range r.clients {
		close(ch) // no more messages for this client
		delete(r.clients, id)
	}
	r.cancel()
}

func (r *Room) broadcast(env gateway.Envelope) {
	for id := range r.clients {
		r.sendTo(id, env)
	}
}

// sendTo never blocks. A client whose outbox is full is dropped and its
// outbox closed; it has to reconnect and query state again.
func (r *Room) sendTo(clientID string, env gateway.Envelope) {
	ch, ok := r.clients[clientID]
	if !ok {
		return
	}
	select {
	case ch <- env:
	default:
		close(ch)
		delete(r.clients, clientID)
		r.log.Warn("dropped slow client", zap.String("client_id", clientID))
	}
}
