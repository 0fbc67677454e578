package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/DoyleJ11/live-draft-backend/internal/gateway"
	"github.com/DoyleJ11/live-draft-backend/internal/hub"
	"github.com/DoyleJ11/live-draft-backend/internal/room"
	"github.com/DoyleJ11/live-draft-backend/internal/store"
	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

const writeTimeout = 3 * time.Second

type Options struct {
	OriginPatterns []string
	OutboxSize     int
	Clock          clockwork.Clock
	Logger         *zap.Logger
}

func Handler(h *hub.Hub, opts Options) http.HandlerFunc {
	if opts.OutboxSize <= 0 {
		opts.OutboxSize = 32
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return func(w http.ResponseWriter, r *http.Request) {
		draftID := r.URL.Query().Get("draft_id")
		if draftID == "" {
			http.Error(w, "missing draft_id", http.StatusBadRequest)
			return
		}

		rm, err := h.Room(r.Context(), draftID)
		if errors.Is(err, store.ErrDraftNotFound) {
			http.Error(w, "draft not found", http.StatusNotFound)
			return
		}
		if err != nil {
			opts.Logger.Error("open room", zap.String("draft_id", draftID), zap.Error(err))
			http.Error(w, "failed to open draft", http.StatusInternalServerError)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: opts.OriginPatterns,
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		clientID := uuid.NewString()
		log := opts.Logger.With(zap.String("draft_id", draftID), zap.String("client_id", clientID))

		out := make(chan gateway.Envelope, opts.OutboxSize)
		if err := rm.Send(r.Context(), room.Subscribe{ClientID: clientID, Outbox: out}); err != nil {
			conn.Close(websocket.StatusGoingAway, "draft closed")
			return
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = rm.Send(ctx, room.Unsubscribe{ClientID: clientID})
		}()

		// Writer goroutine. The room closes out when this client is
		// unsubscribed, dropped as too slow, or the draft is closed.
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for {
				select {
				case env, ok := <-out:
					if !ok {
						if rm.Deleted() {
							conn.Close(websocket.StatusGoingAway, "draft deleted")
						} else {
							conn.Close(websocket.StatusPolicyViolation, "resubscribe required")
						}
						return
					}
					if err := write(writeCtx, conn, env); err != nil {
						log.Debug("write failed", zap.Error(err))
						conn.Close(websocket.StatusInternalError, "write failed")
						return
					}
				case <-rm.Done():
					conn.Close(websocket.StatusGoingAway, "draft closed")
					return
				case <-writeCtx.Done():
					return
				}
			}
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug("read ended", zap.Error(err))
				}
				return
			}

			var cm gateway.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				_ = write(writeCtx, conn, gateway.NewErrorEnvelope(gateway.CodeInvalidMessage, "Malformed message", opts.Clock.Now()))
				continue
			}

			var msg room.Msg
			if op, ok := cm.Query(); ok {
				msg = room.Query{ClientID: clientID, Op: op}
			} else if cmd, ok := cm.ToCommand(); ok {
				msg = room.Submit{ClientID: clientID, Cmd: cmd}
			} else {
				_ = write(writeCtx, conn, gateway.NewErrorEnvelope(gateway.CodeInvalidMessage, "Unsupported message type: "+cm.Type, opts.Clock.Now()))
				continue
			}

			if err := rm.Send(r.Context(), msg); err != nil {
				conn.Close(websocket.StatusGoingAway, "draft closed")
				return
			}
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, env gateway.Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, payload)
}
