package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/DoyleJ11/live-draft-backend/internal/catalog"
	"github.com/DoyleJ11/live-draft-backend/internal/engine"
	"github.com/DoyleJ11/live-draft-backend/internal/gateway"
	"github.com/DoyleJ11/live-draft-backend/internal/hub"
	"github.com/DoyleJ11/live-draft-backend/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

type CreateLiveDraftRequest struct {
	DraftName        string `json:"draftName"`
	CreatorNickname  string `json:"creatorNickname"`
	ParticipantCount int    `json:"participantCount"`
	TotalRounds      int    `json:"totalRounds"`
	PIN              string `json:"pin"`
	IsSnakeDraft     bool   `json:"isSnakeDraft"`
}

type LiveDraftResponse struct {
	UUID             string `json:"uuid"`
	DraftName        string `json:"draftName"`
	Status           string `json:"status"`
	ParticipantCount int    `json:"participantCount"`
	TotalRounds      int    `json:"totalRounds"`
	IsSnakeDraft     bool   `json:"isSnakeDraft"`
	CreatedBy        string `json:"createdBy"`
	LobbyURL         string `json:"lobbyUrl"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func newLiveDraftResponse(d engine.Draft) LiveDraftResponse {
	return LiveDraftResponse{
		UUID:             d.ID,
		DraftName:        d.Name,
		Status:           string(d.Status),
		ParticipantCount: d.ParticipantCount,
		TotalRounds:      d.TotalRounds,
		IsSnakeDraft:     d.IsSnakeDraft,
		CreatedBy:        d.CreatedBy,
		LobbyURL:         "/draft/" + d.ID + "/lobby",
	}
}

func CreateDraft(h *hub.Hub, clock clockwork.Clock, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateLiveDraftRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid request body"})
			return
		}

		d, err := engine.NewDraft(engine.Params{
			Name:             req.DraftName,
			CreatedBy:        req.CreatorNickname,
			ParticipantCount: req.ParticipantCount,
			TotalRounds:      req.TotalRounds,
			PIN:              req.PIN,
			Snake:            req.IsSnakeDraft,
		}, clock.Now())
		if err != nil {
			writeError(w, log, err)
			return
		}

		if _, err := h.Create(r.Context(), d); err != nil {
			writeError(w, log, err)
			return
		}
		log.Info("draft created", zap.String("draft_id", d.ID), zap.String("created_by", d.CreatedBy))
		writeJSON(w, http.StatusCreated, newLiveDraftResponse(d))
	}
}

func ListLobbies(st store.Store, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		drafts, err := st.ListByStatus(r.Context(), engine.StatusLobby)
		if err != nil {
			writeError(w, log, err)
			return
		}
		out := make([]LiveDraftResponse, 0, len(drafts))
		for _, d := range drafts {
			out = append(out, newLiveDraftResponse(d))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GetDraft returns the lobby view as the room currently holds it.
func GetDraft(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rm, err := h.Room(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, log, err)
			return
		}
		v, err := rm.State(r.Context())
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, gateway.NewLobbyState(v.Draft))
	}
}

func DeleteDraft(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := h.Delete(r.Context(), id); err != nil {
			writeError(w, log, err)
			return
		}
		log.Info("draft deleted", zap.String("draft_id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}

func ListPlayers(c catalog.Catalog, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := c.ListVerified(r.Context())
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, players)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func statusFor(err error) int {
	if errors.Is(err, store.ErrDraftNotFound) {
		return http.StatusNotFound
	}
	switch engine.KindOf(err) {
	case engine.ErrValidation:
		return http.StatusBadRequest
	case engine.ErrConflict, engine.ErrCapacity, engine.ErrInvalidState, engine.ErrDuplicatePlayer:
		return http.StatusConflict
	case engine.ErrNotFound:
		return http.StatusNotFound
	case engine.ErrUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	status := statusFor(err)
	msg := err.Error()
	switch status {
	case http.StatusInternalServerError:
		log.Error("request failed", zap.Error(err))
		msg = "An unexpected error occurred"
	case http.StatusNotFound:
		msg = "Draft not found"
		if engine.KindOf(err) == engine.ErrNotFound {
			msg = err.Error()
		}
	}
	writeJSON(w, status, errorResponse{Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
