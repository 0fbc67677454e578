package gateway

import (
	"fmt"
	"time"

	"github.com/DoyleJ11/live-draft-backend/internal/catalog"
	"github.com/DoyleJ11/live-draft-backend/internal/engine"
)

const (
	ErrorQueue      = "/user/queue/errors"
	DraftStateQueue = "/user/queue/draft-state"
	LobbyStateQueue = "/user/queue/lobby-state"
	JoinedQueue     = "/user/queue/joined"
)

func LobbyTopic(draftID string) string { return fmt.Sprintf("/topic/draft/%s/lobby", draftID) }

func DraftTopic(draftID string) string { return fmt.Sprintf("/topic/draft/%s", draftID) }

func NewParticipantInfo(p engine.Participant) ParticipantInfo {
	return ParticipantInfo{
		Position:   p.Position,
		Nickname:   p.Nickname,
		IsReady:    p.IsReady,
		IsVerified: p.IsVerified,
		JoinedAt:   p.JoinedAt,
	}
}

func participantInfos(d engine.Draft) []ParticipantInfo {
	out := make([]ParticipantInfo, 0, len(d.Participants))
	for _, p := range d.Participants {
		out = append(out, NewParticipantInfo(p))
	}
	return out
}

func NewLobbyState(d engine.Draft) LobbyState {
	return LobbyState{
		DraftUUID:        d.ID,
		DraftName:        d.Name,
		Status:           string(d.Status),
		ParticipantCount: d.ParticipantCount,
		TotalRounds:      d.TotalRounds,
		Participants:     participantInfos(d),
		AllReady:         d.AllReady(),
		CanStart:         d.CanStart(),
		CreatedBy:        d.CreatedBy,
	}
}

// NewDraftState derives the full board. players must hold every verified
// player plus any picked player; picked ids never appear as available.
func NewDraftState(d engine.Draft, players []catalog.Player) DraftState {
	byID := make(map[int64]catalog.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}
	picked := d.PickedPlayerIDs()

	picks := make([]PickMessage, 0, len(d.Picks))
	for _, pk := range d.Picks {
		pl := byID[pk.PlayerID]
		msg := PickMessage{
			PlayerID:         pk.PlayerID,
			PlayerName:       pl.Name,
			Position:         pl.Position,
			Team:             pl.Team,
			College:          pl.College,
			RoundNumber:      pk.RoundNumber,
			PickNumber:       pk.PickNumber,
			PickedByPosition: pk.Position,
			PickedAt:         pk.PickedAt,
		}
		if pk.ForcedBy != "" {
			forced := pk.ForcedBy
			msg.ForcedByPosition = &forced
		}
		picks = append(picks, msg)
	}

	available := make([]catalog.Player, 0, len(players))
	for _, p := range players {
		if p.Verified && !picked[p.ID] {
			available = append(available, p)
		}
	}

	var turn *string
	if pos := d.CurrentTurn(); pos != "" {
		turn = &pos
	}

	return DraftState{
		DraftUUID:           d.ID,
		Status:              string(d.Status),
		CurrentRound:        d.CurrentRound,
		CurrentPick:         d.CurrentPick,
		CurrentTurnPosition: turn,
		ParticipantCount:    d.ParticipantCount,
		TotalRounds:         d.TotalRounds,
		IsSnakeDraft:        d.IsSnakeDraft,
		Participants:        participantInfos(d),
		Picks:               picks,
		AvailablePlayers:    available,
	}
}

// NeedsDraftState reports whether Broadcasts will include a DraftState for
// these events, which is when the caller must load players.
func NeedsDraftState(events []engine.Event) bool {
	for _, ev := range events {
		switch ev.Type {
		case engine.EvtDraftStarted, engine.EvtPickMade, engine.EvtPickUndone:
			return true
		}
	}
	return false
}

// Broadcasts composes the topic messages for one accepted command, in the
// order subscribers must see them.
func Broadcasts(d engine.Draft, events []engine.Event, players []catalog.Player, now time.Time) []Envelope {
	lobby := LobbyTopic(d.ID)
	board := DraftTopic(d.ID)
	lobbyState := func() Envelope {
		return Envelope{Type: TypeLobbyState, Topic: lobby, Payload: NewLobbyState(d), Timestamp: now}
	}
	draftState := func() Envelope {
		return Envelope{Type: TypeDraftState, Topic: board, Payload: NewDraftState(d, players), Timestamp: now}
	}

	var out []Envelope
	for _, ev := range events {
		switch ev.Type {
		case engine.EvtParticipantJoined:
			out = append(out,
				Envelope{Type: TypeParticipantJoined, Topic: lobby, Timestamp: now, Payload: ParticipantJoined{
					DraftUUID:   d.ID,
					Participant: NewParticipantInfo(ev.Participant),
					Message:     fmt.Sprintf("%s joined as position %s", ev.Participant.Nickname, ev.Participant.Position),
				}},
				lobbyState())

		case engine.EvtParticipantReady:
			out = append(out, lobbyState())

		case engine.EvtParticipantLeft:
			out = append(out,
				Envelope{Type: TypeParticipantLeft, Topic: lobby, Timestamp: now, Payload: ParticipantLeft{
					DraftUUID: d.ID,
					Position:  ev.Participant.Position,
					Nickname:  ev.Participant.Nickname,
					Message:   fmt.Sprintf("%s left the draft", ev.Participant.Nickname),
				}},
				lobbyState())

		case engine.EvtDraftStarted:
			started := ev.At
			if d.StartedAt != nil {
				started = *d.StartedAt
			}
			out = append(out,
				Envelope{Type: TypeDraftStarted, Topic: lobby, Timestamp: now, Payload: DraftStarted{
					DraftUUID:         d.ID,
					StartedAt:         started,
					FirstTurnPosition: ev.Position,
					Message:           "Draft has started!",
				}},
				lobbyState(),
				draftState())

		case engine.EvtPickMade, engine.EvtPickUndone:
			out = append(out, draftState())
		}
	}
	return out
}

func LobbyStateReply(d engine.Draft, now time.Time) Envelope {
	return Envelope{Type: TypeLobbyState, Topic: LobbyStateQueue, Payload: NewLobbyState(d), Timestamp: now}
}

func DraftStateReply(d engine.Draft, players []catalog.Player, now time.Time) Envelope {
	return Envelope{Type: TypeDraftState, Topic: DraftStateQueue, Payload: NewDraftState(d, players), Timestamp: now}
}

func Joined(p engine.Participant, now time.Time) Envelope {
	return Envelope{Type: TypeJoined, Topic: JoinedQueue, Payload: NewParticipantInfo(p), Timestamp: now}
}
