package gateway

import (
	"time"

	"github.com/DoyleJ11/live-draft-backend/internal/catalog"
)

type MessageType string

const (
	TypeLobbyState        MessageType = "LOBBY_STATE"
	TypeDraftState        MessageType = "DRAFT_STATE"
	TypeParticipantJoined MessageType = "PARTICIPANT_JOINED"
	TypeParticipantLeft   MessageType = "PARTICIPANT_LEFT"
	TypeDraftStarted      MessageType = "DRAFT_STARTED"
	TypeJoined            MessageType = "JOINED"
	TypeError             MessageType = "ERROR"
)

type Envelope struct {
	Type      MessageType `json:"type"`
	Topic     string      `json:"topic"`
	Payload   any         `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

type ParticipantInfo struct {
	Position   string    `json:"position"`
	Nickname   string    `json:"nickname"`
	IsReady    bool      `json:"isReady"`
	IsVerified bool      `json:"isVerified"`
	JoinedAt   time.Time `json:"joinedAt"`
}

type LobbyState struct {
	DraftUUID        string            `json:"draftUuid"`
	DraftName        string            `json:"draftName"`
	Status           string            `json:"status"`
	ParticipantCount int               `json:"participantCount"`
	TotalRounds      int               `json:"totalRounds"`
	Participants     []ParticipantInfo `json:"participants"`
	AllReady         bool              `json:"allReady"`
	CanStart         bool              `json:"canStart"`
	CreatedBy        string            `json:"createdBy"`
}

type PickMessage struct {
	PlayerID         int64     `json:"playerId"`
	PlayerName       string    `json:"playerName"`
	Position         string    `json:"position"`
	Team             string    `json:"team"`
	College          string    `json:"college"`
	RoundNumber      int       `json:"roundNumber"`
	PickNumber       int       `json:"pickNumber"`
	PickedByPosition string    `json:"pickedByPosition"`
	ForcedByPosition *string   `json:"forcedByPosition"`
	PickedAt         time.Time `json:"pickedAt"`
}

type DraftState struct {
	DraftUUID           string            `json:"draftUuid"`
	Status              string            `json:"status"`
	CurrentRound        int               `json:"currentRound"`
	CurrentPick         int               `json:"currentPick"`
	CurrentTurnPosition *string           `json:"currentTurnPosition"`
	ParticipantCount    int               `json:"participantCount"`
	TotalRounds         int               `json:"totalRounds"`
	IsSnakeDraft        bool              `json:"isSnakeDraft"`
	Participants        []ParticipantInfo `json:"participants"`
	Picks               []PickMessage     `json:"picks"`
	AvailablePlayers    []catalog.Player  `json:"availablePlayers"`
}

type ParticipantJoined struct {
	DraftUUID   string          `json:"draftUuid"`
	Participant ParticipantInfo `json:"participant"`
	Message     string          `json:"message"`
}

type ParticipantLeft struct {
	DraftUUID string `json:"draftUuid"`
	Position  string `json:"position"`
	Nickname  string `json:"nickname"`
	Message   string `json:"message"`
}

type DraftStarted struct {
	DraftUUID         string    `json:"draftUuid"`
	StartedAt         time.Time `json:"startedAt"`
	FirstTurnPosition string    `json:"firstTurnPosition"`
	Message           string    `json:"message"`
}

type Error struct {
	Message   string    `json:"message"`
	Code      string    `json:"code"`
	Timestamp time.Time `json:"timestamp"`
}
