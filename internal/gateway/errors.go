package gateway

import (
	"time"

	"github.com/DoyleJ11/live-draft-backend/internal/engine"
)

const (
	CodeJoin           = "JOIN_ERROR"
	CodeReady          = "READY_ERROR"
	CodeLeave          = "LEAVE_ERROR"
	CodeStart          = "START_ERROR"
	CodePick           = "PICK_ERROR"
	CodeForcePick      = "FORCE_PICK_ERROR"
	CodeUndo           = "UNDO_ERROR"
	CodeState          = "STATE_ERROR"
	CodeInternal       = "INTERNAL_ERROR"
	CodeInvalidMessage = "INVALID_MESSAGE"
)

// Operation names a client request for error reporting. Commands use their
// engine.CommandType; queries use OpDraftState and OpLobbyState.
type Operation string

const (
	OpDraftState Operation = "draftState"
	OpLobbyState Operation = "lobbyState"
)

type opInfo struct {
	code string
	verb string
}

var ops = map[Operation]opInfo{
	Operation(engine.CmdJoin):      {CodeJoin, "joining the draft"},
	Operation(engine.CmdSetReady):  {CodeReady, "updating ready status"},
	Operation(engine.CmdLeave):     {CodeLeave, "leaving the draft"},
	Operation(engine.CmdStart):     {CodeStart, "starting the draft"},
	Operation(engine.CmdPick):      {CodePick, "making the pick"},
	Operation(engine.CmdForcePick): {CodeForcePick, "forcing the pick"},
	Operation(engine.CmdUndo):      {CodeUndo, "undoing the pick"},
	OpDraftState:                   {CodeState, "fetching the draft state"},
	OpLobbyState:                   {CodeState, "fetching the lobby state"},
}

// Classify maps err to the code and text a client sees. Internal errors
// never leak their detail.
func Classify(op Operation, err error) (code, message string) {
	info, ok := ops[op]
	if !ok {
		info = opInfo{CodeState, "processing the request"}
	}
	if engine.KindOf(err) == engine.ErrInternal {
		return CodeInternal, "An unexpected error occurred while " + info.verb
	}
	return info.code, err.Error()
}

func NewErrorEnvelope(code, message string, now time.Time) Envelope {
	return Envelope{
		Type:      TypeError,
		Topic:     ErrorQueue,
		Payload:   Error{Message: message, Code: code, Timestamp: now},
		Timestamp: now,
	}
}
