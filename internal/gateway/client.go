package gateway

import "github.com/DoyleJ11/live-draft-backend/internal/engine"

type ClientMessage struct {
	Type            string `json:"type"`
	Nickname        string `json:"nickname,omitempty"`
	Position        string `json:"position,omitempty"`
	Ready           bool   `json:"ready,omitempty"`
	PIN             string `json:"pin,omitempty"`
	PlayerID        int64  `json:"playerId,omitempty"`
	TargetPosition  string `json:"targetPosition,omitempty"`
	ForcingPosition string `json:"forcingPosition,omitempty"`
}

// Query returns the query operation m asks for, if it is one.
func (m ClientMessage) Query() (Operation, bool) {
	switch Operation(m.Type) {
	case OpDraftState, OpLobbyState:
		return Operation(m.Type), true
	}
	return "", false
}

func (m ClientMessage) ToCommand() (engine.Command, bool) {
	cmd := engine.Command{
		Nickname:        m.Nickname,
		Position:        m.Position,
		Ready:           m.Ready,
		PIN:             m.PIN,
		PlayerID:        m.PlayerID,
		TargetPosition:  m.TargetPosition,
		ForcingPosition: m.ForcingPosition,
	}
	switch t := engine.CommandType(m.Type); t {
	case engine.CmdJoin, engine.CmdSetReady, engine.CmdLeave, engine.CmdStart,
		engine.CmdPick, engine.CmdForcePick, engine.CmdUndo:
		cmd.Type = t
		return cmd, true
	default:
		return engine.Command{}, false
	}
}
