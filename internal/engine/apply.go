package engine

import "time"

type CommandType string

const (
	CmdJoin      CommandType = "join"
	CmdSetReady  CommandType = "ready"
	CmdLeave     CommandType = "leave"
	CmdStart     CommandType = "start"
	CmdPick      CommandType = "pick"
	CmdForcePick CommandType = "forcePick"
	CmdUndo      CommandType = "undo"
)

/*
	CmdJoin      -> EvtParticipantJoined
	CmdSetReady  -> EvtParticipantReady
	CmdLeave     -> EvtParticipantLeft
	CmdStart     -> EvtDraftStarted
	CmdPick      -> EvtPickMade (-> EvtDraftCompleted on the last pick)
	CmdForcePick -> EvtPickMade (-> EvtDraftCompleted on the last pick)
	CmdUndo      -> EvtPickUndone
*/

// Command is one inbound request against a draft. Position is the
// requester's seat for every command except forcePick, which uses
// TargetPosition and ForcingPosition.
type Command struct {
	Type            CommandType
	Nickname        string
	Position        string
	Ready           bool
	PIN             string
	PlayerID        int64
	TargetPosition  string
	ForcingPosition string
}

type EventType string

const (
	EvtParticipantJoined EventType = "ParticipantJoined"
	EvtParticipantReady  EventType = "ParticipantReady"
	EvtParticipantLeft   EventType = "ParticipantLeft"
	EvtDraftStarted      EventType = "DraftStarted"
	EvtPickMade          EventType = "PickMade"
	EvtPickUndone        EventType = "PickUndone"
	EvtDraftCompleted    EventType = "DraftCompleted"
)

type Event struct {
	Type        EventType
	Participant Participant
	Pick        Pick
	Position    string // first turn, for EvtDraftStarted
	At          time.Time
}

// Apply runs cmd against a copy of d. On error the returned draft is d
// itself and nothing the caller holds has changed.
func Apply(d Draft, cmd Command, now time.Time) ([]Event, Draft, error) {
	next := d.Clone()

	switch cmd.Type {
	case CmdJoin:
		p, err := next.Join(cmd.Nickname, cmd.Position, now)
		if err != nil {
			return nil, d, err
		}
		return []Event{{Type: EvtParticipantJoined, Participant: p, At: now}}, next, nil

	case CmdSetReady:
		p, err := next.SetReady(cmd.Position, cmd.Ready, cmd.PIN)
		if err != nil {
			return nil, d, err
		}
		return []Event{{Type: EvtParticipantReady, Participant: p, At: now}}, next, nil

	case CmdLeave:
		p, err := next.Leave(cmd.Position)
		if err != nil {
			return nil, d, err
		}
		return []Event{{Type: EvtParticipantLeft, Participant: p, At: now}}, next, nil

	case CmdStart:
		requester, ok := next.Participant(cmd.Position)
		if !ok {
			return nil, d, errorf(ErrValidation, "You must be in the lobby to start the draft")
		}
		if requester.Nickname != next.CreatedBy {
			return nil, d, errorf(ErrUnauthorized, "Only the draft creator can start the draft")
		}
		if err := next.Start(now); err != nil {
			return nil, d, err
		}
		return []Event{{Type: EvtDraftStarted, Position: next.CurrentTurn(), At: now}}, next, nil

	case CmdPick:
		// Only regular picks are held to turn order.
		if next.Status == StatusInProgress && !next.IsValidPick(cmd.Position) {
			return nil, d, errorf(ErrValidation, "It's not your turn to pick")
		}
		pick, err := next.MakePick(cmd.PlayerID, cmd.Position, now)
		if err != nil {
			return nil, d, err
		}
		return pickEvents(next, pick, now), next, nil

	case CmdForcePick:
		if err := next.checkSeat(cmd.TargetPosition, "Target position"); err != nil {
			return nil, d, err
		}
		if err := next.checkSeat(cmd.ForcingPosition, "Forcing position"); err != nil {
			return nil, d, err
		}
		pick, err := next.ForcePick(cmd.PlayerID, cmd.TargetPosition, cmd.ForcingPosition, now)
		if err != nil {
			return nil, d, err
		}
		return pickEvents(next, pick, now), next, nil

	case CmdUndo:
		pick, err := next.UndoLastPick()
		if err != nil {
			return nil, d, err
		}
		return []Event{{Type: EvtPickUndone, Pick: pick, At: now}}, next, nil

	default:
		return nil, d, errorf(ErrValidation, "Unsupported command %q", cmd.Type)
	}
}

func pickEvents(d Draft, pick Pick, now time.Time) []Event {
	events := []Event{{Type: EvtPickMade, Pick: pick, At: now}}
	if d.Status == StatusCompleted {
		events = append(events, Event{Type: EvtDraftCompleted, At: now})
	}
	return events
}

func (d *Draft) checkSeat(position, label string) error {
	idx, ok := PositionIndex(position)
	if !ok || idx >= d.ParticipantCount {
		return errorf(ErrValidation, "%s %q is not valid for a draft with %d participants", label, position, d.ParticipantCount)
	}
	return nil
}
