package engine

import (
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// Join seats nickname at position. The creator is seated ready and verified;
// everybody else has to ready up with the PIN.
func (d *Draft) Join(nickname, position string, now time.Time) (Participant, error) {
	if d.Status != StatusLobby {
		return Participant{}, errorf(ErrInvalidState, "Cannot join draft: draft is not in LOBBY status")
	}
	if len(d.Participants) >= d.ParticipantCount {
		return Participant{}, errorf(ErrCapacity, "Cannot join draft: lobby is full")
	}

	idx, ok := PositionIndex(position)
	if !ok {
		return Participant{}, errorf(ErrValidation, "Position must be a single uppercase letter (A-Z)")
	}
	if idx >= d.ParticipantCount {
		return Participant{}, errorf(ErrValidation, "Position %s is not valid for a draft with %d participants", position, d.ParticipantCount)
	}

	nickname = strings.TrimSpace(nickname)
	if _, taken := d.Participant(position); taken {
		return Participant{}, errorf(ErrConflict, "Position %s is already taken", position)
	}
	if d.nicknameTaken(nickname) {
		return Participant{}, errorf(ErrConflict, "Nickname '%s' is already taken", nickname)
	}
	if n := utf8.RuneCountInString(nickname); n < MinNicknameLen || n > MaxNicknameLen {
		return Participant{}, errorf(ErrValidation, "Nickname must be between %d and %d characters", MinNicknameLen, MaxNicknameLen)
	}

	creator := nickname == d.CreatedBy
	p := Participant{
		Position:   position,
		Nickname:   nickname,
		IsReady:    creator,
		IsVerified: creator,
		JoinedAt:   now,
	}

	i, _ := slices.BinarySearchFunc(d.Participants, position, func(e Participant, pos string) int {
		return strings.Compare(e.Position, pos)
	})
	d.Participants = slices.Insert(d.Participants, i, p)
	return p, nil
}

// SetReady toggles readiness. Readying up for the first time verifies the
// participant: automatically for the creator, by PIN for everyone else.
func (d *Draft) SetReady(position string, ready bool, pin string) (Participant, error) {
	i := d.participantIndex(position)
	if i < 0 {
		return Participant{}, errorf(ErrNotFound, "Participant not found at position %s", position)
	}
	p := &d.Participants[i]

	if ready && !p.IsVerified {
		if p.Nickname != d.CreatedBy {
			if strings.TrimSpace(pin) == "" {
				return Participant{}, errorf(ErrUnauthorized, "PIN is required to ready up")
			}
			if pin != d.PIN {
				return Participant{}, errorf(ErrUnauthorized, "Invalid PIN")
			}
		}
		p.IsVerified = true
	}
	p.IsReady = ready
	return *p, nil
}

func (d *Draft) Leave(position string) (Participant, error) {
	i := d.participantIndex(position)
	if i < 0 {
		return Participant{}, errorf(ErrNotFound, "Participant not found at position %s", position)
	}
	p := d.Participants[i]
	d.Participants = slices.Delete(d.Participants, i, i+1)
	return p, nil
}

// AllReady reports a full lobby where everyone is ready. It drives the UI
// only; CanStart is what gates Start.
func (d *Draft) AllReady() bool {
	if len(d.Participants) != d.ParticipantCount {
		return false
	}
	for _, p := range d.Participants {
		if !p.IsReady {
			return false
		}
	}
	return true
}

func (d *Draft) Participant(position string) (Participant, bool) {
	i := d.participantIndex(position)
	if i < 0 {
		return Participant{}, false
	}
	return d.Participants[i], true
}

func (d *Draft) participantIndex(position string) int {
	return slices.IndexFunc(d.Participants, func(p Participant) bool { return p.Position == position })
}

func (d *Draft) nicknameTaken(nickname string) bool {
	// Casers are stateful and must not be shared across goroutines.
	fold := cases.Fold()
	want := fold.String(nickname)
	return slices.ContainsFunc(d.Participants, func(p Participant) bool {
		return fold.String(p.Nickname) == want
	})
}
