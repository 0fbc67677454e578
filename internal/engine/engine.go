package engine

import (
	"regexp"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	MinParticipants = 2
	MaxParticipants = 26
	MinRounds       = 1
	MaxRounds       = 20
	MinNicknameLen  = 2
	MaxNicknameLen  = 50
)

var pinPattern = regexp.MustCompile(`^[0-9]{4}$`)

type Status string

const (
	StatusLobby      Status = "LOBBY"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

// Draft is one live draft and everything it owns. Participants are kept
// sorted by position; Picks are in pick order and only ever appended to or
// popped from the end.
type Draft struct {
	ID               string
	Name             string
	Status           Status
	ParticipantCount int
	TotalRounds      int
	IsSnakeDraft     bool
	CurrentRound     int
	CurrentPick      int
	CreatedBy        string
	PIN              string
	CreatedAt        time.Time
	StartedAt        *time.Time
	CompletedAt      *time.Time
	Participants     []Participant
	Picks            []Pick
}

type Participant struct {
	Position   string
	Nickname   string
	IsReady    bool
	IsVerified bool
	JoinedAt   time.Time
}

type Pick struct {
	PickNumber  int
	RoundNumber int
	Position    string
	ForcedBy    string // empty unless someone else executed the pick
	PlayerID    int64
	PickedAt    time.Time
}

// Params are the creation inputs for a live draft.
type Params struct {
	Name             string
	CreatedBy        string
	ParticipantCount int
	TotalRounds      int
	PIN              string
	Snake            bool
}

// NewDraft validates p and returns a fresh draft in the lobby.
func NewDraft(p Params, now time.Time) (Draft, error) {
	name := strings.TrimSpace(p.Name)
	creator := strings.TrimSpace(p.CreatedBy)

	if name == "" {
		return Draft{}, errorf(ErrValidation, "Draft name is required")
	}
	if n := utf8.RuneCountInString(creator); n < MinNicknameLen || n > MaxNicknameLen {
		return Draft{}, errorf(ErrValidation, "Creator nickname must be between %d and %d characters", MinNicknameLen, MaxNicknameLen)
	}
	if p.ParticipantCount < MinParticipants || p.ParticipantCount > MaxParticipants {
		return Draft{}, errorf(ErrValidation, "Participant count must be between %d and %d", MinParticipants, MaxParticipants)
	}
	if p.TotalRounds < MinRounds || p.TotalRounds > MaxRounds {
		return Draft{}, errorf(ErrValidation, "Total rounds must be between %d and %d", MinRounds, MaxRounds)
	}
	if !pinPattern.MatchString(p.PIN) {
		return Draft{}, errorf(ErrValidation, "PIN must be exactly 4 digits")
	}

	return Draft{
		ID:               uuid.NewString(),
		Name:             name,
		Status:           StatusLobby,
		ParticipantCount: p.ParticipantCount,
		TotalRounds:      p.TotalRounds,
		IsSnakeDraft:     p.Snake,
		CurrentRound:     1,
		CurrentPick:      1,
		CreatedBy:        creator,
		PIN:              p.PIN,
		CreatedAt:        now,
		Participants:     []Participant{},
		Picks:            []Pick{},
	}, nil
}

func (d *Draft) TotalPicks() int {
	return d.ParticipantCount * d.TotalRounds
}

// CanStart only requires someone in the lobby. It deliberately does not
// require a full or all-ready lobby; see AllReady for that.
func (d *Draft) CanStart() bool {
	return len(d.Participants) > 0
}

func (d *Draft) Start(now time.Time) error {
	if d.Status != StatusLobby {
		return errorf(ErrInvalidState, "Draft cannot be started: status is %s", d.Status)
	}
	if !d.CanStart() {
		return errorf(ErrInvalidState, "Cannot start draft: no participants have joined")
	}
	d.Status = StatusInProgress
	d.StartedAt = &now
	return nil
}

// CurrentTurn is the position on the clock, or "" when the draft is not in
// progress.
func (d *Draft) CurrentTurn() string {
	if d.Status != StatusInProgress {
		return ""
	}
	return ActivePosition(d.CurrentRound, d.CurrentPick, d.ParticipantCount, d.IsSnakeDraft)
}

func (d *Draft) IsValidPick(position string) bool {
	turn := d.CurrentTurn()
	return turn != "" && turn == position
}

// MakePick records a pick for position. Turn order is the caller's concern.
func (d *Draft) MakePick(playerID int64, position string, now time.Time) (Pick, error) {
	return d.appendPick(playerID, position, "", now)
}

// ForcePick records a pick for target executed by forcing. Turn order is
// never checked and forcing may equal target.
func (d *Draft) ForcePick(playerID int64, target, forcing string, now time.Time) (Pick, error) {
	return d.appendPick(playerID, target, forcing, now)
}

func (d *Draft) appendPick(playerID int64, position, forcedBy string, now time.Time) (Pick, error) {
	if d.Status != StatusInProgress {
		return Pick{}, errorf(ErrInvalidState, "Draft is not in progress")
	}
	if d.HasPick(playerID) {
		return Pick{}, errorf(ErrDuplicatePlayer, "Player %d has already been picked in this draft", playerID)
	}

	p := Pick{
		PickNumber:  d.CurrentPick,
		RoundNumber: d.CurrentRound,
		Position:    position,
		ForcedBy:    forcedBy,
		PlayerID:    playerID,
		PickedAt:    now,
	}
	d.Picks = append(d.Picks, p)

	next := d.CurrentPick + 1
	d.CurrentPick = next
	if next > d.TotalPicks() {
		// round stays on the last one
		d.Status = StatusCompleted
		d.CompletedAt = &now
	} else {
		d.CurrentRound = roundFor(next, d.ParticipantCount)
	}
	return p, nil
}

// UndoLastPick pops the most recent pick and rewinds the counters. A
// completed draft goes back to in progress.
func (d *Draft) UndoLastPick() (Pick, error) {
	if len(d.Picks) == 0 {
		return Pick{}, errorf(ErrInvalidState, "No picks to undo")
	}
	last := d.Picks[len(d.Picks)-1]
	d.Picks = d.Picks[:len(d.Picks)-1]

	d.CurrentPick--
	d.CurrentRound = roundFor(d.CurrentPick, d.ParticipantCount)
	if d.Status == StatusCompleted {
		d.Status = StatusInProgress
		d.CompletedAt = nil
	}
	return last, nil
}

func (d *Draft) HasPick(playerID int64) bool {
	return slices.ContainsFunc(d.Picks, func(p Pick) bool { return p.PlayerID == playerID })
}

// PickedPlayerIDs returns the set of players already in the pick log.
func (d *Draft) PickedPlayerIDs() map[int64]bool {
	ids := make(map[int64]bool, len(d.Picks))
	for _, p := range d.Picks {
		ids[p.PlayerID] = true
	}
	return ids
}

// Clone returns a deep copy that shares nothing mutable with d.
func (d Draft) Clone() Draft {
	c := d
	c.Participants = slices.Clone(d.Participants)
	c.Picks = slices.Clone(d.Picks)
	if c.Participants == nil {
		c.Participants = []Participant{}
	}
	if c.Picks == nil {
		c.Picks = []Pick{}
	}
	if d.StartedAt != nil {
		t := *d.StartedAt
		c.StartedAt = &t
	}
	if d.CompletedAt != nil {
		t := *d.CompletedAt
		c.CompletedAt = &t
	}
	return c
}
