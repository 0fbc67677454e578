package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoin(t *testing.T) {
	cases := []struct {
		name     string
		setup    func(d *Draft)
		nickname string
		position string
		wantErr  error
	}{
		{name: "guest joins", nickname: "bob", position: "B"},
		{name: "lowercase position", nickname: "bob", position: "b", wantErr: ErrValidation},
		{name: "two letter position", nickname: "bob", position: "AB", wantErr: ErrValidation},
		{name: "position beyond count", nickname: "bob", position: "D", wantErr: ErrValidation},
		{name: "nickname too short", nickname: " b ", position: "B", wantErr: ErrValidation},
		{name: "nickname too long", nickname: strings.Repeat("x", 51), position: "B", wantErr: ErrValidation},
		{
			name:     "position taken",
			setup:    func(d *Draft) { _, _ = d.Join("carol", "B", t0) },
			nickname: "bob", position: "B", wantErr: ErrConflict,
		},
		{
			name:     "nickname taken ignoring case",
			setup:    func(d *Draft) { _, _ = d.Join("Bob", "C", t0) },
			nickname: "bOB", position: "B", wantErr: ErrConflict,
		},
		{
			name: "lobby full",
			setup: func(d *Draft) {
				_, _ = d.Join("alice", "A", t0)
				_, _ = d.Join("carol", "B", t0)
				_, _ = d.Join("dave", "C", t0)
			},
			nickname: "bob", position: "A", wantErr: ErrCapacity,
		},
		{
			name: "draft already started",
			setup: func(d *Draft) {
				_, _ = d.Join("alice", "A", t0)
				_ = d.Start(t0)
			},
			nickname: "bob", position: "B", wantErr: ErrInvalidState,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := newTestDraft(t, 3, 2, false)
			if tc.setup != nil {
				tc.setup(&d)
			}
			before := len(d.Participants)

			p, err := d.Join(tc.nickname, tc.position, t0)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Len(t, d.Participants, before)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.position, p.Position)
			assert.False(t, p.IsReady)
			assert.False(t, p.IsVerified)
			assert.Len(t, d.Participants, before+1)
		})
	}
}

func TestJoin_CreatorIsReadyAndVerified(t *testing.T) {
	d := newTestDraft(t, 3, 1, false)
	p, err := d.Join("  alice ", "C", t0)
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Nickname)
	assert.True(t, p.IsReady)
	assert.True(t, p.IsVerified)
}

func TestJoin_KeepsParticipantsOrderedByPosition(t *testing.T) {
	d := newTestDraft(t, 4, 1, false)
	for _, pos := range []string{"C", "A", "D", "B"} {
		_, err := d.Join("user-"+pos, pos, t0)
		require.NoError(t, err)
	}
	var got []string
	for _, p := range d.Participants {
		got = append(got, p.Position)
	}
	assert.Equal(t, []string{"A", "B", "C", "D"}, got)
}

func TestJoin_FourthIntoThreeSeatDraft(t *testing.T) {
	d := newTestDraft(t, 3, 3, true)
	for _, pos := range []string{"A", "B", "C"} {
		_, err := d.Join("user-"+pos, pos, t0)
		require.NoError(t, err)
	}
	_, err := d.Join("late", "A", t0)
	require.ErrorIs(t, err, ErrCapacity)
}

func TestSetReady(t *testing.T) {
	cases := []struct {
		name         string
		position     string
		ready        bool
		pin          string
		wantErr      error
		wantReady    bool
		wantVerified bool
	}{
		{name: "guest with right pin", position: "B", ready: true, pin: "1234", wantReady: true, wantVerified: true},
		{name: "guest with wrong pin", position: "B", ready: true, pin: "9999", wantErr: ErrUnauthorized},
		{name: "guest without pin", position: "B", ready: true, pin: "", wantErr: ErrUnauthorized},
		{name: "guest unready needs no pin", position: "B", ready: false, pin: "", wantReady: false, wantVerified: false},
		{name: "creator needs no pin", position: "A", ready: true, pin: "", wantReady: true, wantVerified: true},
		{name: "unknown position", position: "C", ready: true, pin: "1234", wantErr: ErrNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := newTestDraft(t, 3, 1, false)
			_, err := d.Join("alice", "A", t0)
			require.NoError(t, err)
			_, err = d.Join("bob", "B", t0)
			require.NoError(t, err)

			p, err := d.SetReady(tc.position, tc.ready, tc.pin)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				guest, _ := d.Participant("B")
				assert.False(t, guest.IsReady)
				assert.False(t, guest.IsVerified)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantReady, p.IsReady)
			assert.Equal(t, tc.wantVerified, p.IsVerified)
		})
	}
}

func TestSetReady_VerifiedStaysVerified(t *testing.T) {
	d := newTestDraft(t, 2, 1, false)
	_, _ = d.Join("alice", "A", t0)
	_, _ = d.Join("bob", "B", t0)

	_, err := d.SetReady("B", true, "1234")
	require.NoError(t, err)
	p, err := d.SetReady("B", false, "")
	require.NoError(t, err)
	assert.False(t, p.IsReady)
	assert.True(t, p.IsVerified)

	p, err = d.SetReady("B", true, "")
	require.NoError(t, err, "verified participants can ready up again without the pin")
	assert.True(t, p.IsReady)
	assert.True(t, d.AllReady())
}

func TestLeave(t *testing.T) {
	d := newTestDraft(t, 2, 1, false)
	_, _ = d.Join("alice", "A", t0)
	_, _ = d.Join("bob", "B", t0)

	left, err := d.Leave("B")
	require.NoError(t, err)
	assert.Equal(t, "bob", left.Nickname)

	_, err = d.Leave("B")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = d.Join("BOB", "B", t0)
	require.NoError(t, err, "position and nickname are free again")
}

func TestAllReadyVersusCanStart(t *testing.T) {
	d := newTestDraft(t, 3, 1, false)
	_, _ = d.Join("alice", "A", t0)

	assert.True(t, d.CanStart())
	assert.False(t, d.AllReady(), "lobby is not full")

	_, _ = d.Join("bob", "B", t0)
	_, _ = d.Join("carol", "C", t0)
	assert.False(t, d.AllReady())

	_, _ = d.SetReady("B", true, "1234")
	_, _ = d.SetReady("C", true, "1234")
	assert.True(t, d.AllReady())
}
