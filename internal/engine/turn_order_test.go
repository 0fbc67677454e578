package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActivePosition(t *testing.T) {
	cases := []struct {
		name             string
		round, pick, n   int
		snake            bool
		expectedPosition string
	}{
		{name: "first pick", round: 1, pick: 1, n: 4, expectedPosition: "A"},
		{name: "last pick of round 1", round: 1, pick: 4, n: 4, expectedPosition: "D"},
		{name: "linear round 2 starts over", round: 2, pick: 5, n: 4, expectedPosition: "A"},
		{name: "snake round 2 reverses", round: 2, pick: 5, n: 4, snake: true, expectedPosition: "D"},
		{name: "snake round 2 ends at A", round: 2, pick: 8, n: 4, snake: true, expectedPosition: "A"},
		{name: "snake round 3 forward again", round: 3, pick: 9, n: 4, snake: true, expectedPosition: "A"},
		{name: "two seats", round: 1, pick: 2, n: 2, expectedPosition: "B"},
		{name: "two seats snake round 2", round: 2, pick: 3, n: 2, snake: true, expectedPosition: "B"},
		{name: "twenty six seats last", round: 1, pick: 26, n: 26, expectedPosition: "Z"},
		{name: "twenty six seats snake round 2 first", round: 2, pick: 27, n: 26, snake: true, expectedPosition: "Z"},
		{name: "twenty six seats linear round 2 first", round: 2, pick: 27, n: 26, expectedPosition: "A"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ActivePosition(tc.round, tc.pick, tc.n, tc.snake)
			assert.Equal(t, tc.expectedPosition, got)
		})
	}
}

func TestActivePosition_LinearIsPeriodic(t *testing.T) {
	for n := MinParticipants; n <= MaxParticipants; n++ {
		for p := 1; p <= 3*n; p++ {
			r := roundFor(p, n)
			assert.Equal(t,
				ActivePosition(r, p, n, false),
				ActivePosition(r+1, p+n, n, false),
				"n=%d p=%d", n, p)
		}
	}
}

func TestActivePosition_SnakeRoundsMirror(t *testing.T) {
	for n := MinParticipants; n <= MaxParticipants; n++ {
		for r := 1; r <= 4; r++ {
			for i := 0; i < n; i++ {
				pick := (r-1)*n + i + 1
				here, _ := PositionIndex(ActivePosition(r, pick, n, true))
				there, _ := PositionIndex(ActivePosition(r+1, pick+n, n, true))
				assert.Equal(t, n-1, here+there, "n=%d r=%d i=%d", n, r, i)
			}
		}
	}
}

func TestPositionIndex(t *testing.T) {
	idx, ok := PositionIndex("C")
	assert.True(t, ok)
	assert.Equal(t, 2, idx)

	for _, bad := range []string{"", "a", "AA", "1", "["} {
		_, ok := PositionIndex(bad)
		assert.False(t, ok, bad)
	}
	assert.Equal(t, "Z", PositionLetter(25))
	assert.Equal(t, "", PositionLetter(26))
}
