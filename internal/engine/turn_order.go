package engine

// ActivePosition returns the seat letter on the clock for pickNumber.
// round only matters in snake mode, where even rounds run backwards.
// It never reads stored turn state, so any reader holding the same counters
// derives the same answer.
func ActivePosition(round, pickNumber, participantCount int, snake bool) string {
	if participantCount <= 0 || pickNumber <= 0 {
		return ""
	}
	pickInRound := (pickNumber - 1) % participantCount
	index := pickInRound
	if snake && round%2 == 0 {
		index = participantCount - 1 - pickInRound
	}
	return PositionLetter(index)
}

// PositionLetter maps a 0-based seat index to its letter.
func PositionLetter(index int) string {
	if index < 0 || index >= MaxParticipants {
		return ""
	}
	return string(rune('A' + index))
}

// PositionIndex maps "A".."Z" to 0..25. ok is false for anything else.
func PositionIndex(position string) (int, bool) {
	if len(position) != 1 || position[0] < 'A' || position[0] > 'Z' {
		return 0, false
	}
	return int(position[0] - 'A'), true
}

func roundFor(pickNumber, participantCount int) int {
	return (pickNumber-1)/participantCount + 1
}
