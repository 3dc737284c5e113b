package confidence

// Level is the totally ordered confidence scale used across every dimension
// of the endpoint confidence taxonomy.
// INVARIANT: low < moderate < high; comparisons are total.
type Level string

const (
	LevelLow      Level = "low"
	LevelModerate Level = "moderate"
	LevelHigh     Level = "high"
)

// rank maps a level onto its position in the total order
func (l Level) rank() int {
	switch l {
	case LevelHigh:
		return 2
	case LevelModerate:
		return 1
	default:
		return 0
	}
}

// Less reports whether l is strictly below other in the total order
func (l Level) Less(other Level) bool {
	return l.rank() < other.rank()
}

// AtMost returns the lower of l and ceiling
func (l Level) AtMost(ceiling Level) Level {
	if ceiling.Less(l) {
		return ceiling
	}
	return l
}

// Downgrade lowers the level by the given number of steps, flooring at low.
// A penalty of 0 leaves the level unchanged.
func (l Level) Downgrade(steps int) Level {
	r := l.rank() - steps
	switch {
	case r >= 2:
		return LevelHigh
	case r == 1:
		return LevelModerate
	default:
		return LevelLow
	}
}

// MinLevel returns the minimum of the given levels.
// Callers must pass at least one level.
func MinLevel(levels ...Level) Level {
	min := levels[0]
	for _, l := range levels[1:] {
		if l.Less(min) {
			min = l
		}
	}
	return min
}
