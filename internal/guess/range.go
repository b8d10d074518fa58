package guess

// NarrowRange shrinks the live [min,max] interval after a wrong guess. The
// exclusive convention is used throughout (client and server agree): a low
// guess raises min to guess+1, a high guess lowers max to guess-1. Exact
// equality is handled by the caller and never reaches here.
func NarrowRange(min, max, g, secret int) (int, int) {
	if g < secret {
		return g + 1, max
	}
	if g > secret {
		return min, g - 1
	}
	return min, max
}

// CPUGuess is the CPU opponent's deterministic binary-search move: the floor
// midpoint of the live range.
func CPUGuess(min, max int) int {
	return (min + max) / 2
}
