package guess

import "math/rand"

// SystemRoller draws from the shared math/rand source, which is safe for
// concurrent use across request handlers.
type SystemRoller struct{}

func (SystemRoller) Intn(n int) int {
	return rand.Intn(n)
}
