package arena

import "errors"

var ErrInvalidEntrantCount = errors.New("tournament requires at least 2 entrants")

// ComputeRoundSizes returns the bracket size of every round for n entrants,
// halving with ceiling division down to the final single survivor. The
// initial size and the terminal 1 are both included, e.g. 5 -> [5, 3, 2, 1].
func ComputeRoundSizes(n int) ([]int, error) {
	if n < 2 {
		return nil, ErrInvalidEntrantCount
	}

	sizes := []int{n}
	for n > 1 {
		n = (n + 1) / 2
		sizes = append(sizes, n)
	}
	return sizes, nil
}

// PairRound pairs consecutive entrants (0,1), (2,3), ... into matches. An odd
// bracket leaves the last entrant as a bye, advancing automatically with
// health restored. Entrants are expected to already be in a neutral order;
// no shuffling happens here.
func PairRound(bracket []Entrant, maxHealth int) (matches []Match, byes []Entrant) {
	for i := 0; i+1 < len(bracket); i += 2 {
		matches = append(matches, Match{NFT1: bracket[i], NFT2: bracket[i+1]})
	}
	if len(bracket)%2 != 0 {
		bye := bracket[len(bracket)-1]
		bye.Health = maxHealth
		byes = append(byes, bye)
	}
	return matches, byes
}
