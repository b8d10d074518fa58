package arena

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeBracket(n, maxHealth int) []Entrant {
	entrants := make([]Entrant, n)
	for i := range entrants {
		entrants[i] = Entrant{
			ID:     fmt.Sprintf("mint-%d", i),
			Name:   fmt.Sprintf("Cat #%d", i),
			Mint:   fmt.Sprintf("mint-%d", i),
			Health: maxHealth,
		}
	}
	return entrants
}

func TestComputeRoundSizes(t *testing.T) {
	testCases := []struct {
		name     string
		entrants int
		expected []int
	}{
		{name: "5 entrants", entrants: 5, expected: []int{5, 3, 2, 1}},
		{name: "2 entrants", entrants: 2, expected: []int{2, 1}},
		{name: "8 entrants", entrants: 8, expected: []int{8, 4, 2, 1}},
		{name: "7 entrants", entrants: 7, expected: []int{7, 4, 2, 1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sizes, err := ComputeRoundSizes(tc.entrants)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, sizes)
		})
	}
}

func TestComputeRoundSizes_HalvingProperty(t *testing.T) {
	for n := 2; n <= 64; n++ {
		sizes, err := ComputeRoundSizes(n)
		require.NoError(t, err)

		assert.Equal(t, n, sizes[0])
		assert.Equal(t, 1, sizes[len(sizes)-1])
		for i := 1; i < len(sizes); i++ {
			assert.Equal(t, (sizes[i-1]+1)/2, sizes[i], "n=%d round %d", n, i)
		}
	}
}

func TestComputeRoundSizes_RejectsTooFewEntrants(t *testing.T) {
	for _, n := range []int{-1, 0, 1} {
		_, err := ComputeRoundSizes(n)
		assert.ErrorIs(t, err, ErrInvalidEntrantCount, "n=%d", n)
	}
}

func TestPairRound(t *testing.T) {
	testCases := []struct {
		name        string
		entrants    int
		wantMatches int
		wantByes    int
	}{
		{name: "even bracket", entrants: 4, wantMatches: 2, wantByes: 0},
		{name: "odd bracket has one bye", entrants: 5, wantMatches: 2, wantByes: 1},
		{name: "two entrants", entrants: 2, wantMatches: 1, wantByes: 0},
		{name: "three entrants", entrants: 3, wantMatches: 1, wantByes: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			bracket := makeBracket(tc.entrants, 32)
			matches, byes := PairRound(bracket, 32)

			assert.Len(t, matches, tc.wantMatches)
			assert.Len(t, byes, tc.wantByes)

			// Consecutive pairing: (0,1), (2,3), ...
			for i, m := range matches {
				assert.Equal(t, bracket[2*i].ID, m.NFT1.ID)
				assert.Equal(t, bracket[2*i+1].ID, m.NFT2.ID)
			}

			// Shrinkage invariant: matches + byes == ceil(n/2).
			assert.Equal(t, (tc.entrants+1)/2, tc.wantMatches+tc.wantByes)
		})
	}
}

func TestPairRound_ByeHealthReset(t *testing.T) {
	bracket := makeBracket(3, 32)
	bracket[2].Health = 5 // wounded going into the round

	_, byes := PairRound(bracket, 32)
	require.Len(t, byes, 1)
	assert.Equal(t, "mint-2", byes[0].ID)
	assert.Equal(t, 32, byes[0].Health)
}

func TestMatchKey_Unordered(t *testing.T) {
	assert.Equal(t, MatchKey("a", "b"), MatchKey("b", "a"))
	assert.Equal(t, "a-b", MatchKey("b", "a"))

	m1 := Match{NFT1: Entrant{ID: "x"}, NFT2: Entrant{ID: "y"}}
	m2 := Match{NFT1: Entrant{ID: "y"}, NFT2: Entrant{ID: "x"}}
	assert.Equal(t, m1.Key(), m2.Key())
}

func TestMarkCompleted_Idempotent(t *testing.T) {
	state := NewTournamentState(makeBracket(4, 32), []int{4, 2, 1})

	key := MatchKey("mint-0", "mint-1")
	assert.True(t, state.MarkCompleted(key))
	assert.False(t, state.MarkCompleted(key))
	assert.False(t, state.MarkCompleted(MatchKey("mint-1", "mint-0")))
	assert.Len(t, state.CompletedMatches, 1)
}

func TestTournamentStateClone_IsIsolated(t *testing.T) {
	state := NewTournamentState(makeBracket(4, 32), []int{4, 2, 1})
	matches, _ := PairRound(state.CurrentBracket(), 32)
	state.CurrentMatches = matches
	state.FeaturedMatch = &matches[0]

	snapshot := state.Clone()

	// Later-round mutations must not show through the snapshot.
	state.MarkCompleted(MatchKey("mint-0", "mint-1"))
	state.Brackets[0][0].Health = 1
	state.FeaturedMatch.NFT1.Health = 1
	state.Winners = append(state.Winners, Entrant{ID: "mint-0"})

	assert.Empty(t, snapshot.CompletedMatches)
	assert.Equal(t, 32, snapshot.Brackets[0][0].Health)
	assert.Equal(t, 32, snapshot.FeaturedMatch.NFT1.Health)
	assert.Empty(t, snapshot.Winners)
	assert.Equal(t, state.RoundSizes, snapshot.RoundSizes)
}

func TestEntrantAdvanced(t *testing.T) {
	e := Entrant{ID: "a", Health: 3, Wins: 1}
	next := e.Advanced(32)

	assert.Equal(t, 32, next.Health)
	assert.Equal(t, 1, next.Wins, "advancing itself credits no win")
	// The original is copied, not mutated.
	assert.Equal(t, 3, e.Health)
}
