package guess

import "fmt"

// Schedule maps a difficulty tier to its turn-indexed payout multipliers.
// Tables decay as the player takes more turns; a turn count past the end of
// the table clamps to the last defined entry.
type Schedule map[int][]float64

func NewSchedule(tables map[int][]float64) (Schedule, error) {
	for tier, table := range tables {
		if len(table) == 0 {
			return nil, fmt.Errorf("multiplier table for tier %d is empty", tier)
		}
		for i := 1; i < len(table); i++ {
			if table[i] > table[i-1] {
				return nil, fmt.Errorf("multiplier table for tier %d increases at turn %d", tier, i)
			}
		}
	}
	return Schedule(tables), nil
}

func (s Schedule) HasTier(tier int) bool {
	_, ok := s[tier]
	return ok
}

// MultiplierFor returns the payout multiplier after the player's n-th turn
// (1-based). Turn counts beyond the table clamp to the final entry.
func (s Schedule) MultiplierFor(tier, playerTurns int) float64 {
	table, ok := s[tier]
	if !ok || len(table) == 0 {
		return 0
	}
	idx := playerTurns - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(table) {
		idx = len(table) - 1
	}
	return table[idx]
}
