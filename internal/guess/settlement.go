package guess

// cpuWinFee is the reduction applied when the CPU wins: the player is still
// awarded the multiplier-scaled amount, cut by 10%, as a consolation. The
// displayed multiplier is reduced the same way.
const cpuWinFee = 0.9

// Settlement is the single points-ledger outcome of a finished session.
type Settlement struct {
	HasWon            bool    `json:"hasWon"`
	Earned            float64 `json:"earned"`
	DisplayMultiplier float64 `json:"multiplier"`
}

// Settle values the session outcome against the fixed entry stake. Idempotency
// (exactly-once ledger application) is enforced by the caller via the
// session's settled flag, not here.
func Settle(hasWon bool, multiplier, entryPrice float64) Settlement {
	if hasWon {
		return Settlement{
			HasWon:            true,
			Earned:            entryPrice * multiplier,
			DisplayMultiplier: multiplier,
		}
	}
	return Settlement{
		HasWon:            false,
		Earned:            entryPrice * multiplier * cpuWinFee,
		DisplayMultiplier: multiplier * cpuWinFee,
	}
}
