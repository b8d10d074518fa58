package arena

// Entrant is a single competing NFT in the tournament bracket.
type Entrant struct {
	ID     string `json:"id" db:"id"`
	Name   string `json:"name" db:"name"`
	Image  string `json:"image" db:"image"`
	Mint   string `json:"mint" db:"mint"`
	Health int    `json:"health" db:"health"`
	Wins   int    `json:"wins" db:"wins"`
	Losses int    `json:"losses" db:"losses"`
}

func (e Entrant) Eliminated() bool {
	return e.Health <= 0
}

// Advanced returns a copy of the entrant entering the next round with health
// back at max. Win and loss tallies are the battle's to update, and a bye
// advances without one.
func (e Entrant) Advanced(maxHealth int) Entrant {
	e.Health = maxHealth
	return e
}
