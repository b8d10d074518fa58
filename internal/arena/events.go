package arena

// Named events carried over the observer channel. Payloads are structured so
// the presentation layer never has to re-derive semantics from formatted
// text.

type EventType string

const (
	EvtTournamentState EventType = "tournamentState"
	EvtFeaturedBattle  EventType = "featuredBattle"
	EvtBattleUpdate    EventType = "battleUpdate"
	EvtCoinFlip        EventType = "coinFlip"
	EvtDiceRoll        EventType = "diceRoll"
	EvtHitRoll         EventType = "hitRoll"
	EvtNFTHit          EventType = "nftHit"
	EvtBattleResult    EventType = "battleResult"
	EvtError           EventType = "error"
)

// Event is the envelope every observer receives: a type tag plus a typed
// payload, JSON-encoded as {"type": ..., "data": ...}.
type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data"`
}

type CoinFlipPayload struct {
	MatchKey string  `json:"matchKey"`
	Winner   Entrant `json:"winner"`
	Loser    Entrant `json:"loser"`
}

type DiceRollPayload struct {
	MatchKey string  `json:"matchKey"`
	Attacker Entrant `json:"attacker"`
	Die1     int     `json:"die1"`
	Die2     int     `json:"die2"`
	Damage   int     `json:"damage"`
}

type HitRollPayload struct {
	MatchKey   string  `json:"matchKey"`
	Attacker   Entrant `json:"attacker"`
	Roll       int     `json:"roll"`
	Damage     int     `json:"damage"`
	IsCritical bool    `json:"isCritical"`
	IsMiss     bool    `json:"isMiss"`
}

type NFTHitPayload struct {
	MatchKey  string  `json:"matchKey"`
	Target    Entrant `json:"target"`
	Damage    int     `json:"damage"`
	NewHealth int     `json:"newHealth"`
}

type BattleResultPayload struct {
	MatchKey string  `json:"matchKey"`
	Winner   Entrant `json:"winner"`
	Loser    Entrant `json:"loser"`
}

type FeaturedBattlePayload struct {
	Round int   `json:"round"`
	Match Match `json:"match"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
