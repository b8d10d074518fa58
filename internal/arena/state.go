package arena

import "time"

// TournamentState is the full durable record of one tournament run. It is
// owned by the orchestrator and persisted at round boundaries; the store is
// the single source of truth for resuming after a restart or reconnect.
type TournamentState struct {
	CurrentRound     int             `json:"currentRound"`
	Brackets         [][]Entrant     `json:"brackets"`
	CurrentMatches   []Match         `json:"currentMatches"`
	CompletedMatches map[string]bool `json:"completedMatches"`
	FeaturedMatch    *Match          `json:"currentFeaturedMatch,omitempty"`
	Winners          []Entrant       `json:"winners,omitempty"`
	IsRunning        bool            `json:"isRunning"`
	RoundSizes       []int           `json:"roundSizes"`
	LastUpdate       time.Time       `json:"lastUpdate"`
}

func NewTournamentState(entrants []Entrant, roundSizes []int) *TournamentState {
	return &TournamentState{
		Brackets:         [][]Entrant{entrants},
		CompletedMatches: make(map[string]bool),
		IsRunning:        true,
		RoundSizes:       roundSizes,
		LastUpdate:       time.Now().UTC(),
	}
}

// MarkCompleted records a finished match and reports whether this call was
// the first to do so for the pair.
func (s *TournamentState) MarkCompleted(key string) bool {
	if s.CompletedMatches[key] {
		return false
	}
	s.CompletedMatches[key] = true
	return true
}

// CurrentBracket is the list of entrants competing in the current round.
func (s *TournamentState) CurrentBracket() []Entrant {
	if s.CurrentRound >= len(s.Brackets) {
		return nil
	}
	return s.Brackets[s.CurrentRound]
}

func (s *TournamentState) Completed() bool {
	return !s.IsRunning && len(s.Winners) > 0
}

// Clone returns a deep copy that is safe to hand to other goroutines while
// the orchestrator keeps mutating the original.
func (s *TournamentState) Clone() *TournamentState {
	c := *s

	c.Brackets = make([][]Entrant, len(s.Brackets))
	for i, bracket := range s.Brackets {
		c.Brackets[i] = append([]Entrant(nil), bracket...)
	}
	c.CurrentMatches = append([]Match(nil), s.CurrentMatches...)
	c.Winners = append([]Entrant(nil), s.Winners...)

	c.CompletedMatches = make(map[string]bool, len(s.CompletedMatches))
	for key, done := range s.CompletedMatches {
		c.CompletedMatches[key] = done
	}

	if s.FeaturedMatch != nil {
		featured := *s.FeaturedMatch
		c.FeaturedMatch = &featured
	}
	return &c
}
