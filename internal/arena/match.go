package arena

// Match is an unordered pair of entrants competing in one round.
type Match struct {
	NFT1 Entrant `json:"nft1"`
	NFT2 Entrant `json:"nft2"`
}

// Key identifies the match by its unordered id pair, so completion tracking
// is independent of which entrant came first in the pairing.
func (m Match) Key() string {
	return MatchKey(m.NFT1.ID, m.NFT2.ID)
}

func MatchKey(id1, id2 string) string {
	if id1 > id2 {
		id1, id2 = id2, id1
	}
	return id1 + "-" + id2
}
