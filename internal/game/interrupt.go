package game

import "hulla/internal/deck"

// ClaimKind distinguishes the two interrupt claims
type ClaimKind string

const (
	// ClaimPung completes a triple with the discarded card and seizes
	// the turn.
	ClaimPung ClaimKind = "pung"
	// ClaimScoop ends the round: the discarded card completed a wait the
	// observer was already holding.
	ClaimScoop ClaimKind = "scoop"
)

// String returns the string representation of a claim kind
func (k ClaimKind) String() string {
	return string(k)
}

// CanPung reports whether observer may preempt the turn on the played
// card: a hand of exactly five holding either a pair of the played rank,
// or one such card plus the joker. A played joker has no rank to match
// and can never be claimed.
func CanPung(observer *Player, played deck.Card) bool {
	if played.IsJoker() {
		return false
	}
	if observer.HandSize() != 5 {
		return false
	}
	naturals := observer.countOfRank(played.Rank)
	if naturals >= 2 {
		return true
	}
	return naturals >= 1 && observer.holdsJoker()
}

// CanScoop reports whether the played card ends the round in observer's
// favor: either a two-card matched pair of the played rank, or a
// five-card hand whose triple of the played rank resolves with the joker.
func CanScoop(observer *Player, played deck.Card) bool {
	if played.IsJoker() {
		return false
	}

	switch observer.HandSize() {
	case 2:
		rank, ok := pairRank(observer.Hand)
		return ok && rank == played.Rank
	case 5:
		naturals := observer.countOfRank(played.Rank)
		jokers := 0
		if observer.holdsJoker() {
			jokers = 1
		}
		return naturals >= 1 && naturals+jokers >= 3
	default:
		return false
	}
}

// pairRank resolves the rank of a two-card matched pair, letting the
// joker stand in for its partner's rank. Two jokers cannot occur with a
// single-joker deck but would still resolve to no rank.
func pairRank(cards []deck.Card) (deck.Rank, bool) {
	if len(cards) != 2 {
		return deck.Joker, false
	}
	a, b := cards[0], cards[1]
	switch {
	case a.IsJoker() && b.IsJoker():
		return deck.Joker, false
	case a.IsJoker():
		return b.Rank, true
	case b.IsJoker():
		return a.Rank, true
	case a.Rank == b.Rank:
		return a.Rank, true
	default:
		return deck.Joker, false
	}
}
