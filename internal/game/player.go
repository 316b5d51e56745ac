package game

import "hulla/internal/deck"

// Player is one seat in a room. Players are owned by their room and only
// ever mutated inside the room's serialized section.
type Player struct {
	ID   string
	Name string
	Hand []deck.Card

	// IsWaitingFinalWin is set while the player holds exactly two matched
	// cards, the state a scoop claim fires from.
	IsWaitingFinalWin bool

	RoundScore  int
	TotalScore  int
	TurnActions int
}

// HandSize returns the number of cards held
func (p *Player) HandSize() int {
	return len(p.Hand)
}

// removeCard takes a card out of the hand by id
func (p *Player) removeCard(id string) (deck.Card, bool) {
	for i, c := range p.Hand {
		if c.ID == id {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return c, true
		}
	}
	return deck.Card{}, false
}

// takeOfRank removes up to n ranked cards of the given rank and returns them
func (p *Player) takeOfRank(rank deck.Rank, n int) []deck.Card {
	taken := make([]deck.Card, 0, n)
	kept := p.Hand[:0]
	for _, c := range p.Hand {
		if len(taken) < n && !c.IsJoker() && c.Rank == rank {
			taken = append(taken, c)
			continue
		}
		kept = append(kept, c)
	}
	p.Hand = kept
	return taken
}

// takeJoker removes the joker from the hand if held
func (p *Player) takeJoker() (deck.Card, bool) {
	for i, c := range p.Hand {
		if c.IsJoker() {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return c, true
		}
	}
	return deck.Card{}, false
}

func (p *Player) countOfRank(rank deck.Rank) int {
	n := 0
	for _, c := range p.Hand {
		if !c.IsJoker() && c.Rank == rank {
			n++
		}
	}
	return n
}

func (p *Player) holdsJoker() bool {
	for _, c := range p.Hand {
		if c.IsJoker() {
			return true
		}
	}
	return false
}

// refreshWaitingState recomputes IsWaitingFinalWin: exactly two cards that
// match by rank, the joker matching anything.
func (p *Player) refreshWaitingState() {
	if len(p.Hand) != 2 {
		p.IsWaitingFinalWin = false
		return
	}
	a, b := p.Hand[0], p.Hand[1]
	p.IsWaitingFinalWin = a.IsJoker() || b.IsJoker() || a.Rank == b.Rank
}
