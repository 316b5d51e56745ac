package deck

import rand "math/rand/v2"

// Size is the number of cards in a fresh deck: 52 ranked cards plus one joker.
const Size = 53

// Deck represents the draw pile: an ordered sequence of cards consumed
// from the front. It is not safe for concurrent use; the owning room
// serializes access.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// New creates a new shuffled 53-card deck using the provided random source.
func New(rng *rand.Rand) *Deck {
	d := &Deck{
		cards: make([]Card, 0, Size),
		rng:   rng,
	}
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Ace; rank <= King; rank++ {
			d.cards = append(d.cards, NewCard(suit, rank))
		}
	}
	d.cards = append(d.cards, NewJoker())
	d.shuffle(d.cards)
	return d
}

func (d *Deck) shuffle(cards []Card) {
	for i := len(cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

// Draw removes and returns the top card. ok is false when the deck is empty.
func (d *Deck) Draw() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	card := d.cards[0]
	d.cards = d.cards[1:]
	return card, true
}

// DrawN draws up to n cards from the top of the deck.
func (d *Deck) DrawN(n int) []Card {
	if n > len(d.cards) {
		n = len(d.cards)
	}
	cards := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		card, ok := d.Draw()
		if !ok {
			break
		}
		cards = append(cards, card)
	}
	return cards
}

// Recycle shuffles the given discard pile back into the deck. Used when a
// draw is requested against an empty deck mid-round.
func (d *Deck) Recycle(pile []Card) {
	recycled := make([]Card, len(pile))
	copy(recycled, pile)
	d.shuffle(recycled)
	d.cards = append(d.cards, recycled...)
}

// Remaining returns the number of cards left in the deck
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// IsEmpty returns true if the deck has no cards left
func (d *Deck) IsEmpty() bool {
	return len(d.cards) == 0
}
