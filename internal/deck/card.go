package deck

import (
	"fmt"

	"github.com/google/uuid"
)

// Suit represents a card suit
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
	// NoSuit is used for the joker, which belongs to no suit.
	NoSuit
)

// String returns the string representation of a suit
func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	case NoSuit:
		return ""
	default:
		return "?"
	}
}

// IsRed returns true if the suit is red (Hearts or Diamonds)
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Rank represents a card rank. Aces are low: A=1 up to K=13.
// Joker is rank-less and substitutes for any rank during evaluation.
type Rank int

const (
	Joker Rank = 0
	Ace   Rank = 1
	Two   Rank = 2
	Three Rank = 3
	Four  Rank = 4
	Five  Rank = 5
	Six   Rank = 6
	Seven Rank = 7
	Eight Rank = 8
	Nine  Rank = 9
	Ten   Rank = 10
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
)

// String returns the string representation of a rank
func (r Rank) String() string {
	switch r {
	case Joker:
		return "Joker"
	case Ace:
		return "A"
	case Ten:
		return "10"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	default:
		if r >= Two && r <= Nine {
			return fmt.Sprintf("%d", int(r))
		}
		return "?"
	}
}

// Value returns the numeric scoring value of the rank (A=1 .. K=13).
// A joker has no inherent value; callers decide what it substitutes for.
func (r Rank) Value() int {
	return int(r)
}

// Card represents a playing card. ID is a synthetic identifier used by
// clients to reference and diff cards; the rules only ever look at Rank.
type Card struct {
	Suit Suit   `json:"suit"`
	Rank Rank   `json:"rank"`
	ID   string `json:"id"`
}

// NewCard creates a new card with a fresh synthetic id
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank, ID: uuid.NewString()}
}

// NewJoker creates the deck's single wildcard card
func NewJoker() Card {
	return Card{Suit: NoSuit, Rank: Joker, ID: uuid.NewString()}
}

// IsJoker returns true if the card is the wildcard
func (c Card) IsJoker() bool {
	return c.Rank == Joker
}

// String returns the display form of a card (e.g. "Q♠", "Joker")
func (c Card) String() string {
	if c.IsJoker() {
		return "Joker"
	}
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}
