package deck

import (
	"testing"

	"hulla/internal/randutil"
)

func TestNewDeck(t *testing.T) {
	d := New(randutil.New(42))

	if d.Remaining() != Size {
		t.Errorf("Expected %d cards, got %d", Size, d.Remaining())
	}
	if d.IsEmpty() {
		t.Error("New deck should not be empty")
	}
}

func TestNewDeckIsUnique(t *testing.T) {
	d := New(randutil.New(42))

	seen := make(map[string]bool)
	jokers := 0
	for {
		card, ok := d.Draw()
		if !ok {
			break
		}
		if card.IsJoker() {
			jokers++
			continue
		}
		key := card.Suit.String() + card.Rank.String()
		if seen[key] {
			t.Errorf("Duplicate card in deck: %s", card)
		}
		seen[key] = true
	}

	if len(seen) != 52 {
		t.Errorf("Expected 52 distinct ranked cards, got %d", len(seen))
	}
	if jokers != 1 {
		t.Errorf("Expected exactly one joker, got %d", jokers)
	}
}

func TestDraw(t *testing.T) {
	d := New(randutil.New(42))
	before := d.Remaining()

	card, ok := d.Draw()
	if !ok {
		t.Error("Draw should succeed on a fresh deck")
	}
	if d.Remaining() != before-1 {
		t.Errorf("Expected %d cards after drawing, got %d", before-1, d.Remaining())
	}
	if !card.IsJoker() && (card.Rank < Ace || card.Rank > King) {
		t.Errorf("Invalid rank drawn: %v", card.Rank)
	}
}

func TestDrawN(t *testing.T) {
	d := New(randutil.New(42))

	hand := d.DrawN(5)
	if len(hand) != 5 {
		t.Errorf("Expected 5 cards, got %d", len(hand))
	}
	if d.Remaining() != Size-5 {
		t.Errorf("Expected %d remaining, got %d", Size-5, d.Remaining())
	}

	// Asking for more than remains drains the deck without failing.
	rest := d.DrawN(100)
	if len(rest) != Size-5 {
		t.Errorf("Expected %d cards, got %d", Size-5, len(rest))
	}
	if !d.IsEmpty() {
		t.Error("Deck should be empty after over-drawing")
	}
}

func TestRecycle(t *testing.T) {
	d := New(randutil.New(42))
	pile := d.DrawN(Size)

	if _, ok := d.Draw(); ok {
		t.Error("Draw should fail on an empty deck")
	}

	d.Recycle(pile)
	if d.Remaining() != Size {
		t.Errorf("Expected %d cards after recycle, got %d", Size, d.Remaining())
	}

	card, ok := d.Draw()
	if !ok || card.ID == "" {
		t.Error("Recycled deck should deal real cards")
	}
}

func TestDeterministicShuffle(t *testing.T) {
	a := New(randutil.New(7))
	b := New(randutil.New(7))

	for i := 0; i < Size; i++ {
		ca, _ := a.Draw()
		cb, _ := b.Draw()
		if ca.Suit != cb.Suit || ca.Rank != cb.Rank {
			t.Fatalf("Decks with equal seeds diverged at card %d: %s vs %s", i, ca, cb)
		}
	}
}
