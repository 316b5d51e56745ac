package deck

import "testing"

func TestCardString(t *testing.T) {
	tests := []struct {
		card Card
		want string
	}{
		{NewCard(Spades, Ace), "A♠"},
		{NewCard(Hearts, Ten), "10♥"},
		{NewCard(Diamonds, Queen), "Q♦"},
		{NewCard(Clubs, Two), "2♣"},
		{NewJoker(), "Joker"},
	}

	for _, tt := range tests {
		if got := tt.card.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestRankValue(t *testing.T) {
	if Ace.Value() != 1 {
		t.Errorf("Ace value = %d, want 1", Ace.Value())
	}
	if King.Value() != 13 {
		t.Errorf("King value = %d, want 13", King.Value())
	}
	if Jack.Value() != 11 {
		t.Errorf("Jack value = %d, want 11", Jack.Value())
	}
}

func TestIsJoker(t *testing.T) {
	if NewCard(Spades, Ace).IsJoker() {
		t.Error("Ranked card should not be a joker")
	}
	if !NewJoker().IsJoker() {
		t.Error("Joker should report IsJoker")
	}
}

func TestCardIDsAreUnique(t *testing.T) {
	a := NewCard(Spades, Ace)
	b := NewCard(Spades, Ace)
	if a.ID == b.ID {
		t.Error("Two cards of the same suit and rank must get distinct ids")
	}
}

func TestSuitIsRed(t *testing.T) {
	if !Hearts.IsRed() || !Diamonds.IsRed() {
		t.Error("Hearts and Diamonds are red")
	}
	if Spades.IsRed() || Clubs.IsRed() {
		t.Error("Spades and Clubs are black")
	}
}
