package hand

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hulla/internal/deck"
	"hulla/internal/randutil"
)

// h builds a hand from ranks, cycling suits so cards stay legal
func h(ranks ...deck.Rank) []deck.Card {
	suits := []deck.Suit{deck.Spades, deck.Hearts, deck.Diamonds, deck.Clubs}
	cards := make([]deck.Card, 0, len(ranks))
	perRank := make(map[deck.Rank]int)
	for _, r := range ranks {
		if r == deck.Joker {
			cards = append(cards, deck.NewJoker())
			continue
		}
		cards = append(cards, deck.NewCard(suits[perRank[r]%len(suits)], r))
		perRank[r]++
	}
	return cards
}

func TestClassifyCategories(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name     string
		hand     []deck.Card
		category Category
		score    int
	}{
		{
			name:     "three and three",
			hand:     h(deck.Seven, deck.Seven, deck.Seven, deck.Queen, deck.Queen, deck.Queen),
			category: CategoryThreeThree,
			score:    0,
		},
		{
			name:     "three pairs",
			hand:     h(deck.Two, deck.Two, deck.Five, deck.Five, deck.Nine, deck.Nine),
			category: CategoryThreePairs,
			score:    0,
		},
		{
			name:     "four and two",
			hand:     h(deck.Four, deck.Four, deck.Four, deck.Four, deck.Nine, deck.Nine),
			category: CategoryFourTwo,
			score:    rules.FourTwoScore,
		},
		{
			name:     "straight",
			hand:     h(deck.Three, deck.Four, deck.Five, deck.Six, deck.Seven, deck.Eight),
			category: CategoryStraight,
			score:    -33,
		},
		{
			name:     "high sum",
			hand:     h(deck.King, deck.King, deck.King, deck.Queen, deck.Queen, deck.Jack),
			category: CategoryHighSum,
			score:    -74,
		},
		{
			name:     "low sum plain",
			hand:     h(deck.Ace, deck.Ace, deck.Two, deck.Two, deck.Ace, deck.Three),
			category: CategoryLowSum,
			score:    rules.LowSumScore,
		},
		{
			name:     "low sum four two",
			hand:     h(deck.Ace, deck.Ace, deck.Ace, deck.Ace, deck.Two, deck.Two),
			category: CategoryLowFourTwo,
			score:    rules.LowFourTwoScore,
		},
		{
			name:     "no win",
			hand:     h(deck.Two, deck.Five, deck.Eight, deck.Jack, deck.Queen, deck.King),
			category: CategoryNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Classify(tt.hand, rules)
			assert.Equal(t, tt.category, result.Category)
			if tt.category == CategoryNone {
				assert.False(t, result.Win)
				return
			}
			require.True(t, result.Win)
			assert.Equal(t, tt.score, result.Score)
		})
	}
}

func TestClassifyPrecedence(t *testing.T) {
	rules := DefaultRules()

	// Four kings and two queens partition {4,2} but sum 76 clears the
	// high-sum threshold, which outranks the {4,2} category.
	result := Classify(h(deck.King, deck.King, deck.King, deck.King, deck.Queen, deck.Queen), rules)
	require.True(t, result.Win)
	assert.Equal(t, CategoryHighSum, result.Category)
	assert.Equal(t, -76, result.Score)

	// Four aces and two twos partition {4,2} but their sum of 8 is under
	// the low threshold, so the low {4,2} category fires first.
	result = Classify(h(deck.Ace, deck.Ace, deck.Ace, deck.Ace, deck.Two, deck.Two), rules)
	require.True(t, result.Win)
	assert.Equal(t, CategoryLowFourTwo, result.Category)
}

func TestClassifyJokerStraight(t *testing.T) {
	rules := DefaultRules()

	// Joker fills the hole at six: priced as 3+4+5+6+7+8.
	result := Classify(h(deck.Three, deck.Four, deck.Five, deck.Seven, deck.Eight, deck.Joker), rules)
	require.True(t, result.Win)
	assert.Equal(t, CategoryStraight, result.Category)
	assert.Equal(t, -33, result.Score)

	// Five in a row plus joker: the joker could extend either end, and the
	// evaluator must pick the stronger window (4..9 over 3..8).
	result = Classify(h(deck.Four, deck.Five, deck.Six, deck.Seven, deck.Eight, deck.Joker), rules)
	require.True(t, result.Win)
	assert.Equal(t, CategoryStraight, result.Category)
	assert.Equal(t, -39, result.Score)
}

func TestClassifyJokerGroups(t *testing.T) {
	rules := DefaultRules()

	// A triple, a pair, and the joker: the joker could complete the second
	// triple, but it also completes a four-group, and {4,2} outranks {3,3}.
	result := Classify(h(deck.Seven, deck.Seven, deck.Seven, deck.Queen, deck.Queen, deck.Joker), rules)
	require.True(t, result.Win)
	assert.Equal(t, CategoryFourTwo, result.Category)
	assert.Equal(t, rules.FourTwoScore, result.Score)

	// Joker completes the four-group.
	result = Classify(h(deck.Nine, deck.Nine, deck.Nine, deck.Joker, deck.Five, deck.Five), rules)
	require.True(t, result.Win)
	assert.Equal(t, CategoryFourTwo, result.Category)

	// Joker completes one of three pairs.
	result = Classify(h(deck.Two, deck.Two, deck.Five, deck.Five, deck.Nine, deck.Joker), rules)
	require.True(t, result.Win)
	assert.Equal(t, CategoryThreePairs, result.Category)
}

func TestClassifyWrongLength(t *testing.T) {
	rules := DefaultRules()

	assert.False(t, Classify(nil, rules).Win)
	assert.False(t, Classify(h(deck.Seven, deck.Seven), rules).Win)
	assert.False(t, Classify(h(deck.Seven, deck.Seven, deck.Seven, deck.Seven, deck.Queen, deck.Queen, deck.Queen), rules).Win)
}

func TestLoserScore(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name string
		hand []deck.Card
		want int
	}{
		{"empty", nil, 0},
		{"pair", h(deck.King, deck.Queen), 25},
		{"triple is free", h(deck.Seven, deck.Seven, deck.Seven), 0},
		{"pair plus single", h(deck.Nine, deck.Nine, deck.Four), 22},
		{"joker completes pair", h(deck.Nine, deck.Nine, deck.Joker), 0},
		{"joker left over", h(deck.Five, deck.Joker), 5 + rules.JokerValue},
		{
			name: "six cards one free group",
			hand: h(deck.Ten, deck.Ten, deck.Ten, deck.Two, deck.Three, deck.Four),
			want: 9,
		},
		{
			name: "joker picks the costlier pair",
			hand: h(deck.King, deck.King, deck.Two, deck.Two, deck.Five, deck.Joker),
			want: 4 + 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LoserScore(tt.hand, rules))
		})
	}
}

func TestLoserScorePermutationInvariant(t *testing.T) {
	rules := DefaultRules()
	cards := h(deck.King, deck.King, deck.Two, deck.Two, deck.Five, deck.Joker)
	want := LoserScore(cards, rules)

	rng := randutil.New(1)
	for i := 0; i < 50; i++ {
		rng.Shuffle(len(cards), func(a, b int) {
			cards[a], cards[b] = cards[b], cards[a]
		})
		assert.Equal(t, want, LoserScore(cards, rules))
	}
}

func TestLoserScoreNeverNegative(t *testing.T) {
	rules := DefaultRules()
	hands := [][]deck.Card{
		h(deck.Ace, deck.Two),
		h(deck.Ace, deck.Two, deck.Three),
		h(deck.Joker, deck.Ace),
		h(deck.Two, deck.Five, deck.Eight, deck.Jack, deck.Queen, deck.King),
	}
	for _, cards := range hands {
		assert.GreaterOrEqual(t, LoserScore(cards, rules), 0)
	}
}

func TestAllSameRank(t *testing.T) {
	assert.True(t, AllSameRank(h(deck.Seven, deck.Seven, deck.Seven)))
	assert.True(t, AllSameRank(h(deck.Seven, deck.Seven, deck.Joker)))
	assert.False(t, AllSameRank(h(deck.Seven, deck.Eight)))
	assert.False(t, AllSameRank(nil))
}
