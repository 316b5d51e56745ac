// Package hand classifies 6-card hands into winning categories and scores
// losing hands. All functions are pure: they never mutate their input and
// never panic on well-formed cards.
package hand

import "hulla/internal/deck"

// Category identifies the winning combination a hand satisfies
type Category string

const (
	CategoryNone       Category = "none"
	CategoryStraight   Category = "straight"
	CategoryHighSum    Category = "high_sum"
	CategoryLowFourTwo Category = "low_four_two"
	CategoryLowSum     Category = "low_sum"
	CategoryFourTwo    Category = "four_two"
	CategoryThreeThree Category = "three_three"
	CategoryThreePairs Category = "three_pairs"
)

// String returns the string representation of a category
func (c Category) String() string {
	return string(c)
}

// Rules holds the numeric knobs of the rule set. The thresholds are
// deliberately configurable: historical revisions of the game disagree on
// the exact values, so deployments pin their own.
type Rules struct {
	// HighSumThreshold is the minimum rank sum for a high-sum win.
	HighSumThreshold int
	// LowSumThreshold is the maximum rank sum for a low-sum win.
	LowSumThreshold int
	// LowFourTwoScore is awarded for a {4,2} partition under the low-sum
	// threshold, LowSumScore for a plain low-sum hand, FourTwoScore for a
	// {4,2} partition alone. Winning scores are negative deltas.
	LowFourTwoScore int
	LowSumScore     int
	FourTwoScore    int
	// ClaimPenalty is added to the discarder's loser score when their card
	// is scooped. StopPenalty is added to a stop caller who was not
	// strictly ahead.
	ClaimPenalty int
	StopPenalty  int
	// JokerValue is what an uncombined joker contributes to a loser score.
	JokerValue int
}

// DefaultRules returns the rule set the original game shipped with
func DefaultRules() Rules {
	return Rules{
		HighSumThreshold: 68,
		LowSumThreshold:  10,
		LowFourTwoScore:  -300,
		LowSumScore:      -200,
		FourTwoScore:     -100,
		ClaimPenalty:     30,
		StopPenalty:      30,
		JokerValue:       1,
	}
}

// WinSize is the hand size Classify operates on
const WinSize = 6

// Result reports what Classify decided about a hand
type Result struct {
	Win      bool
	Category Category
	// Score is the winner's round score delta; winning combinations score
	// at or below zero since lower totals rank higher.
	Score int
}

// Classify decides whether a 6-card hand is a winning combination and what
// it scores. Categories are checked in fixed precedence order; the first
// match wins and the ordering is itself part of the rules. Hands of any
// other length classify as no win; callers validate sizes before settling.
func Classify(cards []deck.Card, rules Rules) Result {
	if len(cards) != WinSize {
		return Result{Category: CategoryNone}
	}

	counts, jokers := rankCounts(cards)

	if sum, ok := straightSum(counts, jokers); ok {
		return Result{Win: true, Category: CategoryStraight, Score: -sum}
	}

	highSum := rankSum(counts) + jokers*deck.King.Value()
	if highSum >= rules.HighSumThreshold {
		return Result{Win: true, Category: CategoryHighSum, Score: -highSum}
	}

	lowSum := rankSum(counts) + jokers*deck.Ace.Value()
	isLow := lowSum <= rules.LowSumThreshold
	if isLow && canPartition(counts, jokers, []int{4, 2}) {
		return Result{Win: true, Category: CategoryLowFourTwo, Score: rules.LowFourTwoScore}
	}
	if isLow {
		return Result{Win: true, Category: CategoryLowSum, Score: rules.LowSumScore}
	}

	if canPartition(counts, jokers, []int{4, 2}) {
		return Result{Win: true, Category: CategoryFourTwo, Score: rules.FourTwoScore}
	}
	if canPartition(counts, jokers, []int{3, 3}) {
		return Result{Win: true, Category: CategoryThreeThree, Score: 0}
	}
	if canPartition(counts, jokers, []int{2, 2, 2}) {
		return Result{Win: true, Category: CategoryThreePairs, Score: 0}
	}

	return Result{Category: CategoryNone}
}

// LoserScore sums the rank values of a non-winning hand. Rank groups of
// size three or more contribute nothing; jokers are spent wherever they
// reduce the total the most (completing a pair into a free triple), and an
// unspent joker contributes JokerValue. The result is independent of card
// order and never negative.
func LoserScore(cards []deck.Card, rules Rules) int {
	counts, jokers := rankCounts(cards)
	boosts := make(map[deck.Rank]int, len(counts))
	return minLoserScore(counts, boosts, jokers, rules)
}

// AllSameRank reports whether every card in the hand shares one rank, with
// the joker matching anything. This backs the immediate six-of-a-kind win
// declaration, which is checked outside the evaluator.
func AllSameRank(cards []deck.Card) bool {
	if len(cards) == 0 {
		return false
	}
	var rank deck.Rank
	seen := false
	for _, c := range cards {
		if c.IsJoker() {
			continue
		}
		if seen && c.Rank != rank {
			return false
		}
		rank, seen = c.Rank, true
	}
	return true
}

// rankCounts tallies the hand per rank and counts jokers separately
func rankCounts(cards []deck.Card) (map[deck.Rank]int, int) {
	counts := make(map[deck.Rank]int, len(cards))
	jokers := 0
	for _, c := range cards {
		if c.IsJoker() {
			jokers++
			continue
		}
		counts[c.Rank]++
	}
	return counts, jokers
}

func rankSum(counts map[deck.Rank]int) int {
	sum := 0
	for rank, n := range counts {
		sum += rank.Value() * n
	}
	return sum
}

// straightSum looks for a window of six consecutive ranks that covers every
// ranked card exactly once, with jokers filling the gaps. When several
// windows fit (a joker on either end of five in a row), the highest-valued
// window is priced, since the filled-in rank counts at face value.
func straightSum(counts map[deck.Rank]int, jokers int) (int, bool) {
	for _, n := range counts {
		if n > 1 {
			return 0, false
		}
	}

	best, found := 0, false
	for start := deck.Ace; start+WinSize-1 <= deck.King; start++ {
		covered, missing := 0, 0
		for r := start; r < start+WinSize; r++ {
			if counts[r] > 0 {
				covered++
			} else {
				missing++
			}
		}
		if covered != len(counts) || missing != jokers {
			continue
		}
		sum := 0
		for r := start; r < start+WinSize; r++ {
			sum += r.Value()
		}
		if !found || sum > best {
			best, found = sum, true
		}
	}
	return best, found
}

// canPartition reports whether the hand splits into same-rank groups of the
// given sizes. Each group consumes cards of one rank plus any number of
// jokers, or consists of jokers alone; the search is generic over the joker
// count rather than assuming at most one.
func canPartition(counts map[deck.Rank]int, jokers int, sizes []int) bool {
	if len(sizes) == 0 {
		if jokers != 0 {
			return false
		}
		for _, n := range counts {
			if n != 0 {
				return false
			}
		}
		return true
	}

	size, rest := sizes[0], sizes[1:]

	if jokers >= size && canPartition(counts, jokers-size, rest) {
		return true
	}

	for rank, n := range counts {
		if n == 0 {
			continue
		}
		for k := 0; k <= jokers && k < size; k++ {
			need := size - k
			if n < need {
				continue
			}
			counts[rank] -= need
			ok := canPartition(counts, jokers-k, rest)
			counts[rank] += need
			if ok {
				return true
			}
		}
	}
	return false
}

// minLoserScore tries every placement of the remaining jokers, either
// boosting a rank group toward the free size of three or standing alone at
// face JokerValue, and keeps the cheapest outcome. The joker always works
// in the loser's favor here.
func minLoserScore(counts map[deck.Rank]int, boosts map[deck.Rank]int, jokers int, rules Rules) int {
	if jokers == 0 {
		total := 0
		for rank, n := range counts {
			if n+boosts[rank] >= 3 {
				continue
			}
			// Jokers stuck in a group that never reached three still
			// count their nominal value.
			total += rank.Value()*n + boosts[rank]*rules.JokerValue
		}
		return total
	}

	best := rules.JokerValue + minLoserScore(counts, boosts, jokers-1, rules)
	for rank, n := range counts {
		if n == 0 {
			continue
		}
		boosts[rank]++
		if s := minLoserScore(counts, boosts, jokers-1, rules); s < best {
			best = s
		}
		boosts[rank]--
	}
	return best
}
