// Package statistics aggregates per-player match outcomes into score
// distribution summaries.
package statistics

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// MatchOutcome is one player's result in one finished match
type MatchOutcome struct {
	Total   int // final cumulative score (lower is better)
	Place   int // 1-based rank in the final standings
	Players int // seats in the match
}

// PlaceStats tracks how often a player lands in a given place
type PlaceStats struct {
	Matches int
}

// Statistics tracks a player's score distribution across matches
type Statistics struct {
	Matches int
	Sum     float64
	Sum2    float64 // Sum of squares for variance calculation
	Values  []float64

	Wins   int // first-place finishes
	Places map[int]*PlaceStats
}

// New creates an empty statistics accumulator
func New() *Statistics {
	return &Statistics{Places: make(map[int]*PlaceStats)}
}

// Add incorporates a match outcome
func (s *Statistics) Add(outcome MatchOutcome) {
	total := float64(outcome.Total)
	s.Matches++
	s.Sum += total
	s.Sum2 += total * total
	s.Values = append(s.Values, total)

	if outcome.Place == 1 {
		s.Wins++
	}
	if s.Places == nil {
		s.Places = make(map[int]*PlaceStats)
	}
	ps, ok := s.Places[outcome.Place]
	if !ok {
		ps = &PlaceStats{}
		s.Places[outcome.Place] = ps
	}
	ps.Matches++
}

// Mean returns the arithmetic mean of the totals
func (s *Statistics) Mean() float64 {
	if s.Matches == 0 {
		return 0
	}
	return s.Sum / float64(s.Matches)
}

// Variance returns the sample variance of the totals
func (s *Statistics) Variance() float64 {
	if s.Matches < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.Sum2 - float64(s.Matches)*mean*mean) / float64(s.Matches-1)
}

// StdDev returns the sample standard deviation of the totals
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Matches == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Matches))
}

// Median returns the median total
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the p-th percentile of the totals (p in [0,1])
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	idx := p * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// WinRate returns the fraction of first-place finishes
func (s *Statistics) WinRate() float64 {
	if s.Matches == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Matches)
}

// Summary renders a human-readable report
func (s *Statistics) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Matches:   %d\n", s.Matches)
	fmt.Fprintf(&b, "Wins:      %d (%.1f%%)\n", s.Wins, s.WinRate()*100)
	fmt.Fprintf(&b, "Mean:      %.1f\n", s.Mean())
	fmt.Fprintf(&b, "Median:    %.1f\n", s.Median())
	fmt.Fprintf(&b, "StdDev:    %.1f\n", s.StdDev())

	places := make([]int, 0, len(s.Places))
	for place := range s.Places {
		places = append(places, place)
	}
	sort.Ints(places)
	for _, place := range places {
		fmt.Fprintf(&b, "Place %d:   %d\n", place, s.Places[place].Matches)
	}
	return b.String()
}
