package game

import (
	"hulla/internal/deck"
	"hulla/internal/hand"
)

// PlayerSnapshot is the broadcast-safe view of one seat: hand size but
// never hand contents.
type PlayerSnapshot struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	HandSize          int    `json:"handSize"`
	IsWaitingFinalWin bool   `json:"isWaitingFinalWin"`
	RoundScore        int    `json:"roundScore"`
	TotalScore        int    `json:"totalScore"`
}

// Snapshot is a read-only copy of the room suitable for broadcast to all
// members. Private hands are exposed separately via HandOf.
type Snapshot struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	HasPassword   bool             `json:"hasPassword"`
	HostID        string           `json:"hostId"`
	Players       []PlayerSnapshot `json:"players"`
	CurrentTurnID string           `json:"currentTurnId"`
	DeckCount     int              `json:"deckCount"`
	DiscardCount  int              `json:"discardCount"`
	LastDiscard   *deck.Card       `json:"lastDiscard,omitempty"`
	Started       bool             `json:"started"`
	RoundEnded    bool             `json:"roundEnded"`
	Finished      bool             `json:"finished"`
	CurrentRound  int              `json:"currentRound"`
	MaxRounds     int              `json:"maxRounds"`
	WinnerID      string           `json:"winnerId,omitempty"`
	WinReason     WinReason        `json:"winReason,omitempty"`
	WinCategory   hand.Category    `json:"winCategory,omitempty"`
	MatchWinnerID string           `json:"matchWinnerId,omitempty"`
}

// Snapshot captures the room's public state
func (r *Room) Snapshot() Snapshot {
	players := make([]PlayerSnapshot, 0, len(r.Players))
	for _, p := range r.Players {
		players = append(players, PlayerSnapshot{
			ID:                p.ID,
			Name:              p.Name,
			HandSize:          p.HandSize(),
			IsWaitingFinalWin: p.IsWaitingFinalWin,
			RoundScore:        p.RoundScore,
			TotalScore:        p.TotalScore,
		})
	}

	var last *deck.Card
	if r.LastDiscard != nil {
		c := *r.LastDiscard
		last = &c
	}

	deckCount := 0
	if r.Deck != nil {
		deckCount = r.Deck.Remaining()
	}

	return Snapshot{
		ID:            r.ID,
		Title:         r.Title,
		HasPassword:   r.Password != "",
		HostID:        r.HostID,
		Players:       players,
		CurrentTurnID: r.CurrentTurnID,
		DeckCount:     deckCount,
		DiscardCount:  len(r.DiscardPile),
		LastDiscard:   last,
		Started:       r.Started,
		RoundEnded:    r.RoundEnded,
		Finished:      r.Finished,
		CurrentRound:  r.CurrentRound,
		MaxRounds:     r.MaxRounds,
		WinnerID:      r.WinnerID,
		WinReason:     r.WinReason,
		WinCategory:   r.WinCategory,
		MatchWinnerID: r.MatchWinnerID,
	}
}

// HandOf returns a copy of one player's private hand
func (r *Room) HandOf(playerID string) []deck.Card {
	p := r.playerByID(playerID)
	if p == nil {
		return nil
	}
	cards := make([]deck.Card, len(p.Hand))
	copy(cards, p.Hand)
	return cards
}
