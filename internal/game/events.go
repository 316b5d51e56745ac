package game

import (
	"time"

	"hulla/internal/deck"
)

// EventType represents a game event type with type safety
type EventType string

const (
	EventTypePlayerJoined  EventType = "player_joined"
	EventTypePlayerLeft    EventType = "player_left"
	EventTypeMatchStarted  EventType = "match_started"
	EventTypeRoundStarted  EventType = "round_started"
	EventTypeCardDrawn     EventType = "card_drawn"
	EventTypeCardDiscarded EventType = "card_discarded"
	EventTypeDeckRecycled  EventType = "deck_recycled"
	EventTypeClaimAccepted EventType = "claim_accepted"
	EventTypeTurnChanged   EventType = "turn_changed"
	EventTypeStopDeclared  EventType = "stop_declared"
	EventTypeGaveUp        EventType = "gave_up"
	EventTypeRoundEnded    EventType = "round_ended"
	EventTypeMatchEnded    EventType = "match_ended"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// Event is a named occurrence produced while applying an action. The
// coordinator returns events in order for the transport layer to fan out
// to room members.
type Event interface {
	EventType() EventType
	Timestamp() time.Time
}

type stamp struct{ at time.Time }

func newStamp() stamp                { return stamp{at: time.Now()} }
func (s stamp) Timestamp() time.Time { return s.at }

// PlayerJoinedEvent is published when a player enters the room
type PlayerJoinedEvent struct {
	PlayerID string
	Name     string
	stamp
}

func (PlayerJoinedEvent) EventType() EventType { return EventTypePlayerJoined }

// PlayerLeftEvent is published when a player leaves the room
type PlayerLeftEvent struct {
	PlayerID  string
	NewHostID string
	stamp
}

func (PlayerLeftEvent) EventType() EventType { return EventTypePlayerLeft }

// MatchStartedEvent is published once when the host starts the match
type MatchStartedEvent struct {
	MaxRounds int
	stamp
}

func (MatchStartedEvent) EventType() EventType { return EventTypeMatchStarted }

// RoundStartedEvent is published after each deal
type RoundStartedEvent struct {
	Round     int
	StarterID string
	stamp
}

func (RoundStartedEvent) EventType() EventType { return EventTypeRoundStarted }

// CardDrawnEvent is published when a player draws. The transport shows
// Card only to the drawing player; everyone else sees the count change.
type CardDrawnEvent struct {
	PlayerID string
	Card     deck.Card
	HandSize int
	DeckLeft int
	stamp
}

func (CardDrawnEvent) EventType() EventType { return EventTypeCardDrawn }

// CardDiscardedEvent is published when a card hits the discard pile and
// the interrupt window opens
type CardDiscardedEvent struct {
	PlayerID string
	Card     deck.Card
	HandSize int
	stamp
}

func (CardDiscardedEvent) EventType() EventType { return EventTypeCardDiscarded }

// DeckRecycledEvent is published when the discard pile is shuffled back
// into an exhausted deck
type DeckRecycledEvent struct {
	Recycled int
	stamp
}

func (DeckRecycledEvent) EventType() EventType { return EventTypeDeckRecycled }

// ClaimAcceptedEvent is published when an interrupt claim wins the race
type ClaimAcceptedEvent struct {
	PlayerID string
	Kind     ClaimKind
	Card     deck.Card
	stamp
}

func (ClaimAcceptedEvent) EventType() EventType { return EventTypeClaimAccepted }

// TurnChangedEvent is published whenever the turn moves
type TurnChangedEvent struct {
	PlayerID string
	stamp
}

func (TurnChangedEvent) EventType() EventType { return EventTypeTurnChanged }

// StopDeclaredEvent is published when a player calls a stop
type StopDeclaredEvent struct {
	PlayerID  string
	Penalized bool
	stamp
}

func (StopDeclaredEvent) EventType() EventType { return EventTypeStopDeclared }

// GaveUpEvent is published when a player surrenders the match
type GaveUpEvent struct {
	PlayerID string
	stamp
}

func (GaveUpEvent) EventType() EventType { return EventTypeGaveUp }

// RoundEndedEvent carries the settled scores of one round
type RoundEndedEvent struct {
	Round       int
	WinnerID    string
	WinReason   WinReason
	RoundScores map[string]int
	TotalScores map[string]int
	stamp
}

func (RoundEndedEvent) EventType() EventType { return EventTypeRoundEnded }

// MatchEndedEvent carries the final standings, ranked ascending by total
// score (lower is better)
type MatchEndedEvent struct {
	WinnerID string
	Rankings []Standing
	stamp
}

func (MatchEndedEvent) EventType() EventType { return EventTypeMatchEnded }

// Standing is one row of the final ranking
type Standing struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Total    int    `json:"total"`
}
