package game

import (
	rand "math/rand/v2"

	"hulla/internal/deck"
	"hulla/internal/hand"
)

// MaxPlayers is the seat cap per room
const MaxPlayers = 7

// MinPlayers is the smallest player count a match can start with
const MinPlayers = 2

// InitialHandSize is the number of cards dealt to each player at setup
const InitialHandSize = 5

// WinReason records how a round or match was decided
type WinReason string

const (
	WinReasonNone       WinReason = ""
	WinReasonDeclared   WinReason = "declared"
	WinReasonSixOfAKind WinReason = "six_of_a_kind"
	WinReasonScoop      WinReason = "scoop"
	WinReasonStop       WinReason = "stop"
	WinReasonGiveUp     WinReason = "give_up"
)

// Room is the authoritative state of one game room: seats in rotation
// order, the live round, and cumulative match scores. A Room is not safe
// for concurrent use; the coordinator serializes every mutation behind the
// room's lock.
type Room struct {
	ID       string
	Title    string
	Password string
	HostID   string

	// Players in seating order; the order defines turn rotation.
	Players []*Player

	CurrentTurnID string
	Deck          *deck.Deck
	DiscardPile   []deck.Card

	// LastDiscard is the only card an interrupt can target. A nil value
	// means the interrupt window is closed.
	LastDiscard     *deck.Card
	lastDiscarderID string

	Started    bool
	RoundEnded bool
	Finished   bool

	CurrentRound int
	MaxRounds    int
	MaxSeats     int

	WinnerID      string
	WinReason     WinReason
	WinCategory   hand.Category
	StopCallerID  string
	GaveUpID      string
	MatchWinnerID string

	Rules hand.Rules

	rng *rand.Rand
}

// NewRoom creates an empty room. The rng drives every shuffle for this
// room's lifetime, so a seeded source makes whole matches reproducible.
func NewRoom(id, title, password string, maxRounds, maxSeats int, rules hand.Rules, rng *rand.Rand) *Room {
	if maxRounds < 1 {
		maxRounds = 1
	}
	if maxSeats < MinPlayers || maxSeats > MaxPlayers {
		maxSeats = MaxPlayers
	}
	return &Room{
		ID:        id,
		Title:     title,
		Password:  password,
		MaxRounds: maxRounds,
		MaxSeats:  maxSeats,
		Rules:     rules,
		rng:       rng,
	}
}

// Join seats a new player. The first player to join becomes the host.
func (r *Room) Join(playerID, name string) ([]Event, error) {
	if r.Started && !r.Finished {
		return nil, invalidf("match already in progress")
	}
	if len(r.Players) >= r.MaxSeats {
		return nil, invalidf("room is full")
	}
	for _, p := range r.Players {
		if p.ID == playerID {
			return nil, invalidf("player already in room")
		}
		if p.Name == name {
			return nil, invalidf("name %q is taken", name)
		}
	}

	player := &Player{ID: playerID, Name: name}
	r.Players = append(r.Players, player)
	if r.HostID == "" {
		r.HostID = playerID
	}

	return []Event{PlayerJoinedEvent{PlayerID: playerID, Name: name, stamp: newStamp()}}, nil
}

// Leave removes a player. Host duties pass to the next seat; if the
// leaver held the turn mid-round, the turn passes first. A match left
// with fewer than two players ends immediately with totals frozen.
func (r *Room) Leave(playerID string) ([]Event, error) {
	idx := r.indexOf(playerID)
	if idx < 0 {
		return nil, invalidf("player not in room")
	}

	var events []Event
	if r.Started && !r.RoundEnded && r.CurrentTurnID == playerID && len(r.Players) > 1 {
		next := r.nextAfter(playerID)
		r.CurrentTurnID = next.ID
		events = append(events, TurnChangedEvent{PlayerID: next.ID, stamp: newStamp()})
	}

	r.Players = append(r.Players[:idx], r.Players[idx+1:]...)

	newHost := ""
	if r.HostID == playerID && len(r.Players) > 0 {
		r.HostID = r.Players[0].ID
		newHost = r.HostID
	}
	events = append(events, PlayerLeftEvent{PlayerID: playerID, NewHostID: newHost, stamp: newStamp()})

	if r.Started && !r.Finished && len(r.Players) < MinPlayers {
		r.RoundEnded = true
		events = append(events, r.finishMatch()...)
	}
	return events, nil
}

// StartMatch deals the first round. Host only; every player starts the
// match at zero.
func (r *Room) StartMatch(actorID string) ([]Event, error) {
	if r.Started {
		return nil, invalidf("match already started")
	}
	if actorID != r.HostID {
		return nil, invalidf("only the host can start the match")
	}
	if len(r.Players) < MinPlayers {
		return nil, invalidf("need at least %d players", MinPlayers)
	}

	for _, p := range r.Players {
		p.TotalScore = 0
	}
	r.Started = true
	r.CurrentRound = 0

	events := []Event{MatchStartedEvent{MaxRounds: r.MaxRounds, stamp: newStamp()}}
	events = append(events, r.startRound(r.HostID)...)
	return events, nil
}

// AdvanceRound moves a settled round into the next deal. Host only; the
// previous round's winner leads, or the host if the winner left.
func (r *Room) AdvanceRound(actorID string) ([]Event, error) {
	if r.Finished {
		return nil, ErrStale
	}
	if actorID != r.HostID {
		return nil, invalidf("only the host can advance the round")
	}
	if !r.RoundEnded {
		return nil, invalidf("round still in progress")
	}
	if r.CurrentRound >= r.MaxRounds {
		// Settlement already finished the match; nothing to advance into.
		return nil, ErrStale
	}

	starter := r.HostID
	if r.WinnerID != "" && r.indexOf(r.WinnerID) >= 0 {
		starter = r.WinnerID
	}
	return r.startRound(starter), nil
}

// startRound resets the round state: fresh shuffled deck, empty pile,
// five cards to every seat, the starter on turn.
func (r *Room) startRound(starterID string) []Event {
	r.CurrentRound++
	r.RoundEnded = false
	r.WinnerID = ""
	r.WinReason = WinReasonNone
	r.WinCategory = hand.CategoryNone
	r.StopCallerID = ""
	r.LastDiscard = nil
	r.lastDiscarderID = ""
	r.DiscardPile = nil

	r.Deck = deck.New(r.rng)
	for _, p := range r.Players {
		p.Hand = r.Deck.DrawN(InitialHandSize)
		p.IsWaitingFinalWin = false
		p.RoundScore = 0
		p.TurnActions = 0
	}
	r.CurrentTurnID = starterID

	return []Event{
		RoundStartedEvent{Round: r.CurrentRound, StarterID: starterID, stamp: newStamp()},
		TurnChangedEvent{PlayerID: starterID, stamp: newStamp()},
	}
}

func (r *Room) playerByID(id string) *Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Room) indexOf(id string) int {
	for i, p := range r.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// nextAfter returns the next player in rotation order
func (r *Room) nextAfter(id string) *Player {
	idx := r.indexOf(id)
	return r.Players[(idx+1)%len(r.Players)]
}
