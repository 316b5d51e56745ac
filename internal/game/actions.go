package game

import (
	"hulla/internal/deck"
	"hulla/internal/hand"
)

// Action is the closed set of player moves. The transport decodes inbound
// requests into one of these; Apply dispatches on the concrete type so an
// illegal combination simply cannot be constructed.
type Action interface {
	isAction()
}

// Draw takes the top card of the deck
type Draw struct{}

// Discard plays the card with the given synthetic id to the discard pile
type Discard struct {
	CardID string
}

// DeclareWin claims the current six-card hand is a winning combination
type DeclareWin struct{}

// DeclareStop ends the round early, betting the caller's residual hand
// beats every two-card holder
type DeclareStop struct{}

// Claim is a reactive interrupt against the last discarded card
type Claim struct {
	Kind ClaimKind
}

// GiveUp surrenders the match from any state
type GiveUp struct{}

func (Draw) isAction()        {}
func (Discard) isAction()     {}
func (DeclareWin) isAction()  {}
func (DeclareStop) isAction() {}
func (Claim) isAction()       {}
func (GiveUp) isAction()      {}

// Apply validates and executes one action for one player. It returns the
// ordered events to publish, or an error: InvalidActionError/RuleError
// for rejections (state untouched), ErrStale when the round or match has
// already ended, ErrDeckExhausted when a draw has nothing left to draw.
func (r *Room) Apply(playerID string, action Action) ([]Event, error) {
	if r.Finished {
		return nil, ErrStale
	}
	p := r.playerByID(playerID)
	if p == nil {
		return nil, invalidf("player not in room")
	}
	if !r.Started {
		return nil, invalidf("match not started")
	}

	// GiveUp is the one action valid after a round has settled.
	if _, ok := action.(GiveUp); ok {
		return r.applyGiveUp(p)
	}
	if r.RoundEnded {
		return nil, ErrStale
	}

	switch a := action.(type) {
	case Draw:
		return r.applyDraw(p)
	case Discard:
		return r.applyDiscard(p, a.CardID)
	case DeclareWin:
		return r.applyDeclareWin(p)
	case DeclareStop:
		return r.applyDeclareStop(p)
	case Claim:
		return r.applyClaim(p, a.Kind)
	default:
		return nil, invalidf("unknown action")
	}
}

func (r *Room) applyDraw(p *Player) ([]Event, error) {
	if r.CurrentTurnID != p.ID {
		return nil, invalidf("not your turn")
	}
	if n := p.HandSize(); n != 2 && n != 5 {
		return nil, invalidf("cannot draw holding %d cards", n)
	}

	var events []Event
	if r.Deck.IsEmpty() {
		if len(r.DiscardPile) == 0 {
			return nil, ErrDeckExhausted
		}
		recycled := len(r.DiscardPile)
		r.Deck.Recycle(r.DiscardPile)
		r.DiscardPile = nil
		r.LastDiscard = nil
		r.lastDiscarderID = ""
		events = append(events, DeckRecycledEvent{Recycled: recycled, stamp: newStamp()})
	}

	card, ok := r.Deck.Draw()
	if !ok {
		return nil, ErrDeckExhausted
	}
	p.Hand = append(p.Hand, card)
	p.TurnActions++
	p.refreshWaitingState()

	// The turn owner acting closes the interrupt window on the previous
	// discard; claims that lose the race are dropped as stale.
	r.LastDiscard = nil
	r.lastDiscarderID = ""

	events = append(events, CardDrawnEvent{
		PlayerID: p.ID,
		Card:     card,
		HandSize: p.HandSize(),
		DeckLeft: r.Deck.Remaining(),
		stamp:    newStamp(),
	})
	return events, nil
}

func (r *Room) applyDiscard(p *Player, cardID string) ([]Event, error) {
	if r.CurrentTurnID != p.ID {
		return nil, invalidf("not your turn")
	}
	if n := p.HandSize(); n != 3 && n != 6 {
		return nil, invalidf("cannot discard holding %d cards", n)
	}
	card, ok := p.removeCard(cardID)
	if !ok {
		return nil, invalidf("card not in hand")
	}

	r.DiscardPile = append(r.DiscardPile, card)
	played := card
	r.LastDiscard = &played
	r.lastDiscarderID = p.ID
	p.refreshWaitingState()

	next := r.nextAfter(p.ID)
	r.CurrentTurnID = next.ID

	return []Event{
		CardDiscardedEvent{PlayerID: p.ID, Card: card, HandSize: p.HandSize(), stamp: newStamp()},
		TurnChangedEvent{PlayerID: next.ID, stamp: newStamp()},
	}, nil
}

func (r *Room) applyDeclareWin(p *Player) ([]Event, error) {
	if r.CurrentTurnID != p.ID {
		return nil, invalidf("not your turn")
	}
	if p.HandSize() != hand.WinSize {
		return nil, invalidf("cannot declare a win holding %d cards", p.HandSize())
	}

	result := hand.Classify(p.Hand, r.Rules)
	switch {
	case result.Win:
		return r.settleWin(p, WinReasonDeclared, result), nil
	case hand.AllSameRank(p.Hand):
		// Six of one rank is an immediate win checked outside the
		// evaluator; it carries no category score of its own.
		return r.settleWin(p, WinReasonSixOfAKind, hand.Result{}), nil
	default:
		return nil, rulef("hand is not a winning combination")
	}
}

func (r *Room) applyDeclareStop(p *Player) ([]Event, error) {
	if r.CurrentTurnID != p.ID {
		return nil, invalidf("not your turn")
	}
	if p.HandSize() != 3 {
		return nil, invalidf("a stop requires exactly 3 cards in hand")
	}
	holders := 0
	for _, other := range r.Players {
		if other.ID != p.ID && other.HandSize() == 2 {
			holders++
		}
	}
	if holders == 0 {
		return nil, rulef("no other player is down to 2 cards")
	}
	return r.settleStop(p), nil
}

func (r *Room) applyClaim(p *Player, kind ClaimKind) ([]Event, error) {
	if r.LastDiscard == nil {
		// The window already closed: a claim that lost the race against
		// the turn owner's next action is moot, not an offence.
		return nil, ErrStale
	}
	if p.ID == r.lastDiscarderID {
		return nil, invalidf("cannot claim your own discard")
	}
	played := *r.LastDiscard

	switch kind {
	case ClaimPung:
		if !CanPung(p, played) {
			return nil, rulef("hand cannot pung a %s", played.Rank)
		}
		return r.acceptPung(p, played), nil
	case ClaimScoop:
		if !CanScoop(p, played) {
			return nil, rulef("hand cannot scoop a %s", played.Rank)
		}
		return r.settleScoop(p, played), nil
	default:
		return nil, invalidf("unknown claim kind %q", kind)
	}
}

// acceptPung moves the claimant's matching pair to the pile and hands
// them the turn. Their hand drops from five to three: the mandatory
// follow-up discard is a separate action, gated by the hand-size rules.
func (r *Room) acceptPung(p *Player, played deck.Card) []Event {
	taken := p.takeOfRank(played.Rank, 2)
	if len(taken) < 2 {
		// One natural plus the joker.
		if joker, ok := p.takeJoker(); ok {
			taken = append(taken, joker)
		}
	}
	r.DiscardPile = append(r.DiscardPile, taken...)

	// The claim consumes the discard: all other pending claims on this
	// card are void.
	r.LastDiscard = nil
	r.lastDiscarderID = ""
	r.CurrentTurnID = p.ID
	p.refreshWaitingState()

	return []Event{
		ClaimAcceptedEvent{PlayerID: p.ID, Kind: ClaimPung, Card: played, stamp: newStamp()},
		TurnChangedEvent{PlayerID: p.ID, stamp: newStamp()},
	}
}

func (r *Room) applyGiveUp(p *Player) ([]Event, error) {
	r.GaveUpID = p.ID
	r.RoundEnded = true
	r.WinReason = WinReasonGiveUp

	events := []Event{GaveUpEvent{PlayerID: p.ID, stamp: newStamp()}}
	events = append(events, r.finishMatch()...)
	return events, nil
}
