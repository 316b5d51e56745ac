package game

import (
	"sort"

	"hulla/internal/deck"
	"hulla/internal/hand"
)

// settleWin finalizes a round won by declaration: the winner takes the
// category's score delta, everyone else is assessed their residual hand.
func (r *Room) settleWin(winner *Player, reason WinReason, result hand.Result) []Event {
	winner.RoundScore = result.Score
	for _, p := range r.Players {
		if p.ID != winner.ID {
			p.RoundScore = hand.LoserScore(p.Hand, r.Rules)
		}
	}
	r.WinCategory = result.Category
	return r.endRound(winner.ID, reason)
}

// settleScoop finalizes a round ended by a scoop claim: the claimant
// scores zero, the player whose discard was scooped pays their residual
// hand plus the claim penalty, everyone else pays their residual hand.
func (r *Room) settleScoop(claimant *Player, played deck.Card) []Event {
	discarderID := r.lastDiscarderID
	for _, p := range r.Players {
		switch p.ID {
		case claimant.ID:
			p.RoundScore = 0
		case discarderID:
			p.RoundScore = hand.LoserScore(p.Hand, r.Rules) + r.Rules.ClaimPenalty
		default:
			p.RoundScore = hand.LoserScore(p.Hand, r.Rules)
		}
	}

	r.LastDiscard = nil
	r.lastDiscarderID = ""

	events := []Event{ClaimAcceptedEvent{PlayerID: claimant.ID, Kind: ClaimScoop, Card: played, stamp: newStamp()}}
	events = append(events, r.endRound(claimant.ID, WinReasonScoop)...)
	return events
}

// settleStop finalizes a round ended by a stop call. Everyone pays their
// residual hand; the stopper additionally pays the stop penalty unless
// strictly ahead of every two-card holder (ties penalize the stopper).
// The lowest round score leads the next round.
func (r *Room) settleStop(stopper *Player) []Event {
	stopperScore := hand.LoserScore(stopper.Hand, r.Rules)
	bestHolder := -1
	for _, p := range r.Players {
		if p.ID == stopper.ID {
			continue
		}
		p.RoundScore = hand.LoserScore(p.Hand, r.Rules)
		if p.HandSize() == 2 && (bestHolder < 0 || p.RoundScore < bestHolder) {
			bestHolder = p.RoundScore
		}
	}

	penalized := stopperScore >= bestHolder
	stopper.RoundScore = stopperScore
	if penalized {
		stopper.RoundScore += r.Rules.StopPenalty
	}
	r.StopCallerID = stopper.ID

	winner := stopper
	for _, p := range r.Players {
		if p.RoundScore < winner.RoundScore {
			winner = p
		}
	}

	events := []Event{StopDeclaredEvent{PlayerID: stopper.ID, Penalized: penalized, stamp: newStamp()}}
	events = append(events, r.endRound(winner.ID, WinReasonStop)...)
	return events
}

// endRound folds round scores into totals, marks the round settled, and
// finishes the match after the final configured round.
func (r *Room) endRound(winnerID string, reason WinReason) []Event {
	r.RoundEnded = true
	r.WinnerID = winnerID
	r.WinReason = reason

	roundScores := make(map[string]int, len(r.Players))
	totalScores := make(map[string]int, len(r.Players))
	for _, p := range r.Players {
		p.TotalScore += p.RoundScore
		roundScores[p.ID] = p.RoundScore
		totalScores[p.ID] = p.TotalScore
	}

	events := []Event{RoundEndedEvent{
		Round:       r.CurrentRound,
		WinnerID:    winnerID,
		WinReason:   reason,
		RoundScores: roundScores,
		TotalScores: totalScores,
		stamp:       newStamp(),
	}}

	if r.CurrentRound >= r.MaxRounds {
		events = append(events, r.finishMatch()...)
	}
	return events
}

// finishMatch freezes the match: rankings ascend by total score, ties
// break by seating order. A player who surrendered always ranks last.
func (r *Room) finishMatch() []Event {
	r.Finished = true

	rankings := make([]Standing, 0, len(r.Players))
	for _, p := range r.Players {
		rankings = append(rankings, Standing{PlayerID: p.ID, Name: p.Name, Total: p.TotalScore})
	}
	sort.SliceStable(rankings, func(i, j int) bool {
		if r.GaveUpID != "" {
			if rankings[i].PlayerID == r.GaveUpID {
				return false
			}
			if rankings[j].PlayerID == r.GaveUpID {
				return true
			}
		}
		return rankings[i].Total < rankings[j].Total
	})

	if len(rankings) > 0 {
		r.MatchWinnerID = rankings[0].PlayerID
	}

	return []Event{MatchEndedEvent{WinnerID: r.MatchWinnerID, Rankings: rankings, stamp: newStamp()}}
}
