package server

import (
	"context"
	"io"
	rand "math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hulla/internal/deck"
	"hulla/internal/game"
	"hulla/internal/randutil"
	"hulla/internal/storage"
)

type fakeRecorder struct {
	records chan storage.MatchRecord
}

func (f *fakeRecorder) RecordMatch(_ context.Context, rec storage.MatchRecord) error {
	f.records <- rec
	return nil
}

func newTestCoordinator(t *testing.T) (*Coordinator, *quartz.Mock, *fakeRecorder) {
	t.Helper()
	cfg := DefaultServerConfig()
	cfg.Server.IdleRoomMinutes = 1
	clock := quartz.NewMock(t)
	recorder := &fakeRecorder{records: make(chan storage.MatchRecord, 1)}
	c := NewCoordinator(cfg, log.New(io.Discard), clock, recorder)
	c.newRNG = func() *rand.Rand { return randutil.New(42) }
	return c, clock, recorder
}

// seatedRoom creates a room with n players joined via the coordinator
func seatedRoom(t *testing.T, c *Coordinator, n int) string {
	t.Helper()
	id := c.CreateRoom("test room", "", 3)
	for i := 0; i < n; i++ {
		_, _, err := c.JoinRoom(id, pid(i), "player"+string(rune('0'+i)), "")
		require.NoError(t, err)
	}
	return id
}

func pid(i int) string {
	return "p" + string(rune('0'+i))
}

func cards(ranks ...deck.Rank) []deck.Card {
	out := make([]deck.Card, 0, len(ranks))
	for _, r := range ranks {
		if r == deck.Joker {
			out = append(out, deck.NewJoker())
		} else {
			out = append(out, deck.NewCard(deck.Spades, r))
		}
	}
	return out
}

func TestCreateJoinStart(t *testing.T) {
	c, _, _ := newTestCoordinator(t)
	id := seatedRoom(t, c, 3)

	snap, events, err := c.StartMatch(id, pid(0))
	require.NoError(t, err)

	assert.True(t, snap.Started)
	assert.Equal(t, 1, snap.CurrentRound)
	assert.Len(t, snap.Players, 3)
	for _, p := range snap.Players {
		assert.Equal(t, 5, p.HandSize)
	}
	assert.NotEmpty(t, events)

	hand, err := c.HandOf(id, pid(0))
	require.NoError(t, err)
	assert.Len(t, hand, 5)
}

func TestJoinRoomPassword(t *testing.T) {
	c, _, _ := newTestCoordinator(t)
	id := c.CreateRoom("private", "sekrit", 3)

	_, _, err := c.JoinRoom(id, "p0", "alice", "wrong")
	assert.ErrorIs(t, err, ErrBadPassword)

	_, _, err = c.JoinRoom(id, "p0", "alice", "sekrit")
	assert.NoError(t, err)
}

func TestJoinRoomHonorsConfiguredSeatLimit(t *testing.T) {
	cfg := DefaultServerConfig()
	cfg.Rooms.MaxPlayers = 4
	c := NewCoordinator(cfg, log.New(io.Discard), quartz.NewMock(t), nil)

	id := c.CreateRoom("small", "", 3)
	for i := 0; i < 4; i++ {
		_, _, err := c.JoinRoom(id, pid(i), "player"+string(rune('0'+i)), "")
		require.NoError(t, err)
	}

	_, _, err := c.JoinRoom(id, "p9", "late", "")
	require.Error(t, err)
	var invalid *game.InvalidActionError
	assert.ErrorAs(t, err, &invalid)
}

func TestUnknownRoom(t *testing.T) {
	c, _, _ := newTestCoordinator(t)
	_, _, err := c.JoinRoom("nope", "p0", "alice", "")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestLeaveLastPlayerRemovesRoom(t *testing.T) {
	c, _, _ := newTestCoordinator(t)
	id := seatedRoom(t, c, 1)

	_, _, err := c.LeaveRoom(id, pid(0))
	require.NoError(t, err)

	_, err = c.Snapshot(id)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestStaleActionIsSilentNoOp(t *testing.T) {
	c, _, _ := newTestCoordinator(t)
	id := seatedRoom(t, c, 3)
	_, _, err := c.StartMatch(id, pid(0))
	require.NoError(t, err)

	_, _, err = c.Apply(id, pid(1), game.GiveUp{})
	require.NoError(t, err)

	// The match is over; a racing draw must not surface an error.
	snap, events, err := c.Apply(id, pid(2), game.Draw{})
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.True(t, snap.Finished)
}

func TestMatchEndIsRecorded(t *testing.T) {
	c, _, recorder := newTestCoordinator(t)
	id := seatedRoom(t, c, 3)
	_, _, err := c.StartMatch(id, pid(0))
	require.NoError(t, err)

	_, _, err = c.Apply(id, pid(1), game.GiveUp{})
	require.NoError(t, err)

	select {
	case rec := <-recorder.records:
		assert.Equal(t, id, rec.RoomID)
		assert.Equal(t, "test room", rec.Title)
		assert.Len(t, rec.Standings, 3)
		assert.Equal(t, 1, rec.Standings[0].Place)
	case <-time.After(2 * time.Second):
		t.Fatal("match was never recorded")
	}
}

// TestClaimDrawRace races an interrupt claim against the next player's
// draw on the same discard. The room lock serializes them: exactly one
// side takes effect and the loser is either rejected or dropped.
func TestClaimDrawRace(t *testing.T) {
	for i := 0; i < 20; i++ {
		c, _, _ := newTestCoordinator(t)
		id := seatedRoom(t, c, 3)
		_, _, err := c.StartMatch(id, pid(0))
		require.NoError(t, err)

		e, err := c.entry(id)
		require.NoError(t, err)
		room := e.room
		room.Players[0].Hand = cards(deck.Seven, deck.Two, deck.Five, deck.Eight, deck.Jack, deck.King)
		room.Players[2].Hand = cards(deck.Seven, deck.Seven, deck.Three, deck.Four, deck.Nine)

		var sevenID string
		for _, card := range room.Players[0].Hand {
			if card.Rank == deck.Seven {
				sevenID = card.ID
			}
		}
		_, _, err = c.Apply(id, pid(0), game.Discard{CardID: sevenID})
		require.NoError(t, err)

		var wg sync.WaitGroup
		var claimEvents, drawEvents []game.Event
		var claimErr, drawErr error

		wg.Add(2)
		go func() {
			defer wg.Done()
			_, claimEvents, claimErr = c.Apply(id, pid(2), game.Claim{Kind: game.ClaimPung})
		}()
		go func() {
			defer wg.Done()
			_, drawEvents, drawErr = c.Apply(id, pid(1), game.Draw{})
		}()
		wg.Wait()

		snap, err := c.Snapshot(id)
		require.NoError(t, err)

		claimWon := len(claimEvents) > 0
		drawWon := len(drawEvents) > 0
		require.NotEqual(t, claimWon, drawWon, "exactly one racer may win")

		if claimWon {
			require.NoError(t, claimErr)
			assert.Equal(t, pid(2), snap.CurrentTurnID, "accepted claim seizes the turn")
			assert.Error(t, drawErr, "the preempted draw is out of turn")
		} else {
			require.NoError(t, drawErr)
			require.NoError(t, claimErr, "lost claim is a silent no-op")
			assert.Equal(t, pid(1), snap.CurrentTurnID)
			assert.Nil(t, snap.LastDiscard, "the draw closed the window")
		}
	}
}

func TestSweepRemovesIdleRooms(t *testing.T) {
	c, clock, _ := newTestCoordinator(t)
	id := seatedRoom(t, c, 2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	trap := clock.Trap().NewTicker()
	defer trap.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.Run(ctx)
	}()

	// Wait for Run to set up its ticker before driving the clock.
	trap.MustWait(ctx).MustRelease(ctx)

	// Two ticks: one past the idle threshold the sweep fires on.
	clock.Advance(time.Minute).MustWait(ctx)
	clock.Advance(time.Minute).MustWait(ctx)

	assert.Eventually(t, func() bool {
		_, err := c.Snapshot(id)
		return err != nil
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}
