package client

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hulla/internal/game"
	"hulla/internal/server"
)

const waitTimeout = 5 * time.Second

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := log.New(io.Discard)
	cfg := server.DefaultServerConfig()
	coordinator := server.NewCoordinator(cfg, logger, quartz.NewMock(t), nil)
	srv := server.NewServer("", coordinator, logger)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Stop()
	})
	return ts
}

func connect(t *testing.T, ts *httptest.Server, name string) *Client {
	t.Helper()
	c := NewClient(ts.URL, log.New(io.Discard))
	require.NoError(t, c.Connect())
	t.Cleanup(func() { _ = c.Disconnect() })
	require.NoError(t, c.Hello(name, ""))
	require.NotEmpty(t, c.PlayerID())
	return c
}

// roomState skips queued broadcasts until a snapshot satisfies ok.
// Joins re-broadcast state, so tests must not rely on the first one.
func roomState(t *testing.T, c *Client, ok func(game.Snapshot) bool) game.Snapshot {
	t.Helper()
	deadline := time.Now().Add(waitTimeout)
	for {
		require.Positive(t, time.Until(deadline), "timed out waiting for room state")
		msg, err := c.WaitFor(server.MessageTypeRoomState, time.Until(deadline))
		require.NoError(t, err)
		var snap game.Snapshot
		require.NoError(t, json.Unmarshal(msg.Data, &snap))
		if ok(snap) {
			return snap
		}
	}
}

func privateHand(t *testing.T, c *Client, size int) server.HandData {
	t.Helper()
	deadline := time.Now().Add(waitTimeout)
	for {
		require.Positive(t, time.Until(deadline), "timed out waiting for hand of %d", size)
		msg, err := c.WaitFor(server.MessageTypeHand, time.Until(deadline))
		require.NoError(t, err)
		var hand server.HandData
		require.NoError(t, json.Unmarshal(msg.Data, &hand))
		if len(hand.Cards) == size {
			return hand
		}
	}
}

func gameEvent(t *testing.T, c *Client, want game.EventType) server.GameEventData {
	t.Helper()
	deadline := time.Now().Add(waitTimeout)
	for {
		remaining := time.Until(deadline)
		require.Positive(t, remaining, "timed out waiting for %s", want)

		msg, err := c.Receive(remaining)
		require.NoError(t, err)
		if msg.Type != server.MessageTypeGameEvent {
			continue
		}
		var ev server.GameEventData
		require.NoError(t, json.Unmarshal(msg.Data, &ev))
		if ev.Event == want {
			return ev
		}
	}
}

func TestLobbyFlow(t *testing.T) {
	ts := newTestServer(t)
	alice := connect(t, ts, "alice")

	roomID, err := alice.CreateRoom("casual", "", 3)
	require.NoError(t, err)
	require.NotEmpty(t, roomID)

	rooms, err := alice.ListRooms()
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "casual", rooms[0].Title)
	assert.False(t, rooms[0].HasPassword)
	assert.Equal(t, 0, rooms[0].PlayerCount)

	require.NoError(t, alice.JoinRoom(roomID, ""))

	rooms, err = alice.ListRooms()
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, 1, rooms[0].PlayerCount)
}

func TestPasswordProtectedRoom(t *testing.T) {
	ts := newTestServer(t)
	alice := connect(t, ts, "alice")
	bob := connect(t, ts, "bob")

	roomID, err := alice.CreateRoom("private", "hunter2", 3)
	require.NoError(t, err)

	err = bob.JoinRoom(roomID, "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad_password")

	require.NoError(t, bob.JoinRoom(roomID, "hunter2"))
}

func TestMatchOverWire(t *testing.T) {
	ts := newTestServer(t)
	alice := connect(t, ts, "alice")
	bob := connect(t, ts, "bob")

	roomID, err := alice.CreateRoom("duel", "", 3)
	require.NoError(t, err)
	require.NoError(t, alice.JoinRoom(roomID, ""))
	require.NoError(t, bob.JoinRoom(roomID, ""))

	require.NoError(t, alice.StartMatch())

	snap := roomState(t, alice, func(s game.Snapshot) bool { return s.Started })
	require.Len(t, snap.Players, 2)

	hand := privateHand(t, alice, 5)
	assert.Len(t, hand.Cards, 5)

	// The starting player draws; both see the event but only the drawer
	// sees the card.
	drawer, watcher := alice, bob
	if snap.CurrentTurnID == bob.PlayerID() {
		drawer, watcher = bob, alice
	}
	require.NoError(t, drawer.Draw())

	drawnSelf := gameEvent(t, drawer, game.EventTypeCardDrawn)
	require.NotNil(t, drawnSelf.Card, "drawer sees the drawn card")
	assert.Equal(t, 6, drawnSelf.HandSize)

	drawnOther := gameEvent(t, watcher, game.EventTypeCardDrawn)
	assert.Nil(t, drawnOther.Card, "opponents never see a drawn card")
	assert.Equal(t, 6, drawnOther.HandSize)

	// Discard the drawn card; everyone sees it hit the pile.
	require.NoError(t, drawer.Discard(drawnSelf.Card.ID))
	discarded := gameEvent(t, watcher, game.EventTypeCardDiscarded)
	require.NotNil(t, discarded.Card)
	assert.Equal(t, drawnSelf.Card.ID, discarded.Card.ID)

	// Surrender ends the match for both.
	require.NoError(t, drawer.GiveUp())
	ended := gameEvent(t, watcher, game.EventTypeMatchEnded)
	assert.Equal(t, watcher.PlayerID(), ended.WinnerID, "surrender hands the match to the opponent")
	assert.Len(t, ended.Rankings, 2)
}

func TestDisconnectLeavesRoom(t *testing.T) {
	ts := newTestServer(t)
	alice := connect(t, ts, "alice")
	bob := connect(t, ts, "bob")

	roomID, err := alice.CreateRoom("flaky", "", 3)
	require.NoError(t, err)
	require.NoError(t, alice.JoinRoom(roomID, ""))
	require.NoError(t, bob.JoinRoom(roomID, ""))

	require.NoError(t, bob.Disconnect())

	left := gameEvent(t, alice, game.EventTypePlayerLeft)
	assert.Equal(t, bob.PlayerID(), left.PlayerID)
}
