package server

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hulla/internal/game"
)

func TestMatchEndedEncodesCamelCase(t *testing.T) {
	ev := game.MatchEndedEvent{
		WinnerID: "p0",
		Rankings: []game.Standing{
			{PlayerID: "p0", Name: "alice", Total: -100},
			{PlayerID: "p1", Name: "bob", Total: 25},
		},
	}

	raw, err := json.Marshal(eventForViewer("room1", "p1", ev))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	rankings, ok := decoded["rankings"].([]any)
	require.True(t, ok, "rankings missing: %s", raw)
	require.Len(t, rankings, 2)

	first, ok := rankings[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "p0", first["playerId"])
	assert.Equal(t, "alice", first["name"])
	assert.Equal(t, float64(-100), first["total"])
	assert.NotContains(t, first, "PlayerID")
}
