package server

import (
	"encoding/json"
	"time"

	"hulla/internal/deck"
	"hulla/internal/game"
)

// MessageType identifies a WebSocket message
type MessageType string

// Client → Server
const (
	MessageTypeHello        MessageType = "hello"
	MessageTypeCreateRoom   MessageType = "create_room"
	MessageTypeJoinRoom     MessageType = "join_room"
	MessageTypeLeaveRoom    MessageType = "leave_room"
	MessageTypeListRooms    MessageType = "list_rooms"
	MessageTypeStartMatch   MessageType = "start_match"
	MessageTypeAdvanceRound MessageType = "advance_round"
	MessageTypeAction       MessageType = "action"
)

// Server → Client
const (
	MessageTypeWelcome     MessageType = "welcome"
	MessageTypeRoomList    MessageType = "room_list"
	MessageTypeRoomCreated MessageType = "room_created"
	MessageTypeRoomState   MessageType = "room_state"
	MessageTypeHand        MessageType = "hand"
	MessageTypeGameEvent   MessageType = "game_event"
	MessageTypeError       MessageType = "error"
)

// Message is the WebSocket envelope
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server payloads

type HelloData struct {
	PlayerName string `json:"playerName"`
	Token      string `json:"token,omitempty"`
}

type CreateRoomData struct {
	Title     string `json:"title"`
	Password  string `json:"password,omitempty"`
	MaxRounds int    `json:"maxRounds,omitempty"`
}

type JoinRoomData struct {
	RoomID   string `json:"roomId"`
	Password string `json:"password,omitempty"`
}

type ActionData struct {
	Action    string `json:"action"`
	CardID    string `json:"cardId,omitempty"`
	ClaimKind string `json:"claimKind,omitempty"`
}

// Server → Client payloads

type WelcomeData struct {
	PlayerID string `json:"playerId"`
}

type RoomListData struct {
	Rooms []RoomSummary `json:"rooms"`
}

type RoomCreatedData struct {
	RoomID string `json:"roomId"`
}

type HandData struct {
	RoomID string      `json:"roomId"`
	Cards  []deck.Card `json:"cards"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes sent with ErrorData
const (
	ErrorCodeBadRequest    = "bad_request"
	ErrorCodeAuthFailed    = "auth_failed"
	ErrorCodeRoomNotFound  = "room_not_found"
	ErrorCodeBadPassword   = "bad_password"
	ErrorCodeInvalidAction = "invalid_action"
	ErrorCodeRuleViolation = "rule_violation"
	ErrorCodeDeckExhausted = "deck_exhausted"
)

// GameEventData is the wire form of a game event. Fields are populated
// per event type; Card is present only when the viewer may see it.
type GameEventData struct {
	Event       game.EventType  `json:"event"`
	RoomID      string          `json:"roomId"`
	PlayerID    string          `json:"playerId,omitempty"`
	Name        string          `json:"name,omitempty"`
	NewHostID   string          `json:"newHostId,omitempty"`
	Card        *deck.Card      `json:"card,omitempty"`
	HandSize    int             `json:"handSize,omitempty"`
	DeckLeft    int             `json:"deckLeft,omitempty"`
	Recycled    int             `json:"recycled,omitempty"`
	ClaimKind   string          `json:"claimKind,omitempty"`
	Round       int             `json:"round,omitempty"`
	StarterID   string          `json:"starterId,omitempty"`
	MaxRounds   int             `json:"maxRounds,omitempty"`
	Penalized   bool            `json:"penalized,omitempty"`
	WinnerID    string          `json:"winnerId,omitempty"`
	WinReason   game.WinReason  `json:"winReason,omitempty"`
	RoundScores map[string]int  `json:"roundScores,omitempty"`
	TotalScores map[string]int  `json:"totalScores,omitempty"`
	Rankings    []game.Standing `json:"rankings,omitempty"`
	At          time.Time       `json:"at"`
}

// eventForViewer converts a game event to its wire form as seen by one
// player. A drawn card is visible only to the player who drew it; all
// other private information never leaves the game layer.
func eventForViewer(roomID, viewerID string, ev game.Event) GameEventData {
	data := GameEventData{Event: ev.EventType(), RoomID: roomID, At: ev.Timestamp()}

	switch e := ev.(type) {
	case game.PlayerJoinedEvent:
		data.PlayerID = e.PlayerID
		data.Name = e.Name
	case game.PlayerLeftEvent:
		data.PlayerID = e.PlayerID
		data.NewHostID = e.NewHostID
	case game.MatchStartedEvent:
		data.MaxRounds = e.MaxRounds
	case game.RoundStartedEvent:
		data.Round = e.Round
		data.StarterID = e.StarterID
	case game.CardDrawnEvent:
		data.PlayerID = e.PlayerID
		data.HandSize = e.HandSize
		data.DeckLeft = e.DeckLeft
		if e.PlayerID == viewerID {
			card := e.Card
			data.Card = &card
		}
	case game.CardDiscardedEvent:
		data.PlayerID = e.PlayerID
		data.HandSize = e.HandSize
		card := e.Card
		data.Card = &card
	case game.DeckRecycledEvent:
		data.Recycled = e.Recycled
	case game.ClaimAcceptedEvent:
		data.PlayerID = e.PlayerID
		data.ClaimKind = e.Kind.String()
		card := e.Card
		data.Card = &card
	case game.TurnChangedEvent:
		data.PlayerID = e.PlayerID
	case game.StopDeclaredEvent:
		data.PlayerID = e.PlayerID
		data.Penalized = e.Penalized
	case game.GaveUpEvent:
		data.PlayerID = e.PlayerID
	case game.RoundEndedEvent:
		data.Round = e.Round
		data.WinnerID = e.WinnerID
		data.WinReason = e.WinReason
		data.RoundScores = e.RoundScores
		data.TotalScores = e.TotalScores
	case game.MatchEndedEvent:
		data.WinnerID = e.WinnerID
		data.Rankings = e.Rankings
	}

	return data
}

// parseAction translates an ActionData payload into a game action.
func parseAction(data ActionData) (game.Action, error) {
	switch data.Action {
	case "draw":
		return game.Draw{}, nil
	case "discard":
		if data.CardID == "" {
			return nil, &game.InvalidActionError{Reason: "discard requires cardId"}
		}
		return game.Discard{CardID: data.CardID}, nil
	case "declare_win":
		return game.DeclareWin{}, nil
	case "declare_stop":
		return game.DeclareStop{}, nil
	case "claim":
		switch data.ClaimKind {
		case game.ClaimPung.String():
			return game.Claim{Kind: game.ClaimPung}, nil
		case game.ClaimScoop.String():
			return game.Claim{Kind: game.ClaimScoop}, nil
		default:
			return nil, &game.InvalidActionError{Reason: "unknown claim kind " + data.ClaimKind}
		}
	case "give_up":
		return game.GiveUp{}, nil
	default:
		return nil, &game.InvalidActionError{Reason: "unknown action " + data.Action}
	}
}
