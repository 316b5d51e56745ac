// Package client implements a WebSocket client for the hulla wire
// protocol. It powers integration tests and can back a terminal client.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"hulla/internal/server"
)

// Client is a WebSocket client for one player session
type Client struct {
	serverURL string
	conn      *websocket.Conn
	send      chan *server.Message
	receive   chan *server.Message
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	connected bool
	closeOnce sync.Once

	playerID string
	roomID   string
}

// NewClient creates a client for the given server URL
func NewClient(serverURL string, logger *log.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		serverURL: serverURL,
		send:      make(chan *server.Message, 256),
		receive:   make(chan *server.Message, 256),
		logger:    logger.WithPrefix("client"),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Connect establishes the WebSocket connection
func (c *Client) Connect() error {
	u, err := url.Parse(c.serverURL)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	go c.readPump()
	go c.writePump()

	return nil
}

// Disconnect closes the connection
func (c *Client) Disconnect() error {
	c.closeOnce.Do(func() {
		c.cancel()

		c.mu.Lock()
		defer c.mu.Unlock()

		if c.conn != nil {
			_ = c.conn.Close()
			c.connected = false
		}
	})
	return nil
}

// IsConnected reports whether the client is connected
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// PlayerID returns the id assigned by the server on hello
func (c *Client) PlayerID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// RoomID returns the room the client joined, if any
func (c *Client) RoomID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomID
}

func (c *Client) sendMessage(msgType server.MessageType, data interface{}) error {
	msg, err := server.NewMessage(msgType, data)
	if err != nil {
		return err
	}
	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		return fmt.Errorf("send buffer full")
	}
}

// Receive returns the next server message, or an error on timeout
func (c *Client) Receive(timeout time.Duration) (*server.Message, error) {
	select {
	case msg, ok := <-c.receive:
		if !ok {
			return nil, fmt.Errorf("connection closed")
		}
		return msg, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("timed out waiting for message")
	case <-c.ctx.Done():
		return nil, c.ctx.Err()
	}
}

// WaitFor discards messages until one of the wanted type arrives
func (c *Client) WaitFor(msgType server.MessageType, timeout time.Duration) (*server.Message, error) {
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("timed out waiting for %s", msgType)
		}
		msg, err := c.Receive(remaining)
		if err != nil {
			return nil, err
		}
		if msg.Type == msgType {
			return msg, nil
		}
		if msg.Type == server.MessageTypeError {
			var errData server.ErrorData
			_ = json.Unmarshal(msg.Data, &errData)
			return nil, fmt.Errorf("server error %s: %s", errData.Code, errData.Message)
		}
	}
}

// Hello introduces the player and waits for the assigned id
func (c *Client) Hello(name, token string) error {
	if err := c.sendMessage(server.MessageTypeHello, server.HelloData{PlayerName: name, Token: token}); err != nil {
		return err
	}
	msg, err := c.WaitFor(server.MessageTypeWelcome, 5*time.Second)
	if err != nil {
		return err
	}
	var welcome server.WelcomeData
	if err := json.Unmarshal(msg.Data, &welcome); err != nil {
		return err
	}

	c.mu.Lock()
	c.playerID = welcome.PlayerID
	c.mu.Unlock()
	return nil
}

// CreateRoom creates a room and returns its id
func (c *Client) CreateRoom(title, password string, maxRounds int) (string, error) {
	err := c.sendMessage(server.MessageTypeCreateRoom, server.CreateRoomData{
		Title:     title,
		Password:  password,
		MaxRounds: maxRounds,
	})
	if err != nil {
		return "", err
	}
	msg, err := c.WaitFor(server.MessageTypeRoomCreated, 5*time.Second)
	if err != nil {
		return "", err
	}
	var created server.RoomCreatedData
	if err := json.Unmarshal(msg.Data, &created); err != nil {
		return "", err
	}
	return created.RoomID, nil
}

// JoinRoom joins a room
func (c *Client) JoinRoom(roomID, password string) error {
	err := c.sendMessage(server.MessageTypeJoinRoom, server.JoinRoomData{
		RoomID:   roomID,
		Password: password,
	})
	if err != nil {
		return err
	}
	if _, err := c.WaitFor(server.MessageTypeRoomState, 5*time.Second); err != nil {
		return err
	}

	c.mu.Lock()
	c.roomID = roomID
	c.mu.Unlock()
	return nil
}

// LeaveRoom leaves the current room
func (c *Client) LeaveRoom() error {
	return c.sendMessage(server.MessageTypeLeaveRoom, nil)
}

// ListRooms requests the lobby listing
func (c *Client) ListRooms() ([]server.RoomSummary, error) {
	if err := c.sendMessage(server.MessageTypeListRooms, nil); err != nil {
		return nil, err
	}
	msg, err := c.WaitFor(server.MessageTypeRoomList, 5*time.Second)
	if err != nil {
		return nil, err
	}
	var list server.RoomListData
	if err := json.Unmarshal(msg.Data, &list); err != nil {
		return nil, err
	}
	return list.Rooms, nil
}

// StartMatch asks the server to start the match (host only)
func (c *Client) StartMatch() error {
	return c.sendMessage(server.MessageTypeStartMatch, nil)
}

// AdvanceRound asks the server to deal the next round (host only)
func (c *Client) AdvanceRound() error {
	return c.sendMessage(server.MessageTypeAdvanceRound, nil)
}

// Draw draws a card from the deck
func (c *Client) Draw() error {
	return c.sendMessage(server.MessageTypeAction, server.ActionData{Action: "draw"})
}

// Discard plays a card to the discard pile
func (c *Client) Discard(cardID string) error {
	return c.sendMessage(server.MessageTypeAction, server.ActionData{Action: "discard", CardID: cardID})
}

// DeclareWin declares a winning six-card hand
func (c *Client) DeclareWin() error {
	return c.sendMessage(server.MessageTypeAction, server.ActionData{Action: "declare_win"})
}

// DeclareStop calls a stop on a player holding two cards
func (c *Client) DeclareStop() error {
	return c.sendMessage(server.MessageTypeAction, server.ActionData{Action: "declare_stop"})
}

// Claim makes an interrupt claim on the last discard
func (c *Client) Claim(kind string) error {
	return c.sendMessage(server.MessageTypeAction, server.ActionData{Action: "claim", ClaimKind: kind})
}

// GiveUp surrenders the match
func (c *Client) GiveUp() error {
	return c.sendMessage(server.MessageTypeAction, server.ActionData{Action: "give_up"})
}

// readPump handles incoming messages from the server
func (c *Client) readPump() {
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
	}()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg server.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("read error", "error", err)
			}
			return
		}

		select {
		case c.receive <- &msg:
		case <-c.ctx.Done():
			return
		}
	}
}

// writePump pushes queued messages to the server
func (c *Client) writePump() {
	for {
		select {
		case msg := <-c.send:
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Debug("write error", "error", err)
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}
