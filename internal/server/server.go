package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"hulla/internal/auth"
	"hulla/internal/game"
)

// Server is the WebSocket gateway. It owns the connection registry and
// translates wire messages into coordinator calls; all game state lives
// behind the coordinator.
type Server struct {
	addr        string
	upgrader    websocket.Upgrader
	connections map[*Connection]bool
	register    chan *Connection
	unregister  chan *Connection
	logger      *log.Logger
	mu          sync.RWMutex
	runOnce     sync.Once
	ctx         context.Context
	cancel      context.CancelFunc
	coordinator *Coordinator
	validator   auth.Validator
	failOpen    bool
	httpServer  *http.Server
}

// NewServer creates a WebSocket server in front of the coordinator
func NewServer(addr string, coordinator *Coordinator, logger *log.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// For development, allow all origins
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		logger:      logger.WithPrefix("server"),
		ctx:         ctx,
		cancel:      cancel,
		coordinator: coordinator,
		validator:   auth.NewNoopValidator(),
	}
}

// SetAuth installs a token validator for incoming hello messages.
// failOpen admits players when the auth service is unreachable.
func (s *Server) SetAuth(validator auth.Validator, failOpen bool) {
	s.validator = validator
	s.failOpen = failOpen
}

// Handler returns the HTTP handler serving the WebSocket and health
// endpoints. The connection registry starts with the first call.
func (s *Server) Handler() http.Handler {
	s.runOnce.Do(func() { go s.run() })

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Start starts the WebSocket server and blocks until it fails or Stop
// shuts it down. A clean shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info("starting WebSocket server", "addr", s.addr)

	httpServer := &http.Server{Addr: s.addr, Handler: s.Handler()}
	s.mu.Lock()
	s.httpServer = httpServer
	s.mu.Unlock()

	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop shuts down the listener and closes every live connection.
func (s *Server) Stop() error {
	s.cancel()

	s.mu.Lock()
	httpServer := s.httpServer
	for conn := range s.connections {
		_ = conn.Close()
	}
	s.mu.Unlock()

	if httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(ctx)
}

// run handles connection lifecycle
func (s *Server) run() {
	for {
		select {
		case conn := <-s.register:
			s.mu.Lock()
			s.connections[conn] = true
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("client connected", "total", total)

		case conn := <-s.unregister:
			s.mu.Lock()
			_, ok := s.connections[conn]
			if ok {
				delete(s.connections, conn)
			}
			total := len(s.connections)
			s.mu.Unlock()

			if ok {
				// A dropped connection leaves its room so the match
				// does not stall on a ghost seat.
				playerID, roomID := conn.PlayerID(), conn.RoomID()
				if playerID != "" && roomID != "" {
					s.logger.Info("cleaning up disconnected player", "player", playerID, "room", roomID)
					snap, events, err := s.coordinator.LeaveRoom(roomID, playerID)
					if err == nil {
						s.broadcastRoom(roomID, snap, events)
					}
				}
				_ = conn.Close()
			}
			s.logger.Info("client disconnected", "total", total)

		case <-s.ctx.Done():
			return
		}
	}
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, s, s.logger)
	s.register <- client
	client.Start()

	go func() {
		<-client.ctx.Done()
		s.unregister <- client
	}()
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleMessage routes one client message
func (s *Server) handleMessage(c *Connection, msg *Message) {
	if msg.Type != MessageTypeHello && c.PlayerID() == "" {
		c.sendError(ErrorCodeBadRequest, "say hello first")
		return
	}

	switch msg.Type {
	case MessageTypeHello:
		s.handleHello(c, msg)
	case MessageTypeCreateRoom:
		s.handleCreateRoom(c, msg)
	case MessageTypeJoinRoom:
		s.handleJoinRoom(c, msg)
	case MessageTypeLeaveRoom:
		s.handleLeaveRoom(c)
	case MessageTypeListRooms:
		s.handleListRooms(c)
	case MessageTypeStartMatch:
		s.handleStartMatch(c)
	case MessageTypeAdvanceRound:
		s.handleAdvanceRound(c)
	case MessageTypeAction:
		s.handleAction(c, msg)
	default:
		c.sendError(ErrorCodeBadRequest, "unknown message type "+string(msg.Type))
	}
}

func (s *Server) handleHello(c *Connection, msg *Message) {
	var data HelloData
	if err := json.Unmarshal(msg.Data, &data); err != nil || data.PlayerName == "" {
		c.sendError(ErrorCodeBadRequest, "hello requires playerName")
		return
	}

	identity, err := s.validator.Validate(c.ctx, data.Token)
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrInvalidToken):
		c.sendError(ErrorCodeAuthFailed, "invalid token")
		return
	case errors.Is(err, auth.ErrUnavailable):
		if !s.failOpen {
			c.sendError(ErrorCodeAuthFailed, "auth service unavailable")
			return
		}
		s.logger.Warn("auth unavailable, admitting player", "name", data.PlayerName)
	default:
		c.sendError(ErrorCodeAuthFailed, "auth error")
		return
	}

	playerID := uuid.NewString()
	name := data.PlayerName
	if identity != nil {
		if identity.PlayerID != "" {
			playerID = identity.PlayerID
		}
		if identity.DisplayName != "" {
			name = identity.DisplayName
		}
	}
	c.SetPlayer(playerID, name)

	reply, err := NewMessage(MessageTypeWelcome, WelcomeData{PlayerID: playerID})
	if err != nil {
		s.logger.Error("failed to build welcome", "error", err)
		return
	}
	_ = c.SendMessage(reply)
}

func (s *Server) handleCreateRoom(c *Connection, msg *Message) {
	var data CreateRoomData
	if err := json.Unmarshal(msg.Data, &data); err != nil || data.Title == "" {
		c.sendError(ErrorCodeBadRequest, "create_room requires title")
		return
	}

	roomID := s.coordinator.CreateRoom(data.Title, data.Password, data.MaxRounds)
	reply, err := NewMessage(MessageTypeRoomCreated, RoomCreatedData{RoomID: roomID})
	if err != nil {
		s.logger.Error("failed to build room_created", "error", err)
		return
	}
	_ = c.SendMessage(reply)
}

func (s *Server) handleJoinRoom(c *Connection, msg *Message) {
	var data JoinRoomData
	if err := json.Unmarshal(msg.Data, &data); err != nil || data.RoomID == "" {
		c.sendError(ErrorCodeBadRequest, "join_room requires roomId")
		return
	}
	if c.RoomID() != "" {
		c.sendError(ErrorCodeBadRequest, "already in a room")
		return
	}

	snap, events, err := s.coordinator.JoinRoom(data.RoomID, c.PlayerID(), c.Name(), data.Password)
	if err != nil {
		s.sendCoordinatorError(c, err)
		return
	}

	c.SetRoom(data.RoomID)
	s.broadcastRoom(data.RoomID, snap, events)
}

func (s *Server) handleLeaveRoom(c *Connection) {
	roomID := c.RoomID()
	if roomID == "" {
		c.sendError(ErrorCodeBadRequest, "not in a room")
		return
	}

	snap, events, err := s.coordinator.LeaveRoom(roomID, c.PlayerID())
	if err != nil {
		s.sendCoordinatorError(c, err)
		return
	}

	c.SetRoom("")
	s.broadcastRoom(roomID, snap, events)
}

func (s *Server) handleListRooms(c *Connection) {
	reply, err := NewMessage(MessageTypeRoomList, RoomListData{Rooms: s.coordinator.ListRooms()})
	if err != nil {
		s.logger.Error("failed to build room_list", "error", err)
		return
	}
	_ = c.SendMessage(reply)
}

func (s *Server) handleStartMatch(c *Connection) {
	roomID := c.RoomID()
	if roomID == "" {
		c.sendError(ErrorCodeBadRequest, "not in a room")
		return
	}

	snap, events, err := s.coordinator.StartMatch(roomID, c.PlayerID())
	if err != nil {
		s.sendCoordinatorError(c, err)
		return
	}
	s.broadcastRoom(roomID, snap, events)
}

func (s *Server) handleAdvanceRound(c *Connection) {
	roomID := c.RoomID()
	if roomID == "" {
		c.sendError(ErrorCodeBadRequest, "not in a room")
		return
	}

	snap, events, err := s.coordinator.AdvanceRound(roomID, c.PlayerID())
	if err != nil {
		s.sendCoordinatorError(c, err)
		return
	}
	s.broadcastRoom(roomID, snap, events)
}

func (s *Server) handleAction(c *Connection, msg *Message) {
	roomID := c.RoomID()
	if roomID == "" {
		c.sendError(ErrorCodeBadRequest, "not in a room")
		return
	}

	var data ActionData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		c.sendError(ErrorCodeBadRequest, "malformed action")
		return
	}

	action, err := parseAction(data)
	if err != nil {
		s.sendCoordinatorError(c, err)
		return
	}

	snap, events, err := s.coordinator.Apply(roomID, c.PlayerID(), action)
	if err != nil {
		s.sendCoordinatorError(c, err)
		return
	}

	if len(events) == 0 {
		// Stale action: just refresh the caller's view.
		s.sendRoomState(c, snap)
		return
	}
	s.broadcastRoom(roomID, snap, events)
}

// roomConnections returns the live connections seated in a room
func (s *Server) roomConnections(roomID string) []*Connection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var conns []*Connection
	for conn := range s.connections {
		if conn.RoomID() == roomID {
			conns = append(conns, conn)
		}
	}
	return conns
}

// broadcastRoom sends the room snapshot and events to every member.
// Events are redacted per viewer and each member gets their own private
// hand alongside.
func (s *Server) broadcastRoom(roomID string, snap game.Snapshot, events []game.Event) {
	for _, conn := range s.roomConnections(roomID) {
		s.sendRoomState(conn, snap)

		for _, ev := range events {
			msg, err := NewMessage(MessageTypeGameEvent, eventForViewer(roomID, conn.PlayerID(), ev))
			if err != nil {
				s.logger.Error("failed to build game_event", "error", err)
				continue
			}
			_ = conn.SendMessage(msg)
		}

		cards, err := s.coordinator.HandOf(roomID, conn.PlayerID())
		if err != nil || cards == nil {
			continue
		}
		handMsg, err := NewMessage(MessageTypeHand, HandData{RoomID: roomID, Cards: cards})
		if err != nil {
			s.logger.Error("failed to build hand", "error", err)
			continue
		}
		_ = conn.SendMessage(handMsg)
	}
}

func (s *Server) sendRoomState(c *Connection, snap game.Snapshot) {
	msg, err := NewMessage(MessageTypeRoomState, snap)
	if err != nil {
		s.logger.Error("failed to build room_state", "error", err)
		return
	}
	_ = c.SendMessage(msg)
}

// sendCoordinatorError maps game and coordinator errors to wire codes
func (s *Server) sendCoordinatorError(c *Connection, err error) {
	var invalid *game.InvalidActionError
	var rule *game.RuleError

	switch {
	case errors.Is(err, ErrRoomNotFound):
		c.sendError(ErrorCodeRoomNotFound, err.Error())
	case errors.Is(err, ErrBadPassword):
		c.sendError(ErrorCodeBadPassword, err.Error())
	case errors.Is(err, game.ErrDeckExhausted):
		c.sendError(ErrorCodeDeckExhausted, err.Error())
	case errors.As(err, &rule):
		c.sendError(ErrorCodeRuleViolation, rule.Reason)
	case errors.As(err, &invalid):
		c.sendError(ErrorCodeInvalidAction, invalid.Reason)
	default:
		c.sendError(ErrorCodeBadRequest, err.Error())
	}
}
