package server

import (
	"context"
	"errors"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"hulla/internal/deck"
	"hulla/internal/game"
	"hulla/internal/hand"
	"hulla/internal/randutil"
	"hulla/internal/roomid"
	"hulla/internal/storage"
)

// Recorder persists finished matches. The coordinator records through
// this interface so tests can substitute an in-memory fake.
type Recorder interface {
	RecordMatch(ctx context.Context, rec storage.MatchRecord) error
}

// ErrRoomNotFound is returned for operations on unknown room ids.
var ErrRoomNotFound = errors.New("room not found")

// ErrBadPassword is returned when a join attempt fails the room's
// password check.
var ErrBadPassword = errors.New("wrong room password")

// roomEntry pairs a room with the lock that serializes all access to
// it. Actions on different rooms never contend.
type roomEntry struct {
	mu         sync.Mutex
	room       *game.Room
	lastActive time.Time
}

// Coordinator owns the room registry. Every mutation of a room goes
// through the room's own lock, so two racing actions on one room are
// applied in some serial order and the loser sees the updated state.
type Coordinator struct {
	mu    sync.RWMutex
	rooms map[string]*roomEntry

	rules      hand.Rules
	maxRounds  int
	maxPlayers int
	idleAfter  time.Duration

	logger   *log.Logger
	clock    quartz.Clock
	recorder Recorder

	// newRNG seeds each room's shuffler. Tests override it for
	// reproducible deals.
	newRNG func() *rand.Rand
}

// NewCoordinator creates a coordinator from the server configuration.
// recorder may be nil when persistence is disabled.
func NewCoordinator(cfg *ServerConfig, logger *log.Logger, clock quartz.Clock, recorder Recorder) *Coordinator {
	return &Coordinator{
		rooms:      make(map[string]*roomEntry),
		rules:      cfg.GameRules(),
		maxRounds:  cfg.Rooms.MaxRounds,
		maxPlayers: cfg.Rooms.MaxPlayers,
		idleAfter:  time.Duration(cfg.Server.IdleRoomMinutes) * time.Minute,
		logger:     logger.WithPrefix("coordinator"),
		clock:      clock,
		recorder:   recorder,
		newRNG:     randutil.NewSystem,
	}
}

// RoomSummary is the lobby-listing view of a room.
type RoomSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	HasPassword bool   `json:"hasPassword"`
	PlayerCount int    `json:"playerCount"`
	Started     bool   `json:"started"`
	Finished    bool   `json:"finished"`
}

// CreateRoom registers a new room and returns its id.
func (c *Coordinator) CreateRoom(title, password string, maxRounds int) string {
	if maxRounds <= 0 {
		maxRounds = c.maxRounds
	}
	id := roomid.New()
	room := game.NewRoom(id, title, password, maxRounds, c.maxPlayers, c.rules, c.newRNG())

	c.mu.Lock()
	c.rooms[id] = &roomEntry{room: room, lastActive: c.clock.Now()}
	c.mu.Unlock()

	c.logger.Info("room created", "room", id, "title", title, "rounds", maxRounds)
	return id
}

// ListRooms returns a lobby summary of every live room.
func (c *Coordinator) ListRooms() []RoomSummary {
	c.mu.RLock()
	entries := make([]*roomEntry, 0, len(c.rooms))
	for _, e := range c.rooms {
		entries = append(entries, e)
	}
	c.mu.RUnlock()

	summaries := make([]RoomSummary, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		r := e.room
		summaries = append(summaries, RoomSummary{
			ID:          r.ID,
			Title:       r.Title,
			HasPassword: r.Password != "",
			PlayerCount: len(r.Players),
			Started:     r.Started,
			Finished:    r.Finished,
		})
		e.mu.Unlock()
	}
	return summaries
}

func (c *Coordinator) entry(roomID string) (*roomEntry, error) {
	c.mu.RLock()
	e, ok := c.rooms[roomID]
	c.mu.RUnlock()
	if !ok {
		return nil, ErrRoomNotFound
	}
	return e, nil
}

// JoinRoom seats a player, checking the room password first.
func (c *Coordinator) JoinRoom(roomID, playerID, name, password string) (game.Snapshot, []game.Event, error) {
	return c.withRoom(roomID, func(r *game.Room) ([]game.Event, error) {
		if r.Password != "" && r.Password != password {
			return nil, ErrBadPassword
		}
		return r.Join(playerID, name)
	})
}

// LeaveRoom removes a player. Rooms left empty are deleted.
func (c *Coordinator) LeaveRoom(roomID, playerID string) (game.Snapshot, []game.Event, error) {
	snap, events, err := c.withRoom(roomID, func(r *game.Room) ([]game.Event, error) {
		return r.Leave(playerID)
	})
	if err == nil && len(snap.Players) == 0 {
		c.removeRoom(roomID, "empty")
	}
	return snap, events, err
}

// StartMatch begins the match in a room on behalf of its host.
func (c *Coordinator) StartMatch(roomID, playerID string) (game.Snapshot, []game.Event, error) {
	return c.withRoom(roomID, func(r *game.Room) ([]game.Event, error) {
		return r.StartMatch(playerID)
	})
}

// AdvanceRound deals the next round after a settled one.
func (c *Coordinator) AdvanceRound(roomID, playerID string) (game.Snapshot, []game.Event, error) {
	return c.withRoom(roomID, func(r *game.Room) ([]game.Event, error) {
		return r.AdvanceRound(playerID)
	})
}

// Apply runs one game action under the room's lock. A stale action, one
// that lost a race against a state change that made it moot, is a silent
// no-op: the caller gets the current snapshot, no events, and no error.
func (c *Coordinator) Apply(roomID, playerID string, action game.Action) (game.Snapshot, []game.Event, error) {
	return c.withRoom(roomID, func(r *game.Room) ([]game.Event, error) {
		events, err := r.Apply(playerID, action)
		if errors.Is(err, game.ErrStale) {
			c.logger.Debug("stale action dropped", "room", roomID, "player", playerID)
			return nil, nil
		}
		return events, err
	})
}

// HandOf returns a player's private hand for redacted fan-out.
func (c *Coordinator) HandOf(roomID, playerID string) ([]deck.Card, error) {
	e, err := c.entry(roomID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.room.HandOf(playerID), nil
}

// Snapshot returns the public view of a room.
func (c *Coordinator) Snapshot(roomID string) (game.Snapshot, error) {
	e, err := c.entry(roomID)
	if err != nil {
		return game.Snapshot{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.room.Snapshot(), nil
}

// withRoom runs fn under the room's lock, stamps activity, and records
// the match when fn's events say it ended.
func (c *Coordinator) withRoom(roomID string, fn func(r *game.Room) ([]game.Event, error)) (game.Snapshot, []game.Event, error) {
	e, err := c.entry(roomID)
	if err != nil {
		return game.Snapshot{}, nil, err
	}

	e.mu.Lock()
	events, err := fn(e.room)
	snap := e.room.Snapshot()
	e.lastActive = c.clock.Now()
	e.mu.Unlock()

	if err != nil {
		if game.IsRejection(err) {
			c.logger.Debug("action rejected", "room", roomID, "error", err)
		}
		return snap, nil, err
	}

	for _, ev := range events {
		if ended, ok := ev.(game.MatchEndedEvent); ok {
			c.recordMatch(e.room.ID, e.room.Title, snap.CurrentRound, ended)
		}
	}
	return snap, events, nil
}

func (c *Coordinator) recordMatch(roomID, title string, rounds int, ended game.MatchEndedEvent) {
	if c.recorder == nil {
		return
	}
	rec := storage.MatchRecord{
		RoomID:     roomID,
		Title:      title,
		Rounds:     rounds,
		WinnerID:   ended.WinnerID,
		FinishedAt: ended.Timestamp(),
	}
	for i, st := range ended.Rankings {
		if st.PlayerID == ended.WinnerID {
			rec.WinnerName = st.Name
		}
		rec.Standings = append(rec.Standings, storage.StandingRecord{
			PlayerID: st.PlayerID,
			Name:     st.Name,
			Total:    st.Total,
			Place:    i + 1,
		})
	}

	// Persistence stays off the room's lock and the action's latency.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.recorder.RecordMatch(ctx, rec); err != nil {
			c.logger.Error("failed to record match", "room", roomID, "error", err)
		}
	}()
}

func (c *Coordinator) removeRoom(roomID, reason string) {
	c.mu.Lock()
	delete(c.rooms, roomID)
	c.mu.Unlock()
	c.logger.Info("room removed", "room", roomID, "reason", reason)
}

// Run sweeps idle and finished rooms until ctx is cancelled.
func (c *Coordinator) Run(ctx context.Context) error {
	ticker := c.clock.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *Coordinator) sweep() {
	now := c.clock.Now()

	c.mu.RLock()
	type candidate struct {
		id    string
		entry *roomEntry
	}
	candidates := make([]candidate, 0, len(c.rooms))
	for id, e := range c.rooms {
		candidates = append(candidates, candidate{id, e})
	}
	c.mu.RUnlock()

	for _, cand := range candidates {
		cand.entry.mu.Lock()
		idle := now.Sub(cand.entry.lastActive) >= c.idleAfter
		finished := cand.entry.room.Finished
		cand.entry.mu.Unlock()

		if finished && idle {
			c.removeRoom(cand.id, "finished")
		} else if idle {
			c.removeRoom(cand.id, "idle")
		}
	}
}
