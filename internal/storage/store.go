package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// MatchRecord is the finished-match summary persisted per room.
type MatchRecord struct {
	RoomID     string
	Title      string
	Rounds     int
	WinnerID   string
	WinnerName string
	FinishedAt time.Time
	Standings  []StandingRecord
}

// StandingRecord is one player's final line in a match.
type StandingRecord struct {
	PlayerID string
	Name     string
	Total    int
	Place    int
}

// Store handles SQLite persistence of match results.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database and runs migrations.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// WAL mode for better concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS matches (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			room_id     TEXT NOT NULL,
			title       TEXT NOT NULL,
			rounds      INTEGER NOT NULL,
			winner_id   TEXT NOT NULL,
			winner_name TEXT NOT NULL,
			finished_at DATETIME NOT NULL
		);
		CREATE TABLE IF NOT EXISTS standings (
			match_id  INTEGER NOT NULL REFERENCES matches(id),
			player_id TEXT NOT NULL,
			name      TEXT NOT NULL,
			total     INTEGER NOT NULL,
			place     INTEGER NOT NULL,
			PRIMARY KEY (match_id, player_id)
		);
		CREATE INDEX IF NOT EXISTS idx_standings_player ON standings(player_id);
	`)
	return err
}

// RecordMatch persists a finished match and its standings in one
// transaction.
func (s *Store) RecordMatch(ctx context.Context, rec MatchRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO matches (room_id, title, rounds, winner_id, winner_name, finished_at) VALUES (?, ?, ?, ?, ?, ?)",
		rec.RoomID, rec.Title, rec.Rounds, rec.WinnerID, rec.WinnerName, rec.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}
	matchID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("match id: %w", err)
	}

	for _, st := range rec.Standings {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO standings (match_id, player_id, name, total, place) VALUES (?, ?, ?, ?, ?)",
			matchID, st.PlayerID, st.Name, st.Total, st.Place,
		); err != nil {
			return fmt.Errorf("insert standing: %w", err)
		}
	}

	return tx.Commit()
}

// RecentMatches returns the most recently finished matches, newest first.
func (s *Store) RecentMatches(ctx context.Context, limit int) ([]MatchRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, room_id, title, rounds, winner_id, winner_name, finished_at FROM matches ORDER BY finished_at DESC, id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	var recs []MatchRecord
	var ids []int64
	for rows.Next() {
		var id int64
		var rec MatchRecord
		if err := rows.Scan(&id, &rec.RoomID, &rec.Title, &rec.Rounds, &rec.WinnerID, &rec.WinnerName, &rec.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		recs = append(recs, rec)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, id := range ids {
		standings, err := s.standingsFor(ctx, id)
		if err != nil {
			return nil, err
		}
		recs[i].Standings = standings
	}
	return recs, nil
}

func (s *Store) standingsFor(ctx context.Context, matchID int64) ([]StandingRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT player_id, name, total, place FROM standings WHERE match_id = ? ORDER BY place",
		matchID,
	)
	if err != nil {
		return nil, fmt.Errorf("query standings: %w", err)
	}
	defer rows.Close()

	var standings []StandingRecord
	for rows.Next() {
		var st StandingRecord
		if err := rows.Scan(&st.PlayerID, &st.Name, &st.Total, &st.Place); err != nil {
			return nil, fmt.Errorf("scan standing: %w", err)
		}
		standings = append(standings, st)
	}
	return standings, rows.Err()
}

// PlayerWins counts a player's first-place finishes.
func (s *Store) PlayerWins(ctx context.Context, playerID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM standings WHERE player_id = ? AND place = 1",
		playerID,
	).Scan(&n)
	return n, err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
