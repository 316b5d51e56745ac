package storage

import (
	"context"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRecord(roomID string, finished time.Time) MatchRecord {
	return MatchRecord{
		RoomID:     roomID,
		Title:      "friday night",
		Rounds:     3,
		WinnerID:   "p1",
		WinnerName: "alice",
		FinishedAt: finished,
		Standings: []StandingRecord{
			{PlayerID: "p1", Name: "alice", Total: -180, Place: 1},
			{PlayerID: "p2", Name: "bob", Total: 42, Place: 2},
			{PlayerID: "p3", Name: "carol", Total: 95, Place: 3},
		},
	}
}

func TestRecordMatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.RecordMatch(ctx, sampleRecord("room-a", time.Now())); err != nil {
		t.Fatalf("record match: %v", err)
	}

	recs, err := s.RecentMatches(ctx, 10)
	if err != nil {
		t.Fatalf("recent matches: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 match, got %d", len(recs))
	}
	rec := recs[0]
	if rec.WinnerName != "alice" {
		t.Fatalf("expected winner alice, got %s", rec.WinnerName)
	}
	if len(rec.Standings) != 3 {
		t.Fatalf("expected 3 standings, got %d", len(rec.Standings))
	}
	if rec.Standings[0].Place != 1 || rec.Standings[0].Total != -180 {
		t.Fatalf("unexpected first place row: %+v", rec.Standings[0])
	}
}

func TestRecentMatchesOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

	for i, room := range []string{"room-old", "room-mid", "room-new"} {
		rec := sampleRecord(room, base.Add(time.Duration(i)*time.Hour))
		if err := s.RecordMatch(ctx, rec); err != nil {
			t.Fatalf("record %s: %v", room, err)
		}
	}

	recs, err := s.RecentMatches(ctx, 2)
	if err != nil {
		t.Fatalf("recent matches: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(recs))
	}
	if recs[0].RoomID != "room-new" || recs[1].RoomID != "room-mid" {
		t.Fatalf("unexpected order: %s, %s", recs[0].RoomID, recs[1].RoomID)
	}
}

func TestPlayerWins(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		rec := sampleRecord("room-a", time.Now())
		if err := s.RecordMatch(ctx, rec); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	wins, err := s.PlayerWins(ctx, "p1")
	if err != nil {
		t.Fatalf("player wins: %v", err)
	}
	if wins != 3 {
		t.Fatalf("expected 3 wins, got %d", wins)
	}

	wins, err = s.PlayerWins(ctx, "p2")
	if err != nil {
		t.Fatalf("player wins: %v", err)
	}
	if wins != 0 {
		t.Fatalf("expected 0 wins, got %d", wins)
	}
}
