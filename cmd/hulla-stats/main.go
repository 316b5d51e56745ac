package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"hulla/internal/statistics"
	"hulla/internal/storage"
)

var CLI struct {
	Database string `short:"d" long:"database" default:"hulla.db" help:"SQLite database path"`
	Player   string `short:"p" long:"player" help:"Player id to report on (default: all players)"`
	Recent   int    `short:"n" long:"recent" default:"100" help:"Number of recent matches to include"`
}

func main() {
	kctx := kong.Parse(&CLI)
	logger := log.New(os.Stderr)

	store, err := storage.New(CLI.Database)
	if err != nil {
		logger.Error("Failed to open database", "path", CLI.Database, "error", err)
		kctx.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()
	matches, err := store.RecentMatches(ctx, CLI.Recent)
	if err != nil {
		logger.Error("Failed to load matches", "error", err)
		kctx.Exit(1)
	}
	if len(matches) == 0 {
		fmt.Println("No recorded matches.")
		return
	}

	byPlayer := make(map[string]*statistics.Statistics)
	names := make(map[string]string)
	for _, match := range matches {
		for _, st := range match.Standings {
			if CLI.Player != "" && st.PlayerID != CLI.Player {
				continue
			}
			stats, ok := byPlayer[st.PlayerID]
			if !ok {
				stats = statistics.New()
				byPlayer[st.PlayerID] = stats
				names[st.PlayerID] = st.Name
			}
			stats.Add(statistics.MatchOutcome{
				Total:   st.Total,
				Place:   st.Place,
				Players: len(match.Standings),
			})
		}
	}

	if len(byPlayer) == 0 {
		fmt.Printf("No matches found for player %s.\n", CLI.Player)
		return
	}

	for playerID, stats := range byPlayer {
		fmt.Printf("=== %s (%s) ===\n", names[playerID], playerID)
		fmt.Print(stats.Summary())
		fmt.Println()
	}
}
