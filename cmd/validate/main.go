package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/questkit/quest-engine/internal/content"
)

// Validates a content directory: loads every dialogue graph, mission, NPC
// and quiz, and checks cross-references the same way the API does at
// startup.
func main() {
	dataDir := "./data"
	if len(os.Args) > 1 {
		dataDir = os.Args[1]
	}

	fmt.Printf("Validating %s...\n", dataDir)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	library, err := content.Load(dataDir, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Content is valid: %d missions, %d NPCs\n", len(library.Missions()), len(library.NPCs()))
}
