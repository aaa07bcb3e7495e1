package handlers

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/questkit/quest-engine/internal/content"
	"github.com/questkit/quest-engine/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func write(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

// testLibrary builds a small content set: the elder NPC offers the gem
// mission; the intro graph branches between accepting (node 1) and
// declining (end).
func testLibrary(t *testing.T) *content.Library {
	t.Helper()
	dataDir := t.TempDir()

	write(t, filepath.Join(dataDir, "dialogues"), "elder_idle.json", `{
		"id": "elder_idle",
		"nodes": [{"speaker": "Elder", "text": "Fine weather today."}]
	}`)
	write(t, filepath.Join(dataDir, "dialogues"), "gem_intro.json", `{
		"id": "gem_intro",
		"nodes": [
			{"speaker": "Elder", "text": "Will you gather 5 gems?", "options": [
				{"label": "Of course", "target": 1},
				{"label": "Not now"}
			]},
			{"speaker": "Elder", "text": "Bless you, child."}
		]
	}`)
	write(t, filepath.Join(dataDir, "dialogues"), "gem_turnin.json", `{
		"id": "gem_turnin",
		"nodes": [{"speaker": "Elder", "text": "You found them all!"}]
	}`)
	write(t, filepath.Join(dataDir, "missions"), "gem_collection.json", `{
		"id": "gem_collection",
		"display_name": "Gem Collection",
		"target_item_id": "gem",
		"required_amount": 5,
		"reward_magnitude": 2,
		"start_graph_id": "gem_intro",
		"turn_in_graph_id": "gem_turnin"
	}`)
	write(t, filepath.Join(dataDir, "npcs"), "elder.json", `{
		"id": "elder",
		"display_name": "village elder",
		"default_graph_id": "elder_idle",
		"mission_ids": ["gem_collection"],
		"assign_sequentially": true
	}`)
	write(t, filepath.Join(dataDir, "quizzes"), "guardian.json", `{
		"id": "guardian",
		"title": "Forest Guardian",
		"damage_to_enemy": 1,
		"damage_to_player": 1,
		"questions": [
			{"prompt": "2+2?", "answers": ["3", "4"], "correct_answer": 1},
			{"prompt": "Color of grass?", "answers": ["Green", "Blue"], "correct_answer": 0}
		]
	}`)

	lib, err := content.Load(dataDir, testLogger())
	if err != nil {
		t.Fatalf("failed to load test content: %v", err)
	}
	return lib
}

func setupTest(t *testing.T) (*content.Library, *storage.MockStorage) {
	t.Helper()
	return testLibrary(t), storage.NewMockStorage()
}
