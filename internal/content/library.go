// Package content loads and validates authored game content: dialogue
// graphs, mission definitions, NPCs, and quizzes. Content files live under
// a data directory, one entity per file, as JSON or YAML.
package content

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/questkit/quest-engine/pkg/dialogue"
	"github.com/questkit/quest-engine/pkg/mission"
	"github.com/questkit/quest-engine/pkg/npc"
	"github.com/questkit/quest-engine/pkg/quiz"
)

// Library is the validated, read-only content set for one server process.
type Library struct {
	dialogues map[string]*dialogue.Graph
	missions  map[string]*mission.Definition
	npcs      map[string]*npc.NPC
	quizzes   map[string]*quiz.Quiz

	// missionOrder preserves file-load order for listings.
	missionOrder []string
	npcOrder     []string
}

// Load reads every content file under dataDir and validates the set,
// including cross-references (missions name real graphs, NPCs name real
// missions and graphs). Unparseable files fail the load: bad authored
// content should stop the server at startup, not at first use.
func Load(dataDir string, logger *slog.Logger) (*Library, error) {
	lib := &Library{
		dialogues: make(map[string]*dialogue.Graph),
		missions:  make(map[string]*mission.Definition),
		npcs:      make(map[string]*npc.NPC),
		quizzes:   make(map[string]*quiz.Quiz),
	}

	if err := loadDir(filepath.Join(dataDir, "dialogues"), logger, func(path string) error {
		var g dialogue.Graph
		if err := decodeFile(path, &g); err != nil {
			return err
		}
		if err := g.Validate(); err != nil {
			return err
		}
		if _, dup := lib.dialogues[g.ID]; dup {
			return fmt.Errorf("duplicate dialogue graph id %q", g.ID)
		}
		lib.dialogues[g.ID] = &g
		return nil
	}); err != nil {
		return nil, err
	}

	if err := loadDir(filepath.Join(dataDir, "missions"), logger, func(path string) error {
		var d mission.Definition
		if err := decodeFile(path, &d); err != nil {
			return err
		}
		if err := d.Validate(); err != nil {
			return err
		}
		if _, dup := lib.missions[d.ID]; dup {
			return fmt.Errorf("duplicate mission id %q", d.ID)
		}
		lib.missions[d.ID] = &d
		lib.missionOrder = append(lib.missionOrder, d.ID)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := loadDir(filepath.Join(dataDir, "npcs"), logger, func(path string) error {
		var n npc.NPC
		if err := decodeFile(path, &n); err != nil {
			return err
		}
		if err := n.Validate(); err != nil {
			return err
		}
		if _, dup := lib.npcs[n.ID]; dup {
			return fmt.Errorf("duplicate npc id %q", n.ID)
		}
		lib.npcs[n.ID] = &n
		lib.npcOrder = append(lib.npcOrder, n.ID)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := loadDir(filepath.Join(dataDir, "quizzes"), logger, func(path string) error {
		var q quiz.Quiz
		if err := decodeFile(path, &q); err != nil {
			return err
		}
		if err := q.Validate(); err != nil {
			return err
		}
		if _, dup := lib.quizzes[q.ID]; dup {
			return fmt.Errorf("duplicate quiz id %q", q.ID)
		}
		lib.quizzes[q.ID] = &q
		return nil
	}); err != nil {
		return nil, err
	}

	if err := lib.validateReferences(); err != nil {
		return nil, err
	}

	logger.Info("Content library loaded",
		"dialogues", len(lib.dialogues),
		"missions", len(lib.missions),
		"npcs", len(lib.npcs),
		"quizzes", len(lib.quizzes))
	return lib, nil
}

// validateReferences checks cross-entity references after all files loaded.
func (lib *Library) validateReferences() error {
	for _, id := range lib.missionOrder {
		def := lib.missions[id]
		for _, graphID := range []string{def.StartGraphID, def.ReminderGraphID, def.TurnInGraphID} {
			if graphID != "" && lib.dialogues[graphID] == nil {
				return fmt.Errorf("mission %q references unknown dialogue graph %q", id, graphID)
			}
		}
	}
	for _, id := range lib.npcOrder {
		n := lib.npcs[id]
		if lib.dialogues[n.DefaultGraphID] == nil {
			return fmt.Errorf("npc %q references unknown default graph %q", id, n.DefaultGraphID)
		}
		for _, missionID := range n.MissionIDs {
			if lib.missions[missionID] == nil {
				return fmt.Errorf("npc %q references unknown mission %q", id, missionID)
			}
		}
	}
	return nil
}

// Dialogue returns the graph with the given id, or nil.
func (lib *Library) Dialogue(id string) *dialogue.Graph { return lib.dialogues[id] }

// Mission returns the definition with the given id, or nil.
func (lib *Library) Mission(id string) *mission.Definition { return lib.missions[id] }

// NPC returns the NPC with the given id, or nil.
func (lib *Library) NPC(id string) *npc.NPC { return lib.npcs[id] }

// Quiz returns the quiz with the given id, or nil.
func (lib *Library) Quiz(id string) *quiz.Quiz { return lib.quizzes[id] }

// NPCMissions resolves an NPC's mission sequence in authored order.
func (lib *Library) NPCMissions(n *npc.NPC) []*mission.Definition {
	defs := make([]*mission.Definition, 0, len(n.MissionIDs))
	for _, id := range n.MissionIDs {
		defs = append(defs, lib.missions[id])
	}
	return defs
}

// NPCs lists NPC ids in file-load order.
func (lib *Library) NPCs() []string {
	return append([]string(nil), lib.npcOrder...)
}

// Missions lists mission ids in file-load order.
func (lib *Library) Missions() []string {
	return append([]string(nil), lib.missionOrder...)
}

// loadDir applies fn to every content file under dir. A missing directory
// is an empty content set, not an error.
func loadDir(dir string, logger *slog.Logger, fn func(path string) error) error {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() || !isContentFile(path) {
			return nil
		}
		if err := fn(path); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		logger.Debug("Loaded content file", "path", path)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to load content from %s: %w", dir, err)
	}
	return nil
}

func isContentFile(path string) bool {
	switch filepath.Ext(path) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read content file: %w", err)
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("failed to parse YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("failed to parse JSON: %w", err)
		}
	}
	return nil
}
