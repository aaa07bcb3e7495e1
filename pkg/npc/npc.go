// Package npc binds dialogue graphs to mission state: it decides which
// graph an NPC plays for a given ledger, and reacts to dialogue endings by
// assigning or turning in missions.
package npc

import (
	"errors"
	"fmt"

	"github.com/questkit/quest-engine/pkg/mission"
)

// NPC is immutable authored data for a mission-giving character.
type NPC struct {
	ID          string `json:"id" yaml:"id"`
	DisplayName string `json:"display_name" yaml:"display_name"`

	// DefaultGraphID plays when no mission state selects a graph.
	DefaultGraphID string `json:"default_graph_id" yaml:"default_graph_id"`

	// MissionIDs is the NPC's mission sequence, in offer order.
	MissionIDs []string `json:"mission_ids,omitempty" yaml:"mission_ids,omitempty"`

	// AssignSequentially makes the NPC offer the next unplayed mission's
	// start graph instead of the default graph.
	AssignSequentially bool `json:"assign_sequentially,omitempty" yaml:"assign_sequentially,omitempty"`
}

// Validate checks authored invariants.
func (n *NPC) Validate() error {
	if n.ID == "" {
		return errors.New("npc id is required")
	}
	if n.DefaultGraphID == "" {
		return fmt.Errorf("npc %q: default graph id is required", n.ID)
	}
	return nil
}

// SelectGraph picks the dialogue graph an interaction with the NPC should
// play, given the missions resolved in the NPC's sequence order:
//
//  1. the turn-in graph of the first completed, not-yet-turned-in mission;
//  2. else the reminder graph of the first assigned mission;
//  3. else, when assigning sequentially, the start graph of the first
//     mission that was never assigned;
//  4. else the NPC's default graph.
//
// Re-evaluated on every interaction start and after every dialogue ending.
func SelectGraph(n *NPC, missions []*mission.Definition, ledger *mission.Ledger) string {
	for _, def := range missions {
		if ledger.StatusOf(def.ID) == mission.StatusCompleted {
			return def.TurnInGraphID
		}
	}
	for _, def := range missions {
		if ledger.StatusOf(def.ID) == mission.StatusAssigned {
			if def.ReminderGraphID != "" {
				return def.ReminderGraphID
			}
			return def.StartGraphID
		}
	}
	if n.AssignSequentially {
		for _, def := range missions {
			if ledger.StatusOf(def.ID) == "" {
				return def.StartGraphID
			}
		}
	}
	return n.DefaultGraphID
}

// Reaction reports what HandleDialogueEnded did.
type Reaction string

const (
	ReactionNone     Reaction = "none"
	ReactionAssigned Reaction = "assigned"
	ReactionTurnedIn Reaction = "turned_in"
)

// HandleDialogueEnded applies the NPC's post-dialogue mission bookkeeping:
// the first completed mission in sequence order is turned in, otherwise the
// first never-assigned mission is assigned. Returns the reaction and the
// affected mission id (empty for ReactionNone).
func HandleDialogueEnded(n *NPC, missions []*mission.Definition, ledger *mission.Ledger) (Reaction, string, error) {
	for _, def := range missions {
		if ledger.StatusOf(def.ID) == mission.StatusCompleted {
			if err := ledger.TurnIn(def.ID); err != nil {
				return ReactionNone, "", fmt.Errorf("turn in after dialogue: %w", err)
			}
			return ReactionTurnedIn, def.ID, nil
		}
	}
	for _, def := range missions {
		if ledger.StatusOf(def.ID) == "" {
			ledger.Assign(def)
			return ReactionAssigned, def.ID, nil
		}
		// Without sequential mode only the first mission is offered.
		if !n.AssignSequentially {
			break
		}
	}
	return ReactionNone, "", nil
}
