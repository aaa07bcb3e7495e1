// Package mission implements counted collection objectives: definitions,
// live progress, and the ledger that routes item-acquired events to them.
package mission

import (
	"errors"
	"fmt"
)

// Status is the lifecycle state of an assigned mission. Transitions are
// one-directional: Assigned -> Completed -> TurnedIn.
type Status string

const (
	StatusAssigned  Status = "assigned"
	StatusCompleted Status = "completed"
	StatusTurnedIn  Status = "turned_in"
)

// Definition is immutable authored mission data.
type Definition struct {
	ID              string  `json:"id" yaml:"id"`
	DisplayName     string  `json:"display_name" yaml:"display_name"`
	Description     string  `json:"description,omitempty" yaml:"description,omitempty"`
	TargetItemID    string  `json:"target_item_id" yaml:"target_item_id"`
	RequiredAmount  int     `json:"required_amount" yaml:"required_amount"`
	RewardMagnitude float64 `json:"reward_magnitude" yaml:"reward_magnitude"`

	// Dialogue graphs bound to this mission. ReminderGraphID falls back to
	// StartGraphID when empty.
	StartGraphID    string `json:"start_graph_id,omitempty" yaml:"start_graph_id,omitempty"`
	ReminderGraphID string `json:"reminder_graph_id,omitempty" yaml:"reminder_graph_id,omitempty"`
	TurnInGraphID   string `json:"turn_in_graph_id,omitempty" yaml:"turn_in_graph_id,omitempty"`
}

// Validate checks authored invariants.
func (d *Definition) Validate() error {
	if d.ID == "" {
		return errors.New("mission id is required")
	}
	if d.TargetItemID == "" {
		return fmt.Errorf("mission %q: target item id is required", d.ID)
	}
	if d.RequiredAmount <= 0 {
		return fmt.Errorf("mission %q: required amount must be positive, got %d", d.ID, d.RequiredAmount)
	}
	return nil
}

// Progress is the live state of one assigned mission. Current is
// monotonically non-decreasing while the mission is Assigned and may exceed
// RequiredAmount; the status flips to Completed at the first increment that
// reaches it.
type Progress struct {
	Definition *Definition
	Current    int
	Status     Status
}

var (
	// ErrInvalidState indicates an operation that is not valid for the
	// mission's current status.
	ErrInvalidState = errors.New("mission: invalid state")
	// ErrNotFound indicates an unknown mission id.
	ErrNotFound = errors.New("mission: not found")
)
