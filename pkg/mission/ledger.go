package mission

import (
	"fmt"
	"sync"
)

// NotificationType classifies ledger notifications.
type NotificationType string

const (
	NotificationAssigned  NotificationType = "mission.assigned"
	NotificationUpdated   NotificationType = "mission.updated"
	NotificationCompleted NotificationType = "mission.completed"
	NotificationRemoved   NotificationType = "mission.removed"
)

// Notification is emitted on every ledger state change. UI collaborators
// render it; nothing in the ledger depends on observers reacting.
type Notification struct {
	Type       NotificationType `json:"type"`
	MissionID  string           `json:"mission_id"`
	Definition *Definition      `json:"-"`
	Current    int              `json:"current"`
	Required   int              `json:"required"`
}

// RewardSink applies a mission reward. Opaque to the ledger; called exactly
// once per successful turn-in.
type RewardSink interface {
	ApplyReward(magnitude float64)
}

// AssignResult reports what Assign did. A duplicate assignment is an
// informational result, not an error.
type AssignResult string

const (
	AssignedNew     AssignResult = "assigned"
	AlreadyAssigned AssignResult = "already_assigned"
)

// Ledger owns mission progress for one player. A single update loop drives
// a game client, but this is a server, so the ledger serializes its own
// mutations: item fan-out appears atomic relative to concurrent turn-ins.
type Ledger struct {
	mu        sync.Mutex
	order     []string
	progress  map[string]*Progress
	pending   map[string]int
	rewards   RewardSink
	observers []func(Notification)
}

// NewLedger creates an empty ledger. rewards may be nil when no reward
// application is wanted (e.g. read-only projections).
func NewLedger(rewards RewardSink) *Ledger {
	return &Ledger{
		progress: make(map[string]*Progress),
		pending:  make(map[string]int),
		rewards:  rewards,
	}
}

// Subscribe registers a notification observer. Observers are invoked
// synchronously, in registration order, while the ledger lock is held; they
// must not call back into the ledger.
func (l *Ledger) Subscribe(fn func(Notification)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observers = append(l.observers, fn)
}

// Assign starts tracking def. Assigning a mission that is already tracked
// and not yet turned in is a no-op that reports AlreadyAssigned and
// re-emits an Updated notification so list UIs can refresh. A turned-in
// mission may be assigned again as a fresh cycle.
func (l *Ledger) Assign(def *Definition) AssignResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	if p, ok := l.progress[def.ID]; ok && p.Status != StatusTurnedIn {
		l.notify(NotificationUpdated, p)
		return AlreadyAssigned
	}

	p := &Progress{Definition: def, Status: StatusAssigned}
	if _, seen := l.progress[def.ID]; !seen {
		l.order = append(l.order, def.ID)
	}
	l.progress[def.ID] = p
	l.notify(NotificationAssigned, p)
	return AssignedNew
}

// ReportItemAcquired routes an item-acquired event to every assigned
// mission targeting itemID (fan-out, insertion order). Each updated mission
// emits its own notification; a mission whose count reaches its requirement
// flips to Completed in the same call.
func (l *Ledger) ReportItemAcquired(itemID string, amount int) {
	if amount <= 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, id := range l.order {
		p := l.progress[id]
		if p.Status != StatusAssigned || p.Definition.TargetItemID != itemID {
			continue
		}
		p.Current += amount
		l.pending[itemID] += amount
		if p.Current >= p.Definition.RequiredAmount {
			p.Status = StatusCompleted
			l.notify(NotificationCompleted, p)
		} else {
			l.notify(NotificationUpdated, p)
		}
	}
}

// TurnIn claims a completed mission's reward. The reward is applied exactly
// once: a second call finds the mission TurnedIn and fails with
// ErrInvalidState instead of double-granting.
func (l *Ledger) TurnIn(missionID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.progress[missionID]
	if !ok {
		return fmt.Errorf("turn in %q: %w", missionID, ErrNotFound)
	}
	if p.Status != StatusCompleted {
		return fmt.Errorf("turn in %q with status %s: %w", missionID, p.Status, ErrInvalidState)
	}

	if l.rewards != nil {
		l.rewards.ApplyReward(p.Definition.RewardMagnitude)
	}
	delete(l.pending, p.Definition.TargetItemID)
	p.Status = StatusTurnedIn
	l.notify(NotificationRemoved, p)
	return nil
}

// Query returns the status and current amount for missionID.
func (l *Ledger) Query(missionID string) (Status, int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.progress[missionID]
	if !ok {
		return "", 0, fmt.Errorf("query %q: %w", missionID, ErrNotFound)
	}
	return p.Status, p.Current, nil
}

// StatusOf returns the mission's status, or the zero Status when the
// mission was never assigned. Used by graph-selection policy, which treats
// "unknown" as a normal case rather than an error.
func (l *Ledger) StatusOf(missionID string) Status {
	l.mu.Lock()
	defer l.mu.Unlock()

	if p, ok := l.progress[missionID]; ok {
		return p.Status
	}
	return ""
}

// Missions returns progress entries in insertion order.
func (l *Ledger) Missions() []Progress {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Progress, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, *l.progress[id])
	}
	return out
}

// PendingItems returns the count of items collected toward itemID since the
// last turn-in that consumed them.
func (l *Ledger) PendingItems(itemID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending[itemID]
}

// ReconcileAgainstInventory force-completes every assigned mission whose
// target item the player already holds. Used only when restoring state that
// was saved inconsistently with the inventory; the steady-state path is
// ReportItemAcquired. Already-completed missions are untouched, so the live
// path cannot double-count into a reconciled mission.
func (l *Ledger) ReconcileAgainstInventory(hasItem func(itemID string) bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, id := range l.order {
		p := l.progress[id]
		if p.Status != StatusAssigned || !hasItem(p.Definition.TargetItemID) {
			continue
		}
		p.Current = p.Definition.RequiredAmount
		p.Status = StatusCompleted
		l.notify(NotificationCompleted, p)
	}
}

// notify is called with l.mu held.
func (l *Ledger) notify(t NotificationType, p *Progress) {
	n := Notification{
		Type:       t,
		MissionID:  p.Definition.ID,
		Definition: p.Definition,
		Current:    p.Current,
		Required:   p.Definition.RequiredAmount,
	}
	for _, fn := range l.observers {
		fn(n)
	}
}
