package handlers

import (
	"context"
	"fmt"
	"sync"

	"github.com/questkit/quest-engine/internal/content"
	"github.com/questkit/quest-engine/internal/storage"
	"github.com/questkit/quest-engine/pkg/mission"
)

// actorLocks serializes the load-mutate-save cycle per actor. Each request
// rebuilds a private ledger from the saved snapshot, so two concurrent
// requests for the same actor would otherwise each rebuild from the same
// snapshot and the later save would overwrite the earlier one.
var actorLocks sync.Map

// lockActor takes the actor's lock and returns its release. Hold it across
// the whole load-mutate-save cycle.
func lockActor(actorID string) func() {
	v, _ := actorLocks.LoadOrStore(actorID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// actorState is the per-actor live state rebuilt for one request: the
// mission ledger restored from its snapshot, the player record, and the
// notifications the request produced. The ledger's reward sink feeds the
// player record, so a turn-in inside the request updates both before a
// single save writes them back.
type actorState struct {
	actorID string
	ledger  *mission.Ledger
	player  *storage.PlayerRecord
	notes   []mission.Notification
}

// ApplyReward credits the mission reward to the player's max-health bonus.
func (st *actorState) ApplyReward(magnitude float64) {
	st.player.MaxHealthBonus += magnitude
}

// loadActorState rebuilds the actor's ledger and player record from
// storage. The notification collector subscribes after Restore, so replayed
// restore notifications are not re-broadcast on every request.
func loadActorState(ctx context.Context, store storage.Storage, lib *content.Library, actorID string) (*actorState, error) {
	player, err := store.LoadPlayer(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load player %s: %w", actorID, err)
	}
	if player == nil {
		player = &storage.PlayerRecord{ActorID: actorID}
	}

	st := &actorState{actorID: actorID, player: player}
	st.ledger = mission.NewLedger(st)

	snap, err := store.LoadLedger(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger %s: %w", actorID, err)
	}
	if snap != nil {
		st.ledger.Restore(*snap, func(missionID string) *mission.Definition {
			return lib.Mission(missionID)
		})
	}

	st.ledger.Subscribe(func(n mission.Notification) {
		st.notes = append(st.notes, n)
	})
	return st, nil
}

// save writes the ledger snapshot and player record back to storage.
func (st *actorState) save(ctx context.Context, store storage.Storage) error {
	if err := store.SaveLedger(ctx, st.actorID, st.ledger.Snapshot()); err != nil {
		return fmt.Errorf("failed to save ledger %s: %w", st.actorID, err)
	}
	if err := store.SavePlayer(ctx, st.player); err != nil {
		return fmt.Errorf("failed to save player %s: %w", st.actorID, err)
	}
	return nil
}
