package mission

// SavedMission is one entry of a ledger snapshot: the minimum needed to
// rebuild progress against currently-loaded definitions.
type SavedMission struct {
	MissionID string `json:"mission_id"`
	Status    Status `json:"status"`
	Current   int    `json:"current"`
}

// Snapshot is the persistence shape of a ledger. Missions is ordered so
// that restore preserves the ledger's fan-out iteration order;
// PendingItems carries the per-item counts not yet consumed by a turn-in.
type Snapshot struct {
	Missions     []SavedMission `json:"missions"`
	PendingItems map[string]int `json:"pending_items,omitempty"`
}

// Snapshot captures the ledger's progress in insertion order, along with
// its pending item counts.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := Snapshot{Missions: make([]SavedMission, 0, len(l.order))}
	for _, id := range l.order {
		p := l.progress[id]
		snap.Missions = append(snap.Missions, SavedMission{
			MissionID: id,
			Status:    p.Status,
			Current:   p.Current,
		})
	}
	if len(l.pending) > 0 {
		snap.PendingItems = make(map[string]int, len(l.pending))
		for item, n := range l.pending {
			snap.PendingItems[item] = n
		}
	}
	return snap
}

// Restore rebuilds the ledger from a snapshot. lookup resolves mission ids
// to currently-loaded definitions; saved entries whose id no longer
// resolves are skipped silently, and definitions absent from the snapshot
// stay never-assigned. Restored entries re-emit Completed or Updated
// notifications so list UIs can rebuild, matching live behavior.
func (l *Ledger) Restore(snap Snapshot, lookup func(missionID string) *Definition) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.order = l.order[:0]
	l.progress = make(map[string]*Progress)
	l.pending = make(map[string]int, len(snap.PendingItems))
	for item, n := range snap.PendingItems {
		l.pending[item] = n
	}

	for _, saved := range snap.Missions {
		def := lookup(saved.MissionID)
		if def == nil {
			continue
		}
		p := &Progress{
			Definition: def,
			Current:    saved.Current,
			Status:     saved.Status,
		}
		l.order = append(l.order, def.ID)
		l.progress[def.ID] = p

		switch p.Status {
		case StatusCompleted:
			l.notify(NotificationCompleted, p)
		case StatusAssigned:
			l.notify(NotificationUpdated, p)
		}
	}
}
