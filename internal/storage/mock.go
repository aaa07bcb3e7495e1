package storage

import (
	"context"
	"sync"
	"time"

	"github.com/questkit/quest-engine/pkg/mission"
)

// MockStorage is a mock implementation of Storage for testing
type MockStorage struct {
	mu        sync.RWMutex
	sessions  map[string]*SessionRecord
	ledgers   map[string]mission.Snapshot
	players   map[string]*PlayerRecord
	pingError error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		sessions: make(map[string]*SessionRecord),
		ledgers:  make(map[string]mission.Snapshot),
		players:  make(map[string]*PlayerRecord),
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// Ping mocks storage ping
func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

// Close mocks storage close
func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) SaveSession(ctx context.Context, rec *SessionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.UpdatedAt = time.Now()
	cp := *rec
	m.sessions[rec.ActorID] = &cp
	return nil
}

func (m *MockStorage) LoadSession(ctx context.Context, actorID string) (*SessionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.sessions[actorID]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (m *MockStorage) DeleteSession(ctx context.Context, actorID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, actorID)
	return nil
}

func (m *MockStorage) SaveLedger(ctx context.Context, actorID string, snap mission.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ledgers[actorID] = copySnapshot(snap)
	return nil
}

func (m *MockStorage) LoadLedger(ctx context.Context, actorID string) (*mission.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.ledgers[actorID]
	if !ok {
		return nil, nil
	}
	cp := copySnapshot(snap)
	return &cp, nil
}

// copySnapshot keeps stored snapshots isolated from caller mutation.
func copySnapshot(snap mission.Snapshot) mission.Snapshot {
	cp := mission.Snapshot{
		Missions: append([]mission.SavedMission(nil), snap.Missions...),
	}
	if snap.PendingItems != nil {
		cp.PendingItems = make(map[string]int, len(snap.PendingItems))
		for item, n := range snap.PendingItems {
			cp.PendingItems[item] = n
		}
	}
	return cp
}

func (m *MockStorage) SavePlayer(ctx context.Context, rec *PlayerRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.UpdatedAt = time.Now()
	cp := *rec
	m.players[rec.ActorID] = &cp
	return nil
}

func (m *MockStorage) LoadPlayer(ctx context.Context, actorID string) (*PlayerRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.players[actorID]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}
