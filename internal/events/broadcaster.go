// Package events publishes gameplay notifications over Redis Pub/Sub so
// presentation clients (SSE feed, console) can react to mission and
// dialogue changes without polling.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/questkit/quest-engine/pkg/dialogue"
	"github.com/questkit/quest-engine/pkg/mission"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeMissionAssigned  EventType = "mission.assigned"
	EventTypeMissionUpdated   EventType = "mission.updated"
	EventTypeMissionCompleted EventType = "mission.completed"
	EventTypeMissionRemoved   EventType = "mission.removed"
	EventTypeNodeEntered      EventType = "dialogue.node_entered"
	EventTypeDialogueEnded    EventType = "dialogue.ended"
)

// Event is the wire shape published per notification.
type Event struct {
	Type    EventType      `json:"type"`
	ActorID string         `json:"actor_id"`
	Data    map[string]any `json:"data,omitempty"`
}

// Broadcaster publishes events to Redis Pub/Sub for SSE distribution
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// Channel returns the Pub/Sub channel for one actor's event stream.
func Channel(actorID string) string {
	return "events:" + actorID
}

// PublishMission publishes a mission ledger notification.
func (b *Broadcaster) PublishMission(ctx context.Context, actorID string, n mission.Notification) error {
	return b.publish(ctx, Event{
		Type:    EventType(n.Type),
		ActorID: actorID,
		Data: map[string]any{
			"mission_id": n.MissionID,
			"current":    n.Current,
			"required":   n.Required,
		},
	})
}

// PublishNodeEntered publishes a dialogue node activation.
func (b *Broadcaster) PublishNodeEntered(ctx context.Context, actorID string, e dialogue.NodeEntered) error {
	return b.publish(ctx, Event{
		Type:    EventTypeNodeEntered,
		ActorID: actorID,
		Data: map[string]any{
			"node":    int(e.Index),
			"speaker": e.Speaker,
			"text":    e.Text,
			"options": e.OptionLabels,
		},
	})
}

// PublishDialogueEnded publishes the end of an actor's dialogue session.
func (b *Broadcaster) PublishDialogueEnded(ctx context.Context, actorID string) error {
	return b.publish(ctx, Event{
		Type:    EventTypeDialogueEnded,
		ActorID: actorID,
	})
}

// Subscribe opens a Pub/Sub subscription to one actor's event stream. The
// caller owns the returned subscription and must close it.
func (b *Broadcaster) Subscribe(ctx context.Context, actorID string) *redis.PubSub {
	return b.redisClient.Subscribe(ctx, Channel(actorID))
}

func (b *Broadcaster) publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := b.redisClient.Publish(ctx, Channel(event.ActorID), data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "type", event.Type, "actor_id", event.ActorID, "error", err)
		return fmt.Errorf("failed to publish event: %w", err)
	}
	b.logger.Debug("Published event", "type", event.Type, "actor_id", event.ActorID)
	return nil
}
