package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/questkit/quest-engine/internal/events"
)

// EventsHandler streams an actor's gameplay events over SSE, relayed from
// the Redis Pub/Sub channel the broadcaster publishes to.
//
// Routes:
// GET /v1/events/{actor} - Subscribe to the actor's event stream
type EventsHandler struct {
	events *events.Broadcaster
	logger *slog.Logger
}

func NewEventsHandler(events *events.Broadcaster, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		events: events,
		logger: logger,
	}
}

func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET")
		return
	}

	actorID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/events"), "/")
	if actorID == "" {
		writeError(w, h.logger, http.StatusBadRequest, "Actor id is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, h.logger, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sub := h.events.Subscribe(r.Context(), actorID)
	defer func() {
		if err := sub.Close(); err != nil {
			h.logger.Warn("Failed to close subscription", "actor_id", actorID, "error", err)
		}
	}()

	h.logger.Debug("Event stream opened", "actor_id", actorID)

	ch := sub.Channel()
	for {
		select {
		case <-r.Context().Done():
			h.logger.Debug("Event stream closed", "actor_id", actorID)
			return
		case msg, open := <-ch:
			if !open {
				return
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", msg.Payload); err != nil {
				h.logger.Warn("Failed to write event", "actor_id", actorID, "error", err)
				return
			}
			flusher.Flush()
		}
	}
}
