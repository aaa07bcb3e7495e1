package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/questkit/quest-engine/internal/content"
)

// NPCView is the authored NPC data exposed to clients.
type NPCView struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	MissionIDs  []string `json:"mission_ids,omitempty"`
}

// NPCHandler lists interactable NPCs.
//
// Routes:
// GET /v1/npcs      - List NPCs
// GET /v1/npcs/{id} - Read one NPC
type NPCHandler struct {
	library *content.Library
	logger  *slog.Logger
}

func NewNPCHandler(library *content.Library, logger *slog.Logger) *NPCHandler {
	return &NPCHandler{
		library: library,
		logger:  logger,
	}
}

func (h *NPCHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET")
		return
	}

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/npcs"), "/")
	if path == "" {
		views := make([]NPCView, 0)
		for _, id := range h.library.NPCs() {
			n := h.library.NPC(id)
			views = append(views, NPCView{ID: n.ID, DisplayName: n.DisplayName, MissionIDs: n.MissionIDs})
		}
		writeJSON(w, h.logger, http.StatusOK, views)
		return
	}

	n := h.library.NPC(path)
	if n == nil {
		writeError(w, h.logger, http.StatusNotFound, "NPC not found: "+path)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, NPCView{ID: n.ID, DisplayName: n.DisplayName, MissionIDs: n.MissionIDs})
}
