package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/questkit/quest-engine/internal/content"
	"github.com/questkit/quest-engine/internal/events"
	"github.com/questkit/quest-engine/internal/storage"
	"github.com/questkit/quest-engine/pkg/mission"
)

// MissionView is one ledger entry as presented to clients.
type MissionView struct {
	MissionID   string         `json:"mission_id"`
	DisplayName string         `json:"display_name"`
	Description string         `json:"description,omitempty"`
	Status      mission.Status `json:"status"`
	Current     int            `json:"current"`
	Required    int            `json:"required"`
}

type ReportItemRequest struct {
	ItemID string `json:"item_id"`
	Amount int    `json:"amount"`
}

type ReconcileRequest struct {
	HeldItems []string `json:"held_items"`
}

// MissionHandler exposes the mission ledger.
//
// Routes:
// GET  /v1/actors/{actor}/missions              - List ledger entries
// GET  /v1/actors/{actor}/missions/{id}         - Query one mission
// POST /v1/actors/{actor}/missions/{id}/turnin  - Claim a completed mission
// POST /v1/actors/{actor}/items                 - Report an item acquired
// POST /v1/actors/{actor}/reconcile             - Reconcile against held items
type MissionHandler struct {
	storage storage.Storage
	library *content.Library
	events  *events.Broadcaster
	logger  *slog.Logger
}

func NewMissionHandler(storage storage.Storage, library *content.Library, events *events.Broadcaster, logger *slog.Logger) *MissionHandler {
	return &MissionHandler{
		storage: storage,
		library: library,
		events:  events,
		logger:  logger,
	}
}

func (h *MissionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/actors"), "/")
	parts := strings.Split(path, "/")
	if len(parts) < 2 {
		writeError(w, h.logger, http.StatusNotFound, "Not found")
		return
	}
	actorID := parts[0]

	unlock := lockActor(actorID)
	defer unlock()

	st, err := loadActorState(r.Context(), h.storage, h.library, actorID)
	if err != nil {
		h.logger.Error("Failed to load actor state", "actor_id", actorID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load actor state")
		return
	}

	switch {
	case parts[1] == "missions" && len(parts) == 2 && r.Method == http.MethodGet:
		h.handleList(w, st)
	case parts[1] == "missions" && len(parts) == 3 && r.Method == http.MethodGet:
		h.handleQuery(w, st, parts[2])
	case parts[1] == "missions" && len(parts) == 4 && parts[3] == "turnin" && r.Method == http.MethodPost:
		h.handleTurnIn(w, r, st, parts[2])
	case parts[1] == "items" && len(parts) == 2 && r.Method == http.MethodPost:
		h.handleReportItem(w, r, st)
	case parts[1] == "reconcile" && len(parts) == 2 && r.Method == http.MethodPost:
		h.handleReconcile(w, r, st)
	default:
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *MissionHandler) handleList(w http.ResponseWriter, st *actorState) {
	h.handleListWithStatus(w, st, http.StatusOK)
}

func (h *MissionHandler) handleQuery(w http.ResponseWriter, st *actorState, missionID string) {
	status, current, err := st.ledger.Query(missionID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	view := MissionView{MissionID: missionID, Status: status, Current: current}
	if def := h.library.Mission(missionID); def != nil {
		view.DisplayName = def.DisplayName
		view.Description = def.Description
		view.Required = def.RequiredAmount
	}
	writeJSON(w, h.logger, http.StatusOK, view)
}

func (h *MissionHandler) handleTurnIn(w http.ResponseWriter, r *http.Request, st *actorState, missionID string) {
	if err := st.ledger.TurnIn(missionID); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	h.persistAndPublish(w, r, st, http.StatusOK)
}

func (h *MissionHandler) handleReportItem(w http.ResponseWriter, r *http.Request, st *actorState) {
	var req ReportItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ItemID == "" {
		writeError(w, h.logger, http.StatusBadRequest, "item_id is required")
		return
	}
	if req.Amount == 0 {
		req.Amount = 1
	}
	if req.Amount < 0 {
		writeError(w, h.logger, http.StatusBadRequest, "amount must be positive")
		return
	}

	st.ledger.ReportItemAcquired(req.ItemID, req.Amount)
	h.persistAndPublish(w, r, st, http.StatusOK)
}

func (h *MissionHandler) handleReconcile(w http.ResponseWriter, r *http.Request, st *actorState) {
	var req ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	held := make(map[string]bool, len(req.HeldItems))
	for _, item := range req.HeldItems {
		held[item] = true
	}
	st.ledger.ReconcileAgainstInventory(func(itemID string) bool { return held[itemID] })
	h.persistAndPublish(w, r, st, http.StatusOK)
}

// persistAndPublish saves the mutated state, broadcasts the request's
// notifications, and responds with the updated ledger.
func (h *MissionHandler) persistAndPublish(w http.ResponseWriter, r *http.Request, st *actorState, status int) {
	if err := st.save(r.Context(), h.storage); err != nil {
		h.logger.Error("Failed to save actor state", "actor_id", st.actorID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save actor state")
		return
	}

	if h.events != nil {
		for _, n := range st.notes {
			if err := h.events.PublishMission(r.Context(), st.actorID, n); err != nil {
				h.logger.Warn("Failed to publish mission event", "actor_id", st.actorID, "error", err)
			}
		}
	}

	h.handleListWithStatus(w, st, status)
}

func (h *MissionHandler) handleListWithStatus(w http.ResponseWriter, st *actorState, status int) {
	views := make([]MissionView, 0)
	for _, p := range st.ledger.Missions() {
		views = append(views, MissionView{
			MissionID:   p.Definition.ID,
			DisplayName: p.Definition.DisplayName,
			Description: p.Definition.Description,
			Status:      p.Status,
			Current:     p.Current,
			Required:    p.Definition.RequiredAmount,
		})
	}
	writeJSON(w, h.logger, status, views)
}
