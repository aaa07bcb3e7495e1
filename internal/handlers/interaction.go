package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/questkit/quest-engine/internal/content"
	"github.com/questkit/quest-engine/internal/events"
	"github.com/questkit/quest-engine/internal/storage"
	"github.com/questkit/quest-engine/pkg/dialogue"
	"github.com/questkit/quest-engine/pkg/npc"
)

// NodeView is the presentation payload for the current dialogue node.
type NodeView struct {
	Index   int      `json:"index"`
	Speaker string   `json:"speaker"`
	Text    string   `json:"text"`
	Options []string `json:"options,omitempty"`
}

// InteractionResponse describes an actor's dialogue session after an
// operation. Node is nil once the dialogue has ended.
type InteractionResponse struct {
	SessionID uuid.UUID      `json:"session_id"`
	ActorID   string         `json:"actor_id"`
	NPCID     string         `json:"npc_id"`
	GraphID   string         `json:"graph_id"`
	State     dialogue.State `json:"state"`
	Node      *NodeView      `json:"node,omitempty"`
	// Reaction reports the mission bookkeeping a dialogue ending caused:
	// "assigned", "turned_in", or "none".
	Reaction  string `json:"reaction,omitempty"`
	MissionID string `json:"mission_id,omitempty"`
}

type StartInteractionRequest struct {
	ActorID string `json:"actor_id"`
	NPCID   string `json:"npc_id"`
}

type ChooseRequest struct {
	Option int `json:"option"`
}

// InteractionHandler drives dialogue sessions. One session may be active
// per actor; the session record persists between requests and the
// traversal state machine is rehydrated from it on every operation.
//
// Routes:
// POST /v1/interactions                  - Start an interaction
// GET  /v1/interactions/{actor}          - Read the active session
// POST /v1/interactions/{actor}/advance  - Follow the fallthrough
// POST /v1/interactions/{actor}/choose   - Pick an option
// POST /v1/interactions/{actor}/cancel   - Force-end the session
type InteractionHandler struct {
	storage storage.Storage
	library *content.Library
	events  *events.Broadcaster
	logger  *slog.Logger
}

func NewInteractionHandler(storage storage.Storage, library *content.Library, events *events.Broadcaster, logger *slog.Logger) *InteractionHandler {
	return &InteractionHandler{
		storage: storage,
		library: library,
		events:  events,
		logger:  logger,
	}
}

func (h *InteractionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/interactions"), "/")

	if path == "" {
		if r.Method != http.MethodPost {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
			return
		}
		h.handleStart(w, r)
		return
	}

	parts := strings.Split(path, "/")
	actorID := parts[0]

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.handleRead(w, r, actorID)
	case len(parts) == 2 && r.Method == http.MethodPost:
		switch parts[1] {
		case "advance":
			h.handleAdvance(w, r, actorID)
		case "choose":
			h.handleChoose(w, r, actorID)
		case "cancel":
			h.handleCancel(w, r, actorID)
		default:
			writeError(w, h.logger, http.StatusNotFound, "Unknown interaction operation: "+parts[1])
		}
	default:
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *InteractionHandler) handleStart(w http.ResponseWriter, r *http.Request) {
	var req StartInteractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ActorID == "" || req.NPCID == "" {
		writeError(w, h.logger, http.StatusBadRequest, "actor_id and npc_id are required")
		return
	}

	character := h.library.NPC(req.NPCID)
	if character == nil {
		writeError(w, h.logger, http.StatusNotFound, "NPC not found: "+req.NPCID)
		return
	}

	ctx := r.Context()

	// Exactly one active session per actor.
	existing, err := h.storage.LoadSession(ctx, req.ActorID)
	if err != nil {
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load session")
		return
	}
	if existing != nil {
		writeError(w, h.logger, http.StatusConflict, "An interaction is already active for this actor")
		return
	}

	st, err := loadActorState(ctx, h.storage, h.library, req.ActorID)
	if err != nil {
		h.logger.Error("Failed to load actor state", "actor_id", req.ActorID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load actor state")
		return
	}

	// The binding policy picks the graph from mission state.
	graphID := npc.SelectGraph(character, h.library.NPCMissions(character), st.ledger)
	graph := h.library.Dialogue(graphID)
	if graph == nil {
		h.logger.Error("NPC selected unknown graph", "npc_id", req.NPCID, "graph_id", graphID)
		writeError(w, h.logger, http.StatusInternalServerError, "NPC has no playable dialogue")
		return
	}

	session, err := dialogue.Start(graph, 0)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	rec := &storage.SessionRecord{
		ID:      uuid.New(),
		ActorID: req.ActorID,
		NPCID:   req.NPCID,
		GraphID: graphID,
		Node:    session.Current(),
	}
	if err := h.storage.SaveSession(ctx, rec); err != nil {
		h.logger.Error("Failed to save session", "actor_id", req.ActorID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save session")
		return
	}

	h.publishNode(r, rec, session)
	writeJSON(w, h.logger, http.StatusCreated, sessionView(rec, session))
}

func (h *InteractionHandler) handleRead(w http.ResponseWriter, r *http.Request, actorID string) {
	rec, session, ok := h.loadActive(w, r, actorID)
	if !ok {
		return
	}
	writeJSON(w, h.logger, http.StatusOK, sessionView(rec, session))
}

func (h *InteractionHandler) handleAdvance(w http.ResponseWriter, r *http.Request, actorID string) {
	rec, session, ok := h.loadActive(w, r, actorID)
	if !ok {
		return
	}

	if _, err := session.Advance(); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	h.finishStep(w, r, rec, session)
}

func (h *InteractionHandler) handleChoose(w http.ResponseWriter, r *http.Request, actorID string) {
	rec, session, ok := h.loadActive(w, r, actorID)
	if !ok {
		return
	}

	var req ChooseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	if _, err := session.Choose(req.Option); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	h.finishStep(w, r, rec, session)
}

// handleCancel force-ends the session. Walking away is an interruption,
// not a dialogue ending, so the NPC's mission bookkeeping does not run.
func (h *InteractionHandler) handleCancel(w http.ResponseWriter, r *http.Request, actorID string) {
	rec, session, ok := h.loadActive(w, r, actorID)
	if !ok {
		return
	}

	session.Cancel()
	if err := h.storage.DeleteSession(r.Context(), rec.ActorID); err != nil {
		h.logger.Error("Failed to delete session", "actor_id", rec.ActorID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete session")
		return
	}

	if h.events != nil {
		if err := h.events.PublishDialogueEnded(r.Context(), rec.ActorID); err != nil {
			h.logger.Warn("Failed to publish dialogue ended", "actor_id", rec.ActorID, "error", err)
		}
	}

	writeJSON(w, h.logger, http.StatusOK, sessionView(rec, session))
}

// loadActive rehydrates the actor's session from its record.
func (h *InteractionHandler) loadActive(w http.ResponseWriter, r *http.Request, actorID string) (*storage.SessionRecord, *dialogue.Session, bool) {
	rec, err := h.storage.LoadSession(r.Context(), actorID)
	if err != nil {
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load session")
		return nil, nil, false
	}
	if rec == nil {
		writeError(w, h.logger, http.StatusNotFound, "No active interaction for actor: "+actorID)
		return nil, nil, false
	}

	graph := h.library.Dialogue(rec.GraphID)
	if graph == nil {
		// Content changed under a live session; treat it as gone.
		h.logger.Warn("Session references unknown graph", "actor_id", actorID, "graph_id", rec.GraphID)
		writeError(w, h.logger, http.StatusNotFound, "No active interaction for actor: "+actorID)
		return nil, nil, false
	}

	session, err := dialogue.Resume(graph, rec.Node)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return nil, nil, false
	}
	return rec, session, true
}

// finishStep persists the session's new position, or tears the session
// down and runs the NPC's mission bookkeeping when the dialogue ended.
func (h *InteractionHandler) finishStep(w http.ResponseWriter, r *http.Request, rec *storage.SessionRecord, session *dialogue.Session) {
	ctx := r.Context()

	if !session.Ended() {
		rec.Node = session.Current()
		if err := h.storage.SaveSession(ctx, rec); err != nil {
			h.logger.Error("Failed to save session", "actor_id", rec.ActorID, "error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to save session")
			return
		}
		h.publishNode(r, rec, session)
		writeJSON(w, h.logger, http.StatusOK, sessionView(rec, session))
		return
	}

	if err := h.storage.DeleteSession(ctx, rec.ActorID); err != nil {
		h.logger.Error("Failed to delete session", "actor_id", rec.ActorID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete session")
		return
	}

	resp := sessionView(rec, session)

	// The dialogue ending drives assignment and turn-in.
	character := h.library.NPC(rec.NPCID)
	if character != nil {
		unlock := lockActor(rec.ActorID)
		defer unlock()

		st, err := loadActorState(ctx, h.storage, h.library, rec.ActorID)
		if err != nil {
			h.logger.Error("Failed to load actor state", "actor_id", rec.ActorID, "error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to load actor state")
			return
		}

		reaction, missionID, err := npc.HandleDialogueEnded(character, h.library.NPCMissions(character), st.ledger)
		if err != nil {
			h.logger.Error("Post-dialogue mission bookkeeping failed", "actor_id", rec.ActorID, "error", err)
			writeDomainError(w, h.logger, err)
			return
		}
		if reaction != npc.ReactionNone {
			if err := st.save(ctx, h.storage); err != nil {
				h.logger.Error("Failed to save actor state", "actor_id", rec.ActorID, "error", err)
				writeError(w, h.logger, http.StatusInternalServerError, "Failed to save actor state")
				return
			}
		}
		resp.Reaction = string(reaction)
		resp.MissionID = missionID
		h.publishNotes(r, rec.ActorID, st)
	}

	if h.events != nil {
		if err := h.events.PublishDialogueEnded(ctx, rec.ActorID); err != nil {
			h.logger.Warn("Failed to publish dialogue ended", "actor_id", rec.ActorID, "error", err)
		}
	}

	writeJSON(w, h.logger, http.StatusOK, resp)
}

func (h *InteractionHandler) publishNode(r *http.Request, rec *storage.SessionRecord, session *dialogue.Session) {
	if h.events == nil {
		return
	}
	node := session.CurrentNode()
	e := dialogue.NodeEntered{
		Index:   session.Current(),
		Speaker: node.Speaker,
		Text:    node.Text,
	}
	for _, opt := range node.Options {
		e.OptionLabels = append(e.OptionLabels, opt.Label)
	}
	if err := h.events.PublishNodeEntered(r.Context(), rec.ActorID, e); err != nil {
		h.logger.Warn("Failed to publish node entered", "actor_id", rec.ActorID, "error", err)
	}
}

func (h *InteractionHandler) publishNotes(r *http.Request, actorID string, st *actorState) {
	if h.events == nil {
		return
	}
	for _, n := range st.notes {
		if err := h.events.PublishMission(r.Context(), actorID, n); err != nil {
			h.logger.Warn("Failed to publish mission event", "actor_id", actorID, "error", err)
		}
	}
}

func sessionView(rec *storage.SessionRecord, session *dialogue.Session) InteractionResponse {
	resp := InteractionResponse{
		SessionID: rec.ID,
		ActorID:   rec.ActorID,
		NPCID:     rec.NPCID,
		GraphID:   rec.GraphID,
		State:     session.State(),
	}
	if !session.Ended() {
		node := session.CurrentNode()
		view := &NodeView{
			Index:   int(session.Current()),
			Speaker: node.Speaker,
			Text:    node.Text,
		}
		for _, opt := range node.Options {
			view.Options = append(view.Options, opt.Label)
		}
		resp.Node = view
	}
	return resp
}
