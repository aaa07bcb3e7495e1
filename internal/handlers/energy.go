package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/questkit/quest-engine/internal/storage"
	"github.com/questkit/quest-engine/pkg/energy"
)

// EnergyResponse is the actor's energy pool after regeneration catch-up.
type EnergyResponse struct {
	Current       int  `json:"current"`
	Max           int  `json:"max"`
	CostPerLevel  int  `json:"cost_per_level"`
	CanEnterLevel bool `json:"can_enter_level"`
	// Spent reports the outcome of a spend request. Not enough energy is a
	// normal negative result, not an error.
	Spent *bool `json:"spent,omitempty"`
}

// EnergyHandler exposes the level-entry energy gate. Every request first
// catches the pool up to the current time; the server has no regeneration
// timer of its own.
//
// Routes:
// GET  /v1/energy/{actor}        - Read the pool
// POST /v1/energy/{actor}/spend  - Spend one level entry
type EnergyHandler struct {
	storage       storage.Storage
	logger        *slog.Logger
	max           int
	costPerLevel  int
	regenInterval time.Duration
}

func NewEnergyHandler(storage storage.Storage, logger *slog.Logger, max, costPerLevel int, regenInterval time.Duration) *EnergyHandler {
	return &EnergyHandler{
		storage:       storage,
		logger:        logger,
		max:           max,
		costPerLevel:  costPerLevel,
		regenInterval: regenInterval,
	}
}

func (h *EnergyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/energy"), "/")
	parts := strings.Split(path, "/")
	if path == "" {
		writeError(w, h.logger, http.StatusBadRequest, "Actor id is required")
		return
	}
	actorID := parts[0]

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.handle(w, r, actorID, false)
	case len(parts) == 2 && parts[1] == "spend" && r.Method == http.MethodPost:
		h.handle(w, r, actorID, true)
	default:
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *EnergyHandler) handle(w http.ResponseWriter, r *http.Request, actorID string, spend bool) {
	ctx := r.Context()
	now := time.Now()

	unlock := lockActor(actorID)
	defer unlock()

	player, err := h.storage.LoadPlayer(ctx, actorID)
	if err != nil {
		h.logger.Error("Failed to load player", "actor_id", actorID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load player")
		return
	}
	if player == nil {
		player = &storage.PlayerRecord{ActorID: actorID}
	}

	wallet, err := energy.NewWallet(h.max, h.costPerLevel, h.regenInterval, now)
	if err != nil {
		h.logger.Error("Invalid energy configuration", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Invalid energy configuration")
		return
	}
	if player.Energy != nil {
		wallet.Restore(*player.Energy)
	}
	wallet.Regenerate(now)

	resp := EnergyResponse{
		Max:          wallet.Max(),
		CostPerLevel: wallet.CostPerLevel(),
	}
	if spend {
		spent := wallet.SpendLevel()
		resp.Spent = &spent
	}
	resp.Current = wallet.Current()
	resp.CanEnterLevel = wallet.CanEnterLevel()

	snap := wallet.Snapshot()
	player.Energy = &snap
	if err := h.storage.SavePlayer(ctx, player); err != nil {
		h.logger.Error("Failed to save player", "actor_id", actorID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save player")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, resp)
}
