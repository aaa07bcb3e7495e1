package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func getPath(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeInteraction(t *testing.T, rr *httptest.ResponseRecorder) InteractionResponse {
	t.Helper()
	var resp InteractionResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return resp
}

func TestInteractionHandler_StartValidation(t *testing.T) {
	lib, store := setupTest(t)
	handler := NewInteractionHandler(store, lib, nil, testLogger())

	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{
			name:           "missing actor id",
			body:           `{"npc_id":"elder"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing npc id",
			body:           `{"actor_id":"kid"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown npc",
			body:           `{"actor_id":"kid","npc_id":"ghost"}`,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "malformed body",
			body:           `{`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := postJSON(t, handler, "/v1/interactions", tc.body)
			if rr.Code != tc.expectedStatus {
				t.Errorf("Expected status %d, got %d. Body: %s", tc.expectedStatus, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestInteractionHandler_StartSelectsMissionGraph(t *testing.T) {
	lib, store := setupTest(t)
	handler := NewInteractionHandler(store, lib, nil, testLogger())

	rr := postJSON(t, handler, "/v1/interactions", `{"actor_id":"kid","npc_id":"elder"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d. Body: %s", rr.Code, rr.Body.String())
	}

	resp := decodeInteraction(t, rr)
	if resp.GraphID != "gem_intro" {
		t.Errorf("Expected sequential assignment to pick gem_intro, got %q", resp.GraphID)
	}
	if resp.State != "awaiting_choice" {
		t.Errorf("Expected awaiting_choice, got %q", resp.State)
	}
	if resp.Node == nil || len(resp.Node.Options) != 2 {
		t.Fatalf("Expected node with 2 options, got %+v", resp.Node)
	}

	// Exactly one active session per actor.
	rr = postJSON(t, handler, "/v1/interactions", `{"actor_id":"kid","npc_id":"elder"}`)
	if rr.Code != http.StatusConflict {
		t.Errorf("Expected status 409 for second start, got %d", rr.Code)
	}
}

func TestInteractionHandler_ReadWithoutSession(t *testing.T) {
	lib, store := setupTest(t)
	handler := NewInteractionHandler(store, lib, nil, testLogger())

	rr := getPath(t, handler, "/v1/interactions/kid")
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rr.Code)
	}
}

func TestInteractionHandler_AcceptFlowAssignsMission(t *testing.T) {
	lib, store := setupTest(t)
	handler := NewInteractionHandler(store, lib, nil, testLogger())

	rr := postJSON(t, handler, "/v1/interactions", `{"actor_id":"kid","npc_id":"elder"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("Failed to start: %d %s", rr.Code, rr.Body.String())
	}

	// "Of course" jumps to node 1.
	rr = postJSON(t, handler, "/v1/interactions/kid/choose", `{"option":0}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("Choose failed: %d %s", rr.Code, rr.Body.String())
	}
	resp := decodeInteraction(t, rr)
	if resp.State != "awaiting_advance" {
		t.Errorf("Expected awaiting_advance at node 1, got %q", resp.State)
	}
	if resp.Node == nil || resp.Node.Index != 1 {
		t.Fatalf("Expected node 1, got %+v", resp.Node)
	}

	// Node 1 has no next, so advancing ends the dialogue and the elder
	// assigns the gem mission.
	rr = postJSON(t, handler, "/v1/interactions/kid/advance", `{}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("Advance failed: %d %s", rr.Code, rr.Body.String())
	}
	resp = decodeInteraction(t, rr)
	if resp.State != "ended" {
		t.Errorf("Expected ended, got %q", resp.State)
	}
	if resp.Node != nil {
		t.Errorf("Expected no node after ending, got %+v", resp.Node)
	}
	if resp.Reaction != "assigned" || resp.MissionID != "gem_collection" {
		t.Errorf("Expected gem_collection assigned, got reaction=%q mission=%q", resp.Reaction, resp.MissionID)
	}

	// The session is gone.
	rr = getPath(t, handler, "/v1/interactions/kid")
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 after dialogue ended, got %d", rr.Code)
	}

	// The ledger snapshot persisted.
	snap, err := store.LoadLedger(context.Background(), "kid")
	if err != nil {
		t.Fatalf("LoadLedger failed: %v", err)
	}
	if snap == nil || len(snap.Missions) != 1 || snap.Missions[0].MissionID != "gem_collection" {
		t.Fatalf("Expected one saved mission entry, got %+v", snap)
	}

	// Starting again while the mission is assigned replays its start
	// graph, since the elder's mission has no reminder graph.
	rr = postJSON(t, handler, "/v1/interactions", `{"actor_id":"kid","npc_id":"elder"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("Restart failed: %d %s", rr.Code, rr.Body.String())
	}
	resp = decodeInteraction(t, rr)
	if resp.GraphID != "gem_intro" {
		t.Errorf("Expected gem_intro while assigned, got %q", resp.GraphID)
	}
}

func TestInteractionHandler_DeclineStillAssigns(t *testing.T) {
	// Ending the intro by declining still runs the assignment hook; the
	// elder's dialogue ending assigns regardless of the path taken. This
	// mirrors dialogue trees where refusal loops back to the same offer.
	lib, store := setupTest(t)
	handler := NewInteractionHandler(store, lib, nil, testLogger())

	postJSON(t, handler, "/v1/interactions", `{"actor_id":"kid","npc_id":"elder"}`)

	// "Not now" has no target, so choosing it ends the dialogue.
	rr := postJSON(t, handler, "/v1/interactions/kid/choose", `{"option":1}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("Choose failed: %d %s", rr.Code, rr.Body.String())
	}
	resp := decodeInteraction(t, rr)
	if resp.State != "ended" {
		t.Errorf("Expected ended, got %q", resp.State)
	}
	if resp.Reaction != "assigned" {
		t.Errorf("Expected assigned, got %q", resp.Reaction)
	}
}

func TestInteractionHandler_ChooseOutOfRange(t *testing.T) {
	lib, store := setupTest(t)
	handler := NewInteractionHandler(store, lib, nil, testLogger())

	postJSON(t, handler, "/v1/interactions", `{"actor_id":"kid","npc_id":"elder"}`)

	rr := postJSON(t, handler, "/v1/interactions/kid/choose", `{"option":5}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for out-of-range option, got %d", rr.Code)
	}

	// The session survives a rejected choice.
	rr = getPath(t, handler, "/v1/interactions/kid")
	if rr.Code != http.StatusOK {
		t.Errorf("Expected session to remain active, got %d", rr.Code)
	}
}

func TestInteractionHandler_AdvanceAtChoiceNode(t *testing.T) {
	lib, store := setupTest(t)
	handler := NewInteractionHandler(store, lib, nil, testLogger())

	postJSON(t, handler, "/v1/interactions", `{"actor_id":"kid","npc_id":"elder"}`)

	rr := postJSON(t, handler, "/v1/interactions/kid/advance", `{}`)
	if rr.Code != http.StatusConflict {
		t.Errorf("Expected status 409 advancing a choice node, got %d", rr.Code)
	}
}

func TestInteractionHandler_Cancel(t *testing.T) {
	lib, store := setupTest(t)
	handler := NewInteractionHandler(store, lib, nil, testLogger())

	postJSON(t, handler, "/v1/interactions", `{"actor_id":"kid","npc_id":"elder"}`)

	rr := postJSON(t, handler, "/v1/interactions/kid/cancel", `{}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("Cancel failed: %d %s", rr.Code, rr.Body.String())
	}
	resp := decodeInteraction(t, rr)
	if resp.State != "ended" {
		t.Errorf("Expected ended after cancel, got %q", resp.State)
	}
	if resp.Reaction != "" {
		t.Errorf("Expected no mission reaction on cancel, got %q", resp.Reaction)
	}

	// Walking away assigned nothing.
	if snap, err := store.LoadLedger(context.Background(), "kid"); err != nil || snap != nil {
		t.Errorf("Expected no saved ledger after cancel, got %+v (err %v)", snap, err)
	}

	rr = getPath(t, handler, "/v1/interactions/kid")
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 after cancel, got %d", rr.Code)
	}
}

func TestInteractionHandler_TurnInCycle(t *testing.T) {
	lib, store := setupTest(t)
	handler := NewInteractionHandler(store, lib, nil, testLogger())
	missions := NewMissionHandler(store, lib, nil, testLogger())

	// Accept the mission.
	postJSON(t, handler, "/v1/interactions", `{"actor_id":"kid","npc_id":"elder"}`)
	postJSON(t, handler, "/v1/interactions/kid/choose", `{"option":0}`)
	postJSON(t, handler, "/v1/interactions/kid/advance", `{}`)

	// Gather the five gems.
	rr := postJSON(t, missions, "/v1/actors/kid/items", `{"item_id":"gem","amount":5}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("Report item failed: %d %s", rr.Code, rr.Body.String())
	}

	// The elder now plays the turn-in graph.
	rr = postJSON(t, handler, "/v1/interactions", `{"actor_id":"kid","npc_id":"elder"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("Start failed: %d %s", rr.Code, rr.Body.String())
	}
	resp := decodeInteraction(t, rr)
	if resp.GraphID != "gem_turnin" {
		t.Errorf("Expected gem_turnin for completed mission, got %q", resp.GraphID)
	}

	// Ending the turn-in dialogue claims the reward.
	rr = postJSON(t, handler, "/v1/interactions/kid/advance", `{}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("Advance failed: %d %s", rr.Code, rr.Body.String())
	}
	resp = decodeInteraction(t, rr)
	if resp.Reaction != "turned_in" || resp.MissionID != "gem_collection" {
		t.Errorf("Expected gem_collection turned in, got reaction=%q mission=%q", resp.Reaction, resp.MissionID)
	}

	player, err := store.LoadPlayer(context.Background(), "kid")
	if err != nil || player == nil {
		t.Fatalf("LoadPlayer failed: %v %+v", err, player)
	}
	if player.MaxHealthBonus != 2 {
		t.Errorf("Expected max health bonus 2 after reward, got %v", player.MaxHealthBonus)
	}
}
