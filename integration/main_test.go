//go:build integration
// +build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

// These tests run against a live API. Start the stack first:
//
//	docker-compose up -d
//	go test -tags=integration ./integration/...
//
// The API must be serving the sample content in data/.

var (
	baseURL = envOr("API_BASE_URL", "http://localhost:8080")
	client  = &http.Client{Timeout: 30 * time.Second}
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestMain(m *testing.M) {
	resp, err := client.Get(baseURL + "/health")
	if err != nil || resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "API is not reachable at %s; start it with docker-compose up -d\n", baseURL)
		os.Exit(1)
	}
	_ = resp.Body.Close()
	os.Exit(m.Run())
}

func call(t *testing.T, method, path string, reqBody any, out any) int {
	t.Helper()
	var body io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		body = bytes.NewBuffer(data)
	}
	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			t.Fatalf("parse response from %s %s: %v (%s)", method, path, err, string(data))
		}
	}
	return resp.StatusCode
}

type interactionView struct {
	State     string `json:"state"`
	GraphID   string `json:"graph_id"`
	Reaction  string `json:"reaction"`
	MissionID string `json:"mission_id"`
	Node      *struct {
		Speaker string   `json:"speaker"`
		Text    string   `json:"text"`
		Options []string `json:"options"`
	} `json:"node"`
}

type missionView struct {
	MissionID string `json:"mission_id"`
	Status    string `json:"status"`
	Current   int    `json:"current"`
}

// TestGemMissionFlow walks the sample content end to end: meet the
// chieftain, accept the gem mission, gather the gems, and turn them in.
func TestGemMissionFlow(t *testing.T) {
	// A fresh actor per run keeps reruns independent.
	actor := "it-" + uuid.NewString()[:8]

	var session interactionView
	status := call(t, http.MethodPost, "/v1/interactions",
		map[string]string{"actor_id": actor, "npc_id": "chieftain"}, &session)
	if status != http.StatusCreated {
		t.Fatalf("start interaction: status %d", status)
	}
	if session.GraphID != "gem_intro" {
		t.Fatalf("expected gem_intro for a fresh actor, got %s", session.GraphID)
	}

	// Walk to the choice, accept, and play out the dialogue.
	for i := 0; i < 10 && session.State != "ended"; i++ {
		switch session.State {
		case "awaiting_advance":
			call(t, http.MethodPost, "/v1/interactions/"+actor+"/advance", struct{}{}, &session)
		case "awaiting_choice":
			call(t, http.MethodPost, "/v1/interactions/"+actor+"/choose", map[string]int{"option": 0}, &session)
		default:
			t.Fatalf("unexpected state %s", session.State)
		}
	}
	if session.State != "ended" {
		t.Fatal("dialogue did not end")
	}
	if session.Reaction != "assigned" || session.MissionID != "gem_collection" {
		t.Fatalf("expected gem_collection assigned, got %s %s", session.Reaction, session.MissionID)
	}

	var missions []missionView
	call(t, http.MethodPost, "/v1/actors/"+actor+"/items",
		map[string]any{"item_id": "moon_gem", "amount": 5}, &missions)
	if missions[0].Status != "completed" {
		t.Fatalf("expected completed after five gems, got %+v", missions[0])
	}

	// The chieftain now plays the turn-in graph; ending it claims the
	// reward.
	call(t, http.MethodPost, "/v1/interactions",
		map[string]string{"actor_id": actor, "npc_id": "chieftain"}, &session)
	if session.GraphID != "gem_turnin" {
		t.Fatalf("expected gem_turnin, got %s", session.GraphID)
	}
	for i := 0; i < 10 && session.State != "ended"; i++ {
		call(t, http.MethodPost, "/v1/interactions/"+actor+"/advance", struct{}{}, &session)
	}
	if session.Reaction != "turned_in" {
		t.Fatalf("expected turn-in, got %s", session.Reaction)
	}

	call(t, http.MethodGet, "/v1/actors/"+actor+"/missions", nil, &missions)
	if missions[0].Status != "turned_in" {
		t.Fatalf("expected turned_in in the ledger, got %+v", missions[0])
	}
}

func TestEnergyGate(t *testing.T) {
	actor := "it-" + uuid.NewString()[:8]

	var pool struct {
		Current int   `json:"current"`
		Max     int   `json:"max"`
		Spent   *bool `json:"spent"`
	}
	status := call(t, http.MethodGet, "/v1/energy/"+actor, nil, &pool)
	if status != http.StatusOK {
		t.Fatalf("read energy: status %d", status)
	}
	if pool.Current != pool.Max {
		t.Fatalf("expected a fresh actor to start full, got %d/%d", pool.Current, pool.Max)
	}

	call(t, http.MethodPost, "/v1/energy/"+actor+"/spend", nil, &pool)
	if pool.Spent == nil || !*pool.Spent {
		t.Fatalf("expected first spend to succeed, got %+v", pool)
	}
	if pool.Current >= pool.Max {
		t.Fatalf("expected the pool to drop, got %d/%d", pool.Current, pool.Max)
	}
}
