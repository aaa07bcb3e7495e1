package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/questkit/quest-engine/internal/handlers"
)

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

// doJSON runs one API call and decodes the response into out. A non-2xx
// status is returned as an error carrying the API's error message.
func doJSON(client *http.Client, method, url string, reqBody any, out any) error {
	var body io.Reader
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errorResp handlers.ErrorResponse
		if err := json.Unmarshal(data, &errorResp); err != nil {
			return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(data))
		}
		return fmt.Errorf("%s", errorResp.Error)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

func listNPCs(client *http.Client, baseURL string) ([]handlers.NPCView, error) {
	var npcs []handlers.NPCView
	if err := doJSON(client, http.MethodGet, baseURL+"/v1/npcs", nil, &npcs); err != nil {
		return nil, fmt.Errorf("failed to list NPCs: %w", err)
	}
	return npcs, nil
}

func startInteraction(client *http.Client, baseURL, actorID, npcID string) (*handlers.InteractionResponse, error) {
	req := handlers.StartInteractionRequest{ActorID: actorID, NPCID: npcID}
	var resp handlers.InteractionResponse
	if err := doJSON(client, http.MethodPost, baseURL+"/v1/interactions", req, &resp); err != nil {
		return nil, fmt.Errorf("failed to start interaction: %w", err)
	}
	return &resp, nil
}

func advanceInteraction(client *http.Client, baseURL, actorID string) (*handlers.InteractionResponse, error) {
	var resp handlers.InteractionResponse
	url := fmt.Sprintf("%s/v1/interactions/%s/advance", baseURL, actorID)
	if err := doJSON(client, http.MethodPost, url, struct{}{}, &resp); err != nil {
		return nil, fmt.Errorf("failed to advance: %w", err)
	}
	return &resp, nil
}

func chooseOption(client *http.Client, baseURL, actorID string, option int) (*handlers.InteractionResponse, error) {
	var resp handlers.InteractionResponse
	url := fmt.Sprintf("%s/v1/interactions/%s/choose", baseURL, actorID)
	if err := doJSON(client, http.MethodPost, url, handlers.ChooseRequest{Option: option}, &resp); err != nil {
		return nil, fmt.Errorf("failed to choose: %w", err)
	}
	return &resp, nil
}

func cancelInteraction(client *http.Client, baseURL, actorID string) (*handlers.InteractionResponse, error) {
	var resp handlers.InteractionResponse
	url := fmt.Sprintf("%s/v1/interactions/%s/cancel", baseURL, actorID)
	if err := doJSON(client, http.MethodPost, url, struct{}{}, &resp); err != nil {
		return nil, fmt.Errorf("failed to cancel: %w", err)
	}
	return &resp, nil
}

func listMissions(client *http.Client, baseURL, actorID string) ([]handlers.MissionView, error) {
	var missions []handlers.MissionView
	url := fmt.Sprintf("%s/v1/actors/%s/missions", baseURL, actorID)
	if err := doJSON(client, http.MethodGet, url, nil, &missions); err != nil {
		return nil, fmt.Errorf("failed to list missions: %w", err)
	}
	return missions, nil
}

func getEnergy(client *http.Client, baseURL, actorID string) (*handlers.EnergyResponse, error) {
	var resp handlers.EnergyResponse
	url := fmt.Sprintf("%s/v1/energy/%s", baseURL, actorID)
	if err := doJSON(client, http.MethodGet, url, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to read energy: %w", err)
	}
	return &resp, nil
}
