package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func doRequest(t *testing.T, ts *httptest.Server, method, path string, payload any) *http.Response {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() {
		_ = resp.Body.Close()
	})
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func createTestGame(t *testing.T, ts *httptest.Server, nickname string) (string, string) {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/games", map[string]string{
		"nickname": nickname,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	return body["code"].(string), body["player_id"].(string)
}

func joinTestPlayer(t *testing.T, ts *httptest.Server, code, nickname string) string {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/games/"+code+"/join", map[string]string{
		"nickname": nickname,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	player := body["player"].(map[string]any)
	return player["id"].(string)
}

func admitTestPlayer(t *testing.T, ts *httptest.Server, code, mayorID, targetID string) {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/games/"+code+"/admit", map[string]string{
		"mayor_id":  mayorID,
		"target_id": targetID,
		"decision":  "admit",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
}

func fetchSnapshot(t *testing.T, ts *httptest.Server, code string) map[string]any {
	t.Helper()
	resp := doRequest(t, ts, http.MethodGet, "/api/games/"+code, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	return decodeBody(t, resp)
}

// fixedDraw replays a scripted sequence of draw results, then zeros.
func fixedDraw(values ...int) func(n int) int {
	i := 0
	return func(n int) int {
		if i >= len(values) {
			return 0
		}
		v := values[i]
		i++
		return v % n
	}
}

// activeTestGame builds a running 6-player game with known IDs p0..p5,
// the mayor at p0, and the given wolf and healer seats. Stage is night
// with one open activity.
func activeTestGame(wolfIdx, healerIdx int) *Game {
	game := &Game{
		Code:      "TEST",
		CreatedAt: timeNowUTC(),
		Active:    true,
		Stage:     stageNight,
	}
	for i := 0; i < 6; i++ {
		player := Player{
			ID:       fmt.Sprintf("p%d", i),
			Nickname: fmt.Sprintf("Player %d", i),
		}
		if i == 0 {
			player.Roles = append(player.Roles, RoleMayor)
		}
		switch i {
		case wolfIdx:
			player.Roles = append(player.Roles, RoleWolf)
		case healerIdx:
			player.Roles = append(player.Roles, RoleHealer)
		default:
			player.Roles = append(player.Roles, RoleVillager)
		}
		game.Players = append(game.Players, player)
	}
	now := timeNowUTC()
	game.StartedAt = &now
	game.Activities = append(game.Activities, Activity{})
	return game
}

func completeNight(t *testing.T, game *Game, wolfID, wolfTarget, healerID, healerTarget string) {
	t.Helper()
	if _, err := chooseNight(game, wolfID, RoleWolf, wolfTarget); err != nil {
		t.Fatalf("wolf choice: %v", err)
	}
	if _, err := chooseNight(game, healerID, RoleHealer, healerTarget); err != nil {
		t.Fatalf("healer choice: %v", err)
	}
}
