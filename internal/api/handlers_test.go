package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"agentbattle/internal/engine"
	"agentbattle/internal/settlement"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	eng := engine.New(settlement.NewMock())
	mux := http.NewServeMux()
	New(eng).Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, srv *httptest.Server, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(srv.URL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode %s response: %v", path, err)
	}
	return resp, decoded
}

func getJSON(t *testing.T, srv *httptest.Server, path string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode %s response: %v", path, err)
	}
	return resp, decoded
}

func createGame(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp, body := postJSON(t, srv, "/createGame", map[string]any{"betAmount": 10})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create game status %d: %v", resp.StatusCode, body)
	}
	if body["ok"] != true || body["betAmount"] != float64(10) {
		t.Fatalf("unexpected create response: %v", body)
	}
	return body["gameId"].(string)
}

func registerBot(t *testing.T, srv *httptest.Server, gameID string, bot map[string]any) int {
	t.Helper()
	resp, body := postJSON(t, srv, "/registerBot", map[string]any{"gameId": gameID, "bot": bot})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("register bot status %d: %v", resp.StatusCode, body)
	}
	return int(body["botIndex"].(float64))
}

func gunBotJSON(x, y, orientation float64, hp int, prompt string) map[string]any {
	return map[string]any{
		"x": x, "y": y, "orientation": orientation,
		"HP": hp, "Attack": 3, "Defense": 1, "Speed": 2, "Fuel": 10,
		"weaponChoice": 1, "prompt": prompt,
	}
}

func TestRegisterBotsAssignsIndexes(t *testing.T) {
	srv := newTestServer(t)
	gameID := createGame(t, srv)

	for i := 0; i < 3; i++ {
		index := registerBot(t, srv, gameID, gunBotJSON(float64(i+1), 1, 0, 10, fmt.Sprintf("Bot%d", i)))
		if index != i {
			t.Fatalf("bot %d got index %d", i, index)
		}
	}

	resp, state := getJSON(t, srv, "/getGameState/"+gameID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("state status %d", resp.StatusCode)
	}
	bots := state["bots"].([]any)
	if len(bots) != 3 {
		t.Fatalf("expected 3 bots, got %d", len(bots))
	}
	first := bots[0].(map[string]any)
	if first["botIndex"] != float64(0) || first["HP"] != float64(10) {
		t.Fatalf("unexpected bot snapshot: %v", first)
	}
}

func TestTurnFlowAndDeadBotRejection(t *testing.T) {
	srv := newTestServer(t)
	gameID := createGame(t, srv)

	registerBot(t, srv, gameID, gunBotJSON(1, 1, 0, 10, "Bot0"))
	registerBot(t, srv, gameID, gunBotJSON(2, 1, 180, 10, "Bot1"))
	registerBot(t, srv, gameID, gunBotJSON(3, 1, 0, 3, "Bot2 (fragile)"))

	// Bot0 spends both AP killing the fragile Bot2.
	resp, turn1 := postJSON(t, srv, "/turn", map[string]any{
		"gameId": gameID, "botIndex": 0,
		"actions": []map[string]any{
			{"type": "attack", "targetIndex": 2},
			{"type": "attack", "targetIndex": 2},
		},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("turn 1 status %d: %v", resp.StatusCode, turn1)
	}

	_, state := getJSON(t, srv, "/getGameState/"+gameID)
	bots := state["bots"].([]any)
	if hp := bots[2].(map[string]any)["HP"]; hp != float64(0) {
		t.Fatalf("Bot2 should be dead, HP %v", hp)
	}
	if state["isActive"] != true {
		t.Fatal("two bots still alive; game must stay active")
	}

	// Bot1 takes a normal full turn.
	resp, _ = postJSON(t, srv, "/turn", map[string]any{
		"gameId": gameID, "botIndex": 1,
		"actions": []map[string]any{
			{"type": "move", "x": 3, "y": 2},
			{"type": "move", "x": 4, "y": 2},
		},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("turn 2 status %d", resp.StatusCode)
	}

	// The scheduler has already advanced past dead Bot2, so naming it as the
	// actor is a turn-ownership violation.
	resp, body := postJSON(t, srv, "/turn", map[string]any{
		"gameId": gameID, "botIndex": 2,
		"actions": []map[string]any{
			{"type": "attack", "targetIndex": 0},
		},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("dead bot turn should be rejected with 400, got %d", resp.StatusCode)
	}
	errMsg := body["error"].(string)
	if !strings.Contains(errMsg, "not bot 2's turn") || !strings.Contains(errMsg, "bot 0's turn") {
		t.Fatalf("unexpected rejection message: %q", errMsg)
	}
}

func TestAutoFinishOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	gameID := createGame(t, srv)

	registerBot(t, srv, gameID, gunBotJSON(1, 1, 0, 10, "Bot0"))
	registerBot(t, srv, gameID, gunBotJSON(2, 1, 180, 3, "Bot1 (fragile)"))

	resp, turn := postJSON(t, srv, "/turn", map[string]any{
		"gameId": gameID, "botIndex": 0,
		"actions": []map[string]any{
			{"type": "attack", "targetIndex": 1},
			{"type": "attack", "targetIndex": 1},
		},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("turn status %d: %v", resp.StatusCode, turn)
	}
	if turn["winner"] != float64(0) {
		t.Fatalf("expected winner 0 in turn response, got %v", turn["winner"])
	}

	_, state := getJSON(t, srv, "/getGameState/"+gameID)
	if state["isActive"] != false {
		t.Fatal("game should be finished once one bot remains")
	}

	// Manual finish after auto-finish is rejected.
	resp, _ = postJSON(t, srv, "/finishGame", map[string]any{"gameId": gameID})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("finish on finished game should 400, got %d", resp.StatusCode)
	}
}

func TestManualFinishAndSync(t *testing.T) {
	srv := newTestServer(t)
	gameID := createGame(t, srv)

	registerBot(t, srv, gameID, gunBotJSON(1.7, 1.2, 0, 10, "Bot0"))
	registerBot(t, srv, gameID, gunBotJSON(2, 1, 0, 4, "Bot1"))

	resp, body := postJSON(t, srv, "/syncOnChain", map[string]any{"gameId": gameID})
	if resp.StatusCode != http.StatusOK || body["ok"] != true {
		t.Fatalf("sync status %d: %v", resp.StatusCode, body)
	}

	resp, body = postJSON(t, srv, "/finishGame", map[string]any{"gameId": gameID})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("finish status %d: %v", resp.StatusCode, body)
	}
	if body["winningBotIndex"] != float64(0) {
		t.Fatalf("expected winner 0 (highest HP), got %v", body["winningBotIndex"])
	}
}

func TestGameNotFound(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := getJSON(t, srv, "/getGameState/nope")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("state of unknown game should 404, got %d", resp.StatusCode)
	}

	resp, _ = postJSON(t, srv, "/turn", map[string]any{"gameId": "nope", "botIndex": 0})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("turn on unknown game should 404, got %d", resp.StatusCode)
	}
}

func TestWeaponsEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/weapons")
	if err != nil {
		t.Fatalf("GET /weapons: %v", err)
	}
	defer resp.Body.Close()
	var list []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode weapons list: %v", err)
	}
	if len(list) != 5 {
		t.Fatalf("expected 5 weapons, got %d", len(list))
	}

	resp2, weapon := getJSON(t, srv, "/weapons/3")
	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("weapon 3 status %d", resp2.StatusCode)
	}
	if weapon["name"] != "Saw Blade" {
		t.Fatalf("unexpected weapon 3: %v", weapon)
	}

	resp3, _ := getJSON(t, srv, "/weapons/99")
	if resp3.StatusCode != http.StatusNotFound {
		t.Fatalf("weapon 99 should 404, got %d", resp3.StatusCode)
	}
}

func TestBadJSONRejected(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/createGame", "application/json", strings.NewReader("{nope"))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad json should 400, got %d", resp.StatusCode)
	}
}
