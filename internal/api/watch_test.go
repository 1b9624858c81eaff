package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"agentbattle/internal/engine"
)

func TestWatchRequiresGameID(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/ws/watch")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("watch without gameId should 400, got %d", resp.StatusCode)
	}

	resp2, err := http.Get(srv.URL + "/ws/watch?gameId=nope")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotFound {
		t.Fatalf("watch on unknown game should 404, got %d", resp2.StatusCode)
	}
}

func TestWatchStreamsSnapshots(t *testing.T) {
	srv := newTestServer(t)
	gameID := createGame(t, srv)
	registerBot(t, srv, gameID, gunBotJSON(1, 1, 0, 10, "Bot0"))
	registerBot(t, srv, gameID, gunBotJSON(2, 1, 0, 10, "Bot1"))

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/watch?gameId=" + gameID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	// A late joiner gets the current state immediately.
	var first engine.Snapshot
	if _, data, err := conn.ReadMessage(); err != nil {
		t.Fatalf("read initial snapshot: %v", err)
	} else if err := json.Unmarshal(data, &first); err != nil {
		t.Fatalf("decode initial snapshot: %v", err)
	}
	if first.GameID != gameID || len(first.Bots) != 2 {
		t.Fatalf("unexpected initial snapshot: %+v", first)
	}

	// A processed turn pushes a fresh snapshot.
	postJSON(t, srv, "/turn", map[string]any{
		"gameId": gameID, "botIndex": 0,
		"actions": []map[string]any{
			{"type": "rotate", "newOrientation": 30},
			{"type": "rotate", "newOrientation": 60},
		},
	})

	var update engine.Snapshot
	if _, data, err := conn.ReadMessage(); err != nil {
		t.Fatalf("read turn snapshot: %v", err)
	} else if err := json.Unmarshal(data, &update); err != nil {
		t.Fatalf("decode turn snapshot: %v", err)
	}
	if update.CurrentBotIndex != 1 {
		t.Fatalf("snapshot should show the advanced pointer, got %d", update.CurrentBotIndex)
	}
	if update.Bots[0].Orientation != 60 {
		t.Fatalf("snapshot should show the new orientation, got %g", update.Bots[0].Orientation)
	}
}
