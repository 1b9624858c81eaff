package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"agentbattle/internal/engine"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

type watcher struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans game snapshots out to websocket spectators, grouped by game ID.
// Broadcast never blocks: a watcher that cannot keep up just misses frames.
type Hub struct {
	mu       sync.Mutex
	watchers map[string]map[*watcher]bool
}

func NewHub() *Hub {
	return &Hub{watchers: make(map[string]map[*watcher]bool)}
}

func (h *Hub) add(gameID string, wt *watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.watchers[gameID] == nil {
		h.watchers[gameID] = make(map[*watcher]bool)
	}
	h.watchers[gameID][wt] = true
}

func (h *Hub) remove(gameID string, wt *watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.watchers[gameID]; ok {
		if set[wt] {
			delete(set, wt)
			close(wt.send)
		}
		if len(set) == 0 {
			delete(h.watchers, gameID)
		}
	}
}

// Broadcast pushes a snapshot to everyone watching its game.
func (h *Hub) Broadcast(s engine.Snapshot) {
	data, err := json.Marshal(s)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for wt := range h.watchers[s.GameID] {
		select {
		case wt.send <- data:
		default:
		}
	}
}

// Watch upgrades the connection and streams state snapshots for one game.
// The current state is sent immediately so a late joiner is not blank until
// the next turn.
func (a *API) Watch(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("gameId")
	if gameID == "" {
		writeError(w, http.StatusBadRequest, "missing gameId")
		return
	}

	snapshot, err := a.engine.GameState(gameID)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	wt := &watcher{
		conn: conn,
		send: make(chan []byte, 16),
	}
	a.hub.add(gameID, wt)

	if data, err := json.Marshal(snapshot); err == nil {
		wt.send <- data
	}

	go wt.writePump()
	a.readPump(gameID, wt)
}

func (wt *watcher) writePump() {
	defer wt.conn.Close()
	for msg := range wt.send {
		if err := wt.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}

// readPump only exists to notice the client going away.
func (a *API) readPump(gameID string, wt *watcher) {
	defer func() {
		a.hub.remove(gameID, wt)
		wt.conn.Close()
	}()
	for {
		if _, _, err := wt.conn.ReadMessage(); err != nil {
			return
		}
	}
}
