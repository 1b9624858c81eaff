// Package api is the HTTP/JSON binding of the engine, plus a websocket
// spectator feed. Transport concerns stop here; all rules live in the engine.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"agentbattle/internal/engine"
	"agentbattle/internal/weapons"
)

// API exposes the engine's operations as handlers.
type API struct {
	engine *engine.Engine
	hub    *Hub
}

func New(eng *engine.Engine) *API {
	a := &API{
		engine: eng,
		hub:    NewHub(),
	}
	eng.OnUpdate = a.hub.Broadcast
	return a
}

// Register wires every route onto the mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /createGame", a.CreateGame)
	mux.HandleFunc("POST /registerBot", a.RegisterBot)
	mux.HandleFunc("POST /turn", a.Turn)
	mux.HandleFunc("GET /getGameState/{gameId}", a.GetGameState)
	mux.HandleFunc("POST /finishGame", a.FinishGame)
	mux.HandleFunc("POST /syncOnChain", a.SyncOnChain)
	mux.HandleFunc("GET /weapons", a.ListWeapons)
	mux.HandleFunc("GET /weapons/{id}", a.GetWeapon)
	mux.HandleFunc("GET /ws/watch", a.Watch)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps engine errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrGameNotFound),
		errors.Is(err, engine.ErrBotNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrGameInactive),
		errors.Is(err, engine.ErrNotYourTurn),
		errors.Is(err, engine.ErrAlreadyFinished):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrSettlement):
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func (a *API) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BetAmount float64 `json:"betAmount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}

	gameID, err := a.engine.CreateGame(r.Context(), req.BetAmount)
	if err != nil {
		log.Println("create game:", err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"gameId":    gameID,
		"betAmount": req.BetAmount,
	})
}

func (a *API) RegisterBot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GameID string         `json:"gameId"`
		Bot    engine.BotSpec `json:"bot"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}

	index, err := a.engine.RegisterBot(r.Context(), req.GameID, req.Bot)
	if err != nil {
		log.Println("register bot:", err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"botIndex": index,
	})
}

func (a *API) Turn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GameID   string          `json:"gameId"`
		BotIndex int             `json:"botIndex"`
		Actions  []engine.Action `json:"actions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}

	result, err := a.engine.Turn(r.Context(), req.GameID, req.BotIndex, req.Actions)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (a *API) GetGameState(w http.ResponseWriter, r *http.Request) {
	snapshot, err := a.engine.GameState(r.PathValue("gameId"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (a *API) FinishGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GameID string `json:"gameId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}

	winner, err := a.engine.FinishGame(r.Context(), req.GameID)
	if err != nil {
		log.Println("finish game:", err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":              true,
		"winningBotIndex": winner,
	})
}

func (a *API) SyncOnChain(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GameID string `json:"gameId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}

	if err := a.engine.SyncOnChain(r.Context(), req.GameID); err != nil {
		log.Println("sync on chain:", err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (a *API) ListWeapons(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, weapons.All())
}

func (a *API) GetWeapon(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid weapon id")
		return
	}
	weapon, ok := weapons.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "weapon not found")
		return
	}
	writeJSON(w, http.StatusOK, weapon)
}
