package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Broadcaster fans game events out to participants. An empty playerID means
// every registered connection for the game. Delivery is at-most-once and
// best-effort; failures never surface to the mutation path.
type Broadcaster interface {
	Send(gameCode, playerID string, event GameEvent)
}

// wsHub is the websocket Broadcaster: an injected per-process table of
// code -> playerID -> connections. A managed pub/sub relay could replace it
// behind the same interface.
type wsHub struct {
	mu    sync.Mutex
	games map[string]map[string]map[*websocket.Conn]struct{}
}

func newWSHub() *wsHub {
	return &wsHub{games: make(map[string]map[string]map[*websocket.Conn]struct{})}
}

func (h *wsHub) Open(gameCode, playerID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	game := h.games[gameCode]
	if game == nil {
		game = make(map[string]map[*websocket.Conn]struct{})
		h.games[gameCode] = game
	}
	conns := game[playerID]
	if conns == nil {
		conns = make(map[*websocket.Conn]struct{})
		game[playerID] = conns
	}
	conns[conn] = struct{}{}
}

func (h *wsHub) Remove(gameCode, playerID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	game := h.games[gameCode]
	if game == nil {
		return
	}
	delete(game[playerID], conn)
	_ = conn.Close()
	if len(game[playerID]) == 0 {
		delete(game, playerID)
	}
	if len(game) == 0 {
		delete(h.games, gameCode)
	}
}

func (h *wsHub) Send(gameCode, playerID string, event GameEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.Lock()
	type target struct {
		playerID string
		conn     *websocket.Conn
	}
	var conns []target
	if game := h.games[gameCode]; game != nil {
		if playerID == "" {
			for pid, set := range game {
				for conn := range set {
					conns = append(conns, target{pid, conn})
				}
			}
		} else {
			for conn := range game[playerID] {
				conns = append(conns, target{playerID, conn})
			}
		}
	}
	h.mu.Unlock()

	for _, t := range conns {
		if err := t.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("ws write failed game_code=%s player_id=%s error=%v", gameCode, t.playerID, err)
			h.Remove(gameCode, t.playerID, t.conn)
		}
	}
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	code, ok := parseWebsocketPath(r.URL.Path)
	if !ok || !validGameCode(code) {
		http.NotFound(w, r)
		return
	}
	game, err := s.store.Get(code)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	playerID := r.URL.Query().Get("player_id")

	hub, ok := s.bcast.(*wsHub)
	if !ok {
		http.Error(w, "websocket transport not configured", http.StatusNotImplemented)
		return
	}
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	log.Printf("ws connected game_code=%s player_id=%s remote=%s", code, playerID, r.RemoteAddr)
	hub.Open(code, playerID, conn)
	hub.Send(code, playerID, GameEvent{Type: "snapshot", Game: snapshot(game)})
	go s.readWS(hub, code, playerID, conn)
}

func (s *Server) readWS(hub *wsHub, code, playerID string, conn *websocket.Conn) {
	defer hub.Remove(code, playerID, conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			log.Printf("ws disconnected game_code=%s player_id=%s error=%v", code, playerID, err)
			return
		}
	}
}
