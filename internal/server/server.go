package server

import (
	"log"
	"math/rand/v2"
	"net/http"

	"werewolf/internal/config"

	"github.com/google/uuid"

	"gorm.io/gorm"
)

type Server struct {
	store GameStore
	bcast Broadcaster
	cfg   config.Config
	log   *dbStore // event log, nil without a database
	draw  func(n int) int
}

// New wires the engine. A nil connection keeps everything in memory, the
// setup tests run with.
func New(conn *gorm.DB, cfg config.Config) *Server {
	srv := &Server{
		bcast: newWSHub(),
		cfg:   cfg,
		draw:  rand.IntN,
	}
	if conn != nil {
		store := newDBStore(conn)
		srv.store = store
		srv.log = store
	} else {
		srv.store = newMemoryStore()
	}
	return srv
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/games", s.handleCreateGame)
	mux.HandleFunc("GET /api/games/", s.handleGameSubroutes)
	mux.HandleFunc("POST /api/games/", s.handleGameSubroutes)
	mux.HandleFunc("GET /ws/games/", s.handleWebsocket)
	return mux
}

func newGame(mayorNickname string) *Game {
	mayor := Player{
		ID:       uuid.NewString(),
		Nickname: mayorNickname,
		Roles:    []Role{RoleMayor},
	}
	return &Game{
		Code:      newGameCode(),
		CreatedAt: timeNowUTC(),
		Players:   []Player{mayor},
	}
}

// deliver fans events out after a committed write and mirrors them into the
// event log. Broadcast is best-effort: it can lose a subscriber, never a
// write.
func (s *Server) deliver(game *Game, deliveries []delivery) {
	snap := snapshot(game)
	for _, d := range deliveries {
		d.event.Game = snap
		s.bcast.Send(game.Code, d.playerID, d.event)
		if s.log != nil {
			s.log.appendEvent(game.Code, d.playerID, d.event)
		}
	}
	if len(deliveries) > 0 {
		log.Printf("events delivered game_code=%s count=%d", game.Code, len(deliveries))
	}
}
