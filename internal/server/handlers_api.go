package server

import (
	"log"
	"net/http"
)

type createRequest struct {
	Nickname string `json:"nickname" validate:"required,nickname"`
}

type joinGameRequest struct {
	Nickname      string `json:"nickname" validate:"required,nickname"`
	InviteMayorID string `json:"invite_mayor_id,omitempty"`
}

type admitRequest struct {
	MayorID  string `json:"mayor_id" validate:"required"`
	TargetID string `json:"target_id" validate:"required"`
	Decision string `json:"decision" validate:"required,oneof=admit deny"`
}

type startRequest struct {
	MayorID string `json:"mayor_id" validate:"required"`
}

type nightRequest struct {
	PlayerID string `json:"player_id" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=wolf healer"`
	TargetID string `json:"target_id" validate:"required"`
}

type dayRequest struct {
	VoterID  string `json:"voter_id" validate:"required"`
	TargetID string `json:"target_id" validate:"required"`
}

func bindRequest(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := readJSON(r.Body, req); err != nil {
		writeDomainError(w, validationError("body", "invalid request body"))
		return false
	}
	if err := requestValidator().Struct(req); err != nil {
		writeDomainError(w, validationError("body", "invalid request payload"))
		return false
	}
	return true
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !bindRequest(w, r, &req) {
		return
	}
	game, err := s.createGame(req.Nickname)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	log.Printf("game created game_code=%s mayor=%s", game.Code, game.Players[0].Nickname)
	writeJSON(w, http.StatusCreated, map[string]any{
		"code":      game.Code,
		"player_id": game.Players[0].ID,
		"game":      snapshot(game),
	})
}

// handleGameSubroutes is the single dispatch surface for per-game actions:
// code format first, then the action table, then the operation's own checks.
func (s *Server) handleGameSubroutes(w http.ResponseWriter, r *http.Request) {
	code, action, ok := parseGamePath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if !validGameCode(code) {
		writeDomainError(w, validationError("code", "game code must be 4 uppercase characters"))
		return
	}
	if r.Method == http.MethodGet {
		if action != "" {
			http.NotFound(w, r)
			return
		}
		s.handleGetGame(w, r, code)
		return
	}

	switch action {
	case "join":
		s.handleJoin(w, r, code)
	case "admit":
		s.handleAdmit(w, r, code)
	case "start":
		s.handleStart(w, r, code)
	case "night":
		s.handleNight(w, r, code)
	case "day":
		s.handleDay(w, r, code)
	default:
		writeDomainError(w, notFoundError("invalid_action", "unknown action"))
	}
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request, code string) {
	game, err := s.store.Get(code)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, snapshot(game))
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request, code string) {
	var req joinGameRequest
	if !bindRequest(w, r, &req) {
		return
	}
	game, deliveries, err := s.mutate(code, func(game *Game) ([]delivery, error) {
		return joinGame(game, req.Nickname, req.InviteMayorID)
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.deliver(game, deliveries)
	joined := joinedPlayer(game, req.Nickname)
	log.Printf("player joined game_code=%s player_id=%s nickname=%s", code, joined["id"], req.Nickname)
	writeJSON(w, http.StatusOK, map[string]any{
		"player": joined,
		"game":   snapshot(game),
	})
}

func (s *Server) handleAdmit(w http.ResponseWriter, r *http.Request, code string) {
	var req admitRequest
	if !bindRequest(w, r, &req) {
		return
	}
	game, deliveries, err := s.mutate(code, func(game *Game) ([]delivery, error) {
		return admitPlayer(game, req.MayorID, req.TargetID, req.Decision == "admit")
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.deliver(game, deliveries)
	log.Printf("admission resolved game_code=%s target_id=%s decision=%s", code, req.TargetID, req.Decision)
	writeJSON(w, http.StatusOK, map[string]any{"game": snapshot(game)})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request, code string) {
	var req startRequest
	if !bindRequest(w, r, &req) {
		return
	}
	game, deliveries, err := s.mutate(code, func(game *Game) ([]delivery, error) {
		return startGame(game, req.MayorID, s.cfg.MinPlayers, s.draw)
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.deliver(game, deliveries)
	log.Printf("game started game_code=%s players=%d", code, len(game.Players))
	writeJSON(w, http.StatusOK, map[string]any{"game": snapshot(game)})
}

func (s *Server) handleNight(w http.ResponseWriter, r *http.Request, code string) {
	var req nightRequest
	if !bindRequest(w, r, &req) {
		return
	}
	game, deliveries, err := s.mutate(code, func(game *Game) ([]delivery, error) {
		return chooseNight(game, req.PlayerID, Role(req.Role), req.TargetID)
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.deliver(game, deliveries)
	log.Printf("night choice recorded game_code=%s role=%s stage=%s", code, req.Role, game.Stage)
	writeJSON(w, http.StatusOK, map[string]any{"game": snapshot(game)})
}

func (s *Server) handleDay(w http.ResponseWriter, r *http.Request, code string) {
	var req dayRequest
	if !bindRequest(w, r, &req) {
		return
	}
	game, deliveries, err := s.mutate(code, func(game *Game) ([]delivery, error) {
		return castVote(game, req.VoterID, req.TargetID)
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.deliver(game, deliveries)
	log.Printf("vote recorded game_code=%s voter_id=%s stage=%s", code, req.VoterID, game.Stage)
	writeJSON(w, http.StatusOK, map[string]any{"game": snapshot(game)})
}

// joinedPlayer finds the entry the join just produced, in the roster for
// invite auto-admits, in the queue otherwise.
func joinedPlayer(game *Game, nickname string) map[string]any {
	normalized := normalizeText(nickname)
	for i := range game.Pending {
		if game.Pending[i].Nickname == normalized {
			return playerPayload(&game.Pending[i])
		}
	}
	for i := range game.Players {
		if game.Players[i].Nickname == normalized {
			return playerPayload(&game.Players[i])
		}
	}
	return nil
}
