package server

import (
	"log"
	"strings"

	"github.com/google/uuid"
)

// joinGame appends a new player to the admission queue, or straight to the
// roster when the join carries the mayor's invite ID. Pure: mutates only the
// passed copy and returns the events to deliver after the write commits.
func joinGame(game *Game, nickname, inviteMayorID string) ([]delivery, error) {
	trimmed, err := validateNickname(nickname)
	if err != nil {
		return nil, err
	}
	if game.Active {
		return nil, conflictError("game_started", "game already started")
	}
	if nicknameTaken(game, trimmed) {
		return nil, conflictError("duplicate_nickname", "nickname already taken")
	}
	mayor := mayorOf(game)
	if mayor == nil {
		log.Printf("game has no mayor game_code=%s", game.Code)
		return nil, unexpectedError()
	}

	player := Player{ID: uuid.NewString(), Nickname: trimmed}
	if inviteMayorID != "" && inviteMayorID == mayor.ID {
		game.Players = append(game.Players, player)
		return []delivery{targetedEvent(mayor.ID, GameEvent{
			Type:   eventInviteAccept,
			Player: playerPayload(&player),
		})}, nil
	}

	game.Pending = append(game.Pending, player)
	return []delivery{targetedEvent(mayor.ID, GameEvent{
		Type:   eventJoinRequest,
		Player: playerPayload(&player),
	})}, nil
}

// admitPlayer resolves one pending join. Admitting an already-admitted player
// is an idempotent success; denying one is a conflict.
func admitPlayer(game *Game, mayorID, targetID string, admit bool) ([]delivery, error) {
	mayor := mayorOf(game)
	if mayor == nil || mayor.ID != mayorID {
		return nil, unauthorizedError("only the mayor may admit players")
	}

	pending := findPending(game, targetID)
	if pending == nil {
		if findPlayer(game, targetID) != nil {
			if admit {
				return nil, nil
			}
			return nil, conflictError("already_admitted", "player already admitted")
		}
		return nil, notFoundError("player_not_found", "no pending join for that player")
	}

	player := *pending
	game.Pending = removePending(game.Pending, targetID)
	if len(game.Pending) == 0 {
		game.Pending = nil
	}
	if admit {
		game.Players = append(game.Players, player)
	}
	admitted := admit
	return []delivery{targetedEvent(player.ID, GameEvent{
		Type:     eventAdmission,
		Player:   playerPayload(&player),
		Admitted: &admitted,
	})}, nil
}

func nicknameTaken(game *Game, nickname string) bool {
	for _, player := range game.Players {
		if strings.EqualFold(player.Nickname, nickname) {
			return true
		}
	}
	for _, player := range game.Pending {
		if strings.EqualFold(player.Nickname, nickname) {
			return true
		}
	}
	return false
}

func removePending(pending []Player, playerID string) []Player {
	out := pending[:0]
	for _, player := range pending {
		if player.ID != playerID {
			out = append(out, player)
		}
	}
	return out
}
