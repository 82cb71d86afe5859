package server

import (
	"fmt"
	"testing"
)

func lobbyGame(t *testing.T, n int) *Game {
	t.Helper()
	game := newGame("Mayor Smith")
	for i := 1; i < n; i++ {
		if _, err := joinGame(game, fmt.Sprintf("Player %d", i), game.Players[0].ID); err != nil {
			t.Fatalf("join: %v", err)
		}
	}
	return game
}

func countNightRole(game *Game, role Role) int {
	count := 0
	for i := range game.Players {
		if game.Players[i].HasRole(role) {
			count++
		}
	}
	return count
}

func TestStartAssignsRoles(t *testing.T) {
	game := lobbyGame(t, 6)
	deliveries, err := startGame(game, game.Players[0].ID, 6, fixedDraw(2, 4))
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if !game.Active || game.Stage != stageNight {
		t.Fatalf("expected active night game, got active=%v stage=%q", game.Active, game.Stage)
	}
	if game.StartedAt == nil {
		t.Fatalf("expected started_at to be set")
	}
	if len(game.Activities) != 1 {
		t.Fatalf("expected one open activity, got %d", len(game.Activities))
	}
	if countNightRole(game, RoleWolf) != 1 || countNightRole(game, RoleHealer) != 1 {
		t.Fatalf("expected exactly one wolf and one healer")
	}
	if !game.Players[2].HasRole(RoleWolf) || !game.Players[4].HasRole(RoleHealer) {
		t.Fatalf("expected wolf at seat 2 and healer at seat 4")
	}
	if countNightRole(game, RoleVillager) != 4 {
		t.Fatalf("expected four villagers, got %d", countNightRole(game, RoleVillager))
	}

	if len(deliveries) != len(game.Players) {
		t.Fatalf("expected one start_game event per player, got %d", len(deliveries))
	}
	for i, d := range deliveries {
		if d.event.Type != eventStartGame {
			t.Fatalf("expected event %q, got %q", eventStartGame, d.event.Type)
		}
		if d.playerID != game.Players[i].ID {
			t.Fatalf("expected start_game targeted per seat")
		}
		if d.event.Role != string(game.Players[i].NightRole()) {
			t.Fatalf("expected role %q for seat %d, got %q", game.Players[i].NightRole(), i, d.event.Role)
		}
	}
}

func TestStartCollisionShiftsHealer(t *testing.T) {
	game := lobbyGame(t, 6)
	if _, err := startGame(game, game.Players[0].ID, 6, fixedDraw(3, 3)); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !game.Players[3].HasRole(RoleWolf) || !game.Players[4].HasRole(RoleHealer) {
		t.Fatalf("expected collision to shift the healer one seat over")
	}
}

func TestStartCollisionWrapsAround(t *testing.T) {
	game := lobbyGame(t, 6)
	if _, err := startGame(game, game.Players[0].ID, 6, fixedDraw(5, 5)); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !game.Players[5].HasRole(RoleWolf) || !game.Players[0].HasRole(RoleHealer) {
		t.Fatalf("expected collision at the last seat to wrap the healer to seat 0")
	}
	if game.Players[0].NightRole() != RoleHealer {
		t.Fatalf("expected the mayor's night role to be healer")
	}
}

func TestStartRequiresMayor(t *testing.T) {
	game := lobbyGame(t, 6)
	_, err := startGame(game, game.Players[1].ID, 6, fixedDraw(0, 1))
	if derr := asDomainError(err); derr == nil || derr.Kind != kindUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestStartNotEnoughPlayers(t *testing.T) {
	game := lobbyGame(t, 4)
	_, err := startGame(game, game.Players[0].ID, 6, fixedDraw(0, 1))
	assertErrorCode(t, err, "not_enough_players")
}

func TestStartTwice(t *testing.T) {
	game := lobbyGame(t, 6)
	if _, err := startGame(game, game.Players[0].ID, 6, fixedDraw(0, 1)); err != nil {
		t.Fatalf("start: %v", err)
	}
	_, err := startGame(game, game.Players[0].ID, 6, fixedDraw(0, 1))
	assertErrorCode(t, err, "game_started")
}
