package server

// startGame assigns roles and opens the first night. The draw function
// returns a uniform index in [0, n); it is injected so the wolf/healer
// collision path is reachable in tests.
func startGame(game *Game, mayorID string, minPlayers int, draw func(n int) int) ([]delivery, error) {
	mayor := mayorOf(game)
	if mayor == nil || mayor.ID != mayorID {
		return nil, unauthorizedError("only the mayor may start the game")
	}
	if game.Active {
		return nil, conflictError("game_started", "game already started")
	}
	if len(game.Players) < minPlayers {
		return nil, conflictError("not_enough_players", "not enough players to start")
	}

	assignRoles(game, draw)

	now := timeNowUTC()
	game.Active = true
	game.StartedAt = &now
	game.Stage = stageNight
	game.Activities = append(game.Activities, Activity{})

	deliveries := make([]delivery, 0, len(game.Players))
	for i := range game.Players {
		player := &game.Players[i]
		deliveries = append(deliveries, targetedEvent(player.ID, GameEvent{
			Type: eventStartGame,
			Role: string(player.NightRole()),
		}))
	}
	return deliveries, nil
}

// assignRoles draws two independent indices; on collision the healer shifts
// one seat over, so wolf and healer are always distinct. Everyone without a
// night role becomes a villager, the mayor included.
func assignRoles(game *Game, draw func(n int) int) {
	n := len(game.Players)
	w := draw(n)
	h := draw(n)
	if w == h {
		h = (h + 1) % n
	}
	game.Players[w].Roles = append(game.Players[w].Roles, RoleWolf)
	game.Players[h].Roles = append(game.Players[h].Roles, RoleHealer)
	for i := range game.Players {
		if i == w || i == h {
			continue
		}
		game.Players[i].Roles = append(game.Players[i].Roles, RoleVillager)
	}
}
