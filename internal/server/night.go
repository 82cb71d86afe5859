package server

// chooseNight records the wolf's or healer's secret target for the current
// round. Re-choosing before the night completes overwrites the previous
// choice. When the night completes, the stage flips to day and a morning
// event goes to the whole game; the event itself carries no hint of who died.
func chooseNight(game *Game, playerID string, role Role, targetID string) ([]delivery, error) {
	if !game.Active || game.Stage != stageNight {
		return nil, conflictError("wrong_phase", "night choices are only legal at night")
	}
	if role != RoleWolf && role != RoleHealer {
		return nil, validationError("role", "role must be wolf or healer")
	}
	actor := findPlayer(game, playerID)
	if actor == nil || !actor.HasRole(role) || !isAlive(game, playerID) {
		return nil, unauthorizedError("player may not act in this role")
	}
	if target := findPlayer(game, targetID); target == nil || !isAlive(game, targetID) {
		return nil, invalidTargetError()
	}

	activity := currentActivity(game)
	if activity == nil || activity.nightComplete() {
		return nil, conflictError("wrong_phase", "no open night round")
	}
	target := targetID
	switch role {
	case RoleWolf:
		activity.Wolf = &target
	case RoleHealer:
		activity.Healer = &target
	}

	resolveNight(game, activity)
	if !activity.nightComplete() {
		return nil, nil
	}
	game.Stage = stageDay
	return []delivery{broadcastEvent(GameEvent{Type: eventMorning})}, nil
}

// resolveNight injects the healer sentinel once the wolf has chosen and no
// living healer remains, so a dead healer can never block progression.
func resolveNight(game *Game, activity *Activity) {
	if activity.Wolf == nil || activity.Healer != nil {
		return
	}
	if healerCanAct(game) {
		return
	}
	sentinel := healerAbsent
	activity.Healer = &sentinel
}

func healerCanAct(game *Game) bool {
	for _, player := range game.Players {
		if player.HasRole(RoleHealer) && isAlive(game, player.ID) {
			return true
		}
	}
	return false
}
