package server

// castVote records one public day vote. Once every living player has voted
// the round tallies immediately: eviction, win evaluation, and either a
// terminal game_over or the flip back to night with a fresh activity.
func castVote(game *Game, voterID, targetID string) ([]delivery, error) {
	if !game.Active || game.Stage != stageDay {
		return nil, conflictError("wrong_phase", "votes are only legal during the day")
	}
	activity := currentActivity(game)
	if activity == nil || !activity.nightComplete() {
		return nil, conflictError("activity_incomplete", "night activity not yet complete")
	}
	if activity.Evicted != nil {
		return nil, conflictError("wrong_phase", "day already resolved")
	}
	voter := findPlayer(game, voterID)
	if voter == nil || !isAlive(game, voterID) {
		return nil, unauthorizedError("voter may not vote")
	}
	if target := findPlayer(game, targetID); target == nil || !isAlive(game, targetID) {
		return nil, invalidTargetError()
	}
	if activity.Votes == nil {
		activity.Votes = make(map[string]string)
	}
	if _, voted := activity.Votes[voterID]; voted {
		return nil, conflictError("duplicate_vote", "vote already cast this round")
	}
	activity.Votes[voterID] = targetID

	if len(activity.Votes) < len(alivePlayers(game)) {
		return nil, nil
	}
	return tallyVotes(game, activity), nil
}

// tallyVotes applies the tie-break policy: any equal top-two count, N-way
// ties included, means nobody is evicted.
func tallyVotes(game *Game, activity *Activity) []delivery {
	counts := make(map[string]int)
	for _, target := range activity.Votes {
		counts[target]++
	}
	top, topCount, tied := "", 0, false
	for target, count := range counts {
		switch {
		case count > topCount:
			top, topCount, tied = target, count, false
		case count == topCount:
			tied = true
		}
	}

	evicted := noEviction
	if !tied {
		evicted = top
	}
	activity.Evicted = &evicted
	return evaluateWin(game, evicted)
}

func evaluateWin(game *Game, evicted string) []delivery {
	if evicted != noEviction {
		if player := findPlayer(game, evicted); player != nil && player.HasRole(RoleWolf) {
			return finishGame(game, winnerVillage)
		}
	}
	if len(alivePlayers(game)) <= 3 {
		return finishGame(game, winnerWolf)
	}

	game.Stage = stageNight
	game.Activities = append(game.Activities, Activity{})
	event := GameEvent{Type: eventEviction}
	if evicted != noEviction {
		event.Player = playerPayload(findPlayer(game, evicted))
	}
	return []delivery{broadcastEvent(event)}
}

func finishGame(game *Game, winner string) []delivery {
	now := timeNowUTC()
	game.Active = false
	game.Winner = winner
	game.FinishedAt = &now
	game.Stage = ""
	return []delivery{broadcastEvent(GameEvent{Type: eventGameOver, Winner: winner})}
}
