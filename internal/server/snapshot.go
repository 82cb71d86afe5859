package server

import "time"

// snapshot is the public view of a game, attached to every event and served
// by the fetch endpoint. Night choices and role assignments stay hidden
// while the game is active; clients see only derived alive/evicted status.
// Everything is revealed once the game finishes.
func snapshot(game *Game) map[string]any {
	players := make([]map[string]any, 0, len(game.Players))
	for i := range game.Players {
		player := &game.Players[i]
		entry := map[string]any{
			"id":       player.ID,
			"nickname": player.Nickname,
			"mayor":    player.HasRole(RoleMayor),
			"alive":    isAlive(game, player.ID),
			"evicted":  isEvicted(game, player.ID),
		}
		if !game.Active && game.Winner != "" {
			entry["roles"] = player.Roles
		}
		players = append(players, entry)
	}

	pending := make([]map[string]any, 0, len(game.Pending))
	for i := range game.Pending {
		pending = append(pending, playerPayload(&game.Pending[i]))
	}

	snap := map[string]any{
		"code":        game.Code,
		"created_at":  game.CreatedAt.UTC().Format(time.RFC3339),
		"active":      game.Active,
		"stage":       game.Stage,
		"players":     players,
		"pending":     pending,
		"round":       len(game.Activities),
		"alive_count": len(alivePlayers(game)),
		"winner":      game.Winner,
		"version":     game.Version,
		"can_join":    !game.Active,
	}
	if game.StartedAt != nil {
		snap["started_at"] = game.StartedAt.UTC().Format(time.RFC3339)
	}
	if game.FinishedAt != nil {
		snap["finished_at"] = game.FinishedAt.UTC().Format(time.RFC3339)
	}
	if activity := currentActivity(game); activity != nil && game.Active {
		snap["votes"] = voteView(activity)
		snap["vote_count"] = len(activity.Votes)
	}
	if !game.Active && game.Winner != "" {
		snap["activities"] = game.Activities
	}
	return snap
}

// voteView copies the public day votes; day voting is open ballot.
func voteView(activity *Activity) map[string]string {
	votes := make(map[string]string, len(activity.Votes))
	for voter, target := range activity.Votes {
		votes[voter] = target
	}
	return votes
}
