package server

// Event types delivered over the Broadcaster. Every event carries the full
// redacted game snapshot so clients never need to diff.
const (
	eventJoinRequest  = "join_request"
	eventInviteAccept = "invite_accept"
	eventAdmission    = "admission"
	eventStartGame    = "start_game"
	eventMorning      = "morning"
	eventEviction     = "eviction"
	eventGameOver     = "game_over"
)

type GameEvent struct {
	Type     string         `json:"type"`
	Game     map[string]any `json:"game"`
	Player   map[string]any `json:"player,omitempty"`
	Role     string         `json:"role,omitempty"`
	Admitted *bool          `json:"admitted,omitempty"`
	Winner   string         `json:"winner,omitempty"`
}

// delivery pairs an event with its audience. An empty playerID broadcasts to
// every registered participant of the game.
type delivery struct {
	playerID string
	event    GameEvent
}

func broadcastEvent(event GameEvent) delivery {
	return delivery{event: event}
}

func targetedEvent(playerID string, event GameEvent) delivery {
	return delivery{playerID: playerID, event: event}
}

func playerPayload(player *Player) map[string]any {
	if player == nil {
		return nil
	}
	return map[string]any{
		"id":       player.ID,
		"nickname": player.Nickname,
	}
}
