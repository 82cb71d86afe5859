package server

import "time"

const (
	stageNight = "night"
	stageDay   = "day"
)

const (
	winnerVillage = "village"
	winnerWolf    = "wolf"
)

type Role string

const (
	RoleMayor    Role = "mayor"
	RoleWolf     Role = "wolf"
	RoleHealer   Role = "healer"
	RoleVillager Role = "villager"
)

// Sentinels stored in Activity pointer fields. Player IDs are UUIDs, so these
// can never collide with a real target.
const (
	healerAbsent = "-" // no living healer left to choose; night completes without one
	noEviction   = "-" // day vote tied; nobody evicted
)

// Game is the aggregate root, one per 4-character game code. Version is the
// optimistic-concurrency token: it increases by exactly one per successful
// store write and gates every conditional update.
type Game struct {
	Code       string     `json:"code"`
	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Active     bool       `json:"active"`
	Stage      string     `json:"stage,omitempty"`
	Players    []Player   `json:"players"`
	Pending    []Player   `json:"pending,omitempty"`
	Activities []Activity `json:"activities"`
	Winner     string     `json:"winner,omitempty"`
	Version    int64      `json:"version"`
}

type Player struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Roles    []Role `json:"roles"`
}

func (p *Player) HasRole(role Role) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// NightRole returns the role a player is told about at start: wolf or healer
// if they drew one, villager otherwise. The mayor is never announced as mayor
// since everyone already knows.
func (p *Player) NightRole() Role {
	if p.HasRole(RoleWolf) {
		return RoleWolf
	}
	if p.HasRole(RoleHealer) {
		return RoleHealer
	}
	return RoleVillager
}

// Activity records one night+day round. Nil pointers mean "not yet chosen" or
// "day not yet resolved"; the sentinel constants above mark the explicit
// nobody cases.
type Activity struct {
	Wolf    *string           `json:"wolf,omitempty"`
	Healer  *string           `json:"healer,omitempty"`
	Votes   map[string]string `json:"votes,omitempty"`
	Evicted *string           `json:"evicted,omitempty"`
}

func (a *Activity) nightComplete() bool {
	return a.Wolf != nil && a.Healer != nil
}

func currentActivity(game *Game) *Activity {
	if len(game.Activities) == 0 {
		return nil
	}
	return &game.Activities[len(game.Activities)-1]
}

func findPlayer(game *Game, playerID string) *Player {
	for i := range game.Players {
		if game.Players[i].ID == playerID {
			return &game.Players[i]
		}
	}
	return nil
}

func findPending(game *Game, playerID string) *Player {
	for i := range game.Pending {
		if game.Pending[i].ID == playerID {
			return &game.Pending[i]
		}
	}
	return nil
}

func mayorOf(game *Game) *Player {
	for i := range game.Players {
		if game.Players[i].HasRole(RoleMayor) {
			return &game.Players[i]
		}
	}
	return nil
}

// isDead reports whether a completed night killed the player without the
// healer matching the wolf's choice. Incomplete nights are skipped so the
// healer can still save the current victim.
func isDead(game *Game, playerID string) bool {
	for i := range game.Activities {
		activity := &game.Activities[i]
		if !activity.nightComplete() {
			continue
		}
		if *activity.Wolf == playerID && *activity.Healer != playerID {
			return true
		}
	}
	return false
}

func isEvicted(game *Game, playerID string) bool {
	for i := range game.Activities {
		activity := &game.Activities[i]
		if activity.Evicted != nil && *activity.Evicted == playerID {
			return true
		}
	}
	return false
}

func isAlive(game *Game, playerID string) bool {
	return !isDead(game, playerID) && !isEvicted(game, playerID)
}

func alivePlayers(game *Game) []Player {
	alive := make([]Player, 0, len(game.Players))
	for _, player := range game.Players {
		if isAlive(game, player.ID) {
			alive = append(alive, player)
		}
	}
	return alive
}

// cloneGame deep-copies the aggregate so retry attempts and store reads never
// alias shared state.
func cloneGame(game *Game) *Game {
	if game == nil {
		return nil
	}
	clone := *game
	clone.Players = clonePlayers(game.Players)
	clone.Pending = clonePlayers(game.Pending)
	clone.Activities = make([]Activity, len(game.Activities))
	for i, activity := range game.Activities {
		clone.Activities[i] = cloneActivity(activity)
	}
	if game.StartedAt != nil {
		at := *game.StartedAt
		clone.StartedAt = &at
	}
	if game.FinishedAt != nil {
		at := *game.FinishedAt
		clone.FinishedAt = &at
	}
	return &clone
}

func clonePlayers(players []Player) []Player {
	if players == nil {
		return nil
	}
	clone := make([]Player, len(players))
	for i, player := range players {
		clone[i] = player
		clone[i].Roles = append([]Role(nil), player.Roles...)
	}
	return clone
}

func cloneActivity(activity Activity) Activity {
	clone := activity
	if activity.Wolf != nil {
		wolf := *activity.Wolf
		clone.Wolf = &wolf
	}
	if activity.Healer != nil {
		healer := *activity.Healer
		clone.Healer = &healer
	}
	if activity.Evicted != nil {
		evicted := *activity.Evicted
		clone.Evicted = &evicted
	}
	if activity.Votes != nil {
		clone.Votes = make(map[string]string, len(activity.Votes))
		for voter, target := range activity.Votes {
			clone.Votes[voter] = target
		}
	}
	return clone
}

func timeNowUTC() time.Time {
	return time.Now().UTC()
}
