package models

// Role is assigned when a round is dealt. The zero value marks a
// player who has not been dealt into the current game, such as a
// mid-round joiner waiting for the next deal.
type Role string

const (
	RoleCivilian Role = "civilian"
	RoleImposter Role = "imposter"
)

// Player is one participant in a room. Role, Vote, HasVoted and
// HasConfirmed are reassigned every round; Score accumulates across
// rounds for as long as the player stays in the room.
type Player struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Role         Role   `json:"role"`
	Score        int    `json:"score"`
	HasVoted     bool   `json:"hasVoted"`
	Vote         string `json:"vote,omitempty"`
	IsAdmin      bool   `json:"isAdmin"`
	HasConfirmed bool   `json:"hasConfirmed"`
}
