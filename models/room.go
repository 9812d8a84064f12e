package models

import (
	"sync"
	"time"
)

// Room is one isolated game session, keyed by a 4-digit code. All
// field access must happen while holding the room's lock; the lock is
// the serialization point for every action against the room.
type Room struct {
	Code               string
	Players            []*Player
	State              Phase
	Round              int
	SecretWord         string
	Votes              map[string]string
	DiscussionOrder    []string
	CurrentPlayerIndex int

	// CrewWins is derived during tabulation and only meaningful while
	// State == PhaseResults.
	CrewWins bool

	// Closed marks a room that has been removed from the store while
	// another goroutine may still hold a pointer to it.
	Closed bool

	LastActive time.Time

	mu sync.RWMutex
}

func NewRoom(code string) *Room {
	return &Room{
		Code:       code,
		Players:    make([]*Player, 0, MaxPlayers),
		State:      PhaseLobby,
		Round:      1,
		Votes:      make(map[string]string),
		LastActive: time.Now(),
	}
}

// MaxPlayers is the room capacity, enforced at join time.
const MaxPlayers = 15

func (r *Room) Lock()    { r.mu.Lock() }
func (r *Room) Unlock()  { r.mu.Unlock() }
func (r *Room) RLock()   { r.mu.RLock() }
func (r *Room) RUnlock() { r.mu.RUnlock() }

// Touch records activity for the idle reaper. Callers hold the lock.
func (r *Room) Touch() {
	r.LastActive = time.Now()
}

// FindPlayer returns the player with the given id, or nil. Callers
// hold the lock.
func (r *Room) FindPlayer(id string) *Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Admin returns the room creator. Callers hold the lock.
func (r *Room) Admin() *Player {
	for _, p := range r.Players {
		if p.IsAdmin {
			return p
		}
	}
	return nil
}
