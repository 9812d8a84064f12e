package services

import (
	"math/rand"
	"strconv"
	"sync"

	"imposter/models"
)

// roomCodeAttempts bounds code generation. With 9000 possible codes a
// collision streak this long means the process is effectively out of
// codes; creation fails instead of looping forever.
const roomCodeAttempts = 10000

// RoomStore owns the mapping from 4-digit invite codes to live rooms.
// One store is constructed per process and handed to whatever needs
// it; there is no package-level instance.
type RoomStore struct {
	rooms map[string]*models.Room
	mu    sync.RWMutex
}

func NewRoomStore() *RoomStore {
	return &RoomStore{
		rooms: make(map[string]*models.Room),
	}
}

// Create allocates a fresh room in LOBBY under a code no live room
// shares. Codes are regenerated on collision rather than overwritten,
// so two games can never silently merge.
func (s *RoomStore) Create() (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := 0; i < roomCodeAttempts; i++ {
		code := strconv.Itoa(1000 + rand.Intn(9000))
		if _, taken := s.rooms[code]; taken {
			continue
		}
		room := models.NewRoom(code)
		s.rooms[code] = room
		return room, nil
	}

	return nil, models.ErrNoFreeCodes
}

func (s *RoomStore) Get(code string) (*models.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[code]
	return room, ok
}

func (s *RoomStore) Delete(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, code)
}

// Codes returns a snapshot of live room codes, used by the reaper.
func (s *RoomStore) Codes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	codes := make([]string, 0, len(s.rooms))
	for code := range s.rooms {
		codes = append(codes, code)
	}
	return codes
}

func (s *RoomStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}
