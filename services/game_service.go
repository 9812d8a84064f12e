package services

import (
	"math/rand"
	"strings"

	"imposter/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RoomNotifier is the transport collaborator the state machine fans
// state out through. Implementations must enqueue and return without
// blocking: every method is invoked while the room lock is held, which
// is what gives each connection a view sequence consistent with the
// commit order of actions. Delivery itself is fire-and-forget.
type RoomNotifier interface {
	// RoomUpdated delivers the new state to every connection in the room.
	RoomUpdated(room *models.Room)
	// RoomEnded tells every connection the room is gone.
	RoomEnded(room *models.Room, reason string)
	// PlayerKicked targets the one removed player.
	PlayerKicked(room *models.Room, player *models.Player)
}

// GameService is the room state machine: one method per player or
// admin action. Every method serializes against the room's lock,
// rejects stale or unauthorized actors with a sentinel error, and
// leaves the room untouched when it rejects.
type GameService struct {
	store    *RoomStore
	words    *WordBank
	notifier RoomNotifier
	logger   *zap.Logger
}

func NewGameService(store *RoomStore, words *WordBank, logger *zap.Logger) *GameService {
	return &GameService{
		store:  store,
		words:  words,
		logger: logger,
	}
}

// SetNotifier attaches the transport collaborator. The hub needs the
// service to dispatch actions and the service needs the hub to fan
// out, so the cycle is closed here after both are constructed.
func (s *GameService) SetNotifier(n RoomNotifier) {
	s.notifier = n
}

// ImposterCount returns how many imposters a round with playerCount
// players gets: one per three players, at least one, at most three.
func ImposterCount(playerCount int) int {
	return min(3, max(1, playerCount/3))
}

// newPlayer seats a player with no role; roles only exist once a round
// deals them, so a mid-round joiner is neither civilian nor imposter
// until the next deal.
func newPlayer(name string, isAdmin bool) *models.Player {
	return &models.Player{
		ID:      uuid.NewString(),
		Name:    name,
		IsAdmin: isAdmin,
	}
}

// CreateRoom allocates a room and seats its creator as admin.
func (s *GameService) CreateRoom(creatorName string) (*models.Room, *models.Player, error) {
	room, err := s.store.Create()
	if err != nil {
		s.logger.Error("room creation failed", zap.Error(err))
		return nil, nil, err
	}

	room.Lock()
	defer room.Unlock()

	player := newPlayer(creatorName, true)
	room.Players = append(room.Players, player)
	room.Touch()

	s.logger.Info("room created",
		zap.String("room", room.Code),
		zap.String("creator", creatorName),
	)

	s.roomUpdated(room)
	return room, player, nil
}

// JoinRoom seats a new player. The capacity and name checks run under
// the room lock, so two racing joins at capacity can never both be
// admitted.
func (s *GameService) JoinRoom(code, name string) (*models.Room, *models.Player, error) {
	room, err := s.room(code)
	if err != nil {
		return nil, nil, err
	}

	room.Lock()
	defer room.Unlock()

	if room.Closed {
		return nil, nil, models.ErrRoomNotFound
	}
	if len(room.Players) >= models.MaxPlayers {
		return nil, nil, models.ErrRoomFull
	}
	for _, p := range room.Players {
		if strings.EqualFold(p.Name, name) {
			return nil, nil, models.ErrNameTaken
		}
	}

	player := newPlayer(name, false)
	room.Players = append(room.Players, player)
	room.Touch()

	s.logger.Info("player joined",
		zap.String("room", room.Code),
		zap.String("player", name),
		zap.Int("players", len(room.Players)),
	)

	s.roomUpdated(room)
	return room, player, nil
}

// Reconnect resolves a previously issued player id so the gateway can
// re-attach the caller's connection. It never creates a player and
// never mutates game state.
func (s *GameService) Reconnect(code, playerID string) (*models.Room, *models.Player, error) {
	room, err := s.room(code)
	if err != nil {
		return nil, nil, err
	}

	room.Lock()
	defer room.Unlock()

	if room.Closed {
		return nil, nil, models.ErrRoomNotFound
	}
	player := room.FindPlayer(playerID)
	if player == nil {
		return nil, nil, models.ErrPlayerNotFound
	}
	room.Touch()
	return room, player, nil
}

// StartRound begins the first round: admin only, LOBBY only, at least
// three players.
func (s *GameService) StartRound(code, actorID string) (*models.Room, error) {
	return s.mutate(code, func(room *models.Room) error {
		if err := requireAdmin(room, actorID); err != nil {
			return err
		}
		if room.State != models.PhaseLobby {
			return models.ErrInvalidPhase
		}
		if len(room.Players) < 3 {
			return models.ErrNotEnoughPlayers
		}
		s.assignRoles(room)
		return nil
	})
}

// ConfirmRole records that a player has seen their role card.
func (s *GameService) ConfirmRole(code, actorID string) (*models.Room, error) {
	return s.mutate(code, func(room *models.Room) error {
		if room.State != models.PhaseRevealRole {
			return models.ErrInvalidPhase
		}
		player := room.FindPlayer(actorID)
		if player == nil {
			return models.ErrPlayerNotFound
		}
		player.HasConfirmed = true
		return nil
	})
}

// StartDiscussion shuffles a fresh speaking order and opens the
// discussion phase. Admin only.
func (s *GameService) StartDiscussion(code, actorID string) (*models.Room, error) {
	return s.mutate(code, func(room *models.Room) error {
		if err := requireAdmin(room, actorID); err != nil {
			return err
		}
		if room.State != models.PhaseRevealRole {
			return models.ErrInvalidPhase
		}

		order := make([]string, 0, len(room.Players))
		for _, p := range room.Players {
			order = append(order, p.ID)
		}
		rand.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})

		room.DiscussionOrder = order
		room.CurrentPlayerIndex = 0
		room.State = models.PhaseDiscussion
		return nil
	})
}

// FinishTurn passes the floor to the next speaker; past the last
// speaker the room moves to VOTING with a clean vote slate. The
// on-turn player may finish their own turn, and the admin may finish
// anyone's as moderator.
func (s *GameService) FinishTurn(code, actorID string) (*models.Room, error) {
	return s.mutate(code, func(room *models.Room) error {
		if room.State != models.PhaseDiscussion {
			return models.ErrInvalidPhase
		}
		actor := room.FindPlayer(actorID)
		if actor == nil {
			return models.ErrPlayerNotFound
		}

		onTurn := room.CurrentPlayerIndex < len(room.DiscussionOrder) &&
			room.DiscussionOrder[room.CurrentPlayerIndex] == actorID
		if !onTurn && !actor.IsAdmin {
			return models.ErrUnauthorized
		}

		if room.CurrentPlayerIndex < len(room.DiscussionOrder)-1 {
			room.CurrentPlayerIndex++
			return nil
		}

		room.State = models.PhaseVoting
		room.Votes = make(map[string]string)
		for _, p := range room.Players {
			p.HasVoted = false
			p.Vote = ""
		}
		return nil
	})
}

// CastVote records one vote for another player. Re-voting overwrites
// the earlier choice.
func (s *GameService) CastVote(code, actorID, targetID string) (*models.Room, error) {
	return s.mutate(code, func(room *models.Room) error {
		if room.State != models.PhaseVoting {
			return models.ErrInvalidPhase
		}
		voter := room.FindPlayer(actorID)
		if voter == nil {
			return models.ErrPlayerNotFound
		}
		if room.FindPlayer(targetID) == nil {
			return models.ErrPlayerNotFound
		}
		if actorID == targetID {
			return models.ErrSelfVote
		}

		voter.HasVoted = true
		voter.Vote = targetID
		room.Votes[actorID] = targetID
		return nil
	})
}

// AdvancePhase is the admin's "next" button: VOTING tabulates whatever
// votes exist and enters RESULTS; RESULTS rolls the room into the next
// round.
func (s *GameService) AdvancePhase(code, actorID string) (*models.Room, error) {
	return s.mutate(code, func(room *models.Room) error {
		if err := requireAdmin(room, actorID); err != nil {
			return err
		}

		switch room.State {
		case models.PhaseVoting:
			s.tabulate(room)
			return nil
		case models.PhaseResults:
			// Kicks may have shrunk the room below a playable size
			// since the round started.
			if len(room.Players) < 3 {
				return models.ErrNotEnoughPlayers
			}
			room.Round++
			s.assignRoles(room)
			return nil
		default:
			return models.ErrInvalidPhase
		}
	})
}

// KickPlayer removes a player from the room. Admin only; the admin
// cannot be kicked. The kicked player's own vote is purged, their slot
// in the speaking order is removed, and the turn pointer is clamped so
// turn-advance can never index past the end.
func (s *GameService) KickPlayer(code, actorID, targetID string) (*models.Room, error) {
	var kicked *models.Player

	room, err := s.mutate(code, func(room *models.Room) error {
		if err := requireAdmin(room, actorID); err != nil {
			return err
		}
		target := room.FindPlayer(targetID)
		if target == nil {
			return models.ErrPlayerNotFound
		}
		if target.IsAdmin {
			return models.ErrUnauthorized
		}

		for i, p := range room.Players {
			if p.ID == targetID {
				room.Players = append(room.Players[:i], room.Players[i+1:]...)
				break
			}
		}

		delete(room.Votes, targetID)

		for i, id := range room.DiscussionOrder {
			if id != targetID {
				continue
			}
			room.DiscussionOrder = append(room.DiscussionOrder[:i], room.DiscussionOrder[i+1:]...)
			if i < room.CurrentPlayerIndex {
				room.CurrentPlayerIndex--
			}
			break
		}
		if last := len(room.DiscussionOrder) - 1; room.CurrentPlayerIndex > last && last >= 0 {
			room.CurrentPlayerIndex = last
		}

		kicked = target
		if s.notifier != nil {
			s.notifier.PlayerKicked(room, target)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("player kicked",
		zap.String("room", room.Code),
		zap.String("player", kicked.Name),
	)
	return room, nil
}

// EndGame destroys the room and tells everyone. Admin only.
func (s *GameService) EndGame(code, actorID string) error {
	return s.endRoom(code, "Admin ended the game", func(room *models.Room) error {
		return requireAdmin(room, actorID)
	})
}

// ExpireRoom is the reaper's entry point: same teardown as EndGame,
// no actor.
func (s *GameService) ExpireRoom(code string) error {
	return s.endRoom(code, "Room closed due to inactivity", nil)
}

// Summary returns the public, role-free view served over HTTP.
func (s *GameService) Summary(code string) (models.RoomSummary, error) {
	room, err := s.room(code)
	if err != nil {
		return models.RoomSummary{}, err
	}
	room.RLock()
	defer room.RUnlock()
	if room.Closed {
		return models.RoomSummary{}, models.ErrRoomNotFound
	}
	return models.NewRoomSummary(room), nil
}

func (s *GameService) room(code string) (*models.Room, error) {
	room, ok := s.store.Get(code)
	if !ok {
		return nil, models.ErrRoomNotFound
	}
	return room, nil
}

// mutate runs fn with the room locked. On success it stamps activity
// and fans the new state out before the lock is released; on error the
// room is untouched and nothing is broadcast.
func (s *GameService) mutate(code string, fn func(*models.Room) error) (*models.Room, error) {
	room, err := s.room(code)
	if err != nil {
		return nil, err
	}

	room.Lock()
	defer room.Unlock()

	if room.Closed {
		return nil, models.ErrRoomNotFound
	}
	if err := fn(room); err != nil {
		return nil, err
	}

	room.Touch()
	s.roomUpdated(room)
	return room, nil
}

func (s *GameService) endRoom(code, reason string, authorize func(*models.Room) error) error {
	room, err := s.room(code)
	if err != nil {
		return err
	}

	room.Lock()
	defer room.Unlock()

	if room.Closed {
		return models.ErrRoomNotFound
	}
	if authorize != nil {
		if err := authorize(room); err != nil {
			return err
		}
	}

	room.Closed = true
	s.store.Delete(code)

	s.logger.Info("room ended",
		zap.String("room", room.Code),
		zap.String("reason", reason),
	)

	if s.notifier != nil {
		s.notifier.RoomEnded(room, reason)
	}
	return nil
}

func requireAdmin(room *models.Room, actorID string) error {
	actor := room.FindPlayer(actorID)
	if actor == nil {
		return models.ErrPlayerNotFound
	}
	if !actor.IsAdmin {
		return models.ErrUnauthorized
	}
	return nil
}

// assignRoles deals a fresh round: an unbiased shuffle picks the
// imposters, every confirmation and vote resets, and a new secret word
// is drawn. Callers hold the room lock.
func (s *GameService) assignRoles(room *models.Room) {
	shuffled := append([]*models.Player(nil), room.Players...)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	imposters := ImposterCount(len(shuffled))
	for i, p := range shuffled {
		if i < imposters {
			p.Role = models.RoleImposter
		} else {
			p.Role = models.RoleCivilian
		}
		p.HasConfirmed = false
		p.HasVoted = false
		p.Vote = ""
	}

	room.Votes = make(map[string]string)
	room.DiscussionOrder = nil
	room.CurrentPlayerIndex = 0
	room.CrewWins = false
	room.SecretWord = s.words.NextWord()
	room.State = models.PhaseRevealRole
}

// tabulate scores the round from whatever votes exist and enters
// RESULTS. Votes whose target has since left the room are skipped
// rather than scored. Callers hold the room lock.
func (s *GameService) tabulate(room *models.Room) {
	counts := make(map[string]int)
	for _, target := range room.Votes {
		if room.FindPlayer(target) == nil {
			continue
		}
		counts[target]++
	}

	// Crew wins iff every imposter drew at least one vote; the same
	// per-imposter check drives both the score and the flag.
	crewWins := true
	for _, p := range room.Players {
		if p.Role != models.RoleImposter {
			continue
		}
		if counts[p.ID] > 0 {
			p.Score -= 50
		} else {
			p.Score += 100
			crewWins = false
		}
	}

	for _, p := range room.Players {
		if p.Role == models.RoleImposter || p.Vote == "" {
			continue
		}
		target := room.FindPlayer(p.Vote)
		if target == nil {
			continue
		}
		if target.Role == models.RoleImposter {
			p.Score += 50
		} else {
			p.Score -= 30
		}
	}

	room.CrewWins = crewWins
	room.State = models.PhaseResults
}

func (s *GameService) roomUpdated(room *models.Room) {
	if s.notifier != nil {
		s.notifier.RoomUpdated(room)
	}
}
