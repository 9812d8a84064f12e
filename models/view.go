package models

// PlayerView is the per-viewer projection of a player. Role and Vote
// are withheld unless the viewer is the player themselves or the room
// has reached RESULTS, where both become public.
type PlayerView struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Score        int    `json:"score"`
	HasVoted     bool   `json:"hasVoted"`
	HasConfirmed bool   `json:"hasConfirmed"`
	IsAdmin      bool   `json:"isAdmin"`
	Role         Role   `json:"role,omitempty"`
	Vote         string `json:"vote,omitempty"`
}

// RoomView is the per-viewer projection of a room: the payload the
// gateway delivers after every state change. The room itself stays
// fully authoritative and uniform; all information hiding happens
// here.
type RoomView struct {
	Code               string         `json:"code"`
	State              Phase          `json:"state"`
	Round              int            `json:"round"`
	Players            []PlayerView   `json:"players"`
	YourID             string         `json:"yourId"`
	SecretWord         string         `json:"secretWord,omitempty"`
	DiscussionOrder    []string       `json:"discussionOrder,omitempty"`
	CurrentPlayerIndex int            `json:"currentPlayerIndex"`
	VoteCounts         map[string]int `json:"voteCounts,omitempty"`
	CrewWins           *bool          `json:"crewWins,omitempty"`
}

// NewRoomView builds the projection of room for one viewer. Callers
// hold at least the room's read lock.
//
// Visibility rules:
//   - the secret word is shown to civilians from REVEAL_ROLE onward,
//     never to imposters, and never to players who have not been dealt
//     a role this game;
//   - a player's role is visible to themselves always, and to
//     everyone once the round reaches RESULTS;
//   - vote targets and per-target counts are revealed only in RESULTS.
func NewRoomView(room *Room, viewerID string) RoomView {
	viewer := room.FindPlayer(viewerID)
	results := room.State == PhaseResults

	view := RoomView{
		Code:               room.Code,
		State:              room.State,
		Round:              room.Round,
		YourID:             viewerID,
		Players:            make([]PlayerView, 0, len(room.Players)),
		CurrentPlayerIndex: room.CurrentPlayerIndex,
	}

	if room.State != PhaseLobby && viewer != nil && viewer.Role == RoleCivilian {
		view.SecretWord = room.SecretWord
	}

	if room.State == PhaseDiscussion {
		view.DiscussionOrder = append([]string(nil), room.DiscussionOrder...)
	}

	if results {
		// Ballots whose target has left the room are skipped during
		// tabulation; the displayed counts must agree.
		counts := make(map[string]int)
		for _, target := range room.Votes {
			if room.FindPlayer(target) == nil {
				continue
			}
			counts[target]++
		}
		view.VoteCounts = counts
		crewWins := room.CrewWins
		view.CrewWins = &crewWins
	}

	for _, p := range room.Players {
		pv := PlayerView{
			ID:           p.ID,
			Name:         p.Name,
			Score:        p.Score,
			HasVoted:     p.HasVoted,
			HasConfirmed: p.HasConfirmed,
			IsAdmin:      p.IsAdmin,
		}
		if results || p.ID == viewerID {
			pv.Role = p.Role
			pv.Vote = p.Vote
		}
		view.Players = append(view.Players, pv)
	}

	return view
}

// RoomSummary is the unauthenticated view served over HTTP, enough to
// render a join screen.
type RoomSummary struct {
	Code        string   `json:"code"`
	State       Phase    `json:"state"`
	Round       int      `json:"round"`
	PlayerNames []string `json:"playerNames"`
	PlayerCount int      `json:"playerCount"`
}

// NewRoomSummary builds the public summary. Callers hold at least the
// room's read lock.
func NewRoomSummary(room *Room) RoomSummary {
	names := make([]string, 0, len(room.Players))
	for _, p := range room.Players {
		names = append(names, p.Name)
	}
	return RoomSummary{
		Code:        room.Code,
		State:       room.State,
		Round:       room.Round,
		PlayerNames: names,
		PlayerCount: len(room.Players),
	}
}
