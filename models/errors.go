package models

import "errors"

// Action outcomes the state machine can reject with. All of them are
// recoverable by the caller; a room is never left half-mutated when
// one of these is returned.
var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrRoomFull         = errors.New("room full")
	ErrNameTaken        = errors.New("name already taken")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrNotEnoughPlayers = errors.New("need at least 3 players")
	ErrInvalidPhase     = errors.New("action not allowed in current phase")
	ErrSelfVote         = errors.New("cannot vote for yourself")
	ErrNoFreeCodes      = errors.New("no free room codes")
)
