package models

// Phase is the lifecycle stage of a room. Phases advance linearly and
// loop back to PhaseRevealRole at the start of each new round.
type Phase string

const (
	PhaseLobby      Phase = "LOBBY"
	PhaseRevealRole Phase = "REVEAL_ROLE"
	PhaseDiscussion Phase = "DISCUSSION"
	PhaseVoting     Phase = "VOTING"
	PhaseResults    Phase = "RESULTS"
)
