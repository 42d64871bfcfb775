package progression

import (
	"encoding/json"

	"LanderRescue/internal/game"
)

// Status represents the current state of a node.
type Status string

const (
	// StatusLocked means the node's requirements are not met.
	StatusLocked Status = "locked"
	// StatusAvailable means the mission can be flown.
	StatusAvailable Status = "available"
	// StatusCompleted means the mission ended in success or partial at least once.
	StatusCompleted Status = "completed"
)

// State is the persisted campaign progress.
type State struct {
	Status   map[NodeID]Status            `json:"status"`
	Best     map[NodeID]game.SuccessState `json:"best"` // best tier per mission
	Credits  int                          `json:"credits"`
	Unlocks  map[string]bool              `json:"unlocks"`  // granted by rewards
	Attempts map[string]bool              `json:"attempts"` // applied attempt ids
}

// NewState creates a new empty state.
func NewState() *State {
	return &State{
		Status:   make(map[NodeID]Status),
		Best:     make(map[NodeID]game.SuccessState),
		Unlocks:  make(map[string]bool),
		Attempts: make(map[string]bool),
	}
}

// GetStatus returns the status of a node, defaulting to locked if not set.
func (s *State) GetStatus(id NodeID) Status {
	if status, exists := s.Status[id]; exists {
		return status
	}
	return StatusLocked
}

func (s *State) SetStatus(id NodeID, status Status) {
	s.Status[id] = status
}

// Unlocked reports whether a reward unlocked id.
func (s *State) Unlocked(id NodeID) bool {
	return s.Unlocks[string(id)]
}

// Clone creates a deep copy of the state.
func (s *State) Clone() *State {
	clone := NewState()
	for id, status := range s.Status {
		clone.Status[id] = status
	}
	for id, tier := range s.Best {
		clone.Best[id] = tier
	}
	for id := range s.Unlocks {
		clone.Unlocks[id] = true
	}
	for id := range s.Attempts {
		clone.Attempts[id] = true
	}
	clone.Credits = s.Credits
	return clone
}

// Snapshot returns the JSON encoding of the state.
func (s *State) Snapshot() ([]byte, error) {
	return json.Marshal(s)
}

// LoadSnapshot restores state from a JSON snapshot.
func LoadSnapshot(data []byte) (*State, error) {
	state := NewState()
	if err := json.Unmarshal(data, state); err != nil {
		return nil, err
	}
	if state.Status == nil {
		state.Status = make(map[NodeID]Status)
	}
	if state.Best == nil {
		state.Best = make(map[NodeID]game.SuccessState)
	}
	if state.Unlocks == nil {
		state.Unlocks = make(map[string]bool)
	}
	if state.Attempts == nil {
		state.Attempts = make(map[string]bool)
	}
	return state, nil
}
