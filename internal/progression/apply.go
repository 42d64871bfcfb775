package progression

import (
	"errors"
	"fmt"

	"LanderRescue/internal/game"
)

var (
	// ErrNodeNotAvailable is returned for a result of a mission that is still locked.
	ErrNodeNotAvailable = errors.New("progression: node not available")
	// ErrMissingAttempt is returned for a result without an attempt id.
	ErrMissingAttempt = errors.New("progression: result has no attempt id")
)

// Effects receives side effects of applying a result.
type Effects interface {
	// OnComplete is called the first time a mission node completes.
	OnComplete(nodeID NodeID, node *Node, res game.MissionResult)
	// OnCredit is called whenever credits are granted.
	OnCredit(nodeID NodeID, credits int)
	// OnUnlock is called once per newly granted unlock.
	OnUnlock(id string)
}

// NoOpEffects is a default implementation that does nothing.
type NoOpEffects struct{}

func (e *NoOpEffects) OnComplete(nodeID NodeID, node *Node, res game.MissionResult) {}
func (e *NoOpEffects) OnCredit(nodeID NodeID, credits int)                          {}
func (e *NoOpEffects) OnUnlock(id string)                                           {}

func tierRank(s game.SuccessState) int {
	switch s {
	case game.SuccessStateSuccess:
		return 2
	case game.SuccessStatePartial:
		return 1
	}
	return 0
}

// ApplyResult folds a finished attempt into state. Each attempt id is applied at
// most once; a repeated id returns false without error. Success and partial
// complete the node. Credits are granted on first completion, on a tier
// improvement, and on every completion of a repeatable node.
func ApplyResult(graph *Graph, state *State, res game.MissionResult, effects Effects) (bool, error) {
	if effects == nil {
		effects = &NoOpEffects{}
	}
	if res.AttemptID == "" {
		return false, ErrMissingAttempt
	}
	if state.Attempts[res.AttemptID] {
		return false, nil
	}
	nodeID := NodeID(res.MissionID)
	node := graph.GetNode(nodeID)
	if node == nil {
		return false, fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}

	Refresh(graph, state)
	status := state.GetStatus(nodeID)
	if status == StatusLocked {
		return false, fmt.Errorf("%w: %s (status: %s)", ErrNodeNotAvailable, nodeID, status)
	}
	state.Attempts[res.AttemptID] = true

	if tierRank(res.SuccessState) == 0 {
		return true, nil
	}

	first := status != StatusCompleted
	improved := tierRank(res.SuccessState) > tierRank(state.Best[nodeID])
	if improved {
		state.Best[nodeID] = res.SuccessState
	}

	var grant *game.RewardTier
	if res.Reward != nil {
		grant = res.Reward.Grant
	}
	if grant != nil {
		if (first || improved || node.Repeatable) && grant.Credits > 0 {
			state.Credits += grant.Credits
			effects.OnCredit(nodeID, grant.Credits)
		}
		for _, unlock := range grant.Unlocks {
			if unlock == "" || state.Unlocks[unlock] {
				continue
			}
			state.Unlocks[unlock] = true
			effects.OnUnlock(unlock)
		}
	}

	state.SetStatus(nodeID, StatusCompleted)
	if first {
		effects.OnComplete(nodeID, node, res)
	}
	Refresh(graph, state)
	return true, nil
}

// CanFly reports whether the mission node is available or already completed.
func CanFly(graph *Graph, state *State, nodeID NodeID) bool {
	if graph.GetNode(nodeID) == nil {
		return false
	}
	status := state.GetStatus(nodeID)
	return status == StatusAvailable || status == StatusCompleted
}
