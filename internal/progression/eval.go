package progression

// EvalResult contains the status changes found by Evaluator.
type EvalResult struct {
	StatusUpdates map[NodeID]Status
}

// Evaluator reports locked -> available transitions and milestone completions.
// It does not mutate state.
func Evaluator(graph *Graph, state *State) *EvalResult {
	result := &EvalResult{StatusUpdates: make(map[NodeID]Status)}

	// Walk in topological order so a milestone completing here can open its
	// dependents in the same pass.
	projected := func(id NodeID) Status {
		if s, ok := result.StatusUpdates[id]; ok {
			return s
		}
		return state.GetStatus(id)
	}
	for _, nodeID := range graph.TopoOrder {
		node := graph.Nodes[nodeID]
		current := state.GetStatus(nodeID)
		if current == StatusCompleted {
			continue
		}

		met := true
		for _, reqID := range node.Requires {
			if projected(reqID) != StatusCompleted {
				met = false
				break
			}
		}

		switch {
		case node.Kind == NodeKindMilestone && met:
			result.StatusUpdates[nodeID] = StatusCompleted
		case (met || state.Unlocked(nodeID)) && current != StatusAvailable:
			result.StatusUpdates[nodeID] = StatusAvailable
		case !met && !state.Unlocked(nodeID) && current == StatusAvailable:
			result.StatusUpdates[nodeID] = StatusLocked
		}
	}
	return result
}

// ApplyEvalResult applies an evaluation result to the state, mutating it.
func ApplyEvalResult(state *State, result *EvalResult) {
	for nodeID, newStatus := range result.StatusUpdates {
		state.SetStatus(nodeID, newStatus)
	}
}

// Refresh evaluates and applies in one step.
func Refresh(graph *Graph, state *State) {
	ApplyEvalResult(state, Evaluator(graph, state))
}
