package progression

import (
	"log"
	"sort"
	"sync"

	"LanderRescue/internal/game"
)

// Ledger guards a graph and state for concurrent sessions.
type Ledger struct {
	mu      sync.Mutex
	graph   *Graph
	state   *State
	effects Effects
	logger  *log.Logger
}

func NewLedger(graph *Graph, state *State, effects Effects, logger *log.Logger) *Ledger {
	if state == nil {
		state = NewState()
	}
	if effects == nil {
		effects = &NoOpEffects{}
	}
	if logger == nil {
		logger = log.Default()
	}
	Refresh(graph, state)
	return &Ledger{graph: graph, state: state, effects: effects, logger: logger}
}

// Apply folds res into the ledger. See ApplyResult.
func (l *Ledger) Apply(res game.MissionResult) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	applied, err := ApplyResult(l.graph, l.state, res, l.effects)
	if err != nil {
		l.logger.Printf("progression: attempt %s: %v", res.AttemptID, err)
		return false, err
	}
	if applied {
		l.logger.Printf("progression: %s %s, credits now %d", res.MissionID, res.SuccessState, l.state.Credits)
	}
	return applied, nil
}

// CanFly reports whether a mission may be started.
func (l *Ledger) CanFly(missionID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return CanFly(l.graph, l.state, NodeID(missionID))
}

// Snapshot encodes the current state.
func (l *Ledger) Snapshot() ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Snapshot()
}

// NodeView is one node as reported to clients.
type NodeView struct {
	ID     NodeID            `json:"id"`
	Kind   NodeKind          `json:"kind"`
	Label  string            `json:"label"`
	Status Status            `json:"status"`
	Best   game.SuccessState `json:"best,omitempty"`
}

// View is the client-facing summary of the ledger.
type View struct {
	Credits int        `json:"credits"`
	Unlocks []string   `json:"unlocks"`
	Nodes   []NodeView `json:"nodes"`
}

func (l *Ledger) View() View {
	l.mu.Lock()
	defer l.mu.Unlock()
	v := View{Credits: l.state.Credits, Unlocks: []string{}}
	for id := range l.state.Unlocks {
		v.Unlocks = append(v.Unlocks, id)
	}
	sort.Strings(v.Unlocks)
	for _, id := range l.graph.TopoOrder {
		node := l.graph.Nodes[id]
		v.Nodes = append(v.Nodes, NodeView{
			ID:     id,
			Kind:   node.Kind,
			Label:  node.Label,
			Status: l.state.GetStatus(id),
			Best:   l.state.Best[id],
		})
	}
	return v
}
