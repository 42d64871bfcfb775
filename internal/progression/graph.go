// Package progression tracks campaign progress across mission attempts.
//
// Missions are nodes of a DAG; a node becomes available once everything it
// requires is completed or it has been unlocked by a reward. Applying a mission
// result is the only way progress changes.
package progression

import (
	"errors"
	"fmt"
)

// NodeID is the mission id a node stands for.
type NodeID string

// NodeKind categorizes the node type.
type NodeKind string

const (
	// NodeKindMission is a playable mission.
	NodeKindMission NodeKind = "mission"
	// NodeKindMilestone completes automatically once its requirements complete.
	NodeKindMilestone NodeKind = "milestone"
)

// Node represents a single node in the campaign graph.
type Node struct {
	ID         NodeID   `json:"id"`
	Kind       NodeKind `json:"kind"`
	Label      string   `json:"label"`
	Repeatable bool     `json:"repeatable"` // credits are granted on every completion
	Requires   []NodeID `json:"requires"`
}

// Graph represents the complete DAG.
type Graph struct {
	Nodes      map[NodeID]*Node    // All nodes indexed by ID
	RequiresIn map[NodeID][]NodeID // Reverse index: which nodes require this one
	TopoOrder  []NodeID            // Topologically sorted node IDs
}

var (
	// ErrCycleDetected is returned when a cycle is detected in the graph.
	ErrCycleDetected = errors.New("progression: cycle detected in graph")
	// ErrNodeNotFound is returned when a referenced node doesn't exist.
	ErrNodeNotFound = errors.New("progression: node not found")
	// ErrDuplicateNode is returned when two nodes share an id.
	ErrDuplicateNode = errors.New("progression: duplicate node")
)

// NewGraph indexes and validates nodes.
func NewGraph(nodes []*Node) (*Graph, error) {
	g := &Graph{
		Nodes:      make(map[NodeID]*Node),
		RequiresIn: make(map[NodeID][]NodeID),
	}

	for _, node := range nodes {
		if _, exists := g.Nodes[node.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateNode, node.ID)
		}
		if node.Kind == "" {
			node.Kind = NodeKindMission
		}
		g.Nodes[node.ID] = node
	}

	for _, node := range nodes {
		for _, reqID := range node.Requires {
			if _, exists := g.Nodes[reqID]; !exists {
				return nil, fmt.Errorf("%w: node %s requires missing node %s", ErrNodeNotFound, node.ID, reqID)
			}
			g.RequiresIn[reqID] = append(g.RequiresIn[reqID], node.ID)
		}
	}

	order, err := g.topoSort()
	if err != nil {
		return nil, err
	}
	g.TopoOrder = order
	return g, nil
}

// GetNode returns a node by ID, or nil if not found.
func (g *Graph) GetNode(id NodeID) *Node {
	return g.Nodes[id]
}

// topoSort orders nodes with Kahn's algorithm, failing on cycles. Ties are
// broken by id so the order is deterministic.
func (g *Graph) topoSort() ([]NodeID, error) {
	inDegree := make(map[NodeID]int, len(g.Nodes))
	for id, node := range g.Nodes {
		inDegree[id] = len(node.Requires)
	}

	var queue []NodeID
	for id, deg := range inDegree {
		if deg == 0 {
			queue = insertSorted(queue, id)
		}
	}

	var order []NodeID
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		order = append(order, curr)

		for _, depID := range g.RequiresIn[curr] {
			inDegree[depID]--
			if inDegree[depID] == 0 {
				queue = insertSorted(queue, depID)
			}
		}
	}

	if len(order) != len(g.Nodes) {
		return nil, ErrCycleDetected
	}
	return order, nil
}

func insertSorted(queue []NodeID, id NodeID) []NodeID {
	i := 0
	for i < len(queue) && queue[i] < id {
		i++
	}
	queue = append(queue, "")
	copy(queue[i+1:], queue[i:])
	queue[i] = id
	return queue
}
