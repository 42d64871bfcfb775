package progression

import (
	"sort"

	"LanderRescue/internal/game"
)

// campaignRequires orders the built-in missions.
var campaignRequires = map[string][]NodeID{
	"tutorial-landing": nil,
	"outpost-rescue":   {"tutorial-landing"},
}

// CampaignNodes builds one mission node per id plus a milestone that completes
// once every built-in mission has been flown. Missions without an entry in the
// campaign order are available from the start.
func CampaignNodes(missionIDs []string) []*Node {
	ids := append([]string(nil), missionIDs...)
	sort.Strings(ids)
	known := make(map[string]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}

	nodes := make([]*Node, 0, len(ids)+1)
	var builtins []NodeID
	for _, id := range ids {
		node := &Node{ID: NodeID(id), Kind: NodeKindMission, Label: id}
		if cfg, err := game.GetMission(id); err == nil && cfg.DisplayName != "" {
			node.Label = cfg.DisplayName
		}
		for _, req := range campaignRequires[id] {
			if known[string(req)] {
				node.Requires = append(node.Requires, req)
			}
		}
		if _, ok := campaignRequires[id]; ok {
			builtins = append(builtins, node.ID)
		}
		nodes = append(nodes, node)
	}
	if len(builtins) > 0 {
		nodes = append(nodes, &Node{
			ID:       "campaign-complete",
			Kind:     NodeKindMilestone,
			Label:    "Campaign Complete",
			Requires: builtins,
		})
	}
	return nodes
}
