package learnpath

import (
	"fmt"

	"github.com/eddge/learnengine/internal/frames"
)

// NodesPerPath is the fixed number of nodes in every learning path.
const NodesPerPath = 5

// nodeSlot is one row of the fixed path layout.
type nodeSlot struct {
	Type        NodeType
	Status      NodeStatus
	TotalFrames int
	Goal        string // format string taking the topic name
}

// pathLayout is the shape every topic expands into. TotalFrames values are
// the declared display budgets; they are not derived from the generated
// frames (see Path.FrameBudgetMismatches).
var pathLayout = [NodesPerPath]nodeSlot{
	{NodeCore, StatusAvailable, 16, "understand the core idea of %s"},
	{NodeConcept, StatusLocked, 16, "explain the key concepts of %s"},
	{NodeConcept, StatusLocked, 16, "connect %s to related ideas"},
	{NodePractice, StatusLocked, 8, "solve practice problems on %s"},
	{NodeMastery, StatusLocked, 10, "apply %s under exam conditions"},
}

// NodeID returns the deterministic id of the node at position order (0-based).
func NodeID(topicID string, order int) string {
	return fmt.Sprintf("%s-n%d", topicID, order+1)
}

// ExpandTopic builds the five nodes of a topic's path. Ids are deterministic,
// so expanding the same topic again yields identical nodes.
func ExpandTopic(topicID, topicName string) []Node {
	nodes := make([]Node, NodesPerPath)
	for i, slot := range pathLayout {
		id := NodeID(topicID, i)
		goal := fmt.Sprintf(slot.Goal, topicName)

		var prereqs []string
		if i > 0 {
			prereqs = []string{NodeID(topicID, i-1)}
		}

		nodes[i] = Node{
			ID:                  id,
			TopicID:             topicID,
			SkillGoal:           goal,
			Type:                slot.Type,
			Status:              slot.Status,
			Order:               i,
			TotalFrames:         slot.TotalFrames,
			CompletedFrames:     0,
			PrerequisiteNodeIDs: prereqs,
			Frames:              frames.Generate(id, goal, slot.Type),
		}
	}
	return nodes
}

// NewPath expands a topic and fills in the aggregate fields.
func NewPath(topicID, topicName string) Path {
	p := Path{
		TopicID:   topicID,
		TopicName: topicName,
		Nodes:     ExpandTopic(topicID, topicName),
	}
	p.Recompute()
	return p
}
