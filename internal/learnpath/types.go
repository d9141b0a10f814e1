// Package learnpath models a topic's five-node learning path and the state
// machine that advances it when a learning session ends.
package learnpath

import (
	"slices"

	"github.com/eddge/learnengine/internal/frames"
)

// NodeType is re-exported from frames so callers need a single import.
type NodeType = frames.NodeType

const (
	NodeCore     = frames.NodeCore
	NodeConcept  = frames.NodeConcept
	NodePractice = frames.NodePractice
	NodeMastery  = frames.NodeMastery
)

// NodeStatus is a node's position in the progression lifecycle:
// locked -> available -> completed | partial.
type NodeStatus string

const (
	StatusLocked    NodeStatus = "locked"
	StatusAvailable NodeStatus = "available"
	StatusCompleted NodeStatus = "completed"
	StatusPartial   NodeStatus = "partial"
)

// IsDone reports whether the status counts towards completed nodes.
// Partial is done for counting purposes and differs only in display.
func (s NodeStatus) IsDone() bool {
	return s == StatusCompleted || s == StatusPartial
}

// Valid reports whether s is a known status.
func (s NodeStatus) Valid() bool {
	switch s {
	case StatusLocked, StatusAvailable, StatusCompleted, StatusPartial:
		return true
	}
	return false
}

// Icon returns the display icon for a node status.
func (s NodeStatus) Icon() string {
	switch s {
	case StatusLocked:
		return "🔒"
	case StatusAvailable:
		return "🔓"
	case StatusCompleted:
		return "✅"
	case StatusPartial:
		return "🟡"
	default:
		return "?"
	}
}

// Node is one step of a topic's learning path.
type Node struct {
	ID                  string         `json:"id"`
	TopicID             string         `json:"topicId"`
	SkillGoal           string         `json:"skillGoal"`
	Type                NodeType       `json:"type"`
	Status              NodeStatus     `json:"status"`
	Order               int            `json:"order"`
	TotalFrames         int            `json:"totalFrames"`
	CompletedFrames     int            `json:"completedFrames"`
	PrerequisiteNodeIDs []string       `json:"prerequisiteNodeIds"`
	Frames              []frames.Frame `json:"frames"`
	ConfidenceScore     *int           `json:"confidenceScore,omitempty"`
}

// Path is the ordered set of nodes for one topic plus derived aggregates.
type Path struct {
	TopicID   string `json:"topicId"`
	TopicName string `json:"topicName"`
	Nodes     []Node `json:"nodes"`

	// CurrentNodeID is the first available node, or "" when none is.
	CurrentNodeID      string `json:"currentNodeId,omitempty"`
	CompletedNodeCount int    `json:"completedNodeCount"`
	TotalNodeCount     int    `json:"totalNodeCount"`
	MasteryScore       int    `json:"masteryScore"`
}

// Node returns the node with the given id.
func (p Path) Node(id string) (Node, bool) {
	if i := p.indexOf(id); i >= 0 {
		return p.Nodes[i], true
	}
	return Node{}, false
}

func (p Path) indexOf(id string) int {
	for i := range p.Nodes {
		if p.Nodes[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a copy of p that shares no mutable state with it.
// Frame contents are immutable and are shared.
func (p Path) Clone() Path {
	out := p
	out.Nodes = make([]Node, len(p.Nodes))
	for i, n := range p.Nodes {
		n.PrerequisiteNodeIDs = slices.Clone(n.PrerequisiteNodeIDs)
		n.Frames = slices.Clone(n.Frames)
		if n.ConfidenceScore != nil {
			score := *n.ConfidenceScore
			n.ConfidenceScore = &score
		}
		out.Nodes[i] = n
	}
	return out
}

// Outcome is the result of one completed learning session on a node.
type Outcome struct {
	Completed       bool `json:"completed"`
	Partial         bool `json:"partial"`
	NeedsSupport    bool `json:"needsSupport"`
	ConfidenceScore int  `json:"confidenceScore"`
}

// UpdateStatus tells the caller what UpdateNodeStatus did with the target node.
type UpdateStatus string

const (
	UpdateApplied      UpdateStatus = "applied"
	UpdateNotCompleted UpdateStatus = "not-completed"
	UpdateNodeNotFound UpdateStatus = "node-not-found"
	UpdateNodeLocked   UpdateStatus = "node-locked"
)

// Transition records one node status change for display and event logging.
type Transition struct {
	NodeID  string     `json:"nodeId"`
	From    NodeStatus `json:"from"`
	To      NodeStatus `json:"to"`
	Trigger string     `json:"trigger"` // "session-complete", "prerequisite-complete"
}

// UpdateResult describes the effect of one UpdateNodeStatus call.
type UpdateResult struct {
	Status      UpdateStatus
	Transitions []Transition
}
