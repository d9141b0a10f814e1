package learnpath

import (
	"math"
	"slices"
)

// UpdateNodeStatus applies the outcome of a finished session on nodeID and
// returns the new path. The input path is not modified.
//
// A completed outcome marks the node completed (or partial), fills its frame
// counter, attaches the confidence score and unlocks every locked node whose
// prerequisites are now all done. A locked target is rejected with
// UpdateNodeLocked and left unchanged. Aggregates are recomputed on every call,
// including when the node is unknown or the outcome is not completed; the
// returned UpdateResult says which case happened.
func UpdateNodeStatus(p Path, nodeID string, o Outcome) (Path, UpdateResult) {
	next := p.Clone()
	res := UpdateResult{Status: UpdateNodeNotFound}

	if i := next.indexOf(nodeID); i >= 0 {
		node := &next.Nodes[i]
		switch {
		case !o.Completed:
			res.Status = UpdateNotCompleted
		case node.Status == StatusLocked:
			res.Status = UpdateNodeLocked
		default:
			from := node.Status
			to := StatusCompleted
			if o.Partial {
				to = StatusPartial
			}
			score := o.ConfidenceScore
			node.Status = to
			node.CompletedFrames = node.TotalFrames
			node.ConfidenceScore = &score
			res.Status = UpdateApplied
			if from != to {
				res.Transitions = append(res.Transitions, Transition{
					NodeID:  node.ID,
					From:    from,
					To:      to,
					Trigger: "session-complete",
				})
			}
		}
	}

	if res.Status == UpdateApplied {
		res.Transitions = append(res.Transitions, next.unlockDependents(nodeID)...)
	}

	next.Recompute()
	return next, res
}

// unlockDependents makes every locked node that lists nodeID as a
// prerequisite available, provided all of its prerequisites are done.
func (p *Path) unlockDependents(nodeID string) []Transition {
	var out []Transition
	for i := range p.Nodes {
		n := &p.Nodes[i]
		if n.ID == nodeID || n.Status != StatusLocked {
			continue
		}
		if !slices.Contains(n.PrerequisiteNodeIDs, nodeID) {
			continue
		}
		if !p.prerequisitesDone(*n) {
			continue
		}
		n.Status = StatusAvailable
		out = append(out, Transition{
			NodeID:  n.ID,
			From:    StatusLocked,
			To:      StatusAvailable,
			Trigger: "prerequisite-complete",
		})
	}
	return out
}

func (p *Path) prerequisitesDone(n Node) bool {
	for _, id := range n.PrerequisiteNodeIDs {
		i := p.indexOf(id)
		if i < 0 || !p.Nodes[i].Status.IsDone() {
			return false
		}
	}
	return true
}

// Recompute refreshes CompletedNodeCount, TotalNodeCount, CurrentNodeID and
// MasteryScore from the node statuses. CurrentNodeID is the first available
// node in slice order.
func (p *Path) Recompute() {
	done := 0
	current := ""
	for _, n := range p.Nodes {
		if n.Status.IsDone() {
			done++
		}
		if current == "" && n.Status == StatusAvailable {
			current = n.ID
		}
	}

	p.CompletedNodeCount = done
	p.TotalNodeCount = len(p.Nodes)
	p.CurrentNodeID = current
	p.MasteryScore = masteryScore(done, p.TotalNodeCount)
}

func masteryScore(done, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(done) / float64(total)))
}
