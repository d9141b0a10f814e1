package learnpath

import (
	"fmt"
	"slices"
	"strings"
)

// Validate checks the structural invariants of a path: five nodes in order,
// deterministic ids, the fixed type layout, a single linear prerequisite
// chain, and statuses consistent with that chain.
// Returns a combined error describing all problems found, or nil if valid.
func (p Path) Validate() error {
	var errs []string

	if p.TopicID == "" {
		errs = append(errs, "topic id is empty")
	}
	if len(p.Nodes) != NodesPerPath {
		errs = append(errs, fmt.Sprintf("path has %d nodes, want %d", len(p.Nodes), NodesPerPath))
	}

	for i, n := range p.Nodes {
		prefix := fmt.Sprintf("node %d (%s)", i, n.ID)

		if want := NodeID(p.TopicID, i); n.ID != want {
			errs = append(errs, fmt.Sprintf("%s: id should be %q", prefix, want))
		}
		if n.TopicID != p.TopicID {
			errs = append(errs, fmt.Sprintf("%s: topic %q does not match path topic %q", prefix, n.TopicID, p.TopicID))
		}
		if n.Order != i {
			errs = append(errs, fmt.Sprintf("%s: order %d, want %d", prefix, n.Order, i))
		}
		if i < NodesPerPath && n.Type != pathLayout[i].Type {
			errs = append(errs, fmt.Sprintf("%s: type %q, want %q", prefix, n.Type, pathLayout[i].Type))
		}
		if !n.Status.Valid() {
			errs = append(errs, fmt.Sprintf("%s: unknown status %q", prefix, n.Status))
		}
		if n.CompletedFrames < 0 || n.CompletedFrames > n.TotalFrames {
			errs = append(errs, fmt.Sprintf("%s: completed frames %d outside 0..%d", prefix, n.CompletedFrames, n.TotalFrames))
		}
		if n.ConfidenceScore != nil && (*n.ConfidenceScore < 0 || *n.ConfidenceScore > 100) {
			errs = append(errs, fmt.Sprintf("%s: confidence score %d outside 0..100", prefix, *n.ConfidenceScore))
		}

		var wantPrereqs []string
		if i > 0 {
			wantPrereqs = []string{p.Nodes[i-1].ID}
		}
		if !slices.Equal(n.PrerequisiteNodeIDs, wantPrereqs) {
			errs = append(errs, fmt.Sprintf("%s: prerequisites %v, want %v", prefix, n.PrerequisiteNodeIDs, wantPrereqs))
		} else if n.Status != StatusLocked && !p.prerequisitesDone(n) {
			errs = append(errs, fmt.Sprintf("%s: status %q but prerequisites are not done", prefix, n.Status))
		}
	}

	if p.CurrentNodeID != "" {
		n, ok := p.Node(p.CurrentNodeID)
		switch {
		case !ok:
			errs = append(errs, fmt.Sprintf("current node %q is not in the path", p.CurrentNodeID))
		case n.Status != StatusAvailable:
			errs = append(errs, fmt.Sprintf("current node %q has status %q", p.CurrentNodeID, n.Status))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("learning path %q validation failed:\n  %s", p.TopicID, strings.Join(errs, "\n  "))
	}
	return nil
}

// BudgetMismatch reports a node whose declared TotalFrames differs from the
// number of frames it actually carries.
type BudgetMismatch struct {
	NodeID   string
	Type     NodeType
	Declared int
	Actual   int
}

// FrameBudgetMismatches lists every node whose declared frame budget does
// not match its generated frames.
func (p Path) FrameBudgetMismatches() []BudgetMismatch {
	var out []BudgetMismatch
	for _, n := range p.Nodes {
		if n.TotalFrames != len(n.Frames) {
			out = append(out, BudgetMismatch{
				NodeID:   n.ID,
				Type:     n.Type,
				Declared: n.TotalFrames,
				Actual:   len(n.Frames),
			})
		}
	}
	return out
}
