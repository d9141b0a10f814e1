package learnpath

import (
	"reflect"
	"slices"
	"testing"
)

func TestExpandTopic_Shape(t *testing.T) {
	nodes := ExpandTopic("t1", "Motion in a Straight Line")
	if len(nodes) != 5 {
		t.Fatalf("got %d nodes, want 5", len(nodes))
	}

	want := []struct {
		id          string
		typ         NodeType
		status      NodeStatus
		totalFrames int
		prereqs     []string
	}{
		{"t1-n1", NodeCore, StatusAvailable, 16, nil},
		{"t1-n2", NodeConcept, StatusLocked, 16, []string{"t1-n1"}},
		{"t1-n3", NodeConcept, StatusLocked, 16, []string{"t1-n2"}},
		{"t1-n4", NodePractice, StatusLocked, 8, []string{"t1-n3"}},
		{"t1-n5", NodeMastery, StatusLocked, 10, []string{"t1-n4"}},
	}

	for i, w := range want {
		n := nodes[i]
		if n.ID != w.id {
			t.Errorf("node %d: id = %q, want %q", i, n.ID, w.id)
		}
		if n.Order != i {
			t.Errorf("node %d: order = %d", i, n.Order)
		}
		if n.Type != w.typ {
			t.Errorf("node %d: type = %s, want %s", i, n.Type, w.typ)
		}
		if n.Status != w.status {
			t.Errorf("node %d: status = %s, want %s", i, n.Status, w.status)
		}
		if n.TotalFrames != w.totalFrames {
			t.Errorf("node %d: totalFrames = %d, want %d", i, n.TotalFrames, w.totalFrames)
		}
		if !slices.Equal(n.PrerequisiteNodeIDs, w.prereqs) {
			t.Errorf("node %d: prereqs = %v, want %v", i, n.PrerequisiteNodeIDs, w.prereqs)
		}
		if n.TopicID != "t1" {
			t.Errorf("node %d: topic = %q", i, n.TopicID)
		}
		if n.CompletedFrames != 0 {
			t.Errorf("node %d: completedFrames = %d", i, n.CompletedFrames)
		}
		if len(n.Frames) == 0 {
			t.Errorf("node %d: no frames", i)
		}
	}
}

func TestExpandTopic_FramesFollowNodeType(t *testing.T) {
	nodes := ExpandTopic("t1", "Vectors")
	wantFrames := []int{16, 16, 16, 7, 11}
	for i, n := range nodes {
		if len(n.Frames) != wantFrames[i] {
			t.Errorf("node %s: %d frames, want %d", n.ID, len(n.Frames), wantFrames[i])
		}
	}
}

func TestExpandTopic_Idempotent(t *testing.T) {
	a := ExpandTopic("chem-2", "Mole Concept")
	b := ExpandTopic("chem-2", "Mole Concept")
	if !reflect.DeepEqual(a, b) {
		t.Error("re-expanding the same topic produced different nodes")
	}
}

func TestNewPath_Aggregates(t *testing.T) {
	p := NewPath("t1", "Vectors")
	if p.CurrentNodeID != "t1-n1" {
		t.Errorf("current = %q, want t1-n1", p.CurrentNodeID)
	}
	if p.TotalNodeCount != 5 {
		t.Errorf("total = %d, want 5", p.TotalNodeCount)
	}
	if p.CompletedNodeCount != 0 || p.MasteryScore != 0 {
		t.Errorf("completed=%d mastery=%d, want 0 and 0", p.CompletedNodeCount, p.MasteryScore)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("new path invalid: %v", err)
	}
}

func TestFrameBudgetMismatches(t *testing.T) {
	p := NewPath("t1", "Vectors")
	got := p.FrameBudgetMismatches()

	want := []BudgetMismatch{
		{NodeID: "t1-n4", Type: NodePractice, Declared: 8, Actual: 7},
		{NodeID: "t1-n5", Type: NodeMastery, Declared: 10, Actual: 11},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("mismatches = %+v, want %+v", got, want)
	}
}
