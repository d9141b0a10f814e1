package frames

import "fmt"

// Generate builds the frames of one learning node.
//
// Every node except practice opens with the four foundation frames. Core and
// concept nodes then teach with five concept frames. All nodes finish with
// four assessment (ace) frames and three exit frames. Order runs from 0 in
// emission order. The output depends only on the arguments.
func Generate(nodeID, skillGoal string, nodeType NodeType) []Frame {
	out := make([]Frame, 0, Count(nodeType))

	emit := func(stage Stage, templates []template) {
		for _, tpl := range templates {
			order := len(out)
			out = append(out, Frame{
				ID:      frameID(nodeID, order),
				Type:    tpl.typ,
				Stage:   stage,
				Order:   order,
				Content: tpl.build(skillGoal),
			})
		}
	}

	if nodeType != NodePractice {
		emit(StageFoundation, foundationTemplates)
	}
	if nodeType == NodeCore || nodeType == NodeConcept {
		emit(StageConcept, conceptTemplates)
	}
	emit(StageAce, aceTemplates)
	emit(StageExit, exitTemplates)

	return out
}

// Count returns how many frames Generate emits for a node type.
func Count(nodeType NodeType) int {
	n := len(aceTemplates) + len(exitTemplates)
	if nodeType != NodePractice {
		n += len(foundationTemplates)
	}
	if nodeType == NodeCore || nodeType == NodeConcept {
		n += len(conceptTemplates)
	}
	return n
}

func frameID(nodeID string, order int) string {
	return fmt.Sprintf("%s-f%d", nodeID, order)
}
