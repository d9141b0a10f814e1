package frames

// NodeType classifies a learning node and decides which frame stages it gets.
type NodeType string

const (
	NodeCore     NodeType = "core"
	NodeConcept  NodeType = "concept"
	NodePractice NodeType = "practice"
	NodeMastery  NodeType = "mastery"
)

// Valid reports whether t is one of the known node types.
func (t NodeType) Valid() bool {
	switch t {
	case NodeCore, NodeConcept, NodePractice, NodeMastery:
		return true
	}
	return false
}

// FrameType identifies what a frame shows and which content payload it carries.
type FrameType string

const (
	TypeWhat         FrameType = "what"
	TypeWhyReal      FrameType = "why-real"
	TypeWhyExam      FrameType = "why-exam"
	TypeCuriosity    FrameType = "curiosity"
	TypeDefinition   FrameType = "definition"
	TypeExample      FrameType = "example"
	TypeEquation     FrameType = "equation"
	TypeIntuition    FrameType = "intuition"
	TypeMCQ          FrameType = "mcq"
	TypeNumerical    FrameType = "numerical"
	TypeShortExplain FrameType = "short-explain"
	TypeTakeaway     FrameType = "takeaway"
	TypeFormulas     FrameType = "formulas"
	TypeMistakes     FrameType = "mistakes"
)

// ContentKind names the payload variant a frame type carries.
type ContentKind string

const (
	KindText         ContentKind = "text"
	KindMCQ          ContentKind = "mcq"
	KindNumerical    ContentKind = "numerical"
	KindShortExplain ContentKind = "short-explain"
)

// ContentKind returns the payload variant for t. Unknown types map to "".
func (t FrameType) ContentKind() ContentKind {
	switch t {
	case TypeWhat, TypeWhyReal, TypeWhyExam, TypeCuriosity,
		TypeDefinition, TypeExample, TypeEquation, TypeIntuition,
		TypeTakeaway, TypeFormulas, TypeMistakes:
		return KindText
	case TypeMCQ:
		return KindMCQ
	case TypeNumerical:
		return KindNumerical
	case TypeShortExplain:
		return KindShortExplain
	default:
		return ""
	}
}

// Label returns a short display label for the frame type.
func (t FrameType) Label() string {
	switch t {
	case TypeWhat:
		return "What is it?"
	case TypeWhyReal:
		return "Why it matters"
	case TypeWhyExam:
		return "In the exam"
	case TypeCuriosity:
		return "Curiosity"
	case TypeDefinition:
		return "Definition"
	case TypeExample:
		return "Example"
	case TypeEquation:
		return "Equation"
	case TypeIntuition:
		return "Intuition"
	case TypeMCQ:
		return "Multiple choice"
	case TypeNumerical:
		return "Numerical"
	case TypeShortExplain:
		return "Explain it"
	case TypeTakeaway:
		return "Takeaway"
	case TypeFormulas:
		return "Formulas"
	case TypeMistakes:
		return "Common mistakes"
	default:
		return string(t)
	}
}

// Stage is the teaching phase a frame belongs to.
type Stage string

const (
	StageFoundation Stage = "foundation"
	StageConcept    Stage = "concept"
	StageAce        Stage = "ace"
	StageExit       Stage = "exit"
)

// Rank orders stages in the sequence a node presents them.
func (s Stage) Rank() int {
	switch s {
	case StageFoundation:
		return 0
	case StageConcept:
		return 1
	case StageAce:
		return 2
	case StageExit:
		return 3
	default:
		return -1
	}
}

// Frame is one screen of content inside a learning node.
type Frame struct {
	ID      string
	Type    FrameType
	Stage   Stage
	Order   int
	Content Content
}

// IsAssessment reports whether the frame expects an answer from the learner.
func (f Frame) IsAssessment() bool {
	return f.Stage == StageAce
}
