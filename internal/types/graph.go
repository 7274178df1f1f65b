package types

import "fmt"

// NodeStatus is the display state of a graph node. The numeric values are
// the "completed" field of the diagram contract.
type NodeStatus int

const (
	StatusNotCompleted NodeStatus = iota
	StatusCompleted
	StatusRecommended
)

// String returns the status name.
func (s NodeStatus) String() string {
	switch s {
	case StatusNotCompleted:
		return "not-completed"
	case StatusCompleted:
		return "completed"
	case StatusRecommended:
		return "recommended"
	default:
		return fmt.Sprintf("NodeStatus(%d)", int(s))
	}
}

// GraphNode is one course box in the prerequisite diagram.
type GraphNode struct {
	Key    CourseCode `json:"key"`
	Status NodeStatus `json:"completed"`
}

// PrerequisiteEdge says From is a prerequisite of To. Key is assigned from an
// incrementing counter, so the same pair may appear under several keys.
type PrerequisiteEdge struct {
	Key  int        `json:"key"`
	From CourseCode `json:"from"`
	To   CourseCode `json:"to"`
}

// Graph is the node/edge data handed to the diagram renderer.
type Graph struct {
	Nodes []GraphNode        `json:"nodes"`
	Edges []PrerequisiteEdge `json:"edges"`
}
