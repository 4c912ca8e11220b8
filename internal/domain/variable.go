package domain

// RootVariableIndex is the sentinel index meaning "the top level stack
// variables". The server never assigns it to a real node.
const RootVariableIndex = 0

// VariableNode is one entry of the stack variable forest
type VariableNode struct {
	Name     string         `json:"name"`
	Value    string         `json:"value"`
	Type     string         `json:"type"`
	Index    int            `json:"index"`
	Children []VariableNode `json:"children"`
}

// HasChildren returns true if the node can be expanded
func (v VariableNode) HasChildren() bool {
	return len(v.Children) > 0
}
