package model

// NodeKind tags the variant held by a Node
type NodeKind int

const (
	ScalarNode NodeKind = iota
	MappingNode
	SequenceNode
)

func (k NodeKind) String() string {
	switch k {
	case MappingNode:
		return "mapping"
	case SequenceNode:
		return "sequence"
	default:
		return "scalar"
	}
}

// Entry is one key/value pair of a mapping, kept in document order
type Entry struct {
	Key   string
	Value *Node
}

// Node is an untyped JSON value captured from the portal.
//
// Mappings keep their keys in the order they appeared on the wire: the key
// matcher returns the first matching key by iteration order, so a plain Go
// map cannot be used here.
type Node struct {
	Kind    NodeKind
	Entries []Entry // MappingNode
	Items   []*Node // SequenceNode
	Value   any     // ScalarNode: float64, string, bool or nil
}

// NewScalar wraps a scalar value
func NewScalar(v any) *Node {
	return &Node{Kind: ScalarNode, Value: v}
}

// NewMapping builds a mapping from entries in order
func NewMapping(entries ...Entry) *Node {
	return &Node{Kind: MappingNode, Entries: entries}
}

// NewSequence builds a sequence
func NewSequence(items ...*Node) *Node {
	return &Node{Kind: SequenceNode, Items: items}
}

// Get returns the value of the first entry named key (exact match)
func (n *Node) Get(key string) (*Node, bool) {
	if n == nil || n.Kind != MappingNode {
		return nil, false
	}
	for _, e := range n.Entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// IsNull reports whether the node is missing or a JSON null
func (n *Node) IsNull() bool {
	return n == nil || (n.Kind == ScalarNode && n.Value == nil)
}

// Interface converts the node back into plain Go values (map, slice, scalar)
// for JSON output. Key order of mappings is lost.
func (n *Node) Interface() any {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case MappingNode:
		m := make(map[string]any, len(n.Entries))
		for _, e := range n.Entries {
			if _, exists := m[e.Key]; !exists {
				m[e.Key] = e.Value.Interface()
			}
		}
		return m
	case SequenceNode:
		s := make([]any, len(n.Items))
		for i, item := range n.Items {
			s[i] = item.Interface()
		}
		return s
	default:
		return n.Value
	}
}

// Visitor receives every node of a tree during Walk. Returning false stops
// the descent into the children of that node. VisitEntry is called for each
// entry of a mapping right before its value is walked.
type Visitor interface {
	VisitMapping(n *Node) bool
	VisitEntry(e Entry)
	VisitSequence(n *Node) bool
	VisitScalar(n *Node)
}

// NopVisitor implements Visitor with no-ops, for embedding
type NopVisitor struct{}

func (NopVisitor) VisitMapping(*Node) bool  { return true }
func (NopVisitor) VisitEntry(Entry)         {}
func (NopVisitor) VisitSequence(*Node) bool { return true }
func (NopVisitor) VisitScalar(*Node)        {}

// Walk performs a depth-first, pre-order traversal dispatching on the
// variant tag
func Walk(n *Node, v Visitor) {
	if n == nil {
		return
	}
	switch n.Kind {
	case MappingNode:
		if !v.VisitMapping(n) {
			return
		}
		for _, e := range n.Entries {
			v.VisitEntry(e)
			Walk(e.Value, v)
		}
	case SequenceNode:
		if !v.VisitSequence(n) {
			return
		}
		for _, item := range n.Items {
			Walk(item, v)
		}
	default:
		v.VisitScalar(n)
	}
}
