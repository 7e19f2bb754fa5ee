package scene

// Layer is an ordered list of nodes. Later nodes draw on top and are hit first.
type Layer struct {
	Name  string
	nodes []*Node
}

func NewLayer(name string) *Layer {
	return &Layer{Name: name}
}

// Add appends nodes to the top of the layer.
func (l *Layer) Add(nodes ...*Node) {
	l.nodes = append(l.nodes, nodes...)
}

// Remove drops n from the layer if present.
func (l *Layer) Remove(n *Node) {
	for i, c := range l.nodes {
		if c == n {
			l.nodes = append(l.nodes[:i], l.nodes[i+1:]...)
			return
		}
	}
}

// SetNodes replaces the children, keeping the given order.
func (l *Layer) SetNodes(nodes []*Node) {
	l.nodes = append(l.nodes[:0:0], nodes...)
}

// Clear removes every child.
func (l *Layer) Clear() {
	l.nodes = nil
}

// Nodes returns a copy of the children in draw order.
func (l *Layer) Nodes() []*Node {
	return append([]*Node(nil), l.nodes...)
}

func (l *Layer) Len() int {
	return len(l.nodes)
}

// hit returns the top-most node containing p.
func (l *Layer) hit(p vec) *Node {
	for i := len(l.nodes) - 1; i >= 0; i-- {
		if l.nodes[i].Contains(p) {
			return l.nodes[i]
		}
	}
	return nil
}
