package view

// Children returns the direct child nodes of n.
func Children(n Node) []Node {
	switch n := n.(type) {
	case *Panel:
		if n.Body != nil {
			return []Node{n.Body}
		}
	case *Grid:
		out := make([]Node, 0, len(n.Areas))
		for _, area := range n.Areas {
			if area.Node != nil {
				out = append(out, area.Node)
			}
		}
		return out
	case *Tabs:
		if n.Body != nil {
			return []Node{n.Body}
		}
	}
	return nil
}

// Walk calls fn for n and every descendant in depth-first order. Returning
// false from fn skips the node's children.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, child := range Children(n) {
		Walk(child, fn)
	}
}

// Find returns every node in the tree for which match reports true.
func Find(n Node, match func(Node) bool) []Node {
	var out []Node
	Walk(n, func(node Node) bool {
		if match(node) {
			out = append(out, node)
		}
		return true
	})
	return out
}
