package simplifier

// Depth returns the nesting depth of node by following first elements:
// 1 for a coordinate, 2 for a line or ring, 3 for a polygon or multi-line,
// 4 for a multi-polygon. Leaves, absent nodes and empty sequences are
// depth 1. Siblings are assumed to share the depth of the first element.
func Depth(node Node) int {
	depth := 1
	for node.IsSeq() && len(node.children) > 0 && node.children[0].IsSeq() {
		node = node.children[0]
		depth++
	}
	return depth
}
