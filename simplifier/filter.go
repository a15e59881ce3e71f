package simplifier

import (
	"github.com/paulmach/orb/planar"
)

// RemoveClosePoints walks points once and keeps a point only when it lies
// farther than threshold from the last kept point. The first point is
// always kept. Distance is planar on the first two components.
func RemoveClosePoints(points []Node, threshold float64) []Node {
	if len(points) == 0 {
		return []Node{}
	}

	reduced := make([]Node, 0, len(points))
	reduced = append(reduced, points[0])
	prev := points[0].point()

	for _, p := range points[1:] {
		cur := p.point()
		if planar.Distance(prev, cur) > threshold {
			reduced = append(reduced, p)
			prev = cur
		}
	}

	return reduced
}
