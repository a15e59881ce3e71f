package simplifier

import (
	"math"

	"github.com/go-logr/logr"
	"github.com/paulmach/orb/planar"
)

const (
	// DefaultThreshold is the starting distance below which consecutive
	// points are merged.
	DefaultThreshold = 0.05

	// ThresholdStep is subtracted from the threshold each time a ring
	// thins below MinRingPoints.
	ThresholdStep = 0.01

	// MinRingPoints is the smallest point count of a valid linear ring.
	MinRingPoints = 4
)

// SimplifyLines thins every line or ring found in node, leaving the
// grouping layers above them untouched. Non-sequences and single
// coordinates are returned as is.
func SimplifyLines(node Node, threshold float64) Node {
	return simplifyLines(node, threshold, logr.Discard())
}

func simplifyLines(node Node, threshold float64, logger logr.Logger) Node {
	if !node.IsSeq() {
		return node
	}

	switch depth := Depth(node); {
	case depth < 2:
		return node
	case depth > 2:
		out := make([]Node, len(node.children))
		for i, c := range node.children {
			out[i] = simplifyLines(c, threshold, logger)
		}
		return Seq(out...)
	default:
		return simplifyRing(node, threshold, logger)
	}
}

// simplifyRing thins a single line. A closed ring is opened before
// filtering and closed again afterwards.
func simplifyRing(line Node, threshold float64, logger logr.Logger) Node {
	points := line.children
	n := len(points)

	var closing Node
	closed := n > 0 && points[0].Equal(points[n-1])
	if closed {
		closing = points[n-1]
		points = points[:n-1]
	}

	filtered := thin(points, threshold)
	if len(filtered) == 0 {
		filtered = points
	}

	out := make([]Node, len(filtered), len(filtered)+1)
	copy(out, filtered)
	if closed && (len(out) == 0 || !out[len(out)-1].Equal(closing)) {
		out = append(out, closing)
	}

	logger.V(2).Info("thinned line", "closed", closed, "before", n, "after", len(out))
	return Seq(out...)
}

// thin relaxes threshold in ThresholdStep decrements until the filtered
// line keeps MinRingPoints points or the threshold reaches zero. The
// number of attempts is fixed up front so float drift cannot add rounds,
// and the last attempt always runs at zero.
func thin(points []Node, base float64) []Node {
	base = startThreshold(points, base)

	attempts := maxThinningAttempts
	if n := math.Ceil(base/ThresholdStep) + 1; n < float64(attempts) {
		attempts = int(n)
	}

	var filtered []Node
	for k := 0; k < attempts; k++ {
		threshold := math.Max(base-float64(k)*ThresholdStep, 0)
		if k == attempts-1 {
			threshold = 0
		}
		filtered = RemoveClosePoints(points, threshold)
		if len(filtered) >= MinRingPoints || threshold <= 0 {
			break
		}
	}
	return filtered
}

// maxThinningAttempts bounds the relaxation loop for lines spanning more
// than a few hundred units.
const maxThinningAttempts = 1 << 16

// startThreshold sanitises base and skips the thresholds at or above the
// line's reach, the largest distance from its first point. Every such
// threshold keeps only the first point, so skipping them does not change
// the result.
func startThreshold(points []Node, base float64) float64 {
	switch {
	case math.IsNaN(base):
		base = DefaultThreshold
	case base <= 0 || len(points) == 0:
		return 0
	}

	first := points[0].point()
	var reach float64
	for _, p := range points[1:] {
		reach = math.Max(reach, planar.Distance(first, p.point()))
	}
	if base <= reach || math.IsNaN(reach) {
		return base
	}

	skip := math.Floor((base - reach) / ThresholdStep)
	if start := base - skip*ThresholdStep; !math.IsInf(base, 0) && start >= reach && start-reach <= ThresholdStep {
		return start
	}
	return reach
}
