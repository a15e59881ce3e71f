package simplifier

import (
	"math"

	"github.com/shopspring/decimal"
)

// DefaultPrecision is the number of decimal places kept by ReduceDecimals.
const DefaultPrecision = 2

// ReduceDecimals rounds every fractional leaf of node to places decimal
// places, keeping the shape of node. Integral and non-finite leaves are
// returned unchanged. Anything that is not a sequence reduces to the empty
// sequence.
func ReduceDecimals(node Node, places int) Node {
	if !node.IsSeq() {
		return Seq()
	}

	out := make([]Node, len(node.children))
	for i, c := range node.children {
		if c.IsLeaf() {
			out[i] = Leaf(roundDecimal(c.value, places))
		} else {
			out[i] = ReduceDecimals(c, places)
		}
	}
	return Seq(out...)
}

// roundDecimal rounds half away from zero on the decimal representation of
// v, so 1.005 becomes 1.01 instead of the binary-floor 1.0.
func roundDecimal(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v == math.Trunc(v) {
		return v
	}
	if places < 0 {
		places = 0
	}
	f, _ := decimal.NewFromFloat(v).Round(int32(places)).Float64()
	return f
}
