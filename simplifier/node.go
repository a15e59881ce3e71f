package simplifier

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/paulmach/orb"
)

type kind uint8

const (
	kindAbsent kind = iota
	kindLeaf
	kindSeq
)

// Node is a coordinate structure: either a numeric leaf or a sequence of
// further nodes. The zero value is an absent node and stands for nil or
// malformed input.
type Node struct {
	kind     kind
	value    float64
	children []Node
}

// Leaf returns a numeric leaf.
func Leaf(v float64) Node {
	return Node{kind: kindLeaf, value: v}
}

// Seq returns a sequence holding children. Seq() is the empty sequence.
func Seq(children ...Node) Node {
	if children == nil {
		children = []Node{}
	}
	return Node{kind: kindSeq, children: children}
}

// Position returns a depth-1 sequence of leaves.
func Position(values ...float64) Node {
	children := make([]Node, len(values))
	for i, v := range values {
		children[i] = Leaf(v)
	}
	return Seq(children...)
}

func (n Node) IsLeaf() bool   { return n.kind == kindLeaf }
func (n Node) IsSeq() bool    { return n.kind == kindSeq }
func (n Node) IsAbsent() bool { return n.kind == kindAbsent }

// Value returns the leaf value, or 0 for sequences and absent nodes.
func (n Node) Value() float64 {
	return n.value
}

// Len returns the number of children of a sequence.
func (n Node) Len() int {
	return len(n.children)
}

// Children returns the children of a sequence. The slice is shared with n
// and must not be modified.
func (n Node) Children() []Node {
	return n.children
}

// Equal reports whether n and other have the same shape and exactly equal
// leaf values.
func (n Node) Equal(other Node) bool {
	if n.kind != other.kind {
		return false
	}
	switch n.kind {
	case kindLeaf:
		return n.value == other.value
	case kindSeq:
		if len(n.children) != len(other.children) {
			return false
		}
		for i := range n.children {
			if !n.children[i].Equal(other.children[i]) {
				return false
			}
		}
	}
	return true
}

// Floats returns the leaf values held directly by n. Nested sequences are
// skipped.
func (n Node) Floats() []float64 {
	out := make([]float64, 0, len(n.children))
	for _, c := range n.children {
		if c.kind == kindLeaf {
			out = append(out, c.value)
		}
	}
	return out
}

// point reads the first two components of a coordinate. Missing or
// non-numeric components are read as 0.
func (n Node) point() orb.Point {
	var p orb.Point
	for i := 0; i < 2 && i < len(n.children); i++ {
		if n.children[i].kind == kindLeaf {
			p[i] = n.children[i].value
		}
	}
	return p
}

// FromAny converts a decoded JSON value or a float64 slice of any nesting
// into a Node. Values of any other type become absent nodes.
func FromAny(v any) Node {
	switch t := v.(type) {
	case nil:
		return Node{}
	case Node:
		return t
	case float64:
		return Leaf(t)
	case float32:
		return Leaf(float64(t))
	case int:
		return Leaf(float64(t))
	case int64:
		return Leaf(float64(t))
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Node{}
		}
		return Leaf(f)
	case []any:
		children := make([]Node, len(t))
		for i, c := range t {
			children[i] = FromAny(c)
		}
		return Seq(children...)
	case []float64:
		return Position(t...)
	case [][]float64:
		children := make([]Node, len(t))
		for i, c := range t {
			children[i] = Position(c...)
		}
		return Seq(children...)
	case [][][]float64:
		children := make([]Node, len(t))
		for i, c := range t {
			children[i] = FromAny(c)
		}
		return Seq(children...)
	case [][][][]float64:
		children := make([]Node, len(t))
		for i, c := range t {
			children[i] = FromAny(c)
		}
		return Seq(children...)
	}
	return Node{}
}

// Any converts n back into plain values: float64 for leaves, []any for
// sequences and nil for absent nodes.
func (n Node) Any() any {
	switch n.kind {
	case kindLeaf:
		return n.value
	case kindSeq:
		out := make([]any, len(n.children))
		for i, c := range n.children {
			out[i] = c.Any()
		}
		return out
	}
	return nil
}

// MarshalJSON encodes n as nested JSON arrays. Non-finite leaves have no
// JSON form and are written as null.
func (n Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	n.writeJSON(&buf)
	return buf.Bytes(), nil
}

func (n Node) writeJSON(buf *bytes.Buffer) {
	switch n.kind {
	case kindLeaf:
		if math.IsNaN(n.value) || math.IsInf(n.value, 0) {
			buf.WriteString("null")
			return
		}
		b, _ := json.Marshal(n.value)
		buf.Write(b)
	case kindSeq:
		buf.WriteByte('[')
		for i, c := range n.children {
			if i > 0 {
				buf.WriteByte(',')
			}
			c.writeJSON(buf)
		}
		buf.WriteByte(']')
	default:
		buf.WriteString("null")
	}
}

// UnmarshalJSON decodes any JSON value. Strings, objects and booleans
// become absent nodes rather than errors.
func (n *Node) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	*n = FromAny(v)
	return nil
}
