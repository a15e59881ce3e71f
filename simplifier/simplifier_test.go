package simplifier_test

import (
	"encoding/json"
	"io"
	"log"
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/go-logr/stdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geometry-simplifier/simplifier"
)

func ring(points ...[2]float64) simplifier.Node {
	children := make([]simplifier.Node, len(points))
	for i, p := range points {
		children[i] = simplifier.Position(p[0], p[1])
	}
	return simplifier.Seq(children...)
}

func mustNode(t *testing.T, raw string) simplifier.Node {
	t.Helper()
	var n simplifier.Node
	require.NoError(t, json.Unmarshal([]byte(raw), &n))
	return n
}

func TestReduceDecimals(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"point", `[0.12345, 1.98765]`, `[0.12,1.99]`},
		{"integral leaves untouched", `[3, -7, 1e6]`, `[3,-7,1000000]`},
		{"decimal midpoint", `[1.005, 2.675, -5.455]`, `[1.01,2.68,-5.46]`},
		{"nested", `[[[0.111, 0.999], [1.234, 5.678]]]`, `[[[0.11,1],[1.23,5.68]]]`},
		{"non-numeric element becomes empty", `[[1.111, "x"], null]`, `[[1.11,[]],[]]`},
		{"empty", `[]`, `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := simplifier.ReduceDecimals(mustNode(t, tt.in), 2)
			b, err := json.Marshal(got)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(b))
		})
	}
}

func TestReduceDecimalsCoercesNonSequences(t *testing.T) {
	for _, n := range []simplifier.Node{{}, simplifier.Leaf(1.234), mustNode(t, `"text"`), mustNode(t, `{"a":1}`)} {
		got := simplifier.ReduceDecimals(n, 2)
		assert.True(t, got.IsSeq())
		assert.Equal(t, 0, got.Len())
	}
}

func TestReduceDecimalsKeepsNonFinite(t *testing.T) {
	got := simplifier.ReduceDecimals(simplifier.Position(math.Inf(1), math.NaN(), 0.129), 2)
	vals := got.Floats()
	require.Len(t, vals, 3)
	assert.True(t, math.IsInf(vals[0], 1))
	assert.True(t, math.IsNaN(vals[1]))
	assert.Equal(t, 0.13, vals[2])
}

func TestReduceDecimalsShapeAndIdempotence(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		polys := make([]simplifier.Node, 1+rng.Intn(3))
		for j := range polys {
			rings := make([]simplifier.Node, 1+rng.Intn(3))
			for k := range rings {
				pts := make([]simplifier.Node, 1+rng.Intn(8))
				for l := range pts {
					pts[l] = simplifier.Position(rng.Float64()*360-180, rng.Float64()*180-90)
				}
				rings[k] = simplifier.Seq(pts...)
			}
			polys[j] = simplifier.Seq(rings...)
		}
		in := simplifier.Seq(polys...)

		once := simplifier.ReduceDecimals(in, 2)
		assert.Equal(t, simplifier.Depth(in), simplifier.Depth(once))
		assert.Equal(t, in.Len(), once.Len())
		for j, p := range in.Children() {
			assert.Equal(t, p.Len(), once.Children()[j].Len())
		}
		assert.True(t, once.Equal(simplifier.ReduceDecimals(once, 2)), "rounding is not idempotent")
	}
}

func TestReduceDecimalsPrecision(t *testing.T) {
	got := simplifier.ReduceDecimals(simplifier.Position(1.23456, 9.87654), 4)
	assert.Equal(t, []float64{1.2346, 9.8765}, got.Floats())

	got = simplifier.ReduceDecimals(simplifier.Position(1.5, 2.4), 0)
	assert.Equal(t, []float64{2, 2}, got.Floats())
}

func TestDepth(t *testing.T) {
	tests := []struct {
		name string
		in   simplifier.Node
		want int
	}{
		{"absent", simplifier.Node{}, 1},
		{"leaf", simplifier.Leaf(1), 1},
		{"empty", simplifier.Seq(), 1},
		{"point", simplifier.Position(1, 2), 1},
		{"line", ring([2]float64{0, 0}, [2]float64{1, 1}), 2},
		{"polygon", simplifier.Seq(ring([2]float64{0, 0})), 3},
		{"multipolygon", simplifier.Seq(simplifier.Seq(ring([2]float64{0, 0}))), 4},
		{"empty ring list", simplifier.Seq(simplifier.Seq()), 2},
		{"heterogeneous follows first", simplifier.Seq(simplifier.Leaf(1), ring([2]float64{0, 0})), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, simplifier.Depth(tt.in))
		})
	}
}

func TestRemoveClosePoints(t *testing.T) {
	pts := ring(
		[2]float64{0, 0},
		[2]float64{0.03, 0},
		[2]float64{0.06, 0},
		[2]float64{0.1, 0},
		[2]float64{0.1, 0.05},
	).Children()

	got := simplifier.RemoveClosePoints(pts, 0.05)
	assert.True(t, ring([2]float64{0, 0}, [2]float64{0.06, 0}, [2]float64{0.1, 0.05}).Equal(simplifier.Seq(got...)))

	// exactly on the threshold is dropped
	got = simplifier.RemoveClosePoints(ring([2]float64{0, 0}, [2]float64{3, 4}).Children(), 5)
	assert.Len(t, got, 1)

	assert.Empty(t, simplifier.RemoveClosePoints(nil, 0.05))
}

func TestRemoveClosePointsMonotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	pts := make([]simplifier.Node, 200)
	for i := range pts {
		pts[i] = simplifier.Position(rng.Float64(), rng.Float64())
	}

	prev := 0
	for threshold := 0.2; threshold >= 0; threshold -= 0.01 {
		n := len(simplifier.RemoveClosePoints(pts, threshold))
		assert.GreaterOrEqual(t, n, prev, "threshold %v", threshold)
		prev = n
	}
}

func TestRemoveClosePointsUsesFirstTwoComponents(t *testing.T) {
	pts := []simplifier.Node{
		simplifier.Position(0, 0, 0),
		simplifier.Position(0, 0, 100),
		simplifier.Position(1, 0, 100),
	}
	got := simplifier.RemoveClosePoints(pts, 0.05)
	require.Len(t, got, 2)
	assert.Equal(t, []float64{1, 0, 100}, got[1].Floats())
}

func TestSimplifyLines(t *testing.T) {
	t.Run("point unchanged", func(t *testing.T) {
		p := simplifier.Position(0.12, 1.99)
		assert.True(t, p.Equal(simplifier.SimplifyLines(p, 0.05)))
	})

	t.Run("leaf unchanged", func(t *testing.T) {
		assert.True(t, simplifier.Leaf(3).Equal(simplifier.SimplifyLines(simplifier.Leaf(3), 0.05)))
	})

	t.Run("open line thinned", func(t *testing.T) {
		in := ring(
			[2]float64{0, 0}, [2]float64{0.01, 0}, [2]float64{1, 0},
			[2]float64{2, 0}, [2]float64{3, 0}, [2]float64{3.02, 0},
		)
		want := ring([2]float64{0, 0}, [2]float64{1, 0}, [2]float64{2, 0}, [2]float64{3, 0})
		assert.True(t, want.Equal(simplifier.SimplifyLines(in, 0.05)))
	})

	t.Run("one point ring", func(t *testing.T) {
		in := ring([2]float64{5, 5})
		assert.True(t, in.Equal(simplifier.SimplifyLines(in, 0.05)))
	})

	t.Run("ring keeping its last point is not closed twice", func(t *testing.T) {
		in := ring(
			[2]float64{0, 0}, [2]float64{1, 0}, [2]float64{1, 1},
			[2]float64{0, 1}, [2]float64{0, 0},
		)
		assert.True(t, in.Equal(simplifier.SimplifyLines(in, 0.05)))
	})
}

// Six distinct points with two of them bunched next to the first.
func TestSimplifyLinesDropsBunchedRingPoints(t *testing.T) {
	in := ring(
		[2]float64{0, 0},
		[2]float64{0.005, 0},
		[2]float64{0.008, 0.003},
		[2]float64{1, 0},
		[2]float64{1, 1},
		[2]float64{0, 1},
		[2]float64{0, 0},
	)
	want := ring(
		[2]float64{0, 0},
		[2]float64{1, 0},
		[2]float64{1, 1},
		[2]float64{0, 1},
		[2]float64{0, 0},
	)

	got := simplifier.SimplifyLines(in, 0.05)
	assert.True(t, want.Equal(got), "got %v", got.Any())
}

func TestSimplifyLinesTooFewPointsKeepsRing(t *testing.T) {
	in := ring([2]float64{0, 0}, [2]float64{1, 1}, [2]float64{0, 0})
	got := simplifier.SimplifyLines(in, 0.05)
	assert.True(t, in.Equal(got), "got %v", got.Any())
}

func TestSimplifyLinesRelaxesThresholdForSmallRings(t *testing.T) {
	// at 0.05 only the first point survives; at 0.02 all four do
	in := ring(
		[2]float64{0, 0},
		[2]float64{0.03, 0},
		[2]float64{0.03, 0.03},
		[2]float64{0, 0.03},
		[2]float64{0, 0},
	)
	got := simplifier.SimplifyLines(in, 0.05)
	assert.True(t, in.Equal(got), "got %v", got.Any())
	assert.GreaterOrEqual(t, got.Len(), simplifier.MinRingPoints)
}

func TestSimplifyLinesThresholdEdges(t *testing.T) {
	square := ring(
		[2]float64{0, 0},
		[2]float64{1, 0},
		[2]float64{1, 1},
		[2]float64{0, 1},
		[2]float64{0.5, 2},
		[2]float64{0, 0},
	)
	// only three distinct positions, so every attempt falls short
	duplicated := ring(
		[2]float64{0, 0},
		[2]float64{0, 0},
		[2]float64{1, 0},
		[2]float64{1, 1},
		[2]float64{0, 0},
	)
	// the relaxation never gets near the side length before the attempts
	// run out
	wide := ring(
		[2]float64{0, 0},
		[2]float64{1e6, 0},
		[2]float64{1e6, 1e6},
		[2]float64{0, 1e6},
		[2]float64{0, 0},
	)

	tests := []struct {
		name      string
		in        simplifier.Node
		threshold float64
		want      simplifier.Node
	}{
		{"zero", square, 0, square},
		{"nan", square, math.NaN(), square},
		{"positive infinity", square, math.Inf(1), square},
		{"negative infinity", square, math.Inf(-1), square},
		{"huge", square, 1e300, square},
		{"max float", square, math.MaxFloat64, square},
		{"above reach", square, 2.5, square},
		{"duplicates at huge threshold", duplicated, 1e300,
			ring([2]float64{0, 0}, [2]float64{1, 0}, [2]float64{1, 1}, [2]float64{0, 0})},
		{"duplicates at infinity", duplicated, math.Inf(1),
			ring([2]float64{0, 0}, [2]float64{1, 0}, [2]float64{1, 1}, [2]float64{0, 0})},
		{"wide at infinity", wide, math.Inf(1), wide},
		{"wide at huge threshold", wide, 1e300, wide},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := simplifier.SimplifyLines(tt.in, tt.threshold)
			assert.True(t, tt.want.Equal(got), "got %v", got.Any())

			children := got.Children()
			require.NotEmpty(t, children)
			assert.True(t, children[0].Equal(children[len(children)-1]), "ring left open: %v", got.Any())
			assert.GreaterOrEqual(t, got.Len(), simplifier.MinRingPoints)
		})
	}
}

func TestSimplifyLinesRelaxesBelowSpacing(t *testing.T) {
	// the ring only survives below its 0.001 spacing, far under any
	// starting threshold
	in := ring(
		[2]float64{0, 0},
		[2]float64{0.001, 0},
		[2]float64{0.001, 0.001},
		[2]float64{0, 0.001},
		[2]float64{0, 0},
	)
	for _, threshold := range []float64{0.05, 0.07, 1} {
		got := simplifier.SimplifyLines(in, threshold)
		assert.True(t, in.Equal(got), "threshold %v: got %v", threshold, got.Any())
	}
}

func TestNaNThresholdOption(t *testing.T) {
	in := ring(
		[2]float64{0, 0},
		[2]float64{0.03, 0},
		[2]float64{1, 0},
		[2]float64{1, 1},
		[2]float64{0, 1},
		[2]float64{0, 0},
	)
	s := simplifier.New(in, simplifier.WithThreshold(math.NaN()))
	assert.Equal(t, simplifier.DefaultThreshold, s.Threshold())

	got := s.Simplify()
	want := ring([2]float64{0, 0}, [2]float64{1, 0}, [2]float64{1, 1}, [2]float64{0, 1}, [2]float64{0, 0})
	assert.True(t, want.Equal(got), "got %v", got.Any())
}

func TestSimplifyLinesKeepsClosure(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		pts := make([][2]float64, 3+rng.Intn(20))
		for j := range pts {
			pts[j] = [2]float64{rng.Float64() * 0.2, rng.Float64() * 0.2}
		}
		pts = append(pts, pts[0])
		in := ring(pts...)

		got := simplifier.SimplifyLines(in, 0.05)
		children := got.Children()
		require.NotEmpty(t, children)
		assert.True(t, children[0].Equal(children[len(children)-1]))
		if len(pts)-1 >= simplifier.MinRingPoints {
			assert.GreaterOrEqual(t, got.Len(), simplifier.MinRingPoints)
		}
	}
}

func TestSimplifyLinesMultiPolygon(t *testing.T) {
	square := ring(
		[2]float64{0, 0}, [2]float64{0.001, 0}, [2]float64{1, 0},
		[2]float64{1, 1}, [2]float64{0, 1}, [2]float64{0, 0},
	)
	hole := ring(
		[2]float64{0.2, 0.2}, [2]float64{0.4, 0.2}, [2]float64{0.4, 0.4},
		[2]float64{0.2, 0.4}, [2]float64{0.2, 0.2},
	)
	in := simplifier.Seq(
		simplifier.Seq(square, hole),
		simplifier.Seq(hole),
	)
	require.Equal(t, 4, simplifier.Depth(in))

	got := simplifier.SimplifyLines(in, 0.05)
	require.Equal(t, 2, got.Len())
	require.Equal(t, 2, got.Children()[0].Len())
	require.Equal(t, 1, got.Children()[1].Len())

	wantSquare := ring(
		[2]float64{0, 0}, [2]float64{1, 0}, [2]float64{1, 1},
		[2]float64{0, 1}, [2]float64{0, 0},
	)
	assert.True(t, wantSquare.Equal(got.Children()[0].Children()[0]))
	assert.True(t, hole.Equal(got.Children()[0].Children()[1]))
	assert.True(t, hole.Equal(got.Children()[1].Children()[0]))
}

func TestSimplify(t *testing.T) {
	t.Run("single coordinate", func(t *testing.T) {
		got := simplifier.New(mustNode(t, `[0.12345, 1.98765]`)).Simplify()
		assert.Equal(t, []float64{0.12, 1.99}, got.Floats())
	})

	t.Run("single coordinate wrapped in a line", func(t *testing.T) {
		got := simplifier.New(mustNode(t, `[[0.12345, 1.98765]]`)).Simplify()
		b, err := json.Marshal(got)
		require.NoError(t, err)
		assert.JSONEq(t, `[[0.12,1.99]]`, string(b))
	})

	t.Run("rounding can collapse a ring", func(t *testing.T) {
		in := mustNode(t, `[[[0.001,0.001],[0.002,0.001],[0.003,0.002],[0.001,0.001]]]`)
		got := simplifier.Simplify(in, 0.05)
		b, err := json.Marshal(got)
		require.NoError(t, err)
		assert.JSONEq(t, `[[[0,0]]]`, string(b))
	})

	t.Run("input untouched", func(t *testing.T) {
		in := ring([2]float64{0.123, 0}, [2]float64{0.124, 0}, [2]float64{1, 1})
		before := in.Any()
		simplifier.New(in).Simplify()
		assert.Equal(t, before, in.Any())
	})

	t.Run("malformed input", func(t *testing.T) {
		got := simplifier.New(simplifier.Node{}).Simplify()
		assert.True(t, got.IsSeq())
		assert.Zero(t, got.Len())
	})
}

func TestSimplifyThresholdOptions(t *testing.T) {
	in := ring(
		[2]float64{0, 0}, [2]float64{0.5, 0}, [2]float64{1, 0},
		[2]float64{1, 1}, [2]float64{0, 1}, [2]float64{0, 0},
	)
	wide := ring(
		[2]float64{0, 0}, [2]float64{1, 0},
		[2]float64{1, 1}, [2]float64{0, 1}, [2]float64{0, 0},
	)

	got := simplifier.New(in, simplifier.WithThreshold(0.6)).Simplify()
	assert.True(t, wide.Equal(got), "got %v", got.Any())

	s := simplifier.New(in, simplifier.WithThreshold(0.6), simplifier.WithLegacyBaseThreshold(true))
	assert.Equal(t, simplifier.DefaultThreshold, s.Threshold())
	assert.True(t, in.Equal(s.Simplify()))

	assert.Equal(t, 0.0, simplifier.New(in, simplifier.WithThreshold(-1)).Threshold())
}

func TestSimplifyConcurrentUse(t *testing.T) {
	stdr.SetVerbosity(2)
	defer stdr.SetVerbosity(0)

	in := mustNode(t, `[[[0.1234,0.1234],[1.5678,0.1234],[1.5678,1.5678],[0.1234,1.5678],[0.1234,0.1234]]]`)
	s := simplifier.New(in, simplifier.WithLogger(stdr.New(log.New(io.Discard, "", log.LstdFlags))))
	want := s.Simplify()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.True(t, want.Equal(s.Simplify()))
		}()
	}
	wg.Wait()
}

func TestNodeJSON(t *testing.T) {
	n := mustNode(t, `[[1, 2.5], [3, 4]]`)
	assert.Equal(t, 2, simplifier.Depth(n))
	b, err := json.Marshal(n)
	require.NoError(t, err)
	assert.JSONEq(t, `[[1,2.5],[3,4]]`, string(b))

	b, err = json.Marshal(simplifier.Position(math.NaN()))
	require.NoError(t, err)
	assert.Equal(t, `[null]`, string(b))

	assert.True(t, simplifier.FromAny([][]float64{{1, 2}, {3, 4}}).Equal(n))
	assert.True(t, simplifier.FromAny(struct{}{}).IsAbsent())
}
