// Package index keeps simplified features in an R-tree so they can be
// looked up by bounding box.
package index

import (
	"sync"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	geojson "github.com/paulmach/go.geojson"
	"github.com/pkg/errors"

	"geometry-simplifier/internal/geojsonio"
)

// minExtent pads zero-width sides so points and axis-aligned lines still
// form a valid rectangle.
const minExtent = 1e-9

var ErrNoPositions = errors.New("feature has no positions")

// FeatureEntry wraps a feature for R-tree storage
type FeatureEntry struct {
	Feature *geojson.Feature
	BBox    rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (e *FeatureEntry) Bounds() rtreego.Rect {
	return e.BBox
}

// Index manages feature spatial queries
type Index struct {
	mu   sync.RWMutex
	tree *rtreego.Rtree
}

// New creates an empty index
func New() *Index {
	return &Index{tree: rtreego.NewTree(2, 25, 50)} // 2D, min 25, max 50 entries per node
}

// Insert adds f under the extent of its geometry.
func (idx *Index) Insert(f *geojson.Feature) error {
	if f == nil {
		return errors.New("feature is nil")
	}
	b, ok := geojsonio.Bound(f.Geometry)
	if !ok {
		return errors.Wrapf(ErrNoPositions, "feature %v", f.ID)
	}

	rect, err := toRect(b)
	if err != nil {
		return errors.Wrapf(err, "feature %v", f.ID)
	}

	idx.mu.Lock()
	idx.tree.Insert(&FeatureEntry{Feature: f, BBox: rect})
	idx.mu.Unlock()
	return nil
}

// Query returns features whose extent intersects b
func (idx *Index) Query(b orb.Bound) []*geojson.Feature {
	rect, err := toRect(b)
	if err != nil {
		return []*geojson.Feature{}
	}

	idx.mu.RLock()
	results := idx.tree.SearchIntersect(rect)
	idx.mu.RUnlock()

	features := make([]*geojson.Feature, 0, len(results))
	for _, item := range results {
		features = append(features, item.(*FeatureEntry).Feature)
	}
	return features
}

// Len returns the number of indexed features.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.tree.Size()
}

// toRect converts an orb bound to an R-tree rectangle.
func toRect(b orb.Bound) (rtreego.Rect, error) {
	return rtreego.NewRect(
		rtreego.Point{b.Min[0], b.Min[1]},
		[]float64{extent(b.Max[0] - b.Min[0]), extent(b.Max[1] - b.Min[1])},
	)
}

func extent(d float64) float64 {
	if d < minExtent {
		return minExtent
	}
	return d
}
