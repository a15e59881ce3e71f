// Package geojsonio moves coordinates between GeoJSON documents and the
// simplifier. It pulls the raw coordinate structure out of a geometry,
// runs the simplifier and writes the result back under the same geometry
// type.
package geojsonio

import (
	geojson "github.com/paulmach/go.geojson"
	"github.com/pkg/errors"

	"geometry-simplifier/simplifier"
)

var (
	ErrUnsupportedType = errors.New("unsupported geometry type")
	ErrNilGeometry     = errors.New("geometry is nil")
)

// ExtractCoordinates returns the coordinates of g as a Node. Geometry
// collections hold geometries rather than coordinates and are rejected.
func ExtractCoordinates(g *geojson.Geometry) (simplifier.Node, error) {
	if g == nil {
		return simplifier.Node{}, ErrNilGeometry
	}

	switch g.Type {
	case geojson.GeometryPoint:
		return simplifier.FromAny(g.Point), nil
	case geojson.GeometryMultiPoint:
		return simplifier.FromAny(g.MultiPoint), nil
	case geojson.GeometryLineString:
		return simplifier.FromAny(g.LineString), nil
	case geojson.GeometryMultiLineString:
		return simplifier.FromAny(g.MultiLineString), nil
	case geojson.GeometryPolygon:
		return simplifier.FromAny(g.Polygon), nil
	case geojson.GeometryMultiPolygon:
		return simplifier.FromAny(g.MultiPolygon), nil
	}
	return simplifier.Node{}, errors.Wrapf(ErrUnsupportedType, "extract %q", g.Type)
}

// EmbedCoordinates builds a geometry of type t holding coords. Elements
// that do not fit the nesting of t are dropped.
func EmbedCoordinates(t geojson.GeometryType, coords simplifier.Node) (*geojson.Geometry, error) {
	g := &geojson.Geometry{Type: t}

	switch t {
	case geojson.GeometryPoint:
		g.Point = coords.Floats()
	case geojson.GeometryMultiPoint:
		g.MultiPoint = positions(coords)
	case geojson.GeometryLineString:
		g.LineString = positions(coords)
	case geojson.GeometryMultiLineString:
		g.MultiLineString = lines(coords)
	case geojson.GeometryPolygon:
		g.Polygon = lines(coords)
	case geojson.GeometryMultiPolygon:
		g.MultiPolygon = make([][][][]float64, 0, coords.Len())
		for _, poly := range coords.Children() {
			if poly.IsSeq() {
				g.MultiPolygon = append(g.MultiPolygon, lines(poly))
			}
		}
	default:
		return nil, errors.Wrapf(ErrUnsupportedType, "embed %q", t)
	}

	return g, nil
}

func positions(n simplifier.Node) [][]float64 {
	out := make([][]float64, 0, n.Len())
	for _, c := range n.Children() {
		if c.IsSeq() {
			out = append(out, c.Floats())
		}
	}
	return out
}

func lines(n simplifier.Node) [][][]float64 {
	out := make([][][]float64, 0, n.Len())
	for _, c := range n.Children() {
		if c.IsSeq() {
			out = append(out, positions(c))
		}
	}
	return out
}

// SimplifyGeometry returns a simplified copy of g with the same type.
// Geometry collections are simplified member by member. A nil geometry
// stays nil.
func SimplifyGeometry(g *geojson.Geometry, opts ...simplifier.Option) (*geojson.Geometry, error) {
	if g == nil {
		return nil, nil
	}

	if g.Type == geojson.GeometryCollection {
		members := make([]*geojson.Geometry, len(g.Geometries))
		for i, m := range g.Geometries {
			s, err := SimplifyGeometry(m, opts...)
			if err != nil {
				return nil, errors.Wrapf(err, "collection member %d", i)
			}
			members[i] = s
		}
		return geojson.NewCollectionGeometry(members...), nil
	}

	coords, err := ExtractCoordinates(g)
	if err != nil {
		return nil, err
	}

	return EmbedCoordinates(g.Type, simplifier.New(coords, opts...).Simplify())
}

// SimplifyFeature returns a copy of f with its geometry simplified. ID and
// properties are shared with f; the bounding box is dropped since it may
// no longer be tight.
func SimplifyFeature(f *geojson.Feature, opts ...simplifier.Option) (*geojson.Feature, error) {
	if f == nil {
		return nil, errors.New("feature is nil")
	}

	g, err := SimplifyGeometry(f.Geometry, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "feature %v", f.ID)
	}

	out := geojson.NewFeature(g)
	out.ID = f.ID
	if f.Properties != nil {
		out.Properties = f.Properties
	}
	return out, nil
}

// SimplifyFeatureCollection simplifies every feature of fc.
func SimplifyFeatureCollection(fc *geojson.FeatureCollection, opts ...simplifier.Option) (*geojson.FeatureCollection, error) {
	out := geojson.NewFeatureCollection()
	for i, f := range fc.Features {
		if f == nil {
			continue
		}
		s, err := SimplifyFeature(f, opts...)
		if err != nil {
			return nil, errors.Wrapf(err, "feature index %d", i)
		}
		out.AddFeature(s)
	}
	return out, nil
}
