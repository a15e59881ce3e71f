package geojsonio

import (
	"github.com/paulmach/orb"
	geojson "github.com/paulmach/go.geojson"
)

// Bound returns the extent of every position in g. ok is false when g
// holds no positions.
func Bound(g *geojson.Geometry) (b orb.Bound, ok bool) {
	if g == nil {
		return orb.Bound{}, false
	}

	add := func(pos []float64) {
		if len(pos) < 2 {
			return
		}
		p := orb.Point{pos[0], pos[1]}
		if !ok {
			b = p.Bound()
			ok = true
			return
		}
		b = b.Extend(p)
	}

	switch g.Type {
	case geojson.GeometryPoint:
		add(g.Point)
	case geojson.GeometryMultiPoint:
		for _, p := range g.MultiPoint {
			add(p)
		}
	case geojson.GeometryLineString:
		for _, p := range g.LineString {
			add(p)
		}
	case geojson.GeometryMultiLineString:
		for _, ls := range g.MultiLineString {
			for _, p := range ls {
				add(p)
			}
		}
	case geojson.GeometryPolygon:
		for _, ring := range g.Polygon {
			for _, p := range ring {
				add(p)
			}
		}
	case geojson.GeometryMultiPolygon:
		for _, poly := range g.MultiPolygon {
			for _, ring := range poly {
				for _, p := range ring {
					add(p)
				}
			}
		}
	case geojson.GeometryCollection:
		for _, m := range g.Geometries {
			if mb, mok := Bound(m); mok {
				if !ok {
					b, ok = mb, true
				} else {
					b = b.Union(mb)
				}
			}
		}
	}

	return b, ok
}
