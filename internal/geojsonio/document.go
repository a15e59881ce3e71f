package geojsonio

import (
	"encoding/json"

	geojson "github.com/paulmach/go.geojson"
	"github.com/pkg/errors"

	"geometry-simplifier/simplifier"
)

const (
	typeFeature           = "Feature"
	typeFeatureCollection = "FeatureCollection"
)

var ErrUnknownDocument = errors.New("unknown geojson document type")

// Document is a decoded GeoJSON object. Exactly one of the fields is set.
type Document struct {
	Geometry          *geojson.Geometry
	Feature           *geojson.Feature
	FeatureCollection *geojson.FeatureCollection
}

// Decode parses a GeoJSON geometry, feature or feature collection.
func Decode(data []byte) (Document, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return Document{}, errors.Wrap(err, "read geojson type")
	}

	switch head.Type {
	case typeFeatureCollection:
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return Document{}, errors.Wrap(err, "decode feature collection")
		}
		return Document{FeatureCollection: fc}, nil
	case typeFeature:
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return Document{}, errors.Wrap(err, "decode feature")
		}
		return Document{Feature: f}, nil
	case string(geojson.GeometryPoint), string(geojson.GeometryMultiPoint),
		string(geojson.GeometryLineString), string(geojson.GeometryMultiLineString),
		string(geojson.GeometryPolygon), string(geojson.GeometryMultiPolygon),
		string(geojson.GeometryCollection):
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return Document{}, errors.Wrap(err, "decode geometry")
		}
		return Document{Geometry: g}, nil
	}
	return Document{}, errors.Wrapf(ErrUnknownDocument, "%q", head.Type)
}

// Type returns the GeoJSON type name of the document.
func (d Document) Type() string {
	switch {
	case d.FeatureCollection != nil:
		return typeFeatureCollection
	case d.Feature != nil:
		return typeFeature
	case d.Geometry != nil:
		return string(d.Geometry.Type)
	}
	return ""
}

// Features returns the features held by the document. A bare geometry is
// wrapped into a feature without properties.
func (d Document) Features() []*geojson.Feature {
	switch {
	case d.FeatureCollection != nil:
		return d.FeatureCollection.Features
	case d.Feature != nil:
		return []*geojson.Feature{d.Feature}
	case d.Geometry != nil:
		return []*geojson.Feature{geojson.NewFeature(d.Geometry)}
	}
	return nil
}

// Simplify returns a simplified copy of the document of the same type.
func (d Document) Simplify(opts ...simplifier.Option) (Document, error) {
	switch {
	case d.FeatureCollection != nil:
		fc, err := SimplifyFeatureCollection(d.FeatureCollection, opts...)
		return Document{FeatureCollection: fc}, err
	case d.Feature != nil:
		f, err := SimplifyFeature(d.Feature, opts...)
		return Document{Feature: f}, err
	case d.Geometry != nil:
		g, err := SimplifyGeometry(d.Geometry, opts...)
		return Document{Geometry: g}, err
	}
	return Document{}, ErrUnknownDocument
}

// MarshalJSON encodes whichever object the document holds.
func (d Document) MarshalJSON() ([]byte, error) {
	switch {
	case d.FeatureCollection != nil:
		return d.FeatureCollection.MarshalJSON()
	case d.Feature != nil:
		return d.Feature.MarshalJSON()
	case d.Geometry != nil:
		return d.Geometry.MarshalJSON()
	}
	return nil, ErrUnknownDocument
}
