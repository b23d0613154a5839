// Package geo classifies coordinates and assigns region fallbacks for
// entries the geocoder could not place.
package geo

import (
	"github.com/twpayne/go-geom"

	"github.com/sells-group/poi-sync/internal/model"
)

// Class is the outcome of classifying a raw entry's coordinate.
type Class string

const (
	ClassGeocoded      Class = "geocoded"
	ClassNeedsFallback Class = "needs_fallback"
)

// Reason explains a needs-fallback classification.
type Reason string

const (
	ReasonNone        Reason = ""
	ReasonMissing     Reason = "missing_coordinate"
	ReasonNotFound    Reason = "status_not_found"
	ReasonZero        Reason = "zero_sentinel"
	ReasonOutOfBounds Reason = "out_of_bounds"
)

// Bounds is the plausible area for geocoded coordinates.
type Bounds struct {
	b *geom.Bounds
}

// NewBounds creates a latitude/longitude bounding box.
func NewBounds(minLat, maxLat, minLng, maxLng float64) *Bounds {
	return &Bounds{b: geom.NewBounds(geom.XY).Set(minLng, minLat, maxLng, maxLat)}
}

// Contains reports whether the coordinate lies inside the box, edges included.
func (b *Bounds) Contains(lat, lng float64) bool {
	return b.b.OverlapsPoint(geom.XY, geom.Coord{lng, lat})
}

// Sink receives every entry classified as needing a fallback.
type Sink interface {
	Add(e model.RawEntry, reason Reason)
}

// Classifier decides whether a raw coordinate can be trusted.
type Classifier struct {
	bounds *Bounds
	sink   Sink
}

// NewClassifier creates a Classifier. A nil bounds disables the range check;
// a nil sink discards needs-fallback entries.
func NewClassifier(bounds *Bounds, sink Sink) *Classifier {
	return &Classifier{bounds: bounds, sink: sink}
}

// Classify returns ClassGeocoded when both coordinates are present, the
// status is found, neither value is exactly zero and the point lies inside
// the plausible bounds. Otherwise the entry is handed to the sink before
// ClassNeedsFallback is returned.
func (c *Classifier) Classify(e model.RawEntry) (Class, Reason) {
	reason := c.reason(e)
	if reason == ReasonNone {
		return ClassGeocoded, ReasonNone
	}
	if c.sink != nil {
		c.sink.Add(e, reason)
	}
	return ClassNeedsFallback, reason
}

func (c *Classifier) reason(e model.RawEntry) Reason {
	switch {
	case e.Latitude == nil || e.Longitude == nil:
		return ReasonMissing
	case e.GeocodeStatus() != model.GeocodeFound:
		return ReasonNotFound
	case *e.Latitude == 0 || *e.Longitude == 0:
		// Zero marks an ungeocoded entry; no place in this domain sits on
		// the equator or the prime meridian.
		return ReasonZero
	case c.bounds != nil && !c.bounds.Contains(*e.Latitude, *e.Longitude):
		return ReasonOutOfBounds
	default:
		return ReasonNone
	}
}
