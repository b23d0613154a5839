package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// CoordinateSource records where a canonical coordinate came from.
type CoordinateSource string

const (
	SourceGeocoded CoordinateSource = "geocoded"
	SourceFallback CoordinateSource = "fallback"
)

// CanonicalRecord is the deduplicated, fallback-resolved form of a place.
// Latitude and Longitude are always set once the record leaves the pipeline.
type CanonicalRecord struct {
	Key              string           `json:"key"`
	Name             string           `json:"name"`
	Address          string           `json:"address"`
	Phone            string           `json:"phone,omitempty"`
	Email            string           `json:"email,omitempty"`
	Latitude         float64          `json:"latitude"`
	Longitude        float64          `json:"longitude"`
	CoordinateSource CoordinateSource `json:"coordinate_source"`
	Region           string           `json:"region,omitempty"`
	Category         string           `json:"category"`
	Source           string           `json:"source"`
}

// LocationString encodes the resolved coordinate as "lat,lng".
func (r CanonicalRecord) LocationString() string {
	return FormatLocation(r.Latitude, r.Longitude)
}

// FormatLocation renders a coordinate pair in the remote store's
// single-string encoding.
func FormatLocation(lat, lng float64) string {
	return fmt.Sprintf("%.6f,%.6f", lat, lng)
}

// ParseLocation reads a "lat,lng" string back into a coordinate pair.
func ParseLocation(s string) (lat, lng float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, eris.Errorf("model: malformed location %q", s)
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, eris.Wrapf(err, "model: parse latitude %q", parts[0])
	}
	lng, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, eris.Wrapf(err, "model: parse longitude %q", parts[1])
	}
	return lat, lng, nil
}

// Region is a named geographic bucket with one representative coordinate.
type Region struct {
	Name      string  `json:"name" yaml:"name"`
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}
