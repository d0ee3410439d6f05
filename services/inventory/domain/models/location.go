package models

import (
	"fmt"
	"math"
	"strings"
)

// LocationKind tags which variant of Location is populated.
type LocationKind string

const (
	LocationEmpty  LocationKind = "empty"
	LocationManual LocationKind = "manual"
	LocationGPS    LocationKind = "gps"
)

// Location is a tagged variant: empty, a manually typed address, or GPS
// coordinates with an optional resolved address. Updates replace the whole
// value; coordinate fields are never merged.
type Location struct {
	Kind    LocationKind
	Address string
	Lat     float64
	Lng     float64
}

// EmptyLocation returns the zero-information variant.
func EmptyLocation() Location {
	return Location{Kind: LocationEmpty}
}

// ManualLocation returns a location holding only a typed address.
func ManualLocation(address string) (Location, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return Location{}, fmt.Errorf("manual location requires an address")
	}
	return Location{Kind: LocationManual, Address: address}, nil
}

// GPSLocation returns a coordinate location. address may be empty and is
// filled later by reverse geocoding or the coordinate fallback.
func GPSLocation(lat, lng float64, address string) (Location, error) {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return Location{}, fmt.Errorf("latitude %v out of range [-90, 90]", lat)
	}
	if math.IsNaN(lng) || lng < -180 || lng > 180 {
		return Location{}, fmt.Errorf("longitude %v out of range [-180, 180]", lng)
	}
	return Location{Kind: LocationGPS, Lat: lat, Lng: lng, Address: strings.TrimSpace(address)}, nil
}

// Validate checks the variant invariants of an already-built Location.
func (l Location) Validate() error {
	switch l.Kind {
	case LocationEmpty, "":
		if l.Address != "" || l.Lat != 0 || l.Lng != 0 {
			return fmt.Errorf("empty location must not carry an address or coordinates")
		}
		return nil
	case LocationManual:
		_, err := ManualLocation(l.Address)
		return err
	case LocationGPS:
		_, err := GPSLocation(l.Lat, l.Lng, l.Address)
		return err
	default:
		return fmt.Errorf("unknown location kind %q", l.Kind)
	}
}

// NeedsGeocoding reports whether this is a GPS location without an address.
func (l Location) NeedsGeocoding() bool {
	return l.Kind == LocationGPS && l.Address == ""
}

// CoordinatesLabel renders the coordinates as "lat, lng" with six decimals.
// Used as the address when reverse geocoding is unavailable.
func (l Location) CoordinatesLabel() string {
	return fmt.Sprintf("%.6f, %.6f", l.Lat, l.Lng)
}
