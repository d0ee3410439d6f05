package repositories

import "context"

// IdentityProvider resolves the acting user for audit stamps. The id is opaque.
type IdentityProvider interface {
	CurrentUserID(ctx context.Context) (string, bool)
}

// Geocoder turns coordinates into a human-readable address.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
}
