package domain

import "context"

// Profile is a raw profile record returned by the search gateway
type Profile struct {
	ID        int64
	FirstName string
	LastName  string
}

// SearchRequest holds the criteria for a candidate search
type SearchRequest struct {
	AgeFrom int
	AgeTo   int
	Sex     Sex
	CityID  int64
	Count   int
	Offset  int
}

// SearchGateway is the boundary to the social network's search API.
// Implementations are fail-soft: transport and API errors are logged at the
// boundary and surfaced as errors here, which callers treat as empty results.
type SearchGateway interface {
	// FindCities returns city records matching the typed name, best first
	FindCities(ctx context.Context, query string) ([]City, error)
	// SearchProfiles returns profiles matching the criteria
	SearchProfiles(ctx context.Context, req SearchRequest) ([]Profile, error)
	// TopPhotos returns up to three attachable photo references for the
	// profile, ranked best first
	TopPhotos(ctx context.Context, ownerID int64) ([]string, error)
}
