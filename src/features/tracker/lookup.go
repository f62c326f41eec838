package tracker

import "context"

// LookupResult is the metadata a catalog provider resolved for an album
// link. A failed lookup yields the zero value rather than an error so callers
// can always treat "no data available" uniformly.
type LookupResult struct {
	ImageURL    string
	AlbumName   string
	ReleaseDate string // YYYY-MM-DD or empty
	Artists     []string
	Genres      []string
}

// Empty reports whether the lookup produced no usable data.
func (r LookupResult) Empty() bool {
	return r.ImageURL == "" && r.AlbumName == "" && r.ReleaseDate == "" &&
		len(r.Artists) == 0 && len(r.Genres) == 0
}

// CatalogLookup resolves a music-service URL to album metadata. One
// implementation exists per supported catalog; the provider for a link is
// picked by URL substring.
type CatalogLookup interface {
	Name() string
	IsEnabled() bool
	// Supports reports whether this provider recognizes the link.
	Supports(link string) bool
	// Lookup fetches metadata for the link. Providers degrade to an empty
	// result on not-found or malformed responses; a returned error means
	// the lookup could not be attempted at all.
	Lookup(ctx context.Context, link string) (LookupResult, error)
}
