package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/lmoretti/waxshelf/src/features/tracker"
)

const itunesLookupURL = "https://itunes.apple.com/lookup"

// itunesAlbumID extracts the numeric collection id from Apple Music and
// iTunes album links.
var itunesAlbumID = regexp.MustCompile(`/album/[^/]+/(?:id)?(\d+)`)

type itunesLookupResponse struct {
	ResultCount int `json:"resultCount"`
	Results     []struct {
		CollectionName   string `json:"collectionName"`
		ArtistName       string `json:"artistName"`
		ArtworkURL100    string `json:"artworkUrl100"`
		ReleaseDate      string `json:"releaseDate"`
		PrimaryGenreName string `json:"primaryGenreName"`
	} `json:"results"`
}

// ITunesProvider implements catalog lookup against the iTunes lookup API. It
// needs no credentials.
type ITunesProvider struct {
	enabled    bool
	httpClient *http.Client
}

// NewITunesProvider creates a new iTunes provider.
func NewITunesProvider(enabled bool) *ITunesProvider {
	return &ITunesProvider{
		enabled:    enabled,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *ITunesProvider) Name() string    { return "itunes" }
func (p *ITunesProvider) IsEnabled() bool { return p.enabled }

// Supports reports whether the link is an Apple Music or iTunes album link.
func (p *ITunesProvider) Supports(link string) bool {
	if !strings.Contains(link, "music.apple.com") && !strings.Contains(link, "itunes.apple.com") {
		return false
	}
	return itunesAlbumID.MatchString(link)
}

// Lookup resolves album metadata from an Apple Music album link. The artwork
// URL is upscaled from the 100px variant the API returns.
func (p *ITunesProvider) Lookup(ctx context.Context, link string) (tracker.LookupResult, error) {
	match := itunesAlbumID.FindStringSubmatch(link)
	if match == nil {
		return tracker.LookupResult{}, fmt.Errorf("no album id in link %q", link)
	}

	endpoint := fmt.Sprintf("%s?id=%s&entity=album&limit=1", itunesLookupURL, match[1])
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return tracker.LookupResult{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return tracker.LookupResult{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return tracker.LookupResult{}, fmt.Errorf("itunes API request failed with status %d", resp.StatusCode)
	}

	var lookupResp itunesLookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&lookupResp); err != nil {
		return tracker.LookupResult{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if lookupResp.ResultCount == 0 {
		return tracker.LookupResult{}, nil
	}

	album := lookupResp.Results[0]
	result := tracker.LookupResult{
		AlbumName:   album.CollectionName,
		ImageURL:    upscaleArtwork(album.ArtworkURL100),
		ReleaseDate: truncateDate(album.ReleaseDate),
	}
	if album.ArtistName != "" {
		result.Artists = []string{album.ArtistName}
	}
	if album.PrimaryGenreName != "" {
		result.Genres = []string{album.PrimaryGenreName}
	}
	return result, nil
}

// upscaleArtwork swaps the 100px artwork variant for the 600px one.
func upscaleArtwork(artworkURL string) string {
	return strings.Replace(artworkURL, "100x100", "600x600", 1)
}

// truncateDate reduces the API's RFC 3339 timestamp to its date part.
func truncateDate(date string) string {
	if len(date) > 10 {
		return date[:10]
	}
	return date
}
