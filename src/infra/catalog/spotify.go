package catalog

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/lmoretti/waxshelf/src/features/tracker"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyAPIURL   = "https://api.spotify.com/v1"
)

// spotifyAlbumID extracts the album id from share links and spotify URIs.
var spotifyAlbumID = regexp.MustCompile(`album[/:]([a-zA-Z0-9]+)`)

type spotifyTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type spotifyAlbum struct {
	Name        string   `json:"name"`
	ReleaseDate string   `json:"release_date"`
	Genres      []string `json:"genres"`
	Images      []struct {
		URL string `json:"url"`
	} `json:"images"`
	Artists []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"artists"`
}

type spotifyArtist struct {
	Genres []string `json:"genres"`
}

// SpotifyProvider implements catalog lookup against the Spotify Web API using
// the client credentials flow.
type SpotifyProvider struct {
	enabled      bool
	clientID     string
	clientSecret string
	httpClient   *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewSpotifyProvider creates a new Spotify provider.
func NewSpotifyProvider(enabled bool, clientID, clientSecret string) *SpotifyProvider {
	return &SpotifyProvider{
		enabled:      enabled,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *SpotifyProvider) Name() string { return "spotify" }

func (p *SpotifyProvider) IsEnabled() bool {
	return p.enabled && p.clientID != "" && p.clientSecret != ""
}

// Supports reports whether the link carries a Spotify album reference.
func (p *SpotifyProvider) Supports(link string) bool {
	if !strings.Contains(link, "spotify") {
		return false
	}
	return spotifyAlbumID.MatchString(link)
}

// Lookup resolves album metadata from a Spotify album link. Genres are the
// union of the album's own genres and every credited artist's genres, since
// Spotify rarely populates the former.
func (p *SpotifyProvider) Lookup(ctx context.Context, link string) (tracker.LookupResult, error) {
	match := spotifyAlbumID.FindStringSubmatch(link)
	if match == nil {
		return tracker.LookupResult{}, fmt.Errorf("no album id in link %q", link)
	}
	albumID := match[1]

	token, err := p.token(ctx)
	if err != nil {
		return tracker.LookupResult{}, err
	}

	var album spotifyAlbum
	if err := p.getJSON(ctx, fmt.Sprintf("%s/albums/%s", spotifyAPIURL, albumID), token, &album); err != nil {
		return tracker.LookupResult{}, err
	}

	result := tracker.LookupResult{
		AlbumName:   album.Name,
		ReleaseDate: album.ReleaseDate,
	}
	if len(album.Images) > 0 {
		result.ImageURL = album.Images[0].URL
	}

	genreSet := make(map[string]bool)
	for _, g := range album.Genres {
		genreSet[g] = true
	}
	for _, artist := range album.Artists {
		result.Artists = append(result.Artists, artist.Name)
		var full spotifyArtist
		if err := p.getJSON(ctx, fmt.Sprintf("%s/artists/%s", spotifyAPIURL, artist.ID), token, &full); err != nil {
			continue
		}
		for _, g := range full.Genres {
			genreSet[g] = true
		}
	}
	for g := range genreSet {
		result.Genres = append(result.Genres, g)
	}

	return result, nil
}

// token returns a cached client-credentials token, requesting a fresh one
// when the cache is empty or about to expire.
func (p *SpotifyProvider) token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.accessToken != "" && time.Now().Before(p.tokenExpiry) {
		return p.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, "POST", spotifyTokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	credentials := base64.StdEncoding.EncodeToString([]byte(p.clientID + ":" + p.clientSecret))
	req.Header.Set("Authorization", "Basic "+credentials)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request failed with status %d", resp.StatusCode)
	}

	var tokenResp spotifyTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}

	p.accessToken = tokenResp.AccessToken
	// Renew slightly early so in-flight requests never carry an expired token.
	p.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn-60) * time.Second)
	return p.accessToken, nil
}

func (p *SpotifyProvider) getJSON(ctx context.Context, endpoint, token string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("spotify API request failed with status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
