package catalog

import (
	"testing"
)

func TestSpotifySupports(t *testing.T) {
	p := NewSpotifyProvider(true, "id", "secret")

	cases := []struct {
		link string
		want bool
	}{
		{"https://open.spotify.com/album/4LH4d3cOWNNsVw41Gqt2kv", true},
		{"spotify:album:4LH4d3cOWNNsVw41Gqt2kv", true},
		{"https://open.spotify.com/track/abc", false},
		{"https://music.apple.com/us/album/abbey-road/1441164426", false},
		{"", false},
	}
	for _, c := range cases {
		if got := p.Supports(c.link); got != c.want {
			t.Errorf("Supports(%q) = %v, want %v", c.link, got, c.want)
		}
	}
}

func TestSpotifyAlbumIDExtraction(t *testing.T) {
	cases := []struct {
		link string
		want string
	}{
		{"https://open.spotify.com/album/4LH4d3cOWNNsVw41Gqt2kv?si=xyz", "4LH4d3cOWNNsVw41Gqt2kv"},
		{"spotify:album:6dVIqQ8qmQ5GBnJ9shOYGE", "6dVIqQ8qmQ5GBnJ9shOYGE"},
	}
	for _, c := range cases {
		match := spotifyAlbumID.FindStringSubmatch(c.link)
		if match == nil || match[1] != c.want {
			t.Errorf("album id from %q: got %v, want %q", c.link, match, c.want)
		}
	}
}

func TestSpotifyDisabledWithoutCredentials(t *testing.T) {
	if NewSpotifyProvider(true, "", "").IsEnabled() {
		t.Error("provider without credentials must report disabled")
	}
	if NewSpotifyProvider(false, "id", "secret").IsEnabled() {
		t.Error("provider disabled in config must report disabled")
	}
}

func TestITunesSupports(t *testing.T) {
	p := NewITunesProvider(true)

	cases := []struct {
		link string
		want bool
	}{
		{"https://music.apple.com/us/album/abbey-road-remastered/1441164426", true},
		{"https://itunes.apple.com/us/album/thriller/id269572838", true},
		{"https://music.apple.com/us/artist/queen/3296287", false},
		{"https://open.spotify.com/album/abc", false},
	}
	for _, c := range cases {
		if got := p.Supports(c.link); got != c.want {
			t.Errorf("Supports(%q) = %v, want %v", c.link, got, c.want)
		}
	}
}

func TestITunesAlbumIDExtraction(t *testing.T) {
	cases := []struct {
		link string
		want string
	}{
		{"https://music.apple.com/us/album/abbey-road-remastered/1441164426", "1441164426"},
		{"https://itunes.apple.com/us/album/thriller/id269572838", "269572838"},
	}
	for _, c := range cases {
		match := itunesAlbumID.FindStringSubmatch(c.link)
		if match == nil || match[1] != c.want {
			t.Errorf("album id from %q: got %v, want %q", c.link, match, c.want)
		}
	}
}

func TestUpscaleArtwork(t *testing.T) {
	in := "https://is1-ssl.mzstatic.com/image/thumb/x/100x100bb.jpg"
	want := "https://is1-ssl.mzstatic.com/image/thumb/x/600x600bb.jpg"
	if got := upscaleArtwork(in); got != want {
		t.Errorf("upscaleArtwork = %q, want %q", got, want)
	}
}

func TestTruncateDate(t *testing.T) {
	if got := truncateDate("1969-09-26T07:00:00Z"); got != "1969-09-26" {
		t.Errorf("truncateDate = %q", got)
	}
	if got := truncateDate("1969"); got != "1969" {
		t.Errorf("short date must pass through, got %q", got)
	}
}
