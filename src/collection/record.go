package collection

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

// DefaultImageRef is the sentinel image reference used when a record has no
// cover URL or its cover could not be fetched. The UI maps it to the bundled
// placeholder artwork.
const DefaultImageRef = "img/default.png"

// Formats is the fixed set of physical-format flags a record can carry.
type Formats struct {
	Vinyl    bool `json:"vinyl"`
	CD       bool `json:"cd"`
	Cassette bool `json:"cassette,omitempty"`
}

// Labels returns the active format names in a stable order.
func (f Formats) Labels() []string {
	var labels []string
	if f.Vinyl {
		labels = append(labels, "vinyl")
	}
	if f.CD {
		labels = append(labels, "cd")
	}
	if f.Cassette {
		labels = append(labels, "cassette")
	}
	return labels
}

// Any reports whether at least one format flag is set.
func (f Formats) Any() bool {
	return f.Vinyl || f.CD || f.Cassette
}

// AlbumRecord is one catalogue entry: an album plus its ownership, format and
// metadata state. Position within the owning collection is itself meaningful
// (user-customizable ordering) and is persisted as sequence order.
type AlbumRecord struct {
	ID           string   `json:"id"`
	AlbumName    string   `json:"albumName"`
	AlbumArtists []string `json:"albumArtists"`
	Genres       []string `json:"genres"`
	ReleaseDate  string   `json:"releaseDate"`
	ImageURL     string   `json:"imageUrl"`
	AlbumLink    string   `json:"albumLink,omitempty"`
	Wanted       bool     `json:"wanted"`
	Types        Formats  `json:"types"`
}

// NewID generates a fresh record identifier. Ids are time-based with a random
// salt so rapid successive creations cannot collide, and they interoperate
// with the numeric Date.now() ids older exports carry.
func NewID() string {
	return fmt.Sprintf("%d-%04d", time.Now().UnixMilli(), rand.IntN(10000))
}

// Clone returns a deep copy of the record so callers can hand out snapshots
// without sharing slice backing arrays.
func (r AlbumRecord) Clone() AlbumRecord {
	out := r
	out.AlbumArtists = append([]string(nil), r.AlbumArtists...)
	out.Genres = append([]string(nil), r.Genres...)
	return out
}

// Image returns the record's cover URL, falling back to the default sentinel.
func (r AlbumRecord) Image() string {
	if r.ImageURL == "" {
		return DefaultImageRef
	}
	return r.ImageURL
}

// Validate validates the record fields. Creation is permissive by design: an
// empty album name is allowed and rendered as a placeholder, never rejected.
func (r *AlbumRecord) Validate() error {
	if len(r.AlbumName) > 500 {
		return fmt.Errorf("album name cannot exceed 500 characters")
	}
	for _, artist := range r.AlbumArtists {
		if len(artist) > 500 {
			return fmt.Errorf("artist name cannot exceed 500 characters")
		}
	}
	for _, genre := range r.Genres {
		if len(genre) > 100 {
			return fmt.Errorf("genre cannot exceed 100 characters")
		}
	}
	if r.ReleaseDate != "" && len(r.ReleaseDate) > 10 {
		return fmt.Errorf("release date must be YYYY-MM-DD")
	}
	return nil
}

// dateFiller is the month/day value used when only the year is known.
func isDateFiller(part string) bool {
	return part == "" || part == "00" || part == "01"
}

// FormatReleaseDate renders a YYYY-MM-DD date for display. Partial dates
// (month and day both filler) collapse to the year alone; anything that does
// not parse is returned verbatim so malformed data never breaks rendering.
func FormatReleaseDate(date string) string {
	if date == "" {
		return ""
	}
	parts := strings.SplitN(date, "-", 3)
	year := parts[0]
	month, day := "", ""
	if len(parts) > 1 {
		month = parts[1]
	}
	if len(parts) > 2 {
		day = parts[2]
	}
	if year != "" && isDateFiller(month) && isDateFiller(day) {
		return year
	}
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("02/01/2006")
}

// ReleaseYear extracts the numeric year from a record's release date.
// It returns 0 when the date has no parseable year.
func (r AlbumRecord) ReleaseYear() int {
	if len(r.ReleaseDate) < 4 {
		return 0
	}
	year := 0
	for _, c := range r.ReleaseDate[:4] {
		if c < '0' || c > '9' {
			return 0
		}
		year = year*10 + int(c-'0')
	}
	return year
}
