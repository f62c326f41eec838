package collection

import (
	"sort"
	"strings"

	"github.com/gosimple/unidecode"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey selects the ordering applied within each ownership group.
type SortKey string

const (
	SortByName   SortKey = "name"
	SortByArtist SortKey = "artist"
	SortByYear   SortKey = "year"
	// SortCustom preserves the collection's stored sequence order.
	SortCustom SortKey = "custom"
)

// GenreNone is the special genre filter value matching records with an empty
// genre sequence.
const GenreNone = "none"

// Criteria are the UI-supplied predicate and sort parameters for a view.
type Criteria struct {
	// TextQuery matches case- and accent-insensitively against album name,
	// each artist, each genre, the formatted release date and the active
	// format labels.
	TextQuery string
	// Formats requires every set flag to be present on a record. No flags
	// set means no format filtering.
	Formats Formats
	// Artist, when non-empty, requires an exact match against any element
	// of the record's artist sequence.
	Artist string
	// Genres is the selected genre subset. GenreNone selects records with
	// no genres; otherwise a record matches if it has any selected genre.
	Genres []string
	// SortKey defaults to custom order when empty.
	SortKey SortKey
}

// Project turns the full record set plus criteria into an ordered view. It is
// purely functional: the input is never mutated and no references are
// retained across calls. Owned records always precede wanted records; within
// each group the selected sort applies, with equal keys preserving relative
// input order.
func Project(records []AlbumRecord, criteria Criteria) []AlbumRecord {
	filtered := make([]AlbumRecord, 0, len(records))
	query := searchFold(criteria.TextQuery)
	for _, rec := range records {
		if query != "" && !matchesQuery(rec, query) {
			continue
		}
		if !matchesFormats(rec, criteria.Formats) {
			continue
		}
		if criteria.Artist != "" && !containsExact(rec.AlbumArtists, criteria.Artist) {
			continue
		}
		if !matchesGenres(rec, criteria.Genres) {
			continue
		}
		filtered = append(filtered, rec.Clone())
	}

	owned := make([]AlbumRecord, 0, len(filtered))
	wanted := make([]AlbumRecord, 0, len(filtered))
	for _, rec := range filtered {
		if rec.Wanted {
			wanted = append(wanted, rec)
		} else {
			owned = append(owned, rec)
		}
	}
	sortGroup(owned, criteria.SortKey)
	sortGroup(wanted, criteria.SortKey)
	return append(owned, wanted...)
}

// searchFold lowercases and strips accents so "Björk" matches "bjork".
func searchFold(s string) string {
	return strings.ToLower(strings.TrimSpace(unidecode.Unidecode(s)))
}

func matchesQuery(rec AlbumRecord, query string) bool {
	if strings.Contains(searchFold(rec.AlbumName), query) {
		return true
	}
	for _, artist := range rec.AlbumArtists {
		if strings.Contains(searchFold(artist), query) {
			return true
		}
	}
	for _, genre := range rec.Genres {
		if strings.Contains(searchFold(genre), query) {
			return true
		}
	}
	if strings.Contains(searchFold(FormatReleaseDate(rec.ReleaseDate)), query) {
		return true
	}
	for _, label := range rec.Types.Labels() {
		if strings.Contains(label, query) {
			return true
		}
	}
	return false
}

// matchesFormats requires the record to carry every requested flag: one flag
// set filters to that format, both set filters to records with both.
func matchesFormats(rec AlbumRecord, want Formats) bool {
	if !want.Any() {
		return true
	}
	if want.Vinyl && !rec.Types.Vinyl {
		return false
	}
	if want.CD && !rec.Types.CD {
		return false
	}
	if want.Cassette && !rec.Types.Cassette {
		return false
	}
	return true
}

func containsExact(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

func matchesGenres(rec AlbumRecord, selected []string) bool {
	if len(selected) == 0 {
		return true
	}
	for _, sel := range selected {
		if strings.EqualFold(sel, GenreNone) {
			if len(rec.Genres) == 0 {
				return true
			}
			continue
		}
		for _, genre := range rec.Genres {
			if strings.EqualFold(genre, sel) {
				return true
			}
		}
	}
	return false
}

// sortGroup applies the selected sort within one ownership group. Custom
// order skips re-sorting entirely. Missing fields compare as empty strings so
// malformed records never break a comparison.
func sortGroup(records []AlbumRecord, key SortKey) {
	switch key {
	case SortByName:
		coll := collate.New(language.English, collate.Loose)
		sort.SliceStable(records, func(i, j int) bool {
			return coll.CompareString(records[i].AlbumName, records[j].AlbumName) < 0
		})
	case SortByArtist:
		coll := collate.New(language.English, collate.Loose)
		sort.SliceStable(records, func(i, j int) bool {
			return coll.CompareString(firstArtist(records[i]), firstArtist(records[j])) < 0
		})
	case SortByYear:
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].ReleaseDate < records[j].ReleaseDate
		})
	}
}

func firstArtist(rec AlbumRecord) string {
	if len(rec.AlbumArtists) == 0 {
		return ""
	}
	return rec.AlbumArtists[0]
}
