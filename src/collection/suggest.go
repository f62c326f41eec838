package collection

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ArtistVocabulary returns the distinct artist names across all records,
// sorted for filter dropdowns.
func ArtistVocabulary(records []AlbumRecord) []string {
	seen := make(map[string]bool)
	var artists []string
	for _, rec := range records {
		for _, artist := range rec.AlbumArtists {
			if artist != "" && !seen[artist] {
				seen[artist] = true
				artists = append(artists, artist)
			}
		}
	}
	coll := collate.New(language.English, collate.Loose)
	sort.SliceStable(artists, func(i, j int) bool {
		return coll.CompareString(artists[i], artists[j]) < 0
	})
	return artists
}

// GenreVocabulary returns the distinct trimmed genres across all records,
// sorted for filter dropdowns. Empty segments are dropped.
func GenreVocabulary(records []AlbumRecord) []string {
	seen := make(map[string]bool)
	var genres []string
	for _, rec := range records {
		for _, genre := range rec.Genres {
			trimmed := strings.TrimSpace(genre)
			if trimmed != "" && !seen[trimmed] {
				seen[trimmed] = true
				genres = append(genres, trimmed)
			}
		}
	}
	coll := collate.New(language.English, collate.Loose)
	sort.SliceStable(genres, func(i, j int) bool {
		return coll.CompareString(genres[i], genres[j]) < 0
	})
	return genres
}
