package collection

import (
	"testing"
)

func TestComputeStats_Counts(t *testing.T) {
	records := []AlbumRecord{
		{ID: "1", AlbumArtists: []string{"A"}, Genres: []string{"Rock"}, ReleaseDate: "1970-01-01", Types: Formats{Vinyl: true}},
		{ID: "2", AlbumArtists: []string{"A"}, Genres: []string{"Jazz"}, ReleaseDate: "1975-01-01", Types: Formats{CD: true}},
		{ID: "3", AlbumArtists: []string{"B"}, Genres: []string{"Rock"}, ReleaseDate: "1970-01-01", Types: Formats{Vinyl: true}},
		{ID: "4", AlbumArtists: []string{"C"}, ReleaseDate: "1980-01-01", Wanted: true, Types: Formats{Vinyl: true}},
		{ID: "5", AlbumArtists: []string{"A"}, Wanted: true},
	}

	snap := ComputeStats(records)
	if snap.Total != 5 || snap.Owned != 3 || snap.Wanted != 2 {
		t.Fatalf("counts wrong: total=%d owned=%d wanted=%d", snap.Total, snap.Owned, snap.Wanted)
	}
	if snap.Completion != 60 {
		t.Errorf("expected 60%% completion, got %v", snap.Completion)
	}
	if snap.UniqueArtists != 3 {
		t.Errorf("expected 3 unique artists, got %d", snap.UniqueArtists)
	}
	if snap.UniqueGenres != 2 {
		t.Errorf("expected 2 unique genres, got %d", snap.UniqueGenres)
	}
	if snap.TopArtist != "A" {
		t.Errorf("expected top artist A, got %q", snap.TopArtist)
	}
	if snap.TopYear != 1970 {
		t.Errorf("expected top year 1970, got %d", snap.TopYear)
	}
	// 1970 through 1980 inclusive.
	if snap.YearSpan != 11 {
		t.Errorf("expected year span 11, got %d", snap.YearSpan)
	}
	if vinyl := snap.ByFormat["vinyl"]; vinyl.Owned != 2 || vinyl.Wanted != 1 {
		t.Errorf("vinyl counts wrong: %+v", vinyl)
	}
}

func TestComputeStats_EmptyCollection(t *testing.T) {
	snap := ComputeStats(nil)
	if snap.Total != 0 || snap.Completion != 0 {
		t.Errorf("empty collection must report zero totals, got %+v", snap)
	}
	if snap.YearSpan != 0 || snap.TopYear != 0 || snap.TopArtist != "" {
		t.Errorf("empty collection must have empty aggregates, got %+v", snap)
	}
}

func TestComputeStats_TieGoesToFirstEncountered(t *testing.T) {
	records := []AlbumRecord{
		{ID: "1", AlbumArtists: []string{"X"}},
		{ID: "2", AlbumArtists: []string{"Y"}},
	}
	snap := ComputeStats(records)
	if snap.TopArtist != "X" {
		t.Errorf("tie should keep first-encountered artist, got %q", snap.TopArtist)
	}
}

func TestComputeStats_MalformedDatesExcludedFromYearAggregates(t *testing.T) {
	records := []AlbumRecord{
		{ID: "1", ReleaseDate: "not-a-date"},
		{ID: "2", ReleaseDate: "1999-01-01"},
	}
	snap := ComputeStats(records)
	if snap.YearSpan != 1 || snap.TopYear != 1999 {
		t.Errorf("malformed date leaked into year aggregates: %+v", snap)
	}
}

func TestVocabularies(t *testing.T) {
	records := []AlbumRecord{
		{ID: "1", AlbumArtists: []string{"Zebra", "Alpha"}, Genres: []string{" Rock ", "Jazz"}},
		{ID: "2", AlbumArtists: []string{"Alpha"}, Genres: []string{"Rock"}},
	}

	artists := ArtistVocabulary(records)
	if len(artists) != 2 || artists[0] != "Alpha" || artists[1] != "Zebra" {
		t.Errorf("unexpected artist vocabulary: %v", artists)
	}

	genres := GenreVocabulary(records)
	if len(genres) != 2 {
		t.Errorf("expected trimmed, deduplicated genres, got %v", genres)
	}
}
