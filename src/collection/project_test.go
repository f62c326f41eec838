package collection

import (
	"testing"
)

func sampleRecords() []AlbumRecord {
	return []AlbumRecord{
		{ID: "1", AlbumName: "Homogenic", AlbumArtists: []string{"Björk"}, Genres: []string{"Electronic"}, ReleaseDate: "1997-09-20", Types: Formats{CD: true}},
		{ID: "2", AlbumName: "Abbey Road", AlbumArtists: []string{"The Beatles"}, Genres: []string{"Rock"}, ReleaseDate: "1969-09-26", Types: Formats{Vinyl: true}, Wanted: true},
		{ID: "3", AlbumName: "Blue Train", AlbumArtists: []string{"John Coltrane"}, Genres: []string{"Jazz"}, ReleaseDate: "1958-01-01", Types: Formats{Vinyl: true, CD: true}},
		{ID: "4", AlbumName: "Untitled Demo", AlbumArtists: []string{}, Genres: []string{}, ReleaseDate: ""},
	}
}

func ids(records []AlbumRecord) []string {
	out := make([]string, len(records))
	for i, rec := range records {
		out[i] = rec.ID
	}
	return out
}

func TestProject_AccentFoldedSearch(t *testing.T) {
	view := Project(sampleRecords(), Criteria{TextQuery: "bjork"})
	if len(view) != 1 || view[0].ID != "1" {
		t.Fatalf("expected accent-folded match on Björk, got %v", ids(view))
	}

	view = Project(sampleRecords(), Criteria{TextQuery: "BJÖRK"})
	if len(view) != 1 || view[0].ID != "1" {
		t.Fatalf("expected case-insensitive match, got %v", ids(view))
	}
}

func TestProject_OwnedPrecedesWanted(t *testing.T) {
	view := Project(sampleRecords(), Criteria{SortKey: SortByName})
	sawWanted := false
	for _, rec := range view {
		if rec.Wanted {
			sawWanted = true
		} else if sawWanted {
			t.Fatal("owned record appeared after a wanted record")
		}
	}
}

func TestProject_FormatFilterRequiresEveryFlag(t *testing.T) {
	view := Project(sampleRecords(), Criteria{Formats: Formats{Vinyl: true}})
	if got := ids(view); len(got) != 2 {
		t.Fatalf("vinyl filter: expected 2 records, got %v", got)
	}

	view = Project(sampleRecords(), Criteria{Formats: Formats{Vinyl: true, CD: true}})
	if len(view) != 1 || view[0].ID != "3" {
		t.Fatalf("vinyl+cd filter: expected only record 3, got %v", ids(view))
	}
}

func TestProject_GenreNoneMatchesEmptyGenres(t *testing.T) {
	view := Project(sampleRecords(), Criteria{Genres: []string{GenreNone}})
	if len(view) != 1 || view[0].ID != "4" {
		t.Fatalf("expected only the genreless record, got %v", ids(view))
	}
}

func TestProject_GenreNoneCombinesWithRealGenres(t *testing.T) {
	view := Project(sampleRecords(), Criteria{Genres: []string{GenreNone, "Rock"}})
	if len(view) != 2 {
		t.Fatalf("expected the Rock record and the genreless record, got %v", ids(view))
	}
	got := map[string]bool{view[0].ID: true, view[1].ID: true}
	if !got["2"] || !got["4"] {
		t.Fatalf("expected records 2 and 4, got %v", ids(view))
	}
}

func TestProject_GenreFilterMatchesAny(t *testing.T) {
	view := Project(sampleRecords(), Criteria{Genres: []string{"Jazz", "Rock"}})
	if len(view) != 2 {
		t.Fatalf("expected 2 records for Jazz or Rock, got %v", ids(view))
	}
}

func TestProject_ArtistExactMatch(t *testing.T) {
	view := Project(sampleRecords(), Criteria{Artist: "John Coltrane"})
	if len(view) != 1 || view[0].ID != "3" {
		t.Fatalf("expected exact artist match, got %v", ids(view))
	}

	view = Project(sampleRecords(), Criteria{Artist: "John"})
	if len(view) != 0 {
		t.Fatalf("partial artist name must not match, got %v", ids(view))
	}
}

func TestProject_SortByYearWithinGroup(t *testing.T) {
	view := Project(sampleRecords(), Criteria{SortKey: SortByYear})
	// Owned group: record 4 (empty date sorts first), 3 (1958), 1 (1997),
	// then the wanted group.
	want := []string{"4", "3", "1", "2"}
	got := ids(view)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("year sort order mismatch: got %v, want %v", got, want)
		}
	}
}

func TestProject_CustomSortPreservesStoredOrder(t *testing.T) {
	view := Project(sampleRecords(), Criteria{SortKey: SortCustom})
	want := []string{"1", "3", "4", "2"}
	got := ids(view)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("custom order mismatch: got %v, want %v", got, want)
		}
	}
}

func TestProject_DoesNotMutateInput(t *testing.T) {
	records := sampleRecords()
	_ = Project(records, Criteria{SortKey: SortByName, TextQuery: "a"})
	if records[0].ID != "1" || records[3].ID != "4" {
		t.Error("input slice order was mutated")
	}
}

func TestProject_SearchMatchesFormattedDateAndFormats(t *testing.T) {
	view := Project(sampleRecords(), Criteria{TextQuery: "cassette"})
	if len(view) != 0 {
		t.Fatalf("no record carries cassette, got %v", ids(view))
	}

	view = Project(sampleRecords(), Criteria{TextQuery: "vinyl"})
	if len(view) != 2 {
		t.Fatalf("expected 2 vinyl matches via text search, got %v", ids(view))
	}

	// 1969-09-26 renders as 26/09/1969.
	view = Project(sampleRecords(), Criteria{TextQuery: "26/09"})
	if len(view) != 1 || view[0].ID != "2" {
		t.Fatalf("expected formatted date match, got %v", ids(view))
	}
}
