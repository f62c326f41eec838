package collection

import (
	"strings"
	"testing"
)

func TestFormatReleaseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"1997", "1997"},
		{"1997-00-00", "1997"},
		{"1997-01-01", "1997"},
		{"1997-09-20", "20/09/1997"},
		{"1969-09-26", "26/09/1969"},
		{"not-a-date", "not-a-date"},
		{"1997-13-45", "1997-13-45"},
	}
	for _, c := range cases {
		if got := FormatReleaseDate(c.in); got != c.want {
			t.Errorf("FormatReleaseDate(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestReleaseYear(t *testing.T) {
	cases := []struct {
		date string
		want int
	}{
		{"1997-09-20", 1997},
		{"1997", 1997},
		{"", 0},
		{"abc", 0},
		{"19x7-01-01", 0},
	}
	for _, c := range cases {
		rec := AlbumRecord{ReleaseDate: c.date}
		if got := rec.ReleaseYear(); got != c.want {
			t.Errorf("ReleaseYear(%q) = %d, want %d", c.date, got, c.want)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	rec := AlbumRecord{
		ID:           "1",
		AlbumArtists: []string{"A"},
		Genres:       []string{"Rock"},
	}
	cp := rec.Clone()
	cp.AlbumArtists[0] = "B"
	cp.Genres[0] = "Jazz"
	if rec.AlbumArtists[0] != "A" || rec.Genres[0] != "Rock" {
		t.Error("Clone shares slice backing arrays with the original")
	}
}

func TestNewIDIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewID()
		if seen[id] {
			t.Fatalf("duplicate id generated: %q", id)
		}
		seen[id] = true
	}
}

func TestValidate(t *testing.T) {
	rec := AlbumRecord{}
	if err := rec.Validate(); err != nil {
		t.Errorf("empty record must be valid, got %v", err)
	}

	rec = AlbumRecord{AlbumName: strings.Repeat("x", 501)}
	if err := rec.Validate(); err == nil {
		t.Error("expected oversized album name to be rejected")
	}
}

func TestFormatsLabels(t *testing.T) {
	f := Formats{Vinyl: true, Cassette: true}
	labels := f.Labels()
	if len(labels) != 2 || labels[0] != "vinyl" || labels[1] != "cassette" {
		t.Errorf("unexpected labels: %v", labels)
	}
	if (Formats{}).Any() {
		t.Error("empty format set must report Any()=false")
	}
}
