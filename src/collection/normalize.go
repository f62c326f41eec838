package collection

import (
	"encoding/json"
	"strconv"
	"strings"
)

// legacyDelimiter separates artists/genres in the old single-string format.
const legacyDelimiter = ","

// Normalize repairs whatever was deserialized from storage into a sequence of
// well-formed AlbumRecords, preserving relative order. It never fails: a
// non-array input yields an empty collection, non-object entries are dropped,
// missing ids are assigned and legacy delimited artist/genre strings are split
// into sequences. The second return reports whether any entry required repair
// so the caller can persist the repaired collection back; Normalize itself
// never writes.
func Normalize(raw any) ([]AlbumRecord, bool) {
	switch v := raw.(type) {
	case nil:
		return []AlbumRecord{}, false
	case []AlbumRecord:
		return normalizeTyped(v)
	case []any:
		return normalizeDecoded(v)
	default:
		return []AlbumRecord{}, false
	}
}

func normalizeTyped(in []AlbumRecord) ([]AlbumRecord, bool) {
	out := make([]AlbumRecord, 0, len(in))
	repaired := false
	seen := make(map[string]bool, len(in))
	for _, rec := range in {
		r := rec.Clone()
		if r.AlbumArtists == nil {
			r.AlbumArtists = []string{}
		}
		if r.Genres == nil {
			r.Genres = []string{}
		}
		if r.ID == "" || seen[r.ID] {
			r.ID = NewID()
			repaired = true
		}
		seen[r.ID] = true
		out = append(out, r)
	}
	return out, repaired
}

func normalizeDecoded(in []any) ([]AlbumRecord, bool) {
	out := make([]AlbumRecord, 0, len(in))
	repaired := false
	seen := make(map[string]bool, len(in))
	for _, entry := range in {
		obj, ok := entry.(map[string]any)
		if !ok {
			repaired = true
			continue
		}
		rec, fixed := decodeRecord(obj)
		if rec.ID == "" || seen[rec.ID] {
			rec.ID = NewID()
			fixed = true
		}
		seen[rec.ID] = true
		out = append(out, rec)
		repaired = repaired || fixed
	}
	return out, repaired
}

func decodeRecord(obj map[string]any) (AlbumRecord, bool) {
	repaired := false

	rec := AlbumRecord{
		AlbumName:   asString(obj["albumName"]),
		ReleaseDate: asString(obj["releaseDate"]),
		ImageURL:    asString(obj["imageUrl"]),
		AlbumLink:   asString(obj["albumLink"]),
	}

	if id, fixed := decodeID(obj["id"]); id != "" {
		rec.ID = id
		repaired = repaired || fixed
	}
	if wanted, ok := obj["wanted"].(bool); ok {
		rec.Wanted = wanted
	}

	var migrated bool
	rec.AlbumArtists, migrated = asStringList(obj["albumArtists"])
	repaired = repaired || migrated
	rec.Genres, migrated = asStringList(obj["genres"])
	repaired = repaired || migrated

	rec.Types = decodeFormats(obj["types"])
	return rec, repaired
}

// decodeID accepts string ids, legacy numeric Date.now() ids and
// json.Number, stringifying anything non-string.
func decodeID(v any) (string, bool) {
	switch id := v.(type) {
	case string:
		return id, false
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), true
	case json.Number:
		return id.String(), true
	}
	return "", false
}

func decodeFormats(v any) Formats {
	flags, ok := v.(map[string]any)
	if !ok {
		return Formats{}
	}
	boolFlag := func(key string) bool {
		b, _ := flags[key].(bool)
		return b
	}
	return Formats{
		Vinyl:    boolFlag("vinyl"),
		CD:       boolFlag("cd"),
		Cassette: boolFlag("cassette"),
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// asStringList converts a persisted artists/genres value to its canonical
// sequence form. Legacy data stores a single delimited string; splitting it
// counts as a format migration.
func asStringList(v any) ([]string, bool) {
	switch list := v.(type) {
	case nil:
		return []string{}, false
	case string:
		return splitList(list), true
	case []string:
		return append([]string(nil), list...), false
	case []any:
		out := make([]string, 0, len(list))
		dropped := false
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			} else {
				dropped = true
			}
		}
		return out, dropped
	}
	return []string{}, true
}

// splitList splits a delimited string, trims each segment and drops empties.
func splitList(s string) []string {
	parts := strings.Split(s, legacyDelimiter)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
