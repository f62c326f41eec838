package collection

// FormatCounts holds per-format owned/wanted tallies.
type FormatCounts struct {
	Owned  int `json:"owned"`
	Wanted int `json:"wanted"`
}

// Snapshot is the derived aggregate view of a collection at one moment.
type Snapshot struct {
	Total         int                     `json:"total"`
	Owned         int                     `json:"owned"`
	Wanted        int                     `json:"wanted"`
	ByFormat      map[string]FormatCounts `json:"byFormat"`
	UniqueArtists int                     `json:"uniqueArtists"`
	UniqueGenres  int                     `json:"uniqueGenres"`
	YearSpan      int                     `json:"yearSpan"`
	TopYear       int                     `json:"topYear"`
	TopArtist     string                  `json:"topArtist"`
	// Completion is owned/total as a percentage, 0 when the collection is
	// empty.
	Completion float64 `json:"completionPercentage"`
}

// ComputeStats recomputes the aggregate counts for a record set. Pure and
// side-effect free; records with malformed release dates are excluded from
// the year-based aggregates only. Ties for most-frequent year and artist go
// to the first-encountered value in iteration order.
func ComputeStats(records []AlbumRecord) Snapshot {
	snap := Snapshot{
		Total:    len(records),
		ByFormat: make(map[string]FormatCounts),
	}

	artistCounts := make(map[string]int)
	var artistOrder []string
	genres := make(map[string]bool)
	yearCounts := make(map[int]int)
	var yearOrder []int
	minYear, maxYear := 0, 0

	for _, rec := range records {
		if rec.Wanted {
			snap.Wanted++
		} else {
			snap.Owned++
		}
		for _, label := range rec.Types.Labels() {
			counts := snap.ByFormat[label]
			if rec.Wanted {
				counts.Wanted++
			} else {
				counts.Owned++
			}
			snap.ByFormat[label] = counts
		}
		for _, artist := range rec.AlbumArtists {
			if _, seen := artistCounts[artist]; !seen {
				artistOrder = append(artistOrder, artist)
			}
			artistCounts[artist]++
		}
		for _, genre := range rec.Genres {
			genres[genre] = true
		}
		if year := rec.ReleaseYear(); year > 0 {
			if _, seen := yearCounts[year]; !seen {
				yearOrder = append(yearOrder, year)
			}
			yearCounts[year]++
			if minYear == 0 || year < minYear {
				minYear = year
			}
			if year > maxYear {
				maxYear = year
			}
		}
	}

	snap.UniqueArtists = len(artistCounts)
	snap.UniqueGenres = len(genres)
	if maxYear > 0 {
		snap.YearSpan = maxYear - minYear + 1
	}

	best := 0
	for _, year := range yearOrder {
		if yearCounts[year] > best {
			best = yearCounts[year]
			snap.TopYear = year
		}
	}
	best = 0
	for _, artist := range artistOrder {
		if artistCounts[artist] > best {
			best = artistCounts[artist]
			snap.TopArtist = artist
		}
	}

	if snap.Total > 0 {
		snap.Completion = float64(snap.Owned) / float64(snap.Total) * 100
	}
	return snap
}
