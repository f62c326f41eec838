package stats

import (
	"github.com/lmoretti/waxshelf/src/collection"
)

// Projector exposes the tracker's derived caches without re-deriving them.
type Projector interface {
	Stats() collection.Snapshot
	Suggestions() (artists, genres []string)
}

// Service serves the derived statistics and filter vocabularies for the
// active collection.
type Service struct {
	projector Projector
}

// NewService creates the stats service.
func NewService(projector Projector) *Service {
	return &Service{projector: projector}
}

// Snapshot returns the aggregate statistics for the active collection.
func (s *Service) Snapshot() collection.Snapshot {
	return s.projector.Stats()
}

// Artists returns the deduplicated, sorted artist vocabulary.
func (s *Service) Artists() []string {
	artists, _ := s.projector.Suggestions()
	return artists
}

// Genres returns the deduplicated, sorted genre vocabulary.
func (s *Service) Genres() []string {
	_, genres := s.projector.Suggestions()
	return genres
}
