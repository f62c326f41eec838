package sharing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lmoretti/waxshelf/src/collection"
	"github.com/lmoretti/waxshelf/src/features/config"
)

// Snapshot is the immutable payload published for a share: the records frozen
// at publish time plus provenance metadata.
type Snapshot struct {
	Items    []collection.AlbumRecord `json:"items"`
	Metadata Metadata                 `json:"metadata"`
}

// Metadata describes who published a snapshot and when.
type Metadata struct {
	SharedBy   string `json:"sharedBy"`
	SharedAt   string `json:"sharedAt"`
	TotalItems int    `json:"totalItems"`
}

// Publisher uploads a snapshot under a share id.
type Publisher interface {
	PublishSnapshot(ctx context.Context, shareID string, snapshot Snapshot) error
}

// Source is the part of the tracker sharing reads from.
type Source interface {
	Records() []collection.AlbumRecord
	Subject() collection.Subject
}

// Notifier delivers a notification once a share link is live.
type Notifier interface {
	Notify(message string)
}

// Share is a published share link.
type Share struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Items int    `json:"items"`
}

// Service publishes read-only snapshots of the active collection.
type Service struct {
	manager   *config.Manager
	publisher Publisher
	source    Source
	notifier  Notifier
}

// NewService creates the sharing service.
func NewService(manager *config.Manager, publisher Publisher, source Source) *Service {
	return &Service{manager: manager, publisher: publisher, source: source}
}

// SetNotifier attaches an optional notifier for published shares.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// Publish freezes the active collection into a snapshot, uploads it under a
// fresh share id and returns the shareable URL. Later edits to the collection
// do not affect an already published snapshot.
func (s *Service) Publish(ctx context.Context, sharedBy string) (Share, error) {
	cfg := s.manager.Get()
	if !cfg.Sharing.Enabled {
		return Share{}, fmt.Errorf("sharing is disabled")
	}

	records := s.source.Records()
	snapshot := Snapshot{
		Items: records,
		Metadata: Metadata{
			SharedBy:   sharedBy,
			SharedAt:   time.Now().UTC().Format(time.RFC3339),
			TotalItems: len(records),
		},
	}

	shareID := uuid.New().String()
	if err := s.publisher.PublishSnapshot(ctx, shareID, snapshot); err != nil {
		slog.Error("Share publish failed", "share", shareID, "error", err)
		return Share{}, err
	}

	share := Share{
		ID:    shareID,
		URL:   fmt.Sprintf("%s/?share=%s", cfg.Sharing.BaseURL, shareID),
		Items: len(records),
	}
	slog.Info("Share published", "share", shareID, "items", share.Items)
	if s.notifier != nil {
		s.notifier.Notify(fmt.Sprintf("Collection shared (%d albums): %s", share.Items, share.URL))
	}
	return share, nil
}
