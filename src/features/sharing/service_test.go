package sharing

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lmoretti/waxshelf/src/collection"
	"github.com/lmoretti/waxshelf/src/features/config"
)

type mockPublisher struct {
	published map[string]Snapshot
	err       error
}

func (m *mockPublisher) PublishSnapshot(ctx context.Context, shareID string, snapshot Snapshot) error {
	if m.err != nil {
		return m.err
	}
	if m.published == nil {
		m.published = make(map[string]Snapshot)
	}
	m.published[shareID] = snapshot
	return nil
}

type mockSource struct {
	records []collection.AlbumRecord
}

func (m *mockSource) Records() []collection.AlbumRecord { return m.records }
func (m *mockSource) Subject() collection.Subject {
	return collection.LocalSubject("default")
}

func testManager(enabled bool) *config.Manager {
	cfg := &config.Config{
		Sharing: config.Sharing{
			Enabled: enabled,
			BaseURL: "https://waxshelf.example",
		},
	}
	return config.NewManager(cfg)
}

func TestPublish_FreezesSnapshot(t *testing.T) {
	publisher := &mockPublisher{}
	source := &mockSource{records: []collection.AlbumRecord{{ID: "a"}, {ID: "b"}}}
	service := NewService(testManager(true), publisher, source)

	share, err := service.Publish(context.Background(), "lucia")
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if share.ID == "" {
		t.Fatal("share id missing")
	}
	if !strings.HasPrefix(share.URL, "https://waxshelf.example/?share=") {
		t.Errorf("unexpected share URL: %q", share.URL)
	}

	snapshot, ok := publisher.published[share.ID]
	if !ok {
		t.Fatal("snapshot was not published")
	}
	if len(snapshot.Items) != 2 || snapshot.Metadata.TotalItems != 2 {
		t.Errorf("snapshot content wrong: %+v", snapshot.Metadata)
	}
	if snapshot.Metadata.SharedBy != "lucia" {
		t.Errorf("sharedBy not recorded: %q", snapshot.Metadata.SharedBy)
	}
	if snapshot.Metadata.SharedAt == "" {
		t.Error("sharedAt not recorded")
	}
}

func TestPublish_LaterEditsDoNotAffectSnapshot(t *testing.T) {
	publisher := &mockPublisher{}
	source := &mockSource{records: []collection.AlbumRecord{{ID: "a", AlbumName: "Before"}}}
	service := NewService(testManager(true), publisher, source)

	share, err := service.Publish(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	source.records[0].AlbumName = "After"

	if publisher.published[share.ID].Items[0].AlbumName != "Before" {
		t.Error("published snapshot observed a later edit")
	}
}

func TestPublish_DisabledFails(t *testing.T) {
	service := NewService(testManager(false), &mockPublisher{}, &mockSource{})
	if _, err := service.Publish(context.Background(), ""); err == nil {
		t.Fatal("expected publish to fail when sharing is disabled")
	}
}

func TestPublish_UploadFailure(t *testing.T) {
	publisher := &mockPublisher{err: errors.New("unreachable")}
	service := NewService(testManager(true), publisher, &mockSource{})
	if _, err := service.Publish(context.Background(), ""); err == nil {
		t.Fatal("expected publish to surface upload failure")
	}
}
