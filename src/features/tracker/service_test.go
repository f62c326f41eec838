package tracker

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/lmoretti/waxshelf/src/collection"
	"github.com/lmoretti/waxshelf/src/features/metrics"
)

// mockStore is an in-memory Store with injectable failures.
type mockStore struct {
	records  []collection.AlbumRecord
	repaired bool
	loadErr  error
	saveErr  error
	saves    int
}

func (m *mockStore) Load(ctx context.Context, subject collection.Subject) ([]collection.AlbumRecord, bool, error) {
	if m.loadErr != nil {
		return nil, false, m.loadErr
	}
	out := make([]collection.AlbumRecord, len(m.records))
	for i, rec := range m.records {
		out[i] = rec.Clone()
	}
	return out, m.repaired, nil
}

func (m *mockStore) Save(ctx context.Context, subject collection.Subject, records []collection.AlbumRecord) error {
	if subject.ReadOnly() {
		return collection.ErrReadOnly
	}
	if m.saveErr != nil {
		return m.saveErr
	}
	m.records = make([]collection.AlbumRecord, len(records))
	for i, rec := range records {
		m.records[i] = rec.Clone()
	}
	m.saves++
	return nil
}

// mockLookup is a CatalogLookup returning a fixed result.
type mockLookup struct {
	name   string
	result LookupResult
	err    error
	calls  int
}

func (m *mockLookup) Name() string    { return m.name }
func (m *mockLookup) IsEnabled() bool { return true }
func (m *mockLookup) Supports(link string) bool {
	return strings.Contains(link, m.name)
}
func (m *mockLookup) Lookup(ctx context.Context, link string) (LookupResult, error) {
	m.calls++
	return m.result, m.err
}

func newTestService(t *testing.T, store *mockStore, providers ...CatalogLookup) *Service {
	t.Helper()
	service := NewService(store, metrics.NewRecorder(), providers...)
	if err := service.SetSubject(context.Background(), collection.LocalSubject("default")); err != nil {
		t.Fatalf("SetSubject failed: %v", err)
	}
	return service
}

func TestCreate_AppendsAtEnd(t *testing.T) {
	store := &mockStore{records: []collection.AlbumRecord{{ID: "a", AlbumName: "Existing"}}}
	service := newTestService(t, store)

	result, err := service.Create(context.Background(), CreateFields{AlbumName: "New Album"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if result.Record.ID == "" {
		t.Error("created record has no id")
	}
	records := service.Records()
	if len(records) != 2 || records[1].AlbumName != "New Album" {
		t.Fatalf("new record not appended at end: %v", records)
	}
	if store.saves != 1 {
		t.Errorf("expected 1 save, got %d", store.saves)
	}
}

func TestCreate_MergesLookupIntoEmptyFields(t *testing.T) {
	lookup := &mockLookup{
		name: "spotify",
		result: LookupResult{
			ImageURL:    "https://img/cover.jpg",
			AlbumName:   "Resolved Name",
			ReleaseDate: "1997-09-20",
			Artists:     []string{"Resolved Artist"},
			Genres:      []string{"Electronic"},
		},
	}
	service := newTestService(t, &mockStore{}, lookup)

	result, err := service.Create(context.Background(), CreateFields{
		AlbumName: "User Name",
		AlbumLink: "https://open.spotify.com/album/abc",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if lookup.calls != 1 {
		t.Fatalf("expected 1 lookup call, got %d", lookup.calls)
	}
	if result.Record.AlbumName != "User Name" {
		t.Error("user-supplied name must not be overwritten by lookup")
	}
	if result.Record.ImageURL != "https://img/cover.jpg" {
		t.Error("empty image field should take lookup value")
	}
	if len(result.Record.Genres) != 1 || result.Record.Genres[0] != "Electronic" {
		t.Errorf("empty genres should take lookup value, got %v", result.Record.Genres)
	}
}

func TestCreate_LookupFailureStillCreates(t *testing.T) {
	lookup := &mockLookup{name: "spotify", err: errors.New("boom")}
	service := newTestService(t, &mockStore{}, lookup)

	result, err := service.Create(context.Background(), CreateFields{
		AlbumName: "Album",
		AlbumLink: "https://open.spotify.com/album/abc",
	})
	if err != nil {
		t.Fatalf("create must succeed despite lookup failure, got %v", err)
	}
	if !result.LookupFailed {
		t.Error("expected LookupFailed to be reported")
	}
	if len(service.Records()) != 1 {
		t.Error("record was not created")
	}
}

func TestUpdate_PartialMergePreservesOtherFields(t *testing.T) {
	store := &mockStore{records: []collection.AlbumRecord{{
		ID: "a", AlbumName: "Original", Genres: []string{"Rock"}, Types: collection.Formats{Vinyl: true},
	}}}
	service := newTestService(t, store)

	name := "Renamed"
	wanted := true
	rec, err := service.Update(context.Background(), "a", UpdateFields{AlbumName: &name, Wanted: &wanted})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if rec.AlbumName != "Renamed" || !rec.Wanted {
		t.Errorf("updated fields not applied: %+v", rec)
	}
	if len(rec.Genres) != 1 || !rec.Types.Vinyl {
		t.Errorf("untouched fields were lost: %+v", rec)
	}
	if rec.ID != "a" {
		t.Error("id must survive update")
	}
}

func TestUpdate_UnknownIDFails(t *testing.T) {
	service := newTestService(t, &mockStore{})
	name := "X"
	if _, err := service.Update(context.Background(), "missing", UpdateFields{AlbumName: &name}); !errors.Is(err, collection.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStagedDelete(t *testing.T) {
	store := &mockStore{records: []collection.AlbumRecord{{ID: "a"}, {ID: "b"}}}
	service := newTestService(t, store)

	staged, err := service.StageRemove("a")
	if err != nil {
		t.Fatalf("StageRemove failed: %v", err)
	}
	if staged.ID != "a" {
		t.Fatalf("wrong record staged: %v", staged.ID)
	}
	// Staging alone must not mutate.
	if len(service.Records()) != 2 {
		t.Fatal("staging removed a record before confirmation")
	}

	if err := service.CommitRemove(context.Background()); err != nil {
		t.Fatalf("CommitRemove failed: %v", err)
	}
	records := service.Records()
	if len(records) != 1 || records[0].ID != "b" {
		t.Fatalf("wrong record removed: %v", records)
	}

	// Nothing staged anymore.
	if err := service.CommitRemove(context.Background()); !errors.Is(err, collection.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty staging, got %v", err)
	}
}

func TestCancelRemove(t *testing.T) {
	store := &mockStore{records: []collection.AlbumRecord{{ID: "a"}}}
	service := newTestService(t, store)

	if _, err := service.StageRemove("a"); err != nil {
		t.Fatal(err)
	}
	service.CancelRemove()
	if err := service.CommitRemove(context.Background()); !errors.Is(err, collection.ErrNotFound) {
		t.Fatalf("cancelled staging must not commit, got %v", err)
	}
	if len(service.Records()) != 1 {
		t.Error("record vanished after cancelled delete")
	}
}

func TestRollbackOnSaveFailure(t *testing.T) {
	store := &mockStore{records: []collection.AlbumRecord{{ID: "a", AlbumName: "Keep"}}}
	service := newTestService(t, store)

	store.saveErr = errors.New("network down")
	_, err := service.Create(context.Background(), CreateFields{AlbumName: "Doomed"})
	if err == nil {
		t.Fatal("expected create to fail when save fails")
	}
	records := service.Records()
	if len(records) != 1 || records[0].AlbumName != "Keep" {
		t.Fatalf("in-memory state not rolled back: %v", records)
	}
}

func TestReadOnlySubjectRejectsMutations(t *testing.T) {
	store := &mockStore{records: []collection.AlbumRecord{{ID: "a"}}}
	service := NewService(store, metrics.NewRecorder())
	if err := service.SetSubject(context.Background(), collection.ShareSubject("share-1")); err != nil {
		t.Fatalf("SetSubject failed: %v", err)
	}

	if _, err := service.Create(context.Background(), CreateFields{}); !errors.Is(err, collection.ErrReadOnly) {
		t.Errorf("Create on share: expected ErrReadOnly, got %v", err)
	}
	name := "X"
	if _, err := service.Update(context.Background(), "a", UpdateFields{AlbumName: &name}); !errors.Is(err, collection.ErrReadOnly) {
		t.Errorf("Update on share: expected ErrReadOnly, got %v", err)
	}
	if _, err := service.StageRemove("a"); !errors.Is(err, collection.ErrReadOnly) {
		t.Errorf("StageRemove on share: expected ErrReadOnly, got %v", err)
	}
	if err := service.Reorder(context.Background(), []string{"a"}); !errors.Is(err, collection.ErrReadOnly) {
		t.Errorf("Reorder on share: expected ErrReadOnly, got %v", err)
	}
}

func TestReorder_PermutationKeepsContent(t *testing.T) {
	store := &mockStore{records: []collection.AlbumRecord{{ID: "a"}, {ID: "b"}, {ID: "c"}}}
	service := newTestService(t, store)

	if err := service.Reorder(context.Background(), []string{"c", "a", "b"}); err != nil {
		t.Fatalf("Reorder failed: %v", err)
	}
	records := service.Records()
	want := []string{"c", "a", "b"}
	for i, id := range want {
		if records[i].ID != id {
			t.Fatalf("order mismatch at %d: got %q, want %q", i, records[i].ID, id)
		}
	}
}

func TestReorder_UnknownIDsDropped(t *testing.T) {
	store := &mockStore{records: []collection.AlbumRecord{{ID: "a"}, {ID: "b"}}}
	service := newTestService(t, store)

	if err := service.Reorder(context.Background(), []string{"b", "ghost", "a"}); err != nil {
		t.Fatalf("Reorder failed: %v", err)
	}
	records := service.Records()
	if len(records) != 2 || records[0].ID != "b" || records[1].ID != "a" {
		t.Fatalf("unexpected order: %v", records)
	}
}

func TestReorder_StaleOrderReloadsAuthoritative(t *testing.T) {
	store := &mockStore{records: []collection.AlbumRecord{{ID: "a"}, {ID: "b"}}}
	service := newTestService(t, store)

	// The supplied order is missing a record the collection has.
	err := service.Reorder(context.Background(), []string{"a"})
	if !errors.Is(err, collection.ErrStaleOrder) {
		t.Fatalf("expected ErrStaleOrder, got %v", err)
	}
	// No record may be lost.
	if len(service.Records()) != 2 {
		t.Fatalf("stale reorder dropped records: %v", service.Records())
	}
}

func TestImportExport_RoundTrip(t *testing.T) {
	store := &mockStore{records: []collection.AlbumRecord{
		{ID: "a", AlbumName: "First", AlbumArtists: []string{"X"}, Genres: []string{"Rock"}},
		{ID: "b", AlbumName: "Second", AlbumArtists: []string{}, Genres: []string{}},
	}}
	service := newTestService(t, store)

	payload, err := service.Export()
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	summary, err := service.Import(context.Background(), payload)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if summary.Updated != 2 || summary.Added != 0 {
		t.Fatalf("round-trip import must only update existing: %+v", summary)
	}
	records := service.Records()
	if len(records) != 2 || records[0].AlbumName != "First" || records[1].AlbumName != "Second" {
		t.Fatalf("round trip changed content: %v", records)
	}
}

func TestImport_MergesAndAppends(t *testing.T) {
	store := &mockStore{records: []collection.AlbumRecord{{ID: "a", AlbumName: "Old"}}}
	service := newTestService(t, store)

	payload := []byte(`[
		{"id": "a", "albumName": "Replaced"},
		{"id": "new", "albumName": "Appended"}
	]`)
	summary, err := service.Import(context.Background(), payload)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if summary.Updated != 1 || summary.Added != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	records := service.Records()
	if records[0].AlbumName != "Replaced" || records[1].AlbumName != "Appended" {
		t.Fatalf("merge result wrong: %v", records)
	}
}

func TestImport_RejectsNonArray(t *testing.T) {
	service := newTestService(t, &mockStore{records: []collection.AlbumRecord{{ID: "a"}}})

	for _, payload := range []string{`{"id":"a"}`, `"text"`, `not json`} {
		if _, err := service.Import(context.Background(), []byte(payload)); !errors.Is(err, collection.ErrImportFormat) {
			t.Errorf("payload %q: expected ErrImportFormat, got %v", payload, err)
		}
	}
	if len(service.Records()) != 1 {
		t.Error("rejected import mutated the collection")
	}
}

func TestRefresh_NoLink(t *testing.T) {
	store := &mockStore{records: []collection.AlbumRecord{{ID: "a"}}}
	service := newTestService(t, store, &mockLookup{name: "spotify"})

	if _, err := service.RefreshFromCatalog(context.Background(), "a"); !errors.Is(err, collection.ErrNoLinkAvailable) {
		t.Fatalf("expected ErrNoLinkAvailable, got %v", err)
	}
}

func TestRefresh_UnsupportedLink(t *testing.T) {
	store := &mockStore{records: []collection.AlbumRecord{{ID: "a", AlbumLink: "https://bandcamp.com/album/x"}}}
	service := newTestService(t, store, &mockLookup{name: "spotify"})

	if _, err := service.RefreshFromCatalog(context.Background(), "a"); !errors.Is(err, collection.ErrNoLinkAvailable) {
		t.Fatalf("expected ErrNoLinkAvailable, got %v", err)
	}
}

func TestRefresh_LookupFailureLeavesRecordUntouched(t *testing.T) {
	store := &mockStore{records: []collection.AlbumRecord{{
		ID: "a", AlbumName: "Keep", AlbumLink: "https://open.spotify.com/album/abc",
	}}}
	lookup := &mockLookup{name: "spotify", err: errors.New("boom")}
	service := newTestService(t, store, lookup)

	_, err := service.RefreshFromCatalog(context.Background(), "a")
	if !errors.Is(err, collection.ErrLookupFailure) {
		t.Fatalf("expected ErrLookupFailure, got %v", err)
	}
	if service.Records()[0].AlbumName != "Keep" {
		t.Error("failed refresh mutated the record")
	}
}

func TestRefresh_EmptyResultIsFailure(t *testing.T) {
	store := &mockStore{records: []collection.AlbumRecord{{
		ID: "a", AlbumLink: "https://open.spotify.com/album/abc",
	}}}
	service := newTestService(t, store, &mockLookup{name: "spotify"})

	if _, err := service.RefreshFromCatalog(context.Background(), "a"); !errors.Is(err, collection.ErrLookupFailure) {
		t.Fatalf("expected ErrLookupFailure for all-empty result, got %v", err)
	}
}

func TestRefresh_OverwritesWithFallback(t *testing.T) {
	store := &mockStore{records: []collection.AlbumRecord{{
		ID:          "a",
		AlbumName:   "Old Name",
		ReleaseDate: "1990-01-01",
		AlbumLink:   "https://open.spotify.com/album/abc",
		Wanted:      true,
		Types:       collection.Formats{Vinyl: true},
	}}}
	lookup := &mockLookup{name: "spotify", result: LookupResult{
		AlbumName: "New Name",
		ImageURL:  "https://img/new.jpg",
	}}
	service := newTestService(t, store, lookup)

	rec, err := service.RefreshFromCatalog(context.Background(), "a")
	if err != nil {
		t.Fatalf("RefreshFromCatalog failed: %v", err)
	}
	if rec.AlbumName != "New Name" || rec.ImageURL != "https://img/new.jpg" {
		t.Errorf("lookup fields not applied: %+v", rec)
	}
	if rec.ReleaseDate != "1990-01-01" {
		t.Error("missing lookup field must fall back to existing value")
	}
	if !rec.Wanted || !rec.Types.Vinyl {
		t.Error("ownership state must survive a refresh")
	}
}

func TestSetSubject_PersistsRepairedCollection(t *testing.T) {
	store := &mockStore{
		records:  []collection.AlbumRecord{{ID: "a"}},
		repaired: true,
	}
	service := NewService(store, metrics.NewRecorder())
	if err := service.SetSubject(context.Background(), collection.LocalSubject("default")); err != nil {
		t.Fatalf("SetSubject failed: %v", err)
	}
	if store.saves != 1 {
		t.Errorf("repaired collection should be saved back once, got %d saves", store.saves)
	}
}

func TestSetSubject_LoadFailureFallsBackToEmpty(t *testing.T) {
	store := &mockStore{loadErr: errors.New("unreachable")}
	service := NewService(store, metrics.NewRecorder())

	err := service.SetSubject(context.Background(), collection.LocalSubject("default"))
	if err == nil {
		t.Fatal("expected load error to be reported")
	}
	if len(service.Records()) != 0 {
		t.Error("failed load must leave an empty active collection")
	}
	if service.Subject().Kind != collection.SubjectLocal {
		t.Error("subject must switch even when the load fails")
	}
}

func TestWantedFlipMovesGroup(t *testing.T) {
	store := &mockStore{records: []collection.AlbumRecord{
		{ID: "a", AlbumName: "A"},
		{ID: "b", AlbumName: "B", Wanted: true},
	}}
	service := newTestService(t, store)

	wanted := true
	if _, err := service.Update(context.Background(), "a", UpdateFields{Wanted: &wanted}); err != nil {
		t.Fatal(err)
	}
	view := service.View(collection.Criteria{SortKey: collection.SortByName})
	for _, rec := range view {
		if !rec.Wanted {
			t.Fatalf("expected every record in the wanted group, got %+v", rec)
		}
	}
}

func TestStatsCacheTracksMutations(t *testing.T) {
	service := newTestService(t, &mockStore{})
	if service.Stats().Total != 0 {
		t.Fatal("fresh empty collection must report zero stats")
	}
	if _, err := service.Create(context.Background(), CreateFields{AlbumName: "A", AlbumArtists: []string{"X"}}); err != nil {
		t.Fatal(err)
	}
	snap := service.Stats()
	if snap.Total != 1 || snap.Owned != 1 {
		t.Fatalf("stats not recomputed after create: %+v", snap)
	}
	artists, _ := service.Suggestions()
	if len(artists) != 1 || artists[0] != "X" {
		t.Fatalf("suggestions not recomputed: %v", artists)
	}
}

// blockingLookup parks inside Lookup until released so a test can interleave
// other operations while a refresh is in flight.
type blockingLookup struct {
	name    string
	result  LookupResult
	started chan struct{}
	release chan struct{}
	calls   int
}

func newBlockingLookup(name string, result LookupResult) *blockingLookup {
	return &blockingLookup{
		name:    name,
		result:  result,
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (b *blockingLookup) Name() string    { return b.name }
func (b *blockingLookup) IsEnabled() bool { return true }
func (b *blockingLookup) Supports(link string) bool {
	return strings.Contains(link, b.name)
}
func (b *blockingLookup) Lookup(ctx context.Context, link string) (LookupResult, error) {
	b.calls++
	b.started <- struct{}{}
	<-b.release
	return b.result, nil
}

func TestRefreshFromCatalog_DuplicateWhileInFlightIsIgnored(t *testing.T) {
	lookup := newBlockingLookup("spotify", LookupResult{AlbumName: "Resolved"})
	store := &mockStore{records: []collection.AlbumRecord{
		{ID: "a", AlbumName: "Original", AlbumLink: "https://open.spotify.com/album/abc"},
	}}
	service := newTestService(t, store, lookup)

	done := make(chan error, 1)
	go func() {
		_, err := service.RefreshFromCatalog(context.Background(), "a")
		done <- err
	}()
	<-lookup.started

	rec, err := service.RefreshFromCatalog(context.Background(), "a")
	if err != nil {
		t.Fatalf("duplicate refresh must be a no-op, got %v", err)
	}
	if rec.AlbumName != "Original" {
		t.Errorf("duplicate refresh must return the current record, got %q", rec.AlbumName)
	}

	close(lookup.release)
	if err := <-done; err != nil {
		t.Fatalf("first refresh failed: %v", err)
	}
	if lookup.calls != 1 {
		t.Errorf("expected a single lookup call, got %d", lookup.calls)
	}
	if got := service.Records()[0].AlbumName; got != "Resolved" {
		t.Errorf("first refresh result not applied, got %q", got)
	}
}

func TestRefreshFromCatalog_ResultAfterSubjectSwitchIsDiscarded(t *testing.T) {
	lookup := newBlockingLookup("spotify", LookupResult{AlbumName: "Resolved"})
	store := &mockStore{records: []collection.AlbumRecord{
		{ID: "a", AlbumName: "Original", AlbumLink: "https://open.spotify.com/album/abc"},
	}}
	service := newTestService(t, store, lookup)

	done := make(chan error, 1)
	go func() {
		_, err := service.RefreshFromCatalog(context.Background(), "a")
		done <- err
	}()
	<-lookup.started

	if err := service.SetSubject(context.Background(), collection.LocalSubject("other")); err != nil {
		t.Fatalf("SetSubject failed: %v", err)
	}

	close(lookup.release)
	if err := <-done; !errors.Is(err, ErrSubjectChanged) {
		t.Fatalf("expected ErrSubjectChanged, got %v", err)
	}
	if store.saves != 0 {
		t.Errorf("stale lookup result must not be persisted, got %d saves", store.saves)
	}
	if got := service.Records()[0].AlbumName; got != "Original" {
		t.Errorf("stale lookup result applied to the new subject: %q", got)
	}
}

func TestScheduleReorder_CoalescesRapidUpdates(t *testing.T) {
	store := &mockStore{records: []collection.AlbumRecord{{ID: "a"}, {ID: "b"}, {ID: "c"}}}
	service := newTestService(t, store)

	service.ScheduleReorder([]string{"b", "a", "c"})
	service.ScheduleReorder([]string{"c", "a", "b"})
	service.ScheduleReorder([]string{"c", "b", "a"})

	deadline := time.Now().Add(5 * time.Second)
	for {
		records := service.Records()
		if len(records) == 3 && records[0].ID == "c" && records[1].ID == "b" && records[2].ID == "a" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("debounced reorder never committed, have %v", records)
		}
		time.Sleep(20 * time.Millisecond)
	}
	if store.saves != 1 {
		t.Errorf("rapid schedules must coalesce into a single save, got %d", store.saves)
	}
}
