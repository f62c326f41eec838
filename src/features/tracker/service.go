package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/lmoretti/waxshelf/src/collection"
	"github.com/lmoretti/waxshelf/src/features/metrics"
)

// reorderDebounce coalesces rapid position changes during a single drag
// gesture into one commit.
const reorderDebounce = 600 * time.Millisecond

// ErrSubjectChanged means the active subject switched while a request was in
// flight; the stale result was discarded rather than applied.
var ErrSubjectChanged = errors.New("subject changed while request was in flight")

// Notifier delivers non-blocking user notifications for background events
// (cloud sync failures, published shares).
type Notifier interface {
	Notify(message string)
}

// Service is the mutation pipeline: it owns the in-memory collection for the
// active subject and is the only component that mutates it. Every successful
// mutation persists the full collection, then recomputes the derived view
// caches, in that order, so the UI never observes state stale relative to a
// committed mutation.
type Service struct {
	store     collection.Store
	recorder  *metrics.Recorder
	providers []CatalogLookup
	notifier  Notifier

	mu           sync.Mutex
	subject      collection.Subject
	epoch        uint64
	records      []collection.AlbumRecord
	stagedDelete string
	inflight     map[string]bool

	// derived caches, recomputed after load and after every commit
	stats   collection.Snapshot
	artists []string
	genres  []string

	reorderMu    sync.Mutex
	reorderTimer *time.Timer
}

// NewService creates the tracker service. The initial subject must be set
// with SetSubject before use.
func NewService(store collection.Store, recorder *metrics.Recorder, providers ...CatalogLookup) *Service {
	return &Service{
		store:     store,
		recorder:  recorder,
		providers: providers,
		inflight:  make(map[string]bool),
		records:   []collection.AlbumRecord{},
	}
}

// SetNotifier attaches an optional notifier for background events.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

func (s *Service) notify(message string) {
	if s.notifier != nil {
		s.notifier.Notify(message)
	}
}

// Subject returns the active subject.
func (s *Service) Subject() collection.Subject {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subject
}

// SetSubject switches the active subject and loads its collection. Loading
// fails soft: on any retrieval error the subject still switches, an empty
// collection becomes active and the error is returned for user notification.
// Repaired collections are persisted back when the subject is writable.
func (s *Service) SetSubject(ctx context.Context, subject collection.Subject) error {
	s.mu.Lock()
	s.subject = subject
	s.epoch++
	s.stagedDelete = ""
	s.inflight = make(map[string]bool)
	s.mu.Unlock()

	records, repaired, err := s.store.Load(ctx, subject)
	if err != nil {
		slog.Error("Collection load failed, starting empty", "subject", subject.Key(), "error", err)
		records = []collection.AlbumRecord{}
	}

	s.mu.Lock()
	if s.subject != subject {
		s.mu.Unlock()
		return ErrSubjectChanged
	}
	s.records = records
	s.refreshDerivedLocked()
	s.mu.Unlock()

	slog.Info("Active subject switched", "subject", subject.Key(), "records", len(records))

	if err != nil {
		return err
	}
	if repaired && !subject.ReadOnly() {
		if saveErr := s.store.Save(ctx, subject, records); saveErr != nil {
			slog.Error("Failed to persist repaired collection", "subject", subject.Key(), "error", saveErr)
		} else {
			slog.Info("Persisted repaired collection", "subject", subject.Key())
		}
	}
	return nil
}

// Records returns a deep-copied snapshot of the active collection in stored
// order.
func (s *Service) Records() []collection.AlbumRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneRecords(s.records)
}

// View projects the active collection through the given criteria.
func (s *Service) View(criteria collection.Criteria) []collection.AlbumRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return collection.Project(s.records, criteria)
}

// Random returns one random record from the projected view, or false when
// the view is empty.
func (s *Service) Random(criteria collection.Criteria) (collection.AlbumRecord, bool) {
	view := s.View(criteria)
	if len(view) == 0 {
		return collection.AlbumRecord{}, false
	}
	return view[rand.IntN(len(view))], true
}

// Stats returns the derived aggregate snapshot for the active collection.
func (s *Service) Stats() collection.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Suggestions returns the artist and genre vocabularies for filter dropdowns.
func (s *Service) Suggestions() (artists, genres []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.artists...), append([]string(nil), s.genres...)
}

// Get returns the record with the given id.
func (s *Service) Get(id string) (collection.AlbumRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.indexLocked(id); idx >= 0 {
		return s.records[idx].Clone(), nil
	}
	return collection.AlbumRecord{}, collection.ErrNotFound
}

// CreateFields are the user-supplied fields for a new record.
type CreateFields struct {
	AlbumName    string             `json:"albumName"`
	AlbumArtists []string           `json:"albumArtists"`
	Genres       []string           `json:"genres"`
	ReleaseDate  string             `json:"releaseDate"`
	ImageURL     string             `json:"imageUrl"`
	AlbumLink    string             `json:"albumLink"`
	Wanted       bool               `json:"wanted"`
	Types        collection.Formats `json:"types"`
}

// CreateResult is the finalized record plus whether an attempted catalog
// lookup failed (non-fatal; the record is created from user fields alone).
type CreateResult struct {
	Record       collection.AlbumRecord
	LookupFailed bool
}

// Create validates permissively (an empty album name is allowed), assigns a
// fresh id and appends the record to the end of the collection. When an album
// link for a supported catalog is present and no explicit image was supplied,
// metadata is looked up first and merged into the empty fields.
func (s *Service) Create(ctx context.Context, fields CreateFields) (CreateResult, error) {
	s.mu.Lock()
	if s.subject.ReadOnly() {
		s.mu.Unlock()
		return CreateResult{}, collection.ErrReadOnly
	}
	epoch := s.epoch
	s.mu.Unlock()

	result := CreateResult{}
	if fields.AlbumLink != "" && fields.ImageURL == "" {
		if provider := s.providerFor(fields.AlbumLink); provider != nil {
			res, err := provider.Lookup(ctx, fields.AlbumLink)
			if err != nil || res.Empty() {
				s.recorder.Lookup(provider.Name(), lookupOutcome(err))
				slog.Warn("Catalog lookup failed during create, proceeding with user fields", "provider", provider.Name(), "error", err)
				result.LookupFailed = true
			} else {
				s.recorder.Lookup(provider.Name(), "hit")
				mergeIntoEmpty(&fields, res)
			}
		}
	}

	rec := collection.AlbumRecord{
		ID:           collection.NewID(),
		AlbumName:    fields.AlbumName,
		AlbumArtists: emptyIfNil(fields.AlbumArtists),
		Genres:       emptyIfNil(fields.Genres),
		ReleaseDate:  fields.ReleaseDate,
		ImageURL:     fields.ImageURL,
		AlbumLink:    fields.AlbumLink,
		Wanted:       fields.Wanted,
		Types:        fields.Types,
	}
	if err := rec.Validate(); err != nil {
		return CreateResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return CreateResult{}, ErrSubjectChanged
	}
	prev := cloneRecords(s.records)
	s.records = append(s.records, rec)
	if err := s.commitLocked(ctx, prev, "create"); err != nil {
		return CreateResult{}, err
	}
	result.Record = rec.Clone()
	return result, nil
}

// UpdateFields is a partial merge: only non-nil fields overwrite the record.
type UpdateFields struct {
	AlbumName    *string             `json:"albumName"`
	AlbumArtists *[]string           `json:"albumArtists"`
	Genres       *[]string           `json:"genres"`
	ReleaseDate  *string             `json:"releaseDate"`
	ImageURL     *string             `json:"imageUrl"`
	AlbumLink    *string             `json:"albumLink"`
	Wanted       *bool               `json:"wanted"`
	Types        *collection.Formats `json:"types"`
}

// Update merges the supplied fields over the existing record, preserving its
// id and every field not present in the partial.
func (s *Service) Update(ctx context.Context, id string, fields UpdateFields) (collection.AlbumRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subject.ReadOnly() {
		return collection.AlbumRecord{}, collection.ErrReadOnly
	}
	idx := s.indexLocked(id)
	if idx < 0 {
		return collection.AlbumRecord{}, collection.ErrNotFound
	}

	prev := cloneRecords(s.records)
	rec := &s.records[idx]
	if fields.AlbumName != nil {
		rec.AlbumName = *fields.AlbumName
	}
	if fields.AlbumArtists != nil {
		rec.AlbumArtists = append([]string(nil), *fields.AlbumArtists...)
	}
	if fields.Genres != nil {
		rec.Genres = append([]string(nil), *fields.Genres...)
	}
	if fields.ReleaseDate != nil {
		rec.ReleaseDate = *fields.ReleaseDate
	}
	if fields.ImageURL != nil {
		rec.ImageURL = *fields.ImageURL
	}
	if fields.AlbumLink != nil {
		rec.AlbumLink = *fields.AlbumLink
	}
	if fields.Wanted != nil {
		rec.Wanted = *fields.Wanted
	}
	if fields.Types != nil {
		rec.Types = *fields.Types
	}
	if err := rec.Validate(); err != nil {
		s.records = prev
		return collection.AlbumRecord{}, err
	}
	if err := s.commitLocked(ctx, prev, "update"); err != nil {
		return collection.AlbumRecord{}, err
	}
	return s.records[idx].Clone(), nil
}

// StageRemove stages a record for deletion pending user confirmation.
func (s *Service) StageRemove(id string) (collection.AlbumRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subject.ReadOnly() {
		return collection.AlbumRecord{}, collection.ErrReadOnly
	}
	idx := s.indexLocked(id)
	if idx < 0 {
		return collection.AlbumRecord{}, collection.ErrNotFound
	}
	s.stagedDelete = id
	return s.records[idx].Clone(), nil
}

// CancelRemove clears any staged deletion.
func (s *Service) CancelRemove() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stagedDelete = ""
}

// CommitRemove deletes the staged record by id. If the staged id no longer
// exists at commit time the operation fails with NotFound and the collection
// is left otherwise unchanged.
func (s *Service) CommitRemove(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subject.ReadOnly() {
		return collection.ErrReadOnly
	}
	staged := s.stagedDelete
	s.stagedDelete = ""
	if staged == "" {
		return collection.ErrNotFound
	}
	idx := s.indexLocked(staged)
	if idx < 0 {
		return collection.ErrNotFound
	}

	prev := cloneRecords(s.records)
	s.records = append(s.records[:idx], s.records[idx+1:]...)
	return s.commitLocked(ctx, prev, "remove")
}

// Reorder replaces the collection's stored order with the supplied id
// sequence. Ids not present in the collection are dropped; if the result
// would lose records (the order references stale ids from a racing load) the
// authoritative collection is reloaded instead and StaleOrder is reported.
func (s *Service) Reorder(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subject.ReadOnly() {
		return collection.ErrReadOnly
	}

	byID := make(map[string]int, len(s.records))
	for i, rec := range s.records {
		byID[rec.ID] = i
	}
	ordered := make([]collection.AlbumRecord, 0, len(s.records))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		idx, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		ordered = append(ordered, s.records[idx])
	}

	if len(ordered) != len(s.records) {
		slog.Warn("Reorder referenced stale ids, reloading authoritative collection",
			"subject", s.subject.Key(), "supplied", len(ids), "have", len(s.records))
		records, _, err := s.store.Load(ctx, s.subject)
		if err != nil {
			slog.Error("Authoritative reload after stale reorder failed", "error", err)
			return collection.ErrStaleOrder
		}
		s.records = records
		s.refreshDerivedLocked()
		return collection.ErrStaleOrder
	}

	prev := s.records
	s.records = ordered
	return s.commitLocked(ctx, prev, "reorder")
}

// ScheduleReorder coalesces rapid successive position changes during a drag
// gesture into a single Reorder commit after the gesture settles.
func (s *Service) ScheduleReorder(ids []string) {
	s.mu.Lock()
	epoch := s.epoch
	s.mu.Unlock()

	order := append([]string(nil), ids...)
	s.reorderMu.Lock()
	defer s.reorderMu.Unlock()
	if s.reorderTimer != nil {
		s.reorderTimer.Stop()
	}
	s.reorderTimer = time.AfterFunc(reorderDebounce, func() {
		s.mu.Lock()
		stale := s.epoch != epoch
		s.mu.Unlock()
		if stale {
			slog.Debug("Discarding debounced reorder, subject changed")
			return
		}
		if err := s.Reorder(context.Background(), order); err != nil {
			slog.Error("Debounced reorder failed", "error", err)
		}
	})
}

// ImportSummary reports what an import merge changed.
type ImportSummary struct {
	Updated int `json:"updated"`
	Added   int `json:"added"`
}

// Import merges a JSON array of records into the collection: matching ids are
// fully replaced, the rest are appended with their ids preserved (or freshly
// assigned when absent). Any non-array or unparsable payload is rejected with
// no partial mutation.
func (s *Service) Import(ctx context.Context, payload []byte) (ImportSummary, error) {
	var raw any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return ImportSummary{}, collection.ErrImportFormat
	}
	entries, ok := raw.([]any)
	if !ok {
		return ImportSummary{}, collection.ErrImportFormat
	}
	incoming, _ := collection.Normalize(entries)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subject.ReadOnly() {
		return ImportSummary{}, collection.ErrReadOnly
	}

	prev := cloneRecords(s.records)
	byID := make(map[string]int, len(s.records))
	for i, rec := range s.records {
		byID[rec.ID] = i
	}

	summary := ImportSummary{}
	for _, rec := range incoming {
		if idx, exists := byID[rec.ID]; exists {
			s.records[idx] = rec
			summary.Updated++
		} else {
			byID[rec.ID] = len(s.records)
			s.records = append(s.records, rec)
			summary.Added++
		}
	}

	if err := s.commitLocked(ctx, prev, "import"); err != nil {
		return ImportSummary{}, err
	}
	slog.Info("Import merged", "updated", summary.Updated, "added", summary.Added)
	return summary, nil
}

// Export serializes the full collection as a pretty-printed JSON array.
func (s *Service) Export() ([]byte, error) {
	s.mu.Lock()
	records := cloneRecords(s.records)
	s.mu.Unlock()
	return json.MarshalIndent(records, "", "    ")
}

// RefreshFromCatalog re-resolves a record's metadata from its album link and
// overwrites the metadata fields, falling back to existing values field by
// field when the lookup has no data. Ownership state and formats are
// preserved. A second refresh for the same record while one is in flight is
// ignored.
func (s *Service) RefreshFromCatalog(ctx context.Context, id string) (collection.AlbumRecord, error) {
	s.mu.Lock()
	if s.subject.ReadOnly() {
		s.mu.Unlock()
		return collection.AlbumRecord{}, collection.ErrReadOnly
	}
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return collection.AlbumRecord{}, collection.ErrNotFound
	}
	rec := s.records[idx].Clone()
	if rec.AlbumLink == "" {
		s.mu.Unlock()
		return collection.AlbumRecord{}, collection.ErrNoLinkAvailable
	}
	provider := s.providerFor(rec.AlbumLink)
	if provider == nil {
		s.mu.Unlock()
		return collection.AlbumRecord{}, collection.ErrNoLinkAvailable
	}
	if s.inflight[id] {
		s.mu.Unlock()
		slog.Debug("Refresh already in flight, ignoring", "id", id)
		return rec, nil
	}
	s.inflight[id] = true
	epoch := s.epoch
	s.mu.Unlock()

	res, lookupErr := provider.Lookup(ctx, rec.AlbumLink)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, id)

	// A result that arrives after the subject changed belongs to a
	// collection that is no longer active.
	if s.epoch != epoch {
		slog.Debug("Discarding stale catalog result", "id", id)
		return collection.AlbumRecord{}, ErrSubjectChanged
	}
	idx = s.indexLocked(id)
	if idx < 0 {
		return collection.AlbumRecord{}, collection.ErrNotFound
	}
	if lookupErr != nil || res.Empty() {
		s.recorder.Lookup(provider.Name(), lookupOutcome(lookupErr))
		return s.records[idx].Clone(), collection.ErrLookupFailure
	}
	s.recorder.Lookup(provider.Name(), "hit")

	prev := cloneRecords(s.records)
	target := &s.records[idx]
	if res.ImageURL != "" {
		target.ImageURL = res.ImageURL
	}
	if res.AlbumName != "" {
		target.AlbumName = res.AlbumName
	}
	if res.ReleaseDate != "" {
		target.ReleaseDate = res.ReleaseDate
	}
	if len(res.Artists) > 0 {
		target.AlbumArtists = append([]string(nil), res.Artists...)
	}
	if len(res.Genres) > 0 {
		target.Genres = append([]string(nil), res.Genres...)
	}
	if err := s.commitLocked(ctx, prev, "refresh"); err != nil {
		return collection.AlbumRecord{}, err
	}
	return s.records[idx].Clone(), nil
}

// commitLocked persists the already-mutated collection and recomputes the
// derived caches, in that order. On a save failure the in-memory mutation is
// rolled back to its pre-mutation snapshot so memory and backing store never
// diverge silently. Callers must hold s.mu.
func (s *Service) commitLocked(ctx context.Context, prev []collection.AlbumRecord, op string) error {
	if err := s.store.Save(ctx, s.subject, s.records); err != nil {
		s.records = prev
		s.recorder.SaveFailure()
		slog.Error("Save failed, mutation rolled back", "op", op, "subject", s.subject.Key(), "error", err)
		s.notify("Cloud sync failed: your last change was not saved")
		return err
	}
	s.refreshDerivedLocked()
	s.recorder.Mutation(op)
	return nil
}

func (s *Service) refreshDerivedLocked() {
	s.stats = collection.ComputeStats(s.records)
	s.artists = collection.ArtistVocabulary(s.records)
	s.genres = collection.GenreVocabulary(s.records)
	s.recorder.SetRecordCounts(s.stats.Owned, s.stats.Wanted)
}

func (s *Service) indexLocked(id string) int {
	for i, rec := range s.records {
		if rec.ID == id {
			return i
		}
	}
	return -1
}

func (s *Service) providerFor(link string) CatalogLookup {
	for _, p := range s.providers {
		if p.IsEnabled() && p.Supports(link) {
			return p
		}
	}
	return nil
}

func lookupOutcome(err error) string {
	if err != nil {
		return "error"
	}
	return "miss"
}

// mergeIntoEmpty fills only the fields the user left empty.
func mergeIntoEmpty(fields *CreateFields, res LookupResult) {
	if fields.ImageURL == "" {
		fields.ImageURL = res.ImageURL
	}
	if fields.AlbumName == "" {
		fields.AlbumName = res.AlbumName
	}
	if fields.ReleaseDate == "" {
		fields.ReleaseDate = res.ReleaseDate
	}
	if len(fields.AlbumArtists) == 0 {
		fields.AlbumArtists = append([]string(nil), res.Artists...)
	}
	if len(fields.Genres) == 0 {
		fields.Genres = append([]string(nil), res.Genres...)
	}
}

func cloneRecords(records []collection.AlbumRecord) []collection.AlbumRecord {
	out := make([]collection.AlbumRecord, len(records))
	for i, rec := range records {
		out[i] = rec.Clone()
	}
	return out
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
