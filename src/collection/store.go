package collection

import "context"

// Store is the persistence adapter for collections, polymorphic over the
// subject kind. Save always persists the current full collection sequence,
// a full overwrite rather than a patch, so callers must pass the complete,
// already-mutated collection.
type Store interface {
	// Load retrieves and normalizes the subject's collection. The second
	// return reports whether repair occurred during normalization so the
	// caller can persist the repaired collection back.
	Load(ctx context.Context, subject Subject) (records []AlbumRecord, repaired bool, err error)
	// Save persists the collection. It fails with ErrReadOnly for share
	// subjects before any network attempt and with ErrUnauthenticated for
	// a user subject without a signed-in identity.
	Save(ctx context.Context, subject Subject, records []AlbumRecord) error
}

// StoreMux routes store calls to the adapter owning the subject kind: local
// profiles live in the embedded database, user collections and shares in the
// cloud document store. Adapters are swappable without touching the callers.
type StoreMux struct {
	Local Store
	Cloud Store
}

func (m *StoreMux) pick(subject Subject) Store {
	if subject.Kind == SubjectLocal {
		return m.Local
	}
	return m.Cloud
}

func (m *StoreMux) Load(ctx context.Context, subject Subject) ([]AlbumRecord, bool, error) {
	return m.pick(subject).Load(ctx, subject)
}

func (m *StoreMux) Save(ctx context.Context, subject Subject, records []AlbumRecord) error {
	return m.pick(subject).Save(ctx, subject, records)
}
