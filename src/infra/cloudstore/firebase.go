package cloudstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/lmoretti/waxshelf/src/collection"
	"github.com/lmoretti/waxshelf/src/features/sharing"
)

// TokenSource supplies the signed-in user's credentials for authenticated
// storage calls.
type TokenSource interface {
	IDToken() string
	UserID() string
}

// FirebaseStore persists user collections and published shares in a Firebase
// Realtime Database over its REST surface. User collections live under
// /collections/{uid} and require an auth token; shares live under
// /shares/{id} and are world-readable once published.
type FirebaseStore struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
}

// NewFirebaseStore creates a store against the given database URL.
func NewFirebaseStore(databaseURL string, tokens TokenSource) *FirebaseStore {
	return &FirebaseStore{
		baseURL:    strings.TrimRight(databaseURL, "/"),
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *FirebaseStore) documentURL(subject collection.Subject) (string, error) {
	switch subject.Kind {
	case collection.SubjectUser:
		token := s.tokens.IDToken()
		if token == "" {
			return "", collection.ErrUnauthenticated
		}
		return fmt.Sprintf("%s/collections/%s.json?auth=%s", s.baseURL, subject.UserID, token), nil
	case collection.SubjectShare:
		return fmt.Sprintf("%s/shares/%s.json", s.baseURL, subject.ShareID), nil
	}
	return "", fmt.Errorf("cloud store cannot address %s subjects", subject.Kind)
}

// Load retrieves and normalizes the subject's collection. Published shares
// store a snapshot envelope; the records are its items sequence.
func (s *FirebaseStore) Load(ctx context.Context, subject collection.Subject) ([]collection.AlbumRecord, bool, error) {
	docURL, err := s.documentURL(subject)
	if err != nil {
		return nil, false, err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", docURL, nil)
	if err != nil {
		return nil, false, &collection.StorageError{Op: "load", Err: err}
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, false, &collection.StorageError{Op: "load", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, false, &collection.StorageError{Op: "load", Err: fmt.Errorf("request failed with status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, &collection.StorageError{Op: "load", Err: err}
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, false, &collection.StorageError{Op: "load", Err: err}
	}

	if subject.Kind == collection.SubjectShare {
		envelope, ok := raw.(map[string]any)
		if !ok {
			// An absent share decodes as JSON null.
			return []collection.AlbumRecord{}, false, nil
		}
		raw = envelope["items"]
	}

	records, repaired := collection.Normalize(raw)
	slog.Debug("Cloud collection loaded", "subject", subject.Key(), "records", len(records), "repaired", repaired)
	return records, repaired, nil
}

// Save overwrites the subject's collection document. Share subjects are
// rejected before any network attempt.
func (s *FirebaseStore) Save(ctx context.Context, subject collection.Subject, records []collection.AlbumRecord) error {
	if subject.ReadOnly() {
		return collection.ErrReadOnly
	}

	docURL, err := s.documentURL(subject)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(records)
	if err != nil {
		return &collection.StorageError{Op: "save", Err: err}
	}

	if err := s.put(ctx, docURL, payload); err != nil {
		return &collection.StorageError{Op: "save", Err: err}
	}
	slog.Debug("Cloud collection saved", "subject", subject.Key(), "records", len(records))
	return nil
}

// PublishSnapshot writes an immutable share snapshot to its public location.
func (s *FirebaseStore) PublishSnapshot(ctx context.Context, shareID string, snapshot sharing.Snapshot) error {
	token := s.tokens.IDToken()
	if token == "" {
		return collection.ErrUnauthenticated
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return &collection.StorageError{Op: "publish", Err: err}
	}

	docURL := fmt.Sprintf("%s/shares/%s.json?auth=%s", s.baseURL, shareID, token)
	if err := s.put(ctx, docURL, payload); err != nil {
		return &collection.StorageError{Op: "publish", Err: err}
	}
	slog.Info("Share snapshot published", "shareID", shareID, "items", len(snapshot.Items))
	return nil
}

func (s *FirebaseStore) put(ctx context.Context, docURL string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, "PUT", docURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	return nil
}
