package session

import (
	"context"
	"log/slog"

	"github.com/lmoretti/waxshelf/src/collection"
	"github.com/lmoretti/waxshelf/src/infra/identity"
)

// Authenticator verifies sign-in credentials and tracks the signed-in user.
type Authenticator interface {
	SignIn(ctx context.Context, idToken string) (*identity.Identity, error)
	SignOut()
	Current() *identity.Identity
}

// SubjectSwitcher is the part of the tracker the session feature drives.
type SubjectSwitcher interface {
	SetSubject(ctx context.Context, subject collection.Subject) error
	Subject() collection.Subject
}

// Service switches the active collection subject in response to sign-in,
// sign-out and share-view requests.
type Service struct {
	auth    Authenticator
	tracker SubjectSwitcher
	profile string
}

// NewService creates the session service. profile names the local collection
// used before sign-in and after sign-out.
func NewService(auth Authenticator, tracker SubjectSwitcher, profile string) *Service {
	return &Service{auth: auth, tracker: tracker, profile: profile}
}

// SignIn verifies the ID token and switches the active subject to the user's
// cloud collection. A load failure after successful verification leaves the
// user signed in over an empty collection and reports the error.
func (s *Service) SignIn(ctx context.Context, idToken string) (*identity.Identity, error) {
	ident, err := s.auth.SignIn(ctx, idToken)
	if err != nil {
		return nil, err
	}
	slog.Info("User signed in", "user", ident.UserID)
	if err := s.tracker.SetSubject(ctx, collection.UserSubject(ident.UserID)); err != nil {
		return ident, err
	}
	return ident, nil
}

// SignOut drops the user session and falls back to the local collection.
func (s *Service) SignOut(ctx context.Context) error {
	s.auth.SignOut()
	slog.Info("User signed out")
	return s.tracker.SetSubject(ctx, collection.LocalSubject(s.profile))
}

// UseLocal switches to the device-local collection without touching the
// authentication state.
func (s *Service) UseLocal(ctx context.Context) error {
	return s.tracker.SetSubject(ctx, collection.LocalSubject(s.profile))
}

// ViewShare switches to a read-only shared collection snapshot.
func (s *Service) ViewShare(ctx context.Context, shareID string) error {
	if shareID == "" {
		return collection.ErrNotFound
	}
	return s.tracker.SetSubject(ctx, collection.ShareSubject(shareID))
}

// Current describes the active session.
func (s *Service) Current() (collection.Subject, *identity.Identity) {
	return s.tracker.Subject(), s.auth.Current()
}
