package identity

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// securetokenCertsURL serves the rotating x509 certificates Firebase signs
// ID tokens with, keyed by kid.
const securetokenCertsURL = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"

const certsTTL = time.Hour

// Identity is the opaque signed-in user yielded by the auth provider.
type Identity struct {
	UserID      string
	Email       string
	DisplayName string
}

// Service is the authentication collaborator: it verifies interactive
// sign-ins, exposes the current identity and notifies subscribers whenever it
// changes (including sign-out, which yields nil).
type Service struct {
	projectID  string
	httpClient *http.Client

	mu          sync.RWMutex
	certs       map[string]*rsa.PublicKey
	certsExpiry time.Time
	current     *Identity
	idToken     string
	subscribers []func(*Identity)
}

// NewService creates an identity service for the given Firebase project.
func NewService(projectID string) *Service {
	return &Service{
		projectID:  projectID,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// SignIn verifies an ID token obtained by the UI's interactive sign-in and
// makes its identity current.
func (s *Service) SignIn(ctx context.Context, idToken string) (*Identity, error) {
	claims, err := s.verify(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("token verification failed: %w", err)
	}

	ident := &Identity{
		UserID:      claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.Name,
	}

	s.mu.Lock()
	s.current = ident
	s.idToken = idToken
	subs := append([]func(*Identity){}, s.subscribers...)
	s.mu.Unlock()

	slog.Info("User signed in", "userID", ident.UserID)
	for _, fn := range subs {
		fn(ident)
	}
	return ident, nil
}

// SignOut clears the current identity and notifies subscribers.
func (s *Service) SignOut() {
	s.mu.Lock()
	wasSignedIn := s.current != nil
	s.current = nil
	s.idToken = ""
	subs := append([]func(*Identity){}, s.subscribers...)
	s.mu.Unlock()

	if wasSignedIn {
		slog.Info("User signed out")
	}
	for _, fn := range subs {
		fn(nil)
	}
}

// Current returns the signed-in identity, or nil.
func (s *Service) Current() *Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Subscribe registers a callback invoked with the identity (or nil) whenever
// it changes.
func (s *Service) Subscribe(fn func(*Identity)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// IDToken returns the current identity's token for authenticated storage
// calls, or the empty string when signed out.
func (s *Service) IDToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idToken
}

// UserID returns the current user's id, or the empty string when signed out.
func (s *Service) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.UserID
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (s *Service) verify(ctx context.Context, idToken string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(idToken, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("token has no key id")
		}
		return s.publicKey(ctx, kid)
	},
		jwt.WithIssuer("https://securetoken.google.com/"+s.projectID),
		jwt.WithAudience(s.projectID),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("token is not valid")
	}
	return claims, nil
}

func (s *Service) publicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	s.mu.RLock()
	key, ok := s.certs[kid]
	fresh := time.Now().Before(s.certsExpiry)
	s.mu.RUnlock()
	if ok && fresh {
		return key, nil
	}

	if err := s.refreshCerts(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok = s.certs[kid]
	if !ok {
		return nil, fmt.Errorf("no certificate for key id %q", kid)
	}
	return key, nil
}

func (s *Service) refreshCerts(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", securetokenCertsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch signing certificates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("certificate request failed with status %d", resp.StatusCode)
	}

	var pems map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&pems); err != nil {
		return fmt.Errorf("failed to decode certificates: %w", err)
	}

	certs := make(map[string]*rsa.PublicKey, len(pems))
	for kid, pemData := range pems {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pemData))
		if err != nil {
			slog.Warn("Skipping unparseable signing certificate", "kid", kid, "error", err)
			continue
		}
		certs[kid] = key
	}
	if len(certs) == 0 {
		return fmt.Errorf("no usable signing certificates")
	}

	s.mu.Lock()
	s.certs = certs
	s.certsExpiry = time.Now().Add(certsTTL)
	s.mu.Unlock()

	slog.Debug("Refreshed token signing certificates", "count", len(certs))
	return nil
}
