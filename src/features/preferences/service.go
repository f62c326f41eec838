package preferences

import (
	"context"
	"fmt"
	"log/slog"
)

// Store persists preference key/value pairs.
type Store interface {
	GetPreference(ctx context.Context, key string) (string, error)
	SetPreference(ctx context.Context, key, value string) error
}

var allowedKeys = map[string][]string{
	"darkMode": {"on", "off"},
	"viewMode": {"grid", "list"},
}

var defaults = map[string]string{
	"darkMode": "off",
	"viewMode": "grid",
}

// Service stores per-device UI preferences.
type Service struct {
	store Store
}

// NewService creates the preferences service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Get returns the stored value for a known key, falling back to its default
// when unset.
func (s *Service) Get(ctx context.Context, key string) (string, error) {
	if _, ok := allowedKeys[key]; !ok {
		return "", fmt.Errorf("unknown preference %q", key)
	}
	value, err := s.store.GetPreference(ctx, key)
	if err != nil {
		return "", err
	}
	if value == "" {
		return defaults[key], nil
	}
	return value, nil
}

// All returns every known preference with stored or default values.
func (s *Service) All(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string, len(allowedKeys))
	for key := range allowedKeys {
		value, err := s.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		out[key] = value
	}
	return out, nil
}

// Set stores a value for a known key after validating it against the key's
// allowed values.
func (s *Service) Set(ctx context.Context, key, value string) error {
	allowed, ok := allowedKeys[key]
	if !ok {
		return fmt.Errorf("unknown preference %q", key)
	}
	valid := false
	for _, v := range allowed {
		if v == value {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid value %q for preference %q", value, key)
	}
	if err := s.store.SetPreference(ctx, key, value); err != nil {
		return err
	}
	slog.Debug("Preference updated", "key", key, "value", value)
	return nil
}
