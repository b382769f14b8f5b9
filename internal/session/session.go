package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
)

const (
	fileName   = "session.json"
	qrScheme   = "store://"
	maxSlugLen = 100
)

var (
	ErrNoStore = port.ErrNoStore

	slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// State is what survives between invocations: the selected store and the signed-in customer.
type State struct {
	StoreSlug     string           `json:"store_slug,omitempty"`
	StoreName     string           `json:"store_name,omitempty"`
	StoreCurrency string           `json:"store_currency,omitempty"`
	AccessToken   string           `json:"access_token,omitempty"`
	Customer      *domain.Customer `json:"customer,omitempty"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

func (s State) SignedIn() bool {
	return s.AccessToken != "" && s.Customer != nil
}

// Store keeps State as a JSON file readable only by the current user.
type Store struct {
	path string
}

func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("dir is empty")
	}

	return &Store{path: filepath.Join(dir, fileName)}, nil
}

func (s *Store) Path() string {
	return s.path
}

// Load returns the zero State when nothing has been saved yet.
func (s *Store) Load() (State, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("os.ReadFile: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("json.Unmarshal: %w", err)
	}

	return state, nil
}

func (s *Store) Save(state State) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("os.MkdirAll: %w", err)
	}

	state.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("json.MarshalIndent: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("os.WriteFile: %w", err)
	}

	return nil
}

// Update loads the state, applies fn and saves the result.
func (s *Store) Update(fn func(*State)) (State, error) {
	state, err := s.Load()
	if err != nil {
		return State{}, err
	}

	fn(&state)

	if err := s.Save(state); err != nil {
		return State{}, err
	}

	return state, nil
}

// StoreSlug is read on every API request so a reconnect takes effect immediately.
func (s *Store) StoreSlug(_ context.Context) (string, error) {
	state, err := s.Load()
	if err != nil {
		return "", err
	}
	if state.StoreSlug == "" {
		return "", ErrNoStore
	}
	return state.StoreSlug, nil
}

func (s *Store) AccessToken(_ context.Context) (string, error) {
	state, err := s.Load()
	if err != nil {
		return "", err
	}
	return state.AccessToken, nil
}

// ParseStoreCode accepts a scanned QR payload (store://<slug>) or a typed slug.
func ParseStoreCode(code string) (string, error) {
	slug := strings.TrimSpace(code)
	if strings.HasPrefix(strings.ToLower(slug), qrScheme) {
		slug = slug[len(qrScheme):]
	}
	slug = strings.ToLower(strings.Trim(slug, "/"))

	if slug == "" {
		return "", fmt.Errorf("store code is empty")
	}
	if len(slug) > maxSlugLen {
		return "", fmt.Errorf("store code is too long")
	}
	if !slugPattern.MatchString(slug) {
		return "", fmt.Errorf("store code[%s] is not valid", slug)
	}

	return slug, nil
}

// QRPayload is the inverse of ParseStoreCode.
func QRPayload(slug string) string {
	return qrScheme + slug
}
