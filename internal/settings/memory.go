package settings

import (
	"context"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultMemoryProfiles = 1024

// memoryStore keeps the most recently used profiles in process memory.
type memoryStore struct {
	catalog  SectionCatalog
	profiles *lru.Cache[string, Settings]
}

// NewMemoryStore creates an in-process store holding at most size profiles.
func NewMemoryStore(catalog SectionCatalog, size int) (Store, error) {
	profiles, err := lru.New[string, Settings](size)
	if err != nil {
		return nil, err
	}
	return &memoryStore{catalog: catalog, profiles: profiles}, nil
}

func (m *memoryStore) Load(_ context.Context, profile string) (Settings, error) {
	s, ok := m.profiles.Get(profile)
	if !ok {
		return Defaults(m.catalog), nil
	}
	s.SelectedSections = slices.Clone(s.SelectedSections)
	return s, nil
}

func (m *memoryStore) Save(_ context.Context, profile string, s Settings) (Settings, error) {
	normalized, err := Normalize(s, m.catalog)
	if err != nil {
		return Settings{}, err
	}
	m.profiles.Add(profile, normalized)
	normalized.SelectedSections = slices.Clone(normalized.SelectedSections)
	return normalized, nil
}

func (m *memoryStore) Close() error {
	m.profiles.Purge()
	return nil
}
