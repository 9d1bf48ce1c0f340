package ui

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spektr-org/tally/helpers"
)

// Entry is a loaded dataset held by the Store. Datasets are immutable once
// added; every request reads the same view.
type Entry struct {
	ID       string
	Name     string
	LoadedAt time.Time
	Dataset  *helpers.Dataset
}

// DatasetInfo is the listing shape of an Entry.
type DatasetInfo struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Rows     int                `json:"rows"`
	Columns  []string           `json:"columns"`
	Roles    map[string]string  `json:"roles"` // role → header
	LoadedAt time.Time          `json:"loadedAt"`
	Report   helpers.LoadReport `json:"report"`
	Default  bool               `json:"default"`
}

// Store keeps datasets in memory, keyed by id.
type Store struct {
	mu        sync.RWMutex
	entries   map[string]*Entry
	order     []string
	defaultID string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[string]*Entry)}
}

// Add stores ds under a fresh id. The first dataset added becomes the
// default.
func (s *Store) Add(name string, ds *helpers.Dataset) *Entry {
	e := &Entry{
		ID:       uuid.NewString(),
		Name:     name,
		LoadedAt: time.Now().UTC(),
		Dataset:  ds,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[e.ID] = e
	s.order = append(s.order, e.ID)
	if s.defaultID == "" {
		s.defaultID = e.ID
	}
	return e
}

// Get returns the entry for id; an empty id selects the default.
func (s *Store) Get(id string) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id == "" {
		id = s.defaultID
	}
	e, ok := s.entries[id]
	return e, ok
}

// SetDefault makes id the dataset shown when none is requested.
func (s *Store) SetDefault(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return false
	}
	s.defaultID = id
	return true
}

// Len returns the number of stored datasets.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// List describes every dataset in insertion order.
func (s *Store) List() []DatasetInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]DatasetInfo, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.entries[id].info(id == s.defaultID))
	}
	return out
}

func (e *Entry) info(isDefault bool) DatasetInfo {
	ds := e.Dataset
	roles := make(map[string]string)
	for _, role := range ds.Mapping.All() {
		h, _ := ds.Mapping.Column(role)
		roles[role] = h
	}
	return DatasetInfo{
		ID:       e.ID,
		Name:     e.Name,
		Rows:     ds.View.Len(),
		Columns:  ds.View.Columns(),
		Roles:    roles,
		LoadedAt: e.LoadedAt,
		Report:   ds.Report,
		Default:  isDefault,
	}
}
