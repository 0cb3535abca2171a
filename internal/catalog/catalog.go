// Package catalog holds the platform content inventory that curriculum
// courses are matched against.
package catalog

import (
	"context"
	"sync"
)

// Item is one piece of platform-hosted learning content.
type Item struct {
	ID          string  `json:"id" yaml:"id"`
	Title       string  `json:"title" yaml:"title"`
	Description string  `json:"description" yaml:"description"`
	Subject     string  `json:"subject" yaml:"subject"`
	Level       string  `json:"level" yaml:"level"`
	Type        string  `json:"type" yaml:"type"`
	VideoCount  int     `json:"video_count" yaml:"video_count"`
	Hours       float64 `json:"hours" yaml:"hours"`
	UploadedBy  string  `json:"uploaded_by" yaml:"uploaded_by"`
	Approved    bool    `json:"approved" yaml:"approved"`
	Body        string  `json:"-" yaml:"-"` // long-form notes from the sidecar file
}

// ViewPath returns the UI route where the item is viewable.
func (i Item) ViewPath() string {
	return "/note/" + i.ID
}

// Store is the read interface the resolver matches against. Lookups never
// fail loudly: a backend error degrades to not-found and is logged by the
// implementation, mirroring how resolution itself always falls back
// rather than erroring.
type Store interface {
	ByID(ctx context.Context, id string) (Item, bool)
	All(ctx context.Context) []Item
}

// MemoryStore is an in-memory Store, populated from a YAML directory or
// by hand in tests.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]Item
	order []string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]Item)}
}

// Replace swaps the full inventory atomically.
func (s *MemoryStore) Replace(items []Item) {
	next := make(map[string]Item, len(items))
	order := make([]string, 0, len(items))
	for _, item := range items {
		if _, seen := next[item.ID]; !seen {
			order = append(order, item.ID)
		}
		next[item.ID] = item
	}

	s.mu.Lock()
	s.items = next
	s.order = order
	s.mu.Unlock()
}

// ByID returns an approved item by ID.
func (s *MemoryStore) ByID(_ context.Context, id string) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok || !item.Approved {
		return Item{}, false
	}
	return item, true
}

// All returns all approved items in load order.
func (s *MemoryStore) All(_ context.Context) []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]Item, 0, len(s.items))
	for _, id := range s.order {
		if item := s.items[id]; item.Approved {
			items = append(items, item)
		}
	}
	return items
}

// Len reports the number of loaded items, approved or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
