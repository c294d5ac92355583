package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore implements Store using in-memory JSON documents.
// Intended for demos and testing; documents keep insertion order.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memCollection
}

type memCollection struct {
	order []string
	docs  map[string]json.RawMessage
}

// NewMemoryStore creates a new empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memCollection)}
}

func (s *MemoryStore) Get(_ context.Context, collection, id string, out any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[collection]
	if !ok || id == "" {
		return ErrNotFound
	}
	raw, ok := c.docs[id]
	if !ok {
		return ErrNotFound
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *MemoryStore) Find(_ context.Context, collection string, filter Filter, out any) error {
	if err := filter.Validate(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched [][]byte
	if c, ok := s.collections[collection]; ok && !filter.MatchesNothing() {
		for _, id := range c.order {
			raw := c.docs[id]
			var fields map[string]any
			if err := json.Unmarshal(raw, &fields); err != nil {
				return fmt.Errorf("decoding %s/%s: %w", collection, id, err)
			}
			if matchAll(fields, filter) {
				matched = append(matched, raw)
			}
		}
	}

	arr := append([]byte{'['}, bytes.Join(matched, []byte{','})...)
	arr = append(arr, ']')
	if err := json.Unmarshal(arr, out); err != nil {
		return fmt.Errorf("decoding %s results: %w", collection, err)
	}
	return nil
}

func (s *MemoryStore) Insert(_ context.Context, collection string, docs ...any) error {
	encoded := make([]json.RawMessage, 0, len(docs))
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		raw, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("encoding %s document: %w", collection, err)
		}
		var head struct {
			ID string `json:"_id"`
		}
		if err := json.Unmarshal(raw, &head); err != nil || head.ID == "" {
			return fmt.Errorf("docstore: %s document without _id", collection)
		}
		encoded = append(encoded, raw)
		ids = append(ids, head.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[collection]
	if !ok {
		c = &memCollection{docs: make(map[string]json.RawMessage)}
		s.collections[collection] = c
	}
	for i, id := range ids {
		if _, exists := c.docs[id]; !exists {
			c.order = append(c.order, id)
		}
		c.docs[id] = encoded[i]
	}
	return nil
}

func (s *MemoryStore) Close() error { return nil }

func matchAll(fields map[string]any, filter Filter) bool {
	for _, c := range filter {
		if !matchCond(fields, c) {
			return false
		}
	}
	return true
}

func matchCond(fields map[string]any, c Cond) bool {
	for _, name := range c.Fields {
		v, ok := fields[name]
		if !ok || v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			s = fmt.Sprint(v)
		}
		if contains(c.Values, s) {
			return true
		}
	}
	return false
}

func contains(slice []string, val string) bool {
	for _, s := range slice {
		if s == val {
			return true
		}
	}
	return false
}
