package leads

import (
	"context"
	"sync"
)

// Repository defines the interface for lead storage
type Repository interface {
	Append(ctx context.Context, lead *Lead) error
	GetByID(ctx context.Context, id string) (*Lead, error)
	List(ctx context.Context, filter ListLeadsFilter) ([]*Lead, error)
	Count(ctx context.Context) int
}

// ListLeadsFilter narrows a listing. Zero values mean no filter.
type ListLeadsFilter struct {
	Limit  int
	Offset int
	Status Status
	Source Source
}

// Store is the in-memory, append-only lead record store. Leads are kept in
// insertion order and read back newest first.
type Store struct {
	mu    sync.RWMutex
	order []*Lead
	byID  map[string]*Lead
}

// NewStore creates an empty lead store.
func NewStore() *Store {
	return &Store{
		byID: make(map[string]*Lead),
	}
}

// Append stores a copy of lead at the front of the visible order.
func (s *Store) Append(ctx context.Context, lead *Lead) error {
	if err := lead.Validate(); err != nil {
		return err
	}

	stored := *lead

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[stored.ID]; exists {
		return ErrDuplicateLead
	}
	s.order = append(s.order, &stored)
	s.byID[stored.ID] = &stored
	return nil
}

// GetByID retrieves a lead by ID
func (s *Store) GetByID(ctx context.Context, id string) (*Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lead, ok := s.byID[id]
	if !ok {
		return nil, ErrLeadNotFound
	}
	cp := *lead
	return &cp, nil
}

// All returns every lead, newest first.
func (s *Store) All() []*Lead {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Lead, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		cp := *s.order[i]
		out = append(out, &cp)
	}
	return out
}

// Recent returns at most n leads, newest first.
func (s *Store) Recent(n int) []*Lead {
	all := s.All()
	if n >= 0 && len(all) > n {
		return all[:n]
	}
	return all
}

// List returns leads newest first, filtered and paginated.
func (s *Store) List(ctx context.Context, filter ListLeadsFilter) ([]*Lead, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matched := make([]*Lead, 0)
	for _, lead := range s.All() {
		if filter.Status != "" && lead.Status != filter.Status {
			continue
		}
		if filter.Source != "" && lead.Source != filter.Source {
			continue
		}
		matched = append(matched, lead)
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return []*Lead{}, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

// Count returns the number of stored leads.
func (s *Store) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
