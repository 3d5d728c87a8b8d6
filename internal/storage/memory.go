package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"advisor360/internal/core"
)

// MemoryStore keeps commissions and partners in process memory. It backs
// local development and tests, where neither sqlite nor Supabase is wanted.
type MemoryStore struct {
	mu          sync.RWMutex
	commissions map[string]core.Commission
	partners    map[string]core.Partner
	// insertion order, so listings are deterministic
	commissionIDs []string
	partnerIDs    []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		commissions: make(map[string]core.Commission),
		partners:    make(map[string]core.Partner),
	}
}

func (s *MemoryStore) GetAll(ctx context.Context) ([]core.Commission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Commission, 0, len(s.commissionIDs))
	for _, id := range s.commissionIDs {
		out = append(out, s.commissions[id])
	}
	return out, nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id string) (core.Commission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.commissions[id]
	if !ok {
		return core.Commission{}, fmt.Errorf("%w: %s", core.ErrCommissionNotFound, id)
	}
	return c, nil
}

func (s *MemoryStore) GetByPartnerID(ctx context.Context, partnerID string) ([]core.Commission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Commission
	for _, id := range s.commissionIDs {
		if c := s.commissions[id]; c.PartnerID == partnerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *MemoryStore) GetByFinancialYear(ctx context.Context, fy core.FinancialYear) ([]core.Commission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Commission
	for _, id := range s.commissionIDs {
		if c := s.commissions[id]; c.FinancialYear.Equal(fy) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *MemoryStore) GetRecent(ctx context.Context, limit int) ([]core.Commission, error) {
	all, _ := s.GetAll(ctx)
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].TransactionDate.After(all[j].TransactionDate)
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *MemoryStore) Create(ctx context.Context, c core.Commission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.commissions[c.ID]; !exists {
		s.commissionIDs = append(s.commissionIDs, c.ID)
	}
	s.commissions[c.ID] = c
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, c core.Commission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.commissions[c.ID]; !ok {
		return fmt.Errorf("%w: %s", core.ErrCommissionNotFound, c.ID)
	}
	s.commissions[c.ID] = c
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.commissions[id]; !ok {
		return fmt.Errorf("%w: %s", core.ErrCommissionNotFound, id)
	}
	delete(s.commissions, id)
	for i, existing := range s.commissionIDs {
		if existing == id {
			s.commissionIDs = append(s.commissionIDs[:i], s.commissionIDs[i+1:]...)
			break
		}
	}
	return nil
}

// Partners returns a PartnerRepository view over the same store.
func (s *MemoryStore) Partners() PartnerRepository {
	return (*memoryPartnerStore)(s)
}

type memoryPartnerStore MemoryStore

func (s *memoryPartnerStore) GetAll(ctx context.Context) ([]core.Partner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Partner, 0, len(s.partnerIDs))
	for _, id := range s.partnerIDs {
		out = append(out, s.partners[id])
	}
	return out, nil
}

func (s *memoryPartnerStore) GetByID(ctx context.Context, id string) (core.Partner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.partners[id]
	if !ok {
		return core.Partner{}, fmt.Errorf("%w: %s", core.ErrPartnerNotFound, id)
	}
	return p, nil
}

func (s *memoryPartnerStore) Create(ctx context.Context, p core.Partner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.partners[p.ID]; !exists {
		s.partnerIDs = append(s.partnerIDs, p.ID)
	}
	s.partners[p.ID] = p
	return nil
}

func (s *memoryPartnerStore) Update(ctx context.Context, p core.Partner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.partners[p.ID]; !ok {
		return fmt.Errorf("%w: %s", core.ErrPartnerNotFound, p.ID)
	}
	s.partners[p.ID] = p
	return nil
}

func (s *memoryPartnerStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.partners[id]; !ok {
		return fmt.Errorf("%w: %s", core.ErrPartnerNotFound, id)
	}
	delete(s.partners, id)
	for i, existing := range s.partnerIDs {
		if existing == id {
			s.partnerIDs = append(s.partnerIDs[:i], s.partnerIDs[i+1:]...)
			break
		}
	}
	return nil
}
