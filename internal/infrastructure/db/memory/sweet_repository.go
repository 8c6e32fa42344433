package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
	"github.com/sweetshop/sweetshop-api/internal/core/ports"
)

// SweetRepository keeps sweets in process memory. Updates of one id are
// serialized by a striped mutex; the map lock is only held for the brief
// copy in and out, so readers never wait on a mutation in progress.
//
// Lock order is always stripe, then mu.
type SweetRepository struct {
	locks *stripedLock

	mu    sync.RWMutex
	byID  map[string]*domain.Sweet
	order []string
}

var _ ports.SweetRepository = (*SweetRepository)(nil)

func NewSweetRepository() *SweetRepository {
	return &SweetRepository{
		locks: newStripedLock(defaultStripes),
		byID:  make(map[string]*domain.Sweet),
	}
}

func (r *SweetRepository) Create(_ context.Context, s *domain.Sweet) (*domain.Sweet, error) {
	stored := *s
	stored.ID = uuid.NewString()

	r.mu.Lock()
	r.byID[stored.ID] = &stored
	r.order = append(r.order, stored.ID)
	r.mu.Unlock()

	out := stored
	return &out, nil
}

func (r *SweetRepository) FindByID(_ context.Context, id string) (*domain.Sweet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrSweetNotFound
	}
	out := *stored
	return &out, nil
}

// Find walks the sweets in insertion order through the filter predicates.
func (r *SweetRepository) Find(_ context.Context, filter ports.SweetFilter, page ports.Page) ([]*domain.Sweet, error) {
	match := sweetMatcher(filter)

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Sweet, 0)
	skipped := 0
	for _, id := range r.order {
		s := r.byID[id]
		if !match(s) {
			continue
		}
		if skipped < page.Skip {
			skipped++
			continue
		}
		if page.Limit > 0 && len(out) >= page.Limit {
			break
		}
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

// Update applies mutate to a private copy while holding the id's stripe and
// publishes the copy only when mutate succeeds.
func (r *SweetRepository) Update(_ context.Context, id string, mutate ports.MutateFunc) (*domain.Sweet, error) {
	l := r.locks.forKey(id)
	l.Lock()
	defer l.Unlock()

	r.mu.RLock()
	stored, ok := r.byID[id]
	var working domain.Sweet
	if ok {
		working = *stored
	}
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSweetNotFound
	}

	if err := mutate(&working); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return nil, domain.ErrSweetNotFound
	}
	working.ID = id
	published := working
	r.byID[id] = &published

	out := working
	return &out, nil
}

func (r *SweetRepository) Delete(_ context.Context, id string) error {
	l := r.locks.forKey(id)
	l.Lock()
	defer l.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return domain.ErrSweetNotFound
	}
	delete(r.byID, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *SweetRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.byID)), nil
}

type sweetPredicate func(*domain.Sweet) bool

// sweetMatcher composes one predicate per set filter field.
func sweetMatcher(f ports.SweetFilter) sweetPredicate {
	var preds []sweetPredicate

	if f.Name != nil {
		needle := strings.ToLower(*f.Name)
		preds = append(preds, func(s *domain.Sweet) bool {
			return strings.Contains(strings.ToLower(s.Name), needle)
		})
	}
	if f.Category != nil {
		category := *f.Category
		preds = append(preds, func(s *domain.Sweet) bool { return s.Category == category })
	}
	if f.MinPrice != nil {
		minPrice := *f.MinPrice
		preds = append(preds, func(s *domain.Sweet) bool { return s.Price.GreaterThanOrEqual(minPrice) })
	}
	if f.MaxPrice != nil {
		maxPrice := *f.MaxPrice
		preds = append(preds, func(s *domain.Sweet) bool { return s.Price.LessThanOrEqual(maxPrice) })
	}

	return func(s *domain.Sweet) bool {
		for _, p := range preds {
			if !p(s) {
				return false
			}
		}
		return true
	}
}
