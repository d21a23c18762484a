package memory

import (
	"context"
	"slices"
	"time"

	"github.com/fieldops/dispatch_services/internal/servicecall_service/domain"
)

type ServiceCallRepository struct{ s *Store }

func (r *ServiceCallRepository) Create(_ context.Context, sc *domain.ServiceCall) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextCallID++
	sc.ID = r.s.nextCallID
	sc.CreatedAt = r.s.tick(r.s.lastCallCreatedAt())
	r.s.calls[sc.ID] = cloneCall(sc)
	return nil
}

func (r *ServiceCallRepository) GetByID(_ context.Context, id int64) (*domain.ServiceCall, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sc, ok := r.s.calls[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneCall(sc), nil
}

// List returns calls newest first.
func (r *ServiceCallRepository) List(_ context.Context, filter domain.ServiceCallFilter) ([]*domain.ServiceCall, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*domain.ServiceCall{}
	for _, sc := range r.s.calls {
		if filter.Status != "" && sc.Status != filter.Status {
			continue
		}
		out = append(out, cloneCall(sc))
	}
	slices.SortFunc(out, func(a, b *domain.ServiceCall) int {
		if c := compareTime(b.CreatedAt, a.CreatedAt); c != 0 {
			return c
		}
		return compareInt64(b.ID, a.ID)
	})
	return out, nil
}

func (r *ServiceCallRepository) CountByStatus(_ context.Context) (map[domain.ServiceCallStatus]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := make(map[domain.ServiceCallStatus]int)
	for _, sc := range r.s.calls {
		counts[sc.Status]++
	}
	return counts, nil
}

func (r *ServiceCallRepository) Update(_ context.Context, sc *domain.ServiceCall, expected domain.ServiceCallStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.calls[sc.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if existing.Status != expected {
		return domain.ErrConflict
	}
	updated := cloneCall(sc)
	updated.CreatedAt = existing.CreatedAt
	r.s.calls[sc.ID] = updated
	return nil
}

func (r *ServiceCallRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.calls[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.calls, id)
	for aid, a := range r.s.assignments {
		if a.ServiceCallID == id {
			delete(r.s.assignments, aid)
		}
	}
	return nil
}

type LifecycleRepository struct{ s *Store }

func (r *LifecycleRepository) AcceptOldestOpen(_ context.Context, profession string, professionalID int64) (*domain.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var oldest *domain.ServiceCall
	for _, sc := range r.s.calls {
		if sc.Profession != profession || sc.Status != domain.StatusOpen {
			continue
		}
		if oldest == nil || sc.CreatedAt.Before(oldest.CreatedAt) ||
			(sc.CreatedAt.Equal(oldest.CreatedAt) && sc.ID < oldest.ID) {
			oldest = sc
		}
	}
	if oldest == nil {
		return nil, domain.ErrNoOpenCall
	}

	oldest.Status = domain.StatusAssigned
	r.s.nextAssignmentID++
	a := &domain.Assignment{
		ID:             r.s.nextAssignmentID,
		ServiceCallID:  oldest.ID,
		ProfessionalID: professionalID,
		Status:         domain.AssignmentAccepted,
		CreatedAt:      r.s.tick(r.s.lastAssignmentCreatedAt()),
	}
	r.s.assignments[a.ID] = a
	return r.s.viewAssignment(a), nil
}

func (r *LifecycleRepository) CompleteLatestAccepted(_ context.Context, professionalID int64) (*domain.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var latest *domain.Assignment
	for _, a := range r.s.assignments {
		if a.ProfessionalID != professionalID || a.Status != domain.AssignmentAccepted {
			continue
		}
		if latest == nil || a.CreatedAt.After(latest.CreatedAt) ||
			(a.CreatedAt.Equal(latest.CreatedAt) && a.ID > latest.ID) {
			latest = a
		}
	}
	if latest == nil {
		return nil, domain.ErrNoActiveAssignment
	}

	latest.Status = domain.AssignmentCompleted
	if sc, ok := r.s.calls[latest.ServiceCallID]; ok &&
		(sc.Status == domain.StatusAssigned || sc.Status == domain.StatusConfirmed) {
		sc.Status = domain.StatusCompleted
	}
	return r.s.viewAssignment(latest), nil
}

// ListAssignments returns assignments newest first, each with its service call.
func (r *LifecycleRepository) ListAssignments(_ context.Context, filter domain.AssignmentFilter) ([]*domain.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*domain.Assignment{}
	for _, a := range r.s.assignments {
		if filter.ProfessionalID != 0 && a.ProfessionalID != filter.ProfessionalID {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		out = append(out, r.s.viewAssignment(a))
	}
	slices.SortFunc(out, func(a, b *domain.Assignment) int {
		if c := compareTime(b.CreatedAt, a.CreatedAt); c != 0 {
			return c
		}
		return compareInt64(b.ID, a.ID)
	})
	return out, nil
}

func (s *Store) viewAssignment(a *domain.Assignment) *domain.Assignment {
	v := *a
	if sc, ok := s.calls[a.ServiceCallID]; ok {
		v.ServiceCall = cloneCall(sc)
	}
	return &v
}

func (s *Store) lastCallCreatedAt() (last time.Time) {
	for _, sc := range s.calls {
		if sc.CreatedAt.After(last) {
			last = sc.CreatedAt
		}
	}
	return last
}

func (s *Store) lastAssignmentCreatedAt() (last time.Time) {
	for _, a := range s.assignments {
		if a.CreatedAt.After(last) {
			last = a.CreatedAt
		}
	}
	return last
}

func cloneCall(sc *domain.ServiceCall) *domain.ServiceCall {
	c := *sc
	c.Locations = slices.Clone(sc.Locations)
	return &c
}
