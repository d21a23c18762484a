package memory

import (
	"context"
	"slices"
	"time"

	"github.com/fieldops/dispatch_services/internal/directory_service/domain"
)

type ProfessionRepository struct{ s *Store }

func (r *ProfessionRepository) Create(_ context.Context, name string) (*domain.Profession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.professionByName(name) != nil {
		return nil, domain.ErrDuplicateEntry
	}
	return cloneProfession(r.s.insertProfession(name)), nil
}

func (r *ProfessionRepository) Upsert(_ context.Context, name string) (*domain.Profession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p := r.s.professionByName(name); p != nil {
		return cloneProfession(p), nil
	}
	return cloneProfession(r.s.insertProfession(name)), nil
}

func (r *ProfessionRepository) GetByID(_ context.Context, id int64) (*domain.Profession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.professions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneProfession(p), nil
}

func (r *ProfessionRepository) GetByName(_ context.Context, name string) (*domain.Profession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p := r.s.professionByName(name)
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return cloneProfession(p), nil
}

func (r *ProfessionRepository) List(_ context.Context) ([]*domain.Profession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*domain.Profession, 0, len(r.s.professions))
	for _, p := range r.s.professions {
		out = append(out, cloneProfession(p))
	}
	slices.SortFunc(out, func(a, b *domain.Profession) int { return compareInt64(a.ID, b.ID) })
	return out, nil
}

type ProfessionalRepository struct{ s *Store }

func (r *ProfessionalRepository) Create(_ context.Context, p *domain.Professional) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	prof, ok := r.s.professions[p.ProfessionID]
	if !ok {
		return domain.ErrProfessionNotFound
	}
	r.s.nextProfessionalID++
	p.ID = r.s.nextProfessionalID
	p.Profession = prof.Name
	p.CreatedAt = r.s.now()
	r.s.professionals[p.ID] = cloneProfessional(p)
	return nil
}

func (r *ProfessionalRepository) GetByID(_ context.Context, id int64) (*domain.Professional, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.professionals[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.s.viewProfessional(p), nil
}

// FindByPhone returns the lowest id registered under phone.
func (r *ProfessionalRepository) FindByPhone(_ context.Context, phone string) (*domain.Professional, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var found *domain.Professional
	for _, p := range r.s.professionals {
		if p.Phone == phone && (found == nil || p.ID < found.ID) {
			found = p
		}
	}
	if found == nil {
		return nil, domain.ErrNotFound
	}
	return r.s.viewProfessional(found), nil
}

func (r *ProfessionalRepository) List(_ context.Context, filter domain.ProfessionalFilter) ([]*domain.Professional, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*domain.Professional{}
	for _, p := range r.s.professionals {
		v := r.s.viewProfessional(p)
		if filter.Profession != "" && v.Profession != filter.Profession {
			continue
		}
		if filter.Available != nil && v.Available != *filter.Available {
			continue
		}
		if len(filter.Locations) > 0 && (v.Location == nil || !slices.Contains(filter.Locations, *v.Location)) {
			continue
		}
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b *domain.Professional) int { return compareInt64(a.ID, b.ID) })
	return out, nil
}

func (r *ProfessionalRepository) Update(_ context.Context, p *domain.Professional) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.professionals[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if _, ok := r.s.professions[p.ProfessionID]; !ok {
		return domain.ErrProfessionNotFound
	}
	updated := cloneProfessional(p)
	updated.CreatedAt = existing.CreatedAt
	r.s.professionals[p.ID] = updated
	return nil
}

// Delete removes the professional and, like the foreign key cascade, their assignments.
func (r *ProfessionalRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.professionals[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.professionals, id)
	for aid, a := range r.s.assignments {
		if a.ProfessionalID == id {
			delete(r.s.assignments, aid)
		}
	}
	return nil
}

func (s *Store) insertProfession(name string) *domain.Profession {
	s.nextProfessionID++
	p := &domain.Profession{ID: s.nextProfessionID, Name: name, CreatedAt: s.now()}
	s.professions[p.ID] = p
	return p
}

func (s *Store) professionByName(name string) *domain.Profession {
	for _, p := range s.professions {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// viewProfessional copies p with the current profession name joined in.
func (s *Store) viewProfessional(p *domain.Professional) *domain.Professional {
	v := cloneProfessional(p)
	if prof, ok := s.professions[p.ProfessionID]; ok {
		v.Profession = prof.Name
	}
	return v
}

func cloneProfession(p *domain.Profession) *domain.Profession {
	c := *p
	return &c
}

func cloneProfessional(p *domain.Professional) *domain.Professional {
	c := *p
	if p.Location != nil {
		loc := *p.Location
		c.Location = &loc
	}
	return &c
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareTime(a, b time.Time) int { return a.Compare(b) }
