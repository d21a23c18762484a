package domain

import (
	"context"
)

// ProfessionRepository manages Profession data.
type ProfessionRepository interface {
	Create(ctx context.Context, name string) (*Profession, error)
	// Upsert returns the existing profession with name or creates it.
	Upsert(ctx context.Context, name string) (*Profession, error)
	GetByID(ctx context.Context, id int64) (*Profession, error)
	GetByName(ctx context.Context, name string) (*Profession, error)
	List(ctx context.Context) ([]*Profession, error)
}

// ProfessionalRepository manages Professional data.
type ProfessionalRepository interface {
	Create(ctx context.Context, p *Professional) error
	GetByID(ctx context.Context, id int64) (*Professional, error)
	// FindByPhone returns the professional with the lowest id for phone, or ErrNotFound.
	FindByPhone(ctx context.Context, phone string) (*Professional, error)
	List(ctx context.Context, filter ProfessionalFilter) ([]*Professional, error)
	Update(ctx context.Context, p *Professional) error
	Delete(ctx context.Context, id int64) error
}
