package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fieldops/dispatch_services/internal/directory_service/domain"
)

// PhoneNormalizer canonicalises phone identifiers before they are stored or looked up.
type PhoneNormalizer interface {
	Normalize(phone string) string
}

type identityNormalizer struct{}

func (identityNormalizer) Normalize(phone string) string { return strings.TrimSpace(phone) }

// Application is the Directory Store: professions and professionals.
type Application struct {
	professionRepo   domain.ProfessionRepository
	professionalRepo domain.ProfessionalRepository
	phones           PhoneNormalizer
	logger           *slog.Logger
}

// NewApplication creates a new Application instance. A nil normalizer only trims whitespace.
func NewApplication(
	professionRepo domain.ProfessionRepository,
	professionalRepo domain.ProfessionalRepository,
	phones PhoneNormalizer,
	logger *slog.Logger,
) *Application {
	if phones == nil {
		phones = identityNormalizer{}
	}
	return &Application{
		professionRepo:   professionRepo,
		professionalRepo: professionalRepo,
		phones:           phones,
		logger:           logger.With("component", "directory_app"),
	}
}

// --- Professions ---

func (a *Application) CreateProfession(ctx context.Context, name string) (*domain.Profession, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: profession name is required", domain.ErrInvalidInput)
	}
	p, err := a.professionRepo.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	a.logger.InfoContext(ctx, "Profession created", "profession_id", p.ID, "name", p.Name)
	return p, nil
}

// UpsertProfession returns the profession called name, creating it if absent.
func (a *Application) UpsertProfession(ctx context.Context, name string) (*domain.Profession, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: profession name is required", domain.ErrInvalidInput)
	}
	return a.professionRepo.Upsert(ctx, name)
}

func (a *Application) GetProfession(ctx context.Context, id int64) (*domain.Profession, error) {
	return a.professionRepo.GetByID(ctx, id)
}

func (a *Application) ListProfessions(ctx context.Context) ([]*domain.Profession, error) {
	return a.professionRepo.List(ctx)
}

// --- Professionals ---

// CreateProfessional registers a professional under an existing profession.
func (a *Application) CreateProfessional(ctx context.Context, in domain.ProfessionalCreate) (*domain.Professional, error) {
	profession, err := a.resolveProfession(ctx, in.Profession)
	if err != nil {
		return nil, err
	}

	p := &domain.Professional{
		Name:         strings.TrimSpace(in.Name),
		Phone:        a.phones.Normalize(in.Phone),
		ProfessionID: profession.ID,
		Profession:   profession.Name,
		Available:    in.Available,
		Location:     trimOptional(in.Location),
	}
	if p.Name == "" || p.Phone == "" {
		return nil, fmt.Errorf("%w: name and phone are required", domain.ErrInvalidInput)
	}
	if err := a.professionalRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (a *Application) GetProfessional(ctx context.Context, id int64) (*domain.Professional, error) {
	return a.professionalRepo.GetByID(ctx, id)
}

func (a *Application) ListProfessionals(ctx context.Context, filter domain.ProfessionalFilter) ([]*domain.Professional, error) {
	return a.professionalRepo.List(ctx, filter)
}

// UpdateProfessional applies the set fields of upd. A profession name is resolved to its id.
func (a *Application) UpdateProfessional(ctx context.Context, id int64, upd domain.ProfessionalUpdate) (*domain.Professional, error) {
	p, err := a.professionalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.IsEmpty() {
		return p, nil
	}

	if upd.Name != nil {
		p.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Phone != nil {
		p.Phone = a.phones.Normalize(*upd.Phone)
	}
	if upd.Profession != nil {
		profession, err := a.resolveProfession(ctx, *upd.Profession)
		if err != nil {
			return nil, err
		}
		p.ProfessionID = profession.ID
		p.Profession = profession.Name
	}
	if upd.Available != nil {
		p.Available = *upd.Available
	}
	if upd.Location != nil {
		p.Location = trimOptional(upd.Location)
	}

	if err := a.professionalRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	a.logger.InfoContext(ctx, "Professional updated", "professional_id", id)
	return p, nil
}

func (a *Application) DeleteProfessional(ctx context.Context, id int64) error {
	return a.professionalRepo.Delete(ctx, id)
}

// FindAvailable returns available professionals of profession. When locations is non-empty the
// professional's location must be one of them; otherwise profession alone decides.
func (a *Application) FindAvailable(ctx context.Context, profession string, locations []string) ([]*domain.Professional, error) {
	available := true
	return a.professionalRepo.List(ctx, domain.ProfessionalFilter{
		Profession: profession,
		Available:  &available,
		Locations:  nonEmpty(locations),
	})
}

// FindByPhone resolves the sender of an inbound message. Returns domain.ErrNotFound for unknown numbers.
func (a *Application) FindByPhone(ctx context.Context, phone string) (*domain.Professional, error) {
	return a.professionalRepo.FindByPhone(ctx, a.phones.Normalize(phone))
}

func (a *Application) resolveProfession(ctx context.Context, name string) (*domain.Profession, error) {
	profession, err := a.professionRepo.GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrProfessionNotFound
		}
		return nil, err
	}
	return profession, nil
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
