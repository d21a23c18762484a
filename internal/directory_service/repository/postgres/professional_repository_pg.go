package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/fieldops/dispatch_services/internal/directory_service/domain"
	"github.com/fieldops/dispatch_services/internal/platform/database"
)

const professionalColumns = `p.id, p.name, p.phone, p.profession_id, pr.name, p.available, p.location, p.created_at`

const professionalFrom = `FROM professionals p JOIN professions pr ON pr.id = p.profession_id`

type PgProfessionalRepository struct {
	db     database.DB
	logger *slog.Logger
}

func NewPgProfessionalRepository(db database.DB, logger *slog.Logger) *PgProfessionalRepository {
	return &PgProfessionalRepository{db: db, logger: logger.With("component", "professional_repository")}
}

func (r *PgProfessionalRepository) Create(ctx context.Context, p *domain.Professional) error {
	query := `
		INSERT INTO professionals (name, phone, profession_id, available, location)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query, p.Name, p.Phone, p.ProfessionID, p.Available, p.Location).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error creating professional", "error", err, "phone", p.Phone)
		return err
	}
	r.logger.InfoContext(ctx, "Professional created", "professional_id", p.ID, "profession_id", p.ProfessionID)
	return nil
}

func (r *PgProfessionalRepository) GetByID(ctx context.Context, id int64) (*domain.Professional, error) {
	query := `SELECT ` + professionalColumns + ` ` + professionalFrom + ` WHERE p.id = $1`
	p, err := scanProfessional(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Error getting professional by ID", "error", err, "professional_id", id)
		return nil, err
	}
	return p, nil
}

func (r *PgProfessionalRepository) FindByPhone(ctx context.Context, phone string) (*domain.Professional, error) {
	query := `SELECT ` + professionalColumns + ` ` + professionalFrom + ` WHERE p.phone = $1 ORDER BY p.id ASC LIMIT 1`
	p, err := scanProfessional(r.db.QueryRow(ctx, query, phone))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Error finding professional by phone", "error", err, "phone", phone)
		return nil, err
	}
	return p, nil
}

func (r *PgProfessionalRepository) List(ctx context.Context, filter domain.ProfessionalFilter) ([]*domain.Professional, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Profession != "" {
		args = append(args, filter.Profession)
		conds = append(conds, fmt.Sprintf("pr.name = $%d", len(args)))
	}
	if filter.Available != nil {
		args = append(args, *filter.Available)
		conds = append(conds, fmt.Sprintf("p.available = $%d", len(args)))
	}
	if len(filter.Locations) > 0 {
		args = append(args, filter.Locations)
		conds = append(conds, fmt.Sprintf("p.location = ANY($%d)", len(args)))
	}

	query := `SELECT ` + professionalColumns + ` ` + professionalFrom
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY p.id ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error listing professionals", "error", err)
		return nil, err
	}
	defer rows.Close()

	professionals := []*domain.Professional{}
	for rows.Next() {
		p, err := scanProfessional(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Error scanning professional row", "error", err)
			return nil, err
		}
		professionals = append(professionals, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating professional rows", "error", err)
		return nil, err
	}
	return professionals, nil
}

func (r *PgProfessionalRepository) Update(ctx context.Context, p *domain.Professional) error {
	query := `
		UPDATE professionals
		SET name = $1, phone = $2, profession_id = $3, available = $4, location = $5
		WHERE id = $6`
	tag, err := r.db.Exec(ctx, query, p.Name, p.Phone, p.ProfessionID, p.Available, p.Location, p.ID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error updating professional", "error", err, "professional_id", p.ID)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PgProfessionalRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM professionals WHERE id = $1`, id)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error deleting professional", "error", err, "professional_id", id)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.InfoContext(ctx, "Professional deleted", "professional_id", id)
	return nil
}

func scanProfessional(row pgx.Row) (*domain.Professional, error) {
	p := &domain.Professional{}
	if err := row.Scan(&p.ID, &p.Name, &p.Phone, &p.ProfessionID, &p.Profession, &p.Available, &p.Location, &p.CreatedAt); err != nil {
		return nil, err
	}
	return p, nil
}
