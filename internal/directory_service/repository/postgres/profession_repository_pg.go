package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/fieldops/dispatch_services/internal/directory_service/domain"
	"github.com/fieldops/dispatch_services/internal/platform/database"
)

type PgProfessionRepository struct {
	db     database.DB
	logger *slog.Logger
}

func NewPgProfessionRepository(db database.DB, logger *slog.Logger) *PgProfessionRepository {
	return &PgProfessionRepository{db: db, logger: logger.With("component", "profession_repository")}
}

func (r *PgProfessionRepository) Create(ctx context.Context, name string) (*domain.Profession, error) {
	query := `INSERT INTO professions (name) VALUES ($1) RETURNING id, name, created_at`
	p := &domain.Profession{}
	err := r.db.QueryRow(ctx, query, name).Scan(&p.ID, &p.Name, &p.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			r.logger.WarnContext(ctx, "Duplicate profession name", "name", name)
			return nil, domain.ErrDuplicateEntry
		}
		r.logger.ErrorContext(ctx, "Error creating profession", "error", err, "name", name)
		return nil, err
	}
	return p, nil
}

func (r *PgProfessionRepository) Upsert(ctx context.Context, name string) (*domain.Profession, error) {
	// The no-op update makes RETURNING yield the existing row on conflict.
	query := `
		INSERT INTO professions (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, created_at`
	p := &domain.Profession{}
	if err := r.db.QueryRow(ctx, query, name).Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
		r.logger.ErrorContext(ctx, "Error upserting profession", "error", err, "name", name)
		return nil, err
	}
	return p, nil
}

func (r *PgProfessionRepository) GetByID(ctx context.Context, id int64) (*domain.Profession, error) {
	return r.getOne(ctx, `SELECT id, name, created_at FROM professions WHERE id = $1`, id)
}

func (r *PgProfessionRepository) GetByName(ctx context.Context, name string) (*domain.Profession, error) {
	return r.getOne(ctx, `SELECT id, name, created_at FROM professions WHERE name = $1`, name)
}

func (r *PgProfessionRepository) getOne(ctx context.Context, query string, arg any) (*domain.Profession, error) {
	p := &domain.Profession{}
	err := r.db.QueryRow(ctx, query, arg).Scan(&p.ID, &p.Name, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Error getting profession", "error", err, "key", arg)
		return nil, err
	}
	return p, nil
}

func (r *PgProfessionRepository) List(ctx context.Context) ([]*domain.Profession, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, created_at FROM professions ORDER BY name ASC`)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error listing professions", "error", err)
		return nil, err
	}
	defer rows.Close()

	professions := []*domain.Profession{}
	for rows.Next() {
		p := &domain.Profession{}
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			r.logger.ErrorContext(ctx, "Error scanning profession row", "error", err)
			return nil, err
		}
		professions = append(professions, p)
	}
	return professions, rows.Err()
}
